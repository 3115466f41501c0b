package models

import "time"

// Review is a customer's rating of the accepted worker after a request
// completes. At most one review exists per (request, customer) pair and a
// review is immutable once created.
type Review struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	RequestID  uint      `json:"request_id" gorm:"not null;uniqueIndex:idx_reviews_request_customer"`
	CustomerID uint      `json:"customer_id" gorm:"not null;uniqueIndex:idx_reviews_request_customer"`
	WorkerID   uint      `json:"worker_id" gorm:"not null;index"`
	Rating     int       `json:"rating" gorm:"type:int;not null;check:rating >= 1 AND rating <= 5"`
	Comment    string    `json:"comment" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`

	// Relationships
	Request  ServiceRequest `json:"request,omitempty" gorm:"foreignKey:RequestID"`
	Customer User           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Worker   WorkerProfile  `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}

// ReviewCreate represents the request structure for creating a review
type ReviewCreate struct {
	RequestID uint   `json:"request_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

package models

import "time"

// CustomerProfile holds the customer-only attributes next to the shared
// profiles row.
type CustomerProfile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Phone     string    `json:"phone" gorm:"type:varchar(20)"`
	Location  string    `json:"location" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the CustomerProfile model
func (CustomerProfile) TableName() string {
	return "customer_profiles"
}

// CustomerProfileUpdate represents the request structure for updating a customer profile
type CustomerProfileUpdate struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
}

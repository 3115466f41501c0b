package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ServiceRequestCategory represents the category of work a worker can perform
type ServiceRequestCategory string

const (
	CategoryAC          ServiceRequestCategory = "AC"
	CategoryPlumbing    ServiceRequestCategory = "Plumbing"
	CategoryElectrical  ServiceRequestCategory = "Electrical"
	CategoryCarpentry   ServiceRequestCategory = "Carpentry"
	CategoryCleaning    ServiceRequestCategory = "Cleaning"
	CategoryPainting    ServiceRequestCategory = "Painting"
	CategoryAppliance   ServiceRequestCategory = "Appliance"
	CategoryPestControl ServiceRequestCategory = "PestControl"
	CategoryOther       ServiceRequestCategory = "Other"
)

// AllCategories returns every valid service category
func AllCategories() []ServiceRequestCategory {
	return []ServiceRequestCategory{
		CategoryAC,
		CategoryPlumbing,
		CategoryElectrical,
		CategoryCarpentry,
		CategoryCleaning,
		CategoryPainting,
		CategoryAppliance,
		CategoryPestControl,
		CategoryOther,
	}
}

// IsValidCategory checks if the given category is one of the closed set
func IsValidCategory(c ServiceRequestCategory) bool {
	for _, v := range AllCategories() {
		if v == c {
			return true
		}
	}
	return false
}

// WorkerProfile represents a worker's professional profile.
// RatingAvg and RatingCount are derived fields owned by the rating service;
// nothing else writes them.
type WorkerProfile struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	Phone          string         `json:"phone" gorm:"type:varchar(20)"`
	Whatsapp       string         `json:"whatsapp" gorm:"type:varchar(20)"`
	Viber          string         `json:"viber" gorm:"type:varchar(20)"`
	Categories     pq.StringArray `json:"categories" gorm:"type:text[]"`
	Skills         pq.StringArray `json:"skills" gorm:"type:text[]"`
	About          string         `json:"about" gorm:"type:text"`
	PromoPosterURL *string        `json:"promo_poster_url" gorm:"type:varchar(500)"`
	RatingAvg      float64        `json:"rating_avg" gorm:"type:decimal(3,1);default:0"`
	RatingCount    int            `json:"rating_count" gorm:"default:0"`
	JobsDone       int            `json:"jobs_done" gorm:"default:0"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the WorkerProfile model
func (WorkerProfile) TableName() string {
	return "worker_profiles"
}

// AfterFind normalizes legacy rows: array columns come back as empty
// collections, never nil.
func (w *WorkerProfile) AfterFind(_ *gorm.DB) error {
	if w.Categories == nil {
		w.Categories = pq.StringArray{}
	}
	if w.Skills == nil {
		w.Skills = pq.StringArray{}
	}
	return nil
}

// HasCategory checks whether the worker serves the given category
func (w *WorkerProfile) HasCategory(c ServiceRequestCategory) bool {
	for _, v := range w.Categories {
		if v == string(c) {
			return true
		}
	}
	return false
}

// WorkerProfileUpdate represents the request structure for updating a worker profile
type WorkerProfileUpdate struct {
	FullName       *string  `json:"full_name"`
	Phone          *string  `json:"phone"`
	Whatsapp       *string  `json:"whatsapp"`
	Viber          *string  `json:"viber"`
	Categories     []string `json:"categories"`
	Skills         []string `json:"skills"`
	About          *string  `json:"about"`
	PromoPosterURL *string  `json:"promo_poster_url"`
}

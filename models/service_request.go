package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ServiceRequestStatus represents the current lifecycle status of a service request.
// Status is the single source of truth for which transitions are legal next;
// only the lifecycle service writes it.
type ServiceRequestStatus string

const (
	StatusOpen                              ServiceRequestStatus = "open"
	StatusPendingCustomerConfirmation       ServiceRequestStatus = "pending_customer_confirmation"
	StatusInspectionPendingWorkerProposal   ServiceRequestStatus = "inspection_pending_worker_proposal"
	StatusInspectionPendingCustomerConfirm  ServiceRequestStatus = "inspection_pending_customer_confirmation"
	StatusInspectionScheduled               ServiceRequestStatus = "inspection_scheduled"
	StatusInspectionCompletedPendingConfirm ServiceRequestStatus = "inspection_completed_pending_customer_confirm"
	StatusAwaitingQuote                     ServiceRequestStatus = "awaiting_quote"
	StatusQuotePendingApproval              ServiceRequestStatus = "quote_pending_approval"
	StatusWorkPendingWorkerSchedule         ServiceRequestStatus = "work_pending_worker_schedule"
	StatusWorkPendingCustomerConfirmation   ServiceRequestStatus = "work_pending_customer_confirmation"
	StatusWorkScheduled                     ServiceRequestStatus = "work_scheduled"
	StatusWorkCompletedPendingConfirm       ServiceRequestStatus = "work_completed_pending_customer_confirm"
	StatusPaymentPending                    ServiceRequestStatus = "payment_pending"
	StatusCompleted                         ServiceRequestStatus = "completed"
)

// Urgency levels for a service request
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// IsValidUrgency checks the urgency enum
func IsValidUrgency(u string) bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

// PaymentStatus values for the payment sub-record
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// InspectionInfo is the inspection scheduling sub-record, stored as jsonb.
// Each field is written exactly once by its owning transition and never cleared.
type InspectionInfo struct {
	ProposedAt                     *time.Time `json:"proposed_at,omitempty"`
	ScheduledFor                   *time.Time `json:"scheduled_for,omitempty"`
	CustomerConfirmedAt            *time.Time `json:"customer_confirmed_at,omitempty"`
	CompletedByWorkerAt            *time.Time `json:"completed_by_worker_at,omitempty"`
	CompletedConfirmedByCustomerAt *time.Time `json:"completed_confirmed_by_customer_at,omitempty"`
}

// QuoteInfo is the single authoritative quote once chosen or submitted, stored as jsonb.
type QuoteInfo struct {
	Amount      *float64   `json:"amount,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}

// WorkInfo is the work scheduling sub-record, stored as jsonb.
type WorkInfo struct {
	ScheduledFor                   *time.Time `json:"scheduled_for,omitempty"`
	ScheduledByWorkerAt            *time.Time `json:"scheduled_by_worker_at,omitempty"`
	ConfirmedByCustomerAt          *time.Time `json:"confirmed_by_customer_at,omitempty"`
	CompletedByWorkerAt            *time.Time `json:"completed_by_worker_at,omitempty"`
	CompletedConfirmedByCustomerAt *time.Time `json:"completed_confirmed_by_customer_at,omitempty"`
}

// PaymentInfo is the payment sub-record, stored as jsonb.
type PaymentInfo struct {
	Status   string     `json:"status,omitempty"`
	MarkedAt *time.Time `json:"marked_at,omitempty"`
}

// QuoteOffer is a worker's competing price offer on an open request.
// One live offer per worker, last write wins.
type QuoteOffer struct {
	WorkerID    uint      `json:"worker_id"`
	Amount      float64   `json:"amount"`
	Notes       string    `json:"notes,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// QuoteOfferList is the offer ledger column, stored as jsonb.
type QuoteOfferList []QuoteOffer

func jsonbValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func jsonbScan(dst interface{}, src interface{}) error {
	if src == nil {
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

func (i InspectionInfo) Value() (driver.Value, error)  { return jsonbValue(i) }
func (i *InspectionInfo) Scan(src interface{}) error   { return jsonbScan(i, src) }
func (q QuoteInfo) Value() (driver.Value, error)       { return jsonbValue(q) }
func (q *QuoteInfo) Scan(src interface{}) error        { return jsonbScan(q, src) }
func (w WorkInfo) Value() (driver.Value, error)        { return jsonbValue(w) }
func (w *WorkInfo) Scan(src interface{}) error         { return jsonbScan(w, src) }
func (p PaymentInfo) Value() (driver.Value, error)     { return jsonbValue(p) }
func (p *PaymentInfo) Scan(src interface{}) error      { return jsonbScan(p, src) }
func (l QuoteOfferList) Value() (driver.Value, error)  { return jsonbValue(l) }
func (l *QuoteOfferList) Scan(src interface{}) error   { return jsonbScan(l, src) }

// FindByWorker returns the live offer for a worker, if any
func (l QuoteOfferList) FindByWorker(workerID uint) (QuoteOffer, bool) {
	for _, o := range l {
		if o.WorkerID == workerID {
			return o, true
		}
	}
	return QuoteOffer{}, false
}

// Upsert replaces a worker's live offer or appends a new one
func (l QuoteOfferList) Upsert(offer QuoteOffer) QuoteOfferList {
	for i, o := range l {
		if o.WorkerID == offer.WorkerID {
			l[i] = offer
			return l
		}
	}
	return append(l, offer)
}

// ServiceRequest is the central entity. It flows unidirectionally through the
// lifecycle statuses and never reverts.
type ServiceRequest struct {
	ID          uint                   `json:"id" gorm:"primaryKey"`
	Status      ServiceRequestStatus   `json:"status" gorm:"type:varchar(50);not null;default:'open'"`
	Category    ServiceRequestCategory `json:"category" gorm:"type:varchar(30);not null"`
	Title       string                 `json:"title" gorm:"type:varchar(200);not null"`
	Description string                 `json:"description" gorm:"type:text"`
	Budget      float64                `json:"budget" gorm:"type:decimal(10,2);not null;default:0"`
	Urgency     string                 `json:"urgency" gorm:"type:varchar(10);not null;default:'medium'"`
	Location    string                 `json:"location" gorm:"type:varchar(255)"`

	// CustomerID is immutable ownership, set at creation.
	CustomerID uint `json:"customer_id" gorm:"not null;index"`
	Customer   User `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`

	// AcceptedWorkerID is set exactly once, when a worker is selected.
	AcceptedWorkerID *uint          `json:"accepted_worker_id" gorm:"index"`
	AcceptedWorker   *WorkerProfile `json:"accepted_worker,omitempty" gorm:"foreignKey:AcceptedWorkerID"`

	// InterestedWorkerIDs is append-only while the request is open.
	InterestedWorkerIDs pq.Int64Array `json:"interested_worker_ids" gorm:"type:bigint[]"`

	// QuoteOffers is the offer ledger, request-side persisted.
	QuoteOffers QuoteOfferList `json:"quote_offers" gorm:"type:jsonb"`

	Inspection InspectionInfo `json:"inspection" gorm:"type:jsonb"`
	Quote      QuoteInfo      `json:"quote" gorm:"type:jsonb"`
	Work       WorkInfo       `json:"work" gorm:"type:jsonb"`
	Payment    PaymentInfo    `json:"payment" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the ServiceRequest model
func (ServiceRequest) TableName() string {
	return "service_requests"
}

// AfterFind normalizes legacy rows so array-typed fields read as empty
// collections rather than nil.
func (r *ServiceRequest) AfterFind(_ *gorm.DB) error {
	if r.InterestedWorkerIDs == nil {
		r.InterestedWorkerIDs = pq.Int64Array{}
	}
	if r.QuoteOffers == nil {
		r.QuoteOffers = QuoteOfferList{}
	}
	return nil
}

// HasInterestedWorker reports whether the worker already expressed interest
func (r *ServiceRequest) HasInterestedWorker(workerID uint) bool {
	for _, id := range r.InterestedWorkerIDs {
		if uint(id) == workerID {
			return true
		}
	}
	return false
}

// AddInterestedWorker appends the worker id if not already present
func (r *ServiceRequest) AddInterestedWorker(workerID uint) {
	if !r.HasInterestedWorker(workerID) {
		r.InterestedWorkerIDs = append(r.InterestedWorkerIDs, int64(workerID))
	}
}

// ServiceRequestCreate represents the request structure for posting a new service request
type ServiceRequestCreate struct {
	Category    ServiceRequestCategory `json:"category" binding:"required"`
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description"`
	Budget      float64                `json:"budget"`
	Urgency     string                 `json:"urgency"`
	Location    string                 `json:"location"`
}

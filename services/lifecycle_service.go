package services

import (
	"errors"
	"log"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"service-marketplace-server/apperrors"
	"service-marketplace-server/database"
	"service-marketplace-server/events"
	"service-marketplace-server/models"
)

// LifecycleService drives service requests through the lifecycle state
// machine. Every transition is applied as a single conditional update keyed
// on the status that was read, so a transition lost to a concurrent writer
// fails with Conflict instead of corrupting the status.
type LifecycleService struct {
	bus *events.Bus
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(bus *events.Bus) *LifecycleService {
	return &LifecycleService{bus: bus}
}

// CreateRequest opens a new service request owned by the customer
func (s *LifecycleService) CreateRequest(customer *models.User, input models.ServiceRequestCreate) (*models.ServiceRequest, error) {
	if !customer.IsActive {
		return nil, apperrors.PreconditionFailed("customer is deactivated")
	}
	if !models.IsValidCategory(input.Category) {
		return nil, apperrors.InvalidInput("unknown service category")
	}
	if err := validateAmount(input.Budget, "budget"); err != nil {
		return nil, err
	}
	urgency := input.Urgency
	if urgency == "" {
		urgency = models.UrgencyMedium
	}
	if !models.IsValidUrgency(urgency) {
		return nil, apperrors.InvalidInput("urgency must be low, medium or high")
	}

	req := models.ServiceRequest{
		Status:              models.StatusOpen,
		Category:            input.Category,
		Title:               input.Title,
		Description:         input.Description,
		Budget:              input.Budget,
		Urgency:             urgency,
		Location:            input.Location,
		CustomerID:          customer.ID,
		InterestedWorkerIDs: pq.Int64Array{},
		QuoteOffers:         models.QuoteOfferList{},
	}

	if err := database.DB.Create(&req).Error; err != nil {
		return nil, err
	}

	log.Printf("📋 Service request %d created by customer %d", req.ID, customer.ID)
	s.bus.Publish(events.Event{
		Type:       events.RequestCreated,
		RequestID:  req.ID,
		CustomerID: customer.ID,
		Status:     string(req.Status),
	})
	return &req, nil
}

// GetRequest loads a request with its resolved references
func (s *LifecycleService) GetRequest(requestID uint) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := database.DB.
		Preload("Customer").
		Preload("AcceptedWorker").
		Preload("AcceptedWorker.User").
		First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("service request")
		}
		return nil, err
	}
	return &req, nil
}

func (s *LifecycleService) loadRequest(requestID uint) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := database.DB.First(&req, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("service request")
		}
		return nil, err
	}
	return &req, nil
}

// loadActiveWorker fetches a worker and rejects deactivated ones. Inactive
// workers stay in interested lists they already joined but cannot be named
// in any further interest or selection action.
func (s *LifecycleService) loadActiveWorker(workerID uint) (*models.WorkerProfile, error) {
	var worker models.WorkerProfile
	if err := database.DB.Preload("User").First(&worker, workerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("worker")
		}
		return nil, err
	}
	if !worker.User.IsActive {
		return nil, apperrors.PreconditionFailed("worker is deactivated")
	}
	return &worker, nil
}

// transitionColumns are the only columns a lifecycle transition may write.
var transitionColumns = []string{
	"status",
	"accepted_worker_id",
	"interested_worker_ids",
	"quote_offers",
	"inspection",
	"quote",
	"work",
	"payment",
	"updated_at",
}

// saveTransition persists an applied transition atomically. The update is
// conditioned on the status the row had when it was read; zero rows affected
// means another actor won the race.
func (s *LifecycleService) saveTransition(tx *gorm.DB, req *models.ServiceRequest, prev models.ServiceRequestStatus) error {
	res := tx.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", req.ID, prev).
		Select(transitionColumns).
		Updates(req)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict("request was modified concurrently, retry the action")
	}
	return nil
}

func (s *LifecycleService) publishUpdate(req *models.ServiceRequest) {
	e := events.Event{
		Type:       events.RequestUpdated,
		RequestID:  req.ID,
		CustomerID: req.CustomerID,
		Status:     string(req.Status),
	}
	if req.AcceptedWorkerID != nil {
		e.WorkerID = *req.AcceptedWorkerID
	}
	s.bus.Publish(e)
}

// ExpressInterest records a worker's interest in an open request
func (s *LifecycleService) ExpressInterest(workerID, requestID uint) (*models.ServiceRequest, error) {
	if _, err := s.loadActiveWorker(workerID); err != nil {
		return nil, err
	}
	req, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	prev := req.Status
	if err := applyExpressInterest(req, workerID); err != nil {
		return nil, err
	}
	if err := s.saveTransition(database.DB, req, prev); err != nil {
		return nil, err
	}
	s.publishUpdate(req)
	return req, nil
}

// SubmitQuoteOffer upserts the worker's competing offer on an open request
func (s *LifecycleService) SubmitQuoteOffer(workerID, requestID uint, amount float64, notes string) (*models.ServiceRequest, error) {
	if _, err := s.loadActiveWorker(workerID); err != nil {
		return nil, err
	}
	req, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	prev := req.Status
	if err := applySubmitQuoteOffer(req, workerID, amount, notes, time.Now()); err != nil {
		return nil, err
	}
	if err := s.saveTransition(database.DB, req, prev); err != nil {
		return nil, err
	}
	s.publishUpdate(req)
	return req, nil
}

// SelectWorker assigns an interested worker directly and moves the request
// into the inspection phase
func (s *LifecycleService) SelectWorker(customer *models.User, requestID, workerID uint) (*models.ServiceRequest, error) {
	if _, err := s.loadActiveWorker(workerID); err != nil {
		return nil, err
	}
	req, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	prev := req.Status
	if err := applySelectWorker(req, customer.ID, workerID); err != nil {
		return nil, err
	}
	if err := s.saveTransition(database.DB, req, prev); err != nil {
		return nil, err
	}
	s.publishUpdate(req)
	return req, nil
}

// ChooseOffer accepts a worker's offer, copying it into the authoritative quote
func (s *LifecycleService) ChooseOffer(customer *models.User, requestID, workerID uint) (*models.ServiceRequest, error) {
	req, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	prev := req.Status
	if err := applyChooseOffer(req, customer.ID, workerID); err != nil {
		return nil, err
	}
	if err := s.saveTransition(database.DB, req, prev); err != nil {
		return nil, err
	}
	s.publishUpdate(req)
	return req, nil
}

// CustomerConfirmWorker consumes the pending_customer_confirmation status.
// No modeled flow produces that status today; the operation is kept for
// rows that carry it.
func (s *LifecycleService) CustomerConfirmWorker(customer *models.User, requestID uint) (*models.ServiceRequest, error) {
	return s.customerTransition(customer, requestID, func(req *models.ServiceRequest, now time.Time) error {
		return applyCustomerConfirmWorker(req, customer.ID)
	})
}

// ProposeInspection lets the accepted worker propose an inspection slot
func (s *LifecycleService) ProposeInspection(workerID, requestID uint, when time.Time) (*models.ServiceRequest, error) {
	return s.workerTransition(workerID, requestID, func(req *models.ServiceRequest, now time.Time) error {
		return applyProposeInspection(req, workerID, when, now)
	})
}

// CustomerConfirmInspection confirms the proposed inspection slot
func (s *LifecycleService) CustomerConfirmInspection(customer *models.User, requestID uint) (*models.ServiceRequest, error) {
	return s.customerTransition(customer, requestID, func(req *models.ServiceRequest, now time.Time) error {
		return applyCustomerConfirmInspection(req, customer.ID, now)
	})
}

// WorkerCompleteInspection marks the site visit done
func (s *LifecycleService) WorkerCompleteInspection(workerID, requestID uint) (*models.ServiceRequest, error) {
	return s.workerTransition(workerID, requestID, func(req *models.ServiceRequest, now time.Time) error {
		return applyWorkerCompleteInspection(req, workerID, now)
	})
}

// CustomerConfirmInspectionCompleted acknowledges the finished inspection
func (s *LifecycleService) CustomerConfirmInspectionCompleted(customer *models.User, requestID uint) (*models.ServiceRequest, error) {
	return s.customerTransition(customer, requestID, func(req *models.ServiceRequest, now time.Time) error {
		return applyCustomerConfirmInspectionCompleted(req, customer.ID, now)
	})
}

// SubmitQuote lets the accepted worker submit the post-inspection quote
func (s *LifecycleService) SubmitQuote(workerID, requestID uint, amount float64, notes string) (*models.ServiceRequest, error) {
	return s.workerTransition(workerID, requestID, func(req *models.ServiceRequest, now time.Time) error {
		return applySubmitQuote(req, workerID, amount, notes, now)
	})
}

// ApproveQuote approves the pending quote
func (s *LifecycleService) ApproveQuote(customer *models.User, requestID uint) (*models.ServiceRequest, error) {
	return s.customerTransition(customer, requestID, func(req *models.ServiceRequest, now time.Time) error {
		return applyApproveQuote(req, customer.ID, now)
	})
}

// ScheduleWork lets the accepted worker propose the work slot
func (s *LifecycleService) ScheduleWork(workerID, requestID uint, when time.Time) (*models.ServiceRequest, error) {
	return s.workerTransition(workerID, requestID, func(req *models.ServiceRequest, now time.Time) error {
		return applyScheduleWork(req, workerID, when, now)
	})
}

// CustomerConfirmWorkSchedule confirms the proposed work slot
func (s *LifecycleService) CustomerConfirmWorkSchedule(customer *models.User, requestID uint) (*models.ServiceRequest, error) {
	return s.customerTransition(customer, requestID, func(req *models.ServiceRequest, now time.Time) error {
		return applyCustomerConfirmWorkSchedule(req, customer.ID, now)
	})
}

// WorkerCompleteWork marks the scheduled work done
func (s *LifecycleService) WorkerCompleteWork(workerID, requestID uint) (*models.ServiceRequest, error) {
	return s.workerTransition(workerID, requestID, func(req *models.ServiceRequest, now time.Time) error {
		return applyWorkerCompleteWork(req, workerID, now)
	})
}

// CustomerConfirmWorkCompleted acknowledges the finished work and opens the
// payment phase
func (s *LifecycleService) CustomerConfirmWorkCompleted(customer *models.User, requestID uint) (*models.ServiceRequest, error) {
	return s.customerTransition(customer, requestID, func(req *models.ServiceRequest, now time.Time) error {
		return applyCustomerConfirmWorkCompleted(req, customer.ID, now)
	})
}

// MarkPayment records the payment marker. Marking paid completes the request
// and credits the worker's jobs_done counter in the same transaction.
func (s *LifecycleService) MarkPayment(workerID, requestID uint, paymentStatus string) (*models.ServiceRequest, error) {
	req, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	prev := req.Status
	if err := applyMarkPayment(req, workerID, paymentStatus, time.Now()); err != nil {
		return nil, err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.saveTransition(tx, req, prev); err != nil {
			return err
		}
		if req.Status == models.StatusCompleted {
			if err := tx.Model(&models.WorkerProfile{}).
				Where("id = ?", workerID).
				UpdateColumn("jobs_done", gorm.Expr("jobs_done + 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Status == models.StatusCompleted {
		log.Printf("✅ Service request %d completed by worker %d", req.ID, workerID)
	}
	s.publishUpdate(req)
	return req, nil
}

func (s *LifecycleService) customerTransition(customer *models.User, requestID uint, apply func(*models.ServiceRequest, time.Time) error) (*models.ServiceRequest, error) {
	req, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	prev := req.Status
	if err := apply(req, time.Now()); err != nil {
		return nil, err
	}
	if err := s.saveTransition(database.DB, req, prev); err != nil {
		return nil, err
	}
	s.publishUpdate(req)
	return req, nil
}

func (s *LifecycleService) workerTransition(workerID, requestID uint, apply func(*models.ServiceRequest, time.Time) error) (*models.ServiceRequest, error) {
	req, err := s.loadRequest(requestID)
	if err != nil {
		return nil, err
	}
	prev := req.Status
	if err := apply(req, time.Now()); err != nil {
		return nil, err
	}
	if err := s.saveTransition(database.DB, req, prev); err != nil {
		return nil, err
	}
	s.publishUpdate(req)
	return req, nil
}

package services

import (
	"errors"
	"log"
	"math"
	"time"

	"gorm.io/gorm"

	"service-marketplace-server/apperrors"
	"service-marketplace-server/database"
	"service-marketplace-server/events"
	"service-marketplace-server/models"
)

// RatingService owns the worker rating aggregate. Nothing else writes
// rating_avg or rating_count.
type RatingService struct {
	bus *events.Bus
}

// NewRatingService creates a new rating service
func NewRatingService(bus *events.Bus) *RatingService {
	return &RatingService{bus: bus}
}

// NextRating folds one new rating into the running aggregate. The average is
// rounded half-up to one decimal place. The fold has no deduplication
// memory; the one-review-per-request-per-customer invariant prevents double
// counting upstream.
func NextRating(avg float64, count, rating int) (float64, int) {
	nextCount := count + 1
	nextAvg := (avg*float64(count) + float64(rating)) / float64(nextCount)
	return math.Floor(nextAvg*10+0.5) / 10, nextCount
}

// AddReview creates a review for a completed request and updates the
// accepted worker's rating aggregate in the same transaction.
func (s *RatingService) AddReview(customer *models.User, input models.ReviewCreate) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	var req models.ServiceRequest
	if err := database.DB.First(&req, input.RequestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("service request")
		}
		return nil, err
	}
	if req.CustomerID != customer.ID {
		return nil, apperrors.PreconditionFailed("request does not belong to this customer")
	}
	if req.Status != models.StatusCompleted {
		return nil, apperrors.PreconditionFailed("request is not completed")
	}
	if req.AcceptedWorkerID == nil {
		return nil, apperrors.PreconditionFailed("request has no accepted worker")
	}

	var existing models.Review
	err := database.DB.
		Where("request_id = ? AND customer_id = ?", input.RequestID, customer.ID).
		First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("request already reviewed")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := models.Review{
		RequestID:  input.RequestID,
		CustomerID: customer.ID,
		WorkerID:   *req.AcceptedWorkerID,
		Rating:     input.Rating,
		Comment:    input.Comment,
		CreatedAt:  time.Now(),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		var worker models.WorkerProfile
		if err := tx.First(&worker, review.WorkerID).Error; err != nil {
			return err
		}
		nextAvg, nextCount := NextRating(worker.RatingAvg, worker.RatingCount, review.Rating)
		return tx.Model(&models.WorkerProfile{}).
			Where("id = ?", worker.ID).
			Updates(map[string]interface{}{
				"rating_avg":   nextAvg,
				"rating_count": nextCount,
				"updated_at":   time.Now(),
			}).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("⭐ Review %d created for worker %d on request %d", review.ID, review.WorkerID, review.RequestID)
	s.bus.Publish(events.Event{
		Type:       events.ReviewCreated,
		RequestID:  review.RequestID,
		WorkerID:   review.WorkerID,
		CustomerID: review.CustomerID,
	})
	return &review, nil
}

// ListWorkerReviews returns all reviews left for a worker, newest first
func (s *RatingService) ListWorkerReviews(workerID uint) ([]models.Review, error) {
	var reviews []models.Review
	if err := database.DB.
		Where("worker_id = ?", workerID).
		Preload("Customer").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

package services

import (
	"log"
	"sync"
	"time"

	"service-marketplace-server/database"
	"service-marketplace-server/models"
)

// WorkerView is the denormalized worker row served to dashboards
type WorkerView struct {
	ID             uint     `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone,omitempty"`
	Whatsapp       string   `json:"whatsapp,omitempty"`
	Viber          string   `json:"viber,omitempty"`
	Categories     []string `json:"categories"`
	Skills         []string `json:"skills"`
	About          string   `json:"about,omitempty"`
	PromoPosterURL string   `json:"promo_poster_url,omitempty"`
	RatingAvg      float64  `json:"rating_avg"`
	RatingCount    int      `json:"rating_count"`
	JobsDone       int      `json:"jobs_done"`
	Active         bool     `json:"active"`
}

// CustomerView is the denormalized customer row
type CustomerView struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Active   bool   `json:"active"`
}

// RequestView is a service request with its references resolved to names
type RequestView struct {
	ID                  uint                          `json:"id"`
	Status              models.ServiceRequestStatus   `json:"status"`
	Category            models.ServiceRequestCategory `json:"category"`
	Title               string                        `json:"title"`
	Description         string                        `json:"description,omitempty"`
	Budget              float64                       `json:"budget"`
	Urgency             string                        `json:"urgency"`
	Location            string                        `json:"location,omitempty"`
	CustomerID          uint                          `json:"customer_id"`
	CustomerName        string                        `json:"customer_name"`
	AcceptedWorkerID    *uint                         `json:"accepted_worker_id,omitempty"`
	AcceptedWorkerName  string                        `json:"accepted_worker_name,omitempty"`
	InterestedWorkerIDs []int64                       `json:"interested_worker_ids"`
	QuoteOffers         models.QuoteOfferList         `json:"quote_offers"`
	Inspection          models.InspectionInfo         `json:"inspection"`
	Quote               models.QuoteInfo              `json:"quote"`
	Work                models.WorkInfo               `json:"work"`
	Payment             models.PaymentInfo            `json:"payment"`
	CreatedAt           time.Time                     `json:"created_at"`
}

// ReviewView is a review with the reviewer's name resolved
type ReviewView struct {
	ID           uint      `json:"id"`
	RequestID    uint      `json:"request_id"`
	CustomerID   uint      `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	WorkerID     uint      `json:"worker_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Overview is the aggregate read model consumed by the UI. It is derived,
// never authoritative.
type Overview struct {
	Workers     []WorkerView   `json:"workers"`
	Customers   []CustomerView `json:"customers"`
	Requests    []RequestView  `json:"requests"`
	Reviews     []ReviewView   `json:"reviews"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// BuildOverview is the pure projection step: it joins the loaded rows into
// the aggregate view, substituting defaults for missing optional fields
// instead of failing.
func BuildOverview(workers []models.WorkerProfile, customers []models.CustomerProfile, requests []models.ServiceRequest, reviews []models.Review) *Overview {
	workerNames := make(map[uint]string, len(workers))
	customerNames := make(map[uint]string, len(customers))

	out := &Overview{
		Workers:     make([]WorkerView, 0, len(workers)),
		Customers:   make([]CustomerView, 0, len(customers)),
		Requests:    make([]RequestView, 0, len(requests)),
		Reviews:     make([]ReviewView, 0, len(reviews)),
		GeneratedAt: time.Now(),
	}

	for _, w := range workers {
		workerNames[w.ID] = w.User.FullName
		categories := []string{}
		if w.Categories != nil {
			categories = append(categories, w.Categories...)
		}
		skills := []string{}
		if w.Skills != nil {
			skills = append(skills, w.Skills...)
		}
		poster := ""
		if w.PromoPosterURL != nil {
			poster = *w.PromoPosterURL
		}
		out.Workers = append(out.Workers, WorkerView{
			ID:             w.ID,
			Name:           w.User.FullName,
			Email:          w.User.Email,
			Phone:          w.Phone,
			Whatsapp:       w.Whatsapp,
			Viber:          w.Viber,
			Categories:     categories,
			Skills:         skills,
			About:          w.About,
			PromoPosterURL: poster,
			RatingAvg:      w.RatingAvg,
			RatingCount:    w.RatingCount,
			JobsDone:       w.JobsDone,
			Active:         w.User.IsActive,
		})
	}

	for _, c := range customers {
		customerNames[c.UserID] = c.User.FullName
		out.Customers = append(out.Customers, CustomerView{
			ID:       c.UserID,
			Name:     c.User.FullName,
			Email:    c.User.Email,
			Phone:    c.Phone,
			Location: c.Location,
			Active:   c.User.IsActive,
		})
	}

	for _, r := range requests {
		interested := []int64{}
		if r.InterestedWorkerIDs != nil {
			interested = append(interested, r.InterestedWorkerIDs...)
		}
		offers := models.QuoteOfferList{}
		if r.QuoteOffers != nil {
			offers = r.QuoteOffers
		}
		view := RequestView{
			ID:                  r.ID,
			Status:              r.Status,
			Category:            r.Category,
			Title:               r.Title,
			Description:         r.Description,
			Budget:              r.Budget,
			Urgency:             r.Urgency,
			Location:            r.Location,
			CustomerID:          r.CustomerID,
			CustomerName:        customerNames[r.CustomerID],
			AcceptedWorkerID:    r.AcceptedWorkerID,
			InterestedWorkerIDs: interested,
			QuoteOffers:         offers,
			Inspection:          r.Inspection,
			Quote:               r.Quote,
			Work:                r.Work,
			Payment:             r.Payment,
			CreatedAt:           r.CreatedAt,
		}
		if r.AcceptedWorkerID != nil {
			view.AcceptedWorkerName = workerNames[*r.AcceptedWorkerID]
		}
		out.Requests = append(out.Requests, view)
	}

	for _, rv := range reviews {
		out.Reviews = append(out.Reviews, ReviewView{
			ID:           rv.ID,
			RequestID:    rv.RequestID,
			CustomerID:   rv.CustomerID,
			CustomerName: customerNames[rv.CustomerID],
			WorkerID:     rv.WorkerID,
			Rating:       rv.Rating,
			Comment:      rv.Comment,
			CreatedAt:    rv.CreatedAt,
		})
	}

	return out
}

// ProjectionService caches the aggregate view and rebuilds it when the
// store reports changes. Reads always see a complete snapshot.
type ProjectionService struct {
	mu     sync.RWMutex
	cached *Overview
}

// NewProjectionService creates a new projection service
func NewProjectionService() *ProjectionService {
	return &ProjectionService{}
}

// Refresh reloads all entities and rebuilds the cached overview
func (s *ProjectionService) Refresh() (*Overview, error) {
	var workers []models.WorkerProfile
	if err := database.DB.Preload("User").Find(&workers).Error; err != nil {
		return nil, err
	}
	var customers []models.CustomerProfile
	if err := database.DB.Preload("User").Find(&customers).Error; err != nil {
		return nil, err
	}
	var requests []models.ServiceRequest
	if err := database.DB.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := database.DB.Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}

	view := BuildOverview(workers, customers, requests, reviews)

	s.mu.Lock()
	s.cached = view
	s.mu.Unlock()

	log.Printf("🔄 Overview projection rebuilt: %d workers, %d customers, %d requests, %d reviews",
		len(view.Workers), len(view.Customers), len(view.Requests), len(view.Reviews))
	return view, nil
}

// Overview returns the cached view, building it on first use
func (s *ProjectionService) Overview() (*Overview, error) {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()

	if cached != nil {
		return cached, nil
	}
	return s.Refresh()
}

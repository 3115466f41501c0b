package services

import (
	"testing"
	"time"

	"github.com/lib/pq"

	"service-marketplace-server/models"
)

func TestBuildOverviewResolvesNames(t *testing.T) {
	workerID := uint(5)
	workers := []models.WorkerProfile{
		{
			ID:         workerID,
			UserID:     2,
			Categories: pq.StringArray{"AC"},
			Skills:     pq.StringArray{"Split AC service"},
			RatingAvg:  4.6,
			User:       models.User{ID: 2, FullName: "Suresh", Email: "suresh@demo.com", IsActive: true},
		},
	}
	customers := []models.CustomerProfile{
		{
			ID:     1,
			UserID: 3,
			Phone:  "+91 90000 00001",
			User:   models.User{ID: 3, FullName: "Aisha", Email: "aisha@demo.com", IsActive: true},
		},
	}
	requests := []models.ServiceRequest{
		{
			ID:               7,
			Status:           models.StatusWorkScheduled,
			Category:         models.CategoryAC,
			Title:            "AC not cooling",
			CustomerID:       3,
			AcceptedWorkerID: &workerID,
			CreatedAt:        time.Now(),
		},
	}
	reviews := []models.Review{
		{ID: 9, RequestID: 7, CustomerID: 3, WorkerID: workerID, Rating: 5},
	}

	view := BuildOverview(workers, customers, requests, reviews)

	if len(view.Workers) != 1 || len(view.Customers) != 1 || len(view.Requests) != 1 || len(view.Reviews) != 1 {
		t.Fatalf("unexpected view sizes: %d/%d/%d/%d",
			len(view.Workers), len(view.Customers), len(view.Requests), len(view.Reviews))
	}
	if view.Requests[0].CustomerName != "Aisha" {
		t.Errorf("customer name = %q, want Aisha", view.Requests[0].CustomerName)
	}
	if view.Requests[0].AcceptedWorkerName != "Suresh" {
		t.Errorf("worker name = %q, want Suresh", view.Requests[0].AcceptedWorkerName)
	}
	if view.Reviews[0].CustomerName != "Aisha" {
		t.Errorf("review customer name = %q, want Aisha", view.Reviews[0].CustomerName)
	}
	if view.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
}

func TestBuildOverviewToleratesMissingReferences(t *testing.T) {
	danglingWorker := uint(99)
	requests := []models.ServiceRequest{
		{
			ID:               1,
			Status:           models.StatusOpen,
			CustomerID:       42, // no matching customer row
			AcceptedWorkerID: &danglingWorker,
		},
	}

	view := BuildOverview(nil, nil, requests, nil)

	if len(view.Requests) != 1 {
		t.Fatalf("expected the request to survive, got %d rows", len(view.Requests))
	}
	r := view.Requests[0]
	if r.CustomerName != "" || r.AcceptedWorkerName != "" {
		t.Errorf("dangling references should resolve to empty names, got %q/%q", r.CustomerName, r.AcceptedWorkerName)
	}
	if r.InterestedWorkerIDs == nil || r.QuoteOffers == nil {
		t.Error("array fields must read as empty collections, not nil")
	}
	if view.Workers == nil || view.Customers == nil || view.Reviews == nil {
		t.Error("empty sections must be empty slices, not nil")
	}
}

func TestBuildOverviewWorkerDefaults(t *testing.T) {
	workers := []models.WorkerProfile{
		{ID: 1, UserID: 2, User: models.User{ID: 2, FullName: "Meena", IsActive: false}},
	}

	view := BuildOverview(workers, nil, nil, nil)

	w := view.Workers[0]
	if w.Categories == nil || w.Skills == nil {
		t.Error("nil arrays must project as empty slices")
	}
	if w.PromoPosterURL != "" {
		t.Errorf("missing poster should project as empty string, got %q", w.PromoPosterURL)
	}
	if w.Active {
		t.Error("inactive user must project as inactive worker")
	}
}

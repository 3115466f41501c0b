package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"service-marketplace-server/apperrors"
	"service-marketplace-server/models"
)

const (
	testCustomerID  = uint(10)
	testWorkerID    = uint(20)
	otherWorkerID   = uint(21)
	otherCustomerID = uint(11)
)

func openRequest() *models.ServiceRequest {
	return &models.ServiceRequest{
		ID:         1,
		Status:     models.StatusOpen,
		Category:   models.CategoryPlumbing,
		Title:      "Bathroom tap leaking",
		Budget:     800,
		Urgency:    models.UrgencyMedium,
		CustomerID: testCustomerID,
	}
}

func requestAt(status models.ServiceRequestStatus) *models.ServiceRequest {
	req := openRequest()
	req.Status = status
	worker := testWorkerID
	req.AcceptedWorkerID = &worker
	return req
}

func TestExpressInterestIdempotent(t *testing.T) {
	req := openRequest()

	if err := applyExpressInterest(req, testWorkerID); err != nil {
		t.Fatalf("first interest failed: %v", err)
	}
	if err := applyExpressInterest(req, testWorkerID); err != nil {
		t.Fatalf("repeated interest should be a no-op, got: %v", err)
	}
	if len(req.InterestedWorkerIDs) != 1 {
		t.Fatalf("expected 1 interested worker, got %d", len(req.InterestedWorkerIDs))
	}

	if err := applyExpressInterest(req, otherWorkerID); err != nil {
		t.Fatalf("second worker interest failed: %v", err)
	}
	if len(req.InterestedWorkerIDs) != 2 {
		t.Fatalf("expected 2 interested workers, got %d", len(req.InterestedWorkerIDs))
	}
}

func TestExpressInterestWrongStatus(t *testing.T) {
	req := requestAt(models.StatusWorkScheduled)
	err := applyExpressInterest(req, testWorkerID)
	if !errors.Is(err, apperrors.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
}

func TestSubmitQuoteOfferUpsert(t *testing.T) {
	req := openRequest()
	now := time.Now()

	if err := applySubmitQuoteOffer(req, testWorkerID, 500, "first pass", now); err != nil {
		t.Fatalf("first offer failed: %v", err)
	}
	if err := applySubmitQuoteOffer(req, otherWorkerID, 700, "", now); err != nil {
		t.Fatalf("second worker offer failed: %v", err)
	}
	// Resubmission replaces the worker's live offer
	if err := applySubmitQuoteOffer(req, testWorkerID, 450, "revised", now.Add(time.Minute)); err != nil {
		t.Fatalf("revised offer failed: %v", err)
	}

	if len(req.QuoteOffers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(req.QuoteOffers))
	}
	offer, ok := req.QuoteOffers.FindByWorker(testWorkerID)
	if !ok {
		t.Fatal("offer for worker not found")
	}
	if offer.Amount != 450 || offer.Notes != "revised" {
		t.Fatalf("expected revised offer to win, got amount=%v notes=%q", offer.Amount, offer.Notes)
	}
	if !req.HasInterestedWorker(testWorkerID) || !req.HasInterestedWorker(otherWorkerID) {
		t.Fatal("offering should record interest")
	}
}

func TestSubmitQuoteOfferInvalidAmounts(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{"negative", -1},
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := openRequest()
			err := applySubmitQuoteOffer(req, testWorkerID, tt.amount, "", time.Now())
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if len(req.QuoteOffers) != 0 {
				t.Fatal("rejected offer must not be recorded")
			}
		})
	}
}

func TestSelectWorker(t *testing.T) {
	req := openRequest()

	if err := applySelectWorker(req, testCustomerID, testWorkerID); err != nil {
		t.Fatalf("select worker failed: %v", err)
	}
	if req.Status != models.StatusInspectionPendingWorkerProposal {
		t.Fatalf("expected inspection_pending_worker_proposal, got %s", req.Status)
	}
	if req.AcceptedWorkerID == nil || *req.AcceptedWorkerID != testWorkerID {
		t.Fatal("accepted worker not set")
	}
	if !req.HasInterestedWorker(testWorkerID) {
		t.Fatal("selection should record interest")
	}

	// A second selection must fail: the request already left open
	if err := applySelectWorker(req, testCustomerID, otherWorkerID); !errors.Is(err, apperrors.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure on re-selection, got %v", err)
	}
	if *req.AcceptedWorkerID != testWorkerID {
		t.Fatal("accepted worker must not change")
	}
}

func TestSelectWorkerWrongCustomer(t *testing.T) {
	req := openRequest()
	err := applySelectWorker(req, otherCustomerID, testWorkerID)
	if !errors.Is(err, apperrors.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure for non-owner, got %v", err)
	}
	if req.Status != models.StatusOpen {
		t.Fatal("status must not change on rejected transition")
	}
}

func TestChooseOffer(t *testing.T) {
	req := openRequest()
	now := time.Now()
	if err := applySubmitQuoteOffer(req, testWorkerID, 650, "full rewire", now); err != nil {
		t.Fatalf("offer failed: %v", err)
	}

	if err := applyChooseOffer(req, testCustomerID, testWorkerID); err != nil {
		t.Fatalf("choose offer failed: %v", err)
	}
	if req.Status != models.StatusQuotePendingApproval {
		t.Fatalf("expected quote_pending_approval, got %s", req.Status)
	}
	if req.AcceptedWorkerID == nil || *req.AcceptedWorkerID != testWorkerID {
		t.Fatal("accepted worker not set")
	}
	if req.Quote.Amount == nil || *req.Quote.Amount != 650 {
		t.Fatalf("offer amount not copied into quote: %+v", req.Quote)
	}
	if req.Quote.Notes != "full rewire" {
		t.Fatalf("offer notes not copied into quote: %q", req.Quote.Notes)
	}
	if req.Quote.SubmittedAt == nil || !req.Quote.SubmittedAt.Equal(now) {
		t.Fatal("offer timestamp not copied into quote")
	}
	// The ledger keeps the offer
	if _, ok := req.QuoteOffers.FindByWorker(testWorkerID); !ok {
		t.Fatal("chosen offer must stay in the ledger")
	}
}

func TestChooseOfferMissing(t *testing.T) {
	req := openRequest()
	err := applyChooseOffer(req, testCustomerID, testWorkerID)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for absent offer, got %v", err)
	}
}

func TestCustomerConfirmWorker(t *testing.T) {
	req := requestAt(models.StatusPendingCustomerConfirmation)
	if err := applyCustomerConfirmWorker(req, testCustomerID); err != nil {
		t.Fatalf("confirm worker failed: %v", err)
	}
	if req.Status != models.StatusInspectionPendingWorkerProposal {
		t.Fatalf("expected inspection_pending_worker_proposal, got %s", req.Status)
	}
}

func TestWorkerTransitionsRejectUnassignedWorker(t *testing.T) {
	now := time.Now()
	slot := now.Add(24 * time.Hour)

	tests := []struct {
		name   string
		status models.ServiceRequestStatus
		apply  func(*models.ServiceRequest) error
	}{
		{"propose inspection", models.StatusInspectionPendingWorkerProposal, func(r *models.ServiceRequest) error {
			return applyProposeInspection(r, otherWorkerID, slot, now)
		}},
		{"complete inspection", models.StatusInspectionScheduled, func(r *models.ServiceRequest) error {
			return applyWorkerCompleteInspection(r, otherWorkerID, now)
		}},
		{"submit quote", models.StatusAwaitingQuote, func(r *models.ServiceRequest) error {
			return applySubmitQuote(r, otherWorkerID, 100, "", now)
		}},
		{"schedule work", models.StatusWorkPendingWorkerSchedule, func(r *models.ServiceRequest) error {
			return applyScheduleWork(r, otherWorkerID, slot, now)
		}},
		{"complete work", models.StatusWorkScheduled, func(r *models.ServiceRequest) error {
			return applyWorkerCompleteWork(r, otherWorkerID, now)
		}},
		{"mark payment", models.StatusPaymentPending, func(r *models.ServiceRequest) error {
			return applyMarkPayment(r, otherWorkerID, models.PaymentStatusPaid, now)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestAt(tt.status)
			if err := tt.apply(req); !errors.Is(err, apperrors.ErrPreconditionFailed) {
				t.Fatalf("expected precondition failure, got %v", err)
			}
			if req.Status != tt.status {
				t.Fatal("status must not change on rejected transition")
			}
		})
	}
}

func TestCustomerTransitionsRejectWrongStatus(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		apply func(*models.ServiceRequest) error
	}{
		{"confirm worker", func(r *models.ServiceRequest) error {
			return applyCustomerConfirmWorker(r, testCustomerID)
		}},
		{"confirm inspection", func(r *models.ServiceRequest) error {
			return applyCustomerConfirmInspection(r, testCustomerID, now)
		}},
		{"confirm inspection completed", func(r *models.ServiceRequest) error {
			return applyCustomerConfirmInspectionCompleted(r, testCustomerID, now)
		}},
		{"approve quote", func(r *models.ServiceRequest) error {
			return applyApproveQuote(r, testCustomerID, now)
		}},
		{"confirm work schedule", func(r *models.ServiceRequest) error {
			return applyCustomerConfirmWorkSchedule(r, testCustomerID, now)
		}},
		{"confirm work completed", func(r *models.ServiceRequest) error {
			return applyCustomerConfirmWorkCompleted(r, testCustomerID, now)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// completed is terminal; nothing applies from there
			req := requestAt(models.StatusCompleted)
			if err := tt.apply(req); !errors.Is(err, apperrors.ErrPreconditionFailed) {
				t.Fatalf("expected precondition failure, got %v", err)
			}
		})
	}
}

func TestMarkPaymentPendingKeepsStatus(t *testing.T) {
	req := requestAt(models.StatusPaymentPending)
	now := time.Now()

	if err := applyMarkPayment(req, testWorkerID, models.PaymentStatusPending, now); err != nil {
		t.Fatalf("mark pending failed: %v", err)
	}
	if req.Status != models.StatusPaymentPending {
		t.Fatalf("marking pending must keep payment_pending, got %s", req.Status)
	}
	if req.Payment.Status != models.PaymentStatusPending {
		t.Fatalf("payment record not updated: %+v", req.Payment)
	}

	if err := applyMarkPayment(req, testWorkerID, models.PaymentStatusPaid, now); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if req.Status != models.StatusCompleted {
		t.Fatalf("marking paid must complete the request, got %s", req.Status)
	}
}

func TestMarkPaymentInvalidStatus(t *testing.T) {
	req := requestAt(models.StatusPaymentPending)
	err := applyMarkPayment(req, testWorkerID, "refunded", time.Now())
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

// TestFullLifecycle drives one request through every happy-path transition
// and checks the status and timestamps at each step.
func TestFullLifecycle(t *testing.T) {
	req := openRequest()
	now := time.Now()
	inspectionSlot := now.Add(48 * time.Hour)
	workSlot := now.Add(96 * time.Hour)

	if err := applyExpressInterest(req, testWorkerID); err != nil {
		t.Fatalf("express interest: %v", err)
	}
	if err := applySubmitQuoteOffer(req, testWorkerID, 900, "with materials", now); err != nil {
		t.Fatalf("submit offer: %v", err)
	}
	if err := applySelectWorker(req, testCustomerID, testWorkerID); err != nil {
		t.Fatalf("select worker: %v", err)
	}
	if err := applyProposeInspection(req, testWorkerID, inspectionSlot, now); err != nil {
		t.Fatalf("propose inspection: %v", err)
	}
	if req.Inspection.ScheduledFor == nil || !req.Inspection.ScheduledFor.Equal(inspectionSlot) {
		t.Fatal("inspection slot not recorded")
	}
	if err := applyCustomerConfirmInspection(req, testCustomerID, now); err != nil {
		t.Fatalf("confirm inspection: %v", err)
	}
	if err := applyWorkerCompleteInspection(req, testWorkerID, now); err != nil {
		t.Fatalf("complete inspection: %v", err)
	}
	if err := applyCustomerConfirmInspectionCompleted(req, testCustomerID, now); err != nil {
		t.Fatalf("confirm inspection completed: %v", err)
	}
	if req.Status != models.StatusAwaitingQuote {
		t.Fatalf("expected awaiting_quote, got %s", req.Status)
	}
	if err := applySubmitQuote(req, testWorkerID, 1100, "parts needed", now); err != nil {
		t.Fatalf("submit quote: %v", err)
	}
	if req.Quote.Amount == nil || *req.Quote.Amount != 1100 {
		t.Fatal("post-inspection quote must replace the offer-derived quote")
	}
	if err := applyApproveQuote(req, testCustomerID, now); err != nil {
		t.Fatalf("approve quote: %v", err)
	}
	if err := applyScheduleWork(req, testWorkerID, workSlot, now); err != nil {
		t.Fatalf("schedule work: %v", err)
	}
	if err := applyCustomerConfirmWorkSchedule(req, testCustomerID, now); err != nil {
		t.Fatalf("confirm work schedule: %v", err)
	}
	if err := applyWorkerCompleteWork(req, testWorkerID, now); err != nil {
		t.Fatalf("complete work: %v", err)
	}
	if err := applyCustomerConfirmWorkCompleted(req, testCustomerID, now); err != nil {
		t.Fatalf("confirm work completed: %v", err)
	}
	if req.Status != models.StatusPaymentPending {
		t.Fatalf("expected payment_pending, got %s", req.Status)
	}
	if req.Payment.Status != models.PaymentStatusPending {
		t.Fatal("payment record must initialize as pending")
	}
	if err := applyMarkPayment(req, testWorkerID, models.PaymentStatusPaid, now); err != nil {
		t.Fatalf("mark payment: %v", err)
	}
	if req.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", req.Status)
	}
	if req.Payment.Status != models.PaymentStatusPaid {
		t.Fatal("payment record must read paid")
	}

	// Inspection and work sub-records carry every milestone
	if req.Inspection.CustomerConfirmedAt == nil ||
		req.Inspection.CompletedByWorkerAt == nil ||
		req.Inspection.CompletedConfirmedByCustomerAt == nil {
		t.Fatalf("inspection milestones missing: %+v", req.Inspection)
	}
	if req.Work.ScheduledFor == nil || !req.Work.ScheduledFor.Equal(workSlot) {
		t.Fatal("work slot not recorded")
	}
	if req.Work.ConfirmedByCustomerAt == nil ||
		req.Work.CompletedByWorkerAt == nil ||
		req.Work.CompletedConfirmedByCustomerAt == nil {
		t.Fatalf("work milestones missing: %+v", req.Work)
	}
}

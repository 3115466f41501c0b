package services

import (
	"fmt"
	"math"
	"time"

	"service-marketplace-server/apperrors"
	"service-marketplace-server/models"
)

// The transition functions below are the single authority over
// ServiceRequest.Status. Each one validates the current status and the
// acting party, applies its effect, and advances the status. They are pure
// over the in-memory row; persistence and worker-active checks happen in
// LifecycleService.

func requireStatus(req *models.ServiceRequest, want models.ServiceRequestStatus) error {
	if req.Status != want {
		return apperrors.PreconditionFailed(fmt.Sprintf("request is %s, expected %s", req.Status, want))
	}
	return nil
}

func requireOwner(req *models.ServiceRequest, customerID uint) error {
	if req.CustomerID != customerID {
		return apperrors.PreconditionFailed("request does not belong to this customer")
	}
	return nil
}

func requireAcceptedWorker(req *models.ServiceRequest, workerID uint) error {
	if req.AcceptedWorkerID == nil || *req.AcceptedWorkerID != workerID {
		return apperrors.PreconditionFailed("worker is not assigned to this request")
	}
	return nil
}

func validateAmount(amount float64, field string) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return apperrors.InvalidInput(fmt.Sprintf("%s must be a finite number >= 0", field))
	}
	return nil
}

// applyExpressInterest appends the worker to the interested set. Re-adding
// an existing id is the one explicitly idempotent operation.
func applyExpressInterest(req *models.ServiceRequest, workerID uint) error {
	if err := requireStatus(req, models.StatusOpen); err != nil {
		return err
	}
	req.AddInterestedWorker(workerID)
	return nil
}

// applySubmitQuoteOffer upserts the worker's live offer (last write wins)
// and records interest as a side effect.
func applySubmitQuoteOffer(req *models.ServiceRequest, workerID uint, amount float64, notes string, now time.Time) error {
	if err := requireStatus(req, models.StatusOpen); err != nil {
		return err
	}
	if err := validateAmount(amount, "offer amount"); err != nil {
		return err
	}
	req.AddInterestedWorker(workerID)
	req.QuoteOffers = req.QuoteOffers.Upsert(models.QuoteOffer{
		WorkerID:    workerID,
		Amount:      amount,
		Notes:       notes,
		SubmittedAt: now,
	})
	return nil
}

// applySelectWorker assigns the worker directly, skipping the customer
// confirmation status, and moves to the inspection phase.
func applySelectWorker(req *models.ServiceRequest, customerID, workerID uint) error {
	if err := requireOwner(req, customerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusOpen); err != nil {
		return err
	}
	req.AcceptedWorkerID = &workerID
	req.AddInterestedWorker(workerID)
	req.Status = models.StatusInspectionPendingWorkerProposal
	return nil
}

// applyChooseOffer materializes the chosen offer into the authoritative
// quote. The ledger keeps all offers; it is a nomination record, not an
// exclusive resource.
func applyChooseOffer(req *models.ServiceRequest, customerID, workerID uint) error {
	if err := requireOwner(req, customerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusOpen); err != nil {
		return err
	}
	offer, ok := req.QuoteOffers.FindByWorker(workerID)
	if !ok {
		return apperrors.NotFound("quote offer")
	}
	req.AcceptedWorkerID = &workerID
	amount := offer.Amount
	submittedAt := offer.SubmittedAt
	req.Quote = models.QuoteInfo{
		Amount:      &amount,
		Notes:       offer.Notes,
		SubmittedAt: &submittedAt,
	}
	req.Status = models.StatusQuotePendingApproval
	return nil
}

func applyCustomerConfirmWorker(req *models.ServiceRequest, customerID uint) error {
	if err := requireOwner(req, customerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusPendingCustomerConfirmation); err != nil {
		return err
	}
	req.Status = models.StatusInspectionPendingWorkerProposal
	return nil
}

func applyProposeInspection(req *models.ServiceRequest, workerID uint, when, now time.Time) error {
	if err := requireAcceptedWorker(req, workerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusInspectionPendingWorkerProposal); err != nil {
		return err
	}
	req.Inspection.ProposedAt = &now
	req.Inspection.ScheduledFor = &when
	req.Status = models.StatusInspectionPendingCustomerConfirm
	return nil
}

func applyCustomerConfirmInspection(req *models.ServiceRequest, customerID uint, now time.Time) error {
	if err := requireOwner(req, customerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusInspectionPendingCustomerConfirm); err != nil {
		return err
	}
	req.Inspection.CustomerConfirmedAt = &now
	req.Status = models.StatusInspectionScheduled
	return nil
}

func applyWorkerCompleteInspection(req *models.ServiceRequest, workerID uint, now time.Time) error {
	if err := requireAcceptedWorker(req, workerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusInspectionScheduled); err != nil {
		return err
	}
	req.Inspection.CompletedByWorkerAt = &now
	req.Status = models.StatusInspectionCompletedPendingConfirm
	return nil
}

func applyCustomerConfirmInspectionCompleted(req *models.ServiceRequest, customerID uint, now time.Time) error {
	if err := requireOwner(req, customerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusInspectionCompletedPendingConfirm); err != nil {
		return err
	}
	req.Inspection.CompletedConfirmedByCustomerAt = &now
	req.Status = models.StatusAwaitingQuote
	return nil
}

func applySubmitQuote(req *models.ServiceRequest, workerID uint, amount float64, notes string, now time.Time) error {
	if err := requireAcceptedWorker(req, workerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusAwaitingQuote); err != nil {
		return err
	}
	if err := validateAmount(amount, "quote amount"); err != nil {
		return err
	}
	req.Quote = models.QuoteInfo{
		Amount:      &amount,
		Notes:       notes,
		SubmittedAt: &now,
	}
	req.Status = models.StatusQuotePendingApproval
	return nil
}

func applyApproveQuote(req *models.ServiceRequest, customerID uint, now time.Time) error {
	if err := requireOwner(req, customerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusQuotePendingApproval); err != nil {
		return err
	}
	req.Quote.ApprovedAt = &now
	req.Status = models.StatusWorkPendingWorkerSchedule
	return nil
}

func applyScheduleWork(req *models.ServiceRequest, workerID uint, when, now time.Time) error {
	if err := requireAcceptedWorker(req, workerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusWorkPendingWorkerSchedule); err != nil {
		return err
	}
	req.Work.ScheduledFor = &when
	req.Work.ScheduledByWorkerAt = &now
	req.Status = models.StatusWorkPendingCustomerConfirmation
	return nil
}

func applyCustomerConfirmWorkSchedule(req *models.ServiceRequest, customerID uint, now time.Time) error {
	if err := requireOwner(req, customerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusWorkPendingCustomerConfirmation); err != nil {
		return err
	}
	req.Work.ConfirmedByCustomerAt = &now
	req.Status = models.StatusWorkScheduled
	return nil
}

func applyWorkerCompleteWork(req *models.ServiceRequest, workerID uint, now time.Time) error {
	if err := requireAcceptedWorker(req, workerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusWorkScheduled); err != nil {
		return err
	}
	req.Work.CompletedByWorkerAt = &now
	req.Status = models.StatusWorkCompletedPendingConfirm
	return nil
}

func applyCustomerConfirmWorkCompleted(req *models.ServiceRequest, customerID uint, now time.Time) error {
	if err := requireOwner(req, customerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusWorkCompletedPendingConfirm); err != nil {
		return err
	}
	req.Work.CompletedConfirmedByCustomerAt = &now
	req.Payment = models.PaymentInfo{
		Status:   models.PaymentStatusPending,
		MarkedAt: &now,
	}
	req.Status = models.StatusPaymentPending
	return nil
}

// applyMarkPayment records the payment marker. Marking paid is the terminal
// transition; marking pending leaves the status unchanged.
func applyMarkPayment(req *models.ServiceRequest, workerID uint, paymentStatus string, now time.Time) error {
	if err := requireAcceptedWorker(req, workerID); err != nil {
		return err
	}
	if err := requireStatus(req, models.StatusPaymentPending); err != nil {
		return err
	}
	if paymentStatus != models.PaymentStatusPending && paymentStatus != models.PaymentStatusPaid {
		return apperrors.InvalidInput("payment status must be pending or paid")
	}
	req.Payment = models.PaymentInfo{
		Status:   paymentStatus,
		MarkedAt: &now,
	}
	if paymentStatus == models.PaymentStatusPaid {
		req.Status = models.StatusCompleted
	}
	return nil
}

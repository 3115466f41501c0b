package models

import (
	"testing"
	"time"
)

func TestQuoteOfferListUpsert(t *testing.T) {
	var offers QuoteOfferList

	offers = offers.Upsert(QuoteOffer{WorkerID: 1, Amount: 500, SubmittedAt: time.Now()})
	offers = offers.Upsert(QuoteOffer{WorkerID: 2, Amount: 700, SubmittedAt: time.Now()})
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}

	offers = offers.Upsert(QuoteOffer{WorkerID: 1, Amount: 450, Notes: "revised", SubmittedAt: time.Now()})
	if len(offers) != 2 {
		t.Fatalf("upsert must replace, not append; got %d offers", len(offers))
	}

	offer, ok := offers.FindByWorker(1)
	if !ok {
		t.Fatal("offer for worker 1 not found")
	}
	if offer.Amount != 450 || offer.Notes != "revised" {
		t.Fatalf("latest offer must win: %+v", offer)
	}

	if _, ok := offers.FindByWorker(3); ok {
		t.Fatal("found an offer that was never submitted")
	}
}

func TestQuoteOfferListScanRoundTrip(t *testing.T) {
	submitted := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	original := QuoteOfferList{
		{WorkerID: 7, Amount: 1200.50, Notes: "includes parts", SubmittedAt: submitted},
	}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var decoded QuoteOfferList
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(decoded) != 1 {
		t.Fatalf("expected 1 offer after round trip, got %d", len(decoded))
	}
	if decoded[0].WorkerID != 7 || decoded[0].Amount != 1200.50 || decoded[0].Notes != "includes parts" {
		t.Fatalf("offer fields lost in round trip: %+v", decoded[0])
	}
	if !decoded[0].SubmittedAt.Equal(submitted) {
		t.Fatalf("timestamp lost in round trip: %v", decoded[0].SubmittedAt)
	}
}

func TestInspectionInfoScanNull(t *testing.T) {
	var info InspectionInfo
	if err := info.Scan(nil); err != nil {
		t.Fatalf("scanning NULL must not fail: %v", err)
	}
	if info.ProposedAt != nil {
		t.Fatal("NULL column must leave the zero value")
	}
}

func TestAddInterestedWorker(t *testing.T) {
	req := ServiceRequest{}

	req.AddInterestedWorker(4)
	req.AddInterestedWorker(4)
	req.AddInterestedWorker(5)

	if len(req.InterestedWorkerIDs) != 2 {
		t.Fatalf("expected 2 distinct workers, got %v", req.InterestedWorkerIDs)
	}
	if !req.HasInterestedWorker(4) || !req.HasInterestedWorker(5) {
		t.Fatal("interest lost")
	}
	if req.HasInterestedWorker(6) {
		t.Fatal("phantom interest")
	}
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range AllCategories() {
		if !IsValidCategory(c) {
			t.Errorf("category %q should be valid", c)
		}
	}
	if IsValidCategory("Gardening") {
		t.Error("unknown category accepted")
	}
	if IsValidCategory("") {
		t.Error("empty category accepted")
	}
}

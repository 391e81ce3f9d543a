package model_test

import (
	"testing"
	"time"

	"github.com/kontorapp/kontor/fixtures"
	"github.com/kontorapp/kontor/model"

	"github.com/shopspring/decimal"
)

func quoteItems() []model.QuoteItem {
	return []model.QuoteItem{
		{Description: "Konzept", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(800)},
		{Description: "Umsetzung", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(120)},
	}
}

func TestCreateQuote(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	q := &model.Quote{
		CustomerID: data.Customer.ID,
		IssueDate:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.CreateQuote(q, quoteItems()); err != nil {
		t.Fatalf("create quote: %v", err)
	}

	if want := "OFF-2025-001"; q.QuoteNumber != want {
		t.Errorf("quote number = %q, want %q", q.QuoteNumber, want)
	}
	if q.Status != model.QuoteStatusDraft {
		t.Errorf("status = %q, want draft", q.Status)
	}
	if want := "2000"; q.Subtotal.String() != want {
		t.Errorf("subtotal = %s, want %s", q.Subtotal, want)
	}
	if want := "162"; q.TaxAmount.String() != want {
		t.Errorf("tax = %s, want %s", q.TaxAmount, want)
	}
	if want := "2162"; q.TotalAmount.String() != want {
		t.Errorf("total = %s, want %s", q.TotalAmount, want)
	}
}

func TestUpdateQuoteReplacesItems(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	q := &model.Quote{CustomerID: data.Customer.ID, IssueDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}
	if err := store.CreateQuote(q, quoteItems()); err != nil {
		t.Fatalf("create quote: %v", err)
	}

	q.Status = model.QuoteStatusAccepted
	newItems := []model.QuoteItem{
		{Description: "Pauschal", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5000)},
	}
	if err := store.UpdateQuote(q, newItems); err != nil {
		t.Fatalf("update quote: %v", err)
	}

	reloaded, err := store.LoadQuote(q.ID)
	if err != nil {
		t.Fatalf("load quote: %v", err)
	}
	if reloaded.Status != model.QuoteStatusAccepted {
		t.Errorf("status = %q, want accepted", reloaded.Status)
	}
	if len(reloaded.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(reloaded.Items))
	}
	if want := "5000"; reloaded.Subtotal.String() != want {
		t.Errorf("subtotal = %s, want %s", reloaded.Subtotal, want)
	}
}

func TestUpdateQuoteNilItemsKeepsLines(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	q := &model.Quote{CustomerID: data.Customer.ID, IssueDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}
	if err := store.CreateQuote(q, quoteItems()); err != nil {
		t.Fatalf("create quote: %v", err)
	}

	// status-only update: the stored lines must survive exactly once
	q.Status = model.QuoteStatusSent
	if err := store.UpdateQuote(q, nil); err != nil {
		t.Fatalf("update quote: %v", err)
	}

	reloaded, err := store.LoadQuote(q.ID)
	if err != nil {
		t.Fatalf("load quote: %v", err)
	}
	if reloaded.Status != model.QuoteStatusSent {
		t.Errorf("status = %q, want sent", reloaded.Status)
	}
	if len(reloaded.Items) != 2 {
		t.Fatalf("expected 2 items kept, got %d", len(reloaded.Items))
	}
	if want := "2000"; reloaded.Subtotal.String() != want {
		t.Errorf("subtotal = %s, want %s", reloaded.Subtotal, want)
	}
}

func TestDeleteQuoteRemovesItems(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	q := &model.Quote{CustomerID: data.Customer.ID}
	if err := store.CreateQuote(q, quoteItems()); err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if err := store.DeleteQuote(q.ID); err != nil {
		t.Fatalf("delete quote: %v", err)
	}
	if _, err := store.LoadQuote(q.ID); err == nil {
		t.Error("quote should be gone")
	}
}

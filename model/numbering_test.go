package model_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/kontorapp/kontor/fixtures"
	"github.com/kontorapp/kontor/model"
)

func TestDocumentNumbersIndependentPerType(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)
	issue := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	inv := fixtures.Invoice(fixtures.WithInvoiceCustomerID(data.Customer.ID))
	inv.IssueDate = issue
	if err := store.CreateInvoice(inv, fixtures.SampleItems()); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	quote := &model.Quote{CustomerID: data.Customer.ID, IssueDate: issue}
	if err := store.CreateQuote(quote, nil); err != nil {
		t.Fatalf("create quote: %v", err)
	}

	if inv.InvoiceNumber != "RE-2025-001" {
		t.Errorf("invoice number = %q, want RE-2025-001", inv.InvoiceNumber)
	}
	// quotes start their own counter, invoices do not advance it
	if quote.QuoteNumber != "OFF-2025-001" {
		t.Errorf("quote number = %q, want OFF-2025-001", quote.QuoteNumber)
	}
}

func TestDocumentNumbersResetPerYear(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	first := fixtures.Invoice(fixtures.WithInvoiceCustomerID(data.Customer.ID))
	first.IssueDate = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	if err := store.CreateInvoice(first, fixtures.SampleItems()); err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	second := fixtures.Invoice(fixtures.WithInvoiceCustomerID(data.Customer.ID))
	second.IssueDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := store.CreateInvoice(second, fixtures.SampleItems()); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if first.InvoiceNumber != "RE-2024-001" {
		t.Errorf("first number = %q, want RE-2024-001", first.InvoiceNumber)
	}
	if second.InvoiceNumber != "RE-2025-001" {
		t.Errorf("second number = %q, want RE-2025-001", second.InvoiceNumber)
	}
}

func TestNextDocumentNumberSequence(t *testing.T) {
	store := fixtures.NewTestStore(t)

	year := time.Now().Year()
	for i := 1; i <= 3; i++ {
		number, err := store.NextDocumentNumber(model.DocTypeInvoice)
		if err != nil {
			t.Fatalf("next document number: %v", err)
		}
		want := fmt.Sprintf("RE-%04d-%03d", year, i)
		if number != want {
			t.Errorf("number = %q, want %q", number, want)
		}
	}
}

// Package fixtures provides an in-memory test store and seed data for
// model and controller tests.
package fixtures

import (
	"testing"
	"time"

	"github.com/kontorapp/kontor/model"

	"github.com/shopspring/decimal"
)

// NewTestStore opens a fresh in-memory sqlite store with the full schema
// migrated.
func NewTestStore(t *testing.T) *model.Store {
	t.Helper()
	store, err := model.OpenTestStore()
	if err != nil {
		t.Fatalf("cannot open test store: %v", err)
	}
	return store
}

// TestData is what SeedTestData creates: one customer (Acme AG, 120/h),
// one active project and two unbilled billable time entries (90 and 60
// minutes).
type TestData struct {
	Customer *model.Customer
	Project  *model.Project
	Entries  []*model.TimeEntry
}

// SeedTestData populates the store with a minimal consistent dataset.
func SeedTestData(t *testing.T, store *model.Store) TestData {
	t.Helper()

	customer := &model.Customer{
		CompanyName:   "Acme AG",
		ContactPerson: "Hans Muster",
		City:          "Zürich",
		Country:       "Schweiz",
		HourlyRate:    decimal.NewFromInt(120),
	}
	if err := store.SaveCustomer(customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	project := &model.Project{
		CustomerID: customer.ID,
		Name:       "Website Relaunch",
		Status:     model.ProjectStatusActive,
	}
	if err := store.SaveProject(project); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	data := TestData{Customer: customer, Project: project}
	for _, minutes := range []int{90, 60} {
		entry := &model.TimeEntry{
			CustomerID:      &customer.ID,
			ProjectID:       &project.ID,
			Description:     "Entwicklung",
			StartTime:       &start,
			DurationMinutes: minutes,
			IsBillable:      true,
		}
		if err := store.SaveTimeEntry(entry); err != nil {
			t.Fatalf("seed time entry: %v", err)
		}
		data.Entries = append(data.Entries, entry)
	}
	return data
}

// Item builds an invoice line item for tests.
func Item(description string, quantity, unitPrice float64) model.InvoiceItem {
	return model.InvoiceItem{
		Description: description,
		Quantity:    decimal.NewFromFloat(quantity),
		UnitPrice:   decimal.NewFromFloat(unitPrice),
	}
}

// SampleItems returns three valid line items totalling 1660.
func SampleItems() []model.InvoiceItem {
	return []model.InvoiceItem{
		Item("Entwicklung", 8, 120),
		Item("Beratung", 2, 100),
		Item("Konzept", 1, 500),
	}
}

// InvoiceOption mutates an invoice under construction.
type InvoiceOption func(*model.Invoice)

// WithInvoiceCustomerID sets the owning customer.
func WithInvoiceCustomerID(id uint) InvoiceOption {
	return func(inv *model.Invoice) { inv.CustomerID = id }
}

// WithInvoiceNumber sets an explicit number, bypassing the sequence.
func WithInvoiceNumber(number string) InvoiceOption {
	return func(inv *model.Invoice) { inv.InvoiceNumber = number }
}

// WithInvoiceTaxRate sets the tax rate in percent.
func WithInvoiceTaxRate(rate float64) InvoiceOption {
	return func(inv *model.Invoice) { inv.TaxRate = decimal.NewFromFloat(rate) }
}

// Invoice builds an unsaved draft invoice dated 2025-03-15.
func Invoice(opts ...InvoiceOption) *model.Invoice {
	inv := &model.Invoice{
		IssueDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:    model.InvoiceStatusDraft,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

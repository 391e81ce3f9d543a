package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/kontorapp/kontor/fixtures"
	"github.com/kontorapp/kontor/model"

	"github.com/shopspring/decimal"
)

func TestComputeTotals(t *testing.T) {
	items := []model.InvoiceItem{
		fixtures.Item("Entwicklung", 8, 120),
		fixtures.Item("", 2, 100),         // dropped: empty description
		fixtures.Item("Beratung", 0, 100), // dropped: zero quantity
		fixtures.Item("Spesen", -1, 50),   // dropped: negative quantity
		fixtures.Item("Konzept", 1, 500),
	}
	kept, subtotal, tax, total := model.ComputeTotals(items, decimal.NewFromFloat(8.1))

	if len(kept) != 2 {
		t.Fatalf("expected 2 surviving items, got %d", len(kept))
	}
	if want := "1460"; subtotal.String() != want {
		t.Errorf("subtotal = %s, want %s", subtotal, want)
	}
	if want := "118.26"; tax.String() != want {
		t.Errorf("tax = %s, want %s", tax, want)
	}
	if want := "1578.26"; total.String() != want {
		t.Errorf("total = %s, want %s", total, want)
	}
	for _, it := range kept {
		if !it.Total.Equal(it.Quantity.Mul(it.UnitPrice)) {
			t.Errorf("item %q total %s does not match quantity*price", it.Description, it.Total)
		}
	}
}

func TestCreateInvoiceAssignsNumber(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	inv := fixtures.Invoice(fixtures.WithInvoiceCustomerID(data.Customer.ID))
	if err := store.CreateInvoice(inv, fixtures.SampleItems()); err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if want := "RE-2025-001"; inv.InvoiceNumber != want {
		t.Errorf("invoice number = %q, want %q", inv.InvoiceNumber, want)
	}

	second := fixtures.Invoice(fixtures.WithInvoiceCustomerID(data.Customer.ID))
	if err := store.CreateInvoice(second, fixtures.SampleItems()); err != nil {
		t.Fatalf("create second invoice: %v", err)
	}
	if want := "RE-2025-002"; second.InvoiceNumber != want {
		t.Errorf("second invoice number = %q, want %q", second.InvoiceNumber, want)
	}
}

func TestCreateInvoiceKeepsSuppliedNumber(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	inv := fixtures.Invoice(
		fixtures.WithInvoiceCustomerID(data.Customer.ID),
		fixtures.WithInvoiceNumber("RE-2024-099"),
	)
	if err := store.CreateInvoice(inv, fixtures.SampleItems()); err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if inv.InvoiceNumber != "RE-2024-099" {
		t.Errorf("invoice number = %q, want supplied number kept", inv.InvoiceNumber)
	}
}

func TestCreateInvoiceRecomputesTotals(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	inv := fixtures.Invoice(fixtures.WithInvoiceCustomerID(data.Customer.ID))
	// caller-supplied totals are ignored
	inv.Subtotal = decimal.NewFromInt(999999)
	inv.TotalAmount = decimal.NewFromInt(999999)
	if err := store.CreateInvoice(inv, fixtures.SampleItems()); err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if want := "1660"; inv.Subtotal.String() != want {
		t.Errorf("subtotal = %s, want %s", inv.Subtotal, want)
	}
	if want := "134.46"; inv.TaxAmount.String() != want {
		t.Errorf("tax = %s, want %s", inv.TaxAmount, want)
	}
	if want := "1794.46"; inv.TotalAmount.String() != want {
		t.Errorf("total = %s, want %s", inv.TotalAmount, want)
	}
}

func TestCreateInvoiceFromTimeEntries(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	ids := []uint{data.Entries[0].ID, data.Entries[1].ID}
	issue := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	inv, err := store.CreateInvoiceFromTimeEntries(data.Customer.ID, ids, issue, nil, "", "")
	if err != nil {
		t.Fatalf("create invoice from time entries: %v", err)
	}

	if want := "RE-2025-001"; inv.InvoiceNumber != want {
		t.Errorf("invoice number = %q, want %q", inv.InvoiceNumber, want)
	}
	if len(inv.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(inv.Items))
	}
	// 90min and 60min at the customer's 120/h
	if want := "300"; inv.Subtotal.String() != want {
		t.Errorf("subtotal = %s, want %s", inv.Subtotal, want)
	}
	if want := "8.1"; inv.TaxRate.String() != want {
		t.Errorf("tax rate = %s, want %s", inv.TaxRate, want)
	}
	if want := "24.3"; inv.TaxAmount.String() != want {
		t.Errorf("tax = %s, want %s", inv.TaxAmount, want)
	}
	if want := "324.3"; inv.TotalAmount.String() != want {
		t.Errorf("total = %s, want %s", inv.TotalAmount, want)
	}
	if inv.PaymentTerms != model.DefaultPaymentTerms {
		t.Errorf("payment terms = %q, want default", inv.PaymentTerms)
	}

	for _, id := range ids {
		entry, err := store.LoadTimeEntry(id)
		if err != nil {
			t.Fatalf("load time entry %d: %v", id, err)
		}
		if !entry.IsBilled {
			t.Errorf("time entry %d not flagged billed", id)
		}
	}
}

func TestCreateInvoiceFromTimeEntriesUsesEntryRate(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	rate := decimal.NewFromInt(200)
	data.Entries[0].HourlyRate = &rate
	if err := store.SaveTimeEntry(data.Entries[0]); err != nil {
		t.Fatalf("save time entry: %v", err)
	}

	inv, err := store.CreateInvoiceFromTimeEntries(data.Customer.ID,
		[]uint{data.Entries[0].ID}, time.Now(), nil, "", "")
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	// 1.5h at the entry's own 200/h, not the customer's 120/h
	if want := "300"; inv.Subtotal.String() != want {
		t.Errorf("subtotal = %s, want %s", inv.Subtotal, want)
	}
}

func TestCreateInvoiceFromTimeEntriesFlagsFilteredIDs(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	// make the second entry non-billable so it produces no invoice line
	data.Entries[1].IsBillable = false
	if err := store.SaveTimeEntry(data.Entries[1]); err != nil {
		t.Fatalf("save time entry: %v", err)
	}

	ids := []uint{data.Entries[0].ID, data.Entries[1].ID}
	inv, err := store.CreateInvoiceFromTimeEntries(data.Customer.ID, ids, time.Now(), nil, "", "")
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if len(inv.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(inv.Items))
	}

	// both requested entries end up flagged, including the filtered one
	for _, id := range ids {
		entry, err := store.LoadTimeEntry(id)
		if err != nil {
			t.Fatalf("load time entry %d: %v", id, err)
		}
		if !entry.IsBilled {
			t.Errorf("time entry %d not flagged billed", id)
		}
	}
}

func TestCreateInvoiceFromTimeEntriesNoBillable(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	for _, e := range data.Entries {
		e.IsBilled = true
		if err := store.SaveTimeEntry(e); err != nil {
			t.Fatalf("save time entry: %v", err)
		}
	}

	_, err := store.CreateInvoiceFromTimeEntries(data.Customer.ID,
		[]uint{data.Entries[0].ID, data.Entries[1].ID}, time.Now(), nil, "", "")
	if !errors.Is(err, model.ErrNoBillableEntries) {
		t.Fatalf("err = %v, want ErrNoBillableEntries", err)
	}
}

func TestUpdateInvoiceReplacesItems(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	inv := fixtures.Invoice(fixtures.WithInvoiceCustomerID(data.Customer.ID))
	if err := store.CreateInvoice(inv, fixtures.SampleItems()); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	newItems := []model.InvoiceItem{fixtures.Item("Wartung", 4, 150)}
	if err := store.UpdateInvoice(inv, newItems); err != nil {
		t.Fatalf("update invoice: %v", err)
	}

	reloaded, err := store.LoadInvoice(inv.ID)
	if err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	if len(reloaded.Items) != 1 {
		t.Fatalf("expected 1 item after replace, got %d", len(reloaded.Items))
	}
	if want := "600"; reloaded.Subtotal.String() != want {
		t.Errorf("subtotal = %s, want %s", reloaded.Subtotal, want)
	}
}

func TestUpdateInvoiceNilItemsKeepsLines(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	inv := fixtures.Invoice(fixtures.WithInvoiceCustomerID(data.Customer.ID))
	if err := store.CreateInvoice(inv, fixtures.SampleItems()); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	inv.Status = model.InvoiceStatusPaid
	if err := store.UpdateInvoice(inv, nil); err != nil {
		t.Fatalf("update invoice: %v", err)
	}

	reloaded, err := store.LoadInvoice(inv.ID)
	if err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	if reloaded.Status != model.InvoiceStatusPaid {
		t.Errorf("status = %q, want paid", reloaded.Status)
	}
	if len(reloaded.Items) != 3 {
		t.Errorf("expected 3 items kept, got %d", len(reloaded.Items))
	}
	if want := "1660"; reloaded.Subtotal.String() != want {
		t.Errorf("subtotal = %s, want %s", reloaded.Subtotal, want)
	}
}

func TestDeleteInvoiceRemovesItems(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	inv, err := store.CreateInvoiceFromTimeEntries(data.Customer.ID,
		[]uint{data.Entries[0].ID}, time.Now(), nil, "", "")
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if err := store.DeleteInvoice(inv.ID); err != nil {
		t.Fatalf("delete invoice: %v", err)
	}

	items, err := store.LoadInvoiceItems(inv.ID)
	if err != nil {
		t.Fatalf("load items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected items deleted, got %d", len(items))
	}

	// the time entry stays billed even though the invoice is gone
	entry, err := store.LoadTimeEntry(data.Entries[0].ID)
	if err != nil {
		t.Fatalf("load time entry: %v", err)
	}
	if !entry.IsBilled {
		t.Error("time entry lost its billed flag on invoice delete")
	}
}

func TestDeleteCustomerRestrictedWhenReferenced(t *testing.T) {
	store := fixtures.NewTestStore(t)
	data := fixtures.SeedTestData(t, store)

	err := store.DeleteCustomer(data.Customer.ID)
	if !errors.Is(err, model.ErrCustomerReferenced) {
		t.Fatalf("err = %v, want ErrCustomerReferenced", err)
	}

	// still loadable afterwards
	if _, err := store.LoadCustomer(data.Customer.ID); err != nil {
		t.Errorf("customer should survive restricted delete: %v", err)
	}
}

func TestDeleteCustomerUnreferenced(t *testing.T) {
	store := fixtures.NewTestStore(t)
	customer := &model.Customer{CompanyName: "Solo GmbH"}
	if err := store.SaveCustomer(customer); err != nil {
		t.Fatalf("save customer: %v", err)
	}
	if err := store.DeleteCustomer(customer.ID); err != nil {
		t.Fatalf("delete customer: %v", err)
	}
}

package model_test

import (
	"testing"
	"time"

	"github.com/kontorapp/kontor/fixtures"
	"github.com/kontorapp/kontor/model"

	"github.com/shopspring/decimal"
)

func seedEntry(t *testing.T, store *model.Store, typ model.EntryType, amount float64, status model.EntryStatus, date time.Time) *model.AccountingEntry {
	t.Helper()
	e := &model.AccountingEntry{
		EntryType: typ,
		Amount:    decimal.NewFromFloat(amount),
		VATRate:   decimal.NewFromFloat(8.1),
		EntryDate: date,
		Status:    status,
	}
	e.FillComputed(false, false)
	if err := store.SaveAccountingEntry(e); err != nil {
		t.Fatalf("save accounting entry: %v", err)
	}
	return e
}

func TestFillComputed(t *testing.T) {
	e := &model.AccountingEntry{
		EntryType: model.EntryTypeIncome,
		Amount:    decimal.NewFromInt(1000),
		VATRate:   decimal.NewFromFloat(8.1),
	}
	e.FillComputed(false, false)
	if want := "81"; e.VATAmount.String() != want {
		t.Errorf("vat = %s, want %s", e.VATAmount, want)
	}
	if want := "1081"; e.TotalAmount.String() != want {
		t.Errorf("total = %s, want %s", e.TotalAmount, want)
	}
}

func TestFillComputedTrustsSuppliedValues(t *testing.T) {
	e := &model.AccountingEntry{
		EntryType: model.EntryTypeExpense,
		Amount:    decimal.NewFromInt(1000),
		VATRate:   decimal.NewFromFloat(8.1),
		VATAmount: decimal.NewFromInt(50),
	}
	e.FillComputed(true, false)
	if want := "50"; e.VATAmount.String() != want {
		t.Errorf("vat = %s, want supplied value kept", e.VATAmount)
	}
	if want := "1050"; e.TotalAmount.String() != want {
		t.Errorf("total = %s, want %s", e.TotalAmount, want)
	}
}

func TestAccountingSummaryConfirmedOnly(t *testing.T) {
	store := fixtures.NewTestStore(t)

	march := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	june := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	seedEntry(t, store, model.EntryTypeIncome, 1000, model.EntryStatusConfirmed, march)
	seedEntry(t, store, model.EntryTypeIncome, 500, model.EntryStatusConfirmed, june)
	seedEntry(t, store, model.EntryTypeExpense, 200, model.EntryStatusConfirmed, june)
	seedEntry(t, store, model.EntryTypeIncome, 9999, model.EntryStatusDraft, june)
	seedEntry(t, store, model.EntryTypeIncome, 9999, model.EntryStatusReconciled, june)
	// different year
	seedEntry(t, store, model.EntryTypeIncome, 9999, model.EntryStatusConfirmed,
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	summary, err := store.AccountingSummary(2025)
	if err != nil {
		t.Fatalf("accounting summary: %v", err)
	}

	if summary.Year != 2025 {
		t.Errorf("year = %d, want 2025", summary.Year)
	}
	if want := "1500"; summary.Income.Amount.String() != want {
		t.Errorf("income amount = %s, want %s", summary.Income.Amount, want)
	}
	if summary.Income.Count != 2 {
		t.Errorf("income count = %d, want 2", summary.Income.Count)
	}
	if want := "200"; summary.Expenses.Amount.String() != want {
		t.Errorf("expense amount = %s, want %s", summary.Expenses.Amount, want)
	}
	if len(summary.Monthly) != 3 {
		t.Fatalf("expected 3 monthly rows, got %d", len(summary.Monthly))
	}
	if summary.Monthly[0].Month != 3 || summary.Monthly[0].EntryType != model.EntryTypeIncome {
		t.Errorf("first monthly row = %+v, want March income", summary.Monthly[0])
	}
}

func TestSeededVATRates(t *testing.T) {
	store := fixtures.NewTestStore(t)

	rates, err := store.LoadVATRates()
	if err != nil {
		t.Fatalf("load vat rates: %v", err)
	}
	if len(rates) != 4 {
		t.Fatalf("expected 4 seeded rates, got %d", len(rates))
	}
	// ordered by percentage descending, default Normalsatz first
	if want := "8.1"; rates[0].RatePercentage.String() != want {
		t.Errorf("top rate = %s, want %s", rates[0].RatePercentage, want)
	}
	if !rates[0].IsDefault {
		t.Error("Normalsatz should be the default")
	}
}

func TestDisableAccountingCategory(t *testing.T) {
	store := fixtures.NewTestStore(t)

	cat := &model.AccountingCategory{Name: "Büro", Type: model.EntryTypeExpense, IsActive: true}
	if err := store.SaveAccountingCategory(cat); err != nil {
		t.Fatalf("save category: %v", err)
	}

	e := seedEntry(t, store, model.EntryTypeExpense, 100, model.EntryStatusDraft, time.Now())
	e.CategoryID = &cat.ID
	if err := store.SaveAccountingEntry(e); err != nil {
		t.Fatalf("save entry: %v", err)
	}

	if err := store.DisableAccountingCategory(cat.ID); err != nil {
		t.Fatalf("disable category: %v", err)
	}

	cats, err := store.LoadAccountingCategories()
	if err != nil {
		t.Fatalf("load categories: %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("disabled category still listed")
	}

	// the entry keeps its category reference
	reloaded, err := store.LoadAccountingEntry(e.ID)
	if err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if reloaded.CategoryID == nil || *reloaded.CategoryID != cat.ID {
		t.Error("entry lost its category reference")
	}
}

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

type EntryStatus string

const (
	EntryStatusDraft      EntryStatus = "draft"
	EntryStatusConfirmed  EntryStatus = "confirmed"
	EntryStatusReconciled EntryStatus = "reconciled"
)

// AccountingEntry is one categorized income or expense row with VAT.
// Only confirmed entries count toward the yearly summary.
type AccountingEntry struct {
	gorm.Model
	EntryType       EntryType       `gorm:"type:text;not null;index"`
	Amount          decimal.Decimal `sql:"type:decimal(20,8);"`
	VATRate         decimal.Decimal `sql:"type:decimal(20,8);"`
	VATAmount       decimal.Decimal `sql:"type:decimal(20,8);"`
	TotalAmount     decimal.Decimal `sql:"type:decimal(20,8);"`
	EntryDate       time.Time       `gorm:"index"`
	Description     string
	ReceiptNumber   string
	CategoryID      *uint
	CustomerID      *uint
	ProjectID       *uint
	ReceiptImageURL string
	Notes           string
	Status          EntryStatus `gorm:"type:text;not null;default:draft;index"`
}

// AccountingCategory groups entries. Categories are never hard-deleted,
// only disabled via IsActive.
type AccountingCategory struct {
	gorm.Model
	Name          string
	Type          EntryType `gorm:"type:text;not null"`
	Color         string
	Description   string
	TaxDeductible bool
	IsActive      bool `gorm:"not null;default:true"`
}

// VATRate is one selectable VAT percentage for the entry form.
type VATRate struct {
	gorm.Model
	CountryCode    string
	RatePercentage decimal.Decimal `sql:"type:decimal(20,8);"`
	Description    string
	IsDefault      bool
}

func validEntryType(t EntryType) bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}

func validEntryStatus(st EntryStatus) bool {
	switch st {
	case EntryStatusDraft, EntryStatusConfirmed, EntryStatusReconciled:
		return true
	}
	return false
}

// FillComputed derives VATAmount and TotalAmount when the caller did not
// supply them. Supplied values are trusted as-is.
func (e *AccountingEntry) FillComputed(vatSupplied, totalSupplied bool) {
	if !vatSupplied {
		e.VATAmount = e.Amount.Mul(e.VATRate).Div(hundred)
	}
	if !totalSupplied {
		e.TotalAmount = e.Amount.Add(e.VATAmount)
	}
}

// SaveAccountingEntry creates or updates an entry.
func (s *Store) SaveAccountingEntry(e *AccountingEntry) error {
	if !validEntryType(e.EntryType) {
		return fmt.Errorf("save accounting entry: invalid entry type %q", e.EntryType)
	}
	if e.Status == "" {
		e.Status = EntryStatusDraft
	}
	if !validEntryStatus(e.Status) {
		return fmt.Errorf("save accounting entry: invalid status %q", e.Status)
	}
	if e.EntryDate.IsZero() {
		e.EntryDate = time.Now()
	}
	return s.db.Save(e).Error
}

// LoadAccountingEntry loads a single entry by id.
func (s *Store) LoadAccountingEntry(id any) (*AccountingEntry, error) {
	e := &AccountingEntry{}
	if err := s.db.First(e, id).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// LoadAllAccountingEntries returns all entries, newest entry date first.
func (s *Store) LoadAllAccountingEntries() ([]*AccountingEntry, error) {
	var entries = make([]*AccountingEntry, 0)
	result := s.db.Order("entry_date DESC").Find(&entries)
	return entries, result.Error
}

// DeleteAccountingEntry removes an entry.
func (s *Store) DeleteAccountingEntry(id uint) error {
	result := s.db.Delete(&AccountingEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SaveAccountingCategory creates or updates a category.
func (s *Store) SaveAccountingCategory(c *AccountingCategory) error {
	if !validEntryType(c.Type) {
		return fmt.Errorf("save accounting category: invalid type %q", c.Type)
	}
	return s.db.Save(c).Error
}

// LoadAccountingCategories returns all active categories.
func (s *Store) LoadAccountingCategories() ([]*AccountingCategory, error) {
	var cats = make([]*AccountingCategory, 0)
	result := s.db.Where("is_active = ?", true).Order("name").Find(&cats)
	return cats, result.Error
}

// DisableAccountingCategory soft-disables a category; entries keep
// pointing at it.
func (s *Store) DisableAccountingCategory(id uint) error {
	result := s.db.Model(&AccountingCategory{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LoadVATRates returns all selectable VAT rates.
func (s *Store) LoadVATRates() ([]*VATRate, error) {
	var rates = make([]*VATRate, 0)
	result := s.db.Order("rate_percentage DESC").Find(&rates)
	return rates, result.Error
}

// SaveVATRate creates or updates a VAT rate.
func (s *Store) SaveVATRate(v *VATRate) error {
	if v.RatePercentage.IsNegative() {
		return errors.New("save vat rate: rate must not be negative")
	}
	return s.db.Save(v).Error
}

// seedVATRates inserts the Swiss defaults on an empty table.
func (s *Store) seedVATRates() error {
	var n int64
	if err := s.db.Model(&VATRate{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	defaults := []VATRate{
		{CountryCode: "CH", RatePercentage: decimal.NewFromFloat(8.1), Description: "Normalsatz", IsDefault: true},
		{CountryCode: "CH", RatePercentage: decimal.NewFromFloat(3.8), Description: "Sondersatz Beherbergung"},
		{CountryCode: "CH", RatePercentage: decimal.NewFromFloat(2.6), Description: "Reduzierter Satz"},
		{CountryCode: "CH", RatePercentage: decimal.Zero, Description: "Keine MwSt"},
	}
	return s.db.Create(&defaults).Error
}

// SummaryTotals is one side (income or expense) of the yearly summary.
type SummaryTotals struct {
	Amount      decimal.Decimal `json:"amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int64           `json:"count"`
}

// MonthlyTotals is one month×type row of the yearly breakdown.
type MonthlyTotals struct {
	Month       int             `json:"month"`
	EntryType   EntryType       `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int64           `json:"count"`
}

// YearlySummary aggregates confirmed entries of the given year. Draft and
// reconciled rows are excluded on purpose: only confirmed counts.
type YearlySummary struct {
	Year     int             `json:"year"`
	Income   SummaryTotals   `json:"income"`
	Expenses SummaryTotals   `json:"expenses"`
	Monthly  []MonthlyTotals `json:"monthly"`
}

func (s *Store) yearExpr() string {
	if s.db.Dialector.Name() == "postgres" {
		return "EXTRACT(YEAR FROM entry_date)::int"
	}
	return "CAST(strftime('%Y', entry_date) AS INTEGER)"
}

func (s *Store) monthExpr() string {
	if s.db.Dialector.Name() == "postgres" {
		return "EXTRACT(MONTH FROM entry_date)::int"
	}
	return "CAST(strftime('%m', entry_date) AS INTEGER)"
}

// AccountingSummary computes the yearly summary over confirmed entries.
func (s *Store) AccountingSummary(year int) (*YearlySummary, error) {
	summary := &YearlySummary{Year: year}

	type totalsRow struct {
		EntryType   EntryType
		Amount      decimal.Decimal
		VATAmount   decimal.Decimal
		TotalAmount decimal.Decimal
		Count       int64
	}
	var rows []totalsRow
	err := s.db.
		Model(&AccountingEntry{}).
		Select("entry_type, COALESCE(SUM(amount), 0) AS amount, COALESCE(SUM(vat_amount), 0) AS vat_amount, COALESCE(SUM(total_amount), 0) AS total_amount, COUNT(*) AS count").
		Where("status = ?", EntryStatusConfirmed).
		Where(s.yearExpr()+" = ?", year).
		Group("entry_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("accounting summary %d: %w", year, err)
	}
	for _, r := range rows {
		t := SummaryTotals{Amount: r.Amount, VATAmount: r.VATAmount, TotalAmount: r.TotalAmount, Count: r.Count}
		switch r.EntryType {
		case EntryTypeIncome:
			summary.Income = t
		case EntryTypeExpense:
			summary.Expenses = t
		}
	}

	var monthly []MonthlyTotals
	err = s.db.
		Model(&AccountingEntry{}).
		Select(s.monthExpr()+" AS month, entry_type, COALESCE(SUM(amount), 0) AS amount, COALESCE(SUM(total_amount), 0) AS total_amount, COUNT(*) AS count").
		Where("status = ?", EntryStatusConfirmed).
		Where(s.yearExpr()+" = ?", year).
		Group("month, entry_type").
		Order("month").
		Scan(&monthly).Error
	if err != nil {
		return nil, fmt.Errorf("accounting summary %d: %w", year, err)
	}
	summary.Monthly = monthly
	return summary, nil
}

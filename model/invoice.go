package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"     // Entwurf
	InvoiceStatusSent      InvoiceStatus = "sent"      // Versendet
	InvoiceStatusPaid      InvoiceStatus = "paid"      // Bezahlt
	InvoiceStatusOverdue   InvoiceStatus = "overdue"   // Überfällig
	InvoiceStatusCancelled InvoiceStatus = "cancelled" // Storniert
)

func validInvoiceStatus(st InvoiceStatus) bool {
	switch st {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Invoice is a billing document. Subtotal/TaxAmount/TotalAmount are always
// recomputed server-side from the items; caller-supplied totals are never
// trusted.
type Invoice struct {
	gorm.Model
	InvoiceNumber string `gorm:"uniqueIndex"`
	CustomerID    uint   `gorm:"index"`
	IssueDate     time.Time
	DueDate       *time.Time
	Status        InvoiceStatus   `gorm:"type:text;not null;default:draft;index"`
	Subtotal      decimal.Decimal `sql:"type:decimal(20,8);"`
	TaxRate       decimal.Decimal `sql:"type:decimal(20,8);"`
	TaxAmount     decimal.Decimal `sql:"type:decimal(20,8);"`
	TotalAmount   decimal.Decimal `sql:"type:decimal(20,8);"`
	PaymentTerms  string
	Notes         string
	Items         []InvoiceItem
}

// InvoiceItem is one line on an invoice. TimeEntryID is set when the line
// was derived from a time entry.
type InvoiceItem struct {
	ID          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	InvoiceID   uint `gorm:"index"`
	TimeEntryID *uint
	Description string
	Quantity    decimal.Decimal `sql:"type:decimal(20,8);"`
	UnitPrice   decimal.Decimal `sql:"type:decimal(20,8);"`
	Total       decimal.Decimal `sql:"type:decimal(20,8);"`
}

// InvoiceWithCustomer is the list row shape with joined customer fields.
type InvoiceWithCustomer struct {
	Invoice
	CompanyName   string
	ContactPerson string
	Email         string
}

// ErrNoBillableEntries is returned when none of the requested time
// entries qualifies for billing.
var ErrNoBillableEntries = errors.New("no billable time entries found")

// ErrInvalidStatus is returned when a document carries a status outside
// its allowed set.
var ErrInvalidStatus = errors.New("invalid status")

var (
	hundred = decimal.NewFromInt(100)
	sixty   = decimal.NewFromInt(60)

	// Swiss standard VAT rate, fixed for the time-entry conversion path.
	DefaultTaxRate = decimal.NewFromFloat(8.1)

	// DefaultPaymentTerms is plain presentation text on the document.
	DefaultPaymentTerms = "30 Tage"
)

// ComputeTotals filters and totals line items. Items with an empty
// description or non-positive quantity are dropped. Each surviving item's
// Total is set to Quantity×UnitPrice; the returned amounts are
// subtotal = Σ totals, tax = subtotal×taxRate/100, total = subtotal+tax.
func ComputeTotals(items []InvoiceItem, taxRate decimal.Decimal) (kept []InvoiceItem, subtotal, taxAmount, total decimal.Decimal) {
	subtotal = decimal.Zero
	kept = make([]InvoiceItem, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Description) == "" || !it.Quantity.IsPositive() {
			continue
		}
		it.Total = it.Quantity.Mul(it.UnitPrice)
		subtotal = subtotal.Add(it.Total)
		kept = append(kept, it)
	}
	taxAmount = subtotal.Mul(taxRate).Div(hundred)
	total = subtotal.Add(taxAmount)
	return kept, subtotal, taxAmount, total
}

// applyTotals recomputes the invoice amounts from the given items and
// stores the surviving items on the invoice.
func (inv *Invoice) applyTotals(items []InvoiceItem) {
	inv.Items, inv.Subtotal, inv.TaxAmount, inv.TotalAmount = ComputeTotals(items, inv.TaxRate)
}

func (inv *Invoice) applyDefaults() {
	if inv.Status == "" {
		inv.Status = InvoiceStatusDraft
	}
	if inv.TaxRate.IsZero() {
		inv.TaxRate = DefaultTaxRate
	}
	if inv.PaymentTerms == "" {
		inv.PaymentTerms = DefaultPaymentTerms
	}
	if inv.IssueDate.IsZero() {
		inv.IssueDate = time.Now()
	}
}

// CreateInvoice persists a manually composed invoice together with its
// line items in one transaction. The invoice number is assigned from the
// per-year sequence unless the caller already supplied one.
func (s *Store) CreateInvoice(inv *Invoice, items []InvoiceItem) error {
	inv.applyDefaults()
	if !validInvoiceStatus(inv.Status) {
		return fmt.Errorf("create invoice: %w: %q", ErrInvalidStatus, inv.Status)
	}
	inv.applyTotals(items)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if inv.InvoiceNumber == "" {
			number, err := nextDocumentNumber(tx, DocTypeInvoice, inv.IssueDate.Year())
			if err != nil {
				return err
			}
			inv.InvoiceNumber = number
		}
		items := inv.Items
		inv.Items = nil
		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		for i := range items {
			items[i].ID = 0
			items[i].InvoiceID = inv.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create invoice items: %w", err)
			}
		}
		inv.Items = items
		return nil
	})
}

// CreateInvoiceFromTimeEntries builds an invoice from the customer's
// unbilled billable time entries among the requested ids.
//
// Per line: hours = duration/60, rate = the entry's own rate or the
// customer's rate as fallback, description copied verbatim. The tax rate
// is fixed at 8.1% on this path. Afterwards EVERY requested id is flagged
// billed, including ids that were filtered out — re-requesting an already
// billed entry is treated as a no-op billing confirmation.
func (s *Store) CreateInvoiceFromTimeEntries(customerID uint, timeEntryIDs []uint, issueDate time.Time, dueDate *time.Time, paymentTerms, notes string) (*Invoice, error) {
	customer, err := s.LoadCustomer(customerID)
	if err != nil {
		return nil, err
	}

	var entries []TimeEntry
	if err := s.db.
		Where("id IN ? AND customer_id = ? AND is_billable = ? AND is_billed = ?",
			timeEntryIDs, customerID, true, false).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load time entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoBillableEntries
	}

	items := make([]InvoiceItem, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		hours := decimal.NewFromInt(int64(e.DurationMinutes)).Div(sixty)
		rate := customer.HourlyRate
		if e.HourlyRate != nil {
			rate = *e.HourlyRate
		}
		entryID := e.ID
		items = append(items, InvoiceItem{
			TimeEntryID: &entryID,
			Description: e.Description,
			Quantity:    hours,
			UnitPrice:   rate,
		})
	}

	inv := &Invoice{
		CustomerID:   customerID,
		IssueDate:    issueDate,
		DueDate:      dueDate,
		Status:       InvoiceStatusDraft,
		TaxRate:      DefaultTaxRate,
		PaymentTerms: paymentTerms,
		Notes:        notes,
	}
	inv.applyDefaults()
	inv.applyTotals(items)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		number, err := nextDocumentNumber(tx, DocTypeInvoice, inv.IssueDate.Year())
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number

		items := inv.Items
		inv.Items = nil
		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		for i := range items {
			items[i].InvoiceID = inv.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("create invoice items: %w", err)
		}
		inv.Items = items

		// Flag all requested ids, not just the ones that produced lines.
		if err := tx.Model(&TimeEntry{}).
			Where("id IN ?", timeEntryIDs).
			Update("is_billed", true).Error; err != nil {
			return fmt.Errorf("mark time entries billed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// UpdateInvoice updates an invoice. When items is non-nil the existing
// line items are replaced wholesale (hard delete + recreate) and the
// totals recomputed from the new set; when items is nil the stored lines
// stay untouched and only the invoice row is updated, with the totals
// recomputed from the stored items so the persisted amounts always match
// the lines.
func (s *Store) UpdateInvoice(inv *Invoice, items []InvoiceItem) error {
	if inv.ID == 0 {
		return fmt.Errorf("update invoice: inv.ID is zero")
	}
	if inv.Status != "" && !validInvoiceStatus(inv.Status) {
		return fmt.Errorf("update invoice: %w: %q", ErrInvalidStatus, inv.Status)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		replace := items != nil
		if replace {
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&InvoiceItem{}).Error; err != nil {
				return fmt.Errorf("delete invoice items: %w", err)
			}
		} else {
			var existing []InvoiceItem
			if err := tx.Where("invoice_id = ?", inv.ID).Order("id").Find(&existing).Error; err != nil {
				return fmt.Errorf("load invoice items: %w", err)
			}
			items = existing
		}
		inv.applyTotals(items)
		kept := inv.Items
		inv.Items = nil

		if err := tx.Model(&Invoice{}).
			Where("id = ?", inv.ID).
			Select("CustomerID", "IssueDate", "DueDate", "Status", "Subtotal",
				"TaxRate", "TaxAmount", "TotalAmount", "PaymentTerms", "Notes").
			Updates(inv).Error; err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}

		if replace {
			for i := range kept {
				kept[i].ID = 0
				kept[i].InvoiceID = inv.ID
			}
			if len(kept) > 0 {
				if err := tx.Omit("ID").Create(&kept).Error; err != nil {
					return fmt.Errorf("recreate invoice items: %w", err)
				}
			}
		}
		inv.Items = kept
		return nil
	})
}

// DeleteInvoice removes an invoice and all its line items. Time entries
// that fed the deleted lines stay billed.
func (s *Store) DeleteInvoice(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&InvoiceItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Invoice{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// LoadInvoice loads an invoice with its line items.
func (s *Store) LoadInvoice(id any) (*Invoice, error) {
	var inv Invoice
	result := s.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("invoice_items.id") }).
		First(&inv, id)
	if err := result.Error; err != nil {
		return nil, fmt.Errorf("load invoice %v: %w", id, err)
	}
	return &inv, nil
}

// LoadInvoiceItems returns the line items of an invoice.
func (s *Store) LoadInvoiceItems(invoiceID uint) ([]InvoiceItem, error) {
	var items []InvoiceItem
	err := s.db.Where("invoice_id = ?", invoiceID).Order("id").Find(&items).Error
	return items, err
}

// ListInvoices returns all invoices with joined customer fields, newest
// first.
func (s *Store) ListInvoices() ([]InvoiceWithCustomer, error) {
	var rows []InvoiceWithCustomer
	err := s.db.
		Table("invoices").
		Select("invoices.*, customers.company_name, customers.contact_person, customers.email").
		Joins("LEFT JOIN customers ON invoices.customer_id = customers.id").
		Where("invoices.deleted_at IS NULL").
		Order("invoices.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

func validQuoteStatus(st QuoteStatus) bool {
	switch st {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted,
		QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// Quote is structurally an invoice sibling: OFF numbering, own status
// set, ValidUntil instead of DueDate, and no time-entry linkage.
type Quote struct {
	gorm.Model
	QuoteNumber     string `gorm:"uniqueIndex"`
	CustomerID      uint   `gorm:"index"`
	IssueDate       time.Time
	ValidUntil      *time.Time
	Status          QuoteStatus     `gorm:"type:text;not null;default:draft;index"`
	Subtotal        decimal.Decimal `sql:"type:decimal(20,8);"`
	TaxRate         decimal.Decimal `sql:"type:decimal(20,8);"`
	TaxAmount       decimal.Decimal `sql:"type:decimal(20,8);"`
	TotalAmount     decimal.Decimal `sql:"type:decimal(20,8);"`
	Notes           string
	TermsConditions string
	Items           []QuoteItem
}

type QuoteItem struct {
	ID          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	QuoteID     uint `gorm:"index"`
	Description string
	Quantity    decimal.Decimal `sql:"type:decimal(20,8);"`
	UnitPrice   decimal.Decimal `sql:"type:decimal(20,8);"`
	Total       decimal.Decimal `sql:"type:decimal(20,8);"`
}

// QuoteWithCustomer is the list row shape with joined customer fields.
type QuoteWithCustomer struct {
	Quote
	CompanyName   string
	ContactPerson string
	Email         string
}

func (q *Quote) applyDefaults() {
	if q.Status == "" {
		q.Status = QuoteStatusDraft
	}
	if q.TaxRate.IsZero() {
		q.TaxRate = DefaultTaxRate
	}
	if q.IssueDate.IsZero() {
		q.IssueDate = time.Now()
	}
}

// quote items share the invoice item filtering and total rules.
func (q *Quote) applyTotals(items []QuoteItem) {
	converted := make([]InvoiceItem, len(items))
	for i, it := range items {
		converted[i] = InvoiceItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	kept, subtotal, tax, total := ComputeTotals(converted, q.TaxRate)
	q.Items = make([]QuoteItem, len(kept))
	for i, it := range kept {
		q.Items[i] = QuoteItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		}
	}
	q.Subtotal, q.TaxAmount, q.TotalAmount = subtotal, tax, total
}

// CreateQuote persists a quote and its line items in one transaction,
// assigning an OFF number unless one was supplied.
func (s *Store) CreateQuote(q *Quote, items []QuoteItem) error {
	q.applyDefaults()
	if !validQuoteStatus(q.Status) {
		return fmt.Errorf("create quote: %w: %q", ErrInvalidStatus, q.Status)
	}
	q.applyTotals(items)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if q.QuoteNumber == "" {
			number, err := nextDocumentNumber(tx, DocTypeQuote, q.IssueDate.Year())
			if err != nil {
				return err
			}
			q.QuoteNumber = number
		}
		items := q.Items
		q.Items = nil
		if err := tx.Create(q).Error; err != nil {
			return fmt.Errorf("create quote: %w", err)
		}
		for i := range items {
			items[i].QuoteID = q.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create quote items: %w", err)
			}
		}
		q.Items = items
		return nil
	})
}

// UpdateQuote updates a quote; non-nil items replace the stored lines
// wholesale, nil items leave the stored lines untouched, and the totals
// are always recomputed server-side.
func (s *Store) UpdateQuote(q *Quote, items []QuoteItem) error {
	if q.ID == 0 {
		return fmt.Errorf("update quote: q.ID is zero")
	}
	if q.Status != "" && !validQuoteStatus(q.Status) {
		return fmt.Errorf("update quote: %w: %q", ErrInvalidStatus, q.Status)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		replace := items != nil
		if replace {
			if err := tx.Where("quote_id = ?", q.ID).Delete(&QuoteItem{}).Error; err != nil {
				return fmt.Errorf("delete quote items: %w", err)
			}
		} else {
			var existing []QuoteItem
			if err := tx.Where("quote_id = ?", q.ID).Order("id").Find(&existing).Error; err != nil {
				return fmt.Errorf("load quote items: %w", err)
			}
			items = existing
		}
		q.applyTotals(items)
		kept := q.Items
		q.Items = nil

		if err := tx.Model(&Quote{}).
			Where("id = ?", q.ID).
			Select("CustomerID", "IssueDate", "ValidUntil", "Status", "Subtotal",
				"TaxRate", "TaxAmount", "TotalAmount", "Notes", "TermsConditions").
			Updates(q).Error; err != nil {
			return fmt.Errorf("update quote: %w", err)
		}

		if replace {
			for i := range kept {
				kept[i].ID = 0
				kept[i].QuoteID = q.ID
			}
			if len(kept) > 0 {
				if err := tx.Omit("ID").Create(&kept).Error; err != nil {
					return fmt.Errorf("recreate quote items: %w", err)
				}
			}
		}
		q.Items = kept
		return nil
	})
}

// DeleteQuote removes a quote and its line items.
func (s *Store) DeleteQuote(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&QuoteItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Quote{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// LoadQuote loads a quote with its line items.
func (s *Store) LoadQuote(id any) (*Quote, error) {
	var q Quote
	result := s.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("quote_items.id") }).
		First(&q, id)
	if err := result.Error; err != nil {
		return nil, fmt.Errorf("load quote %v: %w", id, err)
	}
	return &q, nil
}

// ListQuotes returns all quotes with joined customer fields, newest first.
func (s *Store) ListQuotes() ([]QuoteWithCustomer, error) {
	var rows []QuoteWithCustomer
	err := s.db.
		Table("quotes").
		Select("quotes.*, customers.company_name, customers.contact_person, customers.email").
		Joins("LEFT JOIN customers ON quotes.customer_id = customers.id").
		Where("quotes.deleted_at IS NULL").
		Order("quotes.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// companySettingsID is the fixed primary key of the settings row. The
// profile is a singleton with a well-known key, so two concurrent "no row
// yet" saves converge on the same record instead of creating duplicates.
const companySettingsID uint = 1

// CompanySettings is the company profile used to brand invoices, quotes
// and the print views.
type CompanySettings struct {
	gorm.Model
	CompanyName         string
	Address             string
	City                string
	PostalCode          string
	Country             string
	Phone               string
	Email               string
	Website             string
	Logo                string // URL or inline-encoded image data
	IBAN                string
	BankAccount         string
	BICSwift            string
	TaxNumber           string
	DefaultTaxRate      decimal.Decimal `sql:"type:decimal(20,8);"`
	DefaultPaymentTerms string
}

// LoadCompanySettings loads the profile, initializing an empty one when
// none has been saved yet.
func (s *Store) LoadCompanySettings() (*CompanySettings, error) {
	c := &CompanySettings{}
	result := s.db.FirstOrInit(c, companySettingsID)
	c.ID = companySettingsID
	return c, result.Error
}

// SaveCompanySettings upserts the profile under its fixed key.
func (s *Store) SaveCompanySettings(c *CompanySettings) error {
	c.ID = companySettingsID
	return s.db.Save(c).Error
}

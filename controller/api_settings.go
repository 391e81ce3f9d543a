package controller

import (
	"net/http"

	"github.com/kontorapp/kontor/model"

	"github.com/labstack/echo/v4"
)

type APICompanySettings struct {
	CompanyName         string `json:"company_name"`
	Address             string `json:"address,omitempty"`
	City                string `json:"city,omitempty"`
	PostalCode          string `json:"postal_code,omitempty"`
	Country             string `json:"country,omitempty"`
	Phone               string `json:"phone,omitempty"`
	Email               string `json:"email,omitempty"`
	Website             string `json:"website,omitempty"`
	Logo                string `json:"logo,omitempty"`
	IBAN                string `json:"iban,omitempty"`
	BankAccount         string `json:"bank_account,omitempty"`
	BICSwift            string `json:"bic_swift,omitempty"`
	TaxNumber           string `json:"tax_number,omitempty"`
	DefaultTaxRate      string `json:"default_tax_rate"`
	DefaultPaymentTerms string `json:"default_payment_terms,omitempty"`
}

func toAPICompanySettings(s *model.CompanySettings) APICompanySettings {
	return APICompanySettings{
		CompanyName:         s.CompanyName,
		Address:             s.Address,
		City:                s.City,
		PostalCode:          s.PostalCode,
		Country:             s.Country,
		Phone:               s.Phone,
		Email:               s.Email,
		Website:             s.Website,
		Logo:                s.Logo,
		IBAN:                s.IBAN,
		BankAccount:         s.BankAccount,
		BICSwift:            s.BICSwift,
		TaxNumber:           s.TaxNumber,
		DefaultTaxRate:      s.DefaultTaxRate.String(),
		DefaultPaymentTerms: s.DefaultPaymentTerms,
	}
}

type APICompanySettingsInput struct {
	CompanyName         string   `json:"company_name"`
	Address             string   `json:"address"`
	City                string   `json:"city"`
	PostalCode          string   `json:"postal_code"`
	Country             string   `json:"country"`
	Phone               string   `json:"phone"`
	Email               string   `json:"email"`
	Website             string   `json:"website"`
	Logo                string   `json:"logo"`
	IBAN                string   `json:"iban"`
	BankAccount         string   `json:"bank_account"`
	BICSwift            string   `json:"bic_swift"`
	TaxNumber           string   `json:"tax_number"`
	DefaultTaxRate      *float64 `json:"default_tax_rate"`
	DefaultPaymentTerms string   `json:"default_payment_terms"`
}

// apiCompanySettingsGet handles GET /api/company-settings
func (ctrl *controller) apiCompanySettingsGet(c echo.Context) error {
	settings, err := ctrl.model.LoadCompanySettings()
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch company settings"))
	}
	return respond(c, http.StatusOK, toAPICompanySettings(settings))
}

// apiCompanySettingsSave handles POST /api/company-settings. The profile
// is a singleton; saving always writes the same row.
func (ctrl *controller) apiCompanySettingsSave(c echo.Context) error {
	var input APICompanySettingsInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	settings, err := ctrl.model.LoadCompanySettings()
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch company settings"))
	}
	settings.CompanyName = input.CompanyName
	settings.Address = input.Address
	settings.City = input.City
	settings.PostalCode = input.PostalCode
	settings.Country = input.Country
	settings.Phone = input.Phone
	settings.Email = input.Email
	settings.Website = input.Website
	settings.Logo = input.Logo
	settings.IBAN = input.IBAN
	settings.BankAccount = input.BankAccount
	settings.BICSwift = input.BICSwift
	settings.TaxNumber = input.TaxNumber
	if input.DefaultTaxRate != nil {
		settings.DefaultTaxRate = dec(*input.DefaultTaxRate)
	}
	settings.DefaultPaymentTerms = input.DefaultPaymentTerms
	if err := ctrl.model.SaveCompanySettings(settings); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to save company settings"))
	}
	return respond(c, http.StatusOK, toAPICompanySettings(settings))
}

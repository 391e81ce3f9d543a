package controller

import (
	"net/http"

	"github.com/go-playground/form/v4"
	"github.com/labstack/echo/v4"
)

type settingsForm struct {
	CompanyName         string   `form:"companyname"`
	Address             string   `form:"address"`
	City                string   `form:"city"`
	PostalCode          string   `form:"zip"`
	Country             string   `form:"country"`
	Phone               string   `form:"phone"`
	Email               string   `form:"email"`
	Website             string   `form:"website"`
	Logo                string   `form:"logo"`
	IBAN                string   `form:"iban"`
	BankAccount         string   `form:"bankaccount"`
	BICSwift            string   `form:"bic"`
	TaxNumber           string   `form:"taxno"`
	DefaultTaxRate      *float64 `form:"defaulttaxrate"`
	DefaultPaymentTerms string   `form:"paymentterms"`
}

func (ctrl *controller) settingsInit(e *echo.Echo) {
	e.GET("/settings", ctrl.settingslist)
	e.POST("/settings", ctrl.settingslist)
}

// settingslist renders and saves the company profile form.
func (ctrl *controller) settingslist(c echo.Context) error {
	m := ctrl.defaultResponseMap(c, "Einstellungen")
	m["action"] = "/settings"
	m["submit"] = "Speichern"
	m["cancel"] = "/"
	switch c.Request().Method {
	case http.MethodGet:
		settings, err := ctrl.model.LoadCompanySettings()
		if err != nil {
			return ErrInvalid(err, "Fehler beim Laden der Einstellungen")
		}
		m["settings"] = settings
		return c.Render(http.StatusOK, "settingslist.html", m)
	case http.MethodPost:
		var sf settingsForm
		if err := c.Request().ParseForm(); err != nil {
			return ErrInvalid(err, "Fehler beim Verarbeiten der Formulardaten")
		}
		formDec := form.NewDecoder()
		if err := formDec.Decode(&sf, c.Request().Form); err != nil {
			return ErrInvalid(err, "Fehler beim Verarbeiten der Formulardaten")
		}

		settings, err := ctrl.model.LoadCompanySettings()
		if err != nil {
			return ErrInvalid(err, "Fehler beim Laden der Einstellungen")
		}
		settings.CompanyName = sf.CompanyName
		settings.Address = sf.Address
		settings.City = sf.City
		settings.PostalCode = sf.PostalCode
		settings.Country = sf.Country
		settings.Phone = sf.Phone
		settings.Email = sf.Email
		settings.Website = sf.Website
		settings.Logo = sf.Logo
		settings.IBAN = sf.IBAN
		settings.BankAccount = sf.BankAccount
		settings.BICSwift = sf.BICSwift
		settings.TaxNumber = sf.TaxNumber
		if sf.DefaultTaxRate != nil {
			settings.DefaultTaxRate = dec(*sf.DefaultTaxRate)
		}
		settings.DefaultPaymentTerms = sf.DefaultPaymentTerms

		if err := ctrl.model.SaveCompanySettings(settings); err != nil {
			return ErrInvalid(err, "Fehler beim Speichern der Einstellungen")
		}
		_ = AddFlash(c, "success", "Einstellungen gespeichert.")
		return c.Redirect(http.StatusSeeOther, "/settings")
	}
	return nil
}

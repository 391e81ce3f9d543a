package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kontorapp/kontor/model"

	"github.com/biter777/countries"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type APIAccountingEntry struct {
	ID              uint      `json:"id"`
	EntryType       string    `json:"entry_type"`
	Amount          string    `json:"amount"`
	VATRate         string    `json:"vat_rate"`
	VATAmount       string    `json:"vat_amount"`
	TotalAmount     string    `json:"total_amount"`
	EntryDate       string    `json:"entry_date"`
	Description     string    `json:"description"`
	ReceiptNumber   string    `json:"receipt_number,omitempty"`
	CategoryID      *uint     `json:"category_id,omitempty"`
	CustomerID      *uint     `json:"customer_id,omitempty"`
	ProjectID       *uint     `json:"project_id,omitempty"`
	ReceiptImageURL string    `json:"receipt_image_url,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toAPIAccountingEntry(e *model.AccountingEntry) APIAccountingEntry {
	return APIAccountingEntry{
		ID:              e.ID,
		EntryType:       string(e.EntryType),
		Amount:          e.Amount.String(),
		VATRate:         e.VATRate.String(),
		VATAmount:       e.VATAmount.String(),
		TotalAmount:     e.TotalAmount.String(),
		EntryDate:       formatDate(e.EntryDate),
		Description:     e.Description,
		ReceiptNumber:   e.ReceiptNumber,
		CategoryID:      e.CategoryID,
		CustomerID:      e.CustomerID,
		ProjectID:       e.ProjectID,
		ReceiptImageURL: e.ReceiptImageURL,
		Notes:           e.Notes,
		Status:          string(e.Status),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// APIAccountingEntryInput uses pointers for vat_amount and total_amount
// so an explicitly supplied value can be told apart from an omitted one.
// Omitted values are derived from amount and vat_rate.
type APIAccountingEntryInput struct {
	EntryType       string   `json:"entry_type"`
	Amount          float64  `json:"amount"`
	VATRate         float64  `json:"vat_rate"`
	VATAmount       *float64 `json:"vat_amount"`
	TotalAmount     *float64 `json:"total_amount"`
	EntryDate       string   `json:"entry_date"`
	Description     string   `json:"description"`
	ReceiptNumber   string   `json:"receipt_number"`
	CategoryID      *uint    `json:"category_id"`
	CustomerID      *uint    `json:"customer_id"`
	ProjectID       *uint    `json:"project_id"`
	ReceiptImageURL string   `json:"receipt_image_url"`
	Notes           string   `json:"notes"`
	Status          string   `json:"status"`
}

func (input *APIAccountingEntryInput) apply(e *model.AccountingEntry) {
	e.EntryType = model.EntryType(input.EntryType)
	e.Amount = dec(input.Amount)
	e.VATRate = dec(input.VATRate)
	if input.VATAmount != nil {
		e.VATAmount = dec(*input.VATAmount)
	}
	if input.TotalAmount != nil {
		e.TotalAmount = dec(*input.TotalAmount)
	}
	e.EntryDate = parseDateOr(input.EntryDate, timeNow())
	e.Description = input.Description
	e.ReceiptNumber = input.ReceiptNumber
	e.CategoryID = input.CategoryID
	e.CustomerID = input.CustomerID
	e.ProjectID = input.ProjectID
	e.ReceiptImageURL = input.ReceiptImageURL
	e.Notes = input.Notes
	e.Status = model.EntryStatus(input.Status)
	e.FillComputed(input.VATAmount != nil, input.TotalAmount != nil)
}

// apiAccountingEntryList handles GET /api/accounting/entries
func (ctrl *controller) apiAccountingEntryList(c echo.Context) error {
	entries, err := ctrl.model.LoadAllAccountingEntries()
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch entries"))
	}
	items := make([]APIAccountingEntry, len(entries))
	for i, e := range entries {
		items[i] = toAPIAccountingEntry(e)
	}
	return respond(c, http.StatusOK, echo.Map{"entries": items})
}

// apiAccountingEntryCreate handles POST /api/accounting/entries
func (ctrl *controller) apiAccountingEntryCreate(c echo.Context) error {
	var input APIAccountingEntryInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	if input.EntryType != string(model.EntryTypeIncome) && input.EntryType != string(model.EntryTypeExpense) {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "entry_type must be income or expense"))
	}
	e := &model.AccountingEntry{}
	input.apply(e)
	if err := ctrl.model.SaveAccountingEntry(e); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to create entry"))
	}
	return respond(c, http.StatusOK, toAPIAccountingEntry(e))
}

// apiAccountingEntryUpdate handles PUT /api/accounting/entries/:id
func (ctrl *controller) apiAccountingEntryUpdate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	e, err := ctrl.model.LoadAccountingEntry(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "entry not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update entry"))
	}
	var input APIAccountingEntryInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	if input.EntryType != string(model.EntryTypeIncome) && input.EntryType != string(model.EntryTypeExpense) {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "entry_type must be income or expense"))
	}
	input.apply(e)
	if err := ctrl.model.SaveAccountingEntry(e); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update entry"))
	}
	return respond(c, http.StatusOK, toAPIAccountingEntry(e))
}

// apiAccountingEntryDelete handles DELETE /api/accounting/entries/:id
func (ctrl *controller) apiAccountingEntryDelete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	if err := ctrl.model.DeleteAccountingEntry(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "entry not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to delete entry"))
	}
	return respond(c, http.StatusOK, echo.Map{"success": true})
}

type APIAccountingCategory struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Color         string `json:"color,omitempty"`
	Description   string `json:"description,omitempty"`
	TaxDeductible bool   `json:"tax_deductible"`
}

// apiAccountingCategoryList handles GET /api/accounting/categories
func (ctrl *controller) apiAccountingCategoryList(c echo.Context) error {
	cats, err := ctrl.model.LoadAccountingCategories()
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch categories"))
	}
	items := make([]APIAccountingCategory, len(cats))
	for i, cat := range cats {
		items[i] = APIAccountingCategory{
			ID:            cat.ID,
			Name:          cat.Name,
			Type:          string(cat.Type),
			Color:         cat.Color,
			Description:   cat.Description,
			TaxDeductible: cat.TaxDeductible,
		}
	}
	return respond(c, http.StatusOK, echo.Map{"categories": items})
}

// apiAccountingCategoryCreate handles POST /api/accounting/categories
func (ctrl *controller) apiAccountingCategoryCreate(c echo.Context) error {
	var input APIAccountingCategory
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	if input.Name == "" {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "name is required"))
	}
	cat := &model.AccountingCategory{
		Name:          input.Name,
		Type:          model.EntryType(input.Type),
		Color:         input.Color,
		Description:   input.Description,
		TaxDeductible: input.TaxDeductible,
		IsActive:      true,
	}
	if err := ctrl.model.SaveAccountingCategory(cat); err != nil {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "type must be income or expense"))
	}
	input.ID = cat.ID
	return respond(c, http.StatusOK, input)
}

// apiAccountingCategoryDelete handles DELETE /api/accounting/categories/:id.
// Categories are disabled, not removed, so existing entries keep their
// category reference.
func (ctrl *controller) apiAccountingCategoryDelete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	if err := ctrl.model.DisableAccountingCategory(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "category not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to delete category"))
	}
	return respond(c, http.StatusOK, echo.Map{"success": true})
}

type APIVATRate struct {
	ID             uint   `json:"id"`
	CountryCode    string `json:"country_code"`
	RatePercentage string `json:"rate_percentage"`
	Description    string `json:"description,omitempty"`
	IsDefault      bool   `json:"is_default"`
}

// apiVATRateList handles GET /api/accounting/vat-rates
func (ctrl *controller) apiVATRateList(c echo.Context) error {
	rates, err := ctrl.model.LoadVATRates()
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch VAT rates"))
	}
	items := make([]APIVATRate, len(rates))
	for i, r := range rates {
		items[i] = APIVATRate{
			ID:             r.ID,
			CountryCode:    r.CountryCode,
			RatePercentage: r.RatePercentage.String(),
			Description:    r.Description,
			IsDefault:      r.IsDefault,
		}
	}
	return respond(c, http.StatusOK, echo.Map{"vatRates": items})
}

type APIVATRateInput struct {
	CountryCode    string  `json:"country_code"`
	RatePercentage float64 `json:"rate_percentage"`
	Description    string  `json:"description"`
	IsDefault      bool    `json:"is_default"`
}

// apiVATRateCreate handles POST /api/accounting/vat-rates
func (ctrl *controller) apiVATRateCreate(c echo.Context) error {
	var input APIVATRateInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	// ByName maps bad input to Unknown or the None/International
	// pseudo-codes; only real alpha-2 countries pass.
	country := countries.ByName(input.CountryCode)
	if !country.IsValid() || len(country.Alpha2()) != 2 {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "unknown country_code"))
	}
	if input.RatePercentage < 0 {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "rate_percentage must not be negative"))
	}
	rate := &model.VATRate{
		CountryCode:    country.Alpha2(),
		RatePercentage: dec(input.RatePercentage),
		Description:    input.Description,
		IsDefault:      input.IsDefault,
	}
	if err := ctrl.model.SaveVATRate(rate); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to create VAT rate"))
	}
	return respond(c, http.StatusOK, APIVATRate{
		ID:             rate.ID,
		CountryCode:    rate.CountryCode,
		RatePercentage: rate.RatePercentage.String(),
		Description:    rate.Description,
		IsDefault:      rate.IsDefault,
	})
}

// apiAccountingSummary handles GET /api/accounting/reports/summary?year=
func (ctrl *controller) apiAccountingSummary(c echo.Context) error {
	year := timeNow().Year()
	if q := c.QueryParam("year"); q != "" {
		y, err := strconv.Atoi(q)
		if err != nil {
			return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid year"))
		}
		year = y
	}
	summary, err := ctrl.model.AccountingSummary(year)
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to compute summary"))
	}
	return respond(c, http.StatusOK, summary)
}

// apiAccountingExport handles GET /api/accounting/reports/export?year=
// and streams an xlsx workbook with one sheet per entry type.
func (ctrl *controller) apiAccountingExport(c echo.Context) error {
	year := timeNow().Year()
	if q := c.QueryParam("year"); q != "" {
		y, err := strconv.Atoi(q)
		if err != nil {
			return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid year"))
		}
		year = y
	}
	f, err := ctrl.model.ExportAccountingYear(year)
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("export_error", "Failed to export accounting data"))
	}
	defer f.Close()

	filename := fmt.Sprintf("buchhaltung-%d.xlsx", year)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	if err := f.Write(c.Response()); err != nil {
		return err
	}
	return nil
}

type APIQRTemplate struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Token       string `json:"token"`
}

func toAPIQRTemplate(t *model.QRTemplate) APIQRTemplate {
	return APIQRTemplate{ID: t.ID, Name: t.Name, Description: t.Description, Token: t.Token}
}

// apiQRTemplateList handles GET /api/accounting/qr-templates
func (ctrl *controller) apiQRTemplateList(c echo.Context) error {
	templates, err := ctrl.model.LoadAllQRTemplates()
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch QR templates"))
	}
	items := make([]APIQRTemplate, len(templates))
	for i, t := range templates {
		items[i] = toAPIQRTemplate(t)
	}
	return respond(c, http.StatusOK, echo.Map{"templates": items})
}

// apiQRTemplateCreate handles POST /api/accounting/qr-templates
func (ctrl *controller) apiQRTemplateCreate(c echo.Context) error {
	var input APIQRTemplate
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	if input.Name == "" {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "name is required"))
	}
	t := &model.QRTemplate{Name: input.Name, Description: input.Description}
	if err := ctrl.model.SaveQRTemplate(t); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to create QR template"))
	}
	return respond(c, http.StatusOK, toAPIQRTemplate(t))
}

// apiQRTemplateDelete handles DELETE /api/accounting/qr-templates/:id
func (ctrl *controller) apiQRTemplateDelete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	if err := ctrl.model.DeleteQRTemplate(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "QR template not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to delete QR template"))
	}
	return respond(c, http.StatusOK, echo.Map{"success": true})
}

// apiQRCode handles GET /api/accounting/qr-code/:id. The payload carries
// the upload URL to encode; the code itself is rendered client-side.
func (ctrl *controller) apiQRCode(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	t, err := ctrl.model.LoadQRTemplate(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "QR template not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch QR template"))
	}
	return respond(c, http.StatusOK, echo.Map{
		"qrData":    fmt.Sprintf("%s/upload/%s", ctrl.model.Config.BaseURL, t.Token),
		"expiresAt": timeNow().Add(24 * time.Hour).Format(time.RFC3339),
		"template":  toAPIQRTemplate(t),
	})
}

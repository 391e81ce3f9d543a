package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kontorapp/kontor/model"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type APIInvoiceItemInput struct {
	TimeEntryID *uint   `json:"time_entry_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type APIInvoiceInput struct {
	CustomerID   uint                  `json:"customer_id"`
	IssueDate    string                `json:"issue_date"`
	DueDate      string                `json:"due_date"`
	Status       string                `json:"status"`
	TaxRate      *float64              `json:"tax_rate"`
	PaymentTerms string                `json:"payment_terms"`
	Notes        string                `json:"notes"`
	Items        []APIInvoiceItemInput `json:"items"`
}

func (input *APIInvoiceInput) items() []model.InvoiceItem {
	items := make([]model.InvoiceItem, len(input.Items))
	for i, it := range input.Items {
		items[i] = model.InvoiceItem{
			TimeEntryID: it.TimeEntryID,
			Description: it.Description,
			Quantity:    dec(it.Quantity),
			UnitPrice:   dec(it.UnitPrice),
		}
	}
	return items
}

// apiInvoiceList handles GET /api/invoices
func (ctrl *controller) apiInvoiceList(c echo.Context) error {
	rows, err := ctrl.model.ListInvoices()
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch invoices"))
	}
	items := make([]APIInvoice, len(rows))
	for i := range rows {
		items[i] = toAPIInvoice(&rows[i].Invoice)
		items[i].CompanyName = rows[i].CompanyName
		items[i].ContactPerson = rows[i].ContactPerson
		items[i].Email = rows[i].Email
	}
	return respond(c, http.StatusOK, echo.Map{"invoices": items})
}

// apiInvoiceGet handles GET /api/invoices/:id
func (ctrl *controller) apiInvoiceGet(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	inv, err := ctrl.model.LoadInvoice(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "invoice not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch invoice"))
	}
	return respond(c, http.StatusOK, toAPIInvoice(inv))
}

// apiInvoiceCreate handles POST /api/invoices
func (ctrl *controller) apiInvoiceCreate(c echo.Context) error {
	var input APIInvoiceInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	if input.CustomerID == 0 {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "customer_id is required"))
	}
	dueDate, ok := parseTime(input.DueDate)
	if !ok {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "invalid due_date"))
	}
	inv := &model.Invoice{
		CustomerID:   input.CustomerID,
		IssueDate:    parseDateOr(input.IssueDate, timeNow()),
		DueDate:      dueDate,
		Status:       model.InvoiceStatus(input.Status),
		PaymentTerms: input.PaymentTerms,
		Notes:        input.Notes,
	}
	if input.TaxRate != nil {
		inv.TaxRate = dec(*input.TaxRate)
	}
	if err := ctrl.model.CreateInvoice(inv, input.items()); err != nil {
		if errors.Is(err, model.ErrInvalidStatus) {
			return respond(c, http.StatusBadRequest, apiError("validation_error", "invalid status"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to create invoice"))
	}
	return respond(c, http.StatusOK, toAPIInvoice(inv))
}

type APIInvoiceFromTimeEntriesInput struct {
	CustomerID   uint   `json:"customer_id"`
	TimeEntryIDs []uint `json:"time_entry_ids"`
	IssueDate    string `json:"issue_date"`
	DueDate      string `json:"due_date"`
	PaymentTerms string `json:"payment_terms"`
	Notes        string `json:"notes"`
}

// apiInvoiceFromTimeEntries handles POST /api/invoices/from-time-entries
func (ctrl *controller) apiInvoiceFromTimeEntries(c echo.Context) error {
	var input APIInvoiceFromTimeEntriesInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	if input.CustomerID == 0 || len(input.TimeEntryIDs) == 0 {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "customer_id and time_entry_ids are required"))
	}
	dueDate, ok := parseTime(input.DueDate)
	if !ok {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "invalid due_date"))
	}
	inv, err := ctrl.model.CreateInvoiceFromTimeEntries(
		input.CustomerID,
		input.TimeEntryIDs,
		parseDateOr(input.IssueDate, timeNow()),
		dueDate,
		input.PaymentTerms,
		input.Notes,
	)
	if err != nil {
		if errors.Is(err, model.ErrNoBillableEntries) {
			return respond(c, http.StatusBadRequest, apiError("no_billable_entries", "No billable time entries found"))
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "customer not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to create invoice"))
	}
	return respond(c, http.StatusOK, echo.Map{
		"id":             inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"subtotal":       inv.Subtotal.String(),
		"tax_amount":     inv.TaxAmount.String(),
		"total_amount":   inv.TotalAmount.String(),
		"items_count":    len(inv.Items),
	})
}

// apiInvoiceUpdate handles PUT /api/invoices/:id
func (ctrl *controller) apiInvoiceUpdate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	inv, err := ctrl.model.LoadInvoice(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "invoice not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update invoice"))
	}
	var input APIInvoiceInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	dueDate, ok := parseTime(input.DueDate)
	if !ok {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "invalid due_date"))
	}
	if input.CustomerID != 0 {
		inv.CustomerID = input.CustomerID
	}
	inv.IssueDate = parseDateOr(input.IssueDate, inv.IssueDate)
	if dueDate != nil {
		inv.DueDate = dueDate
	}
	if input.Status != "" {
		inv.Status = model.InvoiceStatus(input.Status)
	}
	if input.TaxRate != nil {
		inv.TaxRate = dec(*input.TaxRate)
	}
	if input.PaymentTerms != "" {
		inv.PaymentTerms = input.PaymentTerms
	}
	inv.Notes = input.Notes

	var items []model.InvoiceItem
	if input.Items != nil {
		items = input.items()
	}
	if err := ctrl.model.UpdateInvoice(inv, items); err != nil {
		if errors.Is(err, model.ErrInvalidStatus) {
			return respond(c, http.StatusBadRequest, apiError("validation_error", "invalid status"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update invoice"))
	}
	return respond(c, http.StatusOK, toAPIInvoice(inv))
}

// apiInvoiceDelete handles DELETE /api/invoices/:id
func (ctrl *controller) apiInvoiceDelete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	if err := ctrl.model.DeleteInvoice(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "invoice not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to delete invoice"))
	}
	return respond(c, http.StatusOK, echo.Map{"success": true})
}

// apiInvoiceSend handles POST /api/invoices/:id/send
func (ctrl *controller) apiInvoiceSend(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	inv, err := ctrl.model.LoadInvoice(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "invoice not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch invoice"))
	}
	customer, err := ctrl.model.LoadCustomer(inv.CustomerID)
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch customer"))
	}
	if customer.Email == nil || *customer.Email == "" {
		return respond(c, http.StatusBadRequest, apiError("no_email", "customer has no email address"))
	}
	settings, err := ctrl.model.LoadCompanySettings()
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch company settings"))
	}
	subject := fmt.Sprintf("Rechnung %s", inv.InvoiceNumber)
	body := fmt.Sprintf(
		"Guten Tag\n\nIm Anhang finden Sie die Rechnung %s über CHF %s.\nZahlbar innert %s.\n\nFreundliche Grüsse\n%s",
		inv.InvoiceNumber, inv.TotalAmount.Round(2).StringFixed(2), inv.PaymentTerms, settings.CompanyName,
	)
	if err := ctrl.sendEmail(*customer.Email, subject, body); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("mail_error", "Failed to send invoice"))
	}
	if inv.Status == model.InvoiceStatusDraft {
		inv.Status = model.InvoiceStatusSent
		if err := ctrl.model.UpdateInvoice(inv, nil); err != nil {
			return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update invoice"))
		}
	}
	return respond(c, http.StatusOK, echo.Map{"success": true, "sent_to": *customer.Email})
}

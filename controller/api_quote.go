package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kontorapp/kontor/model"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type APIQuoteItem struct {
	ID          uint   `json:"id,omitempty"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

type APIQuote struct {
	ID              uint           `json:"id"`
	QuoteNumber     string         `json:"quote_number"`
	CustomerID      uint           `json:"customer_id"`
	IssueDate       string         `json:"issue_date"`
	ValidUntil      string         `json:"valid_until,omitempty"`
	Status          string         `json:"status"`
	Subtotal        string         `json:"subtotal"`
	TaxRate         string         `json:"tax_rate"`
	TaxAmount       string         `json:"tax_amount"`
	TotalAmount     string         `json:"total_amount"`
	Notes           string         `json:"notes,omitempty"`
	TermsConditions string         `json:"terms_conditions,omitempty"`
	CompanyName     string         `json:"company_name,omitempty"`
	ContactPerson   string         `json:"contact_person,omitempty"`
	Email           string         `json:"email,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Items           []APIQuoteItem `json:"items,omitempty"`
}

func toAPIQuote(q *model.Quote) APIQuote {
	out := APIQuote{
		ID:              q.ID,
		QuoteNumber:     q.QuoteNumber,
		CustomerID:      q.CustomerID,
		IssueDate:       formatDate(q.IssueDate),
		ValidUntil:      formatDatePtr(q.ValidUntil),
		Status:          string(q.Status),
		Subtotal:        q.Subtotal.String(),
		TaxRate:         q.TaxRate.String(),
		TaxAmount:       q.TaxAmount.String(),
		TotalAmount:     q.TotalAmount.String(),
		Notes:           q.Notes,
		TermsConditions: q.TermsConditions,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
	for _, it := range q.Items {
		out.Items = append(out.Items, APIQuoteItem{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity.String(),
			UnitPrice:   it.UnitPrice.String(),
			Total:       it.Total.String(),
		})
	}
	return out
}

type APIQuoteItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type APIQuoteInput struct {
	CustomerID      uint                `json:"customer_id"`
	IssueDate       string              `json:"issue_date"`
	ValidUntil      string              `json:"valid_until"`
	Status          string              `json:"status"`
	TaxRate         *float64            `json:"tax_rate"`
	Notes           string              `json:"notes"`
	TermsConditions string              `json:"terms_conditions"`
	Items           []APIQuoteItemInput `json:"items"`
}

func (input *APIQuoteInput) items() []model.QuoteItem {
	items := make([]model.QuoteItem, len(input.Items))
	for i, it := range input.Items {
		items[i] = model.QuoteItem{
			Description: it.Description,
			Quantity:    dec(it.Quantity),
			UnitPrice:   dec(it.UnitPrice),
		}
	}
	return items
}

// apiQuoteList handles GET /api/quotes
func (ctrl *controller) apiQuoteList(c echo.Context) error {
	rows, err := ctrl.model.ListQuotes()
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch quotes"))
	}
	items := make([]APIQuote, len(rows))
	for i := range rows {
		items[i] = toAPIQuote(&rows[i].Quote)
		items[i].CompanyName = rows[i].CompanyName
		items[i].ContactPerson = rows[i].ContactPerson
		items[i].Email = rows[i].Email
	}
	return respond(c, http.StatusOK, echo.Map{"quotes": items})
}

// apiQuoteGet handles GET /api/quotes/:id
func (ctrl *controller) apiQuoteGet(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	q, err := ctrl.model.LoadQuote(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "quote not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch quote"))
	}
	return respond(c, http.StatusOK, toAPIQuote(q))
}

// apiQuoteCreate handles POST /api/quotes
func (ctrl *controller) apiQuoteCreate(c echo.Context) error {
	var input APIQuoteInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	if input.CustomerID == 0 {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "customer_id is required"))
	}
	validUntil, ok := parseTime(input.ValidUntil)
	if !ok {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "invalid valid_until"))
	}
	q := &model.Quote{
		CustomerID:      input.CustomerID,
		IssueDate:       parseDateOr(input.IssueDate, timeNow()),
		ValidUntil:      validUntil,
		Status:          model.QuoteStatus(input.Status),
		Notes:           input.Notes,
		TermsConditions: input.TermsConditions,
	}
	if input.TaxRate != nil {
		q.TaxRate = dec(*input.TaxRate)
	}
	if err := ctrl.model.CreateQuote(q, input.items()); err != nil {
		if errors.Is(err, model.ErrInvalidStatus) {
			return respond(c, http.StatusBadRequest, apiError("validation_error", "invalid status"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to create quote"))
	}
	return respond(c, http.StatusOK, toAPIQuote(q))
}

// apiQuoteUpdate handles PUT /api/quotes/:id
func (ctrl *controller) apiQuoteUpdate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	q, err := ctrl.model.LoadQuote(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "quote not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update quote"))
	}
	var input APIQuoteInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	validUntil, ok := parseTime(input.ValidUntil)
	if !ok {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "invalid valid_until"))
	}
	if input.CustomerID != 0 {
		q.CustomerID = input.CustomerID
	}
	q.IssueDate = parseDateOr(input.IssueDate, q.IssueDate)
	if validUntil != nil {
		q.ValidUntil = validUntil
	}
	if input.Status != "" {
		q.Status = model.QuoteStatus(input.Status)
	}
	if input.TaxRate != nil {
		q.TaxRate = dec(*input.TaxRate)
	}
	q.Notes = input.Notes
	if input.TermsConditions != "" {
		q.TermsConditions = input.TermsConditions
	}

	var items []model.QuoteItem
	if input.Items != nil {
		items = input.items()
	}
	if err := ctrl.model.UpdateQuote(q, items); err != nil {
		if errors.Is(err, model.ErrInvalidStatus) {
			return respond(c, http.StatusBadRequest, apiError("validation_error", "invalid status"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update quote"))
	}
	return respond(c, http.StatusOK, toAPIQuote(q))
}

// apiQuoteDelete handles DELETE /api/quotes/:id
func (ctrl *controller) apiQuoteDelete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	if err := ctrl.model.DeleteQuote(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "quote not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to delete quote"))
	}
	return respond(c, http.StatusOK, echo.Map{"success": true})
}

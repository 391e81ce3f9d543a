// controller/api_controller.go
package controller

import (
	"strings"
	"time"

	"github.com/kontorapp/kontor/model"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type APIError struct {
	Code    string `json:"error_code"`
	Message string `json:"error"`
}

func apiError(code, msg string) *APIError { return &APIError{Code: code, Message: msg} }

func respond(c echo.Context, status int, v any) error {
	return c.JSON(status, v)
}

// timeNow is swapped out in tests.
var timeNow = time.Now

// date/time layouts accepted from the client, most specific first
var inputTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(in string) (*time.Time, bool) {
	in = strings.TrimSpace(in)
	if in == "" {
		return nil, true
	}
	for _, layout := range inputTimeLayouts {
		if t, err := time.Parse(layout, in); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func parseDateOr(in string, fallback time.Time) time.Time {
	if t, ok := parseTime(in); ok && t != nil {
		return *t
	}
	return fallback
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func decPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func decStrPtr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// ---- Invoice DTOs ----

type APIInvoiceItem struct {
	ID          uint   `json:"id,omitempty"`
	TimeEntryID *uint  `json:"time_entry_id,omitempty"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

type APIInvoice struct {
	ID            uint             `json:"id"`
	InvoiceNumber string           `json:"invoice_number"`
	CustomerID    uint             `json:"customer_id"`
	IssueDate     string           `json:"issue_date"`
	DueDate       string           `json:"due_date,omitempty"`
	Status        string           `json:"status"`
	Subtotal      string           `json:"subtotal"`
	TaxRate       string           `json:"tax_rate"`
	TaxAmount     string           `json:"tax_amount"`
	TotalAmount   string           `json:"total_amount"`
	PaymentTerms  string           `json:"payment_terms"`
	Notes         string           `json:"notes,omitempty"`
	CompanyName   string           `json:"company_name,omitempty"`
	ContactPerson string           `json:"contact_person,omitempty"`
	Email         string           `json:"email,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Items         []APIInvoiceItem `json:"items,omitempty"`
}

func toAPIInvoiceItem(it *model.InvoiceItem) APIInvoiceItem {
	return APIInvoiceItem{
		ID:          it.ID,
		TimeEntryID: it.TimeEntryID,
		Description: it.Description,
		Quantity:    it.Quantity.String(),
		UnitPrice:   it.UnitPrice.String(),
		Total:       it.Total.String(),
	}
}

func toAPIInvoice(inv *model.Invoice) APIInvoice {
	out := APIInvoice{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		IssueDate:     formatDate(inv.IssueDate),
		DueDate:       formatDatePtr(inv.DueDate),
		Status:        string(inv.Status),
		Subtotal:      inv.Subtotal.String(),
		TaxRate:       inv.TaxRate.String(),
		TaxAmount:     inv.TaxAmount.String(),
		TotalAmount:   inv.TotalAmount.String(),
		PaymentTerms:  inv.PaymentTerms,
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	for i := range inv.Items {
		out.Items = append(out.Items, toAPIInvoiceItem(&inv.Items[i]))
	}
	return out
}

// ---- Customer DTOs ----

type APICustomer struct {
	ID            uint      `json:"id"`
	CompanyName   string    `json:"company_name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	City          string    `json:"city,omitempty"`
	PostalCode    string    `json:"postal_code,omitempty"`
	Country       string    `json:"country,omitempty"`
	TaxNumber     string    `json:"tax_number,omitempty"`
	HourlyRate    string    `json:"hourly_rate"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toAPICustomer(c *model.Customer) APICustomer {
	email := ""
	if c.Email != nil {
		email = *c.Email
	}
	return APICustomer{
		ID:            c.ID,
		CompanyName:   c.CompanyName,
		ContactPerson: c.ContactPerson,
		Email:         email,
		Phone:         c.Phone,
		Address:       c.Address,
		City:          c.City,
		PostalCode:    c.PostalCode,
		Country:       c.Country,
		TaxNumber:     c.TaxNumber,
		HourlyRate:    c.HourlyRate.String(),
		Notes:         c.Notes,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

package controller

import (
	"net/http"

	"github.com/kontorapp/kontor/model"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// dashboard renders the start page: headline numbers plus the latest
// documents.
func (ctrl *controller) dashboard(c echo.Context) error {
	m := ctrl.defaultResponseMap(c, "Übersicht")

	customers, err := ctrl.model.LoadAllCustomers()
	if err != nil {
		return ErrInternal(err)
	}
	invoices, err := ctrl.model.ListInvoices()
	if err != nil {
		return ErrInternal(err)
	}

	open := decimal.Zero
	overdue := 0
	for i := range invoices {
		switch invoices[i].Status {
		case model.InvoiceStatusSent:
			open = open.Add(invoices[i].TotalAmount)
		case model.InvoiceStatusOverdue:
			open = open.Add(invoices[i].TotalAmount)
			overdue++
		}
	}

	recent := invoices
	if len(recent) > 5 {
		recent = recent[:5]
	}

	year := timeNow().Year()
	summary, err := ctrl.model.AccountingSummary(year)
	if err != nil {
		return ErrInternal(err)
	}

	m["customercount"] = len(customers)
	m["invoicecount"] = len(invoices)
	m["openamount"] = open
	m["overduecount"] = overdue
	m["recentinvoices"] = recent
	m["summary"] = summary
	m["year"] = year
	return c.Render(http.StatusOK, "main.html", m)
}

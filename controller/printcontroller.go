package controller

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (ctrl *controller) printInit(e *echo.Echo) {
	e.GET("/invoices/:id/print", ctrl.invoicePrint)
	e.GET("/quotes/:id/print", ctrl.quotePrint)
}

// invoicePrint renders the printable invoice document with the company
// profile as letterhead.
func (ctrl *controller) invoicePrint(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ErrInvalid(err, "Ungültige Rechnungsnummer")
	}
	inv, err := ctrl.model.LoadInvoice(uint(id))
	if err != nil {
		return ErrNotFound(err)
	}
	customer, err := ctrl.model.LoadCustomer(inv.CustomerID)
	if err != nil {
		return ErrNotFound(err)
	}
	settings, err := ctrl.model.LoadCompanySettings()
	if err != nil {
		return ErrInternal(err)
	}

	m := ctrl.defaultResponseMap(c, "Rechnung "+inv.InvoiceNumber)
	m["invoice"] = inv
	m["customer"] = customer
	m["settings"] = settings
	return c.Render(http.StatusOK, "invoiceprint.html", m)
}

// quotePrint renders the printable quote document.
func (ctrl *controller) quotePrint(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return ErrInvalid(err, "Ungültige Offertennummer")
	}
	q, err := ctrl.model.LoadQuote(uint(id))
	if err != nil {
		return ErrNotFound(err)
	}
	customer, err := ctrl.model.LoadCustomer(q.CustomerID)
	if err != nil {
		return ErrNotFound(err)
	}
	settings, err := ctrl.model.LoadCompanySettings()
	if err != nil {
		return ErrInternal(err)
	}

	m := ctrl.defaultResponseMap(c, "Offerte "+q.QuoteNumber)
	m["quote"] = q
	m["customer"] = customer
	m["settings"] = settings
	return c.Render(http.StatusOK, "quoteprint.html", m)
}

package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/kontorapp/kontor/model"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// APICustomerInput is the create/update body for customers.
type APICustomerInput struct {
	CompanyName   string   `json:"company_name"`
	ContactPerson string   `json:"contact_person"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	PostalCode    string   `json:"postal_code"`
	Country       string   `json:"country"`
	TaxNumber     string   `json:"tax_number"`
	HourlyRate    *float64 `json:"hourly_rate"`
	Notes         string   `json:"notes"`
}

func (input *APICustomerInput) apply(c *model.Customer) {
	c.CompanyName = strings.TrimSpace(input.CompanyName)
	c.ContactPerson = strings.TrimSpace(input.ContactPerson)
	if email := strings.TrimSpace(input.Email); email != "" {
		c.Email = &email
	} else {
		c.Email = nil
	}
	c.Phone = strings.TrimSpace(input.Phone)
	c.Address = strings.TrimSpace(input.Address)
	c.City = strings.TrimSpace(input.City)
	c.PostalCode = strings.TrimSpace(input.PostalCode)
	c.Country = strings.TrimSpace(input.Country)
	c.TaxNumber = strings.TrimSpace(input.TaxNumber)
	if input.HourlyRate != nil {
		c.HourlyRate = dec(*input.HourlyRate)
	}
	c.Notes = input.Notes
}

// apiCustomerList handles GET /api/customers. An optional ?search=
// parameter filters by company name.
func (ctrl *controller) apiCustomerList(c echo.Context) error {
	var customers []*model.Customer
	var err error
	if search := strings.TrimSpace(c.QueryParam("search")); search != "" {
		customers, err = ctrl.model.FindAllCustomersWithText(search)
	} else {
		customers, err = ctrl.model.LoadAllCustomers()
	}
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch customers"))
	}
	items := make([]APICustomer, len(customers))
	for i, cust := range customers {
		items[i] = toAPICustomer(cust)
	}
	return respond(c, http.StatusOK, echo.Map{"customers": items})
}

// apiCustomerCreate handles POST /api/customers
func (ctrl *controller) apiCustomerCreate(c echo.Context) error {
	var input APICustomerInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "company_name is required"))
	}
	cust := &model.Customer{}
	input.apply(cust)
	if err := ctrl.model.SaveCustomer(cust); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to create customer"))
	}
	return respond(c, http.StatusOK, toAPICustomer(cust))
}

// apiCustomerUpdate handles PUT /api/customers/:id
func (ctrl *controller) apiCustomerUpdate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	cust, err := ctrl.model.LoadCustomer(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "customer not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update customer"))
	}
	var input APICustomerInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	input.apply(cust)
	if err := ctrl.model.SaveCustomer(cust); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update customer"))
	}
	return respond(c, http.StatusOK, toAPICustomer(cust))
}

// apiCustomerDelete handles DELETE /api/customers/:id. Customers that
// are still referenced cannot be deleted.
func (ctrl *controller) apiCustomerDelete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	if err := ctrl.model.DeleteCustomer(uint(id)); err != nil {
		switch {
		case errors.Is(err, model.ErrCustomerReferenced):
			return respond(c, http.StatusConflict, apiError("conflict", "customer is still referenced by projects, time entries, invoices or quotes"))
		case errors.Is(err, gorm.ErrRecordNotFound):
			return respond(c, http.StatusNotFound, apiError("not_found", "customer not found"))
		default:
			return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to delete customer"))
		}
	}
	return respond(c, http.StatusOK, echo.Map{"success": true})
}

// apiCustomerUnbilledTimeEntries handles
// GET /api/customers/:id/unbilled-time-entries. An empty result is a
// normal 200, not an error.
func (ctrl *controller) apiCustomerUnbilledTimeEntries(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	entries, err := ctrl.model.UnbilledTimeEntries(uint(id))
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch unbilled time entries"))
	}
	items := make([]APITimeEntry, len(entries))
	for i := range entries {
		items[i] = toAPITimeEntryWithNames(&entries[i])
	}
	return respond(c, http.StatusOK, echo.Map{"timeEntries": items})
}

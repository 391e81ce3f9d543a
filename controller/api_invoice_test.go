package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/kontorapp/kontor/fixtures"
)

func TestAPIInvoiceFromTimeEntries(t *testing.T) {
	e, store := newTestAPI(t)
	data := fixtures.SeedTestData(t, store)

	body := fmt.Sprintf(`{"customer_id":%d,"time_entry_ids":[%d,%d],"issue_date":"2025-03-31"}`,
		data.Customer.ID, data.Entries[0].ID, data.Entries[1].ID)
	rec, payload := doJSON(t, e, http.MethodPost, "/api/invoices/from-time-entries", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if payload["invoice_number"] != "RE-2025-001" {
		t.Errorf("invoice_number = %v, want RE-2025-001", payload["invoice_number"])
	}
	if payload["subtotal"] != "300" {
		t.Errorf("subtotal = %v, want 300", payload["subtotal"])
	}
	if payload["tax_amount"] != "24.3" {
		t.Errorf("tax_amount = %v, want 24.3", payload["tax_amount"])
	}
	if payload["total_amount"] != "324.3" {
		t.Errorf("total_amount = %v, want 324.3", payload["total_amount"])
	}
	if payload["items_count"] != float64(2) {
		t.Errorf("items_count = %v, want 2", payload["items_count"])
	}

	// the entries disappear from the unbilled list
	rec, payload = doJSON(t, e, http.MethodGet,
		"/api/customers/"+uintStr(data.Customer.ID)+"/unbilled-time-entries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if entries := payload["timeEntries"].([]any); len(entries) != 0 {
		t.Errorf("expected no unbilled entries left, got %d", len(entries))
	}
}

func TestAPIInvoiceFromTimeEntriesNoBillable(t *testing.T) {
	e, store := newTestAPI(t)
	data := fixtures.SeedTestData(t, store)

	for _, entry := range data.Entries {
		entry.IsBilled = true
		if err := store.SaveTimeEntry(entry); err != nil {
			t.Fatalf("save time entry: %v", err)
		}
	}

	body := fmt.Sprintf(`{"customer_id":%d,"time_entry_ids":[%d]}`,
		data.Customer.ID, data.Entries[0].ID)
	rec, payload := doJSON(t, e, http.MethodPost, "/api/invoices/from-time-entries", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if payload["error_code"] != "no_billable_entries" {
		t.Errorf("error_code = %v, want no_billable_entries", payload["error_code"])
	}
}

func TestAPIInvoiceCreateAndGet(t *testing.T) {
	e, store := newTestAPI(t)
	data := fixtures.SeedTestData(t, store)

	body := fmt.Sprintf(`{"customer_id":%d,"issue_date":"2025-05-01","items":[
		{"description":"Entwicklung","quantity":8,"unit_price":120},
		{"description":"","quantity":2,"unit_price":100}
	]}`, data.Customer.ID)
	rec, payload := doJSON(t, e, http.MethodPost, "/api/invoices", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if payload["invoice_number"] != "RE-2025-001" {
		t.Errorf("invoice_number = %v", payload["invoice_number"])
	}
	// the empty-description line was dropped
	if items := payload["items"].([]any); len(items) != 1 {
		t.Errorf("items = %v, want single surviving line", payload["items"])
	}
	if payload["subtotal"] != "960" {
		t.Errorf("subtotal = %v, want 960", payload["subtotal"])
	}

	id := uint(payload["id"].(float64))
	rec, payload = doJSON(t, e, http.MethodGet, "/api/invoices/"+uintStr(id), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if payload["total_amount"] != "1037.76" {
		t.Errorf("total_amount = %v, want 1037.76", payload["total_amount"])
	}
}

func TestAPIInvoiceNotFound(t *testing.T) {
	e, _ := newTestAPI(t)

	rec, payload := doJSON(t, e, http.MethodGet, "/api/invoices/4711", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if payload["error_code"] != "not_found" {
		t.Errorf("error_code = %v, want not_found", payload["error_code"])
	}
}

func TestAPIInvoiceCreateInvalidStatus(t *testing.T) {
	e, store := newTestAPI(t)
	data := fixtures.SeedTestData(t, store)

	body := fmt.Sprintf(`{"customer_id":%d,"status":"bezahlt-irgendwann"}`, data.Customer.ID)
	rec, payload := doJSON(t, e, http.MethodPost, "/api/invoices", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if payload["error_code"] != "validation_error" {
		t.Errorf("error_code = %v, want validation_error", payload["error_code"])
	}
}

func TestAPIInvoiceSendKeepsItems(t *testing.T) {
	e, store := newTestAPI(t)
	data := fixtures.SeedTestData(t, store)

	email := "buchhaltung@acme.ch"
	data.Customer.Email = &email
	if err := store.SaveCustomer(data.Customer); err != nil {
		t.Fatalf("save customer: %v", err)
	}
	inv := fixtures.Invoice(fixtures.WithInvoiceCustomerID(data.Customer.ID))
	if err := store.CreateInvoice(inv, fixtures.SampleItems()); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	rec, _ := doJSON(t, e, http.MethodPost, "/api/invoices/"+uintStr(inv.ID)+"/send", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	// sending flips draft to sent and must not touch the stored lines
	rec, payload := doJSON(t, e, http.MethodGet, "/api/invoices/"+uintStr(inv.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if payload["status"] != "sent" {
		t.Errorf("status = %v, want sent", payload["status"])
	}
	if items := payload["items"].([]any); len(items) != 3 {
		t.Errorf("expected 3 items, got %d", len(items))
	}
	if payload["subtotal"] != "1660" {
		t.Errorf("subtotal = %v, want 1660", payload["subtotal"])
	}
}

func TestAPIInvoiceListShape(t *testing.T) {
	e, store := newTestAPI(t)
	data := fixtures.SeedTestData(t, store)

	inv := fixtures.Invoice(fixtures.WithInvoiceCustomerID(data.Customer.ID))
	if err := store.CreateInvoice(inv, fixtures.SampleItems()); err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	rec, payload := doJSON(t, e, http.MethodGet, "/api/invoices", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	invoices, ok := payload["invoices"].([]any)
	if !ok || len(invoices) != 1 {
		t.Fatalf("invoices payload = %v", payload["invoices"])
	}
	row := invoices[0].(map[string]any)
	if row["company_name"] != "Acme AG" {
		t.Errorf("company_name = %v, want joined Acme AG", row["company_name"])
	}
}

package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/kontorapp/kontor/fixtures"
	"github.com/kontorapp/kontor/model"

	"github.com/labstack/echo/v4"
)

// newTestAPI wires the API routes onto a bare echo instance backed by an
// in-memory store.
func newTestAPI(t *testing.T) (*echo.Echo, *model.Store) {
	t.Helper()
	store := fixtures.NewTestStore(t)
	store.Config.BaseURL = "https://kontor.test"
	e := echo.New()
	ctrl := controller{model: store}
	ctrl.apiInit(e)
	return e, store
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("cannot decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, payload
}

func TestAPICustomerCreateValidation(t *testing.T) {
	e, _ := newTestAPI(t)

	rec, payload := doJSON(t, e, http.MethodPost, "/api/customers", `{"company_name":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if payload["error_code"] != "validation_error" {
		t.Errorf("error_code = %v, want validation_error", payload["error_code"])
	}
}

func TestAPICustomerCreateAndList(t *testing.T) {
	e, _ := newTestAPI(t)

	rec, payload := doJSON(t, e, http.MethodPost, "/api/customers",
		`{"company_name":"Acme AG","email":"info@acme.ch","hourly_rate":120}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if payload["country"] != "Schweiz" {
		t.Errorf("country = %v, want default Schweiz", payload["country"])
	}

	rec, payload = doJSON(t, e, http.MethodGet, "/api/customers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	customers, ok := payload["customers"].([]any)
	if !ok || len(customers) != 1 {
		t.Fatalf("customers payload = %v, want one entry", payload["customers"])
	}
}

func TestAPICustomerListSearch(t *testing.T) {
	e, _ := newTestAPI(t)

	for _, body := range []string{
		`{"company_name":"Acme AG"}`,
		`{"company_name":"Muster GmbH"}`,
	} {
		rec, _ := doJSON(t, e, http.MethodPost, "/api/customers", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec, payload := doJSON(t, e, http.MethodGet, "/api/customers?search=muster", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	customers, ok := payload["customers"].([]any)
	if !ok || len(customers) != 1 {
		t.Fatalf("customers payload = %v, want one match", payload["customers"])
	}
	match := customers[0].(map[string]any)
	if match["company_name"] != "Muster GmbH" {
		t.Errorf("company_name = %v, want Muster GmbH", match["company_name"])
	}
}

func TestAPICustomerDeleteReferenced(t *testing.T) {
	e, store := newTestAPI(t)
	data := fixtures.SeedTestData(t, store)

	rec, payload := doJSON(t, e, http.MethodDelete,
		"/api/customers/"+uintStr(data.Customer.ID), "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if payload["error_code"] != "conflict" {
		t.Errorf("error_code = %v, want conflict", payload["error_code"])
	}
}

func TestAPICustomerUnbilledTimeEntries(t *testing.T) {
	e, store := newTestAPI(t)
	data := fixtures.SeedTestData(t, store)

	rec, payload := doJSON(t, e, http.MethodGet,
		"/api/customers/"+uintStr(data.Customer.ID)+"/unbilled-time-entries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	entries, ok := payload["timeEntries"].([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("timeEntries payload = %v, want two entries", payload["timeEntries"])
	}
}

func uintStr(id uint) string { return strconv.FormatUint(uint64(id), 10) }

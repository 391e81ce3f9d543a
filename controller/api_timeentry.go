package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kontorapp/kontor/model"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type APITimeEntry struct {
	ID              uint   `json:"id"`
	CustomerID      *uint  `json:"customer_id,omitempty"`
	ProjectID       *uint  `json:"project_id,omitempty"`
	Description     string `json:"description"`
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	HourlyRate      string `json:"hourly_rate,omitempty"`
	IsBillable      bool   `json:"is_billable"`
	IsBilled        bool   `json:"is_billed"`
	Notes           string `json:"notes,omitempty"`
	CompanyName     string `json:"company_name,omitempty"`
	ProjectName     string `json:"project_name,omitempty"`
}

func toAPITimeEntry(t *model.TimeEntry) APITimeEntry {
	return APITimeEntry{
		ID:              t.ID,
		CustomerID:      t.CustomerID,
		ProjectID:       t.ProjectID,
		Description:     t.Description,
		StartTime:       formatTimePtr(t.StartTime),
		EndTime:         formatTimePtr(t.EndTime),
		DurationMinutes: t.DurationMinutes,
		HourlyRate:      decStrPtr(t.HourlyRate),
		IsBillable:      t.IsBillable,
		IsBilled:        t.IsBilled,
		Notes:           t.Notes,
	}
}

func toAPITimeEntryWithNames(t *model.TimeEntryWithNames) APITimeEntry {
	out := toAPITimeEntry(&t.TimeEntry)
	out.CompanyName = t.CompanyName
	out.ProjectName = t.ProjectName
	return out
}

// APITimeEntryInput is the create/update body. duration_minutes is
// recomputed from start/end when both are given.
type APITimeEntryInput struct {
	CustomerID      *uint    `json:"customer_id"`
	ProjectID       *uint    `json:"project_id"`
	Description     string   `json:"description"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	DurationMinutes *int     `json:"duration_minutes"`
	HourlyRate      *float64 `json:"hourly_rate"`
	IsBillable      *bool    `json:"is_billable"`
	Notes           string   `json:"notes"`
}

func (input *APITimeEntryInput) apply(t *model.TimeEntry) error {
	start, ok := parseTime(input.StartTime)
	if !ok {
		return errors.New("invalid start_time")
	}
	end, ok := parseTime(input.EndTime)
	if !ok {
		return errors.New("invalid end_time")
	}
	t.CustomerID = input.CustomerID
	t.ProjectID = input.ProjectID
	t.Description = input.Description
	t.StartTime = start
	t.EndTime = end
	if input.DurationMinutes != nil {
		t.DurationMinutes = *input.DurationMinutes
	}
	t.HourlyRate = decPtr(input.HourlyRate)
	if input.IsBillable != nil {
		t.IsBillable = *input.IsBillable
	} else {
		t.IsBillable = true
	}
	t.Notes = input.Notes
	return nil
}

// apiTimeEntryList handles GET /api/time-entries
func (ctrl *controller) apiTimeEntryList(c echo.Context) error {
	entries, err := ctrl.model.LoadAllTimeEntries()
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch time entries"))
	}
	items := make([]APITimeEntry, len(entries))
	for i := range entries {
		items[i] = toAPITimeEntryWithNames(&entries[i])
	}
	return respond(c, http.StatusOK, echo.Map{"timeEntries": items})
}

// apiTimeEntryCreate handles POST /api/time-entries
func (ctrl *controller) apiTimeEntryCreate(c echo.Context) error {
	var input APITimeEntryInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	entry := &model.TimeEntry{}
	if err := input.apply(entry); err != nil {
		return respond(c, http.StatusBadRequest, apiError("validation_error", err.Error()))
	}
	if err := ctrl.model.SaveTimeEntry(entry); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to create time entry"))
	}
	return respond(c, http.StatusOK, toAPITimeEntry(entry))
}

// apiTimeEntryUpdate handles PUT /api/time-entries/:id
func (ctrl *controller) apiTimeEntryUpdate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	entry, err := ctrl.model.LoadTimeEntry(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "time entry not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update time entry"))
	}
	var input APITimeEntryInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	if err := input.apply(entry); err != nil {
		return respond(c, http.StatusBadRequest, apiError("validation_error", err.Error()))
	}
	if err := ctrl.model.SaveTimeEntry(entry); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update time entry"))
	}
	return respond(c, http.StatusOK, toAPITimeEntry(entry))
}

// apiTimeEntryDelete handles DELETE /api/time-entries/:id
func (ctrl *controller) apiTimeEntryDelete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	if err := ctrl.model.DeleteTimeEntry(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "time entry not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to delete time entry"))
	}
	return respond(c, http.StatusOK, echo.Map{"success": true})
}

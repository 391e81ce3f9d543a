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

type APIProject struct {
	ID          uint   `json:"id"`
	CustomerID  uint   `json:"customer_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	HourlyRate  string `json:"hourly_rate,omitempty"`
	Budget      string `json:"budget,omitempty"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

func toAPIProject(p *model.Project) APIProject {
	return APIProject{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		Name:        p.Name,
		Description: p.Description,
		HourlyRate:  decStrPtr(p.HourlyRate),
		Budget:      decStrPtr(p.Budget),
		Status:      string(p.Status),
		StartDate:   formatDatePtr(p.StartDate),
		EndDate:     formatDatePtr(p.EndDate),
	}
}

type APIProjectInput struct {
	CustomerID  uint     `json:"customer_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	HourlyRate  *float64 `json:"hourly_rate"`
	Budget      *float64 `json:"budget"`
	Status      string   `json:"status"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
}

func (input *APIProjectInput) apply(p *model.Project) error {
	start, ok := parseTime(input.StartDate)
	if !ok {
		return errors.New("invalid start_date")
	}
	end, ok := parseTime(input.EndDate)
	if !ok {
		return errors.New("invalid end_date")
	}
	p.CustomerID = input.CustomerID
	p.Name = strings.TrimSpace(input.Name)
	p.Description = input.Description
	p.HourlyRate = decPtr(input.HourlyRate)
	p.Budget = decPtr(input.Budget)
	p.Status = model.ProjectStatus(input.Status)
	if p.Status == "" {
		p.Status = model.ProjectStatusActive
	}
	p.StartDate = start
	p.EndDate = end
	return nil
}

// apiProjectList handles GET /api/projects
func (ctrl *controller) apiProjectList(c echo.Context) error {
	projects, err := ctrl.model.LoadAllProjects()
	if err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to fetch projects"))
	}
	items := make([]APIProject, len(projects))
	for i := range projects {
		items[i] = toAPIProject(&projects[i].Project)
		items[i].CompanyName = projects[i].CompanyName
	}
	return respond(c, http.StatusOK, echo.Map{"projects": items})
}

// apiProjectCreate handles POST /api/projects
func (ctrl *controller) apiProjectCreate(c echo.Context) error {
	var input APIProjectInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	if strings.TrimSpace(input.Name) == "" {
		return respond(c, http.StatusBadRequest, apiError("validation_error", "name is required"))
	}
	p := &model.Project{}
	if err := input.apply(p); err != nil {
		return respond(c, http.StatusBadRequest, apiError("validation_error", err.Error()))
	}
	if err := ctrl.model.SaveProject(p); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to create project"))
	}
	return respond(c, http.StatusOK, toAPIProject(p))
}

// apiProjectUpdate handles PUT /api/projects/:id
func (ctrl *controller) apiProjectUpdate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	p, err := ctrl.model.LoadProject(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "project not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update project"))
	}
	var input APIProjectInput
	if err := c.Bind(&input); err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid request body"))
	}
	if err := input.apply(p); err != nil {
		return respond(c, http.StatusBadRequest, apiError("validation_error", err.Error()))
	}
	if err := ctrl.model.SaveProject(p); err != nil {
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to update project"))
	}
	return respond(c, http.StatusOK, toAPIProject(p))
}

// apiProjectDelete handles DELETE /api/projects/:id
func (ctrl *controller) apiProjectDelete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respond(c, http.StatusBadRequest, apiError("bad_request", "invalid id"))
	}
	if err := ctrl.model.DeleteProject(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respond(c, http.StatusNotFound, apiError("not_found", "project not found"))
		}
		return respond(c, http.StatusInternalServerError, apiError("db_error", "Failed to delete project"))
	}
	return respond(c, http.StatusOK, echo.Map{"success": true})
}

package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusPaused    ProjectStatus = "paused"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// Project is a customer-scoped piece of work with its own optional rate
// and budget. HourlyRate nil means "use the customer's rate".
type Project struct {
	gorm.Model
	CustomerID  uint             `gorm:"index"`
	Name        string           `gorm:"not null"`
	Description string
	HourlyRate  *decimal.Decimal `sql:"type:decimal(20,8);"`
	Budget      *decimal.Decimal `sql:"type:decimal(20,8);"`
	Status      ProjectStatus    `gorm:"type:text;not null;default:active"`
	StartDate   *time.Time
	EndDate     *time.Time
}

// ProjectWithCustomer is the list row shape, joined with the customer name.
type ProjectWithCustomer struct {
	Project
	CompanyName string
}

func validProjectStatus(st ProjectStatus) bool {
	switch st {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusPaused, ProjectStatusCancelled:
		return true
	}
	return false
}

// SaveProject creates or updates a project.
func (s *Store) SaveProject(p *Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.New("save project: name is required")
	}
	if p.Status == "" {
		p.Status = ProjectStatusActive
	}
	if !validProjectStatus(p.Status) {
		return errors.New("save project: invalid status")
	}
	return s.db.Save(p).Error
}

// LoadProject loads a single project by id.
func (s *Store) LoadProject(id any) (*Project, error) {
	p := &Project{}
	if err := s.db.First(p, id).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// LoadAllProjects returns all projects with the owning customer's name,
// newest first.
func (s *Store) LoadAllProjects() ([]ProjectWithCustomer, error) {
	var rows []ProjectWithCustomer
	err := s.db.
		Table("projects").
		Select("projects.*, customers.company_name").
		Joins("LEFT JOIN customers ON projects.customer_id = customers.id").
		Where("projects.deleted_at IS NULL").
		Order("projects.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

// DeleteProject removes a project.
func (s *Store) DeleteProject(id uint) error {
	result := s.db.Delete(&Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

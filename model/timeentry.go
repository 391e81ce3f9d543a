package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TimeEntry is one logged work interval. CustomerID and ProjectID are
// optional; HourlyRate nil falls back to the customer's rate at invoicing
// time. Once IsBilled is set the entry never shows up in unbilled queries
// again.
type TimeEntry struct {
	gorm.Model
	CustomerID      *uint `gorm:"index"`
	ProjectID       *uint `gorm:"index"`
	Description     string
	StartTime       *time.Time
	EndTime         *time.Time
	DurationMinutes int
	HourlyRate      *decimal.Decimal `sql:"type:decimal(20,8);"`
	IsBillable      bool             `gorm:"not null"`
	IsBilled        bool             `gorm:"not null;default:false;index"`
	Notes           string
}

// TimeEntryWithNames is the list row shape with joined customer and
// project names.
type TimeEntryWithNames struct {
	TimeEntry
	CompanyName string
	ProjectName string
}

// deriveDuration recomputes DurationMinutes from StartTime/EndTime when
// both are set, rounded to the nearest minute. Otherwise the stored value
// is kept as-is.
func (t *TimeEntry) deriveDuration() {
	if t.StartTime != nil && t.EndTime != nil {
		t.DurationMinutes = int(math.Round(t.EndTime.Sub(*t.StartTime).Minutes()))
	}
}

// SaveTimeEntry creates or updates a time entry.
func (s *Store) SaveTimeEntry(t *TimeEntry) error {
	t.deriveDuration()
	return s.db.Save(t).Error
}

// LoadTimeEntry loads a single time entry by id.
func (s *Store) LoadTimeEntry(id any) (*TimeEntry, error) {
	t := &TimeEntry{}
	if err := s.db.First(t, id).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// LoadAllTimeEntries returns all time entries with joined customer and
// project names, newest start first.
func (s *Store) LoadAllTimeEntries() ([]TimeEntryWithNames, error) {
	var rows []TimeEntryWithNames
	err := s.db.
		Table("time_entries").
		Select("time_entries.*, customers.company_name, projects.name AS project_name").
		Joins("LEFT JOIN customers ON time_entries.customer_id = customers.id").
		Joins("LEFT JOIN projects ON time_entries.project_id = projects.id").
		Where("time_entries.deleted_at IS NULL").
		Order("time_entries.start_time DESC").
		Scan(&rows).Error
	return rows, err
}

// UnbilledTimeEntries returns every entry for the customer that is
// billable and not yet billed.
func (s *Store) UnbilledTimeEntries(customerID uint) ([]TimeEntryWithNames, error) {
	var rows []TimeEntryWithNames
	err := s.db.
		Table("time_entries").
		Select("time_entries.*, projects.name AS project_name").
		Joins("LEFT JOIN projects ON time_entries.project_id = projects.id").
		Where("time_entries.customer_id = ? AND time_entries.is_billable = ? AND time_entries.is_billed = ?", customerID, true, false).
		Where("time_entries.deleted_at IS NULL").
		Order("time_entries.start_time DESC").
		Scan(&rows).Error
	return rows, err
}

// DeleteTimeEntry removes a time entry.
func (s *Store) DeleteTimeEntry(id uint) error {
	result := s.db.Delete(&TimeEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

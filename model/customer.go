package model

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is a client of the business. Everything else (projects, time
// entries, invoices, quotes) references it.
type Customer struct {
	gorm.Model
	CompanyName   string `gorm:"not null"`
	ContactPerson string
	Email         *string `gorm:"uniqueIndex"`
	Phone         string
	Address       string
	City          string
	PostalCode    string
	Country       string
	TaxNumber     string
	HourlyRate    decimal.Decimal `sql:"type:decimal(20,8);"`
	Notes         string
}

var ErrCustomerReferenced = errors.New("customer is referenced by other records")

// SaveCustomer creates or updates a customer. CompanyName is required.
func (s *Store) SaveCustomer(c *Customer) error {
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	if c.CompanyName == "" {
		return errors.New("save customer: company name is required")
	}
	if c.Country == "" {
		c.Country = "Schweiz"
	}
	return s.db.Save(c).Error
}

// LoadCustomer loads a single customer by id.
func (s *Store) LoadCustomer(id any) (*Customer, error) {
	c := &Customer{}
	result := s.db.First(c, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return c, nil
}

// LoadAllCustomers returns all customers, newest first.
func (s *Store) LoadAllCustomers() ([]*Customer, error) {
	var customers = make([]*Customer, 0)
	result := s.db.Order("created_at DESC").Find(&customers)
	return customers, result.Error
}

func likeEscape(str string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(str)
}

// FindAllCustomersWithText searches customers by company name.
func (s *Store) FindAllCustomersWithText(search string) ([]*Customer, error) {
	search = likeEscape(search)
	like := "%" + search + "%"
	var customers []*Customer

	q := s.db
	switch s.db.Dialector.Name() {
	case "postgres":
		q = q.Where("company_name ILIKE ? ESCAPE '\\'", like)
	default: // sqlite
		q = q.Where("LOWER(company_name) LIKE LOWER(?) ESCAPE '\\'", like)
	}
	err := q.Find(&customers).Error
	return customers, err
}

// DeleteCustomer removes a customer. Deletion is restricted when the
// customer is still referenced by projects, time entries, invoices or
// quotes, so no dangling foreign keys can be created.
func (s *Store) DeleteCustomer(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		refs := []struct {
			model any
		}{
			{&Project{}},
			{&TimeEntry{}},
			{&Invoice{}},
			{&Quote{}},
		}
		for _, r := range refs {
			var n int64
			if err := tx.Model(r.model).Where("customer_id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrCustomerReferenced
			}
		}
		result := tx.Delete(&Customer{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

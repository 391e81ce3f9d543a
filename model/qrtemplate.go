package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRTemplate identifies one receipt-upload target. The token goes into
// the encoded URL, so regenerating it invalidates previously printed
// codes.
type QRTemplate struct {
	gorm.Model
	Name        string
	Description string
	Token       string `gorm:"uniqueIndex"`
}

// SaveQRTemplate creates or updates a template, generating an upload
// token on first save.
func (s *Store) SaveQRTemplate(t *QRTemplate) error {
	if t.Token == "" {
		t.Token = uuid.NewString()
	}
	return s.db.Save(t).Error
}

// LoadQRTemplate loads a single template by id.
func (s *Store) LoadQRTemplate(id any) (*QRTemplate, error) {
	t := &QRTemplate{}
	if err := s.db.First(t, id).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// LoadAllQRTemplates returns all templates.
func (s *Store) LoadAllQRTemplates() ([]*QRTemplate, error) {
	var templates = make([]*QRTemplate, 0)
	result := s.db.Order("name").Find(&templates)
	return templates, result.Error
}

// DeleteQRTemplate removes a template.
func (s *Store) DeleteQRTemplate(id uint) error {
	result := s.db.Delete(&QRTemplate{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

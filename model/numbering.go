package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document number prefixes. The external format is a fixed contract:
// RE-2025-001, OFF-2025-001.
const (
	DocTypeInvoice = "RE"
	DocTypeQuote   = "OFF"
)

// DocumentSequence holds one counter per document type and calendar year.
// Numbers are assigned by a transactional read-increment-write on this row
// instead of counting existing documents, so concurrent creations cannot
// hand out the same number twice.
type DocumentSequence struct {
	ID      uint   `gorm:"primarykey"`
	DocType string `gorm:"index:idx_doc_type_year,unique"`
	Year    int    `gorm:"index:idx_doc_type_year,unique"`
	Counter uint
}

func formatDocumentNumber(docType string, year int, counter uint) string {
	return fmt.Sprintf("%s-%04d-%03d", docType, year, counter)
}

// nextDocumentNumber reserves and returns the next number for the given
// document type in the given year. Must be called inside a transaction;
// the sequence row is locked until the transaction ends (Postgres: FOR
// UPDATE; SQLite: no-op, single writer anyway).
func nextDocumentNumber(tx *gorm.DB, docType string, year int) (string, error) {
	var seq DocumentSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(DocumentSequence{DocType: docType, Year: year}).
		FirstOrCreate(&seq).Error
	if err != nil {
		return "", fmt.Errorf("document sequence %s-%d: %w", docType, year, err)
	}
	seq.Counter++
	if err = tx.Model(&DocumentSequence{}).
		Where("id = ?", seq.ID).
		Update("counter", seq.Counter).Error; err != nil {
		return "", fmt.Errorf("document sequence %s-%d: %w", docType, year, err)
	}
	return formatDocumentNumber(docType, year, seq.Counter), nil
}

// NextDocumentNumber is the standalone variant for callers outside a
// larger write sequence.
func (s *Store) NextDocumentNumber(docType string) (string, error) {
	var number string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		number, err = nextDocumentNumber(tx, docType, time.Now().Year())
		return err
	})
	return number, err
}

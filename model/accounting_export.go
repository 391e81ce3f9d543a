package model

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportAccountingYear builds an Excel workbook with one sheet per entry
// type for the given year. All entries of the year are listed regardless
// of status; the status column lets the reader filter, while the totals
// row at the bottom only sums confirmed entries, matching the summary
// report.
func (s *Store) ExportAccountingYear(year int) (*excelize.File, error) {
	var entries []AccountingEntry
	err := s.db.
		Where(s.yearExpr()+" = ?", year).
		Order("entry_date").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("export accounting %d: %w", year, err)
	}

	categories := map[uint]string{}
	var cats []AccountingCategory
	if err := s.db.Find(&cats).Error; err != nil {
		return nil, err
	}
	for _, c := range cats {
		categories[c.ID] = c.Name
	}

	f := excelize.NewFile()
	sheets := map[EntryType]string{
		EntryTypeIncome:  "Einnahmen",
		EntryTypeExpense: "Ausgaben",
	}
	header := []string{"Datum", "Beschreibung", "Kategorie", "Beleg-Nr.",
		"Betrag", "MwSt-Satz", "MwSt-Betrag", "Total", "Status"}

	for _, typ := range []EntryType{EntryTypeIncome, EntryTypeExpense} {
		sheet := sheets[typ]
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		for col, title := range header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet, cell, title); err != nil {
				return nil, err
			}
		}

		row := 2
		confirmedTotal := decimal.Zero
		for _, e := range entries {
			if e.EntryType != typ {
				continue
			}
			category := ""
			if e.CategoryID != nil {
				category = categories[*e.CategoryID]
			}
			values := []any{
				e.EntryDate.Format("02.01.2006"),
				e.Description,
				category,
				e.ReceiptNumber,
				e.Amount.Round(2).InexactFloat64(),
				e.VATRate.Round(2).InexactFloat64(),
				e.VATAmount.Round(2).InexactFloat64(),
				e.TotalAmount.Round(2).InexactFloat64(),
				string(e.Status),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return nil, err
				}
			}
			if e.Status == EntryStatusConfirmed {
				confirmedTotal = confirmedTotal.Add(e.TotalAmount)
			}
			row++
		}

		cell, _ := excelize.CoordinatesToCellName(1, row+1)
		if err := f.SetCellValue(sheet, cell, "Total (bestätigt)"); err != nil {
			return nil, err
		}
		cell, _ = excelize.CoordinatesToCellName(8, row+1)
		if err := f.SetCellValue(sheet, cell, confirmedTotal.Round(2).InexactFloat64()); err != nil {
			return nil, err
		}
	}

	// drop the default sheet, keep Einnahmen active
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(sheets[EntryTypeIncome]); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

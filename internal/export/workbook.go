package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]any
}

type Workbook struct {
	File *excelize.File
}

// NewWorkbook создаёт книгу с листами в заданном порядке. Первый лист
// получает имя стандартного Sheet1.
func NewWorkbook(sheets []SheetSpec) (*Workbook, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Title); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Title); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("new sheet: %w", err)
		}
		if err := writeSheet(f, s); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return &Workbook{File: f}, nil
}

func writeSheet(f *excelize.File, s SheetSpec) error {
	header := make([]any, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.Title, "A1", &header); err != nil {
		return fmt.Errorf("header %s: %w", s.Title, err)
	}
	for r, row := range s.Rows {
		cell := fmt.Sprintf("A%d", r+2)
		if err := f.SetSheetRow(s.Title, cell, &row); err != nil {
			return fmt.Errorf("row %s!%s: %w", s.Title, cell, err)
		}
	}
	return ApplyDefaultExcelFormatting(f, s.Title)
}

// Bytes сериализует книгу, например для отправки документом.
func (w *Workbook) Bytes() ([]byte, error) {
	buf, err := w.File.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *Workbook) Close() error { return w.File.Close() }

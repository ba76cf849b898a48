package output

import (
	"fmt"

	"github.com/ivlev/voterroll/internal/model"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Voters"

// XLSXSink keeps the workbook in memory and saves it on Close.
type XLSXSink struct {
	path string
	f    *excelize.File
	row  int
	err  error
}

func NewXLSXSink(path string) *XLSXSink {
	f := excelize.NewFile()
	s := &XLSXSink{path: path, f: f, row: 1}
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		s.err = fmt.Errorf("rename sheet: %w", err)
	}
	return s
}

func (s *XLSXSink) WriteHeader(columns []string) error {
	row := make([]interface{}, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	return s.writeRow(row)
}

func (s *XLSXSink) WriteRecord(rec model.Record) error {
	return s.writeRow(rec.Row())
}

func (s *XLSXSink) writeRow(row []interface{}) error {
	if s.err != nil {
		return s.err
	}
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", s.row, err)
	}
	s.row++
	return nil
}

func (s *XLSXSink) Close() error {
	defer s.f.Close()
	if s.err != nil {
		return s.err
	}
	if err := s.f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}

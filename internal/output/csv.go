package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/ivlev/voterroll/internal/model"
)

// CSVSink writes UTF-8 comma separated rows; null values are empty cells.
type CSVSink struct {
	file *os.File
	w    *csv.Writer
}

func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &CSVSink{file: f, w: csv.NewWriter(f)}, nil
}

func (s *CSVSink) WriteHeader(columns []string) error {
	return s.w.Write(columns)
}

func (s *CSVSink) WriteRecord(rec model.Record) error {
	return s.w.Write(rec.Strings())
}

func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.file.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	return s.file.Close()
}

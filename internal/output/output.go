// Package output persists the record table.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/voterroll/internal/model"
)

const reportPrefix = "voter_member_wise_report_"

// Sink receives the header once and then records in final order.
// Any error is fatal for the run.
type Sink interface {
	WriteHeader(columns []string) error
	WriteRecord(rec model.Record) error
	Close() error
}

// ReportPath returns the timestamped report file name inside dir.
func ReportPath(dir, format string, now time.Time) string {
	return filepath.Join(dir, reportPrefix+now.Format("20060102_150405")+"."+format)
}

// New creates the sink for format under dir and returns the file path it writes.
func New(format, dir string, now time.Time) (Sink, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, "", fmt.Errorf("create output dir: %w", err)
	}
	path := ReportPath(dir, format, now)

	switch format {
	case "xlsx":
		return NewXLSXSink(path), path, nil
	case "csv":
		s, err := NewCSVSink(path)
		if err != nil {
			return nil, "", err
		}
		return s, path, nil
	default:
		return nil, "", fmt.Errorf("unknown output format: %s", format)
	}
}

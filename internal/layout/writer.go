package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Write writes a layout to a YAML file, creating its directory.
func Write(l *Layout, path string) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Read reads a layout from a YAML file
func Read(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, err
	}

	return &l, nil
}

// ReadAll reads layout files keyed by document name. Every file must be
// made at dpi, and a document may appear only once.
func ReadAll(paths []string, dpi int) (map[string]*Layout, error) {
	layouts := make(map[string]*Layout, len(paths))
	for _, path := range paths {
		l, err := Read(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		switch {
		case l.Document == "":
			return nil, fmt.Errorf("%s: no document name", path)
		case l.DPI != dpi:
			return nil, fmt.Errorf("%s: made at %d dpi, run uses %d", path, l.DPI, dpi)
		case layouts[l.Document] != nil:
			return nil, fmt.Errorf("%s: second layout for %s", path, l.Document)
		}
		layouts[l.Document] = l
	}
	return layouts, nil
}

// Path creates a timestamped layout filename for document inside dir.
func Path(dir, document string, now time.Time) string {
	base := filepath.Base(document)
	name := strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), " ", "_")
	return filepath.Join(dir, fmt.Sprintf("layout_%s_%s.yaml", name, now.Format("2006-01-02_15-04-05")))
}

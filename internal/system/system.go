package system

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ivlev/voterroll/internal/source"
)

// FindDocuments lists the documents in dir: every PDF, every page image
// directory and every loose page image, sorted by name.
func FindDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var docs []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		switch {
		case e.IsDir():
			if hasImages(path) {
				docs = append(docs, path)
			}
		case strings.HasSuffix(strings.ToLower(name), ".pdf"), source.IsImage(name):
			docs = append(docs, path)
		}
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in %s", dir)
	}
	sort.Strings(docs)
	return docs, nil
}

func hasImages(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && source.IsImage(e.Name()) {
			return true
		}
	}
	return false
}

// MissingTesseractLanguages asks the tesseract binary which traineddata files
// are installed and returns the requested ones that are not.
func MissingTesseractLanguages(ctx context.Context, binary string, langs []string) ([]string, error) {
	cmd := exec.CommandContext(ctx, binary, "--list-langs")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s --list-langs: %w", binary, err)
	}

	installed := parseLanguageList(out.String())
	var missing []string
	for _, l := range langs {
		if !installed[l] {
			missing = append(missing, l)
			installed[l] = true // report once
		}
	}
	return missing, nil
}

func parseLanguageList(out string) map[string]bool {
	installed := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		// Header looks like: List of available languages in "/usr/share/tesseract-ocr/5/tessdata/" (3):
		if line == "" || strings.HasPrefix(line, "List of") {
			continue
		}
		installed[line] = true
	}
	return installed
}

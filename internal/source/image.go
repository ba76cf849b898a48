package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/tiff"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
}

// IsImage reports whether name has a page image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ImageSource treats a directory of page images (sorted by file name) or a
// single image file as one document. The dpi argument of RenderPage is
// ignored: scans are used at their native resolution.
type ImageSource struct {
	name  string
	paths []string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && IsImage(entry.Name()) {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		if !IsImage(path) {
			return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
		}
		paths = []string{path}
	}

	return &ImageSource{name: filepath.Base(path), paths: paths}, nil
}

func (s *ImageSource) Name() string {
	return s.name
}

func (s *ImageSource) PageCount() int {
	return len(s.paths)
}

func (s *ImageSource) RenderPage(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= len(s.paths) {
		return nil, fmt.Errorf("page %d out of range (%d pages)", index+1, len(s.paths))
	}
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(s.paths[index]), err)
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}

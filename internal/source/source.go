package source

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var ErrNoPages = errors.New("document has no pages")

// Source is a rasterizer for one document.
type Source interface {
	Name() string
	PageCount() int
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks a rasterizer for path: PDFs go through go-fitz, directories and
// single image files are read as page images.
func Open(path string) (Source, error) {
	var (
		src Source
		err error
	)
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		src, err = NewFitzPDFSource(path)
	} else {
		src, err = NewImageSource(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	if src.PageCount() == 0 {
		src.Close()
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), ErrNoPages)
	}
	return src, nil
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) Name() string {
	return filepath.Base(f.path)
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	return f.doc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

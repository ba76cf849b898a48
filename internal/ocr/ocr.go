// Package ocr defines the text recognition boundary. Engines live in the
// tesseract and cli subpackages.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
)

// PageSegMode is the Tesseract page segmentation mode.
type PageSegMode int

const (
	PSMSingleBlock PageSegMode = 6
	PSMSingleLine  PageSegMode = 7
)

// Request is one image submitted for recognition.
type Request struct {
	// Image is PNG encoded.
	Image       []byte
	Languages   []string
	PageSegMode PageSegMode
	// Whitelist restricts the recognized characters. Empty means no restriction.
	Whitelist string
	// DPI is passed to the engine for scaling heuristics; zero means unknown.
	DPI int
}

type Option func(*Request)

func WithLanguages(langs ...string) Option {
	return func(r *Request) { r.Languages = append([]string(nil), langs...) }
}

func WithPageSegMode(mode PageSegMode) Option {
	return func(r *Request) { r.PageSegMode = mode }
}

func WithWhitelist(chars string) Option {
	return func(r *Request) { r.Whitelist = chars }
}

func WithDPI(dpi int) Option {
	return func(r *Request) { r.DPI = dpi }
}

// NewRequest encodes img and applies opts. The default mode is a single block.
func NewRequest(img image.Image, opts ...Option) (Request, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Request{}, fmt.Errorf("encode image: %w", err)
	}
	req := Request{Image: buf.Bytes(), PageSegMode: PSMSingleBlock}
	for _, opt := range opts {
		opt(&req)
	}
	return req, nil
}

// Engine recognizes the text of a single image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, req Request) (string, error)
}

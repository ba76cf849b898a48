// Package tesseract is the in-process OCR engine backed by gosseract.
// It needs the tesseract and leptonica libraries at build time.
package tesseract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ivlev/voterroll/internal/ocr"
	"github.com/otiai10/gosseract/v2"
)

// Engine creates a fresh client per call, so one Engine can serve
// several workers.
type Engine struct {
	newClient func() *gosseract.Client
}

func New() *Engine {
	return &Engine{newClient: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

func (e *Engine) Recognize(ctx context.Context, req ocr.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.newClient()
	defer c.Close()

	if len(req.Languages) > 0 {
		if err := c.SetLanguage(req.Languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(req.PageSegMode)); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if req.Whitelist != "" {
		if err := c.SetWhitelist(req.Whitelist); err != nil {
			return "", fmt.Errorf("set whitelist: %w", err)
		}
	}
	if req.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(req.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	if err := c.SetImageFromBytes(req.Image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

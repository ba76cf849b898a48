package ocr

import (
	"context"
	"errors"
	"image"
	"log"
	"time"
)

// Recognizer runs an engine as a best-effort, single-shot call: errors and
// timeouts are logged and yield empty text.
type Recognizer struct {
	Engine  Engine
	Timeout time.Duration // zero disables the timeout
}

func NewRecognizer(e Engine, timeout time.Duration) *Recognizer {
	return &Recognizer{Engine: e, Timeout: timeout}
}

type result struct {
	text string
	err  error
}

// Text returns the recognized text of img, or "" on any failure.
func (r *Recognizer) Text(ctx context.Context, img image.Image, opts ...Option) string {
	req, err := NewRequest(img, opts...)
	if err != nil {
		log.Printf("[!] OCR (%s): %v", r.Engine.Name(), err)
		return ""
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	// Engines without context support keep running after a timeout; the
	// buffered channel lets them finish without blocking.
	done := make(chan result, 1)
	go func() {
		text, err := r.Engine.Recognize(ctx, req)
		done <- result{text, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			log.Printf("[!] OCR (%s): %v", r.Engine.Name(), res.err)
			return ""
		}
		return res.text
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Printf("[!] OCR (%s) timed out after %v", r.Engine.Name(), r.Timeout)
		}
		return ""
	}
}

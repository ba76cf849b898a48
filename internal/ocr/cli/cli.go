// Package cli drives the tesseract command line tool. The image goes in on
// stdin and the text comes back on stdout, so no temporary files are used.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ivlev/voterroll/internal/ocr"
)

type Engine struct {
	Binary string
}

func New(binary string) *Engine {
	if binary == "" {
		binary = "tesseract"
	}
	return &Engine{Binary: binary}
}

func (e *Engine) Name() string { return "cli" }

// Args builds the tesseract command line for req.
func (e *Engine) Args(req ocr.Request) []string {
	args := []string{"stdin", "stdout"}
	if len(req.Languages) > 0 {
		args = append(args, "-l", strings.Join(req.Languages, "+"))
	}
	args = append(args, "--psm", strconv.Itoa(int(req.PageSegMode)))
	if req.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(req.DPI))
	}
	if req.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+req.Whitelist)
	}
	return args
}

func (e *Engine) Recognize(ctx context.Context, req ocr.Request) (string, error) {
	cmd := exec.CommandContext(ctx, e.Binary, e.Args(req)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%s start error: %w", e.Binary, err)
	}

	if _, err := stdin.Write(req.Image); err != nil {
		stdin.Close()
		cmd.Wait()
		return "", fmt.Errorf("write image error: %w", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("%s wait error: %w: %s", e.Binary, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

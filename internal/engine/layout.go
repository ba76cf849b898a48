package engine

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/ivlev/voterroll/internal/analyzer"
	"github.com/ivlev/voterroll/internal/layout"
)

// DetectLayouts runs region detection only and writes one layout file per
// document into dir. No OCR is done, so calibration can be checked without
// tesseract.
func (p *Project) DetectLayouts(ctx context.Context, docs []string, dir string) ([]string, error) {
	fmt.Println("[*] Detect-only mode...")

	var paths []string
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		l, err := p.DetectLayout(ctx, doc)
		if err != nil {
			log.Printf("[!] Skipping %s: %v", filepath.Base(doc), err)
			p.Stats.FailedDocuments++
			continue
		}

		path := layout.Path(dir, doc, time.Now())
		if err := layout.Write(l, path); err != nil {
			return paths, fmt.Errorf("write layout: %w", err)
		}
		p.Stats.Documents++
		p.Stats.Pages += len(l.Pages)
		p.Stats.Blocks += l.BlockCount()
		fmt.Printf("[+] %s: %d blocks -> %s\n", filepath.Base(doc), l.BlockCount(), path)
		paths = append(paths, path)
	}
	return paths, nil
}

// DetectLayout records the regions and house crops of every processed page.
func (p *Project) DetectLayout(ctx context.Context, path string) (*layout.Layout, error) {
	src, err := p.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	l := &layout.Layout{
		Version:     layout.Version,
		Document:    filepath.Base(path),
		DPI:         p.Config.DPI,
		Calibration: p.Config.Calibration,
	}

	for i := p.Config.StartPage - 1; i < src.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := src.RenderPage(i, p.Config.DPI)
		if err != nil {
			return nil, fmt.Errorf("page %d: render: %w", i+1, err)
		}

		gray, release := analyzer.Grayscale(img)
		regions, err := p.Detector.Detect(gray)
		release()
		if err != nil {
			return nil, fmt.Errorf("page %d: detect: %w", i+1, err)
		}

		page := layout.Page{Number: i + 1, Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
		for j, r := range regions {
			b := layout.Block{ID: j + 1, Rect: layout.FromRect(r.Rect)}
			if hr := p.Extractor.HouseRect(r.Rect.Dx(), r.Rect.Dy()); !hr.Empty() {
				house := layout.FromRect(hr.Add(r.Rect.Min))
				b.House = &house
			}
			page.Blocks = append(page.Blocks, b)
		}
		fmt.Printf("[>] Page %d → Blocks: %d\n", page.Number, len(page.Blocks))
		l.Pages = append(l.Pages, page)
	}
	return l, nil
}

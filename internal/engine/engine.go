package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/voterroll/internal/analyzer"
	"github.com/ivlev/voterroll/internal/block"
	"github.com/ivlev/voterroll/internal/config"
	"github.com/ivlev/voterroll/internal/fields"
	"github.com/ivlev/voterroll/internal/layout"
	"github.com/ivlev/voterroll/internal/model"
	"github.com/ivlev/voterroll/internal/ocr"
	"github.com/ivlev/voterroll/internal/output"
	"github.com/ivlev/voterroll/internal/source"
	"github.com/ivlev/voterroll/internal/system"
)

// Project drives documents through detection, OCR and parsing and hands
// the records to the sink.
type Project struct {
	Config    *config.Config
	Open      func(path string) (source.Source, error)
	Detector  analyzer.Detector
	Extractor *block.Extractor
	OCR       *ocr.Recognizer
	Parser    *fields.Parser
	Sink      output.Sink
	Layouts   map[string]*layout.Layout // by document name
	Stats     system.Stats
}

func NewProject(cfg *config.Config, det analyzer.Detector, ext *block.Extractor, rec *ocr.Recognizer, parser *fields.Parser, sink output.Sink) *Project {
	return &Project{
		Config:    cfg,
		Open:      source.Open,
		Detector:  det,
		Extractor: ext,
		OCR:       rec,
		Parser:    parser,
		Sink:      sink,
	}
}

// DocumentState belongs to one document. It is created when the document
// starts and dropped once its records are written.
type DocumentState struct {
	Path    string
	Layout  *layout.Layout // nil when blocks are detected
	Carry   fields.CarryOver
	Records []model.Record
	Pages   int
	Blocks  int
}

func NewDocumentState(path string) *DocumentState {
	return &DocumentState{Path: path}
}

// Run processes docs and writes the header and every record to the sink.
// Failed documents are logged and skipped. Sink errors and cancellation
// stop the run.
func (p *Project) Run(ctx context.Context, docs []string) error {
	startTime := time.Now()
	defer func() { p.Stats.Elapsed = time.Since(startTime) }()

	if err := p.Sink.WriteHeader(model.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	workers := p.Config.Workers
	if workers < 1 {
		workers = 1
	}

	fmt.Println("--- [PROJECT: VOTER ROLL] ---")
	fmt.Printf("[*] Input: %s | Documents: %d | Workers: %d\n", p.Config.InputPath, len(docs), workers)
	fmt.Printf("[*] DPI: %d | Start page: %d | OCR: %s\n", p.Config.DPI, p.Config.StartPage, p.OCR.Engine.Name())
	fmt.Println("-----------------------------")

	if workers == 1 {
		for _, path := range docs {
			if err := ctx.Err(); err != nil {
				return err
			}
			state, err := p.ProcessDocument(ctx, path)
			if err := p.collect(path, state, err); err != nil {
				return err
			}
		}
		return nil
	}

	states := make([]*DocumentState, len(docs))
	errs := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			states[i], errs[i] = p.ProcessDocument(gctx, path)
			return nil
		})
	}
	waitErr := g.Wait()

	// Records reach the sink in document order. Documents finished before
	// an interrupt are still written.
	var cancelErr error
	for i, path := range docs {
		err := p.collect(path, states[i], errs[i])
		if isInterrupt(err) {
			if cancelErr == nil {
				cancelErr = err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	if cancelErr != nil {
		return cancelErr
	}
	return waitErr
}

func isInterrupt(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// collect writes a finished document or accounts for its failure.
func (p *Project) collect(path string, state *DocumentState, err error) error {
	name := filepath.Base(path)
	if err != nil {
		if isInterrupt(err) {
			log.Printf("[!] %s: interrupted, records discarded", name)
			return err
		}
		log.Printf("[!] Skipping %s: %v", name, err)
		p.Stats.FailedDocuments++
		return nil
	}

	for _, rec := range state.Records {
		if err := p.Sink.WriteRecord(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	p.Stats.Documents++
	p.Stats.Pages += state.Pages
	p.Stats.Blocks += state.Blocks
	p.Stats.Records += len(state.Records)
	fmt.Printf("[+] %s: %d records\n", name, len(state.Records))
	return nil
}

// ProcessDocument runs every page from the start page on with a fresh
// carry-over. Any open or render failure fails the whole document.
func (p *Project) ProcessDocument(ctx context.Context, path string) (*DocumentState, error) {
	src, err := p.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	state := NewDocumentState(path)
	state.Layout = p.Layouts[filepath.Base(path)]
	pageCount := src.PageCount()
	fmt.Printf("[*] Processing %s | Pages: %d\n", src.Name(), pageCount)
	if state.Layout != nil {
		fmt.Printf("[*] Using stored layout for %s\n", state.Layout.Document)
	}

	for i := p.Config.StartPage - 1; i < pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.ProcessPage(ctx, src, i, state); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	// OCR turns cancellation into empty text, so a page cut short looks
	// finished.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return state, nil
}

// ProcessPage renders page index (0-based) and processes its regions in
// reading order.
func (p *Project) ProcessPage(ctx context.Context, src source.Source, index int, state *DocumentState) error {
	img, err := src.RenderPage(index, p.Config.DPI)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	gray, release := analyzer.Grayscale(img)
	regions, err := p.regions(gray, state.Layout, index+1)
	if err != nil {
		release()
		return fmt.Errorf("detect: %w", err)
	}

	blocks := make([]block.Block, len(regions))
	for i, r := range regions {
		blocks[i] = p.Extractor.Extract(gray, r)
	}
	release()

	pageNo := index + 1
	fmt.Printf("[>] Page %d → Blocks: %d\n", pageNo, len(blocks))

	for _, b := range blocks {
		if rec, ok := p.ProcessBlock(ctx, b, &state.Carry, pageNo); ok {
			state.Records = append(state.Records, rec)
		}
	}
	state.Pages++
	state.Blocks += len(blocks)
	return nil
}

// regions returns the stored blocks of the page when the document layout
// covers it, and runs the detector otherwise.
func (p *Project) regions(gray *image.Gray, l *layout.Layout, pageNo int) ([]analyzer.Region, error) {
	if l != nil {
		if page, ok := l.Page(pageNo); ok {
			var regions []analyzer.Region
			for _, b := range page.Blocks {
				if r := b.Rect.Rect().Intersect(gray.Bounds()); !r.Empty() {
					regions = append(regions, analyzer.Region{Rect: r})
				}
			}
			return regions, nil
		}
	}
	return p.Detector.Detect(gray)
}

// ProcessBlock recognizes one block. It returns false when the block has
// no text.
func (p *Project) ProcessBlock(ctx context.Context, b block.Block, carry *fields.CarryOver, page int) (model.Record, bool) {
	cfg := p.Config.OCR

	var houseText string
	if b.House != nil {
		houseText = p.OCR.Text(ctx, b.House,
			ocr.WithLanguages(cfg.HouseLanguages...),
			ocr.WithPageSegMode(ocr.PSMSingleLine),
			ocr.WithWhitelist(cfg.HouseWhitelist),
			ocr.WithDPI(p.Config.DPI),
		)
	}

	blockText := p.OCR.Text(ctx, b.Image,
		ocr.WithLanguages(cfg.BlockLanguages...),
		ocr.WithPageSegMode(ocr.PSMSingleBlock),
		ocr.WithDPI(p.Config.DPI),
	)

	return p.Parser.Parse(houseText, blockText, carry, page)
}

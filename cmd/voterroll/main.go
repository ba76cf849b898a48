package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/voterroll/internal/analyzer"
	"github.com/ivlev/voterroll/internal/block"
	"github.com/ivlev/voterroll/internal/config"
	"github.com/ivlev/voterroll/internal/engine"
	"github.com/ivlev/voterroll/internal/fields"
	"github.com/ivlev/voterroll/internal/layout"
	"github.com/ivlev/voterroll/internal/normalize"
	"github.com/ivlev/voterroll/internal/ocr"
	"github.com/ivlev/voterroll/internal/ocr/cli"
	"github.com/ivlev/voterroll/internal/ocr/tesseract"
	"github.com/ivlev/voterroll/internal/output"
	"github.com/ivlev/voterroll/internal/system"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.Default()
	cfg.BuildVersion = version

	configPtr := flag.String("config", "", "YAML config file (flags given explicitly override it)")
	inputPtr := flag.String("input", cfg.InputPath, "Folder with roll PDFs, page image folders or page images")
	outputPtr := flag.String("output-dir", cfg.OutputDir, "Folder for the report")
	formatPtr := flag.String("format", cfg.OutputFormat, "Report format: xlsx, csv")
	dpiPtr := flag.Int("dpi", cfg.DPI, "Rendering DPI")
	startPagePtr := flag.Int("start-page", cfg.StartPage, "First page to process (1-based); earlier pages are cover pages")
	workersPtr := flag.Int("workers", cfg.Workers, "Documents processed in parallel")
	enginePtr := flag.String("ocr-engine", cfg.OCR.Engine, "OCR engine: tesseract (library), cli (tesseract binary)")
	binaryPtr := flag.String("tesseract", cfg.OCR.Binary, "Path to the tesseract binary")
	timeoutPtr := flag.Duration("ocr-timeout", cfg.OCR.Timeout, "Timeout per OCR call, 0 disables it")
	normalizerPtr := flag.String("normalizer", cfg.Normalizer, "Name normalizer: refined, basic")
	lexiconPtr := flag.String("lexicon", cfg.LexiconPath, "YAML lexicon replacing the built-in name corrections")
	scanAllPtr := flag.Bool("scan-all-names", cfg.ScanAllNameLines, "Keep looking for a name when the first candidate line cleans to nothing")
	statsPtr := flag.Bool("stats", cfg.ShowStats, "Print a performance report and append it to benchmark.log")
	detectOnlyPtr := flag.Bool("detect-only", cfg.DetectOnly, "Only detect blocks and write layout YAML files for calibration")
	layoutPtr := flag.String("layout", "", "Comma-separated layout YAML files whose blocks replace detection for their documents")

	flag.Parse()

	if *configPtr != "" {
		if err := config.Load(*configPtr, cfg); err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		fmt.Printf("[*] Config: %s\n", *configPtr)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPtr
		case "output-dir":
			cfg.OutputDir = *outputPtr
		case "format":
			cfg.OutputFormat = *formatPtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "start-page":
			cfg.StartPage = *startPagePtr
		case "workers":
			cfg.Workers = *workersPtr
		case "ocr-engine":
			cfg.OCR.Engine = *enginePtr
		case "tesseract":
			cfg.OCR.Binary = *binaryPtr
		case "ocr-timeout":
			cfg.OCR.Timeout = *timeoutPtr
		case "normalizer":
			cfg.Normalizer = *normalizerPtr
		case "lexicon":
			cfg.LexiconPath = *lexiconPtr
		case "scan-all-names":
			cfg.ScanAllNameLines = *scanAllPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		case "detect-only":
			cfg.DetectOnly = *detectOnlyPtr
		case "layout":
			cfg.Layouts = strings.Split(*layoutPtr, ",")
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}
	cfg.Calibration = cfg.Calibration.Scaled(cfg.DPI)

	docs, err := system.FindDocuments(cfg.InputPath)
	if err != nil {
		log.Fatalf("[-] Error: %v. Put roll PDFs into %s/", err, cfg.InputPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	detector, err := analyzer.NewDetector(cfg.Detector, cfg.Calibration)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	extractor := block.NewExtractor(cfg.Calibration)

	if cfg.DetectOnly {
		project := engine.NewProject(cfg, detector, extractor, nil, nil, nil)
		paths, err := project.DetectLayouts(ctx, docs, cfg.OutputDir)
		if err != nil {
			log.Fatalf("[-] Project error: %v", err)
		}
		fmt.Printf("[+++] Layouts saved: %d (blocks: %d)\n", len(paths), project.Stats.Blocks)
		return
	}

	ocrEngine, err := newOCREngine(cfg.OCR)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	checkLanguages(ctx, cfg.OCR)

	var lex *normalize.Lexicon
	if cfg.LexiconPath != "" {
		lex, err = normalize.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			log.Fatalf("[-] Lexicon error: %v", err)
		}
		fmt.Printf("[*] Lexicon: %s (version %d)\n", cfg.LexiconPath, lex.Version)
	}
	normalizer, err := normalize.New(cfg.Normalizer, lex)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	sink, reportPath, err := output.New(cfg.OutputFormat, cfg.OutputDir, time.Now())
	if err != nil {
		log.Fatalf("[-] Output error: %v", err)
	}

	project := engine.NewProject(cfg,
		detector,
		extractor,
		ocr.NewRecognizer(ocrEngine, cfg.OCR.Timeout),
		fields.NewParser(normalizer, cfg.ScanAllNameLines),
		sink,
	)
	if len(cfg.Layouts) > 0 {
		project.Layouts, err = layout.ReadAll(cfg.Layouts, cfg.DPI)
		if err != nil {
			log.Fatalf("[-] Layout error: %v", err)
		}
		fmt.Printf("[*] Stored layouts: %d\n", len(project.Layouts))
	}

	runErr := project.Run(ctx, docs)
	closeErr := sink.Close()

	switch {
	case errors.Is(runErr, context.Canceled):
		log.Printf("[!] Interrupted, saving the documents finished so far")
	case runErr != nil:
		log.Fatalf("[-] Project error: %v", runErr)
	}
	if closeErr != nil {
		log.Fatalf("[-] Output error: %v", closeErr)
	}

	if project.Stats.FailedDocuments > 0 {
		fmt.Printf("[!] Skipped documents: %d (see log above)\n", project.Stats.FailedDocuments)
	}
	fmt.Printf("[+++] Total members saved: %d\n", project.Stats.Records)
	fmt.Printf("[+++] Report: %s\n", reportPath)

	if cfg.ShowStats {
		fmt.Print(project.Stats.Report(cfg.BuildVersion))
		if err := system.AppendBenchmark("benchmark.log", project.Stats.LogLine(cfg.BuildVersion, cfg.InputPath)); err != nil {
			fmt.Printf("[!] Could not write benchmark.log: %v\n", err)
		}
	}
}

func newOCREngine(cfg config.OCR) (ocr.Engine, error) {
	switch cfg.Engine {
	case "tesseract", "":
		return tesseract.New(), nil
	case "cli":
		return cli.New(cfg.Binary), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine: %s", cfg.Engine)
	}
}

// checkLanguages warns about traineddata the roll needs but tesseract lacks.
func checkLanguages(ctx context.Context, cfg config.OCR) {
	langs := append(append([]string{}, cfg.HouseLanguages...), cfg.BlockLanguages...)
	missing, err := system.MissingTesseractLanguages(ctx, cfg.Binary, langs)
	if err != nil {
		log.Printf("[!] Could not list tesseract languages: %v", err)
		return
	}
	if len(missing) > 0 {
		log.Printf("[!] Tesseract is missing traineddata for: %v. Names and ages will come out empty.", missing)
	}
}

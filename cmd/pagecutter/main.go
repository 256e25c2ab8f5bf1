package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/kpauljoseph/pagecutter/internal/config"
	"github.com/kpauljoseph/pagecutter/internal/pdf"
	"github.com/kpauljoseph/pagecutter/internal/split"
	"github.com/kpauljoseph/pagecutter/pkg/logger"
	"github.com/kpauljoseph/pagecutter/pkg/models"
	"github.com/kpauljoseph/pagecutter/pkg/updater"
	"github.com/kpauljoseph/pagecutter/pkg/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	outputDir := flag.String("output-dir", "", "directory for output pages (overrides config)")
	prefix := flag.String("prefix", "", "prefix for output filenames (overrides config)")
	tolerance := flag.Int("tolerance", -1, "color variance tolerance for gap detection, 0-255 (overrides config)")
	ratio := flag.String("ratio", "", "target page aspect ratio as W:H, e.g. 9:16 (overrides config)")
	padding := flag.Int("padding", -1, "left and right padding in pixels (overrides config)")
	splitDir := flag.String("split", "", "split direction: horizontal, vertical-ltr or vertical-rtl (overrides config)")
	margins := flag.String("margins", "", "page margins as 'top,right,bottom,left' pixels; overrides padding")
	pdfPath := flag.String("pdf", "", "also export all pages as a single PDF file")
	pdfSize := flag.String("pdf-size", "", "PDF page size in cm as WxH, e.g. 21x29.7 for A4")
	pdfDPI := flag.Int("pdf-dpi", 0, "PDF resolution in DPI (overrides config)")
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	debug := flag.Bool("debug", false, "enable debug mode with trace logging")
	checkUpdate := flag.Bool("check-update", false, "check for a newer release before processing")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Print(version.GetDetailedVersionInfo())
		return
	}

	log := logger.New(logger.WithPrefix("[pagecutter] "))
	log.SetVerbose(*verbose)
	if *debug {
		log.SetLevel(logger.LevelTrace)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal("Error loading config: %v", err)
		}
	}
	applyOverrides(cfg, *outputDir, *prefix, *tolerance, *ratio, *padding, *splitDir, *pdfSize, *pdfDPI)

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <input-image>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	if *checkUpdate {
		if info, err := updater.NewChecker(log).CheckForUpdates(); err != nil {
			log.Warn("Update check failed: %v", err)
		} else if info != nil && info.IsAvailable {
			log.Info("A newer version is available: %s (%s)", info.LatestVersion, info.ReleaseURL)
		}
	}

	opts, err := buildOptions(cfg, *margins)
	if err != nil {
		log.Fatal("%v", err)
	}

	log.Info("Loading image: %s", inputPath)
	img, err := loadImage(inputPath)
	if err != nil {
		log.Fatal("Error loading image: %v", err)
	}
	b := img.Bounds()
	log.Info("Image dimensions: %dx%d", b.Dx(), b.Dy())

	paginator := split.New(log)
	result, err := paginator.Paginate(context.Background(), img, opts)
	if err != nil {
		log.Fatal("Error paginating: %v", err)
	}

	writer, err := split.NewWriter(cfg.OutputDir, log)
	if err != nil {
		log.Fatal("Error creating output directory: %v", err)
	}
	paths, err := writer.WritePages(result, cfg.OutputPrefix)
	if err != nil {
		log.Fatal("Error writing pages: %v", err)
	}

	log.Info("Created %d pages in %s", len(paths), cfg.OutputDir)
	for _, p := range paths {
		log.Debug("  %s", p)
	}

	if *pdfPath != "" {
		exportOpts := pdf.ExportOptions{DPI: cfg.PDF.DPI}
		if cfg.PDF.Size != "" {
			exportOpts.Size, err = pdf.ParseSize(cfg.PDF.Size)
			if err != nil {
				log.Fatal("%v", err)
			}
		}

		exporter, err := pdf.NewExporter(filepath.Join(os.TempDir(), "pagecutter-pdf"), log)
		if err != nil {
			log.Fatal("Error initializing PDF exporter: %v", err)
		}
		defer exporter.Cleanup()

		if err := exporter.Export(paths, *pdfPath, exportOpts); err != nil {
			log.Fatal("Error exporting PDF: %v", err)
		}
	}
}

func applyOverrides(cfg *config.Config, outputDir, prefix string, tolerance int, ratio string, padding int, splitDir, pdfSize string, pdfDPI int) {
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if prefix != "" {
		cfg.OutputPrefix = prefix
	}
	if tolerance >= 0 {
		cfg.Tolerance = tolerance
	}
	if ratio != "" {
		cfg.Ratio = ratio
	}
	if padding >= 0 {
		cfg.Padding = padding
	}
	if splitDir != "" {
		cfg.Direction = splitDir
	}
	if pdfSize != "" {
		cfg.PDF.Size = pdfSize
	}
	if pdfDPI > 0 {
		cfg.PDF.DPI = pdfDPI
	}
}

func buildOptions(cfg *config.Config, marginSpec string) (split.Options, error) {
	ratio, err := models.ParseRatio(cfg.Ratio)
	if err != nil {
		return split.Options{}, err
	}

	direction, err := models.ParseDirection(cfg.Direction)
	if err != nil {
		return split.Options{}, err
	}

	opts := split.Options{
		Ratio:     ratio,
		Direction: direction,
		Tolerance: cfg.Tolerance,
		Padding:   cfg.Padding,
	}

	if marginSpec != "" {
		opts.Margins, err = models.ParseMargins(marginSpec)
		if err != nil {
			return split.Options{}, err
		}
	}

	return opts, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

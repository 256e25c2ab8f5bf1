package pdf

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	xdraw "golang.org/x/image/draw"

	"github.com/kpauljoseph/pagecutter/pkg/logger"
)

const DefaultDPI = 300

// SizeCM is a physical PDF page size in centimeters.
type SizeCM struct {
	Width  float64
	Height float64
}

// ParseSize parses "WxH" in centimeters, e.g. "21x29.7" for A4.
func ParseSize(s string) (SizeCM, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return SizeCM{}, fmt.Errorf("invalid PDF size %q: use WxH in cm (e.g. 21x29.7)", s)
	}

	w, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return SizeCM{}, fmt.Errorf("invalid PDF size %q: %w", s, err)
	}
	h, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return SizeCM{}, fmt.Errorf("invalid PDF size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return SizeCM{}, fmt.Errorf("invalid PDF size %q: dimensions must be positive", s)
	}

	return SizeCM{Width: w, Height: h}, nil
}

type ExportOptions struct {
	// Size fixes the physical page size. Zero value keeps each page at
	// the image's native size.
	Size SizeCM
	// DPI is the rasterization resolution used with Size.
	DPI int
}

// Exporter collects page images into a single PDF via pdfcpu.
type Exporter struct {
	tempDir string
	log     *logger.Logger
}

func NewExporter(tempDir string, log *logger.Logger) (*Exporter, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &Exporter{tempDir: tempDir, log: log}, nil
}

// Export writes one PDF containing every page file in order. With a
// physical size set, pages are first fitted and centered onto white
// canvases of exactly size x DPI pixels so each PDF page is filled
// edge to edge.
func (e *Exporter) Export(pageFiles []string, outPath string, opts ExportOptions) error {
	if len(pageFiles) == 0 {
		return fmt.Errorf("no pages to export")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	conf := model.NewDefaultConfiguration()

	if opts.Size.Width > 0 && opts.Size.Height > 0 {
		targetW := int(opts.Size.Width / 2.54 * float64(dpi))
		targetH := int(opts.Size.Height / 2.54 * float64(dpi))
		e.log.Info("PDF page size: %.1fcm x %.1fcm @ %ddpi = %dx%dpx",
			opts.Size.Width, opts.Size.Height, dpi, targetW, targetH)

		fitted, err := e.fitPages(pageFiles, targetW, targetH)
		if err != nil {
			return err
		}

		desc := fmt.Sprintf("dim:%.2f %.2f, pos:c, dpi:%d", opts.Size.Width, opts.Size.Height, dpi)
		imp, err := api.Import(desc, types.CENTIMETRES)
		if err != nil {
			return fmt.Errorf("failed to build import description: %w", err)
		}

		if err := api.ImportImagesFile(fitted, outPath, imp, conf); err != nil {
			return fmt.Errorf("failed to build PDF: %w", err)
		}
		e.log.Info("PDF saved: %s (%d pages)", outPath, len(fitted))
		return nil
	}

	if err := api.ImportImagesFile(pageFiles, outPath, nil, conf); err != nil {
		return fmt.Errorf("failed to build PDF: %w", err)
	}

	e.log.Info("PDF saved: %s (%d pages)", outPath, len(pageFiles))
	return nil
}

// fitPages scales each page to fit the target pixel size, centered on
// a white canvas, and writes the results into the temp dir.
func (e *Exporter) fitPages(pageFiles []string, targetW, targetH int) ([]string, error) {
	fitted := make([]string, len(pageFiles))

	for i, path := range pageFiles {
		img, err := loadImage(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %s: %w", path, err)
		}

		canvas := fitToCanvas(img, targetW, targetH)

		outPath := filepath.Join(e.tempDir, fmt.Sprintf("pdfpage_%03d.png", i+1))
		if err := savePNG(canvas, outPath); err != nil {
			return nil, fmt.Errorf("failed to save fitted page: %w", err)
		}
		fitted[i] = outPath
	}

	return fitted, nil
}

func fitToCanvas(img image.Image, targetW, targetH int) *image.RGBA {
	b := img.Bounds()
	scale := float64(targetW) / float64(b.Dx())
	if s := float64(targetH) / float64(b.Dy()); s < scale {
		scale = s
	}
	newW := int(float64(b.Dx()) * scale)
	newH := int(float64(b.Dy()) * scale)

	canvas := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	x := (targetW - newW) / 2
	y := (targetH - newH) / 2
	xdraw.CatmullRom.Scale(canvas, image.Rect(x, y, x+newW, y+newH), img, b, xdraw.Over, nil)

	return canvas
}

func (e *Exporter) Cleanup() error {
	return os.RemoveAll(e.tempDir)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func savePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

package split

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/kpauljoseph/pagecutter/internal/gap"
	"github.com/kpauljoseph/pagecutter/pkg/logger"
	"github.com/kpauljoseph/pagecutter/pkg/models"
)

// Options is the full configuration for one pagination run. Margins and
// Padding are mutually exclusive in effect: when Margins is set the
// padding value is ignored.
type Options struct {
	Ratio     models.Ratio
	Direction models.Direction
	Tolerance int
	Padding   int
	Margins   *models.Margins
}

func (o Options) validate() error {
	if _, err := models.ParseDirection(string(o.Direction)); err != nil {
		return err
	}
	if o.Ratio.Width <= 0 || o.Ratio.Height <= 0 {
		return fmt.Errorf("ratio components must be positive, got %d:%d", o.Ratio.Width, o.Ratio.Height)
	}
	if o.Tolerance < gap.MinTolerance || o.Tolerance > gap.MaxTolerance {
		return fmt.Errorf("tolerance must be within [%d, %d], got %d", gap.MinTolerance, gap.MaxTolerance, o.Tolerance)
	}
	if o.Padding < 0 {
		return fmt.Errorf("padding must be non-negative, got %d", o.Padding)
	}
	if m := o.Margins; m != nil {
		if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
			return fmt.Errorf("margins must be non-negative, got %+v", *m)
		}
	}
	return nil
}

// PageImage is one composed output page. Pages within a Result share
// outer dimensions except where the remainder forced the canvas to
// grow.
type PageImage struct {
	models.Page
	// ReadingIndex orders pages for consumption: 0 is read first. It
	// equals the slice index except for vertical-rtl, where it runs
	// backwards.
	ReadingIndex int
	Image        *image.RGBA
}

// Result holds composed pages in ascending index order along the scan
// axis plus the gap groups the cuts were chosen from.
type Result struct {
	Pages  []PageImage
	Groups []models.GapGroup
}

// InReadingOrder returns the pages sorted by ReadingIndex.
func (r *Result) InReadingOrder() []PageImage {
	ordered := make([]PageImage, len(r.Pages))
	for _, p := range r.Pages {
		ordered[p.ReadingIndex] = p
	}
	return ordered
}

// Paginator slices one long screenshot into uniformly-sized pages,
// cutting only at detected gaps. It keeps no state between calls.
type Paginator struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Paginator {
	return &Paginator{log: log}
}

// Paginate runs the full pipeline: detect gaps, plan cuts, compose
// pages. All input validation happens before any page is composed;
// on error no partial result is returned.
func (p *Paginator) Paginate(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image has zero extent (%dx%d)", width, height)
	}

	vertical := opts.Direction.Vertical()

	total, breadth := height, width
	axis := gap.Rows
	if vertical {
		total, breadth = width, height
		axis = gap.Columns
	}

	lay, err := computeLayout(opts, breadth, vertical)
	if err != nil {
		return nil, err
	}

	p.log.Debug("Detecting gaps (axis=%v, tolerance=%d)", axis, opts.Tolerance)
	groups := gap.Detect(img, axis, opts.Tolerance)
	p.log.Info("Found %d gap groups", len(groups))
	if len(groups) == 0 {
		p.log.Warn("No gaps found; falling back to forced cuts at %dpx intervals", lay.ideal)
	}

	pages, err := Plan(total, lay.ideal, groups, opts.Direction.RTL())
	if err != nil {
		return nil, err
	}
	p.log.Info("Planned %d pages (ideal extent %dpx)", len(pages), lay.ideal)

	result := &Result{
		Pages:  make([]PageImage, len(pages)),
		Groups: groups,
	}

	// Page slices are read-only and non-overlapping, so composition
	// can run concurrently once the plan is fixed.
	g, ctx := errgroup.WithContext(ctx)
	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			readingIndex := i
			if opts.Direction.RTL() {
				readingIndex = len(pages) - 1 - i
			}
			result.Pages[i] = PageImage{
				Page:         page,
				ReadingIndex: readingIndex,
				Image:        composePage(img, page, lay, opts, len(pages)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// layout fixes the per-run canvas geometry. In margin mode the canvas
// is identical for every page; in padding mode the scan-axis extent
// grows for pages larger than ideal so content is never cropped.
type layout struct {
	ideal       int
	canvasW     int
	canvasH     int
	margins     models.Margins
	contentArea int // scan-axis content length, margin mode only
	marginMode  bool
	vertical    bool
}

func computeLayout(opts Options, breadth int, vertical bool) (layout, error) {
	rw, rh := opts.Ratio.Width, opts.Ratio.Height

	if m := opts.Margins; m != nil {
		lay := layout{margins: *m, marginMode: true, vertical: vertical}
		if vertical {
			lay.canvasH = breadth + m.Top + m.Bottom
			lay.canvasW = lay.canvasH * rw / rh
			lay.contentArea = lay.canvasW - m.Left - m.Right
			if lay.contentArea <= 0 {
				return layout{}, fmt.Errorf("margins too large: left(%d) + right(%d) exceeds page width %d",
					m.Left, m.Right, lay.canvasW)
			}
		} else {
			lay.canvasW = breadth + m.Left + m.Right
			lay.canvasH = lay.canvasW * rh / rw
			lay.contentArea = lay.canvasH - m.Top - m.Bottom
			if lay.contentArea <= 0 {
				return layout{}, fmt.Errorf("margins too large: top(%d) + bottom(%d) exceeds page height %d",
					m.Top, m.Bottom, lay.canvasH)
			}
		}
		lay.ideal = lay.contentArea
		return lay, nil
	}

	lay := layout{
		margins:  models.Margins{Left: opts.Padding, Right: opts.Padding},
		vertical: vertical,
	}
	if vertical {
		lay.ideal = int(math.Round(float64(breadth) * float64(rw) / float64(rh)))
		lay.canvasW = lay.ideal + 2*opts.Padding
		lay.canvasH = breadth
	} else {
		lay.ideal = int(math.Round(float64(breadth) * float64(rh) / float64(rw)))
		lay.canvasW = breadth + 2*opts.Padding
		lay.canvasH = lay.ideal
	}
	return lay, nil
}

// composePage places one page slice onto its white canvas, applying
// the centering and remainder alignment rules.
func composePage(src image.Image, page models.Page, lay layout, opts Options, numPages int) *image.RGBA {
	bounds := src.Bounds()

	var contentRect image.Rectangle
	if lay.vertical {
		contentRect = image.Rect(bounds.Min.X+page.Start, bounds.Min.Y, bounds.Min.X+page.End, bounds.Max.Y)
	} else {
		contentRect = image.Rect(bounds.Min.X, bounds.Min.Y+page.Start, bounds.Max.X, bounds.Min.Y+page.End)
	}
	contentW := contentRect.Dx()
	contentH := contentRect.Dy()

	canvasW, canvasH := lay.canvasW, lay.canvasH

	var content image.Image = src
	srcRect := contentRect

	if lay.marginMode {
		// Fixed canvas: oversized content (remainder or overshoot
		// pages) is downscaled to fit the content area, never upscaled.
		extent := contentH
		if lay.vertical {
			extent = contentW
		}
		if extent > lay.contentArea {
			scale := float64(lay.contentArea) / float64(extent)
			scaledW := int(float64(contentW) * scale)
			scaledH := int(float64(contentH) * scale)
			scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
			xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, contentRect, xdraw.Src, nil)
			content = scaled
			srcRect = scaled.Bounds()
			contentW, contentH = scaledW, scaledH
		}
	} else {
		// Full-bleed canvas grows with the page so nothing is cropped.
		if lay.vertical && contentW > lay.ideal {
			canvasW = contentW + 2*opts.Padding
		}
		if !lay.vertical && contentH > lay.ideal {
			canvasH = contentH
		}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	x, y := placement(lay, page, opts, numPages, canvasW, canvasH, contentW, contentH)
	dstRect := image.Rect(x, y, x+contentW, y+contentH)
	draw.Draw(canvas, dstRect, content, srcRect.Min, draw.Src)

	return canvas
}

func placement(lay layout, page models.Page, opts Options, numPages, canvasW, canvasH, contentW, contentH int) (int, int) {
	m := lay.margins
	alignRemainder := page.IsRemainder && numPages > 1

	if lay.vertical {
		y := m.Top
		if lay.marginMode && contentH < canvasH-m.Top-m.Bottom {
			y = m.Top + (canvasH-m.Top-m.Bottom-contentH)/2
		}

		var x int
		switch {
		case alignRemainder && opts.Direction.RTL():
			// Leftmost page, read last: content flush right.
			x = canvasW - m.Right - contentW
		case alignRemainder:
			x = m.Left
		default:
			x = (canvasW - contentW) / 2
		}
		return x, y
	}

	x := m.Left
	if contentW < canvasW-m.Left-m.Right {
		x = m.Left + (canvasW-m.Left-m.Right-contentW)/2
	}

	var y int
	switch {
	case alignRemainder:
		// Bottom page: content flush top.
		y = m.Top
	case lay.marginMode:
		y = m.Top
		if contentH < lay.contentArea {
			y = m.Top + (lay.contentArea-contentH)/2
		}
	default:
		y = (canvasH - contentH) / 2
	}
	return x, y
}

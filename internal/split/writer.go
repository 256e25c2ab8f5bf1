package split

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/kpauljoseph/pagecutter/pkg/logger"
)

// Writer persists composed pages as PNG files named by reading order:
// <prefix>_001.png is the page read first, which for vertical-rtl is
// the rightmost slice, not the lowest-index one.
type Writer struct {
	outputDir string
	log       *logger.Logger
}

func NewWriter(outputDir string, log *logger.Logger) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{outputDir: outputDir, log: log}, nil
}

// WritePages writes every page of the result and returns the file
// paths in reading order.
func (w *Writer) WritePages(result *Result, prefix string) ([]string, error) {
	ordered := result.InReadingOrder()

	paths := make([]string, len(ordered))
	for i, page := range ordered {
		path := filepath.Join(w.outputDir, fmt.Sprintf("%s_%03d.png", prefix, i+1))
		if err := saveImage(page.Image, path); err != nil {
			return nil, fmt.Errorf("failed to save page %d: %w", i+1, err)
		}

		b := page.Image.Bounds()
		w.log.Debug("Page %d: %dx%d (axis %d-%d, remainder=%v)",
			i+1, b.Dx(), b.Dy(), page.Start, page.End, page.IsRemainder)
		paths[i] = path
	}

	return paths, nil
}

func saveImage(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}

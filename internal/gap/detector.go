package gap

import (
	"image"

	"github.com/kpauljoseph/pagecutter/pkg/models"
)

// Axis selects which lines of the image are scanned for gaps.
type Axis int

const (
	// Rows scans horizontal lines, used for top-to-bottom splits.
	Rows Axis = iota
	// Columns scans vertical lines, used for left/right splits.
	Columns
)

func (a Axis) String() string {
	if a == Columns {
		return "columns"
	}
	return "rows"
}

const (
	MinTolerance = 0
	MaxTolerance = 255
)

// Detect scans the image along the given axis and returns maximal runs
// of pure-color lines as gap groups, ascending by start index. A line
// is pure when every pixel stays within tolerance of the line's first
// pixel on all four 8-bit channels. An image without any pure lines
// yields an empty slice.
//
// Detect is a pure function: same image, axis and tolerance always
// produce the same groups.
func Detect(img image.Image, axis Axis, tolerance int) []models.GapGroup {
	bounds := img.Bounds()

	length := bounds.Dy()
	if axis == Columns {
		length = bounds.Dx()
	}

	var groups []models.GapGroup
	inGap := false
	gapStart := 0

	for i := 0; i < length; i++ {
		isGap := pureLine(img, axis, i, tolerance)

		if isGap && !inGap {
			gapStart = i
			inGap = true
		} else if !isGap && inGap {
			groups = append(groups, models.GapGroup{Start: gapStart, End: i - 1})
			inGap = false
		}
	}

	if inGap {
		groups = append(groups, models.GapGroup{Start: gapStart, End: length - 1})
	}

	return groups
}

func pureLine(img image.Image, axis Axis, index, tolerance int) bool {
	bounds := img.Bounds()

	var refR, refG, refB, refA uint32
	first := true

	breadth := bounds.Dx()
	if axis == Columns {
		breadth = bounds.Dy()
	}

	for j := 0; j < breadth; j++ {
		var x, y int
		if axis == Rows {
			x, y = bounds.Min.X+j, bounds.Min.Y+index
		} else {
			x, y = bounds.Min.X+index, bounds.Min.Y+j
		}

		r, g, b, a := img.At(x, y).RGBA()
		// 16-bit premultiplied values; compare in 8-bit space.
		r, g, b, a = r>>8, g>>8, b>>8, a>>8

		if first {
			refR, refG, refB, refA = r, g, b, a
			first = false
			continue
		}

		if exceeds(r, refR, tolerance) || exceeds(g, refG, tolerance) ||
			exceeds(b, refB, tolerance) || exceeds(a, refA, tolerance) {
			return false
		}
	}

	return true
}

func exceeds(v, ref uint32, tolerance int) bool {
	d := int(v) - int(ref)
	if d < 0 {
		d = -d
	}
	return d > tolerance
}

package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction selects the scan axis and the reading order of the output
// pages. Index order equals reading order except for vertical-rtl,
// where the rightmost page is read first.
type Direction string

const (
	DirectionHorizontal  Direction = "horizontal"
	DirectionVerticalLTR Direction = "vertical-ltr"
	DirectionVerticalRTL Direction = "vertical-rtl"
)

func (d Direction) Vertical() bool {
	return d == DirectionVerticalLTR || d == DirectionVerticalRTL
}

func (d Direction) RTL() bool {
	return d == DirectionVerticalRTL
}

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionHorizontal, DirectionVerticalLTR, DirectionVerticalRTL:
		return Direction(s), nil
	}
	return "", fmt.Errorf("invalid split direction %q (want horizontal, vertical-ltr or vertical-rtl)", s)
}

// Ratio is a target page aspect ratio expressed as W:H.
type Ratio struct {
	Width  int
	Height int
}

func ParseRatio(s string) (Ratio, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Ratio{}, fmt.Errorf("invalid ratio %q: use W:H (e.g. 16:9)", s)
	}

	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return Ratio{}, fmt.Errorf("invalid ratio %q: components must be positive", s)
	}

	return Ratio{Width: w, Height: h}, nil
}

// Margins are fixed pixel insets applied to every page. When set, the
// page canvas is derived from the ratio and content shrinks inward.
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// ParseMargins accepts "all", "vertical,horizontal" or
// "top,right,bottom,left" forms, matching the CLI shorthand.
func ParseMargins(s string) (*Margins, error) {
	parts := strings.Split(s, ",")

	vals := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid margins %q: %w", s, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("invalid margins %q: values must be non-negative", s)
		}
		vals[i] = v
	}

	switch len(vals) {
	case 1:
		return &Margins{Top: vals[0], Right: vals[0], Bottom: vals[0], Left: vals[0]}, nil
	case 2:
		return &Margins{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, nil
	case 4:
		return &Margins{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	}
	return nil, fmt.Errorf("invalid margins %q: use one, two or four comma-separated values", s)
}

// GapGroup is a maximal run of consecutive pure-color lines [Start, End]
// along the scan axis.
type GapGroup struct {
	Start int
	End   int
}

// Mid is the representative cut index: the midpoint of the group,
// rounded toward the earlier index on ties.
func (g GapGroup) Mid() int {
	return (g.Start + g.End) / 2
}

// Page is one half-open segment [Start, End) of the scan axis. Exactly
// one page per plan is the remainder, which may be arbitrarily small.
type Page struct {
	Start       int
	End         int
	IsRemainder bool
}

func (p Page) Extent() int {
	return p.End - p.Start
}

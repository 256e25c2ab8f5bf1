package split

import (
	"fmt"
	"sort"

	"github.com/kpauljoseph/pagecutter/pkg/models"
)

// Plan selects cut positions along the scan axis and returns the
// resulting pages in ascending index order.
//
// Each page is filled as close to ideal as a gap allows without
// exceeding it, like justified pagination of running text. When every
// remaining gap overshoots the ideal position, the nearest one beyond
// it is taken (the page runs oversized rather than splitting content).
// When the image has no gaps at all, forced cuts are placed at ideal
// intervals; a forced cut is never placed where a full ideal page
// cannot follow it.
//
// With reverse set the same algorithm runs on mirrored coordinates,
// scanning from the far edge, so the two direction families cannot
// diverge. Exactly one page carries IsRemainder: the highest-index page
// forward, the lowest-index page in reverse.
func Plan(total, ideal int, groups []models.GapGroup, reverse bool) ([]models.Page, error) {
	if total <= 0 {
		return nil, fmt.Errorf("total extent must be positive, got %d", total)
	}
	if ideal <= 0 {
		return nil, fmt.Errorf("ideal extent must be positive, got %d", ideal)
	}

	cuts := make([]int, 0, len(groups))
	for _, g := range groups {
		mid := g.Mid()
		if mid > 0 && mid < total {
			cuts = append(cuts, mid)
		}
	}

	if reverse {
		cuts = mirror(cuts, total)
	}

	if len(cuts) == 0 {
		cuts = forcedCuts(total, ideal)
	}
	sort.Ints(cuts)

	selected := greedy(total, ideal, cuts)

	pages := make([]models.Page, 0, len(selected)+1)
	start := 0
	for _, c := range selected {
		pages = append(pages, models.Page{Start: start, End: c})
		start = c
	}
	pages = append(pages, models.Page{Start: start, End: total, IsRemainder: true})

	if reverse {
		pages = mirrorPages(pages, total)
	}

	return pages, nil
}

// greedy walks forward from 0 and picks one cut per page while more
// than an ideal extent remains. Returned cuts are ascending and lie
// strictly inside (0, total).
func greedy(total, ideal int, cuts []int) []int {
	var selected []int
	start := 0

	for total-start > ideal {
		target := start + ideal

		best := -1
		for _, c := range cuts {
			if c <= start {
				continue
			}
			if c <= target {
				best = c // keep the largest in-window candidate
			} else {
				if best < 0 {
					best = c // nearest overshoot; no better option
				}
				break
			}
		}

		if best < 0 {
			break // no cuts left; the rest becomes the remainder
		}

		selected = append(selected, best)
		start = best
	}

	return selected
}

// forcedCuts synthesizes cut positions at ideal intervals for images
// with no usable gaps. The last interval that could not be followed by
// a full ideal page is left to the remainder.
func forcedCuts(total, ideal int) []int {
	var cuts []int
	for k := 1; (k+1)*ideal <= total; k++ {
		cuts = append(cuts, k*ideal)
	}
	return cuts
}

func mirror(cuts []int, total int) []int {
	out := make([]int, len(cuts))
	for i, c := range cuts {
		out[i] = total - c
	}
	return out
}

func mirrorPages(pages []models.Page, total int) []models.Page {
	out := make([]models.Page, len(pages))
	for i, p := range pages {
		out[len(pages)-1-i] = models.Page{
			Start:       total - p.End,
			End:         total - p.Start,
			IsRemainder: p.IsRemainder,
		}
	}
	return out
}

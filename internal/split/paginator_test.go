package split_test

import (
	"context"
	"image"
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kpauljoseph/pagecutter/internal/split"
	"github.com/kpauljoseph/pagecutter/pkg/logger"
	"github.com/kpauljoseph/pagecutter/pkg/models"
	"github.com/kpauljoseph/pagecutter/pkg/utils"
)

var testLog = logger.New(logger.WithOutput(GinkgoWriter))

// rowScreenshot builds an image whose every row carries content except
// the given gap ranges, which are uniform white. Row colors vary with y
// so misplaced slices cannot hash equal by accident.
func rowScreenshot(width, height int, gaps []models.GapGroup) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{uint8(y % 251), uint8(x % 241), 90, 255}
			if x%7 == 0 {
				c = color.RGBA{10, uint8(y % 199), 200, 255}
			}
			img.Set(x, y, c)
		}
	}
	for _, g := range gaps {
		for y := g.Start; y <= g.End; y++ {
			for x := 0; x < width; x++ {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	return img
}

func columnScreenshot(width, height int, gaps []models.GapGroup) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.RGBA{uint8(x % 251), uint8(y % 241), 90, 255}
			if y%7 == 0 {
				c = color.RGBA{10, uint8(x % 199), 200, 255}
			}
			img.Set(x, y, c)
		}
	}
	for _, g := range gaps {
		for x := g.Start; x <= g.End; x++ {
			for y := 0; y < height; y++ {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
	return img
}

func slabHash(img *image.RGBA, r image.Rectangle) string {
	return utils.ImageHash(img.SubImage(r))
}

var _ = Describe("Paginator", func() {
	var paginator *split.Paginator

	BeforeEach(func() {
		paginator = split.New(testLog)
	})

	Context("horizontal splitting with padding", func() {
		var (
			src    *image.RGBA
			result *split.Result
		)

		BeforeEach(func() {
			src = rowScreenshot(200, 1000, []models.GapGroup{
				{Start: 290, End: 296},
				{Start: 598, End: 604},
			})

			var err error
			result, err = paginator.Paginate(context.Background(), src, split.Options{
				Ratio:     models.Ratio{Width: 2, Height: 3},
				Direction: models.DirectionHorizontal,
				Tolerance: 0,
				Padding:   10,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should cut at the gap midpoints", func() {
			Expect(result.Pages).To(HaveLen(3))
			Expect(result.Pages[0].Page).To(Equal(models.Page{Start: 0, End: 293}))
			Expect(result.Pages[1].Page).To(Equal(models.Page{Start: 293, End: 601}))
			Expect(result.Pages[2].Page).To(Equal(models.Page{Start: 601, End: 1000, IsRemainder: true}))
		})

		It("should size canvases from the ratio and grow only oversized pages", func() {
			// breadth 200 at 2:3 gives an ideal page height of 300.
			b0 := result.Pages[0].Image.Bounds()
			Expect(b0.Dx()).To(Equal(220))
			Expect(b0.Dy()).To(Equal(300))

			// Page [293,601) is 308px tall: the canvas grows, nothing is
			// cropped.
			b1 := result.Pages[1].Image.Bounds()
			Expect(b1.Dy()).To(Equal(308))

			b2 := result.Pages[2].Image.Bounds()
			Expect(b2.Dy()).To(Equal(399))
		})

		It("should preserve slice content exactly", func() {
			// Page 0 is centered vertically: (300-293)/2 = 3.
			Expect(slabHash(result.Pages[0].Image, image.Rect(10, 3, 210, 296))).
				To(Equal(slabHash(src, image.Rect(0, 0, 200, 293))))

			Expect(slabHash(result.Pages[1].Image, image.Rect(10, 0, 210, 308))).
				To(Equal(slabHash(src, image.Rect(0, 293, 200, 601))))

			// The remainder is aligned to the top edge.
			Expect(slabHash(result.Pages[2].Image, image.Rect(10, 0, 210, 399))).
				To(Equal(slabHash(src, image.Rect(0, 601, 200, 1000))))
		})

		It("should fill padding with white", func() {
			img := result.Pages[0].Image
			for _, pt := range []image.Point{{0, 150}, {9, 150}, {210, 150}, {219, 150}, {100, 0}} {
				r, g, b, _ := img.At(pt.X, pt.Y).RGBA()
				Expect([3]uint32{r >> 8, g >> 8, b >> 8}).To(Equal([3]uint32{255, 255, 255}), "at %v", pt)
			}
		})

		It("should number pages in scan order", func() {
			for i, p := range result.Pages {
				Expect(p.ReadingIndex).To(Equal(i))
			}
		})
	})

	Context("vertical right-to-left splitting", func() {
		var (
			src    *image.RGBA
			result *split.Result
		)

		BeforeEach(func() {
			src = columnScreenshot(900, 180, []models.GapGroup{
				{Start: 147, End: 153},
				{Start: 397, End: 403},
				{Start: 647, End: 653},
			})

			var err error
			result, err = paginator.Paginate(context.Background(), src, split.Options{
				Ratio:     models.Ratio{Width: 25, Height: 18},
				Direction: models.DirectionVerticalRTL,
				Tolerance: 0,
				Padding:   10,
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should put the remainder at the left edge", func() {
			Expect(result.Pages).To(HaveLen(4))
			Expect(result.Pages[0].Page).To(Equal(models.Page{Start: 0, End: 150, IsRemainder: true}))
			Expect(result.Pages[1].Page).To(Equal(models.Page{Start: 150, End: 400}))
			Expect(result.Pages[2].Page).To(Equal(models.Page{Start: 400, End: 650}))
			Expect(result.Pages[3].Page).To(Equal(models.Page{Start: 650, End: 900}))
		})

		It("should read from the rightmost slice", func() {
			for i, p := range result.Pages {
				Expect(p.ReadingIndex).To(Equal(3 - i))
			}

			ordered := result.InReadingOrder()
			Expect(ordered[0].Start).To(Equal(650))
			Expect(ordered[3].IsRemainder).To(BeTrue())
		})

		It("should align the remainder flush right on its canvas", func() {
			// Canvas is 270x180 (ideal 250 plus padding). The remainder
			// slice is 150 wide, placed at x = 270-10-150 = 110.
			img := result.Pages[0].Image
			b := img.Bounds()
			Expect(b.Dx()).To(Equal(270))
			Expect(b.Dy()).To(Equal(180))

			Expect(slabHash(img, image.Rect(110, 0, 260, 180))).
				To(Equal(slabHash(src, image.Rect(0, 0, 150, 180))))
		})

		It("should center full pages", func() {
			Expect(slabHash(result.Pages[1].Image, image.Rect(10, 0, 260, 180))).
				To(Equal(slabHash(src, image.Rect(150, 0, 400, 180))))
		})
	})

	Context("margin mode", func() {
		It("should keep a fixed canvas and downscale oversized content", func() {
			src := rowScreenshot(200, 1000, []models.GapGroup{{Start: 430, End: 436}})

			result, err := paginator.Paginate(context.Background(), src, split.Options{
				Ratio:     models.Ratio{Width: 1, Height: 2},
				Direction: models.DirectionHorizontal,
				Tolerance: 0,
				Margins:   &models.Margins{Top: 40, Right: 30, Bottom: 40, Left: 30},
			})
			Expect(err).NotTo(HaveOccurred())

			// Content area is 520-80 = 440, so the only cut is at 433.
			Expect(result.Pages).To(HaveLen(2))
			Expect(result.Pages[0].Page).To(Equal(models.Page{Start: 0, End: 433}))
			Expect(result.Pages[1].Page).To(Equal(models.Page{Start: 433, End: 1000, IsRemainder: true}))

			for _, p := range result.Pages {
				b := p.Image.Bounds()
				Expect(b.Dx()).To(Equal(260))
				Expect(b.Dy()).To(Equal(520))
			}

			// Page 0 fits and is centered inside the content area:
			// x = 30, y = 40+(440-433)/2 = 43.
			Expect(slabHash(result.Pages[0].Image, image.Rect(30, 43, 230, 476))).
				To(Equal(slabHash(src, image.Rect(0, 0, 200, 433))))

			// The 567px remainder was scaled down, so its canvas has
			// content strictly inside the margins and white outside.
			rem := result.Pages[1].Image
			content := false
			for y := 40; y < 480 && !content; y++ {
				for x := 30; x < 230; x++ {
					r, g, b, _ := rem.At(x, y).RGBA()
					if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
						content = true
						break
					}
				}
			}
			Expect(content).To(BeTrue())

			for _, pt := range []image.Point{{0, 0}, {259, 519}, {15, 260}, {130, 10}} {
				r, g, b, _ := rem.At(pt.X, pt.Y).RGBA()
				Expect([3]uint32{r >> 8, g >> 8, b >> 8}).To(Equal([3]uint32{255, 255, 255}), "at %v", pt)
			}
		})

		It("should reject margins that leave no content area", func() {
			src := rowScreenshot(200, 100, nil)

			_, err := paginator.Paginate(context.Background(), src, split.Options{
				Ratio:     models.Ratio{Width: 2, Height: 1},
				Direction: models.DirectionHorizontal,
				Margins:   &models.Margins{Top: 70, Right: 30, Bottom: 70, Left: 30},
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("margins too large"))
		})
	})

	Context("input validation", func() {
		var src *image.RGBA

		BeforeEach(func() {
			src = rowScreenshot(50, 50, nil)
		})

		It("should reject out-of-range tolerance", func() {
			for _, tol := range []int{-1, 256} {
				_, err := paginator.Paginate(context.Background(), src, split.Options{
					Ratio:     models.Ratio{Width: 1, Height: 1},
					Direction: models.DirectionHorizontal,
					Tolerance: tol,
				})
				Expect(err).To(HaveOccurred())
			}
		})

		It("should reject unknown directions", func() {
			_, err := paginator.Paginate(context.Background(), src, split.Options{
				Ratio:     models.Ratio{Width: 1, Height: 1},
				Direction: "diagonal",
			})
			Expect(err).To(HaveOccurred())
		})

		It("should reject non-positive ratios and negative padding", func() {
			_, err := paginator.Paginate(context.Background(), src, split.Options{
				Ratio:     models.Ratio{Width: 0, Height: 1},
				Direction: models.DirectionHorizontal,
			})
			Expect(err).To(HaveOccurred())

			_, err = paginator.Paginate(context.Background(), src, split.Options{
				Ratio:     models.Ratio{Width: 1, Height: 1},
				Direction: models.DirectionHorizontal,
				Padding:   -1,
			})
			Expect(err).To(HaveOccurred())
		})

		It("should reject an empty image", func() {
			_, err := paginator.Paginate(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)), split.Options{
				Ratio:     models.Ratio{Width: 1, Height: 1},
				Direction: models.DirectionHorizontal,
			})
			Expect(err).To(HaveOccurred())
		})
	})
})

package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
)

// ImageHash returns a hex digest of the image's pixel data, used to
// compare page content independent of encoding.
func ImageHash(img image.Image) string {
	hasher := sha256.New()
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			fmt.Fprintf(hasher, "%d%d%d%d", r, g, b, a)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil))
}

// BytesHash returns a hex digest of raw bytes; the web server keys
// upload sessions on it.
func BytesHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

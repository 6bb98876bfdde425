// Package imaging downsizes meal photos so outbound payloads stay within
// the recognition service's size budget.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

const (
	// BoundingBox is the maximum width/height after resizing
	BoundingBox = 1024

	startQuality = 85
	qualityStep  = 10
	minQuality   = 20
)

// Compress resizes the image to fit within BoundingBox (preserving aspect
// ratio, never upscaling) and re-encodes it as JPEG starting at quality 85.
// While the result exceeds maxSizeKB the quality is lowered in steps of 10;
// once quality would drop to or below 20 the last attempt is returned
// regardless of size. Each attempt re-encodes from the decoded original so
// lossy artifacts don't compound. The output is never larger than the input.
//
// Decode/encode errors propagate; callers treat them as non-fatal and fall
// back to the original buffer.
func Compress(data []byte, maxSizeKB int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = fitBoundingBox(img, BoundingBox)
	budget := maxSizeKB * 1024

	var buf bytes.Buffer
	for quality := startQuality; ; quality -= qualityStep {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg at quality %d: %w", quality, err)
		}
		if buf.Len() <= budget || quality-qualityStep <= minQuality {
			break
		}
	}

	if buf.Len() >= len(data) {
		// Recompression didn't help (already small or heavily optimized)
		return data, nil
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// fitBoundingBox scales src down to fit within box×box, preserving aspect
// ratio. Images already within the box are returned as-is.
func fitBoundingBox(src image.Image, box int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= box && height <= box {
		return src
	}

	scale := float64(box) / float64(width)
	if s := float64(box) / float64(height); s < scale {
		scale = s
	}

	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	return dst
}

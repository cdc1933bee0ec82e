package analysis

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff"

	"axonmorph/pkg/raster"
)

// RetryPolicy controls how stubborn the loader is about transient read
// failures, which show up on network shares holding slide-scanner output.
type RetryPolicy struct {
	// Attempts is the total number of tries; values below 1 mean one try.
	Attempts int

	// Delay is the pause before the second attempt; it doubles after each
	// failure.
	Delay time.Duration
}

// LoadGrayscale reads an image file and converts it to a float map of
// gray values in [0,255], averaging the color channels.
func LoadGrayscale(path string) (*raster.FloatMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening image %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding image %s", path)
	}
	return grayFloatMap(img), nil
}

// LoadGrayscaleRetry wraps LoadGrayscale with exponential backoff.
func LoadGrayscaleRetry(path string, policy RetryPolicy) (*raster.FloatMap, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := policy.Delay

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(delay)
			delay *= 2
		}
		img, err := LoadGrayscale(path)
		if err == nil {
			return img, nil
		}
		lastErr = err
	}
	return nil, errors.Wrapf(lastErr, "after %d attempts", attempts)
}

// grayFloatMap averages the RGB channels into a [0,255] gray value per
// pixel.
func grayFloatMap(img image.Image) *raster.FloatMap {
	bounds := img.Bounds()
	out := raster.NewFloatMap(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels; scale back to 8-bit range.
			mean := (float64(r) + float64(g) + float64(b)) / 3.0 / 257.0
			out.Set(y-bounds.Min.Y, x-bounds.Min.X, mean)
		}
	}
	return out
}

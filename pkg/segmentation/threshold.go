package segmentation

import (
	"sort"

	"axonmorph/pkg/raster"
)

// ThresholdMethod selects how the binarization cutoff is derived from the
// smoothed image.
type ThresholdMethod string

const (
	// ThresholdRegression derives the cutoff from the mean brightness of
	// the pixels above a chosen percentile, through a linear model fitted
	// on the acquisition series.
	ThresholdRegression ThresholdMethod = "regression"

	// ThresholdOtsu maximizes the between-class variance of the gray
	// histogram.
	ThresholdOtsu ThresholdMethod = "otsu"

	// ThresholdFixed applies a caller-supplied cutoff verbatim.
	ThresholdFixed ThresholdMethod = "fixed"
)

// ThresholdParams configures the binarization step.
type ThresholdParams struct {
	Method ThresholdMethod

	// Regression parameters: cutoff = Intercept + Coefficient*m + Offset,
	// where m is the mean of the pixels at or above the Percentile
	// brightness.
	Percentile  float64
	Intercept   float64
	Coefficient float64
	Offset      float64

	// Fixed cutoff, used when Method is ThresholdFixed.
	Fixed float64
}

// ComputeThreshold derives the binarization cutoff for the image without
// applying it.
func ComputeThreshold(img *raster.FloatMap, params ThresholdParams) float64 {
	switch params.Method {
	case ThresholdOtsu:
		return OtsuThreshold(img)
	case ThresholdFixed:
		return params.Fixed + params.Offset
	default:
		m := meanAbovePercentile(img.Values, params.Percentile)
		return params.Intercept + params.Coefficient*m + params.Offset
	}
}

// Binarize applies the cutoff: pixels with a value strictly above the
// threshold become foreground.
func Binarize(img *raster.FloatMap, threshold float64) *raster.Bitmap {
	mask := raster.NewBitmap(img.Width, img.Height)
	for i, v := range img.Values {
		if v > threshold {
			mask.Bits[i] = true
		}
	}
	return mask
}

// OtsuThreshold computes the histogram threshold that maximizes the
// between-class variance, over a 256-bin histogram of the value range.
func OtsuThreshold(img *raster.FloatMap) float64 {
	if len(img.Values) == 0 {
		return 0
	}
	lo, hi := img.Values[0], img.Values[0]
	for _, v := range img.Values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return lo
	}

	const bins = 256
	hist := make([]int, bins)
	scale := float64(bins-1) / (hi - lo)
	for _, v := range img.Values {
		hist[int((v-lo)*scale)]++
	}

	total := len(img.Values)
	sumAll := 0.0
	for b, n := range hist {
		sumAll += float64(b) * float64(n)
	}

	bestBin := 0
	bestVariance := -1.0
	sumBelow := 0.0
	countBelow := 0
	for b := 0; b < bins; b++ {
		countBelow += hist[b]
		if countBelow == 0 {
			continue
		}
		countAbove := total - countBelow
		if countAbove == 0 {
			break
		}
		sumBelow += float64(b) * float64(hist[b])
		meanBelow := sumBelow / float64(countBelow)
		meanAbove := (sumAll - sumBelow) / float64(countAbove)
		diff := meanBelow - meanAbove
		variance := float64(countBelow) * float64(countAbove) * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			bestBin = b
		}
	}

	return lo + float64(bestBin)/scale
}

// meanAbovePercentile returns the mean of the values at or above the given
// brightness percentile.
func meanAbovePercentile(values []float64, percentile float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	start := int(percentile / 100 * float64(len(sorted)))
	if start >= len(sorted) {
		start = len(sorted) - 1
	}
	sum := 0.0
	for _, v := range sorted[start:] {
		sum += v
	}
	return sum / float64(len(sorted)-start)
}

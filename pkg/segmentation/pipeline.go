package segmentation

import (
	"github.com/pkg/errors"

	"axonmorph/pkg/raster"
)

// Params collects every knob of the segmentation chain.
type Params struct {
	GaussianSigma float64
	Threshold     ThresholdParams
	OpeningRadius int
	ClosingRadius int
	MinObjectSize int
}

// Result carries the intermediate and final products of the chain so the
// caller can report the threshold and render overlays.
type Result struct {
	Threshold float64
	Mask      *raster.Bitmap
	Skeleton  *raster.Bitmap
	Thickness *raster.FloatMap
}

// Segment runs the full chain on a grayscale image: blur, threshold,
// opening, closing, small-object removal, thinning, and thickness
// sampling.
func Segment(img *raster.FloatMap, params Params) (*Result, error) {
	if img.Width == 0 || img.Height == 0 {
		return nil, errors.New("empty image")
	}

	smoothed := GaussianBlur(img, params.GaussianSigma)
	threshold := ComputeThreshold(smoothed, params.Threshold)
	mask := Binarize(smoothed, threshold)

	if params.OpeningRadius > 0 {
		mask = Open(mask, DiskElement(params.OpeningRadius))
	}
	if params.ClosingRadius > 0 {
		mask = Close(mask, DiskElement(params.ClosingRadius))
	}
	if params.MinObjectSize > 1 {
		mask = RemoveSmallObjects(mask, params.MinObjectSize)
	}

	skeleton := Skeletonize(mask)
	thickness := ThicknessMap(mask, skeleton)

	return &Result{
		Threshold: threshold,
		Mask:      mask,
		Skeleton:  skeleton,
		Thickness: thickness,
	}, nil
}

package skeleton

import (
	"math"

	"axonmorph/pkg/raster"
)

// ThickThinParams controls the structural thick/thin split.
type ThickThinParams struct {
	// WidthThreshold is the radius cutoff: skeleton pixels at least this
	// thick are thick candidates.
	WidthThreshold float64

	// BranchDistanceThreshold is the disk radius (in pixels) within which
	// branch points are counted for the junction-cluster correction.
	BranchDistanceThreshold int

	// BranchCountThreshold demotes a thick candidate to thin when at least
	// this many branch points lie within the disk.
	BranchCountThreshold int

	// MinWideRegionSize drops surviving thick components smaller than this
	// many pixels.
	MinWideRegionSize int
}

// ThickThinResult partitions the eligible skeleton into thick and thin
// pixels: every skeleton pixel is in exactly one of the two masks.
type ThickThinResult struct {
	Thick *raster.Bitmap
	Thin  *raster.Bitmap

	ThickCount int
	ThinCount  int

	// Ratio is ThickCount/ThinCount, NaN when ThinCount is 0.
	Ratio float64
}

// ClassifyThickThin applies the basic rule: a skeleton pixel is thick iff
// its thickness is at least WidthThreshold.
func ClassifyThickThin(mask *raster.Bitmap, thickness *raster.FloatMap, params ThickThinParams) *ThickThinResult {
	thick := raster.NewBitmap(mask.Width, mask.Height)
	for i, on := range mask.Bits {
		thick.Bits[i] = on && thickness.Values[i] >= params.WidthThreshold
	}
	return finishThickThin(mask, thick)
}

// ClassifyThickThinCorrected applies the branch-proximity correction on top
// of the basic rule: thick candidates near a cluster of branch points look
// like junctions rather than genuinely thick processes and are demoted to
// thin, and surviving thick components below MinWideRegionSize are dropped.
func ClassifyThickThinCorrected(mask, branchPoints *raster.Bitmap, thickness *raster.FloatMap, params ThickThinParams) *ThickThinResult {
	w, h := mask.Width, mask.Height

	// Count branch points within a Euclidean disk of every pixel by
	// splatting the disk at each branch point; branch points are sparse,
	// so this beats a dense convolution.
	offsets := diskOffsets(params.BranchDistanceThreshold)
	branchNear := make([]int32, len(mask.Bits))
	for idx, isBranch := range branchPoints.Bits {
		if !isBranch {
			continue
		}
		row, col := idx/w, idx%w
		for _, off := range offsets {
			nr, nc := row+off.Row, col+off.Col
			if nr >= 0 && nr < h && nc >= 0 && nc < w {
				branchNear[nr*w+nc]++
			}
		}
	}

	candidates := raster.NewBitmap(w, h)
	for i, on := range mask.Bits {
		candidates.Bits[i] = on &&
			thickness.Values[i] >= params.WidthThreshold &&
			int(branchNear[i]) < params.BranchCountThreshold
	}

	// Drop small wide regions.
	thick := LabelComponents(candidates).MaskOfLargeComponents(params.MinWideRegionSize)
	return finishThickThin(mask, thick)
}

// ratioOrNaN divides thick by thin, reporting NaN instead of failing when
// there are no thin pixels.
func ratioOrNaN(thick, thin int) float64 {
	if thin == 0 {
		return math.NaN()
	}
	return float64(thick) / float64(thin)
}

func finishThickThin(mask, thick *raster.Bitmap) *ThickThinResult {
	res := &ThickThinResult{
		Thick: thick,
		Thin:  mask.AndNot(thick),
	}
	res.ThickCount = res.Thick.Count()
	res.ThinCount = res.Thin.Count()
	res.Ratio = ratioOrNaN(res.ThickCount, res.ThinCount)
	return res
}

// diskOffsets returns the coordinate offsets within Euclidean distance
// radius of the origin.
func diskOffsets(radius int) []raster.Pixel {
	var out []raster.Pixel
	r2 := radius * radius
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if dr*dr+dc*dc <= r2 {
				out = append(out, raster.Pixel{Row: dr, Col: dc})
			}
		}
	}
	return out
}

// Package skeleton implements the branch-density classification and
// component-filtering engine of the axon analysis pipeline. Given a
// 1-pixel-wide skeleton raster and a per-pixel thickness map, it detects
// branch points, grows bounded spider neighborhoods to flag high
// branch-density (pink) regions, optionally splits the skeleton into
// structurally thick and thin pixels, labels 8-connected components,
// resolves mother-component containment, and filters components by
// multi-criteria thresholds into the final morphometric records.
package skeleton

import "axonmorph/pkg/raster"

// NeighborCounts returns, for every pixel, the number of true 8-neighbors
// in the skeleton. Pixels outside the raster bounds count as false.
func NeighborCounts(skeleton *raster.Bitmap) []uint8 {
	counts := make([]uint8, len(skeleton.Bits))
	w, h := skeleton.Width, skeleton.Height
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			idx := row*w + col
			if !skeleton.Bits[idx] {
				continue
			}
			// A skeleton pixel contributes to each of its neighbors.
			for _, off := range raster.MooreOffsets {
				nr, nc := row+off.Row, col+off.Col
				if nr >= 0 && nr < h && nc >= 0 && nc < w {
					counts[nr*w+nc]++
				}
			}
		}
	}
	return counts
}

// DetectBranchPoints returns the branch-point mask: a pixel is a branch
// point iff it is on the skeleton and has at least three skeleton-true
// 8-neighbors. The result depends only on the input raster; re-running on
// the same skeleton yields an identical mask.
func DetectBranchPoints(skeleton *raster.Bitmap) *raster.Bitmap {
	counts := NeighborCounts(skeleton)
	out := raster.NewBitmap(skeleton.Width, skeleton.Height)
	for i, on := range skeleton.Bits {
		out.Bits[i] = on && counts[i] >= 3
	}
	return out
}

package skeleton

import (
	"sort"

	"axonmorph/pkg/raster"
)

// Component is a maximal 8-connected subset of a boolean mask.
type Component struct {
	// ID is the 1-based label assigned by the labeler.
	ID int

	// Pixels holds the row-major indexes of the member pixels, in the
	// order they were visited by the flood fill.
	Pixels []int
}

// Size returns the component's pixel count (its skeleton length).
func (c *Component) Size() int {
	return len(c.Pixels)
}

// Labeling is the result of connected-component labeling of one mask.
// The original-skeleton labeling and the blue-only residual labeling are
// distinct Labeling values and must never be conflated: the mother-length
// containment relation exists only between the two.
type Labeling struct {
	Width  int
	Height int

	// Labels maps each pixel index to its component id; 0 is background.
	Labels []int32

	// Components holds the labeled components; Components[i] has ID i+1.
	Components []*Component
}

// LabelComponents labels the 8-connected components of a mask with an
// iterative flood fill. Ids are assigned in row-major order of each
// component's first-visited pixel, so the assignment is stable within one
// call and centroid/statistics computation is reproducible.
func LabelComponents(mask *raster.Bitmap) *Labeling {
	w, h := mask.Width, mask.Height
	labeling := &Labeling{
		Width:  w,
		Height: h,
		Labels: make([]int32, len(mask.Bits)),
	}

	var stack []int
	next := int32(0)

	for start, on := range mask.Bits {
		if !on || labeling.Labels[start] != 0 {
			continue
		}
		next++
		comp := &Component{ID: int(next)}

		stack = append(stack[:0], start)
		labeling.Labels[start] = next
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp.Pixels = append(comp.Pixels, idx)

			row, col := idx/w, idx%w
			for _, off := range raster.MooreOffsets {
				nr, nc := row+off.Row, col+off.Col
				if nr < 0 || nr >= h || nc < 0 || nc >= w {
					continue
				}
				nidx := nr*w + nc
				if mask.Bits[nidx] && labeling.Labels[nidx] == 0 {
					labeling.Labels[nidx] = next
					stack = append(stack, nidx)
				}
			}
		}
		labeling.Components = append(labeling.Components, comp)
	}
	return labeling
}

// MaskOfLargeComponents returns a mask containing only the pixels of
// components with at least minSize pixels. This is the size-eligibility
// pass run on the full skeleton before spider classification.
func (l *Labeling) MaskOfLargeComponents(minSize int) *raster.Bitmap {
	out := raster.NewBitmap(l.Width, l.Height)
	for _, comp := range l.Components {
		if comp.Size() < minSize {
			continue
		}
		for _, idx := range comp.Pixels {
			out.Bits[idx] = true
		}
	}
	return out
}

// componentsBySizeDesc returns the components sorted by descending pixel
// count, with the original id order breaking ties for determinism.
func componentsBySizeDesc(components []*Component) []*Component {
	out := make([]*Component, len(components))
	copy(out, components)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Size() != out[j].Size() {
			return out[i].Size() > out[j].Size()
		}
		return out[i].ID < out[j].ID
	})
	return out
}

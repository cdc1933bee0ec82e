package segmentation

import (
	"axonmorph/pkg/raster"
)

// DiskElement returns the offsets of a disk-shaped structuring element of
// the given radius, center included.
func DiskElement(radius int) []raster.Pixel {
	if radius < 0 {
		radius = 0
	}
	var offsets []raster.Pixel
	r2 := radius * radius
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if dr*dr+dc*dc <= r2 {
				offsets = append(offsets, raster.Pixel{Row: dr, Col: dc})
			}
		}
	}
	return offsets
}

// Dilate sets every pixel that has at least one foreground pixel under the
// structuring element.
func Dilate(mask *raster.Bitmap, element []raster.Pixel) *raster.Bitmap {
	out := raster.NewBitmap(mask.Width, mask.Height)
	for r := 0; r < mask.Height; r++ {
		for c := 0; c < mask.Width; c++ {
			if !mask.Get(r, c) {
				continue
			}
			for _, off := range element {
				rr, cc := r+off.Row, c+off.Col
				if mask.InBounds(rr, cc) {
					out.Set(rr, cc, true)
				}
			}
		}
	}
	return out
}

// Erode keeps only the pixels whose whole structuring element lies on the
// foreground. Pixels whose element extends past the border are removed.
func Erode(mask *raster.Bitmap, element []raster.Pixel) *raster.Bitmap {
	out := raster.NewBitmap(mask.Width, mask.Height)
	for r := 0; r < mask.Height; r++ {
	pixel:
		for c := 0; c < mask.Width; c++ {
			if !mask.Get(r, c) {
				continue
			}
			for _, off := range element {
				if !mask.Get(r+off.Row, c+off.Col) {
					continue pixel
				}
			}
			out.Set(r, c, true)
		}
	}
	return out
}

// Open erodes then dilates, removing protrusions thinner than the element.
func Open(mask *raster.Bitmap, element []raster.Pixel) *raster.Bitmap {
	return Dilate(Erode(mask, element), element)
}

// Close dilates then erodes, filling gaps narrower than the element.
func Close(mask *raster.Bitmap, element []raster.Pixel) *raster.Bitmap {
	return Erode(Dilate(mask, element), element)
}

// RemoveSmallObjects clears every 8-connected foreground component with
// fewer than minSize pixels.
func RemoveSmallObjects(mask *raster.Bitmap, minSize int) *raster.Bitmap {
	if minSize <= 1 {
		return mask.Clone()
	}
	out := raster.NewBitmap(mask.Width, mask.Height)
	visited := make([]bool, len(mask.Bits))
	var stack, component []int

	for start, on := range mask.Bits {
		if !on || visited[start] {
			continue
		}
		stack = append(stack[:0], start)
		component = component[:0]
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, idx)
			r, c := idx/mask.Width, idx%mask.Width
			for _, off := range raster.MooreOffsets {
				rr, cc := r+off.Row, c+off.Col
				if !mask.InBounds(rr, cc) {
					continue
				}
				nidx := mask.Index(rr, cc)
				if mask.Bits[nidx] && !visited[nidx] {
					visited[nidx] = true
					stack = append(stack, nidx)
				}
			}
		}
		if len(component) >= minSize {
			for _, idx := range component {
				out.Bits[idx] = true
			}
		}
	}
	return out
}

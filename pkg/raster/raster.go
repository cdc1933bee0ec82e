// Package raster provides the 2D grid primitives shared by every stage of
// the axon analysis pipeline: boolean masks (skeletons, region masks) and
// float rasters (intensity projections, thickness maps). All rasters for one
// image share a single fixed width and height, and pixels are addressed
// either by (row, col) coordinates or by their row-major index.
package raster

import (
	"github.com/pkg/errors"
)

// Pixel is an integer coordinate pair into a fixed-size 2D grid.
type Pixel struct {
	Row int
	Col int
}

// MooreOffsets enumerates the 8-connected (Moore) neighborhood around a
// pixel, excluding the pixel itself. Every stage that walks the skeleton
// uses this one table so diagonal adjacency is treated identically
// throughout the pipeline.
var MooreOffsets = [8]Pixel{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Bitmap is a boolean raster stored in row-major order.
type Bitmap struct {
	Width  int
	Height int
	Bits   []bool
}

// NewBitmap creates an all-false bitmap with the given dimensions.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		Width:  width,
		Height: height,
		Bits:   make([]bool, width*height),
	}
}

// Index returns the row-major index of (row, col). Callers are expected to
// stay in bounds; use InBounds when the coordinate may fall outside.
func (b *Bitmap) Index(row, col int) int {
	return row*b.Width + col
}

// InBounds reports whether (row, col) lies inside the raster.
func (b *Bitmap) InBounds(row, col int) bool {
	return row >= 0 && row < b.Height && col >= 0 && col < b.Width
}

// Get returns the value at (row, col). Out-of-bounds coordinates read as
// false, matching the convolution boundary rule used by branch-point
// detection.
func (b *Bitmap) Get(row, col int) bool {
	if !b.InBounds(row, col) {
		return false
	}
	return b.Bits[row*b.Width+col]
}

// Set assigns the value at (row, col).
func (b *Bitmap) Set(row, col int, v bool) {
	b.Bits[row*b.Width+col] = v
}

// Count returns the number of true pixels.
func (b *Bitmap) Count() int {
	n := 0
	for _, v := range b.Bits {
		if v {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	out := NewBitmap(b.Width, b.Height)
	copy(out.Bits, b.Bits)
	return out
}

// And returns a new bitmap with the pixel-wise conjunction of b and other.
func (b *Bitmap) And(other *Bitmap) *Bitmap {
	out := NewBitmap(b.Width, b.Height)
	for i, v := range b.Bits {
		out.Bits[i] = v && other.Bits[i]
	}
	return out
}

// AndNot returns a new bitmap with the pixels of b that are not set in
// other. This is the blue-region composition: eligible skeleton minus pink.
func (b *Bitmap) AndNot(other *Bitmap) *Bitmap {
	out := NewBitmap(b.Width, b.Height)
	for i, v := range b.Bits {
		out.Bits[i] = v && !other.Bits[i]
	}
	return out
}

// Or merges other into b in place and returns b.
func (b *Bitmap) Or(other *Bitmap) *Bitmap {
	for i, v := range other.Bits {
		if v {
			b.Bits[i] = true
		}
	}
	return b
}

// Pixels returns the coordinates of all true pixels in row-major order.
func (b *Bitmap) Pixels() []Pixel {
	var out []Pixel
	for row := 0; row < b.Height; row++ {
		base := row * b.Width
		for col := 0; col < b.Width; col++ {
			if b.Bits[base+col] {
				out = append(out, Pixel{Row: row, Col: col})
			}
		}
	}
	return out
}

// FloatMap is a float64 raster stored in row-major order.
type FloatMap struct {
	Width  int
	Height int
	Values []float64
}

// NewFloatMap creates an all-zero float raster with the given dimensions.
func NewFloatMap(width, height int) *FloatMap {
	return &FloatMap{
		Width:  width,
		Height: height,
		Values: make([]float64, width*height),
	}
}

// Get returns the value at (row, col).
func (f *FloatMap) Get(row, col int) float64 {
	return f.Values[row*f.Width+col]
}

// Set assigns the value at (row, col).
func (f *FloatMap) Set(row, col int, v float64) {
	f.Values[row*f.Width+col] = v
}

// Index returns the row-major index of (row, col).
func (f *FloatMap) Index(row, col int) int {
	return row*f.Width + col
}

// SameSize reports whether a bitmap and a float raster share dimensions.
func SameSize(b *Bitmap, f *FloatMap) bool {
	return b.Width == f.Width && b.Height == f.Height
}

// ValidateThickness checks that a thickness map matches the skeleton raster
// dimensions and carries no negative values. The core algorithm never fails
// on well-formed input, so malformed rasters are rejected here, at the
// entry point, instead of deep inside a stage.
func ValidateThickness(skeleton *Bitmap, thickness *FloatMap) error {
	if !SameSize(skeleton, thickness) {
		return errors.Errorf("raster dimensions mismatch: skeleton %dx%d, thickness %dx%d",
			skeleton.Width, skeleton.Height, thickness.Width, thickness.Height)
	}
	for i, on := range skeleton.Bits {
		if on && thickness.Values[i] < 0 {
			return errors.Errorf("negative thickness %.4f at index %d", thickness.Values[i], i)
		}
	}
	return nil
}

package segmentation

import (
	"math"

	"axonmorph/pkg/raster"
)

// DistanceTransform computes the exact Euclidean distance from every
// foreground pixel to the nearest background pixel, using Meijster's
// two-pass algorithm. Background pixels get distance zero; a mask without
// background yields +Inf everywhere.
func DistanceTransform(mask *raster.Bitmap) *raster.FloatMap {
	w, h := mask.Width, mask.Height
	out := raster.NewFloatMap(w, h)
	if w == 0 || h == 0 {
		return out
	}

	inf := w + h + 1

	// First phase: per-column vertical distances.
	g := make([]int, w*h)
	for c := 0; c < w; c++ {
		if mask.Get(0, c) {
			g[c] = inf
		}
		for r := 1; r < h; r++ {
			idx := r*w + c
			if mask.Get(r, c) {
				g[idx] = g[idx-w] + 1
				if g[idx-w] == inf {
					g[idx] = inf
				}
			}
		}
		for r := h - 2; r >= 0; r-- {
			idx := r*w + c
			if g[idx+w] < g[idx] {
				g[idx] = g[idx+w] + 1
			}
		}
	}

	// Second phase: per-row lower envelope of parabolas.
	s := make([]int, w)
	t := make([]int, w)
	for r := 0; r < h; r++ {
		row := r * w
		f := func(x, i int) int {
			d := x - i
			return d*d + g[row+i]*g[row+i]
		}
		sep := func(i, u int) int {
			return (u*u - i*i + g[row+u]*g[row+u] - g[row+i]*g[row+i]) / (2 * (u - i))
		}

		q := 0
		s[0], t[0] = 0, 0
		for u := 1; u < w; u++ {
			for q >= 0 && f(t[q], s[q]) > f(t[q], u) {
				q--
			}
			if q < 0 {
				q = 0
				s[0] = u
			} else {
				wpos := 1 + sep(s[q], u)
				if wpos < w {
					q++
					s[q] = u
					t[q] = wpos
				}
			}
		}
		for u := w - 1; u >= 0; u-- {
			out.Values[row+u] = math.Sqrt(float64(f(u, s[q])))
			if u == t[q] {
				q--
			}
		}
	}

	// Saturate the no-background case to +Inf rather than a huge finite
	// distance.
	limit := float64(inf)
	for i, v := range out.Values {
		if v >= limit {
			out.Values[i] = math.Inf(1)
		}
	}

	return out
}

// ThicknessMap samples the distance transform of the binary mask along the
// skeleton: each skeleton pixel carries its local mask radius. Non-skeleton
// pixels carry zero.
func ThicknessMap(mask, skeleton *raster.Bitmap) *raster.FloatMap {
	dist := DistanceTransform(mask)
	out := raster.NewFloatMap(mask.Width, mask.Height)
	for i, on := range skeleton.Bits {
		if on {
			out.Values[i] = dist.Values[i]
		}
	}
	return out
}

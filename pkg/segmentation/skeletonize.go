package segmentation

import (
	"axonmorph/pkg/raster"
)

// Skeletonize thins the binary mask to a one-pixel-wide skeleton using the
// Zhang-Suen algorithm. Connectivity of the foreground is preserved.
func Skeletonize(mask *raster.Bitmap) *raster.Bitmap {
	skel := mask.Clone()
	var remove []int

	for {
		changed := false
		for pass := 0; pass < 2; pass++ {
			remove = remove[:0]
			for r := 0; r < skel.Height; r++ {
				for c := 0; c < skel.Width; c++ {
					if skel.Get(r, c) && zhangSuenRemovable(skel, r, c, pass) {
						remove = append(remove, skel.Index(r, c))
					}
				}
			}
			for _, idx := range remove {
				skel.Bits[idx] = false
			}
			if len(remove) > 0 {
				changed = true
			}
		}
		if !changed {
			return skel
		}
	}
}

// zhangSuenRemovable evaluates the deletion conditions for one pixel. The
// neighborhood is read clockwise from the pixel above: P2..P9.
func zhangSuenRemovable(skel *raster.Bitmap, r, c, pass int) bool {
	p2 := skel.Get(r-1, c)
	p3 := skel.Get(r-1, c+1)
	p4 := skel.Get(r, c+1)
	p5 := skel.Get(r+1, c+1)
	p6 := skel.Get(r+1, c)
	p7 := skel.Get(r+1, c-1)
	p8 := skel.Get(r, c-1)
	p9 := skel.Get(r-1, c-1)

	neighbors := [8]bool{p2, p3, p4, p5, p6, p7, p8, p9}
	count := 0
	for _, on := range neighbors {
		if on {
			count++
		}
	}
	if count < 2 || count > 6 {
		return false
	}

	// Transitions from background to foreground around the ring.
	transitions := 0
	for i := 0; i < 8; i++ {
		if !neighbors[i] && neighbors[(i+1)%8] {
			transitions++
		}
	}
	if transitions != 1 {
		return false
	}

	if pass == 0 {
		return !(p2 && p4 && p6) && !(p4 && p6 && p8)
	}
	return !(p2 && p4 && p8) && !(p2 && p6 && p8)
}

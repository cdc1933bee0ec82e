package segmentation

import (
	"math"
	"math/rand"
	"testing"

	"axonmorph/pkg/raster"
)

func constantImage(width, height int, value float64) *raster.FloatMap {
	img := raster.NewFloatMap(width, height)
	for i := range img.Values {
		img.Values[i] = value
	}
	return img
}

func TestGaussianBlur(t *testing.T) {
	t.Run("ConstantImageUnchanged", func(t *testing.T) {
		img := constantImage(8, 6, 42)
		out := GaussianBlur(img, 1.5)
		for i, v := range out.Values {
			if math.Abs(v-42) > 1e-9 {
				t.Fatalf("pixel %d = %g, want 42", i, v)
			}
		}
	})

	t.Run("ZeroSigmaIsIdentity", func(t *testing.T) {
		img := constantImage(4, 4, 0)
		img.Set(2, 2, 100)
		out := GaussianBlur(img, 0)
		for i := range img.Values {
			if out.Values[i] != img.Values[i] {
				t.Fatal("zero-sigma blur changed the image")
			}
		}
	})

	t.Run("SpreadsAndConserves", func(t *testing.T) {
		img := constantImage(11, 11, 0)
		img.Set(5, 5, 100)
		out := GaussianBlur(img, 1)
		if out.Get(5, 5) >= 100 {
			t.Error("peak did not shrink")
		}
		if out.Get(5, 6) <= 0 {
			t.Error("mass did not spread to the neighbor")
		}
		sum := 0.0
		for _, v := range out.Values {
			sum += v
		}
		// Away from the border the kernel is normalized, so the total mass
		// stays put.
		if math.Abs(sum-100) > 1e-6 {
			t.Errorf("total mass %g, want 100", sum)
		}
	})
}

func TestThresholds(t *testing.T) {
	t.Run("OtsuSeparatesBimodal", func(t *testing.T) {
		img := raster.NewFloatMap(10, 10)
		for i := range img.Values {
			if i%2 == 0 {
				img.Values[i] = 20
			} else {
				img.Values[i] = 200
			}
		}
		cutoff := OtsuThreshold(img)
		if cutoff <= 20 || cutoff >= 200 {
			t.Errorf("Otsu cutoff %g not between the modes", cutoff)
		}
	})

	t.Run("OtsuFlatImage", func(t *testing.T) {
		if got := OtsuThreshold(constantImage(5, 5, 77)); got != 77 {
			t.Errorf("flat-image cutoff %g, want 77", got)
		}
	})

	t.Run("RegressionUsesUpperTail", func(t *testing.T) {
		img := raster.NewFloatMap(10, 10)
		for i := range img.Values {
			img.Values[i] = float64(i) // 0..99
		}
		// With percentile 90 the tail is 90..99, mean 94.5.
		got := ComputeThreshold(img, ThresholdParams{
			Method:      ThresholdRegression,
			Percentile:  90,
			Intercept:   10,
			Coefficient: 2,
		})
		want := 10 + 2*94.5
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("regression cutoff %g, want %g", got, want)
		}
	})

	t.Run("FixedWithOffset", func(t *testing.T) {
		got := ComputeThreshold(constantImage(2, 2, 0), ThresholdParams{
			Method: ThresholdFixed,
			Fixed:  128,
			Offset: -8,
		})
		if got != 120 {
			t.Errorf("fixed cutoff %g, want 120", got)
		}
	})

	t.Run("BinarizeStrictlyAbove", func(t *testing.T) {
		img := constantImage(3, 1, 50)
		img.Values[1] = 51
		mask := Binarize(img, 50)
		if mask.Bits[0] || !mask.Bits[1] {
			t.Error("binarize boundary is not strictly-above")
		}
	})
}

func TestMorphology(t *testing.T) {
	t.Run("OpenRemovesIsolatedPixel", func(t *testing.T) {
		mask := raster.NewBitmap(9, 9)
		mask.Set(4, 4, true)
		// A solid block elsewhere survives the radius-1 opening.
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				mask.Set(r, c, true)
			}
		}
		out := Open(mask, DiskElement(1))
		if out.Get(4, 4) {
			t.Error("isolated pixel survived the opening")
		}
		if !out.Get(1, 1) {
			t.Error("interior of the solid block lost to the opening")
		}
	})

	t.Run("CloseFillsSmallHole", func(t *testing.T) {
		mask := raster.NewBitmap(9, 9)
		for r := 1; r < 8; r++ {
			for c := 1; c < 8; c++ {
				mask.Set(r, c, true)
			}
		}
		mask.Set(4, 4, false)
		out := Close(mask, DiskElement(1))
		if !out.Get(4, 4) {
			t.Error("interior hole survived the closing")
		}
	})

	t.Run("RemoveSmallObjects", func(t *testing.T) {
		mask := raster.NewBitmap(12, 3)
		// 2-pixel blob and a 6-pixel blob.
		mask.Set(0, 0, true)
		mask.Set(0, 1, true)
		for c := 5; c < 11; c++ {
			mask.Set(2, c, true)
		}
		out := RemoveSmallObjects(mask, 3)
		if out.Get(0, 0) || out.Get(0, 1) {
			t.Error("small blob survived")
		}
		if out.Count() != 6 {
			t.Errorf("kept %d pixels, want 6", out.Count())
		}
	})

	t.Run("DiskElementSize", func(t *testing.T) {
		if n := len(DiskElement(0)); n != 1 {
			t.Errorf("radius-0 disk has %d offsets, want 1", n)
		}
		if n := len(DiskElement(1)); n != 5 {
			t.Errorf("radius-1 disk has %d offsets, want 5", n)
		}
	})
}

func TestSkeletonize(t *testing.T) {
	countNeighbors := func(mask *raster.Bitmap, r, c int) int {
		n := 0
		for _, off := range raster.MooreOffsets {
			if mask.Get(r+off.Row, c+off.Col) {
				n++
			}
		}
		return n
	}

	t.Run("ThickBarThinsToLine", func(t *testing.T) {
		mask := raster.NewBitmap(20, 7)
		for r := 2; r < 5; r++ {
			for c := 1; c < 19; c++ {
				mask.Set(r, c, true)
			}
		}
		skel := Skeletonize(mask)
		if skel.Count() == 0 {
			t.Fatal("skeleton is empty")
		}
		if skel.Count() >= mask.Count() {
			t.Fatal("thinning removed nothing")
		}
		// Every skeleton pixel of a simple bar is line-like: at most 2
		// neighbors.
		for r := 0; r < skel.Height; r++ {
			for c := 0; c < skel.Width; c++ {
				if skel.Get(r, c) && countNeighbors(skel, r, c) > 2 {
					t.Fatalf("pixel (%d,%d) has %d neighbors after thinning",
						r, c, countNeighbors(skel, r, c))
				}
			}
		}
	})

	t.Run("SubsetOfInput", func(t *testing.T) {
		mask := raster.NewBitmap(15, 15)
		for r := 3; r < 12; r++ {
			for c := 3; c < 12; c++ {
				mask.Set(r, c, true)
			}
		}
		skel := Skeletonize(mask)
		for i, on := range skel.Bits {
			if on && !mask.Bits[i] {
				t.Fatalf("skeleton pixel %d off the input mask", i)
			}
		}
	})

	t.Run("PreservesConnectivity", func(t *testing.T) {
		// An L-shaped thick region stays one connected skeleton.
		mask := raster.NewBitmap(20, 20)
		for r := 2; r < 6; r++ {
			for c := 2; c < 18; c++ {
				mask.Set(r, c, true)
			}
		}
		for r := 2; r < 18; r++ {
			for c := 2; c < 6; c++ {
				mask.Set(r, c, true)
			}
		}
		skel := Skeletonize(mask)
		if skel.Count() == 0 {
			t.Fatal("skeleton is empty")
		}
		if n := countComponents(skel); n != 1 {
			t.Errorf("skeleton split into %d components, want 1", n)
		}
	})
}

// countComponents is a plain flood fill used to check connectivity claims.
func countComponents(mask *raster.Bitmap) int {
	visited := make([]bool, len(mask.Bits))
	var stack []int
	n := 0
	for start, on := range mask.Bits {
		if !on || visited[start] {
			continue
		}
		n++
		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
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
	}
	return n
}

func TestDistanceTransform(t *testing.T) {
	bruteForce := func(mask *raster.Bitmap, r, c int) float64 {
		best := math.Inf(1)
		for rr := 0; rr < mask.Height; rr++ {
			for cc := 0; cc < mask.Width; cc++ {
				if mask.Get(rr, cc) {
					continue
				}
				d := math.Hypot(float64(rr-r), float64(cc-c))
				if d < best {
					best = d
				}
			}
		}
		return best
	}

	t.Run("MatchesBruteForce", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		mask := raster.NewBitmap(17, 13)
		for i := range mask.Bits {
			mask.Bits[i] = rng.Float64() < 0.7
		}
		dist := DistanceTransform(mask)
		for r := 0; r < mask.Height; r++ {
			for c := 0; c < mask.Width; c++ {
				want := 0.0
				if mask.Get(r, c) {
					want = bruteForce(mask, r, c)
				}
				got := dist.Get(r, c)
				if math.Abs(got-want) > 1e-9 {
					t.Fatalf("distance at (%d,%d) = %g, want %g", r, c, got, want)
				}
			}
		}
	})

	t.Run("AllForegroundIsInf", func(t *testing.T) {
		mask := raster.NewBitmap(5, 5)
		for i := range mask.Bits {
			mask.Bits[i] = true
		}
		dist := DistanceTransform(mask)
		if !math.IsInf(dist.Get(2, 2), 1) {
			t.Errorf("distance without background = %g, want +Inf", dist.Get(2, 2))
		}
	})

	t.Run("ThicknessIsLocalRadius", func(t *testing.T) {
		// A 5-row stripe: the centerline sits 3 pixels from the nearest
		// background row, and the thickness map reports exactly that
		// radius, unscaled.
		mask := raster.NewBitmap(20, 11)
		for r := 3; r <= 7; r++ {
			for c := 0; c < 20; c++ {
				mask.Set(r, c, true)
			}
		}
		skel := raster.NewBitmap(20, 11)
		skel.Set(5, 10, true)

		dist := DistanceTransform(mask)
		if got := dist.Get(5, 10); got != 3 {
			t.Fatalf("centerline distance = %g, want 3", got)
		}
		th := ThicknessMap(mask, skel)
		if got := th.Get(5, 10); got != 3 {
			t.Errorf("thickness = %g, want the radius 3", got)
		}
		if th.Get(5, 10) != dist.Get(5, 10) {
			t.Error("thickness differs from the distance transform on the skeleton")
		}
	})

	t.Run("ThicknessSampledOnSkeletonOnly", func(t *testing.T) {
		mask := raster.NewBitmap(9, 9)
		for r := 1; r < 8; r++ {
			for c := 1; c < 8; c++ {
				mask.Set(r, c, true)
			}
		}
		skel := raster.NewBitmap(9, 9)
		skel.Set(4, 4, true)
		th := ThicknessMap(mask, skel)
		if th.Get(4, 4) <= 0 {
			t.Error("skeleton pixel has no thickness")
		}
		if th.Get(2, 2) != 0 {
			t.Error("non-skeleton pixel carries thickness")
		}
	})
}

func TestSegment(t *testing.T) {
	t.Run("EndToEnd", func(t *testing.T) {
		// A bright thick bar on a dark background survives the whole chain
		// as a single skeleton with positive thickness.
		img := raster.NewFloatMap(40, 20)
		for r := 8; r < 13; r++ {
			for c := 4; c < 36; c++ {
				img.Set(r, c, 220)
			}
		}
		res, err := Segment(img, Params{
			GaussianSigma: 0,
			Threshold:     ThresholdParams{Method: ThresholdFixed, Fixed: 100},
			MinObjectSize: 5,
		})
		if err != nil {
			t.Fatalf("Segment: %v", err)
		}
		if res.Threshold != 100 {
			t.Errorf("threshold %g, want 100", res.Threshold)
		}
		if res.Skeleton.Count() == 0 {
			t.Fatal("empty skeleton")
		}
		if n := countComponents(res.Skeleton); n != 1 {
			t.Errorf("skeleton has %d components, want 1", n)
		}
		for i, on := range res.Skeleton.Bits {
			if on && res.Thickness.Values[i] <= 0 {
				t.Fatal("skeleton pixel with zero thickness")
			}
		}
	})

	t.Run("EmptyImageRejected", func(t *testing.T) {
		if _, err := Segment(raster.NewFloatMap(0, 0), Params{}); err == nil {
			t.Error("empty image accepted")
		}
	})
}

package skeleton

import (
	"math"
	"testing"

	"axonmorph/pkg/raster"
)

func TestResolveMotherLengths(t *testing.T) {
	t.Run("FullOverlap", func(t *testing.T) {
		original := bitmapFromRows(t,
			"##########",
		)
		// The reported mask is a strict subset of the single original
		// component, so the mother length is the original's size.
		reported := bitmapFromRows(t,
			"...####...",
		)
		lengths := ResolveMotherLengths(LabelComponents(reported), LabelComponents(original))
		if len(lengths) != 1 {
			t.Fatalf("got %d lengths, want 1", len(lengths))
		}
		if lengths[0] != 10 {
			t.Errorf("mother length %d, want 10", lengths[0])
		}
	})

	t.Run("MajorityRequired", func(t *testing.T) {
		// Two original components of 6 pixels each; the 7-pixel reported
		// component straddles both with a 3/3 split (plus one pixel over
		// the gap), so neither original holds a strict majority and the
		// fallback applies.
		original := bitmapFromRows(t,
			"######.######",
		)
		reported := bitmapFromRows(t,
			"...#######...",
		)
		lengths := ResolveMotherLengths(LabelComponents(reported), LabelComponents(original))
		if len(lengths) != 1 {
			t.Fatalf("got %d lengths, want 1", len(lengths))
		}
		if lengths[0] != 7 {
			t.Errorf("mother length %d, want own size 7", lengths[0])
		}
	})

	t.Run("LargestMotherWins", func(t *testing.T) {
		// Reported component of 5 pixels: 3 overlap the 20-pixel original,
		// 1 overlaps a 3-pixel original, 1 sits over the gap. The larger
		// original clears the majority bar first.
		original := raster.NewBitmap(30, 1)
		for c := 0; c < 20; c++ {
			original.Set(0, c, true)
		}
		for c := 21; c < 24; c++ {
			original.Set(0, c, true)
		}
		reported := raster.NewBitmap(30, 1)
		for c := 17; c <= 21; c++ {
			reported.Set(0, c, true)
		}
		lengths := ResolveMotherLengths(LabelComponents(reported), LabelComponents(original))
		if len(lengths) != 1 {
			t.Fatalf("got %d lengths, want 1", len(lengths))
		}
		if lengths[0] != 20 {
			t.Errorf("mother length %d, want 20", lengths[0])
		}
	})

	t.Run("NoOverlapFallsBackToOwnSize", func(t *testing.T) {
		original := bitmapFromRows(t,
			"#####.....",
		)
		reported := bitmapFromRows(t,
			"......####",
		)
		lengths := ResolveMotherLengths(LabelComponents(reported), LabelComponents(original))
		if lengths[0] != 4 {
			t.Errorf("mother length %d, want own size 4", lengths[0])
		}
	})
}

func TestFilterKeep(t *testing.T) {
	params := FilterParams{
		MinSkeletonLength:     25,
		MaxSkeletonLength:     2000000,
		MinThickness:          0,
		MaxComponentThickness: 7.5,
		MinAvgThickness:       0,
		MaxAvgThickness:       4,
	}
	base := ComponentStats{
		SkeletonLength: 100,
		MinThickness:   1,
		MaxThickness:   5,
		AvgThickness:   2.5,
		MotherLength:   120,
	}

	t.Run("PassingComponent", func(t *testing.T) {
		if !params.Keep(base) {
			t.Error("well-formed component rejected")
		}
	})

	cases := []struct {
		name   string
		mutate func(*ComponentStats)
	}{
		{"TooShort", func(s *ComponentStats) { s.SkeletonLength = 10; s.MotherLength = 30 }},
		{"MotherTooShort", func(s *ComponentStats) { s.MotherLength = 10 }},
		{"TooThick", func(s *ComponentStats) { s.MaxThickness = 9 }},
		{"AvgTooThick", func(s *ComponentStats) { s.AvgThickness = 5 }},
		{"MotherTooLong", func(s *ComponentStats) { s.MotherLength = 3000000 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			tc.mutate(&s)
			if params.Keep(s) {
				t.Error("component accepted despite violated bound")
			}
		})
	}

	t.Run("Monotonic", func(t *testing.T) {
		// Relaxing every bound never turns an accepted component into a
		// rejected one.
		relaxed := FilterParams{
			MinSkeletonLength:     0,
			MaxSkeletonLength:     math.MaxInt32,
			MinThickness:          0,
			MaxComponentThickness: math.Inf(1),
			MinAvgThickness:       0,
			MaxAvgThickness:       math.Inf(1),
		}
		for _, tc := range cases {
			s := base
			tc.mutate(&s)
			if !relaxed.Keep(s) {
				t.Errorf("%s rejected under fully relaxed bounds", tc.name)
			}
		}
	})
}

func TestAnalyze(t *testing.T) {
	defaultParams := func() Params {
		return Params{
			Spider: SpiderParams{
				WindowLength:       20,
				DensityThreshold:   0.09,
				ThicknessThreshold: 3,
			},
			Filter: FilterParams{
				MinSkeletonLength:     5,
				MaxSkeletonLength:     2000000,
				MaxComponentThickness: 7.5,
				MaxAvgThickness:       100,
			},
			MaxPixelThickness: 100,
		}
	}

	t.Run("DimensionMismatchRejected", func(t *testing.T) {
		skel := raster.NewBitmap(4, 4)
		thickness := raster.NewFloatMap(5, 4)
		if _, err := Analyze(skel, thickness, defaultParams()); err == nil {
			t.Error("mismatched thickness map accepted")
		}
	})

	t.Run("LineSkeletonAllBlue", func(t *testing.T) {
		skel := bitmapFromRows(t, "##########")
		thickness := uniformThickness(skel, 2)
		res, err := Analyze(skel, thickness, defaultParams())
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.BranchPointCount != 0 {
			t.Errorf("branch points = %d, want 0", res.BranchPointCount)
		}
		if res.PinkLength != 0 {
			t.Errorf("pink length = %d, want 0", res.PinkLength)
		}
		if res.BlueLength != 10 {
			t.Errorf("blue length = %d, want 10", res.BlueLength)
		}
		if len(res.BlueComponents) != 1 {
			t.Fatalf("got %d blue components, want 1", len(res.BlueComponents))
		}
		if res.BlueComponents[0].MotherLength != 10 {
			t.Errorf("mother length %d, want 10", res.BlueComponents[0].MotherLength)
		}
	})

	t.Run("PinkAndBlueDisjoint", func(t *testing.T) {
		skel := bitmapFromRows(t,
			"..#......###########",
			"..#.................",
			"#####...............",
			"..#.................",
			"..#.................",
		)
		thickness := uniformThickness(skel, 5)
		params := defaultParams()
		params.Spider.WindowLength = 3
		params.Spider.DensityThreshold = 0.01
		res, err := Analyze(skel, thickness, params)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.PinkLength == 0 {
			t.Fatal("junction produced no pink pixels")
		}
		seen := make(map[[2]int]string)
		for _, px := range res.Pixels {
			key := [2]int{px.Row, px.Col}
			if prev, ok := seen[key]; ok {
				t.Fatalf("pixel %v reported twice (%s and %s)", key, prev, px.Region)
			}
			seen[key] = string(px.Region)
		}
		if res.BlueLength+res.PinkLength != res.EligibleLength {
			t.Errorf("blue %d + pink %d != eligible %d",
				res.BlueLength, res.PinkLength, res.EligibleLength)
		}
	})

	t.Run("SmallComponentsExcluded", func(t *testing.T) {
		skel := bitmapFromRows(t,
			"##########....##",
		)
		thickness := uniformThickness(skel, 2)
		params := defaultParams()
		params.Filter.MinSkeletonLength = 5
		res, err := Analyze(skel, thickness, params)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.EligibleLength != 10 {
			t.Errorf("eligible length %d, want 10", res.EligibleLength)
		}
		if len(res.BlueComponents) != 1 {
			t.Errorf("got %d blue components, want 1", len(res.BlueComponents))
		}
	})

	t.Run("ThickThinOptional", func(t *testing.T) {
		skel := bitmapFromRows(t, "########")
		thickness := uniformThickness(skel, 5)

		params := defaultParams()
		res, err := Analyze(skel, thickness, params)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.ThickThin != nil {
			t.Error("thick/thin result present without being requested")
		}

		params.EnableThickThin = true
		params.ThickThin = ThickThinParams{
			WidthThreshold:          3.7,
			BranchDistanceThreshold: 12,
			BranchCountThreshold:    2,
			MinWideRegionSize:       2,
		}
		res, err = Analyze(skel, thickness, params)
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if res.ThickThin == nil {
			t.Fatal("thick/thin result missing")
		}
		if res.ThickThin.ThickCount+res.ThickThin.ThinCount != res.EligibleLength {
			t.Errorf("thick %d + thin %d != eligible %d",
				res.ThickThin.ThickCount, res.ThickThin.ThinCount, res.EligibleLength)
		}
	})
}

package skeleton

import (
	"axonmorph/internal/models"
	"axonmorph/pkg/raster"
)

// Params collects every tunable of the core engine. The numeric defaults
// are calibrated against the source experiment and live in pkg/config;
// nothing in this package hardcodes them.
type Params struct {
	// Spider gates the pink (high branch-density) classification.
	Spider SpiderParams

	// EnableThickThin switches the structural thick/thin split on.
	ThickThin       ThickThinParams
	EnableThickThin bool

	// Filter holds the blue-component thresholds.
	Filter FilterParams

	// MinPixelThickness and MaxPixelThickness bound the per-pixel
	// thickness window applied to the skeleton before classification.
	// MaxPixelThickness is distinct from Filter.MaxComponentThickness:
	// the former excludes individual pixels, the latter whole components.
	MinPixelThickness float64
	MaxPixelThickness float64
}

// Result holds the three record collections of one image plus the scalar
// measurements the per-image summary reports.
type Result struct {
	Pixels         []models.PixelRecord
	BlueComponents []models.ComponentRecord
	PinkComponents []models.PinkComponentRecord

	BranchPointCount int
	EligibleLength   int
	BlueLength       int
	PinkLength       int

	// ThickThin is nil when the stage is disabled.
	ThickThin *ThickThinResult
}

// Analyze runs the full classification chain over one image's skeleton and
// thickness map:
//
//  1. detect branch points on the full skeleton,
//  2. label the original skeleton and keep components of eligible size,
//  3. restrict to pixels inside the thickness window,
//  4. spider-classify the eligible skeleton into pink regions,
//  5. compose blue as the eligible residual, label it, and resolve mother
//     lengths against the original unfiltered labeling,
//  6. optionally split the eligible skeleton into thick/thin,
//  7. filter blue components and assemble the output records.
//
// Degenerate inputs (empty skeleton, no branch points, everything below
// the size threshold) yield empty record sets, not errors. Malformed
// inputs fail fast before any stage runs.
func Analyze(skel *raster.Bitmap, thickness *raster.FloatMap, params Params) (*Result, error) {
	if err := raster.ValidateThickness(skel, thickness); err != nil {
		return nil, err
	}

	branchPoints := DetectBranchPoints(skel)

	// First labeling pass: the original unfiltered skeleton. This labeling
	// is kept for mother-length resolution and must not be reused for
	// reporting.
	original := LabelComponents(skel)
	eligible := original.MaskOfLargeComponents(params.Filter.MinSkeletonLength)

	// Per-pixel thickness window.
	for i, on := range eligible.Bits {
		if !on {
			continue
		}
		v := thickness.Values[i]
		if v < params.MinPixelThickness || v > params.MaxPixelThickness {
			eligible.Bits[i] = false
		}
	}

	pink := NewSpiderClassifier(params.Spider).Classify(eligible, branchPoints, thickness)
	blue := eligible.AndNot(pink)

	// Second labeling pass: the blue-only residual, the component set that
	// is actually reported.
	blueLabeling := LabelComponents(blue)
	motherLengths := ResolveMotherLengths(blueLabeling, original)

	res := &Result{
		BranchPointCount: branchPoints.Count(),
		EligibleLength:   eligible.Count(),
		PinkLength:       pink.Count(),
	}
	res.BlueLength = res.EligibleLength - res.PinkLength

	var thickMask *raster.Bitmap
	if params.EnableThickThin {
		res.ThickThin = ClassifyThickThinCorrected(eligible, branchPoints, thickness, params.ThickThin)
		thickMask = res.ThickThin.Thick
	}

	res.Pixels = PixelRecords(blue, pink, thickness)
	res.BlueComponents = BlueComponentRecords(blueLabeling, thickness, motherLengths, thickMask, params.Filter)
	res.PinkComponents = PinkComponentRecords(LabelComponents(pink), thickness)

	return res, nil
}

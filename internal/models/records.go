package models

import "math"

// RegionLabel classifies a skeleton pixel by local branch density.
type RegionLabel string

const (
	// RegionBlue marks normal (non-junction-dense) process pixels.
	RegionBlue RegionLabel = "blue"

	// RegionPink marks high branch-density (junction-dense) pixels found
	// by the spider classifier.
	RegionPink RegionLabel = "pink"
)

// PixelRecord is one row of the per-pixel output: every skeleton pixel that
// survived eligibility filtering, with its local radius and region label.
type PixelRecord struct {
	// Row and Col are the pixel coordinates in the image grid.
	Row int
	Col int

	// Thickness is the local mask radius from the distance transform.
	Thickness float64

	// Region is the branch-density classification of this pixel.
	Region RegionLabel
}

// ComponentRecord is one row of the per-component output for retained blue
// components.
type ComponentRecord struct {
	// ID is the component label within this image (1-based, stable per run).
	ID int

	// SkeletonLength is the pixel count of the component.
	SkeletonLength int

	// Perimeter is the number of component pixels with at least one
	// 8-neighbor outside the component.
	Perimeter int

	// MinThickness, MaxThickness and AvgThickness summarize the thickness
	// map over the component's pixels.
	MinThickness float64
	MaxThickness float64
	AvgThickness float64

	// CentroidRow and CentroidCol are the mean pixel coordinates.
	CentroidRow float64
	CentroidCol float64

	// MotherLength is the pixel count of the largest original-skeleton
	// component containing more than half of this component's pixels, or
	// SkeletonLength when no such component exists.
	MotherLength int

	// ThickPixels and ThinPixels count the component's pixels in the
	// structural thick/thin split.
	ThickPixels int
	ThinPixels  int

	// ThickThinRatio is ThickPixels/ThinPixels, NaN when ThinPixels is 0.
	ThickThinRatio float64

	// ThickPercent and ThinPercent are the shares of the component's
	// pixels in each class, in percent.
	ThickPercent float64
	ThinPercent  float64
}

// PinkComponentRecord is one row of the per-component output for pink
// (high branch-density) components. Pink components are reported without
// filtering and carry no thick/thin or mother fields.
type PinkComponentRecord struct {
	ID             int
	SkeletonLength int
	Perimeter      int
	MinThickness   float64
	MaxThickness   float64
	AvgThickness   float64
	CentroidRow    float64
	CentroidCol    float64
}

// ImageSummary is one row of the per-image summary output.
type ImageSummary struct {
	// Image is the input filename without extension.
	Image string

	// Condition and Group come from the input directory layout; empty for
	// flat input layouts.
	Condition string
	Group     string

	// Threshold is the intensity threshold used for segmentation.
	Threshold float64

	// SkeletonLength is the eligible skeleton pixel count.
	SkeletonLength int

	// BlueLength and PinkLength are the pixel counts of each region.
	BlueLength int
	PinkLength int

	// BranchPoints is the number of branch points in the full skeleton.
	BranchPoints int

	// ThickPixels, ThinPixels and ThickThinRatio summarize the structural
	// thick/thin split over the eligible skeleton.
	ThickPixels    int
	ThinPixels     int
	ThickThinRatio float64

	// BlueComponents and PinkComponents are the reported component counts
	// (blue after filtering).
	BlueComponents int
	PinkComponents int
}

// KSResult holds a pairwise Kolmogorov-Smirnov comparison between the
// pooled component length distributions of two conditions.
type KSResult struct {
	ConditionA string
	ConditionB string
	Statistic  float64
	NA         int
	NB         int
}

// AverageThickness returns the mean thickness over a set of pixel records,
// or NaN for an empty set.
func AverageThickness(records []PixelRecord) float64 {
	if len(records) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, r := range records {
		sum += r.Thickness
	}
	return sum / float64(len(records))
}

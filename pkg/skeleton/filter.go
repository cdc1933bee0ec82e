package skeleton

// FilterParams holds the multi-criteria thresholds applied to blue
// components. Pink components are reported unfiltered: high-density
// junction regions are not expected to satisfy simple-process thickness
// bounds.
type FilterParams struct {
	MinSkeletonLength int
	MaxSkeletonLength int

	// MinThickness bounds the minimum pixel thickness from below and
	// MaxComponentThickness bounds the maximum pixel thickness from above.
	MinThickness          float64
	MaxComponentThickness float64

	MinAvgThickness float64
	MaxAvgThickness float64
}

// ComponentStats carries the measurements the filter predicate inspects.
type ComponentStats struct {
	SkeletonLength int
	MinThickness   float64
	MaxThickness   float64
	AvgThickness   float64
	MotherLength   int
}

// Keep reports whether a blue component passes every threshold. A
// component with zero pixels can never satisfy the minimum-length bound
// and is dropped without special-casing.
func (p FilterParams) Keep(s ComponentStats) bool {
	if s.SkeletonLength < p.MinSkeletonLength || s.SkeletonLength > p.MaxSkeletonLength {
		return false
	}
	if s.MotherLength < p.MinSkeletonLength || s.MotherLength > p.MaxSkeletonLength {
		return false
	}
	if s.MaxThickness > p.MaxComponentThickness {
		return false
	}
	if s.MinThickness < p.MinThickness {
		return false
	}
	if s.AvgThickness < p.MinAvgThickness || s.AvgThickness > p.MaxAvgThickness {
		return false
	}
	return true
}

package analysis

import (
	"encoding/csv"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"axonmorph/internal/models"
)

// ConditionSamples accumulates per-component skeleton lengths and average
// thicknesses keyed by condition label, the units of the cross-condition
// comparison.
type ConditionSamples struct {
	lengths     map[string][]float64
	thicknesses map[string][]float64
}

// NewConditionSamples returns an empty accumulator.
func NewConditionSamples() *ConditionSamples {
	return &ConditionSamples{
		lengths:     make(map[string][]float64),
		thicknesses: make(map[string][]float64),
	}
}

// Add records the component measurements of one image under its condition.
func (s *ConditionSamples) Add(condition string, comps []models.ComponentRecord) {
	for _, c := range comps {
		s.lengths[condition] = append(s.lengths[condition], float64(c.SkeletonLength))
		s.thicknesses[condition] = append(s.thicknesses[condition], c.AvgThickness)
	}
}

// Conditions returns the condition labels in sorted order.
func (s *ConditionSamples) Conditions() []string {
	labels := make([]string, 0, len(s.lengths))
	for label := range s.lengths {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// CompareAll runs a two-sample Kolmogorov-Smirnov test for every pair of
// conditions, over their component length distributions.
func (s *ConditionSamples) CompareAll() []models.KSResult {
	labels := s.Conditions()
	var results []models.KSResult
	for i := 0; i < len(labels); i++ {
		for j := i + 1; j < len(labels); j++ {
			a := sortedCopy(s.lengths[labels[i]])
			b := sortedCopy(s.lengths[labels[j]])
			if len(a) == 0 || len(b) == 0 {
				continue
			}
			results = append(results, models.KSResult{
				ConditionA: labels[i],
				ConditionB: labels[j],
				Statistic:  stat.KolmogorovSmirnov(a, nil, b, nil),
				NA:         len(a),
				NB:         len(b),
			})
		}
	}
	return results
}

// WriteKSTable writes the pairwise comparison results.
func WriteKSTable(path string, results []models.KSResult) error {
	return csvFile(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"condition_a", "condition_b", "ks_statistic", "n_a", "n_b"}); err != nil {
			return err
		}
		for _, r := range results {
			record := []string{
				r.ConditionA,
				r.ConditionB,
				formatFloat(r.Statistic),
				fmt.Sprintf("%d", r.NA),
				fmt.Sprintf("%d", r.NB),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteLengthCDF writes the empirical CDF of each condition's component
// skeleton lengths, one row per observed length.
func (s *ConditionSamples) WriteLengthCDF(path string) error {
	return s.writeCDF(path, "skeleton_length", s.lengths, func(v float64) string {
		return fmt.Sprintf("%.0f", v)
	})
}

// WriteThicknessCDF writes the empirical CDF of each condition's component
// average thicknesses.
func (s *ConditionSamples) WriteThicknessCDF(path string) error {
	return s.writeCDF(path, "avg_thickness", s.thicknesses, formatFloat)
}

func (s *ConditionSamples) writeCDF(path, metric string, samples map[string][]float64, format func(float64) string) error {
	return csvFile(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"condition", metric, "cdf"}); err != nil {
			return err
		}
		for _, label := range s.Conditions() {
			values := sortedCopy(samples[label])
			n := float64(len(values))
			for i, v := range values {
				// Step up at repeated values only once, on the last copy.
				if i+1 < len(values) && values[i+1] == v {
					continue
				}
				record := []string{
					label,
					format(v),
					formatFloat(float64(i+1) / n),
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

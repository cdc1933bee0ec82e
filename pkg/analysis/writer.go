package analysis

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"axonmorph/internal/models"
)

// csvFile opens path for writing, creating parent directories, and hands a
// csv.Writer to fn. Flush and close errors surface to the caller.
func csvFile(path string, fn func(w *csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "creating output directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fn(w); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4f", v)
}

// WritePixelTable writes one row per classified skeleton pixel.
func WritePixelTable(path string, pixels []models.PixelRecord) error {
	return csvFile(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"row", "col", "thickness", "region"}); err != nil {
			return err
		}
		for _, px := range pixels {
			record := []string{
				fmt.Sprintf("%d", px.Row),
				fmt.Sprintf("%d", px.Col),
				formatFloat(px.Thickness),
				string(px.Region),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteComponentTable writes one row per reported blue component.
func WriteComponentTable(path string, comps []models.ComponentRecord) error {
	return csvFile(path, func(w *csv.Writer) error {
		header := []string{
			"id", "skeleton_length", "mother_length", "perimeter",
			"min_thickness", "max_thickness", "avg_thickness",
			"centroid_row", "centroid_col",
			"thick_pixels", "thin_pixels", "thick_thin_ratio",
			"thick_percent", "thin_percent",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, c := range comps {
			record := []string{
				fmt.Sprintf("%d", c.ID),
				fmt.Sprintf("%d", c.SkeletonLength),
				fmt.Sprintf("%d", c.MotherLength),
				fmt.Sprintf("%d", c.Perimeter),
				formatFloat(c.MinThickness),
				formatFloat(c.MaxThickness),
				formatFloat(c.AvgThickness),
				formatFloat(c.CentroidRow),
				formatFloat(c.CentroidCol),
				fmt.Sprintf("%d", c.ThickPixels),
				fmt.Sprintf("%d", c.ThinPixels),
				formatFloat(c.ThickThinRatio),
				formatFloat(c.ThickPercent),
				formatFloat(c.ThinPercent),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WritePinkComponentTable writes one row per pink component.
func WritePinkComponentTable(path string, comps []models.PinkComponentRecord) error {
	return csvFile(path, func(w *csv.Writer) error {
		header := []string{
			"id", "skeleton_length", "perimeter",
			"min_thickness", "max_thickness", "avg_thickness",
			"centroid_row", "centroid_col",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, c := range comps {
			record := []string{
				fmt.Sprintf("%d", c.ID),
				fmt.Sprintf("%d", c.SkeletonLength),
				fmt.Sprintf("%d", c.Perimeter),
				formatFloat(c.MinThickness),
				formatFloat(c.MaxThickness),
				formatFloat(c.AvgThickness),
				formatFloat(c.CentroidRow),
				formatFloat(c.CentroidCol),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSummaryTable writes the per-image roll-up across the whole run,
// stamped with the run identifier.
func WriteSummaryTable(path, runID string, summaries []models.ImageSummary) error {
	return csvFile(path, func(w *csv.Writer) error {
		header := []string{
			"image", "group", "condition", "threshold",
			"skeleton_length", "blue_length", "pink_length",
			"branch_points", "thick_pixels", "thin_pixels", "thick_thin_ratio",
			"blue_components", "pink_components", "run_id",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, s := range summaries {
			record := []string{
				s.Image,
				s.Group,
				s.Condition,
				formatFloat(s.Threshold),
				fmt.Sprintf("%d", s.SkeletonLength),
				fmt.Sprintf("%d", s.BlueLength),
				fmt.Sprintf("%d", s.PinkLength),
				fmt.Sprintf("%d", s.BranchPoints),
				fmt.Sprintf("%d", s.ThickPixels),
				fmt.Sprintf("%d", s.ThinPixels),
				formatFloat(s.ThickThinRatio),
				fmt.Sprintf("%d", s.BlueComponents),
				fmt.Sprintf("%d", s.PinkComponents),
				runID,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

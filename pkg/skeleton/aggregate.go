package skeleton

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"axonmorph/internal/models"
	"axonmorph/pkg/raster"
)

// measure computes the thickness statistics, centroid and perimeter of one
// labeled component. labels is the labeling the component came from, so
// perimeter pixels are those with an 8-neighbor outside the component.
func measure(comp *Component, labeling *Labeling, thickness *raster.FloatMap) (ComponentStats, float64, float64, int) {
	w, h := labeling.Width, labeling.Height
	values := make([]float64, 0, comp.Size())
	rowSum, colSum := 0.0, 0.0
	perimeter := 0

	for _, idx := range comp.Pixels {
		values = append(values, thickness.Values[idx])
		row, col := idx/w, idx%w
		rowSum += float64(row)
		colSum += float64(col)

		boundary := false
		for _, off := range raster.MooreOffsets {
			nr, nc := row+off.Row, col+off.Col
			if nr < 0 || nr >= h || nc < 0 || nc >= w || labeling.Labels[nr*w+nc] != int32(comp.ID) {
				boundary = true
				break
			}
		}
		if boundary {
			perimeter++
		}
	}

	n := float64(comp.Size())
	stats := ComponentStats{
		SkeletonLength: comp.Size(),
		MinThickness:   floats.Min(values),
		MaxThickness:   floats.Max(values),
		AvgThickness:   stat.Mean(values, nil),
	}
	return stats, rowSum / n, colSum / n, perimeter
}

// PixelRecords produces one record per eligible skeleton pixel with its
// thickness and region label. Pink wins over blue where both masks are
// set, which cannot happen after blue is composed as eligible minus pink.
func PixelRecords(blue, pink *raster.Bitmap, thickness *raster.FloatMap) []models.PixelRecord {
	w := blue.Width
	var out []models.PixelRecord
	for idx := range blue.Bits {
		var region models.RegionLabel
		switch {
		case pink.Bits[idx]:
			region = models.RegionPink
		case blue.Bits[idx]:
			region = models.RegionBlue
		default:
			continue
		}
		out = append(out, models.PixelRecord{
			Row:       idx / w,
			Col:       idx % w,
			Thickness: thickness.Values[idx],
			Region:    region,
		})
	}
	return out
}

// BlueComponentRecords measures, filters and reports the blue components.
// motherLengths is indexed like labeling.Components; thick is the
// structural thick mask used for the per-component thick/thin counts and
// may be nil when the thick/thin stage is disabled.
func BlueComponentRecords(labeling *Labeling, thickness *raster.FloatMap, motherLengths []int,
	thick *raster.Bitmap, filter FilterParams) []models.ComponentRecord {

	var out []models.ComponentRecord
	for i, comp := range labeling.Components {
		stats, centroidRow, centroidCol, perimeter := measure(comp, labeling, thickness)
		stats.MotherLength = motherLengths[i]
		if !filter.Keep(stats) {
			continue
		}

		rec := models.ComponentRecord{
			ID:             comp.ID,
			SkeletonLength: stats.SkeletonLength,
			Perimeter:      perimeter,
			MinThickness:   stats.MinThickness,
			MaxThickness:   stats.MaxThickness,
			AvgThickness:   stats.AvgThickness,
			CentroidRow:    centroidRow,
			CentroidCol:    centroidCol,
			MotherLength:   stats.MotherLength,
		}

		if thick != nil {
			for _, idx := range comp.Pixels {
				if thick.Bits[idx] {
					rec.ThickPixels++
				} else {
					rec.ThinPixels++
				}
			}
			rec.ThickThinRatio = ratioOrNaN(rec.ThickPixels, rec.ThinPixels)
			rec.ThickPercent = 100 * float64(rec.ThickPixels) / float64(stats.SkeletonLength)
			rec.ThinPercent = 100 * float64(rec.ThinPixels) / float64(stats.SkeletonLength)
		} else {
			rec.ThickThinRatio = ratioOrNaN(0, 0)
		}
		out = append(out, rec)
	}
	return out
}

// PinkComponentRecords reports every pink component without filtering.
func PinkComponentRecords(labeling *Labeling, thickness *raster.FloatMap) []models.PinkComponentRecord {
	var out []models.PinkComponentRecord
	for _, comp := range labeling.Components {
		stats, centroidRow, centroidCol, perimeter := measure(comp, labeling, thickness)
		out = append(out, models.PinkComponentRecord{
			ID:             comp.ID,
			SkeletonLength: stats.SkeletonLength,
			Perimeter:      perimeter,
			MinThickness:   stats.MinThickness,
			MaxThickness:   stats.MaxThickness,
			AvgThickness:   stats.AvgThickness,
			CentroidRow:    centroidRow,
			CentroidCol:    centroidCol,
		})
	}
	return out
}

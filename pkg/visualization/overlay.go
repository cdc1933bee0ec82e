// Package visualization renders diagnostic images of a classified
// skeleton: each pixel is colored by the region it ended up in so an
// analyst can eyeball the blue/pink split against the raw micrograph.
package visualization

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"axonmorph/internal/models"
	"axonmorph/pkg/raster"
)

var (
	colorBlue     = color.RGBA{R: 60, G: 120, B: 255, A: 255}
	colorPink     = color.RGBA{R: 255, G: 105, B: 180, A: 255}
	colorExcluded = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	colorEmpty    = color.RGBA{A: 255}
)

// RenderOverlay draws the skeleton on a black background: blue and pink
// pixels take their region color, skeleton pixels absent from the records
// (too short, too thick) render gray.
func RenderOverlay(skel *raster.Bitmap, pixels []models.PixelRecord) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, skel.Width, skel.Height))
	for r := 0; r < skel.Height; r++ {
		for c := 0; c < skel.Width; c++ {
			if skel.Get(r, c) {
				img.SetRGBA(c, r, colorExcluded)
			} else {
				img.SetRGBA(c, r, colorEmpty)
			}
		}
	}
	for _, px := range pixels {
		switch px.Region {
		case models.RegionPink:
			img.SetRGBA(px.Col, px.Row, colorPink)
		default:
			img.SetRGBA(px.Col, px.Row, colorBlue)
		}
	}
	return img
}

// SaveOverlay renders the overlay and writes it as a PNG.
func SaveOverlay(path string, skel *raster.Bitmap, pixels []models.PixelRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "creating overlay directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating overlay %s", path)
	}
	defer f.Close()

	if err := png.Encode(f, RenderOverlay(skel, pixels)); err != nil {
		return errors.Wrapf(err, "encoding overlay %s", path)
	}
	return f.Close()
}

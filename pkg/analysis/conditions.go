// Package analysis drives the batch pipeline: it discovers images grouped
// by experimental condition, segments and classifies each one in parallel,
// and writes the per-pixel, per-component, and per-image CSV tables plus
// the cross-condition statistics.
package analysis

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ImageJob identifies one input image and the experimental labels derived
// from its location in the input tree.
type ImageJob struct {
	// Path is the absolute or relative path of the image file.
	Path string

	// Name is the image filename without its extension.
	Name string

	// Group and Condition come from the directory levels above the image:
	// input/<group>/<condition>/<image>. Images placed one level up get an
	// empty group; images directly under the input root get empty labels
	// for both.
	Group     string
	Condition string
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// DiscoverImages walks the input directory and returns a job per image
// file, sorted by path for a stable processing order.
func DiscoverImages(inputDir string) ([]ImageJob, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, errors.Wrapf(err, "input directory %s", inputDir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("input path %s is not a directory", inputDir)
	}

	var jobs []ImageJob
	err = filepath.Walk(inputDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !imageExtensions[ext] {
			return nil
		}

		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		job := ImageJob{
			Path: path,
			Name: strings.TrimSuffix(fi.Name(), filepath.Ext(fi.Name())),
		}
		parts := strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")
		switch {
		case len(parts) >= 2 && parts[0] != ".":
			job.Group = parts[0]
			job.Condition = parts[1]
		case len(parts) == 1 && parts[0] != ".":
			job.Condition = parts[0]
		}
		jobs = append(jobs, job)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "scanning input directory")
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Path < jobs[j].Path })
	return jobs, nil
}

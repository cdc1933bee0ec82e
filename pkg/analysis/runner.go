package analysis

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"axonmorph/internal/models"
	"axonmorph/pkg/config"
	"axonmorph/pkg/segmentation"
	"axonmorph/pkg/skeleton"
	"axonmorph/pkg/visualization"
)

// Runner executes the whole analysis over an input tree.
type Runner struct {
	cfg       *config.Config
	inputDir  string
	outputDir string
	log       zerolog.Logger
}

// RunReport summarizes a finished run.
type RunReport struct {
	RunID     string
	Processed int
	Failed    int
	Summaries []models.ImageSummary
	Elapsed   time.Duration
}

// NewRunner creates a runner for the given input and output directories.
func NewRunner(cfg *config.Config, inputDir, outputDir string, log zerolog.Logger) *Runner {
	return &Runner{
		cfg:       cfg,
		inputDir:  inputDir,
		outputDir: outputDir,
		log:       log,
	}
}

// imageResult carries one image's outcome back from a worker.
type imageResult struct {
	job     ImageJob
	summary models.ImageSummary
	comps   []models.ComponentRecord
	err     error
}

// Process discovers the input images, analyzes them in parallel, and
// writes every output table. It returns an error only when the run as a
// whole cannot proceed; individual image failures are logged and counted.
func (r *Runner) Process() (*RunReport, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.log.With().Str("run_id", runID).Logger()

	jobs, err := DiscoverImages(r.inputDir)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, errors.Errorf("no images found under %s", r.inputDir)
	}
	log.Info().Int("images", len(jobs)).Int("workers", r.cfg.Processing.NumWorkers).
		Msg("starting analysis")

	jobChan := make(chan ImageJob)
	resultChan := make(chan imageResult)

	var wg sync.WaitGroup
	for w := 0; w < r.cfg.Processing.NumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				summary, comps, err := r.processImage(job)
				resultChan <- imageResult{job: job, summary: summary, comps: comps, err: err}
			}
		}()
	}
	go func() {
		for _, job := range jobs {
			jobChan <- job
		}
		close(jobChan)
		wg.Wait()
		close(resultChan)
	}()

	report := &RunReport{RunID: runID}
	samples := NewConditionSamples()
	for res := range resultChan {
		if res.err != nil {
			report.Failed++
			log.Error().Err(res.err).Str("image", res.job.Path).Msg("image failed")
			continue
		}
		report.Processed++
		report.Summaries = append(report.Summaries, res.summary)
		samples.Add(res.job.Condition, res.comps)
		log.Info().Str("image", res.job.Name).
			Int("skeleton", res.summary.SkeletonLength).
			Int("blue", res.summary.BlueLength).
			Int("pink", res.summary.PinkLength).
			Msg("image done")
	}

	if err := WriteSummaryTable(filepath.Join(r.outputDir, "summary.csv"), runID, report.Summaries); err != nil {
		return nil, err
	}
	if err := samples.WriteLengthCDF(filepath.Join(r.outputDir, "length_cdf.csv")); err != nil {
		return nil, err
	}
	if err := samples.WriteThicknessCDF(filepath.Join(r.outputDir, "avg_thickness_cdf.csv")); err != nil {
		return nil, err
	}
	if ks := samples.CompareAll(); len(ks) > 0 {
		if err := WriteKSTable(filepath.Join(r.outputDir, "ks_tests.csv"), ks); err != nil {
			return nil, err
		}
	}

	report.Elapsed = time.Since(start)
	log.Info().Int("processed", report.Processed).Int("failed", report.Failed).
		Dur("elapsed", report.Elapsed).Msg("run complete")
	return report, nil
}

// processImage runs segmentation and classification on one image and
// writes its per-image tables.
func (r *Runner) processImage(job ImageJob) (models.ImageSummary, []models.ComponentRecord, error) {
	var summary models.ImageSummary

	img, err := LoadGrayscaleRetry(job.Path, RetryPolicy{
		Attempts: r.cfg.Processing.RetryAttempts,
		Delay:    time.Duration(r.cfg.Processing.RetryDelayMs) * time.Millisecond,
	})
	if err != nil {
		return summary, nil, err
	}

	seg, err := segmentation.Segment(img, r.segmentationParams())
	if err != nil {
		return summary, nil, errors.Wrapf(err, "segmenting %s", job.Name)
	}

	res, err := skeleton.Analyze(seg.Skeleton, seg.Thickness, r.analyzerParams())
	if err != nil {
		return summary, nil, errors.Wrapf(err, "analyzing %s", job.Name)
	}
	r.log.Debug().Str("image", job.Name).
		Float64("threshold", seg.Threshold).
		Float64("avg_thickness", models.AverageThickness(res.Pixels)).
		Msg("classified")

	outDir := r.imageOutputDir(job)
	if r.cfg.Output.WritePixelTables {
		if err := WritePixelTable(filepath.Join(outDir, job.Name+"_pixels.csv"), res.Pixels); err != nil {
			return summary, nil, err
		}
	}
	if err := WriteComponentTable(filepath.Join(outDir, job.Name+"_components.csv"), res.BlueComponents); err != nil {
		return summary, nil, err
	}
	if err := WritePinkComponentTable(filepath.Join(outDir, job.Name+"_pink_components.csv"), res.PinkComponents); err != nil {
		return summary, nil, err
	}
	if r.cfg.Output.WriteOverlays {
		overlayPath := filepath.Join(outDir, job.Name+"_overlay.png")
		if err := visualization.SaveOverlay(overlayPath, seg.Skeleton, res.Pixels); err != nil {
			return summary, nil, err
		}
	}

	summary = models.ImageSummary{
		Image:          job.Name,
		Condition:      job.Condition,
		Group:          job.Group,
		Threshold:      seg.Threshold,
		SkeletonLength: seg.Skeleton.Count(),
		BlueLength:     res.BlueLength,
		PinkLength:     res.PinkLength,
		BranchPoints:   res.BranchPointCount,
		BlueComponents: len(res.BlueComponents),
		PinkComponents: len(res.PinkComponents),
	}
	if res.ThickThin != nil {
		summary.ThickPixels = res.ThickThin.ThickCount
		summary.ThinPixels = res.ThickThin.ThinCount
		summary.ThickThinRatio = res.ThickThin.Ratio
	}
	return summary, res.BlueComponents, nil
}

// imageOutputDir mirrors the group/condition structure under the output
// root.
func (r *Runner) imageOutputDir(job ImageJob) string {
	dir := r.outputDir
	if job.Group != "" {
		dir = filepath.Join(dir, job.Group)
	}
	if job.Condition != "" {
		dir = filepath.Join(dir, job.Condition)
	}
	return dir
}

func (r *Runner) segmentationParams() segmentation.Params {
	s := r.cfg.Segmentation
	return segmentation.Params{
		GaussianSigma: s.GaussianSigma,
		Threshold: segmentation.ThresholdParams{
			Method:      segmentation.ThresholdMethod(s.ThresholdMethod),
			Percentile:  s.Percentile,
			Intercept:   s.Intercept,
			Coefficient: s.Coefficient,
			Offset:      s.ThresholdOffset,
			Fixed:       s.FixedThreshold,
		},
		OpeningRadius: s.OpeningRadius,
		ClosingRadius: s.ClosingRadius,
		MinObjectSize: s.MinObjectSize,
	}
}

func (r *Runner) analyzerParams() skeleton.Params {
	cfg := r.cfg
	return skeleton.Params{
		Spider: skeleton.SpiderParams{
			WindowLength:       cfg.Classification.WindowLength,
			DensityThreshold:   cfg.Classification.DensityThreshold,
			ThicknessThreshold: cfg.Classification.PinkThicknessThreshold,
		},
		ThickThin: skeleton.ThickThinParams{
			WidthThreshold:          cfg.ThickThin.WidthThreshold,
			BranchDistanceThreshold: cfg.ThickThin.BranchDistanceThreshold,
			BranchCountThreshold:    cfg.ThickThin.BranchCountThreshold,
			MinWideRegionSize:       cfg.ThickThin.MinWideRegionSize,
		},
		EnableThickThin: cfg.ThickThin.Enabled,
		Filter: skeleton.FilterParams{
			MinSkeletonLength:     cfg.Filter.MinSkeletonLength,
			MaxSkeletonLength:     cfg.Filter.MaxSkeletonLength,
			MinThickness:          cfg.Filter.MinThickness,
			MaxComponentThickness: cfg.Filter.MaxComponentThickness,
			MinAvgThickness:       cfg.Filter.MinAvgThickness,
			MaxAvgThickness:       cfg.Filter.MaxAvgThickness,
		},
		MinPixelThickness: cfg.Classification.MinPixelThickness,
		MaxPixelThickness: cfg.Classification.MaxPixelThickness,
	}
}

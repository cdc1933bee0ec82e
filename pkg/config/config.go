// Package config provides configuration loading and management for axonmorph.
// It handles loading configuration from YAML files and provides default values
// matching the slide-scanning acquisition settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumWorkers specifies how many images are analyzed in parallel
		NumWorkers int `yaml:"numWorkers"`

		// RetryAttempts is the number of times a failed image read is retried
		RetryAttempts int `yaml:"retryAttempts"`

		// RetryDelayMs is the initial delay between read retries in milliseconds;
		// the delay doubles on every attempt
		RetryDelayMs int `yaml:"retryDelayMs"`
	} `yaml:"processing"`

	// Segmentation parameters control how a raw micrograph becomes a
	// binary skeleton with a per-pixel thickness estimate
	Segmentation struct {
		// GaussianSigma is the standard deviation of the smoothing blur
		GaussianSigma float64 `yaml:"gaussianSigma"`

		// ThresholdMethod selects the binarization strategy: "regression",
		// "otsu", or "fixed"
		ThresholdMethod string `yaml:"thresholdMethod"`

		// Percentile is the brightness percentile above which pixel means
		// feed the regression threshold
		Percentile float64 `yaml:"percentile"`

		// Intercept and Coefficient define the regression threshold:
		// threshold = Intercept + Coefficient*meanAbovePercentile + Offset
		Intercept   float64 `yaml:"intercept"`
		Coefficient float64 `yaml:"coefficient"`

		// ThresholdOffset shifts the computed threshold up or down
		ThresholdOffset float64 `yaml:"thresholdOffset"`

		// FixedThreshold is used verbatim when ThresholdMethod is "fixed"
		FixedThreshold float64 `yaml:"fixedThreshold"`

		// OpeningRadius and ClosingRadius are the disk radii of the
		// morphological cleanup applied to the binary mask
		OpeningRadius int `yaml:"openingRadius"`
		ClosingRadius int `yaml:"closingRadius"`

		// MinObjectSize removes binary blobs smaller than this many pixels
		// before skeletonization
		MinObjectSize int `yaml:"minObjectSize"`
	} `yaml:"segmentation"`

	// Classification parameters drive the branch-density split of the
	// skeleton into blue and pink regions
	Classification struct {
		// WindowLength is the number of traversal rounds each spider walks
		// out from a branch point
		WindowLength int `yaml:"windowLength"`

		// DensityThreshold is the branch-point fraction above which a
		// spider's pixels become pink candidates
		DensityThreshold float64 `yaml:"densityThreshold"`

		// PinkThicknessThreshold is the minimum average thickness a
		// qualifying spider must carry
		PinkThicknessThreshold float64 `yaml:"pinkThicknessThreshold"`

		// MinPixelThickness and MaxPixelThickness exclude individual
		// pixels outside this thickness window from the eligible skeleton
		MinPixelThickness float64 `yaml:"minPixelThickness"`
		MaxPixelThickness float64 `yaml:"maxPixelThickness"`
	} `yaml:"classification"`

	// ThickThin parameters control the optional wide/narrow split
	ThickThin struct {
		// Enabled turns the thick/thin pass on
		Enabled bool `yaml:"enabled"`

		// WidthThreshold is the thickness above which a pixel is a thick
		// candidate
		WidthThreshold float64 `yaml:"widthThreshold"`

		// BranchDistanceThreshold is the disk radius of the branch-point
		// proximity check
		BranchDistanceThreshold int `yaml:"branchDistanceThreshold"`

		// BranchCountThreshold demotes thick candidates near at least this
		// many branch points
		BranchCountThreshold int `yaml:"branchCountThreshold"`

		// MinWideRegionSize drops thick regions smaller than this many
		// pixels
		MinWideRegionSize int `yaml:"minWideRegionSize"`
	} `yaml:"thickThin"`

	// Filter parameters decide which blue components are reported
	Filter struct {
		// MinSkeletonLength and MaxSkeletonLength bound the component and
		// its mother component in pixels
		MinSkeletonLength int `yaml:"minSkeletonLength"`
		MaxSkeletonLength int `yaml:"maxSkeletonLength"`

		// MinThickness is the lower bound on a component's thinnest pixel
		MinThickness float64 `yaml:"minThickness"`

		// MaxComponentThickness is the upper bound on a component's
		// thickest pixel
		MaxComponentThickness float64 `yaml:"maxComponentThickness"`

		// MinAvgThickness and MaxAvgThickness bound the component's mean
		// thickness
		MinAvgThickness float64 `yaml:"minAvgThickness"`
		MaxAvgThickness float64 `yaml:"maxAvgThickness"`
	} `yaml:"filter"`

	// Output parameters
	Output struct {
		// WriteOverlays renders a colour-coded skeleton PNG next to the
		// CSV tables for each image
		WriteOverlays bool `yaml:"writeOverlays"`

		// WritePixelTables emits the per-pixel CSV in addition to the
		// component and summary tables
		WritePixelTables bool `yaml:"writePixelTables"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumWorkers = runtime.NumCPU()
	cfg.Processing.RetryAttempts = 3
	cfg.Processing.RetryDelayMs = 250

	cfg.Segmentation.GaussianSigma = 1.0
	cfg.Segmentation.ThresholdMethod = "regression"
	cfg.Segmentation.Percentile = 15
	cfg.Segmentation.Intercept = 82.5909
	cfg.Segmentation.Coefficient = 0.3027
	cfg.Segmentation.ThresholdOffset = 0
	cfg.Segmentation.FixedThreshold = 128
	cfg.Segmentation.OpeningRadius = 2
	cfg.Segmentation.ClosingRadius = 1
	cfg.Segmentation.MinObjectSize = 25

	cfg.Classification.WindowLength = 20
	cfg.Classification.DensityThreshold = 0.09
	cfg.Classification.PinkThicknessThreshold = 3
	cfg.Classification.MinPixelThickness = 0
	cfg.Classification.MaxPixelThickness = 7.0

	cfg.ThickThin.Enabled = true
	cfg.ThickThin.WidthThreshold = 3.7
	cfg.ThickThin.BranchDistanceThreshold = 12
	cfg.ThickThin.BranchCountThreshold = 2
	cfg.ThickThin.MinWideRegionSize = 10

	cfg.Filter.MinSkeletonLength = 25
	cfg.Filter.MaxSkeletonLength = 2000000
	cfg.Filter.MinThickness = 0
	cfg.Filter.MaxComponentThickness = 7.5
	cfg.Filter.MinAvgThickness = 0
	cfg.Filter.MaxAvgThickness = 4

	cfg.Output.WriteOverlays = false
	cfg.Output.WritePixelTables = true
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with
func (cfg *Config) Validate() error {
	if cfg.Processing.NumWorkers < 1 {
		return fmt.Errorf("numWorkers must be at least 1, got %d", cfg.Processing.NumWorkers)
	}
	if cfg.Processing.RetryAttempts < 0 {
		return fmt.Errorf("retryAttempts must not be negative, got %d", cfg.Processing.RetryAttempts)
	}
	if cfg.Segmentation.GaussianSigma < 0 {
		return fmt.Errorf("gaussianSigma must not be negative, got %g", cfg.Segmentation.GaussianSigma)
	}
	switch cfg.Segmentation.ThresholdMethod {
	case "regression", "otsu", "fixed":
	default:
		return fmt.Errorf("unknown threshold method %q", cfg.Segmentation.ThresholdMethod)
	}
	if cfg.Segmentation.Percentile < 0 || cfg.Segmentation.Percentile > 100 {
		return fmt.Errorf("percentile must be in [0,100], got %g", cfg.Segmentation.Percentile)
	}
	if cfg.Classification.WindowLength < 0 {
		return fmt.Errorf("windowLength must not be negative, got %d", cfg.Classification.WindowLength)
	}
	if cfg.Classification.DensityThreshold < 0 || cfg.Classification.DensityThreshold > 1 {
		return fmt.Errorf("densityThreshold must be in [0,1], got %g", cfg.Classification.DensityThreshold)
	}
	if cfg.Classification.MinPixelThickness < 0 {
		return fmt.Errorf("minPixelThickness must not be negative, got %g", cfg.Classification.MinPixelThickness)
	}
	if cfg.Classification.MaxPixelThickness < cfg.Classification.MinPixelThickness {
		return fmt.Errorf("maxPixelThickness %g is below minPixelThickness %g",
			cfg.Classification.MaxPixelThickness, cfg.Classification.MinPixelThickness)
	}
	if cfg.ThickThin.BranchDistanceThreshold < 0 {
		return fmt.Errorf("branchDistanceThreshold must not be negative, got %d", cfg.ThickThin.BranchDistanceThreshold)
	}
	if cfg.Filter.MinSkeletonLength < 0 {
		return fmt.Errorf("minSkeletonLength must not be negative, got %d", cfg.Filter.MinSkeletonLength)
	}
	if cfg.Filter.MaxSkeletonLength < cfg.Filter.MinSkeletonLength {
		return fmt.Errorf("maxSkeletonLength %d is below minSkeletonLength %d",
			cfg.Filter.MaxSkeletonLength, cfg.Filter.MinSkeletonLength)
	}
	if cfg.Filter.MaxAvgThickness < cfg.Filter.MinAvgThickness {
		return fmt.Errorf("maxAvgThickness %g is below minAvgThickness %g",
			cfg.Filter.MaxAvgThickness, cfg.Filter.MinAvgThickness)
	}
	return nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"axonmorph/pkg/analysis"
	"axonmorph/pkg/config"
)

func main() {
	// Parse command line arguments
	inputDir := flag.String("input", "", "Directory containing axon micrographs, optionally nested as group/condition/image")
	outputDir := flag.String("output", "results", "Directory for the CSV tables and overlays")
	configPath := flag.String("config", "axonmorph.yaml", "Path to the YAML configuration file")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to the config path and exit")
	workers := flag.Int("workers", 0, "Number of images to analyze in parallel (0: use the configured value)")
	overlays := flag.Bool("overlays", false, "Render a colour-coded skeleton PNG per image")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatal().Err(err).Msg("failed to write default config")
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	if *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *workers > 0 {
		cfg.Processing.NumWorkers = *workers
	}
	if *overlays {
		cfg.Output.WriteOverlays = true
	}
	if *verbose {
		cfg.Output.Verbose = true
	}
	if cfg.Output.Verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	runner := analysis.NewRunner(cfg, *inputDir, *outputDir, log)
	report, err := runner.Process()
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	fmt.Printf("\nAnalysis completed in %.2f seconds\n", report.Elapsed.Seconds())
	fmt.Printf("Images processed: %d\n", report.Processed)
	if report.Failed > 0 {
		fmt.Printf("Images failed:    %d\n", report.Failed)
	}
	fmt.Printf("Results written to: %s\n", *outputDir)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/staffing-forecast/internal/config"
	"github.com/iwvelando/staffing-forecast/internal/logging"
	"github.com/iwvelando/staffing-forecast/internal/sizing"
	"github.com/iwvelando/staffing-forecast/pkg/constants"
	"github.com/iwvelando/staffing-forecast/pkg/output"
	"github.com/iwvelando/staffing-forecast/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	standards, err := conf.ResolveStandards()
	if err != nil {
		logger.Fatal("failed to load time standards",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	runs, err := conf.Runs(standards)
	if err != nil {
		logger.Fatal("failed to prepare scenarios",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	results, err := sizing.SimulateAll(context.Background(), logger, runs)
	if err != nil {
		logger.Fatal("failed to compute staffing",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	for _, result := range results {
		for _, diag := range result.Result.Diagnostics {
			logger.Warn("Simulation diagnostic: "+diag,
				zap.String("op", "main"),
				zap.String("scenario", result.Name),
			)
		}
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		err = output.PrettyFormat(os.Stdout, results, conf.Output.Locale)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(os.Stdout, results)
	}
	if err != nil {
		logger.Fatal("failed to write results",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

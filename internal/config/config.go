// Package config defines the data structures related to configuration and
// includes functions for loading and resolving the config.
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/iwvelando/staffing-forecast/internal/referentiel"
	"github.com/iwvelando/staffing-forecast/internal/sizing"
	"github.com/iwvelando/staffing-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for staffing-forecast.
type Configuration struct {
	Common    Common
	Scenarios []Scenario
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`

	baseDir string
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
	Locale string `yaml:"locale,omitempty"` // BCP 47 tag for number formatting
}

// Common holds the reference data and parameters shared by all scenarios.
type Common struct {
	Parameters    sizing.Parameters      `yaml:"parameters,omitempty"`
	StandardsFile string                 `yaml:"standardsFile,omitempty"`
	Standards     []referentiel.Record   `yaml:"standards,omitempty"`
	Positions     []sizing.StaffPosition `yaml:"positions,omitempty"`
}

// Scenario is one center simulation.
type Scenario struct {
	Name       string                 `yaml:"name"`
	Active     bool                   `yaml:"active"`
	Center     string                 `yaml:"center"`
	Parameters sizing.Parameters      `yaml:"parameters,omitempty"`
	Volumes    []sizing.VolumeInput   `yaml:"volumes,omitempty"`
	Positions  []sizing.StaffPosition `yaml:"positions,omitempty"`

	// explicit holds the lower-cased parameter keys present in the file.
	explicit map[string]bool
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	configuration, err := decode(v)
	if err != nil {
		return nil, err
	}
	configuration.baseDir = filepath.Dir(configPath)
	return configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
// A relative standards file is resolved against the working directory.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	raw, _ := v.Get("scenarios").([]interface{})
	for i := range configuration.Scenarios {
		if i < len(raw) {
			configuration.Scenarios[i].explicit = parameterKeys(raw[i])
		}
	}
	return &configuration, nil
}

// parameterKeys lists the keys of the parameters block of a raw scenario.
func parameterKeys(scenario interface{}) map[string]bool {
	keys := make(map[string]bool)
	for name, val := range stringMap(scenario) {
		if !strings.EqualFold(name, "parameters") {
			continue
		}
		for key := range stringMap(val) {
			keys[strings.ToLower(key)] = true
		}
	}
	return keys
}

func stringMap(val interface{}) map[string]interface{} {
	switch m := val.(type) {
	case map[string]interface{}:
		return m
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out
	}
	return nil
}

// ResolveStandards returns the time standards of the configuration: those
// of the standards file, if any, followed by the inline ones.
func (conf *Configuration) ResolveStandards() ([]sizing.TaskStandard, error) {
	var standards []sizing.TaskStandard

	if conf.Common.StandardsFile != "" {
		path := conf.Common.StandardsFile
		if !filepath.IsAbs(path) && conf.baseDir != "" {
			path = filepath.Join(conf.baseDir, path)
		}
		fromFile, err := referentiel.LoadFile(path)
		if err != nil {
			return nil, err
		}
		standards = append(standards, fromFile...)
	}

	inline, err := referentiel.Convert(conf.Common.Standards)
	if err != nil {
		return nil, fmt.Errorf("invalid inline standards: %w", err)
	}
	return append(standards, inline...), nil
}

// Runs builds one simulation run per active scenario.
func (conf *Configuration) Runs(standards []sizing.TaskStandard) ([]sizing.Run, error) {
	var runs []sizing.Run
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			continue
		}
		run, err := scenario.ToRun(conf.Common, standards)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	standards, err := conf.ResolveStandards()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to load standards: %v", err))
	}

	scenarios := make([]validation.ScenarioConfig, 0, len(conf.Scenarios))
	for _, scenario := range conf.Scenarios {
		scenarios = append(scenarios, validation.ScenarioConfig{
			Name:       scenario.Name,
			Active:     scenario.Active,
			Center:     scenario.Center,
			Parameters: scenario.parameters(conf.Common),
			Volumes:    scenario.Volumes,
			Positions:  scenario.positions(conf.Common),
		})
	}

	if err := validation.ValidateLocale(conf.Output.Locale); err != nil {
		warnings = append(warnings, err.Error())
	}

	validator := validation.ConfigValidator{Standards: standards, Scenarios: scenarios}
	return append(warnings, validator.ValidateAll()...)
}

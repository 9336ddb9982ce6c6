// Package config provides configuration loading and management for gbmset.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Data locations
	Data struct {
		// ImageDir is the directory holding one .npy volume per (patient, modality)
		ImageDir string `yaml:"imageDir"`

		// CSVDir is the directory holding the radiomic feature tables
		CSVDir string `yaml:"csvDir"`

		// LabelsCSV is the CSV file mapping patient identifiers to labels
		LabelsCSV string `yaml:"labelsCSV"`
	} `yaml:"data"`

	// Sampling parameters
	Sampling struct {
		// Modalities lists the acquisition sequences to load as channels
		Modalities []string `yaml:"modalities"`

		// Dims are the spatial dimensions of the stored sub-volumes
		Dims [3]int `yaml:"dims"`

		// Channels selects the tumor sub-region channels (1, 3, 4 or 5)
		Channels int `yaml:"channels"`

		// Sectionate reshapes assembled arrays to Dims with a trailing channel axis
		Sectionate bool `yaml:"sectionate"`
	} `yaml:"sampling"`

	// Augmentation parameters
	Augmentation struct {
		// Enabled turns on synthetic index expansion
		Enabled bool `yaml:"enabled"`

		// Kinds lists the expansion transforms in table order
		Kinds []string `yaml:"kinds"`

		// Seed seeds the augmentation generators
		Seed uint64 `yaml:"seed"`
	} `yaml:"augmentation"`

	// Encoding parameters
	Encoding struct {
		// Enabled overlays standardized radiomic features onto the sample tensor
		Enabled bool `yaml:"enabled"`
	} `yaml:"encoding"`

	// Output parameters
	Output struct {
		// PreviewDir is the directory slice previews are written to
		PreviewDir string `yaml:"previewDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default data locations
	cfg.Data.ImageDir = "data/images"
	cfg.Data.CSVDir = "data/csvs"
	cfg.Data.LabelsCSV = "data/labels.csv"

	// Set default sampling parameters
	cfg.Sampling.Modalities = []string{"FLAIR"}
	cfg.Sampling.Dims = [3]int{70, 86, 86}
	cfg.Sampling.Channels = 3
	cfg.Sampling.Sectionate = false

	// Set default augmentation parameters
	cfg.Augmentation.Enabled = false
	cfg.Augmentation.Kinds = []string{"noise", "flip", "rotate", "deform"}
	cfg.Augmentation.Seed = 42

	// Set default encoding parameters
	cfg.Encoding.Enabled = false

	// Set default output parameters
	cfg.Output.PreviewDir = "previews"
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

	return cfg, nil
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

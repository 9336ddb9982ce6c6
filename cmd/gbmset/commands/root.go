// Package commands implements the gbmset CLI: inspection tooling around
// the sample provider for checking what a training loop would be fed.
package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gbmset/internal/models"
	"gbmset/pkg/config"
	"gbmset/pkg/dataset"
)

var (
	configPath string
	log        *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gbmset",
	Short: "gbmset - GBM MRI sample provider inspection tools",
	Long: `gbmset - Inspection tools for the GBM brain-tumor MRI sample provider.

The provider loads per-patient .npy sub-volumes and paired radiomic
feature tables, expands the index with synthetic augmentation variants,
and serves (tensor, label) pairs to a training loop. These commands
exercise the same code path outside a training run.

Available commands:
  samples     - List the expanded sample index
  show        - Load one sample and report its shape and label
  preview     - Render in-plane slices of one sample to JPEG
  features    - Summarize radiomic feature standardization
  init-config - Write a default configuration file`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if cfg.Output.Verbose {
			log, err = zap.NewDevelopment()
			if err != nil {
				return errors.Wrap(err, "failed to build logger")
			}
		} else {
			log = zap.NewNop()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "gbmset.yaml", "path to the YAML configuration file")

	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(initConfigCmd)
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.CreateDefaultConfigFile(configPath); err != nil {
			return err
		}
		cmd.Printf("Wrote default configuration to %s\n", configPath)
		return nil
	},
}

// buildProvider loads the configured label table and constructs the
// sample provider exactly as a training run would.
func buildProvider() (*dataset.Provider, *config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	base, err := dataset.LoadLabelsCSV(cfg.Data.LabelsCSV)
	if err != nil {
		return nil, nil, err
	}

	kinds := make([]models.Augmentation, 0, len(cfg.Augmentation.Kinds))
	for _, name := range cfg.Augmentation.Kinds {
		kind, err := models.ParseAugmentation(name)
		if err != nil {
			return nil, nil, errors.Wrap(err, "invalid augmentation kind in configuration")
		}
		kinds = append(kinds, kind)
	}

	provider, err := dataset.New(dataset.Params{
		DataDir:      cfg.Data.ImageDir,
		CSVDir:       cfg.Data.CSVDir,
		Modalities:   cfg.Sampling.Modalities,
		Dims:         cfg.Sampling.Dims,
		Channels:     cfg.Sampling.Channels,
		Augment:      cfg.Augmentation.Enabled,
		AugmentKinds: kinds,
		Encode:       cfg.Encoding.Enabled,
		Sectionate:   cfg.Sampling.Sectionate,
		Seed:         cfg.Augmentation.Seed,
		Logger:       log,
	}, base)
	if err != nil {
		return nil, nil, err
	}
	return provider, cfg, nil
}

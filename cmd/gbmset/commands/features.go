package commands

import (
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"gbmset/pkg/dataset"
	"gbmset/pkg/radiomics"
)

var featuresLimit int

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Summarize radiomic feature standardization",
	Long: `Retrieve the radiomic feature table for the representative modality,
restrict it to the labeled patients, and report each column's moments
before and after standardization. The standardized moments should come
out at mean 0 and standard deviation 1 over the restricted population.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := buildProvider()
		if err != nil {
			return err
		}

		modality := cfg.Sampling.Modalities[0]
		if modality == dataset.ModalityPlaceholder {
			modality = dataset.DefaultModality
		}
		table, err := radiomics.Retrieve(cfg.Data.CSVDir, modality)
		if err != nil {
			return err
		}

		base, err := dataset.LoadLabelsCSV(cfg.Data.LabelsCSV)
		if err != nil {
			return err
		}
		patients := make([]string, len(base))
		for i, e := range base {
			patients[i] = e.Ref.Patient
		}
		restricted, err := table.Restrict(patients)
		if err != nil {
			return err
		}
		standardized := restricted.Standardize()

		cmd.Printf("%d patients, %d feature columns (modality %s)\n",
			len(restricted.Patients), len(restricted.Columns), modality)
		limit := featuresLimit
		if limit <= 0 || limit > len(restricted.Columns) {
			limit = len(restricted.Columns)
		}
		cmd.Printf("%-48s %12s %12s %10s %10s\n", "column", "mean", "stddev", "std.mean", "std.sd")
		for _, name := range restricted.Columns[:limit] {
			raw, err := restricted.Column(name)
			if err != nil {
				return err
			}
			std, err := standardized.Column(name)
			if err != nil {
				return err
			}
			cmd.Printf("%-48s %12.4f %12.4f %10.4f %10.4f\n",
				name,
				stat.Mean(raw, nil), stat.PopStdDev(raw, nil),
				stat.Mean(std, nil), stat.PopStdDev(std, nil))
		}
		return nil
	},
}

func init() {
	featuresCmd.Flags().IntVar(&featuresLimit, "limit", 20, "number of columns to report (0 = all)")
}

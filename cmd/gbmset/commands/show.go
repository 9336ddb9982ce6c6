package commands

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var showCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Load one sample and report its shape and label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Wrapf(err, "invalid index %q", args[0])
		}

		provider, _, err := buildProvider()
		if err != nil {
			return err
		}

		start := time.Now()
		vol, label, err := provider.At(idx)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		refs := provider.Refs()
		cmd.Printf("Sample %d (%s)\n", idx, refs[idx])
		cmd.Printf("  shape:    %v\n", vol.Shape)
		cmd.Printf("  label:    %g\n", label)
		cmd.Printf("  mean:     %.6f\n", stat.Mean(vol.Data, nil))
		cmd.Printf("  stddev:   %.6f\n", stat.StdDev(vol.Data, nil))
		cmd.Printf("  loaded in %.2f ms\n", float64(elapsed.Microseconds())/1000)
		return nil
	},
}

package commands

import (
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"gbmset/pkg/visualization"
)

var previewChannel int

var previewCmd = &cobra.Command{
	Use:   "preview <index>",
	Short: "Render in-plane slices of one sample to JPEG",
	Long: `Load one sample through the full provider path (channel assembly,
augmentation, feature encoding) and save every in-plane slice of one
channel as a JPEG sequence under the configured preview directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Wrapf(err, "invalid index %q", args[0])
		}

		provider, cfg, err := buildProvider()
		if err != nil {
			return err
		}

		vol, _, err := provider.At(idx)
		if err != nil {
			return err
		}

		viewer, err := visualization.NewViewer(vol)
		if err != nil {
			return err
		}
		if previewChannel < 0 || previewChannel >= viewer.Channels() {
			return errors.Newf("channel %d out of range [0, %d)", previewChannel, viewer.Channels())
		}

		refs := provider.Refs()
		outDir := filepath.Join(cfg.Output.PreviewDir, refs[idx].String())
		if err := viewer.SaveSliceSequence(previewChannel, outDir); err != nil {
			return err
		}
		cmd.Printf("Saved %d slices of sample %d channel %d to %s\n",
			viewer.Depth(), idx, previewChannel, outDir)
		return nil
	},
}

func init() {
	previewCmd.Flags().IntVar(&previewChannel, "channel", 0, "leading channel to render")
}

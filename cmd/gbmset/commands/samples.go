package commands

import (
	"github.com/spf13/cobra"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List the expanded sample index",
	Long: `List every sample the provider serves, in positional order:
the real patients first, then one block of virtual samples per
configured augmentation kind. Virtual samples are listed in the
<patient>_<kind> form and carry the label of their originating patient.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _, err := buildProvider()
		if err != nil {
			return err
		}

		refs := provider.Refs()
		cmd.Printf("%d samples\n", len(refs))
		for i, ref := range refs {
			label, err := provider.Label(i)
			if err != nil {
				return err
			}
			cmd.Printf("%6d  %-32s  label=%g\n", i, ref.String(), label)
		}
		return nil
	},
}

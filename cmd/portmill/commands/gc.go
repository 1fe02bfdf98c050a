package commands

import (
	"time"

	"github.com/portmill/portmill/cmd/portmill/opts"
	"github.com/portmill/portmill/pkg/staging"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// 🎯 NewGCCmd creates the gc command, which removes stale staging directories
// left behind by interrupted conversions
func NewGCCmd(ro *opts.RootOpts) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Remove stale staging directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := staging.Sweep(cmd.Context(), ro.Config.StagingRoot, maxAge)
			if err != nil {
				return errors.Errorf("sweeping staging root: %w", err)
			}
			if removed == 0 {
				pterm.Info.Println("nothing to remove")
				return nil
			}
			pterm.Success.Printfln("removed %d stale staging directories", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 24*time.Hour, "remove staging directories older than this")

	return cmd
}

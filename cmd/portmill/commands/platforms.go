package commands

import (
	"strings"

	"github.com/portmill/portmill/cmd/portmill/opts"
	"github.com/portmill/portmill/pkg/platform"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// 🎯 NewPlatformsCmd creates the platforms command
func NewPlatformsCmd(_ *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List supported platforms and their file extensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			data := pterm.TableData{
				{"Platform", "Display Name", "Source Extensions", "Output Extension"},
			}
			for _, p := range platform.All() {
				data = append(data, []string{
					string(p),
					p.DisplayName(),
					strings.Join(p.SourceExtensions(), ", "),
					p.CanonicalExtension(),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

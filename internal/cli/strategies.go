package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/platekit/pkg/plate/layout"
)

// strategiesCommand lists the available layout strategies.
func (c *CLI) strategiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List layout strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nameStyle := lipgloss.NewStyle().Foreground(colorCyan).Width(14)
			for _, s := range layout.Strategies() {
				marker := "  "
				if s == c.cfg.Plate.Strategy {
					marker = StyleSuccess.Render("* ")
				}
				fmt.Println(marker + nameStyle.Render(s.String()) + StyleDim.Render(s.Description()))
			}
			return nil
		},
	}
}

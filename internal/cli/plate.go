package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/layout"
)

// plateFlags are the geometry flags shared by layout and allocate. Unset
// flags fall back to the [plate] section of the config file.
type plateFlags struct {
	rows, columns, group int
	strategy             string
}

func (f *plateFlags) register(cmd *cobra.Command, withStrategy bool) {
	cmd.Flags().IntVar(&f.rows, "rows", 0, "plate rows (default from config)")
	cmd.Flags().IntVar(&f.columns, "columns", 0, "plate columns (default from config)")
	cmd.Flags().IntVarP(&f.group, "group", "g", 0, "replicate group size (default from config)")
	if withStrategy {
		cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "layout strategy (default from config)")
	}
}

// resolve merges the flags over the configured defaults.
func (c *CLI) resolvePlate(cmd *cobra.Command, f plateFlags) (layout.Strategy, plate.Dimensions, int, error) {
	p := c.cfg.Plate
	dims := p.Dimensions()
	if cmd.Flags().Changed("rows") {
		dims.Rows = f.rows
	}
	if cmd.Flags().Changed("columns") {
		dims.Columns = f.columns
	}
	group := p.Group
	if cmd.Flags().Changed("group") {
		group = f.group
	}
	strategy := p.Strategy
	if f.strategy != "" {
		s, err := layout.ParseStrategy(f.strategy)
		if err != nil {
			return 0, dims, 0, err
		}
		strategy = s
	}
	return strategy, dims, group, nil
}

// interactive reports whether stdin is a terminal.
func interactive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

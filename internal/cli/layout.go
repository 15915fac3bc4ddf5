package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/layout"
	"github.com/matzehuels/platekit/pkg/render/platemap"
)

// Layout output formats.
const (
	formatTable = "table"
	formatList  = "list"
	formatJSON  = "json"
	formatDOT   = "dot"
	formatSVG   = "svg"
)

// layoutCommand creates the layout command for printing a strategy's fill order.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  plateFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [strategy]",
		Short: "Show the fill order of a layout strategy",
		Long: `Show the fill order of a layout strategy.

Each well of the plate map shows its position in the fill order; wells the
strategy never uses are shown as dots. Without a strategy argument an
interactive picker opens when stdin is a terminal, otherwise the configured
strategy is used.

Formats: table (plate map and well list), list, json, dot, svg.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: layout.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.strategy = args[0]
			}
			strategy, dims, group, err := c.resolvePlate(cmd, flags)
			if err != nil {
				return err
			}
			if len(args) == 0 && format == formatTable && interactive() {
				picked, ok, err := pickStrategy(dims, group)
				if err != nil || !ok {
					return err
				}
				strategy = picked
			}
			return c.runLayout(cmd.Context(), strategy, dims, group, format, output)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, list, json, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for dot and svg (default: stdout)")

	return cmd
}

// pickStrategy runs the interactive strategy picker.
func pickStrategy(dims plate.Dimensions, group int) (layout.Strategy, bool, error) {
	preview := func(s layout.Strategy) string {
		seq, err := layout.Generate(s, dims, group)
		if err != nil {
			return StyleWarning.Render(perrors.UserMessage(err))
		}
		return newPlateMap(dims, seq).render()
	}
	final, err := tea.NewProgram(NewStrategyListModel(preview)).Run()
	if err != nil {
		return 0, false, err
	}
	m, ok := final.(StrategyListModel)
	if !ok || m.Selected == nil {
		printDetail("No selection made")
		return 0, false, nil
	}
	return *m.Selected, true, nil
}

// runLayout generates the sequence and writes it in the requested format.
func (c *CLI) runLayout(ctx context.Context, s layout.Strategy, dims plate.Dimensions, group int, format, output string) error {
	seq, err := layout.Generate(s, dims, group)
	if err != nil {
		return err
	}
	c.Logger.Debug("generated layout", "strategy", s, "dims", dims, "group", group, "wells", len(seq))

	switch format {
	case formatTable:
		printLayoutTable(s, dims, group, seq)
		return nil
	case formatList:
		fmt.Println(formatWellList(seq.Wells(), 0))
		return nil
	case formatJSON:
		return writeLayoutJSON(os.Stdout, s, dims, group, seq)
	case formatDOT, formatSVG:
		data := []byte(platemap.ToDOT(seq, dims, platemap.Options{GroupSize: group}))
		if format == formatSVG {
			if data, err = platemap.RenderSVG(ctx, string(data)); err != nil {
				return err
			}
		}
		if output == "" {
			_, err := os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printSuccess("Wrote %s", output)
		return nil
	default:
		return perrors.New(perrors.ErrCodeInvalidInput, "unknown format %q (want table, list, json, dot or svg)", format)
	}
}

func printLayoutTable(s layout.Strategy, dims plate.Dimensions, group int, seq plate.Sequence) {
	fmt.Println(StyleTitle.Render(s.String()) + " " + StyleDim.Render(s.Description()))
	printKeyValue("plate", dims.String())
	printKeyValue("group", fmt.Sprint(group))
	printKeyValue("wells", fmt.Sprintf("%d of %d", len(seq), dims.Cells()))
	fmt.Println(newPlateMap(dims, seq).render())
	fmt.Println(StyleDim.Render(formatWellList(seq.Wells(), dims.Columns)))
}

// layoutJSON is the JSON output of the layout command.
type layoutJSON struct {
	Strategy layout.Strategy `json:"strategy"`
	Rows     int             `json:"rows"`
	Columns  int             `json:"columns"`
	Group    int             `json:"group"`
	Wells    []string        `json:"wells"`
	Sequence plate.Sequence  `json:"sequence"`
}

func writeLayoutJSON(w io.Writer, s layout.Strategy, dims plate.Dimensions, group int, seq plate.Sequence) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(layoutJSON{
		Strategy: s,
		Rows:     dims.Rows,
		Columns:  dims.Columns,
		Group:    group,
		Wells:    seq.Wells(),
		Sequence: seq,
	})
}

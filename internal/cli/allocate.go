package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/platekit/pkg/annotation"
	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/alloc"
	"github.com/matzehuels/platekit/pkg/plate/layout"
)

// allocateOptions holds the allocate command flags.
type allocateOptions struct {
	plate   plateFlags
	key     string
	count   int
	column  int
	value   string
	source  string
	dryRun  bool
	yes     bool
	seeking bool
}

// allocateCommand creates the allocate command, which claims unannotated
// wells of a plate in layout order.
func (c *CLI) allocateCommand() *cobra.Command {
	var opts allocateOptions

	cmd := &cobra.Command{
		Use:   "allocate <plate-id>",
		Short: "Claim the next unannotated wells of a plate",
		Long: `Claim the next unannotated wells of a plate.

Wells are drawn in the order of the layout strategy. Groups that contain a
well already annotated under --key are skipped whole, so rerunning after an
interrupted run continues where it stopped.

The proposed groups are shown on a plate map and confirmed before anything is
written. Use --yes to skip the prompt or --dry-run to only show the proposal.
Without --value each well is annotated with a provenance record carrying a
fresh run ID and the --source label.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seeking = cmd.Flags().Changed("column")
			return c.runAllocate(cmd, args[0], opts)
		},
	}

	opts.plate.register(cmd, true)
	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "annotation key to claim under (required)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 1, "number of groups to allocate")
	cmd.Flags().IntVar(&opts.column, "column", 0, "start each group in this column (1-based), moving right for following groups")
	cmd.Flags().StringVar(&opts.value, "value", "", "annotation value (default: provenance record)")
	cmd.Flags().StringVar(&opts.source, "source", "", "source label stored in the provenance record")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show the proposal without claiming")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "claim without asking for confirmation")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func (c *CLI) runAllocate(cmd *cobra.Command, plateID string, opts allocateOptions) error {
	ctx := cmd.Context()
	if err := perrors.ValidatePlateID(plateID); err != nil {
		return err
	}
	strategy, dims, group, err := c.resolvePlate(cmd, opts.plate)
	if err != nil {
		return err
	}

	store, err := c.store(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := plateLogger(c.Logger, plateID, opts.key)
	grid := annotation.NewGrid(store, plateID, dims)
	a, err := alloc.NewForStrategy(grid, strategy, group, alloc.WithLogger(logger))
	if err != nil {
		return err
	}

	groups, err := planGroups(ctx, a, opts, group)
	if err != nil {
		if !perrors.IsCapacity(err) || len(groups) == 0 {
			return err
		}
		printWarning("Only %d of %d groups fit: %s", len(groups), opts.count, perrors.UserMessage(err))
	}

	claimed, err := grid.Annotations(ctx, opts.key)
	if err != nil {
		return err
	}
	if err := printProposal(plateID, strategy, dims, group, a, groups, claimed); err != nil {
		return err
	}

	if opts.dryRun {
		printInfo("Dry run: nothing claimed")
		return nil
	}
	if !opts.yes && interactive() {
		ok, err := confirm(fmt.Sprintf("Claim %d wells under %q?", countWells(groups), opts.key))
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Aborted: nothing claimed")
			return nil
		}
	}

	value := opts.value
	if value == "" {
		if value, err = alloc.NewProvenance(opts.source).Encode(); err != nil {
			return err
		}
	}

	prog := newProgress(logger)
	var cells []plate.Coordinate
	for _, g := range groups {
		cells = append(cells, g...)
	}
	if err := a.Claim(ctx, cells, opts.key, value); err != nil {
		return err
	}
	prog.done(len(cells))

	printSuccess("Claimed %d wells on %s under %q", len(cells), plateID, opts.key)
	fmt.Println(formatStats(c.stats))
	printNewline()
	printNextStep("Review", fmt.Sprintf("%s annotations %s --key %s", appName, plateID, opts.key))
	return nil
}

// planGroups proposes opts.count groups, seeking the requested column when
// --column is set.
func planGroups(ctx context.Context, a *alloc.Allocator, opts allocateOptions, size int) ([]plate.Group, error) {
	if opts.seeking {
		return a.PlanIn(ctx, opts.key, opts.count, size, opts.column-1)
	}
	return a.Plan(ctx, opts.key, opts.count, size)
}

func printProposal(plateID string, s layout.Strategy, dims plate.Dimensions, group int, a *alloc.Allocator, groups []plate.Group, claimed map[plate.Coordinate]string) error {
	seq, err := layout.Generate(s, dims, group)
	if err != nil {
		return err
	}
	m := newPlateMap(dims, seq)
	for c := range claimed {
		m.claimed[c] = true
	}
	for _, g := range groups {
		for _, c := range g {
			m.picked[c] = true
		}
	}

	fmt.Println(StyleTitle.Render(plateID) + " " + StyleDim.Render(fmt.Sprintf("%s · %s", s, dims)))
	fmt.Println(m.render())
	for i, g := range groups {
		printDetail("group %d: %s", i+1, formatWellList(g.Wells(), 0))
	}
	printKeyValue("remaining", fmt.Sprintf("%d wells in layout", a.Cursor().Remaining()))
	return nil
}

func countWells(groups []plate.Group) int {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	return n
}

// confirm runs the yes/no prompt.
func confirm(prompt string) (bool, error) {
	final, err := tea.NewProgram(NewConfirmModel(prompt, "")).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ConfirmModel)
	return ok && m.Confirmed, nil
}

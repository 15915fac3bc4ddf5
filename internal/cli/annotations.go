package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/platekit/pkg/annotation"
	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/alloc"
)

// annotationsCommand shows the wells of a plate annotated under a key.
func (c *CLI) annotationsCommand() *cobra.Command {
	var (
		flags  plateFlags
		key    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "annotations <plate-id>",
		Short: "Show the wells of a plate claimed under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plateID := args[0]
			if err := perrors.ValidatePlateID(plateID); err != nil {
				return err
			}
			_, dims, _, err := c.resolvePlate(cmd, flags)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := c.store(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			cells, err := annotation.NewGrid(store, plateID, dims).Annotations(ctx, key)
			if err != nil {
				return err
			}

			switch format {
			case formatJSON:
				return writeAnnotationsJSON(plateID, key, cells)
			case formatTable:
				printAnnotations(plateID, key, dims, cells)
				return nil
			default:
				return perrors.New(perrors.ErrCodeInvalidInput, "unknown format %q (want table or json)", format)
			}
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVarP(&key, "key", "k", "", "annotation key (required)")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

// sortedWells returns the annotated wells in row-major order.
func sortedWells(cells map[plate.Coordinate]string) []plate.Coordinate {
	out := make([]plate.Coordinate, 0, len(cells))
	for c := range cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Column < out[j].Column
	})
	return out
}

func printAnnotations(plateID, key string, dims plate.Dimensions, cells map[plate.Coordinate]string) {
	if len(cells) == 0 {
		printInfo("No wells of %s are annotated under %q", plateID, key)
		return
	}

	m := newPlateMap(dims, nil)
	for c := range cells {
		m.picked[c] = true
	}
	fmt.Println(StyleTitle.Render(plateID) + " " + StyleDim.Render(fmt.Sprintf("%d wells under %q", len(cells), key)))
	fmt.Println(m.render())

	for _, c := range sortedWells(cells) {
		printKeyValue(c.String(), describeValue(cells[c]))
	}
}

// describeValue summarizes provenance records and passes other values through.
func describeValue(v string) string {
	p, err := alloc.DecodeProvenance(v)
	if err != nil {
		return v
	}
	s := "run " + p.RunID[:8]
	if p.Source != "" {
		s += " · " + p.Source
	}
	return s + " · " + p.ClaimedAt.Local().Format("2006-01-02 15:04")
}

func writeAnnotationsJSON(plateID, key string, cells map[plate.Coordinate]string) error {
	wells := make(map[string]string, len(cells))
	for c, v := range cells {
		wells[c.String()] = v
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"plate_id": plateID,
		"key":      key,
		"wells":    wells,
	})
}

// clearCommand removes every annotation under a key from a plate.
func (c *CLI) clearCommand() *cobra.Command {
	var (
		key string
		yes bool
	)

	cmd := &cobra.Command{
		Use:   "clear <plate-id>",
		Short: "Remove every annotation under a key from a plate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plateID := args[0]
			if err := perrors.ValidatePlateID(plateID); err != nil {
				return err
			}
			if !yes && interactive() {
				ok, err := confirm(fmt.Sprintf("Remove all %q annotations from %s?", key, plateID))
				if err != nil || !ok {
					return err
				}
			}

			ctx := cmd.Context()
			store, err := c.store(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(ctx, plateID, key); err != nil {
				return err
			}
			printSuccess("Cleared %q on %s", key, plateID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "annotation key (required)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

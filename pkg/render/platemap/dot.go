package platemap

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/plate"
)

// Options configures diagram output.
type Options struct {
	// GroupSize splits the sequence into groups for edge styling. Values
	// below 1 are treated as 1.
	GroupSize int

	// Claimed wells are filled grey.
	Claimed map[plate.Coordinate]bool

	// Spacing is the distance between well centers in inches (default 0.6).
	Spacing float64
}

// ToDOT returns the DOT form of seq on a plate of dims.
func ToDOT(seq plate.Sequence, dims plate.Dimensions, opts Options) string {
	spacing := opts.Spacing
	if spacing <= 0 {
		spacing = 0.6
	}
	group := opts.GroupSize
	if group < 1 {
		group = 1
	}

	order := make(map[plate.Coordinate]int, len(seq))
	for i, c := range seq {
		order[c] = i + 1
	}

	var buf bytes.Buffer
	buf.WriteString("digraph Plate {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, fixedsize=true, width=0.5, fontname=\"SF Mono, Menlo, monospace\", fontsize=9, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowsize=0.5];\n\n")

	for r := 0; r < dims.Rows; r++ {
		for col := 0; col < dims.Columns; col++ {
			c := plate.At(r, col)
			fmt.Fprintf(&buf, "  %q [%s];\n", c.String(), nodeAttrs(c, order[c], opts.Claimed[c], spacing))
		}
	}

	buf.WriteString("\n")
	for i := 1; i < len(seq); i++ {
		style := "solid"
		if i%group == 0 {
			style = "dashed, color=grey60"
		}
		fmt.Fprintf(&buf, "  %q -> %q [style=%s];\n", seq[i-1].String(), seq[i].String(), style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(c plate.Coordinate, n int, claimed bool, spacing float64) string {
	label := c.String()
	if n > 0 {
		label = fmt.Sprintf("%s\\n%d", c, n)
	}
	attrs := fmt.Sprintf("label=\"%s\", pos=\"%.2f,%.2f!\"", label, float64(c.Column)*spacing, -float64(c.Row)*spacing)
	switch {
	case claimed:
		attrs += ", fillcolor=grey80"
	case n == 0:
		attrs += ", style=dashed, fontcolor=grey60"
	}
	return attrs
}

// RenderSVG renders a DOT diagram to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeUnsupported, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "render")
	}
	return buf.Bytes(), nil
}

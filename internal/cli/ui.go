package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/platekit/pkg/plate"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	// Plate map cells
	styleCellHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	styleCellOrder   = lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1).Align(lipgloss.Right)
	styleCellSkipped = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1).Align(lipgloss.Right)
	styleCellClaimed = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true).Padding(0, 1).Align(lipgloss.Right)
	styleCellPicked  = lipgloss.NewStyle().Foreground(colorGreen).Bold(true).Padding(0, 1).Align(lipgloss.Right)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconSkipped = "·"
	iconClaimed = "×"
	iconPicked  = "●"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// formatStats renders allocator and store counters on a single line.
func formatStats(s *runStats) string {
	parts := []string{
		fmt.Sprintf("%d draws", s.draws.Load()),
		fmt.Sprintf("%d skipped", s.skips.Load()),
		fmt.Sprintf("%d store reads", s.reads.Load()),
	}
	if w := s.writes.Load(); w > 0 {
		parts = append(parts, fmt.Sprintf("%d writes", w))
	}
	if e := s.storeErrs.Load(); e > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d errors", e)))
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	return line
}

// =============================================================================
// Plate Map
// =============================================================================

// plateMap describes what to draw in each cell of a plate map.
type plateMap struct {
	dims    plate.Dimensions
	order   map[plate.Coordinate]int  // 1-based fill position
	claimed map[plate.Coordinate]bool // already annotated
	picked  map[plate.Coordinate]bool // proposed for this run
}

func newPlateMap(dims plate.Dimensions, seq plate.Sequence) plateMap {
	m := plateMap{
		dims:    dims,
		order:   make(map[plate.Coordinate]int, len(seq)),
		claimed: make(map[plate.Coordinate]bool),
		picked:  make(map[plate.Coordinate]bool),
	}
	for i, c := range seq {
		m.order[c] = i + 1
	}
	return m
}

// cell returns the text of one well.
func (m plateMap) cell(c plate.Coordinate) string {
	switch n, ok := m.order[c]; {
	case m.claimed[c]:
		return iconClaimed
	case ok:
		return strconv.Itoa(n)
	case m.picked[c]:
		return iconPicked
	default:
		return iconSkipped
	}
}

// render draws the plate as a table with row letters and column numbers.
func (m plateMap) render() string {
	headers := make([]string, m.dims.Columns+1)
	for col := 0; col < m.dims.Columns; col++ {
		headers[col+1] = strconv.Itoa(col + 1)
	}

	rows := make([][]string, m.dims.Rows)
	for r := range rows {
		row := make([]string, m.dims.Columns+1)
		row[0] = plate.RowLabel(r)
		for col := 0; col < m.dims.Columns; col++ {
			row[col+1] = m.cell(plate.At(r, col))
		}
		rows[r] = row
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return styleCellHeader
			}
			c := plate.At(row, col-1)
			switch {
			case m.picked[c]:
				return styleCellPicked
			case m.claimed[c]:
				return styleCellClaimed
			case m.order[c] == 0:
				return styleCellSkipped
			default:
				return styleCellOrder
			}
		})
	return t.Render()
}

// formatWellList joins well names, breaking the line every perLine wells.
func formatWellList(wells []string, perLine int) string {
	var b strings.Builder
	for i, w := range wells {
		switch {
		case i == 0:
		case perLine > 0 && i%perLine == 0:
			b.WriteString("\n")
		default:
			b.WriteString(" ")
		}
		b.WriteString(w)
	}
	return b.String()
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

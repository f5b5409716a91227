package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/routetrace/pkg/dataset"
	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/planner"
)

// stdout receives all human-readable output. Tests replace it.
var stdout io.Writer = os.Stdout

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

// modeColors follow the colors used for drawings.
var modeColors = map[network.Mode]lipgloss.Color{
	network.ModeWalking: lipgloss.Color("247"),
	network.ModeBus:     lipgloss.Color("34"),
	network.ModeMetro:   lipgloss.Color("160"),
	network.ModeTrain:   lipgloss.Color("33"),
	network.ModeTaxi:    lipgloss.Color("220"),
	network.ModeUnknown: lipgloss.Color("240"),
}

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

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

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+msg)
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string, cached bool) {
	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path)+StyleDim.Render(" · ")+status)
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(stdout, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Tables
// =============================================================================

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}

// printStations lists stations with their coordinates.
func printStations(nodes []network.Node) {
	t := newTable("Station", "Type", "Latitude", "Longitude").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})
	for _, n := range nodes {
		cat := n.Category
		if cat == "" {
			cat = "—"
		}
		t.Row(n.Key, cat, fmt.Sprintf("%.6f", n.Position.Lat), fmt.Sprintf("%.6f", n.Position.Lon))
	}
	fmt.Fprintln(stdout, t.Render())
	printDetail("%d stations", len(nodes))
}

// printPlan shows a plan's segments, totals and line information.
func printPlan(p *planner.Plan) {
	title := fmt.Sprintf("%s %s %s", p.Start.Key, iconArrow, p.End.Key)
	fmt.Fprintln(stdout, StyleTitle.Render(title))

	if !p.Found() {
		printWarning("No route (explored %d stations)", len(p.Visited))
		return
	}

	t := newTable("#", "From", "To", "Mode", "km", "min").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 3 && row < len(p.Segments) {
				return lipgloss.NewStyle().Foreground(modeColors[p.Segments[row].Mode])
			}
			return lipgloss.NewStyle()
		})
	for i, s := range p.Segments {
		mode := string(s.Mode)
		if s.Inferred {
			mode += "*"
		}
		t.Row(fmt.Sprint(i+1), s.From.Key, s.To.Key, mode, fmt.Sprintf("%.2f", s.DistanceKm), fmt.Sprintf("%.0f", s.Minutes))
	}
	fmt.Fprintln(stdout, t.Render())

	printKeyValue("Distance", fmt.Sprintf("%.2f km", p.DistanceKm))
	printKeyValue("Time", fmt.Sprintf("%.0f min", p.Minutes))
	printKeyValue("Explored", fmt.Sprintf("%d stations", len(p.Visited)))
	printKeyValue("Plan", p.ID.String())

	for _, s := range p.Segments {
		if s.Inferred {
			printWarning("No connection recorded between %s and %s; distance estimated", s.From.Key, s.To.Key)
		}
	}
	printRecommendations(p.Recommendations)
}

func printRecommendations(recs []dataset.Recommendation) {
	if len(recs) == 0 {
		return
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, StyleTitle.Render("Lines"))
	for _, r := range recs {
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Foreground(modeColors[r.Mode]).Render(string(r.Mode)))
		if r.Line != "" {
			b.WriteString(" " + StyleHighlight.Render(r.Line))
		}
		b.WriteString(" " + r.From + " " + iconArrow + " " + r.To)
		if r.Description != "" {
			b.WriteString(StyleDim.Render(" (" + r.Description + ")"))
		}
		fmt.Fprintln(stdout, "  "+b.String())
	}
}

package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/planner"
	"github.com/matzehuels/routetrace/pkg/route"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	pathStyle         = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
)

// =============================================================================
// TraceModel - Interactive search stepper
// =============================================================================

type tickMsg time.Time

// TraceModel steps through the frames of a plan: one frame per finalized
// station, then the path.
type TraceModel struct {
	Plan     *planner.Plan
	Frames   []route.Frame
	Cursor   int
	Playing  bool
	Interval time.Duration
	// Height is the number of stations listed.
	Height int
}

func NewTraceModel(p *planner.Plan) TraceModel {
	return TraceModel{
		Plan:     p,
		Frames:   p.Frames(),
		Interval: 300 * time.Millisecond,
		Height:   12,
	}
}

func (m TraceModel) Init() tea.Cmd {
	return nil
}

func (m TraceModel) tick() tea.Cmd {
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m TraceModel) last() int { return len(m.Frames) - 1 }

func (m TraceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n":
			if m.Cursor < m.last() {
				m.Cursor++
			}
		case "left", "h", "p":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(m.last(), 0)
		case " ":
			m.Playing = !m.Playing
			if m.Playing {
				if m.Cursor >= m.last() {
					m.Cursor = 0
				}
				return m, m.tick()
			}
		}
	case tickMsg:
		if !m.Playing {
			return m, nil
		}
		if m.Cursor >= m.last() {
			m.Playing = false
			return m, nil
		}
		m.Cursor++
		return m, m.tick()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m TraceModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Search %s %s %s", m.Plan.Start.Key, iconArrow, m.Plan.End.Key)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ step  space play/pause  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Frames) == 0 {
		b.WriteString(StyleWarning.Render("Nothing to show: start or end is not in the network."))
		b.WriteString("\n")
		return b.String()
	}

	f := m.Frames[m.Cursor]
	b.WriteString(progressBar(m.Cursor+1, len(m.Frames), 30))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  frame %d/%d", m.Cursor+1, len(m.Frames))))
	b.WriteString("\n\n")

	if f.Kind == route.FramePath {
		m.viewPath(&b, f.Nodes)
	} else {
		m.viewVisited(&b, f.Nodes)
	}
	return b.String()
}

// viewVisited lists the most recently finalized stations, newest first.
func (m TraceModel) viewVisited(b *strings.Builder, nodes []network.Node) {
	b.WriteString(fmt.Sprintf("%s %s\n", StyleHighlight.Render("Visited"), listDimStyle.Render(fmt.Sprintf("%d stations", len(nodes)))))
	for i := len(nodes) - 1; i >= 0 && len(nodes)-i <= m.Height; i-- {
		line := fmt.Sprintf("%4d  %s", i+1, nodes[i].Key)
		if i == len(nodes)-1 {
			b.WriteString(listSelectedStyle.Render("▸" + line))
		} else {
			b.WriteString(listNormalStyle.Render(" " + line))
		}
		b.WriteString("\n")
	}
	if hidden := len(nodes) - m.Height; hidden > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("   … %d earlier", hidden)))
		b.WriteString("\n")
	}
}

func (m TraceModel) viewPath(b *strings.Builder, nodes []network.Node) {
	if len(nodes) == 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("No route after exploring %d stations", len(m.Plan.Visited))))
		b.WriteString("\n")
		return
	}
	b.WriteString(pathStyle.Render("Route"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf(" %.2f km · %.0f min", m.Plan.DistanceKm, m.Plan.Minutes)))
	b.WriteString("\n")
	b.WriteString("  " + nodes[0].Key + "\n")
	for _, s := range m.Plan.Segments {
		mode := lipgloss.NewStyle().Foreground(modeColors[s.Mode]).Render(string(s.Mode))
		b.WriteString(fmt.Sprintf("  %s %s %s\n", listDimStyle.Render(iconArrow), s.To.Key, mode))
	}
}

// =============================================================================
// Helpers
// =============================================================================

func progressBar(n, total, width int) string {
	if total <= 0 {
		return ""
	}
	filled := n * width / total
	return StyleHighlight.Render(strings.Repeat("█", filled)) + listDimStyle.Render(strings.Repeat("░", width-filled))
}

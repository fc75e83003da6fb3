package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/YIFUNLIN/mindflow/pkg/mindmap"
)

var (
	viewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	viewDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	viewKeywordStyle  = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
)

// viewCommand creates the view command: an interactive tree browser for a
// built graph.
func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view [graph.json]",
		Short: "Browse a built mind map in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := mindmap.ReadGraphFile(args[0])
			if err != nil {
				return err
			}
			model := newGraphViewModel(g)
			p := tea.NewProgram(model, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

// graphRow is one line of the tree view.
type graphRow struct {
	node  mindmap.Node
	depth int
}

// graphViewModel is the bubbletea model for browsing a graph as a tree.
type graphViewModel struct {
	rows     []graphRow
	cursor   int
	offset   int
	height   int
	keywords bool
}

// newGraphViewModel flattens the graph into tree rows. Node order in the
// graph already follows the hierarchy: central first, then each branch
// followed by its sub-branches.
func newGraphViewModel(g mindmap.Graph) graphViewModel {
	rows := make([]graphRow, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		depth := 0
		switch n.Kind {
		case mindmap.KindBranch:
			depth = 1
		case mindmap.KindSub:
			depth = 2
		}
		rows = append(rows, graphRow{node: n, depth: depth})
	}
	return graphViewModel{rows: rows, height: 15}
}

func (m graphViewModel) Init() tea.Cmd {
	return nil
}

func (m graphViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "w":
			m.keywords = !m.keywords
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 7
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m graphViewModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Mind Map"))
	b.WriteString("\n")
	b.WriteString(viewDimStyle.Render("↑/↓ navigate  w keywords  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.offset; i < end; i++ {
		row := m.rows[i]

		cursor := "  "
		style := viewNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = viewSelectedStyle
		}

		indent := strings.Repeat("  ", row.depth)
		line := cursor + indent + style.Render(row.node.Label)
		if m.keywords && len(row.node.Keywords) > 0 {
			line += " " + viewKeywordStyle.Render("("+strings.Join(row.node.Keywords, ", ")+")")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	sel := m.rows[m.cursor].node
	b.WriteString("\n")
	b.WriteString(viewDimStyle.Render(fmt.Sprintf("  %s · (%.0f, %.0f) · [%d/%d]",
		sel.ID, sel.Position.X, sel.Position.Y, m.cursor+1, len(m.rows))))

	return b.String()
}

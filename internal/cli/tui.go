package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/gridtree/pkg/geom"
	"github.com/matzehuels/gridtree/pkg/tree"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

var recordHeaders = []string{"#", "Node", "Split", "Children", "Parent", "Rect", "Markers"}

// =============================================================================
// Record table
// =============================================================================

// recordRows renders one table row per flattened record.
func recordRows(t *tree.Tree, records []tree.Record, markers []geom.Vec3) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		split := "leaf"
		if !r.IsLeaf() {
			split = fmt.Sprintf("%s=%g", r.Axis, r.Position)
		}
		parent := "root"
		if r.ParentOffset != 0 {
			parent = fmt.Sprintf("%d (%+d)", i+r.ParentOffset, r.ParentOffset)
		}
		rect := t.Node(r.Node).Rect
		rows[i] = []string{
			strconv.Itoa(i),
			strconv.Itoa(int(r.Node)),
			split,
			strconv.Itoa(r.ChildCount),
			parent,
			rect.String(),
			strconv.Itoa(rect.Count(markers)),
		}
	}
	return rows
}

// recordTable renders rows[offset:offset+height] as a bordered table. The
// row at cursor is highlighted; pass -1 for no highlight.
func recordTable(records []tree.Record, rows [][]string, offset, height, cursor int) string {
	end := min(offset+height, len(rows))
	visible := rows[offset:end]

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(recordHeaders...).
		Rows(visible...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := offset + row
			base := lipgloss.NewStyle().Padding(0, 1)
			if idx >= end {
				return base
			}
			if col == 2 {
				if records[idx].IsLeaf() {
					base = base.Inherit(styleLeaf)
				} else {
					base = base.Inherit(styleSplit)
				}
			}
			if idx == cursor {
				return base.Bold(true).Foreground(colorWhite)
			}
			if col == 0 || col == 4 {
				return base.Foreground(colorDim)
			}
			return base
		}).
		Render()
}

// =============================================================================
// RecordBrowserModel - Interactive record browser
// =============================================================================

// RecordBrowserModel is the bubbletea model for browsing a flattened tree.
type RecordBrowserModel struct {
	Tree    *tree.Tree
	Records []tree.Record
	Markers []geom.Vec3
	Cursor  int
	Height  int
	Offset  int

	rows [][]string
}

// NewRecordBrowserModel creates a browser positioned on the root record.
func NewRecordBrowserModel(t *tree.Tree, records []tree.Record, markers []geom.Vec3) RecordBrowserModel {
	return RecordBrowserModel{
		Tree:    t,
		Records: records,
		Markers: markers,
		Height:  15,
		rows:    recordRows(t, records, markers),
	}
}

func (m RecordBrowserModel) Init() tea.Cmd {
	return nil
}

func (m RecordBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if key == "q" || key == "ctrl+c" || key == "esc" {
			return m, tea.Quit
		}
		if len(m.Records) == 0 {
			return m, nil
		}
		switch key {
		case "up", "k":
			m.moveTo(m.Cursor - 1)
		case "down", "j":
			m.moveTo(m.Cursor + 1)
		case "pgup":
			m.moveTo(m.Cursor - m.Height)
		case "pgdown":
			m.moveTo(m.Cursor + m.Height)
		case "home", "g":
			m.moveTo(0)
		case "end", "G":
			m.moveTo(len(m.Records) - 1)
		case "p":
			m.moveTo(m.Cursor + m.Records[m.Cursor].ParentOffset)
		case "n":
			// Skip the current subtree: the next sibling or ancestor's sibling.
			m.moveTo(m.Cursor + m.Records[m.Cursor].ChildCount + 1)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
		m.moveTo(m.Cursor)
	}
	return m, nil
}

// moveTo places the cursor at i, clamped to the record range, and scrolls
// the window to keep it visible.
func (m *RecordBrowserModel) moveTo(i int) {
	m.Cursor = max(0, min(i, len(m.Records)-1))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m RecordBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Flattened Tree"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  p parent  n next subtree  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Records) == 0 {
		b.WriteString(listDimStyle.Render("  (no records)"))
		return b.String()
	}

	b.WriteString(recordTable(m.Records, m.rows, m.Offset, m.Height, m.Cursor))
	b.WriteString("\n\n")

	r := m.Records[m.Cursor]
	n := m.Tree.Node(r.Node)
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Records))))
	b.WriteString("  ")
	if n.IsLeaf() {
		b.WriteString(styleLeaf.Render(fmt.Sprintf("leaf %s", n.Rect)))
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %gx%g, %d markers",
			n.Rect.Width(), n.Rect.Depth(), n.Rect.Count(m.Markers))))
	} else {
		b.WriteString(styleSplit.Render(fmt.Sprintf("split %s at %g", n.Split.Axis, n.Split.Position)))
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d descendants", r.ChildCount)))
	}

	return b.String()
}

package explore

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cverna/ddr/pkg/report"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type model struct {
	table   table.Model
	docs    int
	columns int
}

func initialModel(t *report.SimilarityTable) model {
	columns := []table.Column{{Title: "document", Width: 24}}
	for _, category := range t.Categories {
		w := len(category)
		if w < 10 {
			w = 10
		}
		columns = append(columns, table.Column{Title: category, Width: w})
	}

	rows := make([]table.Row, 0, len(t.DocIDs))
	for i, id := range t.DocIDs {
		row := table.Row{id}
		for _, v := range t.Rows[i] {
			row = append(row, shorten(v))
		}
		rows = append(rows, row)
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	tbl.SetStyles(styles)

	return model{table: tbl, docs: len(t.DocIDs), columns: len(t.Categories)}
}

// shorten trims a stored float to a display width; NaN stays as-is.
func shorten(v string) string {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 5)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	title := headerStyle.Render(
		"similarities — " + strconv.Itoa(m.docs) + " documents × " + strconv.Itoa(m.columns) + " categories")
	help := helpStyle.Render("↑/↓ scroll · q quit")
	return title + "\n" + baseStyle.Render(m.table.View()) + "\n" + help + "\n"
}

package dashboard

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/salaryscope/internal/survey"
)

func dataColumns() []table.Column {
	return []table.Column{
		{Title: "Company", Width: 22},
		{Title: "Hours", Width: 10},
		{Title: "Sex", Width: 13},
		{Title: "Experience", Width: 10},
		{Title: "Salary", Width: 10},
		{Title: "Location", Width: 16},
	}
}

func dataRows(ds *survey.Dataset) []table.Row {
	if ds == nil {
		return nil
	}
	rows := make([]table.Row, 0, ds.Len())
	for _, r := range ds.Records() {
		rows = append(rows, table.Row{
			r.Company,
			r.Hours,
			r.Sex,
			r.Experience,
			strconv.FormatFloat(r.Salary, 'f', 2, 64),
			r.Location,
		})
	}
	return rows
}

func buildDataTable(ds *survey.Dataset, width, height int) table.Model {
	t := table.New(
		table.WithColumns(dataColumns()),
		table.WithRows(dataRows(ds)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(dataTableStyles())
	return t
}

func (m *Model) setTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.tableLayout.width == width && m.tableLayout.height == viewportHeight {
		return
	}
	m.tableLayout.width = width
	m.tableLayout.height = viewportHeight
	m.dataTable.SetWidth(width)
	m.dataTable.SetHeight(viewportHeight)
	viewportHeight = m.adjustTableHeight(height)
	if m.tableLayout.height != viewportHeight {
		m.tableLayout.height = viewportHeight
		m.dataTable.SetHeight(viewportHeight)
	}
}

func (m *Model) adjustTableHeight(bodyHeight int) int {
	target := maxInt(1, bodyHeight)
	height := m.dataTable.Height()
	viewHeight := lipgloss.Height(m.dataTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	m.dataTable.SetHeight(height)
	viewHeight = lipgloss.Height(m.dataTable.View())
	if viewHeight == target {
		return height
	}
	height += target - viewHeight
	if height < 1 {
		height = 1
	}
	return height
}

func dataTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

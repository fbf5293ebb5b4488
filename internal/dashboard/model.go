// Package dashboard provides the Bubble Tea survey dashboard.
package dashboard

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/salaryscope/internal/chart"
	"github.com/verte-zerg/salaryscope/internal/model"
	"github.com/verte-zerg/salaryscope/internal/stats"
	"github.com/verte-zerg/salaryscope/internal/survey"
)

const (
	tabData = iota
	tabSex
	tabCompany
	tabLocation
	tabExperience
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Settings are the chart toggles shared by every chart tab.
type Settings struct {
	Normalize  bool
	BinSize    int
	SplitBySex bool
}

type tab struct {
	title      string
	kind       model.ChartKind
	field      model.Field
	filterable bool
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	ds       *survey.Dataset
	settings Settings

	selections map[model.Field]model.Selection
	options    map[model.Field][]string

	tabs        []tab
	activeTab   int
	viewports   []viewport.Model
	dataTable   table.Model
	tableLayout tableLayout

	width  int
	height int

	picker *picker
}

type tableLayout struct {
	width  int
	height int
}

// NewModel constructs a dashboard over a loaded dataset. Company and
// location selections start empty, so their charts start empty.
func NewModel(ds *survey.Dataset, settings Settings) *Model {
	settings.BinSize = model.ClampBinSize(settings.BinSize)
	m := &Model{
		ds:       ds,
		settings: settings,
		selections: map[model.Field]model.Selection{
			model.FieldCompany:  model.NewSelection(),
			model.FieldLocation: model.NewSelection(),
		},
		options: map[model.Field][]string{
			model.FieldCompany:  chart.Options(ds, model.FieldCompany),
			model.FieldLocation: chart.Options(ds, model.FieldLocation),
		},
		tabs: []tab{
			{title: "Data"},
			{title: "Sex", kind: model.KindHistogram, field: model.FieldSex},
			{title: "Company", kind: model.KindHistogram, field: model.FieldCompany, filterable: true},
			{title: "Location", kind: model.KindHistogram, field: model.FieldLocation, filterable: true},
			{title: "Experience", kind: model.KindBox, field: model.FieldExperience},
		},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.dataTable = buildDataTable(ds, 0, 1)
	m.renderTabContents()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.picker != nil {
			return m.updatePicker(msg)
		}
		if m.activeTab == tabData {
			m.dataTable.Focus()
		} else {
			m.dataTable.Blur()
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "n":
			m.settings.Normalize = !m.settings.Normalize
			m.renderTabContents()
			return m, nil
		case "=", "+":
			m.settings.BinSize = nextBinSize(m.settings.BinSize)
			m.renderTabContents()
			return m, nil
		case "-":
			m.settings.BinSize = prevBinSize(m.settings.BinSize)
			m.renderTabContents()
			return m, nil
		case "s":
			m.settings.SplitBySex = !m.settings.SplitBySex
			m.renderTabContents()
			return m, nil
		case "/":
			return m.startPicker()
		case "g", "home":
			if m.activeTab == tabData {
				m.dataTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabData {
				m.dataTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabData {
				var cmd tea.Cmd
				m.dataTable, cmd = m.dataTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.picker != nil {
		box := m.picker.view(m.width)
		return fitLines(lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderHelp(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Request builds the chart request for tab i from the current UI state.
func (m *Model) Request(i int) model.ChartRequest {
	t := m.tabs[i]
	req := model.ChartRequest{
		Kind:      t.kind,
		GroupBy:   t.field,
		Normalize: m.settings.Normalize,
		BinSize:   m.settings.BinSize,
	}
	if t.filterable {
		req.Filter = m.selections[t.field]
	}
	if t.kind == model.KindBox {
		req.ColorSplit = m.settings.SplitBySex
	}
	return req
}

func (m *Model) startPicker() (tea.Model, tea.Cmd) {
	t := m.tabs[m.activeTab]
	if !t.filterable {
		return m, nil
	}
	m.picker = newPicker(t.field, m.options[t.field], m.selections[t.field])
	m.picker.search.Width = maxInt(10, modalInnerWidth(m.width)-lipgloss.Width(m.picker.search.Prompt))
	return m, m.picker.focus()
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	closed, apply, cmd := m.picker.update(msg)
	if !closed {
		return m, cmd
	}
	if apply {
		m.selections[m.picker.field] = m.picker.selection()
		m.renderTabContents()
	}
	m.picker = nil
	return m, nil
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setTableSize(m.width, vpHeight)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabData {
		m.dataTable.Focus()
	} else {
		m.dataTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(t.title))
		} else {
			parts = append(parts, inactiveNavStyle.Render(t.title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := padLines(headerStyle.Render(truncateLine(m.summaryLine(), m.width)), m.width)
	return tabs + "\n" + summary
}

func (m *Model) summaryLine() string {
	return m.summaryLineFor(m.activeTab)
}

// summaryLineFor explains the cleaning counts and the chart settings of tab i.
func (m *Model) summaryLineFor(i int) string {
	rows := fmt.Sprintf("Rows: %d kept of %d (%d without numeric salary)", m.ds.Len(), m.ds.RowsRead(), m.ds.Dropped())
	t := m.tabs[i]
	switch {
	case t.kind == model.KindHistogram:
		line := fmt.Sprintf("%s  normalize=%s  bin=%d", rows, onOff(m.settings.Normalize), m.settings.BinSize)
		if t.filterable {
			line += fmt.Sprintf("  selected=%d/%d", len(m.selections[t.field]), len(m.options[t.field]))
		}
		return line
	case t.kind == model.KindBox:
		return fmt.Sprintf("%s  split by sex=%s", rows, onOff(m.settings.SplitBySex))
	default:
		return rows
	}
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q"
	t := m.tabs[m.activeTab]
	switch {
	case t.filterable:
		help = "Nav: left/right  Normalize: n  Bin: -/=  Select: /  Quit: q"
	case t.kind == model.KindHistogram:
		help = "Nav: left/right  Normalize: n  Bin: -/=  Quit: q"
	case t.kind == model.KindBox:
		help = "Nav: left/right  Split by sex: s  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabData {
		if m.ds.Len() == 0 {
			return fitLines("No responses with a numeric salary.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.dataTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	for i, t := range m.tabs {
		if i == tabData {
			continue
		}
		spec := chart.Render(m.ds, m.Request(i))
		content := renderSpec(spec, width)
		if spec.Empty() && t.filterable {
			content += "\n" + headerStyle.Render(fmt.Sprintf("Press / to select %s values.", t.field))
		}
		m.viewports[i].SetContent(content)
	}
}

func renderSpec(spec model.ChartSpec, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderChartWithSize(&buf, spec, width, true); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func nextBinSize(n int) int {
	return model.ClampBinSize(n + model.BinSizeStep)
}

func prevBinSize(n int) int {
	return model.ClampBinSize(n - model.BinSizeStep)
}

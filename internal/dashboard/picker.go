package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/salaryscope/internal/config"
	"github.com/verte-zerg/salaryscope/internal/model"
)

const pickerRows = 10

// picker is a searchable multi-select over a field's distinct values.
type picker struct {
	field    model.Field
	options  []string
	selected map[string]bool
	search   textinput.Model
	visible  []string
	cursor   int
}

func newPicker(field model.Field, options []string, current model.Selection) *picker {
	p := &picker{
		field:    field,
		options:  options,
		selected: make(map[string]bool, len(options)),
		search:   newSearchInput(),
	}
	for _, o := range options {
		if current != nil && current.Has(o) {
			p.selected[o] = true
		}
	}
	p.refilter()
	return p
}

func newSearchInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "Search: "
	input.Placeholder = "type to filter"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (p *picker) focus() tea.Cmd {
	return p.search.Focus()
}

// refilter keeps options containing the folded search text.
func (p *picker) refilter() {
	query := config.Fold(p.search.Value())
	p.visible = p.visible[:0]
	for _, o := range p.options {
		if query == "" || strings.Contains(o, query) {
			p.visible = append(p.visible, o)
		}
	}
	if p.cursor >= len(p.visible) {
		p.cursor = maxInt(0, len(p.visible)-1)
	}
}

func (p *picker) move(delta int) {
	if len(p.visible) == 0 {
		p.cursor = 0
		return
	}
	p.cursor = (p.cursor + delta + len(p.visible)) % len(p.visible)
}

func (p *picker) toggle() {
	if p.cursor < 0 || p.cursor >= len(p.visible) {
		return
	}
	v := p.visible[p.cursor]
	p.selected[v] = !p.selected[v]
}

// selectVisible selects every visible option, or clears them when all
// already are selected.
func (p *picker) selectVisible() {
	all := len(p.visible) > 0
	for _, v := range p.visible {
		if !p.selected[v] {
			all = false
			break
		}
	}
	for _, v := range p.visible {
		p.selected[v] = !all
	}
}

// selection returns a non-nil selection, empty when nothing is picked.
func (p *picker) selection() model.Selection {
	sel := model.NewSelection()
	for _, o := range p.options {
		if p.selected[o] {
			sel[o] = struct{}{}
		}
	}
	return sel
}

// update handles a key and reports whether the picker closed and whether
// its selection should be applied.
func (p *picker) update(msg tea.KeyMsg) (closed, apply bool, cmd tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		return true, false, nil
	case msg.Type == tea.KeyEnter:
		return true, true, nil
	case msg.Type == tea.KeySpace || msg.String() == " ":
		p.toggle()
		return false, false, nil
	case msg.Type == tea.KeyCtrlA:
		p.selectVisible()
		return false, false, nil
	case msg.Type == tea.KeyUp:
		p.move(-1)
		return false, false, nil
	case msg.Type == tea.KeyDown:
		p.move(1)
		return false, false, nil
	}
	p.search, cmd = p.search.Update(msg)
	p.refilter()
	return false, false, cmd
}

func (p *picker) view(width int) string {
	inner := modalInnerWidth(width)
	p.search.Width = maxInt(10, inner-lipgloss.Width(p.search.Prompt))
	count := 0
	for _, o := range p.options {
		if p.selected[o] {
			count++
		}
	}
	lines := []string{
		cardValueStyle.Render(fmt.Sprintf("Select %s", p.field)),
		p.search.View(),
		headerStyle.Render(fmt.Sprintf("%d of %d selected", count, len(p.options))),
	}
	if len(p.visible) == 0 {
		lines = append(lines, headerStyle.Render("No matches."))
	}
	start := 0
	if p.cursor >= pickerRows {
		start = p.cursor - pickerRows + 1
	}
	end := minInt(len(p.visible), start+pickerRows)
	for i := start; i < end; i++ {
		v := p.visible[i]
		mark := "[ ]"
		if p.selected[v] {
			mark = "[x]"
		}
		prefix := "  "
		if i == p.cursor {
			prefix = "> "
		}
		line := truncateLine(prefix+mark+" "+v, inner)
		if i == p.cursor {
			line = cardValueStyle.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, headerStyle.Render("space: toggle  ctrl+a: all visible  enter: apply  esc: cancel"))
	return modalStyle.Width(modalWidth(width)).Render(strings.Join(lines, "\n"))
}

package reportui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// form is a column of text inputs with a single focused field.
type form struct {
	title  string
	fields []textinput.Model
	focus  int
	err    string
}

func newForm(title string, prompts ...string) form {
	f := form{title: title, fields: make([]textinput.Model, len(prompts))}
	for i, p := range prompts {
		in := textinput.New()
		in.Prompt = p
		in.Cursor.SetMode(cursor.CursorBlink)
		f.fields[i] = in
	}
	return f
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].Value())
}

func (f *form) set(i int, v string) {
	f.fields[i].SetValue(v)
}

// focusField focuses field i, wrapping around at either end.
func (f *form) focusField(i int) tea.Cmd {
	n := len(f.fields)
	if n == 0 {
		return nil
	}
	f.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range f.fields {
		if j == f.focus {
			cmd = f.fields[j].Focus()
			continue
		}
		f.fields[j].Blur()
	}
	return cmd
}

// update moves focus on tab/shift+tab/up/down and otherwise edits the
// focused field.
func (f *form) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		return f.focusField(f.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return f.focusField(f.focus - 1)
	}
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return cmd
}

// setWidth sizes every input so prompt and text fit in width cells.
func (f *form) setWidth(width int) {
	for i := range f.fields {
		f.fields[i].Width = max(width-lipgloss.Width(f.fields[i].Prompt)-2, 10)
	}
}

func (f form) view(extra ...string) string {
	lines := make([]string, 0, len(f.fields)+len(extra)+2)
	if f.title != "" {
		lines = append(lines, f.title)
	}
	for _, in := range f.fields {
		lines = append(lines, in.View())
	}
	lines = append(lines, extra...)
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

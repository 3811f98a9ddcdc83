package reportui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev     key.Binding
	Next     key.Binding
	More     key.Binding
	Less     key.Binding
	Settings key.Binding
	Genres   key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev tab")),
		Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next tab")),
		More:     key.NewBinding(key.WithKeys("=", "+"), key.WithHelp("=", "more genres")),
		Less:     key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer genres")),
		Settings: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "settings")),
		Genres:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick genres")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Genres, k.Less, k.More, k.Settings, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Top, k.Bottom},
		{k.Less, k.More, k.Genres},
		{k.Settings, k.Quit},
	}
}

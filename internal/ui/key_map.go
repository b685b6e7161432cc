package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	toggle     key.Binding
	enter      key.Binding
	back       key.Binding
	download   key.Binding
	open       key.Binding
	copyURL    key.Binding
	refresh    key.Binding
	restart    key.Binding
	addTags    key.Binding
	removeTags key.Binding
	del        key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		download:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		copyURL:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy url")),
		refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		restart:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "back to results")),
		addTags:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add tags")),
		removeTags: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove tags")),
		del:        key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle, k.enter},
		{k.back, k.download, k.open, k.copyURL},
		{k.addTags, k.removeTags, k.del},
		{k.refresh, k.quit},
	}
}

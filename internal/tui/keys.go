package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Jump     key.Binding
	Close    key.Binding
	CloseAll key.Binding
	Export   key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Narrower key.Binding
	Wider    key.Binding
	Help     key.Binding
	Quit     key.Binding

	Submit key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Next:     key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab/l", "next tab")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("shift+tab/h", "prev tab")),
		Jump:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "go to tab")),
		Close:    key.NewBinding(key.WithKeys("x", "ctrl+w"), key.WithHelp("x", "close tab")),
		CloseAll: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "close all")),
		Export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export html")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Narrower: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "narrower")),
		Wider:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "wider")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Next, k.Close, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Close, k.CloseAll, k.Export},
		{k.Next, k.Prev, k.Jump},
		{k.Top, k.Bottom, k.Narrower, k.Wider},
		{k.Help, k.Quit},
	}
}

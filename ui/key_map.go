package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	moveUp       key.Binding
	moveDown     key.Binding
	nextPage     key.Binding
	previousPage key.Binding

	toggleNode  key.Binding
	expandAll   key.Binding
	collapseAll key.Binding
	openFile    key.Binding

	toggleHelp key.Binding

	quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggleNode, k.toggleHelp, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveUp, k.moveDown, k.nextPage, k.previousPage},
		{k.toggleNode, k.expandAll, k.collapseAll, k.openFile},
		{k.toggleHelp, k.quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		moveUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up in tree"),
		),
		moveDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down in tree"),
		),
		nextPage: key.NewBinding(
			key.WithKeys("right", "pgdown"),
			key.WithHelp("→", "next page"),
		),
		previousPage: key.NewBinding(
			key.WithKeys("left", "pgup"),
			key.WithHelp("←", "previous page"),
		),
		toggleNode: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "expand/collapse"),
		),
		expandAll: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "expand all"),
		),
		collapseAll: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "collapse all"),
		),
		openFile: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open file"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

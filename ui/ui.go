package ui

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mertwole/bencode-cli/bencode"
	"github.com/mertwole/bencode-cli/bencode/deserialize"
	"github.com/mertwole/bencode-cli/bencode/value"
)

var allowedFileTypes = []string{".torrent", ".bencode", ".benc"}

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4D756F", Dark: "#A5FAEC"})
	integerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#2E6B38", Dark: "#66F27D"})
	byteStringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#8A5A00", Dark: "#F2C166"})
	containerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#AAAAAA"})
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6E6E"})
)

// StartUI shows root as a navigable tree. With a nil root the file picker
// opens first.
func StartUI(root value.Value, name string, opts ...deserialize.Option) error {
	screen := newTreeScreen(root, name, opts...)

	program := tea.NewProgram(screen, tea.WithAltScreen())
	_, err := program.Run()
	if err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}

	return nil
}

type treeScreen struct {
	Width  int
	Height int

	nodeList   *list.Model
	filePicker *filepicker.Model

	keyMap keyMap
	help   help.Model

	root          value.Value
	name          string
	expanded      map[string]bool
	decodeOptions []deserialize.Option

	openRequest bool
	status      string
}

func newTreeScreen(root value.Value, name string, opts ...deserialize.Option) treeScreen {
	keyMap := defaultKeyMap()

	newList := list.New(make([]list.Item, 0), nodeItemDelegate{}, 20, 20)
	newList.SetShowTitle(false)
	newList.SetFilteringEnabled(false)
	newList.SetShowStatusBar(false)
	newList.SetShowHelp(false)

	newList.KeyMap = list.KeyMap{
		CursorUp:   keyMap.moveUp,
		CursorDown: keyMap.moveDown,
		NextPage:   keyMap.nextPage,
		PrevPage:   keyMap.previousPage,
	}

	filePicker := filepicker.New()
	filePicker.AllowedTypes = allowedFileTypes
	filePicker.CurrentDirectory, _ = os.Getwd()
	filePicker.AutoHeight = true

	screen := treeScreen{
		nodeList:      &newList,
		filePicker:    &filePicker,
		keyMap:        keyMap,
		help:          help.New(),
		decodeOptions: opts,
		openRequest:   root == nil,
	}
	screen.load(root, name)

	return screen
}

func (screen *treeScreen) load(root value.Value, name string) {
	screen.root = root
	screen.name = name
	screen.expanded = map[string]bool{"": true}
	screen.rebuildItems()
	screen.nodeList.Select(0)
}

func (screen *treeScreen) rebuildItems() {
	if screen.root == nil {
		screen.nodeList.SetItems(nil)
		return
	}

	nodes := flattenTree(screen.root, screen.name, screen.expanded)
	items := make([]list.Item, 0, len(nodes))
	for _, node := range nodes {
		items = append(items, nodeItem{node: node, expanded: screen.expanded[node.path]})
	}

	selected := screen.nodeList.Index()
	screen.nodeList.SetItems(items)
	screen.nodeList.Select(min(selected, len(items)-1))
}

func (screen treeScreen) Init() tea.Cmd {
	if screen.openRequest {
		return screen.filePicker.Init()
	}

	return nil
}

func (screen treeScreen) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	if screen.openRequest {
		return screen.updateFilePicker(message)
	}

	command := tea.Batch()

	var nodeListCmd tea.Cmd
	*screen.nodeList, nodeListCmd = screen.nodeList.Update(message)
	command = tea.Batch(command, nodeListCmd)

	switch message := message.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(message, screen.keyMap.quit):
			command = tea.Batch(command, tea.Quit)
		case key.Matches(message, screen.keyMap.toggleHelp):
			screen.help.ShowAll = !screen.help.ShowAll
		case key.Matches(message, screen.keyMap.toggleNode):
			screen.toggleSelected()
		case key.Matches(message, screen.keyMap.expandAll):
			if screen.root != nil {
				expandAllPaths(screen.root, screen.expanded)
				screen.rebuildItems()
			}
		case key.Matches(message, screen.keyMap.collapseAll):
			screen.expanded = map[string]bool{"": true}
			screen.rebuildItems()
		case key.Matches(message, screen.keyMap.openFile):
			screen.openRequest = true
			screen.status = ""
			command = tea.Batch(command, screen.filePicker.Init())
		}
	case tea.WindowSizeMsg:
		screen.Width = message.Width
		screen.Height = message.Height
	}

	return screen, command
}

func (screen treeScreen) updateFilePicker(message tea.Msg) (tea.Model, tea.Cmd) {
	if keyMessage, ok := message.(tea.KeyMsg); ok && key.Matches(keyMessage, screen.keyMap.quit) {
		if screen.root == nil {
			return screen, tea.Quit
		}

		screen.openRequest = false
		return screen, nil
	}

	if sizeMessage, ok := message.(tea.WindowSizeMsg); ok {
		screen.Width = sizeMessage.Width
		screen.Height = sizeMessage.Height
	}

	var filePickerCmd tea.Cmd
	*screen.filePicker, filePickerCmd = screen.filePicker.Update(message)

	didSelect, filePath := screen.filePicker.DidSelectFile(message)
	if didSelect {
		screen.openRequest = false

		decoded, err := bencode.DecodeFile(filePath, screen.decodeOptions...)
		if err != nil {
			log.Printf("failed to open %s: %v", filePath, err)
			screen.status = err.Error()
			if screen.root == nil {
				screen.openRequest = true
			}
		} else {
			screen.status = ""
			screen.load(decoded, filepath.Base(filePath))
		}
	}

	return screen, filePickerCmd
}

func (screen *treeScreen) toggleSelected() {
	item, ok := screen.nodeList.SelectedItem().(nodeItem)
	if !ok || !item.node.isContainer() {
		return
	}

	screen.expanded[item.node.path] = !screen.expanded[item.node.path]
	screen.rebuildItems()
}

func (screen treeScreen) View() string {
	status := ""
	if screen.status != "" {
		status = statusStyle.Render(screen.status) + "\n"
	}

	if screen.openRequest {
		return status + screen.filePicker.View()
	}

	screen.help.Width = screen.Width

	help := screen.help.View(screen.keyMap)
	helpHeight := lipgloss.Height(help)
	statusHeight := strings.Count(status, "\n")

	screen.nodeList.SetSize(screen.Width, screen.Height-helpHeight-statusHeight)

	return status + screen.nodeList.View() + "\n" + help
}

type nodeItem struct {
	node     treeNode
	expanded bool
}

func (i nodeItem) FilterValue() string { return i.node.label }

type nodeItemDelegate struct{}

func (d nodeItemDelegate) Height() int {
	return 1
}

func (d nodeItemDelegate) Spacing() int {
	return 0
}

func (d nodeItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d nodeItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(nodeItem)
	if !ok {
		return
	}

	fmt.Fprint(w, renderNode(item, index == m.Index()))
}

func renderNode(item nodeItem, selected bool) string {
	marker := "  "
	if item.node.isContainer() {
		if item.expanded {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}

	var summaryStyle lipgloss.Style
	switch item.node.value.(type) {
	case value.Integer:
		summaryStyle = integerStyle
	case value.ByteString:
		summaryStyle = byteStringStyle
	default:
		summaryStyle = containerStyle
	}

	cursor := "  "
	if selected {
		cursor = "┆ "
	}

	return cursor +
		strings.Repeat("  ", item.node.depth) +
		marker +
		labelStyle.Render(item.node.label) + ": " +
		summaryStyle.Render(describe(item.node.value))
}

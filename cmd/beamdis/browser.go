package main

import (
	"os"
	"sort"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/beamdis/beamdis/analysis"
)

var (
	paneStyle = lipgloss.NewStyle().
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	annotationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	externalCallerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// funcItem is one `<module>:<name>/<arity>` entry in the browser's function
// list, carrying enough to re-render its blocks on selection.
type funcItem struct {
	signature string
	module    *analysis.Module
	fn        *analysis.FunctionInfo
}

func (i funcItem) Title() string       { return i.signature }
func (i funcItem) Description() string { return "" }
func (i funcItem) FilterValue() string { return i.signature }

type browserModel struct {
	list     list.Model
	viewport viewport.Model
	ready    bool
}

func newBrowserModel(modules []*analysis.Module) *browserModel {
	var items []list.Item
	for _, m := range modules {
		for _, fn := range m.Functions {
			items = append(items, funcItem{signature: m.Signature(fn), module: m, fn: fn})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].(funcItem).signature < items[j].(funcItem).signature
	})

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Functions"
	return &browserModel{list: l}
}

func (m *browserModel) Init() tea.Cmd {
	w, h := initialTermSize()
	m.resize(w, h)
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			m.showSelected()
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	var cmd2 tea.Cmd
	m.viewport, cmd2 = m.viewport.Update(msg)
	return m, tea.Batch(cmd, cmd2)
}

func (m *browserModel) resize(width, height int) {
	listWidth := width / 3
	m.list.SetSize(listWidth, height-1)
	if !m.ready {
		m.viewport = viewport.New(width-listWidth-2, height-1)
		m.ready = true
		m.showSelected()
	} else {
		m.viewport.Width = width - listWidth - 2
		m.viewport.Height = height - 1
	}
}

func (m *browserModel) showSelected() {
	item, ok := m.list.SelectedItem().(funcItem)
	if !ok {
		return
	}
	text := analysis.RenderFunction(item.module, item.fn)
	m.viewport.SetContent(styleRenderedText(text))
	m.viewport.GotoTop()
}

func (m *browserModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	left := paneStyle.Render(m.list.View())
	right := paneStyle.Render(m.viewport.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return body + "\n" + helpStyle.Render("↑/↓ select • enter view • q quit")
}

// styleRenderedText applies lipgloss styling per line by the leading marker
// the plain-text renderer uses: "labelN:" lines, "; =>" comment lines, and
// everything else left as instruction text.
func styleRenderedText(text string) string {
	var out []byte
	line := make([]byte, 0, 128)
	flush := func() {
		rendered := styleLine(string(line))
		out = append(out, rendered...)
		out = append(out, '\n')
		line = line[:0]
	}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			flush()
			continue
		}
		line = append(line, text[i])
	}
	if len(line) > 0 {
		flush()
	}
	return string(out)
}

func styleLine(line string) string {
	switch {
	case len(line) > 4 && line[:5] == "label" && line[len(line)-1] == ':':
		return labelStyle.Render(line)
	case len(line) >= 2 && line[:2] == "; " && hasSubstr(line, "Externally called"):
		return externalCallerStyle.Render(line)
	case len(line) >= 1 && line[0] == ';':
		return annotationStyle.Render(line)
	default:
		return line
	}
}

func hasSubstr(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// initialTermSize reports the current terminal's dimensions, falling back
// to a reasonable default outside a real terminal (piped output, tests).
func initialTermSize() (width, height int) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 80, 24
	}
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return w, h
}

package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	cyan  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	red   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type MenuItem struct {
	Name string
	Info string
}

// Menu lists presets and hands over to a live Model once one is chosen.
type Menu struct {
	items  []MenuItem
	cursor int
	build  func(name string) (Model, error)
	live   *Model
	err    error
	width  int
	height int
}

// NewMenu returns a picker over items. build creates the live view for
// the chosen item.
func NewMenu(items []MenuItem, build func(name string) (Model, error)) Menu {
	return Menu{items: items, build: build, width: width, height: height}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter", " ":
			if len(m.items) == 0 {
				return m, nil
			}
			live, err := m.build(m.items[m.cursor].Name)
			if err != nil {
				m.err = err
				return m, nil
			}
			live.resize(m.width, m.height)
			m.live = &live
			return m, live.Init()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	if m.live != nil {
		return m.live.View()
	}

	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render("GALAXYSIM") + "\n")
	b.WriteString(dim.Render("choose a scenario") + "\n\n")
	for i, item := range m.items {
		cursor, name := "  ", dim.Render(item.Name)
		if i == m.cursor {
			cursor, name = cyan.Render("> "), white.Bold(true).Render(item.Name)
		}
		b.WriteString(fmt.Sprintf("%s%-24s %s\n", cursor, name, dim.Render(item.Info)))
	}
	if m.err != nil {
		b.WriteString("\n" + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dim.Render("↑↓ select  enter start  q quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

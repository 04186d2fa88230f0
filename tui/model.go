package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"raksproperties/services"
)

type tab int

const (
	tabChat tab = iota
	tabProperties
)

// Model is the root bubbletea model: a chat tab and a property listing tab
type Model struct {
	activeTab     tab
	width, height int
	notification  string
	notifyUntil   time.Time

	chat       Chat
	properties Properties
}

func New(responder Responder, catalogs services.CatalogProvider) Model {
	return Model{
		chat:       NewChat(responder),
		properties: NewProperties(catalogs),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Chat() Chat { return m.chat }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % 2
			return m, nil
		}
		// Key messages go to the active tab only
		switch m.activeTab {
		case tabChat:
			m.chat, cmd = m.chat.Update(msg)
		case tabProperties:
			m.properties, cmd = m.properties.Update(msg)
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chat = m.chat.SetSize(msg.Width, msg.Height-4)
		m.properties = m.properties.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case turnMsg:
		m.chat, cmd = m.chat.Update(msg)
		if msg.turn.Fallback {
			m.notification = "Answered from internal data"
			m.notifyUntil = time.Now().Add(3 * time.Second)
		}
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), m.renderContent(), m.renderStatusBar())
}

func (m Model) renderTabs() string {
	tabNames := []string{"X-Chart", "Property Sales"}
	var rendered []string
	for i, name := range tabNames {
		if tab(i) == m.activeTab {
			rendered = append(rendered, TabActive.Render(name))
		} else {
			rendered = append(rendered, TabInactive.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n"
}

func (m Model) renderContent() string {
	switch m.activeTab {
	case tabChat:
		return m.chat.View()
	case tabProperties:
		return m.properties.View()
	}
	return ""
}

func (m Model) renderStatusBar() string {
	left := "tab Switch  enter Send  esc Quit"
	if m.activeTab == tabProperties {
		left = "tab Switch  l Location  t Type  b Beds  p Price  x Reset  esc Quit"
	}
	right := ""
	if time.Now().Before(m.notifyUntil) {
		right = Notification.Render(m.notification)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}

	return StatusBar.Render(left) + lipgloss.NewStyle().Width(gap).Render("") + right
}

// Run starts the full-screen client
func Run(responder Responder, catalogs services.CatalogProvider) error {
	p := tea.NewProgram(New(responder, catalogs), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

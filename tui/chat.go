package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"raksproperties/models"
	"raksproperties/services"
)

// Responder answers one chat message without touching any conversation
type Responder interface {
	Respond(ctx context.Context, conv *models.Conversation, text string) (models.ConversationTurn, bool)
}

type turnMsg struct {
	turn models.ConversationTurn
}

// Chat is the X-Chart view. It owns the conversation log; turns are
// appended only from Update.
type Chat struct {
	responder     Responder
	conv          *models.Conversation
	input         []rune
	pending       bool
	width, height int
}

func NewChat(responder Responder) Chat {
	return Chat{responder: responder, conv: &models.Conversation{}}
}

func (c Chat) Conversation() *models.Conversation { return c.conv }

func (c Chat) Pending() bool { return c.pending }

func (c Chat) Input() string { return string(c.input) }

func (c Chat) SetSize(w, h int) Chat {
	c.width = w
	c.height = h
	return c
}

func (c Chat) send(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		turn, _ := c.responder.Respond(ctx, nil, text)
		return turnMsg{turn}
	}
}

func (c Chat) Update(msg tea.Msg) (Chat, tea.Cmd) {
	switch msg := msg.(type) {
	case turnMsg:
		c.conv.Append(msg.turn)
		c.pending = false

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			text := string(c.input)
			if c.pending || services.IsBlank(text) {
				return c, nil
			}
			c.input = nil
			c.pending = true
			return c, c.send(text)
		case tea.KeyBackspace:
			if len(c.input) > 0 {
				c.input = c.input[:len(c.input)-1]
			}
		case tea.KeySpace:
			c.input = append(c.input, ' ')
		case tea.KeyRunes:
			c.input = append(c.input, msg.Runes...)
		}
	}
	return c, nil
}

func (c Chat) View() string {
	var b strings.Builder

	turns := c.conv.Turns()
	if len(turns) == 0 {
		b.WriteString(Muted.Render("Ask about properties, locations, prices or services."))
		b.WriteString("\n")
		for _, s := range services.Suggestions("") {
			b.WriteString(Muted.Render("  • " + s))
			b.WriteString("\n")
		}
	}

	width := c.width - 4
	if width < 20 {
		width = 60
	}

	// Show the most recent turns that fit; older ones scroll off the top.
	start := 0
	if limit := c.visibleTurns(); len(turns) > limit {
		start = len(turns) - limit
	}
	for _, t := range turns[start:] {
		b.WriteString(UserBubble.Render("You: " + t.UserText))
		b.WriteString("\n")
		style := ReplyBorder
		if t.Fallback {
			style = FallbackBorder
		}
		b.WriteString(style.Width(width).Render(t.Response))
		b.WriteString("\n")
		if len(t.Suggestions) > 0 {
			b.WriteString(Muted.Render("Try: " + strings.Join(t.Suggestions, " | ")))
			b.WriteString("\n")
		}
	}

	if c.pending {
		b.WriteString(Muted.Render("Searching Raks Properties..."))
		b.WriteString("\n")
	}

	b.WriteString(InputBox.Width(width).Render("> " + string(c.input) + "_"))
	return lipgloss.NewStyle().MaxHeight(max(c.height, 0)).Render(b.String())
}

func (c Chat) visibleTurns() int {
	if c.height <= 0 {
		return 3
	}
	n := c.height / 12
	if n < 1 {
		return 1
	}
	return n
}

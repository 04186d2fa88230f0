package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"raksproperties/catalog"
	"raksproperties/services"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	store := catalog.NewStore(c)
	composer := services.NewComposer("")
	assistant := services.NewAssistantService(services.DefaultAssistantContext, nil, 0)
	external := services.NewExternalService(store, nil, 0)
	chat := services.NewChatService(store, external, assistant, composer)
	return New(chat, store)
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		var msg tea.KeyMsg
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestChat_EnterAppendsTurn(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "house in maun")
	if m.Chat().Input() != "house in maun" {
		t.Fatalf("unexpected input %q", m.Chat().Input())
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("expected a command to fetch the response")
	}
	if !m.Chat().Pending() || m.Chat().Input() != "" {
		t.Fatalf("expected pending state with cleared input")
	}
	if m.Chat().Conversation().Len() != 0 {
		t.Fatalf("turn appended before the response arrived")
	}

	next, _ = m.Update(cmd())
	m = next.(Model)
	if m.Chat().Pending() {
		t.Fatalf("expected pending to clear")
	}
	last, ok := m.Chat().Conversation().Last()
	if !ok || last.UserText != "house in maun" {
		t.Fatalf("expected turn for the typed text, got %+v", last)
	}
	if !strings.Contains(m.View(), "You: house in maun") {
		t.Fatalf("view does not show the turn")
	}
}

func TestChat_BlankEnterIgnored(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "   ")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd != nil || m.Chat().Pending() {
		t.Fatalf("blank input should not send")
	}
}

func TestChat_Backspace(t *testing.T) {
	m := newTestModel(t)
	m = typeText(m, "maunx")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(Model)
	if m.Chat().Input() != "maun" {
		t.Fatalf("unexpected input %q", m.Chat().Input())
	}
}

func TestProperties_CycleLocation(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = next.(Model)
	if got := m.properties.Filter().Location; got != "Francistown" {
		t.Fatalf("expected Francistown filter, got %s", got)
	}
	view := m.View()
	if !strings.Contains(view, "Modern Family Home in Francistown") || strings.Contains(view, "Luxury Villa in Gaborone") {
		t.Fatalf("unexpected filtered view:\n%s", view)
	}
	if m.Chat().Input() != "" {
		t.Fatalf("keys on the properties tab leaked into the chat input")
	}
}

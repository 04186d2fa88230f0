package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"raksproperties/catalog"
	"raksproperties/models"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newChat(t *testing.T) *ChatService {
	t.Helper()
	store := catalog.NewStore(loadCatalog(t))
	return NewChatService(
		store,
		NewExternalService(store, nil, 0),
		NewAssistantService(DefaultAssistantContext, nil, 0),
		NewComposer(""),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestChat_BlankInput(t *testing.T) {
	chat := newChat(t)
	var conv models.Conversation
	if _, ok := chat.Respond(context.Background(), &conv, "   "); ok {
		t.Fatalf("expected blank input to be ignored")
	}
	if conv.Len() != 0 {
		t.Fatalf("expected empty conversation, got %d turns", conv.Len())
	}
}

func TestChat_RespondAppendsTurn(t *testing.T) {
	chat := newChat(t)
	var conv models.Conversation

	turn, ok := chat.Respond(context.Background(), &conv, "property price")
	if !ok {
		t.Fatalf("expected a turn")
	}
	if conv.Len() != 1 {
		t.Fatalf("expected 1 turn, got %d", conv.Len())
	}
	if _, err := uuid.Parse(turn.ID); err != nil {
		t.Fatalf("turn id is not a uuid: %v", err)
	}
	if !turn.Timestamp.Equal(fixedNow) {
		t.Fatalf("expected injected timestamp, got %v", turn.Timestamp)
	}
	if turn.Fallback {
		t.Fatalf("did not expect fallback")
	}
	if !strings.Contains(turn.Response, "\n\nBased on current market data") {
		t.Fatalf("expected price branch response, got %q", turn.Response)
	}
	if len(turn.External) != 3 || !strings.Contains(turn.Response, "External Market Opportunities:") {
		t.Fatalf("expected external section with 3 listings, got %d", len(turn.External))
	}
	if turn.Assistant == nil || turn.Assistant.Source != models.ReplySourceAssistant {
		t.Fatalf("expected assistant reply, got %+v", turn.Assistant)
	}
	if len(turn.Suggestions) != 6 {
		t.Fatalf("expected 6 suggestions, got %v", turn.Suggestions)
	}

	last, _ := conv.Last()
	if last.ID != turn.ID {
		t.Fatalf("conversation does not hold the returned turn")
	}

	chat.Respond(context.Background(), &conv, "francistown")
	turns := conv.Turns()
	if len(turns) != 2 || turns[0].UserText != "property price" || turns[1].UserText != "francistown" {
		t.Fatalf("turns out of order: %+v", turns)
	}
}

func TestChat_FallbackOnFailure(t *testing.T) {
	chat := newChat(t)
	var conv models.Conversation
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	turn, ok := chat.Respond(ctx, &conv, "francistown")
	if !ok {
		t.Fatalf("expected a turn")
	}
	if !turn.Fallback || !strings.HasPrefix(turn.Response, ApologyText) {
		t.Fatalf("expected apology fallback, got %q", turn.Response)
	}
	if turn.Assistant != nil {
		t.Fatalf("fallback turn should not carry an assistant reply")
	}
	if len(turn.Results) != 2 {
		t.Fatalf("expected fallback search results, got %d", len(turn.Results))
	}
	if conv.Len() != 1 {
		t.Fatalf("fallback turn was not appended")
	}
}

func TestChat_ResponseLeadsWithAssistantAnalysis(t *testing.T) {
	chat := newChat(t)
	turn, ok := chat.Respond(context.Background(), nil, "Show me a house in Maun")
	if !ok || turn.Fallback || turn.Assistant == nil {
		t.Fatalf("expected a composed turn with an assistant reply, got %+v", turn)
	}

	want := "AI Analysis (Raks Filtered):\n" + turn.Assistant.Text + "\n\n"
	if !strings.HasPrefix(turn.Response, want) {
		t.Fatalf("expected assistant analysis first, got:\n%s", turn.Response)
	}

	quality := "Source Quality: AI Assistant (90% confidence, Filtered)"
	contact := NewComposer("").ContactLine()
	if !strings.HasSuffix(turn.Response, quality+"\n\n"+contact) {
		t.Fatalf("expected source quality line before the contact line, got:\n%s", turn.Response)
	}
	if strings.Index(turn.Response, externalSectionLabel) > strings.Index(turn.Response, quality) {
		t.Fatalf("external section should come before the source quality line")
	}
}

package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"raksproperties/models"
)

// ChatService runs one X-Chart round trip: internal search, external
// listings and the canned assistant, composed into a single response.
type ChatService struct {
	catalogs  CatalogProvider
	external  *ExternalService
	assistant *AssistantService
	composer  *Composer
	delay     Delayer
	latency   time.Duration
	now       func() time.Time
}

type ChatOption func(*ChatService)

// WithClock replaces time.Now for turn timestamps
func WithClock(now func() time.Time) ChatOption {
	return func(s *ChatService) { s.now = now }
}

// WithSearchDelay simulates latency for the internal search step
func WithSearchDelay(delay Delayer, latency time.Duration) ChatOption {
	return func(s *ChatService) { s.delay, s.latency = delay, latency }
}

func NewChatService(catalogs CatalogProvider, external *ExternalService, assistant *AssistantService, composer *Composer, opts ...ChatOption) *ChatService {
	s := &ChatService{
		catalogs:  catalogs,
		external:  external,
		assistant: assistant,
		composer:  composer,
		delay:     NoDelay{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Respond answers text and appends the turn to conv. Blank input is ignored
// and reported with false. Failures never surface as errors: the turn then
// carries the apology and a direct catalog search instead.
func (s *ChatService) Respond(ctx context.Context, conv *models.Conversation, text string) (models.ConversationTurn, bool) {
	if IsBlank(text) {
		return models.ConversationTurn{}, false
	}

	cat := s.catalogs.Current()
	turn := models.ConversationTurn{
		ID:          uuid.NewString(),
		UserText:    text,
		Suggestions: Suggestions(text),
	}

	err := s.delay.Wait(ctx, s.latency)
	var external models.ExternalData
	if err == nil {
		turn.Results = Match(cat, text)
		external, err = s.external.Fetch(ctx, text)
	}
	var reply models.AssistantReply
	if err == nil {
		reply, err = s.assistant.TryReply(ctx, text)
	}

	if err != nil {
		log.Printf("Warning: chat turn for %q degraded: %v", text, err)
		turn.Response = s.composer.Fallback(cat, text)
		turn.Results = Match(cat, text)
		turn.Fallback = true
	} else {
		turn.External = external.Results
		turn.Assistant = &reply
		turn.Response, turn.Fallback = s.composer.ComposeChatSafe(cat, text, turn.Results, turn.External, reply)
	}

	turn.Timestamp = s.now()
	if conv != nil {
		conv.Append(turn)
	}
	return turn, true
}

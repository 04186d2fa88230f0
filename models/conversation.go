package models

import "time"

// Assistant reply sources
const (
	ReplySourceAssistant = "ai-assistant"
	ReplySourceRaksData  = "raks-data"
)

// AssistantReply is the canned "AI Direct" answer for one message
type AssistantReply struct {
	Text       string  `json:"text"`
	Filtered   bool    `json:"filtered"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// ConversationTurn is one user message and the response composed for it
type ConversationTurn struct {
	ID          string          `json:"id"`
	UserText    string          `json:"user_text"`
	Response    string          `json:"response"`
	Results     []SearchResult  `json:"results,omitempty"`
	External    []SearchResult  `json:"external,omitempty"`
	Assistant   *AssistantReply `json:"assistant,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Fallback    bool            `json:"fallback"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Conversation is an append-only log of turns. It is owned by whoever drives
// the chat (TUI, CLI loop) and is not safe for concurrent use.
type Conversation struct {
	turns []ConversationTurn
}

func (c *Conversation) Append(turn ConversationTurn) {
	c.turns = append(c.turns, turn)
}

// Turns returns a copy of the log in insertion order
func (c *Conversation) Turns() []ConversationTurn {
	out := make([]ConversationTurn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Len() int {
	return len(c.turns)
}

// Last returns the most recent turn, if any
func (c *Conversation) Last() (ConversationTurn, bool) {
	if len(c.turns) == 0 {
		return ConversationTurn{}, false
	}
	return c.turns[len(c.turns)-1], true
}

package services

import (
	"fmt"

	"alfredoptarigan/resume-critic/internal/models"
)

// Conversation is the ordered dialogue of one session. It is idle or
// awaiting the reply to its last user turn. Callers serialize access.
type Conversation struct {
	turns    []models.Turn
	awaiting bool
}

// NewConversation seeds the conversation with a system turn unless
// systemPrompt is empty.
func NewConversation(systemPrompt string) *Conversation {
	c := &Conversation{}
	if systemPrompt != "" {
		c.turns = append(c.turns, models.Turn{Role: models.RoleSystem, Content: systemPrompt})
	}
	return c
}

// AppendUser records a user turn and waits for its reply.
func (c *Conversation) AppendUser(text string) error {
	if c.awaiting {
		return ErrTurnInFlight
	}
	c.turns = append(c.turns, models.Turn{Role: models.RoleUser, Content: text})
	c.awaiting = true
	return nil
}

// AppendAssistant answers the pending user turn.
func (c *Conversation) AppendAssistant(text string) error {
	if !c.awaiting {
		return ErrNoPendingTurn
	}
	c.turns = append(c.turns, models.Turn{Role: models.RoleAssistant, Content: text})
	c.awaiting = false
	return nil
}

// AbandonPending drops the unanswered user turn, if any.
func (c *Conversation) AbandonPending() {
	if !c.awaiting {
		return
	}
	c.turns = c.turns[:len(c.turns)-1]
	c.awaiting = false
}

// Reset keeps only the original system turn.
func (c *Conversation) Reset() {
	if len(c.turns) > 0 && c.turns[0].Role == models.RoleSystem {
		c.turns = c.turns[:1:1]
	} else {
		c.turns = nil
	}
	c.awaiting = false
}

func (c *Conversation) Awaiting() bool {
	return c.awaiting
}

// Turns returns a copy of all turns, system turn included.
func (c *Conversation) Turns() []models.Turn {
	out := make([]models.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Pairs returns the user/assistant exchanges for display. It refuses while
// a user turn is still unanswered.
func (c *Conversation) Pairs() ([]models.TurnPair, error) {
	if c.awaiting {
		return nil, ErrTurnInFlight
	}

	turns := c.turns
	if len(turns) > 0 && turns[0].Role == models.RoleSystem {
		turns = turns[1:]
	}
	if len(turns)%2 != 0 {
		return nil, fmt.Errorf("unbalanced conversation: %d turns after the system turn", len(turns))
	}

	pairs := make([]models.TurnPair, 0, len(turns)/2)
	for i := 0; i < len(turns); i += 2 {
		pairs = append(pairs, models.TurnPair{User: turns[i].Content, Assistant: turns[i+1].Content})
	}
	return pairs, nil
}

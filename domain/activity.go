package domain

import (
	"encoding/json"
	"time"
)

// Activity kinds recorded for a card.
const (
	ActivityCardCreated = "card.created"
	ActivityCardMoved   = "card.moved"
	ActivityCardEdited  = "card.edited"
	ActivityCardDeleted = "card.deleted"
)

// Activity is an entry in a card's history. CardRef is the persistence id of the card.
type Activity struct {
	ID        string            `json:"id"`
	CardRef   string            `json:"card_ref"`
	Kind      string            `json:"kind"`
	ActorID   string            `json:"actor_id,omitempty"`
	ActorName string            `json:"actor_name,omitempty"`
	Payload   json.RawMessage   `json:"payload,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Touch stamps CreatedAt when it is still unset.
func (a *Activity) Touch(now time.Time) {
	if a == nil {
		return
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
}

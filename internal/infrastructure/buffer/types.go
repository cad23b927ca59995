package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityActivity = "activity"
	EntityProfile  = "profile"

	defaultPriority = 3
	maxPriority     = 5
)

// Item is a pending write kept on disk until the primary store accepts it.
// Lower priorities drain first.
type Item struct {
	ID        string          `json:"id"`
	Entity    string          `json:"entity"`
	Ref       string          `json:"ref,omitempty"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Attempts  int             `json:"attempts"`
	Timestamp time.Time       `json:"timestamp"`

	key []byte
}

func (i *Item) prepare(now time.Time) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > maxPriority {
		i.Priority = defaultPriority
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = now
	}
}

package monitor

import "time"

// Status is the last observed state of the backing stores.
type Status struct {
	PostgreSQL  bool      `json:"postgresql"`
	Redis       bool      `json:"redis"`
	Buffer      bool      `json:"buffer"`
	BufferSize  int       `json:"buffer_size"`
	LastCheck   time.Time `json:"last_check"`
	Transitions int       `json:"transitions"`
}

// Online reports whether the stores that accept writes are reachable.
func (s Status) Online() bool {
	return s.PostgreSQL && s.Redis
}

package transport

// Envelope wraps every API response. Data is set on success, Error on failure.
type Envelope struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  any    `json:"error,omitempty"`
	Meta   any    `json:"meta,omitempty"`
}

// ListMeta describes a page of a list response.
type ListMeta struct {
	Count  int `json:"count"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

func NewSuccess(data any, meta any) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewList returns a success envelope for a slice with its page metadata.
func NewList[T any](items []T, limit, offset int) Envelope {
	if items == nil {
		items = []T{}
	}
	return NewSuccess(items, ListMeta{Count: len(items), Limit: limit, Offset: offset})
}

func NewError(code string, err any, meta any) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

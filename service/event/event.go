package event

import (
	"time"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/internal/clock"
)

// Context identifies the obligation change an event reports.
type Context struct {
	ObligationID string `json:"obligationId"`
	Action       string `json:"action"`
	FromStatus   string `json:"fromStatus,omitempty"`
	ToStatus     string `json:"toStatus,omitempty"`
	ActorID      string `json:"actorId,omitempty"`
	Version      int64  `json:"version"`
}

// Transitioned reports whether the change moved the obligation to another status.
func (c *Context) Transitioned() bool {
	return c != nil && c.ToStatus != "" && c.ToStatus != c.FromStatus
}

// Event carries a payload together with its obligation context.
type Event[T any] struct {
	Context   *Context          `json:"context"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Data      T                 `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]string),
		Data:      data,
	}
}

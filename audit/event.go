package audit

import (
	"sync"
)

var pool = sync.Pool{New: func() interface{} {
	return &Event{}
}}

func get() *Event {
	return pool.Get().(*Event)
}

func collect(log *Event) {
	pool.Put(log)
}

// Event is one journaled adapter occurrence: a handler attachment, a
// suppressed pipeline failure, a client swap.
type Event struct {
	ID        string      `json:"id"`
	Timestamp int64       `json:"timestamp"`
	Namespace string      `json:"namespace"`
	Level     string      `json:"level"`
	Type      string      `json:"type,omitempty"`
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload,omitempty"`
	Seq       uint64      `json:"seq"`
}

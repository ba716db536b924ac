package audit

import "context"

// Journal records adapter diagnostics. Implementations must never let a
// journaling failure reach the caller.
type Journal interface {
	Error(ctx context.Context, ns, code string, payload interface{})
	Info(ctx context.Context, ns, event string, payload interface{})
}

type Filter func(Event) bool

type Reader interface {
	GetPage(page, pageSize int, filters ...Filter) ([]Event, int, error)
}

package pulse

import (
	"fmt"
	"strings"
	"sync"
)

// Path is the ordered sequence of segments identifying an event topic.
type Path []string

func (p Path) String() string {
	return strings.Join(p, ".")
}

func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Measurements carries the quantitative payload of an event.
type Measurements map[string]interface{}

// Metadata carries the contextual payload of an event.
type Metadata map[string]interface{}

// HandlerFunc is the fixed four-argument signature every event handler exposes
// to the bus. The config value is the one supplied at attach time.
type HandlerFunc func(path Path, measurements Measurements, metadata Metadata, cfg HandlerConfig)

type attachment struct {
	name string
	path Path
	fn   HandlerFunc
	cfg  HandlerConfig
}

// Bus dispatches events to attached handlers synchronously on the publishing
// goroutine. It introduces no queuing of its own.
type Bus struct {
	mx       sync.RWMutex
	handlers []attachment
}

func NewBus() *Bus {
	return &Bus{}
}

// Attach registers fn under a unique name on the given event path.
func (b *Bus) Attach(name string, path Path, fn HandlerFunc, cfg HandlerConfig) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	for _, h := range b.handlers {
		if h.name == name {
			return fmt.Errorf("handler %s is already attached", name)
		}
	}
	b.handlers = append(b.handlers, attachment{name: name, path: path, fn: fn, cfg: cfg})
	return nil
}

func (b *Bus) Detach(name string) bool {
	b.mx.Lock()
	defer b.mx.Unlock()
	for i, h := range b.handlers {
		if h.name == name {
			b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch invokes every handler attached to path with the event payloads.
// Handlers are responsible for their own failure containment.
func (b *Bus) Dispatch(path Path, measurements Measurements, metadata Metadata) {
	b.mx.RLock()
	matched := make([]attachment, 0, len(b.handlers))
	for _, h := range b.handlers {
		if h.path.Equal(path) {
			matched = append(matched, h)
		}
	}
	b.mx.RUnlock()
	for _, h := range matched {
		h.fn(path, measurements, metadata, h.cfg)
	}
}

// HandlerInfo describes one attachment for introspection.
type HandlerInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (b *Bus) Handlers() []HandlerInfo {
	b.mx.RLock()
	defer b.mx.RUnlock()
	res := make([]HandlerInfo, 0, len(b.handlers))
	for _, h := range b.handlers {
		res = append(res, HandlerInfo{Name: h.name, Path: h.path.String()})
	}
	return res
}

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Stdout journals events as JSON lines to a writer. No paging.
type Stdout struct {
	writer io.Writer
}

func New(writer io.Writer) *Stdout {
	return &Stdout{
		writer: writer,
	}
}

func (s Stdout) Close() error {
	return nil
}

func (s Stdout) GetPage(page, pageSize int, filters ...Filter) ([]Event, int, error) {
	return []Event{}, 0, nil
}

func (s Stdout) Log(l *Event) error {
	out, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("could not marshal message: %w", err)
	}
	_, err = fmt.Fprintln(s.writer, string(out))
	return err
}

func (s Stdout) Info(_ context.Context, namespace, code string, payload interface{}) {
	s.log(levelInfo, namespace, code, payload)
}

func (s Stdout) Error(_ context.Context, namespace, code string, payload interface{}) {
	s.log(levelError, namespace, code, payload)
}

func (s Stdout) log(level, namespace, code string, payload interface{}) {
	l := get()
	defer collect(l)
	l.ID = uuid.New().String()
	l.Timestamp = time.Now().UnixNano()
	l.Level = level
	l.Namespace = namespace
	l.Event = code
	l.Type = ""
	l.Payload = nil
	if payload != nil {
		if err, ok := payload.(error); ok {
			payload = err.Error()
		}
		l.Type = reflect.TypeOf(payload).String()
		l.Payload = payload
	}
	_ = s.Log(l)
}

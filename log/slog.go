package log

import (
	"fmt"
	"log/slog"
)

// SlogAdapter bridges the adapter's Logger interface onto the process slog
// default for hosts that already configure structured logging.
type SlogAdapter struct{}

func (s SlogAdapter) Debug(msg string) {
	slog.Debug(msg)
}

func (s SlogAdapter) Debugf(msg string, args ...interface{}) {
	slog.Debug(fmt.Sprintf(msg, args...))
}

func (s SlogAdapter) Info(msg string) {
	slog.Info(msg)
}

func (s SlogAdapter) Infof(msg string, args ...interface{}) {
	slog.Info(fmt.Sprintf(msg, args...))
}

func (s SlogAdapter) Error(msg string) {
	slog.Error(msg)
}

func (s SlogAdapter) Errorf(msg string, args ...interface{}) {
	slog.Error(fmt.Sprintf(msg, args...))
}

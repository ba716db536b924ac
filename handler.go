package pulse

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/mklimuk/pulse/metrics"
)

// RequestStop is the event path dispatched when an instrumented request completes.
var RequestStop = Path{"http", "request", "stop"}

// Auditor journals notable adapter events. Optional; see the audit package.
type Auditor interface {
	Error(ctx context.Context, ns, code string, payload interface{})
}

// HandlerConfig is the opaque state delivered with every dispatch. A nil
// Client falls back to the process-wide default at event time.
type HandlerConfig struct {
	Client  metrics.Client
	Logger  Logger
	Auditor Auditor
}

// Process-wide defaults. Written once during application startup, read-only
// afterwards.
var (
	defaultClient  atomic.Value
	captureEnabled atomic.Bool
	suppressed     = NewFailures()
)

// clientHolder gives atomic.Value a single concrete type to store, since it
// rejects stores of differing concrete types behind the same interface.
type clientHolder struct {
	client metrics.Client
}

func init() {
	defaultClient.Store(clientHolder{metrics.NoopClient{}})
	captureEnabled.Store(true)
}

// SetDefaultClient installs the client used when a dispatch carries no
// explicit one. Call it during startup, before attaching handlers.
func SetDefaultClient(client metrics.Client) {
	if client == nil {
		client = metrics.NoopClient{}
	}
	defaultClient.Store(clientHolder{client})
}

func DefaultClient() metrics.Client {
	return defaultClient.Load().(clientHolder).client
}

// SetCaptureEnabled gates whether Attach establishes subscriptions at all.
func SetCaptureEnabled(enabled bool) {
	captureEnabled.Store(enabled)
}

func CaptureEnabled() bool {
	return captureEnabled.Load()
}

// SuppressedFailures returns counters of pipeline failures swallowed so far.
func SuppressedFailures() map[string]Failure {
	return suppressed.Snapshot()
}

// HandleEvent bridges a single bus dispatch into a series build and a client
// write. Nothing escapes it: skip conditions and failures alike end as debug
// log lines, never as a propagated error or panic. Metrics are best-effort by
// design and must not threaten the request pipeline being observed.
func HandleEvent(path Path, measurements Measurements, metadata Metadata, cfg HandlerConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf("request metrics: recovered: %v", r)
			suppressed.Collect("panic", fmt.Errorf("%v", r))
		}
	}()
	if !path.Equal(RequestStop) {
		return
	}
	err := handle(measurements, metadata, cfg, logger)
	if err != nil {
		logger.Debugf("request metrics: %v", err)
		suppressed.Collect("pipeline", err)
		if cfg.Auditor != nil {
			cfg.Auditor.Error(context.Background(), "metrics", "pipeline", err)
		}
	}
}

func handle(measurements Measurements, metadata Metadata, cfg HandlerConfig, logger Logger) error {
	conn, err := decodeConn(metadata)
	if err != nil {
		// not an error: events fired outside a routed request carry no conn
		logger.Debugf("request metrics: skipping event: %v", err)
		return nil
	}
	if !conn.routed() {
		logger.Debug("request metrics: skipping event without route info")
		return nil
	}
	rec := BuildSeries(measurements, conn)
	client := cfg.Client
	if client == nil {
		client = DefaultClient()
	}
	err = client.WriteMetric(context.Background(), rec)
	if err != nil {
		return fmt.Errorf("could not write `%s` record: %w", rec.Name, err)
	}
	return nil
}

// Attach registers fn on the bus when telemetry capture is enabled. The flag
// is checked once, here, not per event. Registration is fire-and-forget setup:
// the call reports success whether or not a subscription was established.
func Attach(bus *Bus, name string, path Path, fn HandlerFunc, cfg HandlerConfig) bool {
	if !CaptureEnabled() {
		return true
	}
	err := bus.Attach(name, path, fn, cfg)
	if err != nil && cfg.Logger != nil {
		cfg.Logger.Debugf("request metrics: could not attach %s: %v", name, err)
	}
	return true
}

package pulse

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Route identifies the handler a request was dispatched to. Routed handlers
// publish it with SetRoute; requests without one still emit events, the
// metrics handler just skips them (static assets, health checks).
type Route struct {
	Controller string
	Action     string
	Format     string
}

type routeKey struct{}

type routeHolder struct {
	route Route
	set   bool
}

// SetRoute records route info on a request instrumented with Instrument.
// It is a no-op on a context without instrumentation.
func SetRoute(ctx context.Context, route Route) {
	holder, ok := ctx.Value(routeKey{}).(*routeHolder)
	if !ok {
		return
	}
	holder.route = route
	holder.set = true
}

func RouteFromContext(ctx context.Context) (Route, bool) {
	holder, ok := ctx.Value(routeKey{}).(*routeHolder)
	if !ok || !holder.set {
		return Route{}, false
	}
	return holder.route, true
}

// Instrument wraps next so every completed request is dispatched on the bus
// as a RequestStop event carrying the canonical measurements and metadata
// shape. Duration is measured in nanosecond ticks.
func Instrument(bus *Bus, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		holder := &routeHolder{}
		r = r.WithContext(context.WithValue(r.Context(), routeKey{}, holder))
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		duration := time.Since(start)
		bus.Dispatch(RequestStop,
			Measurements{"duration": int64(duration)},
			Metadata{"conn": connMetadata(r, holder, ww.status)},
		)
	})
}

func connMetadata(r *http.Request, holder *routeHolder, status int) map[string]interface{} {
	headers := make([]Header, 0, len(r.Header))
	for name, vals := range r.Header {
		for _, val := range vals {
			headers = append(headers, Header{Name: strings.ToLower(name), Value: val})
		}
	}
	private := map[string]interface{}{}
	if holder.set {
		private["controller"] = holder.route.Controller
		private["action"] = holder.route.Action
		private["format"] = holder.route.Format
	}
	traceID := r.Header.Get("x-request-id")
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return map[string]interface{}{
		"method":       r.Method,
		"status":       status,
		"request_path": r.URL.Path,
		"req_headers":  headers,
		"private":      private,
		"assigns": map[string]interface{}{
			"trace_id": traceID,
		},
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

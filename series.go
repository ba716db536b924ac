package pulse

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mklimuk/pulse/metrics"
)

// MeasurementName is the series every request record is written under.
const MeasurementName = "http_request"

// Duration measurements are nanosecond ticks (Go's native clock unit);
// 1 ms = 1e6 native units. The conversion divides in float64 so
// sub-millisecond precision survives (1_500_000 -> 1.5). No rounding.
const nativeTicksPerMillisecond = 1e6

// BuildSeries maps one validated event occurrence onto a metric record.
// Every record carries count=1 so downstream aggregation is a plain sum.
func BuildSeries(measurements Measurements, conn Conn) metrics.Record {
	rec := metrics.NewRecord(MeasurementName)
	rec.AddTag("method", conn.Method)
	rec.AddTag("status", strconv.Itoa(conn.Status))
	rec.AddTag("action", stringify(conn.Private.Action))
	rec.AddTag("format", stringify(conn.Private.Format))
	rec.AddTag("controller", stringify(conn.Private.Controller))
	rec.AddField("count", int64(1))
	success := 0.0
	if conn.Status >= 200 && conn.Status <= 399 {
		success = 1.0
	}
	rec.AddField("success", success)
	rec.AddField("path", conn.RequestPath)
	rec.AddField("duration_ms", durationMillis(measurements["duration"]))
	if ref, found := conn.referer(); found {
		rec.AddField("http_referer", ref)
	}
	if traceID, found := conn.traceID(); found {
		rec.AddField("trace_id", traceID)
	}
	return *rec
}

func durationMillis(raw interface{}) float64 {
	switch ticks := raw.(type) {
	case time.Duration:
		return float64(ticks) / nativeTicksPerMillisecond
	case int64:
		return float64(ticks) / nativeTicksPerMillisecond
	case int:
		return float64(ticks) / nativeTicksPerMillisecond
	case int32:
		return float64(ticks) / nativeTicksPerMillisecond
	case int16:
		return float64(ticks) / nativeTicksPerMillisecond
	case int8:
		return float64(ticks) / nativeTicksPerMillisecond
	case uint64:
		return float64(ticks) / nativeTicksPerMillisecond
	case uint:
		return float64(ticks) / nativeTicksPerMillisecond
	case uint32:
		return float64(ticks) / nativeTicksPerMillisecond
	case uint16:
		return float64(ticks) / nativeTicksPerMillisecond
	case uint8:
		return float64(ticks) / nativeTicksPerMillisecond
	case float64:
		return ticks / nativeTicksPerMillisecond
	case float32:
		return float64(ticks) / nativeTicksPerMillisecond
	default:
		return 0
	}
}

func stringify(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

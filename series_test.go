package pulse

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventMetadata() Metadata {
	return Metadata{
		"conn": map[string]interface{}{
			"method":       "GET",
			"status":       200,
			"request_path": "/users/42",
			"req_headers": []map[string]interface{}{
				{"name": "content-type", "value": "x"},
				{"name": "referer", "value": "http://a"},
			},
			"private": map[string]interface{}{
				"action":     "show",
				"format":     "html",
				"controller": "UserController",
			},
			"assigns": map[string]interface{}{
				"trace_id": "abc123",
			},
		},
	}
}

func TestBuildSeries_Mapping(t *testing.T) {
	conn, err := decodeConn(eventMetadata())
	require.NoError(t, err)
	rec := BuildSeries(Measurements{"duration": int64(1_500_000)}, conn)
	assert.Equal(t, MeasurementName, rec.Name)

	for tag, expected := range map[string]string{
		"method":     "GET",
		"status":     "200",
		"action":     "show",
		"format":     "html",
		"controller": "UserController",
	} {
		val, found := rec.Tag(tag)
		require.True(t, found, "missing tag %s", tag)
		assert.Equal(t, expected, val, "tag %s mismatch", tag)
	}

	count, found := rec.Field("count")
	require.True(t, found)
	assert.Equal(t, int64(1), count)
	path, found := rec.Field("path")
	require.True(t, found)
	assert.Equal(t, "/users/42", path)
	duration, found := rec.Field("duration_ms")
	require.True(t, found)
	assert.Equal(t, 1.5, duration)
	referer, found := rec.Field("http_referer")
	require.True(t, found)
	assert.Equal(t, "http://a", referer)
	traceID, found := rec.Field("trace_id")
	require.True(t, found)
	assert.Equal(t, "abc123", traceID)
}

func TestBuildSeries_Success(t *testing.T) {
	for status, expected := range map[int]float64{
		199: 0.0,
		200: 1.0,
		204: 1.0,
		301: 1.0,
		399: 1.0,
		400: 0.0,
		500: 0.0,
	} {
		t.Run(fmt.Sprintf("status_%d", status), func(t *testing.T) {
			metadata := eventMetadata()
			metadata["conn"].(map[string]interface{})["status"] = status
			conn, err := decodeConn(metadata)
			require.NoError(t, err)
			rec := BuildSeries(Measurements{"duration": int64(1000)}, conn)
			success, found := rec.Field("success")
			require.True(t, found)
			assert.Equal(t, expected, success)
		})
	}
}

func TestBuildSeries_Duration(t *testing.T) {
	conn, err := decodeConn(eventMetadata())
	require.NoError(t, err)
	// nanosecond ticks, 1ms = 1e6 ticks
	for raw, expected := range map[int64]float64{
		1_500_000:     1.5,
		1_000_000:     1.0,
		500:           0.0005,
		2_000_000_000: 2000.0,
	} {
		rec := BuildSeries(Measurements{"duration": raw}, conn)
		duration, found := rec.Field("duration_ms")
		require.True(t, found)
		assert.Equal(t, expected, duration, "raw %d", raw)
	}
	// time.Duration measurements convert the same way
	rec := BuildSeries(Measurements{"duration": 1500 * time.Microsecond}, conn)
	duration, _ := rec.Field("duration_ms")
	assert.Equal(t, 1.5, duration)
	// the conversion is total across integer kinds
	for raw, expected := range map[interface{}]float64{
		uint(2_000_000):   2.0,
		uint64(1_500_000): 1.5,
		uint32(500_000):   0.5,
		uint16(50_000):    0.05,
		uint8(200):        0.0002,
		int32(250_000):    0.25,
		int16(30_000):     0.03,
		int8(100):         0.0001,
		float32(1e6):      1.0,
	} {
		rec = BuildSeries(Measurements{"duration": raw}, conn)
		duration, _ = rec.Field("duration_ms")
		assert.Equal(t, expected, duration, "raw %v (%T)", raw, raw)
	}
}

func TestBuildSeries_Referer(t *testing.T) {
	metadata := eventMetadata()
	conn, err := decodeConn(metadata)
	require.NoError(t, err)
	rec := BuildSeries(Measurements{"duration": int64(1000)}, conn)
	referer, found := rec.Field("http_referer")
	require.True(t, found)
	assert.Equal(t, "http://a", referer)

	// first match wins
	metadata["conn"].(map[string]interface{})["req_headers"] = []map[string]interface{}{
		{"name": "referer", "value": "http://first"},
		{"name": "referer", "value": "http://second"},
	}
	conn, err = decodeConn(metadata)
	require.NoError(t, err)
	rec = BuildSeries(Measurements{"duration": int64(1000)}, conn)
	referer, _ = rec.Field("http_referer")
	assert.Equal(t, "http://first", referer)

	// the match is case sensitive; a capitalized name does not count
	metadata["conn"].(map[string]interface{})["req_headers"] = []map[string]interface{}{
		{"name": "Referer", "value": "http://a"},
	}
	conn, err = decodeConn(metadata)
	require.NoError(t, err)
	rec = BuildSeries(Measurements{"duration": int64(1000)}, conn)
	assert.False(t, rec.HasField("http_referer"))

	// no referer header means no field at all
	metadata["conn"].(map[string]interface{})["req_headers"] = []map[string]interface{}{}
	conn, err = decodeConn(metadata)
	require.NoError(t, err)
	rec = BuildSeries(Measurements{"duration": int64(1000)}, conn)
	assert.False(t, rec.HasField("http_referer"))
}

func TestBuildSeries_TraceID(t *testing.T) {
	metadata := eventMetadata()
	delete(metadata["conn"].(map[string]interface{}), "assigns")
	conn, err := decodeConn(metadata)
	require.NoError(t, err)
	rec := BuildSeries(Measurements{"duration": int64(1000)}, conn)
	assert.False(t, rec.HasField("trace_id"))

	metadata["conn"].(map[string]interface{})["assigns"] = map[string]interface{}{"trace_id": nil}
	conn, err = decodeConn(metadata)
	require.NoError(t, err)
	rec = BuildSeries(Measurements{"duration": int64(1000)}, conn)
	assert.False(t, rec.HasField("trace_id"))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "show", stringify("show"))
	assert.Equal(t, "42", stringify(42))
	assert.Equal(t, "42", stringify(int64(42)))
	assert.Equal(t, "true", stringify(true))
	assert.Equal(t, "", stringify(nil))
	assert.Equal(t, "1.5", stringify(1.5))
}

package pulse

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

var errNoConn = errors.New("metadata carries no conn structure")

// Header is a single request header. Names are expected lowercase, the way the
// instrumentation middleware normalizes them.
type Header struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

// RouteInfo is the private routing namespace of a connection. All three values
// must be present for an event to produce a metric; requests that never hit a
// routed handler (static assets, health checks) leave them empty.
type RouteInfo struct {
	Action     interface{} `mapstructure:"action"`
	Format     interface{} `mapstructure:"format"`
	Controller interface{} `mapstructure:"controller"`
}

// Conn is the typed view of the connection structure carried in event metadata.
type Conn struct {
	Method      string                 `mapstructure:"method"`
	Status      int                    `mapstructure:"status"`
	RequestPath string                 `mapstructure:"request_path"`
	ReqHeaders  []Header               `mapstructure:"req_headers"`
	Private     RouteInfo              `mapstructure:"private"`
	Assigns     map[string]interface{} `mapstructure:"assigns"`
}

func decodeConn(metadata Metadata) (Conn, error) {
	raw, found := metadata["conn"]
	if !found || raw == nil {
		return Conn{}, errNoConn
	}
	var conn Conn
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &conn,
	})
	if err != nil {
		return Conn{}, fmt.Errorf("could not build conn decoder: %w", err)
	}
	err = dec.Decode(raw)
	if err != nil {
		return Conn{}, fmt.Errorf("could not decode conn metadata: %w", err)
	}
	return conn, nil
}

// routed reports whether the connection went through a routed handler.
func (c Conn) routed() bool {
	return c.Private.Action != nil && c.Private.Format != nil && c.Private.Controller != nil
}

// referer returns the value of the first header named exactly "referer",
// scanning headers in their given order.
func (c Conn) referer() (string, bool) {
	for _, h := range c.ReqHeaders {
		if h.Name == "referer" {
			return h.Value, true
		}
	}
	return "", false
}

func (c Conn) traceID() (string, bool) {
	if c.Assigns == nil {
		return "", false
	}
	val, found := c.Assigns["trace_id"]
	if !found || val == nil {
		return "", false
	}
	return stringify(val), true
}

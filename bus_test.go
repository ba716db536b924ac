package pulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DispatchMatchingPath(t *testing.T) {
	bus := NewBus()
	var got []Path
	fn := func(path Path, _ Measurements, _ Metadata, _ HandlerConfig) {
		got = append(got, path)
	}
	require.NoError(t, bus.Attach("h1", Path{"http", "request", "stop"}, fn, HandlerConfig{}))
	require.NoError(t, bus.Attach("h2", Path{"http", "request", "start"}, fn, HandlerConfig{}))
	bus.Dispatch(Path{"http", "request", "stop"}, nil, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "http.request.stop", got[0].String())
}

func TestBus_AttachDuplicateName(t *testing.T) {
	bus := NewBus()
	fn := func(Path, Measurements, Metadata, HandlerConfig) {}
	require.NoError(t, bus.Attach("h1", RequestStop, fn, HandlerConfig{}))
	assert.Error(t, bus.Attach("h1", RequestStop, fn, HandlerConfig{}))
}

func TestBus_Detach(t *testing.T) {
	bus := NewBus()
	calls := 0
	fn := func(Path, Measurements, Metadata, HandlerConfig) { calls++ }
	require.NoError(t, bus.Attach("h1", RequestStop, fn, HandlerConfig{}))
	assert.True(t, bus.Detach("h1"))
	assert.False(t, bus.Detach("h1"))
	bus.Dispatch(RequestStop, nil, nil)
	assert.Zero(t, calls)
}

func TestBus_ConfigDeliveredPerDispatch(t *testing.T) {
	bus := NewBus()
	var gotCfg HandlerConfig
	logger := nopLogger{}
	fn := func(_ Path, _ Measurements, _ Metadata, cfg HandlerConfig) { gotCfg = cfg }
	require.NoError(t, bus.Attach("h1", RequestStop, fn, HandlerConfig{Logger: logger}))
	bus.Dispatch(RequestStop, nil, nil)
	assert.Equal(t, logger, gotCfg.Logger)
}

func TestPath_Equal(t *testing.T) {
	assert.True(t, Path{"a", "b"}.Equal(Path{"a", "b"}))
	assert.False(t, Path{"a", "b"}.Equal(Path{"a"}))
	assert.False(t, Path{"a", "b"}.Equal(Path{"a", "c"}))
}

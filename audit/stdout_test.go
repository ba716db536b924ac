package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdoutJournal(t *testing.T) {
	var buf bytes.Buffer
	journal := New(&buf)
	ctx := context.Background()
	journal.Error(ctx, "metrics", "pipeline", fmt.Errorf("write failed"))
	journal.Info(ctx, "metrics", "attached", "request-metrics")
	journal.Info(ctx, "metrics", "capture", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var entry Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "error", entry.Level)
	assert.Equal(t, "pipeline", entry.Event)
	assert.Equal(t, "string", entry.Type)
	assert.Equal(t, "write failed", entry.Payload)
	assert.NotEmpty(t, entry.ID)

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "info", entry.Level)
	assert.Equal(t, "string", entry.Type)
	assert.Equal(t, "request-metrics", entry.Payload)

	entry = Event{}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &entry))
	assert.Empty(t, entry.Type)
	assert.Nil(t, entry.Payload)
}

package sinks_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pagesift/pagesift/pkg/log"
	"github.com/pagesift/pagesift/pkg/log/sinks"
	"github.com/pagesift/pagesift/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")

	sink, err := sinks.NewFileSink(path)
	require.NoError(t, err)

	events := []*log.LogEvent{
		{
			Level:     types.InfoLevel,
			Message:   "Fetched page content",
			Fields:    map[string]any{"target_id": "listing", "html_bytes": 1024},
			Timestamp: time.Now(),
		},
		{
			Level:     types.ErrorLevel,
			Message:   "Extraction failed",
			Fields:    map[string]any{"error": "boom"},
			Timestamp: time.Now(),
		},
	}
	for _, evt := range events {
		require.NoError(t, sink.Write(evt))
	}
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "Fetched page content", first["message"])
	assert.Equal(t, "listing", first["target_id"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "error", second["level"])
	assert.Equal(t, "boom", second["error"])
}

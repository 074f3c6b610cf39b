package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInfoWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "debug", "hottakes-test")
	Info("vote_ok", map[string]any{"opinion_id": "o1"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "info", line["level"])
	require.Equal(t, "vote_ok", line["message"])
	require.Equal(t, "o1", line["opinion_id"])
	require.Equal(t, "hottakes-test", line["service"])
}

func TestLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, "warn", "hottakes-test")
	Info("hidden", nil)
	require.Zero(t, buf.Len())
	Warn("shown", nil)
	require.NotZero(t, buf.Len())
}

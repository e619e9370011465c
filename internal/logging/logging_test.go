package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(io.Discard, "loud", "json")
	require.Error(t, err)
	_, err = New(io.Discard, "info", "xml")
	require.Error(t, err)
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", "json")
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("index built", zap.Int("references", 2))
	require.NoError(t, l.Sync())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "index built", rec["msg"])
	require.Equal(t, float64(2), rec["references"])
}

func TestConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn", "console")
	require.NoError(t, err)
	l.Info("quiet")
	l.Warn("loud")
	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "WARN")
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "level %q", tt.in)
	}
}

func TestSlogManager_SetupWritesToFile(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	m.Logger().Info("hello", "answer", 42)

	out := buf.String()
	assert.Contains(t, out, "Logging initialized")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "answer=42")
}

func TestSlogManager_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "warn", nil)

	m.Logger().Info("should not appear")
	m.Logger().Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestSlogManager_RFC3339Timestamps(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	m.Logger().Info("stamped")

	// time=2026-08-27T12:00:00Z
	line := buf.String()
	i := strings.Index(line, "time=")
	require.GreaterOrEqual(t, i, 0)
	stamp := strings.Fields(line[i:])[0]
	stamp = strings.TrimPrefix(stamp, "time=")
	_, err := time.Parse(time.RFC3339, stamp)
	assert.NoError(t, err)
}

func TestSlogManager_ExtraHandler(t *testing.T) {
	var file, extra bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info", nil, slog.NewJSONHandler(&extra, nil))

	m.Logger().Info("fan out")

	assert.Contains(t, file.String(), "fan out")
	assert.Contains(t, extra.String(), "fan out")
}

func TestSlogManager_LoggerBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.NotNil(t, m.Logger(), "falls back to slog.Default")
}

func TestSlogManager_FlushWithoutProvider(t *testing.T) {
	m := NewSlogManager()
	assert.NoError(t, m.Flush(context.Background()))
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		nil, // nil handlers are dropped
		slog.NewTextHandler(&b, nil),
	)
	logger := slog.New(h)

	logger.Info("both sides")

	assert.Contains(t, a.String(), "both sides")
	assert.Contains(t, b.String(), "both sides")
}

func TestMultiHandler_RespectsPerHandlerLevel(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h)

	logger.Debug("quiet")

	assert.Contains(t, debugBuf.String(), "quiet")
	assert.Empty(t, errorBuf.String())
}

func TestContextHandler_InjectsAttrs(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, nil)
	h := NewContextHandler(inner, func() []slog.Attr {
		return []slog.Attr{slog.String("session", "s1")}
	})

	slog.New(h).Info("with context")

	assert.Contains(t, buf.String(), "session=s1")
}

func TestSlogManager_ContextProvider(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	m.Logger().Info("before provider")
	m.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.Uint64("eventsVersion", 7)}
	})
	m.Logger().Info("after provider")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.NotContains(t, lines[len(lines)-2], "eventsVersion")
	assert.Contains(t, lines[len(lines)-1], "eventsVersion=7")
}

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		appName string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "lifeweavelogs",
			appName: "lifeweave",
			want:    filepath.Join("lifeweavelogs", "lifeweave.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./lifeweavelogs",
			appName: "lifeweave",
			want:    filepath.Join(".", "lifeweavelogs", "lifeweave.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "lifeweave"),
			appName: "lifeweave",
			want:    filepath.Join("/var", "log", "lifeweave", "lifeweave.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.appName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

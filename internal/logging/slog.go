package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// SlogManager owns the process-wide slog logger: a fan-out over stdout,
// the session log file, the OTel bridge, and any extra handlers, with a
// swappable context provider stamping shared attributes on each record.
type SlogManager struct {
	logger      *slog.Logger
	logProvider *sdklog.LoggerProvider

	mu       sync.RWMutex
	provider ContextProvider
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// rfc3339Times rewrites the record timestamp as UTC RFC3339 so all
// sinks agree on the format.
func rfc3339Times(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
		}
	}
	return a
}

// Setup wires the logger. file and provider may be nil to skip the file
// and OTel sinks; extra handlers (such as GELF) receive every record.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider, extra ...slog.Handler) {
	m.logProvider = provider

	opts := &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: rfc3339Times,
	}

	handlers := []slog.Handler{slog.NewTextHandler(os.Stdout, opts)}
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, opts))
	}
	if provider != nil {
		handlers = append(handlers, otelslog.NewHandler("lifeweave", otelslog.WithLoggerProvider(provider)))
	}
	handlers = append(handlers, extra...)

	// The context wrapper reads whatever provider is registered at log
	// time, so SetContextProvider works before or after Setup.
	root := NewContextHandler(NewMultiHandler(handlers...), func() []slog.Attr {
		m.mu.RLock()
		p := m.provider
		m.mu.RUnlock()
		if p == nil {
			return nil
		}
		return p()
	})

	m.logger = slog.New(root)
	m.logger.Info("Logging initialized", "level", level)
}

// SetContextProvider registers a provider whose attributes are appended
// to every record.
func (m *SlogManager) SetContextProvider(p ContextProvider) {
	m.mu.Lock()
	m.provider = p
	m.mu.Unlock()
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush drains buffered OTel log records, if the bridge is active.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider == nil {
		return nil
	}
	return m.logProvider.ForceFlush(ctx)
}

package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGelfHandler creates a slog handler that ships records to a Graylog
// server over GELF/UDP. Records are encoded as JSON; gelf.Writer wraps
// each write in a GELF message with host metadata.
func NewGelfHandler(address, level string) (slog.Handler, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("error creating GELF writer for %s: %w", address, err)
	}

	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}), nil
}

// Package monitor periodically samples engine health (scheduler queue
// depth, memo cache stats, store version) into a status file and the
// telemetry pipeline.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lifeweave/lifeweave/internal/compute"
	"github.com/lifeweave/lifeweave/internal/logging"
	"github.com/lifeweave/lifeweave/internal/memo"
	"github.com/lifeweave/lifeweave/internal/store"
	"github.com/lifeweave/lifeweave/internal/telemetry"
)

// Dependencies are the components the monitor samples. Telemetry may
// be nil; everything else is required.
type Dependencies struct {
	Scheduler  *compute.Scheduler
	Memo       *memo.Cache
	Store      store.Backend
	LogManager *logging.SlogManager
	Telemetry  *telemetry.Manager // optional
	StatusDir  string
	Interval   time.Duration // defaults to 1s
}

// Status is one sampled snapshot of engine health.
type Status struct {
	Time          time.Time `json:"time"`
	QueueDepth    int       `json:"queueDepth"`
	MemoHits      int       `json:"memoHits"`
	MemoMisses    int       `json:"memoMisses"`
	MemoEntries   int       `json:"memoEntries"`
	EventsVersion uint64    `json:"eventsVersion"`
	EventCount    int       `json:"eventCount"`
}

// Service drives the sampling loop.
type Service struct {
	deps Dependencies

	mu      sync.RWMutex
	running bool
	stop    chan struct{}
}

// NewService builds a service; Start begins sampling.
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{
		deps: deps,
		stop: make(chan struct{}),
	}
}

// IsRunning reports whether the sampling loop is active.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Sample gathers a point-in-time status snapshot.
func (s *Service) Sample() (Status, error) {
	status := Status{Time: time.Now()}

	if s.deps.Scheduler != nil {
		status.QueueDepth = s.deps.Scheduler.QueueDepth()
	}
	if s.deps.Memo != nil {
		status.MemoHits, status.MemoMisses = s.deps.Memo.Stats()
		status.MemoEntries = s.deps.Memo.Len()
	}
	if s.deps.Store != nil {
		status.EventsVersion = s.deps.Store.Version()
		count, err := s.deps.Store.CountEvents()
		if err != nil {
			return status, fmt.Errorf("counting events: %w", err)
		}
		status.EventCount = count
	}

	return status, nil
}

// Start launches the sampling goroutine. Calling Start on a running
// service is a no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stop = make(chan struct{})
	s.mu.Unlock()

	go s.run()
	return nil
}

func (s *Service) run() {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	logger := s.deps.LogManager.Logger()
	logger.Debug("Starting status monitor goroutine")

	statusPath := filepath.Join(s.deps.StatusDir, "status.json")
	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.tick(logger, statusPath)
		}
	}
}

// tick takes one sample and fans it out to the status file and, when
// configured, the telemetry pipeline.
func (s *Service) tick(logger *slog.Logger, statusPath string) {
	status, err := s.Sample()
	if err != nil {
		logger.Error("Error sampling status", "error", err)
		return
	}

	if err := s.writeStatusFile(statusPath, status); err != nil {
		logger.Error("Error writing status file", "error", err)
	}

	if s.deps.Telemetry != nil {
		point := telemetry.StoreActivityPoint(status.EventsVersion, status.EventCount, status.Time)
		if err := s.deps.Telemetry.WritePoint(context.Background(), "store_activity", point); err != nil {
			logger.Error("Error writing telemetry point", "error", err)
		}
	}
}

// writeStatusFile replaces the status file with the latest snapshot.
func (s *Service) writeStatusFile(path string, status Status) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Stop ends the sampling loop. Safe to call on a stopped service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.stop)
	}
}

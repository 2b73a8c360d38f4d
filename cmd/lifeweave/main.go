package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/lifeweave/lifeweave/internal/api"
	"github.com/lifeweave/lifeweave/internal/compute"
	"github.com/lifeweave/lifeweave/internal/config"
	"github.com/lifeweave/lifeweave/internal/database"
	"github.com/lifeweave/lifeweave/internal/export"
	"github.com/lifeweave/lifeweave/internal/geocluster"
	"github.com/lifeweave/lifeweave/internal/logging"
	"github.com/lifeweave/lifeweave/internal/memo"
	"github.com/lifeweave/lifeweave/internal/monitor"
	intOtel "github.com/lifeweave/lifeweave/internal/otel"
	"github.com/lifeweave/lifeweave/internal/store"
	"github.com/lifeweave/lifeweave/internal/store/gormstore"
	"github.com/lifeweave/lifeweave/internal/store/memory"
	"github.com/lifeweave/lifeweave/internal/stream"
	"github.com/lifeweave/lifeweave/internal/telemetry"
	"github.com/lifeweave/lifeweave/internal/tier"
	"github.com/lifeweave/lifeweave/pkg/core"
)

// AppVersion can be set at build time via ldflags.
var (
	AppVersion = "0.1.0"
	BuildDate  = "unknown"

	AppName = "lifeweave"
)

// global managers
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime = time.Now()
)

func main() {
	var (
		configDir   = flag.String("config", ".", "directory containing lifeweave.cfg.json")
		demoCount   = flag.Int("demo", 0, "seed the store with N generated demo events")
		demoSeed    = flag.Int64("seed", 1, "random seed for demo data")
		tierName    = flag.String("tier", "month", "zoom tier: year, month, week, day, focus")
		horizontal  = flag.Bool("horizontal", false, "lay the timeline out horizontally")
		maximal     = flag.Bool("maximal", false, "include detail cards in the layout")
		doUpload    = flag.Bool("upload", false, "upload the exported scene to the web viewer")
		mapCellSize = flag.Float64("map-cell", 0, "also cluster located events on a map grid of this many meters")
	)
	flag.Parse()

	if err := run(*configDir, *demoCount, *demoSeed, *tierName, *horizontal, *maximal, *doUpload, *mapCellSize); err != nil {
		fmt.Fprintf(os.Stderr, "lifeweave: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string, demoCount int, demoSeed int64, tierName string, horizontal, maximal, doUpload bool, mapCellSize float64) error {
	// Bootstrap logging to stdout only until config is loaded.
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	Logger.Info("Starting lifeweave", "version", AppVersion, "built", BuildDate)

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	logFile, err := openLogFile()
	if err != nil {
		Logger.Error("Failed to create/open log file!", "error", err)
	}
	var logWriter io.Writer
	if logFile != nil {
		defer logFile.Close()
		logWriter = logFile
	}

	// Initialize OTel provider if enabled (after log file is created)
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    logWriter,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		}
	}

	// Re-setup logging with file output, optional OTel, optional GELF.
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	var extra []slog.Handler
	if config.GetBool("graylog.enabled") {
		gelfHandler, err := logging.NewGelfHandler(config.GetString("graylog.address"), config.GetString("logLevel"))
		if err != nil {
			Logger.Warn("Graylog handler unavailable", "error", err)
		} else {
			extra = append(extra, gelfHandler)
		}
	}
	SlogManager.Setup(logWriter, config.GetString("logLevel"), otelLogProvider, extra...)
	Logger = SlogManager.Logger()

	if OTelProvider != nil {
		defer OTelProvider.Shutdown(context.Background())
	}

	// Event store.
	backend, dbManager, err := openStore()
	if err != nil {
		return err
	}
	defer backend.Close()

	// Tag every subsequent log line with the store version at log time.
	SlogManager.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.Uint64("eventsVersion", backend.Version())}
	})

	if demoCount > 0 {
		Logger.Info("Populating demo data...", "count", demoCount)
		demoStart := time.Now()
		if err := seedDemoEvents(backend, demoCount, demoSeed); err != nil {
			return fmt.Errorf("seeding demo events: %w", err)
		}
		Logger.Info("Demo data populated.", "duration", time.Since(demoStart))
	}

	events, err := backend.ListEvents()
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("store is empty; run with -demo N to generate sample events")
	}

	// Telemetry is best-effort: a missing Influx server falls back to
	// the gzip backup file.
	var tele *telemetry.Manager
	if config.GetBool("influx.enabled") {
		zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		tele = telemetry.NewManager(zlog, telemetryBackupPath())
		if err := tele.Connect(); err != nil {
			Logger.Warn("Telemetry disabled", "error", err)
			tele = nil
		}
	}

	// Scheduler with memoization.
	cache := memo.NewCache(0)
	scheduler, err := compute.NewScheduler(
		compute.Memoized(cache),
		compute.Buffered(4),
		compute.Logged(logging.NewSchedulerLogger(zerolog.New(os.Stderr).With().Timestamp().Logger())),
	)
	if err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer scheduler.Stop()

	monitorService := monitor.NewService(monitor.Dependencies{
		Scheduler:  scheduler,
		Memo:       cache,
		Store:      backend,
		LogManager: SlogManager,
		Telemetry:  tele,
		StatusDir:  config.GetString("logsDir"),
	})
	if err := monitorService.Start(); err != nil {
		Logger.Error("Failed to start status monitor", "error", err)
	}
	defer monitorService.Stop()

	scene, err := computeScene(scheduler, backend, events, tierName, horizontal, maximal)
	if err != nil {
		return err
	}

	Logger.Info("Scene computed",
		"tier", scene.Tier,
		"bubbles", len(scene.Bubbles),
		"nodes", len(scene.Nodes),
		"paths", len(scene.Paths),
		"excludedEvents", scene.ExcludedEvents,
	)

	if tele != nil {
		point := telemetry.SceneComputePoint(scene, time.Since(SessionStartTime), false)
		if err := tele.WritePoint(context.Background(), "scene_compute", point); err != nil {
			Logger.Warn("Failed to write scene telemetry", "error", err)
		}
	}

	// Export to disk.
	exporter := export.New(config.GetStorageConfig().Memory, AppVersion)
	exportPath, err := exporter.Export(scene)
	if err != nil {
		return fmt.Errorf("exporting scene: %w", err)
	}
	Logger.Info("Scene exported", "path", exportPath)

	if mapCellSize > 0 {
		mapView, err := geocluster.Cluster(events, mapCellSize)
		if err != nil {
			return fmt.Errorf("clustering map view: %w", err)
		}
		Logger.Info("Map view clustered",
			"clusters", len(mapView.Clusters),
			"unlocated", mapView.UnlocatedCount,
		)
	}

	if doUpload {
		client := api.New(config.GetString("api.serverUrl"), config.GetString("api.apiKey"))
		if err := client.Healthcheck(); err != nil {
			return fmt.Errorf("web viewer unreachable: %w", err)
		}
		err := client.Upload(exportPath, api.UploadMetadata{
			Tier:       scene.Tier,
			Revision:   scene.Revision,
			EventCount: len(events),
			AppVersion: AppVersion,
		})
		if err != nil {
			return fmt.Errorf("uploading scene: %w", err)
		}
		Logger.Info("Scene uploaded", "serverUrl", config.GetString("api.serverUrl"))
	}

	if config.GetBool("stream.enabled") {
		if err := publishScene(backend, scene); err != nil {
			Logger.Warn("Failed to stream scene", "error", err)
		}
	}

	// Flush the in-memory SQLite database to disk before exit.
	if dbManager != nil && dbManager.ShouldSaveLocal && dbManager.SqliteFilePath != "" {
		if err := dbManager.DumpMemoryToDisk(); err != nil {
			Logger.Error("Failed to dump database to disk", "error", err)
		}
	}

	return SlogManager.Flush(context.Background())
}

// openLogFile rotates any existing session log aside and opens a fresh one.
func openLogFile() (*os.File, error) {
	logsDir := viper.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, err
		}
	}

	path := logging.LogFilePath(logsDir, AppName, SessionStartTime)
	if _, err := os.Stat(path); err == nil {
		_ = os.Rename(path, path+".old")
	}
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
}

// openStore builds the configured store backend. The database manager
// is non-nil only for the GORM-backed store.
func openStore() (store.Backend, *database.Manager, error) {
	storageCfg := config.GetStorageConfig()

	switch storageCfg.Type {
	case "memory", "":
		backend := memory.New()
		if err := backend.Init(); err != nil {
			return nil, nil, err
		}
		Logger.Info("Memory storage mode initialized")
		return backend, nil, nil

	case "sqlite", "postgres":
		zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		manager := database.NewManager(zlog)
		if storageCfg.Type == "sqlite" {
			manager.SqliteFilePath = sqliteDBFilePath()
			if dumps, err := database.GetBackupDBPaths(config.GetString("logsDir")); err == nil && len(dumps) > 0 {
				Logger.Info("Found earlier local DB dumps", "count", len(dumps))
			}
			if err := manager.ConnectLocal(); err != nil {
				return nil, nil, fmt.Errorf("connecting to database: %w", err)
			}
		} else if err := manager.Connect(); err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}

		backend := gormstore.New(manager, zlog)
		if err := backend.Init(); err != nil {
			return nil, nil, fmt.Errorf("initializing store: %w", err)
		}
		Logger.Info("Database storage mode initialized", "type", storageCfg.Type)
		return backend, manager, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

func sqliteDBFilePath() string {
	return fmt.Sprintf("%s/%s_%s.db",
		viper.GetString("logsDir"), AppName, SessionStartTime.Format("20060102_150405"))
}

func telemetryBackupPath() string {
	return fmt.Sprintf("%s/%s_%s.lp.gz",
		viper.GetString("logsDir"), AppName, SessionStartTime.Format("20060102_150405"))
}

// computeScene submits one request and waits for the scheduler to
// deliver the scene.
func computeScene(
	scheduler *compute.Scheduler,
	backend store.Backend,
	events []core.TimelineEvent,
	tierName string,
	horizontal, maximal bool,
) (core.Scene, error) {
	t, err := tier.Parse(tierName)
	if err != nil {
		return core.Scene{}, err
	}

	orientation := core.Vertical
	if horizontal {
		orientation = core.Horizontal
	}
	mode := core.Minimal
	if maximal {
		mode = core.Maximal
	}

	minDate := time.Now()
	var selected []core.PersonID
	seen := map[core.PersonID]bool{}
	for i := range events {
		if when, ok := events[i].When(); ok && when.Before(minDate) {
			minDate = when
		}
		for _, p := range events[i].ParticipantIDs {
			if !seen[p] {
				seen[p] = true
				selected = append(selected, p)
			}
		}
	}

	layoutCfg := config.GetLayoutConfig()
	req := compute.Request{
		Revision:      1,
		Events:        events,
		EventsVersion: backend.Version(),
		Tier:          t,
		Orientation:   orientation,
		Mode:          mode,
		Viewport:      core.Size{Width: 430, Height: 932},
		PixelsPerDay:  layoutCfg.PixelsPerDay,
		LaneSpacing:   layoutCfg.LaneSpacing,
		MinDate:       minDate,
		Selected:      selected,
	}

	if !scheduler.Submit(req) {
		return core.Scene{}, fmt.Errorf("scheduler is stopped")
	}

	select {
	case scene, ok := <-scheduler.Results():
		if !ok {
			return core.Scene{}, fmt.Errorf("scheduler closed without a result")
		}
		return scene, nil
	case <-time.After(30 * time.Second):
		return core.Scene{}, fmt.Errorf("timed out waiting for scene")
	}
}

// publishScene streams the computed scene to the configured viewer.
func publishScene(backend store.Backend, scene core.Scene) error {
	publisher := stream.New(stream.Config{
		URL:    config.GetString("stream.serverUrl"),
		Secret: config.GetString("api.apiKey"),
	}, Logger)

	if err := publisher.Connect(); err != nil {
		return err
	}
	defer publisher.Close()

	if err := publisher.StartSession(AppVersion, backend.Version()); err != nil {
		return err
	}
	if err := publisher.PublishScene(scene); err != nil {
		return err
	}
	return publisher.EndSession()
}

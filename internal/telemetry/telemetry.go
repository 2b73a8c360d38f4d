// Package telemetry ships performance measurements to InfluxDB. When
// the server is unreachable the points are appended to a gzip-compressed
// line-protocol backup file instead, so a session's measurements are
// never lost.
package telemetry

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/lifeweave/lifeweave/pkg/core"
)

const bucketRetention = 60 * 60 * 24 * 90 // seconds; 90 days

// DefaultBucketNames are the buckets the manager writes into.
var DefaultBucketNames = []string{
	"scene_compute",
	"store_activity",
	"app_performance",
}

// Manager owns the Influx client, one async writer per bucket, and the
// gzip backup writer used when the server is down.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		BucketNames: DefaultBucketNames,
		Logger:      log,
		BackupPath:  backupPath,
	}
}

// Connect builds the client and pings it. An unreachable server is not
// an error: the manager switches to the backup file and stays usable.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	serverURL := fmt.Sprintf("%s://%s:%s",
		viper.GetString("influx.protocol"),
		viper.GetString("influx.host"),
		viper.GetString("influx.port"),
	)
	m.Client = influxdb2.NewClientWithOptions(
		serverURL,
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().SetBatchSize(2500).SetFlushInterval(1000),
	)

	if running, err := m.Client.Ping(context.Background()); err != nil || !running {
		m.IsValid = false
		if err := m.openBackup(); err != nil {
			return err
		}
		m.Logger.Warn().Msg("InfluxDB unreachable, points go to the backup file")
		return nil
	}

	if err := m.ensureOrgAndBuckets(); err != nil {
		return err
	}
	m.CreateWriters()
	m.IsValid = true
	m.Logger.Info().Msg("InfluxDB client initialized")
	return nil
}

// openBackup lazily creates the gzip line-protocol backup writer.
func (m *Manager) openBackup() error {
	if m.BackupWriter != nil {
		return nil
	}

	m.Logger.Info().Str("backupPath", m.BackupPath).Msg("Opening telemetry backup file")
	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %v", err)
	}
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

// ensureOrgAndBuckets creates the organization and any missing buckets,
// each with the standard retention.
func (m *Manager) ensureOrgAndBuckets() error {
	ctx := context.Background()
	orgName := viper.GetString("influx.org")
	orgsAPI := m.Client.OrganizationsAPI()

	if _, err := orgsAPI.FindOrganizationByName(ctx, orgName); err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		if _, err := orgsAPI.CreateOrganizationWithName(ctx, orgName); err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	org, err := orgsAPI.FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Error().Err(err).Str("org", orgName).Msg("Error getting organization")
		return err
	}

	bucketsAPI := m.Client.BucketsAPI()
	expire := domain.RetentionRuleTypeExpire
	for _, bucket := range m.BucketNames {
		if _, err := bucketsAPI.FindBucketByName(ctx, bucket); err == nil {
			continue
		}
		m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")
		_, err := bucketsAPI.CreateBucketWithName(ctx, org, bucket, domain.RetentionRule{
			Type:         &expire,
			EverySeconds: bucketRetention,
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
			return err
		}
	}
	return nil
}

// CreateWriters opens one async write API per bucket and drains each
// writer's error channel in the background.
func (m *Manager) CreateWriters() {
	orgName := viper.GetString("influx.org")
	for _, bucket := range m.BucketNames {
		writer := m.Client.WriteAPI(orgName, bucket)
		m.Writers[bucket] = writer
		go m.drainWriteErrors(bucket, writer.Errors())
	}
	m.Logger.Debug().Msg("InfluxDB writers initialized")
}

func (m *Manager) drainWriteErrors(bucket string, errCh <-chan error) {
	for writeErr := range errCh {
		m.Logger.Error().Err(writeErr).Str("bucket", bucket).
			Msg("Error sending data to InfluxDB")
	}
}

// WritePoint delivers the point to the bucket's async writer, or to the
// backup file when the client never came up.
func (m *Manager) WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error {
	if !m.IsValid {
		if m.BackupWriter == nil {
			return fmt.Errorf("influxDB client not initialized and backup writer not available")
		}
		line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
		if _, err := m.BackupWriter.Write([]byte(line + "\n")); err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %s", err)
		}
		return nil
	}

	writer, ok := m.Writers[bucket]
	if !ok {
		return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
	}
	writer.WritePoint(point)
	return nil
}

// SceneComputePoint builds a point for the scene_compute bucket from a
// finished scene and its compute duration.
func SceneComputePoint(scene core.Scene, elapsed time.Duration, cached bool) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("scene_compute").
		AddTag("tier", scene.Tier).
		AddTag("orientation", scene.Orientation.String()).
		AddTag("mode", scene.Mode.String()).
		AddField("revision", int64(scene.Revision)).
		AddField("bubbles", len(scene.Bubbles)).
		AddField("nodes", len(scene.Nodes)).
		AddField("paths", len(scene.Paths)).
		AddField("excludedEvents", scene.ExcludedEvents).
		AddField("durationMs", float64(elapsed.Microseconds())/1000.0).
		AddField("cached", cached).
		SetTime(scene.ComputedAt)
}

// StoreActivityPoint builds a point for the store_activity bucket.
func StoreActivityPoint(version uint64, eventCount int, at time.Time) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("store_activity").
		AddField("eventsVersion", int64(version)).
		AddField("eventCount", eventCount).
		SetTime(at)
}

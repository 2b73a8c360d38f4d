// Package database owns the GORM connection the event store runs on.
// Postgres is the primary target; when it cannot be reached the manager
// degrades to an in-memory SQLite database and flags the session for a
// disk dump at exit, so recording never blocks on infrastructure.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pragmas applied to every SQLite handle. The database is a scratch
// space that gets vacuumed to disk, so durability settings are traded
// for write speed.
var sqlitePragmas = []string{
	"PRAGMA user_version = 1;",
	"PRAGMA journal_mode = MEMORY;",
	"PRAGMA synchronous = OFF;",
	"PRAGMA cache_size = -32000;",
	"PRAGMA temp_store = MEMORY;",
}

// Manager holds the live GORM handle and the fallback state.
type Manager struct {
	DB    *gorm.DB
	SqlDB *sql.DB

	IsValid         bool
	ShouldSaveLocal bool
	SqliteFilePath  string

	Logger zerolog.Logger
}

// NewManager creates an unconnected manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{Logger: log}
}

// Connect tries Postgres first and degrades to in-memory SQLite when
// the open or the ping fails.
func (m *Manager) Connect() error {
	db, err := m.openPostgres()
	if err != nil {
		m.Logger.Error().Err(err).Msg("Failed to connect to Postgres DB, trying SQLite")
		return m.ConnectLocal()
	}
	m.DB = db

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %s", err)
	}
	m.SqlDB = sqlDB

	if err := sqlDB.Ping(); err != nil {
		m.Logger.Error().Err(err).Msg("Failed to validate connection, trying SQLite")
		return m.ConnectLocal()
	}

	sqlDB.SetMaxOpenConns(10)
	m.IsValid = true
	m.Logger.Info().Msg("Connected to database")
	return nil
}

// ConnectLocal opens the in-memory SQLite database directly, either as
// the explicit storage choice or as the Postgres fallback.
func (m *Manager) ConnectLocal() error {
	m.ShouldSaveLocal = true

	db, err := m.openSqlite("")
	if err != nil || db == nil {
		m.IsValid = false
		return fmt.Errorf("failed to get local SQLite DB: %s", err)
	}
	m.DB = db

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %s", err)
	}
	m.SqlDB = sqlDB

	m.IsValid = true
	return nil
}

func (m *Manager) openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)

	m.Logger.Debug().Msgf("Connecting to Postgres DB at '%s'", dsn)

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        1000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// openSqlite opens a SQLite database at path, or the shared in-memory
// one when path is empty, and applies the pragmas.
func (m *Manager) openSqlite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        1000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		m.IsValid = false
		return nil, err
	}

	if path == "" {
		m.Logger.Info().Msg("Using local SQLite DB in memory with disk dump at exit")
	} else {
		m.Logger.Info().Str("path", path).Msg("Using local SQLite DB")
	}

	for _, pragma := range sqlitePragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %s", err)
		}
	}
	return db, nil
}

// DumpMemoryToDisk vacuums the in-memory database into SqliteFilePath,
// replacing any previous dump.
func (m *Manager) DumpMemoryToDisk() error {
	if m.SqliteFilePath == "" {
		return fmt.Errorf("sqlite file path not set")
	}

	if _, err := os.Stat(m.SqliteFilePath); err == nil {
		if err := os.Remove(m.SqliteFilePath); err != nil {
			return fmt.Errorf("error removing existing DB file: %s", err)
		}
	}

	start := time.Now()
	if err := m.DB.Exec("VACUUM INTO 'file:" + m.SqliteFilePath + "';").Error; err != nil {
		return fmt.Errorf("error dumping memory DB to disk: %s", err)
	}

	m.Logger.Debug().Dur("duration", time.Since(start)).Msg("Dumped memory DB to disk")
	return nil
}

// GetBackupDBPaths lists the .db dumps accumulated in dataDir from
// earlier local sessions.
func GetBackupDBPaths(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		paths = append(paths, dataDir+"/"+entry.Name())
	}
	return paths, nil
}

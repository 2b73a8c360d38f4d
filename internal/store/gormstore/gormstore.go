package gormstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lifeweave/lifeweave/internal/database"
	"github.com/lifeweave/lifeweave/internal/store"
	"github.com/lifeweave/lifeweave/pkg/core"
)

const schemaVersion = 1

// Backend implements store.Backend on a GORM database.
type Backend struct {
	manager *database.Manager
	logger  zerolog.Logger

	mu      sync.Mutex
	version uint64
}

// New creates a GORM-backed event store on an already connected
// database manager.
func New(manager *database.Manager, logger zerolog.Logger) *Backend {
	return &Backend{
		manager: manager,
		logger:  logger.With().Str("component", "gormstore").Logger(),
	}
}

// Init migrates the schema and loads the persisted events version.
func (b *Backend) Init() error {
	if b.manager == nil || !b.manager.IsValid {
		return fmt.Errorf("database manager not connected")
	}

	if err := b.manager.DB.AutoMigrate(DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	var info StoreInfo
	err := b.manager.DB.First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		info = StoreInfo{SchemaVersion: schemaVersion}
		if err := b.manager.DB.Create(&info).Error; err != nil {
			return fmt.Errorf("failed to create store info: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to read store info: %w", err)
	}

	b.mu.Lock()
	b.version = info.EventsVersion
	b.mu.Unlock()

	b.logger.Info().Uint64("eventsVersion", info.EventsVersion).Msg("Store initialized")
	return nil
}

// Close releases the underlying SQL connection.
func (b *Backend) Close() error {
	if b.manager != nil && b.manager.SqlDB != nil {
		return b.manager.SqlDB.Close()
	}
	return nil
}

// Version returns the current events version.
func (b *Backend) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// persistVersionTx writes the next events version inside tx. The cached
// copy is only advanced after the transaction commits.
func persistVersionTx(tx *gorm.DB, next uint64) error {
	if err := tx.Model(&StoreInfo{}).Where("1 = 1").Update("events_version", next).Error; err != nil {
		return fmt.Errorf("failed to persist events version: %w", err)
	}
	return nil
}

// ListEvents returns all events ordered by resolved time, undated
// events last, ties broken by ID.
func (b *Backend) ListEvents() ([]core.TimelineEvent, error) {
	var records []EventRecord
	if err := b.manager.DB.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	out := make([]core.TimelineEvent, 0, len(records))
	for _, rec := range records {
		e, err := RecordToCore(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		ti, iok := out[i].When()
		tj, jok := out[j].When()
		if iok != jok {
			return iok
		}
		if iok && !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetEvent returns the event with the given ID.
func (b *Backend) GetEvent(id string) (core.TimelineEvent, error) {
	var rec EventRecord
	err := b.manager.DB.Where("event_id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.TimelineEvent{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return core.TimelineEvent{}, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return RecordToCore(rec)
}

// CountEvents returns the number of stored events.
func (b *Backend) CountEvents() (int, error) {
	var count int64
	if err := b.manager.DB.Model(&EventRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return int(count), nil
}

// PutEvent inserts or replaces an event and bumps the version.
func (b *Backend) PutEvent(e core.TimelineEvent) error {
	if e.ID == "" {
		return fmt.Errorf("%w: event has no ID", core.ErrInsufficientInput)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	rec := CoreToRecord(e)
	next := b.version + 1
	err := b.manager.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			UpdateAll: true,
		}).Create(&rec).Error
		if err != nil {
			return fmt.Errorf("failed to put event %s: %w", e.ID, err)
		}
		return persistVersionTx(tx, next)
	})
	if err == nil {
		b.version = next
	}
	return err
}

// DeleteEvent removes an event and bumps the version.
func (b *Backend) DeleteEvent(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.version + 1
	err := b.manager.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("event_id = ?", id).Delete(&EventRecord{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete event %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", store.ErrNotFound, id)
		}
		return persistVersionTx(tx, next)
	})
	if err == nil {
		b.version = next
	}
	return err
}

// ApplyMutation applies the change set in one transaction: every ID in
// Remove must exist and no added event may collide with a surviving
// one, otherwise the transaction rolls back.
func (b *Backend) ApplyMutation(m store.Mutation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.version + 1
	err := b.manager.DB.Transaction(func(tx *gorm.DB) error {
		removed := make(map[string]bool, len(m.Remove))
		for _, id := range m.Remove {
			var count int64
			if err := tx.Model(&EventRecord{}).Where("event_id = ?", id).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check event %s: %w", id, err)
			}
			if count == 0 {
				return fmt.Errorf("%w: cannot remove %s", store.ErrNotFound, id)
			}
			removed[id] = true
		}
		for _, e := range m.Add {
			if e.ID == "" {
				return fmt.Errorf("%w: added event has no ID", core.ErrInsufficientInput)
			}
			if removed[e.ID] {
				continue
			}
			var count int64
			if err := tx.Model(&EventRecord{}).Where("event_id = ?", e.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check event %s: %w", e.ID, err)
			}
			if count > 0 {
				return fmt.Errorf("added event %s collides with an existing event", e.ID)
			}
		}

		for _, id := range m.Remove {
			if err := tx.Where("event_id = ?", id).Delete(&EventRecord{}).Error; err != nil {
				return fmt.Errorf("failed to remove event %s: %w", id, err)
			}
		}
		for _, e := range m.Add {
			rec := CoreToRecord(e)
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to add event %s: %w", e.ID, err)
			}
		}
		return persistVersionTx(tx, next)
	})
	if err == nil {
		b.version = next
	}
	return err
}

// Package gormstore implements the event store on a GORM database,
// Postgres or SQLite depending on what the database manager connected
// to. Events map to a single table; nested structures travel as JSON
// columns.
package gormstore

import (
	"database/sql"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels is a list of all the structs exported here which
// represent tables in the database schema.
var DatabaseModels = []interface{}{
	&EventRecord{},
	&StoreInfo{},
}

// StoreInfo carries store-level metadata, one row per database.
type StoreInfo struct {
	gorm.Model
	SchemaVersion uint   `json:"schemaVersion"`
	EventsVersion uint64 `json:"eventsVersion"`
}

func (*StoreInfo) TableName() string {
	return "store_infos"
}

// EventRecord is the database row for a timeline event.
type EventRecord struct {
	gorm.Model
	EventID      string         `json:"eventId" gorm:"size:127;uniqueIndex:idx_event_id"`
	Type         string         `json:"type" gorm:"size:63;index:idx_event_type"`
	Title        string         `json:"title" gorm:"size:255"`
	Description  string         `json:"description"`
	Timestamp    sql.NullTime   `json:"timestamp" gorm:"index:idx_event_time"`
	FuzzyYear    sql.NullInt32  `json:"fuzzyYear"`
	FuzzyMonth   sql.NullInt32  `json:"fuzzyMonth"`
	FuzzyDay     sql.NullInt32  `json:"fuzzyDay"`
	Latitude     sql.NullFloat64 `json:"latitude"`
	Longitude    sql.NullFloat64 `json:"longitude"`
	Place        string         `json:"place" gorm:"size:255"`
	Assets       datatypes.JSON `json:"assets" gorm:"default:'[]'"`
	Tags         datatypes.JSON `json:"tags" gorm:"default:'[]'"`
	Participants datatypes.JSON `json:"participants" gorm:"default:'[]'"`
	Attrs        datatypes.JSON `json:"attrs" gorm:"default:'{}'"`
}

func (*EventRecord) TableName() string {
	return "event_records"
}

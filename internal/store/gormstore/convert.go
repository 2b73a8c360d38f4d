package gormstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/lifeweave/lifeweave/pkg/core"
)

// sliceToJSON converts any slice to datatypes.JSON for DB storage.
// A nil slice stores as an empty array, not JSON null.
func sliceToJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// CoreToRecord converts a core.TimelineEvent to a database EventRecord.
// core.TimelineEvent.ID maps to EventRecord.EventID.
func CoreToRecord(e core.TimelineEvent) EventRecord {
	rec := EventRecord{
		EventID:     e.ID,
		Type:        string(e.Type),
		Title:       e.Title,
		Description: e.Description,
	}

	if e.Timestamp != nil {
		rec.Timestamp = sql.NullTime{Time: e.Timestamp.UTC(), Valid: true}
	}
	if e.FuzzyDate != nil {
		rec.FuzzyYear = sql.NullInt32{Int32: int32(e.FuzzyDate.Year), Valid: true}
		if e.FuzzyDate.Month != 0 {
			rec.FuzzyMonth = sql.NullInt32{Int32: int32(e.FuzzyDate.Month), Valid: true}
		}
		if e.FuzzyDate.Day != 0 {
			rec.FuzzyDay = sql.NullInt32{Int32: int32(e.FuzzyDate.Day), Valid: true}
		}
	}
	if e.Location != nil {
		rec.Latitude = sql.NullFloat64{Float64: e.Location.Latitude, Valid: true}
		rec.Longitude = sql.NullFloat64{Float64: e.Location.Longitude, Valid: true}
		rec.Place = e.Location.Name
	}

	rec.Assets = sliceToJSON(e.Assets)
	rec.Tags = sliceToJSON(e.Tags)
	rec.Participants = sliceToJSON(e.ParticipantIDs)

	if len(e.Attrs) > 0 {
		if data, err := json.Marshal(e.Attrs); err == nil {
			rec.Attrs = datatypes.JSON(data)
		}
	}
	if rec.Attrs == nil {
		rec.Attrs = datatypes.JSON("{}")
	}

	return rec
}

// RecordToCore converts a database EventRecord back to a
// core.TimelineEvent.
func RecordToCore(rec EventRecord) (core.TimelineEvent, error) {
	e := core.TimelineEvent{
		ID:          rec.EventID,
		Type:        core.EventType(rec.Type),
		Title:       rec.Title,
		Description: rec.Description,
	}

	if rec.Timestamp.Valid {
		ts := rec.Timestamp.Time.UTC()
		e.Timestamp = &ts
	}
	if rec.FuzzyYear.Valid {
		fd := core.FuzzyDate{Year: int(rec.FuzzyYear.Int32)}
		if rec.FuzzyMonth.Valid {
			fd.Month = time.Month(rec.FuzzyMonth.Int32)
		}
		if rec.FuzzyDay.Valid {
			fd.Day = int(rec.FuzzyDay.Int32)
		}
		e.FuzzyDate = &fd
	}
	if rec.Latitude.Valid && rec.Longitude.Valid {
		e.Location = &core.Location{
			Name:      rec.Place,
			Latitude:  rec.Latitude.Float64,
			Longitude: rec.Longitude.Float64,
		}
	}

	if len(rec.Assets) > 0 {
		if err := json.Unmarshal(rec.Assets, &e.Assets); err != nil {
			return core.TimelineEvent{}, fmt.Errorf("event %s: bad assets column: %w", rec.EventID, err)
		}
	}
	if len(rec.Tags) > 0 {
		if err := json.Unmarshal(rec.Tags, &e.Tags); err != nil {
			return core.TimelineEvent{}, fmt.Errorf("event %s: bad tags column: %w", rec.EventID, err)
		}
	}
	if len(rec.Participants) > 0 {
		if err := json.Unmarshal(rec.Participants, &e.ParticipantIDs); err != nil {
			return core.TimelineEvent{}, fmt.Errorf("event %s: bad participants column: %w", rec.EventID, err)
		}
	}
	if len(rec.Attrs) > 0 && string(rec.Attrs) != "{}" {
		if err := json.Unmarshal(rec.Attrs, &e.Attrs); err != nil {
			return core.TimelineEvent{}, fmt.Errorf("event %s: bad attrs column: %w", rec.EventID, err)
		}
	}

	return e, nil
}

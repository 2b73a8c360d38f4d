// Package core defines the plain domain types shared by the aggregation,
// layout, and flow engines. Types here carry no behavior beyond small
// accessors; the engines read them, the store owns them.
package core

import "time"

// PersonID identifies a participant across events.
type PersonID string

// EventType is the closed set of event categories.
type EventType string

const (
	EventPhoto           EventType = "photo"
	EventVideo           EventType = "video"
	EventMilestone       EventType = "milestone"
	EventText            EventType = "text"
	EventLocation        EventType = "location"
	EventGeneral         EventType = "general"
	EventPhotoBurst      EventType = "photo_burst"
	EventPhotoCollection EventType = "photo_collection"
)

// AssetType classifies a media asset.
type AssetType string

const (
	AssetPhoto    AssetType = "photo"
	AssetVideo    AssetType = "video"
	AssetAudio    AssetType = "audio"
	AssetDocument AssetType = "document"
)

// MediaAsset is one media item attached to an event.
// At most one asset per event has IsKeyAsset set.
type MediaAsset struct {
	ID         string    `json:"id"`
	Type       AssetType `json:"type"`
	LocalPath  string    `json:"localPath,omitempty"`
	CloudURL   string    `json:"cloudUrl,omitempty"`
	IsKeyAsset bool      `json:"isKeyAsset,omitempty"`
}

// Location is a named coordinate in WGS84 degrees.
type Location struct {
	Name      string  `json:"name,omitempty"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// TimelineEvent is one dated life event. Exactly one of Timestamp and
// FuzzyDate should be set; an event with neither cannot be placed on a
// timeline and is excluded from derived views.
type TimelineEvent struct {
	ID             string       `json:"id"`
	Timestamp      *time.Time   `json:"timestamp,omitempty"`
	FuzzyDate      *FuzzyDate   `json:"fuzzyDate,omitempty"`
	Type           EventType    `json:"type"`
	Title          string       `json:"title,omitempty"`
	Description    string       `json:"description,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	Assets         []MediaAsset `json:"assets,omitempty"`
	Location       *Location    `json:"location,omitempty"`
	ParticipantIDs []PersonID   `json:"participantIds,omitempty"`
	Attrs          Attrs        `json:"attrs,omitempty"`
}

// When returns the instant used for ordering and bucketing: the precise
// timestamp when present, otherwise the fuzzy date's resolved midpoint.
// ok is false when the event has neither.
func (e *TimelineEvent) When() (t time.Time, ok bool) {
	if e.Timestamp != nil {
		return *e.Timestamp, true
	}
	if e.FuzzyDate != nil {
		return e.FuzzyDate.Resolve(), true
	}
	return time.Time{}, false
}

// KeyAsset returns the designated key asset, if any.
func (e *TimelineEvent) KeyAsset() (MediaAsset, bool) {
	for _, a := range e.Assets {
		if a.IsKeyAsset {
			return a, true
		}
	}
	return MediaAsset{}, false
}

// HasParticipant reports whether id appears in ParticipantIDs.
func (e *TimelineEvent) HasParticipant(id PersonID) bool {
	for _, p := range e.ParticipantIDs {
		if p == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Engines use it to keep mutation operations
// pure with respect to their inputs.
func (e *TimelineEvent) Clone() TimelineEvent {
	out := *e
	if e.Timestamp != nil {
		ts := *e.Timestamp
		out.Timestamp = &ts
	}
	if e.FuzzyDate != nil {
		fd := *e.FuzzyDate
		out.FuzzyDate = &fd
	}
	if e.Location != nil {
		loc := *e.Location
		out.Location = &loc
	}
	out.Tags = append([]string(nil), e.Tags...)
	out.Assets = append([]MediaAsset(nil), e.Assets...)
	out.ParticipantIDs = append([]PersonID(nil), e.ParticipantIDs...)
	if e.Attrs != nil {
		out.Attrs = make(Attrs, len(e.Attrs))
		for k, v := range e.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

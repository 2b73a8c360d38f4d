package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lifeweave/lifeweave/internal/store"
	"github.com/lifeweave/lifeweave/pkg/core"
)

// Demo data pools. Locations carry real-world coordinates so the map
// clustering path has something to chew on.
var (
	demoPeople = []core.PersonID{
		"p-alex", "p-sam", "p-jordan", "p-riley", "p-casey",
		"p-morgan", "p-taylor", "p-quinn",
	}

	demoTitles = []string{
		"Beach day", "Birthday dinner", "First day at new job",
		"Road trip", "Hiking at the ridge", "Family reunion",
		"Concert night", "Moved into the new flat", "Graduation",
		"Weekend in the mountains", "Picnic in the park",
		"Museum visit", "New year's party", "Farmers market run",
		"Bike ride along the river", "Camping trip",
	}

	demoDescriptions = []string{
		"",
		"",
		"A day worth remembering.",
		"Everyone made it this time.",
		"Weather could not have been better.",
		"Should have brought more snacks.",
	}

	demoTags = []string{
		"family", "friends", "travel", "work", "outdoors",
		"food", "music", "milestone", "holiday",
	}

	demoLocations = []core.Location{
		{Name: "Lisbon", Latitude: 38.7223, Longitude: -9.1393},
		{Name: "Berlin", Latitude: 52.5200, Longitude: 13.4050},
		{Name: "Kyoto", Latitude: 35.0116, Longitude: 135.7681},
		{Name: "Vancouver", Latitude: 49.2827, Longitude: -123.1207},
		{Name: "Cape Town", Latitude: -33.9249, Longitude: 18.4241},
		{Name: "Reykjavik", Latitude: 64.1466, Longitude: -21.9426},
		{Name: "Oaxaca", Latitude: 17.0732, Longitude: -96.7266},
	}

	demoEventTypes = []core.EventType{
		core.EventPhoto, core.EventPhoto, core.EventPhoto,
		core.EventVideo, core.EventText, core.EventLocation,
		core.EventMilestone, core.EventGeneral,
	}
)

// GenerateDemoEvents builds n synthetic timeline events spread over the
// last ten years. Roughly one in eight gets a fuzzy date instead of a
// precise timestamp, and about a third carry a location.
func GenerateDemoEvents(n int, seed int64) []core.TimelineEvent {
	rng := rand.New(rand.NewSource(seed))
	start := time.Now().AddDate(-10, 0, 0)
	spanDays := int(time.Since(start).Hours() / 24)

	events := make([]core.TimelineEvent, 0, n)
	for i := 0; i < n; i++ {
		e := core.TimelineEvent{
			ID:    fmt.Sprintf("demo-%04d", i),
			Type:  demoEventTypes[rng.Intn(len(demoEventTypes))],
			Title: demoTitles[rng.Intn(len(demoTitles))],
		}

		day := start.AddDate(0, 0, rng.Intn(spanDays))
		if rng.Intn(8) == 0 {
			fd := core.FuzzyDate{Year: day.Year()}
			if rng.Intn(2) == 0 {
				fd.Month = day.Month()
			}
			e.FuzzyDate = &fd
		} else {
			ts := day.Add(time.Duration(rng.Intn(24*60)) * time.Minute).UTC()
			e.Timestamp = &ts
		}

		if desc := demoDescriptions[rng.Intn(len(demoDescriptions))]; desc != "" {
			e.Description = desc
		}

		for _, tag := range demoTags {
			if rng.Intn(5) == 0 {
				e.Tags = append(e.Tags, tag)
			}
		}

		if rng.Intn(3) == 0 {
			loc := demoLocations[rng.Intn(len(demoLocations))]
			// jitter so events in the same city don't stack exactly
			loc.Latitude += (rng.Float64() - 0.5) * 0.05
			loc.Longitude += (rng.Float64() - 0.5) * 0.05
			e.Location = &loc
		}

		for _, p := range demoPeople {
			if rng.Intn(4) == 0 {
				e.ParticipantIDs = append(e.ParticipantIDs, p)
			}
		}

		if e.Type == core.EventPhoto || e.Type == core.EventVideo {
			assetType := core.AssetPhoto
			if e.Type == core.EventVideo {
				assetType = core.AssetVideo
			}
			count := 1 + rng.Intn(4)
			for a := 0; a < count; a++ {
				e.Assets = append(e.Assets, core.MediaAsset{
					ID:        fmt.Sprintf("demo-%04d-a%d", i, a),
					Type:      assetType,
					LocalPath: fmt.Sprintf("/media/demo/%04d_%d.jpg", i, a),
				})
			}
			e.Assets[rng.Intn(count)].IsKeyAsset = true
		}

		events = append(events, e)
	}
	return events
}

// seedDemoEvents writes generated events into the store.
func seedDemoEvents(backend store.Backend, n int, seed int64) error {
	for _, e := range GenerateDemoEvents(n, seed) {
		if err := backend.PutEvent(e); err != nil {
			return fmt.Errorf("putting demo event %s: %w", e.ID, err)
		}
	}
	return nil
}

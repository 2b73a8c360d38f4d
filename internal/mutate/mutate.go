// Package mutate implements manual reclustering of the event set:
// merging events, splitting an event by its assets, and designating a
// key asset. All operations are pure in-memory transforms; on failure
// the inputs are untouched and no partial result escapes.
package mutate

import (
	"fmt"
	"sort"

	"github.com/lifeweave/lifeweave/pkg/core"
)

// MergeEvents combines two or more events into one. The earliest
// timestamp wins, assets are concatenated with de-duplication by asset
// ID, tags are unioned preserving first-appearance order, and the
// event type is the chronological majority. The merged event keeps the
// ID, title, and description of the earliest input.
func MergeEvents(events []core.TimelineEvent) (core.TimelineEvent, error) {
	if len(events) < 2 {
		return core.TimelineEvent{}, fmt.Errorf("%w: merge needs at least 2 events, got %d",
			core.ErrInsufficientInput, len(events))
	}

	ordered := make([]core.TimelineEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, iok := ordered[i].When()
		tj, jok := ordered[j].When()
		if iok != jok {
			return iok // dated events sort ahead of undated ones
		}
		return ti.Before(tj)
	})

	merged := ordered[0].Clone()
	merged.Type = majorityType(ordered)

	seenAssets := make(map[string]bool, len(merged.Assets))
	for _, a := range merged.Assets {
		seenAssets[a.ID] = true
	}
	seenTags := make(map[string]bool, len(merged.Tags))
	for _, tg := range merged.Tags {
		seenTags[tg] = true
	}
	seenPeople := make(map[core.PersonID]bool, len(merged.ParticipantIDs))
	for _, p := range merged.ParticipantIDs {
		seenPeople[p] = true
	}

	for _, e := range ordered[1:] {
		for _, a := range e.Assets {
			if seenAssets[a.ID] {
				continue
			}
			seenAssets[a.ID] = true
			merged.Assets = append(merged.Assets, a)
		}
		for _, tg := range e.Tags {
			if seenTags[tg] {
				continue
			}
			seenTags[tg] = true
			merged.Tags = append(merged.Tags, tg)
		}
		for _, p := range e.ParticipantIDs {
			if seenPeople[p] {
				continue
			}
			seenPeople[p] = true
			merged.ParticipantIDs = append(merged.ParticipantIDs, p)
		}
	}

	enforceSingleKeyAsset(&merged)
	return merged, nil
}

// majorityType picks the most common event type among the already
// chronologically ordered inputs; ties go to the type seen first.
func majorityType(ordered []core.TimelineEvent) core.EventType {
	counts := make(map[core.EventType]int)
	var firstSeen []core.EventType
	for _, e := range ordered {
		if counts[e.Type] == 0 {
			firstSeen = append(firstSeen, e.Type)
		}
		counts[e.Type]++
	}
	var (
		best      core.EventType
		bestCount int
	)
	for _, et := range firstSeen {
		if counts[et] > bestCount {
			best = et
			bestCount = counts[et]
		}
	}
	return best
}

// enforceSingleKeyAsset clears extra key-asset flags, keeping the
// first. Merging two events that each had a key asset would otherwise
// break the at-most-one invariant.
func enforceSingleKeyAsset(e *core.TimelineEvent) {
	found := false
	for i := range e.Assets {
		if !e.Assets[i].IsKeyAsset {
			continue
		}
		if found {
			e.Assets[i].IsKeyAsset = false
		}
		found = true
	}
}

// SplitEvent splits an event into one child per asset group. The
// groups must be non-empty and partition the event's assets exactly:
// every asset in exactly one group, nothing missing, nothing invented.
// A single group is a valid (if trivial) partition and yields one
// child. Children inherit the parent's metadata; child IDs are derived
// from the parent's.
func SplitEvent(event core.TimelineEvent, assetGroups [][]core.MediaAsset) ([]core.TimelineEvent, error) {
	if len(assetGroups) == 0 {
		return nil, fmt.Errorf("%w: split needs at least one asset group",
			core.ErrInsufficientInput)
	}

	owned := make(map[string]bool, len(event.Assets))
	for _, a := range event.Assets {
		owned[a.ID] = true
	}

	claimed := make(map[string]bool, len(event.Assets))
	for gi, group := range assetGroups {
		if len(group) == 0 {
			return nil, fmt.Errorf("%w: group %d is empty", core.ErrInvalidPartition, gi)
		}
		for _, a := range group {
			if !owned[a.ID] {
				return nil, fmt.Errorf("%w: asset %q does not belong to event %q",
					core.ErrInvalidPartition, a.ID, event.ID)
			}
			if claimed[a.ID] {
				return nil, fmt.Errorf("%w: asset %q appears in more than one group",
					core.ErrInvalidPartition, a.ID)
			}
			claimed[a.ID] = true
		}
	}
	if len(claimed) != len(event.Assets) {
		return nil, fmt.Errorf("%w: %d of %d assets unassigned",
			core.ErrInvalidPartition, len(event.Assets)-len(claimed), len(event.Assets))
	}

	children := make([]core.TimelineEvent, 0, len(assetGroups))
	for gi, group := range assetGroups {
		child := event.Clone()
		child.ID = fmt.Sprintf("%s-split-%d", event.ID, gi+1)
		child.Assets = append([]core.MediaAsset(nil), group...)
		enforceSingleKeyAsset(&child)
		children = append(children, child)
	}
	return children, nil
}

// UpdateKeyAsset returns a copy of the event with the given asset as
// its sole key asset. The asset must belong to the event.
func UpdateKeyAsset(event core.TimelineEvent, asset core.MediaAsset) (core.TimelineEvent, error) {
	found := false
	for _, a := range event.Assets {
		if a.ID == asset.ID {
			found = true
			break
		}
	}
	if !found {
		return core.TimelineEvent{}, fmt.Errorf("%w: asset %q not found on event %q",
			core.ErrInsufficientInput, asset.ID, event.ID)
	}

	updated := event.Clone()
	for i := range updated.Assets {
		updated.Assets[i].IsKeyAsset = updated.Assets[i].ID == asset.ID
	}
	return updated, nil
}

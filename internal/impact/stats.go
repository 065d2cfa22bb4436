package impact

import "time"

// AnonymousActor is the bucket for entries recorded with no actor id.
const AnonymousActor = "anonymous"

// Statistics is derived from a slice of history entries. It reflects only
// the entries it was given; callers feeding in a truncated List see
// statistics over that window, not over the whole ledger.
type Statistics struct {
	TotalChanges          int            `json:"totalChanges"`
	ChangesByActor        map[string]int `json:"changesByActor"`
	AverageChangeInterval time.Duration  `json:"averageChangeInterval"`
	MostChangedField      string         `json:"mostChangedField,omitempty"`
}

func ComputeStatistics(entries []Entry) Statistics {
	stats := Statistics{
		TotalChanges:   len(entries),
		ChangesByActor: map[string]int{},
	}
	if len(entries) == 0 {
		return stats
	}

	for _, entry := range entries {
		actor := entry.ActorID
		if actor == "" {
			actor = AnonymousActor
		}
		stats.ChangesByActor[actor]++
	}

	if len(entries) > 1 {
		var total time.Duration
		for i := 1; i < len(entries); i++ {
			delta := entries[i-1].Timestamp.Sub(entries[i].Timestamp)
			if delta < 0 {
				delta = -delta
			}
			total += delta
		}
		stats.AverageChangeInterval = total / time.Duration(len(entries)-1)
	}

	fieldChanges := map[string]int{}
	for _, entry := range entries {
		for _, field := range FieldOrder {
			if entry.Before.Field(field) != entry.After.Field(field) {
				fieldChanges[field]++
			}
		}
	}
	best := 0
	for _, field := range FieldOrder {
		if fieldChanges[field] > best {
			best = fieldChanges[field]
			stats.MostChangedField = field
		}
	}
	return stats
}

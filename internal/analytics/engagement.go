package analytics

import (
	"sort"
	"time"

	"hottakes/internal/model"
)

// HourlyActivity aggregates vote interactions into per-hour buckets.
func HourlyActivity(entries []model.VoteInteraction) map[time.Time]map[model.VoteType]int {
	buckets := make(map[time.Time]map[model.VoteType]int)
	for _, e := range entries {
		ts := e.Time()
		if ts.IsZero() {
			continue
		}
		key := ts.UTC().Truncate(time.Hour)
		if _, ok := buckets[key]; !ok {
			buckets[key] = make(map[model.VoteType]int)
		}
		buckets[key][e.VoteType]++
	}
	return buckets
}

// SortedBucketKeys returns sorted hour keys.
func SortedBucketKeys(m map[time.Time]map[model.VoteType]int) []time.Time {
	keys := make([]time.Time, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}

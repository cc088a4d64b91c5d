package history

import (
	"github.com/montanaflynn/stats"
)

// Stats aggregates a set of records.
type Stats struct {
	Runs           int            `json:"runs"`
	Errors         int            `json:"errors"`
	Commands       map[string]int `json:"commands"`
	MeanDurationMs float64        `json:"mean_duration_ms"`
	P90DurationMs  float64        `json:"p90_duration_ms"`
	ShopItems      int            `json:"shop_items"`
	NewsItems      int            `json:"news_items"`
}

// Summarize counts runs per command and computes duration statistics.
func Summarize(records []Record) Stats {
	s := Stats{Commands: make(map[string]int)}
	durations := make(stats.Float64Data, 0, len(records))

	for _, r := range records {
		s.Runs++
		s.Commands[r.Command]++
		if r.Status == StatusError {
			s.Errors++
		}
		s.ShopItems += r.ShopItems
		s.NewsItems += r.NewsItems
		durations = append(durations, float64(r.DurationMs))
	}

	if len(durations) > 0 {
		s.MeanDurationMs, _ = durations.Mean()
		s.P90DurationMs, _ = durations.Percentile(90)
	}
	return s
}

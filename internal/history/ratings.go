package history

import (
	"strings"
	"time"

	"github.com/stellarlinkco/promptvault/internal/prompt"
	"github.com/stellarlinkco/promptvault/internal/store"
)

// ApplyRating upserts a user's rating on the record: a user has at
// most one rating and a re-rate replaces it in place.
func ApplyRating(r *prompt.Record, user string, score int, note string, at time.Time) error {
	user = strings.TrimSpace(user)
	if user == "" {
		return prompt.Validationf("rating user is required")
	}
	if score < 1 || score > 5 {
		return prompt.Validationf("rating score must be between 1 and 5, got %d", score)
	}

	rating := prompt.Rating{User: user, Score: score, Note: note, CreatedAt: at.UTC()}
	for i, existing := range r.History.Ratings {
		if existing.User == user {
			r.History.Ratings[i] = rating
			return nil
		}
	}
	r.History.Ratings = append(r.History.Ratings, rating)
	return nil
}

// RatingSummary aggregates a record's ratings.
type RatingSummary struct {
	Count        int         `json:"count"`
	Average      float64     `json:"average"`
	Distribution map[int]int `json:"distribution"`
}

// SummarizeRatings computes count, mean and per-score distribution.
// The distribution always carries all five buckets.
func SummarizeRatings(ratings []prompt.Rating) RatingSummary {
	summary := RatingSummary{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	total := 0
	for _, r := range ratings {
		if r.Score < 1 || r.Score > 5 {
			continue
		}
		summary.Count++
		summary.Distribution[r.Score]++
		total += r.Score
	}
	if summary.Count > 0 {
		summary.Average = float64(total) / float64(summary.Count)
	}
	return summary
}

// RunStats aggregates recorded executions of a prompt.
type RunStats struct {
	Total        int     `json:"total"`
	Succeeded    int     `json:"succeeded"`
	SuccessRate  float64 `json:"success_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// SummarizeRuns computes the success rate and mean latency across
// run logs.
func SummarizeRuns(logs []*store.RunLog) RunStats {
	stats := RunStats{}
	var latency int64
	for _, l := range logs {
		if l == nil {
			continue
		}
		stats.Total++
		if l.Success {
			stats.Succeeded++
		}
		latency += l.LatencyMs
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Succeeded) / float64(stats.Total)
		stats.AvgLatencyMs = float64(latency) / float64(stats.Total)
	}
	return stats
}

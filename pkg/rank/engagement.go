package rank

import (
	"math"
	"sort"
	"time"
)

// EngagementStats is the per-document usage record behind the "top hits"
// listing: view count, accumulated dwell time, and the last view timestamp.
type EngagementStats struct {
	DocID        string    `json:"doc_id"`
	Views        int       `json:"views"`
	DwellSeconds float64   `json:"dwell_seconds"`
	LastViewed   time.Time `json:"last_viewed"`
}

// DocumentEngagement is an engagement record with its computed score.
type DocumentEngagement struct {
	EngagementStats
	Score float64 `json:"score"`
}

// EngagementScore combines dwell time, view recency, and view count into one
// [0,1] score. Dwell saturates at five minutes, recency decays over one week,
// and views saturate at ten.
func EngagementScore(stats EngagementStats, now time.Time) float64 {
	dwellScore := math.Min(stats.DwellSeconds/300, 1)

	recencyScore := 0.0
	if !stats.LastViewed.IsZero() {
		hours := now.Sub(stats.LastViewed).Hours()
		recencyScore = math.Max(0, 1-hours/168)
	}

	viewScore := math.Min(float64(stats.Views)/10, 1)

	return round3(0.4*dwellScore + 0.3*recencyScore + 0.3*viewScore)
}

// RankEngagement scores every record and returns them best first. The sort
// is stable, so equally scored documents keep their input order.
func RankEngagement(stats []EngagementStats, now time.Time) []DocumentEngagement {
	ranked := make([]DocumentEngagement, 0, len(stats))
	for _, s := range stats {
		ranked = append(ranked, DocumentEngagement{
			EngagementStats: s,
			Score:           EngagementScore(s, now),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// TopHits returns the limit highest-scoring documents.
func TopHits(stats []EngagementStats, limit int, now time.Time) []DocumentEngagement {
	ranked := RankEngagement(stats, now)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

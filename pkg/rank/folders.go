package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/loomlite/backend/pkg/common"
)

// SortMode selects how the items inside a semantic folder are ordered.
type SortMode string

const (
	// SortAuto orders by the adaptive composite score, best first.
	SortAuto SortMode = "auto"
	// SortAlphabetical orders by label, case-insensitive.
	SortAlphabetical SortMode = "alphabetical"
	// SortRecency orders by creation time, newest first.
	SortRecency SortMode = "recency"
)

// ParseSortMode maps a request parameter to a SortMode, defaulting to auto
// for unknown values.
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortAlphabetical:
		return SortAlphabetical
	case SortRecency:
		return SortRecency
	default:
		return SortAuto
	}
}

// FolderItem is one concept inside a folder listing together with its
// relation count, which the scorer needs but the concept itself does not
// carry. Score is populated by OrderFolderItems in auto mode.
type FolderItem struct {
	Concept       common.Concept `json:"concept"`
	RelationCount int            `json:"relation_count"`
	Score         float64        `json:"score,omitempty"`
}

// OrderFolderItems sorts the folder's items according to mode. Auto mode
// computes and records the adaptive score per item. All sorts are stable, so
// items with equal keys keep their input order.
func OrderFolderItems(items []FolderItem, mode SortMode, w Weights, now time.Time) []FolderItem {
	ordered := make([]FolderItem, len(items))
	copy(ordered, items)

	switch mode {
	case SortAlphabetical:
		sort.SliceStable(ordered, func(i, j int) bool {
			return strings.ToLower(ordered[i].Concept.Label) < strings.ToLower(ordered[j].Concept.Label)
		})
	case SortRecency:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Concept.CreatedAt.After(ordered[j].Concept.CreatedAt)
		})
	default:
		for i := range ordered {
			c := ordered[i].Concept
			ordered[i].Score = AdaptiveScore(
				c.Confidence, ordered[i].RelationCount, c.CreatedAt, c.HierarchyLevel, w, now,
			)
		}
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Score > ordered[j].Score
		})
	}

	return ordered
}

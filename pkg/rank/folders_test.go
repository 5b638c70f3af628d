package rank

import (
	"testing"
	"time"

	"github.com/loomlite/backend/pkg/common"
)

func TestParseSortMode(t *testing.T) {
	tests := []struct {
		in   string
		want SortMode
	}{
		{"auto", SortAuto},
		{"alphabetical", SortAlphabetical},
		{"recency", SortRecency},
		{" Recency ", SortRecency},
		{"", SortAuto},
		{"bogus", SortAuto},
	}
	for _, tt := range tests {
		if got := ParseSortMode(tt.in); got != tt.want {
			t.Errorf("ParseSortMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func folderFixtures(now time.Time) []FolderItem {
	return []FolderItem{
		{
			Concept: common.Concept{
				ID: "old", Label: "zeta", Confidence: 0.4,
				HierarchyLevel: 3, CreatedAt: now.AddDate(-1, 0, 0),
			},
			RelationCount: 1,
		},
		{
			Concept: common.Concept{
				ID: "fresh", Label: "Alpha", Confidence: 0.9,
				HierarchyLevel: 1, CreatedAt: now,
			},
			RelationCount: 10,
		},
		{
			Concept: common.Concept{
				ID: "mid", Label: "beta", Confidence: 0.6,
				HierarchyLevel: 2, CreatedAt: now.AddDate(0, -6, 0),
			},
			RelationCount: 4,
		},
	}
}

func TestOrderFolderItemsAuto(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items := folderFixtures(now)

	ordered := OrderFolderItems(items, SortAuto, DefaultWeights(), now)

	if ordered[0].Concept.ID != "fresh" {
		t.Errorf("first item = %s, want fresh", ordered[0].Concept.ID)
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Score > ordered[i-1].Score {
			t.Errorf("items not in descending score order: %v then %v",
				ordered[i-1].Score, ordered[i].Score)
		}
	}
	// Input slice is not mutated.
	if items[0].Concept.ID != "old" || items[0].Score != 0 {
		t.Error("OrderFolderItems mutated its input")
	}
}

func TestOrderFolderItemsAlphabetical(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ordered := OrderFolderItems(folderFixtures(now), SortAlphabetical, DefaultWeights(), now)

	want := []string{"Alpha", "beta", "zeta"}
	for i, label := range want {
		if ordered[i].Concept.Label != label {
			t.Errorf("position %d = %q, want %q", i, ordered[i].Concept.Label, label)
		}
	}
}

func TestOrderFolderItemsRecency(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ordered := OrderFolderItems(folderFixtures(now), SortRecency, DefaultWeights(), now)

	want := []string{"fresh", "mid", "old"}
	for i, id := range want {
		if ordered[i].Concept.ID != id {
			t.Errorf("position %d = %q, want %q", i, ordered[i].Concept.ID, id)
		}
	}
}

package rank

import (
	"math"
	"testing"

	"github.com/loomlite/backend/pkg/common"
)

func TestTermTitleScore(t *testing.T) {
	tests := []struct {
		name  string
		term  string
		title string
		want  float64
	}{
		{"exact match", "quarterly report", "quarterly report", 1.0},
		{"prefix match", "quarter", "quarterly report", 0.9},
		{"substring weighted by coverage and position", "report", "quarterly report", 0.7 * (6.0 / 16.0) * (1 - 10.0/16.0)},
		{"title word starts the term", "reports", "annual report", 0.6},
		{"subsequence fuzzy match", "qrt", "quarterly report", 0.3},
		{"no match", "zebra", "quarterly report", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := termTitleScore(tt.term, tt.title)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("termTitleScore(%q, %q) = %v, want %v", tt.term, tt.title, got, tt.want)
			}
		})
	}
}

func TestTitleMatchScoreSingleTermKeepsTier(t *testing.T) {
	// A single prefix term scores its tier unboosted, so it stays
	// distinguishable from an exact title match.
	prefix, _ := titleMatchScore([]string{"quarter"}, "Quarterly Report")
	if math.Abs(prefix-0.9) > 1e-9 {
		t.Errorf("single prefix term score = %v, want 0.9", prefix)
	}

	exact, _ := titleMatchScore([]string{"quarterly", "report"}, "Quarterly Report")
	if exact != 1.0 {
		t.Errorf("exact multi-term score = %v, want 1.0", exact)
	}
	if prefix >= exact {
		t.Errorf("prefix score %v should stay below exact score %v", prefix, exact)
	}
}

func TestTitleMatchScoreMultiTermBonus(t *testing.T) {
	// Two matched terms still earn the all-terms bonus over their bare
	// average. Terms are out of title order so the phrase tier stays low and
	// the boosted average wins.
	score, _ := titleMatchScore([]string{"budget", "annual"}, "Annual Budget Overview")
	avg := (termTitleScore("annual", "annual budget overview") +
		termTitleScore("budget", "annual budget overview")) / 2
	want := math.Min(avg*1.5, 1.0)
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("multi-term score = %v, want boosted average %v", score, want)
	}
	if score <= avg {
		t.Errorf("score %v should exceed unboosted average %v", score, avg)
	}
}

func TestIsSubsequence(t *testing.T) {
	tests := []struct {
		term  string
		title string
		want  bool
	}{
		{"qrt", "quarterly report", true},
		{"trq", "quarterly report", false},
		{"", "anything", false},
		{"abc", "a b c", true},
	}
	for _, tt := range tests {
		if got := isSubsequence(tt.term, tt.title); got != tt.want {
			t.Errorf("isSubsequence(%q, %q) = %v, want %v", tt.term, tt.title, got, tt.want)
		}
	}
}

func searchFixtures() ([]common.Document, []common.Concept) {
	documents := []common.Document{
		{ID: "d1", Title: "Machine Learning Basics"},
		{ID: "d2", Title: "Cooking With Gas"},
		{ID: "d3", Title: "Annual Budget"},
	}
	concepts := []common.Concept{
		{ID: "c1", DocID: "d1", Label: "Machine Learning", Type: "Technology", Confidence: 0.9},
		{ID: "c2", DocID: "d1", Label: "Neural Network", Type: "Technology", Confidence: 0.8},
		{ID: "c3", DocID: "d2", Label: "Gas Stove", Type: "Technology", Confidence: 0.7},
		{ID: "c4", DocID: "d3", Label: "Budget Forecast", Type: "Process", Confidence: 0.6},
	}
	return documents, concepts
}

func TestSearchEmptyQuery(t *testing.T) {
	documents, concepts := searchFixtures()

	for _, query := range []string{"", "   ", "\t"} {
		results := Search(query, documents, concepts, nil, SearchOptions{})
		if len(results) != 0 {
			t.Errorf("Search(%q) returned %d results, want 0", query, len(results))
		}
	}
}

func TestSearchExactTitleRanksFirst(t *testing.T) {
	documents, concepts := searchFixtures()

	results := Search("machine learning basics", documents, concepts, nil, SearchOptions{})
	if len(results) == 0 {
		t.Fatal("expected results for exact title query")
	}
	top := results[0]
	if top.Doc.ID != "d1" {
		t.Fatalf("top result = %s, want d1", top.Doc.ID)
	}
	if top.TitleScore != 1.0 {
		t.Errorf("title score = %v, want 1.0", top.TitleScore)
	}
	if top.MatchType != MatchTitle {
		t.Errorf("match type = %q, want %q", top.MatchType, MatchTitle)
	}
}

func TestSearchSemanticOnlyMatch(t *testing.T) {
	documents, concepts := searchFixtures()
	semantic := map[string]float64{"d3": 0.9}

	results := Search("zzzz", documents, concepts, semantic, SearchOptions{SemanticEnabled: true})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.Doc.ID != "d3" {
		t.Errorf("result doc = %s, want d3", r.Doc.ID)
	}
	if r.MatchType != MatchSemantic {
		t.Errorf("match type = %q, want %q", r.MatchType, MatchSemantic)
	}
	// 0.4*0 + 0.2*0 + 0.4*0.9
	if r.Score != 0.36 {
		t.Errorf("score = %v, want 0.36", r.Score)
	}
}

func TestSearchThresholdBoundary(t *testing.T) {
	// Titles share no letters with the query, so the title signal stays
	// at zero and the fused score is 0.4 times the concept confidence.
	documents := []common.Document{
		{ID: "in", Title: "Grocery List"},
		{ID: "out", Title: "Payroll Summary"},
	}
	concepts := []common.Concept{
		// 0.4 * 0.375 = 0.15, exactly at the inclusive threshold.
		{ID: "c1", DocID: "in", Label: "needle", Confidence: 0.375},
		// 0.4 * 0.37 = 0.148, just below.
		{ID: "c2", DocID: "out", Label: "needle", Confidence: 0.37},
	}

	results := Search("needle", documents, concepts, nil, SearchOptions{})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Doc.ID != "in" {
		t.Errorf("kept doc = %s, want the one at the threshold", results[0].Doc.ID)
	}
	if results[0].MatchType != MatchConcept {
		t.Errorf("match type = %q, want %q", results[0].MatchType, MatchConcept)
	}
}

func TestSearchFuzzyClassification(t *testing.T) {
	documents := []common.Document{
		{ID: "d1", Title: "Quarterly Report"},
	}

	// "qrt" only matches as a character subsequence.
	results := Search("qrt", documents, nil, nil, SearchOptions{})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].MatchType != MatchFuzzy {
		t.Errorf("match type = %q, want %q", results[0].MatchType, MatchFuzzy)
	}
}

func TestSearchTypeFilter(t *testing.T) {
	documents, concepts := searchFixtures()

	unfiltered := Search("budget", documents, concepts, nil, SearchOptions{})
	filtered := Search("budget", documents, concepts, nil, SearchOptions{Types: []string{"Technology"}})

	var unfilteredConceptScore, filteredConceptScore float64
	for _, r := range unfiltered {
		if r.Doc.ID == "d3" {
			unfilteredConceptScore = r.ConceptScore
		}
	}
	for _, r := range filtered {
		if r.Doc.ID == "d3" {
			filteredConceptScore = r.ConceptScore
		}
	}

	if unfilteredConceptScore != 0.6 {
		t.Errorf("unfiltered concept score = %v, want 0.6", unfilteredConceptScore)
	}
	if filteredConceptScore != 0 {
		t.Errorf("filtered concept score = %v, want 0 after type filter", filteredConceptScore)
	}
}

func TestSearchAttachesTopConcepts(t *testing.T) {
	documents := []common.Document{{ID: "d1", Title: "Glossary"}}
	concepts := make([]common.Concept, 0, 8)
	for i := 0; i < 8; i++ {
		concepts = append(concepts, common.Concept{
			ID:         string(rune('a' + i)),
			DocID:      "d1",
			Label:      "widget",
			Confidence: float64(i) / 10,
		})
	}

	results := Search("widget", documents, concepts, nil, SearchOptions{})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	attached := results[0].Concepts
	if len(attached) != 5 {
		t.Fatalf("attached %d concepts, want 5", len(attached))
	}
	for i := 1; i < len(attached); i++ {
		if attached[i].Confidence > attached[i-1].Confidence {
			t.Errorf("attached concepts not ordered by confidence: %v", attached)
		}
	}
	if attached[0].Confidence != 0.7 {
		t.Errorf("best attached confidence = %v, want 0.7", attached[0].Confidence)
	}
}

package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/loomlite/backend/pkg/common"
)

func TestTargetDepth(t *testing.T) {
	tests := []struct {
		name         string
		docLength    int
		conceptCount int
		clusterCount int
		want         int
	}{
		{"small document", 1000, 10, 2, 4},
		{"length boundary stays base", 2000, 10, 2, 4},
		{"length just above boundary", 2001, 10, 2, 5},
		{"medium document", 2500, 10, 2, 5},
		{"many concepts force depth five", 500, 41, 2, 5},
		{"long document forces depth six", 6000, 10, 2, 6},
		{"length boundary stays five", 5000, 10, 2, 5},
		{"many concepts force depth six", 500, 81, 2, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TargetDepth(tt.docLength, tt.conceptCount, tt.clusterCount)
			if got != tt.want {
				t.Errorf("TargetDepth(%d, %d, %d) = %d, want %d",
					tt.docLength, tt.conceptCount, tt.clusterCount, got, tt.want)
			}
		})
	}
}

func TestTitleCaseRelation(t *testing.T) {
	tests := []struct {
		name string
		rel  string
		want string
	}{
		{"snake case", "depends_on", "Depends On"},
		{"single word", "contains", "Contains"},
		{"already mixed case", "USES_api", "Uses Api"},
		{"multi-byte first rune", "ünterstützt", "Ünterstützt"},
		{"multi-byte snake case", "öffnet_tür", "Öffnet Tür"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titleCaseRelation(tt.rel)
			if got != tt.want {
				t.Errorf("titleCaseRelation(%q) = %q, want %q", tt.rel, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("titleCaseRelation(%q) produced invalid UTF-8: %q", tt.rel, got)
			}
		})
	}
}

func TestIsSynthesized(t *testing.T) {
	tests := []struct {
		name    string
		concept common.Concept
		want    bool
	}{
		{"topic node", common.Concept{ID: "cluster_d1_0", Type: TypeTopic}, true},
		{"refinement node", common.Concept{ID: "cluster_d1_0_ref_1", Type: TypeRefinement}, true},
		{"micro-concept id", common.Concept{ID: "c1_sub_0", Type: "Process"}, true},
		{"micro-concept double digits", common.Concept{ID: "c1_sub_12", Type: "Process"}, true},
		{"extracted concept", common.Concept{ID: "c1", Type: "Process"}, false},
		{"id merely containing sub marker", common.Concept{ID: "release_sub_system", Type: "Technology"}, false},
		{"sub marker without index", common.Concept{ID: "c1_sub_", Type: "Process"}, false},
		{"non-numeric index", common.Concept{ID: "c1_sub_0a", Type: "Process"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSynthesized(tt.concept); got != tt.want {
				t.Errorf("IsSynthesized(%q/%q) = %v, want %v", tt.concept.ID, tt.concept.Type, got, tt.want)
			}
		})
	}
}

func TestRelationGraphSkipsUnknownIDs(t *testing.T) {
	concepts := []common.Concept{
		{ID: "c1", Label: "A"},
		{ID: "c2", Label: "B"},
	}
	relations := []common.Relation{
		{ID: "r1", SourceID: "c1", Rel: "defines", TargetID: "c2"},
		{ID: "r2", SourceID: "c1", Rel: "defines", TargetID: "missing"},
		{ID: "r3", SourceID: "ghost", Rel: "contains", TargetID: "c2"},
	}

	g := NewRelationGraph(concepts, relations)

	if got := g.SkippedRelations(); got != 2 {
		t.Errorf("SkippedRelations() = %d, want 2", got)
	}
	if got := g.Degree("c1"); got != 1 {
		t.Errorf("Degree(c1) = %d, want 1", got)
	}
	if got := g.Degree("c2"); got != 1 {
		t.Errorf("Degree(c2) = %d, want 1", got)
	}
}

func TestRefinementGroupSizes(t *testing.T) {
	tests := []struct {
		members   int
		wantSizes []int
	}{
		{6, []int{3, 3}},
		{7, []int{3, 3, 1}},
		{9, []int{3, 3, 3}},
		{10, []int{4, 4, 2}},
		{20, []int{7, 7, 6}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d members", tt.members), func(t *testing.T) {
			members := make([]common.Concept, tt.members)
			for i := range members {
				members[i] = common.Concept{ID: fmt.Sprintf("c%d", i)}
			}
			g := NewRelationGraph(members, nil)

			groups := refinementGroups(members, g)

			sizes := make([]int, 0, len(groups))
			for _, grp := range groups {
				sizes = append(sizes, len(grp))
			}
			if !reflect.DeepEqual(sizes, tt.wantSizes) {
				t.Errorf("group sizes = %v, want %v", sizes, tt.wantSizes)
			}
		})
	}
}

func TestRefinementGroupsSortByDegree(t *testing.T) {
	members := []common.Concept{
		{ID: "low"}, {ID: "high"}, {ID: "mid"},
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}
	relations := []common.Relation{
		{ID: "r1", SourceID: "high", Rel: "mentions", TargetID: "a"},
		{ID: "r2", SourceID: "high", Rel: "mentions", TargetID: "b"},
		{ID: "r3", SourceID: "high", Rel: "mentions", TargetID: "c"},
		{ID: "r4", SourceID: "mid", Rel: "mentions", TargetID: "a"},
	}
	g := NewRelationGraph(members, relations)

	groups := refinementGroups(members, g)

	if len(groups) == 0 || groups[0][0].ID != "high" {
		t.Fatalf("expected highest-degree concept first, got groups %v", groups)
	}
	// "a" is the target of two relations, so it ranks second via its
	// reverse edges.
	if groups[0][1].ID != "a" {
		t.Errorf("expected second-highest degree concept second, got %q", groups[0][1].ID)
	}
}

func TestSynthesizeSubConcepts(t *testing.T) {
	parent := common.Concept{ID: "p1", DocID: "doc1", Label: "Pipeline", Type: "Process"}
	targets := []common.Concept{
		parent,
		{ID: "t1"}, {ID: "t2"}, {ID: "t3"}, {ID: "t4"}, {ID: "t5"}, {ID: "t6"},
	}
	relations := []common.Relation{
		{ID: "r1", SourceID: "p1", Rel: "depends_on", TargetID: "t1"},
		{ID: "r2", SourceID: "p1", Rel: "depends_on", TargetID: "t2"},
		{ID: "r3", SourceID: "p1", Rel: "produces", TargetID: "t3"},
		{ID: "r4", SourceID: "p1", Rel: "produces", TargetID: "t4"},
		{ID: "r5", SourceID: "p1", Rel: "contains", TargetID: "t5"},
		{ID: "r6", SourceID: "p1", Rel: "mentions", TargetID: "t6"},
	}
	g := NewRelationGraph(targets, relations)

	subs := synthesizeSubConcepts(parent, g, 3, 0.75)

	if len(subs) != 3 {
		t.Fatalf("got %d sub-concepts, want 3", len(subs))
	}
	// depends_on and produces tie at count 2 and sort lexically, then the
	// count-1 types follow, of which only the lexically first fits the cap.
	wantLabels := []string{
		"Pipeline - Depends On",
		"Pipeline - Produces",
		"Pipeline - Contains",
	}
	for i, sub := range subs {
		if sub.Label != wantLabels[i] {
			t.Errorf("sub[%d].Label = %q, want %q", i, sub.Label, wantLabels[i])
		}
		if sub.ParentConceptID != "p1" {
			t.Errorf("sub[%d].ParentConceptID = %q, want p1", i, sub.ParentConceptID)
		}
		if sub.Confidence != 0.75 {
			t.Errorf("sub[%d].Confidence = %v, want 0.75", i, sub.Confidence)
		}
		wantID := fmt.Sprintf("p1_sub_%d", i)
		if sub.ID != wantID {
			t.Errorf("sub[%d].ID = %q, want %q", i, sub.ID, wantID)
		}
	}
}

func TestEligibleForSubConcepts(t *testing.T) {
	complexTypes := map[string]struct{}{"Process": {}, "Technology": {}}
	concepts := []common.Concept{
		{ID: "busy", Type: "Person"},
		{ID: "quiet", Type: "Person"},
		{ID: "proc", Type: "Process"},
		{ID: "t1"}, {ID: "t2"}, {ID: "t3"},
	}
	relations := []common.Relation{
		{ID: "r1", SourceID: "busy", Rel: "mentions", TargetID: "t1"},
		{ID: "r2", SourceID: "busy", Rel: "mentions", TargetID: "t2"},
		{ID: "r3", SourceID: "busy", Rel: "mentions", TargetID: "t3"},
	}
	g := NewRelationGraph(concepts, relations)

	tests := []struct {
		id   string
		want bool
	}{
		{"busy", true},  // three outgoing relations
		{"quiet", false},
		{"proc", true}, // complex type, no relations needed
	}
	for _, tt := range tests {
		var c common.Concept
		for _, cand := range concepts {
			if cand.ID == tt.id {
				c = cand
			}
		}
		if got := eligibleForSubConcepts(c, g, complexTypes); got != tt.want {
			t.Errorf("eligibleForSubConcepts(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

// testDoc builds a document with two structural components and two
// singletons: c1..c3 linked by defines/contains, c4+c5 linked by supports,
// c6 and c7 isolated.
func testDoc() ([]common.Concept, []common.Relation) {
	concepts := []common.Concept{
		{ID: "c1", DocID: "doc1", Label: "Alpha", Type: "Definition", Confidence: 0.9},
		{ID: "c2", DocID: "doc1", Label: "Beta", Type: "Definition", Confidence: 0.8},
		{ID: "c3", DocID: "doc1", Label: "Gamma", Type: "Fact", Confidence: 0.7},
		{ID: "c4", DocID: "doc1", Label: "Delta", Type: "Fact", Confidence: 0.9},
		{ID: "c5", DocID: "doc1", Label: "Epsilon", Type: "Fact", Confidence: 0.6},
		{ID: "c6", DocID: "doc1", Label: "Zeta", Type: "Person", Confidence: 0.5},
		{ID: "c7", DocID: "doc1", Label: "Eta", Type: "Person", Confidence: 0.5},
	}
	relations := []common.Relation{
		{ID: "r1", DocID: "doc1", SourceID: "c1", Rel: "defines", TargetID: "c2"},
		{ID: "r2", DocID: "doc1", SourceID: "c2", Rel: "contains", TargetID: "c3"},
		{ID: "r3", DocID: "doc1", SourceID: "c4", Rel: "supports", TargetID: "c5"},
		{ID: "r4", DocID: "doc1", SourceID: "c1", Rel: "mentions", TargetID: "c5"},
	}
	return concepts, relations
}

func TestBuildHierarchyClusters(t *testing.T) {
	engine := NewEngine(NewEngineParams{})
	concepts, relations := testDoc()

	result, err := engine.BuildHierarchy(context.Background(), "doc1", concepts, relations, 1000)
	if err != nil {
		t.Fatalf("BuildHierarchy() error = %v", err)
	}

	if len(result.Clusters) != 3 {
		t.Fatalf("got %d clusters, want 3", len(result.Clusters))
	}
	if got := result.Clusters[0].MemberIDs; !reflect.DeepEqual(got, []string{"c1", "c2", "c3"}) {
		t.Errorf("cluster 0 members = %v, want [c1 c2 c3]", got)
	}
	if got := result.Clusters[1].MemberIDs; !reflect.DeepEqual(got, []string{"c4", "c5"}) {
		t.Errorf("cluster 1 members = %v, want [c4 c5]", got)
	}

	last := result.Clusters[2]
	if last.ID != "cluster_doc1_uncategorized" {
		t.Errorf("uncategorized cluster id = %q", last.ID)
	}
	if last.Label != UncategorizedLabel {
		t.Errorf("uncategorized cluster label = %q", last.Label)
	}
	if !reflect.DeepEqual(last.MemberIDs, []string{"c6", "c7"}) {
		t.Errorf("uncategorized members = %v, want [c6 c7]", last.MemberIDs)
	}

	// Every input concept appears exactly once in exactly one cluster.
	seen := make(map[string]int)
	for _, cl := range result.Clusters {
		for _, id := range cl.MemberIDs {
			seen[id]++
		}
	}
	for _, c := range concepts {
		if seen[c.ID] != 1 {
			t.Errorf("concept %s assigned to %d clusters, want 1", c.ID, seen[c.ID])
		}
	}

	// mentions is not structural and must not merge the two components.
	if result.TargetDepth != 4 {
		t.Errorf("TargetDepth = %d, want 4", result.TargetDepth)
	}
	if result.LevelCounts[1] != 3 {
		t.Errorf("level 1 count = %d, want 3 cluster nodes", result.LevelCounts[1])
	}
	if result.LevelCounts[2] != 7 {
		t.Errorf("level 2 count = %d, want 7 atomic concepts", result.LevelCounts[2])
	}
}

func TestBuildHierarchyFallbackLabels(t *testing.T) {
	engine := NewEngine(NewEngineParams{})
	concepts, relations := testDoc()

	result, err := engine.BuildHierarchy(context.Background(), "doc1", concepts, relations, 1000)
	if err != nil {
		t.Fatalf("BuildHierarchy() error = %v", err)
	}

	// Without a label provider, clusters fall back to their first member's
	// label.
	if got := result.Clusters[0].Label; got != "Alpha" {
		t.Errorf("cluster 0 label = %q, want Alpha", got)
	}
	if got := result.Clusters[1].Label; got != "Delta" {
		t.Errorf("cluster 1 label = %q, want Delta", got)
	}
}

func TestBuildHierarchyRefinement(t *testing.T) {
	// Nine concepts in one chain exceed the refinement threshold of five.
	concepts := make([]common.Concept, 9)
	relations := make([]common.Relation, 0, 8)
	for i := range concepts {
		concepts[i] = common.Concept{
			ID:    fmt.Sprintf("c%d", i),
			DocID: "doc1",
			Label: fmt.Sprintf("Concept %d", i),
			Type:  "Fact",
		}
		if i > 0 {
			relations = append(relations, common.Relation{
				ID:       fmt.Sprintf("r%d", i),
				SourceID: fmt.Sprintf("c%d", i-1),
				Rel:      "contains",
				TargetID: fmt.Sprintf("c%d", i),
			})
		}
	}

	engine := NewEngine(NewEngineParams{})
	result, err := engine.BuildHierarchy(context.Background(), "doc1", concepts, relations, 1000)
	if err != nil {
		t.Fatalf("BuildHierarchy() error = %v", err)
	}

	if result.LevelCounts[1] != 1 {
		t.Fatalf("level 1 count = %d, want 1", result.LevelCounts[1])
	}
	// Nine members split into three refinement groups of three.
	if result.LevelCounts[2] != 3 {
		t.Errorf("level 2 count = %d, want 3 refinement nodes", result.LevelCounts[2])
	}
	if result.LevelCounts[3] != 9 {
		t.Errorf("level 3 count = %d, want 9 atomic concepts", result.LevelCounts[3])
	}

	var refs []common.Concept
	for _, c := range result.Concepts {
		if c.Type == TypeRefinement {
			refs = append(refs, c)
		}
	}
	for i, ref := range refs {
		wantID := fmt.Sprintf("cluster_doc1_0_ref_%d", i)
		if ref.ID != wantID {
			t.Errorf("refinement id = %q, want %q", ref.ID, wantID)
		}
		if ref.ParentClusterID != "cluster_doc1_0" {
			t.Errorf("refinement parent cluster = %q", ref.ParentClusterID)
		}
		// Fallback label is derived from the cluster label.
		if want := "Concept 0 - Refinement"; ref.Label != want {
			t.Errorf("refinement label = %q, want %q", ref.Label, want)
		}
	}

	// Atomic concepts in a refined cluster point at their refinement node.
	for _, c := range result.Concepts {
		if c.HierarchyLevel != 3 {
			continue
		}
		if c.ParentConceptID == "" {
			t.Errorf("atomic concept %s has no refinement parent", c.ID)
		}
		if c.ParentClusterID != "cluster_doc1_0" {
			t.Errorf("atomic concept %s cluster = %q", c.ID, c.ParentClusterID)
		}
	}
}

func TestBuildHierarchySubConceptsRequireDepthFive(t *testing.T) {
	concepts := []common.Concept{
		{ID: "p1", DocID: "doc1", Label: "Pipeline", Type: "Process"},
		{ID: "t1", DocID: "doc1", Label: "Step 1", Type: "Fact"},
	}
	relations := []common.Relation{
		{ID: "r1", SourceID: "p1", Rel: "contains", TargetID: "t1"},
	}

	engine := NewEngine(NewEngineParams{})

	shallow, err := engine.BuildHierarchy(context.Background(), "doc1", concepts, relations, 1000)
	if err != nil {
		t.Fatalf("BuildHierarchy() error = %v", err)
	}
	for _, c := range shallow.Concepts {
		if c.ParentConceptID == "p1" {
			t.Errorf("depth 4 build synthesized sub-concept %s", c.ID)
		}
	}

	deep, err := engine.BuildHierarchy(context.Background(), "doc1", concepts, relations, 3000)
	if err != nil {
		t.Fatalf("BuildHierarchy() error = %v", err)
	}
	var subs []common.Concept
	for _, c := range deep.Concepts {
		if c.ParentConceptID == "p1" {
			subs = append(subs, c)
		}
	}
	if len(subs) != 1 {
		t.Fatalf("got %d sub-concepts, want 1", len(subs))
	}
	if subs[0].Label != "Pipeline - Contains" {
		t.Errorf("sub-concept label = %q, want Pipeline - Contains", subs[0].Label)
	}
	if subs[0].HierarchyLevel != 3 {
		t.Errorf("sub-concept level = %d, want 3", subs[0].HierarchyLevel)
	}
}

func TestBuildHierarchyDeterministic(t *testing.T) {
	engine := NewEngine(NewEngineParams{})
	concepts, relations := testDoc()

	first, err := engine.BuildHierarchy(context.Background(), "doc1", concepts, relations, 1000)
	if err != nil {
		t.Fatalf("BuildHierarchy() error = %v", err)
	}
	second, err := engine.BuildHierarchy(context.Background(), "doc1", concepts, relations, 1000)
	if err != nil {
		t.Fatalf("BuildHierarchy() error = %v", err)
	}

	if !reflect.DeepEqual(first.Concepts, second.Concepts) {
		t.Error("concept output differs between identical builds")
	}
	if !reflect.DeepEqual(first.Clusters, second.Clusters) {
		t.Error("cluster output differs between identical builds")
	}
}

type stubLabels struct {
	clusterLabel    string
	refinementLabel string
	err             error
}

func (s *stubLabels) ClusterLabel(_ context.Context, _ []string) (string, error) {
	return s.clusterLabel, s.err
}

func (s *stubLabels) RefinementLabel(_ context.Context, _ string, _ []string) (string, error) {
	return s.refinementLabel, s.err
}

func TestBuildHierarchyProviderLabels(t *testing.T) {
	engine := NewEngine(NewEngineParams{
		Labels: &stubLabels{clusterLabel: "Core Definitions", refinementLabel: "Details"},
	})
	concepts, relations := testDoc()

	result, err := engine.BuildHierarchy(context.Background(), "doc1", concepts, relations, 1000)
	if err != nil {
		t.Fatalf("BuildHierarchy() error = %v", err)
	}

	if got := result.Clusters[0].Label; got != "Core Definitions" {
		t.Errorf("cluster 0 label = %q, want Core Definitions", got)
	}
	// The uncategorized bucket never goes through the provider.
	if got := result.Clusters[2].Label; got != UncategorizedLabel {
		t.Errorf("uncategorized label = %q, want %q", got, UncategorizedLabel)
	}
}

func TestBuildHierarchyProviderErrorFallsBack(t *testing.T) {
	engine := NewEngine(NewEngineParams{
		Labels: &stubLabels{err: errors.New("model unavailable")},
	})
	concepts, relations := testDoc()

	result, err := engine.BuildHierarchy(context.Background(), "doc1", concepts, relations, 1000)
	if err != nil {
		t.Fatalf("BuildHierarchy() error = %v", err)
	}

	if got := result.Clusters[0].Label; got != "Alpha" {
		t.Errorf("cluster 0 label = %q, want fallback Alpha", got)
	}
}

func TestBuildHierarchyCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(NewEngineParams{
		Labels: &stubLabels{clusterLabel: "Should Not Appear"},
	})
	concepts, relations := testDoc()

	result, err := engine.BuildHierarchy(ctx, "doc1", concepts, relations, 1000)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("BuildHierarchy() error = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("expected partial result despite cancellation")
	}
	if got := result.Clusters[0].Label; got != "Alpha" {
		t.Errorf("cluster 0 label = %q, want fallback Alpha", got)
	}
}

func TestBuildHierarchyEmptyInput(t *testing.T) {
	engine := NewEngine(NewEngineParams{})

	result, err := engine.BuildHierarchy(context.Background(), "doc1", nil, nil, 0)
	if err != nil {
		t.Fatalf("BuildHierarchy() error = %v", err)
	}
	if len(result.Concepts) != 0 || len(result.Clusters) != 0 {
		t.Errorf("empty input produced %d concepts, %d clusters",
			len(result.Concepts), len(result.Clusters))
	}
	if result.TargetDepth != 4 {
		t.Errorf("TargetDepth = %d, want 4", result.TargetDepth)
	}
}

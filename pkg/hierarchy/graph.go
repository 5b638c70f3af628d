package hierarchy

import (
	"github.com/loomlite/backend/pkg/common"
)

// Edge is one direction of a relation as seen from a concept. Reversed marks
// the back-edge inserted for the target side of a directed relation.
type Edge struct {
	Rel      string
	TargetID string
	Reversed bool
}

// RelationGraph is an adjacency view over the relations of one document.
// Every relation is inserted in both directions so traversal is undirected,
// while Outgoing preserves the original direction for sub-concept synthesis.
//
// Relations that reference a concept id missing from the concept set are
// dropped and counted instead of failing the build.
type RelationGraph struct {
	adjacency map[string][]Edge
	outgoing  map[string][]common.Relation
	skipped   int
}

// NewRelationGraph builds the adjacency view for the given concepts and
// relations. Input order is preserved, so identical inputs always produce an
// identical graph.
func NewRelationGraph(concepts []common.Concept, relations []common.Relation) *RelationGraph {
	known := make(map[string]struct{}, len(concepts))
	for _, c := range concepts {
		known[c.ID] = struct{}{}
	}

	g := &RelationGraph{
		adjacency: make(map[string][]Edge),
		outgoing:  make(map[string][]common.Relation),
	}

	for _, rel := range relations {
		if _, ok := known[rel.SourceID]; !ok {
			g.skipped++
			continue
		}
		if _, ok := known[rel.TargetID]; !ok {
			g.skipped++
			continue
		}

		g.adjacency[rel.SourceID] = append(g.adjacency[rel.SourceID], Edge{
			Rel:      rel.Rel,
			TargetID: rel.TargetID,
		})
		g.adjacency[rel.TargetID] = append(g.adjacency[rel.TargetID], Edge{
			Rel:      rel.Rel,
			TargetID: rel.SourceID,
			Reversed: true,
		})
		g.outgoing[rel.SourceID] = append(g.outgoing[rel.SourceID], rel)
	}

	return g
}

// Degree returns the number of relation ends touching the concept, counting
// all relation types in both directions.
func (g *RelationGraph) Degree(id string) int {
	return len(g.adjacency[id])
}

// Outgoing returns the forward relations originating at the concept, in
// input order.
func (g *RelationGraph) Outgoing(id string) []common.Relation {
	return g.outgoing[id]
}

// StructuralNeighbors returns the ids reachable from the concept over one
// edge whose relation type is in the allow list, in insertion order.
func (g *RelationGraph) StructuralNeighbors(id string, allowed map[string]struct{}) []string {
	edges := g.adjacency[id]
	if len(edges) == 0 {
		return nil
	}

	neighbors := make([]string, 0, len(edges))
	for _, e := range edges {
		if _, ok := allowed[e.Rel]; !ok {
			continue
		}
		neighbors = append(neighbors, e.TargetID)
	}
	return neighbors
}

// SkippedRelations reports how many relations were dropped because they
// referenced unknown concept ids.
func (g *RelationGraph) SkippedRelations() int {
	return g.skipped
}

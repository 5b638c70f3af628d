package hierarchy

import (
	"github.com/loomlite/backend/pkg/common"
)

// discoverClusters partitions concepts into connected components over the
// structural relation types using breadth-first traversal. Components with at
// least two members become clusters; the rest are returned as unclustered and
// are bucketed by the caller.
//
// Traversal seeds concepts in input order and expands neighbors in edge
// insertion order, so the same inputs always yield the same clusters with the
// same member order.
func discoverClusters(
	concepts []common.Concept,
	g *RelationGraph,
	structural map[string]struct{},
) (clusters [][]string, unclustered []string) {
	visited := make(map[string]struct{}, len(concepts))

	for _, seed := range concepts {
		if _, ok := visited[seed.ID]; ok {
			continue
		}
		visited[seed.ID] = struct{}{}

		component := []string{seed.ID}
		queue := []string{seed.ID}

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			for _, neighbor := range g.StructuralNeighbors(current, structural) {
				if _, ok := visited[neighbor]; ok {
					continue
				}
				visited[neighbor] = struct{}{}
				component = append(component, neighbor)
				queue = append(queue, neighbor)
			}
		}

		if len(component) >= 2 {
			clusters = append(clusters, component)
		} else {
			unclustered = append(unclustered, seed.ID)
		}
	}

	return clusters, unclustered
}

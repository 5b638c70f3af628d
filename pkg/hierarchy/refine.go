package hierarchy

import (
	"sort"

	"github.com/loomlite/backend/pkg/common"
)

// refinementGroups splits an oversized cluster into sub-theme groups.
//
// Members are ranked by their relation degree over the full relation set
// (not just structural types) and the ranked list is cut into contiguous
// chunks of size max(3, ceil(n/3)). Highly connected concepts end up at the
// front of the first group; the final chunk may be smaller than the rest.
// This is a density heuristic, not a semantic clustering.
func refinementGroups(members []common.Concept, g *RelationGraph) [][]common.Concept {
	ranked := make([]common.Concept, len(members))
	copy(ranked, members)

	// Stable sort keeps input order for equal degrees, which keeps group
	// assignment reproducible across runs.
	sort.SliceStable(ranked, func(i, j int) bool {
		return g.Degree(ranked[i].ID) > g.Degree(ranked[j].ID)
	})

	groupSize := (len(ranked) + 2) / 3
	if groupSize < 3 {
		groupSize = 3
	}

	groups := make([][]common.Concept, 0, 3)
	for start := 0; start < len(ranked); start += groupSize {
		end := start + groupSize
		if end > len(ranked) {
			end = len(ranked)
		}
		groups = append(groups, ranked[start:end])
	}

	return groups
}

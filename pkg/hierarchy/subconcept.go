package hierarchy

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/loomlite/backend/pkg/common"
)

// eligibleForSubConcepts reports whether an atomic concept is complex enough
// to warrant synthesized children: three or more outgoing relations, or a
// type that usually decomposes into parts.
func eligibleForSubConcepts(c common.Concept, g *RelationGraph, complexTypes map[string]struct{}) bool {
	if len(g.Outgoing(c.ID)) >= 3 {
		return true
	}
	_, ok := complexTypes[c.Type]
	return ok
}

// synthesizeSubConcepts creates micro-concept children for a complex parent,
// one per outgoing relation type.
//
// Relation types are ordered by descending frequency, ties broken lexically,
// before truncating to maxTypes. The ordering is part of the contract: it
// keeps synthesized ids stable across runs regardless of map iteration order.
func synthesizeSubConcepts(
	parent common.Concept,
	g *RelationGraph,
	maxTypes int,
	confidence float64,
) []common.Concept {
	outgoing := g.Outgoing(parent.ID)
	if len(outgoing) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, rel := range outgoing {
		counts[rel.Rel]++
	}

	types := make([]string, 0, len(counts))
	for rel := range counts {
		types = append(types, rel)
	}
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})

	if len(types) > maxTypes {
		types = types[:maxTypes]
	}

	subs := make([]common.Concept, 0, len(types))
	for idx, relType := range types {
		subs = append(subs, common.Concept{
			ID:              fmt.Sprintf("%s_sub_%d", parent.ID, idx),
			DocID:           parent.DocID,
			Label:           fmt.Sprintf("%s - %s", parent.Label, titleCaseRelation(relType)),
			Type:            parent.Type,
			Confidence:      confidence,
			Coherence:       confidence,
			ParentConceptID: parent.ID,
			CreatedAt:       parent.CreatedAt,
		})
	}

	return subs
}

// titleCaseRelation turns a relation type label like "depends_on" into
// "Depends On". The first rune is decoded properly so multi-byte relation
// types stay valid UTF-8.
func titleCaseRelation(rel string) string {
	words := strings.Fields(strings.ReplaceAll(rel, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

package rank

import (
	"math"
	"sort"
	"strings"

	"github.com/loomlite/backend/pkg/common"
)

// Match types reported on search results, named after the signal that
// contributed the largest share of the fused score.
const (
	MatchSemantic = "semantic"
	MatchTitle    = "title"
	MatchConcept  = "concept"
	MatchFuzzy    = "fuzzy"
)

// scoreThreshold is the minimum fused score a document needs to appear in
// the result list. The comparison is inclusive.
const scoreThreshold = 0.15

// maxAttachedConcepts caps how many matching concepts are returned per
// search result.
const maxAttachedConcepts = 5

// SearchOptions narrow and tune a hybrid search. Types and Tags filter which
// concepts may contribute to the concept signal; SemanticEnabled switches on
// the semantic fusion branch when similarity scores are supplied.
type SearchOptions struct {
	Types           []string
	Tags            []string
	SemanticEnabled bool
}

// ConceptMatch is a matching concept attached to a search result.
type ConceptMatch struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// SearchResult is one ranked document with its fused score, the per-signal
// components it was fused from, and its top matching concepts.
type SearchResult struct {
	Doc           common.Document `json:"document"`
	Score         float64         `json:"score"`
	MatchType     string          `json:"match_type"`
	TitleScore    float64         `json:"title_score"`
	ConceptScore  float64         `json:"concept_score"`
	SemanticScore float64         `json:"semantic_score"`
	Concepts      []ConceptMatch  `json:"concepts,omitempty"`
}

// Search ranks documents against a free-text query by fusing three signals:
// lexical title match, concept-label match, and externally supplied semantic
// similarity. Documents below the score threshold are dropped; the rest are
// returned best first with a match-type classification.
//
// An empty or whitespace-only query returns an empty result set.
func Search(
	query string,
	documents []common.Document,
	concepts []common.Concept,
	semantic map[string]float64,
	opts SearchOptions,
) []SearchResult {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []SearchResult{}
	}

	conceptsByDoc := make(map[string][]common.Concept, len(documents))
	for _, c := range concepts {
		if !conceptPassesFilters(c, opts) {
			continue
		}
		conceptsByDoc[c.DocID] = append(conceptsByDoc[c.DocID], c)
	}

	results := make([]SearchResult, 0, len(documents))
	for _, doc := range documents {
		titleScore, fuzzyOnly := titleMatchScore(terms, doc.Title)
		conceptScore, matched := conceptMatchScore(terms, conceptsByDoc[doc.ID])

		semanticScore := 0.0
		if opts.SemanticEnabled {
			semanticScore = semantic[doc.ID]
		}

		var final, titlePart, conceptPart, semanticPart float64
		if opts.SemanticEnabled && semanticScore > 0 {
			titlePart = 0.4 * titleScore
			conceptPart = 0.2 * conceptScore
			semanticPart = 0.4 * semanticScore
		} else {
			titlePart = 0.6 * titleScore
			conceptPart = 0.4 * conceptScore
		}
		final = titlePart + conceptPart + semanticPart

		if final < scoreThreshold {
			continue
		}

		results = append(results, SearchResult{
			Doc:           doc,
			Score:         round3(final),
			MatchType:     classifyMatch(titlePart, conceptPart, semanticPart, fuzzyOnly),
			TitleScore:    round3(titleScore),
			ConceptScore:  round3(conceptScore),
			SemanticScore: round3(semanticScore),
			Concepts:      attachConcepts(matched),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// titleMatchScore scores the query against a title. The full query is
// scored as one phrase, so a query equal to the title always yields 1.0;
// per-term scores are averaged with an all-terms bonus, and the better of
// the two wins. fuzzyOnly reports that the match rests only on the
// character-subsequence tier, which downgrades the match-type
// classification from title to fuzzy.
func titleMatchScore(terms []string, title string) (score float64, fuzzyOnly bool) {
	lowTitle := strings.ToLower(title)
	if lowTitle == "" {
		return 0, false
	}

	phrase := termTitleScore(strings.Join(terms, " "), lowTitle)

	sum := 0.0
	matchedCount := 0
	strongMatch := phrase > fuzzyTierScore
	for _, term := range terms {
		s := termTitleScore(term, lowTitle)
		sum += s
		if s > 0 {
			matchedCount++
			if s > fuzzyTierScore {
				strongMatch = true
			}
		}
	}
	if matchedCount == 0 && phrase == 0 {
		return 0, false
	}

	avg := sum / float64(len(terms))
	if matchedCount == len(terms) {
		// The all-terms bonus rewards multi-term coverage; a single term
		// already scores its full tier and must stay below an exact match.
		if len(terms) > 1 {
			avg *= 1.5
		}
	} else {
		avg *= float64(matchedCount) / float64(len(terms))
	}

	return clamp01(math.Max(phrase, avg)), !strongMatch
}

// fuzzyTierScore is the score of the weakest title tier, the ordered
// character-subsequence match.
const fuzzyTierScore = 0.3

// termTitleScore scores one lower-cased query term against a lower-cased
// title. Tiers, strongest first: exact, prefix, substring weighted by term
// coverage and position, word-boundary matches, and finally an ordered
// character-subsequence fuzzy match.
func termTitleScore(term, title string) float64 {
	if title == term {
		return 1.0
	}
	if strings.HasPrefix(title, term) {
		return 0.9
	}
	if idx := strings.Index(title, term); idx >= 0 {
		titleLen := float64(len(title))
		return 0.7 * (float64(len(term)) / titleLen) * (1 - float64(idx)/titleLen)
	}
	for _, word := range strings.Fields(title) {
		if strings.HasPrefix(term, word) {
			return 0.6
		}
		if len(word) >= 3 && strings.HasPrefix(word, term) {
			return 0.5
		}
	}
	if isSubsequence(term, title) {
		return fuzzyTierScore
	}
	return 0
}

// isSubsequence reports whether all characters of term appear in title in
// order, not necessarily adjacent.
func isSubsequence(term, title string) bool {
	if term == "" {
		return false
	}
	next := 0
	termRunes := []rune(term)
	for _, r := range title {
		if r == termRunes[next] {
			next++
			if next == len(termRunes) {
				return true
			}
		}
	}
	return false
}

// conceptMatchScore returns the best confidence among concepts whose label
// contains any query term, plus the full set of matching concepts for
// attachment.
func conceptMatchScore(terms []string, concepts []common.Concept) (float64, []common.Concept) {
	best := 0.0
	var matched []common.Concept
	for _, c := range concepts {
		label := strings.ToLower(c.Label)
		for _, term := range terms {
			if strings.Contains(label, term) {
				matched = append(matched, c)
				if c.Confidence > best {
					best = c.Confidence
				}
				break
			}
		}
	}
	return best, matched
}

func conceptPassesFilters(c common.Concept, opts SearchOptions) bool {
	if len(opts.Types) > 0 && !containsFold(opts.Types, c.Type) {
		return false
	}
	if len(opts.Tags) > 0 {
		found := false
		for _, tag := range c.Tags {
			if containsFold(opts.Tags, tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

// classifyMatch names the signal with the largest fused component. Ties
// favor semantic over title over concept. A title win backed only by fuzzy
// subsequence evidence is reported as a fuzzy match.
func classifyMatch(titlePart, conceptPart, semanticPart float64, titleFuzzyOnly bool) string {
	if semanticPart >= titlePart && semanticPart >= conceptPart && semanticPart > 0 {
		return MatchSemantic
	}
	if titlePart >= conceptPart && titlePart > 0 {
		if titleFuzzyOnly {
			return MatchFuzzy
		}
		return MatchTitle
	}
	return MatchConcept
}

// attachConcepts picks the top matching concepts by confidence, capped at
// maxAttachedConcepts, with confidences rounded for display.
func attachConcepts(matched []common.Concept) []ConceptMatch {
	if len(matched) == 0 {
		return nil
	}

	ordered := make([]common.Concept, len(matched))
	copy(ordered, matched)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})
	if len(ordered) > maxAttachedConcepts {
		ordered = ordered[:maxAttachedConcepts]
	}

	attached := make([]ConceptMatch, 0, len(ordered))
	for _, c := range ordered {
		attached = append(attached, ConceptMatch{
			ID:         c.ID,
			Label:      c.Label,
			Type:       c.Type,
			Confidence: round3(c.Confidence),
		})
	}
	return attached
}

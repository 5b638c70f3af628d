package hierarchy

// TargetDepth decides how many hierarchy levels a document warrants, between
// 4 and 6. The base hierarchy is always Document -> Cluster -> Refinement ->
// Concept; larger documents additionally get synthesized sub-concept levels.
//
// The rule is monotonic in docLength and conceptCount, and the function is
// pure, so regenerating a hierarchy for unchanged inputs always selects the
// same depth.
func TargetDepth(docLength, conceptCount, clusterCount int) int {
	depth := 4
	if docLength > 2000 || conceptCount > 40 {
		depth = 5
	}
	if docLength > 5000 || conceptCount > 80 {
		depth = 6
	}
	return depth
}

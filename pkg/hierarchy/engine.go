package hierarchy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loomlite/backend/pkg/common"
	"github.com/loomlite/backend/pkg/logger"
)

// Concept types assigned to synthesized hierarchy nodes.
const (
	TypeTopic      = "Topic"
	TypeRefinement = "Refinement"
)

// UncategorizedLabel is the fixed label of the fallback cluster that collects
// concepts without structural relations.
const UncategorizedLabel = "Uncategorized"

// IsSynthesized reports whether the concept was created by the engine rather
// than extracted from the document: cluster and refinement nodes by type,
// micro-concepts by their generated id. Rebuilds filter these out to recover
// the original extraction, and ingestion rejects concepts matching these
// shapes so the filter can never drop extracted data.
//
// The id check requires the exact "{parent}_sub_{n}" shape the synthesizer
// produces; an extracted id that merely contains "_sub_" does not match.
func IsSynthesized(c common.Concept) bool {
	if c.Type == TypeTopic || c.Type == TypeRefinement {
		return true
	}
	idx := strings.LastIndex(c.ID, "_sub_")
	if idx < 0 {
		return false
	}
	suffix := c.ID[idx+len("_sub_"):]
	if suffix == "" {
		return false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LabelProvider generates human-readable labels for synthesized hierarchy
// nodes. Implementations are expected to call an AI model; errors and
// timeouts are tolerated, the engine falls back to deterministic labels.
type LabelProvider interface {
	ClusterLabel(ctx context.Context, memberLabels []string) (string, error)
	RefinementLabel(ctx context.Context, clusterLabel string, memberLabels []string) (string, error)
}

// Config carries the tunables of the hierarchy engine. Zero values are
// replaced with the defaults from DefaultConfig by NewEngine.
type Config struct {
	// StructuralRelations are the relation types that drive clustering.
	StructuralRelations []string
	// RefinementThreshold is the cluster size above which a cluster is
	// split into refinement groups.
	RefinementThreshold int
	// MaxSubConceptTypes caps how many relation types are expanded into
	// micro-concepts per parent.
	MaxSubConceptTypes int
	// ComplexTypes are concept types that always qualify for sub-concept
	// synthesis regardless of their relation count.
	ComplexTypes []string

	// Confidence assigned to synthesized nodes per kind.
	ClusterConfidence    float64
	RefinementConfidence float64
	SubConceptConfidence float64

	// LabelTimeout bounds each individual label request.
	LabelTimeout time.Duration
	// ParallelLabelRequests bounds concurrent label requests.
	ParallelLabelRequests int
}

// DefaultConfig returns the engine defaults used in production.
func DefaultConfig() Config {
	return Config{
		StructuralRelations:   []string{"defines", "contains", "supports", "develops"},
		RefinementThreshold:   5,
		MaxSubConceptTypes:    3,
		ComplexTypes:          []string{"Process", "Technology", "Feature", "Project"},
		ClusterConfidence:     0.85,
		RefinementConfidence:  0.80,
		SubConceptConfidence:  0.75,
		LabelTimeout:          20 * time.Second,
		ParallelLabelRequests: 4,
	}
}

// Engine builds the adaptive concept hierarchy of a document: semantic
// clusters over structural relations, refinement groups inside oversized
// clusters, and synthesized micro-concepts below complex concepts. Structure
// is computed deterministically; only node labels involve the LabelProvider.
type Engine struct {
	labels     LabelProvider
	cfg        Config
	structural map[string]struct{}
	complex    map[string]struct{}
}

type NewEngineParams struct {
	// Labels may be nil, in which case every synthesized node gets its
	// deterministic fallback label.
	Labels LabelProvider
	Config Config
}

// NewEngine creates a hierarchy engine. Zero-valued config fields fall back
// to DefaultConfig.
func NewEngine(params NewEngineParams) *Engine {
	cfg := params.Config
	def := DefaultConfig()
	if len(cfg.StructuralRelations) == 0 {
		cfg.StructuralRelations = def.StructuralRelations
	}
	if cfg.RefinementThreshold == 0 {
		cfg.RefinementThreshold = def.RefinementThreshold
	}
	if cfg.MaxSubConceptTypes == 0 {
		cfg.MaxSubConceptTypes = def.MaxSubConceptTypes
	}
	if len(cfg.ComplexTypes) == 0 {
		cfg.ComplexTypes = def.ComplexTypes
	}
	if cfg.ClusterConfidence == 0 {
		cfg.ClusterConfidence = def.ClusterConfidence
	}
	if cfg.RefinementConfidence == 0 {
		cfg.RefinementConfidence = def.RefinementConfidence
	}
	if cfg.SubConceptConfidence == 0 {
		cfg.SubConceptConfidence = def.SubConceptConfidence
	}
	if cfg.LabelTimeout == 0 {
		cfg.LabelTimeout = def.LabelTimeout
	}
	if cfg.ParallelLabelRequests == 0 {
		cfg.ParallelLabelRequests = def.ParallelLabelRequests
	}

	structural := make(map[string]struct{}, len(cfg.StructuralRelations))
	for _, rel := range cfg.StructuralRelations {
		structural[rel] = struct{}{}
	}
	complexTypes := make(map[string]struct{}, len(cfg.ComplexTypes))
	for _, t := range cfg.ComplexTypes {
		complexTypes[t] = struct{}{}
	}

	return &Engine{
		labels:     params.Labels,
		cfg:        cfg,
		structural: structural,
		complex:    complexTypes,
	}
}

// BuildResult is the output of one hierarchy build. Concepts contains the
// input concepts with hierarchy placement assigned plus all synthesized
// nodes, ordered depth-first per cluster.
type BuildResult struct {
	Concepts         []common.Concept
	Clusters         []common.Cluster
	TargetDepth      int
	LevelCounts      map[int]int
	SkippedRelations int
}

// clusterPlan is the intermediate per-cluster state between structure
// computation and label resolution.
type clusterPlan struct {
	cluster       common.Cluster
	uncategorized bool
	members       []common.Concept
	// groups is non-nil when the cluster is split into refinement groups.
	groups [][]common.Concept
}

// labelTask points at a synthesized node in the result slice whose label
// should be replaced by a provider-generated one.
type labelTask struct {
	index   int
	sample  []string
	cluster int // plan index, used by refinement tasks for the fallback
}

// BuildHierarchy computes the full hierarchy for one document. The build is
// deterministic for identical inputs except for provider-generated labels.
//
// Label requests that fail or time out are replaced by fallback labels and
// never fail the build. If ctx is cancelled, pending label requests are
// skipped, their fallbacks kept, and ctx's error is returned alongside the
// otherwise complete result.
func (e *Engine) BuildHierarchy(
	ctx context.Context,
	docID string,
	concepts []common.Concept,
	relations []common.Relation,
	docLength int,
) (*BuildResult, error) {
	g := NewRelationGraph(concepts, relations)

	byID := make(map[string]common.Concept, len(concepts))
	for _, c := range concepts {
		byID[c.ID] = c
	}

	componentIDs, unclusteredIDs := discoverClusters(concepts, g, e.structural)

	plans := make([]clusterPlan, 0, len(componentIDs)+1)
	for i, memberIDs := range componentIDs {
		members := make([]common.Concept, 0, len(memberIDs))
		for _, id := range memberIDs {
			members = append(members, byID[id])
		}
		plans = append(plans, clusterPlan{
			cluster: common.Cluster{
				ID:        fmt.Sprintf("cluster_%s_%d", docID, i),
				DocID:     docID,
				MemberIDs: memberIDs,
			},
			members: members,
		})
	}
	if len(unclusteredIDs) > 0 {
		members := make([]common.Concept, 0, len(unclusteredIDs))
		for _, id := range unclusteredIDs {
			members = append(members, byID[id])
		}
		plans = append(plans, clusterPlan{
			cluster: common.Cluster{
				ID:        fmt.Sprintf("cluster_%s_uncategorized", docID),
				DocID:     docID,
				Label:     UncategorizedLabel,
				MemberIDs: unclusteredIDs,
			},
			uncategorized: true,
			members:       members,
		})
	}

	depth := TargetDepth(docLength, len(concepts), len(plans))

	anyRefined := false
	for i := range plans {
		p := &plans[i]
		if p.uncategorized || len(p.members) <= e.cfg.RefinementThreshold {
			continue
		}
		p.groups = refinementGroups(p.members, g)
		anyRefined = true
	}

	atomicLevel := 2
	if anyRefined {
		atomicLevel = 3
	}
	microLevel := atomicLevel + 1

	out := make([]common.Concept, 0, len(concepts)+len(plans))
	var clusterTasks, refinementTasks []labelTask

	appendMember := func(member common.Concept, clusterID, parentID string) {
		member.HierarchyLevel = atomicLevel
		member.ParentClusterID = clusterID
		member.ParentConceptID = parentID
		out = append(out, member)

		if depth < 5 || !eligibleForSubConcepts(member, g, e.complex) {
			return
		}
		subs := synthesizeSubConcepts(member, g, e.cfg.MaxSubConceptTypes, e.cfg.SubConceptConfidence)
		for _, sub := range subs {
			sub.HierarchyLevel = microLevel
			sub.ParentClusterID = clusterID
			out = append(out, sub)
		}
	}

	for i := range plans {
		p := &plans[i]
		clusterID := p.cluster.ID

		node := common.Concept{
			ID:             clusterID,
			DocID:          docID,
			Label:          p.cluster.Label,
			Type:           TypeTopic,
			Confidence:     e.cfg.ClusterConfidence,
			Coherence:      e.cfg.ClusterConfidence,
			HierarchyLevel: 1,
		}
		if !p.uncategorized {
			// Fallback label until the provider responds.
			node.Label = p.members[0].Label
			clusterTasks = append(clusterTasks, labelTask{
				index:   len(out),
				sample:  memberLabels(p.members, 10),
				cluster: i,
			})
		}
		out = append(out, node)

		if p.groups == nil {
			for _, member := range p.members {
				appendMember(member, clusterID, "")
			}
			continue
		}

		for j, group := range p.groups {
			refID := fmt.Sprintf("%s_ref_%d", clusterID, j)
			refinementTasks = append(refinementTasks, labelTask{
				index:   len(out),
				sample:  memberLabels(group, 5),
				cluster: i,
			})
			out = append(out, common.Concept{
				ID:              refID,
				DocID:           docID,
				Type:            TypeRefinement,
				Confidence:      e.cfg.RefinementConfidence,
				Coherence:       e.cfg.RefinementConfidence,
				HierarchyLevel:  2,
				ParentClusterID: clusterID,
			})
			for _, member := range group {
				appendMember(member, clusterID, refID)
			}
		}
	}

	labelErr := e.resolveLabels(ctx, out, plans, clusterTasks, refinementTasks)

	// Mirror the resolved cluster labels back into the cluster records.
	for i := range plans {
		plans[i].cluster.Label = labelByID(out, plans[i].cluster.ID)
	}

	clusters := make([]common.Cluster, 0, len(plans))
	for _, p := range plans {
		clusters = append(clusters, p.cluster)
	}

	levelCounts := make(map[int]int)
	for _, c := range out {
		levelCounts[c.HierarchyLevel]++
	}

	result := &BuildResult{
		Concepts:         out,
		Clusters:         clusters,
		TargetDepth:      depth,
		LevelCounts:      levelCounts,
		SkippedRelations: g.SkippedRelations(),
	}

	logger.Debug("hierarchy built",
		"doc_id", docID,
		"depth", depth,
		"clusters", len(clusters),
		"concepts", len(out),
		"skipped_relations", g.SkippedRelations(),
	)

	return result, labelErr
}

// resolveLabels runs the two label phases: clusters first, then refinements,
// because a refinement's fallback label embeds its cluster's label. Provider
// failures keep the fallback; only context cancellation is reported.
func (e *Engine) resolveLabels(
	ctx context.Context,
	out []common.Concept,
	plans []clusterPlan,
	clusterTasks, refinementTasks []labelTask,
) error {
	if e.labels == nil {
		e.applyRefinementFallbacks(out, plans, refinementTasks)
		return nil
	}

	group := errgroup.Group{}
	group.SetLimit(e.cfg.ParallelLabelRequests)
	for _, task := range clusterTasks {
		task := task
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			callCtx, cancel := context.WithTimeout(ctx, e.cfg.LabelTimeout)
			defer cancel()
			label, err := e.labels.ClusterLabel(callCtx, task.sample)
			if err != nil || label == "" {
				logger.Warn("cluster label request failed, using fallback",
					"cluster_id", plans[task.cluster].cluster.ID, "error", err)
				return nil
			}
			out[task.index].Label = label
			return nil
		})
	}
	_ = group.Wait()

	e.applyRefinementFallbacks(out, plans, refinementTasks)

	group = errgroup.Group{}
	group.SetLimit(e.cfg.ParallelLabelRequests)
	for _, task := range refinementTasks {
		task := task
		clusterLabel := labelByID(out, plans[task.cluster].cluster.ID)
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			callCtx, cancel := context.WithTimeout(ctx, e.cfg.LabelTimeout)
			defer cancel()
			label, err := e.labels.RefinementLabel(callCtx, clusterLabel, task.sample)
			if err != nil || label == "" {
				logger.Warn("refinement label request failed, using fallback",
					"parent_cluster_id", plans[task.cluster].cluster.ID, "error", err)
				return nil
			}
			out[task.index].Label = label
			return nil
		})
	}
	_ = group.Wait()

	return ctx.Err()
}

func (e *Engine) applyRefinementFallbacks(out []common.Concept, plans []clusterPlan, tasks []labelTask) {
	for _, task := range tasks {
		out[task.index].Label = labelByID(out, plans[task.cluster].cluster.ID) + " - Refinement"
	}
}

func labelByID(concepts []common.Concept, id string) string {
	for _, c := range concepts {
		if c.ID == id {
			return c.Label
		}
	}
	return ""
}

func memberLabels(members []common.Concept, limit int) []string {
	if len(members) < limit {
		limit = len(members)
	}
	labels := make([]string, 0, limit)
	for _, m := range members[:limit] {
		labels = append(labels, m.Label)
	}
	return labels
}

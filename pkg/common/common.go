package common

import "time"

// MicroOntology is the full extracted knowledge set for a single document:
// the document metadata plus its concepts and relations. It is the unit of
// exchange between the extraction pipeline, the hierarchy engine, and storage.
type MicroOntology struct {
	Doc       Document   `json:"document"`
	Concepts  []Concept  `json:"concepts"`
	Relations []Relation `json:"relations"`
}

// Document holds the metadata and extracted text of one ingested document.
// WordCount is the plain word count of Content and drives hierarchy depth
// selection. Content is kept out of list responses.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename,omitempty"`
	Content   string    `json:"content,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Concept is a typed entity extracted from a document. Besides the extracted
// fields (label, type, confidence, aliases, tags) it carries the hierarchy
// placement assigned by the engine: HierarchyLevel, ParentClusterID and
// ParentConceptID.
//
// Synthetic nodes (clusters, refinements, micro-concepts) are materialized as
// Concepts too, distinguished by their Type ("Topic", "Refinement") or by a
// synthesized id.
type Concept struct {
	ID              string   `json:"id"`
	DocID           string   `json:"doc_id"`
	Label           string   `json:"label"`
	Type            string   `json:"type"`
	Confidence      float64  `json:"confidence"`
	Aliases         []string `json:"aliases,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	HierarchyLevel  int      `json:"hierarchy_level"`
	ParentClusterID string   `json:"parent_cluster_id,omitempty"`
	ParentConceptID string   `json:"parent_concept_id,omitempty"`
	Coherence       float64  `json:"coherence,omitempty"`
	Summary         string   `json:"summary,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Relation is a directed, typed edge between two concepts of the same
// document. Rel is a free-form relation type label ("defines", "contains",
// "mentions", ...). A bounded subset of relation types is treated as
// structural and drives clustering.
type Relation struct {
	ID         string  `json:"id"`
	DocID      string  `json:"doc_id"`
	SourceID   string  `json:"src_id"`
	Rel        string  `json:"rel"`
	TargetID   string  `json:"dst_id"`
	Confidence float64 `json:"confidence"`
}

// Cluster is the transient grouping produced by the cluster builder before it
// is materialized as a Concept node. MemberIDs preserves discovery order.
type Cluster struct {
	ID        string   `json:"id"`
	DocID     string   `json:"doc_id"`
	Label     string   `json:"label"`
	MemberIDs []string `json:"member_concept_ids"`
}

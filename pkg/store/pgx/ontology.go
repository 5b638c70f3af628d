package pgx

import (
	"context"
	"fmt"

	"github.com/loomlite/backend/pkg/common"
	"github.com/loomlite/backend/pkg/logger"

	pgxv5 "github.com/jackc/pgx/v5"
)

// ReplaceOntology swaps the complete concept, relation, and cluster set of a
// document in one transaction. The hierarchy engine regenerates everything
// per run, so the old rows are simply dropped first.
func (s *OntologyDBStorage) ReplaceOntology(
	ctx context.Context,
	docID string,
	concepts []common.Concept,
	relations []common.Relation,
	clusters []common.Cluster,
) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"relations", "concepts", "clusters"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE doc_id = $1`, table), docID); err != nil {
			return fmt.Errorf("clear %s for %s: %w", table, docID, err)
		}
	}

	batch := &pgxv5.Batch{}
	for _, c := range concepts {
		batch.Queue(`
			INSERT INTO concepts
				(id, doc_id, label, type, confidence, aliases, tags,
				 hierarchy_level, parent_cluster_id, parent_concept_id,
				 coherence, summary, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11, $12, $13)`,
			c.ID, c.DocID, c.Label, c.Type, c.Confidence, c.Aliases, c.Tags,
			c.HierarchyLevel, c.ParentClusterID, c.ParentConceptID,
			c.Coherence, c.Summary, c.CreatedAt,
		)
	}
	for _, r := range relations {
		batch.Queue(`
			INSERT INTO relations (id, doc_id, src_id, rel, dst_id, confidence)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			r.ID, r.DocID, r.SourceID, r.Rel, r.TargetID, r.Confidence,
		)
	}
	for _, cl := range clusters {
		batch.Queue(`
			INSERT INTO clusters (id, doc_id, label, member_ids)
			VALUES ($1, $2, $3, $4)`,
			cl.ID, cl.DocID, cl.Label, cl.MemberIDs,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert ontology for %s: %w", docID, err)
	}

	logger.Debug("ontology replaced",
		"doc_id", docID,
		"concepts", len(concepts),
		"relations", len(relations),
		"clusters", len(clusters),
	)
	return tx.Commit(ctx)
}

const conceptColumns = `
	id, doc_id, label, type, confidence,
	COALESCE(aliases, '{}'), COALESCE(tags, '{}'),
	hierarchy_level, COALESCE(parent_cluster_id, ''), COALESCE(parent_concept_id, ''),
	COALESCE(coherence, 0), COALESCE(summary, ''), created_at`

func scanConcepts(rows pgxv5.Rows) ([]common.Concept, error) {
	defer rows.Close()

	concepts := make([]common.Concept, 0)
	for rows.Next() {
		var c common.Concept
		if err := rows.Scan(
			&c.ID, &c.DocID, &c.Label, &c.Type, &c.Confidence,
			&c.Aliases, &c.Tags,
			&c.HierarchyLevel, &c.ParentClusterID, &c.ParentConceptID,
			&c.Coherence, &c.Summary, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}

func (s *OntologyDBStorage) GetConcepts(ctx context.Context, docID string) ([]common.Concept, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT `+conceptColumns+` FROM concepts WHERE doc_id = $1 ORDER BY hierarchy_level, id`,
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("get concepts %s: %w", docID, err)
	}
	return scanConcepts(rows)
}

func (s *OntologyDBStorage) ListAllConcepts(ctx context.Context) ([]common.Concept, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT `+conceptColumns+` FROM concepts ORDER BY doc_id, hierarchy_level, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	return scanConcepts(rows)
}

func (s *OntologyDBStorage) GetRelations(ctx context.Context, docID string) ([]common.Relation, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, doc_id, src_id, rel, dst_id, confidence
		FROM relations
		WHERE doc_id = $1
		ORDER BY id`,
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("get relations %s: %w", docID, err)
	}
	defer rows.Close()

	relations := make([]common.Relation, 0)
	for rows.Next() {
		var r common.Relation
		if err := rows.Scan(&r.ID, &r.DocID, &r.SourceID, &r.Rel, &r.TargetID, &r.Confidence); err != nil {
			return nil, err
		}
		relations = append(relations, r)
	}
	return relations, rows.Err()
}

func (s *OntologyDBStorage) GetClusters(ctx context.Context, docID string) ([]common.Cluster, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, doc_id, label, COALESCE(member_ids, '{}')
		FROM clusters
		WHERE doc_id = $1
		ORDER BY id`,
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("get clusters %s: %w", docID, err)
	}
	defer rows.Close()

	clusters := make([]common.Cluster, 0)
	for rows.Next() {
		var cl common.Cluster
		if err := rows.Scan(&cl.ID, &cl.DocID, &cl.Label, &cl.MemberIDs); err != nil {
			return nil, err
		}
		clusters = append(clusters, cl)
	}
	return clusters, rows.Err()
}

// RelationCounts returns how many relation ends touch each concept of the
// document, counting both directions.
func (s *OntologyDBStorage) RelationCounts(ctx context.Context, docID string) (map[string]int, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT concept_id, COUNT(*)
		FROM (
			SELECT src_id AS concept_id FROM relations WHERE doc_id = $1
			UNION ALL
			SELECT dst_id AS concept_id FROM relations WHERE doc_id = $1
		) ends
		GROUP BY concept_id`,
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("relation counts %s: %w", docID, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

package pgx

import (
	"context"
	"fmt"

	"github.com/loomlite/backend/pkg/rank"
)

// RecordEngagement counts one view of the document and adds its dwell time.
func (s *OntologyDBStorage) RecordEngagement(ctx context.Context, docID string, dwellSeconds float64) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO engagement (doc_id, views, dwell_seconds, last_viewed)
		VALUES ($1, 1, $2, now())
		ON CONFLICT (doc_id) DO UPDATE
		SET views = engagement.views + 1,
		    dwell_seconds = engagement.dwell_seconds + EXCLUDED.dwell_seconds,
		    last_viewed = now()`,
		docID, dwellSeconds,
	)
	if err != nil {
		return fmt.Errorf("record engagement %s: %w", docID, err)
	}
	return nil
}

func (s *OntologyDBStorage) EngagementStats(ctx context.Context) ([]rank.EngagementStats, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT doc_id, views, dwell_seconds, last_viewed
		FROM engagement`,
	)
	if err != nil {
		return nil, fmt.Errorf("engagement stats: %w", err)
	}
	defer rows.Close()

	stats := make([]rank.EngagementStats, 0)
	for rows.Next() {
		var st rank.EngagementStats
		if err := rows.Scan(&st.DocID, &st.Views, &st.DwellSeconds, &st.LastViewed); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

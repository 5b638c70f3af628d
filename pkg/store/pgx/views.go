package pgx

import (
	"context"
	"fmt"

	"github.com/loomlite/backend/pkg/store"
)

func (s *OntologyDBStorage) SaveView(ctx context.Context, view store.SavedView) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO saved_views (id, name, query, types, tags, sort_mode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    query = EXCLUDED.query,
		    types = EXCLUDED.types,
		    tags = EXCLUDED.tags,
		    sort_mode = EXCLUDED.sort_mode`,
		view.ID, view.Name, view.Query, view.Types, view.Tags, view.SortMode, view.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save view %s: %w", view.ID, err)
	}
	return nil
}

func (s *OntologyDBStorage) GetView(ctx context.Context, id string) (store.SavedView, error) {
	var view store.SavedView
	err := s.conn.QueryRow(ctx, `
		SELECT id, name, query, COALESCE(types, '{}'), COALESCE(tags, '{}'), sort_mode, created_at
		FROM saved_views
		WHERE id = $1`,
		id,
	).Scan(&view.ID, &view.Name, &view.Query, &view.Types, &view.Tags, &view.SortMode, &view.CreatedAt)
	if err != nil {
		return store.SavedView{}, fmt.Errorf("get view %s: %w", id, err)
	}
	return view, nil
}

func (s *OntologyDBStorage) ListViews(ctx context.Context) ([]store.SavedView, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, name, query, COALESCE(types, '{}'), COALESCE(tags, '{}'), sort_mode, created_at
		FROM saved_views
		ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	defer rows.Close()

	views := make([]store.SavedView, 0)
	for rows.Next() {
		var view store.SavedView
		if err := rows.Scan(&view.ID, &view.Name, &view.Query, &view.Types, &view.Tags, &view.SortMode, &view.CreatedAt); err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, rows.Err()
}

func (s *OntologyDBStorage) DeleteView(ctx context.Context, id string) error {
	_, err := s.conn.Exec(ctx, `DELETE FROM saved_views WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete view %s: %w", id, err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/model"
)

// PageStore reads and writes info-page rows on one transaction.
type PageStore struct {
	q querier
}

// Get fetches one page. Returns apperror.ErrNotFound when the page has
// never been written.
func (s *PageStore) Get(ctx context.Context, id string) (*model.InfoPage, error) {
	var p model.InfoPage
	err := s.q.QueryRowContext(ctx,
		`SELECT id, title, body, created_at, updated_at FROM pages WHERE id = ?`, id,
	).Scan(&p.ID, &p.Title, &p.Body, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("page", id)
		}
		return nil, fmt.Errorf("store: getting page %s: %w", id, err)
	}
	return &p, nil
}

// List returns every existing page in id order.
func (s *PageStore) List(ctx context.Context) ([]model.InfoPage, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, title, body, created_at, updated_at FROM pages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: listing pages: %w", err)
	}
	defer rows.Close()

	var pages []model.InfoPage
	for rows.Next() {
		var p model.InfoPage
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning page row: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing pages: %w", err)
	}
	return pages, nil
}

// Upsert writes the page, creating the row on first update. CreatedAt is
// preserved across updates; UpdatedAt always advances.
func (s *PageStore) Upsert(ctx context.Context, p *model.InfoPage) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO pages (id, title, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     title = excluded.title,
		     body = excluded.body,
		     updated_at = excluded.updated_at`,
		p.ID,
		p.Title,
		p.Body,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: upserting page %s: %w", p.ID, err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/model"
	"github.com/nhollis/inkwell/internal/textnorm"
)

// PostStore reads and writes blog-post rows on one transaction.
type PostStore struct {
	q querier
}

// PostSortFields maps the public sort-field names accepted by post search
// to their columns.
var PostSortFields = map[string]string{
	"postedTime": "posted_at",
	"title":      "title_fold",
	"createdAt":  "created_at",
}

// PostFilter is the validated search input for List. Visibility is part of
// the filter: rows that are inactive and not authored by the viewer are
// excluded unless the viewer is an administrator.
type PostFilter struct {
	Title       string // partial, case/accent-insensitive
	AuthorID    *int64 // exact
	Active      *bool  // exact (combined with the visibility clause)
	ViewerID    int64  // 0 when anonymous
	ViewerAdmin bool
	SortColumn  string // a value of PostSortFields; "" means posted_at
	Descending  bool
	Limit       int
	Offset      int
}

const postColumns = `id, title, author_id, body, preview, posted_at, active, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*model.BlogPost, error) {
	var p model.BlogPost
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.AuthorID,
		&p.Body,
		&p.Preview,
		&p.PostedAt,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert persists a new post. A duplicate slug comes back as a Conflict.
func (s *PostStore) Insert(ctx context.Context, p *model.BlogPost) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO posts (id, title, title_fold, author_id, body, preview, posted_at, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Title,
		textnorm.Fold(p.Title),
		p.AuthorID,
		p.Body,
		p.Preview,
		p.PostedAt,
		p.Active,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("a blog post already exists with id %s", p.ID))
		}
		return fmt.Errorf("store: inserting post %s: %w", p.ID, err)
	}
	return nil
}

// GetByID fetches one post by slug. Returns apperror.ErrNotFound when
// absent; visibility of inactive posts is the service's concern.
func (s *PostStore) GetByID(ctx context.Context, id string) (*model.BlogPost, error) {
	p, err := scanPost(s.q.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("blog post", id)
		}
		return nil, fmt.Errorf("store: getting post %s: %w", id, err)
	}
	return p, nil
}

// Update rewrites the mutable columns of an existing post.
func (s *PostStore) Update(ctx context.Context, p *model.BlogPost) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := s.q.ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, title_fold = ?, author_id = ?, body = ?, preview = ?,
		     posted_at = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title,
		textnorm.Fold(p.Title),
		p.AuthorID,
		p.Body,
		p.Preview,
		p.PostedAt,
		p.Active,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("store: updating post %s: %w", p.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: updating post %s: %w", p.ID, err)
	}
	if n == 0 {
		return apperror.NotFound("blog post", p.ID)
	}
	return nil
}

// List returns posts matching the filter, ordered and paginated. Posts the
// viewer may not see are excluded here rather than erroring later.
func (s *PostStore) List(ctx context.Context, f PostFilter) ([]model.BlogPost, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE 1=1`
	var args []any

	if !f.ViewerAdmin {
		query += ` AND (active = 1 OR author_id = ?)`
		args = append(args, f.ViewerID)
	}
	if f.Title != "" {
		query += ` AND title_fold LIKE ? ESCAPE '\'`
		args = append(args, likePattern(textnorm.Fold(f.Title)))
	}
	if f.AuthorID != nil {
		query += ` AND author_id = ?`
		args = append(args, *f.AuthorID)
	}
	if f.Active != nil {
		query += ` AND active = ?`
		args = append(args, *f.Active)
	}

	column := f.SortColumn
	if column == "" {
		column = "posted_at"
	}
	query += ` ORDER BY ` + column
	if f.Descending {
		query += ` DESC`
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: listing posts: %w", err)
	}
	defer rows.Close()

	var posts []model.BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing posts: %w", err)
	}
	return posts, nil
}

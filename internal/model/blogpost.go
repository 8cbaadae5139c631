package model

import "time"

// BlogPost represents a published or draft blog entry.
//
// The ID is a URL slug, either client-chosen or generated. AuthorID must
// reference an account that was authorized to blog when the post was
// created. PostedAt is the sort key for listings; Active is the soft-delete
// flag — inactive posts stay visible to their author and administrators.
type BlogPost struct {
	ID        string    `json:"id"        db:"id"`
	Title     string    `json:"title"     db:"title"`
	AuthorID  int64     `json:"author"    db:"author_id"`
	Body      string    `json:"body"      db:"body"`
	Preview   string    `json:"preview"   db:"preview"`
	PostedAt  time.Time `json:"postedTime" db:"posted_at"`
	Active    bool      `json:"active"    db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Fields returns the post as an attribute map for policy projection.
func (p *BlogPost) Fields() map[string]any {
	return map[string]any{
		"id":         p.ID,
		"title":      p.Title,
		"author":     p.AuthorID,
		"body":       p.Body,
		"preview":    p.Preview,
		"postedTime": p.PostedAt,
		"active":     p.Active,
		"createdAt":  p.CreatedAt,
		"updatedAt":  p.UpdatedAt,
	}
}

package model

import "time"

// InfoPage is an editable informational page. Page IDs come from a fixed
// allow-list; rows are created on first update (upsert) and never deleted.
type InfoPage struct {
	ID        string    `json:"id"        db:"id"`
	Title     string    `json:"title"     db:"title"`
	Body      string    `json:"body"      db:"body"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Fields returns the page as an attribute map for policy projection.
func (p *InfoPage) Fields() map[string]any {
	return map[string]any{
		"id":        p.ID,
		"title":     p.Title,
		"body":      p.Body,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
	}
}

// Package model defines the data structures shared across the application.
package model

import "time"

// Account represents a registered user account.
//
// PasswordHash is empty between creation and the first successful password
// set; accounts are created passwordless with a pending reset key instead.
// ResetKeyHash is empty whenever no reset key is outstanding. Neither hash
// ever leaves the service layer — projections are built from Fields, which
// omits them.
//
// Email uniqueness is case-insensitive (enforced by the store).
type Account struct {
	ID               int64     `json:"id"               db:"id"`
	Email            string    `json:"emailAddress"     db:"email"`
	PasswordHash     string    `json:"-"                db:"password_hash"`
	ResetKeyHash     string    `json:"-"                db:"reset_key_hash"`
	GivenName        string    `json:"givenName"        db:"given_name"`
	FamilyName       string    `json:"familyName"       db:"family_name"`
	Active           bool      `json:"active"           db:"active"`
	AuthorizedToBlog bool      `json:"authorizedToBlog" db:"authorized_to_blog"`
	Admin            bool      `json:"admin"            db:"admin"`
	CreatedAt        time.Time `json:"createdAt"        db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt"        db:"updated_at"`
}

// Fields returns the account as an attribute map for policy projection.
// The password and reset-key hashes are deliberately absent.
func (a *Account) Fields() map[string]any {
	return map[string]any{
		"id":               a.ID,
		"emailAddress":     a.Email,
		"givenName":        a.GivenName,
		"familyName":       a.FamilyName,
		"active":           a.Active,
		"authorizedToBlog": a.AuthorizedToBlog,
		"admin":            a.Admin,
		"createdAt":        a.CreatedAt,
		"updatedAt":        a.UpdatedAt,
	}
}

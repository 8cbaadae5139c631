package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/model"
	"github.com/nhollis/inkwell/internal/textnorm"
)

// AccountStore reads and writes account rows on one transaction.
type AccountStore struct {
	q querier
}

// AccountSortFields maps the public sort-field names accepted by account
// search to their columns. Name sorts use the folded shadow columns so
// ordering matches the accent-insensitive filters.
var AccountSortFields = map[string]string{
	"email":      "email",
	"givenName":  "given_name_fold",
	"familyName": "family_name_fold",
	"createdAt":  "created_at",
}

// AccountFilter is the validated search input for List.
type AccountFilter struct {
	Name       string // partial, case/accent-insensitive, matches either name
	Email      string // partial, case-insensitive
	Active     *bool  // exact; nil means no filter
	SortColumn string // a value of AccountSortFields; "" means family name
	Descending bool
	Limit      int
	Offset     int
}

const accountColumns = `id, email, password_hash, reset_key_hash, given_name, family_name,
	active, authorized_to_blog, admin, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.ResetKeyHash,
		&a.GivenName,
		&a.FamilyName,
		&a.Active,
		&a.AuthorizedToBlog,
		&a.Admin,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Insert persists a new account and fills in ID and timestamps. A duplicate
// email (case-insensitive, enforced by the NOCASE unique index) comes back
// as a Conflict.
func (s *AccountStore) Insert(ctx context.Context, a *model.Account) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	res, err := s.q.ExecContext(ctx,
		`INSERT INTO accounts (email, password_hash, reset_key_hash, given_name, family_name,
			given_name_fold, family_name_fold, active, authorized_to_blog, admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Email,
		a.PasswordHash,
		a.ResetKeyHash,
		a.GivenName,
		a.FamilyName,
		textnorm.Fold(a.GivenName),
		textnorm.Fold(a.FamilyName),
		a.Active,
		a.AuthorizedToBlog,
		a.Admin,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("an account already exists with email %s", a.Email))
		}
		return fmt.Errorf("store: inserting account (email=%s): %w", a.Email, err)
	}

	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: reading new account id: %w", err)
	}
	return nil
}

// GetByID fetches one account. Returns apperror.ErrNotFound when absent.
func (s *AccountStore) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	a, err := scanAccount(s.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("account", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("store: getting account %d: %w", id, err)
	}
	return a, nil
}

// GetByEmail fetches one account by email, case-insensitively (the email
// column carries the NOCASE collation).
func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	a, err := scanAccount(s.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("account", email)
		}
		return nil, fmt.Errorf("store: getting account by email: %w", err)
	}
	return a, nil
}

// EmailInUse reports whether any account other than excludeID already holds
// the email, case-insensitively. Pass excludeID 0 for create checks.
func (s *AccountStore) EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE email = ? AND id != ?`,
		email, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: checking email uniqueness: %w", err)
	}
	return n > 0, nil
}

// Update rewrites the mutable columns of an existing account.
func (s *AccountStore) Update(ctx context.Context, a *model.Account) error {
	a.UpdatedAt = time.Now().UTC()

	res, err := s.q.ExecContext(ctx,
		`UPDATE accounts
		 SET email = ?, password_hash = ?, reset_key_hash = ?, given_name = ?, family_name = ?,
		     given_name_fold = ?, family_name_fold = ?, active = ?, authorized_to_blog = ?,
		     admin = ?, updated_at = ?
		 WHERE id = ?`,
		a.Email,
		a.PasswordHash,
		a.ResetKeyHash,
		a.GivenName,
		a.FamilyName,
		textnorm.Fold(a.GivenName),
		textnorm.Fold(a.FamilyName),
		a.Active,
		a.AuthorizedToBlog,
		a.Admin,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("an account already exists with email %s", a.Email))
		}
		return fmt.Errorf("store: updating account %d: %w", a.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: updating account %d: %w", a.ID, err)
	}
	if n == 0 {
		return apperror.NotFound("account", strconv.FormatInt(a.ID, 10))
	}
	return nil
}

// List returns accounts matching the filter, ordered and paginated.
func (s *AccountStore) List(ctx context.Context, f AccountFilter) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`
	var args []any

	if f.Name != "" {
		pattern := likePattern(textnorm.Fold(f.Name))
		query += ` AND (given_name_fold LIKE ? ESCAPE '\' OR family_name_fold LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}
	if f.Email != "" {
		query += ` AND email LIKE ? ESCAPE '\'`
		args = append(args, likePattern(f.Email))
	}
	if f.Active != nil {
		query += ` AND active = ?`
		args = append(args, *f.Active)
	}

	column := f.SortColumn
	if column == "" {
		column = "family_name_fold"
	}
	query += ` ORDER BY ` + column
	if f.Descending {
		query += ` DESC`
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scanning account row: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: listing accounts: %w", err)
	}
	return accounts, nil
}

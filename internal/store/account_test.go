package store

import (
	"context"
	"errors"
	"testing"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/model"
)

func TestAccountEmailUniquenessIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertAccount(t, s, &model.Account{Email: "Maria@Example.com", Active: true})

	err := s.Tx(ctx, func(tx *Tx) error {
		return tx.Accounts().Insert(ctx, &model.Account{Email: "maria@example.com", Active: true})
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Insert() with case-varied duplicate email: error = %v, want ErrConflict", err)
	}
}

func TestAccountGetByEmailIgnoresCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := insertAccount(t, s, &model.Account{Email: "Maria@Example.com", Active: true})

	var got *model.Account
	err := s.Tx(ctx, func(tx *Tx) error {
		var err error
		got, err = tx.Accounts().GetByEmail(ctx, "MARIA@EXAMPLE.COM")
		return err
	})
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("GetByEmail() ID = %d, want %d", got.ID, want.ID)
	}
}

func TestAccountGetByIDNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.Tx(context.Background(), func(tx *Tx) error {
		_, err := tx.Accounts().GetByID(context.Background(), 999)
		return err
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(999) error = %v, want ErrNotFound", err)
	}
}

func TestAccountEmailInUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := insertAccount(t, s, &model.Account{Email: "taken@example.com", Active: true})

	err := s.Tx(ctx, func(tx *Tx) error {
		used, err := tx.Accounts().EmailInUse(ctx, "TAKEN@example.com", 0)
		if err != nil {
			return err
		}
		if !used {
			t.Error("EmailInUse() = false for a case-varied duplicate")
		}

		// The account itself is excluded so self-updates keep their email.
		used, err = tx.Accounts().EmailInUse(ctx, "taken@example.com", a.ID)
		if err != nil {
			return err
		}
		if used {
			t.Error("EmailInUse() = true when only the excluded account holds it")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Tx() error = %v", err)
	}
}

func TestAccountUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := insertAccount(t, s, &model.Account{Email: "edit@example.com", GivenName: "Old", Active: true})

	a.GivenName = "New"
	a.AuthorizedToBlog = true
	err := s.Tx(ctx, func(tx *Tx) error {
		return tx.Accounts().Update(ctx, a)
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	var got *model.Account
	s.Tx(ctx, func(tx *Tx) error {
		var err error
		got, err = tx.Accounts().GetByID(ctx, a.ID)
		return err
	})
	if got.GivenName != "New" || !got.AuthorizedToBlog {
		t.Errorf("updated account = %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Errorf("UpdatedAt %v precedes CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestAccountUpdateMissingRow(t *testing.T) {
	s := newTestStore(t)
	err := s.Tx(context.Background(), func(tx *Tx) error {
		return tx.Accounts().Update(context.Background(), &model.Account{ID: 404, Email: "x@example.com"})
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() on missing row: error = %v, want ErrNotFound", err)
	}
}

func TestAccountListNameFilterIgnoresAccents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertAccount(t, s, &model.Account{Email: "elodie@example.com", GivenName: "Élodie", FamilyName: "Brûlée", Active: true})
	insertAccount(t, s, &model.Account{Email: "other@example.com", GivenName: "Otto", FamilyName: "Plain", Active: true})

	tests := []struct {
		filter string
		want   string
	}{
		{"elodie", "elodie@example.com"},
		{"ÉLODIE", "elodie@example.com"},
		{"brulee", "elodie@example.com"},
	}
	for _, tt := range tests {
		var got []model.Account
		err := s.Tx(ctx, func(tx *Tx) error {
			var err error
			got, err = tx.Accounts().List(ctx, AccountFilter{Name: tt.filter, Limit: 10})
			return err
		})
		if err != nil {
			t.Fatalf("List(Name=%q) error = %v", tt.filter, err)
		}
		if len(got) != 1 || got[0].Email != tt.want {
			t.Errorf("List(Name=%q) matched %d rows, want just %s", tt.filter, len(got), tt.want)
		}
	}
}

func TestAccountListActiveFilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertAccount(t, s, &model.Account{Email: "z@example.com", FamilyName: "Zimmer", Active: true})
	insertAccount(t, s, &model.Account{Email: "a@example.com", FamilyName: "Ábel", Active: true})
	insertAccount(t, s, &model.Account{Email: "gone@example.com", FamilyName: "Gone", Active: false})

	active := true
	var got []model.Account
	err := s.Tx(ctx, func(tx *Tx) error {
		var err error
		got, err = tx.Accounts().List(ctx, AccountFilter{Active: &active, Limit: 10})
		return err
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List(active) returned %d rows, want 2", len(got))
	}
	// Default order is family name, accent-folded, so Ábel sorts first.
	if got[0].FamilyName != "Ábel" || got[1].FamilyName != "Zimmer" {
		t.Errorf("order = [%s, %s], want [Ábel, Zimmer]", got[0].FamilyName, got[1].FamilyName)
	}
}

func TestAccountListPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	names := []string{"Adams", "Baker", "Clark", "Doyle"}
	for _, n := range names {
		insertAccount(t, s, &model.Account{Email: n + "@example.com", FamilyName: n, Active: true})
	}

	var got []model.Account
	err := s.Tx(ctx, func(tx *Tx) error {
		var err error
		got, err = tx.Accounts().List(ctx, AccountFilter{Limit: 2, Offset: 2})
		return err
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].FamilyName != "Clark" || got[1].FamilyName != "Doyle" {
		t.Errorf("page 2 = %v", got)
	}
}

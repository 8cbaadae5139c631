package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/model"
)

func TestPostSlugConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	author := insertAccount(t, s, &model.Account{Email: "author@example.com", Active: true, AuthorizedToBlog: true})
	insertPost(t, s, &model.BlogPost{ID: "first-post", Title: "First", AuthorID: author.ID, PostedAt: time.Now().UTC(), Active: true})

	err := s.Tx(ctx, func(tx *Tx) error {
		return tx.Posts().Insert(ctx, &model.BlogPost{ID: "first-post", Title: "Other", AuthorID: author.ID, PostedAt: time.Now().UTC(), Active: true})
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Insert() with duplicate slug: error = %v, want ErrConflict", err)
	}
}

func TestPostInsertRequiresAuthorRow(t *testing.T) {
	s := newTestStore(t)
	err := s.Tx(context.Background(), func(tx *Tx) error {
		return tx.Posts().Insert(context.Background(), &model.BlogPost{
			ID: "orphan", Title: "Orphan", AuthorID: 999, PostedAt: time.Now().UTC(), Active: true,
		})
	})
	if err == nil {
		t.Error("Insert() accepted a post whose author does not exist")
	}
}

func TestPostGetByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	author := insertAccount(t, s, &model.Account{Email: "author@example.com", Active: true})
	insertPost(t, s, &model.BlogPost{ID: "hello-world", Title: "Hello World", AuthorID: author.ID, PostedAt: time.Now().UTC(), Active: true})

	var got *model.BlogPost
	err := s.Tx(ctx, func(tx *Tx) error {
		var err error
		got, err = tx.Posts().GetByID(ctx, "hello-world")
		return err
	})
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Hello World" || got.AuthorID != author.ID {
		t.Errorf("GetByID() = %+v", got)
	}

	err = s.Tx(ctx, func(tx *Tx) error {
		_, err := tx.Posts().GetByID(ctx, "no-such-post")
		return err
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func seedVisibilityPosts(t *testing.T, s *Store) (authorID, otherID int64) {
	t.Helper()
	author := insertAccount(t, s, &model.Account{Email: "author@example.com", Active: true, AuthorizedToBlog: true})
	other := insertAccount(t, s, &model.Account{Email: "other@example.com", Active: true, AuthorizedToBlog: true})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	insertPost(t, s, &model.BlogPost{ID: "public-post", Title: "Public", AuthorID: author.ID, PostedAt: base, Active: true})
	insertPost(t, s, &model.BlogPost{ID: "draft-post", Title: "Draft", AuthorID: author.ID, PostedAt: base.Add(time.Hour), Active: false})
	insertPost(t, s, &model.BlogPost{ID: "other-draft", Title: "Other Draft", AuthorID: other.ID, PostedAt: base.Add(2 * time.Hour), Active: false})
	return author.ID, other.ID
}

func listPostIDs(t *testing.T, s *Store, f PostFilter) []string {
	t.Helper()
	if f.Limit == 0 {
		f.Limit = 10
	}
	var ids []string
	err := s.Tx(context.Background(), func(tx *Tx) error {
		posts, err := tx.Posts().List(context.Background(), f)
		if err != nil {
			return err
		}
		for _, p := range posts {
			ids = append(ids, p.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	return ids
}

func TestPostListVisibility(t *testing.T) {
	s := newTestStore(t)
	authorID, _ := seedVisibilityPosts(t, s)

	// Anonymous viewers see only active posts.
	got := listPostIDs(t, s, PostFilter{})
	if len(got) != 1 || got[0] != "public-post" {
		t.Errorf("anonymous list = %v, want [public-post]", got)
	}

	// The author additionally sees their own draft, not the other author's.
	got = listPostIDs(t, s, PostFilter{ViewerID: authorID})
	if len(got) != 2 || got[0] != "public-post" || got[1] != "draft-post" {
		t.Errorf("author list = %v, want [public-post draft-post]", got)
	}

	// Administrators see everything.
	got = listPostIDs(t, s, PostFilter{ViewerAdmin: true})
	if len(got) != 3 {
		t.Errorf("admin list = %v, want all three posts", got)
	}
}

func TestPostListFilters(t *testing.T) {
	s := newTestStore(t)
	authorID, _ := seedVisibilityPosts(t, s)

	got := listPostIDs(t, s, PostFilter{Title: "PUBLIC", ViewerAdmin: true})
	if len(got) != 1 || got[0] != "public-post" {
		t.Errorf("title filter = %v, want [public-post]", got)
	}

	got = listPostIDs(t, s, PostFilter{AuthorID: &authorID, ViewerAdmin: true})
	if len(got) != 2 {
		t.Errorf("author filter = %v, want the author's two posts", got)
	}

	inactive := false
	got = listPostIDs(t, s, PostFilter{Active: &inactive, ViewerAdmin: true})
	if len(got) != 2 {
		t.Errorf("active=false filter = %v, want the two drafts", got)
	}
}

func TestPostListDefaultOrderIsPostedTime(t *testing.T) {
	s := newTestStore(t)
	seedVisibilityPosts(t, s)

	got := listPostIDs(t, s, PostFilter{ViewerAdmin: true})
	want := []string{"public-post", "draft-post", "other-draft"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	got = listPostIDs(t, s, PostFilter{ViewerAdmin: true, Descending: true})
	if got[0] != "other-draft" {
		t.Errorf("descending order = %v, want other-draft first", got)
	}
}

func TestPostUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	author := insertAccount(t, s, &model.Account{Email: "author@example.com", Active: true})
	p := insertPost(t, s, &model.BlogPost{ID: "edit-me", Title: "Before", AuthorID: author.ID, PostedAt: time.Now().UTC(), Active: true})

	p.Title = "After"
	p.Active = false
	if err := s.Tx(ctx, func(tx *Tx) error { return tx.Posts().Update(ctx, p) }); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	var got *model.BlogPost
	s.Tx(ctx, func(tx *Tx) error {
		var err error
		got, err = tx.Posts().GetByID(ctx, "edit-me")
		return err
	})
	if got.Title != "After" || got.Active {
		t.Errorf("updated post = %+v", got)
	}

	err := s.Tx(ctx, func(tx *Tx) error {
		return tx.Posts().Update(ctx, &model.BlogPost{ID: "missing", AuthorID: author.ID, PostedAt: time.Now().UTC()})
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

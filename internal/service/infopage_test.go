package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/model"
)

func TestPageGetUnwrittenIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	req := emptyRequest()
	req.Params["id"] = "about"
	_, err := env.pages.Get(context.Background(), req)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPageGetOutsideAllowListIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	req := emptyRequest()
	req.Params["id"] = "admin-console"
	_, err := env.pages.Get(context.Background(), req)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPageUpdateCreatesOnFirstWrite(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, model.Account{Email: "admin@example.com", Active: true, Admin: true}, "admin pass 99")

	req := emptyRequest()
	req.Auth = asCreds("admin@example.com", "admin pass 99")
	req.Params["id"] = "about"
	req.Body = map[string]any{"title": "About Us", "body": "We write things."}

	projected, err := env.pages.Update(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "About Us", projected["title"])

	// The page now reads publicly.
	getReq := emptyRequest()
	getReq.Params["id"] = "about"
	projected, err = env.pages.Get(context.Background(), getReq)
	require.NoError(t, err)
	assert.Equal(t, "We write things.", projected["body"])
}

func TestPageUpdateEditsInPlace(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, model.Account{Email: "admin@example.com", Active: true, Admin: true}, "admin pass 99")

	req := emptyRequest()
	req.Auth = asCreds("admin@example.com", "admin pass 99")
	req.Params["id"] = "home"
	req.Body = map[string]any{"title": "Welcome", "body": "v1"}
	_, err := env.pages.Update(context.Background(), req)
	require.NoError(t, err)

	// A partial edit keeps the fields it does not mention.
	req.Body = map[string]any{"body": "v2"}
	projected, err := env.pages.Update(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", projected["title"])
	assert.Equal(t, "v2", projected["body"])
}

func TestPageUpdateRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, model.Account{Email: "user@example.com", Active: true}, "user pass 41")

	req := emptyRequest()
	req.Params["id"] = "about"
	req.Body = map[string]any{"body": "graffiti"}

	_, err := env.pages.Update(context.Background(), req)
	assert.ErrorIs(t, err, apperror.ErrAuthentication)

	req.Auth = asCreds("user@example.com", "user pass 41")
	_, err = env.pages.Update(context.Background(), req)
	assert.ErrorIs(t, err, apperror.ErrAuthorization)
}

func TestPageUpdateOutsideAllowListIsMalformed(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, model.Account{Email: "admin@example.com", Active: true, Admin: true}, "admin pass 99")

	req := emptyRequest()
	req.Auth = asCreds("admin@example.com", "admin pass 99")
	req.Params["id"] = "secret"
	req.Body = map[string]any{"body": "x"}

	_, err := env.pages.Update(context.Background(), req)
	require.ErrorIs(t, err, apperror.ErrMalformed)
	assert.Contains(t, err.Error(), "must be one of about, contact, home")
}

func TestPageList(t *testing.T) {
	env := newTestEnv(t)
	env.seedAccount(t, model.Account{Email: "admin@example.com", Active: true, Admin: true}, "admin pass 99")

	for _, id := range []string{"home", "contact"} {
		req := emptyRequest()
		req.Auth = asCreds("admin@example.com", "admin pass 99")
		req.Params["id"] = id
		req.Body = map[string]any{"title": id, "body": "text"}
		_, err := env.pages.Update(context.Background(), req)
		require.NoError(t, err)
	}

	results, err := env.pages.List(context.Background(), emptyRequest())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "contact", results[0]["id"])
	assert.Equal(t, "home", results[1]["id"])
}

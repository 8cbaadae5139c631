package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/auth"
	"github.com/nhollis/inkwell/internal/model"
	"github.com/nhollis/inkwell/internal/policy"
	"github.com/nhollis/inkwell/internal/store"
	"github.com/nhollis/inkwell/internal/validate"
)

// AllowedPageIDs is the fixed set of info-page identifiers. Pages outside
// the list cannot be read or written; listed pages come into existence on
// their first update.
var AllowedPageIDs = map[string]bool{
	"home":    true,
	"about":   true,
	"contact": true,
}

const maxPageTitleLength = 200

// PageService implements the info-page resource operations.
type PageService struct {
	store     *store.Store
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewPageService creates a PageService.
func NewPageService(st *store.Store, passwords *auth.PasswordService, logger *slog.Logger) *PageService {
	return &PageService{store: st, passwords: passwords, logger: logger}
}

// Get returns one page. Identifiers outside the allow-list and pages never
// yet written both read as not-found.
func (s *PageService) Get(ctx context.Context, req *Request) (map[string]any, error) {
	id := req.Params["id"]
	if !AllowedPageIDs[id] {
		return nil, apperror.NotFound("page", id)
	}

	var projected map[string]any
	err := s.store.Tx(ctx, func(tx *store.Tx) error {
		caller, err := verifyCaller(ctx, tx, req, s.passwords)
		if err != nil {
			return err
		}

		page, err := tx.Pages().Get(ctx, id)
		if err != nil {
			return err
		}

		projected = policy.Project(policy.PageFields, roleFor(caller, 0), page.Fields())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projected, nil
}

// List returns every existing page in id order.
func (s *PageService) List(ctx context.Context, req *Request) ([]map[string]any, error) {
	var results []map[string]any
	err := s.store.Tx(ctx, func(tx *store.Tx) error {
		caller, err := verifyCaller(ctx, tx, req, s.passwords)
		if err != nil {
			return err
		}

		pages, err := tx.Pages().List(ctx)
		if err != nil {
			return err
		}

		role := roleFor(caller, 0)
		results = make([]map[string]any, 0, len(pages))
		for i := range pages {
			results = append(results, policy.Project(policy.PageFields, role, pages[i].Fields()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Update upserts a page: the row is created on first update and edited in
// place afterwards. Administrators only.
func (s *PageService) Update(ctx context.Context, req *Request) (map[string]any, error) {
	id := req.Params["id"]
	if !AllowedPageIDs[id] {
		ids := make([]string, 0, len(AllowedPageIDs))
		for pageID := range AllowedPageIDs {
			ids = append(ids, pageID)
		}
		sort.Strings(ids)
		return nil, apperror.Malformed(fmt.Sprintf("id: must be one of %s", strings.Join(ids, ", ")))
	}
	if !req.authenticated() {
		return nil, apperror.Authentication("authentication is required to edit pages")
	}

	var page *model.InfoPage
	err := s.store.Tx(ctx, func(tx *store.Tx) error {
		caller, err := verifyCaller(ctx, tx, req, s.passwords)
		if err != nil {
			return err
		}
		if !caller.Admin {
			return apperror.Authorization("not permitted to edit pages")
		}

		rules := validate.Rules{
			"title": {
				validate.NotNull{},
				validate.TypeOf{Kind: validate.String},
				validate.Length{Max: maxPageTitleLength},
			},
			"body": {validate.NotNull{}, validate.TypeOf{Kind: validate.String}},
		}
		if err := validate.Apply(ctx, rules, req.Body); err != nil {
			return err
		}

		page, err = tx.Pages().Get(ctx, id)
		if err != nil {
			if !errors.Is(err, apperror.ErrNotFound) {
				return err
			}
			page = &model.InfoPage{ID: id} // first write creates the page
		}

		if v, ok := bodyString(req.Body, "title"); ok {
			page.Title = v
		}
		if v, ok := bodyString(req.Body, "body"); ok {
			page.Body = v
		}

		return tx.Pages().Upsert(ctx, page)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("page updated", slog.String("pageID", id))
	return policy.Project(policy.PageFields, policy.Admin, page.Fields()), nil
}

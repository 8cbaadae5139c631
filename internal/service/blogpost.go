package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/rs/xid"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/auth"
	"github.com/nhollis/inkwell/internal/model"
	"github.com/nhollis/inkwell/internal/policy"
	"github.com/nhollis/inkwell/internal/store"
	"github.com/nhollis/inkwell/internal/validate"
)

const (
	maxSlugLength    = 100
	maxTitleLength   = 200
	maxPreviewLength = 500
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PostService implements the blog-post resource operations.
type PostService struct {
	store     *store.Store
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(st *store.Store, passwords *auth.PasswordService, logger *slog.Logger) *PostService {
	return &PostService{store: st, passwords: passwords, logger: logger}
}

var slugRules = []validate.Rule{
	validate.NotNull{},
	validate.TypeOf{Kind: validate.String},
	validate.Length{Min: 1, Max: maxSlugLength},
	validate.Match{Pattern: slugPattern, Message: "must be a lowercase slug (letters, digits, hyphens)"},
}

var titleRules = []validate.Rule{
	validate.NotNull{},
	validate.TypeOf{Kind: validate.String},
	validate.Length{Min: 1, Max: maxTitleLength},
}

var previewRules = []validate.Rule{
	validate.TypeOf{Kind: validate.String},
	validate.Length{Max: maxPreviewLength},
}

var postedTimeRules = []validate.Rule{
	validate.NotNull{},
	validate.TypeOf{Kind: validate.String},
	validate.Check{Fn: func(_ context.Context, value any) error {
		s, _ := value.(string)
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return apperror.Malformed("must be an RFC 3339 timestamp")
		}
		return nil
	}},
}

// authorRule checks that a proposed author references an existing account
// that is currently authorized to blog.
func authorRule(tx *store.Tx) []validate.Rule {
	return []validate.Rule{
		validate.NotNull{},
		validate.TypeOf{Kind: validate.Natural},
		validate.Check{Fn: func(ctx context.Context, value any) error {
			id, _ := validate.AsNatural(value)
			account, err := tx.Accounts().GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					return apperror.Malformed("must reference an existing account")
				}
				return err
			}
			if !account.Active || !account.AuthorizedToBlog {
				return apperror.Malformed("must reference an account authorized to blog")
			}
			return nil
		}},
	}
}

// Create publishes a new post. The caller must be authenticated and
// authorized to blog; assigning a different author requires an
// administrator, and the author must itself be authorized to blog.
func (s *PostService) Create(ctx context.Context, req *Request) (map[string]any, error) {
	if !req.authenticated() {
		return nil, apperror.Authentication("authentication is required to create a blog post")
	}

	var (
		post *model.BlogPost
		role policy.Role
	)
	err := s.store.Tx(ctx, func(tx *store.Tx) error {
		caller, err := verifyCaller(ctx, tx, req, s.passwords)
		if err != nil {
			return err
		}
		role = roleFor(caller, caller.ID) // creating on one's own behalf

		if err := policy.CheckWrites(policy.PostFields, role, req.Body); err != nil {
			return err
		}

		rules := validate.Rules{
			"id":         slugRules,
			"title":      append([]validate.Rule{validate.Required{}}, titleRules...),
			"body":       {validate.Required{}, validate.NotNull{}, validate.TypeOf{Kind: validate.String}},
			"preview":    previewRules,
			"postedTime": postedTimeRules,
			"active":     boolRules,
			"author":     authorRule(tx),
		}
		if err := validate.Apply(ctx, rules, req.Body); err != nil {
			return err
		}

		authorID := caller.ID
		if v, ok := req.Body["author"]; ok && v != nil {
			authorID, _ = validate.AsNatural(v)
		}
		if authorID == caller.ID && !caller.AuthorizedToBlog {
			return apperror.Authorization("account is not authorized to blog")
		}

		post = &model.BlogPost{
			AuthorID: authorID,
			Active:   true,
			PostedAt: time.Now().UTC(),
		}
		if v, ok := bodyString(req.Body, "id"); ok {
			post.ID = v
		} else {
			post.ID = xid.New().String()
		}
		post.Title, _ = bodyString(req.Body, "title")
		post.Body, _ = bodyString(req.Body, "body")
		post.Preview, _ = bodyString(req.Body, "preview")
		if v, ok := bodyString(req.Body, "postedTime"); ok {
			post.PostedAt, _ = time.Parse(time.RFC3339, v)
		}
		if v, ok := bodyBool(req.Body, "active"); ok {
			post.Active = v
		}

		if role != policy.Admin {
			role = roleFor(caller, post.AuthorID)
		}
		return tx.Posts().Insert(ctx, post)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("blog post created",
		slog.String("postID", post.ID),
		slog.Int64("authorID", post.AuthorID),
	)
	return policy.Project(policy.PostFields, role, post.Fields()), nil
}

// Get returns one post by slug. Inactive posts exist only for their author
// and administrators; everyone else sees not-found.
func (s *PostService) Get(ctx context.Context, req *Request) (map[string]any, error) {
	id := req.Params["id"]
	if id == "" {
		return nil, apperror.Malformed("id: is required")
	}

	var projected map[string]any
	err := s.store.Tx(ctx, func(tx *store.Tx) error {
		caller, err := verifyCaller(ctx, tx, req, s.passwords)
		if err != nil {
			return err
		}

		post, err := tx.Posts().GetByID(ctx, id)
		if err != nil {
			return err
		}

		role := roleFor(caller, post.AuthorID)
		if !post.Active && role < policy.Owner {
			return apperror.NotFound("blog post", id)
		}

		projected = policy.Project(policy.PostFields, role, post.Fields())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projected, nil
}

// Search lists posts matching the query. Inactive posts belonging to other
// authors are omitted from the results rather than erroring.
func (s *PostService) Search(ctx context.Context, req *Request) ([]map[string]any, error) {
	rules := validate.Rules{
		"title":  {validate.TypeOf{Kind: validate.String}, validate.Length{Max: maxTitleLength}},
		"author": {validate.TypeOf{Kind: validate.Natural}},
		"active": {validate.TypeOf{Kind: validate.Boolean}},
		"sortBy": {validate.TypeOf{Kind: validate.String}, sortFieldRule(store.PostSortFields)},
		"order":  {validate.TypeOf{Kind: validate.String}, orderRule},
		"offset": {validate.TypeOf{Kind: validate.Natural}},
	}
	if err := validate.Apply(ctx, rules, req.queryAttrs()); err != nil {
		return nil, err
	}

	var results []map[string]any
	err := s.store.Tx(ctx, func(tx *store.Tx) error {
		caller, err := verifyCaller(ctx, tx, req, s.passwords)
		if err != nil {
			return err
		}

		filter := store.PostFilter{
			Title:      req.Query["title"],
			SortColumn: sortColumn(store.PostSortFields, req.Query),
			Descending: req.Query["order"] == "desc",
			Limit:      PageSize,
			Offset:     searchOffset(req.Query),
		}
		if caller != nil {
			filter.ViewerID = caller.ID
			filter.ViewerAdmin = caller.Admin
		}
		if v, ok := validate.AsNatural(req.Query["author"]); ok && req.Query["author"] != "" {
			filter.AuthorID = &v
		}
		if v, ok := validate.AsBool(req.Query["active"]); ok {
			filter.Active = &v
		}

		posts, err := tx.Posts().List(ctx, filter)
		if err != nil {
			return err
		}

		results = make([]map[string]any, 0, len(posts))
		for i := range posts {
			role := roleFor(caller, posts[i].AuthorID)
			results = append(results, policy.Project(policy.PostFields, role, posts[i].Fields()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Update edits an existing post. Only the author or an administrator may
// mutate a post; reassigning the author is an administrator-only write.
func (s *PostService) Update(ctx context.Context, req *Request) (map[string]any, error) {
	id := req.Params["id"]
	if id == "" {
		return nil, apperror.Malformed("id: is required")
	}
	if !req.authenticated() {
		return nil, apperror.Authentication("authentication is required to edit a blog post")
	}

	var (
		post *model.BlogPost
		role policy.Role
	)
	err := s.store.Tx(ctx, func(tx *store.Tx) error {
		caller, err := verifyCaller(ctx, tx, req, s.passwords)
		if err != nil {
			return err
		}

		post, err = tx.Posts().GetByID(ctx, id)
		if err != nil {
			return err
		}

		role = roleFor(caller, post.AuthorID)
		if role < policy.Owner {
			return apperror.Authorization("not permitted to modify another author's post")
		}
		if err := policy.CheckWrites(policy.PostFields, role, req.Body); err != nil {
			return err
		}

		rules := validate.Rules{
			"title":      titleRules,
			"body":       {validate.NotNull{}, validate.TypeOf{Kind: validate.String}},
			"preview":    previewRules,
			"postedTime": postedTimeRules,
			"active":     boolRules,
			"author":     authorRule(tx),
		}
		if err := validate.Apply(ctx, rules, req.Body); err != nil {
			return err
		}

		if v, ok := bodyString(req.Body, "title"); ok {
			post.Title = v
		}
		if v, ok := bodyString(req.Body, "body"); ok {
			post.Body = v
		}
		if v, ok := bodyString(req.Body, "preview"); ok {
			post.Preview = v
		} else if bodyNull(req.Body, "preview") {
			post.Preview = ""
		}
		if v, ok := bodyString(req.Body, "postedTime"); ok {
			post.PostedAt, _ = time.Parse(time.RFC3339, v)
		}
		if v, ok := bodyBool(req.Body, "active"); ok {
			post.Active = v
		}
		if v, ok := req.Body["author"]; ok && v != nil {
			post.AuthorID, _ = validate.AsNatural(v)
		}

		return tx.Posts().Update(ctx, post)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("blog post updated", slog.String("postID", post.ID))
	return policy.Project(policy.PostFields, role, post.Fields()), nil
}

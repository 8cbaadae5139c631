package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/nhollis/inkwell/internal/apperror"
	"github.com/nhollis/inkwell/internal/auth"
	"github.com/nhollis/inkwell/internal/mail"
	"github.com/nhollis/inkwell/internal/model"
	"github.com/nhollis/inkwell/internal/policy"
	"github.com/nhollis/inkwell/internal/store"
	"github.com/nhollis/inkwell/internal/validate"
)

const maxEmailLength = 254
const maxNameLength = 100

// AccountService implements the account resource operations.
type AccountService struct {
	store     *store.Store
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	mailer    mail.Mailer
	logger    *slog.Logger
}

// NewAccountService creates an AccountService with all dependencies.
func NewAccountService(
	st *store.Store,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	mailer mail.Mailer,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		store:     st,
		passwords: passwords,
		tokens:    tokens,
		mailer:    mailer,
		logger:    logger,
	}
}

// emailRules returns the shared email attribute rules, with a uniqueness
// predicate bound to the transaction (excluding excludeID, 0 on create).
// A taken email surfaces as a Conflict, not a generic validation failure.
func (s *AccountService) emailRules(tx *store.Tx, excludeID int64, required bool) []validate.Rule {
	rules := []validate.Rule{
		validate.NotNull{},
		validate.TypeOf{Kind: validate.Email},
		validate.Length{Max: maxEmailLength},
		validate.Check{Fn: func(ctx context.Context, value any) error {
			email, _ := value.(string)
			taken, err := tx.Accounts().EmailInUse(ctx, email, excludeID)
			if err != nil {
				return err
			}
			if taken {
				return apperror.Conflict(fmt.Sprintf("an account already exists with email %s", email))
			}
			return nil
		}},
	}
	if required {
		rules = append([]validate.Rule{validate.Required{}}, rules...)
	}
	return rules
}

var passwordRules = []validate.Rule{
	validate.NotNull{},
	validate.TypeOf{Kind: validate.String},
	validate.Check{Fn: func(_ context.Context, value any) error {
		s, _ := value.(string)
		return auth.CheckPasswordStrength(s)
	}},
}

var nameRules = []validate.Rule{
	validate.TypeOf{Kind: validate.String},
	validate.Length{Max: maxNameLength},
}

var boolRules = []validate.Rule{
	validate.NotNull{},
	validate.TypeOf{Kind: validate.Boolean},
}

// Create registers a new account. The account starts passwordless and
// active, with a pending reset key whose plaintext is mailed after the
// insert commits. A mail failure is returned as the operation's failure
// even though the committed row persists; this asymmetry is deliberate and
// mirrors the behavior the system has always had.
//
// Administrator callers may additionally set the role flags; anyone else
// submitting them is rejected before validation runs.
func (s *AccountService) Create(ctx context.Context, req *Request) (map[string]any, error) {
	var (
		account  *model.Account
		resetKey string
		role     policy.Role
	)

	err := s.store.Tx(ctx, func(tx *store.Tx) error {
		caller, err := verifyCaller(ctx, tx, req, s.passwords)
		if err != nil {
			return err
		}
		role = roleFor(caller, 0)

		// The creator acts as the nascent account's owner for write
		// purposes; role flags still require an administrator.
		writeRole := role
		if writeRole < policy.Owner {
			writeRole = policy.Owner
		}
		if err := policy.CheckWrites(policy.AccountFields, writeRole, req.Body); err != nil {
			return err
		}

		rules := validate.Rules{
			"emailAddress":     s.emailRules(tx, 0, true),
			"givenName":        nameRules,
			"familyName":       nameRules,
			"active":           boolRules,
			"authorizedToBlog": boolRules,
			"admin":            boolRules,
		}
		if err := validate.Apply(ctx, rules, req.Body); err != nil {
			return err
		}

		resetKey, err = auth.NewResetKey()
		if err != nil {
			return err
		}
		keyHash, err := s.passwords.Hash(resetKey)
		if err != nil {
			return err
		}

		email, _ := bodyString(req.Body, "emailAddress")
		givenName, _ := bodyString(req.Body, "givenName")
		familyName, _ := bodyString(req.Body, "familyName")

		account = &model.Account{
			Email:        email,
			ResetKeyHash: keyHash,
			GivenName:    givenName,
			FamilyName:   familyName,
			Active:       true,
		}
		if v, ok := bodyBool(req.Body, "active"); ok {
			account.Active = v
		}
		if v, ok := bodyBool(req.Body, "authorizedToBlog"); ok {
			account.AuthorizedToBlog = v
		}
		if v, ok := bodyBool(req.Body, "admin"); ok {
			account.Admin = v
		}

		return tx.Accounts().Insert(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created",
		slog.Int64("accountID", account.ID),
		slog.String("email", account.Email),
	)

	// The row is committed at this point; the notification runs after the
	// transaction and its failure still fails the operation (no
	// compensating rollback of the insert).
	if err := s.sendResetKey(ctx, account.Email, resetKey); err != nil {
		return nil, err
	}

	return policy.Project(policy.AccountFields, role, account.Fields()), nil
}

// Get returns one account, projected for the caller. Deactivated accounts
// are visible to themselves and administrators only.
func (s *AccountService) Get(ctx context.Context, req *Request) (map[string]any, error) {
	id, err := paramID(req, "id")
	if err != nil {
		return nil, err
	}

	var projected map[string]any
	err = s.store.Tx(ctx, func(tx *store.Tx) error {
		caller, err := verifyCaller(ctx, tx, req, s.passwords)
		if err != nil {
			return err
		}

		account, err := tx.Accounts().GetByID(ctx, id)
		if err != nil {
			return err
		}

		role := roleFor(caller, account.ID)
		if !account.Active && role < policy.Owner {
			return apperror.NotFound("account", strconv.FormatInt(id, 10))
		}

		projected = policy.Project(policy.AccountFields, role, account.Fields())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projected, nil
}

// Search lists accounts matching the query, each row projected for the
// caller. Non-administrators only ever see active accounts and may not
// filter on the active flag.
func (s *AccountService) Search(ctx context.Context, req *Request) ([]map[string]any, error) {
	rules := validate.Rules{
		"name":   {validate.TypeOf{Kind: validate.String}, validate.Length{Max: maxNameLength}},
		"email":  {validate.TypeOf{Kind: validate.String}, validate.Length{Max: maxEmailLength}},
		"active": {validate.TypeOf{Kind: validate.Boolean}},
		"sortBy": {validate.TypeOf{Kind: validate.String}, sortFieldRule(store.AccountSortFields)},
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
		admin := caller != nil && caller.Admin

		filter := store.AccountFilter{
			Name:       req.Query["name"],
			Email:      req.Query["email"],
			SortColumn: sortColumn(store.AccountSortFields, req.Query),
			Descending: req.Query["order"] == "desc",
			Limit:      PageSize,
			Offset:     searchOffset(req.Query),
		}
		if admin {
			if v, ok := validate.AsBool(req.Query["active"]); ok {
				filter.Active = &v
			}
		} else {
			if _, present := req.Query["active"]; present {
				return apperror.Authorization("not permitted to filter by active")
			}
			active := true
			filter.Active = &active
		}

		accounts, err := tx.Accounts().List(ctx, filter)
		if err != nil {
			return err
		}

		results = make([]map[string]any, 0, len(accounts))
		for i := range accounts {
			role := roleFor(caller, accounts[i].ID)
			results = append(results, policy.Project(policy.AccountFields, role, accounts[i].Fields()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Update dispatches to exactly one of three branches: an authenticated
// owner/administrator edit, an anonymous password set using a reset key,
// or an anonymous request for a fresh reset key. A request matching none
// of the shapes fails authentication.
func (s *AccountService) Update(ctx context.Context, req *Request) (map[string]any, error) {
	if req.authenticated() {
		return s.updateAuthenticated(ctx, req)
	}

	switch key := req.Body["passwordResetKey"].(type) {
	case bool:
		if key {
			return nil, s.requestResetKey(ctx, req)
		}
	case string:
		return nil, s.setPasswordWithKey(ctx, req)
	}

	return nil, apperror.Authentication("credentials or a password reset key are required")
}

func (s *AccountService) updateAuthenticated(ctx context.Context, req *Request) (map[string]any, error) {
	id, err := paramID(req, "id")
	if err != nil {
		return nil, err
	}

	var projected map[string]any
	err = s.store.Tx(ctx, func(tx *store.Tx) error {
		caller, err := verifyCaller(ctx, tx, req, s.passwords)
		if err != nil {
			return err
		}

		account, err := tx.Accounts().GetByID(ctx, id)
		if err != nil {
			return err
		}

		role := roleFor(caller, account.ID)
		if role < policy.Owner {
			return apperror.Authorization("not permitted to modify another account")
		}
		// Field-level guard: role flags are admin-only even when the
		// submitted value equals the stored one.
		if err := policy.CheckWrites(policy.AccountFields, role, req.Body); err != nil {
			return err
		}

		rules := validate.Rules{
			"emailAddress":     s.emailRules(tx, account.ID, false),
			"password":         passwordRules,
			"givenName":        nameRules,
			"familyName":       nameRules,
			"active":           boolRules,
			"authorizedToBlog": boolRules,
			"admin":            boolRules,
		}
		if err := validate.Apply(ctx, rules, req.Body); err != nil {
			return err
		}

		if v, ok := bodyString(req.Body, "emailAddress"); ok {
			account.Email = v
		}
		if v, ok := bodyString(req.Body, "givenName"); ok {
			account.GivenName = v
		} else if bodyNull(req.Body, "givenName") {
			account.GivenName = ""
		}
		if v, ok := bodyString(req.Body, "familyName"); ok {
			account.FamilyName = v
		} else if bodyNull(req.Body, "familyName") {
			account.FamilyName = ""
		}
		if v, ok := bodyBool(req.Body, "active"); ok {
			account.Active = v
		}
		if v, ok := bodyBool(req.Body, "authorizedToBlog"); ok {
			account.AuthorizedToBlog = v
		}
		if v, ok := bodyBool(req.Body, "admin"); ok {
			account.Admin = v
		}
		if v, ok := bodyString(req.Body, "password"); ok {
			hash, err := s.passwords.Hash(v)
			if err != nil {
				return err
			}
			account.PasswordHash = hash
			// A direct password set supersedes any pending reset key.
			account.ResetKeyHash = ""
		}

		if err := tx.Accounts().Update(ctx, account); err != nil {
			return err
		}

		projected = policy.Project(policy.AccountFields, role, account.Fields())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account updated", slog.Int64("accountID", id))
	return projected, nil
}

// setPasswordWithKey is the anonymous branch consuming a pending reset key.
// A wrong key fails authentication and leaves the stored state unchanged
// (the transaction rolls back).
func (s *AccountService) setPasswordWithKey(ctx context.Context, req *Request) error {
	rules := validate.Rules{
		"emailAddress": {
			validate.Required{}, validate.NotNull{},
			validate.TypeOf{Kind: validate.Email}, validate.Length{Max: maxEmailLength},
		},
		"password": append([]validate.Rule{validate.Required{}}, passwordRules...),
		"passwordResetKey": {
			validate.Required{}, validate.NotNull{},
			validate.TypeOf{Kind: validate.String},
			validate.Length{Min: auth.ResetKeyLength, Max: auth.ResetKeyLength},
		},
	}
	if err := validate.Apply(ctx, rules, req.Body); err != nil {
		return err
	}

	email, _ := bodyString(req.Body, "emailAddress")
	key, _ := bodyString(req.Body, "passwordResetKey")
	password, _ := bodyString(req.Body, "password")

	err := s.store.Tx(ctx, func(tx *store.Tx) error {
		account, err := tx.Accounts().GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if !account.Active {
			return apperror.NotFound("account", email)
		}
		if account.ResetKeyHash == "" {
			return apperror.Authentication("no password reset key is pending")
		}
		if err := s.passwords.Verify(account.ResetKeyHash, key); err != nil {
			return err
		}

		hash, err := s.passwords.Hash(password)
		if err != nil {
			return err
		}
		account.PasswordHash = hash
		account.ResetKeyHash = ""
		return tx.Accounts().Update(ctx, account)
	})
	if err != nil {
		return err
	}

	s.logger.Info("password set with reset key", slog.String("email", email))
	return nil
}

// requestResetKey is the anonymous branch rotating the reset key. A fresh
// key supersedes any pending one; the plaintext is mailed after commit and
// a mail failure fails the operation even though the new hash persists.
func (s *AccountService) requestResetKey(ctx context.Context, req *Request) error {
	rules := validate.Rules{
		"emailAddress": {
			validate.Required{}, validate.NotNull{},
			validate.TypeOf{Kind: validate.Email}, validate.Length{Max: maxEmailLength},
		},
		"passwordResetKey": {validate.Required{}, validate.NotNull{}, validate.TypeOf{Kind: validate.Boolean}},
	}
	if err := validate.Apply(ctx, rules, req.Body); err != nil {
		return err
	}

	email, _ := bodyString(req.Body, "emailAddress")

	var resetKey string
	err := s.store.Tx(ctx, func(tx *store.Tx) error {
		account, err := tx.Accounts().GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if !account.Active {
			return apperror.NotFound("account", email)
		}

		resetKey, err = auth.NewResetKey()
		if err != nil {
			return err
		}
		keyHash, err := s.passwords.Hash(resetKey)
		if err != nil {
			return err
		}
		account.ResetKeyHash = keyHash
		return tx.Accounts().Update(ctx, account)
	})
	if err != nil {
		return err
	}

	s.logger.Info("reset key issued", slog.String("email", email))
	return s.sendResetKey(ctx, email, resetKey)
}

// Login verifies credentials and issues a session token alongside the
// caller's own projection.
func (s *AccountService) Login(ctx context.Context, req *Request) (string, map[string]any, error) {
	if req.Auth == nil {
		return "", nil, apperror.Authentication("credentials are required")
	}

	var account *model.Account
	err := s.store.Tx(ctx, func(tx *store.Tx) error {
		caller, err := verifyCaller(ctx, tx, req, s.passwords)
		if err != nil {
			return err
		}
		account = caller
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issuing session token: %w", err)
	}

	s.logger.Info("session issued", slog.Int64("accountID", account.ID))
	role := roleFor(account, account.ID)
	return token, policy.Project(policy.AccountFields, role, account.Fields()), nil
}

func (s *AccountService) sendResetKey(ctx context.Context, email, key string) error {
	body := fmt.Sprintf(
		"A password reset key was requested for this address.\n\n"+
			"Your key: %s\n\n"+
			"Submit it together with your new password to set a password. "+
			"Requesting another key invalidates this one.",
		key,
	)
	if err := s.mailer.Send(ctx, email, "Your password reset key", body); err != nil {
		s.logger.Error("reset key mail failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("sending reset key notification: %w", err)
	}
	return nil
}

// paramID parses a numeric path parameter.
func paramID(req *Request, name string) (int64, error) {
	id, ok := validate.AsNatural(req.Params[name])
	if !ok || id == 0 {
		return 0, apperror.Malformed(fmt.Sprintf("%s: must be a positive integer", name))
	}
	return id, nil
}

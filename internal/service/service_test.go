package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/nhollis/inkwell/internal/auth"
	"github.com/nhollis/inkwell/internal/model"
	"github.com/nhollis/inkwell/internal/store"
)

// recordingMailer captures outbound mail so tests can read the reset keys
// that would otherwise only exist in a delivered message.
type recordingMailer struct {
	sent []sentMail
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

var keyLine = regexp.MustCompile(`Your key: ([A-Za-z0-9]+)`)

// lastKey extracts the reset key from the most recent message.
func (m *recordingMailer) lastKey(t *testing.T) string {
	t.Helper()
	if len(m.sent) == 0 {
		t.Fatal("no mail was sent")
	}
	match := keyLine.FindStringSubmatch(m.sent[len(m.sent)-1].body)
	if match == nil {
		t.Fatalf("mail body carries no reset key: %q", m.sent[len(m.sent)-1].body)
	}
	return match[1]
}

// failingMailer simulates an unreachable mail relay.
type failingMailer struct{}

func (failingMailer) Send(context.Context, string, string, string) error {
	return errors.New("relay unreachable")
}

type testEnv struct {
	store     *store.Store
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	mailer    *recordingMailer
	accounts  *AccountService
	posts     *PostService
	pages     *PageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)
	tokens, err := auth.NewTokenService("test-secret-key-at-least-16-chars")
	if err != nil {
		t.Fatalf("creating token service: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mailer := &recordingMailer{}

	return &testEnv{
		store:     st,
		passwords: passwords,
		tokens:    tokens,
		mailer:    mailer,
		accounts:  NewAccountService(st, passwords, tokens, mailer, logger),
		posts:     NewPostService(st, passwords, logger),
		pages:     NewPageService(st, passwords, logger),
	}
}

// seedAccount inserts an account directly into the store, bypassing the
// service, so tests control every flag.
func (e *testEnv) seedAccount(t *testing.T, a model.Account, password string) *model.Account {
	t.Helper()

	if password != "" {
		hash, err := e.passwords.Hash(password)
		if err != nil {
			t.Fatalf("hashing password: %v", err)
		}
		a.PasswordHash = hash
	}

	err := e.store.Tx(context.Background(), func(tx *store.Tx) error {
		return tx.Accounts().Insert(context.Background(), &a)
	})
	if err != nil {
		t.Fatalf("seeding account %s: %v", a.Email, err)
	}
	return &a
}

// getAccount reads an account row directly, for asserting persisted state.
func (e *testEnv) getAccount(t *testing.T, id int64) *model.Account {
	t.Helper()
	var got *model.Account
	err := e.store.Tx(context.Background(), func(tx *store.Tx) error {
		var err error
		got, err = tx.Accounts().GetByID(context.Background(), id)
		return err
	})
	if err != nil {
		t.Fatalf("reading account %d: %v", id, err)
	}
	return got
}

func asCreds(email, password string) *Credentials {
	return &Credentials{Email: email, Password: password}
}

func emptyRequest() *Request {
	return &Request{
		Params: map[string]string{},
		Query:  map[string]string{},
		Body:   map[string]any{},
	}
}

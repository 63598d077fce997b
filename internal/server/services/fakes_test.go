package services

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/notifications"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/verificationtokens"
)

// --- in-memory store behind the repository interfaces ---

type memStore struct {
	mu     sync.Mutex
	users  map[string]models.User
	tokens map[string]models.VerificationToken

	// failing operations, keyed by "users.create", "tokens.delete", ...
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]models.User{},
		tokens: map[string]models.VerificationToken{},
		fail:   map[string]error{},
	}
}

func (s *memStore) userByEmail(email string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.EmailAddress, email) {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *memStore) tokensOf(userID string) []models.VerificationToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.VerificationToken
	for _, t := range s.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (s *memStore) hasToken(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[id]
	return ok
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["users.create"]; err != nil {
		return nil, err
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.EmailAddress, u.EmailAddress) {
			return nil, common.ErrorConflict
		}
	}
	r.s.users[u.ID] = *u
	return u, nil
}

func (r memUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["users.get"]; err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.EmailAddress, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) Update(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["users.update"]; err != nil {
		return err
	}
	if _, ok := r.s.users[u.ID]; !ok {
		return common.ErrorNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

type memTokens struct{ s *memStore }

func (r memTokens) Create(ctx context.Context, t *models.VerificationToken) (*models.VerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["tokens.create"]; err != nil {
		return nil, err
	}
	r.s.tokens[t.ID] = *t
	return t, nil
}

func (r memTokens) Find(ctx context.Context, id string) (*models.VerificationToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["tokens.find"]; err != nil {
		return nil, err
	}
	t, ok := r.s.tokens[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r memTokens) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail["tokens.delete"]; err != nil {
		return err
	}
	if _, ok := r.s.tokens[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.tokens, id)
	return nil
}

func (r memTokens) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return memUsers{m.s} }
func (m *fakeRepoManager) VerificationTokens(db dbx.DBTX) verificationtokens.Repository {
	return memTokens{m.s}
}

// --- notifier ---

type fakeNotifier struct {
	sent []notifications.Message
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, msg notifications.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// --- harness ---

type harness struct {
	svc      *IdentityService
	mock     sqlmock.Sqlmock
	store    *memStore
	notifier *fakeNotifier
}

func newHarness(t *testing.T, opts ...func(*config.Config)) *harness {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	cfg.PublicURL = "https://app.example"
	for _, o := range opts {
		o(cfg)
	}

	store := newMemStore()
	n := &fakeNotifier{}
	svc := NewIdentityService(db, &fakeRepoManager{s: store}, n, logging.Discard(), cfg)

	return &harness{svc: svc, mock: mock, store: store, notifier: n}
}

func (h *harness) expectCommit() {
	h.mock.ExpectBegin()
	h.mock.ExpectCommit()
}

func (h *harness) expectRollback() {
	h.mock.ExpectBegin()
	h.mock.ExpectRollback()
}

func (h *harness) verify(t *testing.T) {
	t.Helper()
	if err := h.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

// register runs a successful registration and returns the new user and its token id.
func (h *harness) register(t *testing.T, email, password string) (models.User, string) {
	t.Helper()
	h.expectCommit()
	if _, err := h.svc.Register(context.Background(), RegisterInput{
		GivenName:            "Ann",
		MaidenName:           "Lee",
		EmailAddress:         email,
		Password:             password,
		PasswordConfirmation: password,
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	u, ok := h.store.userByEmail(email)
	if !ok {
		t.Fatalf("user %q not stored", email)
	}
	toks := h.store.tokensOf(u.ID)
	if len(toks) != 1 {
		t.Fatalf("want 1 token, got %d", len(toks))
	}
	return u, toks[0].ID
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeIdentity struct {
	registerIn services.RegisterInput
	recoverIn  services.RecoverInput
	email      string
	password   string
	token      string

	msg string
	err error
}

func (f *fakeIdentity) Register(ctx context.Context, in services.RegisterInput) (string, error) {
	f.registerIn = in
	return f.msg, f.err
}

func (f *fakeIdentity) SignIn(ctx context.Context, emailAddress, password string) (string, error) {
	f.email, f.password = emailAddress, password
	return f.msg, f.err
}

func (f *fakeIdentity) Activate(ctx context.Context, emailAddress, tokenID string) (string, error) {
	f.email, f.token = emailAddress, tokenID
	return f.msg, f.err
}

func (f *fakeIdentity) ForgetPassword(ctx context.Context, emailAddress string) (string, error) {
	f.email = emailAddress
	return f.msg, f.err
}

func (f *fakeIdentity) Recover(ctx context.Context, in services.RecoverInput) (string, error) {
	f.recoverIn = in
	return f.msg, f.err
}

// ---- helpers ----

func newTestServer(f *fakeIdentity) *HTTPServer {
	return NewHTTPServer(":0", logging.Discard(), f, auth.NewTokenIssuer("secret", 0))
}

func do(t *testing.T, s *HTTPServer, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	}
	return resp.StatusCode, body
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ---- tests ----

func TestRegister(t *testing.T) {
	f := &fakeIdentity{msg: services.MsgRegistered}
	s := newTestServer(f)

	code, body := do(t, s, postJSON("/auth/register", `{
		"given_name": " Ann ",
		"maiden_name": "Lee",
		"email_address": " ann@example.com ",
		"password": "pw",
		"password_confirmation": "pw"
	}`))

	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, services.MsgRegistered, body["message"])
	assert.Equal(t, services.RegisterInput{
		GivenName:            "Ann",
		MaidenName:           "Lee",
		EmailAddress:         "ann@example.com",
		Password:             "pw",
		PasswordConfirmation: "pw",
	}, f.registerIn)
}

func TestRegister_MissingFields(t *testing.T) {
	f := &fakeIdentity{}
	s := newTestServer(f)

	code, body := do(t, s, postJSON("/auth/register", `{"email_address":"ann@example.com"}`))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "given_name")
	assert.Empty(t, f.registerIn.EmailAddress, "workflow must not run")
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(&fakeIdentity{})

	code, body := do(t, s, postJSON("/auth/sign-in", `{"email_address":`))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "malformed request body")
}

func TestSignIn(t *testing.T) {
	f := &fakeIdentity{msg: "signed.jwt.token"}
	s := newTestServer(f)

	code, body := do(t, s, postJSON("/auth/sign-in", `{"email_address":"ann@example.com","password":" pw "}`))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "signed.jwt.token", body["token"])
	assert.Equal(t, "ann@example.com", f.email)
	assert.Equal(t, " pw ", f.password, "passwords are passed through untrimmed")
}

func TestActivate(t *testing.T) {
	f := &fakeIdentity{msg: services.MsgActivated}
	s := newTestServer(f)

	code, body := do(t, s, postJSON("/auth/activate", `{"email_address":"ann@example.com","token":"tok"}`))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, services.MsgActivated, body["message"])
	assert.Equal(t, "tok", f.token)
}

func TestForgetPassword(t *testing.T) {
	f := &fakeIdentity{msg: services.MsgRecoveryEmailed}
	s := newTestServer(f)

	code, body := do(t, s, postJSON("/auth/forget-password", `{"email_address":"ann@example.com"}`))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, services.MsgRecoveryEmailed, body["message"])
	assert.Equal(t, "ann@example.com", f.email)
}

func TestRecover(t *testing.T) {
	f := &fakeIdentity{msg: services.MsgPasswordRecovered}
	s := newTestServer(f)

	code, body := do(t, s, postJSON("/auth/recover", `{
		"email_address": "ann@example.com",
		"token": "tok",
		"password": "new",
		"password_confirmation": "new"
	}`))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, services.MsgPasswordRecovered, body["message"])
	assert.Equal(t, services.RecoverInput{
		EmailAddress:         "ann@example.com",
		TokenID:              "tok",
		Password:             "new",
		PasswordConfirmation: "new",
	}, f.recoverIn)
}

func TestWorkflowErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"invalid input", services.ErrInvalidToken, http.StatusBadRequest, services.ErrInvalidToken.Error()},
		{"conflict", services.ErrEmailTaken, http.StatusBadRequest, services.ErrEmailTaken.Error()},
		{"unauthorized", services.ErrInvalidCredentials, http.StatusBadRequest, services.ErrInvalidCredentials.Error()},
		{"not found", services.ErrUserNotFound, http.StatusNotFound, services.ErrUserNotFound.Error()},
		{"persistence", common.Persistence(errors.New("connection reset")), http.StatusInternalServerError, "internal error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeIdentity{err: tt.err})

			code, body := do(t, s, postJSON("/auth/activate", `{"email_address":"ann@example.com","token":"tok"}`))

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeIdentity{})

	code, body := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(&fakeIdentity{})

	code, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, code)
}

func TestMe(t *testing.T) {
	s := newTestServer(&fakeIdentity{})

	user := models.PublicUser{ID: "u1", GivenName: "Ann", EmailAddress: "ann@example.com"}
	token, err := auth.NewTokenIssuer("secret", 0).Issue(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	code, body := do(t, s, req)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u1", body["id"])
	assert.Equal(t, "ann@example.com", body["email_address"])
	assert.NotContains(t, body, "password_hash")
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	h := NewHandler(NewService(nil, "test-secret"))

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad json", `{`, "invalid request body"},
		{"missing password", `{"email":"a@b.c","displayName":"A"}`, "email and password are required"},
		{"missing name", `{"email":"a@b.c","password":"longenough"}`, "displayName is required"},
		{"short password", `{"email":"a@b.c","password":"short","displayName":"A"}`, "password must be at least 8 characters"},
		{"bad email", `{"email":"nope","password":"longenough","displayName":"A"}`, "invalid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestLoginSkipsSignupChecks(t *testing.T) {
	c := credentials{Email: "ada", Password: "x"}
	assert.Empty(t, c.check(false))
	assert.NotEmpty(t, c.check(true))
}

func TestAuthMiddleware(t *testing.T) {
	s := NewService(nil, "test-secret")
	var seen string
	h := s.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	}))

	token, err := s.issueToken("user_1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid authorization format"},
		{"garbage", "Bearer abc", http.StatusUnauthorized, "invalid token"},
		{"valid", "Bearer " + token, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
	assert.Equal(t, "user_1", seen)
}

func TestFailHidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	fail(rec, "test", assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())

	rec = httptest.NewRecorder()
	fail(rec, "test", ErrEmailTaken)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

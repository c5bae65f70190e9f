package studio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/easel/internal/auth"
	"github.com/inamate/easel/internal/store"
)

type fakeQueries struct {
	studios map[string]store.Studio
	ops     map[string][]string
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{studios: map[string]store.Studio{}, ops: map[string][]string{}}
}

func (f *fakeQueries) CreateStudio(_ context.Context, arg store.CreateStudioParams) (store.Studio, error) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	st := store.Studio{ID: arg.ID, Name: arg.Name, OwnerID: arg.OwnerID, Passphrase: arg.Passphrase, CreatedAt: now, UpdatedAt: now}
	f.studios[st.ID] = st
	return st, nil
}

func (f *fakeQueries) GetStudio(_ context.Context, id string) (store.Studio, error) {
	st, ok := f.studios[id]
	if !ok {
		return store.Studio{}, pgx.ErrNoRows
	}
	return st, nil
}

func (f *fakeQueries) ListStudiosForOwner(_ context.Context, ownerID string) ([]store.Studio, error) {
	var out []store.Studio
	for _, st := range f.studios {
		if st.OwnerID == ownerID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (f *fakeQueries) DeleteStudio(_ context.Context, id string) error {
	delete(f.studios, id)
	return nil
}

func (f *fakeQueries) ListOpcodes(_ context.Context, studioID string) ([]string, error) {
	return f.ops[studioID], nil
}

type fakeTokens struct{}

func (fakeTokens) IssueStudioToken(studioID, userID, role string) (string, error) {
	return studioID + "|" + userID + "|" + role, nil
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(newFakeQueries(), fakeTokens{})
	ctx := context.Background()

	st, err := svc.Create(ctx, "Lunes", "user-1", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(st.ID, "studio_"))
	assert.False(t, st.Protected)
	assert.Equal(t, "2026-01-02T03:04:05Z", st.CreatedAt)

	got, err := svc.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	_, err = svc.Get(ctx, "studio_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHostCredentials(t *testing.T) {
	svc := NewService(newFakeQueries(), fakeTokens{})
	ctx := context.Background()

	open, err := svc.Create(ctx, "open", "owner", "")
	require.NoError(t, err)
	locked, err := svc.Create(ctx, "locked", "owner", "s3cret")
	require.NoError(t, err)
	assert.True(t, locked.Protected)

	token, err := svc.Host(ctx, open.ID, "owner", "")
	require.NoError(t, err)
	assert.Equal(t, open.ID+"|owner|"+auth.RoleHost, token)

	_, err = svc.Host(ctx, open.ID, "guest", "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Host(ctx, locked.ID, "guest", "wrong")
	assert.ErrorIs(t, err, ErrForbidden)

	token, err = svc.Host(ctx, locked.ID, "guest", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, locked.ID+"|guest|"+auth.RoleHost, token)
}

func TestDeleteRequiresOwner(t *testing.T) {
	q := newFakeQueries()
	svc := NewService(q, fakeTokens{})
	ctx := context.Background()

	st, err := svc.Create(ctx, "s", "owner", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, st.ID, "other"), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, st.ID, "owner"))
	assert.Empty(t, q.studios)
}

func TestOpcodesHandler(t *testing.T) {
	q := newFakeQueries()
	svc := NewService(q, fakeTokens{})
	st, err := svc.Create(context.Background(), "s", "owner", "")
	require.NoError(t, err)
	q.ops[st.ID] = []string{"action=Undo"}

	live := map[string][]string{"studio_live": {"a=1", "b=2"}}
	h := NewHandler(svc, func(id string) ([]string, bool) {
		ops, ok := live[id]
		return ops, ok
	})
	r := mux.NewRouter()
	r.HandleFunc("/studios/{studioId}/opcodes", h.Opcodes)

	cases := []struct {
		id     string
		status int
		ops    []string
		live   bool
	}{
		{st.ID, http.StatusOK, []string{"action=Undo"}, false},
		{"studio_live", http.StatusOK, []string{"a=1", "b=2"}, true},
		{"studio_missing", http.StatusNotFound, nil, false},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/studios/"+tc.id+"/opcodes", nil))
		require.Equal(t, tc.status, rec.Code, tc.id)
		if tc.status != http.StatusOK {
			continue
		}
		var body struct {
			Opcodes []string `json:"opcodes"`
			Live    bool     `json:"live"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.ops, body.Opcodes)
		assert.Equal(t, tc.live, body.Live)
	}
}

func TestCreateHandlerValidates(t *testing.T) {
	h := NewHandler(NewService(newFakeQueries(), fakeTokens{}), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/studios", strings.NewReader(`{"name":""}`))
	req = req.WithContext(auth.WithUserID(req.Context(), "owner"))
	h.Create(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/studios", strings.NewReader(`{"name":"Lunes"}`))
	req = req.WithContext(auth.WithUserID(req.Context(), "owner"))
	h.Create(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var st Studio
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "owner", st.OwnerID)
}

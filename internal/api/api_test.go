package api

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/inklings/internal/config"
	"github.com/hpungsan/inklings/internal/db"
	"github.com/hpungsan/inklings/internal/logging"
	"github.com/hpungsan/inklings/internal/ops"
	"github.com/hpungsan/inklings/internal/vault"
)

type testAPI struct {
	handler http.Handler
	root    string
}

func newTestAPI(t *testing.T, files map[string]string) *testAPI {
	t.Helper()

	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	}

	database, err := db.Init(config.StateDir(root))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	v, err := vault.Open(root, cfg.NoteGlob, logging.Discard())
	require.NoError(t, err)

	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.Local)
	deps := ops.NewDeps(database, v, cfg,
		ops.WithClock(func() time.Time { return now }),
		ops.WithRand(rand.New(rand.NewPCG(5, 6))),
		ops.WithLogger(logging.Discard()),
	)
	return &testAPI{handler: NewRouter(deps, nil, logging.Discard()), root: root}
}

func (a *testAPI) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return rec, out
}

func errorCode(t *testing.T, out map[string]any) string {
	t.Helper()
	obj, ok := out["error"].(map[string]any)
	require.True(t, ok, "expected error object, got %v", out)
	return obj["code"].(string)
}

func TestDeckRoutes(t *testing.T) {
	a := newTestAPI(t, map[string]string{
		"Inklings/a.md": "# A\n",
		"Inklings/b.md": "# B\n",
		"Other/c.md":    "# C\n",
	})

	rec, stats := a.do(t, http.MethodGet, "/deck/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), stats["total"])

	rec, deck := a.do(t, http.MethodGet, "/deck", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-05", deck["date"])
	assert.Equal(t, float64(2), deck["total"])
	assert.Len(t, deck["notes"], 2)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec, reset := a.do(t, http.MethodPost, "/deck/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, deck["deck_id"], reset["deck_id"])

	_, stats = a.do(t, http.MethodGet, "/deck/stats", nil)
	assert.Equal(t, float64(2), stats["total"])
	assert.Equal(t, float64(2), stats["remaining"])
}

func TestEntryRoute(t *testing.T) {
	a := newTestAPI(t, map[string]string{"Inklings/idea.md": "# Idea\n"})

	rec, out := a.do(t, http.MethodPost, "/notes/entry", map[string]any{"id": "Inklings/idea.md", "text": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["new_section"])
	assert.Equal(t, "2024-01-05", out["date"])

	data, err := os.ReadFile(filepath.Join(a.root, "Inklings", "idea.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Idea\n\n###### 2024-01-05\nhello\n", string(data))
}

func TestEntryRoute_Validation(t *testing.T) {
	a := newTestAPI(t, map[string]string{"Inklings/idea.md": "# Idea\n"})

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"missing text", map[string]any{"id": "Inklings/idea.md"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad date", map[string]any{"id": "Inklings/idea.md", "text": "x", "date": "01/05/2024"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown field", map[string]any{"id": "Inklings/idea.md", "text": "x", "when": "now"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"malformed json", "{", http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing note", map[string]any{"id": "Inklings/gone.md", "text": "x"}, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := a.do(t, http.MethodPost, "/notes/entry", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, out))
		})
	}
}

func TestSnoozeRoute(t *testing.T) {
	a := newTestAPI(t, map[string]string{"Inklings/a.md": "# A\n", "Inklings/b.md": "# B\n"})

	a.do(t, http.MethodGet, "/deck", nil)

	rec, out := a.do(t, http.MethodPost, "/notes/snooze", map[string]any{"id": "Inklings/a.md", "days": 7})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-12", out["snoozed_until"])
	assert.Equal(t, true, out["removed_from_deck"])
	assert.Equal(t, float64(1), out["remaining"])

	rec, out = a.do(t, http.MethodPost, "/notes/snooze", map[string]any{"id": "Inklings/b.md", "days": -2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, out))
}

func TestCreateShowRenameRoutes(t *testing.T) {
	a := newTestAPI(t, nil)

	rec, created := a.do(t, http.MethodPost, "/notes", map[string]any{"title": "First thought", "body": "# First thought\n"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Inklings/First thought.md", created["id"])

	rec, out := a.do(t, http.MethodPost, "/notes", map[string]any{"title": "First thought"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NAME_ALREADY_EXISTS", errorCode(t, out))

	rec, shown := a.do(t, http.MethodGet, "/notes?id=Inklings/First%20thought.md", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "First thought", shown["title"])
	assert.Equal(t, "Inklings", shown["parent_folder"])

	rec, renamed := a.do(t, http.MethodPost, "/notes/rename", map[string]any{"id": "Inklings/First thought.md", "title": "Second thought"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Inklings/Second thought.md", renamed["id"])
	assert.Equal(t, true, renamed["changed"])

	rec, out = a.do(t, http.MethodGet, "/notes?id=Inklings/First%20thought.md", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, out))

	rec, out = a.do(t, http.MethodGet, "/notes", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, out))
}

func TestSessionRoutes(t *testing.T) {
	a := newTestAPI(t, map[string]string{"Inklings/only.md": "# Only\n"})

	rec, cur := a.do(t, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current, ok := cur["current"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Inklings/only.md", current["id"])
	assert.Equal(t, "Only", current["title"])

	_, next := a.do(t, http.MethodPost, "/session/next", nil)
	assert.Nil(t, next["current"])
	assert.Equal(t, true, next["position"].(map[string]any)["exhausted"])

	_, prev := a.do(t, http.MethodPost, "/session/prev", nil)
	assert.NotNil(t, prev["current"])
}

func TestActivityRoute(t *testing.T) {
	a := newTestAPI(t, map[string]string{"Inklings/idea.md": "# Idea\n"})

	a.do(t, http.MethodPost, "/notes/entry", map[string]any{"id": "Inklings/idea.md", "text": "one"})
	a.do(t, http.MethodPost, "/notes/entry", map[string]any{"id": "Inklings/idea.md", "text": "two"})

	rec, out := a.do(t, http.MethodGet, "/activity?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["items"], 2)

	rec, out = a.do(t, http.MethodGet, "/activity?limit=lots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, out))
}

func TestRespondError_PlainErrorHidesMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	respondError(rec, req, logging.Discard(), os.ErrPermission)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "permission")
	assert.Contains(t, rec.Body.String(), `"code":"INTERNAL"`)
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/inklings/internal/config"
	"github.com/hpungsan/inklings/internal/db"
	"github.com/hpungsan/inklings/internal/errors"
	"github.com/hpungsan/inklings/internal/logging"
	"github.com/hpungsan/inklings/internal/ops"
	"github.com/hpungsan/inklings/internal/vault"
)

// testSetup creates a vault with the given notes, its state database, and
// deps pinned to 2024-01-05.
func testSetup(t *testing.T, cfg *config.Config, files map[string]string) (*ops.Deps, string) {
	t.Helper()

	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	database, err := db.Init(config.StateDir(root))
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	v, err := vault.Open(root, cfg.NoteGlob, logging.Discard())
	if err != nil {
		t.Fatalf("failed to open vault: %v", err)
	}

	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.Local)
	deps := ops.NewDeps(database, v, cfg,
		ops.WithClock(func() time.Time { return now }),
		ops.WithRand(rand.New(rand.NewPCG(1, 2))),
		ops.WithLogger(logging.Discard()),
	)
	return deps, root
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func threeNotes() map[string]string {
	return map[string]string{
		"Inklings/a.md": "# A\n",
		"Inklings/b.md": "# B\n",
		"Inklings/c.md": "# C\n",
	}
}

func TestHandleDeckToday(t *testing.T) {
	deps, _ := testSetup(t, nil, threeNotes())
	h := NewHandlers(deps)

	result, err := h.HandleDeckToday(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := parseOutput(t, result)

	if output["date"] != "2024-01-05" {
		t.Errorf("date = %v, want 2024-01-05", output["date"])
	}
	if output["total"] != float64(3) {
		t.Errorf("total = %v, want 3", output["total"])
	}
	notes, ok := output["notes"].([]any)
	if !ok || len(notes) != 3 {
		t.Fatalf("notes = %v, want 3 entries", output["notes"])
	}

	// Same deck on the second call.
	again := parseOutput(t, mustCall(t, h.HandleDeckToday, nil))
	if again["deck_id"] != output["deck_id"] {
		t.Errorf("deck_id changed: %v -> %v", output["deck_id"], again["deck_id"])
	}
}

func TestHandleDeckReset(t *testing.T) {
	deps, _ := testSetup(t, nil, threeNotes())
	h := NewHandlers(deps)

	first := parseOutput(t, mustCall(t, h.HandleDeckToday, nil))
	reset := parseOutput(t, mustCall(t, h.HandleDeckReset, nil))

	if reset["deck_id"] == first["deck_id"] {
		t.Error("reset should issue a new deck id")
	}
	if reset["remaining"] != float64(3) {
		t.Errorf("remaining = %v, want 3", reset["remaining"])
	}
}

func TestHandleDeckStats_NoDeck(t *testing.T) {
	deps, _ := testSetup(t, nil, threeNotes())
	h := NewHandlers(deps)

	output := parseOutput(t, mustCall(t, h.HandleDeckStats, nil))
	if output["total"] != float64(0) || output["remaining"] != float64(0) {
		t.Errorf("stats = %v, want zero before a deck is built", output)
	}
}

func TestHandleSession_Walk(t *testing.T) {
	deps, _ := testSetup(t, nil, threeNotes())
	h := NewHandlers(deps)

	seen := map[string]bool{}
	cur := parseOutput(t, mustCall(t, h.HandleSessionCurrent, nil))
	for i := 0; i < 3; i++ {
		note, ok := cur["current"].(map[string]any)
		if !ok {
			t.Fatalf("step %d: no current note in %v", i, cur)
		}
		seen[note["id"].(string)] = true
		cur = parseOutput(t, mustCall(t, h.HandleSessionNext, nil))
	}
	if len(seen) != 3 {
		t.Errorf("walked %d distinct notes, want 3", len(seen))
	}

	pos := cur["position"].(map[string]any)
	if pos["exhausted"] != true {
		t.Errorf("position = %v, want exhausted after three steps", pos)
	}
	if _, ok := cur["current"]; ok {
		t.Error("exhausted session should have no current note")
	}

	back := parseOutput(t, mustCall(t, h.HandleSessionPrev, nil))
	if _, ok := back["current"]; !ok {
		t.Error("prev from the end should land on the last note")
	}
}

func TestHandleNoteEntry(t *testing.T) {
	deps, root := testSetup(t, nil, map[string]string{"Inklings/idea.md": "# Idea\n"})
	h := NewHandlers(deps)

	tests := []struct {
		name     string
		args     map[string]any
		wantErr  string
		wantNew  bool
		wantBody string
	}{
		{
			name:     "creates section",
			args:     map[string]any{"id": "Inklings/idea.md", "text": "first"},
			wantNew:  true,
			wantBody: "# Idea\n\n###### 2024-01-05\nfirst\n",
		},
		{
			name:     "appends to section",
			args:     map[string]any{"id": "Inklings/idea.md", "text": "second"},
			wantBody: "# Idea\n\n###### 2024-01-05\nfirst\n\nsecond\n",
		},
		{
			name:    "missing text",
			args:    map[string]any{"id": "Inklings/idea.md"},
			wantErr: "INVALID_REQUEST",
		},
		{
			name:    "bad date",
			args:    map[string]any{"id": "Inklings/idea.md", "text": "x", "date": "2024-13-01"},
			wantErr: "INVALID_REQUEST",
		},
		{
			name:    "unknown note",
			args:    map[string]any{"id": "Inklings/nope.md", "text": "x"},
			wantErr: "NOT_FOUND",
		},
		{
			name:    "wrong arg type",
			args:    map[string]any{"id": 42, "text": "x"},
			wantErr: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleNoteEntry(context.Background(), makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" {
				assertErrorCode(t, result, tt.wantErr)
				return
			}

			output := parseOutput(t, result)
			if output["new_section"] != tt.wantNew {
				t.Errorf("new_section = %v, want %v", output["new_section"], tt.wantNew)
			}
			data, err := os.ReadFile(filepath.Join(root, "Inklings", "idea.md"))
			if err != nil {
				t.Fatalf("read note: %v", err)
			}
			if string(data) != tt.wantBody {
				t.Errorf("body = %q, want %q", data, tt.wantBody)
			}
		})
	}
}

func TestHandleNoteSnooze_DropsFromSession(t *testing.T) {
	deps, root := testSetup(t, nil, threeNotes())
	h := NewHandlers(deps)

	cur := parseOutput(t, mustCall(t, h.HandleSessionCurrent, nil))
	id := cur["current"].(map[string]any)["id"].(string)

	output := parseOutput(t, mustCall(t, h.HandleNoteSnooze, map[string]any{"id": id, "days": 2}))
	if output["snoozed_until"] != "2024-01-07" {
		t.Errorf("snoozed_until = %v, want 2024-01-07", output["snoozed_until"])
	}
	if output["removed_from_deck"] != true {
		t.Errorf("removed_from_deck = %v, want true", output["removed_from_deck"])
	}
	if output["remaining"] != float64(2) {
		t.Errorf("remaining = %v, want 2", output["remaining"])
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(id)))
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\nsnoozed_until: 2024-01-07\n---\n") {
		t.Errorf("note should start with snooze frontmatter, got %q", data)
	}

	after := parseOutput(t, mustCall(t, h.HandleSessionCurrent, nil))
	if after["current"].(map[string]any)["id"] == id {
		t.Error("session should move off a snoozed note")
	}
}

func TestHandleNoteSnooze_NegativeDays(t *testing.T) {
	deps, _ := testSetup(t, nil, threeNotes())
	h := NewHandlers(deps)

	result := mustCall(t, h.HandleNoteSnooze, map[string]any{"id": "Inklings/a.md", "days": -1})
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleNoteCreate(t *testing.T) {
	deps, root := testSetup(t, nil, nil)
	h := NewHandlers(deps)

	output := parseOutput(t, mustCall(t, h.HandleNoteCreate, map[string]any{"title": "a/b: c", "body": "# a/b: c\n"}))
	if output["id"] != "Inklings/a_b_ c.md" {
		t.Errorf("id = %v, want %q", output["id"], "Inklings/a_b_ c.md")
	}
	if _, err := os.Stat(filepath.Join(root, "Inklings", "a_b_ c.md")); err != nil {
		t.Errorf("note file not created: %v", err)
	}

	dup := mustCall(t, h.HandleNoteCreate, map[string]any{"title": "a/b: c"})
	assertErrorCode(t, dup, "NAME_ALREADY_EXISTS")

	empty := mustCall(t, h.HandleNoteCreate, map[string]any{"title": "  "})
	assertErrorCode(t, empty, "INVALID_REQUEST")
}

func TestHandleNoteRename_FollowsSession(t *testing.T) {
	deps, _ := testSetup(t, nil, map[string]string{"Inklings/old.md": "# Old\n"})
	h := NewHandlers(deps)

	parseOutput(t, mustCall(t, h.HandleSessionCurrent, nil))

	output := parseOutput(t, mustCall(t, h.HandleNoteRename, map[string]any{"id": "Inklings/old.md", "title": "New"}))
	if output["id"] != "Inklings/New.md" || output["changed"] != true {
		t.Errorf("rename output = %v", output)
	}

	cur := parseOutput(t, mustCall(t, h.HandleSessionCurrent, nil))
	if cur["current"].(map[string]any)["id"] != "Inklings/New.md" {
		t.Errorf("session current = %v, want the renamed note", cur["current"])
	}

	deck := parseOutput(t, mustCall(t, h.HandleDeckToday, nil))
	notes := deck["notes"].([]any)
	if len(notes) != 1 || notes[0].(map[string]any)["id"] != "Inklings/New.md" {
		t.Errorf("deck notes = %v, want the renamed note", notes)
	}
}

func TestHandleNoteShow(t *testing.T) {
	body := "---\nsnoozed_until: 2024-01-01\n---\n# Idea\n\n###### 2024-01-04\nyesterday\n\n###### 2024-01-03\nbefore\n"
	deps, _ := testSetup(t, nil, map[string]string{"Inklings/idea.md": body})
	h := NewHandlers(deps)

	output := parseOutput(t, mustCall(t, h.HandleNoteShow, map[string]any{"id": "Inklings/idea.md"}))
	if output["title"] != "Idea" {
		t.Errorf("title = %v, want Idea", output["title"])
	}
	if output["snoozed_until"] != "2024-01-01" {
		t.Errorf("snoozed_until = %v, want 2024-01-01", output["snoozed_until"])
	}
	sections := output["sections"].([]any)
	if len(sections) != 2 || sections[0] != "2024-01-04" || sections[1] != "2024-01-03" {
		t.Errorf("sections = %v", sections)
	}

	missing := mustCall(t, h.HandleNoteShow, map[string]any{"id": "../escape.md"})
	assertErrorCode(t, missing, "INVALID_REQUEST")
}

func TestHandleActivityList(t *testing.T) {
	deps, _ := testSetup(t, nil, map[string]string{"Inklings/idea.md": "# Idea\n"})
	h := NewHandlers(deps)

	mustCall(t, h.HandleNoteEntry, map[string]any{"id": "Inklings/idea.md", "text": "one"})
	mustCall(t, h.HandleNoteSnooze, map[string]any{"id": "Inklings/idea.md"})

	output := parseOutput(t, mustCall(t, h.HandleActivityList, map[string]any{"limit": 1}))
	items := output["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].(map[string]any)["kind"] != db.KindSnooze {
		t.Errorf("newest kind = %v, want %s", items[0].(map[string]any)["kind"], db.KindSnooze)
	}
}

func TestServerRegistration(t *testing.T) {
	deps, _ := testSetup(t, nil, nil)

	s := NewServer(deps, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"deck_today",
		"deck_reset",
		"deck_stats",
		"session_current",
		"session_next",
		"session_prev",
		"note_entry",
		"note_snooze",
		"note_create",
		"note_rename",
		"note_show",
		"activity_list",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"deck_reset", "note_rename", "note_rename"}
	deps, _ := testSetup(t, cfg, nil)

	tools := NewServer(deps, "test").ListTools()

	if len(tools) != 10 {
		t.Errorf("registered tool count = %d, want 10", len(tools))
	}
	for _, name := range []string{"deck_reset", "note_rename"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DisabledTools = AllToolNames()
	deps, _ := testSetup(t, cfg, nil)

	if tools := NewServer(deps, "test").ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"deck_reset", "note_rename"}, 0},
		{"one unknown", []string{"deck_reset", "fake_tool"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()

	if len(names) != 12 {
		t.Errorf("AllToolNames() returned %d names, want 12", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("AllToolNames() not sorted: %v", names)
			break
		}
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	iErr := errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied"))
	iErr.Details = map[string]any{"path": "/tmp/secret.db"}
	r := errorResult(iErr)
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedError(t *testing.T) {
	r := errorResult(fmt.Errorf("snooze: %w", errors.NewNotFound("Inklings/x.md")))

	errObj := errorObject(t, r)
	if errObj["code"] != string(errors.ErrNotFound) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if _, ok := errObj["details"]; !ok {
		t.Error("expected non-INTERNAL errors to include details when present")
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	r := errorResult(fmt.Errorf("boom"))

	errObj := errorObject(t, r)
	if errObj["code"] != "INTERNAL" {
		t.Errorf("code=%v, want INTERNAL", errObj["code"])
	}
	if errObj["message"] == "boom" {
		t.Error("plain errors should not leak their message")
	}
}

// Helper functions

func mustCall(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := fn(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return result
}

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %s", result.Content[0].(mcp.TextContent).Text)
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func errorObject(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in payload: %v", payload)
	}
	return errObj
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()
	if !result.IsError {
		t.Fatalf("expected error %s, got success: %s", expectedCode, result.Content[0].(mcp.TextContent).Text)
	}
	if code := errorObject(t, result)["code"]; code != expectedCode {
		t.Errorf("error code = %v, want %s", code, expectedCode)
	}
}

func TestDecode(t *testing.T) {
	t.Run("no arguments", func(t *testing.T) {
		r, err := decode[ActivityRequest](makeRequest(nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Limit != 0 {
			t.Errorf("Limit = %d, want 0", r.Limit)
		}
	})

	t.Run("number to pointer", func(t *testing.T) {
		r, err := decode[SnoozeRequest](makeRequest(map[string]any{"id": "a.md", "days": float64(4)}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Days == nil || *r.Days != 4 {
			t.Errorf("Days = %v, want 4", r.Days)
		}
	})

	t.Run("unknown argument", func(t *testing.T) {
		_, err := decode[ShowRequest](makeRequest(map[string]any{"id": "a.md", "path": "b.md"}))
		if err == nil {
			t.Fatal("expected error for unknown argument")
		}
	})
}

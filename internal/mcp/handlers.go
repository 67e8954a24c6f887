package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/inklings/internal/errors"
	"github.com/hpungsan/inklings/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers. The review session is
// per server, so every client connected over stdio shares one cursor.
type Handlers struct {
	deps    *ops.Deps
	session *ops.Session
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps *ops.Deps) *Handlers {
	return &Handlers{deps: deps, session: ops.NewSession(deps)}
}

// Request types for each tool

// EntryRequest represents the arguments for note_entry.
type EntryRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Date string `json:"date,omitempty"`
}

// SnoozeRequest represents the arguments for note_snooze.
type SnoozeRequest struct {
	ID   string `json:"id"`
	Days *int   `json:"days,omitempty"`
}

// CreateRequest represents the arguments for note_create.
type CreateRequest struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

// RenameRequest represents the arguments for note_rename.
type RenameRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ShowRequest represents the arguments for note_show.
type ShowRequest struct {
	ID string `json:"id"`
}

// ActivityRequest represents the arguments for activity_list.
type ActivityRequest struct {
	Limit int `json:"limit,omitempty"`
}

// HandleDeckToday handles the deck_today tool.
func (h *Handlers) HandleDeckToday(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Today(ctx, h.deps)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDeckReset handles the deck_reset tool. The session restarts on the new deck.
func (h *Handlers) HandleDeckReset(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Reset(ctx, h.deps)
	if err != nil {
		return errorResult(err), nil
	}
	if _, err := h.session.Start(ctx); err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleDeckStats handles the deck_stats tool.
func (h *Handlers) HandleDeckStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Stats(ctx, h.deps)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionCurrent handles the session_current tool.
func (h *Handlers) HandleSessionCurrent(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.session.Current(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionNext handles the session_next tool.
func (h *Handlers) HandleSessionNext(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.session.Next(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSessionPrev handles the session_prev tool.
func (h *Handlers) HandleSessionPrev(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.session.Prev(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleNoteEntry handles the note_entry tool.
func (h *Handlers) HandleNoteEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[EntryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.AddEntry(ctx, h.deps, ops.EntryInput{
		ID:   r.ID,
		Text: r.Text,
		Date: r.Date,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleNoteSnooze handles the note_snooze tool.
func (h *Handlers) HandleNoteSnooze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[SnoozeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Snooze(ctx, h.deps, ops.SnoozeInput{ID: r.ID, Days: r.Days})
	if err != nil {
		return errorResult(err), nil
	}
	h.session.Forget(result.ID)
	return successResult(result)
}

// HandleNoteCreate handles the note_create tool.
func (h *Handlers) HandleNoteCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Create(ctx, h.deps, ops.CreateInput{Title: r.Title, Body: r.Body})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleNoteRename handles the note_rename tool.
func (h *Handlers) HandleNoteRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[RenameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Rename(ctx, h.deps, ops.RenameInput{ID: r.ID, Title: r.Title})
	if err != nil {
		return errorResult(err), nil
	}
	if result.Changed {
		h.session.Renamed(result.OldID, result.ID)
	}
	return successResult(result)
}

// HandleNoteShow handles the note_show tool.
func (h *Handlers) HandleNoteShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[ShowRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Show(ctx, h.deps, ops.ShowInput{ID: r.ID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleActivityList handles the activity_list tool.
func (h *Handlers) HandleActivityList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := decode[ActivityRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Activity(ctx, h.deps, ops.ActivityInput{Limit: r.Limit})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if iErr, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    iErr.Code,
			"message": iErr.Message,
			"status":  iErr.Status,
		}
		// Internal errors may carry file paths or SQL text.
		if iErr.Code != errors.ErrInternal && iErr.Details != nil {
			errorObj["details"] = iErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hpungsan/inklings/internal/errors"
	"github.com/hpungsan/inklings/internal/ops"
)

// Handlers contains the HTTP route handlers.
type Handlers struct {
	deps    *ops.Deps
	session *ops.Session
	logger  *slog.Logger
}

type entryRequest struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text" validate:"required"`
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type snoozeRequest struct {
	ID   string `json:"id" validate:"required"`
	Days *int   `json:"days" validate:"omitempty,gte=0"`
}

type createRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body"`
}

type renameRequest struct {
	ID    string `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
}

// HandleToday handles GET /deck.
func (h *Handlers) HandleToday(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Today(r.Context(), h.deps)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleReset handles POST /deck/reset.
func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Reset(r.Context(), h.deps)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if _, err := h.session.Start(r.Context()); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleStats handles GET /deck/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Stats(r.Context(), h.deps)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleSessionCurrent handles GET /session.
func (h *Handlers) HandleSessionCurrent(w http.ResponseWriter, r *http.Request) {
	h.respondSession(w, r, h.session.Current)
}

// HandleSessionNext handles POST /session/next.
func (h *Handlers) HandleSessionNext(w http.ResponseWriter, r *http.Request) {
	h.respondSession(w, r, h.session.Next)
}

// HandleSessionPrev handles POST /session/prev.
func (h *Handlers) HandleSessionPrev(w http.ResponseWriter, r *http.Request) {
	h.respondSession(w, r, h.session.Prev)
}

// HandleShow handles GET /notes?id=.
func (h *Handlers) HandleShow(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondError(w, r, h.logger, errors.NewInvalidRequest("id is required"))
		return
	}

	result, err := ops.Show(r.Context(), h.deps, ops.ShowInput{ID: id})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleCreate handles POST /notes.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeRequest(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := ops.Create(r.Context(), h.deps, ops.CreateInput{Title: req.Title, Body: req.Body})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// HandleEntry handles POST /notes/entry.
func (h *Handlers) HandleEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeRequest(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := ops.AddEntry(r.Context(), h.deps, ops.EntryInput{
		ID:   req.ID,
		Text: req.Text,
		Date: req.Date,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleSnooze handles POST /notes/snooze.
func (h *Handlers) HandleSnooze(w http.ResponseWriter, r *http.Request) {
	var req snoozeRequest
	if err := decodeRequest(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := ops.Snooze(r.Context(), h.deps, ops.SnoozeInput{ID: req.ID, Days: req.Days})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.session.Forget(result.ID)
	respondJSON(w, http.StatusOK, result)
}

// HandleRename handles POST /notes/rename.
func (h *Handlers) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeRequest(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := ops.Rename(r.Context(), h.deps, ops.RenameInput{ID: req.ID, Title: req.Title})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if result.Changed {
		h.session.Renamed(result.OldID, result.ID)
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleActivity handles GET /activity?limit=.
func (h *Handlers) HandleActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", ops.DefaultActivityLimit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := ops.Activity(r.Context(), h.deps, ops.ActivityInput{Limit: limit})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) respondSession(w http.ResponseWriter, r *http.Request, step func(ctx context.Context) (*ops.SessionOutput, error)) {
	result, err := step(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// parseIntParam returns the query parameter as an int, or def when it is absent.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.NewInvalidRequest(name + " must be an integer")
	}
	return n, nil
}

package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/inklings/internal/errors"
)

// Activity kinds.
const (
	KindEntry  = "entry"
	KindSnooze = "snooze"
	KindCreate = "create"
	KindRename = "rename"
	KindReset  = "reset"
)

// Activity is one recorded user action.
type Activity struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	NoteID    string `json:"note_id,omitempty"`
	Date      string `json:"date"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// RecordActivity inserts a, filling ID and CreatedAt when empty.
func RecordActivity(ctx context.Context, db *sql.DB, a *Activity) error {
	now := time.Now()
	if a.CreatedAt == 0 {
		a.CreatedAt = now.Unix()
	}
	if a.ID == "" {
		id, err := generateULID(now)
		if err != nil {
			return errors.NewInternal(err)
		}
		a.ID = id
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO activity (id, kind, note_id, date, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.Kind, toNullString(a.NoteID), a.Date, toNullString(a.Detail), a.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListActivity returns up to limit rows, newest first.
func ListActivity(ctx context.Context, db *sql.DB, limit int) ([]Activity, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, kind, note_id, date, detail, created_at
		FROM activity
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []Activity{}
	for rows.Next() {
		var (
			a      Activity
			noteID sql.NullString
			detail sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Kind, &noteID, &a.Date, &detail, &a.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		a.NoteID = noteID.String
		a.Detail = detail.String
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// RenameActivityNote points earlier rows for oldID at newID.
func RenameActivityNote(ctx context.Context, db *sql.DB, oldID, newID string) error {
	_, err := db.ExecContext(ctx, `UPDATE activity SET note_id = ? WHERE note_id = ?`, newID, oldID)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// toNullString converts empty strings to NULL.
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Activity ids share one monotonic source so rows recorded in the same
// millisecond still sort in insertion order.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func generateULID(t time.Time) (string, error) {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

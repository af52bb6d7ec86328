// Package cursor implements the opaque pagination cursor shared by all
// listing endpoints: base64url(JSON{created_at, id}).
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

type wire struct {
	CreatedAt string `json:"created_at"`
	ID        string `json:"id"`
}

// Encode produces the opaque cursor string for a given row.
func Encode(createdAt time.Time, id uuid.UUID) string {
	w := wire{CreatedAt: createdAt.UTC().Format(time.RFC3339Nano), ID: id.String()}
	b, _ := json.Marshal(w)
	return base64.URLEncoding.EncodeToString(b)
}

// Decode parses an opaque cursor string. Any malformed input -- bad base64,
// bad JSON, missing fields, or an unparseable timestamp -- is reported via
// the returned error; callers map that to INVARIANT_VIOLATION.
func Decode(s string) (Cursor, error) {
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, err
	}
	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return Cursor{}, err
	}
	if w.CreatedAt == "" || w.ID == "" {
		return Cursor{}, errMissingFields
	}
	t, err := time.Parse(time.RFC3339Nano, w.CreatedAt)
	if err != nil {
		t, err = time.Parse(time.RFC3339, w.CreatedAt)
		if err != nil {
			return Cursor{}, err
		}
	}
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return Cursor{}, err
	}
	return Cursor{CreatedAt: t, ID: id}, nil
}

var errMissingFields = &decodeError{"cursor missing created_at or id"}

type decodeError struct{ msg string }

func (e *decodeError) Error() string { return e.msg }

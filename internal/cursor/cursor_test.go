package cursor_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llk-ledger/ledger/internal/cursor"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	want := cursor.Cursor{CreatedAt: time.Now().UTC().Truncate(time.Nanosecond), ID: uuid.New()}

	encoded := cursor.Encode(want.CreatedAt, want.ID)
	got, err := cursor.Decode(encoded)
	require.NoError(t, err)

	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.ID, got.ID)
}

func encode(raw string) string {
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

func TestDecode_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"base64 but not json", encode("not json")},
		{"missing fields", encode(`{}`)},
		{"bad timestamp", encode(`{"created_at":"not-a-time","id":"` + uuid.New().String() + `"}`)},
		{"bad uuid", encode(`{"created_at":"2024-01-01T00:00:00Z","id":"not-a-uuid"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cursor.Decode(tt.input)
			assert.Error(t, err)
		})
	}
}

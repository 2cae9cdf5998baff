package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches wrapped unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert team: %w", &pq.Error{Code: "23505"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other pq errors", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23503"}) {
			t.Fatalf("expected false for foreign key violation")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get team: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
}

func TestIsUUID(t *testing.T) {
	if !isUUID("7f1d0c3e-5b0a-4f7e-9d55-2b8a7c0f4e21") {
		t.Fatalf("expected canonical uuid to pass")
	}
	for _, id := range []string{"", "team-1", "57"} {
		if isUUID(id) {
			t.Fatalf("expected %q to be rejected", id)
		}
	}
}

func TestVectorRoundTrip(t *testing.T) {
	t.Run("empty embedding is null", func(t *testing.T) {
		if vectorOrNil(nil) != nil {
			t.Fatalf("expected nil vector for empty embedding")
		}
		if vectorSlice(nil) != nil {
			t.Fatalf("expected nil slice for nil vector")
		}
	})

	t.Run("keeps values", func(t *testing.T) {
		got := vectorSlice(vectorOrNil([]float32{0.25, -1}))
		if len(got) != 2 || got[0] != 0.25 || got[1] != -1 {
			t.Fatalf("unexpected vector values: %v", got)
		}
	})
}

func TestRawJSON(t *testing.T) {
	if rawJSON(nil) != nil {
		t.Fatalf("expected nil for empty payload")
	}
	got := rawJSONBytes(sql.NullString{String: `{"id":1}`, Valid: true})
	if string(got) != `{"id":1}` {
		t.Fatalf("unexpected payload: %s", got)
	}
}

func TestEventDataRoundTrip(t *testing.T) {
	raw, err := marshalEventData(map[string]any{"matchId": "m1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := decodeEventData(raw)
	if got["matchId"] != "m1" {
		t.Fatalf("unexpected decoded data: %v", got)
	}
	if decodeEventData(sql.NullString{String: "{broken", Valid: true}) != nil {
		t.Fatalf("expected nil for malformed payload")
	}
}

package notify

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	n := Notification{
		ID:          "n-1",
		RecipientID: "actor-1",
		Category:    CategorySLAWarning,
		Title:       "Review due soon",
		Message:     "4h0m0s remaining",
		EntityType:  "submission",
		EntityID:    "sub-1",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := Encode(n)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != n {
		t.Fatalf("round trip mismatch: %+v != %+v", decoded, n)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestMemoryRecorderFailure(t *testing.T) {
	rec := NewMemoryRecorder()
	rec.FailWith = errors.New("sink down")

	err := rec.Send(context.Background(), Notification{ID: "n-1"})
	if err == nil {
		t.Fatalf("expected error from failing recorder")
	}
	if len(rec.Sent()) != 0 {
		t.Fatalf("failing recorder must not record")
	}

	rec.FailWith = nil
	if err := rec.Send(context.Background(), Notification{ID: "n-2"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := rec.Sent(); len(got) != 1 || got[0].ID != "n-2" {
		t.Fatalf("unexpected recorded notifications: %+v", got)
	}
}

package store

import (
	"testing"

	"sjavs/internal/domain"
)

func TestMatchHashRoundTrip(t *testing.T) {
	m := domain.NewMatch("m1", "4321", 3, 1700000000000)
	m.StartDealing(2)
	m.StartBidding()
	m.RecordBid(3, 6, domain.Hearts)
	m.RecordPass(0)

	restored, err := matchFromHash(m.ID, matchToHash(m))
	if err != nil {
		t.Fatalf("round trip error: %v", err)
	}
	if *restored != *m {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", restored, m)
	}
}

func TestMatchHashFreshMatch(t *testing.T) {
	m := domain.NewMatch("m2", "0042", 5, 1700000000000)
	hash := matchToHash(m)

	// Unset seat fields are omitted from storage.
	for _, field := range []string{"dealer_position", "current_bidder", "trump_suit", "highest_bidder"} {
		if _, ok := hash[field]; ok {
			t.Errorf("field %s should be omitted for a fresh match", field)
		}
	}

	restored, err := matchFromHash(m.ID, hash)
	if err != nil {
		t.Fatalf("round trip error: %v", err)
	}
	if restored.DealerPosition != domain.NoPosition || restored.TrumpSuit != "" {
		t.Fatal("optional fields should restore to unset")
	}
	if restored.PIN != "0042" {
		t.Fatalf("pin = %q, leading zero lost", restored.PIN)
	}
}

func TestMatchHashBackwardCompatible(t *testing.T) {
	// Records written before the game-state fields existed still load.
	hash := map[string]string{
		"pin":               "1234",
		"status":            "waiting",
		"number_of_crosses": "3",
		"current_cross":     "0",
		"created_timestamp": "1234567890",
	}
	m, err := matchFromHash("old", hash)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if m.Status != domain.StatusWaiting {
		t.Fatalf("status = %s", m.Status)
	}
	if m.DealerPosition != domain.NoPosition || m.CurrentBidder != domain.NoPosition {
		t.Fatal("missing fields should default to unset")
	}
}

func TestMatchHashRejectsCorrupt(t *testing.T) {
	if _, err := matchFromHash("bad", map[string]string{"status": "waiting"}); err == nil {
		t.Fatal("missing pin should fail")
	}
	if _, err := matchFromHash("bad", map[string]string{
		"pin": "1234", "number_of_crosses": "x",
		"current_cross": "0", "created_timestamp": "1",
	}); err == nil {
		t.Fatal("corrupt number_of_crosses should fail")
	}
}

func TestKeyLayout(t *testing.T) {
	// The relative key layout is wire-stable across instances.
	tests := []struct {
		got  string
		want string
	}{
		{matchKey("g1"), "match:g1"},
		{playersKey("g1"), "match:g1:players"},
		{handKey("g1", 2), "match:g1:hand:2"},
		{trickStateKey("g1"), "match:g1:trick_state"},
		{trickHistoryKey("g1", 5), "match:g1:trick_history:5"},
		{crossStateKey("g1"), "match:g1:cross_state"},
		{lockKey("g1"), "match:g1:lock"},
		{MatchChannel("g1"), "match:g1"},
		{UserChannel("u1"), "user:u1"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}

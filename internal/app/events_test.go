package app

import (
	"encoding/json"
	"testing"
)

func TestEventMarshalFlattensPayload(t *testing.T) {
	event := Event{
		Kind:            EventBidMade,
		GameID:          "g1",
		AffectedPlayers: []string{"u1", "u2"},
		Message:         "bid made",
		Timestamp:       1234,
		Payload: BidMadePayload{
			BidderPosition: 2,
			BidLength:      6,
			BidSuit:        "hearts",
			CurrentBidder:  3,
		},
	}

	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	if decoded["event"] != "bid_made" || decoded["game_id"] != "g1" {
		t.Fatalf("envelope fields wrong: %v", decoded)
	}
	if decoded["bid_length"] != float64(6) || decoded["bid_suit"] != "hearts" {
		t.Fatalf("payload fields not flattened: %v", decoded)
	}
	if decoded["timestamp"] != float64(1234) {
		t.Fatalf("timestamp = %v", decoded["timestamp"])
	}
	if _, ok := decoded["payload"]; ok {
		t.Fatal("payload must not nest")
	}
}

func TestEventMarshalWithoutPayload(t *testing.T) {
	event := Event{Kind: EventRedeal, GameID: "g2", AffectedPlayers: []string{}, Timestamp: 1}
	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["event"] != "redeal" {
		t.Fatalf("event = %v", decoded["event"])
	}
	if _, ok := decoded["message"]; ok {
		t.Fatal("empty message should be omitted")
	}
}

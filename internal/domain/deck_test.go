package domain

import (
	"math/rand"
	"testing"
)

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("deck size = %d, want %d", len(deck), DeckSize)
	}
	seen := make(map[Card]bool, DeckSize)
	for _, card := range deck {
		if seen[card] {
			t.Fatalf("duplicate card %v", card)
		}
		seen[card] = true
	}
	for _, suit := range Suits {
		count := 0
		for _, card := range deck {
			if card.Suit == suit {
				count++
			}
		}
		if count != 8 {
			t.Errorf("suit %s has %d cards, want 8", suit, count)
		}
	}
}

func TestDealRoundRobin(t *testing.T) {
	hands, err := Deal(NewDeck())
	if err != nil {
		t.Fatalf("deal error: %v", err)
	}
	seen := make(map[Card]bool, DeckSize)
	for seat, hand := range hands {
		if len(hand) != HandSize {
			t.Fatalf("seat %d hand size = %d, want %d", seat, len(hand), HandSize)
		}
		for _, card := range hand {
			if seen[card] {
				t.Fatalf("card %v dealt twice", card)
			}
			seen[card] = true
		}
	}
	if len(seen) != DeckSize {
		t.Fatalf("dealt %d distinct cards, want %d", len(seen), DeckSize)
	}
}

func TestDealRejectsShortDeck(t *testing.T) {
	if _, err := Deal(NewDeck()[:31]); err == nil {
		t.Fatal("dealing a short deck should fail")
	}
}

func TestTrumpCounts(t *testing.T) {
	hand := []Card{
		{Clubs, Queen},    // permanent
		{Hearts, Jack},    // permanent
		{Hearts, Ace},     // hearts suit trump
		{Hearts, King},    // hearts suit trump
		{Spades, Seven},   // spades suit trump
		{Diamonds, Eight}, // diamonds suit trump
	}
	counts := TrumpCounts(hand)
	if counts[Hearts] != 4 {
		t.Errorf("hearts count = %d, want 4", counts[Hearts])
	}
	if counts[Diamonds] != 3 {
		t.Errorf("diamonds count = %d, want 3", counts[Diamonds])
	}
	if counts[Clubs] != 2 {
		t.Errorf("clubs count = %d, want 2", counts[Clubs])
	}
	if counts[Spades] != 3 {
		t.Errorf("spades count = %d, want 3", counts[Spades])
	}
}

func TestDealUntilValidAlwaysBiddable(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		hands, err := DealUntilValid(rng)
		if err != nil {
			t.Fatalf("deal until valid error: %v", err)
		}
		if !HasBiddableHand(hands) {
			t.Fatalf("deal %d produced no biddable hand", i)
		}
		analysis := AnalyzeHands(hands)
		if analysis.PlayersWithValidBids < 1 {
			t.Fatalf("analysis reports no biddable seats")
		}
		if analysis.BestBidLength < MinBidLength {
			t.Fatalf("best bid length = %d, want >= %d", analysis.BestBidLength, MinBidLength)
		}
	}
}

func TestSortHandStable(t *testing.T) {
	hand := []Card{{Spades, Ace}, {Hearts, Seven}, {Clubs, King}, {Hearts, Ace}}
	SortHand(hand)
	// Suits sort by letter (C < D < H < S), ranks ascending within a suit.
	expect := []Card{{Clubs, King}, {Hearts, Seven}, {Hearts, Ace}, {Spades, Ace}}
	for i, card := range expect {
		if hand[i] != card {
			t.Fatalf("sorted[%d] = %v, want %v", i, hand[i], card)
		}
	}
}

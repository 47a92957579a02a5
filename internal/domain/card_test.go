package domain

import "testing"

func TestCardCodeRoundTrip(t *testing.T) {
	for _, card := range NewDeck() {
		parsed, err := ParseCard(card.Code())
		if err != nil {
			t.Fatalf("ParseCard(%q) error: %v", card.Code(), err)
		}
		if parsed != card {
			t.Errorf("ParseCard(Code(%v)) = %v", card, parsed)
		}
	}
}

func TestCardCodes(t *testing.T) {
	tests := []struct {
		card Card
		code string
	}{
		{Card{Spades, Ace}, "AS"},
		{Card{Hearts, Ten}, "10H"},
		{Card{Clubs, Queen}, "QC"},
		{Card{Diamonds, Seven}, "7D"},
	}
	for _, tt := range tests {
		if got := tt.card.Code(); got != tt.code {
			t.Errorf("Code(%v) = %q, want %q", tt.card, got, tt.code)
		}
		parsed, err := ParseCard(tt.code)
		if err != nil {
			t.Fatalf("ParseCard(%q) error: %v", tt.code, err)
		}
		if parsed != tt.card {
			t.Errorf("ParseCard(%q) = %v, want %v", tt.code, parsed, tt.card)
		}
	}
}

func TestParseCardRejectsGarbage(t *testing.T) {
	for _, code := range []string{"", "A", "1H", "AX", "11H", "QQ"} {
		if _, err := ParseCard(code); err == nil {
			t.Errorf("ParseCard(%q) should fail", code)
		}
	}
}

func TestDeckPointTotal(t *testing.T) {
	total := 0
	for _, card := range NewDeck() {
		total += card.PointValue()
	}
	if total != 120 {
		t.Fatalf("deck point total = %d, want 120", total)
	}
}

func TestPermanentTrumps(t *testing.T) {
	permanents := []Card{
		{Clubs, Queen}, {Spades, Queen},
		{Clubs, Jack}, {Spades, Jack}, {Hearts, Jack}, {Diamonds, Jack},
	}
	for i, card := range permanents {
		if !card.IsPermanentTrump() {
			t.Errorf("%v should be a permanent trump", card)
		}
		if i > 0 {
			prev := permanents[i-1]
			if prev.PermanentTrumpOrder() <= card.PermanentTrumpOrder() {
				t.Errorf("%v should outrank %v", prev, card)
			}
		}
	}
	for _, card := range []Card{{Hearts, Queen}, {Diamonds, Queen}, {Hearts, Ace}, {Clubs, King}} {
		if card.IsPermanentTrump() {
			t.Errorf("%v should not be a permanent trump", card)
		}
	}
}

func TestTrumpOrder(t *testing.T) {
	// Permanent trumps outrank every suit trump regardless of trump suit.
	clubQueen := Card{Clubs, Queen}
	heartAce := Card{Hearts, Ace}
	if clubQueen.TrumpOrder(Hearts) <= heartAce.TrumpOrder(Hearts) {
		t.Errorf("QC should outrank AH when hearts is trump")
	}
	if got := heartAce.TrumpOrder(Spades); got != 0 {
		t.Errorf("AH trump order under spades = %d, want 0", got)
	}
	// The queen is a suit trump only for the red suits.
	heartQueen := Card{Hearts, Queen}
	if got := heartQueen.TrumpOrder(Hearts); got != 12 {
		t.Errorf("QH trump order under hearts = %d, want 12", got)
	}
	if got := heartQueen.TrumpOrder(Diamonds); got != 0 {
		t.Errorf("QH trump order under diamonds = %d, want 0", got)
	}
}

func TestBeats(t *testing.T) {
	tests := []struct {
		name        string
		self, other Card
		trump, lead Suit
		want        bool
	}{
		{"higher permanent trump wins", Card{Clubs, Queen}, Card{Spades, Queen}, Hearts, Hearts, true},
		{"permanent trump beats suit trump", Card{Diamonds, Jack}, Card{Hearts, Ace}, Hearts, Hearts, true},
		{"trump beats non-trump", Card{Hearts, Seven}, Card{Spades, Ace}, Hearts, Spades, true},
		{"non-trump loses to trump", Card{Spades, Ace}, Card{Hearts, Seven}, Hearts, Spades, false},
		{"following suit beats discard", Card{Spades, Seven}, Card{Diamonds, Ace}, Hearts, Spades, true},
		{"discard never wins", Card{Diamonds, Ace}, Card{Spades, Seven}, Hearts, Spades, false},
		{"higher rank within lead suit", Card{Spades, Ace}, Card{Spades, King}, Hearts, Spades, true},
		{"lower rank within lead suit", Card{Spades, King}, Card{Spades, Ace}, Hearts, Spades, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.self.Beats(tt.other, tt.trump, tt.lead); got != tt.want {
				t.Errorf("Beats(%v, %v) = %v, want %v", tt.self, tt.other, got, tt.want)
			}
		})
	}
}

func TestBeatsIrreflexive(t *testing.T) {
	deck := NewDeck()
	for _, trump := range Suits {
		for _, lead := range Suits {
			for _, card := range deck {
				if card.Beats(card, trump, lead) {
					t.Fatalf("%v beats itself under trump=%s lead=%s", card, trump, lead)
				}
			}
		}
	}
}

func TestBeatsAntisymmetricOnTrumps(t *testing.T) {
	deck := NewDeck()
	for _, trump := range Suits {
		for _, lead := range Suits {
			for _, a := range deck {
				for _, b := range deck {
					if a == b {
						continue
					}
					if a.Beats(b, trump, lead) && b.Beats(a, trump, lead) {
						t.Fatalf("%v and %v both beat each other under trump=%s lead=%s", a, b, trump, lead)
					}
				}
			}
		}
	}
}

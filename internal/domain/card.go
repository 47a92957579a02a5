package domain

import (
	"fmt"
	"strings"
)

// Suit is one of the four card suits.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists all suits in canonical order.
var Suits = [4]Suit{Hearts, Diamonds, Clubs, Spades}

// Letter returns the single-letter suit code used in card codes.
func (s Suit) Letter() string {
	switch s {
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	default:
		return "S"
	}
}

// ParseSuit accepts full names and single letters, case-insensitive.
func ParseSuit(s string) (Suit, error) {
	switch strings.ToLower(s) {
	case "hearts", "h":
		return Hearts, nil
	case "diamonds", "d":
		return Diamonds, nil
	case "clubs", "c":
		return Clubs, nil
	case "spades", "s":
		return Spades, nil
	}
	return "", fmt.Errorf("invalid suit %q", s)
}

// Rank is a card rank in the 32-card deck (7..A).
type Rank int

const (
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// Ranks lists all ranks in ascending order.
var Ranks = [8]Rank{Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return fmt.Sprintf("%d", int(r))
	}
}

// ParseRank parses the rank mnemonic used in card codes.
func ParseRank(s string) (Rank, error) {
	switch s {
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	}
	return 0, fmt.Errorf("invalid rank %q", s)
}

// Card is a single playing card in the Sjavs deck.
type Card struct {
	Suit Suit
	Rank Rank
}

// Code returns the wire-stable card code, rank mnemonic then suit letter
// (e.g. "AS", "10H", "QC").
func (c Card) Code() string {
	return c.Rank.String() + c.Suit.Letter()
}

func (c Card) String() string {
	return c.Code()
}

// ParseCard parses a card code. The two-character rank "10" is handled.
func ParseCard(code string) (Card, error) {
	if len(code) < 2 {
		return Card{}, fmt.Errorf("card code %q too short", code)
	}
	rankStr, suitStr := code[:1], code[1:]
	if strings.HasPrefix(code, "10") {
		rankStr, suitStr = "10", code[2:]
	}
	rank, err := ParseRank(rankStr)
	if err != nil {
		return Card{}, err
	}
	suit, err := ParseSuit(suitStr)
	if err != nil {
		return Card{}, err
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// PointValue returns the Sjavs point value of the card.
// A=11, 10=10, K=4, Q=3, J=2, others 0; a full deck totals 120.
func (c Card) PointValue() int {
	switch c.Rank {
	case Ace:
		return 11
	case Ten:
		return 10
	case King:
		return 4
	case Queen:
		return 3
	case Jack:
		return 2
	}
	return 0
}

// IsPermanentTrump reports whether the card is one of the six cards that are
// trump regardless of the trump suit: Q♣, Q♠, J♣, J♠, J♥, J♦.
func (c Card) IsPermanentTrump() bool {
	switch c.Rank {
	case Queen:
		return c.Suit == Clubs || c.Suit == Spades
	case Jack:
		return true
	}
	return false
}

// PermanentTrumpOrder ranks the six permanent trumps, highest first.
// Returns 0 for cards that are not permanent trumps.
func (c Card) PermanentTrumpOrder() int {
	switch {
	case c.Suit == Clubs && c.Rank == Queen:
		return 20
	case c.Suit == Spades && c.Rank == Queen:
		return 19
	case c.Suit == Clubs && c.Rank == Jack:
		return 18
	case c.Suit == Spades && c.Rank == Jack:
		return 17
	case c.Suit == Hearts && c.Rank == Jack:
		return 16
	case c.Suit == Diamonds && c.Rank == Jack:
		return 15
	}
	return 0
}

// IsTrump reports whether the card is trump for the given trump suit.
func (c Card) IsTrump(trump Suit) bool {
	return c.IsPermanentTrump() || c.Suit == trump
}

// TrumpOrder returns the card's position in the trump hierarchy, higher is
// stronger, or 0 if the card is not trump. Permanent trumps rank above all
// suit trumps; within the trump suit the order is A,K,Q,10,9,8,7 (the Q only
// occurs here when trump is hearts or diamonds, and the J never does).
func (c Card) TrumpOrder(trump Suit) int {
	if o := c.PermanentTrumpOrder(); o != 0 {
		return o
	}
	if c.Suit != trump {
		return 0
	}
	switch c.Rank {
	case Ace:
		return 14
	case King:
		return 13
	case Queen:
		return 12
	case Ten:
		return 11
	case Nine:
		return 10
	case Eight:
		return 9
	case Seven:
		return 8
	}
	return 0
}

// NonTrumpOrder ranks cards that are not trump: A highest, 7 lowest.
func (c Card) NonTrumpOrder() int {
	return int(c.Rank)
}

// Beats reports whether c wins over other in a trick with the given trump
// and lead suits. Trump beats non-trump; among non-trumps only a card
// following the lead suit can win.
func (c Card) Beats(other Card, trump, lead Suit) bool {
	selfOrder := c.TrumpOrder(trump)
	otherOrder := other.TrumpOrder(trump)

	switch {
	case selfOrder > 0 && otherOrder > 0:
		return selfOrder > otherOrder
	case selfOrder > 0:
		return true
	case otherOrder > 0:
		return false
	}

	selfFollows := c.Suit == lead
	otherFollows := other.Suit == lead
	switch {
	case selfFollows && !otherFollows:
		return true
	case selfFollows && otherFollows:
		return c.NonTrumpOrder() > other.NonTrumpOrder()
	}
	return false
}

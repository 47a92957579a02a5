package domain

import (
	"fmt"
	"sort"
)

// Hand is the ordered set of cards held by one seat.
type Hand struct {
	Cards    []Card
	Position int
}

// NewHand wraps dealt cards for a seat, sorted for display.
func NewHand(cards []Card, position int) *Hand {
	h := &Hand{Cards: cards, Position: position}
	SortHand(h.Cards)
	return h
}

// HandFromCodes rebuilds a hand from stored card codes.
func HandFromCodes(codes []string, position int) (*Hand, error) {
	cards := make([]Card, 0, len(codes))
	for _, code := range codes {
		card, err := ParseCard(code)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return NewHand(cards, position), nil
}

// Codes returns the hand as card codes for storage and transmission.
func (h *Hand) Codes() []string {
	codes := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		codes[i] = c.Code()
	}
	return codes
}

// Has reports whether the hand contains the card.
func (h *Hand) Has(card Card) bool {
	for _, c := range h.Cards {
		if c == card {
			return true
		}
	}
	return false
}

// Remove takes the card out of the hand, reporting whether it was present.
func (h *Hand) Remove(card Card) bool {
	for i, c := range h.Cards {
		if c == card {
			h.Cards = append(h.Cards[:i], h.Cards[i+1:]...)
			return true
		}
	}
	return false
}

// TrumpCounts returns this hand's trump count per candidate suit.
func (h *Hand) TrumpCounts() map[Suit]int {
	return TrumpCounts(h.Cards)
}

// PointValue sums the point values of the cards in the hand.
func (h *Hand) PointValue() int {
	total := 0
	for _, c := range h.Cards {
		total += c.PointValue()
	}
	return total
}

// HighestPermanentTrump returns the PermanentTrumpOrder of the strongest
// permanent trump in the hand, or 0 when the hand holds none.
func (h *Hand) HighestPermanentTrump() int {
	best := 0
	for _, c := range h.Cards {
		if o := c.PermanentTrumpOrder(); o > best {
			best = o
		}
	}
	return best
}

// BidOption is a single (length, suit) bid a hand may legally make.
type BidOption struct {
	Length          int    `json:"length"`
	Suit            Suit   `json:"suit"`
	DisplayText     string `json:"display_text"`
	ClubDeclaration bool   `json:"is_club_declaration"`
}

// AvailableBids lists every bid the hand may make given the current highest
// bid length and suit. A bid must exceed the current length, except that a
// clubs bid may equal a non-clubs bid of the same length (club declaration).
func (h *Hand) AvailableBids(currentLength int, currentSuit Suit) []BidOption {
	counts := h.TrumpCounts()
	var bids []BidOption

	minBid := MinBidLength
	if currentLength >= minBid {
		minBid = currentLength + 1
	}

	for _, suit := range Suits {
		count := counts[suit]
		for length := minBid; length <= count; length++ {
			bids = append(bids, bidOption(length, suit))
		}
		if suit == Clubs && currentLength >= MinBidLength &&
			currentSuit != Clubs && count >= currentLength {
			bids = append(bids, bidOption(currentLength, Clubs))
		}
	}

	// Length ascending, clubs first within a length.
	sort.SliceStable(bids, func(i, j int) bool {
		if bids[i].Length != bids[j].Length {
			return bids[i].Length < bids[j].Length
		}
		return bids[i].ClubDeclaration && !bids[j].ClubDeclaration
	})
	return bids
}

func bidOption(length int, suit Suit) BidOption {
	text := fmt.Sprintf("%d trumps (%s)", length, suit)
	if suit == Clubs {
		text += " - club declaration"
	}
	return BidOption{
		Length:          length,
		Suit:            suit,
		DisplayText:     text,
		ClubDeclaration: suit == Clubs,
	}
}

// BidLegal reports whether bidding (length, suit) is legal over the current
// highest bid. With no current bid, any length >= 5 is legal.
func BidLegal(length int, suit Suit, currentLength int, currentSuit Suit) bool {
	if length < MinBidLength || length > HandSize {
		return false
	}
	if currentLength < MinBidLength {
		return true
	}
	if length > currentLength {
		return true
	}
	return length == currentLength && suit == Clubs && currentSuit != Clubs
}

// PlayableCards returns the legal subset of the hand given the trick's lead
// suit. Holding any lead-suit card that is not a permanent trump obliges
// following suit; permanent trumps never satisfy the follow-suit obligation.
// With no lead suit (leading the trick), everything is playable.
func (h *Hand) PlayableCards(trump Suit, lead Suit, hasLead bool) []Card {
	if !hasLead {
		return append([]Card(nil), h.Cards...)
	}
	var following []Card
	for _, c := range h.Cards {
		if c.Suit == lead && !c.IsPermanentTrump() {
			following = append(following, c)
		}
	}
	if len(following) > 0 {
		return following
	}
	return append([]Card(nil), h.Cards...)
}

package domain

import (
	"errors"
	"math/rand"
	"sort"
)

// HandSize is the number of cards dealt to each seat.
const HandSize = 8

// DeckSize is the number of cards in a Sjavs deck.
const DeckSize = 32

// MinBidLength is the smallest legal trump bid.
const MinBidLength = 5

// maxDealAttempts bounds DealUntilValid against pathological shuffles.
const maxDealAttempts = 1000

// ErrDealExhausted is returned when DealUntilValid fails to converge. With a
// fair shuffle this does not happen in practice.
var ErrDealExhausted = errors.New("no biddable deal after maximum attempts")

// NewDeck returns the 32-card Sjavs deck in canonical order.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck = append(deck, Card{Suit: suit, Rank: rank})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(rng *rand.Rand, deck []Card) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SortHand orders a hand by suit then rank for display.
func SortHand(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Suit != cards[j].Suit {
			return cards[i].Suit.Letter() < cards[j].Suit.Letter()
		}
		return cards[i].Rank < cards[j].Rank
	})
}

// Deal splits a 32-card deck into four sorted 8-card hands, dealt
// round-robin from seat 0.
func Deal(deck []Card) ([4][]Card, error) {
	var hands [4][]Card
	if len(deck) != DeckSize {
		return hands, errors.New("deck must have exactly 32 cards to deal")
	}
	for i, card := range deck {
		seat := i % 4
		hands[seat] = append(hands[seat], card)
	}
	for seat := range hands {
		SortHand(hands[seat])
	}
	return hands, nil
}

// TrumpCounts returns the number of trumps the hand holds for each candidate
// trump suit (permanent trumps count for every suit).
func TrumpCounts(hand []Card) map[Suit]int {
	counts := make(map[Suit]int, 4)
	for _, suit := range Suits {
		for _, card := range hand {
			if card.IsTrump(suit) {
				counts[suit]++
			}
		}
	}
	return counts
}

// HasBiddableHand reports whether at least one hand holds 5 or more trumps
// in some suit, the Sjavs minimum for a deal to be playable.
func HasBiddableHand(hands [4][]Card) bool {
	for _, hand := range hands {
		for _, count := range TrumpCounts(hand) {
			if count >= MinBidLength {
				return true
			}
		}
	}
	return false
}

// DealUntilValid reshuffles and re-deals until some hand can open the
// bidding. Convergence is near-immediate with a fair shuffle; the attempt
// ceiling turns a broken rng into a hard error instead of a spin.
func DealUntilValid(rng *rand.Rand) ([4][]Card, error) {
	deck := NewDeck()
	for attempt := 0; attempt < maxDealAttempts; attempt++ {
		shuffled := ShuffleDeck(rng, deck)
		hands, err := Deal(shuffled)
		if err != nil {
			return hands, err
		}
		if HasBiddableHand(hands) {
			return hands, nil
		}
	}
	return [4][]Card{}, ErrDealExhausted
}

// HandAnalysis summarizes trump distribution across a deal.
type HandAnalysis struct {
	PlayersWithValidBids int
	BestBidLength        int
	BestBidSeats         []int
}

// AnalyzeHands reports which seats could open the bidding and how high.
func AnalyzeHands(hands [4][]Card) HandAnalysis {
	var analysis HandAnalysis
	for seat, hand := range hands {
		best := 0
		for _, count := range TrumpCounts(hand) {
			if count > best {
				best = count
			}
		}
		if best < MinBidLength {
			continue
		}
		analysis.PlayersWithValidBids++
		if best > analysis.BestBidLength {
			analysis.BestBidLength = best
			analysis.BestBidSeats = []int{seat}
		} else if best == analysis.BestBidLength {
			analysis.BestBidSeats = append(analysis.BestBidSeats, seat)
		}
	}
	return analysis
}

package store

import (
	"fmt"
	"strconv"

	"sjavs/internal/domain"
)

// matchToHash flattens a match record into the stored hash fields. Unset
// seat fields are omitted, matching what older records look like.
func matchToHash(m *domain.Match) map[string]string {
	hash := map[string]string{
		"id":                m.ID,
		"pin":               m.PIN,
		"status":            string(m.Status),
		"number_of_crosses": strconv.Itoa(m.NumberOfCrosses),
		"current_cross":     strconv.Itoa(m.CurrentCross),
		"created_timestamp": strconv.FormatInt(m.CreatedTimestamp, 10),
	}
	setPos := func(field string, value int) {
		if value != domain.NoPosition {
			hash[field] = strconv.Itoa(value)
		}
	}
	setPos("dealer_position", m.DealerPosition)
	setPos("current_bidder", m.CurrentBidder)
	setPos("current_leader", m.CurrentLeader)
	setPos("trump_declarer", m.TrumpDeclarer)
	setPos("highest_bidder", m.HighestBidder)
	if m.TrumpSuit != "" {
		hash["trump_suit"] = string(m.TrumpSuit)
	}
	if m.HighestBidLength > 0 {
		hash["highest_bid_length"] = strconv.Itoa(m.HighestBidLength)
	}
	if m.HighestBidSuit != "" {
		hash["highest_bid_suit"] = string(m.HighestBidSuit)
	}
	if m.ConsecutivePasses > 0 {
		hash["consecutive_passes"] = strconv.Itoa(m.ConsecutivePasses)
	}
	return hash
}

// matchFromHash rebuilds a match record from stored hash fields. Optional
// game-state fields default to unset for backward compatibility.
func matchFromHash(id string, hash map[string]string) (*domain.Match, error) {
	pin, ok := hash["pin"]
	if !ok {
		return nil, fmt.Errorf("match %s: missing pin field", id)
	}
	crosses, err := strconv.Atoi(hash["number_of_crosses"])
	if err != nil {
		return nil, fmt.Errorf("match %s: invalid number_of_crosses", id)
	}
	currentCross, err := strconv.Atoi(hash["current_cross"])
	if err != nil {
		return nil, fmt.Errorf("match %s: invalid current_cross", id)
	}
	created, err := strconv.ParseInt(hash["created_timestamp"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("match %s: invalid created_timestamp", id)
	}

	m := domain.NewMatch(id, pin, crosses, created)
	m.CurrentCross = currentCross
	m.Status = domain.ParseMatchStatus(hash["status"])

	pos := func(field string) int {
		if v, err := strconv.Atoi(hash[field]); err == nil {
			return v
		}
		return domain.NoPosition
	}
	m.DealerPosition = pos("dealer_position")
	m.CurrentBidder = pos("current_bidder")
	m.CurrentLeader = pos("current_leader")
	m.TrumpDeclarer = pos("trump_declarer")
	m.HighestBidder = pos("highest_bidder")
	m.TrumpSuit = domain.Suit(hash["trump_suit"])
	m.HighestBidSuit = domain.Suit(hash["highest_bid_suit"])
	if v, err := strconv.Atoi(hash["highest_bid_length"]); err == nil {
		m.HighestBidLength = v
	}
	if v, err := strconv.Atoi(hash["consecutive_passes"]); err == nil {
		m.ConsecutivePasses = v
	}
	return m, nil
}

package app

import (
	"context"
	"errors"

	"sjavs/internal/domain"
)

// HandView is the caller's private hand with bidding context.
type HandView struct {
	GameID        string             `json:"game_id"`
	Position      int                `json:"position"`
	Cards         []string           `json:"cards"`
	TrumpCounts   map[string]int     `json:"trump_counts"`
	AvailableBids []domain.BidOption `json:"available_bids"`
	CanBid        bool               `json:"can_bid"`
	CanPass       bool               `json:"can_pass"`
}

// HandView returns the caller's hand and, in the bidding phase, the bids
// available to them.
func (s *Service) HandView(ctx context.Context, userID string) (*HandView, error) {
	matchID, err := s.matchIDForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	position, err := s.positionOf(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	hand, err := s.loadHand(ctx, matchID, position)
	if err != nil {
		return nil, err
	}

	view := &HandView{
		GameID:      matchID,
		Position:    position,
		Cards:       hand.Codes(),
		TrumpCounts: suitCountNames(hand.TrumpCounts()),
	}
	if m.Status == domain.StatusBidding {
		view.AvailableBids = hand.AvailableBids(m.HighestBidLength, m.HighestBidSuit)
		isTurn := position == m.CurrentBidder
		view.CanBid = isTurn && len(view.AvailableBids) > 0
		view.CanPass = isTurn
	}
	return view, nil
}

// TrickView is the current trick as seen by one caller.
type TrickView struct {
	GameID             string              `json:"game_id"`
	TrickNumber        int                 `json:"trick_number"`
	LeadSuit           string              `json:"lead_suit,omitempty"`
	CardsPlayed        []domain.PlayedCard `json:"cards_played"`
	CurrentPlayer      int                 `json:"current_player"`
	YourTurn           bool                `json:"your_turn"`
	LegalCards         []string            `json:"legal_cards,omitempty"`
	TrumpTeamTricks    int                 `json:"trump_team_tricks"`
	OpponentTeamTricks int                 `json:"opponent_team_tricks"`
}

// TrickView returns the live trick snapshot for the caller, including their
// legal-card subset when it is their turn.
func (s *Service) TrickView(ctx context.Context, userID string) (*TrickView, error) {
	matchID, err := s.matchIDForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.StatusPlaying {
		return nil, Conflict("game is not in playing phase")
	}
	trickState, err := s.getTrickState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	position, err := s.positionOf(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}

	trick := trickState.CurrentTrick
	view := &TrickView{
		GameID:             matchID,
		TrickNumber:        trick.TrickNumber,
		LeadSuit:           string(trick.LeadSuit),
		CardsPlayed:        trick.CardsPlayed,
		CurrentPlayer:      trick.CurrentPlayer,
		YourTurn:           position == trick.CurrentPlayer,
		TrumpTeamTricks:    trickState.TrumpTeamTricks,
		OpponentTeamTricks: trickState.OpponentTeamTricks,
	}
	if view.YourTurn {
		hand, err := s.loadHand(ctx, matchID, position)
		if err != nil {
			return nil, err
		}
		for _, card := range hand.PlayableCards(m.TrumpSuit, trick.LeadSuit, trick.HasLeadSuit) {
			view.LegalCards = append(view.LegalCards, card.Code())
		}
	}
	return view, nil
}

// ScoreView is the running tallies plus cross state.
type ScoreView struct {
	GameID             string             `json:"game_id"`
	TrumpTeamPoints    int                `json:"trump_team_points"`
	OpponentTeamPoints int                `json:"opponent_team_points"`
	TrumpTeamTricks    int                `json:"trump_team_tricks"`
	OpponentTeamTricks int                `json:"opponent_team_tricks"`
	Cross              *domain.CrossState `json:"cross_state,omitempty"`
	TrumpTeamOnHook    bool               `json:"trump_team_on_hook"`
	OpponentsOnHook    bool               `json:"opponents_on_hook"`
}

// ScoreView returns current tallies and cross bookkeeping.
func (s *Service) ScoreView(ctx context.Context, userID string) (*ScoreView, error) {
	matchID, err := s.matchIDForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &ScoreView{GameID: matchID}
	trickState, err := s.store.GetTrickState(ctx, matchID)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return nil, Transient("failed to load trick state", err)
	}
	if trickState != nil {
		view.TrumpTeamPoints = trickState.TrumpTeamPoints
		view.OpponentTeamPoints = trickState.OpponentTeamPoints
		view.TrumpTeamTricks = trickState.TrumpTeamTricks
		view.OpponentTeamTricks = trickState.OpponentTeamTricks
	}
	cross, err := s.store.GetCrossState(ctx, matchID)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return nil, Transient("failed to load cross state", err)
	}
	if cross != nil {
		view.Cross = cross
		view.TrumpTeamOnHook, view.OpponentsOnHook = cross.OnTheHook()
	}
	return view, nil
}

func suitCountNames(counts map[domain.Suit]int) map[string]int {
	out := make(map[string]int, len(counts))
	for suit, n := range counts {
		out[string(suit)] = n
	}
	return out
}

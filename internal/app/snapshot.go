package app

import (
	"context"
	"errors"

	"sjavs/internal/domain"
)

// Snapshot is the phase-specific initial-state message sent to a session on
// its first subscription to a match.
type Snapshot struct {
	Event     string `json:"event"`
	GameID    string `json:"game_id"`
	Phase     string `json:"phase"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// MatchInfo is the common match header in every snapshot.
type MatchInfo struct {
	ID               string `json:"id"`
	PIN              string `json:"pin"`
	Status           string `json:"status"`
	NumberOfCrosses  int    `json:"number_of_crosses"`
	CurrentCross     int    `json:"current_cross"`
	CreatedTimestamp int64  `json:"created_timestamp"`
	Host             string `json:"host"`
}

// PlayerInfo describes one member in a snapshot.
type PlayerInfo struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Position *int   `json:"position,omitempty"`
}

type commonState struct {
	MatchInfo MatchInfo    `json:"match_info"`
	Players   []PlayerInfo `json:"players"`
}

// WaitingState renders the lobby.
type WaitingState struct {
	commonState
	IsHost        bool `json:"is_host"`
	CanStartGame  bool `json:"can_start_game"`
	PlayersNeeded int  `json:"players_needed"`
}

// DealingState renders the brief dealing phase.
type DealingState struct {
	commonState
	DealerPosition  int    `json:"dealer_position"`
	DealingProgress string `json:"dealing_progress"`
}

// BiddingState renders the bidding phase for one requesting user.
type BiddingState struct {
	commonState
	DealerPosition int                `json:"dealer_position"`
	CurrentBidder  int                `json:"current_bidder"`
	YourPosition   *int               `json:"your_position,omitempty"`
	Hand           []string           `json:"hand,omitempty"`
	TrumpCounts    map[string]int     `json:"trump_counts,omitempty"`
	AvailableBids  []domain.BidOption `json:"available_bids,omitempty"`
	CanBid         bool               `json:"can_bid"`
	CanPass        bool               `json:"can_pass"`
	HighestBid     *BidMadePayload    `json:"highest_bid,omitempty"`
}

// PlayingState renders the trick-taking phase for one requesting user.
type PlayingState struct {
	commonState
	TrumpSuit          string              `json:"trump_suit"`
	TrumpDeclarer      int                 `json:"trump_declarer"`
	Partner            int                 `json:"partner"`
	YourPosition       *int                `json:"your_position,omitempty"`
	Hand               []string            `json:"hand,omitempty"`
	LegalCards         []string            `json:"legal_cards,omitempty"`
	TrickNumber        int                 `json:"trick_number"`
	LeadSuit           string              `json:"lead_suit,omitempty"`
	CardsPlayed        []domain.PlayedCard `json:"cards_played"`
	CurrentPlayer      int                 `json:"current_player"`
	CurrentLeader      int                 `json:"current_leader"`
	YourTurn           bool                `json:"your_turn"`
	TrumpTeamTricks    int                 `json:"trump_team_tricks"`
	OpponentTeamTricks int                 `json:"opponent_team_tricks"`
	TrumpTeamPoints    int                 `json:"trump_team_points"`
	OpponentTeamPoints int                 `json:"opponent_team_points"`
}

// CompletedState renders the finished game.
type CompletedState struct {
	commonState
	Scoring         *domain.Scoring    `json:"scoring,omitempty"`
	Result          *domain.GameResult `json:"result,omitempty"`
	Cross           *domain.CrossState `json:"cross_state,omitempty"`
	CanStartNewGame bool               `json:"can_start_new_game"`
}

// BuildSnapshot produces the initial-state message for a user joining the
// given match's channel. The timestamp is a tick ahead of the wall clock so
// stale live events are recognizable on the client.
func (s *Service) BuildSnapshot(ctx context.Context, matchID, userID string) (*Snapshot, error) {
	timestamp := s.snapshotTimestamp()
	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	common, err := s.buildCommonState(ctx, m)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		GameID:    matchID,
		Phase:     string(m.Status),
		Timestamp: timestamp,
	}

	switch m.Status {
	case domain.StatusWaiting:
		snapshot.Event = "initial_state_waiting"
		snapshot.Data, err = s.buildWaitingState(common, userID)
	case domain.StatusDealing:
		snapshot.Event = "initial_state_dealing"
		snapshot.Data, err = s.buildDealingState(ctx, m, common)
	case domain.StatusBidding:
		snapshot.Event = "initial_state_bidding"
		snapshot.Data, err = s.buildBiddingState(ctx, m, common, userID)
	case domain.StatusPlaying:
		snapshot.Event = "initial_state_playing"
		snapshot.Data, err = s.buildPlayingState(ctx, m, common, userID)
	case domain.StatusCompleted:
		snapshot.Event = "initial_state_completed"
		snapshot.Data, err = s.buildCompletedState(ctx, m, common, userID)
	default:
		return nil, Conflict("no snapshot for status %s", m.Status)
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *Service) buildCommonState(ctx context.Context, m *domain.Match) (commonState, error) {
	var common commonState

	host, err := s.store.HostOf(ctx, m.ID)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return common, Transient("failed to resolve host", err)
	}
	common.MatchInfo = MatchInfo{
		ID:               m.ID,
		PIN:              m.PIN,
		Status:           string(m.Status),
		NumberOfCrosses:  m.NumberOfCrosses,
		CurrentCross:     m.CurrentCross,
		CreatedTimestamp: m.CreatedTimestamp,
		Host:             host,
	}

	players, err := s.store.PlayersInMatch(ctx, m.ID)
	if err != nil {
		return common, Transient("failed to load players", err)
	}
	positions, err := s.store.Positions(ctx, m.ID)
	if err != nil {
		return common, Transient("failed to load positions", err)
	}
	order, err := s.store.JoinOrder(ctx, m.ID)
	if err != nil {
		return common, Transient("failed to load join order", err)
	}

	for _, userID := range order {
		role, ok := players[userID]
		if !ok {
			continue
		}
		username, err := s.store.Username(ctx, userID)
		if err != nil {
			username = "Unknown Player"
		}
		info := PlayerInfo{UserID: userID, Username: username, Role: role}
		if pos, ok := positions[userID]; ok {
			p := pos
			info.Position = &p
		}
		common.Players = append(common.Players, info)
	}
	return common, nil
}

func (s *Service) buildWaitingState(common commonState, userID string) (*WaitingState, error) {
	isHost := common.MatchInfo.Host == userID
	count := len(common.Players)
	needed := PlayersPerMatch - count
	if needed < 0 {
		needed = 0
	}
	return &WaitingState{
		commonState:   common,
		IsHost:        isHost,
		CanStartGame:  isHost && count == PlayersPerMatch,
		PlayersNeeded: needed,
	}, nil
}

func (s *Service) buildDealingState(ctx context.Context, m *domain.Match, common commonState) (*DealingState, error) {
	progress := "starting"
	dealt := 0
	for position := 0; position < PlayersPerMatch; position++ {
		if _, err := s.store.GetHand(ctx, m.ID, position); err == nil {
			dealt++
		}
	}
	switch {
	case dealt == PlayersPerMatch:
		progress = "complete"
	case dealt > 0:
		progress = "dealing"
	}
	return &DealingState{
		commonState:     common,
		DealerPosition:  m.DealerPosition,
		DealingProgress: progress,
	}, nil
}

func (s *Service) buildBiddingState(ctx context.Context, m *domain.Match, common commonState, userID string) (*BiddingState, error) {
	state := &BiddingState{
		commonState:    common,
		DealerPosition: m.DealerPosition,
		CurrentBidder:  m.CurrentBidder,
	}
	if m.HighestBidder != domain.NoPosition {
		state.HighestBid = &BidMadePayload{
			BidderPosition: m.HighestBidder,
			BidLength:      m.HighestBidLength,
			BidSuit:        string(m.HighestBidSuit),
			CurrentBidder:  m.CurrentBidder,
		}
	}

	positions, err := s.store.Positions(ctx, m.ID)
	if err != nil {
		return nil, Transient("failed to load positions", err)
	}
	position, seated := positions[userID]
	if !seated {
		return state, nil
	}
	state.YourPosition = &position

	hand, err := s.loadHand(ctx, m.ID, position)
	if err != nil {
		return nil, err
	}
	state.Hand = hand.Codes()
	state.TrumpCounts = suitCountNames(hand.TrumpCounts())
	state.AvailableBids = hand.AvailableBids(m.HighestBidLength, m.HighestBidSuit)
	isTurn := position == m.CurrentBidder
	state.CanBid = isTurn && len(state.AvailableBids) > 0
	state.CanPass = isTurn
	return state, nil
}

func (s *Service) buildPlayingState(ctx context.Context, m *domain.Match, common commonState, userID string) (*PlayingState, error) {
	trickState, err := s.getTrickState(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	trick := trickState.CurrentTrick

	state := &PlayingState{
		commonState:        common,
		TrumpSuit:          string(m.TrumpSuit),
		TrumpDeclarer:      m.TrumpDeclarer,
		Partner:            trickState.Partner,
		TrickNumber:        trick.TrickNumber,
		LeadSuit:           string(trick.LeadSuit),
		CardsPlayed:        trick.CardsPlayed,
		CurrentPlayer:      trick.CurrentPlayer,
		CurrentLeader:      m.CurrentLeader,
		TrumpTeamTricks:    trickState.TrumpTeamTricks,
		OpponentTeamTricks: trickState.OpponentTeamTricks,
		TrumpTeamPoints:    trickState.TrumpTeamPoints,
		OpponentTeamPoints: trickState.OpponentTeamPoints,
	}

	positions, err := s.store.Positions(ctx, m.ID)
	if err != nil {
		return nil, Transient("failed to load positions", err)
	}
	position, seated := positions[userID]
	if !seated {
		return state, nil
	}
	state.YourPosition = &position
	state.YourTurn = position == trick.CurrentPlayer

	hand, err := s.loadHand(ctx, m.ID, position)
	if err != nil {
		return nil, err
	}
	state.Hand = hand.Codes()
	if state.YourTurn {
		for _, card := range hand.PlayableCards(m.TrumpSuit, trick.LeadSuit, trick.HasLeadSuit) {
			state.LegalCards = append(state.LegalCards, card.Code())
		}
	}
	return state, nil
}

func (s *Service) buildCompletedState(ctx context.Context, m *domain.Match, common commonState, userID string) (*CompletedState, error) {
	state := &CompletedState{commonState: common}

	trickState, err := s.store.GetTrickState(ctx, m.ID)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return nil, Transient("failed to load trick state", err)
	}
	if trickState != nil && trickState.GameComplete {
		scoring, err := trickState.FinalScoring()
		if err == nil {
			result := scoring.GameResult()
			state.Scoring = &scoring
			state.Result = &result
		}
	}

	cross, err := s.store.GetCrossState(ctx, m.ID)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return nil, Transient("failed to load cross state", err)
	}
	state.Cross = cross

	rubberOver := cross != nil && cross.CrossComplete &&
		(cross.TrumpTeamCrosses >= m.NumberOfCrosses || cross.OpponentTeamCrosses >= m.NumberOfCrosses)
	state.CanStartNewGame = common.MatchInfo.Host == userID && !rubberOver
	return state, nil
}

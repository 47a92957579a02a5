package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"sjavs/internal/domain"
)

// StartResult reports the outcome of a successful start_game command.
type StartResult struct {
	Match     *domain.Match
	Positions map[string]int
}

// StartGame is host-only: transitions waiting -> dealing -> bidding, seats
// the players, deals until a biddable hand exists and stores the hands.
// With a finished game and a live rubber it also starts the next game.
func (s *Service) StartGame(ctx context.Context, userID string) (*StartResult, error) {
	matchID, err := s.matchIDForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlock, err := s.lockMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	host, err := s.store.HostOf(ctx, matchID)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return nil, Transient("failed to resolve host", err)
	}
	if userID != host {
		return nil, NotYourTurn("only the host can start the game")
	}

	switch m.Status {
	case domain.StatusWaiting:
		// First game of the match.
	case domain.StatusCompleted:
		// Next game within the rubber.
		cross, err := s.store.GetCrossState(ctx, matchID)
		if err != nil && !errors.Is(err, ErrNoRecord) {
			return nil, Transient("failed to load cross state", err)
		}
		if cross != nil && cross.CrossComplete {
			rubberOver := cross.TrumpTeamCrosses >= m.NumberOfCrosses ||
				cross.OpponentTeamCrosses >= m.NumberOfCrosses
			if rubberOver && !s.opts.RubberReset {
				return nil, Conflict("rubber is finished")
			}
			cross.ResetForNewCross()
			if err := s.store.SaveCrossState(ctx, matchID, cross); err != nil {
				return nil, Transient("failed to reset cross state", err)
			}
		}
	default:
		return nil, Conflict("game cannot start from %s", m.Status)
	}

	players, err := s.store.PlayersInMatch(ctx, matchID)
	if err != nil {
		return nil, Transient("failed to load players", err)
	}
	if len(players) != PlayersPerMatch {
		return nil, Conflict("need exactly %d players, have %d", PlayersPerMatch, len(players))
	}

	positions, err := s.assignPositions(ctx, matchID, host)
	if err != nil {
		return nil, err
	}

	dealer := s.randomDealer()
	if err := m.StartDealing(dealer); err != nil {
		return nil, Conflict("%v", err)
	}
	if err := s.store.SaveMatch(ctx, m); err != nil {
		return nil, Transient("failed to save match", err)
	}

	hands, err := s.dealHands()
	if err != nil {
		return nil, Fatal("dealing failed: %v", err)
	}
	if err := s.storeHands(ctx, matchID, hands); err != nil {
		return nil, err
	}
	if err := m.StartBidding(); err != nil {
		return nil, Conflict("%v", err)
	}
	if err := s.store.SaveMatch(ctx, m); err != nil {
		return nil, Transient("failed to save match", err)
	}

	members, err := s.memberIDs(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, Event{
		Kind:            EventGameStarted,
		GameID:          matchID,
		AffectedPlayers: members,
		Message:         "game started",
		Payload: GameStartedPayload{
			DealerPosition: m.DealerPosition,
			CurrentBidder:  m.CurrentBidder,
			Positions:      positions,
		},
	})
	s.publishHandsDealt(ctx, m, positions, hands)

	s.log.Info("game started",
		zap.String("game_id", matchID),
		zap.Int("dealer", dealer))
	return &StartResult{Match: m, Positions: positions}, nil
}

// assignPositions seats players in join order with the host at 0. Existing
// positions are kept so re-deals and next games preserve seating.
func (s *Service) assignPositions(ctx context.Context, matchID, host string) (map[string]int, error) {
	existing, err := s.store.Positions(ctx, matchID)
	if err != nil {
		return nil, Transient("failed to load positions", err)
	}
	players, err := s.store.PlayersInMatch(ctx, matchID)
	if err != nil {
		return nil, Transient("failed to load players", err)
	}
	if len(existing) == PlayersPerMatch && sameMembers(existing, players) {
		return existing, nil
	}

	order, err := s.store.JoinOrder(ctx, matchID)
	if err != nil {
		return nil, Transient("failed to load join order", err)
	}
	positions := make(map[string]int, PlayersPerMatch)
	positions[host] = 0
	next := 1
	for _, userID := range order {
		if userID == host {
			continue
		}
		if _, seated := positions[userID]; seated {
			continue
		}
		positions[userID] = next
		next++
	}
	if len(positions) != PlayersPerMatch {
		return nil, Conflict("cannot seat %d players", len(positions))
	}
	if err := s.store.SetPositions(ctx, matchID, positions); err != nil {
		return nil, Transient("failed to store positions", err)
	}
	return positions, nil
}

// sameMembers reports whether the seated users are exactly the current
// players.
func sameMembers(positions map[string]int, players map[string]string) bool {
	if len(positions) != len(players) {
		return false
	}
	for userID := range positions {
		if _, ok := players[userID]; !ok {
			return false
		}
	}
	return true
}

// MakeBid validates and records a trump bid for the caller.
func (s *Service) MakeBid(ctx context.Context, userID string, length int, suitName string) error {
	suit, err := domain.ParseSuit(suitName)
	if err != nil {
		return IllegalMove("invalid suit %q", suitName)
	}

	matchID, err := s.matchIDForUser(ctx, userID)
	if err != nil {
		return err
	}
	unlock, err := s.lockMatch(ctx, matchID)
	if err != nil {
		return err
	}
	defer unlock()

	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if m.Status != domain.StatusBidding {
		return Conflict("game is not in bidding phase")
	}
	position, err := s.positionOf(ctx, matchID, userID)
	if err != nil {
		return err
	}
	if position != m.CurrentBidder {
		return NotYourTurn("it is seat %d's turn to bid", m.CurrentBidder)
	}

	if !domain.BidLegal(length, suit, m.HighestBidLength, m.HighestBidSuit) {
		return IllegalMove("bid %d %s is not legal over %d %s",
			length, suit, m.HighestBidLength, m.HighestBidSuit)
	}
	hand, err := s.loadHand(ctx, matchID, position)
	if err != nil {
		return err
	}
	if hand.TrumpCounts()[suit] < length {
		return IllegalMove("your hand has fewer than %d %s trumps", length, suit)
	}

	if err := m.RecordBid(position, length, suit); err != nil {
		return Conflict("%v", err)
	}
	if err := s.store.SaveMatch(ctx, m); err != nil {
		return Transient("failed to save match", err)
	}

	members, err := s.memberIDs(ctx, matchID)
	if err != nil {
		return err
	}
	s.publish(ctx, Event{
		Kind:            EventBidMade,
		GameID:          matchID,
		AffectedPlayers: members,
		Message:         "bid made",
		Payload: BidMadePayload{
			BidderPosition: position,
			BidLength:      length,
			BidSuit:        string(suit),
			CurrentBidder:  m.CurrentBidder,
		},
	})
	return nil
}

// PassBid records a pass and drives the two bidding terminations: four
// opening passes force a redeal, three passes after a bid complete the
// bidding and open play.
func (s *Service) PassBid(ctx context.Context, userID string) error {
	matchID, err := s.matchIDForUser(ctx, userID)
	if err != nil {
		return err
	}
	unlock, err := s.lockMatch(ctx, matchID)
	if err != nil {
		return err
	}
	defer unlock()

	m, err := s.getMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if m.Status != domain.StatusBidding {
		return Conflict("game is not in bidding phase")
	}
	position, err := s.positionOf(ctx, matchID, userID)
	if err != nil {
		return err
	}
	if position != m.CurrentBidder {
		return NotYourTurn("it is seat %d's turn to bid", m.CurrentBidder)
	}

	allPassed, biddingComplete, err := m.RecordPass(position)
	if err != nil {
		return Conflict("%v", err)
	}

	members, err := s.memberIDs(ctx, matchID)
	if err != nil {
		return err
	}
	passEvent := Event{
		Kind:            EventPassMade,
		GameID:          matchID,
		AffectedPlayers: members,
		Message:         "pass made",
		Payload: PassMadePayload{
			PasserPosition:  position,
			CurrentBidder:   m.CurrentBidder,
			AllPassed:       allPassed,
			BiddingComplete: biddingComplete,
		},
	}

	switch {
	case allPassed:
		return s.redeal(ctx, m, members, passEvent)
	case biddingComplete:
		return s.completeBidding(ctx, m, members, passEvent)
	}

	if err := s.store.SaveMatch(ctx, m); err != nil {
		return Transient("failed to save match", err)
	}
	s.publish(ctx, passEvent)
	return nil
}

// redeal re-runs the deal with the same dealer after four opening passes.
func (s *Service) redeal(ctx context.Context, m *domain.Match, members []string, passEvent Event) error {
	if err := m.ResetForRedeal(); err != nil {
		return Conflict("%v", err)
	}
	hands, err := s.dealHands()
	if err != nil {
		return Fatal("redeal failed: %v", err)
	}
	if err := s.storeHands(ctx, m.ID, hands); err != nil {
		return err
	}
	if err := m.StartBidding(); err != nil {
		return Conflict("%v", err)
	}
	if err := s.store.SaveMatch(ctx, m); err != nil {
		return Transient("failed to save match", err)
	}

	s.publish(ctx, passEvent)
	s.publish(ctx, Event{
		Kind:            EventRedeal,
		GameID:          m.ID,
		AffectedPlayers: members,
		Message:         "cards redealt",
		Payload: RedealPayload{
			DealerPosition: m.DealerPosition,
			CurrentBidder:  m.CurrentBidder,
		},
	})

	positions, err := s.store.Positions(ctx, m.ID)
	if err != nil {
		return Transient("failed to load positions", err)
	}
	s.publishHandsDealt(ctx, m, positions, hands)

	s.log.Info("redeal", zap.String("game_id", m.ID))
	return nil
}

// completeBidding fixes trump, determines the partnership and initializes
// trick state.
func (s *Service) completeBidding(ctx context.Context, m *domain.Match, members []string, passEvent Event) error {
	hands, err := s.loadAllHands(ctx, m.ID)
	if err != nil {
		return err
	}

	bidLength := m.HighestBidLength
	if err := m.CompleteBidding(); err != nil {
		return Conflict("%v", err)
	}
	partner := domain.DeterminePartner(hands, m.TrumpDeclarer)

	trickState := domain.NewTrickState(m.CurrentLeader, m.TrumpSuit, m.TrumpDeclarer, partner)
	if err := s.store.SaveTrickState(ctx, m.ID, trickState); err != nil {
		return Transient("failed to initialize trick state", err)
	}

	cross, err := s.store.GetCrossState(ctx, m.ID)
	if errors.Is(err, ErrNoRecord) || cross == nil {
		cross = domain.NewCrossState(m.ID)
		if err := s.store.SaveCrossState(ctx, m.ID, cross); err != nil {
			return Transient("failed to initialize cross state", err)
		}
	} else if err != nil {
		return Transient("failed to load cross state", err)
	}

	if err := s.store.SaveMatch(ctx, m); err != nil {
		return Transient("failed to save match", err)
	}

	s.publish(ctx, passEvent)
	s.publish(ctx, Event{
		Kind:            EventBiddingComplete,
		GameID:          m.ID,
		AffectedPlayers: members,
		Message:         "bidding complete",
		Payload: BiddingCompletePayload{
			TrumpSuit:     string(m.TrumpSuit),
			TrumpDeclarer: m.TrumpDeclarer,
			Partner:       partner,
			BidLength:     bidLength,
			CurrentLeader: m.CurrentLeader,
		},
	})

	s.log.Info("bidding complete",
		zap.String("game_id", m.ID),
		zap.String("trump", string(m.TrumpSuit)),
		zap.Int("declarer", m.TrumpDeclarer),
		zap.Int("partner", partner))
	return nil
}

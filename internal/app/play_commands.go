package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"sjavs/internal/domain"
)

// PlayResult reports the outcome of a play_card command.
type PlayResult struct {
	Card          domain.Card
	TrickComplete bool
	TrickWinner   int
	GameComplete  bool
}

// PlayCard validates and applies one card play, resolving the trick and the
// game when they complete.
func (s *Service) PlayCard(ctx context.Context, userID, cardCode string) (*PlayResult, error) {
	card, err := domain.ParseCard(cardCode)
	if err != nil {
		return nil, IllegalMove("invalid card code %q", cardCode)
	}

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
	if m.Status != domain.StatusPlaying {
		return nil, Conflict("game is not in playing phase")
	}

	trickState, err := s.getTrickState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	trick := trickState.CurrentTrick
	position, err := s.positionOf(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	if position != trick.CurrentPlayer {
		return nil, NotYourTurn("it is seat %d's turn", trick.CurrentPlayer)
	}

	hand, err := s.loadHand(ctx, matchID, position)
	if err != nil {
		return nil, err
	}
	if !hand.Has(card) {
		return nil, IllegalMove("card %s is not in your hand", card)
	}
	legal := hand.PlayableCards(m.TrumpSuit, trick.LeadSuit, trick.HasLeadSuit)
	if !containsCard(legal, card) {
		return nil, IllegalMove("card %s does not follow suit", card)
	}

	// Hand first, then trick: a crash in between leaves the card missing from
	// the hand rather than duplicated in both places.
	hand.Remove(card)
	if err := s.store.UpdateHand(ctx, matchID, position, hand.Codes()); err != nil {
		return nil, Transient("failed to update hand", err)
	}
	if err := trick.Play(position, card); err != nil {
		return nil, IllegalMove("%v", err)
	}

	result := &PlayResult{Card: card, TrickComplete: trick.IsComplete}
	members, err := s.memberIDs(ctx, matchID)
	if err != nil {
		return nil, err
	}

	cardEvent := Event{
		Kind:            EventCardPlayed,
		GameID:          matchID,
		AffectedPlayers: members,
		Message:         "card played",
		Payload: CardPlayedPayload{
			Position:      position,
			Card:          card.Code(),
			LeadSuit:      string(trick.LeadSuit),
			TrickNumber:   trick.TrickNumber,
			CurrentPlayer: trick.CurrentPlayer,
			TrickComplete: trick.IsComplete,
		},
	}

	if !trick.IsComplete {
		if err := s.store.SaveTrickState(ctx, matchID, trickState); err != nil {
			return nil, Transient("failed to save trick state", err)
		}
		s.publish(ctx, cardEvent)
		return result, nil
	}

	// Archive the finished trick before mutating the tallies.
	trickNumber := trick.TrickNumber
	if err := s.store.StoreCompletedTrick(ctx, matchID, trickNumber, trick); err != nil {
		s.log.Warn("failed to store trick history", zap.Error(err))
	}
	completion, err := trickState.CompleteTrick()
	if err != nil {
		return nil, Fatal("trick completion failed: %v", err)
	}
	if err := s.store.SaveTrickState(ctx, matchID, trickState); err != nil {
		return nil, Transient("failed to save trick state", err)
	}

	result.TrickWinner = completion.Winner
	result.GameComplete = completion.GameComplete

	s.publish(ctx, cardEvent)
	s.publish(ctx, Event{
		Kind:            EventTrickCompleted,
		GameID:          matchID,
		AffectedPlayers: members,
		Message:         "trick completed",
		Payload: TrickCompletedPayload{
			TrickNumber:        trickNumber,
			Winner:             completion.Winner,
			Points:             completion.Points,
			TrumpTeamWon:       completion.TrumpTeamWon,
			TrumpTeamTricks:    trickState.TrumpTeamTricks,
			OpponentTeamTricks: trickState.OpponentTeamTricks,
			NextLeader:         completion.NextLeader,
			GameComplete:       completion.GameComplete,
		},
	})

	if completion.GameComplete {
		if _, err := s.finishGame(ctx, m, trickState, members); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// CompletionResult is the scored outcome of a finished game.
type CompletionResult struct {
	Scoring     domain.Scoring
	Result      domain.GameResult
	CrossResult domain.CrossResult
	Cross       *domain.CrossState
	RubberOver  bool
}

// CompleteGame is the explicit recovery path for game completion. The
// server normally finishes the game itself when trick 8 resolves; this
// command converges to the same state if that write was lost.
func (s *Service) CompleteGame(ctx context.Context, userID string) (*CompletionResult, error) {
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
	if m.Status != domain.StatusPlaying {
		return nil, Conflict("game is not in playing phase")
	}
	trickState, err := s.getTrickState(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !trickState.GameComplete {
		return nil, Conflict("all 8 tricks must be played first")
	}
	members, err := s.memberIDs(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return s.finishGame(ctx, m, trickState, members)
}

// finishGame scores a complete game, applies the cross update and publishes
// the result. Called with the match lock held.
func (s *Service) finishGame(ctx context.Context, m *domain.Match, trickState *domain.TrickState, members []string) (*CompletionResult, error) {
	scoring, err := trickState.FinalScoring()
	if err != nil {
		return nil, Conflict("%v", err)
	}
	if !scoring.ValidTotal() {
		reason := "points conservation violated"
		s.abortMatch(ctx, m, reason)
		return nil, Fatal("%s: %d + %d != 120",
			reason, scoring.TrumpTeamPoints, scoring.OpponentTeamPoints)
	}

	gameResult := scoring.GameResult()

	cross, err := s.store.GetCrossState(ctx, m.ID)
	if errors.Is(err, ErrNoRecord) || cross == nil {
		cross = domain.NewCrossState(m.ID)
	} else if err != nil {
		return nil, Transient("failed to load cross state", err)
	}
	crossResult := cross.ApplyGameResult(gameResult)
	if err := s.store.SaveCrossState(ctx, m.ID, cross); err != nil {
		return nil, Transient("failed to save cross state", err)
	}

	if err := m.Complete(); err != nil {
		return nil, Conflict("%v", err)
	}
	if crossResult.CrossComplete {
		m.CurrentCross++
	}
	if err := s.store.SaveMatch(ctx, m); err != nil {
		return nil, Transient("failed to save match", err)
	}

	// Hands are spent; drop them so the completed phase has nothing stale.
	if err := s.store.ClearHands(ctx, m.ID); err != nil {
		s.log.Warn("failed to clear hands", zap.Error(err))
	}

	rubberOver := crossResult.CrossComplete &&
		(cross.TrumpTeamCrosses >= m.NumberOfCrosses || cross.OpponentTeamCrosses >= m.NumberOfCrosses)

	s.publish(ctx, Event{
		Kind:            EventGameComplete,
		GameID:          m.ID,
		AffectedPlayers: members,
		Message:         "game complete",
		Payload: GameCompletePayload{
			Scoring:     scoring,
			Result:      gameResult,
			CrossResult: crossResult,
			Cross:       *cross,
			RubberOver:  rubberOver,
		},
	})

	s.log.Info("game complete",
		zap.String("game_id", m.ID),
		zap.String("result", string(gameResult.ResultType)),
		zap.Int("trump_score", cross.TrumpTeamScore),
		zap.Int("opponent_score", cross.OpponentTeamScore))

	return &CompletionResult{
		Scoring:     scoring,
		Result:      gameResult,
		CrossResult: crossResult,
		Cross:       cross,
		RubberOver:  rubberOver,
	}, nil
}

// getTrickState loads trick state or classifies its absence.
func (s *Service) getTrickState(ctx context.Context, matchID string) (*domain.TrickState, error) {
	trickState, err := s.store.GetTrickState(ctx, matchID)
	if errors.Is(err, ErrNoRecord) {
		return nil, NotFound("no trick state for game %s", matchID)
	}
	if err != nil {
		return nil, Transient("failed to load trick state", err)
	}
	return trickState, nil
}

func containsCard(cards []domain.Card, card domain.Card) bool {
	for _, c := range cards {
		if c == card {
			return true
		}
	}
	return false
}

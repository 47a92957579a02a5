package app

import "context"

// Team-up events are an optional partnering UX relayed between members of
// the same match over their user channels.
const (
	EventTeamUpRequest  = "team_up_request"
	EventTeamUpResponse = "team_up_response"
)

// TeamUpPayload is the relayed partnering message.
type TeamUpPayload struct {
	FromPlayer string `json:"from_player"`
	ToPlayer   string `json:"to_player"`
	Accepted   *bool  `json:"accepted,omitempty"`
}

// RelayTeamUp validates that both users share a match and forwards the
// partnering message to the target's user channel.
func (s *Service) RelayTeamUp(ctx context.Context, kind, fromUserID, toUserID string, accepted *bool) error {
	if kind != EventTeamUpRequest && kind != EventTeamUpResponse {
		return IllegalMove("unknown team-up event %q", kind)
	}
	if toUserID == "" || toUserID == fromUserID {
		return IllegalMove("invalid team-up target")
	}

	matchID, err := s.matchIDForUser(ctx, fromUserID)
	if err != nil {
		return err
	}
	players, err := s.store.PlayersInMatch(ctx, matchID)
	if err != nil {
		return Transient("failed to load players", err)
	}
	if _, ok := players[toUserID]; !ok {
		return NotFound("player is not in your game")
	}

	s.publish(ctx, Event{
		Kind:            kind,
		GameID:          matchID,
		AffectedPlayers: []string{toUserID},
		UserOnly:        true,
		Payload: TeamUpPayload{
			FromPlayer: fromUserID,
			ToPlayer:   toUserID,
			Accepted:   accepted,
		},
	})
	return nil
}

// SnapshotForUser resolves the caller's match and builds their phase
// snapshot.
func (s *Service) SnapshotForUser(ctx context.Context, userID string) (*Snapshot, error) {
	matchID, err := s.matchIDForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.BuildSnapshot(ctx, matchID, userID)
}

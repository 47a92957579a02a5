package app

import (
	"encoding/json"

	"sjavs/internal/domain"
)

// Event kinds fanned out over the pub/sub fabric.
const (
	EventPlayerJoined    = "player_joined"
	EventPlayerLeft      = "player_left"
	EventGameStarted     = "game_started"
	EventHandDealt       = "hand_dealt"
	EventBidMade         = "bid_made"
	EventPassMade        = "pass_made"
	EventRedeal          = "redeal"
	EventBiddingComplete = "bidding_complete"
	EventCardPlayed      = "card_played"
	EventTrickCompleted  = "trick_completed"
	EventGameComplete    = "game_complete"
	EventGameTerminated  = "game_terminated"
	EventGameAborted     = "game_aborted"
)

// Event is one fan-out message. Payload carries the event-specific fields of
// one of the typed payload structs below; on the wire those fields are
// flattened next to the envelope fields.
type Event struct {
	Kind            string
	GameID          string
	AffectedPlayers []string
	Message         string
	Timestamp       int64
	Payload         any

	// UserOnly restricts publication to the per-user channels (hands are
	// never pushed on the shared match channel).
	UserOnly bool
}

// MarshalJSON flattens the typed payload into the envelope object.
func (e Event) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"event":            e.Kind,
		"game_id":          e.GameID,
		"affected_players": e.AffectedPlayers,
		"timestamp":        e.Timestamp,
	}
	if e.Message != "" {
		out["message"] = e.Message
	}
	if e.Payload != nil {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		for k, v := range fields {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

type GameStartedPayload struct {
	DealerPosition int            `json:"dealer_position"`
	CurrentBidder  int            `json:"current_bidder"`
	Positions      map[string]int `json:"positions"`
}

type HandDealtPayload struct {
	Position      int                `json:"position"`
	Cards         []string           `json:"cards"`
	TrumpCounts   map[string]int     `json:"trump_counts"`
	AvailableBids []domain.BidOption `json:"available_bids"`
}

type BidMadePayload struct {
	BidderPosition int    `json:"bidder_position"`
	BidLength      int    `json:"bid_length"`
	BidSuit        string `json:"bid_suit"`
	CurrentBidder  int    `json:"current_bidder"`
}

type PassMadePayload struct {
	PasserPosition  int  `json:"passer_position"`
	CurrentBidder   int  `json:"current_bidder"`
	AllPassed       bool `json:"all_passed"`
	BiddingComplete bool `json:"bidding_complete"`
}

type RedealPayload struct {
	DealerPosition int `json:"dealer_position"`
	CurrentBidder  int `json:"current_bidder"`
}

type BiddingCompletePayload struct {
	TrumpSuit     string `json:"trump_suit"`
	TrumpDeclarer int    `json:"trump_declarer"`
	Partner       int    `json:"partner"`
	BidLength     int    `json:"bid_length"`
	CurrentLeader int    `json:"current_leader"`
}

type CardPlayedPayload struct {
	Position      int    `json:"position"`
	Card          string `json:"card"`
	LeadSuit      string `json:"lead_suit,omitempty"`
	TrickNumber   int    `json:"trick_number"`
	CurrentPlayer int    `json:"current_player"`
	TrickComplete bool   `json:"trick_complete"`
}

type TrickCompletedPayload struct {
	TrickNumber        int  `json:"trick_number"`
	Winner             int  `json:"winner"`
	Points             int  `json:"points"`
	TrumpTeamWon       bool `json:"trump_team_won"`
	TrumpTeamTricks    int  `json:"trump_team_tricks"`
	OpponentTeamTricks int  `json:"opponent_team_tricks"`
	NextLeader         int  `json:"next_leader"`
	GameComplete       bool `json:"game_complete"`
}

type GameCompletePayload struct {
	Scoring     domain.Scoring     `json:"scoring"`
	Result      domain.GameResult  `json:"result"`
	CrossResult domain.CrossResult `json:"cross_result"`
	Cross       domain.CrossState  `json:"cross_state"`
	RubberOver  bool               `json:"rubber_over"`
}

type GameTerminatedPayload struct {
	Reason string `json:"reason"`
}

type GameAbortedPayload struct {
	Reason string `json:"reason"`
}

package ws

import "encoding/json"

// ClientMessage is the inbound command envelope on the message channel.
type ClientMessage struct {
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
	GameID string          `json:"game_id,omitempty"`
}

// serverMessage is a directly-addressed outbound frame (acks, errors and
// snapshots; game events arrive pre-encoded from the pub/sub fabric).
type serverMessage struct {
	Event     string `json:"event"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Inbound events handled by the session demux.
const (
	msgJoin           = "join"
	msgTeamUpRequest  = "team_up_request"
	msgTeamUpResponse = "team_up_response"
	msgCreateMatch    = "create_match"
	msgJoinMatch      = "join_match"
	msgLeaveMatch     = "leave_match"
	msgStartGame      = "start_game"
	msgBid            = "bid"
	msgPass           = "pass"
	msgPlayCard       = "play_card"
	msgCompleteGame   = "complete_game"
)

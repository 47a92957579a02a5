package domain

// ResultType classifies the outcome of a completed game.
type ResultType string

const (
	ResultTrumpTeamWin   ResultType = "trump_team_win"
	ResultOpponentWin    ResultType = "opponent_win"
	ResultOpponentDouble ResultType = "opponent_double_win"
	ResultVol            ResultType = "vol"
	ResultIndividualVol  ResultType = "individual_vol"
	ResultOpponentVol    ResultType = "opponent_vol"
	ResultTie            ResultType = "tie"
)

// Scoring is the raw tally of a completed game.
type Scoring struct {
	TrumpTeamPoints    int  `json:"trump_team_points"`
	OpponentTeamPoints int  `json:"opponent_team_points"`
	TrumpTeamTricks    int  `json:"trump_team_tricks"`
	OpponentTeamTricks int  `json:"opponent_team_tricks"`
	TrumpSuit          Suit `json:"trump_suit"`
	IndividualVol      bool `json:"individual_vol"`
}

// GameResult is the scored outcome of one game.
type GameResult struct {
	TrumpTeamScore    int        `json:"trump_team_score"`
	OpponentTeamScore int        `json:"opponent_team_score"`
	ResultType        ResultType `json:"result_type"`
	Description       string     `json:"description"`
}

// ValidTotal checks points conservation: a finished deck is worth 120.
func (s Scoring) ValidTotal() bool {
	return s.TrumpTeamPoints+s.OpponentTeamPoints == 120
}

// GameResult applies the Sjavs scoring table. Clubs as trump doubles most
// outcomes; a 60-60 tie scores nothing but raises the next game's stake.
func (s Scoring) GameResult() GameResult {
	isClubs := s.TrumpSuit == Clubs

	pick := func(clubs, other int) int {
		if isClubs {
			return clubs
		}
		return other
	}

	switch {
	case s.TrumpTeamTricks == TricksPerGame && s.IndividualVol:
		return GameResult{
			TrumpTeamScore: pick(24, 16),
			ResultType:     ResultIndividualVol,
			Description:    "individual vol - one player won every trick",
		}
	case s.TrumpTeamTricks == TricksPerGame:
		return GameResult{
			TrumpTeamScore: pick(16, 12),
			ResultType:     ResultVol,
			Description:    "vol - trump team won every trick",
		}
	case s.OpponentTeamTricks == TricksPerGame:
		// Opponent vol is 16 regardless of trump suit.
		return GameResult{
			OpponentTeamScore: 16,
			ResultType:        ResultOpponentVol,
			Description:       "opponents won every trick",
		}
	case s.TrumpTeamPoints == 60 && s.OpponentTeamPoints == 60:
		return GameResult{
			ResultType:  ResultTie,
			Description: "tie at 60-60, next game worth 2 extra points",
		}
	case s.TrumpTeamPoints >= 90:
		return GameResult{
			TrumpTeamScore: pick(8, 4),
			ResultType:     ResultTrumpTeamWin,
			Description:    "trump team took 90 or more points",
		}
	case s.TrumpTeamPoints >= 61:
		return GameResult{
			TrumpTeamScore: pick(4, 2),
			ResultType:     ResultTrumpTeamWin,
			Description:    "trump team took 61-89 points",
		}
	case s.TrumpTeamPoints >= 31:
		// Trump team failed but avoided the double loss ("javnfrujjur").
		return GameResult{
			OpponentTeamScore: pick(8, 4),
			ResultType:        ResultOpponentWin,
			Description:       "trump team took 31-59 points",
		}
	default:
		return GameResult{
			OpponentTeamScore: pick(16, 8),
			ResultType:        ResultOpponentDouble,
			Description:       "trump team took 30 points or fewer",
		}
	}
}

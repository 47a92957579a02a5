package domain

// CrossStartScore is the countdown each team starts a cross from.
const CrossStartScore = 24

// HookScore is the "on the hook" display threshold.
const HookScore = 6

// CrossTeam identifies a side in cross bookkeeping.
type CrossTeam string

const (
	TeamTrump    CrossTeam = "trump_team"
	TeamOpponent CrossTeam = "opponents"
)

// CrossState tracks the rubber countdown for a match. Each team counts down
// from 24 by the points it earns; reaching 0 or below wins the cross.
type CrossState struct {
	MatchID             string `json:"match_id"`
	TrumpTeamScore      int    `json:"trump_team_score"`
	OpponentTeamScore   int    `json:"opponent_team_score"`
	TrumpTeamCrosses    int    `json:"trump_team_crosses"`
	OpponentTeamCrosses int    `json:"opponent_team_crosses"`
	NextGameBonus       int    `json:"next_game_bonus"`
	CrossComplete       bool   `json:"cross_complete"`
}

// NewCrossState starts both teams at 24.
func NewCrossState(matchID string) *CrossState {
	return &CrossState{
		MatchID:           matchID,
		TrumpTeamScore:    CrossStartScore,
		OpponentTeamScore: CrossStartScore,
	}
}

// CrossWinner describes a completed cross.
type CrossWinner struct {
	WinningTeam   CrossTeam `json:"winning_team"`
	DoubleVictory bool      `json:"double_victory"`
	CrossesWon    int       `json:"crosses_won"`
}

// CrossResult describes the effect of one game on the cross.
type CrossResult struct {
	TrumpTeamOldScore    int          `json:"trump_team_old_score"`
	OpponentTeamOldScore int          `json:"opponent_team_old_score"`
	TrumpTeamNewScore    int          `json:"trump_team_new_score"`
	OpponentTeamNewScore int          `json:"opponent_team_new_score"`
	CrossWon             *CrossWinner `json:"cross_won,omitempty"`
	BonusApplied         int          `json:"bonus_applied"`
	NextGameBonus        int          `json:"next_game_bonus"`
	CrossComplete        bool         `json:"cross_complete"`
}

// ApplyGameResult counts a game's outcome down the scoring team's counter.
// Any pending tie bonus is added to the delta of whichever team scores; a tie scores
// nothing and arms a +2 bonus for the following game.
func (cs *CrossState) ApplyGameResult(result GameResult) CrossResult {
	bonusApplied := cs.NextGameBonus
	cs.NextGameBonus = 0

	if result.TrumpTeamScore == 0 && result.OpponentTeamScore == 0 {
		// Tie: keep scores, arm the bonus.
		cs.NextGameBonus = 2
		return CrossResult{
			TrumpTeamOldScore:    cs.TrumpTeamScore,
			OpponentTeamOldScore: cs.OpponentTeamScore,
			TrumpTeamNewScore:    cs.TrumpTeamScore,
			OpponentTeamNewScore: cs.OpponentTeamScore,
			BonusApplied:         bonusApplied,
			NextGameBonus:        cs.NextGameBonus,
		}
	}

	oldTrump := cs.TrumpTeamScore
	oldOpponent := cs.OpponentTeamScore

	trumpDelta := result.TrumpTeamScore
	if trumpDelta > 0 {
		trumpDelta += bonusApplied
	}
	opponentDelta := result.OpponentTeamScore
	if opponentDelta > 0 {
		opponentDelta += bonusApplied
	}

	cs.TrumpTeamScore -= trumpDelta
	cs.OpponentTeamScore -= opponentDelta

	return CrossResult{
		TrumpTeamOldScore:    oldTrump,
		OpponentTeamOldScore: oldOpponent,
		TrumpTeamNewScore:    cs.TrumpTeamScore,
		OpponentTeamNewScore: cs.OpponentTeamScore,
		CrossWon:             cs.checkCompletion(),
		BonusApplied:         bonusApplied,
		NextGameBonus:        cs.NextGameBonus,
		CrossComplete:        cs.CrossComplete,
	}
}

func (cs *CrossState) checkCompletion() *CrossWinner {
	if cs.TrumpTeamScore <= 0 {
		cs.TrumpTeamCrosses++
		cs.CrossComplete = true
		return &CrossWinner{
			WinningTeam:   TeamTrump,
			DoubleVictory: cs.OpponentTeamScore == CrossStartScore,
			CrossesWon:    cs.TrumpTeamCrosses,
		}
	}
	if cs.OpponentTeamScore <= 0 {
		cs.OpponentTeamCrosses++
		cs.CrossComplete = true
		return &CrossWinner{
			WinningTeam:   TeamOpponent,
			DoubleVictory: cs.TrumpTeamScore == CrossStartScore,
			CrossesWon:    cs.OpponentTeamCrosses,
		}
	}
	return nil
}

// OnTheHook reports, for display, whether each team sits at exactly 6.
func (cs *CrossState) OnTheHook() (trumpTeam, opponents bool) {
	return cs.TrumpTeamScore == HookScore, cs.OpponentTeamScore == HookScore
}

// ResetForNewCross restarts the countdown for the next cross in the rubber.
func (cs *CrossState) ResetForNewCross() {
	cs.TrumpTeamScore = CrossStartScore
	cs.OpponentTeamScore = CrossStartScore
	cs.NextGameBonus = 0
	cs.CrossComplete = false
}

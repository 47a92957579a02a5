package domain

import "testing"

func TestGameResultTable(t *testing.T) {
	tests := []struct {
		name         string
		scoring      Scoring
		wantTrump    int
		wantOpponent int
		wantType     ResultType
	}{
		{
			name: "vol non-clubs",
			scoring: Scoring{
				TrumpTeamPoints: 120, TrumpTeamTricks: 8, TrumpSuit: Hearts,
			},
			wantTrump: 12, wantType: ResultVol,
		},
		{
			name: "vol clubs",
			scoring: Scoring{
				TrumpTeamPoints: 120, TrumpTeamTricks: 8, TrumpSuit: Clubs,
			},
			wantTrump: 16, wantType: ResultVol,
		},
		{
			name: "individual vol non-clubs",
			scoring: Scoring{
				TrumpTeamPoints: 120, TrumpTeamTricks: 8, TrumpSuit: Hearts, IndividualVol: true,
			},
			wantTrump: 16, wantType: ResultIndividualVol,
		},
		{
			name: "individual vol clubs",
			scoring: Scoring{
				TrumpTeamPoints: 120, TrumpTeamTricks: 8, TrumpSuit: Clubs, IndividualVol: true,
			},
			wantTrump: 24, wantType: ResultIndividualVol,
		},
		{
			name: "opponent vol ignores trump suit",
			scoring: Scoring{
				OpponentTeamPoints: 120, OpponentTeamTricks: 8, TrumpTeamTricks: 0, TrumpSuit: Clubs,
			},
			wantOpponent: 16, wantType: ResultOpponentVol,
		},
		{
			name: "tie at sixty",
			scoring: Scoring{
				TrumpTeamPoints: 60, OpponentTeamPoints: 60,
				TrumpTeamTricks: 4, OpponentTeamTricks: 4, TrumpSuit: Hearts,
			},
			wantType: ResultTie,
		},
		{
			name: "high win",
			scoring: Scoring{
				TrumpTeamPoints: 95, OpponentTeamPoints: 25,
				TrumpTeamTricks: 6, OpponentTeamTricks: 2, TrumpSuit: Hearts,
			},
			wantTrump: 4, wantType: ResultTrumpTeamWin,
		},
		{
			name: "high win clubs",
			scoring: Scoring{
				TrumpTeamPoints: 90, OpponentTeamPoints: 30,
				TrumpTeamTricks: 6, OpponentTeamTricks: 2, TrumpSuit: Clubs,
			},
			wantTrump: 8, wantType: ResultTrumpTeamWin,
		},
		{
			name: "normal win",
			scoring: Scoring{
				TrumpTeamPoints: 75, OpponentTeamPoints: 45,
				TrumpTeamTricks: 5, OpponentTeamTricks: 3, TrumpSuit: Hearts,
			},
			wantTrump: 2, wantType: ResultTrumpTeamWin,
		},
		{
			name: "boundary sixty one",
			scoring: Scoring{
				TrumpTeamPoints: 61, OpponentTeamPoints: 59,
				TrumpTeamTricks: 5, OpponentTeamTricks: 3, TrumpSuit: Hearts,
			},
			wantTrump: 2, wantType: ResultTrumpTeamWin,
		},
		{
			name: "avoided double loss",
			scoring: Scoring{
				TrumpTeamPoints: 35, OpponentTeamPoints: 85,
				TrumpTeamTricks: 2, OpponentTeamTricks: 6, TrumpSuit: Hearts,
			},
			wantOpponent: 4, wantType: ResultOpponentWin,
		},
		{
			name: "avoided double loss clubs",
			scoring: Scoring{
				TrumpTeamPoints: 59, OpponentTeamPoints: 61,
				TrumpTeamTricks: 3, OpponentTeamTricks: 5, TrumpSuit: Clubs,
			},
			wantOpponent: 8, wantType: ResultOpponentWin,
		},
		{
			name: "double loss",
			scoring: Scoring{
				TrumpTeamPoints: 25, OpponentTeamPoints: 95,
				TrumpTeamTricks: 1, OpponentTeamTricks: 7, TrumpSuit: Hearts,
			},
			wantOpponent: 8, wantType: ResultOpponentDouble,
		},
		{
			name: "double loss clubs zero points",
			scoring: Scoring{
				TrumpTeamPoints: 0, OpponentTeamPoints: 120,
				TrumpTeamTricks: 1, OpponentTeamTricks: 7, TrumpSuit: Clubs,
			},
			wantOpponent: 16, wantType: ResultOpponentDouble,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.scoring.GameResult()
			if result.TrumpTeamScore != tt.wantTrump {
				t.Errorf("trump score = %d, want %d", result.TrumpTeamScore, tt.wantTrump)
			}
			if result.OpponentTeamScore != tt.wantOpponent {
				t.Errorf("opponent score = %d, want %d", result.OpponentTeamScore, tt.wantOpponent)
			}
			if result.ResultType != tt.wantType {
				t.Errorf("result type = %s, want %s", result.ResultType, tt.wantType)
			}
		})
	}
}

func TestValidTotal(t *testing.T) {
	ok := Scoring{TrumpTeamPoints: 75, OpponentTeamPoints: 45}
	if !ok.ValidTotal() {
		t.Fatal("75+45 should validate")
	}
	bad := Scoring{TrumpTeamPoints: 75, OpponentTeamPoints: 50}
	if bad.ValidTotal() {
		t.Fatal("75+50 should not validate")
	}
}

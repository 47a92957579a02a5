package domain

import "testing"

func TestNewCrossState(t *testing.T) {
	cs := NewCrossState("m1")
	if cs.TrumpTeamScore != 24 || cs.OpponentTeamScore != 24 {
		t.Fatalf("scores = (%d,%d), want (24,24)", cs.TrumpTeamScore, cs.OpponentTeamScore)
	}
	if cs.CrossComplete {
		t.Fatal("new cross must not be complete")
	}
}

func TestApplyNormalWin(t *testing.T) {
	cs := NewCrossState("m1")
	result := cs.ApplyGameResult(GameResult{TrumpTeamScore: 4, ResultType: ResultTrumpTeamWin})

	if cs.TrumpTeamScore != 20 {
		t.Fatalf("trump score = %d, want 20", cs.TrumpTeamScore)
	}
	if cs.OpponentTeamScore != 24 {
		t.Fatalf("opponent score = %d, want untouched 24", cs.OpponentTeamScore)
	}
	if result.CrossWon != nil {
		t.Fatal("no cross should be won yet")
	}
}

func TestCrossCompletionAndDoubleVictory(t *testing.T) {
	cs := NewCrossState("m1")
	cs.TrumpTeamScore = 4

	result := cs.ApplyGameResult(GameResult{TrumpTeamScore: 8, ResultType: ResultTrumpTeamWin})
	if cs.TrumpTeamScore != -4 {
		t.Fatalf("trump score = %d, want -4", cs.TrumpTeamScore)
	}
	if result.CrossWon == nil {
		t.Fatal("cross should be won")
	}
	if result.CrossWon.WinningTeam != TeamTrump {
		t.Fatalf("winning team = %s", result.CrossWon.WinningTeam)
	}
	if !result.CrossWon.DoubleVictory {
		t.Fatal("opponents still at 24 is a double victory")
	}
	if !cs.CrossComplete {
		t.Fatal("cross complete flag not set")
	}
}

func TestCrossExactZeroWins(t *testing.T) {
	cs := NewCrossState("m1")
	cs.OpponentTeamScore = 8
	cs.TrumpTeamScore = 20

	result := cs.ApplyGameResult(GameResult{OpponentTeamScore: 8, ResultType: ResultOpponentWin})
	if cs.OpponentTeamScore != 0 {
		t.Fatalf("opponent score = %d, want 0", cs.OpponentTeamScore)
	}
	if result.CrossWon == nil || result.CrossWon.WinningTeam != TeamOpponent {
		t.Fatal("reaching exactly 0 should win the cross")
	}
	if result.CrossWon.DoubleVictory {
		t.Fatal("trump team moved off 24, not a double victory")
	}
}

func TestTieArmsBonus(t *testing.T) {
	cs := NewCrossState("m1")

	result := cs.ApplyGameResult(GameResult{ResultType: ResultTie})
	if cs.NextGameBonus != 2 {
		t.Fatalf("bonus = %d, want 2", cs.NextGameBonus)
	}
	if result.TrumpTeamNewScore != 24 || result.OpponentTeamNewScore != 24 {
		t.Fatal("tie must not move the counters")
	}

	// Next game: trump team scores 4, applied delta is 4+2.
	result = cs.ApplyGameResult(GameResult{TrumpTeamScore: 4, ResultType: ResultTrumpTeamWin})
	if result.BonusApplied != 2 {
		t.Fatalf("bonus applied = %d, want 2", result.BonusApplied)
	}
	if cs.TrumpTeamScore != 18 {
		t.Fatalf("trump score = %d, want 24-(4+2)=18", cs.TrumpTeamScore)
	}
	if cs.NextGameBonus != 0 {
		t.Fatal("bonus not cleared after use")
	}
}

func TestBonusAppliesToOpponentWin(t *testing.T) {
	cs := NewCrossState("m1")
	cs.ApplyGameResult(GameResult{ResultType: ResultTie})

	cs.ApplyGameResult(GameResult{OpponentTeamScore: 4, ResultType: ResultOpponentWin})
	if cs.OpponentTeamScore != 18 {
		t.Fatalf("opponent score = %d, want 24-(4+2)=18", cs.OpponentTeamScore)
	}
	if cs.TrumpTeamScore != 24 {
		t.Fatalf("trump score = %d, want untouched", cs.TrumpTeamScore)
	}
}

func TestOnTheHook(t *testing.T) {
	cs := NewCrossState("m1")
	cs.TrumpTeamScore = 6
	trump, opponents := cs.OnTheHook()
	if !trump || opponents {
		t.Fatalf("hook = (%v,%v), want (true,false)", trump, opponents)
	}
}

func TestResetForNewCross(t *testing.T) {
	cs := NewCrossState("m1")
	cs.ApplyGameResult(GameResult{TrumpTeamScore: 16, ResultType: ResultVol})
	cs.TrumpTeamScore = -2
	cs.CrossComplete = true

	cs.ResetForNewCross()
	if cs.TrumpTeamScore != 24 || cs.OpponentTeamScore != 24 || cs.CrossComplete {
		t.Fatal("reset did not restore the countdown")
	}
}

package domain

import "testing"

func newTestMatch() *Match {
	return NewMatch("m1", "1234", 3, 1700000000000)
}

func TestMatchLifecycle(t *testing.T) {
	m := newTestMatch()
	if m.Status != StatusWaiting {
		t.Fatalf("new match status = %s, want waiting", m.Status)
	}

	if err := m.StartDealing(2); err != nil {
		t.Fatalf("start dealing error: %v", err)
	}
	if m.Status != StatusDealing {
		t.Fatalf("status = %s, want dealing", m.Status)
	}
	if m.DealerPosition != 2 || m.CurrentBidder != 3 {
		t.Fatalf("dealer=%d bidder=%d, want 2 and 3", m.DealerPosition, m.CurrentBidder)
	}

	if err := m.StartBidding(); err != nil {
		t.Fatalf("start bidding error: %v", err)
	}

	if err := m.RecordBid(3, 6, Hearts); err != nil {
		t.Fatalf("record bid error: %v", err)
	}
	if m.HighestBidLength != 6 || m.HighestBidder != 3 || m.HighestBidSuit != Hearts {
		t.Fatalf("bid state = (%d,%d,%s)", m.HighestBidLength, m.HighestBidder, m.HighestBidSuit)
	}
	if m.CurrentBidder != 0 {
		t.Fatalf("current bidder = %d, want 0", m.CurrentBidder)
	}

	for _, passer := range []int{0, 1, 2} {
		_, complete, err := m.RecordPass(passer)
		if err != nil {
			t.Fatalf("pass error: %v", err)
		}
		if passer == 2 && !complete {
			t.Fatal("third pass after a bid should complete bidding")
		}
	}

	if err := m.CompleteBidding(); err != nil {
		t.Fatalf("complete bidding error: %v", err)
	}
	if m.Status != StatusPlaying {
		t.Fatalf("status = %s, want playing", m.Status)
	}
	if m.TrumpSuit != Hearts || m.TrumpDeclarer != 3 {
		t.Fatalf("trump = %s declarer = %d", m.TrumpSuit, m.TrumpDeclarer)
	}
	if m.CurrentLeader != NextPosition(m.DealerPosition) {
		t.Fatalf("leader = %d, want left of dealer", m.CurrentLeader)
	}

	if err := m.Complete(); err != nil {
		t.Fatalf("complete error: %v", err)
	}
	if m.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", m.Status)
	}
}

func TestAllPassRedeal(t *testing.T) {
	m := newTestMatch()
	if err := m.StartDealing(1); err != nil {
		t.Fatal(err)
	}
	if err := m.StartBidding(); err != nil {
		t.Fatal(err)
	}

	passer := m.CurrentBidder
	for i := 0; i < 4; i++ {
		allPassed, complete, err := m.RecordPass(passer)
		if err != nil {
			t.Fatalf("pass %d error: %v", i, err)
		}
		if complete {
			t.Fatal("bidding must not complete without a bid")
		}
		if i == 3 && !allPassed {
			t.Fatal("fourth consecutive pass should trigger a redeal")
		}
		passer = m.CurrentBidder
	}

	if err := m.ResetForRedeal(); err != nil {
		t.Fatalf("redeal error: %v", err)
	}
	if m.Status != StatusDealing {
		t.Fatalf("status = %s, want dealing", m.Status)
	}
	if m.DealerPosition != 1 {
		t.Fatalf("dealer changed on redeal: %d", m.DealerPosition)
	}
	if m.CurrentBidder != 2 {
		t.Fatalf("bidder after redeal = %d, want left of dealer", m.CurrentBidder)
	}
	if m.HighestBidLength != 0 || m.HighestBidder != NoPosition {
		t.Fatal("bidding fields not reset on redeal")
	}
}

func TestPassCounterResetsOnBid(t *testing.T) {
	m := newTestMatch()
	m.StartDealing(0)
	m.StartBidding()

	m.RecordPass(1)
	m.RecordPass(2)
	if err := m.RecordBid(3, 5, Spades); err != nil {
		t.Fatal(err)
	}
	_, complete, _ := m.RecordPass(0)
	if complete {
		t.Fatal("one pass after a bid must not complete bidding")
	}
	m.RecordPass(1)
	_, complete, _ = m.RecordPass(2)
	if !complete {
		t.Fatal("three passes after the bid should complete bidding")
	}
}

func TestIllegalTransitions(t *testing.T) {
	m := newTestMatch()
	if err := m.StartBidding(); err == nil {
		t.Fatal("bidding cannot start from waiting")
	}
	if err := m.CompleteBidding(); err == nil {
		t.Fatal("bidding cannot complete from waiting")
	}
	if err := m.Complete(); err == nil {
		t.Fatal("match cannot complete from waiting")
	}
	m.StartDealing(0)
	if err := m.StartDealing(1); err == nil {
		t.Fatal("dealing cannot restart while dealing")
	}
	m.StartBidding()
	if err := m.CompleteBidding(); err == nil {
		t.Fatal("bidding cannot complete without a bid")
	}
}

func TestCancel(t *testing.T) {
	m := newTestMatch()
	if err := m.Cancel(); err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if m.Status != StatusCancelled {
		t.Fatalf("status = %s, want cancelled", m.Status)
	}
	if err := m.Cancel(); err == nil {
		t.Fatal("cancelling a cancelled match should fail")
	}
}

func TestStartDealingFromCompleted(t *testing.T) {
	m := newTestMatch()
	m.StartDealing(0)
	m.StartBidding()
	m.RecordBid(1, 5, Hearts)
	m.RecordPass(2)
	m.RecordPass(3)
	m.RecordPass(0)
	m.CompleteBidding()
	m.Complete()

	// Next game within the rubber re-enters dealing.
	if err := m.StartDealing(3); err != nil {
		t.Fatalf("start dealing from completed error: %v", err)
	}
	if m.TrumpSuit != "" || m.HighestBidder != NoPosition {
		t.Fatal("game-state slots not cleared for the next game")
	}
}

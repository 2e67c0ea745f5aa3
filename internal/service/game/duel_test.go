package game_test

import (
	"errors"
	"testing"

	"teenpatti-service/internal/service/game"
	appErr "teenpatti-service/pkg/errors"
)

// secondRound plays one unseen 200 bet per seat so the room enters round 2.
func secondRound(t *testing.T, n int) *game.Room {
	t.Helper()
	r := dealtRoom(t, n)
	for i := 0; i < n; i++ {
		if _, err := r.PlaceBet(r.CurrentTurn, 200); err != nil {
			t.Fatalf("bet %d failed: %v", i, err)
		}
	}
	if !r.IsRoundComplete() {
		t.Fatalf("round should be complete")
	}
	if !r.AdvanceRound() || r.Round != 2 {
		t.Fatalf("expected round 2, got %d", r.Round)
	}
	return r
}

func TestCompareTooEarly(t *testing.T) {
	r := dealtRoom(t, 2)
	if _, err := r.Compare(1, "p0"); !errors.Is(err, appErr.ErrDuelTooEarly) {
		t.Fatalf("expected ErrDuelTooEarly, got %v", err)
	}
}

func TestCompareLoserFolds(t *testing.T) {
	r := secondRound(t, 3)
	seat := r.CurrentTurn
	challenger := r.Players[seat]
	opponent := r.Players[(seat+1)%3]
	challenger.Hand = cards(t, "7s", "7h", "7d")
	opponent.Hand = cards(t, "As", "Ks", "Qs")
	pot := r.Pot

	res, err := r.Compare(seat, opponent.ID)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if res.Cmp != 1 || res.LoserID() != opponent.ID {
		t.Fatalf("unexpected duel result: %+v", res)
	}
	if res.OutcomeFor(challenger.ID) != game.DuelWin || res.OutcomeFor(opponent.ID) != game.DuelLose {
		t.Fatalf("unexpected outcomes")
	}
	if opponent.Status != game.StatusFolded || challenger.Status != game.StatusActive {
		t.Fatalf("loser should fold, winner stays active")
	}
	if !challenger.Acted || r.CurrentTurn == seat {
		t.Fatalf("challenger should be marked acted and the turn should move")
	}
	if r.Pot != pot {
		t.Fatalf("a duel moves no chips")
	}
}

func TestCompareChallengerCanLose(t *testing.T) {
	r := secondRound(t, 2)
	seat := r.CurrentTurn
	challenger := r.Players[seat]
	opponent := r.Players[1-seat]
	challenger.Hand = cards(t, "2s", "5h", "9d")
	opponent.Hand = cards(t, "Js", "Jh", "4d")

	res, err := r.Compare(seat, opponent.ID)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if res.LoserID() != challenger.ID || challenger.Status != game.StatusFolded {
		t.Fatalf("challenger should have lost and folded")
	}
	if !r.IsHandFinished() {
		t.Fatalf("one contender left, hand should be finished")
	}
}

func TestCompareDrawFoldsNobody(t *testing.T) {
	r := secondRound(t, 2)
	seat := r.CurrentTurn
	r.Players[seat].Hand = cards(t, "As", "Kh", "9d")
	r.Players[1-seat].Hand = cards(t, "Ac", "Kd", "9h")

	res, err := r.Compare(seat, r.Players[1-seat].ID)
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if res.Cmp != 0 || res.LoserID() != "" || res.OutcomeFor(r.Players[seat].ID) != game.DuelDraw {
		t.Fatalf("expected a draw: %+v", res)
	}
	for _, p := range r.Players {
		if p.Status != game.StatusActive {
			t.Fatalf("nobody folds on a draw")
		}
	}
}

func TestCompareValidation(t *testing.T) {
	r := secondRound(t, 3)
	seat := r.CurrentTurn
	me := r.Players[seat]
	other := r.Players[(seat+1)%3]

	if _, err := r.Compare(seat, me.ID); !errors.Is(err, appErr.ErrInvalidOpponent) {
		t.Fatalf("expected ErrInvalidOpponent for self, got %v", err)
	}
	if _, err := r.Compare(seat, "ghost"); !errors.Is(err, appErr.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
	other.Status = game.StatusFolded
	if _, err := r.Compare(seat, other.ID); !errors.Is(err, appErr.ErrInvalidOpponent) {
		t.Fatalf("expected ErrInvalidOpponent for folded, got %v", err)
	}
	other.Status = game.StatusActive

	me.CurrentBet = 0
	if _, err := r.Compare(seat, other.ID); !errors.Is(err, appErr.ErrDuelStakeTooLow) {
		t.Fatalf("expected ErrDuelStakeTooLow, got %v", err)
	}
}

func TestDuelStake(t *testing.T) {
	if game.DuelStake(300, false) != 150 || game.DuelStake(300, true) != 300 {
		t.Fatalf("unexpected duel stakes")
	}
}

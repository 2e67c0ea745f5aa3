package game_test

import (
	"errors"
	"math/rand"
	"testing"

	"teenpatti-service/internal/service/game"
	appErr "teenpatti-service/pkg/errors"
)

func TestUnseenBetChargesHalfAndRaisesDeclared(t *testing.T) {
	r := dealtRoom(t, 3)
	if r.CurrentTurn != 1 {
		t.Fatalf("expected seat 1 to open, got %d", r.CurrentTurn)
	}

	entry, err := r.PlaceBet(1, 200)
	if err != nil {
		t.Fatalf("place bet failed: %v", err)
	}
	if entry.Declared != 200 || entry.Charged != 100 || entry.Viewed {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}
	p := r.Players[1]
	if p.Money != 800 || p.CurrentBet != 200 || !p.Acted {
		t.Fatalf("unexpected player after bet: %+v", p)
	}
	if r.Pot != 400 {
		t.Fatalf("expected pot 400, got %d", r.Pot)
	}
	if r.MinBet != 200 {
		t.Fatalf("expected minimum to ratchet to declared 200, got %d", r.MinBet)
	}
	if r.CurrentTurn != 2 {
		t.Fatalf("expected turn to pass to seat 2, got %d", r.CurrentTurn)
	}
	if len(r.Ledger) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(r.Ledger))
	}
}

func TestSeenBetPaysFullAndRespectsMinimum(t *testing.T) {
	r := dealtRoom(t, 3)
	if _, err := r.PlaceBet(1, 200); err != nil {
		t.Fatalf("place bet failed: %v", err)
	}
	if _, _, err := r.ViewCards(2); err != nil {
		t.Fatalf("view cards failed: %v", err)
	}

	if _, err := r.PlaceBet(2, 150); !errors.Is(err, appErr.ErrBetBelowMinimum) {
		t.Fatalf("expected ErrBetBelowMinimum, got %v", err)
	}
	entry, err := r.PlaceBet(2, 200)
	if err != nil {
		t.Fatalf("place bet failed: %v", err)
	}
	if entry.Charged != 200 || !entry.Viewed {
		t.Fatalf("seen player should pay face value: %+v", entry)
	}
	if r.Players[2].Money != 700 {
		t.Fatalf("expected 700 left, got %d", r.Players[2].Money)
	}
}

func TestBetValidationLeavesStateUntouched(t *testing.T) {
	r := dealtRoom(t, 3)
	pot := r.Pot

	if _, err := r.PlaceBet(0, 200); !errors.Is(err, appErr.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := r.PlaceBet(1, 0); !errors.Is(err, appErr.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := r.PlaceBet(1, 50); !errors.Is(err, appErr.ErrBetBelowMinimum) {
		t.Fatalf("expected ErrBetBelowMinimum, got %v", err)
	}
	r.Players[1].Money = 90
	if _, err := r.PlaceBet(1, 200); !errors.Is(err, appErr.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if _, err := r.PlaceBet(9, 200); !errors.Is(err, appErr.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}

	if r.Pot != pot || r.CurrentTurn != 1 || len(r.Ledger) != 0 || r.Players[1].Acted {
		t.Fatalf("rejected bets must not change the room")
	}
}

func TestFoldAdvancesTurn(t *testing.T) {
	r := dealtRoom(t, 3)
	if err := r.Fold(1); err != nil {
		t.Fatalf("fold failed: %v", err)
	}
	if r.Players[1].Status != game.StatusFolded {
		t.Fatalf("expected folded, got %s", r.Players[1].Status)
	}
	if r.CurrentTurn != 2 {
		t.Fatalf("expected seat 2, got %d", r.CurrentTurn)
	}

	r.CurrentTurn = 1
	if err := r.Fold(1); !errors.Is(err, appErr.ErrAlreadyFolded) {
		t.Fatalf("expected ErrAlreadyFolded, got %v", err)
	}
	if _, _, err := r.ViewCards(1); !errors.Is(err, appErr.ErrAlreadyFolded) {
		t.Fatalf("expected ErrAlreadyFolded on view, got %v", err)
	}
}

func TestAllInWagersWholeBalance(t *testing.T) {
	r := dealtRoom(t, 3)
	entry, err := r.AllIn(1)
	if err != nil {
		t.Fatalf("all-in failed: %v", err)
	}
	if entry.Declared != 900 || entry.Charged != 900 {
		t.Fatalf("all-in is never half price: %+v", entry)
	}
	p := r.Players[1]
	if p.Money != 0 || p.Status != game.StatusAllIn {
		t.Fatalf("unexpected player after all-in: %+v", p)
	}
	if r.MinBet != 900 {
		t.Fatalf("expected minimum 900, got %d", r.MinBet)
	}
	if got := game.NextActiveSeat(r, 0); got != 2 {
		t.Fatalf("all-in seat must be skipped, got %d", got)
	}
}

func TestViewCards(t *testing.T) {
	r := newRoom(t, 2)
	if _, _, err := r.ViewCards(0); !errors.Is(err, appErr.ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase before play, got %v", err)
	}

	r = dealtRoom(t, 2)
	hand, eval, err := r.ViewCards(0)
	if err != nil {
		t.Fatalf("view cards failed: %v", err)
	}
	if len(hand) != 3 || eval.Category == 0 {
		t.Fatalf("unexpected view result: %v %+v", hand, eval)
	}
	if !r.Players[0].Viewed {
		t.Fatalf("player should be marked as having viewed")
	}
	if _, _, err := r.ViewCards(0); !errors.Is(err, appErr.ErrAlreadyViewed) {
		t.Fatalf("expected ErrAlreadyViewed, got %v", err)
	}
}

func TestChargeFor(t *testing.T) {
	if game.ChargeFor(201, false) != 100 {
		t.Fatalf("unseen charge should floor to 100")
	}
	if game.ChargeFor(201, true) != 201 {
		t.Fatalf("seen charge should be face value")
	}
}

func TestPotEqualsAntesPlusCharges(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 50; trial++ {
		r := dealtRoom(t, 4)
		antes := r.Pot
		for step := 0; step < 30 && !r.IsHandFinished() && r.CurrentTurn != game.NoSeat; step++ {
			seat := r.CurrentTurn
			if rng.Intn(3) == 0 && !r.Players[seat].Viewed {
				if _, _, err := r.ViewCards(seat); err != nil {
					t.Fatalf("view failed: %v", err)
				}
			}
			var err error
			switch rng.Intn(6) {
			case 0:
				err = r.Fold(seat)
			case 1:
				_, err = r.AllIn(seat)
			default:
				_, err = r.PlaceBet(seat, r.MinBet+int64(rng.Intn(3))*50)
				if errors.Is(err, appErr.ErrInsufficientBalance) {
					err = r.Fold(seat)
				}
			}
			if err != nil {
				t.Fatalf("trial %d step %d: %v", trial, step, err)
			}
			if r.IsRoundComplete() {
				r.AdvanceRound()
			}
		}

		var charged int64
		for _, e := range r.Ledger {
			charged += e.Charged
		}
		if r.Pot != antes+charged {
			t.Fatalf("trial %d: pot %d != antes %d + charges %d", trial, r.Pot, antes, charged)
		}
	}
}

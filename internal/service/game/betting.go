package game

import (
	"time"

	appErr "teenpatti-service/pkg/errors"
)

// turnActor validates that seat may take a turn-bound action right now.
func (r *Room) turnActor(seat int) (*Player, error) {
	if r.Phase != PhasePlaying || !r.handActive {
		return nil, appErr.ErrInvalidPhase
	}
	p := r.seat(seat)
	if p == nil {
		return nil, appErr.ErrPlayerNotFound
	}
	if seat != r.CurrentTurn {
		return nil, appErr.ErrNotYourTurn
	}
	if !p.InHand() {
		return nil, appErr.ErrAlreadyFolded
	}
	return p, nil
}

// ChargeFor is what a declared wager actually costs: unseen players pay half.
func ChargeFor(declared int64, viewed bool) int64 {
	if viewed {
		return declared
	}
	return declared / 2
}

// PlaceBet applies a declared wager. The minimum ratchets on the declared
// amount, so an unseen player can raise the table while paying half.
func (r *Room) PlaceBet(seat int, declared int64) (LedgerEntry, error) {
	p, err := r.turnActor(seat)
	if err != nil {
		return LedgerEntry{}, err
	}
	if declared <= 0 {
		return LedgerEntry{}, appErr.ErrInvalidAmount
	}
	if declared < r.MinBet {
		return LedgerEntry{}, appErr.ErrBetBelowMinimum
	}
	charged := ChargeFor(declared, p.Viewed)
	if p.Money < charged {
		return LedgerEntry{}, appErr.ErrInsufficientBalance
	}

	p.Money -= charged
	p.CurrentBet += charged
	r.Pot += charged
	p.Acted = true
	if declared > r.MinBet {
		r.MinBet = declared
	}

	entry := LedgerEntry{
		PlayerID: p.ID,
		Action:   LedgerBet,
		Declared: declared,
		Charged:  charged,
		Viewed:   p.Viewed,
		At:       time.Now(),
	}
	r.Ledger = append(r.Ledger, entry)
	r.CurrentTurn = NextActiveSeat(r, seat)
	r.checkInvariants()
	return entry, nil
}

// AllIn wagers the whole balance at face value.
func (r *Room) AllIn(seat int) (LedgerEntry, error) {
	p, err := r.turnActor(seat)
	if err != nil {
		return LedgerEntry{}, err
	}
	amount := p.Money
	if amount <= 0 {
		return LedgerEntry{}, appErr.ErrInsufficientBalance
	}

	p.Money = 0
	p.CurrentBet += amount
	r.Pot += amount
	p.Status = StatusAllIn
	p.Acted = true
	if amount > r.MinBet {
		r.MinBet = amount
	}

	entry := LedgerEntry{
		PlayerID: p.ID,
		Action:   LedgerAllIn,
		Declared: amount,
		Charged:  amount,
		Viewed:   p.Viewed,
		At:       time.Now(),
	}
	r.Ledger = append(r.Ledger, entry)
	r.CurrentTurn = NextActiveSeat(r, seat)
	r.checkInvariants()
	return entry, nil
}

func (r *Room) Fold(seat int) error {
	p, err := r.turnActor(seat)
	if err != nil {
		return err
	}
	p.Status = StatusFolded
	p.Acted = true
	r.CurrentTurn = NextActiveSeat(r, seat)
	return nil
}

// ViewCards is not turn-bound; once seen, a player bets at full price.
func (r *Room) ViewCards(seat int) ([]Card, Evaluation, error) {
	if r.Phase != PhasePlaying || !r.handActive {
		return nil, Evaluation{}, appErr.ErrInvalidPhase
	}
	p := r.seat(seat)
	if p == nil {
		return nil, Evaluation{}, appErr.ErrPlayerNotFound
	}
	if !p.InHand() {
		return nil, Evaluation{}, appErr.ErrAlreadyFolded
	}
	if p.Viewed {
		return nil, Evaluation{}, appErr.ErrAlreadyViewed
	}
	hand, ok := p.handArray()
	if !ok {
		return nil, Evaluation{}, appErr.ErrInvalidPhase
	}
	p.Viewed = true
	return append([]Card(nil), p.Hand...), EvaluateHand(hand), nil
}

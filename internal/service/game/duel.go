package game

import (
	appErr "teenpatti-service/pkg/errors"
)

type DuelOutcome string

const (
	DuelWin  DuelOutcome = "win"
	DuelLose DuelOutcome = "lose"
	DuelDraw DuelOutcome = "draw"
)

type DuelResult struct {
	ChallengerID   string
	OpponentID     string
	ChallengerHand []Card
	OpponentHand   []Card
	ChallengerEval Evaluation
	OpponentEval   Evaluation
	// Cmp is CompareHands(challenger, opponent).
	Cmp int
}

// LoserID is empty on a draw.
func (d DuelResult) LoserID() string {
	switch {
	case d.Cmp > 0:
		return d.OpponentID
	case d.Cmp < 0:
		return d.ChallengerID
	default:
		return ""
	}
}

// OutcomeFor reports the duel from one participant's side.
func (d DuelResult) OutcomeFor(playerID string) DuelOutcome {
	switch d.LoserID() {
	case "":
		return DuelDraw
	case playerID:
		return DuelLose
	default:
		return DuelWin
	}
}

// DuelStake is the contribution a challenger needs before calling a duel.
func DuelStake(minBet int64, viewed bool) int64 {
	return ChargeFor(minBet, viewed)
}

// Compare forces a showdown between the player on turn and one opponent.
// The loser folds; chips stay in the pot until the hand resolves.
func (r *Room) Compare(seat int, opponentID string) (DuelResult, error) {
	p, err := r.turnActor(seat)
	if err != nil {
		return DuelResult{}, err
	}
	if r.Round < 2 {
		return DuelResult{}, appErr.ErrDuelTooEarly
	}
	opp, _ := r.PlayerByID(opponentID)
	if opp == nil {
		return DuelResult{}, appErr.ErrPlayerNotFound
	}
	if opp.ID == p.ID || !opp.InHand() {
		return DuelResult{}, appErr.ErrInvalidOpponent
	}
	if p.CurrentBet < DuelStake(r.MinBet, p.Viewed) {
		return DuelResult{}, appErr.ErrDuelStakeTooLow
	}
	mine, ok := p.handArray()
	theirs, ok2 := opp.handArray()
	if !ok || !ok2 {
		return DuelResult{}, appErr.ErrInvalidOpponent
	}

	res := DuelResult{
		ChallengerID:   p.ID,
		OpponentID:     opp.ID,
		ChallengerHand: append([]Card(nil), p.Hand...),
		OpponentHand:   append([]Card(nil), opp.Hand...),
		ChallengerEval: EvaluateHand(mine),
		OpponentEval:   EvaluateHand(theirs),
	}
	res.Cmp = CompareHands(res.ChallengerEval, res.OpponentEval)
	switch res.Cmp {
	case 1:
		opp.Status = StatusFolded
	case -1:
		p.Status = StatusFolded
	}

	p.Acted = true
	r.CurrentTurn = NextActiveSeat(r, seat)
	return res, nil
}

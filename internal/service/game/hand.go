package game

import (
	"math/rand"

	"teenpatti-service/pkg/logger"

	"go.uber.org/zap"
)

// StartNewHand collects antes, deals three cards to every solvent player and
// picks the opening seat. It returns the ante actually charged per player.
func (r *Room) StartNewHand(rng *rand.Rand) map[string]int64 {
	if r.HandsPlayed > 0 && len(r.Players) > 0 {
		r.Dealer = (r.Dealer + 1) % len(r.Players)
	}
	r.Pot = 0
	r.MinBet = r.Rules.Ante
	r.Round = 1
	r.Ledger = nil
	r.deck = NewShuffledDeck(rng)

	antes := make(map[string]int64, len(r.Players))
	for _, p := range r.Players {
		p.Hand = nil
		p.Viewed = false
		p.Acted = false
		p.CurrentBet = 0
		if p.Money <= 0 {
			p.Status = StatusEliminated
			continue
		}
		ante := r.Rules.Ante
		if p.Money < ante {
			ante = p.Money
		}
		p.Money -= ante
		p.CurrentBet = ante
		r.Pot += ante
		antes[p.ID] = ante

		p.Hand = make([]Card, 0, 3)
		for i := 0; i < 3; i++ {
			c, ok := r.deck.Pop()
			if !ok {
				logger.Log.DPanic("deck exhausted while dealing",
					zap.String("room", r.Code),
					zap.String("playerID", p.ID),
					zap.Int("seats", len(r.Players)),
				)
				break
			}
			p.Hand = append(p.Hand, c)
		}
		p.Status = StatusActive
	}

	r.handActive = true
	r.CurrentTurn = FirstSeatAfterDealer(r)
	r.checkInvariants()
	return antes
}

// IsRoundComplete is true once everyone who can still act has acted.
func (r *Room) IsRoundComplete() bool {
	for _, p := range r.Players {
		if p.CanAct() && !p.Acted {
			return false
		}
	}
	return true
}

// AdvanceRound opens the next betting round. It refuses when one or no
// contender is left; closing the hand is IsHandFinished's job.
func (r *Room) AdvanceRound() bool {
	if r.contenders() <= 1 {
		return false
	}
	for _, p := range r.Players {
		p.Acted = false
	}
	r.Round++
	r.CurrentTurn = FirstSeatAfterDealer(r)
	return true
}

func (r *Room) IsHandFinished() bool {
	if r.contenders() <= 1 {
		return true
	}
	for _, p := range r.Players {
		if p.InHand() && p.Status != StatusAllIn {
			return false
		}
	}
	return true
}

type RevealedHand struct {
	PlayerID   string     `json:"playerId"`
	Name       string     `json:"name"`
	Cards      []Card     `json:"cards"`
	Evaluation Evaluation `json:"evaluation"`
}

type HandResult struct {
	HandNo  int      `json:"handNo"`
	Pot     int64    `json:"pot"`
	Winners []string `json:"winners"`
	Share   int64    `json:"share"`
	// Remainder is what integer splitting leaves behind; it is not paid out.
	Remainder int64          `json:"remainder"`
	Showdown  []RevealedHand `json:"showdown,omitempty"`
	Ledger    []LedgerEntry  `json:"ledger"`
}

// ResolveHand pays the pot. Only players that are in the hand AND still hold
// chips are eligible, so a player who went all-in is not paid here.
func (r *Room) ResolveHand() HandResult {
	res := HandResult{
		HandNo: r.HandsPlayed + 1,
		Pot:    r.Pot,
		Ledger: append([]LedgerEntry(nil), r.Ledger...),
	}
	r.handActive = false
	r.CurrentTurn = NoSeat

	eligible := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.InHand() && p.Money > 0 {
			eligible = append(eligible, p)
		}
	}

	switch len(eligible) {
	case 0:
		res.Remainder = r.Pot
		return res
	case 1:
		eligible[0].Money += r.Pot
		res.Winners = []string{eligible[0].ID}
		res.Share = r.Pot
		return res
	}

	var best []*Player
	var bestEval Evaluation
	for _, p := range eligible {
		hand, ok := p.handArray()
		if !ok {
			continue
		}
		eval := EvaluateHand(hand)
		res.Showdown = append(res.Showdown, RevealedHand{
			PlayerID:   p.ID,
			Name:       p.Name,
			Cards:      append([]Card(nil), p.Hand...),
			Evaluation: eval,
		})
		switch {
		case len(best) == 0 || CompareHands(eval, bestEval) > 0:
			best = []*Player{p}
			bestEval = eval
		case CompareHands(eval, bestEval) == 0:
			best = append(best, p)
		}
	}
	if len(best) == 0 {
		res.Remainder = r.Pot
		return res
	}

	share := r.Pot / int64(len(best))
	for _, p := range best {
		p.Money += share
		res.Winners = append(res.Winners, p.ID)
	}
	res.Share = share
	res.Remainder = r.Pot - share*int64(len(best))
	r.checkInvariants()
	return res
}

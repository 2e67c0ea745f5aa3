package game

import (
	"sort"

	appErr "teenpatti-service/pkg/errors"
)

type Standing struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Money    int64  `json:"money"`
}

type TournamentOutcome struct {
	Ended      bool       `json:"ended"`
	ChampionID string     `json:"championId,omitempty"`
	Ranking    []Standing `json:"ranking,omitempty"`
}

// StartTournament moves a waiting room into play. Hands are dealt by the caller.
func (r *Room) StartTournament(requesterID string) error {
	if requesterID != r.HostID {
		return appErr.ErrNotHost
	}
	if r.Phase != PhaseWaiting {
		return appErr.ErrInvalidPhase
	}
	if len(r.Players) < r.Rules.MinPlayers || len(r.Players) < 2 {
		return appErr.ErrNotEnoughPlayers
	}
	r.Phase = PhasePlaying
	r.HandsPlayed = 0
	r.StartingPlayerCount = len(r.Players)
	r.Roster = make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		r.Roster = append(r.Roster, p.ID)
	}
	return nil
}

// HandCap is the number of hands after which the tournament stops regardless
// of balances.
func (r *Room) HandCap() int {
	if r.Rules.MaxHands > 0 {
		return r.Rules.MaxHands
	}
	return r.StartingPlayerCount
}

// ConcludeHand books a resolved hand against the tournament and decides
// whether play continues.
func (r *Room) ConcludeHand() TournamentOutcome {
	r.HandsPlayed++

	roster := r.Roster[:0]
	for _, id := range r.Roster {
		if p, _ := r.PlayerByID(id); p != nil && p.Money > 0 {
			roster = append(roster, id)
		}
	}
	r.Roster = roster

	if len(r.Roster) > 1 && r.HandsPlayed < r.HandCap() {
		return TournamentOutcome{}
	}

	r.Phase = PhaseEnded
	r.CurrentTurn = NoSeat
	out := TournamentOutcome{Ended: true, Ranking: r.Ranking()}
	if len(r.Roster) == 1 {
		out.ChampionID = r.Roster[0]
	}
	return out
}

// TournamentOver re-checks termination without mutating anything.
func (r *Room) TournamentOver() bool {
	return r.Phase == PhaseEnded || len(r.Roster) <= 1 || r.HandsPlayed >= r.HandCap()
}

// Ranking orders every seated player by money, seat order breaking ties.
func (r *Room) Ranking() []Standing {
	players := append([]*Player(nil), r.Players...)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Money > players[j].Money
	})
	out := make([]Standing, 0, len(players))
	for i, p := range players {
		out = append(out, Standing{Rank: i + 1, PlayerID: p.ID, Name: p.Name, Money: p.Money})
	}
	return out
}

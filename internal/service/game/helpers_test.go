package game_test

import (
	"fmt"
	"math/rand"
	"testing"

	"teenpatti-service/internal/service/game"
)

var suitByLetter = map[byte]string{
	's': "spades",
	'h': "hearts",
	'd': "diamonds",
	'c': "clubs",
}

// cards parses short names like "As", "10h", "Qd".
func cards(t *testing.T, names ...string) []game.Card {
	t.Helper()
	out := make([]game.Card, 0, len(names))
	for _, name := range names {
		suit, ok := suitByLetter[name[len(name)-1]]
		if !ok {
			t.Fatalf("bad card %q", name)
		}
		c, err := game.NewCard(name[:len(name)-1], suit)
		if err != nil {
			t.Fatalf("bad card %q: %v", name, err)
		}
		out = append(out, c)
	}
	return out
}

func hand3(t *testing.T, names ...string) [3]game.Card {
	t.Helper()
	cs := cards(t, names...)
	if len(cs) != 3 {
		t.Fatalf("need 3 cards, got %d", len(cs))
	}
	return [3]game.Card{cs[0], cs[1], cs[2]}
}

func testRules() game.Rules {
	return game.Rules{Ante: 100, StartingBalance: 1000, MinPlayers: 2, MaxPlayers: 6}
}

// newRoom seats n players p0..pn-1; p0 hosts.
func newRoom(t *testing.T, n int) *game.Room {
	t.Helper()
	r, err := game.NewRoom("ROOM01", "p0", "Player0", testRules())
	if err != nil {
		t.Fatalf("new room failed: %v", err)
	}
	for i := 1; i < n; i++ {
		if _, err := r.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i)); err != nil {
			t.Fatalf("add player %d failed: %v", i, err)
		}
	}
	return r
}

// dealtRoom starts a tournament and deals its first hand.
func dealtRoom(t *testing.T, n int) *game.Room {
	t.Helper()
	r := newRoom(t, n)
	if err := r.StartTournament("p0"); err != nil {
		t.Fatalf("start tournament failed: %v", err)
	}
	r.StartNewHand(rand.New(rand.NewSource(1)))
	return r
}

package game

import (
	"fmt"
	"math/rand"
)

// Card is immutable once dealt; identity is (Rank, Suit).
type Card struct {
	Rank  string `json:"rank"`
	Suit  string `json:"suit"`
	Glyph string `json:"glyph"`
	Value int    `json:"value"`
}

func (c Card) String() string {
	return c.Rank + c.Glyph
}

var rankTable = []struct {
	Symbol string
	Value  int
}{
	{"2", 2}, {"3", 3}, {"4", 4}, {"5", 5}, {"6", 6}, {"7", 7}, {"8", 8},
	{"9", 9}, {"10", 10}, {"J", 11}, {"Q", 12}, {"K", 13}, {"A", 14},
}

var suitTable = []struct {
	Name  string
	Glyph string
}{
	{"spades", "♠"}, {"hearts", "♥"}, {"diamonds", "♦"}, {"clubs", "♣"},
}

// NewCard looks up a card by rank symbol and suit name.
func NewCard(rank, suit string) (Card, error) {
	value := 0
	for _, r := range rankTable {
		if r.Symbol == rank {
			value = r.Value
			break
		}
	}
	if value == 0 {
		return Card{}, fmt.Errorf("unknown rank %q", rank)
	}
	for _, s := range suitTable {
		if s.Name == suit {
			return Card{Rank: rank, Suit: suit, Glyph: s.Glyph, Value: value}, nil
		}
	}
	return Card{}, fmt.Errorf("unknown suit %q", suit)
}

// BuildDeck returns the 52 cards in rank-major order.
func BuildDeck() []Card {
	deck := make([]Card, 0, len(rankTable)*len(suitTable))
	for _, r := range rankTable {
		for _, s := range suitTable {
			deck = append(deck, Card{Rank: r.Symbol, Suit: s.Name, Glyph: s.Glyph, Value: r.Value})
		}
	}
	return deck
}

// Shuffle permutes deck in place (Fisher-Yates) and returns it.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// Deck is consumed from the end and discarded when the hand is over.
type Deck struct {
	cards []Card
}

func NewShuffledDeck(rng *rand.Rand) *Deck {
	return &Deck{cards: Shuffle(BuildDeck(), rng)}
}

func (d *Deck) Len() int {
	return len(d.cards)
}

func (d *Deck) Pop() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, true
}

package game

import (
	"fmt"
	"sort"
)

// HandCategory ordering is house-specific: trips beat a straight flush.
type HandCategory int

const (
	CategoryHighCard HandCategory = iota + 1
	CategoryPair
	CategoryStraight
	CategoryFlush
	CategoryStraightFlush
	CategoryThreeOfAKind
)

func (c HandCategory) String() string {
	switch c {
	case CategoryHighCard:
		return "high_card"
	case CategoryPair:
		return "pair"
	case CategoryStraight:
		return "straight"
	case CategoryFlush:
		return "flush"
	case CategoryStraightFlush:
		return "straight_flush"
	case CategoryThreeOfAKind:
		return "three_of_a_kind"
	default:
		return "unknown"
	}
}

func (c HandCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *HandCategory) UnmarshalText(text []byte) error {
	for cat := CategoryHighCard; cat <= CategoryThreeOfAKind; cat++ {
		if cat.String() == string(text) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown hand category %q", text)
}

type Evaluation struct {
	Category    HandCategory `json:"category"`
	Value       int          `json:"value"`
	Description string       `json:"description"`
}

// EvaluateHand scores a three-card hand.
// Value tiers inside a category:
//
//	three of a kind -> rank*100
//	straight flush  -> high*1000
//	flush, high     -> v0*10000 + v1*100 + v2
//	straight        -> high*100
//	pair            -> pair*100 + kicker
func EvaluateHand(cards [3]Card) Evaluation {
	v := []int{cards[0].Value, cards[1].Value, cards[2].Value}
	sort.Sort(sort.Reverse(sort.IntSlice(v)))

	sameSuit := cards[0].Suit == cards[1].Suit && cards[1].Suit == cards[2].Suit
	straight, high := straightHigh(v)

	switch {
	case v[0] == v[1] && v[1] == v[2]:
		return Evaluation{
			Category:    CategoryThreeOfAKind,
			Value:       v[0] * 100,
			Description: fmt.Sprintf("Three of a kind, %ss", rankSymbol(v[0])),
		}
	case sameSuit && straight:
		return Evaluation{
			Category:    CategoryStraightFlush,
			Value:       high * 1000,
			Description: fmt.Sprintf("Straight flush, %s high", rankSymbol(high)),
		}
	case sameSuit:
		return Evaluation{
			Category:    CategoryFlush,
			Value:       v[0]*10000 + v[1]*100 + v[2],
			Description: fmt.Sprintf("Flush, %s high", rankSymbol(v[0])),
		}
	case straight:
		return Evaluation{
			Category:    CategoryStraight,
			Value:       high * 100,
			Description: fmt.Sprintf("Straight, %s high", rankSymbol(high)),
		}
	case v[0] == v[1]:
		return pairEvaluation(v[0], v[2])
	case v[1] == v[2]:
		return pairEvaluation(v[1], v[0])
	default:
		return Evaluation{
			Category:    CategoryHighCard,
			Value:       v[0]*10000 + v[1]*100 + v[2],
			Description: fmt.Sprintf("High card %s", rankSymbol(v[0])),
		}
	}
}

func pairEvaluation(pair, kicker int) Evaluation {
	return Evaluation{
		Category:    CategoryPair,
		Value:       pair*100 + kicker,
		Description: fmt.Sprintf("Pair of %ss", rankSymbol(pair)),
	}
}

// straightHigh expects values sorted descending. A-2-3 is the lowest straight (3 high).
func straightHigh(v []int) (bool, int) {
	if v[0] == 14 && v[1] == 3 && v[2] == 2 {
		return true, 3
	}
	if v[0]-v[1] == 1 && v[1]-v[2] == 1 {
		return true, v[0]
	}
	return false, 0
}

func rankSymbol(value int) string {
	for _, r := range rankTable {
		if r.Value == value {
			return r.Symbol
		}
	}
	return "?"
}

// CompareHands returns 1 if a wins, -1 if b wins and 0 on a draw.
func CompareHands(a, b Evaluation) int {
	switch {
	case a.Category > b.Category:
		return 1
	case a.Category < b.Category:
		return -1
	case a.Value > b.Value:
		return 1
	case a.Value < b.Value:
		return -1
	default:
		return 0
	}
}

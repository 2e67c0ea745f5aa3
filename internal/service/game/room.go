package game

import (
	"strings"
	"time"
	"unicode/utf8"

	appErr "teenpatti-service/pkg/errors"
	"teenpatti-service/pkg/logger"

	"go.uber.org/zap"
)

type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

// PlayerStatus is the per-hand participation state.
type PlayerStatus string

const (
	StatusActive     PlayerStatus = "active"
	StatusFolded     PlayerStatus = "folded"
	StatusAllIn      PlayerStatus = "all_in"
	StatusEliminated PlayerStatus = "eliminated"
)

const maxNameLength = 20

type Player struct {
	ID         string
	Name       string
	Money      int64
	Hand       []Card
	Viewed     bool
	Acted      bool
	Status     PlayerStatus
	CurrentBet int64
	Position   int
	Connected  bool
}

// InHand reports whether the player still holds a live claim on the pot.
func (p *Player) InHand() bool {
	return p.Status != StatusFolded && p.Status != StatusEliminated
}

// CanAct reports whether the player may still take voluntary actions this hand.
func (p *Player) CanAct() bool {
	return p.Status == StatusActive && p.Money > 0
}

func (p *Player) handArray() ([3]Card, bool) {
	var out [3]Card
	if len(p.Hand) != 3 {
		return out, false
	}
	copy(out[:], p.Hand)
	return out, true
}

type LedgerAction string

const (
	LedgerBet   LedgerAction = "bet"
	LedgerAllIn LedgerAction = "all_in"
)

// LedgerEntry is append-only; declared and charged differ for unseen bets.
type LedgerEntry struct {
	PlayerID string       `json:"playerId"`
	Action   LedgerAction `json:"action"`
	Declared int64        `json:"declared"`
	Charged  int64        `json:"charged"`
	Viewed   bool         `json:"viewed"`
	At       time.Time    `json:"at"`
}

// MaxSeats is how many three-card hands one deck can deal.
const MaxSeats = 52 / 3

// Rules are the fixed table parameters of a room.
type Rules struct {
	Ante            int64
	StartingBalance int64
	MinPlayers      int
	MaxPlayers      int
	// MaxHands caps the tournament; 0 means the starting player count.
	MaxHands int
}

// Room is the aggregate state of one game. It is not safe for concurrent use;
// RoomRuntime owns the lock.
type Room struct {
	Code    string
	HostID  string
	Rules   Rules
	Players []*Player

	Phase       Phase
	Round       int
	Dealer      int
	Pot         int64
	MinBet      int64
	Ledger      []LedgerEntry
	CurrentTurn int

	HandsPlayed         int
	StartingPlayerCount int
	Roster              []string

	handActive bool
	deck       *Deck
}

func NewRoom(code, hostID, hostName string, rules Rules) (*Room, error) {
	if rules.MaxPlayers <= 0 || rules.MaxPlayers > MaxSeats {
		rules.MaxPlayers = MaxSeats
	}
	r := &Room{
		Code:        code,
		HostID:      hostID,
		Rules:       rules,
		Phase:       PhaseWaiting,
		Round:       1,
		CurrentTurn: NoSeat,
		MinBet:      rules.Ante,
	}
	if _, err := r.AddPlayer(hostID, hostName); err != nil {
		return nil, err
	}
	return r, nil
}

// NormalizeName trims a display name and validates its length.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n == 0 || n > maxNameLength {
		return "", appErr.ErrInvalidName
	}
	return name, nil
}

// AddPlayer seats a new player at the next position.
func (r *Room) AddPlayer(id, name string) (*Player, error) {
	if r.Phase != PhaseWaiting {
		return nil, appErr.ErrInvalidPhase
	}
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if len(r.Players) >= r.Rules.MaxPlayers {
		return nil, appErr.ErrRoomFull
	}
	for _, p := range r.Players {
		if p.ID == id {
			return nil, appErr.ErrAlreadyInRoom
		}
		if strings.EqualFold(p.Name, name) {
			return nil, appErr.ErrDuplicateName
		}
	}
	p := &Player{
		ID:        id,
		Name:      name,
		Money:     r.Rules.StartingBalance,
		Status:    StatusActive,
		Position:  len(r.Players),
		Connected: true,
	}
	r.Players = append(r.Players, p)
	return p, nil
}

// removeWaitingPlayer frees a seat before play starts; positions stay contiguous.
func (r *Room) removeWaitingPlayer(seat int) {
	if r.Phase != PhaseWaiting || r.seat(seat) == nil {
		return
	}
	r.Players = append(r.Players[:seat], r.Players[seat+1:]...)
	for i, p := range r.Players {
		p.Position = i
	}
}

func (r *Room) anyConnected() bool {
	for _, p := range r.Players {
		if p.Connected {
			return true
		}
	}
	return false
}

// HandInProgress is false between a resolved hand and the next deal.
func (r *Room) HandInProgress() bool {
	return r.handActive
}

func (r *Room) PlayerByID(id string) (*Player, int) {
	for i, p := range r.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, NoSeat
}

func (r *Room) seat(idx int) *Player {
	if idx < 0 || idx >= len(r.Players) {
		return nil
	}
	return r.Players[idx]
}

// contenders counts players still in the hand with chips behind.
func (r *Room) contenders() int {
	n := 0
	for _, p := range r.Players {
		if p.InHand() && p.Money > 0 {
			n++
		}
	}
	return n
}

// checkInvariants reports states that input validation should make unreachable.
func (r *Room) checkInvariants() {
	if len(r.Players) > 0 && (r.Dealer < 0 || r.Dealer >= len(r.Players)) {
		logger.Log.DPanic("dealer index out of range",
			zap.String("room", r.Code),
			zap.Int("dealer", r.Dealer),
			zap.Int("seats", len(r.Players)),
		)
	}
	if r.Pot < 0 {
		logger.Log.DPanic("negative pot", zap.String("room", r.Code), zap.Int64("pot", r.Pot))
	}
	for _, p := range r.Players {
		if p.Money < 0 {
			logger.Log.DPanic("negative balance",
				zap.String("room", r.Code),
				zap.String("playerID", p.ID),
				zap.Int64("money", p.Money),
			)
		}
	}
}

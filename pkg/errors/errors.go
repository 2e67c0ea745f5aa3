package errors

import "errors"

// Room & membership
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrRoomFull         = errors.New("room is full")
	ErrDuplicateName    = errors.New("name already taken in this room")
	ErrInvalidName      = errors.New("invalid player name")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrAlreadyInRoom    = errors.New("session already in a room")
	ErrInvalidPhase     = errors.New("action not allowed in current phase")
)

// Betting & duels
var (
	ErrNotYourTurn         = errors.New("not your turn")
	ErrAlreadyFolded       = errors.New("player already folded")
	ErrAlreadyViewed       = errors.New("cards already viewed")
	ErrBetBelowMinimum     = errors.New("bet below minimum")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuelTooEarly        = errors.New("compare is only allowed from round 2")
	ErrDuelStakeTooLow     = errors.New("bet more before comparing")
	ErrInvalidOpponent     = errors.New("invalid opponent")
	ErrUnsupportedAction   = errors.New("unsupported action")
)

// Records
var (
	ErrTournamentNotFound = errors.New("tournament not found")
)

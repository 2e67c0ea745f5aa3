package game

// Event types pushed to subscribers.
const (
	EventRoomCreated        = "room-created"
	EventRoomJoined         = "room-joined"
	EventRoomUpdated        = "room-updated"
	EventGameStarted        = "game-started"
	EventCardsRevealed      = "cards-revealed"
	EventPlayerAction       = "player-action"
	EventCompareResult      = "compare-result"
	EventHandEnded          = "hand-ended"
	EventNewHandStarted     = "new-hand-started"
	EventTournamentEnded    = "tournament-ended"
	EventPlayerDisconnected = "player-disconnected"
	EventPlayerReconnected  = "player-reconnected"
	EventRoomClosed         = "room-closed"
	EventError              = "error"
	EventPong               = "pong"
)

// Intents accepted by RoomRuntime.HandleAction.
const (
	ActionStartGame    = "start-game"
	ActionViewCards    = "view-cards"
	ActionPlaceBet     = "place-bet"
	ActionFold         = "fold"
	ActionAllIn        = "all-in"
	ActionCompareCards = "compare-cards"
	ActionRejoin       = "rejoin"
	ActionPing         = "ping"
)

type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

type PlayerState struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Money      int64        `json:"money"`
	Status     PlayerStatus `json:"status"`
	Viewed     bool         `json:"hasViewedCards"`
	Acted      bool         `json:"actedThisRound"`
	CurrentBet int64        `json:"currentBet"`
	Position   int          `json:"position"`
	Connected  bool         `json:"connected"`
	IsHost     bool         `json:"isHost"`
	CardCount  int          `json:"cardCount"`
}

// RoomState is a per-recipient snapshot: only the recipient's own cards, and
// only after they have looked at them.
type RoomState struct {
	Code                string        `json:"code"`
	HostID              string        `json:"hostId"`
	Phase               Phase         `json:"phase"`
	Round               int           `json:"round"`
	Dealer              int           `json:"dealer"`
	Pot                 int64         `json:"pot"`
	MinBet              int64         `json:"minBet"`
	CurrentTurn         int           `json:"currentTurn"`
	CurrentTurnID       string        `json:"currentTurnId,omitempty"`
	HandInProgress      bool          `json:"handInProgress"`
	HandsPlayed         int           `json:"handsPlayed"`
	HandCap             int           `json:"handCap"`
	StartingPlayerCount int           `json:"startingPlayerCount"`
	Roster              []string      `json:"roster"`
	Players             []PlayerState `json:"players"`
	Ledger              []LedgerEntry `json:"ledger"`
	MyCards             []Card        `json:"myCards"`
	MyEvaluation        *Evaluation   `json:"myEvaluation,omitempty"`
	AllowedActions      []string      `json:"allowedActions"`
}

type RoomCreatedPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token,omitempty"`
}

type RoomJoinedPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token,omitempty"`
}

type PongPayload struct {
	Message string `json:"message"`
}

type CardsRevealedPayload struct {
	Cards      []Card     `json:"cards"`
	Evaluation Evaluation `json:"evaluation"`
}

type PlayerActionPayload struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	Action      string `json:"action"`
	Declared    int64  `json:"declared,omitempty"`
	Charged     int64  `json:"charged,omitempty"`
	Viewed      bool   `json:"viewed"`
	OpponentID  string `json:"opponentId,omitempty"`
	LoserID     string `json:"loserId,omitempty"`
	Involuntary bool   `json:"involuntary,omitempty"`
}

type CompareResultPayload struct {
	OpponentID         string      `json:"opponentId"`
	OpponentName       string      `json:"opponentName"`
	MyCards            []Card      `json:"myCards"`
	OpponentCards      []Card      `json:"opponentCards"`
	MyEvaluation       Evaluation  `json:"myEvaluation"`
	OpponentEvaluation Evaluation  `json:"opponentEvaluation"`
	Outcome            DuelOutcome `json:"outcome"`
}

type NewHandPayload struct {
	HandNo int              `json:"handNo"`
	Dealer int              `json:"dealer"`
	Antes  map[string]int64 `json:"antes"`
	Pot    int64            `json:"pot"`
}

type TournamentEndedPayload struct {
	TournamentOutcome
	ChampionName string `json:"championName,omitempty"`
	HandsPlayed  int    `json:"handsPlayed"`
}

type PlayerPresencePayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type RoomClosedPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func exportState(r *Room, viewerID string) RoomState {
	state := RoomState{
		Code:                r.Code,
		HostID:              r.HostID,
		Phase:               r.Phase,
		Round:               r.Round,
		Dealer:              r.Dealer,
		Pot:                 r.Pot,
		MinBet:              r.MinBet,
		CurrentTurn:         r.CurrentTurn,
		HandInProgress:      r.handActive,
		HandsPlayed:         r.HandsPlayed,
		HandCap:             r.HandCap(),
		StartingPlayerCount: r.StartingPlayerCount,
		Roster:              append([]string{}, r.Roster...),
		Players:             make([]PlayerState, 0, len(r.Players)),
		Ledger:              append([]LedgerEntry{}, r.Ledger...),
		MyCards:             []Card{},
		AllowedActions:      allowedActions(r, viewerID),
	}
	if p := r.seat(r.CurrentTurn); p != nil {
		state.CurrentTurnID = p.ID
	}
	for _, p := range r.Players {
		state.Players = append(state.Players, PlayerState{
			ID:         p.ID,
			Name:       p.Name,
			Money:      p.Money,
			Status:     p.Status,
			Viewed:     p.Viewed,
			Acted:      p.Acted,
			CurrentBet: p.CurrentBet,
			Position:   p.Position,
			Connected:  p.Connected,
			IsHost:     p.ID == r.HostID,
			CardCount:  len(p.Hand),
		})
		if p.ID == viewerID && p.Viewed {
			if hand, ok := p.handArray(); ok {
				eval := EvaluateHand(hand)
				state.MyCards = append(state.MyCards, p.Hand...)
				state.MyEvaluation = &eval
			}
		}
	}
	return state
}

func allowedActions(r *Room, viewerID string) []string {
	p, seat := r.PlayerByID(viewerID)
	if p == nil {
		return nil
	}
	switch r.Phase {
	case PhaseWaiting:
		if p.ID == r.HostID && len(r.Players) >= r.Rules.MinPlayers && len(r.Players) >= 2 {
			return []string{ActionStartGame}
		}
		return nil
	case PhasePlaying:
		if !r.handActive || !p.InHand() {
			return nil
		}
		out := make([]string, 0, 5)
		if !p.Viewed {
			out = append(out, ActionViewCards)
		}
		if r.CurrentTurn == seat {
			out = append(out, ActionPlaceBet, ActionFold, ActionAllIn)
			if r.Round >= 2 && p.CurrentBet >= DuelStake(r.MinBet, p.Viewed) {
				out = append(out, ActionCompareCards)
			}
		}
		return out
	default:
		return nil
	}
}

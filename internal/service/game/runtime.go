package game

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	appErr "teenpatti-service/pkg/errors"
	"teenpatti-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const subscriberBuffer = 64

type runtimeHooks struct {
	onHandResolved  func(HandRecord)
	onTournamentEnd func(TournamentRecord)
}

// RoomRuntime serializes every intent, disconnect and timer callback for one
// room behind a single mutex.
type RoomRuntime struct {
	room          *Room
	rng           *rand.Rand
	nextHandDelay time.Duration

	tournamentKey string
	startedAt     time.Time

	seq         int64
	subscribers map[string]chan OutgoingMessage
	timer       *time.Timer
	timerGen    int64
	closed      bool

	mu sync.Mutex

	hooks runtimeHooks
}

func newRoomRuntime(room *Room, rng *rand.Rand, nextHandDelay time.Duration, hooks runtimeHooks) *RoomRuntime {
	return &RoomRuntime{
		room:          room,
		rng:           rng,
		nextHandDelay: nextHandDelay,
		subscribers:   make(map[string]chan OutgoingMessage),
		hooks:         hooks,
	}
}

func (rt *RoomRuntime) Code() string {
	return rt.room.Code
}

// Subscribe registers the player's outbound channel, replacing any previous one,
// and pushes the current state.
func (rt *RoomRuntime) Subscribe(playerID string) <-chan OutgoingMessage {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.subscribeLocked(playerID)
}

func (rt *RoomRuntime) subscribeLocked(playerID string) chan OutgoingMessage {
	if old, ok := rt.subscribers[playerID]; ok {
		close(old)
	}
	ch := make(chan OutgoingMessage, subscriberBuffer)
	if rt.closed {
		close(ch)
		return ch
	}
	rt.subscribers[playerID] = ch
	return ch
}

func (rt *RoomRuntime) Unsubscribe(playerID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.unsubscribeLocked(playerID)
}

func (rt *RoomRuntime) unsubscribeLocked(playerID string) {
	if ch, ok := rt.subscribers[playerID]; ok {
		delete(rt.subscribers, playerID)
		close(ch)
	}
}

// Ended reports whether the tournament in this room is over.
func (rt *RoomRuntime) Ended() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.room.Phase == PhaseEnded
}

// Snapshot returns the room as seen by playerID.
func (rt *RoomRuntime) Snapshot(playerID string) RoomState {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return exportState(rt.room, playerID)
}

func (rt *RoomRuntime) announceCreated(playerID, token string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.pushMessageLocked(playerID, EventRoomCreated, RoomCreatedPayload{
		Code:     rt.room.Code,
		PlayerID: playerID,
		Token:    token,
	})
	rt.broadcastStateLocked()
}

// join seats a new player and subscribes them in one critical section.
func (rt *RoomRuntime) join(playerID, name, token string) (<-chan OutgoingMessage, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed {
		return nil, appErr.ErrRoomNotFound
	}
	if _, err := rt.room.AddPlayer(playerID, name); err != nil {
		return nil, err
	}
	ch := rt.subscribeLocked(playerID)
	rt.pushMessageLocked(playerID, EventRoomJoined, RoomJoinedPayload{
		Code:     rt.room.Code,
		PlayerID: playerID,
		Token:    token,
	})
	rt.broadcastStateLocked()

	logger.Log.Info("player joined room",
		zap.String("room", rt.room.Code),
		zap.String("playerID", playerID),
		zap.Int("players", len(rt.room.Players)),
	)
	return ch, nil
}

func (rt *RoomRuntime) HandleAction(playerID string, action string, data json.RawMessage) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed {
		return appErr.ErrRoomNotFound
	}
	p, seat := rt.room.PlayerByID(playerID)
	if p == nil {
		return appErr.ErrPlayerNotFound
	}

	switch action {
	case ActionStartGame:
		return rt.handleStartLocked(playerID)
	case ActionViewCards:
		return rt.handleViewLocked(p, seat)
	case ActionPlaceBet, ActionFold, ActionAllIn, ActionCompareCards:
		return rt.handleTurnActionLocked(action, p, seat, data)
	case ActionRejoin:
		rt.pushStateLocked(playerID)
		return nil
	case ActionPing:
		rt.pushMessageLocked(playerID, EventPong, PongPayload{Message: "pong"})
		return nil
	default:
		return appErr.ErrUnsupportedAction
	}
}

func (rt *RoomRuntime) handleStartLocked(playerID string) error {
	if err := rt.room.StartTournament(playerID); err != nil {
		return err
	}
	rt.tournamentKey = uuid.NewString()
	rt.startedAt = time.Now()
	rt.room.StartNewHand(rt.rng)
	rt.foldAbsentLocked()

	logger.Log.Info("tournament started",
		zap.String("room", rt.room.Code),
		zap.String("tournament", rt.tournamentKey),
		zap.Int("players", rt.room.StartingPlayerCount),
	)

	seq := rt.nextSeqLocked()
	for uid := range rt.subscribers {
		rt.sendLocked(uid, OutgoingMessage{Type: EventGameStarted, Seq: seq, Data: exportState(rt.room, uid)})
	}
	rt.progressLocked()
	rt.broadcastStateLocked()
	return nil
}

func (rt *RoomRuntime) handleViewLocked(p *Player, seat int) error {
	cards, eval, err := rt.room.ViewCards(seat)
	if err != nil {
		return err
	}
	rt.pushMessageLocked(p.ID, EventCardsRevealed, CardsRevealedPayload{Cards: cards, Evaluation: eval})
	rt.broadcastLocked(EventPlayerAction, PlayerActionPayload{
		PlayerID: p.ID,
		Name:     p.Name,
		Action:   ActionViewCards,
		Viewed:   true,
	})
	rt.broadcastStateLocked()
	return nil
}

func (rt *RoomRuntime) handleTurnActionLocked(action string, p *Player, seat int, data json.RawMessage) error {
	notice := PlayerActionPayload{PlayerID: p.ID, Name: p.Name, Action: action, Viewed: p.Viewed}

	switch action {
	case ActionPlaceBet:
		var payload struct {
			Amount int64 `json:"amount"`
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &payload); err != nil {
				return appErr.ErrInvalidAmount
			}
		}
		entry, err := rt.room.PlaceBet(seat, payload.Amount)
		if err != nil {
			return err
		}
		notice.Declared = entry.Declared
		notice.Charged = entry.Charged
	case ActionAllIn:
		entry, err := rt.room.AllIn(seat)
		if err != nil {
			return err
		}
		notice.Declared = entry.Declared
		notice.Charged = entry.Charged
	case ActionFold:
		if err := rt.room.Fold(seat); err != nil {
			return err
		}
	case ActionCompareCards:
		var payload struct {
			OpponentID string `json:"opponentId"`
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &payload); err != nil {
				return appErr.ErrInvalidOpponent
			}
		}
		res, err := rt.room.Compare(seat, payload.OpponentID)
		if err != nil {
			return err
		}
		rt.pushDuelResultLocked(res)
		notice.OpponentID = res.OpponentID
		notice.LoserID = res.LoserID()
	}

	rt.broadcastLocked(EventPlayerAction, notice)
	rt.progressLocked()
	rt.broadcastStateLocked()
	return nil
}

func (rt *RoomRuntime) pushDuelResultLocked(res DuelResult) {
	challenger, _ := rt.room.PlayerByID(res.ChallengerID)
	opponent, _ := rt.room.PlayerByID(res.OpponentID)
	rt.pushMessageLocked(res.ChallengerID, EventCompareResult, CompareResultPayload{
		OpponentID:         res.OpponentID,
		OpponentName:       opponent.Name,
		MyCards:            res.ChallengerHand,
		OpponentCards:      res.OpponentHand,
		MyEvaluation:       res.ChallengerEval,
		OpponentEvaluation: res.OpponentEval,
		Outcome:            res.OutcomeFor(res.ChallengerID),
	})
	rt.pushMessageLocked(res.OpponentID, EventCompareResult, CompareResultPayload{
		OpponentID:         res.ChallengerID,
		OpponentName:       challenger.Name,
		MyCards:            res.OpponentHand,
		OpponentCards:      res.ChallengerHand,
		MyEvaluation:       res.OpponentEval,
		OpponentEvaluation: res.ChallengerEval,
		Outcome:            res.OutcomeFor(res.OpponentID),
	})
}

// progressLocked closes the hand or the betting round after every accepted action.
func (rt *RoomRuntime) progressLocked() {
	room := rt.room
	if !room.HandInProgress() {
		return
	}
	if room.IsHandFinished() {
		rt.finishHandLocked()
		return
	}
	if room.IsRoundComplete() {
		room.AdvanceRound()
	}
}

func (rt *RoomRuntime) finishHandLocked() {
	room := rt.room
	result := room.ResolveHand()
	outcome := room.ConcludeHand()

	logger.Log.Info("hand resolved",
		zap.String("room", room.Code),
		zap.Int("hand", result.HandNo),
		zap.Int64("pot", result.Pot),
		zap.Strings("winners", result.Winners),
		zap.Int64("remainder", result.Remainder),
	)
	rt.broadcastLocked(EventHandEnded, result)

	if rt.hooks.onHandResolved != nil {
		rec := HandRecord{
			TournamentKey: rt.tournamentKey,
			RoomCode:      room.Code,
			Result:        result,
			PlayedAt:      time.Now(),
		}
		go rt.hooks.onHandResolved(rec)
	}

	if outcome.Ended {
		rt.endTournamentLocked(outcome)
		return
	}
	rt.scheduleNextHandLocked()
}

func (rt *RoomRuntime) endTournamentLocked(outcome TournamentOutcome) {
	room := rt.room
	rt.cancelTimerLocked()

	payload := TournamentEndedPayload{TournamentOutcome: outcome, HandsPlayed: room.HandsPlayed}
	if champ, _ := room.PlayerByID(outcome.ChampionID); champ != nil {
		payload.ChampionName = champ.Name
	}
	logger.Log.Info("tournament ended",
		zap.String("room", room.Code),
		zap.String("tournament", rt.tournamentKey),
		zap.String("champion", outcome.ChampionID),
		zap.Int("hands", room.HandsPlayed),
	)
	rt.broadcastLocked(EventTournamentEnded, payload)

	if rt.hooks.onTournamentEnd != nil {
		rec := TournamentRecord{
			Key:          rt.tournamentKey,
			RoomCode:     room.Code,
			HostID:       room.HostID,
			PlayerCount:  room.StartingPlayerCount,
			HandsPlayed:  room.HandsPlayed,
			ChampionID:   outcome.ChampionID,
			ChampionName: payload.ChampionName,
			Ranking:      outcome.Ranking,
			StartedAt:    rt.startedAt,
			EndedAt:      time.Now(),
		}
		go rt.hooks.onTournamentEnd(rec)
	}
}

func (rt *RoomRuntime) scheduleNextHandLocked() {
	rt.cancelTimerLocked()
	rt.timerGen++
	gen := rt.timerGen
	rt.timer = time.AfterFunc(rt.nextHandDelay, func() {
		rt.onNextHandTimer(gen)
	})
}

// onNextHandTimer re-validates everything at fire time: the tournament may
// have ended or the room closed while the timer was pending.
func (rt *RoomRuntime) onNextHandTimer(gen int64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if gen != rt.timerGen || rt.closed {
		return
	}
	rt.timer = nil
	room := rt.room
	if room.Phase != PhasePlaying || room.HandInProgress() || room.TournamentOver() {
		return
	}

	antes := room.StartNewHand(rt.rng)
	rt.foldAbsentLocked()
	rt.broadcastLocked(EventNewHandStarted, NewHandPayload{
		HandNo: room.HandsPlayed + 1,
		Dealer: room.Dealer,
		Antes:  antes,
		Pot:    room.Pot,
	})
	rt.progressLocked()
	rt.broadcastStateLocked()
}

// foldAbsentLocked folds disconnected players right after a deal so the
// table never waits on a seat nobody is behind.
func (rt *RoomRuntime) foldAbsentLocked() {
	for seat, p := range rt.room.Players {
		if !p.Connected && p.InHand() {
			rt.involuntaryFoldLocked(p, seat)
		}
	}
}

func (rt *RoomRuntime) involuntaryFoldLocked(p *Player, seat int) {
	room := rt.room
	p.Status = StatusFolded
	p.Acted = true
	if room.CurrentTurn == seat {
		room.CurrentTurn = NextActiveSeat(room, seat)
	}
	rt.broadcastLocked(EventPlayerAction, PlayerActionPayload{
		PlayerID:    p.ID,
		Name:        p.Name,
		Action:      ActionFold,
		Viewed:      p.Viewed,
		Involuntary: true,
	})
}

// Disconnect handles a dropped session. It reports whether the room closed
// and which sessions should be unbound from it. A non-nil sub that is no
// longer the player's subscription belongs to a replaced connection and is
// ignored.
func (rt *RoomRuntime) Disconnect(playerID string, sub <-chan OutgoingMessage) (closed bool, unbind []string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	room := rt.room
	p, seat := room.PlayerByID(playerID)
	if p == nil || rt.closed {
		return rt.closed, nil
	}
	if sub != nil {
		if current, ok := rt.subscribers[playerID]; !ok || (<-chan OutgoingMessage)(current) != sub {
			return false, nil
		}
	}
	rt.unsubscribeLocked(playerID)
	p.Connected = false

	if room.Phase == PhaseWaiting {
		if playerID == room.HostID {
			return true, rt.closeLocked("host left")
		}
		room.removeWaitingPlayer(seat)
		rt.broadcastLocked(EventPlayerDisconnected, PlayerPresencePayload{PlayerID: p.ID, Name: p.Name})
		rt.broadcastStateLocked()
		return false, []string{playerID}
	}

	if room.Phase == PhasePlaying && room.HandInProgress() && p.InHand() {
		rt.involuntaryFoldLocked(p, seat)
		rt.progressLocked()
	}
	rt.broadcastLocked(EventPlayerDisconnected, PlayerPresencePayload{PlayerID: p.ID, Name: p.Name})

	if !room.anyConnected() {
		return true, rt.closeLocked("all players left")
	}
	rt.broadcastStateLocked()
	return false, nil
}

// Reconnect re-attaches a seated player after a dropped connection.
func (rt *RoomRuntime) Reconnect(playerID string) (<-chan OutgoingMessage, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed {
		return nil, appErr.ErrRoomNotFound
	}
	p, _ := rt.room.PlayerByID(playerID)
	if p == nil {
		return nil, appErr.ErrPlayerNotFound
	}
	p.Connected = true
	ch := rt.subscribeLocked(playerID)
	rt.broadcastLocked(EventPlayerReconnected, PlayerPresencePayload{PlayerID: p.ID, Name: p.Name})
	rt.broadcastStateLocked()
	return ch, nil
}

// Close discards the room, e.g. on shutdown.
func (rt *RoomRuntime) Close(reason string) []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return nil
	}
	return rt.closeLocked(reason)
}

func (rt *RoomRuntime) closeLocked(reason string) []string {
	rt.closed = true
	rt.cancelTimerLocked()
	rt.timerGen++
	rt.broadcastLocked(EventRoomClosed, RoomClosedPayload{Code: rt.room.Code, Reason: reason})
	for uid, ch := range rt.subscribers {
		delete(rt.subscribers, uid)
		close(ch)
	}

	members := make([]string, 0, len(rt.room.Players))
	for _, p := range rt.room.Players {
		members = append(members, p.ID)
	}
	logger.Log.Info("room closed", zap.String("room", rt.room.Code), zap.String("reason", reason))
	return members
}

func (rt *RoomRuntime) pushStateLocked(playerID string) {
	rt.pushMessageLocked(playerID, EventRoomUpdated, exportState(rt.room, playerID))
}

func (rt *RoomRuntime) broadcastStateLocked() {
	stateSeq := rt.nextSeqLocked()
	for uid := range rt.subscribers {
		rt.sendLocked(uid, OutgoingMessage{
			Type: EventRoomUpdated,
			Seq:  stateSeq,
			Data: exportState(rt.room, uid),
		})
	}
}

func (rt *RoomRuntime) broadcastLocked(eventType string, data interface{}) {
	seq := rt.nextSeqLocked()
	for uid := range rt.subscribers {
		rt.sendLocked(uid, OutgoingMessage{Type: eventType, Seq: seq, Data: data})
	}
}

func (rt *RoomRuntime) pushMessageLocked(playerID string, eventType string, data interface{}) {
	rt.sendLocked(playerID, OutgoingMessage{Type: eventType, Seq: rt.nextSeqLocked(), Data: data})
}

func (rt *RoomRuntime) sendLocked(playerID string, msg OutgoingMessage) {
	if ch, ok := rt.subscribers[playerID]; ok {
		select {
		case ch <- msg:
		default:
			logger.Log.Warn("subscriber channel full",
				zap.String("playerID", playerID),
				zap.String("room", rt.room.Code),
				zap.String("type", msg.Type),
			)
		}
	}
}

func (rt *RoomRuntime) nextSeqLocked() int64 {
	rt.seq++
	return rt.seq
}

func (rt *RoomRuntime) cancelTimerLocked() {
	if rt.timer != nil {
		rt.timer.Stop()
		rt.timer = nil
	}
}

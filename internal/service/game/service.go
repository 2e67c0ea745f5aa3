package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"teenpatti-service/internal/config"
	"teenpatti-service/internal/repo"
	appErr "teenpatti-service/pkg/errors"
	"teenpatti-service/pkg/logger"
	"teenpatti-service/pkg/utils/random"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCodeAttempts = 16

// Settings are the table parameters applied to every new room.
type Settings struct {
	Rules          Rules
	NextHandDelay  time.Duration
	RoomCodeLength int
}

func DefaultSettings() Settings {
	return Settings{
		Rules: Rules{
			Ante:            100,
			StartingBalance: 1000,
			MinPlayers:      2,
			MaxPlayers:      6,
		},
		NextHandDelay:  5 * time.Second,
		RoomCodeLength: 6,
	}
}

func SettingsFromConfig(cfg config.GameConfig) Settings {
	s := DefaultSettings()
	if cfg.Ante > 0 {
		s.Rules.Ante = cfg.Ante
	}
	if cfg.StartingBalance > 0 {
		s.Rules.StartingBalance = cfg.StartingBalance
	}
	if cfg.MinPlayers > 0 {
		s.Rules.MinPlayers = cfg.MinPlayers
	}
	if cfg.MaxPlayers > 0 {
		s.Rules.MaxPlayers = min(cfg.MaxPlayers, MaxSeats)
	}
	if cfg.MaxHands > 0 {
		s.Rules.MaxHands = cfg.MaxHands
	}
	if cfg.NextHandDelay > 0 {
		s.NextHandDelay = cfg.NextHandDelay
	}
	if cfg.RoomCodeLength > 0 {
		s.RoomCodeLength = cfg.RoomCodeLength
	}
	return s
}

type Option func(*Service)

func WithSessionStore(store repo.SessionStore) Option {
	return func(s *Service) {
		s.sessions = store
	}
}

// WithTokenIssuer sets the function that signs reconnect tokens for a session.
func WithTokenIssuer(issue func(sessionID string) (string, error)) Option {
	return func(s *Service) {
		s.issueToken = issue
	}
}

// WithRandSource makes every room shuffle from rand.NewSource(seed).
func WithRandSource(seed int64) Option {
	return func(s *Service) {
		s.newRNG = func() *rand.Rand {
			return rand.New(rand.NewSource(seed))
		}
	}
}

func WithCodeGenerator(gen func(length int) string) Option {
	return func(s *Service) {
		s.newCode = gen
	}
}

// Service owns the live rooms and the session bindings that point into them.
type Service struct {
	db       *gorm.DB
	settings Settings

	rooms    *repo.Registry[*RoomRuntime]
	sessions repo.SessionStore

	issueToken func(sessionID string) (string, error)
	newRNG     func() *rand.Rand
	newCode    func(length int) string
}

func NewService(db *gorm.DB, settings Settings, opts ...Option) *Service {
	s := &Service{
		db:       db,
		settings: settings,
		rooms:    repo.NewRegistry[*RoomRuntime](),
		sessions: repo.NewMemorySessionStore(),
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		newCode: random.Code,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) hooks() runtimeHooks {
	return runtimeHooks{
		onHandResolved:  s.handleHandResolved,
		onTournamentEnd: s.handleTournamentEnded,
	}
}

// CreateRoom opens a room hosted by the session and subscribes the host to it.
func (s *Service) CreateRoom(ctx context.Context, sessionID, name string) (*RoomRuntime, <-chan OutgoingMessage, error) {
	if err := s.ensureUnbound(ctx, sessionID); err != nil {
		return nil, nil, err
	}

	var rt *RoomRuntime
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.newCode(s.settings.RoomCodeLength)
		room, err := NewRoom(code, sessionID, name, s.settings.Rules)
		if err != nil {
			return nil, nil, err
		}
		candidate := newRoomRuntime(room, s.newRNG(), s.settings.NextHandDelay, s.hooks())
		if s.rooms.SetIfAbsent(code, candidate) {
			rt = candidate
			break
		}
	}
	if rt == nil {
		return nil, nil, fmt.Errorf("allocate room code: %d attempts collided", maxCodeAttempts)
	}

	host, _ := rt.room.PlayerByID(sessionID)
	if err := s.sessions.Set(ctx, sessionID, repo.SessionBinding{RoomCode: rt.Code(), DisplayName: host.Name}); err != nil {
		s.rooms.Delete(rt.Code())
		return nil, nil, err
	}

	ch := rt.Subscribe(sessionID)
	rt.announceCreated(sessionID, s.tokenFor(sessionID))

	logger.Log.Info("room created",
		zap.String("room", rt.Code()),
		zap.String("host", sessionID),
	)
	return rt, ch, nil
}

// JoinRoom seats the session in an existing waiting room.
func (s *Service) JoinRoom(ctx context.Context, sessionID, code, name string) (*RoomRuntime, <-chan OutgoingMessage, error) {
	if err := s.ensureUnbound(ctx, sessionID); err != nil {
		return nil, nil, err
	}
	rt, ok := s.rooms.Get(normalizeCode(code))
	if !ok {
		return nil, nil, appErr.ErrRoomNotFound
	}

	ch, err := rt.join(sessionID, name, s.tokenFor(sessionID))
	if err != nil {
		return nil, nil, err
	}
	normalized, _ := NormalizeName(name)
	if err := s.sessions.Set(ctx, sessionID, repo.SessionBinding{RoomCode: rt.Code(), DisplayName: normalized}); err != nil {
		logger.Log.Warn("bind session failed",
			zap.String("room", rt.Code()),
			zap.String("session", sessionID),
			zap.Error(err),
		)
		if closed, _ := rt.Disconnect(sessionID, ch); closed {
			s.rooms.Delete(rt.Code())
		}
		return nil, nil, err
	}
	return rt, ch, nil
}

// HandleAction routes an in-room intent to the session's room.
func (s *Service) HandleAction(ctx context.Context, sessionID, action string, data json.RawMessage) error {
	rt, err := s.RuntimeForSession(ctx, sessionID)
	if err != nil {
		return err
	}
	return rt.HandleAction(sessionID, action, data)
}

func (s *Service) RuntimeForSession(ctx context.Context, sessionID string) (*RoomRuntime, error) {
	binding, ok, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErr.ErrRoomNotFound
	}
	rt, ok := s.rooms.Get(binding.RoomCode)
	if !ok {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, appErr.ErrRoomNotFound
	}
	return rt, nil
}

// Reconnect re-attaches a session that still holds a seat somewhere.
func (s *Service) Reconnect(ctx context.Context, sessionID string) (*RoomRuntime, <-chan OutgoingMessage, error) {
	rt, err := s.RuntimeForSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, err := rt.Reconnect(sessionID)
	if err != nil {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, nil, err
	}
	logger.Log.Info("player reconnected",
		zap.String("room", rt.Code()),
		zap.String("session", sessionID),
	)
	return rt, ch, nil
}

// Disconnect applies a dropped connection to the session's room and discards
// the room if nobody is left in it. sub identifies the connection's
// subscription; nil applies unconditionally.
func (s *Service) Disconnect(ctx context.Context, sessionID string, sub <-chan OutgoingMessage) {
	rt, err := s.RuntimeForSession(ctx, sessionID)
	if err != nil {
		return
	}
	closed, unbind := rt.Disconnect(sessionID, sub)
	for _, id := range unbind {
		if err := s.sessions.Delete(ctx, id); err != nil {
			logger.Log.Warn("unbind session failed", zap.String("session", id), zap.Error(err))
		}
	}
	if closed {
		s.rooms.Delete(rt.Code())
	}
}

// Shutdown closes every live room.
func (s *Service) Shutdown(ctx context.Context, reason string) {
	for _, rt := range s.rooms.Values() {
		for _, id := range rt.Close(reason) {
			_ = s.sessions.Delete(ctx, id)
		}
		s.rooms.Delete(rt.Code())
	}
}

func (s *Service) RoomCount() int {
	return s.rooms.Len()
}

// ensureUnbound rejects sessions that still sit in a running room. A session
// left behind in a finished tournament is detached first.
func (s *Service) ensureUnbound(ctx context.Context, sessionID string) error {
	binding, ok, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if rt, live := s.rooms.Get(binding.RoomCode); live {
		if !rt.Ended() {
			return appErr.ErrAlreadyInRoom
		}
		s.Disconnect(ctx, sessionID, nil)
	}
	return s.sessions.Delete(ctx, sessionID)
}

func (s *Service) tokenFor(sessionID string) string {
	if s.issueToken == nil {
		return ""
	}
	token, err := s.issueToken(sessionID)
	if err != nil {
		logger.Log.Warn("issue session token failed", zap.String("session", sessionID), zap.Error(err))
		return ""
	}
	return token
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

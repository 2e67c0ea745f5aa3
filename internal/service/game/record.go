package game

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"teenpatti-service/internal/model"
	appErr "teenpatti-service/pkg/errors"
	"teenpatti-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HandRecord struct {
	TournamentKey string
	RoomCode      string
	Result        HandResult
	PlayedAt      time.Time
}

type TournamentRecord struct {
	Key          string
	RoomCode     string
	HostID       string
	PlayerCount  int
	HandsPlayed  int
	ChampionID   string
	ChampionName string
	Ranking      []Standing
	StartedAt    time.Time
	EndedAt      time.Time
}

type ListResult struct {
	Items []model.Tournament
	Total int64
}

type TournamentDetail struct {
	Tournament model.Tournament `json:"tournament"`
	Hands      []model.HandLog  `json:"hands"`
}

func (s *Service) RecordHand(ctx context.Context, rec HandRecord) error {
	if s.db == nil {
		return nil
	}
	winners := rec.Result.Winners
	if winners == nil {
		winners = []string{}
	}
	row := model.HandLog{
		TournamentKey: rec.TournamentKey,
		RoomCode:      rec.RoomCode,
		HandNo:        rec.Result.HandNo,
		Pot:           rec.Result.Pot,
		Share:         rec.Result.Share,
		Remainder:     rec.Result.Remainder,
		WinnersJSON:   mustJSON(winners),
		LedgerJSON:    mustJSON(rec.Result.Ledger),
		ShowdownJSON:  mustJSON(rec.Result.Showdown),
		CreatedAt:     rec.PlayedAt,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// RecordTournament is idempotent on the tournament key.
func (s *Service) RecordTournament(ctx context.Context, rec TournamentRecord) error {
	if s.db == nil {
		return nil
	}
	row := model.Tournament{
		Key:          rec.Key,
		RoomCode:     rec.RoomCode,
		HostID:       rec.HostID,
		PlayerCount:  rec.PlayerCount,
		HandsPlayed:  rec.HandsPlayed,
		ChampionID:   rec.ChampionID,
		ChampionName: rec.ChampionName,
		RankingJSON:  mustJSON(rec.Ranking),
		StartedAt:    rec.StartedAt,
		EndedAt:      rec.EndedAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tournament_key"}}, DoNothing: true}).
		Create(&row).Error
}

func (s *Service) ListTournaments(ctx context.Context, page, size int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	if s.db == nil {
		return &ListResult{}, nil
	}

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&model.Tournament{}).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var items []model.Tournament
	if total > 0 {
		offset := (page - 1) * size
		if err := s.db.WithContext(ctx).
			Model(&model.Tournament{}).
			Order("id DESC").
			Limit(size).
			Offset(offset).
			Find(&items).Error; err != nil {
			return nil, err
		}
	}
	return &ListResult{Items: items, Total: total}, nil
}

func (s *Service) GetTournament(ctx context.Context, key string) (*TournamentDetail, error) {
	if s.db == nil {
		return nil, appErr.ErrTournamentNotFound
	}
	var t model.Tournament
	if err := s.db.WithContext(ctx).Where("tournament_key = ?", key).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.ErrTournamentNotFound
		}
		return nil, err
	}
	var hands []model.HandLog
	if err := s.db.WithContext(ctx).
		Where("tournament_key = ?", key).
		Order("hand_no ASC").
		Find(&hands).Error; err != nil {
		return nil, err
	}
	return &TournamentDetail{Tournament: t, Hands: hands}, nil
}

func (s *Service) handleHandResolved(rec HandRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.RecordHand(ctx, rec); err != nil {
		logger.Log.Warn("record hand failed",
			zap.String("room", rec.RoomCode),
			zap.Int("hand", rec.Result.HandNo),
			zap.Error(err),
		)
	}
}

func (s *Service) handleTournamentEnded(rec TournamentRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.RecordTournament(ctx, rec); err != nil {
		logger.Log.Warn("record tournament failed",
			zap.String("room", rec.RoomCode),
			zap.String("tournament", rec.Key),
			zap.Error(err),
		)
	}
}

func mustJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(data)
}

package game_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"teenpatti-service/internal/repo"
	"teenpatti-service/internal/service/game"
	appErr "teenpatti-service/pkg/errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newRecordDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func tournamentRecord(key string) game.TournamentRecord {
	now := time.Now()
	return game.TournamentRecord{
		Key:          key,
		RoomCode:     "ROOM01",
		HostID:       "s-host",
		PlayerCount:  2,
		HandsPlayed:  2,
		ChampionID:   "s-host",
		ChampionName: "Alice",
		Ranking: []game.Standing{
			{Rank: 1, PlayerID: "s-host", Name: "Alice", Money: 2000},
			{Rank: 2, PlayerID: "s-guest", Name: "Bob", Money: 0},
		},
		StartedAt: now.Add(-time.Minute),
		EndedAt:   now,
	}
}

func TestRecordTournamentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := game.NewService(newRecordDB(t), game.DefaultSettings())

	for i := 0; i < 2; i++ {
		if err := svc.RecordTournament(ctx, tournamentRecord("t-1")); err != nil {
			t.Fatalf("record tournament failed: %v", err)
		}
	}
	result, err := svc.ListTournaments(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list tournaments failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected one row, got %d", result.Total)
	}
}

func TestGetTournamentWithHands(t *testing.T) {
	ctx := context.Background()
	svc := game.NewService(newRecordDB(t), game.DefaultSettings())

	if err := svc.RecordTournament(ctx, tournamentRecord("t-1")); err != nil {
		t.Fatalf("record tournament failed: %v", err)
	}
	for _, no := range []int{2, 1} {
		err := svc.RecordHand(ctx, game.HandRecord{
			TournamentKey: "t-1",
			RoomCode:      "ROOM01",
			Result: game.HandResult{
				HandNo:    no,
				Pot:       301,
				Winners:   []string{"s-host", "s-guest"},
				Share:     150,
				Remainder: 1,
			},
			PlayedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("record hand failed: %v", err)
		}
	}

	detail, err := svc.GetTournament(ctx, "t-1")
	if err != nil {
		t.Fatalf("get tournament failed: %v", err)
	}
	if detail.Tournament.ChampionName != "Alice" || detail.Tournament.PlayerCount != 2 {
		t.Fatalf("unexpected tournament: %+v", detail.Tournament)
	}
	var ranking []game.Standing
	if err := json.Unmarshal(detail.Tournament.RankingJSON, &ranking); err != nil {
		t.Fatalf("decode ranking failed: %v", err)
	}
	if len(ranking) != 2 || ranking[0].Money != 2000 {
		t.Fatalf("unexpected ranking: %+v", ranking)
	}
	if len(detail.Hands) != 2 || detail.Hands[0].HandNo != 1 || detail.Hands[1].HandNo != 2 {
		t.Fatalf("hands should be ordered by number: %+v", detail.Hands)
	}
	var winners []string
	if err := json.Unmarshal(detail.Hands[0].WinnersJSON, &winners); err != nil {
		t.Fatalf("decode winners failed: %v", err)
	}
	if len(winners) != 2 || detail.Hands[0].Remainder != 1 {
		t.Fatalf("unexpected hand log: %+v", detail.Hands[0])
	}
}

func TestListTournamentsPaginates(t *testing.T) {
	ctx := context.Background()
	svc := game.NewService(newRecordDB(t), game.DefaultSettings())
	for i := 1; i <= 3; i++ {
		if err := svc.RecordTournament(ctx, tournamentRecord(fmt.Sprintf("t-%d", i))); err != nil {
			t.Fatalf("record tournament failed: %v", err)
		}
	}

	result, err := svc.ListTournaments(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list tournaments failed: %v", err)
	}
	if result.Total != 3 || len(result.Items) != 2 {
		t.Fatalf("expected total=3 page=2, got total=%d page=%d", result.Total, len(result.Items))
	}
	if result.Items[0].Key != "t-3" {
		t.Fatalf("newest first, got %s", result.Items[0].Key)
	}

	result, err = svc.ListTournaments(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list tournaments failed: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Key != "t-1" {
		t.Fatalf("unexpected second page: %+v", result.Items)
	}
}

func TestGetTournamentNotFound(t *testing.T) {
	svc := game.NewService(newRecordDB(t), game.DefaultSettings())
	if _, err := svc.GetTournament(context.Background(), "missing"); !errors.Is(err, appErr.ErrTournamentNotFound) {
		t.Fatalf("expected ErrTournamentNotFound, got %v", err)
	}
}

func TestRecordsWithoutDatabase(t *testing.T) {
	ctx := context.Background()
	svc := game.NewService(nil, game.DefaultSettings())
	if err := svc.RecordTournament(ctx, tournamentRecord("t-1")); err != nil {
		t.Fatalf("recording without a database should be a no-op: %v", err)
	}
	result, err := svc.ListTournaments(ctx, 1, 10)
	if err != nil || result.Total != 0 {
		t.Fatalf("expected empty list, got %+v %v", result, err)
	}
	if _, err := svc.GetTournament(ctx, "t-1"); !errors.Is(err, appErr.ErrTournamentNotFound) {
		t.Fatalf("expected ErrTournamentNotFound, got %v", err)
	}
}

func TestFinishedTournamentIsRecorded(t *testing.T) {
	ctx := context.Background()
	settings := game.DefaultSettings()
	settings.NextHandDelay = 10 * time.Millisecond
	svc := game.NewService(newRecordDB(t), settings,
		game.WithRandSource(3),
		game.WithCodeGenerator(sequentialCodes()),
	)
	tb := openTable(t, svc)
	tb.act(t, "s-host", game.ActionStartGame, nil)
	tb.act(t, "s-guest", game.ActionFold, nil)
	waitFor(t, tb.hostCh, game.EventNewHandStarted)
	tb.act(t, "s-host", game.ActionFold, nil)
	waitFor(t, tb.hostCh, game.EventTournamentEnded)

	deadline := time.Now().Add(2 * time.Second)
	for {
		result, err := svc.ListTournaments(ctx, 1, 10)
		if err == nil && result.Total == 1 {
			detail, err := svc.GetTournament(ctx, result.Items[0].Key)
			if err == nil && len(detail.Hands) == 2 {
				if detail.Tournament.HandsPlayed != 2 || detail.Tournament.RoomCode != tb.rt.Code() {
					t.Fatalf("unexpected tournament row: %+v", detail.Tournament)
				}
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("tournament was not recorded in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

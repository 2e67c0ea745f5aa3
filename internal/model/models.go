package model

import (
	"time"

	"gorm.io/datatypes"
)

// Tournament is written once, when a room's tournament ends.
type Tournament struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Key          string         `gorm:"column:tournament_key;uniqueIndex;size:36;not null" json:"key"`
	RoomCode     string         `gorm:"index;size:16" json:"roomCode"`
	HostID       string         `gorm:"size:64" json:"hostId"`
	PlayerCount  int            `json:"playerCount"`
	HandsPlayed  int            `json:"handsPlayed"`
	ChampionID   string         `gorm:"size:64" json:"championId"`
	ChampionName string         `gorm:"size:64" json:"championName"`
	RankingJSON  datatypes.JSON `gorm:"type:jsonb" json:"ranking"`
	StartedAt    time.Time      `json:"startedAt"`
	EndedAt      time.Time      `json:"endedAt"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// HandLog is the audit trail of one resolved hand.
type HandLog struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TournamentKey string         `gorm:"index;size:36" json:"tournamentKey"`
	RoomCode      string         `gorm:"size:16" json:"roomCode"`
	HandNo        int            `json:"handNo"`
	Pot           int64          `json:"pot"`
	Share         int64          `json:"share"`
	Remainder     int64          `json:"remainder"`
	WinnersJSON   datatypes.JSON `gorm:"type:jsonb" json:"winners"`
	LedgerJSON    datatypes.JSON `gorm:"type:jsonb" json:"ledger"`
	ShowdownJSON  datatypes.JSON `gorm:"type:jsonb" json:"showdown"`
	CreatedAt     time.Time      `json:"createdAt"`
}

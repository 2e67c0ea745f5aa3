package repo

import (
	"strings"

	"teenpatti-service/internal/config"
	"teenpatti-service/internal/model"
	"teenpatti-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB opens the history database. An empty driver leaves DB nil and
// disables result recording.
func InitDB() {
	conf := config.GlobalConfig.Database
	var dialector gorm.Dialector
	switch strings.ToLower(conf.Driver) {
	case "":
		logger.Log.Info("database disabled, results will not be recorded")
		return
	case "postgres":
		dialector = postgres.Open(conf.DSN)
	case "sqlite":
		dialector = sqlite.Open(conf.DSN)
	default:
		logger.Log.Fatal("Unsupported database driver", zap.String("driver", conf.Driver))
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logger.Log.Fatal("Failed to connect to database",
			zap.Error(err),
		)
	}

	if err := Migrate(DB); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Tournament{},
		&model.HandLog{},
	)
}

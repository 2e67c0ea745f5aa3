package service

import (
	"context"

	"teenpatti-service/internal/config"
	"teenpatti-service/internal/repo"
	"teenpatti-service/internal/service/game"
	pkgAuth "teenpatti-service/pkg/auth"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Game *game.Service
}

func NewContainer(db *gorm.DB, rdb *redis.Client) *Container {
	return &Container{
		Game: game.NewService(db,
			game.SettingsFromConfig(config.GlobalConfig.Game),
			game.WithSessionStore(repo.NewSessionStore(rdb)),
			game.WithTokenIssuer(pkgAuth.GenerateSessionToken),
		),
	}
}

// Stop closes every live room so connected clients see room-closed.
func (c *Container) Stop(ctx context.Context) {
	c.Game.Shutdown(ctx, "server shutting down")
}

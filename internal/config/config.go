package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres, sqlite; empty disables history
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"` // empty keeps sessions in memory
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	SessionTTL time.Duration `mapstructure:"sessionTTL"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // hours
}

type GameConfig struct {
	Ante            int64         `mapstructure:"ante"`
	StartingBalance int64         `mapstructure:"startingBalance"`
	MinPlayers      int           `mapstructure:"minPlayers"`
	MaxPlayers      int           `mapstructure:"maxPlayers"`
	MaxHands        int           `mapstructure:"maxHands"` // 0: starting player count
	NextHandDelay   time.Duration `mapstructure:"nextHandDelay"`
	RoomCodeLength  int           `mapstructure:"roomCodeLength"`
}

var GlobalConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("redis.sessionTTL", 24*time.Hour)
	v.SetDefault("jwt.expire", 24)
	v.SetDefault("game.ante", 100)
	v.SetDefault("game.startingBalance", 1000)
	v.SetDefault("game.minPlayers", 2)
	v.SetDefault("game.maxPlayers", 6)
	v.SetDefault("game.maxHands", 0)
	v.SetDefault("game.nextHandDelay", 5*time.Second)
	v.SetDefault("game.roomCodeLength", 6)
}

func LoadConfig(path string) {
	// .env is optional; values there feed the TP_* overrides below.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	GlobalConfig = &cfg
}

// Package config loads server settings from defaults, an optional config file,
// a .env file and TEAMRANK_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mcoot/teamrank/internal/factory"
	"github.com/mcoot/teamrank/internal/metrics"
	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	filestorage "github.com/mcoot/teamrank/internal/storage/file"
	redisstorage "github.com/mcoot/teamrank/internal/storage/redis"
	"github.com/mcoot/teamrank/internal/storage/sqlite"
)

// EnvPrefix is prepended to every environment override, e.g. TEAMRANK_STORAGE_TYPE
const EnvPrefix = "TEAMRANK"

type Config struct {
	Strategy string         `mapstructure:"strategy"`
	Elo      EloConfig      `mapstructure:"elo"`
	Bayesian BayesianConfig `mapstructure:"bayesian"`
	Teams    TeamsConfig    `mapstructure:"teams"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Discord  DiscordConfig  `mapstructure:"discord"`
}

type EloConfig struct {
	K       float64 `mapstructure:"k"`
	Initial int     `mapstructure:"initial"`
}

type BayesianConfig struct {
	Mu    float64 `mapstructure:"mu"`
	Sigma float64 `mapstructure:"sigma"`
}

type TeamsConfig struct {
	MaxPlayers int    `mapstructure:"max_players"`
	Metric     string `mapstructure:"metric"`
}

type StorageConfig struct {
	Type     string         `mapstructure:"type"`
	File     FileConfig     `mapstructure:"file"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type FileConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL       string `mapstructure:"url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DiscordConfig struct {
	Token   string `mapstructure:"token"`
	AppID   string `mapstructure:"app_id"`
	GuildID string `mapstructure:"guild_id"`
}

// Enabled reports whether the Discord bot should start
func (d DiscordConfig) Enabled() bool {
	return d.Token != ""
}

func setDefaults(v *viper.Viper) {
	ratingDefaults := rating.DefaultConfig()
	v.SetDefault("strategy", string(ratingDefaults.Kind))
	v.SetDefault("elo.k", ratingDefaults.EloK)
	v.SetDefault("elo.initial", ratingDefaults.InitialElo)
	v.SetDefault("bayesian.mu", ratingDefaults.InitialMu)
	v.SetDefault("bayesian.sigma", ratingDefaults.InitialSigma)

	v.SetDefault("teams.max_players", 20)
	v.SetDefault("teams.metric", string(model.MetricMu))

	v.SetDefault("storage.type", factory.StorageTypeFile)
	v.SetDefault("storage.file.path", filestorage.DefaultConfig().Path)
	v.SetDefault("storage.redis.url", redisstorage.DefaultConfig().URL)
	v.SetDefault("storage.redis.key_prefix", redisstorage.DefaultConfig().KeyPrefix)
	v.SetDefault("storage.sqlite.path", sqlite.DefaultConfig().Path)
	v.SetDefault("storage.postgres.url", "")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("discord.token", "")
	v.SetDefault("discord.app_id", "")
	v.SetDefault("discord.guild_id", "")
}

// Load reads the configuration. If path is empty, teamrank.{yaml,json,toml}
// is looked up in the working directory and ./config, and is optional.
func Load(path string) (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("teamrank")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be caught by decoding
func (c *Config) Validate() error {
	if _, err := model.ParseStrategyKind(c.Strategy); err != nil {
		return err
	}
	if _, err := model.ParseMetric(c.Teams.Metric); err != nil {
		return err
	}
	if c.Teams.MaxPlayers < 2 {
		return fmt.Errorf("%w: teams.max_players must be at least 2", model.ErrValidation)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", model.ErrValidation, c.Server.Port)
	}
	return nil
}

// Rating returns the rating engine constants
func (c *Config) Rating() rating.Config {
	kind, _ := model.ParseStrategyKind(c.Strategy)
	return rating.Config{
		Kind:         kind,
		EloK:         c.Elo.K,
		InitialElo:   c.Elo.Initial,
		InitialMu:    c.Bayesian.Mu,
		InitialSigma: c.Bayesian.Sigma,
	}
}

// Factory converts the configuration into factory settings
func (c *Config) Factory(logger *slog.Logger, m *metrics.Metrics) factory.Config {
	metric, _ := model.ParseMetric(c.Teams.Metric)

	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = c.Storage.Redis.URL
	redisCfg.KeyPrefix = c.Storage.Redis.KeyPrefix

	fileCfg := filestorage.DefaultConfig()
	fileCfg.Path = c.Storage.File.Path

	return factory.Config{
		Rating:         c.Rating(),
		MaxTeamPlayers: c.Teams.MaxPlayers,
		DefaultMetric:  metric,
		Logger:         logger,
		Metrics:        m,
		StorageType:    strings.ToLower(c.Storage.Type),
		FileConfig:     fileCfg,
		RedisConfig:    &redisCfg,
		SQLiteConfig:   sqlite.Config{Path: c.Storage.SQLite.Path},
		PostgresURL:    c.Storage.Postgres.URL,
	}
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

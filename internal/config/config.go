package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/storefront/internal/log"
)

const EnvPrefix = "STOREFRONT"

type Application struct {
	Env     string `mapstructure:"env"      json:"env"`
	Host    string `mapstructure:"host"     json:"host"`
	LogFile string `mapstructure:"log_file" json:"log_file"`
	Port    int    `mapstructure:"port"     json:"port"`
}

type Api struct {
	BaseURL             string        `mapstructure:"base_url"             json:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"              json:"timeout"`
	NotificationTimeout time.Duration `mapstructure:"notification_timeout" json:"notification_timeout"`
}

type Cache struct {
	Host       string        `mapstructure:"host"        json:"host"`
	Password   string        `mapstructure:"password"    json:"-"`
	Database   int           `mapstructure:"database"    json:"database"`
	Port       uint16        `mapstructure:"port"        json:"port"`
	ProductTTL time.Duration `mapstructure:"product_ttl" json:"product_ttl"`
}

func (c Cache) Enabled() bool { return c.Host != "" }

// Session selects where session state lives: file for the CLI, memory or
// redis for the HTTP service.
// MaxShoppers and IdleTTL bound the shoppers the HTTP service keeps in memory.
type Session struct {
	Driver      string        `mapstructure:"driver"       json:"driver"`
	Path        string        `mapstructure:"path"         json:"path"`
	TTL         time.Duration `mapstructure:"ttl"          json:"ttl"`
	MaxShoppers int           `mapstructure:"max_shoppers" json:"max_shoppers"`
	IdleTTL     time.Duration `mapstructure:"idle_ttl"     json:"idle_ttl"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

func (o Otel) Enabled() bool { return o.Host != "" }

type Config struct {
	Application `mapstructure:"application" json:"application"`
	Api         `mapstructure:"api"         json:"api"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Session     `mapstructure:"session"     json:"session"`
	Otel        `mapstructure:"otel"        json:"otel"`
}

var (
	once   sync.Once
	config *Config
)

// InitConfig loads the config once per process; a broken config is fatal.
func InitConfig(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "config InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		logger.Info().Msg("reading config")
		cfg, err := Load(filename, "./env", ".")
		if err != nil {
			err = fmt.Errorf("failed reading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger.Info().Any(log.KeyConfig, cfg).Msg("read config")
	})
	return config
}

func Load(filename string, paths ...string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed loading .env with error=%w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed reading config file with error=%w", err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed unmarshaling config with error=%w", err)
	}
	if cfg.Api.BaseURL == "" {
		return Config{}, errors.New("api.base_url is required")
	}
	cfg.Api.BaseURL = strings.TrimRight(cfg.Api.BaseURL, "/")
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "localhost")
	v.SetDefault("application.port", 8080)
	v.SetDefault("application.log_file", "")
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.notification_timeout", 5*time.Second)
	v.SetDefault("cache.host", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.database", 0)
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.product_ttl", 5*time.Minute)
	v.SetDefault("session.driver", "file")
	v.SetDefault("session.path", ".storefront/session.json")
	v.SetDefault("session.ttl", 30*24*time.Hour)
	v.SetDefault("session.max_shoppers", 10000)
	v.SetDefault("session.idle_ttl", 30*time.Minute)
	v.SetDefault("otel.host", "")
	v.SetDefault("otel.port", 4317)
}

// Package config loads nestcue settings from an optional YAML file, a .env
// file and NESTCUE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dukerupert/nestcue/internal/reminder"
)

const envPrefix = "NESTCUE"

type Agent struct {
	Addr             string        `mapstructure:"addr"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	DeviceID         string        `mapstructure:"device_id"`
	Locale           string        `mapstructure:"locale"`
	Timezone         string        `mapstructure:"timezone"`
	MarkFailedAsSent bool          `mapstructure:"mark_failed_as_sent"`
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
}

type Relay struct {
	URL          string `mapstructure:"url"`
	Token        string `mapstructure:"token"`
	Addr         string `mapstructure:"addr"`
	DSN          string `mapstructure:"dsn"`
	JWTSecret    string `mapstructure:"jwt_secret"`
	DispatchSpec string `mapstructure:"dispatch_spec"`
}

type Push struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key"`
	Subscriber      string `mapstructure:"subscriber"`
}

type Redis struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
}

type Config struct {
	LogLevel     string              `mapstructure:"log_level"`
	LogFormat    string              `mapstructure:"log_format"`
	DBPath       string              `mapstructure:"db_path"`
	OTLPEndpoint string              `mapstructure:"otlp_endpoint"`
	Agent        Agent               `mapstructure:"agent"`
	Relay        Relay               `mapstructure:"relay"`
	Push         Push                `mapstructure:"push"`
	Redis        Redis               `mapstructure:"redis"`
	Priorities   reminder.Priorities `mapstructure:"priorities"`
}

// Location resolves the agent timezone, falling back to the local zone.
func (c Config) Location() (*time.Location, error) {
	if c.Agent.Timezone == "" || strings.EqualFold(c.Agent.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Agent.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Agent.Timezone, err)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("db_path", "nestcue.db")
	v.SetDefault("otlp_endpoint", "")

	v.SetDefault("agent.addr", "127.0.0.1:8088")
	v.SetDefault("agent.tick_interval", "45s")
	v.SetDefault("agent.device_id", "")
	v.SetDefault("agent.locale", "en")
	v.SetDefault("agent.timezone", "local")
	v.SetDefault("agent.mark_failed_as_sent", true)
	v.SetDefault("agent.allowed_origins", []string{})

	v.SetDefault("relay.url", "")
	v.SetDefault("relay.token", "")
	v.SetDefault("relay.addr", ":8090")
	v.SetDefault("relay.dsn", "relay.db")
	v.SetDefault("relay.jwt_secret", "")
	v.SetDefault("relay.dispatch_spec", "@every 1m")

	v.SetDefault("push.vapid_public_key", "")
	v.SetDefault("push.vapid_private_key", "")
	v.SetDefault("push.subscriber", "mailto:admin@nestcue.local")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.prefix", "nestcue:")

	p := reminder.DefaultPriorities()
	for name, s := range map[string]reminder.LevelScores{
		"supplement": p.Supplement,
		"work":       p.Work,
		"mood":       p.Mood,
		"plan":       p.Plan,
	} {
		v.SetDefault("priorities."+name+".gentle", s.Gentle)
		v.SetDefault("priorities."+name+".nudge", s.Nudge)
		v.SetDefault("priorities."+name+".urgent", s.Urgent)
	}
	v.SetDefault("priorities.tip", p.Tip)
	v.SetDefault("priorities.name", p.Name)
}

// Load reads configuration. An empty path skips the YAML file; a missing
// .env file is ignored.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/elo-tracker/app/observability"
)

// Store backends.
const (
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Config struct to hold the configuration settings
type Config struct {
	Discord       DiscordConfig       `yaml:"discord"`
	Riot          RiotConfig          `yaml:"riot"`
	Store         StoreConfig         `yaml:"store"`
	NATS          NATSConfig          `yaml:"nats"`
	Timeouts      TimeoutsConfig      `yaml:"timeouts"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// DiscordConfig holds Discord configuration.
type DiscordConfig struct {
	Token         string `yaml:"token"`
	CommandPrefix string `yaml:"command_prefix"`
}

// RiotConfig holds ranking API configuration.
type RiotConfig struct {
	APIKey        string  `yaml:"api_key"`
	BaseURL       string  `yaml:"base_url"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// StoreConfig selects and locates the tracked player store.
type StoreConfig struct {
	Backend            string `yaml:"backend"`
	DSN                string `yaml:"dsn"`
	FirestoreProjectID string `yaml:"firestore_project_id"`
	AutoMigrate        bool   `yaml:"auto_migrate"`
}

// NATSConfig holds NATS configuration. An empty URL keeps the bus in process.
// Subscribers is the number of queue subscriptions per topic.
type NATSConfig struct {
	URL         string `yaml:"url"`
	QueueGroup  string `yaml:"queue_group"`
	Subscribers int    `yaml:"subscribers"`
}

// TimeoutsConfig bounds individual external calls.
type TimeoutsConfig struct {
	Ranking time.Duration `yaml:"ranking"`
	Store   time.Duration `yaml:"store"`
	Roles   time.Duration `yaml:"roles"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// Defaults returns a Config with every optional value filled in.
func Defaults() Config {
	return Config{
		Discord: DiscordConfig{CommandPrefix: "!"},
		Riot: RiotConfig{
			BaseURL:       "https://br1.api.riotgames.com",
			RatePerSecond: 20,
			Burst:         20,
		},
		Store: StoreConfig{
			Backend: BackendPostgres,
		},
		NATS: NATSConfig{QueueGroup: "elo-tracker", Subscribers: 4},
		Timeouts: TimeoutsConfig{
			Ranking: 10 * time.Second,
			Store:   5 * time.Second,
			Roles:   10 * time.Second,
		},
		Observability: ObservabilityConfig{
			Environment: "production",
			LogLevel:    "info",
		},
	}
}

// LoadConfig loads and validates the configuration.
func LoadConfig(filename string) (*Config, error) {
	cfg, err := Load(filename)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a YAML file over Defaults, then applies environment overrides.
// A missing file means environment only. The result is not validated.
func Load(filename string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides cfg with any environment variables that are set.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("COMMAND_PREFIX"); v != "" {
		cfg.Discord.CommandPrefix = v
	}
	if v := os.Getenv("RIOT_API_KEY"); v != "" {
		cfg.Riot.APIKey = v
	}
	if v := os.Getenv("RIOT_BASE_URL"); v != "" {
		cfg.Riot.BaseURL = v
	}
	if v := os.Getenv("RIOT_RATE_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RIOT_RATE_PER_SECOND value: %w", err)
		}
		cfg.Riot.RatePerSecond = f
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("FIRESTORE_PROJECT_ID"); v != "" {
		cfg.Store.FirestoreProjectID = v
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		cfg.Store.AutoMigrate = v == "true"
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_SUBSCRIBERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NATS_SUBSCRIBERS value: %w", err)
		}
		cfg.NATS.Subscribers = n
	}
	if v := os.Getenv("CALL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CALL_TIMEOUT value: %w", err)
		}
		cfg.Timeouts = TimeoutsConfig{Ranking: d, Store: d, Roles: d}
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	return nil
}

// Validate reports every missing or inconsistent required value.
func (c *Config) Validate() error {
	var errs []error
	if c.Discord.Token == "" {
		errs = append(errs, errors.New("DISCORD_TOKEN is required"))
	}
	if c.Discord.CommandPrefix == "" {
		errs = append(errs, errors.New("command prefix cannot be empty"))
	}
	if c.Riot.APIKey == "" {
		errs = append(errs, errors.New("RIOT_API_KEY is required"))
	}
	if c.NATS.URL != "" && c.NATS.Subscribers < 1 {
		errs = append(errs, errors.New("nats subscribers must be at least 1"))
	}
	switch c.Store.Backend {
	case BackendPostgres, BackendSQLite:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required for the %s store", c.Store.Backend))
		}
	case BackendFirestore:
		if c.Store.FirestoreProjectID == "" {
			errs = append(errs, errors.New("FIRESTORE_PROJECT_ID is required for the firestore store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	return errors.Join(errs...)
}

// ToObsConfig maps the application config onto observability.Config.
func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName:    "elo-tracker",
		Environment:    appCfg.Observability.Environment,
		LogLevel:       appCfg.Observability.LogLevel,
		MetricsAddress: appCfg.Observability.MetricsAddress,
	}
}

// TriggerBudget bounds the external call time of one trigger.
func (t TimeoutsConfig) TriggerBudget() time.Duration {
	return 2*t.Ranking + 2*t.Store + 6*t.Roles
}

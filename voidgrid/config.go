package voidgrid

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	if err = toml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type Config struct {
	Log    LogConfig    `toml:"log"`
	API    APIConfig    `toml:"api"`
	DB     DBConfig     `toml:"db"`
	Redis  RedisConfig  `toml:"redis"`
	Spaces SpacesConfig `toml:"spaces"`
	Legacy LegacyConfig `toml:"legacy"`
	Engine EngineConfig `toml:"engine"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type APIConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	AllowOrigins string `toml:"allow_origins"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// LegacyConfig points at the retired service's Mongo database for one-shot
// account imports.
type LegacyConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

type SpacesConfig struct {
	Enabled      bool   `toml:"enabled"`
	Key          string `toml:"key"`
	Secret       string `toml:"secret"`
	Region       string `toml:"region"`
	Bucket       string `toml:"bucket"`
	SnapshotRoot string `toml:"snapshot_root"`
}

// EngineConfig carries every tunable of the progression engine. Nothing in
// the engine packages reads process-wide state; season-specific cap overrides
// are representable because each Season row stores its own caps at creation.
type EngineConfig struct {
	Score     ScoreConfig     `toml:"score"`
	Tiers     TierConfig      `toml:"tiers"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
	Burn      BurnConfig      `toml:"burn"`
	Season    SeasonConfig    `toml:"season"`
	Messages  MessageConfig   `toml:"messages"`
}

type ScoreConfig struct {
	// Multiplier applied to the current score per whole elapsed day.
	DecayRatePerDay float64 `toml:"decay_rate_per_day"`
	XPPerLevel      int64   `toml:"xp_per_level"`
}

// TierConfig is the ordered threshold table. Bronze is the implicit floor;
// its value is carried for completeness but never used as a lower bound.
type TierConfig struct {
	Bronze float64 `toml:"bronze"`
	Silver float64 `toml:"silver"`
	Gold   float64 `toml:"gold"`
	STier  float64 `toml:"s_tier"`
}

type RateLimitConfig struct {
	GlobalCap int `toml:"global_cap"`
	ZoneCap   int `toml:"zone_cap"`
	DMCap     int `toml:"dm_cap"`

	BronzeBoost float64 `toml:"bronze_boost"`
	SilverBoost float64 `toml:"silver_boost"`
	GoldBoost   float64 `toml:"gold_boost"`
	STierBoost  float64 `toml:"s_tier_boost"`

	FreshAccountDays    int     `toml:"fresh_account_days"`
	FreshAccountPenalty float64 `toml:"fresh_account_penalty"`

	MinHolding          float64 `toml:"min_holding"`
	HoldingsForMaxBoost float64 `toml:"holdings_for_max_boost"`
	MaxHoldingsBoost    float64 `toml:"max_holdings_boost"`
}

type BurnConfig struct {
	// Zone 2 starts at this fraction of the daily credit cap.
	HalfRateZoneStart float64 `toml:"half_rate_zone_start"`
	Zone1Rate         float64 `toml:"zone1_rate"`
	Zone2Rate         float64 `toml:"zone2_rate"`
	MiniAppCap        float64 `toml:"mini_app_cap"`
}

type SeasonConfig struct {
	DurationDays      int     `toml:"duration_days"`
	DailyCreditCap    float64 `toml:"daily_credit_cap"`
	SeasonalCreditCap float64 `toml:"seasonal_credit_cap"`
}

type MessageConfig struct {
	GlobalXP float64 `toml:"global_xp"`
	ZoneXP   float64 `toml:"zone_xp"`
	DMXP     float64 `toml:"dm_xp"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: slog.LevelInfo, Format: "text"},
		API: APIConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			AllowOrigins: "*",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "voidgrid",
			PoolSize: 10,
		},
		Engine: EngineConfig{
			Score: ScoreConfig{
				DecayRatePerDay: 0.98,
				XPPerLevel:      1000,
			},
			Tiers: TierConfig{
				Bronze: 100,
				Silver: 250,
				Gold:   600,
				STier:  1500,
			},
			RateLimit: RateLimitConfig{
				GlobalCap:           50,
				ZoneCap:             40,
				DMCap:               20,
				BronzeBoost:         1.0,
				SilverBoost:         1.2,
				GoldBoost:           1.5,
				STierBoost:          2.0,
				FreshAccountDays:    7,
				FreshAccountPenalty: 0.5,
				MinHolding:          100,
				HoldingsForMaxBoost: 10000,
				MaxHoldingsBoost:    2.0,
			},
			Burn: BurnConfig{
				HalfRateZoneStart: 0.5,
				Zone1Rate:         1.0,
				Zone2Rate:         0.5,
				MiniAppCap:        1.5,
			},
			Season: SeasonConfig{
				DurationDays:      90,
				DailyCreditCap:    6000,
				SeasonalCreditCap: 250000,
			},
			Messages: MessageConfig{
				GlobalXP: 10,
				ZoneXP:   5,
				DMXP:     2,
			},
		},
	}
}

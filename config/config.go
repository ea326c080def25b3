package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Sim      SimConfig      `mapstructure:"sim"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Security SecurityConfig `mapstructure:"security"`
	Script   ScriptConfig   `mapstructure:"script"`
}

type ServerConfig struct {
	Debug     bool `mapstructure:"debug"`
	DebugPort int  `mapstructure:"debug_port"` // 0 disables the inspector
}

type SimConfig struct {
	TickRate        int                  `mapstructure:"tick_rate"`
	Seed            int64                `mapstructure:"seed"` // 0 = time-seeded
	Scenario        string               `mapstructure:"scenario"`
	Duration        time.Duration        `mapstructure:"duration"` // 0 = until stopped
	SnapshotEvery   int                  `mapstructure:"snapshot_every"`
	DoubleBounce    bool                 `mapstructure:"double_bounce"`
	PhaseThresholds map[string][]float64 `mapstructure:"phase_thresholds"`
}

// DT is the fixed simulation step in seconds.
func (s SimConfig) DT() float64 {
	if s.TickRate <= 0 {
		return 1.0 / 60
	}
	return 1 / float64(s.TickRate)
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // none | sqlite | memory | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type SecurityConfig struct {
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	InspectorAllow []string `mapstructure:"inspector_allow"` // addresses or CIDRs; empty = anyone
}

type ScriptConfig struct {
	Timeout time.Duration `mapstructure:"timeout"` // per driver call
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.debug", false)
	v.SetDefault("server.debug_port", 0)
	v.SetDefault("sim.tick_rate", 60)
	v.SetDefault("sim.seed", 0)
	v.SetDefault("sim.scenario", "")
	v.SetDefault("sim.duration", "0s")
	v.SetDefault("sim.snapshot_every", 15)
	v.SetDefault("sim.double_bounce", false)
	v.SetDefault("database.mode", "none")
	v.SetDefault("database.sqlite_path", "./data/encounters.db")
	v.SetDefault("database.mysql_max_open", 10)
	v.SetDefault("database.mysql_max_idle", 2)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)
	v.SetDefault("security.inspector_allow", []string{"127.0.0.1", "::1"})
	v.SetDefault("script.timeout", "50ms")
}

// Load reads config from the given YAML file path. An empty path yields
// the defaults. BOSSARENA_* environment variables override file values,
// e.g. BOSSARENA_SIM_SEED=7.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("bossarena")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("config: sim.tick_rate must be positive, got %d", c.Sim.TickRate)
	}
	if c.Sim.SnapshotEvery <= 0 {
		c.Sim.SnapshotEvery = 1
	}
	switch c.Database.Mode {
	case "none", "sqlite", "memory", "mysql":
	default:
		return fmt.Errorf("config: unknown database.mode %q", c.Database.Mode)
	}
	for boss, th := range c.Sim.PhaseThresholds {
		for i, r := range th {
			if r <= 0 || r >= 1 {
				return fmt.Errorf("config: sim.phase_thresholds.%s[%d] = %v outside (0, 1)", boss, i, r)
			}
			if i > 0 && r >= th[i-1] {
				return fmt.Errorf("config: sim.phase_thresholds.%s must be strictly decreasing", boss)
			}
		}
	}
	return nil
}

package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Game     GameConfig     `mapstructure:"game"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	DataPath string `mapstructure:"data_path"` // directory holding items.json / locations.json seeds
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | memory | mysql
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

// GameConfig holds the numeric tuning knobs. Balancing is configuration,
// not code.
type GameConfig struct {
	CurrencyItem    string `mapstructure:"currency_item"`
	StartHealth     int    `mapstructure:"start_health"`
	StartXP         int    `mapstructure:"start_xp"`
	HealAmount      int    `mapstructure:"heal_amount"`
	HealthCapBoost  int    `mapstructure:"health_cap_boost"`
	WeaponBoost     int    `mapstructure:"weapon_boost"`
	ReviveHealth    int    `mapstructure:"revive_health"`
	DeathPenalty    int    `mapstructure:"death_penalty"`
	FightBonusDie   int    `mapstructure:"fight_bonus_die"`
	FightChanceMin  int    `mapstructure:"fight_chance_min"`
	FightChanceMax  int    `mapstructure:"fight_chance_max"`
	EventFeedSize   int    `mapstructure:"event_feed_size"`
	RankingRebuildS int    `mapstructure:"ranking_rebuild_s"`
}

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	AdminKeyHash   string        `mapstructure:"admin_key_hash"` // bcrypt hash; empty disables admin endpoints
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	AdminIPs       []string      `mapstructure:"admin_ips"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.data_path", "./data")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/game.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("game.currency_item", "lumins")
	v.SetDefault("game.start_health", 10)
	v.SetDefault("game.start_xp", 10)
	v.SetDefault("game.heal_amount", 5)
	v.SetDefault("game.health_cap_boost", 5)
	v.SetDefault("game.weapon_boost", 1)
	v.SetDefault("game.revive_health", 1)
	v.SetDefault("game.death_penalty", 50)
	v.SetDefault("game.fight_bonus_die", 10)
	v.SetDefault("game.fight_chance_min", 35)
	v.SetDefault("game.fight_chance_max", 90)
	v.SetDefault("game.event_feed_size", 200)
	v.SetDefault("game.ranking_rebuild_s", 300)
	v.SetDefault("security.session_ttl", "12h")
	v.SetDefault("security.rate_limit_rps", 100)
	v.SetDefault("security.rate_limit_burst", 200)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config 全局配置
type Config struct {
	Game        GameConfig        `yaml:"game"`
	Storage     StorageConfig     `yaml:"storage"`
	Redis       RedisConfig       `yaml:"redis"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Log         LogConfig         `yaml:"log"`
}

// 黑桃3首出规则
const (
	OpeningAlways     = "always"      // 每一局都要求
	OpeningFirstMatch = "first_match" // 只有房间的第一局要求
	OpeningNever      = "never"
)

// GameConfig 游戏配置
type GameConfig struct {
	BaseScore     int    `yaml:"base_score"`      // 底分
	OpeningRule   string `yaml:"opening_rule"`    // always | first_match | never
	AutoPlayLimit int    `yaml:"auto_play_limit"` // 一次托管最多执行的操作数
}

// RequireSpade3 第 matchIndex 局（从 0 开始）是否要求首出包含黑桃3
func (c *GameConfig) RequireSpade3(matchIndex int) bool {
	switch c.OpeningRule {
	case OpeningNever:
		return false
	case OpeningFirstMatch:
		return matchIndex == 0
	default:
		return true
	}
}

// 存储后端
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// StorageConfig 存储配置
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory | redis
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	ChannelPrefix string `yaml:"channel_prefix"` // 变更通知频道和 key 的前缀
}

// LeaderboardConfig 排行榜配置，只在 Redis 后端下生效
type LeaderboardConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `yaml:"level"`       // debug | info | warn | error
	Development bool   `yaml:"development"` // 开发模式输出易读格式
	File        string `yaml:"file"`        // 为空时输出到 stderr
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// 设置默认值
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	if c.Game.BaseScore == 0 {
		c.Game.BaseScore = 1
	}
	if c.Game.OpeningRule == "" {
		c.Game.OpeningRule = OpeningAlways
	}
	if c.Game.AutoPlayLimit == 0 {
		c.Game.AutoPlayLimit = 200
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.ChannelPrefix == "" {
		c.Redis.ChannelPrefix = "wudi:"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	if c.Game.BaseScore < 1 {
		return fmt.Errorf("game.base_score 必须为正数，实际为 %d", c.Game.BaseScore)
	}
	switch c.Game.OpeningRule {
	case OpeningAlways, OpeningFirstMatch, OpeningNever:
	default:
		return fmt.Errorf("未知的 game.opening_rule: %q", c.Game.OpeningRule)
	}
	if c.Game.AutoPlayLimit < 1 {
		return fmt.Errorf("game.auto_play_limit 必须为正数，实际为 %d", c.Game.AutoPlayLimit)
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("未知的 storage.backend: %q", c.Storage.Backend)
	}
	return nil
}

// ApplyEnv 用环境变量覆盖部分配置，变量不存在时保持原值
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("WUDI_STORAGE_BACKEND"); ok {
		c.Storage.Backend = v
	}
	if v, ok := os.LookupEnv("WUDI_REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("WUDI_REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := os.LookupEnv("WUDI_REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WUDI_REDIS_DB 不是整数: %w", err)
		}
		c.Redis.DB = db
	}
	if v, ok := os.LookupEnv("WUDI_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	return c.Validate()
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Game: GameConfig{
			BaseScore:     1,
			OpeningRule:   OpeningAlways,
			AutoPlayLimit: 200,
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
		},
		Redis: RedisConfig{
			Addr:          "localhost:6379",
			ChannelPrefix: "wudi:",
		},
		Leaderboard: LeaderboardConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

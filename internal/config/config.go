package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig              `mapstructure:"server"`    // 服务器配置
	Postgres  PostgresConfig            `mapstructure:"postgres"`  // PostgreSQL配置
	Sync      SyncConfig                `mapstructure:"sync"`      // 同步调度配置
	Analytics AnalyticsConfig           `mapstructure:"analytics"` // 页面访问统计配置
	Platforms map[string]PlatformConfig `mapstructure:"platforms"` // 多平台独立配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// PostgresConfig PostgreSQL数据库配置
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// SyncConfig 同步调度配置
type SyncConfig struct {
	Cron          string        `mapstructure:"cron"`           // 定时刷新Cron表达式
	MaxConcurrent int           `mapstructure:"max_concurrent"` // 单次同步最大并发抓取数
	StaleAfter    time.Duration `mapstructure:"stale_after"`    // 统计过期阈值（超过则定时任务重新同步）
	BatchLimit    int           `mapstructure:"batch_limit"`    // 定时任务单轮处理的连接数上限
}

// AnalyticsConfig 页面访问统计配置
type AnalyticsConfig struct {
	BufferSize    int           `mapstructure:"buffer_size"`    // 内存缓冲事件数
	FlushInterval time.Duration `mapstructure:"flush_interval"` // 批量落库间隔
}

// PlatformConfig 单个平台的独立配置
type PlatformConfig struct {
	BaseURL    string `mapstructure:"base_url"`    // API基础地址（覆盖内置默认值）
	Timeout    int    `mapstructure:"timeout"`     // 请求超时（秒）
	RetryCount int    `mapstructure:"retry_count"` // 重试次数
	AuthToken  string `mapstructure:"auth_token"`  // 可选认证Token（如GitHub PAT）
	Proxy      string `mapstructure:"proxy"`       // 代理地址
	UserAgent  string `mapstructure:"user_agent"`  // 抓取页面用的UA（默认浏览器UA）
	Disabled   bool   `mapstructure:"disabled"`    // 是否禁用该平台
}

// 超时兜底：平台未配置timeout时使用
const defaultPlatformTimeout = 15

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if g, ok := cfg.Platforms["github"]; ok {
		if v := os.Getenv("GITHUB_AUTH_TOKEN"); v != "" {
			g.AuthToken = v
		}
		if v := os.Getenv("GITHUB_PROXY"); v != "" {
			g.Proxy = v
		}
		cfg.Platforms["github"] = g
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
}

// applyDefaults 关键参数兜底，避免yaml漏配导致0值超时/0并发
func applyDefaults(cfg *Config) {
	if cfg.Sync.MaxConcurrent <= 0 {
		cfg.Sync.MaxConcurrent = 5
	}
	if cfg.Sync.StaleAfter <= 0 {
		cfg.Sync.StaleAfter = 24 * time.Hour
	}
	if cfg.Sync.BatchLimit <= 0 {
		cfg.Sync.BatchLimit = 200
	}
	if cfg.Analytics.BufferSize <= 0 {
		cfg.Analytics.BufferSize = 1024
	}
	if cfg.Analytics.FlushInterval <= 0 {
		cfg.Analytics.FlushInterval = 30 * time.Second
	}
	for name, p := range cfg.Platforms {
		if p.Timeout <= 0 {
			p.Timeout = defaultPlatformTimeout
			cfg.Platforms[name] = p
		}
	}
}

// PlatformOrDefault 获取平台配置；未配置的平台返回默认值（超时15秒、无代理）
func (c *Config) PlatformOrDefault(name string) PlatformConfig {
	if p, ok := c.Platforms[name]; ok {
		return p
	}
	return PlatformConfig{Timeout: defaultPlatformTimeout}
}

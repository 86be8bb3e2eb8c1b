// Package config 读取配置：默认值 < 配置文件 < SIMPLEREDIS_ 环境变量 < 命令行参数
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const EnvPrefix = "SIMPLEREDIS"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Addr        string        `mapstructure:"addr"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	ReadBuffer  int           `mapstructure:"read_buffer"`
	ConnRate    float64       `mapstructure:"conn_rate"`
	ConnBurst   int           `mapstructure:"conn_burst"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

type BackendConfig struct {
	Shards         int           `mapstructure:"shards"`
	ExpireInterval time.Duration `mapstructure:"expire_interval"`
	ExpireSample   int           `mapstructure:"expire_sample"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":6379")
	v.SetDefault("server.metrics_addr", "")
	v.SetDefault("server.read_buffer", 4096)
	v.SetDefault("server.conn_rate", 0)
	v.SetDefault("server.conn_burst", 16)
	v.SetDefault("server.idle_timeout", 0)

	v.SetDefault("backend.shards", 1024)
	v.SetDefault("backend.expire_interval", time.Second)
	v.SetDefault("backend.expire_sample", 20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.max_backups", 10)
	v.SetDefault("log.compress", true)
}

// New 返回设置好默认值和环境变量映射的 viper 实例
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile 读取配置文件，格式由扩展名决定；path 为空时跳过
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidConfig)
	case c.Server.ReadBuffer <= 0:
		return fmt.Errorf("%w: server.read_buffer must be positive", ErrInvalidConfig)
	case c.Server.ConnRate < 0:
		return fmt.Errorf("%w: server.conn_rate must not be negative", ErrInvalidConfig)
	case c.Server.ConnRate > 0 && c.Server.ConnBurst <= 0:
		return fmt.Errorf("%w: server.conn_burst must be positive when conn_rate is set", ErrInvalidConfig)
	case c.Server.IdleTimeout < 0:
		return fmt.Errorf("%w: server.idle_timeout must not be negative", ErrInvalidConfig)
	case c.Backend.Shards <= 0 || c.Backend.Shards&(c.Backend.Shards-1) != 0:
		return fmt.Errorf("%w: backend.shards must be a power of two", ErrInvalidConfig)
	case c.Backend.ExpireInterval <= 0:
		return fmt.Errorf("%w: backend.expire_interval must be positive", ErrInvalidConfig)
	case c.Backend.ExpireSample <= 0:
		return fmt.Errorf("%w: backend.expire_sample must be positive", ErrInvalidConfig)
	}
	return nil
}

// Watch 配置文件变化时重新加载并回调；加载失败时 cfg 为 nil
func Watch(v *viper.Viper, onChange func(cfg *Config, err error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		onChange(Load(v))
	})
	v.WatchConfig()
}

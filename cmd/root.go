package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"simpleredis/internal/config"
	"simpleredis/internal/logger"
)

var (
	cfgFile string
	vp      = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "simpleredis",
	Short: "A Redis-like server speaking RESP2/RESP3",
	Long:  "simpleredis is an in-memory key-value server compatible with the Redis serialization protocol.",

	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.ReadFile(vp, cfgFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json, toml ...)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	_ = vp.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// loadConfig 读取最终配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(vp)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(loggerConfig(cfg.Log)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loggerConfig(c config.LogConfig) *logger.Config {
	return &logger.Config{
		Level:      c.Level,
		FileName:   c.File,
		MaxSize:    c.MaxSize,
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

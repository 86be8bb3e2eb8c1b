package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"simpleredis/internal/backend"
	"simpleredis/internal/config"
	"simpleredis/internal/logger"
	"simpleredis/internal/server"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func init() {
	flags := runCmd.Flags()
	flags.String("addr", ":6379", "server listen address")
	flags.String("metrics-addr", "", "prometheus /metrics listen address, empty to disable")
	flags.Float64("conn-rate", 0, "new connections per second allowed per client IP, 0 for unlimited")
	flags.Duration("idle-timeout", 0, "close connections idle for this long, 0 to disable")

	_ = vp.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = vp.BindPFlag("server.metrics_addr", flags.Lookup("metrics-addr"))
	_ = vp.BindPFlag("server.conn_rate", flags.Lookup("conn-rate"))
	_ = vp.BindPFlag("server.idle_timeout", flags.Lookup("idle-timeout"))

	rootCmd.AddCommand(runCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	b := backend.New(backend.Options{
		Shards:         cfg.Backend.Shards,
		ExpireInterval: cfg.Backend.ExpireInterval,
		ExpireSample:   cfg.Backend.ExpireSample,
		OnExec:         server.RecordCommand,
	})
	b.Start(ctx)
	defer b.Close()

	if cfgFile != "" {
		config.Watch(vp, func(newCfg *config.Config, err error) {
			if err != nil {
				logger.Warn("reload config failed", zap.Error(err))
				return
			}
			if err := logger.SetLevel(newCfg.Log.Level); err != nil {
				logger.Warn("apply log level failed", zap.Error(err))
				return
			}
			logger.Info("config reloaded", zap.String("log_level", newCfg.Log.Level))
		})
	}

	srv := server.New(serverConfig(cfg.Server), b)
	return srv.ListenAndServe(ctx)
}

func serverConfig(c config.ServerConfig) server.Config {
	return server.Config{
		Addr:           c.Addr,
		MetricsAddr:    c.MetricsAddr,
		ReadBufferSize: c.ReadBuffer,
		ConnRate:       c.ConnRate,
		ConnBurst:      c.ConnBurst,
		IdleTimeout:    c.IdleTimeout,
	}
}

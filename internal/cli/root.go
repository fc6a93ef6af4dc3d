package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pgvanniekerk/ezpool/internal/config"
	"github.com/pgvanniekerk/ezpool/internal/server"
	"github.com/pgvanniekerk/ezpool/pkg/threadpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		log.Errorf("Error executing command: %v", err)
		stop()
		os.Exit(1)
	}
}

// NewRootCommand builds the ezpool command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ezpool",
		Short:         "A tiny HTTP server backed by a fixed-size thread pool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCommand(viper.New()))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ezpool version %s\n", Version)
		},
	}
}

func newServeCommand(v *viper.Viper) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve HTTP requests, one thread pool job per connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	def := config.New()
	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "Config file (YAML, JSON or TOML)")
	flags.String("addr", def.Server.Addr, "Address to listen on")
	flags.Uint("workers", def.Pool.Workers, "Number of pool workers")
	flags.String("metrics-addr", def.Server.MetricsAddr, "Address to serve Prometheus metrics on (disabled when empty)")
	flags.Duration("sleep-delay", def.Server.SleepDelay, "Delay applied by GET /sleep")
	flags.Int64("max-pending", def.Server.MaxPending, "Connections accepted but not yet answered before accept waits")
	flags.String("log-level", def.LogLevel, "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", def.LogFormat, "Log format (text, json)")

	for key, name := range map[string]string{
		"server.addr":         "addr",
		"pool.workers":        "workers",
		"server.metrics_addr": "metrics-addr",
		"server.sleep_delay":  "sleep-delay",
		"server.max_pending":  "max-pending",
		"log_level":           "log-level",
		"log_format":          "log-format",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	return cmd
}

// serve runs the server described by cfg until ctx is canceled, then shuts
// the pool down.
func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := threadpool.NewMetrics(reg, "ezpool")
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	pool, err := threadpool.Build(cfg.Pool.Workers,
		threadpool.WithName(cfg.Pool.Name),
		threadpool.WithLogger(logger),
		threadpool.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	// Queued connections are still answered before Close returns.
	defer pool.Close()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := server.New(server.Config{
		SleepDelay:  cfg.Server.SleepDelay,
		MaxPending:  cfg.Server.MaxPending,
		ReadTimeout: cfg.Server.ReadTimeout,
		MetricsAddr: cfg.Server.MetricsAddr,
		Gatherer:    reg,
	}, pool, logger)

	logger.WithField("workers", pool.Size()).Info("ezpool starting")

	if err := srv.Serve(ctx, ln); err != nil {
		return err
	}

	logger.Info("Received shutdown signal, draining pool")
	return nil
}

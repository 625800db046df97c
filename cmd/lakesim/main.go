package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tidelake/lakeacl/internal/lakesim"
	"github.com/tidelake/lakeacl/internal/utils"
	"github.com/tidelake/lakeacl/internal/version"
)

func main() {
	var bind string
	var dbPath string
	var seedPath string
	var authSecret string
	var rate string
	var tokenTTL time.Duration
	var hsts bool

	// Setup logger
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Local overrides, same shape as production env.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	// Setup root context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rootCmd = &cobra.Command{
		Use:     "lakesim",
		Short:   "Local Tidelake lake-store emulator",
		Version: version.Detailed(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if authSecret == "" {
				authSecret = os.Getenv("LAKESIM_AUTH_SECRET")
			}

			var err error
			if dbPath != "" {
				if dbPath, err = utils.ResolvePath(dbPath); err != nil {
					return err
				}
			}
			if seedPath != "" {
				if seedPath, err = utils.ResolvePath(seedPath); err != nil {
					return err
				}
			}

			config := &lakesim.Config{
				Bind:       bind,
				DBPath:     dbPath,
				AuthSecret: authSecret,
				TokenTTL:   tokenTTL,
				Rate:       rate,
				SeedPath:   seedPath,
				EnableHSTS: hsts,
			}
			s, err := lakesim.New(config)
			if err != nil {
				return err
			}
			defer slog.Info("Bye!")
			return s.Start(cmd.Context())
		},
	}

	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringVarP(&bind, "bind", "b", lakesim.DefaultBind, "Address to bind the server")
	rootCmd.Flags().StringVarP(&dbPath, "db", "d", "", "Path to the sqlite database (defaults to in-memory)")
	rootCmd.Flags().StringVarP(&seedPath, "seed", "f", "", "YAML fixture to seed accounts and namespaces from")
	rootCmd.Flags().StringVarP(&authSecret, "auth-secret", "k", "", "JWT signing secret (or LAKESIM_AUTH_SECRET)")
	rootCmd.Flags().StringVarP(&rate, "rate", "r", lakesim.DefaultRate, "Rate limit in limiter format")
	rootCmd.Flags().DurationVarP(&tokenTTL, "token-ttl", "t", lakesim.DefaultTokenTTL, "Access token lifetime")
	rootCmd.Flags().BoolVar(&hsts, "hsts", false, "Send HSTS headers (only behind TLS)")

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

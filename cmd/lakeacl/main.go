package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tidelake/lakeacl/internal/config"
	"github.com/tidelake/lakeacl/internal/lake"
	"github.com/tidelake/lakeacl/internal/lakesdk"
	"github.com/tidelake/lakeacl/internal/revoke"
	"github.com/tidelake/lakeacl/internal/session"
	"github.com/tidelake/lakeacl/internal/tasks"
	"github.com/tidelake/lakeacl/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
)

var rootCmd = &cobra.Command{
	Use:     "lakeacl",
	Short:   "Revoke a principal's ACL entries across a Tidelake lake-store account",
	Version: version.Detailed(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runRevoke(cmd, cfg)
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("account", "a", "", "Tidelake analytics account")
	rootCmd.Flags().StringP("entity", "e", "", "id of the user or group losing access")
	rootCmd.Flags().StringP("entity-type", "t", "user", "entity type: user or group")
	rootCmd.Flags().Bool("full", false, "sweep the whole job-service tree inline instead of fast paths first")
	rootCmd.Flags().IntP("workers", "w", tasks.DefaultWorkers, "concurrent removal workers")
	rootCmd.Flags().StringArrayP("exclude", "x", nil, "glob of store paths to leave alone (repeatable)")
	rootCmd.Flags().Bool("dry-run", false, "walk and report, remove nothing")
	rootCmd.Flags().StringP("server", "s", config.DefaultServerURL, "Tidelake server URL")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "lakeacl config file")
}

func main() {
	level := slog.LevelInfo
	if os.Getenv("LAKEACL_DEBUG") != "" {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	slog.SetDefault(slog.New(handler))

	// Setup root context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runRevoke(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	entityID, _ := cmd.Flags().GetString("entity")
	entityTypeRaw, _ := cmd.Flags().GetString("entity-type")
	entityType, err := lake.ParseEntityType(entityTypeRaw)
	if err != nil {
		return err
	}
	entity := lake.Entity{ID: entityID, Type: entityType}
	if err := entity.Validate(); err != nil {
		return err
	}

	full, _ := cmd.Flags().GetBool("full")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	workers, _ := cmd.Flags().GetInt("workers")
	excludes, _ := cmd.Flags().GetStringArray("exclude")

	// Inputs are good; anything past this point is not a usage error.
	cmd.SilenceUsage = true
	showHeader()

	ctx := cmd.Context()
	sess, err := session.Ensure(ctx, &session.Options{
		Endpoint: cfg.ServerURL,
		Account:  cfg.Account,
		Key:      cfg.AccessKey,
	})
	if err != nil {
		return err
	}
	slog.Info("session ready", "principal", sess.Principal, "expires", sess.ExpiresAt.Format(time.RFC3339))

	client, err := lakesdk.New(sess.Endpoint, lakesdk.WithToken(sess.AccessToken))
	if err != nil {
		return err
	}

	pool := tasks.NewPool(tasks.Options{Workers: workers})
	if err := pool.Start(ctx); err != nil {
		return err
	}
	defer pool.Stop()

	revoker, err := revoke.New(sess, revoke.NewLake(client), pool, revoke.Options{
		Entity:   entity,
		Excludes: excludes,
		DryRun:   dryRun,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	if full {
		fmt.Printf("Sweeping all ACL entries for %s from %s\n",
			cyan.Render(entity.String()), cyan.Render(cfg.Account))
		err = revoker.RevokeFull(ctx)
	} else {
		fmt.Printf("Revoking %s from %s\n",
			cyan.Render(entity.String()), cyan.Render(cfg.Account))
		var sweep *tasks.Task
		if sweep, err = revoker.Revoke(ctx); err == nil {
			fmt.Println(gray.Render("Well-known paths cleared. Waiting for the background sweep..."))
			err = sweep.Wait(ctx)
		}
	}

	stats := revoker.Stats()
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		fmt.Printf("%s %s (%s)\n", red.Render("FAILED"), stats, elapsed)
		return err
	}

	fmt.Printf("%s %s (%s)\n", green.Render("Done."), stats, elapsed)
	return nil
}

// loadConfig resolves the effective config: flags > env (LAKEACL_*) >
// config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".lakeacl"))
		viper.AddConfigPath(filepath.Join(home, ".config", "lakeacl"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return nil, fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	// Bind flags to viper
	viper.BindPFlag("account", cmd.Flags().Lookup("account"))
	viper.BindPFlag("server_url", cmd.Flags().Lookup("server"))

	// Set up environment variables
	viper.SetEnvPrefix("LAKEACL")
	viper.AutomaticEnv()

	return &config.Config{
		Path:      viper.ConfigFileUsed(),
		Account:   viper.GetString("account"),
		ServerURL: viper.GetString("server_url"),
		AccessKey: viper.GetString("access_key"),
	}, nil
}

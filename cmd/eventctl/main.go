// Command eventctl is the organiser's console for a live donation event:
// inspecting roles, resetting between events, exporting and checking totals.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sindhuth/donation-ocr-app/internal/adapter/repo"
	"github.com/sindhuth/donation-ocr-app/internal/config"
	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/events"
	"github.com/sindhuth/donation-ocr-app/internal/infra"
)

var (
	envFile   string
	eventFile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "eventctl",
	Short: "Manage a live donation event",
	Long: `Organiser tools for the live donation tracker.

Available subcommands:
  roles   - Show which sessions hold the admin, editor and uploader slots
  reset   - Start a new event (clears donations and roles)
  export  - Write CSV, XLSX and a zip of both to a directory
  summary - Print the running total against the goal`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file to load")
	rootCmd.PersistentFlags().StringVar(&eventFile, "event", "", "Event config file (overrides EVENT_CONFIG_PATH)")

	resetCmd.Flags().BoolVar(&resetRolesOnly, "roles-only", false, "Only release the role slots")
	resetCmd.Flags().BoolVar(&resetDonationsOnly, "donations-only", false, "Only delete donations")
	resetCmd.MarkFlagsMutuallyExclusive("roles-only", "donations-only")
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", "exports", "Directory to write exports into")

	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(summaryCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is everything a subcommand needs, opened once per invocation.
type env struct {
	cfg       *infra.Config
	logger    zerolog.Logger
	store     domain.Store
	publisher events.Publisher
	closers   []func() error
}

func openEnv(ctx context.Context) (*env, error) {
	if _, err := config.LoadEnv(envFile); err != nil {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}
	if eventFile != "" {
		if err := os.Setenv("EVENT_CONFIG_PATH", eventFile); err != nil {
			return nil, err
		}
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := infra.Component(infra.NewLogger(cfg.AppEnv), "eventctl")

	store, err := repo.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	e := &env{cfg: cfg, logger: logger, store: store, publisher: events.Nop{}}
	e.closers = append(e.closers, store.Close)

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		// Running screens fall back to polling, so a missing broker is not fatal here.
		logger.Warn().Err(err).Msg("redis unavailable; live screens will not be notified")
	} else if rdb != nil {
		e.publisher = events.NewRedisPublisher(rdb, events.DefaultChannel)
		e.closers = append(e.closers, rdb.Close)
	}
	return e, nil
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

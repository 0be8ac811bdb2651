package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sindhuth/donation-ocr-app/internal/aggregate"
	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/events"
	"github.com/sindhuth/donation-ocr-app/internal/export"
	"github.com/sindhuth/donation-ocr-app/internal/lifecycle"
	"github.com/sindhuth/donation-ocr-app/internal/storage"
)

var (
	resetRolesOnly     bool
	resetDonationsOnly bool
	exportDir          string
)

// rolesCmd prints the current role assignment
var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Show the current role assignment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		ra, err := e.store.GetRoles(cmd.Context())
		if err != nil {
			return fmt.Errorf("load roles: %w", err)
		}
		printRoles(cmd.OutOrStdout(), ra)
		return nil
	},
}

// resetCmd starts a new event
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a new event",
	Long: `Clear donations and release every role so the next visitor becomes admin.

Use --roles-only to hand the admin and editor slots to new sessions while
keeping the donations, or --donations-only to empty the board but keep roles.
Running servers are notified when REDIS_URL is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		switch {
		case resetRolesOnly:
			if err := e.store.ClearRoles(ctx); err != nil {
				return fmt.Errorf("clear roles: %w", err)
			}
			notifyReset(cmd, e)
			fmt.Fprintln(cmd.OutOrStdout(), "roles released")
		case resetDonationsOnly:
			if err := e.store.ClearAll(ctx); err != nil {
				return fmt.Errorf("clear donations: %w", err)
			}
			notifyReset(cmd, e)
			fmt.Fprintln(cmd.OutOrStdout(), "donations cleared")
		default:
			svc := lifecycle.NewService(e.store, e.logger, lifecycle.WithPublisher(e.publisher))
			if err := svc.NewEvent(ctx); err != nil {
				return fmt.Errorf("reset event: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "new event started")
		}
		return nil
	},
}

// exportCmd writes every export format to disk
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write confirmed donations as CSV, XLSX and zip",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		items, err := e.store.ListConfirmed(ctx, domain.OldestFirst)
		if err != nil {
			return fmt.Errorf("load donations: %w", err)
		}
		arts, err := export.Bundle(export.Rows(items, e.cfg.Event.CurrencySymbol, time.Local), time.Now())
		if err != nil {
			return err
		}
		fs, err := storage.NewFileStore(exportDir)
		if err != nil {
			return err
		}
		for _, art := range arts {
			path, err := fs.Save(ctx, art.Name, art.Data)
			if err != nil {
				return fmt.Errorf("save %s: %w", art.Name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.ToSlash(path))
		}
		e.logger.Info().Int("donations", len(items)).Str("dir", fs.BasePath()).Msg("export written")
		return nil
	},
}

// summaryCmd prints the dashboard numbers
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the running total against the goal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		sum, err := aggregate.NewView(e.store).Summary(cmd.Context(), e.cfg.Event.Goal)
		if err != nil {
			return err
		}
		money := aggregate.NewMoney(e.cfg.Event.CurrencySymbol, e.cfg.Event.Locale)
		printSummary(cmd.OutOrStdout(), e.cfg.Event.Title, money, sum)
		return nil
	},
}

func notifyReset(cmd *cobra.Command, e *env) {
	err := e.publisher.Publish(cmd.Context(), events.Event{Kind: events.EventReset, At: time.Now().UTC()})
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to notify running servers")
	}
}

func printRoles(w io.Writer, ra domain.RoleAssignment) {
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleEditor} {
		holder, ok := ra.Holder(role)
		if !ok {
			holder = "(open)"
		}
		fmt.Fprintf(w, "%-8s %s\n", role, holder)
	}
}

func printSummary(w io.Writer, title string, money aggregate.Money, sum aggregate.Summary) {
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "raised    %s of %s (%s)\n", money.Format(sum.Total), money.Format(sum.Goal), money.Percent(sum.Progress))
	fmt.Fprintf(w, "donations %d\n", sum.Count)
	if sum.GoalReached {
		fmt.Fprintln(w, "goal reached")
	} else {
		fmt.Fprintf(w, "remaining %s\n", money.Format(sum.Remaining))
	}
	if sum.Latest != nil {
		fmt.Fprintf(w, "latest    %s %s\n", sum.Latest.Name, sum.Latest.Amount)
	}
}

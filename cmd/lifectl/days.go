package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"lifeledger/internal/backend"
	"lifeledger/internal/core"
	"lifeledger/internal/services"
)

func daysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "days",
		Short: "Print the reconciled day index",
		Long: `Read every source for a window, merge the external calendar, drop duplicates
and print one line per event grouped by day.`,
		RunE: runDays,
	}
	cmd.Flags().String("from", "", "first date (YYYY-MM-DD); defaults to today minus the window")
	cmd.Flags().String("to", "", "last date (YYYY-MM-DD); defaults to today plus the window")
	cmd.Flags().String("filters", "", "comma separated categories (ceremony,todo,schedule,expense)")
	cmd.Flags().String("user", "", "user id; defaults to DEFAULT_USER_ID")
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func parseWindow(from, to string, now time.Time, months int) (core.Window, error) {
	w := core.DefaultWindow(core.NewDate(now.Year(), int(now.Month()), now.Day()), months)
	if from != "" {
		d, err := core.ParseDate(from)
		if err != nil {
			return core.Window{}, fmt.Errorf("--from: %w", err)
		}
		w.From = d
	}
	if to != "" {
		d, err := core.ParseDate(to)
		if err != nil {
			return core.Window{}, fmt.Errorf("--to: %w", err)
		}
		w.To = d
	}
	if w.To.Before(w.From.Time) {
		return core.Window{}, fmt.Errorf("%w: --to before --from", core.ErrInvalidDate)
	}
	return w, nil
}

func runDays(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	user, err := userFlag(cmd)
	if err != nil {
		return err
	}
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	rawFilters, _ := cmd.Flags().GetString("filters")
	asJSON, _ := cmd.Flags().GetBool("json")

	win, err := parseWindow(from, to, time.Now().In(cfg.Location()), cfg.ExternalWindowMonths)
	if err != nil {
		return err
	}
	filters, err := core.ParseFilters(rawFilters)
	if err != nil {
		return err
	}

	be, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = be.Cleanup() }()

	provider, _, err := backend.NewCalendarProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	view, err := services.NewCalendarService(be.Store, provider, logger).DayView(ctx, user, win, filters)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view.Index)
	}
	return printDays(view)
}

func printDays(view *services.DayView) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DATE\tTIME\tCATEGORY\tNAME\tAMOUNT\tSOURCE\n")
	for _, date := range view.Index.Dates() {
		for _, e := range view.Index.Day(date).Events {
			amount := ""
			if e.Amount != 0 {
				amount = core.FormatWon(e.SignedAmount())
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", date, e.StartTime, e.Category, e.Name, amount, e.Source)
		}
		if t, ok := view.Index.Totals[date]; ok {
			fmt.Fprintf(w, "%s\t\ttotal\t\t%s\t\n", date, core.FormatWon(t.Net()))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s := view.Stats
	fmt.Printf("\n%d internal, %d external, %d skipped, %d duplicates suppressed\n",
		s.Internal, s.External, s.Skipped, s.Suppressed)
	if view.ExternalError != nil {
		fmt.Printf("external calendar unavailable: %v\n", view.ExternalError)
	}
	return nil
}

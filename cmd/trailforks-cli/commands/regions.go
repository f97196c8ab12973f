package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
	"trailforks-scraper/lib/trailforks/region"
	"trailforks-scraper/lib/trailforks/tferrors"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	regionsCmd.AddCommand(syncCmd, lookupCmd)
	rootCmd.AddCommand(regionsCmd)
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Manages the local region db used to resolve region aliases.",
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Downloads every trailforks region into the local region db.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		pw := progress.NewWriter()
		pw.SetOutputWriter(os.Stderr)
		pw.SetTrackerLength(30)
		pw.SetUpdateFrequency(time.Millisecond * 200)
		pw.Style().Visibility.ETA = true
		tracker := &progress.Tracker{
			Message: "fetching regions",
			Total:   int64(region.RegionPages()),
			Units:   progress.UnitsDefault,
		}
		pw.AppendTracker(tracker)
		go pw.Render()

		regions, err := s.regions().AllRegions(cmd.Context(), func(page, rows int) {
			tracker.Increment(1)
		})
		if err != nil {
			tracker.MarkAsErrored()
		} else {
			tracker.MarkAsDone()
		}
		for pw.IsRenderInProgress() && pw.LengthActive() > 0 {
			time.Sleep(time.Millisecond * 50)
		}
		pw.Stop()
		if err != nil {
			return err
		}

		written, err := s.store.Import(cmd.Context(), regions)
		if err != nil {
			return err
		}
		slog.Info("synced regions", "fetched", len(regions), "written", written, "db", s.cfg.RegionDb)
		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <alias>",
	Short: "Prints the region db entry of an alias, or similar aliases when it has none.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.store.Region(cmd.Context(), args[0])
		if errors.Is(err, tferrors.ErrLookup) {
			return lookupMiss(cmd.Context(), s.store, args[0], err)
		}
		if err != nil {
			return err
		}
		return render(
			table.Row{"rid", "alias", "title"},
			[]table.Row{{r.ID, r.Alias, r.Title}},
		)
	},
}

type suggester interface {
	Suggest(ctx context.Context, alias string, n int) ([]string, error)
}

// lookupMiss prints the aliases close to `alias` and returns the lookup
// error, joined with anything that failed on the way.
func lookupMiss(ctx context.Context, store suggester, alias string, lookupErr error) error {
	suggestions, err := store.Suggest(ctx, alias, region.SuggestionCount)
	if err != nil {
		return errors.Join(lookupErr, err)
	}
	if len(suggestions) == 0 {
		return lookupErr
	}
	fmt.Fprintln(os.Stderr, "similar aliases:")
	err = renderList("alias", suggestions)
	if err != nil {
		return errors.Join(lookupErr, err)
	}
	return lookupErr
}

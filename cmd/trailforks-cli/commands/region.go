package commands

import (
	"fmt"
	"time"
	"trailforks-scraper/lib/trailforks/region"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var ridelogPages int

func init() {
	ridelogsCmd.Flags().IntVar(&ridelogPages, "pages", 1, "The amount of pages (100 rides each) to fetch.")

	regionCmd.AddCommand(checkCmd, idCmd, infoCmd, rideCountsCmd, trailsCmd, ridelogsCmd)
	rootCmd.AddCommand(regionCmd)
}

var regionCmd = &cobra.Command{
	Use:   "region",
	Short: "Operations on a single region, given by its alias (the name in its url).",
}

var checkCmd = &cobra.Command{
	Use:   "check <alias>",
	Short: "Checks that a region exists.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		err = s.regions().CheckRegion(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "%s is a valid trailforks region\n", args[0])
		return nil
	},
}

var idCmd = &cobra.Command{
	Use:   "id <alias>",
	Short: "Looks up the numeric id of a region in the local region db.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.regions().RegionIDByAlias(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(output, id)
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <alias>",
	Short: "Prints the metrics of a region.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		info, err := s.regions().RegionInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return renderPairs([][2]any{
			{"region_title", info.RegionTitle},
			{"total_ridelogs", info.TotalRidelogs},
			{"total_trails", info.TotalTrails},
			{"total_distance", fmt.Sprintf("%.2f mi", info.TotalDistance)},
			{"total_descent", fmt.Sprintf("%.2f mi", info.TotalDescent)},
			{"highest_trailhead", fmt.Sprintf("%.2f mi", info.HighestTrailhead)},
			{"reports", info.Reports},
			{"photos", info.Photos},
			{"ridden", info.Ridden},
			{"country", info.Country},
			{"state_province", info.StateProvince},
			{"city", info.City},
			{"links", info.Links},
			{"favorites", info.Favorites},
			{"rating", info.Rating},
			{"region_created", time.Unix(info.RegionCreated, 0).UTC().Format(time.DateOnly)},
		})
	},
}

var rideCountsCmd = &cobra.Command{
	Use:   "ridecounts <alias>",
	Short: "Prints the amount of rides per day in a region, latest day first.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		counts, err := s.regions().RideCounts(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		rows := make([]table.Row, len(counts))
		for i, c := range counts {
			rows[i] = table.Row{c.Date, c.Rides, c.Year, c.Month, c.Day, c.WeekdayNum, c.Weekday, c.MonthName}
		}
		return render(
			table.Row{"date", "rides", "year", "month", "day", "weekday_num", "weekday", "month_name"},
			rows,
		)
	},
}

var trailsCmd = &cobra.Command{
	Use:   "trails <alias>",
	Short: "Prints the trails of a region.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		trails, err := s.regions().Trails(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		columns := region.TrailColumns(trails)
		header := make(table.Row, len(columns))
		for i, c := range columns {
			header[i] = c
		}
		rows := make([]table.Row, len(trails))
		for i, t := range trails {
			record := t.Record()
			row := make(table.Row, len(columns))
			for j, c := range columns {
				row[j] = record[c]
			}
			rows[i] = row
		}
		return render(header, rows)
	},
}

var ridelogsCmd = &cobra.Command{
	Use:   "ridelogs <alias> [--pages <n>]",
	Short: "Prints the latest ride logs of a region.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		logs, err := s.regions().Ridelogs(cmd.Context(), args[0], ridelogPages)
		if err != nil {
			return err
		}
		rows := make([]table.Row, len(logs))
		for i, l := range logs {
			rows[i] = table.Row{l.Date, l.Username, l.LocationName, l.LocationID, l.DeviceName, l.Year, l.Note, l.Created}
		}
		return render(
			table.Row{"date", "username", "location_name", "location_id", "device_name", "year", "note", "created"},
			rows,
		)
	},
}

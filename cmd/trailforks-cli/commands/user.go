package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var showRideIds bool

func init() {
	userRidelogsCmd.Flags().BoolVar(&showRideIds, "ids", false, "Print the ride ids instead of the ride log table.")

	userCmd.AddCommand(userInfoCmd, userRidelogsCmd, userGearCmd, userRescanCmd)
	rootCmd.AddCommand(userCmd)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Operations on the profile of the configured user.",
}

var userInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Prints the location and recent ride locations of the user.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		profile, err := s.user().UserInfo(cmd.Context())
		if err != nil {
			return err
		}
		return renderPairs([][2]any{
			{"username", profile.Username},
			{"profile_link", profile.ProfileLink},
			{"city", profile.City},
			{"state", profile.State},
			{"country", profile.Country},
			{"recent_ride_locations", strings.Join(profile.RecentRideLocations, "; ")},
		})
	},
}

var userRidelogsCmd = &cobra.Command{
	Use:   "ridelogs [--ids]",
	Short: "Prints the ride log table of the user.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		logs, err := s.user().UserRidelogs(cmd.Context())
		if err != nil {
			return err
		}
		if showRideIds {
			return renderList("ride_id", logs.RideIDs)
		}

		header := make(table.Row, len(logs.Table.Columns))
		for i, c := range logs.Table.Columns {
			header[i] = c
		}
		rows := make([]table.Row, len(logs.Table.Rows))
		for i, r := range logs.Table.Rows {
			row := make(table.Row, len(r))
			for j, cell := range r {
				row[j] = cell
			}
			rows[i] = row
		}
		return render(header, rows)
	},
}

var userGearCmd = &cobra.Command{
	Use:   "gear",
	Short: "Prints the bikes of the user, requires username and password.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		err = s.login(cmd.Context())
		if err != nil {
			return err
		}
		gear, err := s.user().UserGear(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([]table.Row, len(gear))
		for i, g := range gear {
			rows[i] = table.Row{g.Brand, g.Model}
		}
		return render(table.Row{"brand", "model"}, rows)
	},
}

var userRescanCmd = &cobra.Command{
	Use:   "rescan [ride ids...]",
	Short: "Rescans rides for badges, every ride of the ride log when no ids are given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		err = s.login(cmd.Context())
		if err != nil {
			return err
		}

		client := s.user()
		ids := args
		if len(ids) == 0 {
			logs, err := client.UserRidelogs(cmd.Context())
			if err != nil {
				return err
			}
			ids = logs.RideIDs
		}

		slog.Info("rescanning rides", "count", len(ids))
		ok, err := client.RescanRidelogsForBadges(cmd.Context(), ids)
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "rescanned %d rides: %v\n", len(ids), ok)
		return nil
	},
}

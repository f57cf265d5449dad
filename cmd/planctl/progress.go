package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Overland-East-Bay/trip-budget-api/internal/adapters/sqlite/statsrepo"
	"github.com/Overland-East-Bay/trip-budget-api/internal/app/gamification"
	"github.com/Overland-East-Bay/trip-budget-api/internal/cli"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

// openProgress opens the local stats database; the caller closes it via the returned func.
func (a *app) openProgress(cmd *cobra.Command) (*gamification.Service, func(), error) {
	repo, err := statsrepo.Open(a.dbPath)
	if err != nil {
		return nil, nil, err
	}
	svc := gamification.NewService(repo, gamification.NewEngine(gamification.DefaultCatalog(), a.clock), a.logger(cmd))
	return svc, func() { _ = repo.Close() }, nil
}

func newProgressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show rank, badges, achievements and challenges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeDB, err := a.openProgress(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			p, err := svc.Progress(cmd.Context(), domain.UserID(a.user))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderTitle("TRAVEL PROGRESS  "+a.user))
			fmt.Fprintln(out)
			fmt.Fprint(out, cli.RenderProgress(p.Stats, p.Report, p.Achievements, p.Challenges))
			return nil
		},
	}
}

func newCompleteTripCmd(a *app) *cobra.Command {
	var (
		country string
		title   string
		total   float64
	)
	cmd := &cobra.Command{
		Use:   "complete-trip",
		Short: "Record a completed trip and award any new badges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			country = strings.TrimSpace(country)
			if country == "" {
				return errors.New("--country is required")
			}
			budgetAmt, err := flagAmount("--budget", total)
			if err != nil {
				return err
			}

			svc, closeDB, err := a.openProgress(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			now := a.clock.Now().UTC()
			res, err := svc.RecordTripCompletion(cmd.Context(), domain.Trip{
				ID:          domain.TripID(uuid.NewString()),
				UserID:      domain.UserID(a.user),
				Title:       title,
				Destination: domain.Destination{Name: country, Country: country},
				StartDate:   now,
				EndDate:     now,
				TotalBudget: budgetAmt,
				Status:      domain.TripStatusCompleted,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  Trip recorded. %d trips, %d countries.\n", res.Stats.TripsCompleted, res.Stats.CountriesVisited)
			if len(res.NewBadges) == 0 {
				return nil
			}
			names := make(map[string]string)
			for _, b := range svc.Catalog() {
				names[b.ID] = b.Name
			}
			earned := make([]string, 0, len(res.NewBadges))
			for _, b := range res.NewBadges {
				earned = append(earned, names[b.BadgeID])
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, cli.RenderList("New badges", earned))
			return nil
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "Country the trip visited")
	cmd.Flags().StringVar(&title, "title", "", "Trip title")
	cmd.Flags().Float64Var(&total, "budget", 0, "Budget saved on the trip in major units")
	return cmd
}

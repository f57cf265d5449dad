package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Overland-East-Bay/trip-budget-api/internal/app/budget"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
	"github.com/Overland-East-Bay/trip-budget-api/internal/ports/out/clock"
)

type app struct {
	clock clock.Clock

	dbPath    string
	user      string
	rulesPath string
	verbose   bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "planctl",
		Short:        "Trip budget and travel progress tools",
		Long:         "Break down, optimize and report on itinerary budgets, and track travel progress locally.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", defaultDBPath(), "SQLite database holding travel progress")
	root.PersistentFlags().StringVarP(&a.user, "user", "u", "local", "Traveler the progress belongs to")
	root.PersistentFlags().StringVar(&a.rulesPath, "rules", "", "TOML file overriding the budget rules")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newBreakdownCmd(a),
		newOptimizeCmd(a),
		newReportCmd(a),
		newProgressCmd(a),
		newCompleteTripCmd(a),
	)
	return root
}

// configDir follows XDG_CONFIG_HOME, falling back to ~/.config.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "trip-budget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "trip-budget")
}

func defaultDBPath() string {
	return filepath.Join(configDir(), "progress.db")
}

func (a *app) logger(cmd *cobra.Command) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if a.verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func (a *app) calculator() (*budget.Calculator, error) {
	rules, err := budget.LoadRules(a.rulesPath)
	if err != nil {
		return nil, err
	}
	return budget.NewCalculator(a.clock, rules), nil
}

// readItinerary loads an itinerary in the API's JSON shape and restores day totals.
func readItinerary(path string) (domain.Itinerary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("read itinerary: %w", err)
	}
	var it domain.Itinerary
	if err := json.Unmarshal(b, &it); err != nil {
		return domain.Itinerary{}, fmt.Errorf("parse itinerary %s: %w", path, err)
	}
	for i := range it.Days {
		it.Days[i].RecomputeTotal()
	}
	return it, nil
}

func writeItinerary(path string, it domain.Itinerary) error {
	b, err := json.MarshalIndent(it, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write itinerary: %w", err)
	}
	return nil
}

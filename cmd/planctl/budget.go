package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Overland-East-Bay/trip-budget-api/internal/app/budget"
	"github.com/Overland-East-Bay/trip-budget-api/internal/cli"
	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

func newBreakdownCmd(a *app) *cobra.Command {
	var total float64
	var currency string
	cmd := &cobra.Command{
		Use:   "breakdown FILE",
		Short: "Break an itinerary's costs down by category and day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			budgetAmt, err := flagAmount("--budget", total)
			if err != nil {
				return err
			}
			calc, err := a.calculator()
			if err != nil {
				return err
			}
			it, err := readItinerary(args[0])
			if err != nil {
				return err
			}
			b := calc.CalculateTripBudget(it, domain.Trip{TotalBudget: budgetAmt, Currency: currency})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderTitle("BUDGET BREAKDOWN"))
			fmt.Fprintln(out)
			fmt.Fprint(out, cli.RenderBreakdown(b, currency))
			return nil
		},
	}
	cmd.Flags().Float64Var(&total, "budget", 0, "Trip budget in major units")
	cmd.Flags().StringVar(&currency, "currency", "", "Currency code shown next to amounts")
	_ = cmd.MarkFlagRequired("budget")
	return cmd
}

func newOptimizeCmd(a *app) *cobra.Command {
	var target float64
	var outPath string
	cmd := &cobra.Command{
		Use:   "optimize FILE",
		Short: "Greedily cut an itinerary's costs toward a target budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetAmt, err := flagAmount("--target", target)
			if err != nil {
				return err
			}
			calc, err := a.calculator()
			if err != nil {
				return err
			}
			it, err := readItinerary(args[0])
			if err != nil {
				return err
			}
			res := calc.OptimizeBudget(it, targetAmt)
			a.logger(cmd).WithFields(logrus.Fields{
				"overage": res.Overage.String(),
				"savings": res.Savings.String(),
			}).Debug("optimized itinerary")

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderTitle("BUDGET OPTIMIZATION"))
			fmt.Fprintln(out)
			fmt.Fprint(out, cli.RenderList("Changes", res.Changes))
			fmt.Fprintf(out, "\n  Savings %s", res.Savings)
			if res.Overage > 0 && !res.FullyResolved() {
				fmt.Fprintf(out, "   still over by %s", res.Overage-res.Savings)
			}
			fmt.Fprintln(out)

			if outPath != "" {
				if err := writeItinerary(outPath, res.Itinerary); err != nil {
					return err
				}
				fmt.Fprintf(out, "  Wrote %s\n", outPath)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&target, "target", 0, "Target budget in major units")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the optimized itinerary to this file")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var total float64
	cmd := &cobra.Command{
		Use:   "report FILE",
		Short: "Summarize an itinerary's budget with recommendations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			budgetAmt, err := flagAmount("--budget", total)
			if err != nil {
				return err
			}
			calc, err := a.calculator()
			if err != nil {
				return err
			}
			it, err := readItinerary(args[0])
			if err != nil {
				return err
			}
			b := calc.CalculateTripBudget(it, domain.Trip{TotalBudget: budgetAmt})
			rep := calc.GenerateBudgetReport(b)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderTitle("BUDGET REPORT"))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %s\n\n", rep.Summary)

			rows := make([][]string, 0, len(domain.AllCategories))
			for _, cat := range domain.AllCategories {
				rows = append(rows, []string{string(cat), rep.CategoryAnalysis[cat]})
			}
			fmt.Fprint(out, cli.RenderTable(cli.Table{Headers: []string{"Category", "Amount"}, Rows: rows}))
			fmt.Fprintln(out)
			fmt.Fprint(out, cli.RenderList("Recommendations", rep.Recommendations))

			if b.Remaining < 0 {
				adj := budget.SuggestBudgetAdjustments(b.Total, budgetAmt)
				options := make([]string, 0, len(adj.AlternativeOptions))
				for _, o := range adj.AlternativeOptions {
					options = append(options, fmt.Sprintf("%s: %s (save ~%s)", o.Category, o.Suggestion, o.PotentialSaving))
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, cli.RenderList("Where to cut", append(adj.Recommendations, options...)))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&total, "budget", 0, "Trip budget in major units")
	_ = cmd.MarkFlagRequired("budget")
	return cmd
}

// flagAmount validates a major-unit amount flag.
func flagAmount(name string, v float64) (domain.Money, error) {
	if v < 0 {
		return 0, fmt.Errorf("%s must be >= 0", name)
	}
	m, err := domain.ParseMajor(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

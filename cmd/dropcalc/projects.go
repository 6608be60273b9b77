package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/songzhibin97/dropcalc/internal/data/collector"
	"github.com/songzhibin97/dropcalc/internal/deadline"
	"github.com/songzhibin97/dropcalc/internal/models"
	"github.com/songzhibin97/dropcalc/internal/reward"
	"github.com/songzhibin97/dropcalc/internal/utils/format"
)

var (
	calcPrice string
	calcSP    string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List Mocadrop projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Logger.Sync()

		projects, err := app.Collector.FetchProjects(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printTitle(out, fmt.Sprintf("%d projects", len(projects)))
		for _, p := range projects {
			status := goodStyle.Render("open")
			if deadline.Ended(p.RegistrationEndDate) {
				status = badStyle.Render("ended")
			}
			fmt.Fprintf(out, "%-28s %-8s %-10s %18s  %s\n",
				p.Name, p.TokenTicker, p.Mode, format.Exact(p.TokensOffered), status)
		}
		return nil
	},
}

var poolCmd = &cobra.Command{
	Use:   "pool <project>",
	Short: "Show staking power and tier configuration of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Logger.Sync()

		project, pool, err := loadPool(cmd, app, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printProject(out, project, pool)
		if app.Prices != nil && project.TokenTicker != "" {
			if price, err := app.Prices.TokenPrice(cmd.Context(), project.TokenTicker); err == nil {
				printField(out, "Market price", format.Number(price, 4))
			}
		}
		if pool.Mode == models.ModeFixed {
			printTiers(out, pool.TierConfig)
		}
		return nil
	},
}

var calcCmd = &cobra.Command{
	Use:   "calc <project>",
	Short: "Estimate the reward for a hypothetical token price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Logger.Sync()

		project, pool, err := loadPool(cmd, app, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printProject(out, project, pool)

		switch pool.Mode {
		case models.ModeFixed:
			tiers, ok := reward.CalculateFixed(pool.TierConfig, calcPrice)
			if !ok {
				printError(out, "No calculation: --price must be a number.")
				return nil
			}
			printTiers(out, tiers)
		default:
			var totalBurnt float64
			if pool.StakingPowerBurnt != nil {
				totalBurnt = *pool.StakingPowerBurnt
			}
			r, ok := reward.CalculateFlexible(project.TokensOffered, totalBurnt, calcPrice, calcSP)
			if !ok {
				printError(out, "No calculation: --price and --sp must be positive numbers and the pool must have burnt staking power.")
				return nil
			}
			printField(out, "Expected reward", format.Number(r, 2))
		}
		return nil
	},
}

func init() {
	calcCmd.Flags().StringVar(&calcPrice, "price", "", "hypothetical token price")
	calcCmd.Flags().StringVar(&calcSP, "sp", "", "staking power you burned (flexible mode)")
	_ = calcCmd.MarkFlagRequired("price")

	rootCmd.AddCommand(projectsCmd, poolCmd, calcCmd)
}

func loadPool(cmd *cobra.Command, app *App, name string) (models.Project, *models.PoolData, error) {
	projects, err := app.Collector.FetchProjects(cmd.Context())
	if err != nil {
		return models.Project{}, nil, err
	}
	project, err := collector.FindProject(projects, name)
	if err != nil {
		return models.Project{}, nil, err
	}
	pool, err := app.Collector.GetPoolData(cmd.Context(), project.DetailURL)
	if err != nil {
		return models.Project{}, nil, err
	}
	return project, pool, nil
}

func printProject(out io.Writer, project models.Project, pool *models.PoolData) {
	printTitle(out, project.Name)
	if project.TokenTicker != "" {
		printField(out, "Ticker", project.TokenTicker)
	}
	printField(out, "Mode", string(pool.Mode))
	printField(out, "Tokens offered", format.Exact(project.TokensOffered))
	if pool.Mode == models.ModeFlexible {
		burnt := format.NotAvailable
		if pool.StakingPowerBurnt != nil && *pool.StakingPowerBurnt != 0 {
			burnt = format.Number(*pool.StakingPowerBurnt, 0)
		}
		printField(out, "Total SP burnt", burnt)
	}
	printField(out, "Registration ends", pool.RegistrationEndDate)
}

func printTiers(out io.Writer, tiers []models.Tier) {
	for i, t := range tiers {
		line := fmt.Sprintf("allocation %s", format.Number(t.TokenAllocation, 2))
		if t.ExpectedReward != nil {
			line += "  reward " + goodStyle.Render(format.Number(*t.ExpectedReward, 2))
		}
		if name, ok := t.Fields["name"].(string); ok {
			line = strings.TrimSpace(name) + "  " + line
		}
		printField(out, fmt.Sprintf("Tier %d", i), line)
	}
}

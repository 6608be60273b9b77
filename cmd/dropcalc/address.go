package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <name|address>",
	Short: "Resolve an ENS name or check an EVM address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Logger.Sync()

		out := cmd.OutOrStdout()
		resolved := app.Resolver.Resolve(cmd.Context(), args[0])
		if !resolved.Success {
			printError(out, resolved.Error)
			return fmt.Errorf("could not resolve %q", args[0])
		}
		printField(out, args[0], resolved.Address)
		return nil
	},
}

var walletCmd = &cobra.Command{
	Use:   "wallet <name|address>",
	Short: "Show the staking metrics of a wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Logger.Sync()

		out := cmd.OutOrStdout()
		resolved := app.Resolver.Resolve(cmd.Context(), args[0])
		if !resolved.Success {
			printError(out, resolved.Error)
			return fmt.Errorf("could not resolve %q", args[0])
		}

		metrics, err := app.Collector.FetchWalletData(cmd.Context(), resolved.Address)
		if err != nil {
			printError(out, "Could not fetch wallet data.")
			return err
		}

		printTitle(out, resolved.Address)
		printField(out, "Total generated", metrics.TotalGenerated)
		printField(out, "Base rate / day", metrics.BaseRatePerDay)
		printField(out, "Boost rate / day", metrics.BoostRatePerDay)
		printField(out, "Total boost %", metrics.TotalBoostPercent)
		printField(out, "Early bonus", metrics.EarlyBonus)
		printField(out, "Balance", metrics.Balance)
		printField(out, "Tier", metrics.Tier)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd, walletCmd)
}

package main

import (
	"github.com/spf13/cobra"
)

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Check whether a project name or symbol is still free",
}

var availabilityNameCmd = &cobra.Command{
	Use:   "name <project name>",
	Short: "Check a project name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()
		if err := requireLogin(d); err != nil {
			return err
		}

		d.SetProjectName(args[0])
		return printJSON(cmd.OutOrStdout(), d.CheckName(cmd.Context()))
	},
}

var availabilitySymbolCmd = &cobra.Command{
	Use:   "symbol <project symbol>",
	Short: "Check a project symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()
		if err := requireLogin(d); err != nil {
			return err
		}

		d.SetProjectSymbol(args[0])
		return printJSON(cmd.OutOrStdout(), d.CheckSymbol(cmd.Context()))
	},
}

func init() {
	availabilityCmd.AddCommand(availabilityNameCmd)
	availabilityCmd.AddCommand(availabilitySymbolCmd)
}

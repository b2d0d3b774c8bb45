// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "groupcompany-admin",
	Short: "GroupCompany-Admin is a web-based management tool for group company mappings",
	Long: `GroupCompany-Admin is a web-based management tool for group company
mapping records that provides an easy-to-use interface for maintaining
GFAS account to group mappings, reference groups, fee letters and the
change history behind them.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

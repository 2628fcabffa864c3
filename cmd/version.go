package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the Cobra command for displaying the application version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of racectl",
		Long: `Print the version number of racectl.

Environment and deployment records are stamped with the version that
created them and are only used by compatible versions.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "racectl version %s\n", cmd.Root().Version)
		},
	}
}

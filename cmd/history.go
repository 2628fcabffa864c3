package cmd

import (
	"racectl/internal/history"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [NAME]",
		Short: "Show recorded up and down operations, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			filter := history.Filter{Limit: limit}
			if len(args) == 1 {
				filter.Deployment = args[0]
			}
			entries, err := s.history.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return s.formatter.FormatHistory(entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of operations to show (0 for all)")
	return cmd
}

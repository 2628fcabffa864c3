package cmd

import (
	"racectl/internal/collector"
	"racectl/internal/status"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var (
		facets []string
		depth  int
	)
	cmd := &cobra.Command{
		Use:   "status NAME",
		Short: "Show the status of a deployment",
		Long: `Collect one snapshot of a deployment: its environment resources,
containers, daemons, auxiliary services and per-node facets, plus the
deployment state derived from them.

With --facet only the named node facet trees are shown.`,
		Example: `  racectl status alpha
  racectl status alpha --facet race --facet configs --depth 2
  racectl status alpha -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := make([]collector.Facet, 0, len(facets))
			for _, f := range facets {
				facet, err := collector.ParseFacet(f)
				if err != nil {
					return err
				}
				selected = append(selected, facet)
			}

			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			options := s.formatter.GetOptions()
			options.MaxDepth = depth
			s.formatter.SetOptions(options)

			name := args[0]
			var snap *collector.Snapshot
			err = s.spin("Collecting status of "+name, func() error {
				var err error
				snap, err = s.orch.Status(cmd.Context(), name)
				return err
			})
			if err != nil {
				return err
			}

			if len(selected) == 0 {
				return s.formatter.FormatSnapshot(snap)
			}
			if s.structured() {
				trees := make(map[collector.Facet]interface{}, len(selected))
				for _, f := range selected {
					trees[f] = facetTree(snap, f)
				}
				return s.formatter.FormatData(trees)
			}
			for _, f := range selected {
				if err := s.formatter.FormatReport(string(f), facetTree(snap, f)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&facets, "facet", nil, "Only show this node facet tree (daemon, app, race, artifacts, configs, etc; repeatable)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Limit table output to this many levels below each tree root (0 shows all)")
	_ = cmd.RegisterFlagCompletionFunc("facet", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		out := []string{string(collector.FacetDaemon)}
		for _, f := range collector.Facets {
			out = append(out, string(f))
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// facetTree returns the tree of one facet; daemon liveness is the node tree.
func facetTree(snap *collector.Snapshot, f collector.Facet) *status.Report {
	if f == collector.FacetDaemon {
		return snap.Nodes
	}
	return snap.Facets[f]
}

package cmd

import (
	"fmt"
	"strings"

	"racectl/internal/collector"
	"racectl/internal/deployment"
	"racectl/internal/topology"

	"github.com/spf13/cobra"
)

func newTopologyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topology",
		Short: "Inspect persona placement",
	}
	cmd.AddCommand(newTopologyCheckCmd(opts))
	return cmd
}

// placement is the structured result of topology check.
type placement struct {
	Distribution *topology.Distribution         `json:"distribution" yaml:"distribution"`
	Bootstrap    []topology.BootstrapAssignment `json:"bootstrap,omitempty" yaml:"bootstrap,omitempty"`
}

func newTopologyCheckCmd(opts *rootOptions) *cobra.Command {
	var (
		environment  string
		topologyFile string
		nodes        []string
		colocate     bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that personas fit a topology and show where they would be placed",
		Long: `Check that the requested personas fit a host topology and show the
node distribution a deployment with these requirements would get.

The topology is read from --topology, or else from the environment named by
--environment; without either, auto-sized hosts are assumed.`,
		Example: `  racectl topology check --topology hosts.yaml --node linux-x86_64-client=40 --node linux-x86_64-server=10`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseRequirements(nodes)
			if err != nil {
				return err
			}
			req.Colocate = colocate

			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			var topo topology.Topology
			switch {
			case topologyFile != "":
				if topo, err = topology.LoadTopology(topologyFile); err != nil {
					return err
				}
			case environment != "":
				env, err := s.store.LoadEnvironment(environment)
				if err != nil {
					return err
				}
				if env.Provider == deployment.ProviderLocal {
					req.Colocate = true
				}
				topo = env.Topology
			}
			if len(topo.HostClasses) == 0 {
				topo = topology.DefaultTopology(req)
			} else if err := topology.CheckCompatible(environment, topologyFile, req, topo); err != nil {
				return err
			}

			dist, err := topology.Distribute(req, topo)
			if err != nil {
				return err
			}
			personas := topology.Personas(req)
			assignments, err := topology.BootstrapAssignments(personas.Genesis, personas.Bootstrap)
			if err != nil {
				return err
			}

			if s.structured() {
				return s.formatter.FormatData(placement{Distribution: dist, Bootstrap: assignments})
			}
			return printPlacement(cmd, s, dist, assignments, len(personas.All()))
		},
	}
	cmd.Flags().StringVarP(&environment, "environment", "e", "", "Environment whose topology to check against")
	cmd.Flags().StringVar(&topologyFile, "topology", "", "Host topology file")
	addNodeFlags(cmd, &nodes, &colocate)
	return cmd
}

func printPlacement(cmd *cobra.Command, s *session, dist *topology.Distribution, assignments []topology.BootstrapAssignment, personas int) error {
	hosts := make(map[string]string)
	for _, b := range dist.Buckets {
		for i, m := range b.Manifests {
			if m.Empty() {
				continue
			}
			hosts[b.Bucket+"/"+collector.HostName(i)] = strings.Join(m.Personas(), ", ")
		}
	}
	out := cmd.OutOrStdout()
	if !s.opts.quiet {
		fmt.Fprintf(out, "%d personas fit on %d hosts\n", personas, len(hosts))
	}
	if err := s.formatter.FormatData(hosts); err != nil {
		return err
	}
	if len(assignments) == 0 {
		return nil
	}
	bootstrap := make(map[string]string, len(assignments))
	for _, a := range assignments {
		bootstrap[a.Bootstrap] = fmt.Sprintf("introduced by %s, verified by %s", a.Introducer, a.Verifier)
	}
	return s.formatter.FormatData(bootstrap)
}

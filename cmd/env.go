package cmd

import (
	"errors"
	"fmt"

	"racectl/internal/deployment"
	"racectl/internal/status"
	"racectl/internal/topology"

	"github.com/spf13/cobra"
)

func newEnvCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "env",
		Aliases: []string{"environment", "environments"},
		Short:   "Manage host environments",
		Long: `Manage the host environments deployments are placed on.

An environment is either the local docker host or a set of AWS instances
provisioned from a CloudFormation stack named after the environment.`,
	}
	cmd.AddCommand(
		newEnvRegisterCmd(opts),
		newEnvListCmd(opts),
		newEnvStatusCmd(opts),
		newEnvRemoveCmd(opts),
	)
	return cmd
}

func newEnvRegisterCmd(opts *rootOptions) *cobra.Command {
	var (
		provider     string
		region       string
		topologyFile string
		replace      bool
	)
	cmd := &cobra.Command{
		Use:   "register NAME",
		Short: "Register a host environment",
		Example: `  racectl env register laptop --provider local
  racectl env register perf --provider aws --region us-east-1 --topology perf-hosts.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			name := args[0]
			if _, err := s.store.LoadEnvironment(name); err == nil && !replace {
				return fmt.Errorf("environment %q: %w (use --replace to overwrite)", name, deployment.ErrAlreadyExists)
			} else if err != nil && !errors.Is(err, deployment.ErrEnvironmentNotFound) {
				return err
			}

			env := &deployment.Environment{
				Name:     name,
				Provider: deployment.Provider(provider),
				Region:   region,
			}
			switch {
			case topologyFile != "":
				if env.Topology, err = topology.LoadTopology(topologyFile); err != nil {
					return err
				}
			case env.Provider == deployment.ProviderLocal:
				env.Topology = deployment.LocalTopology()
			}
			if err := s.store.SaveEnvironment(env); err != nil {
				return err
			}
			return s.done(cmd, env, "Registered %s environment %s", env.Provider, env.Name)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", string(deployment.ProviderLocal), "Infrastructure provider (local, aws)")
	cmd.Flags().StringVar(&region, "region", "", "Cloud region of the environment's resources")
	cmd.Flags().StringVar(&topologyFile, "topology", "", "Host topology file (default: auto-sized hosts)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Overwrite an existing environment")
	_ = cmd.RegisterFlagCompletionFunc("provider", cobra.FixedCompletions(deployment.Providers, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func newEnvListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered environments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			listings, err := s.store.ListEnvironments()
			if err != nil {
				return err
			}
			return s.formatter.FormatListings("environment", listings)
		},
	}
}

// environmentStatus is the structured form of env status.
type environmentStatus struct {
	Environment string                  `json:"environment" yaml:"environment"`
	State       status.EnvironmentState `json:"state" yaml:"state"`
	Resources   *status.Report          `json:"resources" yaml:"resources"`
}

func newEnvStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status NAME",
		Short: "Show the state of an environment's cloud resources and docker daemons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			name := args[0]
			var report *status.Report
			err = s.spin("Checking environment "+name, func() error {
				var err error
				report, err = s.orch.EnvironmentStatus(cmd.Context(), name)
				return err
			})
			if err != nil {
				return err
			}

			state := status.DeriveEnvironmentState(report)
			if s.structured() {
				return s.formatter.FormatData(environmentStatus{Environment: name, State: state, Resources: report})
			}
			if !s.opts.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Environment %s: %s\n", name, state)
			}
			return s.formatter.FormatReport(name, report)
		},
	}
}

func newEnvRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove an environment no deployment uses",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.store.RemoveEnvironment(args[0]); err != nil {
				return err
			}
			return s.done(cmd, map[string]string{"removed": args[0]}, "Removed environment %s", args[0])
		},
	}
}

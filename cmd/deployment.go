package cmd

import (
	"fmt"

	"racectl/internal/deployment"
	"racectl/internal/topology"

	"github.com/spf13/cobra"
)

func newDeploymentCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deployment",
		Aliases: []string{"deployments", "dep"},
		Short:   "Manage deployment records",
		Long: `Manage deployment records.

Creating a deployment computes and stores its node distribution; it does
not start anything. Use 'racectl up' and 'racectl down' for that.`,
	}
	cmd.AddCommand(
		newDeploymentCreateCmd(opts),
		newDeploymentListCmd(opts),
		newDeploymentStatusCmd(opts),
		newDeploymentRemoveCmd(opts),
		newDeploymentUnlockCmd(opts),
	)
	return cmd
}

func newDeploymentCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		environment  string
		nodes        []string
		colocate     bool
		topologyFile string
		services     []string
		artifactsDir string
		configsDir   string
		registry     string
	)
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a deployment and compute its node distribution",
		Example: `  racectl deployment create alpha --environment laptop \
    --node linux-x86_64-client=10:2 --node linux-x86_64-server=5 --node android-arm64-client=2`,
		Args: cobra.ExactArgs(1),
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

			if !cmd.Flags().Changed("service") {
				services = s.cfg.Services
			}
			if !cmd.Flags().Changed("registry") {
				registry = s.cfg.Registry
			}

			d, err := s.store.Create(deployment.Settings{
				Name:         args[0],
				Environment:  environment,
				Requirements: req,
				TopologyFile: topologyFile,
				Services:     services,
				ArtifactsDir: artifactsDir,
				ConfigsDir:   configsDir,
				Registry:     registry,
			})
			if err != nil {
				return err
			}
			dist, err := s.store.LoadDistribution(d.Name())
			if err != nil {
				return err
			}
			personas := len(topology.Personas(d.Settings.Requirements).All())
			return s.done(cmd, d, "Created deployment %s with %d personas on %d hosts of environment %s",
				d.Name(), personas, hostCount(dist), environment)
		},
	}
	cmd.Flags().StringVarP(&environment, "environment", "e", "", "Environment to place the deployment on")
	_ = cmd.MarkFlagRequired("environment")
	addNodeFlags(cmd, &nodes, &colocate)
	cmd.Flags().StringVar(&topologyFile, "topology", "", "Host topology file overriding the environment's")
	cmd.Flags().StringSliceVar(&services, "service", nil, "Auxiliary service containers (default from configuration)")
	cmd.Flags().StringVar(&artifactsDir, "artifacts-dir", "", "Directory of plugin artifacts handed to remote actions")
	cmd.Flags().StringVar(&configsDir, "configs-dir", "", "Directory of network configs handed to remote actions")
	cmd.Flags().StringVar(&registry, "registry", "", "Container registry (default from configuration)")
	return cmd
}

func hostCount(dist *topology.Distribution) int {
	n := 0
	for _, b := range dist.Buckets {
		for _, m := range b.Manifests {
			if !m.Empty() {
				n++
			}
		}
	}
	return n
}

func newDeploymentListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List deployments and whether this version can manage them",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			listings, err := s.store.ListDeployments()
			if err != nil {
				return err
			}
			return s.formatter.FormatListings("deployment", listings)
		},
	}
}

func newDeploymentStatusCmd(opts *rootOptions) *cobra.Command {
	cmd := newStatusCmd(opts)
	cmd.Short = "Show the status of a deployment (same as 'racectl status')"
	return cmd
}

func newDeploymentRemoveCmd(opts *rootOptions) *cobra.Command {
	var keepHistory bool
	cmd := &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a deployment record",
		Long: `Remove a deployment record and its node distribution.

This does not stop anything that is running; run 'racectl down' first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			name := args[0]
			if err := s.store.RemoveDeployment(name); err != nil {
				return err
			}
			var pruned int64
			if !keepHistory {
				if pruned, err = s.history.Prune(cmd.Context(), name); err != nil {
					return err
				}
			}
			return s.done(cmd, map[string]interface{}{"removed": name, "prunedOperations": pruned},
				"Removed deployment %s (%d history entries pruned)", name, pruned)
		},
	}
	cmd.Flags().BoolVar(&keepHistory, "keep-history", false, "Keep the deployment's operation history")
	return cmd
}

func newDeploymentUnlockCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock NAME",
		Short: "Clear the active operation marker left by an interrupted racectl",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			name := args[0]
			holder, held := s.store.ActiveOperation(name)
			if !held {
				return s.done(cmd, map[string]string{"deployment": name}, "Deployment %s has no active operation", name)
			}
			if err := s.store.Unlock(name); err != nil {
				return fmt.Errorf("failed to unlock deployment %s: %w", name, err)
			}
			return s.done(cmd, holder, "Cleared %s operation %s on deployment %s", holder.Action, holder.OperationID, name)
		},
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"racectl/internal/orchestrator"
	"racectl/pkg/logging"

	"github.com/spf13/cobra"
)

func newUpCmd(opts *rootOptions) *cobra.Command {
	var upOpts orchestrator.UpOptions
	cmd := &cobra.Command{
		Use:   "up NAME",
		Short: "Stand a deployment up and wait until every persona is running",
		Long: `Stand a deployment up.

The deployment must be down and its environment ready. racectl dispatches
the up action, waits until every container, daemon and service is running,
then pushes (and unless --no-publish, publishes) the network configs.

Interrupting the wait tears the deployment down again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			name := args[0]
			upOpts.Command = commandLine()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = s.spin("Standing up deployment "+name, func() error {
				return s.orch.Up(ctx, name, upOpts)
			})
			if err != nil {
				if ctx.Err() != nil && cmd.Context().Err() == nil {
					stop()
					return compensate(cmd, s, name, err)
				}
				return err
			}
			return s.done(cmd, map[string]string{"deployment": name, "state": "UP"}, "Deployment %s is up", name)
		},
	}
	cmd.Flags().DurationVar(&upOpts.Timeout, "timeout", 0, "How long to wait for the deployment to come up (default from configuration)")
	cmd.Flags().DurationVar(&upOpts.ConfigsTimeout, "configs-timeout", 0, "How long to wait for configs to be applied (default from configuration)")
	cmd.Flags().BoolVar(&upOpts.Force, "force", false, "Skip the precondition check")
	cmd.Flags().BoolVar(&upOpts.NoPublish, "no-publish", false, "Push configs without publishing them")
	return cmd
}

// compensate tears down a deployment whose stand-up was interrupted.
func compensate(cmd *cobra.Command, s *session, name string, cause error) error {
	logging.Warn("CLI", "Interrupted while standing up %s, tearing it down", name)
	fmt.Fprintf(cmd.ErrOrStderr(), "Interrupted; tearing deployment %s down again\n", name)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeouts.Down+time.Minute)
	defer cancel()
	err := s.orch.Down(ctx, name, orchestrator.DownOptions{Force: true, Command: commandLine()})
	if err != nil {
		logging.Error("CLI", err, "Compensating down of %s failed", name)
		return fmt.Errorf("%w (teardown after interrupt also failed: %v)", cause, err)
	}
	return cause
}

func newDownCmd(opts *rootOptions) *cobra.Command {
	var downOpts orchestrator.DownOptions
	cmd := &cobra.Command{
		Use:   "down NAME",
		Short: "Tear a deployment down and wait until nothing is left running",
		Long: `Tear a deployment down.

The RACE application must be stopped on every node first unless --force is
given. racectl dispatches the down action and waits until every container
is gone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			name := args[0]
			downOpts.Command = commandLine()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = s.spin("Tearing down deployment "+name, func() error {
				return s.orch.Down(ctx, name, downOpts)
			})
			if err != nil {
				return err
			}
			return s.done(cmd, map[string]string{"deployment": name, "state": "DOWN"}, "Deployment %s is down", name)
		},
	}
	cmd.Flags().DurationVar(&downOpts.Timeout, "timeout", 0, "How long to wait for the deployment to go down (default from configuration)")
	cmd.Flags().BoolVar(&downOpts.Force, "force", false, "Skip the precondition check")
	cmd.Flags().BoolVar(&downOpts.Purge, "purge", false, "Also delete persona data on the hosts")
	return cmd
}

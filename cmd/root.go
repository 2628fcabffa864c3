package cmd

import (
	"context"
	"errors"
	"os"
	"strings"

	"racectl/internal/deployment"
	"racectl/internal/formatting"
	"racectl/internal/orchestrator"
	"racectl/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodePrecondition indicates the deployment was not in the state the
	// command requires.
	ExitCodePrecondition = 2
	// ExitCodeRemoteAction indicates a remote action exited unsuccessfully.
	ExitCodeRemoteAction = 3
	// ExitCodeTimeout indicates the deployment did not converge in time.
	ExitCodeTimeout = 4
	// ExitCodeLocked indicates another operation holds the deployment.
	ExitCodeLocked = 5
	// ExitCodeInterrupted indicates the command was interrupted by a signal.
	ExitCodeInterrupted = 130
)

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	configPath string
	output     string
	quiet      bool
	noColor    bool
	logLevel   string
}

// rootCmd represents the base command for the racectl application.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "racectl",
		Short: "Stand up, tear down and monitor RACE network deployments",
		Long: `racectl manages RACE network deployments on registered host environments.

It places personas on hosts, dispatches the remote actions that start and
stop them, and decides from observed container, daemon and application
status whether a deployment has converged.`,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			logging.InitForCLI(level, cmd.ErrOrStderr())
			if _, err := formatting.ParseFormat(opts.output); err != nil {
				return err
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Configuration directory (default $HOME/.config/racectl)")
	flags.StringVarP(&opts.output, "output", "o", string(formatting.FormatTable), "Output format (table, json, yaml)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress non-essential output")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored table output")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newVersionCmd(),
		newEnvCmd(opts),
		newDeploymentCmd(opts),
		newTopologyCmd(opts),
		newUpCmd(opts),
		newDownCmd(opts),
		newStatusCmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "racectl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	switch {
	case orchestrator.IsPrecondition(err):
		return ExitCodePrecondition
	case orchestrator.IsRemoteAction(err):
		return ExitCodeRemoteAction
	case orchestrator.IsConvergenceTimeout(err):
		return ExitCodeTimeout
	case errors.Is(err, deployment.ErrLocked):
		return ExitCodeLocked
	case errors.Is(err, context.Canceled):
		return ExitCodeInterrupted
	}
	return ExitCodeError
}

// commandLine is recorded with lifecycle operations.
func commandLine() string {
	return strings.Join(os.Args, " ")
}

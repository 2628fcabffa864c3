package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"racectl/internal/collector"
	"racectl/internal/config"
	"racectl/internal/deployment"
	"racectl/internal/formatting"
	"racectl/internal/history"
	"racectl/internal/observer"
	"racectl/internal/orchestrator"
	"racectl/internal/runner"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// statusStaleAfter is how old a persona status file may be before the
// persona counts as not reporting.
const statusStaleAfter = 2 * time.Minute

// statusDirName is the directory inside a deployment directory that the
// status reporting action syncs persona status files into.
const statusDirName = "status"

// session bundles the configuration, stores and services a command runs
// against.
type session struct {
	opts      *rootOptions
	cfg       config.Config
	store     *deployment.Store
	db        *sql.DB
	history   *history.Store
	orch      *orchestrator.Orchestrator
	formatter formatting.Formatter
	stderr    *os.File
}

// openSession loads the configuration and wires every collaborator.
func openSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	configPath := opts.configPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		var problems *config.Problems
		if errors.As(err, &problems) {
			fmt.Fprint(cmd.ErrOrStderr(), problems.Report())
		}
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}

	store := deployment.NewStore(config.NewStorage(cfg.DataDir), cmd.Root().Version)

	db, err := history.Open(filepath.Join(cfg.DataDir, history.FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open operation history: %w", err)
	}
	hist := &history.Store{DB: db}

	docker := observer.NewDockerObserver(observer.NewDockerDialer())
	coll := collector.New(collector.Config{
		Observers: func(ctx context.Context, env *deployment.Environment) (observer.EnvironmentObserver, error) {
			return observer.ForEnvironment(ctx, env, cfg, docker)
		},
		Nodes: observer.NewStatusDirObserver(func(name string) string {
			return filepath.Join(store.DeploymentDir(name), statusDirName)
		}, cfg.MaxParallel, statusStaleAfter),
		MaxParallel: cfg.MaxParallel,
	})

	orch := orchestrator.New(orchestrator.Config{
		Store:        store,
		Collector:    coll,
		Runner:       runner.NewExecRunner(cfg.Runner),
		History:      hist,
		PollInterval: cfg.PollInterval,
		Timeouts:     cfg.Timeouts,
	})

	format, _ := formatting.ParseFormat(opts.output)
	formatter := formatting.NewFactory().CreateFormatter(formatting.Options{
		Format: format,
		Quiet:  opts.quiet,
		Color:  !opts.noColor && cmd.OutOrStdout() == os.Stdout,
		Out:    cmd.OutOrStdout(),
	})

	return &session{
		opts:      opts,
		cfg:       cfg,
		store:     store,
		db:        db,
		history:   hist,
		orch:      orch,
		formatter: formatter,
		stderr:    os.Stderr,
	}, nil
}

// Close releases the history database.
func (s *session) Close() error {
	return s.db.Close()
}

// structured reports whether the output is meant for machines.
func (s *session) structured() bool {
	return s.opts.output != string(formatting.FormatTable)
}

// spin runs fn behind a progress spinner on stderr. The spinner is skipped
// for quiet and structured output.
func (s *session) spin(message string, fn func() error) error {
	if s.opts.quiet || s.structured() {
		return fn()
	}
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(s.stderr))
	sp.Suffix = " " + message
	sp.Start()
	err := fn()
	if err != nil {
		sp.FinalMSG = text.FgRed.Sprint("✗ "+message) + "\n"
	}
	sp.Stop()
	return err
}

// done prints a confirmation for table output or the record itself for
// structured output.
func (s *session) done(cmd *cobra.Command, record interface{}, format string, args ...interface{}) error {
	if s.structured() {
		return s.formatter.FormatData(record)
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	return nil
}

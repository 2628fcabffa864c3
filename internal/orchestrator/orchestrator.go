package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"racectl/internal/collector"
	"racectl/internal/config"
	"racectl/internal/deployment"
	"racectl/internal/history"
	"racectl/internal/runner"
	"racectl/internal/status"
	"racectl/pkg/logging"

	"github.com/google/uuid"
)

// Collector produces status snapshots.
type Collector interface {
	Collect(ctx context.Context, target collector.Target) (*collector.Snapshot, error)
	EnvironmentReport(ctx context.Context, env *deployment.Environment) (*status.Report, error)
}

// History records finished operations.
type History interface {
	Record(ctx context.Context, e history.Entry) error
}

// Config holds the collaborators and defaults of an Orchestrator.
type Config struct {
	Store     *deployment.Store
	Collector Collector
	Runner    runner.Runner
	// History is optional.
	History History

	PollInterval time.Duration
	Timeouts     config.TimeoutConfig

	Now   func() time.Time
	NewID func() string
}

// Orchestrator runs lifecycle transitions.
type Orchestrator struct {
	store        *deployment.Store
	collector    Collector
	runner       runner.Runner
	history      History
	pollInterval time.Duration
	timeouts     config.TimeoutConfig
	now          func() time.Time
	newID        func() string
}

// New creates an orchestrator. Zero durations fall back to the configuration
// defaults.
func New(cfg Config) *Orchestrator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = config.DefaultPollInterval
	}
	if cfg.Timeouts.Up <= 0 {
		cfg.Timeouts.Up = config.DefaultUpTimeout
	}
	if cfg.Timeouts.Down <= 0 {
		cfg.Timeouts.Down = config.DefaultDownTimeout
	}
	if cfg.Timeouts.Configs <= 0 {
		cfg.Timeouts.Configs = config.DefaultConfigsTimeout
	}
	if cfg.Timeouts.Action <= 0 {
		cfg.Timeouts.Action = config.DefaultActionTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Orchestrator{
		store:        cfg.Store,
		collector:    cfg.Collector,
		runner:       cfg.Runner,
		history:      cfg.History,
		pollInterval: cfg.PollInterval,
		timeouts:     cfg.Timeouts,
		now:          cfg.Now,
		newID:        cfg.NewID,
	}
}

// UpOptions controls Up. Zero timeouts use the configured defaults.
type UpOptions struct {
	Timeout        time.Duration
	Force          bool
	NoPublish      bool
	ConfigsTimeout time.Duration
	// Command is the invoking command line, kept in the metadata.
	Command string
}

// DownOptions controls Down. A zero timeout uses the configured default.
type DownOptions struct {
	Timeout time.Duration
	Force   bool
	Purge   bool
	Command string
}

// operation carries the state shared by the steps of one transition.
type operation struct {
	id     string
	action string
	force  bool
	target collector.Target
}

func (op *operation) name() string {
	return op.target.Deployment.Name()
}

// Target loads everything needed to observe a deployment.
func (o *Orchestrator) Target(name string) (collector.Target, error) {
	dep, err := o.store.LoadCompatibleDeployment(name)
	if err != nil {
		return collector.Target{}, err
	}
	env, err := o.store.LoadEnvironment(dep.Settings.Environment)
	if err != nil {
		return collector.Target{}, fmt.Errorf("deployment %s: %w", name, err)
	}
	dist, err := o.store.LoadDistribution(name)
	if err != nil {
		return collector.Target{}, fmt.Errorf("deployment %s: %w", name, err)
	}
	return collector.Target{Environment: env, Deployment: dep, Distribution: dist}, nil
}

// Status collects one snapshot of a deployment.
func (o *Orchestrator) Status(ctx context.Context, name string) (*collector.Snapshot, error) {
	target, err := o.Target(name)
	if err != nil {
		return nil, err
	}
	return o.collector.Collect(ctx, target)
}

// EnvironmentStatus reports the resources of a registered environment.
func (o *Orchestrator) EnvironmentStatus(ctx context.Context, name string) (*status.Report, error) {
	env, err := o.store.LoadEnvironment(name)
	if err != nil {
		return nil, err
	}
	return o.collector.EnvironmentReport(ctx, env)
}

// Up stands a deployment up and waits until every persona and service runs.
func (o *Orchestrator) Up(ctx context.Context, name string, opts UpOptions) error {
	if opts.Timeout <= 0 {
		opts.Timeout = o.timeouts.Up
	}
	if opts.ConfigsTimeout <= 0 {
		opts.ConfigsTimeout = o.timeouts.Configs
	}
	return o.transition(ctx, name, config.ActionUp, opts.Force, opts.Command, func(op *operation) error {
		if err := o.precondition(ctx, op, upPreconditions); err != nil {
			return err
		}
		if err := o.recordMetadata(op, opts.Command); err != nil {
			return err
		}
		if err := o.dispatch(ctx, op, config.ActionUp, o.actionVars(op, false)); err != nil {
			return err
		}
		if _, err := o.WaitFor(ctx, op.target, config.ActionUp, opts.Timeout, upPostconditions); err != nil {
			return err
		}

		if err := o.dispatch(ctx, op, config.ActionPushConfigs, o.actionVars(op, false)); err != nil {
			return err
		}
		if opts.NoPublish {
			logging.Info("Orchestrator", "Skipping config publication for deployment %s", op.name())
			return nil
		}
		if err := o.dispatch(ctx, op, config.ActionPublishConfigs, o.actionVars(op, false)); err != nil {
			return err
		}
		_, err := o.WaitFor(ctx, op.target, config.ActionPublishConfigs, opts.ConfigsTimeout, configsPostconditions)
		return err
	})
}

// Down tears a deployment down and waits until nothing of it remains.
func (o *Orchestrator) Down(ctx context.Context, name string, opts DownOptions) error {
	if opts.Timeout <= 0 {
		opts.Timeout = o.timeouts.Down
	}
	return o.transition(ctx, name, config.ActionDown, opts.Force, opts.Command, func(op *operation) error {
		if err := o.precondition(ctx, op, downPreconditions); err != nil {
			return err
		}
		if err := o.recordMetadata(op, opts.Command); err != nil {
			return err
		}
		if err := o.dispatch(ctx, op, config.ActionDown, o.actionVars(op, opts.Purge)); err != nil {
			return err
		}
		_, err := o.WaitFor(ctx, op.target, config.ActionDown, opts.Timeout, downPostconditions)
		return err
	})
}

// transition locks the deployment, runs steps and records the outcome.
func (o *Orchestrator) transition(ctx context.Context, name, action string, force bool, command string, steps func(*operation) error) error {
	target, err := o.Target(name)
	if err != nil {
		return err
	}

	op := &operation{id: o.newID(), action: action, force: force, target: target}
	lock, err := o.store.Lock(name, action, op.id)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.Error("Orchestrator", err, "Failed to release deployment %s", name)
		}
	}()

	started := o.now()
	logging.Operation(logging.OperationEvent{
		Deployment:  name,
		Environment: target.Environment.Name,
		Action:      action,
		Outcome:     logging.OutcomeStarted,
		OperationID: op.id,
		Force:       force,
	})

	stepErr := steps(op)

	finished := o.now()
	outcome, errText := history.OutcomeSuccess, ""
	if stepErr != nil {
		outcome, errText = history.OutcomeFailure, stepErr.Error()
	}
	logging.Operation(logging.OperationEvent{
		Deployment:  name,
		Environment: target.Environment.Name,
		Action:      action,
		Outcome:     outcome,
		OperationID: op.id,
		Force:       force,
		Duration:    finished.Sub(started),
		Error:       errText,
	})

	if o.history != nil {
		// Recording must happen even when ctx was cancelled mid-operation.
		err := o.history.Record(context.WithoutCancel(ctx), history.Entry{
			ID:          op.id,
			Deployment:  name,
			Environment: target.Environment.Name,
			Action:      action,
			Command:     command,
			Force:       force,
			Outcome:     outcome,
			Error:       errText,
			StartedAt:   started,
			FinishedAt:  finished,
		})
		if err != nil {
			logging.Warn("Orchestrator", "Failed to record %s of deployment %s in history: %v", action, name, err)
		}
	}
	return stepErr
}

func (o *Orchestrator) precondition(ctx context.Context, op *operation, want []Expectation) error {
	if op.force {
		logging.Warn("Orchestrator", "Skipping %s preconditions of deployment %s (forced)", op.action, op.name())
		return nil
	}
	snap, err := o.collector.Collect(ctx, op.target)
	if err != nil {
		return &PreconditionError{Deployment: op.name(), Action: op.action, Err: err}
	}
	if u := check(snap, want); u != nil {
		return &PreconditionError{
			Deployment: op.name(),
			Action:     op.action,
			Component:  u.Component,
			Got:        u.Got,
			Want:       u.Want,
		}
	}
	return nil
}

func (o *Orchestrator) recordMetadata(op *operation, command string) error {
	now := o.now().UTC()
	_, err := o.store.UpdateMetadata(op.name(), func(m *deployment.Metadata) {
		switch op.action {
		case config.ActionUp:
			m.LastUpTime = &now
			m.LastUpCommand = command
		case config.ActionDown:
			m.LastDownTime = &now
			m.LastDownCommand = command
		}
		m.LastOperationID = op.id
	})
	if err != nil {
		return fmt.Errorf("failed to record %s metadata of deployment %s: %w", op.action, op.name(), err)
	}
	return nil
}

func (o *Orchestrator) dispatch(ctx context.Context, op *operation, action string, vars map[string]interface{}) error {
	logging.Info("Orchestrator", "Running %s for deployment %s", action, op.name())
	result, err := o.runner.Run(ctx, action, vars, o.timeouts.Action)
	if err != nil {
		return &RemoteActionError{Deployment: op.name(), Action: op.action, RemoteAction: action, Err: err}
	}
	logging.Debug("Orchestrator", "%s for deployment %s finished in %s", action, op.name(), result.Duration)
	return nil
}

// actionVars are the parameters handed to every remote action. Paths are
// passed through unparsed.
func (o *Orchestrator) actionVars(op *operation, purge bool) map[string]interface{} {
	s := op.target.Deployment.Settings
	return map[string]interface{}{
		"deployment":       s.Name,
		"environment":      op.target.Environment.Name,
		"provider":         string(op.target.Environment.Provider),
		"region":           op.target.Environment.Region,
		"operationId":      op.id,
		"distributionFile": o.store.DistributionPath(s.Name),
		"artifactsDir":     s.ArtifactsDir,
		"configsDir":       s.ConfigsDir,
		"registry":         s.Registry,
		"services":         s.Services,
		"purgeAllData":     purge,
	}
}

// WaitFor polls target until every expectation holds or timeout elapses.
// The first poll is immediate. A failed poll counts as not converged. It
// returns the converged snapshot, a *ConvergenceTimeoutError, or the
// cancellation error of ctx.
func (o *Orchestrator) WaitFor(ctx context.Context, target collector.Target, action string, timeout time.Duration, want []Expectation) (*collector.Snapshot, error) {
	name := target.Deployment.Name()
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		polls   int
		last    *unmet
		lastErr error
	)
	for {
		polls++
		snap, err := o.collector.Collect(waitCtx, target)
		switch {
		case err != nil:
			lastErr = err
			logging.Warn("Orchestrator", "Status poll %d of deployment %s failed: %v", polls, name, err)
		default:
			lastErr = nil
			last = check(snap, want)
			if last == nil {
				logging.Info("Orchestrator", "Deployment %s converged for %s after %d polls", name, action, polls)
				return snap, nil
			}
			logging.Debug("Orchestrator", "Deployment %s not converged for %s: %v is %s",
				name, action, last.Component, last.Got)
		}

		timer := time.NewTimer(o.pollInterval)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%s of deployment %s interrupted: %w", action, name, err)
			}
			te := &ConvergenceTimeoutError{
				Deployment: name,
				Action:     action,
				Timeout:    timeout,
				Polls:      polls,
				LastErr:    lastErr,
			}
			if last != nil {
				te.Component, te.Got, te.Want = last.Component, last.Got, last.Want
			}
			if errors.Is(lastErr, context.DeadlineExceeded) {
				te.LastErr = nil
			}
			return nil, te
		case <-timer.C:
		}
	}
}

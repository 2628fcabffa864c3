// Package runner dispatches remote lifecycle actions.
//
// An action is rendered from a configured command template and executed
// through a shell. What the command does on the remote side (an ansible
// playbook, a compose invocation over ssh) is opaque to racectl; only its
// exit status and combined output are observed.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"racectl/internal/config"
	"racectl/internal/template"
	"racectl/pkg/logging"
)

// Runner executes one remote action synchronously.
type Runner interface {
	Run(ctx context.Context, action string, vars map[string]interface{}, timeout time.Duration) (*Result, error)
}

// Result describes a finished action.
type Result struct {
	Action   string
	Command  string
	Output   string
	Duration time.Duration
}

// ActionError reports an action that could not be rendered or exited
// unsuccessfully.
type ActionError struct {
	Action  string
	Command string
	Output  string
	Err     error
}

func (e *ActionError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("action %s failed: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("action %s failed: %v\nOutput: %s", e.Action, e.Err, e.Output)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// ErrUnknownAction is returned for an action without a command template.
var ErrUnknownAction = errors.New("no command configured for action")

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// ExecRunner runs actions as shell commands rendered from templates.
type ExecRunner struct {
	shell       string
	playbookDir string
	commands    map[string]string
	engine      *template.Engine
}

// NewExecRunner creates a runner from the runner configuration section.
func NewExecRunner(cfg config.RunnerConfig) *ExecRunner {
	commands := make(map[string]string, len(cfg.Commands))
	for k, v := range cfg.Commands {
		commands[k] = v
	}
	shell := cfg.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	return &ExecRunner{
		shell:       shell,
		playbookDir: cfg.PlaybookDir,
		commands:    commands,
		engine:      template.New(),
	}
}

// Command renders the command line of an action without running it.
func (r *ExecRunner) Command(action string, vars map[string]interface{}) (string, error) {
	text, ok := r.commands[action]
	if !ok {
		return "", &ActionError{Action: action, Err: ErrUnknownAction}
	}

	data := template.MergeContexts(vars, map[string]interface{}{
		"action":      action,
		"playbookDir": r.playbookDir,
		"vars":        vars,
	})
	command, err := r.engine.Render(action, text, data)
	if err != nil {
		return "", &ActionError{Action: action, Err: err}
	}
	return command, nil
}

// Run renders and executes an action, bounded by timeout when positive.
func (r *ExecRunner) Run(ctx context.Context, action string, vars map[string]interface{}, timeout time.Duration) (*Result, error) {
	command, err := r.Command(action, vars)
	if err != nil {
		return nil, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logging.Info("Runner", "Running action %s", action)
	logging.Debug("Runner", "Command: %s", command)

	start := time.Now()
	cmd := execCommandContext(ctx, r.shell, "-c", command)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	runErr := cmd.Run()

	result := &Result{
		Action:   action,
		Command:  command,
		Output:   out.String(),
		Duration: time.Since(start),
	}

	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = fmt.Errorf("%w after %s", ctxErr, result.Duration.Round(time.Millisecond))
		}
		logging.Error("Runner", runErr, "Action %s failed", action)
		return result, &ActionError{Action: action, Command: command, Output: result.Output, Err: runErr}
	}

	logging.Info("Runner", "Action %s finished in %s", action, result.Duration.Round(time.Millisecond))
	return result, nil
}

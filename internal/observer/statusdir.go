package observer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"racectl/internal/status"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// PersonaStatus is the self-reported state of one node persona.
type PersonaStatus struct {
	Daemon    status.DaemonStatus
	App       status.AppStatus
	Race      status.RaceStatus
	Artifacts status.ArtifactsStatus
	Configs   status.ConfigsStatus
	Etc       status.EtcStatus
	Updated   time.Time
}

// NotReporting is the status of a persona that has not reported.
func NotReporting() PersonaStatus {
	return PersonaStatus{
		Daemon:    status.DaemonNotReporting,
		App:       status.AppNotReporting,
		Race:      status.RaceNotReporting,
		Artifacts: status.ArtifactsNotReporting,
		Configs:   status.ConfigsNotReporting,
		Etc:       status.EtcNotReporting,
	}
}

// NodeObserver reports the self-reported state of personas.
type NodeObserver interface {
	PersonaStatuses(ctx context.Context, deployment string, personas []string) (map[string]PersonaStatus, error)
}

// statusFile is the document a daemon writes about itself.
type statusFile struct {
	Daemon    string    `yaml:"daemon"`
	App       string    `yaml:"app"`
	Race      string    `yaml:"race"`
	Artifacts string    `yaml:"artifacts"`
	Configs   string    `yaml:"configs"`
	Etc       string    `yaml:"etc"`
	Updated   time.Time `yaml:"updated"`
}

// StatusDirObserver reads one status file per persona, {dir}/{persona}.yaml,
// as synced from the nodes by the status reporting action.
type StatusDirObserver struct {
	dir         func(deployment string) string
	maxParallel int
	staleAfter  time.Duration
	now         func() time.Time
}

// NewStatusDirObserver creates an observer reading status files from the
// directory dir returns for a deployment. Reports older than staleAfter are
// treated as not reporting; zero disables the check.
func NewStatusDirObserver(dir func(deployment string) string, maxParallel int, staleAfter time.Duration) *StatusDirObserver {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &StatusDirObserver{dir: dir, maxParallel: maxParallel, staleAfter: staleAfter, now: time.Now}
}

// PersonaStatuses reads every persona's file concurrently. Missing or stale
// files yield NotReporting; unreadable files are an error.
func (o *StatusDirObserver) PersonaStatuses(ctx context.Context, deployment string, personas []string) (map[string]PersonaStatus, error) {
	dir := o.dir(deployment)
	results := make([]PersonaStatus, len(personas))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxParallel)
	for i, persona := range personas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ps, err := o.read(filepath.Join(dir, persona+".yaml"))
			if err != nil {
				return fmt.Errorf("persona %s: %w", persona, err)
			}
			results[i] = ps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]PersonaStatus, len(personas))
	for i, persona := range personas {
		out[persona] = results[i]
	}
	return out, nil
}

func (o *StatusDirObserver) read(path string) (PersonaStatus, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NotReporting(), nil
	}
	if err != nil {
		return PersonaStatus{}, err
	}

	var f statusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return PersonaStatus{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if o.staleAfter > 0 && o.now().Sub(f.Updated) > o.staleAfter {
		return NotReporting(), nil
	}

	return PersonaStatus{
		Daemon:    status.ParseDaemonStatus(f.Daemon),
		App:       status.ParseAppStatus(f.App),
		Race:      status.ParseRaceStatus(f.Race),
		Artifacts: status.ParseArtifactsStatus(f.Artifacts),
		Configs:   status.ParseConfigsStatus(f.Configs),
		Etc:       status.ParseEtcStatus(f.Etc),
		Updated:   f.Updated,
	}, nil
}

package deployment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"racectl/pkg/logging"

	"gopkg.in/yaml.v3"
)

const lockFileName = "active-operation"

// ErrLocked is matched by LockedError.
var ErrLocked = errors.New("deployment has an active operation")

// Holder describes the operation holding a deployment lock.
type Holder struct {
	Action      string    `yaml:"action"`
	OperationID string    `yaml:"operationId"`
	PID         int       `yaml:"pid"`
	StartedAt   time.Time `yaml:"startedAt"`
}

// LockedError reports a deployment already locked by another operation.
type LockedError struct {
	Deployment string
	Holder     Holder
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("deployment %s is locked by %s operation %s (pid %d, since %s)",
		e.Deployment, e.Holder.Action, e.Holder.OperationID, e.Holder.PID,
		e.Holder.StartedAt.Format(time.RFC3339))
}

func (e *LockedError) Is(target error) bool {
	return target == ErrLocked
}

// Lock is a held active-operation marker.
type Lock struct {
	path string
}

// Lock marks an operation as active on a deployment. It fails with a
// LockedError while another marker exists. The marker outlives a crashed
// process and must then be cleared with Unlock.
func (s *Store) Lock(name, action, operationID string) (*Lock, error) {
	dir := s.storage.EntityDir(entityDeployments, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, lockFileName)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			holder, _ := readHolder(path)
			return nil, &LockedError{Deployment: name, Holder: holder}
		}
		return nil, fmt.Errorf("failed to create lock %s: %w", path, err)
	}
	defer f.Close()

	holder := Holder{Action: action, OperationID: operationID, PID: os.Getpid(), StartedAt: s.now().UTC()}
	if err := yaml.NewEncoder(f).Encode(holder); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write lock %s: %w", path, err)
	}

	logging.Debug("Store", "Locked deployment %s for %s", name, action)
	return &Lock{path: path}, nil
}

// Release removes the marker. Releasing twice is harmless.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to release lock %s: %w", l.path, err)
	}
	return nil
}

// ActiveOperation reports the operation holding a deployment, if any.
func (s *Store) ActiveOperation(name string) (Holder, bool) {
	holder, err := readHolder(filepath.Join(s.storage.EntityDir(entityDeployments, name), lockFileName))
	if errors.Is(err, os.ErrNotExist) {
		return Holder{}, false
	}
	return holder, true
}

// Unlock clears a stale marker left by a crashed process.
func (s *Store) Unlock(name string) error {
	return (&Lock{path: filepath.Join(s.storage.EntityDir(entityDeployments, name), lockFileName)}).Release()
}

func readHolder(path string) (Holder, error) {
	var holder Holder
	data, err := os.ReadFile(path)
	if err != nil {
		return holder, err
	}
	// A marker that does not parse still holds the lock.
	_ = yaml.Unmarshal(data, &holder)
	return holder, nil
}

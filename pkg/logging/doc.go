// Package logging provides subsystem-tagged structured logging for racectl.
//
// The package wraps Go's standard slog package so that every entry carries the
// subsystem that produced it. Callers never hold a logger; they call the
// package-level helpers with a subsystem name:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Orchestrator", "Deployment %s is up", name)
//	logging.Debug("Collector", "Fetched %d hosts for role %s", n, role)
//	logging.Warn("Store", "Skipping incompatible deployment %s", name)
//	logging.Error("Runner", err, "Action %s failed", action)
//
// # Subsystems
//
//   - Bootstrap: CLI initialization and wiring
//   - Config: configuration loading and validation
//   - Store: environment and deployment records
//   - Topology: persona distribution
//   - Collector: status fan-out and aggregation
//   - Observer: docker, aws and status-dir observers
//   - Runner: remote action dispatch
//   - Orchestrator: up/down transitions and polling
//   - History: operation log
//
// # Operation Records
//
// Every lifecycle transition emits an operation record at INFO level with an
// [OPERATION] prefix so transitions can be grepped out of a noisy log:
//
//	logging.Operation(logging.OperationEvent{
//	    Deployment:  "my-deployment",
//	    Action:      "up",
//	    Outcome:     "success",
//	    OperationID: id,
//	})
//
// The logging system is safe for concurrent use once initialized.
package logging

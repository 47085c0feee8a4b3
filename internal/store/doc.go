// Package store provides SQLite-backed history for harness runs.
//
// Persisting runs is optional (the --db flag); when enabled, each run of a
// check records:
//   - Runs: one row per scenario/check execution, with its verdict
//   - Trials: one row per spawned process pair, with duration and size
//   - Fairness samples: one row per repetition, with its ratio
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: trial and sample rows always hang off a run
//
// The connection pool is capped at a single connection because SQLite
// permits one writer; the harness writes from one goroutine per run.
package store

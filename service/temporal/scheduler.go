package temporal

import (
	"context"
	"time"
)

// Scheduler manages Temporal schedules for chain-to-database tip syncs.
// Each network gets its own schedule that triggers the SyncTipsWorkflow.
type Scheduler interface {
	// CreateSyncSchedule creates a schedule that runs the SyncTipsWorkflow
	// on the given interval for the given network. It fails if the schedule
	// already exists.
	CreateSyncSchedule(ctx context.Context, network string, interval time.Duration) error

	// UpsertSyncSchedule creates the schedule, or updates its interval if it
	// already exists. Safe to call on every worker boot.
	UpsertSyncSchedule(ctx context.Context, network string, interval time.Duration) error

	// DeleteSyncSchedule deletes the sync schedule for a network.
	DeleteSyncSchedule(ctx context.Context, network string) error
}

// scheduleID returns the Temporal schedule ID for a network's tip sync.
func scheduleID(network string) string {
	return "sync-tips-" + network
}

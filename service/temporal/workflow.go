package temporal

import (
	"fmt"
	"time"

	temporalsdk "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

var a *Activities // for type-safe activity invocation

// SyncTipsWorkflow is the Temporal workflow that mirrors on-chain tip
// records into the database and publishes newly discovered tips to NATS.
// It is triggered by a Temporal schedule at a configured interval.
//
// The workflow performs these steps:
// 1. Load and decode all tip record accounts (LoadTipRecords activity)
// 2. Upsert them into the tip cache (WriteTips activity)
// 3. Publish newly indexed tips to NATS (PublishTips activity)
//
// Publishing is best-effort: a NATS outage must not prevent the cache from
// staying current, so a publish failure is logged and the sync succeeds.
func SyncTipsWorkflow(ctx workflow.Context, input SyncTipsInput) (*SyncTipsResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("SyncTipsWorkflow started", "network", input.Network)

	result := &SyncTipsResult{
		Network:  input.Network,
		SyncTime: workflow.Now(ctx),
	}

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 120 * time.Second,
		RetryPolicy: &temporalsdk.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	// Step 1: load and decode on-chain records
	var loaded *LoadTipRecordsResult
	err := workflow.ExecuteActivity(ctx, a.LoadTipRecords, LoadTipRecordsInput{Network: input.Network}).Get(ctx, &loaded)
	if err != nil {
		errMsg := fmt.Sprintf("failed to load tip records: %v", err)
		result.Error = &errMsg
		return result, fmt.Errorf("failed to load tip records: %w", err)
	}
	result.Loaded = len(loaded.Tips)
	result.Skipped = loaded.Skipped

	// Step 2: write to the tip cache
	var written *WriteTipsResult
	err = workflow.ExecuteActivity(ctx, a.WriteTips, WriteTipsInput{Network: input.Network, Tips: loaded.Tips}).Get(ctx, &written)
	if err != nil {
		errMsg := fmt.Sprintf("failed to write tips: %v", err)
		result.Error = &errMsg
		return result, fmt.Errorf("failed to write tips: %w", err)
	}
	result.Written = written.Written

	// Step 3: publish newly indexed tips (best-effort)
	if len(written.New) > 0 {
		var published *PublishTipsResult
		err = workflow.ExecuteActivity(ctx, a.PublishTips, PublishTipsInput{Network: input.Network, Tips: written.New}).Get(ctx, &published)
		if err != nil {
			logger.Warn("failed to publish tip events", "error", err)
		} else {
			result.Published = published.Published
		}
	}

	logger.Info("SyncTipsWorkflow completed",
		"network", input.Network,
		"loaded", result.Loaded,
		"skipped", result.Skipped,
		"written", result.Written,
		"published", result.Published,
	)
	return result, nil
}

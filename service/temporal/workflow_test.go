package temporal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
)

func TestSyncTipsWorkflow(t *testing.T) {
	tests := []struct {
		name           string
		input          SyncTipsInput
		mockActivities func(env *testsuite.TestWorkflowEnvironment)
		expectedError  bool
		validateResult func(t *testing.T, result *SyncTipsResult)
	}{
		{
			name:  "successful sync with new tips",
			input: SyncTipsInput{Network: "devnet"},
			mockActivities: func(env *testsuite.TestWorkflowEnvironment) {
				loaded := &LoadTipRecordsResult{
					Tips: []IndexedTip{
						{RecordAddress: "rec-1", TipperAddress: "tipper1", AmountLamports: 100, TimestampSeconds: 1},
						{RecordAddress: "rec-2", TipperAddress: "tipper2", AmountLamports: 200, TimestampSeconds: 2},
					},
					Skipped: 1,
				}
				env.OnActivity(a.LoadTipRecords, mock.Anything, mock.Anything).Return(loaded, nil)

				written := &WriteTipsResult{
					Written: 1,
					New:     []IndexedTip{{RecordAddress: "rec-2"}},
				}
				env.OnActivity(a.WriteTips, mock.Anything, mock.Anything).Return(written, nil)

				env.OnActivity(a.PublishTips, mock.Anything, mock.Anything).Return(&PublishTipsResult{Published: 1}, nil)
			},
			validateResult: func(t *testing.T, result *SyncTipsResult) {
				assert.Equal(t, "devnet", result.Network)
				assert.Equal(t, 2, result.Loaded)
				assert.Equal(t, 1, result.Skipped)
				assert.Equal(t, 1, result.Written)
				assert.Equal(t, 1, result.Published)
				assert.Nil(t, result.Error)
			},
		},
		{
			name:  "sync with no new tips skips publishing",
			input: SyncTipsInput{Network: "devnet"},
			mockActivities: func(env *testsuite.TestWorkflowEnvironment) {
				loaded := &LoadTipRecordsResult{
					Tips: []IndexedTip{{RecordAddress: "rec-1"}},
				}
				env.OnActivity(a.LoadTipRecords, mock.Anything, mock.Anything).Return(loaded, nil)

				// Everything was already indexed; PublishTips is never invoked.
				env.OnActivity(a.WriteTips, mock.Anything, mock.Anything).Return(&WriteTipsResult{}, nil)
			},
			validateResult: func(t *testing.T, result *SyncTipsResult) {
				assert.Equal(t, 1, result.Loaded)
				assert.Zero(t, result.Written)
				assert.Zero(t, result.Published)
			},
		},
		{
			name:  "load failure fails the sync",
			input: SyncTipsInput{Network: "devnet"},
			mockActivities: func(env *testsuite.TestWorkflowEnvironment) {
				env.OnActivity(a.LoadTipRecords, mock.Anything, mock.Anything).Return(nil, errors.New("rpc unavailable"))
			},
			expectedError: true,
		},
		{
			name:  "write failure fails the sync",
			input: SyncTipsInput{Network: "devnet"},
			mockActivities: func(env *testsuite.TestWorkflowEnvironment) {
				loaded := &LoadTipRecordsResult{
					Tips: []IndexedTip{{RecordAddress: "rec-1"}},
				}
				env.OnActivity(a.LoadTipRecords, mock.Anything, mock.Anything).Return(loaded, nil)
				env.OnActivity(a.WriteTips, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
			},
			expectedError: true,
		},
		{
			name:  "publish failure is tolerated",
			input: SyncTipsInput{Network: "devnet"},
			mockActivities: func(env *testsuite.TestWorkflowEnvironment) {
				loaded := &LoadTipRecordsResult{
					Tips: []IndexedTip{{RecordAddress: "rec-1"}},
				}
				env.OnActivity(a.LoadTipRecords, mock.Anything, mock.Anything).Return(loaded, nil)

				written := &WriteTipsResult{
					Written: 1,
					New:     []IndexedTip{{RecordAddress: "rec-1"}},
				}
				env.OnActivity(a.WriteTips, mock.Anything, mock.Anything).Return(written, nil)

				env.OnActivity(a.PublishTips, mock.Anything, mock.Anything).Return(nil, errors.New("nats unavailable"))
			},
			validateResult: func(t *testing.T, result *SyncTipsResult) {
				// The cache stayed current even though publishing failed.
				assert.Equal(t, 1, result.Written)
				assert.Zero(t, result.Published)
				assert.Nil(t, result.Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var testSuite testsuite.WorkflowTestSuite
			env := testSuite.NewTestWorkflowEnvironment()

			tt.mockActivities(env)

			env.ExecuteWorkflow(SyncTipsWorkflow, tt.input)

			require.True(t, env.IsWorkflowCompleted())

			if tt.expectedError {
				require.Error(t, env.GetWorkflowError())
				return
			}

			require.NoError(t, env.GetWorkflowError())
			var result SyncTipsResult
			require.NoError(t, env.GetWorkflowResult(&result))
			if tt.validateResult != nil {
				tt.validateResult(t, &result)
			}
		})
	}
}

func TestMockScheduler(t *testing.T) {
	ctx := t.Context()
	s := NewMockScheduler()

	require.NoError(t, s.CreateSyncSchedule(ctx, "devnet", 0))
	assert.True(t, s.HasSchedule("devnet"))
	assert.False(t, s.HasSchedule("mainnet"))

	require.NoError(t, s.DeleteSyncSchedule(ctx, "devnet"))
	assert.False(t, s.HasSchedule("devnet"))

	s.SetCreateError(errors.New("temporal unavailable"))
	require.Error(t, s.CreateSyncSchedule(ctx, "devnet", 0))
}

func TestMockSchedulerUpsert(t *testing.T) {
	ctx := t.Context()
	s := NewMockScheduler()

	// Upserting is safe to repeat: a second boot with a new interval
	// updates the existing schedule instead of failing.
	require.NoError(t, s.UpsertSyncSchedule(ctx, "devnet", time.Minute))
	require.NoError(t, s.UpsertSyncSchedule(ctx, "devnet", 5*time.Minute))
	assert.True(t, s.HasSchedule("devnet"))
	assert.Equal(t, 5*time.Minute, s.ScheduleInterval("devnet"))
}

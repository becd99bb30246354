package temporal

import (
	"context"
	"sync"
	"time"
)

// MockScheduler is a mock implementation of Scheduler for testing.
type MockScheduler struct {
	mu        sync.RWMutex
	schedules map[string]time.Duration
	createErr error
	deleteErr error
}

// NewMockScheduler creates a new mock scheduler for testing.
func NewMockScheduler() *MockScheduler {
	return &MockScheduler{
		schedules: make(map[string]time.Duration),
	}
}

// CreateSyncSchedule records the schedule and returns any configured error.
func (m *MockScheduler) CreateSyncSchedule(ctx context.Context, network string, interval time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	m.schedules[scheduleID(network)] = interval
	return nil
}

// UpsertSyncSchedule records or replaces the schedule and returns any
// configured error.
func (m *MockScheduler) UpsertSyncSchedule(ctx context.Context, network string, interval time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	m.schedules[scheduleID(network)] = interval
	return nil
}

// DeleteSyncSchedule removes the schedule and returns any configured error.
func (m *MockScheduler) DeleteSyncSchedule(ctx context.Context, network string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.schedules, scheduleID(network))
	return nil
}

// HasSchedule reports whether a schedule exists for the network.
func (m *MockScheduler) HasSchedule(network string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.schedules[scheduleID(network)]
	return ok
}

// ScheduleInterval returns the recorded interval for a network's schedule.
func (m *MockScheduler) ScheduleInterval(network string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.schedules[scheduleID(network)]
}

// SetCreateError configures the mock to fail schedule creation.
func (m *MockScheduler) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createErr = err
}

// SetDeleteError configures the mock to fail schedule deletion.
func (m *MockScheduler) SetDeleteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr = err
}

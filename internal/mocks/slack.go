package mocks

import (
	"context"
	"sync"
)

// Mock Slack notifier
type MockNotifier struct {
	mu        sync.Mutex
	Summaries []string
	Err       error
}

func (m *MockNotifier) NotifyDigestSent(ctx context.Context, summary string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Summaries = append(m.Summaries, summary)
	return nil
}

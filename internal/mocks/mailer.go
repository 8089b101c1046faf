package mocks

import (
	"context"
	"sync"

	"github.com/pep299/article-digest/internal/mailer"
)

// Mock mail sender
type MockSender struct {
	mu   sync.Mutex
	Sent []mailer.Message
	Err  error
}

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *MockSender) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

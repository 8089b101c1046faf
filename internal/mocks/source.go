package mocks

import (
	"context"
)

// Mock sheets source that fails every call
type MockSource struct {
	LoadErr   error
	AppendErr error
}

func (m *MockSource) LoadRows(ctx context.Context, rangeA1 string) ([][]string, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return [][]string{}, nil
}

func (m *MockSource) AppendRows(ctx context.Context, rangeA1 string, rows [][]string) (int, error) {
	if m.AppendErr != nil {
		return 0, m.AppendErr
	}
	return 1, nil
}

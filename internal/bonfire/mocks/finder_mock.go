package mocks

import (
	"context"
)

// MockSaveFileFinder はSaveFileFinderのモック実装です
type MockSaveFileFinder struct {
	FoundFile string
	Error     error
}

// Find はモック実装です
func (m *MockSaveFileFinder) Find() (string, error) {
	if m.Error != nil {
		return "", m.Error
	}
	return m.FoundFile, nil
}

// MockWatcher はWatcherのモック実装です。
// Changes の回数だけ onChange を呼び出してから終了します。
type MockWatcher struct {
	Changes     int
	Error       error
	WatchedPath string
	Results     []error
}

// Watch はモック実装です
func (m *MockWatcher) Watch(ctx context.Context, path string, onChange func() error) error {
	m.WatchedPath = path
	if m.Error != nil {
		return m.Error
	}
	for i := 0; i < m.Changes; i++ {
		if err := ctx.Err(); err != nil {
			return nil
		}
		m.Results = append(m.Results, onChange())
	}
	return nil
}

package nimbus

import (
	"context"
)

// MockBackend is a mock implementation of Backend.
type MockBackend struct {
	StreamTextFunc    func(ctx context.Context, req TextRequest) TextStream
	GenerateImageFunc func(ctx context.Context, req ImageRequest) (ImageRef, error)
	CloseFunc         func() error
}

func (m *MockBackend) StreamText(ctx context.Context, req TextRequest) TextStream {
	if m.StreamTextFunc != nil {
		return m.StreamTextFunc(ctx, req)
	}
	return fragments()
}

func (m *MockBackend) GenerateImage(ctx context.Context, req ImageRequest) (ImageRef, error) {
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, req)
	}
	return "data:image/jpeg;base64,", nil
}

func (m *MockBackend) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// fragments builds a stream that yields each fragment in order and then
// completes.
func fragments(parts ...string) TextStream {
	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
	}
}

// failingStream yields the given fragments and then fails with err.
func failingStream(err error, parts ...string) TextStream {
	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
		yield("", err)
	}
}

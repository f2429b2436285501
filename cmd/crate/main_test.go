package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/crate/internal/app"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newApp(ctrl *gomock.Controller, loader *mocks.MockConfigLoader, logger *mocks.MockLogger) *app.App {
	return app.New(
		loader,
		mocks.NewMockFileSystem(ctrl),
		mocks.NewMockVersionStore(ctrl),
		mocks.NewMockBuildInfoStore(ctrl),
		mocks.NewMockHasher(ctrl),
		nil,
		logger,
	).WithOutput(io.Discard, io.Discard)
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	application := newApp(ctrl, mocks.NewMockConfigLoader(ctrl), mockLogger)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mockLogger}, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run logs the error and returns 1 when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)
	application := newApp(ctrl, mockLoader, mockLogger)

	mockLoader.EXPECT().Load("/ws", "").Return(nil, domain.ErrConfigNotFound)
	mockLogger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: mockLogger}, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"status", "--cwd", "/ws", "--json"}, io.Discard, provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_Signal verifies that a canceled run exits with the interrupt code.
func TestRun_Signal(t *testing.T) {
	ctrl := gomock.NewController(t)
	blockCh := make(chan struct{})

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLoader.EXPECT().Load(gomock.Any(), gomock.Any()).DoAndReturn(func(string, string) (*domain.Config, error) {
		select {
		case <-blockCh:
			return nil, context.Canceled
		case <-time.After(5 * time.Second):
			return nil, errors.New("timeout in mock")
		}
	})
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	application := newApp(ctrl, mockLoader, mockLogger)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan int)

	go func() {
		errCh <- run(ctx, []string{"status", "--cwd", "/ws", "--json"}, io.Discard,
			func(context.Context) (*app.Components, func(), error) {
				return &app.Components{App: application, Logger: mockLogger}, func() {}, nil
			})
	}()

	// Wait a bit to ensure run() reaches Load()
	time.Sleep(100 * time.Millisecond)

	cancel()
	close(blockCh)

	select {
	case ret := <-errCh:
		assert.Equal(t, 130, ret)
	case <-time.After(2 * time.Second):
		t.Fatal("TestRun_Signal timed out waiting for run() to return")
	}
}

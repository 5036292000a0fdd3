package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/normcache/internal/adapters/clock"
	"go.trai.ch/normcache/internal/app"
	"go.trai.ch/normcache/internal/core/domain"
	"go.trai.ch/normcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newComponents(t *testing.T) (*app.Components, *mocks.MockConfigLoader, *mocks.MockStoreFactory, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)

	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockFactory := mocks.NewMockStoreFactory(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)

	application := app.New(mockLoader, mockFactory, mockLogger, clock.System{})
	return &app.Components{
		App:      application,
		Logger:   mockLogger,
		Shutdown: func(context.Context) error { return nil },
	}, mockLoader, mockFactory, mockLogger
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	components, _, _, _ := newComponents(t)
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
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

// TestRun_ExecutionError verifies that run returns 1 and logs when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	components, mockLoader, mockFactory, mockLogger := newComponents(t)

	openErr := errors.Join(domain.ErrStoreOpenFailed, errors.New("disk full"))
	mockLoader.EXPECT().Load(domain.ConfigFileName).Return(domain.DefaultConfig(), nil)
	mockFactory.EXPECT().Open(gomock.Any(), gomock.Any()).Return(nil, openErr)
	mockLogger.EXPECT().Error(openErr)

	cleaned := false
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() { cleaned = true }, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"dump"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.True(t, cleaned)
}

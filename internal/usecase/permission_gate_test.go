package usecase_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/usecase"
)

func TestPermissionGate_Transitions(t *testing.T) {
	gate := usecase.NewPermissionGate(nil, zap.NewNop())
	assert.Equal(t, domain.PermissionUnknown, gate.CurrentState())

	// Unknown -> Granted напрямую невозможен
	gate.OnExternalResult(true)
	assert.Equal(t, domain.PermissionUnknown, gate.CurrentState())

	gate.RequestPermission()
	assert.Equal(t, domain.PermissionRequested, gate.CurrentState())

	gate.OnExternalResult(true)
	assert.Equal(t, domain.PermissionGranted, gate.CurrentState())

	// повторный запрос при Granted - no-op
	gate.RequestPermission()
	assert.Equal(t, domain.PermissionGranted, gate.CurrentState())

	// ответ вне Requested игнорируется
	gate.OnExternalResult(false)
	assert.Equal(t, domain.PermissionGranted, gate.CurrentState())

	gate.OnRevoked()
	assert.Equal(t, domain.PermissionDenied, gate.CurrentState())

	gate.RequestPermission()
	assert.Equal(t, domain.PermissionRequested, gate.CurrentState())
}

func TestPermissionGate_DenyAndReRequest(t *testing.T) {
	gate := usecase.NewPermissionGate(nil, zap.NewNop())

	gate.RequestPermission()
	gate.OnExternalResult(false)
	assert.Equal(t, domain.PermissionDenied, gate.CurrentState())

	gate.OnRevoked()
	assert.Equal(t, domain.PermissionDenied, gate.CurrentState())

	gate.RequestPermission()
	gate.OnExternalResult(true)
	assert.Equal(t, domain.PermissionGranted, gate.CurrentState())
}

func TestPermissionGate_ObserversSeeEveryTransitionInOrder(t *testing.T) {
	gate := usecase.NewPermissionGate(nil, zap.NewNop())

	var mu sync.Mutex
	var seen []domain.PermissionState
	gate.Subscribe(func(s domain.PermissionState) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	gate.RequestPermission()
	gate.RequestPermission() // no-op
	gate.OnExternalResult(true)
	gate.OnExternalResult(true) // no-op
	gate.OnRevoked()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.PermissionState{
		domain.PermissionRequested,
		domain.PermissionGranted,
		domain.PermissionDenied,
	}, seen)
}

func TestPermissionGate_NeverGrantedToRequested(t *testing.T) {
	gate := usecase.NewPermissionGate(nil, zap.NewNop())

	var prev domain.PermissionState
	gate.Subscribe(func(s domain.PermissionState) {
		if prev == domain.PermissionGranted {
			assert.NotEqual(t, domain.PermissionRequested, s)
		}
		if s == domain.PermissionGranted {
			assert.Equal(t, domain.PermissionRequested, prev)
		}
		prev = s
	})

	calls := []func(){
		gate.RequestPermission,
		func() { gate.OnExternalResult(true) },
		gate.RequestPermission,
		func() { gate.OnExternalResult(false) },
		gate.OnRevoked,
		gate.RequestPermission,
		func() { gate.OnExternalResult(true) },
		gate.RequestPermission,
	}
	for _, call := range calls {
		call()
	}
	assert.Equal(t, domain.PermissionGranted, gate.CurrentState())
}

func TestPermissionGate_Prompter(t *testing.T) {
	t.Run("prompt sent once per request", func(t *testing.T) {
		prompter := &MockPermissionPrompter{}
		prompter.On("Prompt", mock.Anything, mock.AnythingOfType("domain.PermissionPromptEvent")).Return(nil).Once()

		gate := usecase.NewPermissionGate(prompter, zap.NewNop())
		gate.RequestPermission()
		gate.RequestPermission() // уже Requested
		gate.WaitPrompts()

		prompter.AssertExpectations(t)
		assert.Equal(t, domain.PermissionRequested, gate.CurrentState())
	})

	t.Run("prompt failure is treated as deny", func(t *testing.T) {
		prompter := &MockPermissionPrompter{}
		prompter.On("Prompt", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

		gate := usecase.NewPermissionGate(prompter, zap.NewNop())
		gate.RequestPermission()
		gate.WaitPrompts()

		prompter.AssertExpectations(t)
		assert.Equal(t, domain.PermissionDenied, gate.CurrentState())
	})
}

package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name  string
	err   error
	calls int
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Check(context.Context) error {
	s.calls++
	return s.err
}

func TestService_Ready(t *testing.T) {
	t.Parallel()

	t.Run("no checkers", func(t *testing.T) {
		assert.NoError(t, NewService().Ready(context.Background()))
	})

	t.Run("all healthy", func(t *testing.T) {
		a, b := &stubChecker{name: "postgres"}, &stubChecker{name: "redis"}
		s := NewService(a, b)
		require.NoError(t, s.Ready(context.Background()))
		assert.Equal(t, 1, a.calls)
		assert.Equal(t, 1, b.calls)
		assert.Equal(t, []string{"postgres", "redis"}, s.Names())
	})

	t.Run("first failure wins", func(t *testing.T) {
		down := errors.New("connection refused")
		a := &stubChecker{name: "mongo", err: down}
		b := &stubChecker{name: "redis"}
		err := NewService(a, b).Ready(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, down)
		assert.Contains(t, err.Error(), "mongo")
		assert.Zero(t, b.calls)
	})
}

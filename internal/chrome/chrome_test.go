package chrome

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLaunchable_MissingExecPath(t *testing.T) {
	assert.False(t, Launchable(Options{ExecPath: "/nonexistent/chrome-binary"}))
}

func TestUnavailable(t *testing.T) {
	assert.NoError(t, Unavailable(nil))

	cause := errors.New("exec: not found")
	err := Unavailable(cause)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, err, Unavailable(err))
}

func TestNewContext_CancelReleases(t *testing.T) {
	ctx, cancel := NewContext(context.Background(), Options{})
	cancel()
	<-ctx.Done()
	assert.Error(t, ctx.Err())
}

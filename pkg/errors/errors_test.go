package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	e1 := New("cause1")
	e2 := New("cause2").Wrap(e1)
	e := New("dummy").Wrap(e2)
	e3 := e.Unwrap()
	assert.True(t, Is(e, e1))
	assert.True(t, Is(e, e2))
	assert.True(t, e3 == e2)
	assert.Equal(t, "dummy: cause2: cause1", e.Error())
}

func TestSentinelNotMutated(t *testing.T) {
	sentinel := New("not found")
	cause := fmt.Errorf("disk on fire")

	wrapped := sentinel.Wrap(cause)
	detailed := sentinel.WithDetails("file %s", "a.mp4")

	assert.Equal(t, "not found", sentinel.Error())
	assert.Nil(t, sentinel.Unwrap())
	assert.Equal(t, "not found: disk on fire", wrapped.Error())
	assert.Equal(t, "not found: file a.mp4", detailed.Error())

	assert.True(t, Is(wrapped, sentinel))
	assert.True(t, Is(detailed, sentinel))
	assert.True(t, Is(detailed.Wrap(cause), sentinel))
	assert.True(t, Is(wrapped, cause))
	assert.False(t, Is(wrapped, New("not found")))
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("context: %w", New("inner").WithDetails("x"))

	var target *Error
	require.True(t, As(err, &target))
	assert.Equal(t, "inner: x", target.Error())
}

package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	e := Wrap(ClassRuntime, ECONNREFUSED, cause, "Connection to tcp://x:1 failed: boom (ECONNREFUSED)")
	require.ErrorIs(t, e, cause)
	assert.Equal(t, "Connection to tcp://x:1 failed: boom (ECONNREFUSED)", e.Error())
}

func TestError_IsByCode(t *testing.T) {
	a := Aborted("Connection to tcp://x:1 cancelled (ECONNABORTED)")
	b := Aborted("a different message")
	assert.True(t, errors.Is(a, b))
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "EINVAL", EINVAL.String())
	assert.Equal(t, "ECONNABORTED", ECONNABORTED.String())
	assert.Equal(t, "TIMEOUT", CodeTimeout.String())
	assert.Contains(t, Code(999999).String(), "ERRNO")
}

func TestFromDialError_Timeout(t *testing.T) {
	e := FromDialError(errTimeoutStub{})
	assert.Equal(t, ETIMEDOUT, e.Code)
}

type errTimeoutStub struct{}

func (errTimeoutStub) Error() string { return "i/o timeout" }
func (errTimeoutStub) Timeout() bool { return true }

func TestCodeOf(t *testing.T) {
	e := Invalid("bad")
	code, ok := CodeOf(e)
	require.True(t, ok)
	assert.Equal(t, EINVAL, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}

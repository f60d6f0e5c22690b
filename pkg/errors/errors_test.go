package errors

import (
	stderrors "errors"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeConfig, "invalid log level").WithDetail("value", "loud")

	assert.Equal(t, "config: invalid log level", err.Error())
	assert.True(t, IsType(err, ErrorTypeConfig))
	assert.False(t, IsType(err, ErrorTypeDecode))
	assert.NotEmpty(t, err.Stack)

	v, ok := err.Detail("value")
	require.True(t, ok)
	assert.Equal(t, "loud", v)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "nothing"))
}

func TestWrapPreservesCauseAndStack(t *testing.T) {
	inner := New(ErrorTypeDecode, "wrong field count")
	outer := Wrap(inner, ErrorTypeInternal, "scan failed")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.ErrorIs(t, outer, inner)
	assert.Equal(t, "internal: scan failed: decode: wrong field count", outer.Error())
}

func TestFileAccess(t *testing.T) {
	_, openErr := os.Open("/definitely/not/here.csv")
	require.Error(t, openErr)

	err := FileAccess(openErr, "/definitely/not/here.csv")

	assert.True(t, IsType(err, ErrorTypeFileAccess))
	assert.ErrorIs(t, err, os.ErrNotExist)
	path, _ := err.Detail("path")
	assert.Equal(t, "/definitely/not/here.csv", path)
}

func TestDecode(t *testing.T) {
	err := Decode(io.ErrUnexpectedEOF, 7)

	assert.True(t, IsType(err, ErrorTypeDecode))
	line, _ := err.Detail("line")
	assert.Equal(t, 7, line)

	var target *Error
	require.True(t, stderrors.As(err, &target))
	assert.Equal(t, "malformed row", target.Message)
}

func TestIsTypeForeignError(t *testing.T) {
	assert.False(t, IsType(io.EOF, ErrorTypeDecode))
	assert.False(t, IsType(nil, ErrorTypeDecode))
}

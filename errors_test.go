package sheetgrid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridErrorMessageIncludesKind(t *testing.T) {
	err := newGridError(ErrImageTooLarge, "image %s too big", "foo.png")
	assert.Equal(t, "ImageTooLarge: image foo.png too big", err.Error())
}

func TestIsInvalidSizeOnlyMatchesInvalidArgumentKind(t *testing.T) {
	assert.True(t, IsInvalidSize(newGridError(ErrInvalidArgument, "bad size")))
	assert.False(t, IsInvalidSize(newGridError(ErrSurfaceNotReady, "no surfaces")))
	assert.False(t, IsInvalidSize(errors.New("plain error")))
}

func TestErrorKindStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", ErrorKind(99).String())
}

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *SetupError
		expected string
	}{
		{
			name:     "simple error",
			err:      New(ErrGameNotFound, "installation not found"),
			expected: "[GAME_NOT_FOUND] installation not found",
		},
		{
			name:     "wrapped error",
			err:      Wrap(fmt.Errorf("permission denied"), ErrInstallCopy, "copy failed"),
			expected: "[INSTALL_COPY] copy failed: permission denied",
		},
		{
			name:     "formatted message",
			err:      Newf(ErrNoAsset, "no asset matching %q", "*.zip"),
			expected: `[NO_ASSET] no asset matching "*.zip"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestSetupError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("disk full")
	err := Wrap(inner, ErrInstallCopy, "copy failed")

	require.NotNil(t, err)
	assert.Equal(t, inner, errors.Unwrap(err))
}

func TestSetupError_Is(t *testing.T) {
	err := Newf(ErrDownload, "fetching %s", "lovely")

	assert.True(t, errors.Is(err, New(ErrDownload, "anything")))
	assert.False(t, errors.Is(err, New(ErrExtract, "anything")))
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternal, "should be nil"))
	assert.Nil(t, Wrapf(nil, ErrInternal, "should be %s", "nil"))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrExtract, GetCode(New(ErrExtract, "boom")))
	assert.Equal(t, ErrUnknown, GetCode(fmt.Errorf("plain error")))

	// code survives fmt wrapping
	wrapped := fmt.Errorf("outer: %w", New(ErrNoModContent, "nothing here"))
	assert.Equal(t, ErrNoModContent, GetCode(wrapped))
}

func TestIsCode(t *testing.T) {
	err := Wrap(fmt.Errorf("io"), ErrFileAccess, "stat failed")

	assert.True(t, IsCode(err, ErrFileAccess))
	assert.False(t, IsCode(err, ErrFileNotFound))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrFileAccess))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrInstallClean, "cannot remove").
		WithDetail("path", "/tmp/mods/Foo")

	assert.Equal(t, "/tmp/mods/Foo", err.Details["path"])
}

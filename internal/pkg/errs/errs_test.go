package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorKnownCode(t *testing.T) {
	customErr := NewError(ErrUsernameRequired)

	require.NotNil(t, customErr)
	assert.Equal(t, ErrUsernameRequired, customErr.Code)
	assert.Equal(t, http.StatusBadRequest, customErr.Status)
	assert.NotEmpty(t, customErr.Message)
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	customErr := NewError(999999)

	require.NotNil(t, customErr)
	assert.Equal(t, ErrUnknown, customErr.Code)
	assert.Equal(t, http.StatusInternalServerError, customErr.Status)
}

func TestNewErrorFormatsTemplateDetails(t *testing.T) {
	customErr := NewError(ErrMessageContentTooLong, 5000)

	require.NotNil(t, customErr)
	assert.Contains(t, customErr.Message, "5000")
}

func TestNewErrorDoesNotMutateTemplate(t *testing.T) {
	first := NewError(ErrMessageContentTooLong, 5000)
	second := NewError(ErrMessageContentTooLong, 42)

	assert.NotEqual(t, first.Message, second.Message)
	assert.Contains(t, second.Message, "42")
}

func TestCustomErrorImplementsError(t *testing.T) {
	var err error = NewError(ErrEmptyMessage)
	assert.Contains(t, err.Error(), "Error Code")
}

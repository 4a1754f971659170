package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "datalog/internal/errors"
)

// AssertAppError requires err to be an *AppError carrying expectedCode.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr, "expected *AppError with code %q", expectedCode)
	assert.Equal(t, expectedCode, appErr.Code, "message: %s", appErr.Message)
}

// AssertNoError stops the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	require.NoError(t, err)
}

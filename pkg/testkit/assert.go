package testkit

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/internal/api"
)

// AssertJSONEqual compares two JSON documents after normalising both through
// unmarshal, so key order and whitespace never matter.
func AssertJSONEqual(t testing.TB, expected, actual []byte) {
	t.Helper()

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(expected, &expVal), "expected value is not valid JSON")
	if !assert.NoError(t, json.Unmarshal(actual, &actVal), "actual value is not valid JSON\nbody: %s", string(actual)) {
		return
	}
	assert.Equal(t, expVal, actVal)
}

// AssertKind checks that err is an *api.Error of the given kind and, when
// message is non-empty, that it carries that user-facing message.
func AssertKind(t testing.TB, err, kind error, message string) {
	t.Helper()

	require.Error(t, err)
	assert.ErrorIs(t, err, kind)

	var apiErr *api.Error
	if !assert.True(t, errors.As(err, &apiErr), "want *api.Error, got %T: %v", err, err) {
		return
	}
	if message != "" {
		assert.Equal(t, message, apiErr.Message)
	}
}

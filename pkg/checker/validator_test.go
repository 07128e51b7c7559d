package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildValidator(t *testing.T) {
	t.Run("rejects unknown kinds", func(t *testing.T) {
		_, err := BuildValidator(ValidatorConfig{Kind: "regex"})
		assert.ErrorIs(t, err, errUnknownValidator)
	})

	t.Run("json_field requires a path", func(t *testing.T) {
		_, err := BuildValidator(ValidatorConfig{Kind: "json_field"})
		assert.ErrorIs(t, err, errMissingPath)
	})

	t.Run("body_contains requires a substring", func(t *testing.T) {
		_, err := BuildValidator(ValidatorConfig{Kind: "body_contains"})
		assert.ErrorIs(t, err, errMissingSubstring)
	})
}

func TestJSONFieldValidator(t *testing.T) {
	body := []byte(`{"status":"ok","nested":{"healthy":true},"empty":null}`)

	tests := []struct {
		name string
		cfg  ValidatorConfig
		want bool
	}{
		{"field equals expected", ValidatorConfig{Kind: "json_field", Path: "status", Equals: "ok"}, true},
		{"field differs from expected", ValidatorConfig{Kind: "json_field", Path: "status", Equals: "down"}, false},
		{"field exists without expectation", ValidatorConfig{Kind: "json_field", Path: "status"}, true},
		{"nested path", ValidatorConfig{Kind: "json_field", Path: "nested.healthy", Equals: "true"}, true},
		{"missing field", ValidatorConfig{Kind: "json_field", Path: "uptime"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := BuildValidator(tt.cfg)
			require.NoError(t, err)

			ok, err := v.Validate(200, body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	t.Run("invalid JSON is an error", func(t *testing.T) {
		v, err := BuildValidator(ValidatorConfig{Kind: "json_field", Path: "status"})
		require.NoError(t, err)

		_, err = v.Validate(200, []byte("<html>"))
		assert.ErrorIs(t, err, errInvalidJSONLookup)
	})
}

func TestBodyContainsValidator(t *testing.T) {
	v, err := BuildValidator(ValidatorConfig{Kind: "body_contains", Substring: "healthy"})
	require.NoError(t, err)

	ok, err := v.Validate(200, []byte("all systems healthy"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Validate(200, []byte("degraded"))
	require.NoError(t, err)
	assert.False(t, ok)
}

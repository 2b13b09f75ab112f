package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePermission(t *testing.T) {
	cases := map[string]Permission{
		"":         PermissionDefault,
		"default":  PermissionDefault,
		"Granted":  PermissionGranted,
		" denied ": PermissionDenied,
	}
	for input, want := range cases {
		got, err := ParsePermission(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParsePermission("maybe")
	assert.Error(t, err)
}

func TestPermissionGate(t *testing.T) {
	ctx := context.Background()
	gate := NewPermissionGate("")

	assert.Equal(t, PermissionDefault, gate.State())
	assert.False(t, gate.Granted())
	assert.False(t, gate.Requested())

	assert.Equal(t, PermissionDefault, gate.Request(ctx))
	assert.True(t, gate.Requested())

	gate.Set(ctx, PermissionGranted)
	assert.True(t, gate.Granted())

	gate.Set(ctx, PermissionDenied)
	assert.False(t, gate.Granted())
	assert.Equal(t, PermissionDenied, gate.State())
}

func TestPermissionGateGrantedSkipsPrompt(t *testing.T) {
	gate := NewPermissionGate(PermissionGranted)
	assert.Equal(t, PermissionGranted, gate.Request(context.Background()))
	assert.False(t, gate.Requested())
}

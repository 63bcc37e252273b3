package lock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyStableAndBounded(t *testing.T) {
	k1 := Key("notification:dispatch")
	k2 := Key("notification:dispatch")
	require.Equal(t, k1, k2)

	// MySQL GET_LOCK names are limited to 64 characters.
	long := Key("a-very-long-deployment-specific-dispatch-domain-name-that-goes-on-and-on")
	require.LessOrEqual(t, len(long), 64)

	require.NotEqual(t, Key("domain-a"), Key("domain-b"))
}

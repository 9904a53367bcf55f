//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestCallContext checks timeout vs cancel-only behavior of CallContext.
func TestCallContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := CallContext(context.Background(), 0)
	cancel()

	require.NotNil(t, ctx)
	require.Error(t, ctx.Err())

	_, ok := ctx.Deadline()
	require.False(t, ok)

	ctx, cancel = CallContext(context.Background(), 10*time.Millisecond)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

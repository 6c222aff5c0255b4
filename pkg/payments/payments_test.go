package payments

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLamports(t *testing.T) {
	require.Equal(t, int64(1000000000), Lamports(1))
	require.Equal(t, int64(10000000), Lamports(0.01))
	require.Equal(t, int64(50000000), Lamports(0.05))
	// 0.1 is not exactly representable in binary; decimal math must not drift.
	require.Equal(t, int64(100000000), Lamports(0.1))
	require.Equal(t, int64(2775000000), Lamports(2.775))
}

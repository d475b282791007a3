package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

func TestReleaseDelay(t *testing.T) {
	now := time.Unix(1700000100, 0)
	quote := &types.QuoteEntry{
		TimeLocks: types.QuoteTimelocks{
			SrcWithdrawal: 150,
			DstWithdrawal: 120,
		},
	}

	t.Run("both sides pending, src window is longer", func(t *testing.T) {
		// Both deployed 100s ago: 50s left on src, 20s on dst.
		delay := releaseDelay(quote, true, 1700000000, true, 1700000000, now)
		assert.Equal(t, 50*time.Second, delay)
	})

	t.Run("unobserved side contributes nothing", func(t *testing.T) {
		delay := releaseDelay(quote, false, 0, true, 1700000000, now)
		assert.Equal(t, 20*time.Second, delay)
	})

	t.Run("elapsed windows clamp to zero", func(t *testing.T) {
		delay := releaseDelay(quote, true, 1690000000, true, 1690000000, now)
		assert.Equal(t, time.Duration(0), delay)
	})

	t.Run("later dst deployment dominates", func(t *testing.T) {
		// Dst deployed 10s ago: 110s left, more than src's 50s.
		delay := releaseDelay(quote, true, 1700000000, true, 1700000090, now)
		assert.Equal(t, 110*time.Second, delay)
	})
}

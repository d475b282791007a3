package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSrcTimelocksAccessors(t *testing.T) {
	tl := NewSrcTimelocks(1700000000, 36, 336, 492, 612)
	assert.Equal(t, SideSrc, tl.Side())
	assert.Equal(t, uint64(1700000000), tl.DeployedAt())

	w, err := tl.SrcWithdrawal()
	require.NoError(t, err)
	assert.Equal(t, uint64(36), w)

	c, err := tl.SrcCancellation()
	require.NoError(t, err)
	assert.Equal(t, uint64(492), c)

	_, err = tl.DstWithdrawal()
	assert.ErrorIs(t, err, ErrNotDstTimelocks)
}

func TestDstTimelocksAccessors(t *testing.T) {
	tl := NewDstTimelocks(1700000000, 24, 324, 444)
	assert.Equal(t, SideDst, tl.Side())

	w, err := tl.DstWithdrawal()
	require.NoError(t, err)
	assert.Equal(t, uint64(24), w)

	_, err = tl.SrcWithdrawal()
	assert.ErrorIs(t, err, ErrNotSrcTimelocks)
}

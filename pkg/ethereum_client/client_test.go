package ethereum_client

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpackSrcTimelocks(t *testing.T) {
	// Build a packed word: stages 0-3 plus deployedAt in the top 32 bits.
	packed := new(big.Int)
	set := func(i uint, v uint64) {
		packed.Or(packed, new(big.Int).Lsh(new(big.Int).SetUint64(v), 32*i))
	}
	set(0, 36)
	set(1, 336)
	set(2, 492)
	set(3, 612)
	set(7, 1700000000)

	tl := unpackSrcTimelocks(packed)
	assert.Equal(t, uint64(1700000000), tl.DeployedAt())

	w, err := tl.SrcWithdrawal()
	require.NoError(t, err)
	assert.Equal(t, uint64(36), w)

	pw, err := tl.SrcPublicWithdrawal()
	require.NoError(t, err)
	assert.Equal(t, uint64(336), pw)

	c, err := tl.SrcCancellation()
	require.NoError(t, err)
	assert.Equal(t, uint64(492), c)

	pc, err := tl.SrcPublicCancellation()
	require.NoError(t, err)
	assert.Equal(t, uint64(612), pc)
}

func TestAddressFromUint256(t *testing.T) {
	want := common.HexToAddress("0x1111111111111111111111111111111111111111")
	got := addressFromUint256(new(big.Int).SetBytes(want.Bytes()))
	assert.Equal(t, want, got)
}

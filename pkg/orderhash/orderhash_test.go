package orderhash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manus-ai/fusion-coordinator/pkg/chainid"
	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

func sampleOrder() types.LimitOrder {
	return types.LimitOrder{
		Salt:         "123456789",
		Maker:        "0x1111111111111111111111111111111111111111",
		Receiver:     "0x2222222222222222222222222222222222222222",
		MakerAsset:   "0x3333333333333333333333333333333333333333",
		TakerAsset:   "0x4444444444444444444444444444444444444444",
		MakingAmount: "1000000000000000000",
		TakingAmount: "2000000000000000000",
		MakerTraits:  "0",
	}
}

func TestHashDeterministic(t *testing.T) {
	chain := chainid.NewEVMUint64(1)
	first, err := Hash(chain, sampleOrder())
	require.NoError(t, err)
	second, err := Hash(chain, sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHashBindsChainID(t *testing.T) {
	mainnet, err := Hash(chainid.NewEVMUint64(1), sampleOrder())
	require.NoError(t, err)
	polygon, err := Hash(chainid.NewEVMUint64(137), sampleOrder())
	require.NoError(t, err)
	assert.NotEqual(t, mainnet, polygon)
}

func TestHashSensitiveToFields(t *testing.T) {
	chain := chainid.NewEVMUint64(1)
	base, err := Hash(chain, sampleOrder())
	require.NoError(t, err)

	bumped := sampleOrder()
	bumped.MakingAmount = "1000000000000000001"
	changed, err := Hash(chain, bumped)
	require.NoError(t, err)
	assert.NotEqual(t, base, changed)
}

func TestSuiHashDiffersFromEVM(t *testing.T) {
	order := sampleOrder()
	// Sui amounts must fit u64.
	order.MakingAmount = "1000000"
	order.TakingAmount = "2000000"

	sui, err := Hash(chainid.Sui, order)
	require.NoError(t, err)
	evm, err := Hash(chainid.NewEVMUint64(1), order)
	require.NoError(t, err)
	assert.NotEqual(t, sui, evm)

	again, err := Hash(chainid.Sui, order)
	require.NoError(t, err)
	assert.Equal(t, sui, again)
}

func TestHashHexFormat(t *testing.T) {
	hex, err := HashHex(chainid.NewEVMUint64(1), sampleOrder())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hex, "0x"))
	assert.Len(t, hex, 66)
	assert.Equal(t, strings.ToLower(hex), hex)
}

func TestHashRejectsBadFields(t *testing.T) {
	chain := chainid.NewEVMUint64(1)

	badSalt := sampleOrder()
	badSalt.Salt = "not-a-number"
	_, err := Hash(chain, badSalt)
	assert.ErrorIs(t, err, ErrBadOrder)

	badAmount := sampleOrder()
	badAmount.MakingAmount = "1.5"
	_, err = Hash(chain, badAmount)
	assert.ErrorIs(t, err, ErrBadOrder)

	badAddress := sampleOrder()
	badAddress.Maker = "0xzz"
	_, err = Hash(chainid.Sui, badAddress)
	assert.ErrorIs(t, err, ErrBadOrder)
}

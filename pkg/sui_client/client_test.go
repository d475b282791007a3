package sui_client

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// hashlockHex is a 32-byte value whose first byte is 0xaa.
var hashlockHex = "0xaa" + strings.Repeat("00", 31)

func testClient(t *testing.T, escrowPackage string) *Client {
	t.Helper()
	return &Client{escrowPackage: escrowPackage, logger: zaptest.NewLogger(t)}
}

func TestIsEscrowCreated(t *testing.T) {
	c := testClient(t, "0xabc")
	assert.True(t, c.isEscrowCreated("0xabc::escrow::EscrowCreated"))
	assert.False(t, c.isEscrowCreated("0xdef::escrow::EscrowCreated"))
	assert.False(t, c.isEscrowCreated("0xabc::escrow::EscrowCancelled"))

	// Without a configured package any escrow module matches.
	open := testClient(t, "")
	assert.True(t, open.isEscrowCreated("0xdef::escrow::EscrowCreated"))
}

func TestParseEscrowCreated(t *testing.T) {
	c := testClient(t, "0xabc")

	payload, err := json.Marshal(map[string]string{
		"escrow_id":      "0xe5c101",
		"order_hash":     "0x1122",
		"hashlock":       hashlockHex,
		"maker":          "0x1111111111111111111111111111111111111111",
		"taker":          "0x2222222222222222222222222222222222222222",
		"coin_type":      "0x2::sui::SUI",
		"amount":         "1000000",
		"safety_deposit": "1000",
	})
	require.NoError(t, err)

	ev, err := c.parseEscrowCreated(moveItem{
		Type:       "0xabc::escrow::EscrowCreated",
		ParsedJSON: payload,
	}, "1700000000500", "digest-1")
	require.NoError(t, err)

	assert.Equal(t, "0xe5c101", ev.EscrowID)
	assert.Equal(t, []byte{0x11, 0x22}, ev.OrderHash)
	assert.Equal(t, byte(0xaa), ev.Hashlock[0])
	assert.Equal(t, uint64(1000000), ev.Amount)
	assert.Equal(t, uint64(1000), ev.SafetyDeposit)
	// Millisecond timestamps are truncated to seconds.
	assert.Equal(t, uint64(1700000000), ev.BlockTime)
}

func TestParseEscrowCreatedRejectsBadFields(t *testing.T) {
	c := testClient(t, "")

	payload, _ := json.Marshal(map[string]string{
		"hashlock": "0xshort",
		"amount":   "1",
	})
	_, err := c.parseEscrowCreated(moveItem{ParsedJSON: payload}, "", "digest-2")
	assert.Error(t, err)
}

func TestBytes32FromHex(t *testing.T) {
	var want [32]byte
	want[0] = 0xab
	got, err := bytes32FromHex("0xab" + strings.Repeat("00", 31))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = bytes32FromHex("0xdeadbeef")
	assert.Error(t, err)
}

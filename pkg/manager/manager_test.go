package manager

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/manus-ai/fusion-coordinator/pkg/chain"
	"github.com/manus-ai/fusion-coordinator/pkg/chainid"
	"github.com/manus-ai/fusion-coordinator/pkg/metrics"
	"github.com/manus-ai/fusion-coordinator/pkg/orderhash"
	"github.com/manus-ai/fusion-coordinator/pkg/protocol"
	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

const (
	testMaker    = "0x1111111111111111111111111111111111111111"
	testSrcToken = "0x3333333333333333333333333333333333333333"
	testDstToken = "0x4444444444444444444444444444444444444444"
)

type stubEVM struct {
	mu      sync.Mutex
	src     *types.SrcEscrowCreated
	srcErr  error
	dst     *types.DstEscrowCreated
	dstErr  error
	balance *big.Int
	balErr  error
}

func (s *stubEVM) SrcEscrowCreated(context.Context, string) (*types.SrcEscrowCreated, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src, s.srcErr
}

func (s *stubEVM) DstEscrowCreated(context.Context, string) (*types.DstEscrowCreated, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dst, s.dstErr
}

func (s *stubEVM) ERC20Balance(context.Context, common.Address, common.Address) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, s.balErr
}

func (s *stubEVM) setHashlock(lock [32]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Immutables.Hashlock = lock
}

type stubSui struct {
	event *types.SuiEscrowCreated
	err   error
}

func (s *stubSui) EscrowCreated(context.Context, string) (*types.SuiEscrowCreated, error) {
	return s.event, s.err
}

var _ chain.EVMAdapter = (*stubEVM)(nil)
var _ chain.SuiAdapter = (*stubSui)(nil)

func testQuote() *types.QuoteEntry {
	return &types.QuoteEntry{
		QuoteID:          "q-1",
		SrcChainID:       chainid.NewEVMUint64(1),
		DstChainID:       chainid.Sui,
		SrcTokenAddress:  testSrcToken,
		DstTokenAddress:  testDstToken,
		SrcSafetyDeposit: "1000",
		DstSafetyDeposit: "1000",
		TimeLocks: types.QuoteTimelocks{
			SrcWithdrawal:         0,
			SrcPublicWithdrawal:   336,
			SrcCancellation:       492,
			SrcPublicCancellation: 600,
			DstWithdrawal:         0,
			DstPublicWithdrawal:   324,
			DstCancellation:       444,
		},
		RecommendedPreset: "fast",
	}
}

func testOrder(salt string, secretHashes []string) types.Order {
	return types.Order{
		SrcChainID: chainid.NewEVMUint64(1),
		LimitOrder: types.LimitOrder{
			Salt:         salt,
			Maker:        testMaker,
			Receiver:     "0x2222222222222222222222222222222222222222",
			MakerAsset:   testSrcToken,
			TakerAsset:   testDstToken,
			MakingAmount: "1000000",
			TakingAmount: "2000000",
			MakerTraits:  "0",
		},
		Signature:    "0xsig",
		QuoteID:      "q-1",
		SecretHashes: secretHashes,
	}
}

// srcEvent fabricates a source escrow event consistent with testOrder and
// testQuote, deployed long enough ago that no withdrawal wait remains.
func srcEvent(hashlock [32]byte) *types.SrcEscrowCreated {
	deployedAt := uint64(time.Now().Unix()) - 100
	return &types.SrcEscrowCreated{
		Immutables: types.EscrowImmutables{
			Hashlock:      hashlock,
			Maker:         common.HexToAddress(testMaker),
			Token:         common.HexToAddress(testSrcToken),
			Amount:        big.NewInt(1000000),
			SafetyDeposit: big.NewInt(1000),
			Timelocks:     types.NewSrcTimelocks(deployedAt, 0, 336, 492, 600),
		},
		EscrowAddress: common.HexToAddress("0x9999999999999999999999999999999999999999"),
		BlockTime:     deployedAt,
	}
}

func lockFromByte(b byte) [32]byte {
	var lock [32]byte
	lock[31] = b
	return lock
}

func hexLock(lock [32]byte) string {
	return "0x" + hex.EncodeToString(lock[:])
}

func newTestManager(t *testing.T, evm *stubEVM, sui *stubSui) *Manager {
	t.Helper()
	mgr := New(Config{QuoteTTL: time.Minute, SecretReleaseBuffer: time.Millisecond}, evm, sui,
		metrics.New(), zaptest.NewLogger(t))
	t.Cleanup(mgr.Close)
	return mgr
}

// submitOrder stores the quote and order the way the REST handler does,
// returning the order hash.
func submitOrder(t *testing.T, mgr *Manager, order types.Order) string {
	t.Helper()
	mgr.SetQuote(testQuote())
	hash, err := orderhash.HashHex(order.SrcChainID, order.LimitOrder)
	require.NoError(t, err)
	entry := types.NewOrderEntry(hash, order, &types.OrderStatus{
		OrderHash: hash,
		Status:    types.PhasePending,
	})
	require.NoError(t, mgr.SetOrder(entry))
	return hash
}

func TestOrderBroadcastReachesSubscribers(t *testing.T) {
	mgr := newTestManager(t, &stubEVM{}, &stubSui{err: errors.New("down")})

	outbox := make(chan []byte, 4)
	mgr.Broadcaster().Register(outbox)

	order := testOrder("1", nil)
	require.NoError(t, mgr.HandleOrderEvent(order))

	frame := <-outbox
	decoded, err := protocol.DecodeOrder(frame)
	require.NoError(t, err)
	assert.Equal(t, order, decoded)
}

func TestTxHashEventProducesReadyFill(t *testing.T) {
	lock := lockFromByte(0xAA)
	evm := &stubEVM{src: srcEvent(lock), balance: big.NewInt(1000000)}
	sui := &stubSui{err: errors.New("not indexed yet")}
	mgr := newTestManager(t, evm, sui)

	hash := submitOrder(t, mgr, testOrder("1", nil))

	require.NoError(t, mgr.HandleReceiveEvent([]byte("TXHASH "+hash+" 0xaa 0xbb")))

	entry, ok := mgr.GetOrder(hash)
	require.True(t, ok)
	require.Eventually(t, func() bool { return entry.FillCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	fills := entry.DrainFills()
	require.Len(t, fills, 1)
	assert.Equal(t, types.ReadyFill{Idx: 0, SrcTxHash: "0xaa", DstTxHash: "0xbb"}, fills[0])

	status, ok := entry.StatusSnapshot()
	require.True(t, ok)
	assert.Equal(t, types.PhaseReady, status.Status)

	// The drain took everything; the next poll is empty.
	assert.Empty(t, entry.DrainFills())
}

func TestAmountMismatchDropsReport(t *testing.T) {
	event := srcEvent(lockFromByte(0xAA))
	event.Immutables.Amount = big.NewInt(999999)
	evm := &stubEVM{src: event, balance: big.NewInt(1000000)}
	mgr := newTestManager(t, evm, &stubSui{err: errors.New("down")})

	hash := submitOrder(t, mgr, testOrder("1", nil))
	require.NoError(t, mgr.HandleReceiveEvent([]byte("TXHASH "+hash+" 0xaa 0xbb")))

	time.Sleep(200 * time.Millisecond)
	entry, ok := mgr.GetOrder(hash)
	require.True(t, ok)
	assert.Zero(t, entry.FillCount())
}

func TestEscrowBalanceMismatchDropsReport(t *testing.T) {
	evm := &stubEVM{src: srcEvent(lockFromByte(0xAA)), balance: big.NewInt(1)}
	mgr := newTestManager(t, evm, &stubSui{err: errors.New("down")})

	hash := submitOrder(t, mgr, testOrder("1", nil))
	require.NoError(t, mgr.HandleReceiveEvent([]byte("TXHASH "+hash+" 0xaa 0xbb")))

	time.Sleep(200 * time.Millisecond)
	entry, _ := mgr.GetOrder(hash)
	assert.Zero(t, entry.FillCount())
}

func TestSecretBroadcastFrame(t *testing.T) {
	mgr := newTestManager(t, &stubEVM{}, &stubSui{err: errors.New("down")})

	outbox := make(chan []byte, 4)
	mgr.Broadcaster().Register(outbox)

	mgr.HandleSecretEvent("0xdeadbeef", "0x5ec4e7")
	assert.Equal(t, "SECRET 0xdeadbeef 0x5ec4e7", string(<-outbox))
}

func TestMultiFillMatchesSecretIndex(t *testing.T) {
	lockA, lockB, lockC := lockFromByte(0xAA), lockFromByte(0xBB), lockFromByte(0xCC)
	evm := &stubEVM{src: srcEvent(lockB), balance: big.NewInt(1000000)}
	mgr := newTestManager(t, evm, &stubSui{err: errors.New("down")})

	order := testOrder("2", []string{hexLock(lockA), hexLock(lockB), hexLock(lockC)})
	hash := submitOrder(t, mgr, order)

	require.NoError(t, mgr.HandleReceiveEvent([]byte("TXHASH "+hash+" 0xa1 0xb1")))

	entry, ok := mgr.GetOrder(hash)
	require.True(t, ok)
	require.Eventually(t, func() bool { return entry.FillCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	fills := entry.DrainFills()
	require.Len(t, fills, 1)
	assert.Equal(t, 1, fills[0].Idx)

	// A later fill against the third hashlock unlocks index 2.
	evm.setHashlock(lockC)
	require.NoError(t, mgr.HandleReceiveEvent([]byte("TXHASH "+hash+" 0xa2 0xb2")))
	require.Eventually(t, func() bool { return entry.FillCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	fills = entry.DrainFills()
	require.Len(t, fills, 1)
	assert.Equal(t, types.ReadyFill{Idx: 2, SrcTxHash: "0xa2", DstTxHash: "0xb2"}, fills[0])
}

func TestUnmatchedHashlockProducesNoFill(t *testing.T) {
	evm := &stubEVM{src: srcEvent(lockFromByte(0xEE)), balance: big.NewInt(1000000)}
	mgr := newTestManager(t, evm, &stubSui{err: errors.New("down")})

	order := testOrder("3", []string{hexLock(lockFromByte(0xAA)), hexLock(lockFromByte(0xBB))})
	hash := submitOrder(t, mgr, order)

	require.NoError(t, mgr.HandleReceiveEvent([]byte("TXHASH "+hash+" 0xaa 0xbb")))
	time.Sleep(200 * time.Millisecond)

	entry, _ := mgr.GetOrder(hash)
	assert.Zero(t, entry.FillCount())
}

func TestSuiSourceDirection(t *testing.T) {
	lock := lockFromByte(0xAB)
	evm := &stubEVM{
		dst: &types.DstEscrowCreated{
			Escrow:    common.HexToAddress("0x8888888888888888888888888888888888888888"),
			Hashlock:  lock,
			Taker:     common.HexToAddress("0x7777777777777777777777777777777777777777"),
			BlockTime: uint64(time.Now().Unix()) - 100,
		},
		balance: big.NewInt(2000000),
	}
	sui := &stubSui{err: errors.New("not indexed yet")}
	mgr := newTestManager(t, evm, sui)

	order := testOrder("4", nil)
	order.SrcChainID = chainid.Sui
	hash := submitOrder(t, mgr, order)

	require.NoError(t, mgr.HandleReceiveEvent([]byte("TXHASH "+hash+" 0xaa 0xbb")))

	entry, ok := mgr.GetOrder(hash)
	require.True(t, ok)
	require.Eventually(t, func() bool { return entry.FillCount() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestUnknownOrderTxHashIsIgnored(t *testing.T) {
	mgr := newTestManager(t, &stubEVM{}, &stubSui{err: errors.New("down")})
	require.NoError(t, mgr.HandleReceiveEvent([]byte("TXHASH 0x00 0xaa 0xbb")))
}

func TestMalformedFrameIsRejected(t *testing.T) {
	mgr := newTestManager(t, &stubEVM{}, &stubSui{err: errors.New("down")})
	err := mgr.HandleReceiveEvent([]byte("GARBAGE"))
	assert.ErrorIs(t, err, protocol.ErrUnknownEvent)
}

func TestSetOrderRequiresLiveQuote(t *testing.T) {
	mgr := newTestManager(t, &stubEVM{}, &stubSui{err: errors.New("down")})
	entry := types.NewOrderEntry("0x01", testOrder("5", nil), nil)
	assert.ErrorIs(t, mgr.SetOrder(entry), ErrQuoteNotFound)
}

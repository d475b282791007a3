package manager

import (
	"context"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/manus-ai/fusion-coordinator/pkg/protocol"
	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

// handleTxHashEvent is the chain-verification pipeline behind a TXHASH frame.
// The EVM side of the swap is authoritative: its escrow event must parse and
// verify or the report is dropped. The Sui side is observed best-effort; when
// its event is available it must verify too, and its timestamp tightens the
// release delay. Failures of any kind drop the report silently; the
// resolver's retry primitive is resending TXHASH.
func (m *Manager) handleTxHashEvent(ctx context.Context, event protocol.TxHashEvent) {
	entry, ok := m.orders.Get(event.OrderHash)
	if !ok {
		m.logger.Warn("TXHASH for unknown order", zap.String("order_hash", event.OrderHash))
		return
	}
	quote, ok := m.quotes.Get(entry.Order.QuoteID)
	if !ok {
		m.logger.Warn("TXHASH for order with expired quote",
			zap.String("order_hash", event.OrderHash),
			zap.String("quote_id", entry.Order.QuoteID))
		return
	}

	var (
		hashlock                 [32]byte
		srcObserved, dstObserved bool
		srcTime, dstTime         uint64
	)

	if entry.Order.SrcChainID.IsEVM() {
		src, err := m.evm.SrcEscrowCreated(ctx, event.SrcTxHash)
		if err != nil {
			m.logger.Warn("Source escrow lookup failed",
				zap.String("order_hash", event.OrderHash),
				zap.String("src_tx", event.SrcTxHash),
				zap.Error(err))
			return
		}
		if !m.verifyEVMSource(ctx, entry, quote, src) {
			return
		}
		hashlock = src.Immutables.Hashlock
		srcObserved, srcTime = true, src.BlockTime

		if dst, err := m.sui.EscrowCreated(ctx, event.DstTxHash); err == nil {
			if !m.verifySuiDestination(entry, quote, dst) {
				return
			}
			dstObserved, dstTime = true, dst.BlockTime
		} else {
			m.logger.Debug("Destination escrow not yet observable",
				zap.String("dst_tx", event.DstTxHash),
				zap.Error(err))
		}
	} else {
		dst, err := m.evm.DstEscrowCreated(ctx, event.DstTxHash)
		if err != nil {
			m.logger.Warn("Destination escrow lookup failed",
				zap.String("order_hash", event.OrderHash),
				zap.String("dst_tx", event.DstTxHash),
				zap.Error(err))
			return
		}
		if !m.verifyEVMDestination(ctx, entry, quote, dst) {
			return
		}
		hashlock = dst.Hashlock
		dstObserved, dstTime = true, dst.BlockTime

		if src, err := m.sui.EscrowCreated(ctx, event.SrcTxHash); err == nil {
			if !m.verifySuiSource(entry, quote, src) {
				return
			}
			srcObserved, srcTime = true, src.BlockTime
		} else {
			m.logger.Debug("Source escrow not yet observable",
				zap.String("src_tx", event.SrcTxHash),
				zap.Error(err))
		}
	}

	entry.SetPhase(types.PhaseObserved)

	delay := releaseDelay(quote, srcObserved, srcTime, dstObserved, dstTime, time.Now())
	if delay <= 0 {
		m.allowSecretRelease(event.OrderHash, hashlock, event.SrcTxHash, event.DstTxHash)
		return
	}
	delay += m.cfg.SecretReleaseBuffer
	m.logger.Info("Secret release scheduled",
		zap.String("order_hash", event.OrderHash),
		zap.Duration("delay", delay))
	time.AfterFunc(delay, func() {
		m.allowSecretRelease(event.OrderHash, hashlock, event.SrcTxHash, event.DstTxHash)
	})
}

// releaseDelay returns how long to wait before the secret may be revealed:
// the larger of the two withdrawal timelocks still remaining. A side whose
// escrow was not observed contributes zero.
func releaseDelay(quote *types.QuoteEntry, srcObserved bool, srcTime uint64, dstObserved bool, dstTime uint64, now time.Time) time.Duration {
	remaining := func(deployedAt, withdrawal uint64) time.Duration {
		deadline := time.Unix(int64(deployedAt+withdrawal), 0)
		if d := deadline.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	var delay time.Duration
	if srcObserved {
		delay = remaining(srcTime, quote.TimeLocks.SrcWithdrawal)
	}
	if dstObserved {
		if d := remaining(dstTime, quote.TimeLocks.DstWithdrawal); d > delay {
			delay = d
		}
	}
	return delay
}

// allowSecretRelease appends the ReadyFills unlocked by an observed hashlock.
// The order may have expired since the timer was armed; a missing entry is a
// silent no-op.
func (m *Manager) allowSecretRelease(orderHashHex string, hashlock [32]byte, srcTxHash, dstTxHash string) {
	entry, ok := m.orders.Get(orderHashHex)
	if !ok {
		m.logger.Debug("Secret release for evicted order", zap.String("order_hash", orderHashHex))
		return
	}

	var fills []types.ReadyFill
	if entry.OrderType == types.MultiFill {
		lockHex := "0x" + hex.EncodeToString(hashlock[:])
		for idx, secretHash := range entry.Order.SecretHashes {
			if protocol.NormalizeHex(secretHash) == lockHex {
				fills = append(fills, types.ReadyFill{Idx: idx, SrcTxHash: srcTxHash, DstTxHash: dstTxHash})
			}
		}
		if len(fills) == 0 {
			m.logger.Warn("Observed hashlock matches no secret hash",
				zap.String("order_hash", orderHashHex),
				zap.String("hashlock", lockHex))
			return
		}
	} else {
		fills = []types.ReadyFill{{Idx: 0, SrcTxHash: srcTxHash, DstTxHash: dstTxHash}}
	}

	entry.AppendFills(fills...)
	m.logger.Info("Fills ready for secret release",
		zap.String("order_hash", orderHashHex),
		zap.Int("fills", len(fills)))
}

func (m *Manager) verifyEVMSource(ctx context.Context, entry *types.OrderEntry, quote *types.QuoteEntry, src *types.SrcEscrowCreated) bool {
	order := entry.Order.LimitOrder
	making, ok := decimalBig(order.MakingAmount)
	if !ok {
		return m.verificationFailed(entry, "unparseable makingAmount")
	}
	if src.Immutables.Amount == nil || src.Immutables.Amount.Cmp(making) != 0 {
		return m.verificationFailed(entry, "source amount mismatch")
	}
	if src.Immutables.Maker != common.HexToAddress(order.Maker) {
		return m.verificationFailed(entry, "source maker mismatch")
	}
	deposit, ok := decimalBig(quote.SrcSafetyDeposit)
	if !ok || src.Immutables.SafetyDeposit == nil || src.Immutables.SafetyDeposit.Cmp(deposit) != 0 {
		return m.verificationFailed(entry, "source safety deposit mismatch")
	}
	if src.Immutables.Token != common.HexToAddress(quote.SrcTokenAddress) {
		return m.verificationFailed(entry, "source token mismatch")
	}
	balance, err := m.evm.ERC20Balance(ctx, src.Immutables.Token, src.EscrowAddress)
	if err != nil {
		m.logger.Warn("Escrow balance lookup failed",
			zap.String("order_hash", entry.OrderHash),
			zap.Error(err))
		return false
	}
	if balance.Cmp(making) != 0 {
		return m.verificationFailed(entry, "source escrow balance mismatch")
	}
	return true
}

func (m *Manager) verifyEVMDestination(ctx context.Context, entry *types.OrderEntry, quote *types.QuoteEntry, dst *types.DstEscrowCreated) bool {
	taking, ok := decimalBig(entry.Order.LimitOrder.TakingAmount)
	if !ok {
		return m.verificationFailed(entry, "unparseable takingAmount")
	}
	if dst.Taker == (common.Address{}) {
		return m.verificationFailed(entry, "destination taker missing")
	}
	token := common.HexToAddress(quote.DstTokenAddress)
	balance, err := m.evm.ERC20Balance(ctx, token, dst.Escrow)
	if err != nil {
		m.logger.Warn("Escrow balance lookup failed",
			zap.String("order_hash", entry.OrderHash),
			zap.Error(err))
		return false
	}
	if balance.Cmp(taking) != 0 {
		return m.verificationFailed(entry, "destination escrow balance mismatch")
	}
	return true
}

func (m *Manager) verifySuiSource(entry *types.OrderEntry, quote *types.QuoteEntry, src *types.SuiEscrowCreated) bool {
	making, err := strconv.ParseUint(entry.Order.LimitOrder.MakingAmount, 10, 64)
	if err != nil {
		return m.verificationFailed(entry, "unparseable makingAmount")
	}
	if src.Amount != making {
		return m.verificationFailed(entry, "source amount mismatch")
	}
	if src.Maker != "" && !strings.EqualFold(src.Maker, entry.Order.LimitOrder.Maker) {
		return m.verificationFailed(entry, "source maker mismatch")
	}
	if quote.SrcTokenAddress != "" && !strings.EqualFold(src.CoinType, quote.SrcTokenAddress) {
		return m.verificationFailed(entry, "source coin type mismatch")
	}
	if deposit, err := strconv.ParseUint(quote.SrcSafetyDeposit, 10, 64); err == nil && src.SafetyDeposit != deposit {
		return m.verificationFailed(entry, "source safety deposit mismatch")
	}
	return true
}

func (m *Manager) verifySuiDestination(entry *types.OrderEntry, quote *types.QuoteEntry, dst *types.SuiEscrowCreated) bool {
	taking, err := strconv.ParseUint(entry.Order.LimitOrder.TakingAmount, 10, 64)
	if err != nil {
		return m.verificationFailed(entry, "unparseable takingAmount")
	}
	if dst.Amount != taking {
		return m.verificationFailed(entry, "destination amount mismatch")
	}
	if quote.DstTokenAddress != "" && !strings.EqualFold(dst.CoinType, quote.DstTokenAddress) {
		return m.verificationFailed(entry, "destination coin type mismatch")
	}
	return true
}

// verificationFailed records the drop without leaking the reason to clients.
func (m *Manager) verificationFailed(entry *types.OrderEntry, reason string) bool {
	m.metrics.VerificationFailures.Inc()
	m.logger.Warn("Escrow verification failed, dropping report",
		zap.String("order_hash", entry.OrderHash),
		zap.String("reason", reason))
	return false
}

func decimalBig(s string) (*big.Int, bool) {
	return new(big.Int).SetString(s, 10)
}

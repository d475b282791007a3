package manager

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/manus-ai/fusion-coordinator/pkg/protocol"
	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

// txHashTimeout bounds the chain lookups triggered by one TXHASH frame.
const txHashTimeout = 30 * time.Second

// HandleOrderEvent announces a freshly submitted order to all resolvers.
// Fire-and-forget: there is no resolver-side ack.
func (m *Manager) HandleOrderEvent(order types.Order) error {
	frame, err := protocol.EncodeOrder(order)
	if err != nil {
		return fmt.Errorf("failed to encode order broadcast: %w", err)
	}
	delivered, dropped := m.broadcaster.Broadcast(frame)
	m.metrics.FramesDelivered.Add(float64(delivered))
	m.metrics.FramesDropped.Add(float64(dropped))
	m.logger.Info("Order broadcast",
		zap.Int("delivered", delivered),
		zap.Int("dropped", dropped))
	return nil
}

// HandleSecretEvent shares a maker-released secret with all resolvers. The
// REST layer guarantees at least one ReadyFill was served for the order.
func (m *Manager) HandleSecretEvent(orderHashHex, secretHex string) {
	delivered, dropped := m.broadcaster.Broadcast(protocol.EncodeSecret(orderHashHex, secretHex))
	m.metrics.SecretsShared.Inc()
	m.metrics.FramesDelivered.Add(float64(delivered))
	m.metrics.FramesDropped.Add(float64(dropped))
	m.logger.Info("Secret broadcast",
		zap.String("order_hash", orderHashHex),
		zap.Int("delivered", delivered),
		zap.Int("dropped", dropped))
}

// HandleReceiveEvent parses one inbound resolver frame. TXHASH is the only
// recognized opcode; anything else is logged and discarded. Verification runs
// in its own task so the caller's read loop never stalls on RPC.
func (m *Manager) HandleReceiveEvent(frame []byte) error {
	event, err := protocol.ParseInbound(frame)
	if err != nil {
		m.logger.Warn("Discarding unrecognized resolver frame", zap.Error(err))
		return err
	}
	m.metrics.TxHashEvents.Inc()
	m.logger.Info("TXHASH event received",
		zap.String("order_hash", event.OrderHash),
		zap.String("src_tx", event.SrcTxHash),
		zap.String("dst_tx", event.DstTxHash))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), txHashTimeout)
		defer cancel()
		m.handleTxHashEvent(ctx, event)
	}()
	return nil
}

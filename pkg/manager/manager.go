// Package manager is the coordinator's state core. It owns the quote and
// order tables, verifies resolver-reported escrow deployments against both
// chains, schedules secret releases, and fans events out to subscribers.
package manager

import (
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/manus-ai/fusion-coordinator/pkg/broadcast"
	"github.com/manus-ai/fusion-coordinator/pkg/chain"
	"github.com/manus-ai/fusion-coordinator/pkg/metrics"
	"github.com/manus-ai/fusion-coordinator/pkg/ttlstore"
	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

// ErrQuoteNotFound is returned by SetOrder when the referenced quote has
// expired or never existed.
var ErrQuoteNotFound = errors.New("referenced quote not found")

// Config holds the manager tunables.
type Config struct {
	// QuoteTTL is how long fetched quotes stay referenceable.
	QuoteTTL time.Duration
	// SecretReleaseBuffer pads the computed withdrawal wait.
	SecretReleaseBuffer time.Duration
}

// Manager coordinates the quote -> order -> secret-release state machine. It
// never holds funds and never signs transactions.
type Manager struct {
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	quotes *ttlstore.Store[*types.QuoteEntry]
	orders *ttlstore.Store[*types.OrderEntry]

	broadcaster *broadcast.Broadcaster

	evm chain.EVMAdapter
	sui chain.SuiAdapter

	closed atomic.Bool
}

// New wires a manager from its collaborators.
func New(cfg Config, evm chain.EVMAdapter, sui chain.SuiAdapter, m *metrics.Metrics, logger *zap.Logger) *Manager {
	if cfg.QuoteTTL == 0 {
		cfg.QuoteTTL = 15 * time.Minute
	}
	if cfg.SecretReleaseBuffer == 0 {
		cfg.SecretReleaseBuffer = 2 * time.Second
	}
	mgr := &Manager{
		cfg:         cfg,
		logger:      logger,
		metrics:     m,
		quotes:      ttlstore.New[*types.QuoteEntry](logger.Named("quotes")),
		orders:      ttlstore.New[*types.OrderEntry](logger.Named("orders")),
		broadcaster: broadcast.New(logger.Named("broadcast")),
		evm:         evm,
		sui:         sui,
	}
	mgr.orders.OnWillExpire(func(key string, entry *types.OrderEntry) {
		entry.SetPhase(types.PhaseExpired)
		logger.Info("Order expired", zap.String("order_hash", key))
	})
	return mgr
}

// Broadcaster exposes the subscriber fan-out to the WS surface.
func (m *Manager) Broadcaster() *broadcast.Broadcaster {
	return m.broadcaster
}

// SetQuote caches a quote for the configured TTL. Expired quotes vanish
// silently.
func (m *Manager) SetQuote(quote *types.QuoteEntry) {
	m.quotes.Set(quote.QuoteID, quote, m.cfg.QuoteTTL)
	m.logger.Debug("Quote cached", zap.String("quote_id", quote.QuoteID))
}

// GetQuote looks up a cached quote.
func (m *Manager) GetQuote(quoteID string) (*types.QuoteEntry, bool) {
	return m.quotes.Get(quoteID)
}

// SetOrder stores an order entry. The referenced quote must still be cached;
// its srcPublicCancellation window becomes the order TTL. Resubmitting the
// same hash overwrites.
func (m *Manager) SetOrder(entry *types.OrderEntry) error {
	quote, ok := m.quotes.Get(entry.Order.QuoteID)
	if !ok {
		return ErrQuoteNotFound
	}
	ttl := time.Duration(quote.TimeLocks.SrcPublicCancellation) * time.Second
	m.orders.Set(entry.OrderHash, entry, ttl)
	m.logger.Info("Order stored",
		zap.String("order_hash", entry.OrderHash),
		zap.String("order_type", entry.OrderType.String()),
		zap.Duration("ttl", ttl))
	return nil
}

// GetOrder looks up a stored order by its 0x-prefixed hash.
func (m *Manager) GetOrder(orderHashHex string) (*types.OrderEntry, bool) {
	return m.orders.Get(orderHashHex)
}

// Close drains both tables and closes every subscriber. Pending release
// timers become no-ops once their order lookups miss.
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.quotes.Drain()
	m.quotes.Stop()
	m.orders.Drain()
	m.orders.Stop()
	m.broadcaster.Close()
	m.logger.Info("Manager closed")
}

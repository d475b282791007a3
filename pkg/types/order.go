package types

import (
	"sync"
	"time"

	"github.com/manus-ai/fusion-coordinator/pkg/chainid"
)

// LimitOrder is the signed 1inch limit order core. Numeric fields are decimal
// strings so u256 values survive JSON intact.
type LimitOrder struct {
	Salt         string `json:"salt"`
	Maker        string `json:"maker"`
	Receiver     string `json:"receiver"`
	MakerAsset   string `json:"makerAsset"`
	TakerAsset   string `json:"takerAsset"`
	MakingAmount string `json:"makingAmount"`
	TakingAmount string `json:"takingAmount"`
	MakerTraits  string `json:"makerTraits"`
}

// Order is a maker's submission: the signed limit order plus the cross-chain
// context binding it to a cached quote.
type Order struct {
	SrcChainID   chainid.ChainID `json:"srcChainId"`
	LimitOrder   LimitOrder      `json:"order"`
	Signature    string          `json:"signature"`
	QuoteID      string          `json:"quoteId"`
	Extension    string          `json:"extension"`
	SecretHashes []string        `json:"secretHashes,omitempty"`
}

// OrderType discriminates single-secret orders from partial-fill orders that
// carry a Merkle sequence of secret hashes.
type OrderType int

const (
	SingleFill OrderType = iota
	MultiFill
)

func (t OrderType) String() string {
	if t == MultiFill {
		return "multi_fill"
	}
	return "single_fill"
}

// ReadyFill signals that one (order, secret index) pair is safe to reveal:
// both escrows were verified on chain and the withdrawal timelock elapsed.
type ReadyFill struct {
	Idx       int    `json:"idx"`
	SrcTxHash string `json:"srcTxHash"`
	DstTxHash string `json:"dstTxHash"`
}

// OrderEntry is the stored form of an order, keyed by its hash. The embedded
// mutex serializes fill appends against the drain-on-poll read; chain
// verification never runs under it.
type OrderEntry struct {
	OrderType OrderType `json:"orderType"`
	OrderHash string    `json:"orderHash"`
	Order     Order     `json:"order"`

	mu     sync.Mutex
	status *OrderStatus
	fills  []ReadyFill
}

// NewOrderEntry builds an entry for a hashed order. The type is MultiFill iff
// more than one secret hash was supplied.
func NewOrderEntry(orderHash string, order Order, status *OrderStatus) *OrderEntry {
	typ := SingleFill
	if len(order.SecretHashes) > 1 {
		typ = MultiFill
	}
	return &OrderEntry{
		OrderType: typ,
		OrderHash: orderHash,
		Order:     order,
		status:    status,
	}
}

// AppendFills appends verified fills. Duplicates are permitted; resolvers key
// on (orderHash, idx).
func (e *OrderEntry) AppendFills(fills ...ReadyFill) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fills = append(e.fills, fills...)
	if len(e.fills) > 0 && e.status != nil &&
		(e.status.Status == PhasePending || e.status.Status == PhaseObserved) {
		e.status.Status = PhaseReady
	}
}

// DrainFills atomically takes the pending fills, leaving an empty list behind.
// The replacement slice keeps half the old capacity so a hot order does not
// reallocate on every append, while an idle one shrinks over time.
func (e *OrderEntry) DrainFills() []ReadyFill {
	e.mu.Lock()
	defer e.mu.Unlock()
	drained := e.fills
	e.fills = make([]ReadyFill, 0, cap(drained)/2)
	return drained
}

// FillCount returns the number of pending fills.
func (e *OrderEntry) FillCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.fills)
}

// SetPhase moves the order's lifecycle phase.
func (e *OrderEntry) SetPhase(phase OrderPhase) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != nil {
		e.status.Status = phase
	}
}

// StatusSnapshot returns a copy of the order status safe to serialize.
func (e *OrderEntry) StatusSnapshot() (OrderStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == nil {
		return OrderStatus{}, false
	}
	return *e.status, true
}

// OrderPhase is the coordinator-side lifecycle of an order. Terminal phases
// are informational; settlement itself happens on chain.
type OrderPhase string

const (
	PhasePending   OrderPhase = "pending"
	PhaseObserved  OrderPhase = "observed"
	PhaseReady     OrderPhase = "ready"
	PhaseSettled   OrderPhase = "settled"
	PhaseExpired   OrderPhase = "expired"
	PhaseCancelled OrderPhase = "cancelled"
)

// OrderStatus is the status-endpoint view of an order, seeded from the
// quote's recommended preset at submission time.
type OrderStatus struct {
	OrderHash        string         `json:"orderHash"`
	Status           OrderPhase     `json:"status"`
	Order            LimitOrder     `json:"order"`
	Extension        string         `json:"extension"`
	Points           []AuctionPoint `json:"points"`
	InitialRateBump  uint64         `json:"initialRateBump"`
	AuctionDuration  uint64         `json:"auctionDuration"`
	AuctionStartDate time.Time      `json:"auctionStartDate"`
	SrcTokenPriceUsd string         `json:"srcTokenPriceUsd"`
	DstTokenPriceUsd string         `json:"dstTokenPriceUsd"`
	CreatedAt        time.Time      `json:"createdAt"`
}

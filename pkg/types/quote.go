package types

import (
	"github.com/manus-ai/fusion-coordinator/pkg/chainid"
)

// QuoteTimelocks is the per-quote escrow timelock schedule, in seconds from
// escrow deployment.
type QuoteTimelocks struct {
	SrcWithdrawal         uint64 `json:"srcWithdrawal"`
	SrcPublicWithdrawal   uint64 `json:"srcPublicWithdrawal"`
	SrcCancellation       uint64 `json:"srcCancellation"`
	SrcPublicCancellation uint64 `json:"srcPublicCancellation"`
	DstWithdrawal         uint64 `json:"dstWithdrawal"`
	DstPublicWithdrawal   uint64 `json:"dstPublicWithdrawal"`
	DstCancellation       uint64 `json:"dstCancellation"`
}

// AuctionPoint is one knot of the Dutch auction rate curve.
type AuctionPoint struct {
	Delay       uint64 `json:"delay"`
	Coefficient uint64 `json:"coefficient"`
}

// QuotePreset is one auction parameterization offered by the upstream quoter.
type QuotePreset struct {
	AuctionDuration    uint64         `json:"auctionDuration"`
	StartAuctionIn     uint64         `json:"startAuctionIn"`
	InitialRateBump    uint64         `json:"initialRateBump"`
	AuctionStartAmount string         `json:"auctionStartAmount"`
	AuctionEndAmount   string         `json:"auctionEndAmount"`
	CostInDstToken     string         `json:"costInDstToken"`
	Points             []AuctionPoint `json:"points"`
	AllowPartialFills  bool           `json:"allowPartialFills"`
	AllowMultipleFills bool           `json:"allowMultipleFills"`
	SecretsCount       int            `json:"secretsCount"`
}

// QuotePresets bundles the three standard presets.
type QuotePresets struct {
	Fast   QuotePreset `json:"fast"`
	Medium QuotePreset `json:"medium"`
	Slow   QuotePreset `json:"slow"`
}

// PairCurrency carries the USD price snapshot for both legs of the pair.
type PairCurrency struct {
	SrcToken string `json:"srcToken"`
	DstToken string `json:"dstToken"`
}

// QuoteEntry is the cached result of a quote request. It is stored under
// QuoteID for fifteen minutes and referenced by submitted orders.
type QuoteEntry struct {
	QuoteID           string          `json:"quoteId"`
	SrcChainID        chainid.ChainID `json:"srcChainId"`
	DstChainID        chainid.ChainID `json:"dstChainId"`
	SrcTokenAddress   string          `json:"srcTokenAddress"`
	DstTokenAddress   string          `json:"dstTokenAddress"`
	SrcTokenAmount    string          `json:"srcTokenAmount"`
	DstTokenAmount    string          `json:"dstTokenAmount"`
	SrcSafetyDeposit  string          `json:"srcSafetyDeposit"`
	DstSafetyDeposit  string          `json:"dstSafetyDeposit"`
	Whitelist         []string        `json:"whitelist,omitempty"`
	TimeLocks         QuoteTimelocks  `json:"timeLocks"`
	Presets           QuotePresets    `json:"presets"`
	RecommendedPreset string          `json:"recommendedPreset"`
	Prices            PairCurrency    `json:"prices"`
	Volume            PairCurrency    `json:"volume"`
}

// RecommendedPresetValue resolves the preset named by RecommendedPreset,
// defaulting to fast when the name is unknown.
func (q *QuoteEntry) RecommendedPresetValue() QuotePreset {
	switch q.RecommendedPreset {
	case "medium":
		return q.Presets.Medium
	case "slow":
		return q.Presets.Slow
	default:
		return q.Presets.Fast
	}
}

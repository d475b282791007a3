package quoter

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manus-ai/fusion-coordinator/pkg/chainid"
	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

func parseChain(s string) (chainid.ChainID, error) {
	return chainid.Parse(s)
}

// devQuote returns the fixed development template with a fresh quoteId,
// parameterized only by the requested pair.
func (c *Client) devQuote(params Params) (*types.QuoteEntry, error) {
	preset := types.QuotePreset{
		AuctionDuration:    180,
		StartAuctionIn:     17,
		InitialRateBump:    50000,
		AuctionStartAmount: "1010000000000000000",
		AuctionEndAmount:   "1000000000000000000",
		CostInDstToken:     "500000000000000",
		Points: []types.AuctionPoint{
			{Delay: 120, Coefficient: 40000},
			{Delay: 60, Coefficient: 20000},
		},
		AllowPartialFills:  false,
		AllowMultipleFills: false,
		SecretsCount:       1,
	}
	slow := preset
	slow.AuctionDuration = 600
	slow.InitialRateBump = 20000
	medium := preset
	medium.AuctionDuration = 360

	quote := &types.QuoteEntry{
		QuoteID:          uuid.NewString(),
		SrcTokenAmount:   params.Amount,
		DstTokenAmount:   "1000000000000000000",
		SrcSafetyDeposit: "1000000000000000",
		DstSafetyDeposit: "1000000000000000",
		TimeLocks: types.QuoteTimelocks{
			SrcWithdrawal:         36,
			SrcPublicWithdrawal:   336,
			SrcCancellation:       492,
			SrcPublicCancellation: 612,
			DstWithdrawal:         24,
			DstPublicWithdrawal:   324,
			DstCancellation:       444,
		},
		Presets: types.QuotePresets{
			Fast:   preset,
			Medium: medium,
			Slow:   slow,
		},
		RecommendedPreset: "fast",
		Prices: types.PairCurrency{
			SrcToken: "1.00",
			DstToken: "1.00",
		},
		Volume: types.PairCurrency{
			SrcToken: "1.00",
			DstToken: "1.00",
		},
	}
	c.fillRequestContext(quote, params)
	c.logger.Debug("Dev-mode quote issued", zap.String("quote_id", quote.QuoteID))
	return quote, nil
}

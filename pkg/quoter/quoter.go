// Package quoter fetches cross-chain quotes from the upstream 1inch
// aggregator, or serves a fixed template in dev mode. Every quote gets a
// freshly generated quoteId before caching.
package quoter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manus-ai/fusion-coordinator/pkg/config"
	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

// ErrUpstreamUnavailable wraps network failures and 5xx answers from the
// upstream quoter. Such quotes are never cached.
var ErrUpstreamUnavailable = errors.New("upstream quoter unavailable")

// ErrBadQuoteRequest marks requests the upstream rejected as malformed.
var ErrBadQuoteRequest = errors.New("upstream rejected quote request")

// Params are the query parameters of a quote request.
type Params struct {
	SrcChain        string
	DstChain        string
	SrcTokenAddress string
	DstTokenAddress string
	Amount          string
	WalletAddress   string
}

// Client resolves quotes against the upstream provider.
type Client struct {
	cfg     config.OneInchConfig
	devMode bool
	http    *http.Client
	logger  *zap.Logger
}

// New creates a quote client. In dev mode no upstream calls are made.
func New(cfg config.OneInchConfig, devMode bool, logger *zap.Logger) *Client {
	return &Client{
		cfg:     cfg,
		devMode: devMode,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// Quote returns a quote for the requested pair with a fresh quoteId.
func (c *Client) Quote(ctx context.Context, params Params) (*types.QuoteEntry, error) {
	if c.devMode {
		return c.devQuote(params)
	}
	return c.upstreamQuote(ctx, params)
}

func (c *Client) upstreamQuote(ctx context.Context, params Params) (*types.QuoteEntry, error) {
	endpoint, err := url.Parse(c.cfg.URL + "/quoter/v1.0/quote/receive")
	if err != nil {
		return nil, fmt.Errorf("bad upstream url: %w", err)
	}
	query := endpoint.Query()
	query.Set("srcChain", params.SrcChain)
	query.Set("dstChain", params.DstChain)
	query.Set("srcTokenAddress", params.SrcTokenAddress)
	query.Set("dstTokenAddress", params.DstTokenAddress)
	query.Set("amount", params.Amount)
	query.Set("walletAddress", params.WalletAddress)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: upstream status %d", ErrUpstreamUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: upstream status %d", ErrBadQuoteRequest, resp.StatusCode)
	}

	quote := &types.QuoteEntry{}
	if err := json.NewDecoder(resp.Body).Decode(quote); err != nil {
		return nil, fmt.Errorf("%w: undecodable body: %v", ErrUpstreamUnavailable, err)
	}

	quote.QuoteID = uuid.NewString()
	c.fillRequestContext(quote, params)
	c.logger.Debug("Quote fetched from upstream",
		zap.String("quote_id", quote.QuoteID),
		zap.String("src_chain", params.SrcChain),
		zap.String("dst_chain", params.DstChain))
	return quote, nil
}

// fillRequestContext pins the request parameters onto the cached quote; the
// verification pipeline later cross-checks escrows against these.
func (c *Client) fillRequestContext(quote *types.QuoteEntry, params Params) {
	if src, err := parseChain(params.SrcChain); err == nil {
		quote.SrcChainID = src
	}
	if dst, err := parseChain(params.DstChain); err == nil {
		quote.DstChainID = dst
	}
	quote.SrcTokenAddress = params.SrcTokenAddress
	quote.DstTokenAddress = params.DstTokenAddress
	if quote.SrcTokenAmount == "" {
		quote.SrcTokenAmount = params.Amount
	}
}

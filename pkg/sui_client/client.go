// Package sui_client is the read-only Sui chain adapter. Sui speaks JSON-RPC
// 2.0, so the adapter reuses go-ethereum's generic rpc client as transport
// and extracts the escrow package's Move events from transaction blocks.
package sui_client

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/manus-ai/fusion-coordinator/pkg/chain"
	"github.com/manus-ai/fusion-coordinator/pkg/config"
	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

const escrowCreatedSuffix = "::escrow::EscrowCreated"

// Client implements chain.SuiAdapter.
type Client struct {
	rpc           *rpc.Client
	escrowPackage string
	logger        *zap.Logger
}

// NewClient connects to the Sui fullnode RPC.
func NewClient(cfg *config.SuiConfig, logger *zap.Logger) (*Client, error) {
	rpcClient, err := rpc.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Sui node: %w", err)
	}
	logger.Info("Sui client initialized",
		zap.String("escrow_package", cfg.EscrowPackage))
	return &Client{
		rpc:           rpcClient,
		escrowPackage: cfg.EscrowPackage,
		logger:        logger,
	}, nil
}

// Close tears down the RPC connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// Wire shapes of sui_getTransactionBlock, trimmed to the consumed fields.
type txBlock struct {
	Digest      string     `json:"digest"`
	Events      []moveItem `json:"events"`
	TimestampMs string     `json:"timestampMs"`
	Effects     struct {
		Status struct {
			Status string `json:"status"`
		} `json:"status"`
	} `json:"effects"`
}

type moveItem struct {
	Type       string          `json:"type"`
	ParsedJSON json.RawMessage `json:"parsedJson"`
}

type escrowCreatedEvent struct {
	EscrowID      string `json:"escrow_id"`
	OrderHash     string `json:"order_hash"`
	Hashlock      string `json:"hashlock"`
	Maker         string `json:"maker"`
	Taker         string `json:"taker"`
	CoinType      string `json:"coin_type"`
	Amount        string `json:"amount"`
	SafetyDeposit string `json:"safety_deposit"`
}

// EscrowCreated implements chain.SuiAdapter.
func (c *Client) EscrowCreated(ctx context.Context, txDigest string) (*types.SuiEscrowCreated, error) {
	var block txBlock
	err := c.rpc.CallContext(ctx, &block, "sui_getTransactionBlock", txDigest, map[string]bool{
		"showEvents":  true,
		"showEffects": true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrChainUnreachable, err)
	}
	if block.Effects.Status.Status != "success" {
		return nil, fmt.Errorf("%w: tx %s failed on chain", chain.ErrEventNotFound, txDigest)
	}

	for _, ev := range block.Events {
		if !c.isEscrowCreated(ev.Type) {
			continue
		}
		return c.parseEscrowCreated(ev, block.TimestampMs, txDigest)
	}
	return nil, fmt.Errorf("%w: tx %s", chain.ErrEventNotFound, txDigest)
}

func (c *Client) isEscrowCreated(eventType string) bool {
	if !strings.HasSuffix(eventType, escrowCreatedSuffix) {
		return false
	}
	return c.escrowPackage == "" || strings.HasPrefix(eventType, c.escrowPackage)
}

func (c *Client) parseEscrowCreated(ev moveItem, timestampMs, txDigest string) (*types.SuiEscrowCreated, error) {
	var raw escrowCreatedEvent
	if err := json.Unmarshal(ev.ParsedJSON, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode EscrowCreated event: %w", err)
	}

	hashlock, err := bytes32FromHex(raw.Hashlock)
	if err != nil {
		return nil, fmt.Errorf("bad hashlock in tx %s: %w", txDigest, err)
	}
	orderHash, err := hex.DecodeString(strings.TrimPrefix(raw.OrderHash, "0x"))
	if err != nil {
		return nil, fmt.Errorf("bad order hash in tx %s: %w", txDigest, err)
	}
	amount, err := strconv.ParseUint(raw.Amount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad amount in tx %s: %w", txDigest, err)
	}
	var safetyDeposit uint64
	if raw.SafetyDeposit != "" {
		safetyDeposit, err = strconv.ParseUint(raw.SafetyDeposit, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad safety deposit in tx %s: %w", txDigest, err)
		}
	}
	// Checkpoint timestamps are milliseconds; escrow timelocks are seconds.
	var blockTime uint64
	if timestampMs != "" {
		ms, err := strconv.ParseUint(timestampMs, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp in tx %s: %w", txDigest, err)
		}
		blockTime = ms / 1000
	}

	return &types.SuiEscrowCreated{
		EscrowID:      raw.EscrowID,
		OrderHash:     orderHash,
		Hashlock:      hashlock,
		Maker:         raw.Maker,
		Taker:         raw.Taker,
		CoinType:      raw.CoinType,
		Amount:        amount,
		SafetyDeposit: safetyDeposit,
		BlockTime:     blockTime,
	}, nil
}

func bytes32FromHex(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("want 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

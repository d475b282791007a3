// Package ethereum_client is the read-only EVM chain adapter. It parses
// escrow-creation events out of transaction receipts and answers balance
// queries; it holds no keys and sends no transactions.
package ethereum_client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/manus-ai/fusion-coordinator/pkg/chain"
	"github.com/manus-ai/fusion-coordinator/pkg/config"
	ctypes "github.com/manus-ai/fusion-coordinator/pkg/types"
)

// Client implements chain.EVMAdapter over an ethclient connection.
type Client struct {
	client  *ethclient.Client
	factory common.Address
	logger  *zap.Logger

	factoryABI abi.ABI
	erc20ABI   abi.ABI

	srcCreatedTopic common.Hash
	dstCreatedTopic common.Hash
}

// NewClient connects to the EVM node and prepares the factory ABI.
func NewClient(cfg *config.EVMConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to EVM node: %w", err)
	}

	factoryABI, err := abi.JSON(strings.NewReader(EscrowFactoryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse EscrowFactory ABI: %w", err)
	}
	erc20ABI, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	c := &Client{
		client:          client,
		factory:         common.HexToAddress(cfg.EscrowFactory),
		logger:          logger,
		factoryABI:      factoryABI,
		erc20ABI:        erc20ABI,
		srcCreatedTopic: factoryABI.Events["SrcEscrowCreated"].ID,
		dstCreatedTopic: factoryABI.Events["DstEscrowCreated"].ID,
	}

	logger.Info("EVM client initialized",
		zap.String("factory", c.factory.Hex()))
	return c, nil
}

// Close tears down the RPC connection.
func (c *Client) Close() {
	c.client.Close()
}

// SrcEscrowCreated implements chain.EVMAdapter.
func (c *Client) SrcEscrowCreated(ctx context.Context, txHash string) (*ctypes.SrcEscrowCreated, error) {
	log, blockTime, err := c.findFactoryLog(ctx, txHash, c.srcCreatedTopic)
	if err != nil {
		return nil, err
	}

	var raw struct {
		SrcImmutables struct {
			OrderHash     [32]byte
			Hashlock      [32]byte
			Maker         *big.Int
			Taker         *big.Int
			Token         *big.Int
			Amount        *big.Int
			SafetyDeposit *big.Int
			Timelocks     *big.Int
		}
		DstImmutablesComplement struct {
			Maker         *big.Int
			Amount        *big.Int
			Token         *big.Int
			SafetyDeposit *big.Int
			ChainId       *big.Int
		}
	}
	if err := c.factoryABI.UnpackIntoInterface(&raw, "SrcEscrowCreated", log.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack SrcEscrowCreated: %w", err)
	}

	immutables := ctypes.EscrowImmutables{
		OrderHash:     raw.SrcImmutables.OrderHash,
		Hashlock:      raw.SrcImmutables.Hashlock,
		Maker:         addressFromUint256(raw.SrcImmutables.Maker),
		Taker:         addressFromUint256(raw.SrcImmutables.Taker),
		Token:         addressFromUint256(raw.SrcImmutables.Token),
		Amount:        raw.SrcImmutables.Amount,
		SafetyDeposit: raw.SrcImmutables.SafetyDeposit,
		Timelocks:     unpackSrcTimelocks(raw.SrcImmutables.Timelocks),
	}

	escrow, err := c.addressOfEscrowSrc(ctx, raw.SrcImmutables)
	if err != nil {
		return nil, err
	}

	return &ctypes.SrcEscrowCreated{
		Immutables: immutables,
		DstComplement: ctypes.DstImmutablesComplement{
			Maker:         addressFromUint256(raw.DstImmutablesComplement.Maker),
			Amount:        raw.DstImmutablesComplement.Amount,
			Token:         addressFromUint256(raw.DstImmutablesComplement.Token),
			SafetyDeposit: raw.DstImmutablesComplement.SafetyDeposit,
			ChainID:       raw.DstImmutablesComplement.ChainId,
		},
		EscrowAddress: escrow,
		BlockTime:     blockTime,
	}, nil
}

// DstEscrowCreated implements chain.EVMAdapter.
func (c *Client) DstEscrowCreated(ctx context.Context, txHash string) (*ctypes.DstEscrowCreated, error) {
	log, blockTime, err := c.findFactoryLog(ctx, txHash, c.dstCreatedTopic)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Escrow   common.Address
		Hashlock [32]byte
		Taker    *big.Int
	}
	if err := c.factoryABI.UnpackIntoInterface(&raw, "DstEscrowCreated", log.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack DstEscrowCreated: %w", err)
	}

	return &ctypes.DstEscrowCreated{
		Escrow:    raw.Escrow,
		Hashlock:  raw.Hashlock,
		Taker:     addressFromUint256(raw.Taker),
		BlockTime: blockTime,
	}, nil
}

// ERC20Balance implements chain.EVMAdapter.
func (c *Client) ERC20Balance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	data, err := c.erc20ABI.Pack("balanceOf", account)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf: %w", err)
	}
	result, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrChainUnreachable, err)
	}
	out, err := c.erc20ABI.Unpack("balanceOf", result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf: %w", err)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf return type %T", out[0])
	}
	return balance, nil
}

// findFactoryLog fetches the receipt, locates the factory event with the
// given topic, and resolves the block timestamp.
func (c *Client) findFactoryLog(ctx context.Context, txHash string, topic common.Hash) (*types.Log, uint64, error) {
	hash := common.HexToHash(txHash)
	receipt, err := c.client.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, 0, fmt.Errorf("%w: tx %s", chain.ErrEventNotFound, txHash)
		}
		return nil, 0, fmt.Errorf("%w: %v", chain.ErrChainUnreachable, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, 0, fmt.Errorf("%w: tx %s reverted", chain.ErrEventNotFound, txHash)
	}

	var found *types.Log
	for _, log := range receipt.Logs {
		if log.Address == c.factory && len(log.Topics) > 0 && log.Topics[0] == topic {
			found = log
			break
		}
	}
	if found == nil {
		return nil, 0, fmt.Errorf("%w: tx %s", chain.ErrEventNotFound, txHash)
	}

	header, err := c.client.HeaderByHash(ctx, receipt.BlockHash)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", chain.ErrChainUnreachable, err)
	}
	return found, header.Time, nil
}

// addressOfEscrowSrc asks the factory for the deterministic escrow address of
// the given immutables.
func (c *Client) addressOfEscrowSrc(ctx context.Context, immutables any) (common.Address, error) {
	data, err := c.factoryABI.Pack("addressOfEscrowSrc", immutables)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to pack addressOfEscrowSrc: %w", err)
	}
	result, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &c.factory, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", chain.ErrChainUnreachable, err)
	}
	out, err := c.factoryABI.Unpack("addressOfEscrowSrc", result)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to unpack addressOfEscrowSrc: %w", err)
	}
	escrow, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected addressOfEscrowSrc return type %T", out[0])
	}
	return escrow, nil
}

// The factory packs Address values as uint256.
func addressFromUint256(v *big.Int) common.Address {
	return common.BigToAddress(v)
}

// Timelocks pack eight uint32 stages into one word, deployedAt in the top 32
// bits. Stages 0-3 are the source schedule.
func unpackSrcTimelocks(packed *big.Int) ctypes.Timelocks {
	stage := func(i uint) uint64 {
		return new(big.Int).And(
			new(big.Int).Rsh(packed, 32*i),
			big.NewInt(0xffffffff),
		).Uint64()
	}
	return ctypes.NewSrcTimelocks(stage(7), stage(0), stage(1), stage(2), stage(3))
}

// Package chain defines the read-only adapter interfaces the coordinator uses
// to verify resolver-reported escrow deployments. Implementations must never
// mutate chain state.
package chain

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

var (
	// ErrEventNotFound means the expected escrow event is absent from the
	// transaction's receipt or event list. The transaction likely reverted
	// or the resolver reported the wrong hash.
	ErrEventNotFound = errors.New("escrow event not found in transaction")
	// ErrChainUnreachable wraps RPC transport failures. The coordinator
	// drops the triggering event; resolvers retry by resending TXHASH.
	ErrChainUnreachable = errors.New("chain rpc unreachable")
)

// EVMAdapter reads escrow-creation facts from the EVM chain.
type EVMAdapter interface {
	// SrcEscrowCreated parses the factory's SrcEscrowCreated event out of
	// the given transaction, derives the escrow address, and returns the
	// block timestamp.
	SrcEscrowCreated(ctx context.Context, txHash string) (*types.SrcEscrowCreated, error)
	// DstEscrowCreated parses the factory's DstEscrowCreated event.
	DstEscrowCreated(ctx context.Context, txHash string) (*types.DstEscrowCreated, error)
	// ERC20Balance returns the token balance of an account.
	ERC20Balance(ctx context.Context, token, account common.Address) (*big.Int, error)
}

// SuiAdapter reads escrow-creation facts from the Sui chain.
type SuiAdapter interface {
	// EscrowCreated extracts the escrow-creation Move event from the given
	// transaction digest, along with its checkpoint timestamp.
	EscrowCreated(ctx context.Context, txDigest string) (*types.SuiEscrowCreated, error)
}

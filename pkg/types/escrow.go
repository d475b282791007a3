package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EscrowImmutables mirrors the immutables struct emitted by the EVM escrow
// factory when a source escrow is deployed.
type EscrowImmutables struct {
	OrderHash     [32]byte
	Hashlock      [32]byte
	Maker         common.Address
	Taker         common.Address
	Token         common.Address
	Amount        *big.Int
	SafetyDeposit *big.Int
	Timelocks     Timelocks
}

// DstImmutablesComplement is the destination-side half announced alongside a
// source escrow creation.
type DstImmutablesComplement struct {
	Maker         common.Address
	Amount        *big.Int
	Token         common.Address
	SafetyDeposit *big.Int
	ChainID       *big.Int
}

// SrcEscrowCreated is the parsed SrcEscrowCreated factory event together with
// the derived escrow address and block timestamp.
type SrcEscrowCreated struct {
	Immutables    EscrowImmutables
	DstComplement DstImmutablesComplement
	EscrowAddress common.Address
	BlockTime     uint64
}

// DstEscrowCreated is the parsed DstEscrowCreated factory event.
type DstEscrowCreated struct {
	Escrow    common.Address
	Hashlock  [32]byte
	Taker     common.Address
	BlockTime uint64
}

// SuiEscrowCreated is the Move-event analogue emitted by the Sui escrow
// package, on either side of the swap.
type SuiEscrowCreated struct {
	EscrowID      string
	OrderHash     []byte
	Hashlock      [32]byte
	Maker         string
	Taker         string
	CoinType      string
	Amount        uint64
	SafetyDeposit uint64
	BlockTime     uint64
}

// Package orderhash computes the deterministic 32-byte identifier of a limit
// order under its source chain's canonicalization: EIP-712 typed data for EVM
// chains, BCS-style binary serialization plus keccak-256 for Sui.
package orderhash

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/manus-ai/fusion-coordinator/pkg/chainid"
	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

// ErrBadOrder marks an order whose numeric or address fields cannot be
// canonicalized.
var ErrBadOrder = errors.New("order has unparseable fields")

// EIP-712 domain of the 1inch Aggregation Router v6.
const (
	routerName    = "1inch Aggregation Router"
	routerVersion = "6"
	routerAddress = "0x111111125421cA6dc452d289314280a0f8842A65"
)

var orderTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Order": {
		{Name: "salt", Type: "uint256"},
		{Name: "maker", Type: "address"},
		{Name: "receiver", Type: "address"},
		{Name: "makerAsset", Type: "address"},
		{Name: "takerAsset", Type: "address"},
		{Name: "makingAmount", Type: "uint256"},
		{Name: "takingAmount", Type: "uint256"},
		{Name: "makerTraits", Type: "uint256"},
	},
}

// Hash returns the order hash for the given source chain. It is pure and
// deterministic; it fails only on malformed order fields.
func Hash(chain chainid.ChainID, order types.LimitOrder) ([32]byte, error) {
	if chain.IsEVM() {
		return hashEVM(chain, order)
	}
	return hashSui(order)
}

// HashHex is Hash rendered as a 0x-prefixed lowercase hex string, the form
// used as order-store key and in wire frames.
func HashHex(chain chainid.ChainID, order types.LimitOrder) (string, error) {
	h, err := Hash(chain, order)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(h[:]), nil
}

func hashEVM(chain chainid.ChainID, order types.LimitOrder) ([32]byte, error) {
	var out [32]byte
	evmID, err := chain.EVMID()
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrBadOrder, err)
	}
	for _, field := range []string{order.Salt, order.MakingAmount, order.TakingAmount, order.MakerTraits} {
		if _, ok := new(big.Int).SetString(field, 10); !ok {
			return out, fmt.Errorf("%w: bad uint256 %q", ErrBadOrder, field)
		}
	}
	typed := apitypes.TypedData{
		Types:       orderTypes,
		PrimaryType: "Order",
		Domain: apitypes.TypedDataDomain{
			Name:              routerName,
			Version:           routerVersion,
			ChainId:           (*math.HexOrDecimal256)(evmID),
			VerifyingContract: routerAddress,
		},
		Message: apitypes.TypedDataMessage{
			"salt":         order.Salt,
			"maker":        order.Maker,
			"receiver":     order.Receiver,
			"makerAsset":   order.MakerAsset,
			"takerAsset":   order.TakerAsset,
			"makingAmount": order.MakingAmount,
			"takingAmount": order.TakingAmount,
			"makerTraits":  order.MakerTraits,
		},
	}
	digest, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrBadOrder, err)
	}
	copy(out[:], digest)
	return out, nil
}

// hashSui serializes salt (big-endian big-int bytes), both 20-byte addresses,
// and the two amounts as little-endian u64 per BCS, then keccaks the buffer.
func hashSui(order types.LimitOrder) ([32]byte, error) {
	var out [32]byte
	salt, ok := new(big.Int).SetString(order.Salt, 10)
	if !ok {
		return out, fmt.Errorf("%w: bad salt %q", ErrBadOrder, order.Salt)
	}
	maker, err := addressBytes(order.Maker)
	if err != nil {
		return out, err
	}
	receiver, err := addressBytes(order.Receiver)
	if err != nil {
		return out, err
	}
	making, err := strconv.ParseUint(order.MakingAmount, 10, 64)
	if err != nil {
		return out, fmt.Errorf("%w: bad makingAmount %q", ErrBadOrder, order.MakingAmount)
	}
	taking, err := strconv.ParseUint(order.TakingAmount, 10, 64)
	if err != nil {
		return out, fmt.Errorf("%w: bad takingAmount %q", ErrBadOrder, order.TakingAmount)
	}

	buf := salt.Bytes()
	buf = append(buf, maker...)
	buf = append(buf, receiver...)
	buf = binary.LittleEndian.AppendUint64(buf, making)
	buf = binary.LittleEndian.AppendUint64(buf, taking)
	copy(out[:], crypto.Keccak256(buf))
	return out, nil
}

func addressBytes(addr string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(addr, "0x"))
	if err != nil || len(raw) != common.AddressLength {
		return nil, fmt.Errorf("%w: bad address %q", ErrBadOrder, addr)
	}
	return raw, nil
}

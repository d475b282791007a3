// Package chainid models the chain identifier shared by both ecosystems the
// coordinator bridges: EVM networks carry a numeric chain id, Sui does not.
package chainid

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Family groups chains by their execution environment.
type Family string

const (
	FamilyEVM Family = "evm"
	FamilySui Family = "sui"
)

// ChainID is a tagged union over EVM chain ids and the Sui network.
// The zero value is invalid; construct via NewEVM or Sui.
type ChainID struct {
	family Family
	evmID  *big.Int
}

// Sui is the chain id of the Sui network.
var Sui = ChainID{family: FamilySui}

// NewEVM returns the chain id of an EVM network.
func NewEVM(id *big.Int) ChainID {
	return ChainID{family: FamilyEVM, evmID: new(big.Int).Set(id)}
}

// NewEVMUint64 returns the chain id of an EVM network from a uint64.
func NewEVMUint64(id uint64) ChainID {
	return ChainID{family: FamilyEVM, evmID: new(big.Int).SetUint64(id)}
}

// IsEVM reports whether the chain belongs to the EVM family.
func (c ChainID) IsEVM() bool {
	return c.family == FamilyEVM
}

// Family returns the execution family of the chain.
func (c ChainID) Family() Family {
	return c.family
}

// EVMID returns the numeric chain id. It errors for non-EVM chains.
func (c ChainID) EVMID() (*big.Int, error) {
	if c.family != FamilyEVM {
		return nil, fmt.Errorf("chain %s has no EVM chain id", c.family)
	}
	return new(big.Int).Set(c.evmID), nil
}

func (c ChainID) String() string {
	if c.family == FamilyEVM {
		return c.evmID.String()
	}
	return string(FamilySui)
}

// MarshalJSON encodes EVM chains as their decimal id and Sui as the string
// "sui", matching the order schema on the wire.
func (c ChainID) MarshalJSON() ([]byte, error) {
	if c.family == FamilyEVM {
		return json.Marshal(c.evmID.String())
	}
	return json.Marshal(string(FamilySui))
}

// UnmarshalJSON accepts a decimal string, a JSON number, or "sui". Numbers
// are kept as their decimal text so ids beyond float64 precision survive.
func (c *ChainID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return c.parse(s)
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unsupported chain id encoding %s", data)
	}
	return c.parse(n.String())
}

// Parse decodes a chain id from its string form.
func Parse(s string) (ChainID, error) {
	var c ChainID
	err := c.parse(s)
	return c, err
}

func (c *ChainID) parse(s string) error {
	if s == string(FamilySui) {
		*c = Sui
		return nil
	}
	id, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("malformed chain id %q", s)
	}
	*c = ChainID{family: FamilyEVM, evmID: id}
	return nil
}

// Equal reports whether two chain ids denote the same network.
func (c ChainID) Equal(other ChainID) bool {
	if c.family != other.family {
		return false
	}
	if c.family == FamilyEVM {
		return c.evmID.Cmp(other.evmID) == 0
	}
	return true
}

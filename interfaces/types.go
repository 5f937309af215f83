// Package interfaces defines the core interfaces and types for the tokenbound
// service registry. It provides the contract between different components
// without implementation details.
package interfaces

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ContractAddress represents an Ethereum contract address.
type ContractAddress [20]byte

// NewContractAddressFromBytes creates a new contract address from a 20-byte slice.
func NewContractAddressFromBytes(addr []byte) (ContractAddress, error) {
	if len(addr) != 20 {
		return ContractAddress{}, errors.New("invalid address length: must be 20 bytes")
	}

	var res ContractAddress
	copy(res[:], addr)
	return res, nil
}

// NewContractAddressFromHex creates a new contract address from a hex string.
func NewContractAddressFromHex(addr string) (ContractAddress, error) {
	// Remove 0x prefix if present
	clean := strings.TrimPrefix(addr, "0x")
	if len(clean) != 40 {
		return ContractAddress{}, errors.New("invalid address length: hex string must be 40 characters")
	}

	// Validate hex format
	addrBytes, err := hex.DecodeString(clean)
	if err != nil {
		return ContractAddress{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewContractAddressFromBytes(addrBytes)
}

// String returns the hex string representation of the contract address.
func (addr ContractAddress) String() string {
	return hex.EncodeToString(addr[:])
}

// Bytes returns the raw 20-byte address.
func (addr ContractAddress) Bytes() []byte {
	return addr[:]
}

// Equal compares two contract addresses for equality.
func (addr ContractAddress) Equal(other ContractAddress) bool {
	return addr == other
}

// IsZero reports whether the address is the all-zero address.
func (addr ContractAddress) IsZero() bool {
	return addr == ContractAddress{}
}

// Salt is the 32-byte deployer-chosen discriminator of a binding.
type Salt [32]byte

// NewSaltFromBytes creates a salt from a 32-byte slice.
func NewSaltFromBytes(source []byte) (Salt, error) {
	if len(source) != 32 {
		return Salt{}, errors.New("invalid salt length: must be 32 bytes")
	}

	var res Salt
	copy(res[:], source)
	return res, nil
}

// NewSaltFromHex creates a salt from a hex string.
func NewSaltFromHex(source string) (Salt, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return Salt{}, errors.New("invalid salt length: hex string must be 64 characters")
	}

	saltBytes, err := hex.DecodeString(clean)
	if err != nil {
		return Salt{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewSaltFromBytes(saltBytes)
}

// String returns the hex string representation of the salt.
func (s Salt) String() string {
	return hex.EncodeToString(s[:])
}

// Bytes returns the raw 32-byte salt.
func (s Salt) Bytes() []byte {
	return s[:]
}

// Equal compares two salts for equality.
func (s Salt) Equal(other Salt) bool {
	return bytes.Equal(s[:], other[:])
}

// CapabilityID is a 4-byte protocol capability identifier, derived from the
// canonical operation signatures the same way ERC-165 derives interface IDs.
type CapabilityID [4]byte

// NewCapabilityIDFromBytes creates a capability ID from a 4-byte slice.
func NewCapabilityIDFromBytes(source []byte) (CapabilityID, error) {
	if len(source) != 4 {
		return CapabilityID{}, errors.New("invalid capability ID length: must be 4 bytes")
	}

	var res CapabilityID
	copy(res[:], source)
	return res, nil
}

// NewCapabilityIDFromHex creates a capability ID from a hex string.
func NewCapabilityIDFromHex(source string) (CapabilityID, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 8 {
		return CapabilityID{}, errors.New("invalid capability ID length: hex string must be 8 characters")
	}

	idBytes, err := hex.DecodeString(clean)
	if err != nil {
		return CapabilityID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewCapabilityIDFromBytes(idBytes)
}

// String returns the hex string representation of the capability ID.
func (id CapabilityID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw 4-byte identifier.
func (id CapabilityID) Bytes() []byte {
	return id[:]
}

// Equal compares two capability IDs for equality.
func (id CapabilityID) Equal(other CapabilityID) bool {
	return id == other
}

// TokenReference identifies the token a deployed service is bound to. ChainID
// is the chain the token lives on, which need not be the chain the service is
// deployed on.
type TokenReference struct {
	ChainID       *big.Int        `json:"origin_chain_id"`
	TokenContract ContractAddress `json:"token_contract"`
	TokenID       *big.Int        `json:"token_id"`
}

// Equal compares two token references field-wise.
func (t TokenReference) Equal(other TokenReference) bool {
	if (t.ChainID == nil) != (other.ChainID == nil) || (t.TokenID == nil) != (other.TokenID == nil) {
		return false
	}
	if t.ChainID != nil && t.ChainID.Cmp(other.ChainID) != 0 {
		return false
	}
	if t.TokenID != nil && t.TokenID.Cmp(other.TokenID) != 0 {
		return false
	}
	return t.TokenContract.Equal(other.TokenContract)
}

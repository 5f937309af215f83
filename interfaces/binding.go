package interfaces

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Binding is the immutable five-tuple a service contract is deployed for.
// Two bindings that differ in any field resolve to different service
// addresses; the binding is fixed at creation time and never mutated.
type Binding struct {
	// Implementation is the address of the contract the deployed service
	// delegates its behavior to.
	Implementation ContractAddress `json:"implementation"`

	// Salt is a caller-chosen discriminator allowing multiple services for
	// the same token.
	Salt Salt `json:"salt"`

	// ChainID identifies the chain the bound token lives on.
	ChainID *big.Int `json:"origin_chain_id"`

	// TokenContract is the address of the NFT contract.
	TokenContract ContractAddress `json:"token_contract"`

	// TokenID is the token identifier within the contract.
	TokenID *big.Int `json:"token_id"`
}

// maxUint256 bounds the integer fields to what a 32-byte word can carry.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Validate checks that the binding's integer fields are present and encodable
// as unsigned 256-bit words. The implementation address is not interpreted:
// any 20-byte value is acceptable, including addresses that hold no code.
func (b Binding) Validate() error {
	if b.ChainID == nil {
		return errors.New("binding: origin chain ID is required")
	}
	if b.ChainID.Sign() < 0 {
		return fmt.Errorf("binding: origin chain ID must be non-negative, got %s", b.ChainID)
	}
	if b.ChainID.Cmp(maxUint256) > 0 {
		return errors.New("binding: origin chain ID exceeds 256 bits")
	}
	if b.TokenID == nil {
		return errors.New("binding: token ID is required")
	}
	if b.TokenID.Sign() < 0 {
		return fmt.Errorf("binding: token ID must be non-negative, got %s", b.TokenID)
	}
	if b.TokenID.Cmp(maxUint256) > 0 {
		return errors.New("binding: token ID exceeds 256 bits")
	}
	return nil
}

// Token returns the token reference portion of the binding.
func (b Binding) Token() TokenReference {
	return TokenReference{
		ChainID:       b.ChainID,
		TokenContract: b.TokenContract,
		TokenID:       b.TokenID,
	}
}

// Equal compares two bindings field-wise.
func (b Binding) Equal(other Binding) bool {
	if !b.Implementation.Equal(other.Implementation) || !b.Salt.Equal(other.Salt) {
		return false
	}
	return b.Token().Equal(other.Token())
}

// Digest computes the Keccak-256 hash of the ABI encoding of the binding, a
// stable key for callers that index or deduplicate bindings independently of
// the derived service address.
func (b Binding) Digest() ([32]byte, error) {
	if err := b.Validate(); err != nil {
		return [32]byte{}, err
	}

	addressTy, _ := abi.NewType("address", "", nil)
	bytes32Ty, _ := abi.NewType("bytes32", "", nil)
	uint256Ty, _ := abi.NewType("uint256", "", nil)

	arguments := abi.Arguments{
		{Type: addressTy},
		{Type: bytes32Ty},
		{Type: uint256Ty},
		{Type: addressTy},
		{Type: uint256Ty},
	}

	packed, err := arguments.Pack(
		common.Address(b.Implementation),
		[32]byte(b.Salt),
		b.ChainID,
		common.Address(b.TokenContract),
		b.TokenID,
	)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Keccak256Hash(packed), nil
}

// Package artifact builds and decodes the single service artifact shape the
// registry deploys. An artifact is an exact 173-byte buffer: a dispatch thunk
// forwarding every call to the binding's implementation address, followed by
// the binding data trailer (salt, origin chain ID, token contract, token ID)
// in fixed 32-byte words. The buffer layout is byte-stable: equal bindings
// always produce equal artifacts, which is what makes derived service
// addresses reproducible.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// ErrNotServiceArtifact is returned when bytes do not carry the service
// artifact shape: wrong length, foreign dispatch thunk, or malformed trailer.
var ErrNotServiceArtifact = errors.New("not a service artifact")

// Size is the exact length of a service artifact in bytes.
const Size = 173

// Byte offsets of the artifact segments. Each segment ends where the next
// begins; the token ID word ends at Size.
const (
	ImplementationOffset = 10
	FooterOffset         = 30
	SaltOffset           = 45
	ChainIDOffset        = 77
	TokenContractOffset  = 109
	TokenIDOffset        = 141
)

var (
	// DispatchHeader is the 10-byte thunk prefix preceding the
	// implementation address.
	DispatchHeader = common.Hex2Bytes("363d3d373d3d3d363d73")

	// DispatchFooter is the 15-byte thunk suffix completing the forwarding
	// logic after the implementation address.
	DispatchFooter = common.Hex2Bytes("5af43d82803e903d91602b57fd5bf3")
)

// Build constructs the artifact for a binding. The same binding always yields
// the same bytes. Build fails only on a binding that does not validate.
func Build(b interfaces.Binding) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, Size)
	buf = append(buf, DispatchHeader...)
	buf = append(buf, b.Implementation.Bytes()...)
	buf = append(buf, DispatchFooter...)
	buf = append(buf, b.Salt.Bytes()...)
	buf = append(buf, common.LeftPadBytes(b.ChainID.Bytes(), 32)...)
	buf = append(buf, common.LeftPadBytes(b.TokenContract.Bytes(), 32)...)
	buf = append(buf, common.LeftPadBytes(b.TokenID.Bytes(), 32)...)
	return buf, nil
}

// validate checks length, thunk bytes, and the zero padding of the token
// contract word.
func validate(code []byte) error {
	if len(code) != Size {
		return fmt.Errorf("%w: length %d, want %d", ErrNotServiceArtifact, len(code), Size)
	}
	if !bytes.Equal(code[:ImplementationOffset], DispatchHeader) {
		return fmt.Errorf("%w: dispatch header mismatch", ErrNotServiceArtifact)
	}
	if !bytes.Equal(code[FooterOffset:SaltOffset], DispatchFooter) {
		return fmt.Errorf("%w: dispatch footer mismatch", ErrNotServiceArtifact)
	}
	for _, pad := range code[TokenContractOffset : TokenContractOffset+12] {
		if pad != 0 {
			return fmt.Errorf("%w: token contract word is not address-padded", ErrNotServiceArtifact)
		}
	}
	return nil
}

// Implementation extracts the implementation address an artifact forwards to.
func Implementation(code []byte) (interfaces.ContractAddress, error) {
	if err := validate(code); err != nil {
		return interfaces.ContractAddress{}, err
	}
	return interfaces.NewContractAddressFromBytes(code[ImplementationOffset:FooterOffset])
}

// Token extracts the token reference an artifact is bound to.
func Token(code []byte) (interfaces.TokenReference, error) {
	if err := validate(code); err != nil {
		return interfaces.TokenReference{}, err
	}

	tokenContract, err := interfaces.NewContractAddressFromBytes(code[TokenContractOffset+12 : TokenIDOffset])
	if err != nil {
		return interfaces.TokenReference{}, err
	}

	return interfaces.TokenReference{
		ChainID:       new(big.Int).SetBytes(code[ChainIDOffset:TokenContractOffset]),
		TokenContract: tokenContract,
		TokenID:       new(big.Int).SetBytes(code[TokenIDOffset:]),
	}, nil
}

// Decode recovers the full binding an artifact was built from. Decode is the
// inverse of Build: Decode(Build(b)) equals b for every valid binding.
func Decode(code []byte) (interfaces.Binding, error) {
	if err := validate(code); err != nil {
		return interfaces.Binding{}, err
	}

	impl, err := interfaces.NewContractAddressFromBytes(code[ImplementationOffset:FooterOffset])
	if err != nil {
		return interfaces.Binding{}, err
	}
	salt, err := interfaces.NewSaltFromBytes(code[SaltOffset:ChainIDOffset])
	if err != nil {
		return interfaces.Binding{}, err
	}
	token, err := Token(code)
	if err != nil {
		return interfaces.Binding{}, err
	}

	return interfaces.Binding{
		Implementation: impl,
		Salt:           salt,
		ChainID:        token.ChainID,
		TokenContract:  token.TokenContract,
		TokenID:        token.TokenID,
	}, nil
}

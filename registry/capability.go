package registry

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// Canonical operation signatures the capability identifier is derived from.
// These are part of the protocol: changing them changes the identifier every
// compliant registry answers to.
const (
	createSignature  = "create(address,bytes32,uint256,address,uint256)"
	computeSignature = "compute(address,bytes32,uint256,address,uint256)"
)

var capabilityID = computeCapabilityID()

func computeCapabilityID() interfaces.CapabilityID {
	var id interfaces.CapabilityID
	for _, sig := range []string{createSignature, computeSignature} {
		selector := crypto.Keccak256([]byte(sig))[:4]
		for i := range id {
			id[i] ^= selector[i]
		}
	}
	return id
}

// Capability returns the registry protocol capability identifier: the XOR of
// the 4-byte Keccak-256 selectors of the canonical create and compute
// signatures, the way ERC-165 folds operation selectors into an interface ID.
// Callers discover compliant registries by probing for this value rather than
// assuming any particular instance is canonical.
func Capability() interfaces.CapabilityID {
	return capabilityID
}

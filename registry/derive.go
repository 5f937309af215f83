package registry

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ruteri/tokenbound-service-registry/artifact"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// ComputeAddress derives the service address for a binding deployed by
// deployer. The derivation commits to the deployer identity, the salt, and
// the hash of the full artifact bytes:
//
//	keccak256(0xff ++ deployer ++ salt ++ keccak256(artifact))[12:]
//
// It is a pure function of its inputs: no ledger state is consulted, and the
// result never varies between calls, processes, or hosts.
func ComputeAddress(deployer interfaces.ContractAddress, binding interfaces.Binding) (interfaces.ContractAddress, error) {
	code, err := artifact.Build(binding)
	if err != nil {
		return interfaces.ContractAddress{}, err
	}
	return deriveAddress(deployer, binding.Salt, code), nil
}

// deriveAddress applies the creation-address rule to already-built artifact
// bytes.
func deriveAddress(deployer interfaces.ContractAddress, salt interfaces.Salt, code []byte) interfaces.ContractAddress {
	addr := crypto.CreateAddress2(common.Address(deployer), [32]byte(salt), crypto.Keccak256(code))
	return interfaces.ContractAddress(addr)
}

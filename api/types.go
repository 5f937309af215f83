package api

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// BindingRequest is the wire form of a service binding shared by the create
// and compute endpoints. Addresses and salts are hex strings (0x prefix
// optional), integers are decimal strings.
type BindingRequest struct {
	Implementation string `json:"implementation"`
	Salt           string `json:"salt"`
	OriginChainID  string `json:"origin_chain_id"`
	TokenContract  string `json:"token_contract"`
	TokenID        string `json:"token_id"`
}

// NewBindingRequest converts a binding to its wire form.
func NewBindingRequest(binding interfaces.Binding) BindingRequest {
	return BindingRequest{
		Implementation: binding.Implementation.String(),
		Salt:           binding.Salt.String(),
		OriginChainID:  binding.ChainID.String(),
		TokenContract:  binding.TokenContract.String(),
		TokenID:        binding.TokenID.String(),
	}
}

// Binding parses and validates the wire form.
func (r *BindingRequest) Binding() (interfaces.Binding, error) {
	impl, err := interfaces.NewContractAddressFromHex(r.Implementation)
	if err != nil {
		return interfaces.Binding{}, fmt.Errorf("invalid implementation: %w", err)
	}
	salt, err := interfaces.NewSaltFromHex(r.Salt)
	if err != nil {
		return interfaces.Binding{}, fmt.Errorf("invalid salt: %w", err)
	}
	tokenContract, err := interfaces.NewContractAddressFromHex(r.TokenContract)
	if err != nil {
		return interfaces.Binding{}, fmt.Errorf("invalid token contract: %w", err)
	}
	chainID, ok := new(big.Int).SetString(r.OriginChainID, 10)
	if !ok {
		return interfaces.Binding{}, fmt.Errorf("invalid origin chain ID %q", r.OriginChainID)
	}
	tokenID, ok := new(big.Int).SetString(r.TokenID, 10)
	if !ok {
		return interfaces.Binding{}, fmt.Errorf("invalid token ID %q", r.TokenID)
	}

	binding := interfaces.Binding{
		Implementation: impl,
		Salt:           salt,
		ChainID:        chainID,
		TokenContract:  tokenContract,
		TokenID:        tokenID,
	}
	return binding, binding.Validate()
}

// CreateResponse is returned by the create endpoint. Created reports whether
// this call performed the first deployment; an idempotent replay returns the
// same service address with created false.
type CreateResponse struct {
	Service string `json:"service"`
	Created bool   `json:"created"`
}

// ComputeResponse is returned by the compute endpoint.
type ComputeResponse struct {
	Service string `json:"service"`
}

// CapabilityResponse is returned by the capability probe endpoint.
type CapabilityResponse struct {
	CapabilityID string `json:"capability_id"`
	Supported    bool   `json:"supported"`
}

// TokenResponse is returned by the service token endpoint. It carries the
// token reference decoded from the deployed artifact bytes.
type TokenResponse struct {
	OriginChainID string `json:"origin_chain_id"`
	TokenContract string `json:"token_contract"`
	TokenID       string `json:"token_id"`
}

// NewTokenResponse converts a token reference to its wire form.
func NewTokenResponse(token interfaces.TokenReference) TokenResponse {
	return TokenResponse{
		OriginChainID: token.ChainID.String(),
		TokenContract: token.TokenContract.String(),
		TokenID:       token.TokenID.String(),
	}
}

// Token parses the wire form.
func (r *TokenResponse) Token() (interfaces.TokenReference, error) {
	tokenContract, err := interfaces.NewContractAddressFromHex(r.TokenContract)
	if err != nil {
		return interfaces.TokenReference{}, fmt.Errorf("invalid token contract: %w", err)
	}
	chainID, ok := new(big.Int).SetString(r.OriginChainID, 10)
	if !ok {
		return interfaces.TokenReference{}, fmt.Errorf("invalid origin chain ID %q", r.OriginChainID)
	}
	tokenID, ok := new(big.Int).SetString(r.TokenID, 10)
	if !ok {
		return interfaces.TokenReference{}, fmt.Errorf("invalid token ID %q", r.TokenID)
	}

	return interfaces.TokenReference{
		ChainID:       chainID,
		TokenContract: tokenContract,
		TokenID:       tokenID,
	}, nil
}

// DescriptorResponse is returned by the descriptor endpoint. Discovery uses
// it to verify a candidate endpoint is a compliant registry before routing
// requests to it.
type DescriptorResponse struct {
	Identity     string `json:"identity"`
	CapabilityID string `json:"capability_id"`
}

// ServiceTokenProvider resolves the token reference a deployed service is
// bound to.
type ServiceTokenProvider interface {
	// ServiceToken decodes the token reference from the artifact bytes
	// deployed at the service address.
	ServiceToken(ctx context.Context, service interfaces.ContractAddress) (interfaces.TokenReference, error)
}

// RegistryProvider is the full client-side surface of a registry server.
type RegistryProvider interface {
	interfaces.ServiceRegistry
	ServiceTokenProvider
}

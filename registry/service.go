package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruteri/tokenbound-service-registry/artifact"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// Service provides read access to a deployed service contract. Every answer
// is decoded from the service's own artifact bytes with a single ledger read;
// no state outside the service address is consulted.
type Service struct {
	address interfaces.ContractAddress
	ledger  interfaces.Ledger
}

// NewService creates an accessor for the service at address.
func NewService(address interfaces.ContractAddress, ledger interfaces.Ledger) (*Service, error) {
	if ledger == nil {
		return nil, errors.New("service accessor requires a ledger")
	}

	return &Service{
		address: address,
		ledger:  ledger,
	}, nil
}

// Address returns the service address the accessor is bound to.
func (s *Service) Address() interfaces.ContractAddress {
	return s.address
}

// Token returns the token reference the service is bound to. Returns
// interfaces.ErrNoCode if the address holds no code.
func (s *Service) Token(ctx context.Context) (interfaces.TokenReference, error) {
	code, err := s.code(ctx)
	if err != nil {
		return interfaces.TokenReference{}, err
	}
	return artifact.Token(code)
}

// Binding recovers the full binding the service was deployed for.
func (s *Service) Binding(ctx context.Context) (interfaces.Binding, error) {
	code, err := s.code(ctx)
	if err != nil {
		return interfaces.Binding{}, err
	}
	return artifact.Decode(code)
}

func (s *Service) code(ctx context.Context) ([]byte, error) {
	code, err := s.ledger.CodeAt(ctx, s.address)
	if err != nil {
		return nil, fmt.Errorf("could not read service code: %w", err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNoCode, s.address)
	}
	return code, nil
}

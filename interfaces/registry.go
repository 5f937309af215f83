package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrCreationFailed is returned for every create-path failure that is not
	// an idempotent replay: artifact installation errors, occupied target
	// addresses with foreign code, ledger write failures. The underlying
	// cause is wrapped.
	ErrCreationFailed = errors.New("service creation failed")

	// ErrCodeAlreadyPresent is returned by Ledger.CreateAt when the target
	// address already holds code. The caller decides whether the collision is
	// an idempotent replay or a conflict.
	ErrCodeAlreadyPresent = errors.New("code already present at address")

	// ErrNoCode is returned when a service accessor is pointed at an address
	// holding no code.
	ErrNoCode = errors.New("no code at service address")

	// ErrLedgerReadOnly is returned by ledgers that mirror an external chain
	// and cannot install code.
	ErrLedgerReadOnly = errors.New("ledger is read-only")
)

// Ledger is the serialized execution substrate the registry deploys to. All
// state transitions are totally ordered by the implementation; the registry
// itself holds no locks.
type Ledger interface {
	// CodeAt returns the code stored at an address. An empty slice and nil
	// error means the address is unoccupied.
	CodeAt(ctx context.Context, addr ContractAddress) ([]byte, error)

	// CreateAt atomically installs code at an address. Returns
	// ErrCodeAlreadyPresent if the address is occupied; the existing code is
	// left untouched.
	CreateAt(ctx context.Context, addr ContractAddress, code []byte) error
}

// CreationRecord describes a first-time service deployment. Exactly one
// record exists per deployed service; idempotent replays of create do not
// produce additional records.
type CreationRecord struct {
	Service ContractAddress `json:"service"`
	Binding Binding         `json:"binding"`
}

// ServiceRegistry is the protocol surface of a deterministic service factory.
// Implemented by the in-process registry and the HTTP API client.
type ServiceRegistry interface {
	// Create deploys the service contract for a binding, or returns the
	// existing address if the binding was already deployed.
	Create(ctx context.Context, binding Binding) (ContractAddress, error)

	// Compute returns the address a binding resolves to without touching the
	// ledger state. Always equal to what Create returns for the same binding.
	Compute(ctx context.Context, binding Binding) (ContractAddress, error)

	// Supports reports whether the registry implements the capability
	// identified by id.
	Supports(ctx context.Context, id CapabilityID) (bool, error)

	// Identity returns the registry's deployer address, the value mixed into
	// every derived service address.
	Identity(ctx context.Context) (ContractAddress, error)
}

// Package registry implements the deterministic service factory binding
// auxiliary service contracts to token references.
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/event"

	"github.com/ruteri/tokenbound-service-registry/artifact"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// Registry is a deterministic service factory instance. It deploys service
// artifacts to a ledger under its own deployer identity; registries with
// different identities derive disjoint address spaces over the same ledger.
//
// The registry keeps no state of its own. The ledger's code-at-address
// mapping is the complete deployment record, so any number of Registry
// values over the same ledger and identity are interchangeable. Ordering and
// mutual exclusion are inherited from the ledger's serialized CreateAt.
type Registry struct {
	deployer interfaces.ContractAddress
	ledger   interfaces.Ledger

	feed  event.Feed
	scope event.SubscriptionScope
}

// New creates a registry deploying through ledger under the deployer
// identity.
func New(deployer interfaces.ContractAddress, ledger interfaces.Ledger) (*Registry, error) {
	if ledger == nil {
		return nil, errors.New("registry requires a ledger")
	}

	return &Registry{
		deployer: deployer,
		ledger:   ledger,
	}, nil
}

// Create deploys the service contract for a binding and returns its address.
// Create is idempotent: if the binding's artifact is already installed at the
// derived address, the address is returned without a second deployment and
// without a second creation record.
//
// Any deployment failure is reported wrapping interfaces.ErrCreationFailed
// and leaves no partial state: no ledger entry, no creation record.
func (r *Registry) Create(ctx context.Context, binding interfaces.Binding) (interfaces.ContractAddress, error) {
	addr, _, err := r.deploy(ctx, binding)
	return addr, err
}

// Deploy behaves exactly like Create and additionally reports whether this
// call performed the first deployment. An idempotent replay returns the
// address with created false.
func (r *Registry) Deploy(ctx context.Context, binding interfaces.Binding) (interfaces.ContractAddress, bool, error) {
	return r.deploy(ctx, binding)
}

func (r *Registry) deploy(ctx context.Context, binding interfaces.Binding) (interfaces.ContractAddress, bool, error) {
	if err := binding.Validate(); err != nil {
		return interfaces.ContractAddress{}, false, err
	}

	code, err := artifact.Build(binding)
	if err != nil {
		return interfaces.ContractAddress{}, false, err
	}
	target := deriveAddress(r.deployer, binding.Salt, code)

	existing, err := r.ledger.CodeAt(ctx, target)
	if err != nil {
		return interfaces.ContractAddress{}, false, fmt.Errorf("%w: could not read target address: %w", interfaces.ErrCreationFailed, err)
	}
	if len(existing) != 0 {
		return r.resolveOccupied(target, existing, code)
	}

	if err := r.ledger.CreateAt(ctx, target, code); err != nil {
		if errors.Is(err, interfaces.ErrCodeAlreadyPresent) {
			// Lost the install race. Re-read and decide like any other
			// occupied target.
			current, readErr := r.ledger.CodeAt(ctx, target)
			if readErr != nil {
				return interfaces.ContractAddress{}, false, fmt.Errorf("%w: could not read target address: %w", interfaces.ErrCreationFailed, readErr)
			}
			return r.resolveOccupied(target, current, code)
		}
		return interfaces.ContractAddress{}, false, fmt.Errorf("%w: %w", interfaces.ErrCreationFailed, err)
	}

	r.feed.Send(interfaces.CreationRecord{Service: target, Binding: binding})
	return target, true, nil
}

// resolveOccupied decides what an occupied target address means for a create:
// the binding's own artifact is an idempotent replay, anything else is a
// corrupted substrate.
func (r *Registry) resolveOccupied(target interfaces.ContractAddress, existing, code []byte) (interfaces.ContractAddress, bool, error) {
	if !bytes.Equal(existing, code) {
		return interfaces.ContractAddress{}, false, fmt.Errorf("%w: address %s holds foreign code", interfaces.ErrCreationFailed, target)
	}
	return target, false, nil
}

// Compute returns the address a binding resolves to without reading or
// writing ledger state. For every binding, Compute and Create agree on the
// address.
func (r *Registry) Compute(_ context.Context, binding interfaces.Binding) (interfaces.ContractAddress, error) {
	return ComputeAddress(r.deployer, binding)
}

// Supports reports whether the registry implements the capability identified
// by id. Only the protocol capability identifier is supported.
func (r *Registry) Supports(_ context.Context, id interfaces.CapabilityID) (bool, error) {
	return id.Equal(Capability()), nil
}

// Identity returns the registry's deployer address.
func (r *Registry) Identity(context.Context) (interfaces.ContractAddress, error) {
	return r.deployer, nil
}

// SubscribeCreations subscribes to first-deployment records. Each service
// deployment is delivered to every subscriber exactly once; idempotent
// replays of create deliver nothing.
func (r *Registry) SubscribeCreations(ch chan<- interfaces.CreationRecord) event.Subscription {
	return r.scope.Track(r.feed.Subscribe(ch))
}

// Close terminates all creation subscriptions.
func (r *Registry) Close() {
	r.scope.Close()
}

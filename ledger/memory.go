// Package ledger provides the execution substrates the registry deploys to:
// an in-memory serialized ledger owning its state, and a read-only mirror of
// an external Ethereum-compatible chain.
package ledger

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// MemoryLedger is a serialized in-memory code store. Every state transition
// runs under one mutex, so transitions are totally ordered and CreateAt is an
// atomic check-and-install. The zero value is not usable; use NewMemoryLedger.
type MemoryLedger struct {
	mu   sync.Mutex
	code map[interfaces.ContractAddress][]byte
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		code: make(map[interfaces.ContractAddress][]byte),
	}
}

// CodeAt returns a copy of the code at addr, or an empty slice if the address
// is unoccupied.
func (l *MemoryLedger) CodeAt(_ context.Context, addr interfaces.ContractAddress) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return bytes.Clone(l.code[addr]), nil
}

// CreateAt installs code at addr. If the address already holds code the
// existing code is left untouched and ErrCodeAlreadyPresent is returned.
func (l *MemoryLedger) CreateAt(_ context.Context, addr interfaces.ContractAddress, code []byte) error {
	if len(code) == 0 {
		return errors.New("cannot install empty code")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, occupied := l.code[addr]; occupied {
		return interfaces.ErrCodeAlreadyPresent
	}
	l.code[addr] = bytes.Clone(code)
	return nil
}

// Addresses returns a snapshot of all occupied addresses, in no particular
// order.
func (l *MemoryLedger) Addresses() []interfaces.ContractAddress {
	l.mu.Lock()
	defer l.mu.Unlock()

	addrs := make([]interfaces.ContractAddress, 0, len(l.code))
	for addr := range l.code {
		addrs = append(addrs, addr)
	}
	return addrs
}

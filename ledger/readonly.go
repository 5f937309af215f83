package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// CodeReader is the part of an Ethereum node client the RPC ledger needs.
// Satisfied by ethclient.Client and by simulated backend clients.
type CodeReader interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// RPCLedger mirrors the code state of an external chain through a node
// client. It serves verification flows: reads proxy the node at the latest
// block, writes fail with ErrLedgerReadOnly.
type RPCLedger struct {
	client CodeReader
}

// NewRPCLedger creates a ledger reading through an existing node client.
func NewRPCLedger(client CodeReader) *RPCLedger {
	return &RPCLedger{client: client}
}

// DialRPCLedger connects to an Ethereum-compatible RPC endpoint and wraps it
// in a read-only ledger.
func DialRPCLedger(ctx context.Context, rpcURL string) (*RPCLedger, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to RPC endpoint: %w", err)
	}
	return NewRPCLedger(client), nil
}

// CodeAt returns the code at addr at the latest block.
func (l *RPCLedger) CodeAt(ctx context.Context, addr interfaces.ContractAddress) ([]byte, error) {
	code, err := l.client.CodeAt(ctx, common.Address(addr), nil)
	if err != nil {
		return nil, fmt.Errorf("could not fetch code at %s: %w", addr, err)
	}
	return code, nil
}

// CreateAt always fails: the mirrored chain is not writable through this
// ledger.
func (l *RPCLedger) CreateAt(context.Context, interfaces.ContractAddress, []byte) error {
	return interfaces.ErrLedgerReadOnly
}

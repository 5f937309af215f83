package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

type fakeCodeReader struct {
	code map[common.Address][]byte
	err  error
}

func (r *fakeCodeReader) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.code[account], nil
}

func TestRPCLedgerReads(t *testing.T) {
	addr, err := interfaces.NewContractAddressFromHex("0x4444444444444444444444444444444444444444")
	require.NoError(t, err)

	reader := &fakeCodeReader{code: map[common.Address][]byte{
		common.Address(addr): {0xde, 0xad},
	}}
	l := NewRPCLedger(reader)

	code, err := l.CodeAt(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, code)
}

func TestRPCLedgerReadFailure(t *testing.T) {
	reader := &fakeCodeReader{err: errors.New("node unreachable")}
	l := NewRPCLedger(reader)

	_, err := l.CodeAt(context.Background(), interfaces.ContractAddress{})
	assert.Error(t, err)
}

func TestRPCLedgerRefusesWrites(t *testing.T) {
	l := NewRPCLedger(&fakeCodeReader{})

	err := l.CreateAt(context.Background(), interfaces.ContractAddress{}, []byte{0x01})
	assert.ErrorIs(t, err, interfaces.ErrLedgerReadOnly)
}

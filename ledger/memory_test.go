package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

func TestMemoryLedgerCreateAndRead(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	addr, err := interfaces.NewContractAddressFromHex("0x3333333333333333333333333333333333333333")
	require.NoError(t, err)

	code, err := l.CodeAt(ctx, addr)
	require.NoError(t, err)
	assert.Empty(t, code, "fresh address must be unoccupied")

	require.NoError(t, l.CreateAt(ctx, addr, []byte{0x01, 0x02}))

	code, err = l.CodeAt(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, code)

	assert.Equal(t, []interfaces.ContractAddress{addr}, l.Addresses())
}

func TestMemoryLedgerOccupiedAddress(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	addr, err := interfaces.NewContractAddressFromHex("0x3333333333333333333333333333333333333333")
	require.NoError(t, err)

	require.NoError(t, l.CreateAt(ctx, addr, []byte{0x01}))

	err = l.CreateAt(ctx, addr, []byte{0x02})
	assert.ErrorIs(t, err, interfaces.ErrCodeAlreadyPresent)

	// The original code survives the rejected install.
	code, err := l.CodeAt(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, code)
}

func TestMemoryLedgerRejectsEmptyCode(t *testing.T) {
	l := NewMemoryLedger()
	addr, err := interfaces.NewContractAddressFromHex("0x3333333333333333333333333333333333333333")
	require.NoError(t, err)

	assert.Error(t, l.CreateAt(context.Background(), addr, nil))
}

func TestMemoryLedgerCopiesCode(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	addr, err := interfaces.NewContractAddressFromHex("0x3333333333333333333333333333333333333333")
	require.NoError(t, err)

	installed := []byte{0x01, 0x02}
	require.NoError(t, l.CreateAt(ctx, addr, installed))
	installed[0] = 0xff

	code, err := l.CodeAt(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, code, "stored code must not alias caller memory")

	code[1] = 0xff
	again, err := l.CodeAt(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, again, "returned code must not alias stored memory")
}

func TestMemoryLedgerConcurrentCreate(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	addr, err := interfaces.NewContractAddressFromHex("0x3333333333333333333333333333333333333333")
	require.NoError(t, err)

	const writers = 32
	errs := make([]error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = l.CreateAt(ctx, addr, []byte{byte(i + 1)})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, interfaces.ErrCodeAlreadyPresent)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one install must win")
}

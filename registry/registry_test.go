package registry

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/tokenbound-service-registry/artifact"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
	"github.com/ruteri/tokenbound-service-registry/ledger"
)

func testBinding(t *testing.T) interfaces.Binding {
	t.Helper()

	impl, err := interfaces.NewContractAddressFromHex("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	tokenContract, err := interfaces.NewContractAddressFromHex("0x2222222222222222222222222222222222222222")
	require.NoError(t, err)

	return interfaces.Binding{
		Implementation: impl,
		Salt:           interfaces.Salt{},
		ChainID:        big.NewInt(1),
		TokenContract:  tokenContract,
		TokenID:        big.NewInt(42),
	}
}

func testDeployer(t *testing.T) interfaces.ContractAddress {
	t.Helper()
	deployer, err := interfaces.NewContractAddressFromHex("0x00000000000000000000000000000000000ffeed")
	require.NoError(t, err)
	return deployer
}

func testRegistry(t *testing.T) (*Registry, *ledger.MemoryLedger) {
	t.Helper()
	l := ledger.NewMemoryLedger()
	reg, err := New(testDeployer(t), l)
	require.NoError(t, err)
	return reg, l
}

// TestComputeAddress_Deterministic checks that address derivation is a pure
// function of deployer identity and binding.
func TestComputeAddress_Deterministic(t *testing.T) {
	first, err := ComputeAddress(testDeployer(t), testBinding(t))
	require.NoError(t, err)
	second, err := ComputeAddress(testDeployer(t), testBinding(t))
	require.NoError(t, err)
	assert.True(t, first.Equal(second))

	otherDeployer, err := interfaces.NewContractAddressFromHex("0x00000000000000000000000000000000000acade")
	require.NoError(t, err)
	third, err := ComputeAddress(otherDeployer, testBinding(t))
	require.NoError(t, err)
	assert.False(t, first.Equal(third), "different deployer identities must derive different addresses")
}

// TestComputeAddress_Discriminates checks that every binding field feeds the
// derived address.
func TestComputeAddress_Discriminates(t *testing.T) {
	deployer := testDeployer(t)
	base, err := ComputeAddress(deployer, testBinding(t))
	require.NoError(t, err)

	variations := map[string]func(*interfaces.Binding){
		"implementation": func(b *interfaces.Binding) { b.Implementation[19] ^= 0x01 },
		"salt":           func(b *interfaces.Binding) { b.Salt[0] = 0x01 },
		"chain ID":       func(b *interfaces.Binding) { b.ChainID = big.NewInt(2) },
		"token contract": func(b *interfaces.Binding) { b.TokenContract[19] ^= 0x01 },
		"token ID":       func(b *interfaces.Binding) { b.TokenID = big.NewInt(43) },
	}
	for field, mutate := range variations {
		b := testBinding(t)
		mutate(&b)
		addr, err := ComputeAddress(deployer, b)
		require.NoError(t, err)
		assert.False(t, base.Equal(addr), "changing %s must change the address", field)
	}
}

// TestRegistry_ComputeMatchesCreate checks the predictive-equality guarantee.
func TestRegistry_ComputeMatchesCreate(t *testing.T) {
	reg, _ := testRegistry(t)
	ctx := context.Background()

	predicted, err := reg.Compute(ctx, testBinding(t))
	require.NoError(t, err)

	deployed, err := reg.Create(ctx, testBinding(t))
	require.NoError(t, err)
	assert.True(t, predicted.Equal(deployed))
}

// TestRegistry_CreateIdempotent checks that repeating a create changes
// nothing and emits no second record.
func TestRegistry_CreateIdempotent(t *testing.T) {
	reg, l := testRegistry(t)
	ctx := context.Background()

	records := make(chan interfaces.CreationRecord, 8)
	sub := reg.SubscribeCreations(records)
	defer sub.Unsubscribe()

	first, err := reg.Create(ctx, testBinding(t))
	require.NoError(t, err)
	second, err := reg.Create(ctx, testBinding(t))
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Len(t, l.Addresses(), 1, "one binding must produce one deployment")

	require.Len(t, records, 1, "one binding must produce exactly one creation record")
	record := <-records
	assert.True(t, record.Service.Equal(first))
	assert.True(t, record.Binding.Equal(testBinding(t)))
}

// TestRegistry_CreateDiscriminates deploys two bindings differing only in
// token ID and checks both services resolve to their own token.
func TestRegistry_CreateDiscriminates(t *testing.T) {
	reg, l := testRegistry(t)
	ctx := context.Background()

	bindingX := testBinding(t)
	bindingY := testBinding(t)
	bindingY.TokenID = big.NewInt(43)

	addrX, err := reg.Create(ctx, bindingX)
	require.NoError(t, err)
	addrY, err := reg.Create(ctx, bindingY)
	require.NoError(t, err)
	assert.False(t, addrX.Equal(addrY))

	serviceX, err := NewService(addrX, l)
	require.NoError(t, err)
	tokenX, err := serviceX.Token(ctx)
	require.NoError(t, err)
	assert.Zero(t, tokenX.TokenID.Cmp(big.NewInt(42)))

	serviceY, err := NewService(addrY, l)
	require.NoError(t, err)
	tokenY, err := serviceY.Token(ctx)
	require.NoError(t, err)
	assert.Zero(t, tokenY.TokenID.Cmp(big.NewInt(43)))
}

// TestRegistry_CreateValidates checks that malformed bindings are rejected
// before any state access, and not reported as creation failures.
func TestRegistry_CreateValidates(t *testing.T) {
	reg, l := testRegistry(t)

	invalid := testBinding(t)
	invalid.ChainID = nil

	_, err := reg.Create(context.Background(), invalid)
	require.Error(t, err)
	assert.False(t, errors.Is(err, interfaces.ErrCreationFailed))
	assert.Empty(t, l.Addresses())
}

// faultLedger fails installs with a configured error.
type faultLedger struct {
	interfaces.Ledger
	createErr error
}

func (l *faultLedger) CreateAt(ctx context.Context, addr interfaces.ContractAddress, code []byte) error {
	if l.createErr != nil {
		return l.createErr
	}
	return l.Ledger.CreateAt(ctx, addr, code)
}

// TestRegistry_CreateFailure checks that a failed deployment wraps
// ErrCreationFailed and leaves no partial state.
func TestRegistry_CreateFailure(t *testing.T) {
	inner := ledger.NewMemoryLedger()
	reg, err := New(testDeployer(t), &faultLedger{Ledger: inner, createErr: errors.New("substrate offline")})
	require.NoError(t, err)

	records := make(chan interfaces.CreationRecord, 8)
	sub := reg.SubscribeCreations(records)
	defer sub.Unsubscribe()

	_, err = reg.Create(context.Background(), testBinding(t))
	assert.ErrorIs(t, err, interfaces.ErrCreationFailed)
	assert.Empty(t, inner.Addresses(), "failed create must leave no ledger entry")
	assert.Empty(t, records, "failed create must emit no record")
}

// TestRegistry_ForeignCodeConflict checks that an occupied target holding
// anything but the binding's artifact is a creation failure.
func TestRegistry_ForeignCodeConflict(t *testing.T) {
	reg, l := testRegistry(t)
	ctx := context.Background()

	target, err := reg.Compute(ctx, testBinding(t))
	require.NoError(t, err)
	require.NoError(t, l.CreateAt(ctx, target, []byte{0xde, 0xad}))

	_, err = reg.Create(ctx, testBinding(t))
	assert.ErrorIs(t, err, interfaces.ErrCreationFailed)
}

// racingLedger simulates losing the install race: a competitor installs the
// same artifact just before our own install lands.
type racingLedger struct {
	interfaces.Ledger
}

func (l *racingLedger) CreateAt(ctx context.Context, addr interfaces.ContractAddress, code []byte) error {
	if err := l.Ledger.CreateAt(ctx, addr, code); err != nil {
		return err
	}
	return interfaces.ErrCodeAlreadyPresent
}

// TestRegistry_CreateLostRace checks that losing the race against an
// equivalent create resolves idempotently.
func TestRegistry_CreateLostRace(t *testing.T) {
	inner := ledger.NewMemoryLedger()
	reg, err := New(testDeployer(t), &racingLedger{Ledger: inner})
	require.NoError(t, err)

	records := make(chan interfaces.CreationRecord, 8)
	sub := reg.SubscribeCreations(records)
	defer sub.Unsubscribe()

	addr, err := reg.Create(context.Background(), testBinding(t))
	require.NoError(t, err)

	predicted, err := reg.Compute(context.Background(), testBinding(t))
	require.NoError(t, err)
	assert.True(t, addr.Equal(predicted))
	assert.Empty(t, records, "a lost race is an idempotent replay, not a first deployment")
}

// TestRegistry_ConcurrentCreates races many creates of one binding and
// checks the at-most-once guarantee end to end.
func TestRegistry_ConcurrentCreates(t *testing.T) {
	reg, l := testRegistry(t)
	ctx := context.Background()

	records := make(chan interfaces.CreationRecord, 64)
	sub := reg.SubscribeCreations(records)
	defer sub.Unsubscribe()

	const creators = 16
	addrs := make([]interfaces.ContractAddress, creators)
	errs := make([]error, creators)

	var wg sync.WaitGroup
	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addrs[i], errs[i] = reg.Create(ctx, testBinding(t))
		}(i)
	}
	wg.Wait()

	for i := 0; i < creators; i++ {
		require.NoError(t, errs[i])
		assert.True(t, addrs[0].Equal(addrs[i]))
	}
	assert.Len(t, l.Addresses(), 1)
	assert.Len(t, records, 1, "concurrent creates of one binding must emit exactly one record")
}

// TestRegistry_Capability checks capability-based discovery answers.
func TestRegistry_Capability(t *testing.T) {
	reg, _ := testRegistry(t)
	ctx := context.Background()

	assert.NotEqual(t, interfaces.CapabilityID{}, Capability())

	supported, err := reg.Supports(ctx, Capability())
	require.NoError(t, err)
	assert.True(t, supported)

	foreign, err := interfaces.NewCapabilityIDFromHex("0x01ffc9a7")
	require.NoError(t, err)
	supported, err = reg.Supports(ctx, foreign)
	require.NoError(t, err)
	assert.False(t, supported)

	identity, err := reg.Identity(ctx)
	require.NoError(t, err)
	assert.True(t, identity.Equal(testDeployer(t)))
}

// TestService_NoCode checks the accessor behavior at an empty address.
func TestService_NoCode(t *testing.T) {
	l := ledger.NewMemoryLedger()
	addr, err := interfaces.NewContractAddressFromHex("0x5555555555555555555555555555555555555555")
	require.NoError(t, err)

	service, err := NewService(addr, l)
	require.NoError(t, err)

	_, err = service.Token(context.Background())
	assert.ErrorIs(t, err, interfaces.ErrNoCode)
	_, err = service.Binding(context.Background())
	assert.ErrorIs(t, err, interfaces.ErrNoCode)
}

// TestService_BindingRoundTrip checks that a deployed service's full binding
// is recoverable from its own bytes.
func TestService_BindingRoundTrip(t *testing.T) {
	reg, l := testRegistry(t)
	ctx := context.Background()

	binding := testBinding(t)
	binding.Salt[5] = 0x99
	binding.ChainID = big.NewInt(10)

	addr, err := reg.Create(ctx, binding)
	require.NoError(t, err)

	service, err := NewService(addr, l)
	require.NoError(t, err)

	recovered, err := service.Binding(ctx)
	require.NoError(t, err)
	assert.True(t, binding.Equal(recovered))

	token, err := service.Token(ctx)
	require.NoError(t, err)
	assert.True(t, binding.Token().Equal(token))
}

// TestRegistry_ChainBackedVerification reads a service deployed on a
// simulated chain through the read-only RPC ledger and checks both the
// decode path and the write refusal.
func TestRegistry_ChainBackedVerification(t *testing.T) {
	binding := testBinding(t)
	deployer := testDeployer(t)

	code, err := artifact.Build(binding)
	require.NoError(t, err)
	serviceAddr, err := ComputeAddress(deployer, binding)
	require.NoError(t, err)

	// Place the artifact at its derived address in genesis, as if a prior
	// deployment had landed on this chain.
	genesisAlloc := map[common.Address]types.Account{
		common.Address(serviceAddr): {
			Code:    code,
			Balance: big.NewInt(1),
		},
	}
	backend := simulated.NewBackend(genesisAlloc)
	defer backend.Close()

	chain := ledger.NewRPCLedger(backend.Client())

	service, err := NewService(serviceAddr, chain)
	require.NoError(t, err)
	recovered, err := service.Binding(context.Background())
	require.NoError(t, err)
	assert.True(t, binding.Equal(recovered))

	// The mirrored chain cannot be deployed to through this ledger.
	reg, err := New(deployer, chain)
	require.NoError(t, err)
	other := testBinding(t)
	other.TokenID = big.NewInt(43)
	_, err = reg.Create(context.Background(), other)
	assert.ErrorIs(t, err, interfaces.ErrCreationFailed)
	assert.ErrorIs(t, err, interfaces.ErrLedgerReadOnly)
}

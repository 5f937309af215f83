package discovery

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/tokenbound-service-registry/httpserver"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
	"github.com/ruteri/tokenbound-service-registry/ledger"
	"github.com/ruteri/tokenbound-service-registry/registry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// compliantServer serves the real registry API for a fresh registry.
func compliantServer(t *testing.T) (*httptest.Server, interfaces.ContractAddress) {
	t.Helper()

	deployer, err := interfaces.NewContractAddressFromHex("0x00000000000000000000000000000000000ffeed")
	require.NoError(t, err)

	l := ledger.NewMemoryLedger()
	reg, err := registry.New(deployer, l)
	require.NoError(t, err)
	t.Cleanup(reg.Close)

	handler := httpserver.NewHandler(reg, l, testLogger())

	mux := chi.NewRouter()
	mux.Get("/api/registry/capability/{capability_id}", handler.HandleCapability)
	mux.Get("/api/registry/descriptor", handler.HandleDescriptor)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, deployer
}

// TestProbeEndpoints_FiltersNonCompliant probes a compliant instance, an
// instance without the capability and an unrelated HTTP service, and checks
// only the compliant one survives.
func TestProbeEndpoints_FiltersNonCompliant(t *testing.T) {
	compliant, deployer := compliantServer(t)

	// Answers the capability route but supports nothing.
	unsupportedMux := chi.NewRouter()
	unsupportedMux.Get("/api/registry/capability/{capability_id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"capability_id":"00000000","supported":false}`))
	})
	unsupported := httptest.NewServer(unsupportedMux)
	t.Cleanup(unsupported.Close)

	// Not a registry at all.
	unrelated := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(unrelated.Close)

	resolver := NewResolver("", time.Minute, testLogger())
	candidates := []string{compliant.URL, unsupported.URL, unrelated.URL}

	endpoints := resolver.ProbeEndpoints(context.Background(), candidates, registry.Capability())
	require.Len(t, endpoints, 1)
	assert.Equal(t, compliant.URL, endpoints[0].BaseURL)
	assert.True(t, endpoints[0].Identity.Equal(deployer))
}

// TestProbeEndpoints_UnreachableCandidate checks a dead endpoint is skipped
// without failing the probe.
func TestProbeEndpoints_UnreachableCandidate(t *testing.T) {
	compliant, _ := compliantServer(t)

	resolver := NewResolver("", time.Minute, testLogger())
	candidates := []string{"http://127.0.0.1:1", compliant.URL}

	endpoints := resolver.ProbeEndpoints(context.Background(), candidates, registry.Capability())
	require.Len(t, endpoints, 1)
	assert.Equal(t, compliant.URL, endpoints[0].BaseURL)
}

// TestResolveRegistries_CacheHit checks a fresh cache entry short-circuits
// DNS entirely.
func TestResolveRegistries_CacheHit(t *testing.T) {
	// A resolver pointed at a dead DNS server; any query would fail.
	resolver := NewResolver("127.0.0.1:1", time.Minute, testLogger())

	identity, err := interfaces.NewContractAddressFromHex("0x00000000000000000000000000000000000ffeed")
	require.NoError(t, err)
	want := []Endpoint{{BaseURL: "http://cached.example.com:8080", Identity: identity}}

	key := "registries.example.com/" + registry.Capability().String()
	resolver.cache[key] = cacheEntry{endpoints: want, expiry: time.Now().Add(time.Minute)}

	got, err := resolver.ResolveRegistries(context.Background(), "registries.example.com", registry.Capability())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// TestResolveRegistries_DNSFailure checks DNS failure surfaces as an error
// rather than an empty result.
func TestResolveRegistries_DNSFailure(t *testing.T) {
	resolver := NewResolver("127.0.0.1:1", time.Minute, testLogger())

	_, err := resolver.ResolveRegistries(context.Background(), "registries.example.com", registry.Capability())
	require.Error(t, err)
}

// TestEndpointIdentityDistinguishes checks two registries with different
// deployer identities derive different addresses for one binding, which is
// why Endpoint carries the identity.
func TestEndpointIdentityDistinguishes(t *testing.T) {
	ctx := context.Background()

	firstDeployer, err := interfaces.NewContractAddressFromHex("0x00000000000000000000000000000000000ffeed")
	require.NoError(t, err)
	secondDeployer, err := interfaces.NewContractAddressFromHex("0x00000000000000000000000000000000000acade")
	require.NoError(t, err)

	first, err := registry.New(firstDeployer, ledger.NewMemoryLedger())
	require.NoError(t, err)
	t.Cleanup(first.Close)
	second, err := registry.New(secondDeployer, ledger.NewMemoryLedger())
	require.NoError(t, err)
	t.Cleanup(second.Close)

	impl, err := interfaces.NewContractAddressFromHex("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	tokenContract, err := interfaces.NewContractAddressFromHex("0x2222222222222222222222222222222222222222")
	require.NoError(t, err)
	binding := interfaces.Binding{
		Implementation: impl,
		Salt:           interfaces.Salt{},
		ChainID:        big.NewInt(1),
		TokenContract:  tokenContract,
		TokenID:        big.NewInt(42),
	}

	firstAddr, err := first.Compute(ctx, binding)
	require.NoError(t, err)
	secondAddr, err := second.Compute(ctx, binding)
	require.NoError(t, err)
	assert.False(t, firstAddr.Equal(secondAddr))
}

package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/ruteri/tokenbound-service-registry/api/clients"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

const (
	// defaultDNSServer is the local systemd-resolved stub listener.
	defaultDNSServer = "127.0.0.53:53"

	// probeTimeout bounds a single HTTP probe against a candidate endpoint.
	probeTimeout = 5 * time.Second
)

// Endpoint is a registry instance that answered the capability probe.
type Endpoint struct {
	// BaseURL is the probed API base, scheme://host:port.
	BaseURL string

	// Identity is the registry's deployer address from its descriptor. Two
	// endpoints with different identities derive different service addresses
	// for the same binding.
	Identity interfaces.ContractAddress
}

// Resolver discovers registry instances for a domain by resolving its SRV
// records and probing each candidate over HTTP. Only endpoints that report
// the requested capability are returned; a name maps to whatever set of
// compliant instances currently answers for it, never to an assumed canonical
// one.
type Resolver struct {
	dnsServer string
	log       *slog.Logger

	// Cache for probe results to reduce DNS and HTTP traffic
	cache     map[string]cacheEntry
	cacheLock sync.RWMutex
	cacheTTL  time.Duration
}

// cacheEntry represents a cached probe result with an expiration timestamp.
type cacheEntry struct {
	endpoints []Endpoint
	expiry    time.Time
}

// NewResolver creates a resolver querying dnsServer for SRV records.
//
// Parameters:
//   - dnsServer: DNS server address; empty selects the local stub resolver
//   - cacheTTL: Time-to-live for cached probe results; zero defaults to 5 minutes
//   - log: Structured logger for operational insights
//
// Returns a configured Resolver instance.
func NewResolver(dnsServer string, cacheTTL time.Duration, log *slog.Logger) *Resolver {
	if dnsServer == "" {
		dnsServer = defaultDNSServer
	}
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Resolver{
		dnsServer: dnsServer,
		log:       log,
		cache:     make(map[string]cacheEntry),
		cacheTTL:  cacheTTL,
	}
}

// ResolveRegistries returns the registry endpoints behind domain that support
// the capability. Candidates that fail the probe are skipped, not reported as
// errors; only DNS resolution failure fails the call.
func (r *Resolver) ResolveRegistries(ctx context.Context, domain string, capability interfaces.CapabilityID) ([]Endpoint, error) {
	cacheKey := domain + "/" + capability.String()

	r.cacheLock.RLock()
	entry, ok := r.cache[cacheKey]
	r.cacheLock.RUnlock()
	if ok && time.Now().Before(entry.expiry) {
		return entry.endpoints, nil
	}

	candidates, err := r.resolveCandidates(domain)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s: %w", domain, err)
	}

	endpoints := r.ProbeEndpoints(ctx, candidates, capability)

	r.cacheLock.Lock()
	r.cache[cacheKey] = cacheEntry{endpoints: endpoints, expiry: time.Now().Add(r.cacheTTL)}
	r.cacheLock.Unlock()

	return endpoints, nil
}

// ProbeEndpoints checks every candidate base URL for the capability and
// returns the compliant ones together with their registry identities.
func (r *Resolver) ProbeEndpoints(ctx context.Context, candidates []string, capability interfaces.CapabilityID) []Endpoint {
	endpoints := make([]Endpoint, 0, len(candidates))
	for _, baseURL := range candidates {
		client := clients.NewRegistryClient(baseURL, probeTimeout)

		supported, err := client.Supports(ctx, capability)
		if err != nil {
			r.log.Debug("Capability probe failed", "err", err, slog.String("endpoint", baseURL))
			continue
		}
		if !supported {
			r.log.Debug("Endpoint does not support capability",
				slog.String("endpoint", baseURL),
				slog.String("capabilityId", capability.String()))
			continue
		}

		identity, err := client.Identity(ctx)
		if err != nil {
			r.log.Debug("Descriptor fetch failed", "err", err, slog.String("endpoint", baseURL))
			continue
		}

		endpoints = append(endpoints, Endpoint{BaseURL: baseURL, Identity: identity})
	}
	return endpoints
}

// resolveCandidates queries the domain's SRV records and returns candidate
// API base URLs built from each record's target and port.
func (r *Resolver) resolveCandidates(domain string) ([]string, error) {
	m1 := new(dns.Msg)
	m1.Id = dns.Id()
	m1.RecursionDesired = true
	m1.Question = make([]dns.Question, 1)
	m1.Question[0] = dns.Question{Name: dns.Fqdn(domain), Qtype: dns.TypeSRV, Qclass: dns.ClassINET}

	c := new(dns.Client)
	in, _, err := c.Exchange(m1, r.dnsServer)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(in.Answer))
	for _, answer := range in.Answer {
		if srv, ok := answer.(*dns.SRV); ok {
			host := strings.TrimSuffix(srv.Target, ".")
			candidates = append(candidates, fmt.Sprintf("http://%s:%d", host, srv.Port))
		}
	}

	return candidates, nil
}

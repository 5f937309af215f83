// Package discovery locates registry instances through DNS and capability
// probing.
//
// A deployment publishes its registry instances as SRV records under a
// well-known domain. The resolver turns that domain into a set of usable
// endpoints in two steps:
//
//  1. Resolve the domain's SRV records to candidate host:port pairs
//  2. Probe each candidate's capability endpoint over HTTP and keep only
//     instances that support the requested capability
//
// Nothing is assumed about the instances behind a name: compliance is
// established by probing, not by convention, so a domain can front a mix of
// registry versions or unrelated services without confusing callers. Each
// returned endpoint carries the registry's deployer identity from its
// descriptor, which callers need because registries with different identities
// derive different service addresses for the same binding.
//
// Probe results are cached per domain and capability to keep repeated
// resolutions from hammering DNS and the candidate instances.
//
// # Usage Example
//
//	resolver := discovery.NewResolver("", 5*time.Minute, logger)
//
//	endpoints, err := resolver.ResolveRegistries(ctx, "registries.example.com", registry.Capability())
//	if err != nil {
//		log.Fatalf("Failed to resolve registries: %v", err)
//	}
//
//	for _, endpoint := range endpoints {
//		client := clients.NewRegistryClient(endpoint.BaseURL)
//		// endpoint.Identity pins the deployer the addresses derive from
//	}
package discovery

// Package registry implements a deterministic factory for service contracts
// bound to token references.
//
// A service contract is a fixed-shape artifact: a dispatch thunk forwarding
// every call to an implementation address, followed by the binding data
// (salt, origin chain ID, token contract, token ID). The registry deploys
// exactly this shape and nothing else.
//
// Key properties:
//
//   - Deterministic addressing: the service address is a pure function of
//     (deployer identity, binding). Anyone can precompute it with
//     ComputeAddress before anything is deployed.
//   - Idempotent creation: creating the same binding twice returns the same
//     address without a second deployment or a second creation record.
//   - Address-as-registry: the ledger's code-at-address mapping is the entire
//     deployment record. There is no auxiliary table to query or corrupt, and
//     a service's binding is recovered from its own deployed bytes.
//   - Capability probing: registries advertise the protocol capability
//     identifier (Capability) instead of relying on any canonical instance.
//
// # Concurrency
//
// The registry holds no locks. Ordering and mutual exclusion come from the
// ledger's atomic CreateAt: concurrent creates of one binding race on the
// install, exactly one wins, and every loser resolves idempotently against
// the winner's bytes.
//
// # Creation Records
//
// First deployments are published on an event feed (SubscribeCreations) and
// can be persisted with Journal. ReplayJournal rebuilds ledger state from a
// journal file by reconstructing each artifact from its recorded binding,
// which is possible precisely because artifacts are deterministic.
//
// # Usage Example
//
//	ledger := ledger.NewMemoryLedger()
//	reg, err := registry.New(deployerAddr, ledger)
//	if err != nil {
//	    log.Fatalf("Failed to create registry: %v", err)
//	}
//
//	// Predict the address, then deploy.
//	predicted, _ := reg.Compute(ctx, binding)
//	service, err := reg.Create(ctx, binding)
//	// predicted == service
//
//	// Read the token reference back from the deployed bytes.
//	accessor, _ := registry.NewService(service, ledger)
//	token, err := accessor.Token(ctx)
package registry

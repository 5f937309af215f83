// Package interfaces defines core interfaces and types for the tokenbound
// service registry, separating interface definitions from implementations.
//
// The package provides the contracts for the key components of the system:
//
// # Registry Interfaces
//
// ServiceRegistry: The protocol surface of a deterministic service factory.
// Create deploys (or idempotently re-resolves) the service contract for a
// binding, Compute predicts the address without deploying, Supports answers
// capability queries, and Identity exposes the deployer address every derived
// service address commits to. Implemented by the in-process registry and the
// HTTP API client.
//
// Ledger: The serialized execution substrate holding code at addresses.
// CodeAt reads, CreateAt atomically installs; all transitions are totally
// ordered by the implementation. The code-at-address mapping is the only
// registry state there is: no auxiliary tables exist, so inspecting a ledger
// is inspecting the registry.
//
// # Archive Interfaces
//
// ArtifactStore: Content-addressed archival of deployed artifact bytes across
// multiple backend types (file, S3, IPFS, GitHub, Vault). The ledger remains
// authoritative; archives serve indexers and disaster recovery.
//
// ArtifactStoreFactory: Creates archive backends from URI strings and manages
// multi-backend configurations for redundant archival.
//
// # Core Types
//
//   - ContractAddress: 20-byte Ethereum address
//   - Salt: 32-byte caller-chosen binding discriminator
//   - Binding: the immutable (implementation, salt, originChainId,
//     tokenContract, tokenId) five-tuple a service is deployed for
//   - TokenReference: the token portion of a binding
//   - CapabilityID: 4-byte ERC-165-style protocol capability identifier
//   - CreationRecord: first-deployment record (service address plus binding)
//   - ContentID: 32-byte Keccak-256 hash for content addressing
//
// # Error Types
//
// Registry errors: ErrCreationFailed wraps every non-idempotent create-path
// failure; ErrCodeAlreadyPresent signals an occupied ledger address;
// ErrNoCode signals an accessor pointed at an empty address;
// ErrLedgerReadOnly is returned by chain-mirroring ledgers.
//
// Archive errors: ErrContentNotFound, ErrBackendUnavailable,
// ErrInvalidLocationURI.
package interfaces

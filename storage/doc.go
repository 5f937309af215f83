// Package storage provides a content-addressed artifact archive with pluggable backends.
//
// The storage package offers a unified interface for archiving and retrieving
// creation artifacts identified by Keccak-256 hash across multiple backends:
//
//   - File system archive for local development and testing
//   - S3-compatible storage for cloud deployments
//   - IPFS storage for decentralized content
//   - GitHub archive using repository blob objects
//   - Vault storage with TLS client certificate authentication
//
// The ledger remains the authoritative record of installed artifacts. Archives
// exist so indexers and recovery tooling can fetch artifact bytes by the same
// hash the address derivation commits to, without a ledger connection.
//
// # Archive URI Format
//
// Archive backends are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - file:///var/lib/registry/
//   - s3://bucket-name/prefix/?region=us-west-2
//   - ipfs://ipfs.example.com:5001/
//   - github://owner/repo
//   - vault://vault.example.com:8200/secret/registry
//
// # Content Addressing
//
// Artifacts are archived and retrieved using content addressing, where the
// content identifier is the Keccak-256 hash of the bytes. This is the same
// hash the registry folds into derived service addresses, so an archive entry
// can be verified against the address it backs:
//
//	type ContentID [32]byte
//
// # GitHub Archive (Read-Only)
//
// The GitHubBackend fetches content directly from Git blobs in a GitHub repository:
//
//   - Uses ContentID directly as a Git blob SHA
//   - Directly accesses blob objects with no intermediate objects
//   - Verifies fetched bytes against the requested content ID
//
// URI format: github://owner/repo
//
// # Vault Archive with TLS Authentication
//
// The VaultBackend stores content in HashiCorp Vault using TLS client certificate authentication:
//
//   - Authentication: Uses TLS client certificates supplied by the factory's TLS auth getter
//   - Path Structure: Uses KV v2 secret engine with path format: {mount}/data/{path}/artifacts/{content_id}
//
// URI format: vault://vault.example.com:8200/secret/registry
//
// # Multi-Backend Archive
//
// The MultiStore aggregates multiple backends for redundancy:
//
//   - Store: Attempts to store in all available backends
//   - Fetch: Tries each backend until content is found
//   - Available: Returns true if any backend is available
//
// # Usage Example
//
//	// Create an archive factory
//	factory := storage.NewStoreFactory(logger)
//
//	// Create a file backend
//	loc, err := interfaces.NewArtifactStoreLocation("file:///var/lib/registry/")
//	if err != nil {
//	    log.Fatalf("Invalid location: %v", err)
//	}
//	fileBackend, err := factory.StoreFor(loc)
//	if err != nil {
//	    log.Fatalf("Failed to create file backend: %v", err)
//	}
//
//	// Archive artifact bytes
//	id, err := fileBackend.Store(context.Background(), artifactBytes)
//	if err != nil {
//	    log.Fatalf("Failed to store artifact: %v", err)
//	}
//
//	// Retrieve them by content ID
//	retrieved, err := fileBackend.Fetch(context.Background(), id)
//	if err != nil {
//	    log.Fatalf("Failed to fetch artifact: %v", err)
//	}
//
// # Multi-Backend Example
//
//	// Create a multi-backend from multiple locations
//	locations := []interfaces.ArtifactStoreLocation{fileLoc, s3Loc, ipfsLoc}
//	multiStore, err := factory.CreateMultiStore(locations)
package storage

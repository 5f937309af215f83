// Package main (cmd/httpserver) implements the tokenbound service registry server.
//
// The registry server provides HTTP endpoints for deterministic service
// creation, address computation, reverse token lookup, capability probing,
// and the registry descriptor. Every address it derives commits to the
// deployer identity, the service binding, and the artifact installed at
// the derived address, so any party can recompute and audit the result.
//
// Durability is optional and layered:
//
//   - Journal: an append-only file of creation records, replayed on startup
//     to rebuild the in-memory service ledger. Enabled with --journal.
//
//   - Archive: content-addressed artifact storage across one or more
//     backends (file, S3, IPFS, GitHub, Vault). Enabled with repeated
//     --archive flags; backends are aggregated into a single multi-store.
//
// Both sinks are fed asynchronously from the registry's creation feed, so
// a slow or failing backend never blocks or fails a creation request.
//
// Configuration is handled through command-line flags, with separate
// settings for the registry identity, durability sinks, HTTP endpoints,
// logging, and performance tuning.
//
// The server implements graceful shutdown on receiving termination signals
// (SIGINT/SIGTERM) and supports health checks, metrics collection, and
// optional profiling endpoints.
//
// Example usage:
//
//	registry-server --registry-identity=0x9876543210fedcba9876543210fedcba98765432 \
//	    --listen-addr=0.0.0.0:8080 \
//	    --journal=/var/lib/registry/creations.journal \
//	    --archive=file:///var/lib/registry/artifacts/ \
//	    --archive=s3://artifacts.example.com/bucket/services?region=us-east-1
package main

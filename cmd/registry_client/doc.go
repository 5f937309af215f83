// Package main (cmd/registry_client) implements a client for the tokenbound
// service registry API.
//
// The registry client provides command-line tools for deterministic service
// creation and for auditing what a registry derived. Responses are printed
// as JSON on stdout.
//
// The client supports the following commands:
//
//	create     - Deploy the service bound to a token. Creation is idempotent:
//	             repeating the call returns the same service address with
//	             created set to false.
//
//	compute    - Compute the service address a binding derives to without
//	             deploying anything.
//
//	token      - Look up the token reference a deployed service is bound to,
//	             decoded from the artifact bytes at the service address.
//
//	capability - Probe the registry for a capability identifier.
//
//	descriptor - Fetch the registry descriptor (identity and creation
//	             capability).
//
//	discover   - Resolve registry endpoints through DNS SRV records and
//	             filter them down to compliant registries.
//
//	verify     - Recompute the service address locally from the binding and
//	             the registry identity, fetch the code at that address over
//	             RPC, and check it encodes the requested binding. This needs
//	             no registry server at all, which is the point: any party
//	             can audit a creation from public inputs.
package main

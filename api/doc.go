/*
Package api defines the wire types and client-side contracts of the registry
HTTP surface.

This package is organized as follows:

1. the package root - request/response DTOs and server configuration
2. clients - client library implementing the registry interfaces over HTTP

The HTTP surface exposes the deterministic service factory: create and compute
accept a five-field binding and return the derived service address, capability
probing lets discovery verify protocol compliance, and the service token
endpoint decodes the token reference from deployed artifact bytes.

# Wire Conventions

Addresses and salts travel as hex strings (0x prefix optional). Chain and
token identifiers travel as decimal strings so 256-bit values survive JSON
number handling in any client.

# Endpoints

  - POST /api/registry/create - Deploy the service for a binding
  - POST /api/registry/compute - Derive the address without deploying
  - GET  /api/registry/capability/{capability_id} - Capability probe
  - GET  /api/registry/service/{service_address}/token - Bound token reference
  - GET  /api/registry/descriptor - Registry identity and capability identifier
  - GET  /livez, /readyz, /drain, /undrain - Health and lifecycle

The server side of this surface lives in the httpserver package.
*/
package api

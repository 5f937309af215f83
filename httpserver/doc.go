/*
Package httpserver implements the HTTP server for the tokenbound service
registry.

It exposes the registry protocol over JSON: deterministic service creation,
offline address derivation, capability discovery and service token lookups.
Deployments are delegated to the in-process registry; the server adds wire
encoding, error mapping and operational endpoints.

The package includes two main components:

 1. Registry API - The JSON endpoints backed by the registry and ledger
 2. Creation recorder - A background sink persisting first-time deployments

# Registry API Features

  - Idempotent service creation from token bindings
  - Address derivation without ledger access
  - Capability discovery for interface negotiation
  - Token reference lookups decoded from deployed artifacts
  - Health and diagnostics endpoints

# Creation Recorder

The recorder subscribes to the registry's creation feed and persists every
first-time deployment:

  - The creation record is appended to the JSON-lines journal, from which a
    fresh ledger can be rebuilt on startup
  - The artifact bytes are archived to content-addressed storage under their
    Keccak-256 content ID
  - Idempotent create replays emit no record and are never persisted twice
  - Sink failures are logged and counted, never surfaced to the creating
    client

# Registry API Endpoints

  - POST /api/registry/create - Deploy the service for a binding
  - POST /api/registry/compute - Derive a service address offline
  - GET /api/registry/capability/{capability_id} - Probe capability support
  - GET /api/registry/service/{service_address}/token - Read a service's token
  - GET /api/registry/descriptor - Registry identity and capability
  - GET /livez - Liveness check
  - GET /readyz - Readiness check
  - GET /drain - Gracefully mark server as not ready
  - GET /undrain - Mark server as ready

# Error Mapping

  - 400 - Malformed request body, binding or path parameter
  - 404 - Token lookup against an address holding no code
  - 409 - Creation failure, including foreign code at the target address
  - 500 - Ledger or encoding failures

The API client in package api/clients maps 409 and 404 back to
interfaces.ErrCreationFailed and interfaces.ErrNoCode, so errors.Is works the
same against a remote registry as against a local one.

# Example Usage

	// Set up configuration
	cfg := &api.HTTPServerConfig{
		ListenAddr:               ":8080",
		MetricsAddr:              ":9090",
		Log:                      logger,
		DrainDuration:            30 * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              5 * time.Second,
		WriteTimeout:             10 * time.Second,
	}

	// Create the registry and its handler
	reg, err := registry.New(deployer, ledger)
	if err != nil {
		log.Fatalf("Failed to create registry: %v", err)
	}
	handler := httpserver.NewHandler(reg, ledger, logger)

	// Persist creations to a journal and an artifact archive
	recorder := httpserver.NewCreationRecorder(journal, archive, logger)
	recorder.Start(reg)
	defer recorder.Stop()

	// Create server
	server, err := httpserver.New(cfg, handler)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Run in background
	server.RunInBackground()

	// Shutdown gracefully on exit
	defer server.Shutdown()
*/
package httpserver

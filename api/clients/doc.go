/*
Package clients provides the HTTP client for the tokenbound service registry
API.

RegistryClient implements interfaces.ServiceRegistry over the wire, so code
written against the interface runs unchanged against an in-process registry or
a remote one. Responses are decoded from the api package's wire types; error
statuses map back to the registry's sentinel errors, keeping errors.Is
behavior identical on both sides:

  - 409 Conflict wraps interfaces.ErrCreationFailed
  - 404 Not Found wraps interfaces.ErrNoCode

# RegistryClient Features

  - Create - Deploy the service for a binding, idempotently
  - Deploy - Create plus a flag reporting whether this call deployed first
  - Compute - Derive a service address without ledger access
  - Supports - Probe a capability identifier
  - Identity - Read the registry's deployer identity
  - Descriptor - Fetch identity and capability in one round trip
  - ServiceToken - Read the token reference a deployed service is bound to

# Example Usage

	client := clients.NewRegistryClient("https://registry.example.com:8080")

	binding := interfaces.Binding{
		Implementation: implementation,
		Salt:           salt,
		ChainID:        big.NewInt(1),
		TokenContract:  tokenContract,
		TokenID:        big.NewInt(42),
	}

	// Deploy (or find) the service for the binding
	service, err := client.Create(ctx, binding)
	if err != nil {
		log.Fatalf("creation failed: %v", err)
	}

	// The same address is derivable offline
	predicted, _ := client.Compute(ctx, binding)
	fmt.Println(service.Equal(predicted)) // true

	// Read the bound token back from the deployed artifact
	token, err := client.ServiceToken(ctx, service)
*/
package clients

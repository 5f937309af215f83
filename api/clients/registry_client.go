package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ruteri/tokenbound-service-registry/api"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// RegistryClient implements api.RegistryProvider for HTTP-based communication
// with a registry server. It satisfies interfaces.ServiceRegistry, so code
// written against the registry protocol runs unchanged over the wire.
type RegistryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRegistryClient creates a client for the registry server at baseURL
// (e.g. "http://localhost:8080"). An optional timeout overrides the default
// of 30 seconds.
func NewRegistryClient(baseURL string, timeout ...time.Duration) *RegistryClient {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &RegistryClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// Create deploys the service contract for a binding through the server.
// Server-side creation conflicts are surfaced wrapping
// interfaces.ErrCreationFailed.
func (c *RegistryClient) Create(ctx context.Context, binding interfaces.Binding) (interfaces.ContractAddress, error) {
	addr, _, err := c.Deploy(ctx, binding)
	return addr, err
}

// Deploy behaves like Create and additionally reports whether the call
// performed the first deployment.
func (c *RegistryClient) Deploy(ctx context.Context, binding interfaces.Binding) (interfaces.ContractAddress, bool, error) {
	var result api.CreateResponse
	if err := c.postBinding(ctx, "/api/registry/create", binding, &result); err != nil {
		return interfaces.ContractAddress{}, false, err
	}

	addr, err := interfaces.NewContractAddressFromHex(result.Service)
	if err != nil {
		return interfaces.ContractAddress{}, false, fmt.Errorf("could not parse service address: %w", err)
	}
	return addr, result.Created, nil
}

// Compute returns the address a binding resolves to without deploying.
func (c *RegistryClient) Compute(ctx context.Context, binding interfaces.Binding) (interfaces.ContractAddress, error) {
	var result api.ComputeResponse
	if err := c.postBinding(ctx, "/api/registry/compute", binding, &result); err != nil {
		return interfaces.ContractAddress{}, err
	}

	addr, err := interfaces.NewContractAddressFromHex(result.Service)
	if err != nil {
		return interfaces.ContractAddress{}, fmt.Errorf("could not parse service address: %w", err)
	}
	return addr, nil
}

// Supports reports whether the server implements the capability identified
// by id.
func (c *RegistryClient) Supports(ctx context.Context, id interfaces.CapabilityID) (bool, error) {
	url := fmt.Sprintf("%s/api/registry/capability/%s", c.baseURL, id)

	var result api.CapabilityResponse
	if err := c.getJSON(ctx, url, &result); err != nil {
		return false, err
	}
	return result.Supported, nil
}

// Identity returns the server's deployer address.
func (c *RegistryClient) Identity(ctx context.Context) (interfaces.ContractAddress, error) {
	descriptor, err := c.Descriptor(ctx)
	if err != nil {
		return interfaces.ContractAddress{}, err
	}

	addr, err := interfaces.NewContractAddressFromHex(descriptor.Identity)
	if err != nil {
		return interfaces.ContractAddress{}, fmt.Errorf("could not parse registry identity: %w", err)
	}
	return addr, nil
}

// Descriptor fetches the server's identity and capability identifier in one
// round trip. Discovery probes candidate endpoints through this call.
func (c *RegistryClient) Descriptor(ctx context.Context) (*api.DescriptorResponse, error) {
	url := fmt.Sprintf("%s/api/registry/descriptor", c.baseURL)

	var result api.DescriptorResponse
	if err := c.getJSON(ctx, url, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ServiceToken decodes the token reference the deployed service is bound to.
// An address holding no service artifact is surfaced wrapping
// interfaces.ErrNoCode.
func (c *RegistryClient) ServiceToken(ctx context.Context, service interfaces.ContractAddress) (interfaces.TokenReference, error) {
	url := fmt.Sprintf("%s/api/registry/service/%s/token", c.baseURL, service)

	var result api.TokenResponse
	if err := c.getJSON(ctx, url, &result); err != nil {
		return interfaces.TokenReference{}, err
	}
	return result.Token()
}

// postBinding sends a binding to a create/compute endpoint and decodes the
// response into out.
func (c *RegistryClient) postBinding(ctx context.Context, path string, binding interfaces.Binding, out interface{}) error {
	reqBody, err := json.Marshal(api.NewBindingRequest(binding))
	if err != nil {
		return fmt.Errorf("could not encode binding: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse %s response: %w", path, err)
	}
	return nil
}

// getJSON fetches a JSON document from url into out.
func (c *RegistryClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not request registry endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse registry response: %w", err)
	}
	return nil
}

// responseError converts a non-200 response into an error, mapping the
// statuses the server uses for protocol failures back to their sentinels.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	msg := string(bytes.TrimSpace(body))

	switch resp.StatusCode {
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", interfaces.ErrCreationFailed, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", interfaces.ErrNoCode, msg)
	default:
		return fmt.Errorf("registry endpoint returned error %d: %s", resp.StatusCode, msg)
	}
}

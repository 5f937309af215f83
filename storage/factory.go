package storage

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// StoreFactory creates archive backends from location URIs and manages
// multi-backend configurations for redundant archival.
type StoreFactory struct {
	log     *slog.Logger
	tlsAuth func() (tls.Certificate, error)
}

// NewStoreFactory creates a new factory instance that can create archive backends.
func NewStoreFactory(logger *slog.Logger) *StoreFactory {
	return &StoreFactory{
		log: logger,
	}
}

// WithTLSAuth returns a factory whose backends authenticate with the TLS
// client certificate produced by the getter. Required for vault:// locations.
func (sf *StoreFactory) WithTLSAuth(getter func() (tls.Certificate, error)) interfaces.ArtifactStoreFactory {
	return &StoreFactory{
		log:     sf.log,
		tlsAuth: getter,
	}
}

// StoreFor creates an archive backend from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - file:// - Local filesystem archive
//   - s3:// - Amazon S3 or compatible object storage
//   - ipfs:// - IPFS distributed storage
//   - vault:// - HashiCorp Vault KV store
//   - github:// - Read-only archive using GitHub's Git blob API
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (sf *StoreFactory) StoreFor(location interfaces.ArtifactStoreLocation) (interfaces.ArtifactStore, error) {
	// Re-parse the raw URI so credentials and query parameters are available
	u, err := url.Parse(location.Raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	// Create the appropriate backend type based on the scheme
	switch strings.ToLower(location.Scheme) {
	case "github":
		return sf.createGitHubBackend(u)
	case "ipfs":
		return sf.createIPFSBackend(u)
	case "s3":
		return sf.createS3Backend(u)
	case "vault":
		return sf.createVaultBackend(u)
	case "file":
		return sf.createFileBackend(u)
	default:
		return nil, fmt.Errorf("unsupported backend scheme: %s", location.Scheme)
	}
}

// CreateMultiStore creates a multi-backend archive from a list of location URIs.
// The multi-backend aggregates all valid backends, providing redundancy for archival.
// It will store content to all available backends and fetch from the first one that has the content.
// Returns an error if no valid backends could be created from the provided URIs.
func (sf *StoreFactory) CreateMultiStore(locations []interfaces.ArtifactStoreLocation) (interfaces.ArtifactStore, error) {
	backends := make([]interfaces.ArtifactStore, 0, len(locations))

	for _, loc := range locations {
		backend, err := sf.StoreFor(loc)
		if err != nil {
			sf.log.Warn("Failed to create archive backend",
				"err", err,
				slog.String("locationURI", loc.String()))
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid archive backends created")
	}

	return NewMultiStore(backends, sf.log), nil
}

// createGitHubBackend creates a read-only GitHub archive backend.
// URI format: github://owner/repo
// The backend uses Git's blob objects directly for content addressing.
func (sf *StoreFactory) createGitHubBackend(u *url.URL) (interfaces.ArtifactStore, error) {
	sf.log.Debug("Creating GitHub backend", slog.String("uri", u.String()))

	// The owner lands in the host part and the repo in the path
	owner := u.Host
	repo := strings.Trim(u.Path, "/")

	if owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, fmt.Errorf("invalid GitHub URI format, expected github://owner/repo")
	}

	// Create the backend
	return NewGitHubBackend(owner, repo, sf.log), nil
}

// createIPFSBackend creates an IPFS archive backend.
// URI format: ipfs://host:port/?gateway=true&timeout=30s
// The backend can connect to either an IPFS node or a gateway.
func (sf *StoreFactory) createIPFSBackend(u *url.URL) (interfaces.ArtifactStore, error) {
	sf.log.Debug("Creating IPFS backend", slog.String("uri", u.String()))

	// Parse host and port
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "5001" // Default IPFS API port
	}

	// Check if this is a gateway
	query := u.Query()
	useGateway := query.Get("gateway") == "true"

	// Parse timeout
	timeout := query.Get("timeout")
	if timeout == "" {
		timeout = "30s" // Default timeout
	}

	// Create the backend
	return NewIPFSBackend(host, port, useGateway, timeout, sf.log)
}

// createS3Backend creates an S3 or S3-compatible archive backend.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/path/?region=us-west-2&endpoint=custom.s3.com
// The backend supports both public buckets (read-only) and authenticated access.
func (sf *StoreFactory) createS3Backend(u *url.URL) (interfaces.ArtifactStore, error) {
	sf.log.Debug("Creating S3 backend", slog.String("uri", u.String()))

	// Get bucket name
	bucketName := u.Host

	// Parse path - remove leading slash
	path := strings.TrimPrefix(u.Path, "/")

	// Parse region and endpoint
	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = "us-east-1" // Default region
	}

	endpoint := query.Get("endpoint")

	// Parse credentials
	var accessKey, secretKey string
	if u.User != nil {
		// Extract credentials from URI (less secure)
		accessKey = u.User.Username()
		secretKey, _ = u.User.Password()
		sf.log.Debug("Using embedded credentials for write access")
	} else {
		sf.log.Debug("No credentials provided, S3 bucket assumed to be public, write operations may fail")
	}

	// Create the backend
	return NewS3Backend(bucketName, path, region, endpoint, accessKey, secretKey, sf.log)
}

// createVaultBackend creates a HashiCorp Vault archive backend.
// URI format: vault://host:port/mount/data-path?scheme=https
// The first path segment is the KV mount, the remainder the data path.
// Requires a TLS auth getter configured via WithTLSAuth.
func (sf *StoreFactory) createVaultBackend(u *url.URL) (interfaces.ArtifactStore, error) {
	sf.log.Debug("Creating Vault backend", slog.String("uri", u.String()))

	if sf.tlsAuth == nil {
		return nil, fmt.Errorf("vault backend requires TLS client authentication, configure the factory with WithTLSAuth")
	}

	clientCert, err := sf.tlsAuth()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain TLS client certificate: %w", err)
	}

	// Split the path into mount and data path
	parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid Vault URI format, expected vault://host:port/mount/data-path")
	}

	mountPath := parts[0]
	dataPath := parts[1]

	// Vault server scheme defaults to https
	scheme := u.Query().Get("scheme")
	if scheme == "" {
		scheme = "https"
	}

	address := fmt.Sprintf("%s://%s", scheme, u.Host)

	// Create the backend
	return NewVaultBackend(address, mountPath, dataPath, clientCert, sf.log)
}

// createFileBackend creates a file system archive backend.
// URI format: file:///absolute/path/ or file://./relative/path/
func (sf *StoreFactory) createFileBackend(u *url.URL) (interfaces.ArtifactStore, error) {
	sf.log.Debug("Creating file backend", slog.String("uri", u.String()))

	// Get the path, handling relative vs absolute paths
	path := u.Path
	if u.Host != "" {
		// Handle Windows-style paths like file://C:/path
		if strings.HasPrefix(u.Host, "C:") || strings.HasPrefix(u.Host, "D:") {
			path = u.Host + path
		} else {
			path = u.Host + "/" + strings.TrimPrefix(path, "/")
		}
	}

	// Make sure path is not empty
	if path == "" {
		return nil, fmt.Errorf("empty path in file URI: %s", u.String())
	}

	// Create the backend
	return NewFileBackend(path, sf.log)
}

package interfaces

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// ContentID is the 32-byte Keccak-256 hash of archived artifact bytes. It is
// the same hash the address deriver folds into the creation-address rule, so
// an archive entry can be checked against the address it backs.
type ContentID [32]byte

// NewContentIDFromBytes creates a content ID from a 32-byte slice.
func NewContentIDFromBytes(source []byte) (ContentID, error) {
	if len(source) != 32 {
		return ContentID{}, errors.New("invalid ContentID conversion from bytes: incorrect length")
	}

	var hash [32]byte
	copy(hash[:], source)
	return ContentID(hash), nil
}

// NewContentIDFromHex creates a content ID from a hex string.
func NewContentIDFromHex(source string) (ContentID, error) {
	// Remove 0x prefix if present
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return ContentID{}, errors.New("invalid content ID length: hex string must be 64 characters")
	}

	// Decode hex string
	hashBytes, err := hex.DecodeString(clean)
	if err != nil {
		return ContentID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	var hash [32]byte
	copy(hash[:], hashBytes)
	return ContentID(hash), nil
}

// ComputeID calculates the content ID of data.
func ComputeID(data []byte) ContentID {
	var hash [32]byte
	copy(hash[:], crypto.Keccak256(data))
	return ContentID(hash)
}

// String returns hex representation.
func (id ContentID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns raw 32-byte hash.
func (id ContentID) Bytes() []byte {
	return id[:]
}

// Equal compares two content IDs.
func (id ContentID) Equal(other ContentID) bool {
	return bytes.Equal(id[:], other[:])
}

// ArtifactStoreLocation represents a URI for an artifact archive backend.
type ArtifactStoreLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname
	Path   string     // Resource path
	Query  url.Values // Query parameters
	Auth   string     // Authentication info
}

// NewArtifactStoreLocation creates a new archive location from a URI string
// with validation.
func NewArtifactStoreLocation(uri string) (ArtifactStoreLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return ArtifactStoreLocation{}, fmt.Errorf("invalid URI format: %w", err)
	}

	// Validate scheme is supported
	scheme := parsed.Scheme
	switch scheme {
	case "file", "s3", "ipfs", "github", "vault":
		// Valid scheme
	default:
		return ArtifactStoreLocation{}, fmt.Errorf("unsupported storage scheme: %s", scheme)
	}

	// Parse authentication info if present
	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return ArtifactStoreLocation{
		Raw:    uri,
		Scheme: scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Auth:   auth,
	}, nil
}

// String returns the original URI string.
func (loc ArtifactStoreLocation) String() string {
	return loc.Raw
}

// IsFile checks if this is a file system storage location.
func (loc ArtifactStoreLocation) IsFile() bool {
	return loc.Scheme == "file"
}

// IsS3 checks if this is an S3 storage location.
func (loc ArtifactStoreLocation) IsS3() bool {
	return loc.Scheme == "s3"
}

// IsIPFS checks if this is an IPFS storage location.
func (loc ArtifactStoreLocation) IsIPFS() bool {
	return loc.Scheme == "ipfs"
}

// IsGitHub checks if this is a GitHub storage location.
func (loc ArtifactStoreLocation) IsGitHub() bool {
	return loc.Scheme == "github"
}

// IsVault checks if this is a Vault storage location.
func (loc ArtifactStoreLocation) IsVault() bool {
	return loc.Scheme == "vault"
}

// GetParam returns a query parameter value.
func (loc ArtifactStoreLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// GetParamBool returns a boolean query parameter value.
func (loc ArtifactStoreLocation) GetParamBool(name string) bool {
	value := loc.Query.Get(name)
	return value == "true" || value == "1" || value == "yes"
}

var (
	// ErrContentNotFound is returned when requested content cannot be found in the archive backend.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable is returned when an archive backend is not accessible.
	// This could be due to network issues, authentication failures, or service outages.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned when a storage location URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// ArtifactStore provides content-addressed archival of deployed artifact
// bytes. The ledger remains authoritative; archives exist for indexers and
// disaster recovery.
type ArtifactStore interface {
	// Fetch retrieves artifact bytes by content ID.
	Fetch(ctx context.Context, id ContentID) ([]byte, error)

	// Store archives artifact bytes and returns their content ID.
	Store(ctx context.Context, data []byte) (ContentID, error)

	// Available checks if the backend is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this backend.
	LocationURI() string
}

// ArtifactStoreFactory creates archive backends.
type ArtifactStoreFactory interface {
	// StoreFor creates a backend from a URI.
	// Supports file://, s3://, ipfs://, github://, vault://
	StoreFor(location ArtifactStoreLocation) (ArtifactStore, error)

	// CreateMultiStore creates an aggregated archive backend.
	CreateMultiStore(locations []ArtifactStoreLocation) (ArtifactStore, error)

	// WithTLSAuth configures TLS client authentication.
	WithTLSAuth(func() (tls.Certificate, error)) ArtifactStoreFactory
}

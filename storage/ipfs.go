package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// mfsRoot is the MFS directory holding archived artifacts. Writing through
// MFS gives every artifact a stable name derived from its content ID, so
// fetches don't need to track IPFS CIDs separately.
const mfsRoot = "/tokenbound-artifacts"

// IPFSBackend implements an artifact archive using the InterPlanetary File
// System (IPFS). It can connect to either an IPFS node or a gateway.
type IPFSBackend struct {
	shell       *shell.Shell
	host        string
	port        string
	useGateway  bool
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend creates a new IPFS archive backend connected to the specified host and port.
// When useGateway is true, it uses the IPFS HTTP gateway instead of the IPFS API.
func NewIPFSBackend(host, port string, useGateway bool, timeout string, log *slog.Logger) (*IPFSBackend, error) {
	// Construct API URL
	apiURL := fmt.Sprintf("%s:%s", host, port)

	// Format the URI for tracking
	var uri string
	if useGateway {
		uri = fmt.Sprintf("ipfs://%s/?gateway=true&timeout=%s", apiURL, timeout)
	} else {
		uri = fmt.Sprintf("ipfs://%s/?timeout=%s", apiURL, timeout)
	}

	return &IPFSBackend{
		shell:       shell.NewShell(apiURL),
		host:        host,
		port:        port,
		useGateway:  useGateway,
		log:         log,
		locationURI: uri,
	}, nil
}

// Fetch retrieves artifact bytes from IPFS by content identifier.
// Returns ErrContentNotFound if the content doesn't exist or ErrBackendUnavailable
// if the IPFS node is not accessible.
func (b *IPFSBackend) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	start := time.Now()
	path := b.getIPFSPath(id)
	contentIDStr := fmt.Sprintf("%x", id[:8])

	// Check if the IPFS node is available
	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable",
			slog.String("host", b.host),
			slog.String("port", b.port))
		return nil, interfaces.ErrBackendUnavailable
	}

	// Fetch data from the MFS path
	reader, err := b.shell.FilesRead(ctx, path)
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") || strings.Contains(err.Error(), "no link named") {
			b.log.Debug("Artifact not found in IPFS",
				slog.String("path", path),
				slog.String("content_id", contentIDStr),
				slog.Duration("duration", time.Since(start)))
			return nil, interfaces.ErrContentNotFound
		}

		b.log.Error("Failed to fetch data from IPFS",
			slog.String("path", path),
			slog.String("content_id", contentIDStr),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to fetch data from IPFS: %w", err)
	}
	defer reader.Close()

	// Read data
	data, err := io.ReadAll(reader)
	if err != nil {
		b.log.Error("Failed to read data from IPFS",
			slog.String("path", path),
			slog.String("content_id", contentIDStr),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to read data from IPFS: %w", err)
	}

	b.log.Debug("Fetched artifact from IPFS",
		slog.String("path", path),
		slog.String("content_id", contentIDStr),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Store adds artifact bytes to IPFS and returns their content identifier.
// The identifier is the Keccak-256 hash of the data. The bytes are written
// under an MFS path named after the identifier so Fetch can resolve them.
// Returns ErrBackendUnavailable if the IPFS node is not accessible.
func (b *IPFSBackend) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	// Generate content ID by hashing the data
	id := interfaces.ComputeID(data)

	// Check if the IPFS node is available
	if !b.shell.IsUp() {
		return id, interfaces.ErrBackendUnavailable
	}

	path := b.getIPFSPath(id)

	// Write data at a stable MFS path keyed by content ID
	err := b.shell.FilesWrite(ctx, path, bytes.NewReader(data),
		shell.FilesWrite.Create(true),
		shell.FilesWrite.Parents(true))
	if err != nil {
		return id, fmt.Errorf("failed to write data to IPFS: %w", err)
	}

	b.log.Debug("Stored artifact in IPFS",
		slog.String("path", path),
		slog.String("contentID", id.String()))

	return id, nil
}

// Available checks if the IPFS node is accessible.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a unique identifier for this archive backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s-%s", b.host, b.port)
}

// LocationURI returns the URI that identifies this archive backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}

// getIPFSPath generates an MFS path for a content ID.
func (b *IPFSBackend) getIPFSPath(id interfaces.ContentID) string {
	return fmt.Sprintf("%s/%s", mfsRoot, id.String())
}

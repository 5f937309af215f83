package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/tokenbound-service-registry/interfaces"
)

// MultiStore implements interfaces.ArtifactStore using multiple backends with fallback
type MultiStore struct {
	backends []interfaces.ArtifactStore
	log      *slog.Logger
}

// NewMultiStore creates a new multi-backend archive with fallback
func NewMultiStore(backends []interfaces.ArtifactStore, logger *slog.Logger) *MultiStore {
	// If no logger is provided, create a default one
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiStore{
		backends: backends,
		log:      logger,
	}
}

// Fetch retrieves artifact bytes from the first available backend that has them.
func (m *MultiStore) Fetch(ctx context.Context, id interfaces.ContentID) ([]byte, error) {
	start := time.Now()
	var errs []error
	contentIDStr := fmt.Sprintf("%x", id[:8])

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable",
				slog.String("backend_name", backend.Name()),
				slog.String("content_id", contentIDStr))
			continue
		}

		data, err := backend.Fetch(ctx, id)
		if err == nil {
			m.log.Info("Successfully fetched artifact",
				slog.String("backend_name", backend.Name()),
				slog.String("content_id", contentIDStr),
				slog.Duration("duration", time.Since(start)))
			return data, nil
		}

		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
		m.log.Debug("Failed to fetch from backend",
			slog.String("backend_name", backend.Name()),
			slog.String("content_id", contentIDStr),
			"err", err)
	}

	m.log.Error("All backends failed to fetch artifact",
		slog.String("content_id", contentIDStr),
		slog.Int("failed_backends", len(errs)),
		slog.Duration("duration", time.Since(start)))

	return nil, fmt.Errorf("all backends failed to fetch %s: %v", contentIDStr, errs)
}

// Store saves artifact bytes to all available backends
func (m *MultiStore) Store(ctx context.Context, data []byte) (interfaces.ContentID, error) {
	start := time.Now()
	var result interfaces.ContentID
	var success bool
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable", slog.String("backend_name", backend.Name()))
			continue
		}

		id, err := backend.Store(ctx, data)
		if err == nil {
			if !success {
				result = id
				success = true
				m.log.Info("Successfully stored artifact",
					slog.String("backend_name", backend.Name()),
					slog.String("content_id", id.String()),
					slog.Duration("duration", time.Since(start)))
			} else if result != id {
				// This should not happen - same data should produce same hash
				m.log.Warn("Inconsistent hashes from backends",
					slog.String("backend_name", backend.Name()),
					slog.String("expected_id", result.String()),
					slog.String("actual_id", id.String()))
			}
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			m.log.Debug("Failed to store to backend",
				slog.String("backend_name", backend.Name()),
				"err", err)
		}
	}

	if !success {
		m.log.Error("All backends failed to store artifact",
			slog.Int("failed_backends", len(errs)),
			slog.Duration("duration", time.Since(start)))
		return result, fmt.Errorf("all backends failed to store data: %v", errs)
	}

	return result, nil
}

// Available checks if any backend is available
func (m *MultiStore) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns the name of this backend
func (m *MultiStore) Name() string {
	return "multi-store"
}

// LocationURI returns the combined URI of all underlying backends
func (m *MultiStore) LocationURI() string {
	var locations []string
	for _, backend := range m.backends {
		locations = append(locations, backend.LocationURI())
	}

	return "multi:[" + strings.Join(locations, ",") + "]"
}

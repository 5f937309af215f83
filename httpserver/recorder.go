package httpserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ruteri/tokenbound-service-registry/artifact"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
	"github.com/ruteri/tokenbound-service-registry/metrics"
	"github.com/ruteri/tokenbound-service-registry/registry"
)

const (
	// creationBuffer is the number of creation records held while the
	// recorder catches up on slow sink writes.
	creationBuffer = 128

	// storeTimeout bounds a single archive write.
	storeTimeout = 30 * time.Second
)

// CreationRecorder persists first-time deployments as they happen: each
// creation record is appended to the journal and the service artifact is
// archived to content-addressed storage. Both sinks are optional and best
// effort; a failed write never blocks or fails the creation it records.
type CreationRecorder struct {
	journal *registry.Journal
	archive interfaces.ArtifactStore
	log     *slog.Logger

	records chan interfaces.CreationRecord
	sub     event.Subscription
	done    chan struct{}
}

// NewCreationRecorder creates a recorder writing to the given sinks. Either
// sink may be nil.
func NewCreationRecorder(journal *registry.Journal, archive interfaces.ArtifactStore, log *slog.Logger) *CreationRecorder {
	return &CreationRecorder{
		journal: journal,
		archive: archive,
		log:     log,
		records: make(chan interfaces.CreationRecord, creationBuffer),
		done:    make(chan struct{}),
	}
}

// Start subscribes the recorder to the registry's creation feed and persists
// records in the background until Stop is called.
func (c *CreationRecorder) Start(reg *registry.Registry) {
	c.sub = reg.SubscribeCreations(c.records)
	go c.loop()
}

// Stop unsubscribes from the creation feed, persists any buffered records
// and returns.
func (c *CreationRecorder) Stop() {
	if c.sub == nil {
		return
	}
	c.sub.Unsubscribe()
	<-c.done
}

func (c *CreationRecorder) loop() {
	defer close(c.done)
	for {
		select {
		case record := <-c.records:
			c.persist(record)
		case <-c.sub.Err():
			c.drain()
			return
		}
	}
}

// drain persists records buffered before the subscription closed.
func (c *CreationRecorder) drain() {
	for {
		select {
		case record := <-c.records:
			c.persist(record)
		default:
			return
		}
	}
}

func (c *CreationRecorder) persist(record interfaces.CreationRecord) {
	if c.journal != nil {
		if err := c.journal.Append(record); err != nil {
			c.log.Error("Failed to journal creation record", "err", err,
				slog.String("service", record.Service.String()))
		}
	}

	if c.archive != nil {
		c.archiveArtifact(record)
	}
}

func (c *CreationRecorder) archiveArtifact(record interfaces.CreationRecord) {
	// The registry built this artifact once already; rebuilding from the
	// recorded binding cannot fail for a record it emitted.
	code, err := artifact.Build(record.Binding)
	if err != nil {
		metrics.ArchiveFailuresTotal.Inc()
		c.log.Error("Failed to rebuild artifact for archiving", "err", err,
			slog.String("service", record.Service.String()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	id, err := c.archive.Store(ctx, code)
	if err != nil {
		metrics.ArchiveFailuresTotal.Inc()
		c.log.Error("Failed to archive service artifact", "err", err,
			slog.String("service", record.Service.String()))
		return
	}

	c.log.Debug("Archived service artifact",
		slog.String("service", record.Service.String()),
		slog.String("contentId", id.String()))
}

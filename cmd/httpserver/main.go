package main

import (
	"crypto/tls"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/tokenbound-service-registry/cmd/flags"
	"github.com/ruteri/tokenbound-service-registry/httpserver"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
	"github.com/ruteri/tokenbound-service-registry/ledger"
	"github.com/ruteri/tokenbound-service-registry/registry"
	"github.com/ruteri/tokenbound-service-registry/storage"
	"github.com/urfave/cli/v2"
)

var RegistryServiceLogFlag = flags.LogServiceFlagFn("registry")

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}
var JournalFlag = &cli.StringFlag{
	Name:  "journal",
	Value: "",
	Usage: "path to the append-only creation journal. Replayed on startup, disabled when empty",
}
var ArchiveFlag = &cli.StringSliceFlag{
	Name:  "archive",
	Usage: "artifact archive backend URI (file://, s3://, ipfs://, github://, vault://). Repeatable",
}
var ArchiveClientCertFlag = &cli.StringFlag{
	Name:  "archive-client-cert",
	Value: "",
	Usage: "PEM certificate for TLS client authentication against vault:// archive backends",
}
var ArchiveClientKeyFlag = &cli.StringFlag{
	Name:  "archive-client-key",
	Value: "",
	Usage: "PEM key for TLS client authentication against vault:// archive backends",
}

func main() {
	app := &cli.App{
		Name:  "registry-server",
		Usage: "Serve the tokenbound service registry API",
		Flags: append([]cli.Flag{ListenAddrFlag, JournalFlag, ArchiveFlag, ArchiveClientCertFlag, ArchiveClientKeyFlag, flags.RegistryIdentityFlag, RegistryServiceLogFlag}, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String(ListenAddrFlag.Name)
			journalPath := cCtx.String(JournalFlag.Name)

			// Setup logger
			logger := flags.SetupLogger(cCtx)

			deployer, err := interfaces.NewContractAddressFromHex(cCtx.String(flags.RegistryIdentityFlag.Name))
			if err != nil {
				logger.Error("Invalid registry identity", "err", err)
				return err
			}

			serviceLedger := ledger.NewMemoryLedger()
			if journalPath != "" {
				replayed, err := registry.ReplayJournal(cCtx.Context, journalPath, deployer, serviceLedger)
				if err != nil {
					logger.Error("Failed to replay creation journal", "err", err)
					return err
				}
				logger.Info("Creation journal replayed", "journal", journalPath, "deployments", replayed)
			}

			reg, err := registry.New(deployer, serviceLedger)
			if err != nil {
				logger.Error("Failed to create registry", "err", err)
				return err
			}

			archive, err := setupArchive(cCtx, logger)
			if err != nil {
				logger.Error("Failed to set up artifact archive", "err", err)
				return err
			}

			var journal *registry.Journal
			if journalPath != "" {
				journal, err = registry.OpenJournal(journalPath)
				if err != nil {
					logger.Error("Failed to open creation journal", "err", err)
					return err
				}
			}

			var recorder *httpserver.CreationRecorder
			if journal != nil || archive != nil {
				recorder = httpserver.NewCreationRecorder(journal, archive, logger)
				recorder.Start(reg)
			}

			server, err := httpserver.New(flags.ConfigureServer(cCtx, logger, listenAddr), httpserver.NewHandler(reg, serviceLedger, logger))
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Registry initialized", "deployer", deployer.String(), "capability", registry.Capability().String())
			server.RunInBackground()

			// Wait for termination signal
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			// Stop accepting requests first, then drain the recorder so
			// buffered creation records reach the journal and archive.
			server.Shutdown()
			if recorder != nil {
				recorder.Stop()
			}
			if journal != nil {
				journal.Close()
			}
			reg.Close()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupArchive(cCtx *cli.Context, logger *slog.Logger) (interfaces.ArtifactStore, error) {
	archiveURIs := cCtx.StringSlice(ArchiveFlag.Name)
	if len(archiveURIs) == 0 {
		return nil, nil
	}

	var factory interfaces.ArtifactStoreFactory = storage.NewStoreFactory(logger)
	if certFile := cCtx.String(ArchiveClientCertFlag.Name); certFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, cCtx.String(ArchiveClientKeyFlag.Name))
		if err != nil {
			return nil, fmt.Errorf("could not load archive client certificate: %w", err)
		}
		factory = factory.WithTLSAuth(func() (tls.Certificate, error) { return cert, nil })
	}

	locations := make([]interfaces.ArtifactStoreLocation, 0, len(archiveURIs))
	for _, uri := range archiveURIs {
		location, err := interfaces.NewArtifactStoreLocation(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid archive location %q: %w", uri, err)
		}
		locations = append(locations, location)
	}
	return factory.CreateMultiStore(locations)
}

package flags

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/tokenbound-service-registry/api"
	"github.com/ruteri/tokenbound-service-registry/common"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *api.HTTPServerConfig {
	metricsAddr := cCtx.String("metrics-addr")
	enablePprof := cCtx.Bool("pprof")
	drainDuration := time.Duration(cCtx.Int64("drain-seconds")) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var RegistryAddrFlag = &cli.StringFlag{
	Name:  "registry-addr",
	Value: "http://127.0.0.1:8080",
	Usage: "registry server address to request",
}

var RpcAddrFlag = &cli.StringFlag{
	Name:  "rpc-addr",
	Value: "http://127.0.0.1:8545",
	Usage: "address to connect to RPC",
}

var RegistryIdentityFlag = &cli.StringFlag{
	Name:     "registry-identity",
	Required: true,
	Usage:    "deployer address the registry derives service addresses under. 40-char hex string, 0x prefix optional",
}

var ImplementationFlag = &cli.StringFlag{
	Name:     "implementation",
	Required: true,
	Usage:    "implementation contract address the service delegates to. 40-char hex string",
}

var SaltFlag = &cli.StringFlag{
	Name:  "salt",
	Value: strings.Repeat("00", 32),
	Usage: "32-byte binding salt. 64-char hex string, defaults to all zeroes",
}

var OriginChainIDFlag = &cli.StringFlag{
	Name:  "origin-chain-id",
	Value: "1",
	Usage: "chain ID the bound token lives on, decimal",
}

var TokenContractFlag = &cli.StringFlag{
	Name:     "token-contract",
	Required: true,
	Usage:    "NFT contract address of the bound token. 40-char hex string",
}

var TokenIDFlag = &cli.StringFlag{
	Name:     "token-id",
	Required: true,
	Usage:    "token identifier within the contract, decimal",
}

var BindingFlags = []cli.Flag{
	ImplementationFlag,
	SaltFlag,
	OriginChainIDFlag,
	TokenContractFlag,
	TokenIDFlag,
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}

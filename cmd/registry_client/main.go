package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ruteri/tokenbound-service-registry/api"
	"github.com/ruteri/tokenbound-service-registry/api/clients"
	"github.com/ruteri/tokenbound-service-registry/artifact"
	"github.com/ruteri/tokenbound-service-registry/cmd/flags"
	"github.com/ruteri/tokenbound-service-registry/discovery"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
	"github.com/ruteri/tokenbound-service-registry/ledger"
	"github.com/ruteri/tokenbound-service-registry/registry"
	"github.com/urfave/cli/v2"
)

var flagServiceAddr *cli.StringFlag = &cli.StringFlag{
	Name:     "service",
	Required: true,
	Usage:    "service address to look up. 40-char hex string",
}
var flagCapabilityID *cli.StringFlag = &cli.StringFlag{
	Name:  "capability-id",
	Usage: "capability identifier to probe for. 8-char hex string, defaults to the service creation capability",
}
var flagDomain *cli.StringFlag = &cli.StringFlag{
	Name:     "domain",
	Required: true,
	Usage:    "domain to resolve registry SRV records under",
}
var flagDNSServer *cli.StringFlag = &cli.StringFlag{
	Name:  "dns-server",
	Usage: "DNS server to query, host:port. Defaults to the local resolver",
}

func main() {
	app := &cli.App{
		Name:  "registry-client",
		Usage: "Interact with a tokenbound service registry",
		Flags: []cli.Flag{
			flags.RegistryAddrFlag,
			flags.LogJsonFlag,
			flags.LogDebugFlag,
			flags.LogUidFlag,
			flags.LogServiceFlagFn("registry-client"),
		},
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Deploy the service bound to a token, or return it if already deployed",
				Flags: flags.BindingFlags,
				Action: func(cCtx *cli.Context) error {
					return NewClientConfig(cCtx).Create(cCtx)
				},
			},
			{
				Name:  "compute",
				Usage: "Compute the service address for a binding without deploying",
				Flags: flags.BindingFlags,
				Action: func(cCtx *cli.Context) error {
					return NewClientConfig(cCtx).Compute(cCtx)
				},
			},
			{
				Name:  "token",
				Usage: "Look up the token a deployed service is bound to",
				Flags: []cli.Flag{flagServiceAddr},
				Action: func(cCtx *cli.Context) error {
					return NewClientConfig(cCtx).Token(cCtx)
				},
			},
			{
				Name:  "capability",
				Usage: "Probe the registry for a capability",
				Flags: []cli.Flag{flagCapabilityID},
				Action: func(cCtx *cli.Context) error {
					return NewClientConfig(cCtx).Capability(cCtx)
				},
			},
			{
				Name:  "descriptor",
				Usage: "Fetch the registry descriptor",
				Action: func(cCtx *cli.Context) error {
					return NewClientConfig(cCtx).Descriptor(cCtx)
				},
			},
			{
				Name:  "discover",
				Usage: "Discover compliant registries through DNS SRV records",
				Flags: []cli.Flag{flagDomain, flagDNSServer},
				Action: func(cCtx *cli.Context) error {
					return NewClientConfig(cCtx).Discover(cCtx)
				},
			},
			{
				Name:  "verify",
				Usage: "Verify on-chain code at the derived address against a binding",
				Flags: append([]cli.Flag{flags.RegistryIdentityFlag, flags.RpcAddrFlag}, flags.BindingFlags...),
				Action: func(cCtx *cli.Context) error {
					return NewClientConfig(cCtx).Verify(cCtx)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type Client struct {
	Registry *clients.RegistryClient
	Log      *slog.Logger
}

func NewClientConfig(cCtx *cli.Context) *Client {
	return &Client{
		Registry: clients.NewRegistryClient(cCtx.String(flags.RegistryAddrFlag.Name)),
		Log:      flags.SetupLogger(cCtx),
	}
}

func (c *Client) Create(cCtx *cli.Context) error {
	binding, err := bindingFromFlags(cCtx)
	if err != nil {
		return err
	}

	service, created, err := c.Registry.Deploy(cCtx.Context, binding)
	if err != nil {
		return fmt.Errorf("creation failed: %w", err)
	}
	printJSON(api.CreateResponse{Service: service.String(), Created: created})
	return nil
}

func (c *Client) Compute(cCtx *cli.Context) error {
	binding, err := bindingFromFlags(cCtx)
	if err != nil {
		return err
	}

	service, err := c.Registry.Compute(cCtx.Context, binding)
	if err != nil {
		return fmt.Errorf("address computation failed: %w", err)
	}
	printJSON(api.ComputeResponse{Service: service.String()})
	return nil
}

func (c *Client) Token(cCtx *cli.Context) error {
	service, err := interfaces.NewContractAddressFromHex(cCtx.String(flagServiceAddr.Name))
	if err != nil {
		return fmt.Errorf("could not parse service address: %w", err)
	}

	token, err := c.Registry.ServiceToken(cCtx.Context, service)
	if err != nil {
		return fmt.Errorf("token lookup failed: %w", err)
	}
	printJSON(api.NewTokenResponse(token))
	return nil
}

func (c *Client) Capability(cCtx *cli.Context) error {
	id := registry.Capability()
	if raw := cCtx.String(flagCapabilityID.Name); raw != "" {
		var err error
		id, err = interfaces.NewCapabilityIDFromHex(raw)
		if err != nil {
			return fmt.Errorf("could not parse capability identifier: %w", err)
		}
	}

	supported, err := c.Registry.Supports(cCtx.Context, id)
	if err != nil {
		return fmt.Errorf("capability probe failed: %w", err)
	}
	printJSON(api.CapabilityResponse{CapabilityID: id.String(), Supported: supported})
	return nil
}

func (c *Client) Descriptor(cCtx *cli.Context) error {
	descriptor, err := c.Registry.Descriptor(cCtx.Context)
	if err != nil {
		return fmt.Errorf("descriptor request failed: %w", err)
	}
	printJSON(descriptor)
	return nil
}

type discoveredEndpoint struct {
	BaseURL  string `json:"base_url"`
	Identity string `json:"identity"`
}

func (c *Client) Discover(cCtx *cli.Context) error {
	resolver := discovery.NewResolver(cCtx.String(flagDNSServer.Name), 0, c.Log)
	endpoints, err := resolver.ResolveRegistries(cCtx.Context, cCtx.String(flagDomain.Name), registry.Capability())
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	discovered := make([]discoveredEndpoint, 0, len(endpoints))
	for _, endpoint := range endpoints {
		discovered = append(discovered, discoveredEndpoint{
			BaseURL:  endpoint.BaseURL,
			Identity: endpoint.Identity.String(),
		})
	}
	printJSON(discovered)
	return nil
}

func (c *Client) Verify(cCtx *cli.Context) error {
	binding, err := bindingFromFlags(cCtx)
	if err != nil {
		return err
	}
	deployer, err := interfaces.NewContractAddressFromHex(cCtx.String(flags.RegistryIdentityFlag.Name))
	if err != nil {
		return fmt.Errorf("could not parse registry identity: %w", err)
	}

	expected, err := registry.ComputeAddress(deployer, binding)
	if err != nil {
		return fmt.Errorf("address derivation failed: %w", err)
	}

	chainLedger, err := ledger.DialRPCLedger(cCtx.Context, cCtx.String(flags.RpcAddrFlag.Name))
	if err != nil {
		return err
	}

	code, err := chainLedger.CodeAt(cCtx.Context, expected)
	if err != nil {
		return fmt.Errorf("could not fetch on-chain code: %w", err)
	}
	if len(code) == 0 {
		return fmt.Errorf("no code deployed at %s", expected)
	}

	want, err := artifact.Build(binding)
	if err != nil {
		return err
	}
	if !bytes.Equal(code, want) {
		return fmt.Errorf("code at %s does not encode the requested binding", expected)
	}

	fmt.Println("artifact verification successful")
	printJSON(api.ComputeResponse{Service: expected.String()})
	return nil
}

func bindingFromFlags(cCtx *cli.Context) (interfaces.Binding, error) {
	request := api.BindingRequest{
		Implementation: cCtx.String(flags.ImplementationFlag.Name),
		Salt:           cCtx.String(flags.SaltFlag.Name),
		OriginChainID:  cCtx.String(flags.OriginChainIDFlag.Name),
		TokenContract:  cCtx.String(flags.TokenContractFlag.Name),
		TokenID:        cCtx.String(flags.TokenIDFlag.Name),
	}
	return request.Binding()
}

func printJSON(v any) {
	encoded, _ := json.Marshal(v)
	fmt.Println(string(encoded))
}

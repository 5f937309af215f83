package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ruteri/tokenbound-service-registry/api"
	"github.com/ruteri/tokenbound-service-registry/interfaces"
	"github.com/ruteri/tokenbound-service-registry/metrics"
	"github.com/ruteri/tokenbound-service-registry/registry"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// Handler processes HTTP requests for the service registry. Creation and
// derivation are delegated to the in-process registry; token lookups decode
// the service artifact straight from the ledger.
type Handler struct {
	registry *registry.Registry
	ledger   interfaces.Ledger
	log      *slog.Logger
}

// NewHandler creates a new HTTP request handler.
//
// Parameters:
//   - reg: Registry performing deployments and address derivation
//   - ledger: Ledger backing service token lookups
//   - log: Structured logger for operational insights
//
// Returns a configured Handler instance.
func NewHandler(reg *registry.Registry, ledger interfaces.Ledger, log *slog.Logger) *Handler {
	return &Handler{
		registry: reg,
		ledger:   ledger,
		log:      log,
	}
}

// HandleCreate deploys the service contract for the binding carried in the
// request body, or returns the existing address if the binding was already
// deployed.
//
// URL format: POST /api/registry/create
//
// Request body: JSON binding with implementation, salt, origin_chain_id,
// token_contract and token_id fields. Addresses and salts are hex encoded,
// chain and token identifiers are decimal strings.
//
// Response: JSON containing:
//   - service: the derived service address
//   - created: whether this call performed the first deployment
//
// An occupied target address with foreign code returns 409 Conflict.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	binding, ok := h.decodeBinding(w, r)
	if !ok {
		return
	}

	start := time.Now()
	addr, created, err := h.registry.Deploy(r.Context(), binding)
	metrics.CreateDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FailedCreationsTotal.Inc()
		h.log.Error("Service creation failed", "err", err,
			slog.String("implementation", binding.Implementation.String()),
			slog.String("tokenContract", binding.TokenContract.String()))

		if errors.Is(err, interfaces.ErrCreationFailed) {
			http.Error(w, err.Error(), http.StatusConflict)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	if created {
		metrics.CreationsTotal.Inc()
		h.log.Info("Service deployed",
			slog.String("service", addr.String()),
			slog.Duration("duration", time.Since(start)))
	} else {
		metrics.IdempotentCreationsTotal.Inc()
		h.log.Debug("Create replayed for existing service", slog.String("service", addr.String()))
	}

	h.writeJSON(w, api.CreateResponse{Service: addr.String(), Created: created})
}

// HandleCompute derives the address for the binding carried in the request
// body without touching ledger state. The result always matches what
// HandleCreate would return for the same binding.
//
// URL format: POST /api/registry/compute
//
// Response: JSON containing:
//   - service: the derived service address
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	binding, ok := h.decodeBinding(w, r)
	if !ok {
		return
	}

	addr, err := h.registry.Compute(r.Context(), binding)
	if err != nil {
		h.log.Error("Address derivation failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, api.ComputeResponse{Service: addr.String()})
}

// HandleCapability reports whether the registry implements the capability
// identified in the URL path.
//
// URL format: GET /api/registry/capability/{capability_id}
//
// Response: JSON containing:
//   - capability_id: the queried identifier, hex encoded
//   - supported: whether the registry implements it
func (h *Handler) HandleCapability(w http.ResponseWriter, r *http.Request) {
	idHex := r.PathValue("capability_id")
	id, err := interfaces.NewCapabilityIDFromHex(idHex)
	if err != nil {
		h.log.Debug("Invalid capability identifier", "err", err, slog.String("capabilityId", idHex))
		http.Error(w, "Invalid capability identifier format", http.StatusBadRequest)
		return
	}

	supported, err := h.registry.Supports(r.Context(), id)
	if err != nil {
		h.log.Error("Capability query failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, api.CapabilityResponse{CapabilityID: id.String(), Supported: supported})
}

// HandleServiceToken returns the token reference a deployed service is bound
// to, decoded from the service's own artifact bytes.
//
// URL format: GET /api/registry/service/{service_address}/token
//
// Response: JSON containing:
//   - origin_chain_id: chain the token lives on, decimal
//   - token_contract: token contract address, hex encoded
//   - token_id: token identifier, decimal
//
// An address holding no code returns 404 Not Found.
func (h *Handler) HandleServiceToken(w http.ResponseWriter, r *http.Request) {
	addrHex := r.PathValue("service_address")
	addr, err := interfaces.NewContractAddressFromHex(addrHex)
	if err != nil {
		h.log.Debug("Invalid service address", "err", err, slog.String("address", addrHex))
		http.Error(w, "Invalid service address format", http.StatusBadRequest)
		return
	}

	svc, err := registry.NewService(addr, h.ledger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	token, err := svc.Token(r.Context())
	if err != nil {
		if errors.Is(err, interfaces.ErrNoCode) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error("Token lookup failed", "err", err, slog.String("service", addr.String()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, api.NewTokenResponse(token))
}

// HandleDescriptor returns the registry's public descriptor: its deployer
// identity and the capability identifier of the create/compute pair.
//
// URL format: GET /api/registry/descriptor
//
// Response: JSON containing:
//   - identity: deployer address mixed into every derived service address
//   - capability_id: capability identifier, hex encoded
func (h *Handler) HandleDescriptor(w http.ResponseWriter, r *http.Request) {
	identity, err := h.registry.Identity(r.Context())
	if err != nil {
		h.log.Error("Identity lookup failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, api.DescriptorResponse{
		Identity:     identity.String(),
		CapabilityID: registry.Capability().String(),
	})
}

// decodeBinding reads and validates the binding carried in the request body.
// When it returns false the error response has already been written.
func (h *Handler) decodeBinding(w http.ResponseWriter, r *http.Request) (interfaces.Binding, bool) {
	var req api.BindingRequest
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.log.Debug("Failed to parse binding request", "err", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return interfaces.Binding{}, false
	}

	binding, err := req.Binding()
	if err != nil {
		h.log.Debug("Invalid binding", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return interfaces.Binding{}, false
	}

	return binding, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

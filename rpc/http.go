package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"pointchain/ledger"
	"pointchain/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
	ratePerSecond   = 20
	rateBurst       = 40
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeRateLimited    = -32020
)

// Server exposes the ledger engine over JSON-RPC. Mutating methods require a
// bearer token when one is configured; every method is rate limited per
// source address.
type Server struct {
	engine  *ledger.Engine
	metrics *observability.LedgerMetricsRegistry
	logger  *slog.Logger

	authToken string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewServer creates a server for the given engine. An empty authToken
// disables authentication (useful for local development).
func NewServer(engine *ledger.Engine, authToken string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:    engine,
		metrics:   observability.LedgerMetrics(),
		logger:    logger,
		authToken: strings.TrimSpace(authToken),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Start listens on addr and serves JSON-RPC until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", slog.String("addr", addr))
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

// Handler returns the RPC handler for mounting on an existing mux.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: &RPCError{Code: code, Message: message}}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) limiter(source string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	limiter, ok := s.limiters[source]
	if !ok {
		limiter = rate.NewLimiter(ratePerSecond, rateBurst)
		s.limiters[source] = limiter
	}
	return limiter
}

func sourceAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) == 1
}

func mutatingMethod(method string) bool {
	switch method {
	case "ledger_initializePlatform", "ledger_setPlatformActive", "ledger_creditNative",
		"ledger_registerMerchant", "ledger_revokeMerchant", "ledger_mintPoints",
		"ledger_depositNative", "ledger_purchaseWithPoints", "ledger_purchaseWithNative",
		"ledger_redeemPoints":
		return true
	}
	return false
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, nil, codeInvalidRequest, "POST required")
		return
	}
	if !s.limiter(sourceAddr(r)).Allow() {
		writeError(w, http.StatusTooManyRequests, nil, codeRateLimited, "rate limit exceeded")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request body")
		return
	}
	if len(body) > maxRequestBytes {
		writeError(w, http.StatusRequestEntityTooLarge, nil, codeInvalidRequest, "request body too large")
		return
	}

	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON request")
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required")
		return
	}
	if mutatingMethod(req.Method) && !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "missing or invalid bearer token")
		return
	}

	start := time.Now()
	result, err := s.dispatch(&req)
	if knownMethod(req.Method) {
		s.metrics.ObserveOperation(req.Method, errorLabel(err), time.Since(start))
	}
	if err != nil {
		s.writeDispatchError(w, &req, err)
		return
	}
	writeResult(w, req.ID, result)
}

// errInvalidParams wraps parameter decoding failures so dispatch errors can be
// mapped onto the right JSON-RPC code.
type errInvalidParams struct {
	err error
}

func (e errInvalidParams) Error() string { return e.err.Error() }

var errMethodNotFound = errors.New("method not found")

func (s *Server) writeDispatchError(w http.ResponseWriter, req *RPCRequest, err error) {
	var invalid errInvalidParams
	switch {
	case errors.Is(err, errMethodNotFound):
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method))
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, invalid.Error())
	case errors.Is(err, ledger.ErrUnauthorizedAdmin) || errors.Is(err, ledger.ErrMerchantNotAuthorized):
		writeError(w, http.StatusForbidden, req.ID, codeUnauthorized, err.Error())
	default:
		writeError(w, http.StatusOK, req.ID, codeServerError, err.Error())
	}
}

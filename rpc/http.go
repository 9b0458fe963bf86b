package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"likechain/core"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
	authTokenEnv    = "LIKECHAIN_RPC_TOKEN"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

var (
	requestCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "likechain_rpc_requests_total",
		Help: "JSON-RPC requests by method.",
	}, []string{"method"})
	errorCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "likechain_rpc_errors_total",
		Help: "JSON-RPC error responses by method.",
	}, []string{"method"})
)

// Server exposes the ledger over a single JSON-RPC 2.0 endpoint. Mutating
// methods require the bearer token from LIKECHAIN_RPC_TOKEN when one is
// configured; caller identity always travels in the params and admin-gated
// operations are additionally checked against the configured admin address
// inside the engines.
type Server struct {
	node      *core.Node
	authToken string
}

// NewServer wires a server around the node.
func NewServer(node *core.Node) *Server {
	token := strings.TrimSpace(os.Getenv(authTokenEnv))
	return &Server{node: node, authToken: token}
}

// Router builds the HTTP surface: JSON-RPC at /, health and metrics alongside.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

// Start serves the router on addr, blocking until the listener fails.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.Router())
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

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
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
	supplied := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(s.authToken)) == 1
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, req *RPCRequest)

type methodSpec struct {
	handler  handlerFunc
	mutating bool
}

func (s *Server) methods() map[string]methodSpec {
	return map[string]methodSpec{
		"token_transfer":        {handler: s.handleTokenTransfer, mutating: true},
		"token_approve":         {handler: s.handleTokenApprove, mutating: true},
		"token_transferFrom":    {handler: s.handleTokenTransferFrom, mutating: true},
		"token_setTaxEnabled":   {handler: s.handleTokenSetTaxEnabled, mutating: true},
		"token_setTaxRate":      {handler: s.handleTokenSetTaxRate, mutating: true},
		"token_addTaxExempt":    {handler: s.handleTokenAddTaxExempt, mutating: true},
		"token_removeTaxExempt": {handler: s.handleTokenRemoveTaxExempt, mutating: true},
		"token_balanceOf":       {handler: s.handleTokenBalanceOf},
		"token_totalSupply":     {handler: s.handleTokenTotalSupply},
		"token_allowance":       {handler: s.handleTokenAllowance},
		"token_isTaxExempt":     {handler: s.handleTokenIsTaxExempt},
		"token_taxPolicy":       {handler: s.handleTokenTaxPolicy},

		"content_create":              {handler: s.handleContentCreate, mutating: true},
		"content_like":                {handler: s.handleContentLike, mutating: true},
		"content_likeFrom":            {handler: s.handleContentLikeFrom, mutating: true},
		"content_dislike":             {handler: s.handleContentDislike, mutating: true},
		"content_withdraw":            {handler: s.handleContentWithdraw, mutating: true},
		"content_withdrawAll":         {handler: s.handleContentWithdrawAll, mutating: true},
		"content_likeWithAllEarning":  {handler: s.handleContentLikeWithAllEarning, mutating: true},
		"content_increaseAllowance":   {handler: s.handleContentIncreaseAllowance, mutating: true},
		"content_decreaseAllowance":   {handler: s.handleContentDecreaseAllowance, mutating: true},
		"content_withdrawFrom":        {handler: s.handleContentWithdrawFrom, mutating: true},
		"content_get":                 {handler: s.handleContentGet},
		"content_getByIndex":          {handler: s.handleContentGetByIndex},
		"content_getRange":            {handler: s.handleContentGetRange},
		"content_getCount":            {handler: s.handleContentGetCount},
		"content_getReaction":         {handler: s.handleContentGetReaction},
		"content_getReactions":        {handler: s.handleContentGetReactions},
		"content_getReactorLikeTotal": {handler: s.handleContentGetReactorLikeTotal},
		"content_getAllowance":        {handler: s.handleContentGetAllowance},

		"ledger_events": {handler: s.handleLedgerEvents},
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req RPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to parse request", err.Error())
		return
	}
	if req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, fmt.Sprintf("jsonrpc must be %q", jsonRPCVersion), nil)
		return
	}
	spec, ok := s.methods()[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("method %q not found", req.Method), nil)
		return
	}
	requestCounter.WithLabelValues(req.Method).Inc()
	if spec.mutating && !s.authorized(r) {
		errorCounter.WithLabelValues(req.Method).Inc()
		writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "missing or invalid bearer token", nil)
		return
	}
	spec.handler(w, r, &req)
}

// decodeParams unmarshals the single parameter object every method expects.
func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

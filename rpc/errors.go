package rpc

import (
	"errors"
	"net/http"

	"likechain/native/content"
	"likechain/native/token"
)

// Ledger failure codes, one per entry in the engines' error taxonomy.
const (
	codeInsufficientBalance      = -32100
	codeAllowanceExceeded        = -32101
	codeContentAllowanceExceeded = -32102
	codeAllowanceUnderflow       = -32103
	codeDuplicateContent         = -32104
	codeContentNotFound          = -32105
	codeInsufficientEarnings     = -32106
	codeInvalidAmount            = -32107
	codeForbidden                = -32108
	codeReactionNotFound         = -32109
	codeInvalidRange             = -32110
)

var engineErrorCodes = []struct {
	err    error
	status int
	code   int
}{
	{token.ErrInsufficientBalance, http.StatusBadRequest, codeInsufficientBalance},
	{token.ErrAllowanceExceeded, http.StatusBadRequest, codeAllowanceExceeded},
	{token.ErrInvalidAmount, http.StatusBadRequest, codeInvalidAmount},
	{token.ErrUnauthorized, http.StatusForbidden, codeForbidden},
	{content.ErrInvalidAmount, http.StatusBadRequest, codeInvalidAmount},
	{content.ErrDuplicateContent, http.StatusConflict, codeDuplicateContent},
	{content.ErrContentNotFound, http.StatusNotFound, codeContentNotFound},
	{content.ErrInsufficientEarnings, http.StatusBadRequest, codeInsufficientEarnings},
	{content.ErrContentAllowanceExceeded, http.StatusBadRequest, codeContentAllowanceExceeded},
	{content.ErrAllowanceUnderflow, http.StatusBadRequest, codeAllowanceUnderflow},
	{content.ErrReactionNotFound, http.StatusNotFound, codeReactionNotFound},
	{content.ErrInvalidRange, http.StatusBadRequest, codeInvalidRange},
}

// writeEngineError translates a ledger failure into the matching JSON-RPC
// error, falling back to a generic server error for state backend failures.
func (s *Server) writeEngineError(w http.ResponseWriter, req *RPCRequest, err error) {
	errorCounter.WithLabelValues(req.Method).Inc()
	for _, entry := range engineErrorCodes {
		if errors.Is(err, entry.err) {
			writeError(w, entry.status, req.ID, entry.code, err.Error(), nil)
			return
		}
	}
	writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
}

func (s *Server) writeParamError(w http.ResponseWriter, req *RPCRequest, err error) {
	errorCounter.WithLabelValues(req.Method).Inc()
	writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
}

package rpc

import (
	"fmt"
	"math/big"
	"net/http"

	"likechain/crypto"
)

func parseAddress(field, value string) ([20]byte, error) {
	addr, err := crypto.DecodeAddress(value)
	if err != nil {
		return [20]byte{}, fmt.Errorf("invalid %s address: %w", field, err)
	}
	return addr.Bytes(), nil
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return amount, nil
}

func formatAddress(addr [20]byte) string {
	return crypto.NewAddress(addr).String()
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

type tokenTransferParams struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (s *Server) handleTokenTransfer(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenTransferParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	from, err := parseAddress("from", params.From)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	to, err := parseAddress("to", params.To)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.node.Transfer(from, to, amount); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

type tokenApproveParams struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

func (s *Server) handleTokenApprove(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenApproveParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	owner, err := parseAddress("owner", params.Owner)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	spender, err := parseAddress("spender", params.Spender)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.node.Approve(owner, spender, amount); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

type tokenTransferFromParams struct {
	Spender string `json:"spender"`
	Owner   string `json:"owner"`
	To      string `json:"to"`
	Amount  string `json:"amount"`
}

func (s *Server) handleTokenTransferFrom(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenTransferFromParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	spender, err := parseAddress("spender", params.Spender)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	owner, err := parseAddress("owner", params.Owner)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	to, err := parseAddress("to", params.To)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.node.TransferFrom(spender, owner, to, amount); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

type taxToggleParams struct {
	Caller  string `json:"caller"`
	Enabled bool   `json:"enabled"`
}

func (s *Server) handleTokenSetTaxEnabled(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params taxToggleParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.node.SetTaxEnabled(caller, params.Enabled); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

type taxRateParams struct {
	Caller  string `json:"caller"`
	RateBps uint32 `json:"rateBps"`
}

func (s *Server) handleTokenSetTaxRate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params taxRateParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.node.SetTaxRate(caller, params.RateBps); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

type taxExemptParams struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

func (s *Server) handleTokenAddTaxExempt(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.handleTaxExempt(w, req, s.node.AddTaxExempt)
}

func (s *Server) handleTokenRemoveTaxExempt(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.handleTaxExempt(w, req, s.node.RemoveTaxExempt)
}

func (s *Server) handleTaxExempt(w http.ResponseWriter, req *RPCRequest, apply func([20]byte, [20]byte) error) {
	var params taxExemptParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := apply(caller, addr); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"ok": true})
}

type addressParams struct {
	Address string `json:"address"`
}

func (s *Server) handleTokenBalanceOf(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	balance, err := s.node.BalanceOf(addr)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"balance": bigString(balance)})
}

func (s *Server) handleTokenTotalSupply(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	supply, err := s.node.TotalSupply()
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"totalSupply": bigString(supply)})
}

type allowanceParams struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

func (s *Server) handleTokenAllowance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params allowanceParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	owner, err := parseAddress("owner", params.Owner)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	spender, err := parseAddress("spender", params.Spender)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	allowance, err := s.node.Allowance(owner, spender)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"allowance": bigString(allowance)})
}

func (s *Server) handleTokenIsTaxExempt(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	exempt, err := s.node.IsTaxExempt(addr)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"exempt": exempt})
}

type taxPolicyResult struct {
	Enabled bool     `json:"enabled"`
	RateBps uint32   `json:"rateBps"`
	Exempt  []string `json:"exempt"`
}

func (s *Server) handleTokenTaxPolicy(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	policy, err := s.node.TaxPolicy()
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	result := taxPolicyResult{Enabled: policy.Enabled, RateBps: policy.RateBps, Exempt: []string{}}
	for _, addr := range policy.Exempt {
		result.Exempt = append(result.Exempt, formatAddress(addr))
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleLedgerEvents(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	writeResult(w, req.ID, s.node.Events())
}

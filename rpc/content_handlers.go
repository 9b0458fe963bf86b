package rpc

import (
	"math/big"
	"net/http"

	"likechain/native/content"
)

type contentResult struct {
	Creator   string `json:"creator"`
	ID        string `json:"id"`
	Likes     string `json:"likes"`
	Dislikes  string `json:"dislikes"`
	Burned    string `json:"burned"`
	Withdrawn string `json:"withdrawn"`
	Available string `json:"available"`
	Reactions uint64 `json:"reactions"`
	CreatedAt int64  `json:"createdAt"`
}

func formatContent(record *content.Content) contentResult {
	return contentResult{
		Creator:   formatAddress(record.Creator),
		ID:        record.ID,
		Likes:     bigString(record.Likes),
		Dislikes:  bigString(record.Dislikes),
		Burned:    bigString(record.Burned),
		Withdrawn: bigString(record.Withdrawn),
		Available: bigString(record.AvailableEarnings()),
		Reactions: record.Reactions,
		CreatedAt: record.CreatedAt,
	}
}

type reactionResult struct {
	Seq     uint64 `json:"seq"`
	Reactor string `json:"reactor"`
	Kind    string `json:"kind"`
	Amount  string `json:"amount"`
}

func formatReaction(reaction *content.Reaction) reactionResult {
	return reactionResult{
		Seq:     reaction.Seq,
		Reactor: formatAddress(reaction.Reactor),
		Kind:    reaction.Kind.String(),
		Amount:  bigString(reaction.Amount),
	}
}

type contentCreateParams struct {
	Creator   string `json:"creator"`
	ContentID string `json:"contentId"`
}

func (s *Server) handleContentCreate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentCreateParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	record, err := s.node.CreateContent(creator, params.ContentID)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, formatContent(record))
}

type contentReactParams struct {
	Creator   string `json:"creator"`
	ContentID string `json:"contentId"`
	Reactor   string `json:"reactor"`
	Amount    string `json:"amount"`
}

func (s *Server) handleContentLike(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentReactParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	reactor, err := parseAddress("reactor", params.Reactor)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	record, err := s.node.LikeContent(creator, params.ContentID, reactor, amount)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, formatContent(record))
}

func (s *Server) handleContentDislike(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentReactParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	disliker, err := parseAddress("reactor", params.Reactor)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	record, err := s.node.DislikeContent(creator, params.ContentID, disliker, amount)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, formatContent(record))
}

type contentLikeFromParams struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Creator   string `json:"creator"`
	ContentID string `json:"contentId"`
	Amount    string `json:"amount"`
}

func (s *Server) handleContentLikeFrom(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentLikeFromParams
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
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	record, err := s.node.LikeContentFrom(owner, spender, creator, params.ContentID, amount)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, formatContent(record))
}

type contentWithdrawParams struct {
	Creator   string `json:"creator"`
	ContentID string `json:"contentId"`
	To        string `json:"to"`
	Amount    string `json:"amount,omitempty"`
}

func (s *Server) handleContentWithdraw(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentWithdrawParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
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
	record, err := s.node.WithdrawContentEarning(creator, params.ContentID, to, amount)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, formatContent(record))
}

type contentWithdrawAllResult struct {
	Content   contentResult `json:"content"`
	Withdrawn string        `json:"withdrawn"`
}

func (s *Server) handleContentWithdrawAll(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentWithdrawParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	to, err := parseAddress("to", params.To)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	record, paid, err := s.node.WithdrawAllContentEarning(creator, params.ContentID, to)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, contentWithdrawAllResult{Content: formatContent(record), Withdrawn: bigString(paid)})
}

type contentRelikeParams struct {
	Caller          string `json:"caller"`
	TargetCreator   string `json:"targetCreator"`
	TargetContentID string `json:"targetContentId"`
	SourceContentID string `json:"sourceContentId"`
}

func (s *Server) handleContentLikeWithAllEarning(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentRelikeParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	targetCreator, err := parseAddress("targetCreator", params.TargetCreator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	record, err := s.node.LikeContentWithAllContentEarning(caller, targetCreator, params.TargetContentID, params.SourceContentID)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, formatContent(record))
}

type contentAllowanceChangeParams struct {
	Creator   string `json:"creator"`
	Spender   string `json:"spender"`
	ContentID string `json:"contentId"`
	Amount    string `json:"amount"`
}

func (s *Server) handleContentIncreaseAllowance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.handleContentAllowanceChange(w, req, s.node.IncreaseContentAllowance)
}

func (s *Server) handleContentDecreaseAllowance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	s.handleContentAllowanceChange(w, req, s.node.DecreaseContentAllowance)
}

func (s *Server) handleContentAllowanceChange(w http.ResponseWriter, req *RPCRequest, apply func([20]byte, [20]byte, string, *big.Int) (*big.Int, error)) {
	var params contentAllowanceChangeParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
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
	updated, err := apply(creator, spender, params.ContentID, amount)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"allowance": bigString(updated)})
}

type contentWithdrawFromParams struct {
	Creator   string `json:"creator"`
	Spender   string `json:"spender"`
	ContentID string `json:"contentId"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
}

func (s *Server) handleContentWithdrawFrom(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentWithdrawFromParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	spender, err := parseAddress("spender", params.Spender)
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
	record, err := s.node.WithdrawContentFrom(creator, spender, params.ContentID, to, amount)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, formatContent(record))
}

type contentGetParams struct {
	Creator   string `json:"creator"`
	ContentID string `json:"contentId"`
}

func (s *Server) handleContentGet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentGetParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	record, err := s.node.GetContent(creator, params.ContentID)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, formatContent(record))
}

type contentByIndexParams struct {
	Creator string `json:"creator"`
	Index   uint64 `json:"index"`
}

func (s *Server) handleContentGetByIndex(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentByIndexParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	record, err := s.node.GetContentByIndex(creator, params.Index)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, formatContent(record))
}

type contentRangeParams struct {
	Creator string `json:"creator"`
	Start   uint64 `json:"start"`
	End     uint64 `json:"end"`
}

func (s *Server) handleContentGetRange(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentRangeParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	records, err := s.node.GetContentsByRange(creator, params.Start, params.End)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	results := make([]contentResult, 0, len(records))
	for _, record := range records {
		results = append(results, formatContent(record))
	}
	writeResult(w, req.ID, results)
}

type creatorParams struct {
	Creator string `json:"creator"`
}

func (s *Server) handleContentGetCount(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params creatorParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	count, err := s.node.GetContentCount(creator)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"count": count})
}

type reactionParams struct {
	Creator   string `json:"creator"`
	ContentID string `json:"contentId"`
	Seq       uint64 `json:"seq"`
}

func (s *Server) handleContentGetReaction(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params reactionParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	reaction, err := s.node.GetReaction(creator, params.ContentID, params.Seq)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, formatReaction(reaction))
}

type reactionRangeParams struct {
	Creator   string `json:"creator"`
	ContentID string `json:"contentId"`
	From      uint64 `json:"from"`
	To        uint64 `json:"to"`
}

func (s *Server) handleContentGetReactions(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params reactionRangeParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	reactions, err := s.node.GetReactionsByRange(creator, params.ContentID, params.From, params.To)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	results := make([]reactionResult, 0, len(reactions))
	for _, reaction := range reactions {
		results = append(results, formatReaction(reaction))
	}
	writeResult(w, req.ID, results)
}

type reactorTotalParams struct {
	Creator   string `json:"creator"`
	ContentID string `json:"contentId"`
	Reactor   string `json:"reactor"`
}

func (s *Server) handleContentGetReactorLikeTotal(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params reactorTotalParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	reactor, err := parseAddress("reactor", params.Reactor)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	total, err := s.node.GetReactorLikeTotal(creator, params.ContentID, reactor)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"total": bigString(total)})
}

type contentAllowanceParams struct {
	Creator   string `json:"creator"`
	ContentID string `json:"contentId"`
	Spender   string `json:"spender"`
}

func (s *Server) handleContentGetAllowance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params contentAllowanceParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	creator, err := parseAddress("creator", params.Creator)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	spender, err := parseAddress("spender", params.Spender)
	if err != nil {
		s.writeParamError(w, req, err)
		return
	}
	allowance, err := s.node.GetContentAllowance(creator, params.ContentID, spender)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"allowance": bigString(allowance)})
}

package core

import (
	"math/big"
	"sync"

	"likechain/core/events"
	"likechain/core/state"
	"likechain/core/types"
	"likechain/native/content"
	"likechain/native/token"
	"likechain/storage"
)

// maxBufferedEvents bounds the in-memory event window exposed over RPC.
const maxBufferedEvents = 1024

// Node owns the state manager and both ledger engines behind a single mutex.
// Every public operation runs start-to-finish under the lock, which gives the
// ledger its serializable, no-partial-visibility execution model.
type Node struct {
	mu       sync.Mutex
	db       storage.Database
	manager  *state.Manager
	tokens   *token.Engine
	contents *content.Engine

	eventMu sync.Mutex
	events  []types.Event
}

// NewNode wires a node on top of the provided database.
func NewNode(db storage.Database) *Node {
	node := &Node{db: db}
	node.manager = state.NewManager(db)
	node.tokens = token.NewEngine()
	node.tokens.SetState(node.manager)
	node.tokens.SetEmitter(node)
	node.contents = content.NewEngine()
	node.contents.SetState(node.manager)
	node.contents.SetTokenLedger(node.tokens)
	node.contents.SetEmitter(node)
	return node
}

// SetAdmin configures the address allowed to mutate the tax policy.
func (n *Node) SetAdmin(addr [20]byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens.SetAdmin(addr)
}

// SetNowFunc overrides the content engine time source for deterministic tests.
func (n *Node) SetNowFunc(now func() int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contents.SetNowFunc(now)
}

type attributedEvent interface {
	events.Event
	Event() *types.Event
}

// Emit satisfies events.Emitter: engine events land in a bounded in-memory
// window that the RPC surface can page through.
func (n *Node) Emit(evt events.Event) {
	attributed, ok := evt.(attributedEvent)
	if !ok {
		return
	}
	payload := attributed.Event()
	if payload == nil {
		return
	}
	n.eventMu.Lock()
	defer n.eventMu.Unlock()
	n.events = append(n.events, *payload)
	if len(n.events) > maxBufferedEvents {
		n.events = n.events[len(n.events)-maxBufferedEvents:]
	}
}

// Events returns a copy of the recent event window.
func (n *Node) Events() []types.Event {
	n.eventMu.Lock()
	defer n.eventMu.Unlock()
	out := make([]types.Event, len(n.events))
	copy(out, n.events)
	return out
}

// InitGenesis mints the initial supply to the owner if the ledger is empty.
// Restarting against an initialised database is a no-op.
func (n *Node) InitGenesis(owner [20]byte, supply *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	err := n.tokens.InitGenesis(owner, supply)
	if err == token.ErrGenesisInitialised {
		return nil
	}
	return err
}

// --- Token ledger operations ---

func (n *Node) Transfer(from [20]byte, to [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.Transfer(from, to, amount)
}

func (n *Node) Approve(owner [20]byte, spender [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.Approve(owner, spender, amount)
}

func (n *Node) TransferFrom(spender [20]byte, owner [20]byte, to [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.TransferFrom(spender, owner, to, amount)
}

func (n *Node) SetTaxEnabled(caller [20]byte, enabled bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.SetTaxEnabled(caller, enabled)
}

func (n *Node) SetTaxRate(caller [20]byte, rateBps uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.SetTaxRate(caller, rateBps)
}

func (n *Node) AddTaxExempt(caller [20]byte, addr [20]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.AddTaxExempt(caller, addr)
}

func (n *Node) RemoveTaxExempt(caller [20]byte, addr [20]byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.RemoveTaxExempt(caller, addr)
}

func (n *Node) BalanceOf(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.BalanceOf(addr)
}

func (n *Node) TotalSupply() (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.TotalSupply()
}

func (n *Node) Allowance(owner [20]byte, spender [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.Allowance(owner, spender)
}

func (n *Node) IsTaxExempt(addr [20]byte) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.IsTaxExempt(addr)
}

func (n *Node) TaxPolicy() (*token.TaxPolicy, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.Policy()
}

// --- Content ledger operations ---

func (n *Node) CreateContent(creator [20]byte, id string) (*content.Content, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.CreateContent(creator, id)
}

func (n *Node) LikeContent(creator [20]byte, id string, reactor [20]byte, amount *big.Int) (*content.Content, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.LikeContent(creator, id, reactor, amount)
}

func (n *Node) LikeContentFrom(owner [20]byte, spender [20]byte, creator [20]byte, id string, amount *big.Int) (*content.Content, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.LikeContentFrom(owner, spender, creator, id, amount)
}

func (n *Node) DislikeContent(creator [20]byte, id string, disliker [20]byte, amount *big.Int) (*content.Content, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.DislikeContent(creator, id, disliker, amount)
}

func (n *Node) WithdrawContentEarning(creator [20]byte, id string, to [20]byte, amount *big.Int) (*content.Content, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.WithdrawContentEarning(creator, id, to, amount)
}

func (n *Node) WithdrawAllContentEarning(creator [20]byte, id string, to [20]byte) (*content.Content, *big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.WithdrawAllContentEarning(creator, id, to)
}

func (n *Node) LikeContentWithAllContentEarning(caller [20]byte, targetCreator [20]byte, targetID string, sourceID string) (*content.Content, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.LikeContentWithAllContentEarning(caller, targetCreator, targetID, sourceID)
}

func (n *Node) IncreaseContentAllowance(creator [20]byte, spender [20]byte, id string, amount *big.Int) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.IncreaseContentAllowance(creator, spender, id, amount)
}

func (n *Node) DecreaseContentAllowance(creator [20]byte, spender [20]byte, id string, amount *big.Int) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.DecreaseContentAllowance(creator, spender, id, amount)
}

func (n *Node) WithdrawContentFrom(creator [20]byte, spender [20]byte, id string, to [20]byte, amount *big.Int) (*content.Content, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.WithdrawContentFrom(creator, spender, id, to, amount)
}

func (n *Node) GetContent(creator [20]byte, id string) (*content.Content, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.GetContent(creator, id)
}

func (n *Node) GetContentByIndex(creator [20]byte, index uint64) (*content.Content, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.GetContentByIndex(creator, index)
}

func (n *Node) GetContentsByRange(creator [20]byte, start uint64, end uint64) ([]*content.Content, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.GetContentsByRange(creator, start, end)
}

func (n *Node) GetContentCount(creator [20]byte) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.GetContentCount(creator)
}

func (n *Node) GetReaction(creator [20]byte, id string, seq uint64) (*content.Reaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.GetReaction(creator, id, seq)
}

func (n *Node) GetReactionsByRange(creator [20]byte, id string, from uint64, to uint64) ([]*content.Reaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.GetReactionsByRange(creator, id, from, to)
}

func (n *Node) GetReactorLikeTotal(creator [20]byte, id string, reactor [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.GetReactorLikeTotal(creator, id, reactor)
}

func (n *Node) GetContentAllowance(creator [20]byte, id string, spender [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.contents.GetContentAllowance(creator, id, spender)
}

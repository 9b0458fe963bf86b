package content

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"likechain/core/events"
	"likechain/native/token"
)

var (
	errNilState  = errors.New("content engine: state not configured")
	errNilLedger = errors.New("content engine: token ledger not configured")

	// ErrInvalidAmount is returned when a zero or negative amount reaches an
	// operation that requires a positive one.
	ErrInvalidAmount = errors.New("content engine: amount must be positive")
	// ErrDuplicateContent is returned when a (creator, id) pair already exists.
	ErrDuplicateContent = errors.New("content engine: content already exists")
	// ErrContentNotFound is returned for operations against an unknown record.
	ErrContentNotFound = errors.New("content engine: content not found")
	// ErrInsufficientEarnings is returned when a withdrawal exceeds the
	// record's available earnings.
	ErrInsufficientEarnings = errors.New("content engine: insufficient earnings")
	// ErrContentAllowanceExceeded is returned when a delegated withdrawal
	// exceeds the content-scoped allowance.
	ErrContentAllowanceExceeded = errors.New("content engine: content allowance exceeded")
	// ErrAllowanceUnderflow is returned when an allowance decrease exceeds the
	// current grant.
	ErrAllowanceUnderflow = errors.New("content engine: allowance underflow")
	// ErrReactionNotFound is returned for a reaction sequence number that was
	// never appended.
	ErrReactionNotFound = errors.New("content engine: reaction not found")
	// ErrInvalidRange is returned for malformed record or reaction ranges.
	ErrInvalidRange = errors.New("content engine: invalid range")

	errEmptyContentID = errors.New("content engine: content id required")
)

type engineState interface {
	ContentGet(creator [20]byte, id string) (*Content, bool, error)
	ContentPut(record *Content) error
	ContentIndexAppend(creator [20]byte, id string) (uint64, error)
	ContentIDByIndex(creator [20]byte, index uint64) (string, bool, error)
	ContentCount(creator [20]byte) (uint64, error)
	ReactionGet(creator [20]byte, id string, seq uint64) (*Reaction, bool, error)
	ReactionPut(creator [20]byte, id string, reaction *Reaction) error
	ReactorLikeTotalGet(creator [20]byte, id string, reactor [20]byte) (*big.Int, error)
	ReactorLikeTotalPut(creator [20]byte, id string, reactor [20]byte, total *big.Int) error
	ContentAllowanceGet(creator [20]byte, id string, spender [20]byte) (*big.Int, error)
	ContentAllowancePut(creator [20]byte, id string, spender [20]byte, amount *big.Int) error
}

// tokenLedger is the restricted slice of the token engine the content ledger
// is allowed to touch. Escrow movements bypass the transfer tax.
type tokenLedger interface {
	BalanceOf(addr [20]byte) (*big.Int, error)
	Debit(account [20]byte, amount *big.Int) error
	CreditEscrow(amount *big.Int) error
	BurnFromEscrow(amount *big.Int) error
	PayFromEscrow(account [20]byte, amount *big.Int) error
	SpendAllowance(owner [20]byte, spender [20]byte, amount *big.Int) error
}

// Engine implements the per-content accounting ledger: reaction history, lazy
// dislike-debt settlement, withdrawals and content-scoped spending allowances.
type Engine struct {
	state   engineState
	tokens  tokenLedger
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine constructs a content engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetTokenLedger wires the token engine the content ledger settles against.
func (e *Engine) SetTokenLedger(tokens tokenLedger) { e.tokens = tokens }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.tokens == nil {
		return errNilLedger
	}
	return nil
}

func sanitizeContentID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", errEmptyContentID
	}
	return trimmed, nil
}

func (e *Engine) record(creator [20]byte, id string) (*Content, error) {
	record, ok, err := e.state.ContentGet(creator, id)
	if err != nil {
		return nil, err
	}
	if !ok || record == nil {
		return nil, ErrContentNotFound
	}
	return record, nil
}

func minBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// CreateContent registers a zeroed record at the next index in the creator's
// content sequence. Duplicate (creator, id) pairs fail.
func (e *Engine) CreateContent(creator [20]byte, id string) (*Content, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	if _, ok, err := e.state.ContentGet(creator, sanitized); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrDuplicateContent
	}
	record := newContent(creator, sanitized, e.now())
	if err := e.state.ContentPut(record); err != nil {
		return nil, err
	}
	count, err := e.state.ContentIndexAppend(creator, sanitized)
	if err != nil {
		return nil, err
	}
	e.emit(events.ContentCreated{Creator: creator, ContentID: sanitized, Index: count - 1})
	return record.Clone(), nil
}

// LikeContent deposits amount from the reactor's balance into the record. The
// deposit first settles any outstanding dislike debt (that portion is burned);
// only the surplus becomes new escrow backing. Likes grows by the full amount.
func (e *Engine) LikeContent(creator [20]byte, id string, reactor [20]byte, amount *big.Int) (*Content, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	record, err := e.record(creator, sanitized)
	if err != nil {
		return nil, err
	}
	if err := e.tokens.Debit(reactor, amount); err != nil {
		return nil, err
	}
	return e.applyLike(record, reactor, amount)
}

// LikeContentFrom is the allowance-backed variant of LikeContent: the spender
// consumes the owner's token allowance and the deposit is debited from the
// owner, who is recorded as the reactor.
func (e *Engine) LikeContentFrom(owner [20]byte, spender [20]byte, creator [20]byte, id string, amount *big.Int) (*Content, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	record, err := e.record(creator, sanitized)
	if err != nil {
		return nil, err
	}
	// Balance is checked up front so an insufficient owner balance cannot
	// leave the allowance partially spent.
	balance, err := e.tokens.BalanceOf(owner)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(amount) < 0 {
		return nil, token.ErrInsufficientBalance
	}
	if err := e.tokens.SpendAllowance(owner, spender, amount); err != nil {
		return nil, err
	}
	if err := e.tokens.Debit(owner, amount); err != nil {
		return nil, err
	}
	return e.applyLike(record, owner, amount)
}

// applyLike runs the settle-then-credit sequence for a deposit that has already
// been debited from its source, appends the like reaction and updates the
// per-reactor cumulative total.
func (e *Engine) applyLike(record *Content, reactor [20]byte, deposit *big.Int) (*Content, error) {
	settle := minBig(deposit, record.OutstandingDebt())
	if err := e.tokens.CreditEscrow(deposit); err != nil {
		return nil, err
	}
	if settle.Sign() > 0 {
		if err := e.tokens.BurnFromEscrow(settle); err != nil {
			return nil, err
		}
		record.Burned = new(big.Int).Add(record.Burned, settle)
	}
	record.Likes = new(big.Int).Add(record.Likes, deposit)
	record.Reactions++
	reaction := &Reaction{
		Seq:     record.Reactions,
		Reactor: reactor,
		Kind:    ReactionLike,
		Amount:  new(big.Int).Set(deposit),
	}
	if err := e.state.ReactionPut(record.Creator, record.ID, reaction); err != nil {
		return nil, err
	}
	total, err := e.state.ReactorLikeTotalGet(record.Creator, record.ID, reactor)
	if err != nil {
		return nil, err
	}
	if total == nil {
		total = big.NewInt(0)
	}
	if err := e.state.ReactorLikeTotalPut(record.Creator, record.ID, reactor, new(big.Int).Add(total, deposit)); err != nil {
		return nil, err
	}
	if err := e.state.ContentPut(record); err != nil {
		return nil, err
	}
	e.emit(events.ContentLiked{
		Creator:   record.Creator,
		ContentID: record.ID,
		Reactor:   reactor,
		Amount:    new(big.Int).Set(deposit),
		Settled:   settle,
	})
	return record.Clone(), nil
}

// DislikeContent casts a negative vote without moving tokens from the
// disliker. Up to the record's current backing is burned immediately; any
// excess becomes debt settled by future like deposits.
func (e *Engine) DislikeContent(creator [20]byte, id string, disliker [20]byte, amount *big.Int) (*Content, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	record, err := e.record(creator, sanitized)
	if err != nil {
		return nil, err
	}
	toBurn := minBig(amount, record.Backing())
	if toBurn.Sign() < 0 {
		toBurn = big.NewInt(0)
	}
	if toBurn.Sign() > 0 {
		if err := e.tokens.BurnFromEscrow(toBurn); err != nil {
			return nil, err
		}
		record.Burned = new(big.Int).Add(record.Burned, toBurn)
	}
	record.Dislikes = new(big.Int).Add(record.Dislikes, amount)
	record.Reactions++
	reaction := &Reaction{
		Seq:     record.Reactions,
		Reactor: disliker,
		Kind:    ReactionDislike,
		Amount:  new(big.Int).Set(amount),
	}
	if err := e.state.ReactionPut(record.Creator, record.ID, reaction); err != nil {
		return nil, err
	}
	if err := e.state.ContentPut(record); err != nil {
		return nil, err
	}
	e.emit(events.ContentDisliked{
		Creator:   record.Creator,
		ContentID: record.ID,
		Disliker:  disliker,
		Amount:    new(big.Int).Set(amount),
		Burned:    toBurn,
	})
	return record.Clone(), nil
}

// WithdrawContentEarning pays amount of the record's available earnings from
// escrow to the destination account.
func (e *Engine) WithdrawContentEarning(creator [20]byte, id string, to [20]byte, amount *big.Int) (*Content, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	record, err := e.record(creator, sanitized)
	if err != nil {
		return nil, err
	}
	return e.applyWithdraw(record, to, amount)
}

// WithdrawAllContentEarning pays out whatever the record currently has
// available, succeeding as a no-op when that is zero.
func (e *Engine) WithdrawAllContentEarning(creator [20]byte, id string, to [20]byte) (*Content, *big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, nil, err
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, nil, err
	}
	record, err := e.record(creator, sanitized)
	if err != nil {
		return nil, nil, err
	}
	available := record.AvailableEarnings()
	if available.Sign() == 0 {
		return record.Clone(), big.NewInt(0), nil
	}
	updated, err := e.applyWithdraw(record, to, available)
	if err != nil {
		return nil, nil, err
	}
	return updated, available, nil
}

func (e *Engine) applyWithdraw(record *Content, to [20]byte, amount *big.Int) (*Content, error) {
	if amount.Cmp(rawAvailable(record)) > 0 {
		return nil, ErrInsufficientEarnings
	}
	if err := e.tokens.PayFromEscrow(to, amount); err != nil {
		return nil, err
	}
	record.Withdrawn = new(big.Int).Add(record.Withdrawn, amount)
	if err := e.state.ContentPut(record); err != nil {
		return nil, err
	}
	e.emit(events.ContentWithdrawn{
		Creator:   record.Creator,
		ContentID: record.ID,
		To:        to,
		Amount:    new(big.Int).Set(amount),
	})
	return record.Clone(), nil
}

// LikeContentWithAllContentEarning moves the caller's entire available earning
// on the source record into a like on the target record. The tokens never
// leave escrow: the source is marked withdrawn and the target absorbs the
// value as a deposit, settling any target debt by burning.
func (e *Engine) LikeContentWithAllContentEarning(caller [20]byte, targetCreator [20]byte, targetID string, sourceID string) (*Content, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	sanitizedTarget, err := sanitizeContentID(targetID)
	if err != nil {
		return nil, err
	}
	sanitizedSource, err := sanitizeContentID(sourceID)
	if err != nil {
		return nil, err
	}
	source, err := e.record(caller, sanitizedSource)
	if err != nil {
		return nil, err
	}
	// Source and target may name the same record; share one instance so the
	// withdrawal and the like both land on it.
	target := source
	if caller != targetCreator || sanitizedTarget != sanitizedSource {
		target, err = e.record(targetCreator, sanitizedTarget)
		if err != nil {
			return nil, err
		}
	}
	available := source.AvailableEarnings()
	if available.Sign() == 0 {
		return nil, ErrInsufficientEarnings
	}
	source.Withdrawn = new(big.Int).Add(source.Withdrawn, available)
	if err := e.state.ContentPut(source); err != nil {
		return nil, err
	}
	e.emit(events.ContentWithdrawn{
		Creator:   source.Creator,
		ContentID: source.ID,
		To:        target.Creator,
		Amount:    new(big.Int).Set(available),
		Internal:  true,
	})

	// The deposit already sits in escrow, so only the debt-settlement burn
	// applies; the surplus stays where it is.
	settle := minBig(available, target.OutstandingDebt())
	if settle.Sign() > 0 {
		if err := e.tokens.BurnFromEscrow(settle); err != nil {
			return nil, err
		}
		target.Burned = new(big.Int).Add(target.Burned, settle)
	}
	target.Likes = new(big.Int).Add(target.Likes, available)
	target.Reactions++
	reaction := &Reaction{
		Seq:     target.Reactions,
		Reactor: caller,
		Kind:    ReactionLike,
		Amount:  new(big.Int).Set(available),
	}
	if err := e.state.ReactionPut(target.Creator, target.ID, reaction); err != nil {
		return nil, err
	}
	total, err := e.state.ReactorLikeTotalGet(target.Creator, target.ID, caller)
	if err != nil {
		return nil, err
	}
	if total == nil {
		total = big.NewInt(0)
	}
	if err := e.state.ReactorLikeTotalPut(target.Creator, target.ID, caller, new(big.Int).Add(total, available)); err != nil {
		return nil, err
	}
	if err := e.state.ContentPut(target); err != nil {
		return nil, err
	}
	e.emit(events.ContentLiked{
		Creator:   target.Creator,
		ContentID: target.ID,
		Reactor:   caller,
		Amount:    new(big.Int).Set(available),
		Settled:   settle,
	})
	return target.Clone(), nil
}

// --- Content-scoped allowances ---

// IncreaseContentAllowance raises the spender's withdrawal right on the
// creator's record. Additive, unlike the token ledger's overwrite semantics.
func (e *Engine) IncreaseContentAllowance(creator [20]byte, spender [20]byte, id string, amount *big.Int) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	if _, err := e.record(creator, sanitized); err != nil {
		return nil, err
	}
	allowance, err := e.contentAllowance(creator, sanitized, spender)
	if err != nil {
		return nil, err
	}
	updated := new(big.Int).Add(allowance, amount)
	if err := e.state.ContentAllowancePut(creator, sanitized, spender, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DecreaseContentAllowance lowers the spender's withdrawal right. Decreasing
// below the current grant fails.
func (e *Engine) DecreaseContentAllowance(creator [20]byte, spender [20]byte, id string, amount *big.Int) (*big.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	if _, err := e.record(creator, sanitized); err != nil {
		return nil, err
	}
	allowance, err := e.contentAllowance(creator, sanitized, spender)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(amount) < 0 {
		return nil, ErrAllowanceUnderflow
	}
	updated := new(big.Int).Sub(allowance, amount)
	if err := e.state.ContentAllowancePut(creator, sanitized, spender, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// WithdrawContentFrom lets a spender pull the creator's content earnings up to
// the content-scoped allowance, paying the destination account.
func (e *Engine) WithdrawContentFrom(creator [20]byte, spender [20]byte, id string, to [20]byte, amount *big.Int) (*Content, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	record, err := e.record(creator, sanitized)
	if err != nil {
		return nil, err
	}
	allowance, err := e.contentAllowance(creator, sanitized, spender)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(amount) < 0 {
		return nil, ErrContentAllowanceExceeded
	}
	if amount.Cmp(rawAvailable(record)) > 0 {
		return nil, ErrInsufficientEarnings
	}
	updated, err := e.applyWithdraw(record, to, amount)
	if err != nil {
		return nil, err
	}
	remaining := new(big.Int).Sub(allowance, amount)
	if err := e.state.ContentAllowancePut(creator, sanitized, spender, remaining); err != nil {
		return nil, err
	}
	return updated, nil
}

func (e *Engine) contentAllowance(creator [20]byte, id string, spender [20]byte) (*big.Int, error) {
	allowance, err := e.state.ContentAllowanceGet(creator, id, spender)
	if err != nil {
		return nil, err
	}
	if allowance == nil {
		return big.NewInt(0), nil
	}
	return allowance, nil
}

// --- Queries ---

// GetContent returns the record stored for the (creator, id) pair.
func (e *Engine) GetContent(creator [20]byte, id string) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	record, err := e.record(creator, sanitized)
	if err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// GetContentByIndex returns the creator's record at the 0-based position in
// their publication order.
func (e *Engine) GetContentByIndex(creator [20]byte, index uint64) (*Content, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	id, ok, err := e.state.ContentIDByIndex(creator, index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrContentNotFound
	}
	record, err := e.record(creator, id)
	if err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// GetContentsByRange returns the creator's records with positions in the
// half-open interval [start, end).
func (e *Engine) GetContentsByRange(creator [20]byte, start uint64, end uint64) ([]*Content, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	count, err := e.state.ContentCount(creator)
	if err != nil {
		return nil, err
	}
	if start > end || end > count {
		return nil, ErrInvalidRange
	}
	records := make([]*Content, 0, end-start)
	for index := start; index < end; index++ {
		id, ok, err := e.state.ContentIDByIndex(creator, index)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrContentNotFound
		}
		record, err := e.record(creator, id)
		if err != nil {
			return nil, err
		}
		records = append(records, record.Clone())
	}
	return records, nil
}

// GetContentCount returns how many records the creator has published.
func (e *Engine) GetContentCount(creator [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.ContentCount(creator)
}

// GetReaction returns the reaction with the given 1-based sequence number.
func (e *Engine) GetReaction(creator [20]byte, id string, seq uint64) (*Reaction, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	reaction, ok, err := e.state.ReactionGet(creator, sanitized, seq)
	if err != nil {
		return nil, err
	}
	if !ok || reaction == nil {
		return nil, ErrReactionNotFound
	}
	return reaction.Clone(), nil
}

// GetReactionsByRange returns the reactions with sequence numbers in the
// 1-based inclusive interval [from, to].
func (e *Engine) GetReactionsByRange(creator [20]byte, id string, from uint64, to uint64) ([]*Reaction, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	record, err := e.record(creator, sanitized)
	if err != nil {
		return nil, err
	}
	if from == 0 || from > to || to > record.Reactions {
		return nil, ErrInvalidRange
	}
	reactions := make([]*Reaction, 0, to-from+1)
	for seq := from; seq <= to; seq++ {
		reaction, ok, err := e.state.ReactionGet(creator, sanitized, seq)
		if err != nil {
			return nil, err
		}
		if !ok || reaction == nil {
			return nil, ErrReactionNotFound
		}
		reactions = append(reactions, reaction.Clone())
	}
	return reactions, nil
}

// GetReactorLikeTotal returns the cumulative like value the reactor has
// contributed to the record.
func (e *Engine) GetReactorLikeTotal(creator [20]byte, id string, reactor [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	total, err := e.state.ReactorLikeTotalGet(creator, sanitized, reactor)
	if err != nil {
		return nil, err
	}
	if total == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(total), nil
}

// GetContentAllowance returns the spender's remaining content-scoped
// withdrawal right on the creator's record.
func (e *Engine) GetContentAllowance(creator [20]byte, id string, spender [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	sanitized, err := sanitizeContentID(id)
	if err != nil {
		return nil, err
	}
	return e.contentAllowance(creator, sanitized, spender)
}

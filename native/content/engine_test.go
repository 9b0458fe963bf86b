package content

import (
	"errors"
	"math/big"
	"testing"

	"likechain/native/token"
)

type mockState struct {
	contents   map[string]*Content
	index      map[string][]string
	reactions  map[string]map[uint64]*Reaction
	likeTotals map[string]*big.Int
	allowances map[string]*big.Int
}

func newMockState() *mockState {
	return &mockState{
		contents:   make(map[string]*Content),
		index:      make(map[string][]string),
		reactions:  make(map[string]map[uint64]*Reaction),
		likeTotals: make(map[string]*big.Int),
		allowances: make(map[string]*big.Int),
	}
}

func contentKey(creator [20]byte, id string) string {
	return string(creator[:]) + "/" + id
}

func (m *mockState) ContentGet(creator [20]byte, id string) (*Content, bool, error) {
	record, ok := m.contents[contentKey(creator, id)]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

func (m *mockState) ContentPut(record *Content) error {
	if record == nil {
		return nil
	}
	m.contents[contentKey(record.Creator, record.ID)] = record.Clone()
	return nil
}

func (m *mockState) ContentIndexAppend(creator [20]byte, id string) (uint64, error) {
	key := string(creator[:])
	m.index[key] = append(m.index[key], id)
	return uint64(len(m.index[key])), nil
}

func (m *mockState) ContentIDByIndex(creator [20]byte, index uint64) (string, bool, error) {
	ids := m.index[string(creator[:])]
	if index >= uint64(len(ids)) {
		return "", false, nil
	}
	return ids[index], true, nil
}

func (m *mockState) ContentCount(creator [20]byte) (uint64, error) {
	return uint64(len(m.index[string(creator[:])])), nil
}

func (m *mockState) ReactionGet(creator [20]byte, id string, seq uint64) (*Reaction, bool, error) {
	log, ok := m.reactions[contentKey(creator, id)]
	if !ok {
		return nil, false, nil
	}
	reaction, ok := log[seq]
	if !ok {
		return nil, false, nil
	}
	return reaction.Clone(), true, nil
}

func (m *mockState) ReactionPut(creator [20]byte, id string, reaction *Reaction) error {
	key := contentKey(creator, id)
	if m.reactions[key] == nil {
		m.reactions[key] = make(map[uint64]*Reaction)
	}
	m.reactions[key][reaction.Seq] = reaction.Clone()
	return nil
}

func totalKey(creator [20]byte, id string, reactor [20]byte) string {
	return contentKey(creator, id) + "/" + string(reactor[:])
}

func (m *mockState) ReactorLikeTotalGet(creator [20]byte, id string, reactor [20]byte) (*big.Int, error) {
	if total, ok := m.likeTotals[totalKey(creator, id, reactor)]; ok {
		return new(big.Int).Set(total), nil
	}
	return nil, nil
}

func (m *mockState) ReactorLikeTotalPut(creator [20]byte, id string, reactor [20]byte, total *big.Int) error {
	m.likeTotals[totalKey(creator, id, reactor)] = new(big.Int).Set(total)
	return nil
}

func (m *mockState) ContentAllowanceGet(creator [20]byte, id string, spender [20]byte) (*big.Int, error) {
	if allowance, ok := m.allowances[totalKey(creator, id, spender)]; ok {
		return new(big.Int).Set(allowance), nil
	}
	return nil, nil
}

func (m *mockState) ContentAllowancePut(creator [20]byte, id string, spender [20]byte, amount *big.Int) error {
	m.allowances[totalKey(creator, id, spender)] = new(big.Int).Set(amount)
	return nil
}

// mockLedger tracks balances, the escrow pool and supply the way the token
// engine does, without the tax machinery.
type mockLedger struct {
	balances   map[string]*big.Int
	allowances map[string]*big.Int
	escrow     *big.Int
	supply     *big.Int
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		balances:   make(map[string]*big.Int),
		allowances: make(map[string]*big.Int),
		escrow:     big.NewInt(0),
		supply:     big.NewInt(0),
	}
}

func (m *mockLedger) fund(addr [20]byte, amount int64) {
	m.balances[string(addr[:])] = big.NewInt(amount)
	m.supply = new(big.Int).Add(m.supply, big.NewInt(amount))
}

func (m *mockLedger) approve(owner [20]byte, spender [20]byte, amount int64) {
	m.allowances[string(owner[:])+"/"+string(spender[:])] = big.NewInt(amount)
}

func (m *mockLedger) balance(addr [20]byte) *big.Int {
	if b, ok := m.balances[string(addr[:])]; ok {
		return new(big.Int).Set(b)
	}
	return big.NewInt(0)
}

func (m *mockLedger) BalanceOf(addr [20]byte) (*big.Int, error) {
	return m.balance(addr), nil
}

func (m *mockLedger) Debit(account [20]byte, amount *big.Int) error {
	balance := m.balance(account)
	if balance.Cmp(amount) < 0 {
		return token.ErrInsufficientBalance
	}
	m.balances[string(account[:])] = balance.Sub(balance, amount)
	return nil
}

func (m *mockLedger) CreditEscrow(amount *big.Int) error {
	m.escrow = new(big.Int).Add(m.escrow, amount)
	return nil
}

func (m *mockLedger) BurnFromEscrow(amount *big.Int) error {
	if m.escrow.Cmp(amount) < 0 {
		return errors.New("mock ledger: escrow underfunded")
	}
	m.escrow = new(big.Int).Sub(m.escrow, amount)
	m.supply = new(big.Int).Sub(m.supply, amount)
	return nil
}

func (m *mockLedger) PayFromEscrow(account [20]byte, amount *big.Int) error {
	if m.escrow.Cmp(amount) < 0 {
		return errors.New("mock ledger: escrow underfunded")
	}
	m.escrow = new(big.Int).Sub(m.escrow, amount)
	m.balances[string(account[:])] = new(big.Int).Add(m.balance(account), amount)
	return nil
}

func (m *mockLedger) SpendAllowance(owner [20]byte, spender [20]byte, amount *big.Int) error {
	key := string(owner[:]) + "/" + string(spender[:])
	allowance, ok := m.allowances[key]
	if !ok || allowance.Cmp(amount) < 0 {
		return token.ErrAllowanceExceeded
	}
	m.allowances[key] = new(big.Int).Sub(allowance, amount)
	return nil
}

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func newTestEngine() (*Engine, *mockState, *mockLedger) {
	state := newMockState()
	ledger := newMockLedger()
	engine := NewEngine()
	engine.SetState(state)
	engine.SetTokenLedger(ledger)
	engine.SetNowFunc(func() int64 { return 1_700_000_000 })
	return engine, state, ledger
}

func TestCreateContentAssignsSequentialIndexes(t *testing.T) {
	engine, _, _ := newTestEngine()
	creator := addr(0x01)

	for _, id := range []string{"first", "second", "third"} {
		record, err := engine.CreateContent(creator, id)
		if err != nil {
			t.Fatalf("create %q: %v", id, err)
		}
		if record.Likes.Sign() != 0 || record.Dislikes.Sign() != 0 || record.Reactions != 0 {
			t.Fatalf("new record %q not zeroed: %+v", id, record)
		}
		if record.CreatedAt != 1_700_000_000 {
			t.Fatalf("record %q CreatedAt = %d, want pinned clock", id, record.CreatedAt)
		}
	}

	count, err := engine.GetContentCount(creator)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	second, err := engine.GetContentByIndex(creator, 1)
	if err != nil {
		t.Fatalf("get by index: %v", err)
	}
	if second.ID != "second" {
		t.Fatalf("index 1 = %q, want second", second.ID)
	}

	if _, err := engine.CreateContent(creator, "first"); !errors.Is(err, ErrDuplicateContent) {
		t.Fatalf("duplicate create: got %v, want ErrDuplicateContent", err)
	}
	if _, err := engine.CreateContent(creator, "   "); !errors.Is(err, errEmptyContentID) {
		t.Fatalf("blank id: got %v, want empty-id error", err)
	}

	// The same id under a different creator is a distinct record.
	if _, err := engine.CreateContent(addr(0x02), "first"); err != nil {
		t.Fatalf("same id, other creator: %v", err)
	}
}

func TestLikeContentMovesDepositIntoEscrow(t *testing.T) {
	engine, _, ledger := newTestEngine()
	creator := addr(0x01)
	reactor := addr(0x02)
	ledger.fund(reactor, 10_000)

	if _, err := engine.CreateContent(creator, "clip"); err != nil {
		t.Fatalf("create: %v", err)
	}
	record, err := engine.LikeContent(creator, "clip", reactor, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if record.Likes.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("likes = %s, want 1000", record.Likes)
	}
	if record.Reactions != 1 {
		t.Fatalf("reactions = %d, want 1", record.Reactions)
	}
	if got := ledger.balance(reactor); got.Cmp(big.NewInt(9_000)) != 0 {
		t.Fatalf("reactor balance = %s, want 9000", got)
	}
	if ledger.escrow.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("escrow = %s, want 1000", ledger.escrow)
	}

	reaction, err := engine.GetReaction(creator, "clip", 1)
	if err != nil {
		t.Fatalf("get reaction: %v", err)
	}
	if reaction.Kind != ReactionLike || reaction.Reactor != reactor || reaction.Amount.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("unexpected reaction entry: %+v", reaction)
	}
	total, err := engine.GetReactorLikeTotal(creator, "clip", reactor)
	if err != nil {
		t.Fatalf("reactor total: %v", err)
	}
	if total.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("reactor total = %s, want 1000", total)
	}

	if _, err := engine.LikeContent(creator, "clip", reactor, big.NewInt(100_000)); !errors.Is(err, token.ErrInsufficientBalance) {
		t.Fatalf("overdrawn like: got %v, want ErrInsufficientBalance", err)
	}
	if _, err := engine.LikeContent(creator, "missing", reactor, big.NewInt(1)); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("like unknown record: got %v, want ErrContentNotFound", err)
	}
	if _, err := engine.LikeContent(creator, "clip", reactor, big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero like: got %v, want ErrInvalidAmount", err)
	}
}

func TestDislikeBurnsUpToBacking(t *testing.T) {
	engine, _, ledger := newTestEngine()
	creator := addr(0x01)
	liker := addr(0x02)
	hater := addr(0x03)
	ledger.fund(liker, 10_000)

	if _, err := engine.CreateContent(creator, "clip"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.LikeContent(creator, "clip", liker, big.NewInt(1_000)); err != nil {
		t.Fatalf("like: %v", err)
	}

	record, err := engine.DislikeContent(creator, "clip", hater, big.NewInt(1_500))
	if err != nil {
		t.Fatalf("dislike: %v", err)
	}
	// Only the current backing of 1000 burns; the remaining 500 is debt.
	if record.Burned.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("burned = %s, want 1000", record.Burned)
	}
	if record.Dislikes.Cmp(big.NewInt(1_500)) != 0 {
		t.Fatalf("dislikes = %s, want 1500", record.Dislikes)
	}
	if record.OutstandingDebt().Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("debt = %s, want 500", record.OutstandingDebt())
	}
	if ledger.escrow.Sign() != 0 {
		t.Fatalf("escrow = %s, want 0", ledger.escrow)
	}
	if got := ledger.balance(hater); got.Sign() != 0 {
		t.Fatal("disliking must not move tokens from the disliker")
	}

	// The next deposit settles the debt before backing the record again.
	record, err = engine.LikeContent(creator, "clip", liker, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("settling like: %v", err)
	}
	if record.Burned.Cmp(big.NewInt(1_500)) != 0 {
		t.Fatalf("burned after settlement = %s, want 1500", record.Burned)
	}
	if record.Likes.Cmp(big.NewInt(2_000)) != 0 {
		t.Fatalf("likes = %s, want 2000", record.Likes)
	}
	if record.OutstandingDebt().Sign() != 0 {
		t.Fatalf("debt = %s, want 0", record.OutstandingDebt())
	}
	if ledger.escrow.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("escrow = %s, want 500", ledger.escrow)
	}
	if ledger.escrow.Cmp(record.Backing()) != 0 {
		t.Fatalf("escrow %s does not match record backing %s", ledger.escrow, record.Backing())
	}
}

func TestDislikeBeforeAnyLikeAccruesDebt(t *testing.T) {
	engine, _, ledger := newTestEngine()
	creator := addr(0x01)
	liker := addr(0x02)
	hater := addr(0x03)
	ledger.fund(liker, 1_000)

	if _, err := engine.CreateContent(creator, "clip"); err != nil {
		t.Fatalf("create: %v", err)
	}
	record, err := engine.DislikeContent(creator, "clip", hater, big.NewInt(300))
	if err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if record.Burned.Sign() != 0 {
		t.Fatalf("burned = %s, want 0 with no backing", record.Burned)
	}
	if ledger.escrow.Sign() != 0 {
		t.Fatalf("escrow = %s, want untouched", ledger.escrow)
	}

	record, err = engine.LikeContent(creator, "clip", liker, big.NewInt(200))
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	// The whole deposit goes to repaying debt; net escrow is unchanged.
	if record.Burned.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("burned = %s, want 200", record.Burned)
	}
	if record.OutstandingDebt().Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("debt = %s, want 100", record.OutstandingDebt())
	}
	if ledger.escrow.Sign() != 0 {
		t.Fatalf("escrow = %s, want 0", ledger.escrow)
	}
	if record.AvailableEarnings().Sign() != 0 {
		t.Fatalf("available = %s, want 0 while in debt", record.AvailableEarnings())
	}

	// Withdrawing all from an in-debt record succeeds as a no-op.
	updated, paid, err := engine.WithdrawAllContentEarning(creator, "clip", creator)
	if err != nil {
		t.Fatalf("withdraw all: %v", err)
	}
	if paid.Sign() != 0 {
		t.Fatalf("paid = %s, want 0", paid)
	}
	if updated.Withdrawn.Sign() != 0 {
		t.Fatalf("withdrawn = %s, want 0", updated.Withdrawn)
	}
}

func TestWithdrawContentEarning(t *testing.T) {
	engine, _, ledger := newTestEngine()
	creator := addr(0x01)
	liker := addr(0x02)
	payee := addr(0x04)
	ledger.fund(liker, 10_000)

	if _, err := engine.CreateContent(creator, "clip"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.LikeContent(creator, "clip", liker, big.NewInt(1_000)); err != nil {
		t.Fatalf("like: %v", err)
	}

	record, err := engine.WithdrawContentEarning(creator, "clip", payee, big.NewInt(400))
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if record.Withdrawn.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("withdrawn = %s, want 400", record.Withdrawn)
	}
	if got := ledger.balance(payee); got.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("payee balance = %s, want 400", got)
	}
	if ledger.escrow.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("escrow = %s, want 600", ledger.escrow)
	}

	// Asking for more than is available fails and changes nothing.
	if _, err := engine.WithdrawContentEarning(creator, "clip", payee, big.NewInt(700)); !errors.Is(err, ErrInsufficientEarnings) {
		t.Fatalf("over-withdraw: got %v, want ErrInsufficientEarnings", err)
	}
	after, err := engine.GetContent(creator, "clip")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.Withdrawn.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("withdrawn after failed withdraw = %s, want 400", after.Withdrawn)
	}

	updated, paid, err := engine.WithdrawAllContentEarning(creator, "clip", payee)
	if err != nil {
		t.Fatalf("withdraw all: %v", err)
	}
	if paid.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("paid = %s, want 600", paid)
	}
	if updated.AvailableEarnings().Sign() != 0 {
		t.Fatalf("available after drain = %s, want 0", updated.AvailableEarnings())
	}
	if ledger.escrow.Sign() != 0 {
		t.Fatalf("escrow = %s, want 0", ledger.escrow)
	}
}

func TestLikeContentFromSpendsAllowance(t *testing.T) {
	engine, _, ledger := newTestEngine()
	creator := addr(0x01)
	owner := addr(0x02)
	spender := addr(0x03)
	ledger.fund(owner, 1_000)
	ledger.approve(owner, spender, 500)

	if _, err := engine.CreateContent(creator, "clip"); err != nil {
		t.Fatalf("create: %v", err)
	}
	record, err := engine.LikeContentFrom(owner, spender, creator, "clip", big.NewInt(300))
	if err != nil {
		t.Fatalf("likeFrom: %v", err)
	}
	if got := ledger.balance(owner); got.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("owner balance = %s, want 700", got)
	}
	if record.Likes.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("likes = %s, want 300", record.Likes)
	}
	// The owner, not the spender, is the reactor of record.
	reaction, err := engine.GetReaction(creator, "clip", 1)
	if err != nil {
		t.Fatalf("get reaction: %v", err)
	}
	if reaction.Reactor != owner {
		t.Fatalf("reactor = %x, want owner", reaction.Reactor)
	}

	if _, err := engine.LikeContentFrom(owner, spender, creator, "clip", big.NewInt(400)); !errors.Is(err, token.ErrAllowanceExceeded) {
		t.Fatalf("over-allowance likeFrom: got %v, want ErrAllowanceExceeded", err)
	}

	// An underfunded owner fails before the allowance is touched.
	ledger.approve(owner, spender, 10_000)
	if _, err := engine.LikeContentFrom(owner, spender, creator, "clip", big.NewInt(5_000)); !errors.Is(err, token.ErrInsufficientBalance) {
		t.Fatalf("underfunded likeFrom: got %v, want ErrInsufficientBalance", err)
	}
	if err := ledger.SpendAllowance(owner, spender, big.NewInt(10_000)); err != nil {
		t.Fatalf("allowance was partially consumed by the failed likeFrom: %v", err)
	}
}

func TestLikeWithAllContentEarningKeepsValueInEscrow(t *testing.T) {
	engine, _, ledger := newTestEngine()
	caller := addr(0x01)
	targetCreator := addr(0x02)
	fan := addr(0x03)
	hater := addr(0x04)
	ledger.fund(fan, 10_000)

	if _, err := engine.CreateContent(caller, "src"); err != nil {
		t.Fatalf("create source: %v", err)
	}
	if _, err := engine.CreateContent(targetCreator, "tgt"); err != nil {
		t.Fatalf("create target: %v", err)
	}
	if _, err := engine.LikeContent(caller, "src", fan, big.NewInt(500)); err != nil {
		t.Fatalf("fund source: %v", err)
	}
	if _, err := engine.DislikeContent(targetCreator, "tgt", hater, big.NewInt(200)); err != nil {
		t.Fatalf("dislike target: %v", err)
	}

	escrowBefore := new(big.Int).Set(ledger.escrow)
	target, err := engine.LikeContentWithAllContentEarning(caller, targetCreator, "tgt", "src")
	if err != nil {
		t.Fatalf("composite like: %v", err)
	}

	if target.Likes.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("target likes = %s, want 500", target.Likes)
	}
	if target.Burned.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("target burned = %s, want 200", target.Burned)
	}
	if target.OutstandingDebt().Sign() != 0 {
		t.Fatalf("target debt = %s, want 0", target.OutstandingDebt())
	}

	source, err := engine.GetContent(caller, "src")
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if source.Withdrawn.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("source withdrawn = %s, want 500", source.Withdrawn)
	}
	if source.AvailableEarnings().Sign() != 0 {
		t.Fatalf("source available = %s, want 0", source.AvailableEarnings())
	}

	// Only the debt-settlement burn leaves escrow; the surplus never moves.
	wantEscrow := new(big.Int).Sub(escrowBefore, big.NewInt(200))
	if ledger.escrow.Cmp(wantEscrow) != 0 {
		t.Fatalf("escrow = %s, want %s", ledger.escrow, wantEscrow)
	}

	reaction, err := engine.GetReaction(targetCreator, "tgt", 2)
	if err != nil {
		t.Fatalf("get reaction: %v", err)
	}
	if reaction.Kind != ReactionLike || reaction.Reactor != caller || reaction.Amount.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("unexpected composite reaction: %+v", reaction)
	}

	// A drained source has nothing left to move.
	if _, err := engine.LikeContentWithAllContentEarning(caller, targetCreator, "tgt", "src"); !errors.Is(err, ErrInsufficientEarnings) {
		t.Fatalf("drained composite: got %v, want ErrInsufficientEarnings", err)
	}
}

func TestLikeWithAllContentEarningSelfTarget(t *testing.T) {
	engine, _, ledger := newTestEngine()
	creator := addr(0x01)
	fan := addr(0x02)
	ledger.fund(fan, 10_000)

	if _, err := engine.CreateContent(creator, "loop"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.LikeContent(creator, "loop", fan, big.NewInt(1_000)); err != nil {
		t.Fatalf("seed like: %v", err)
	}

	record, err := engine.LikeContentWithAllContentEarning(creator, creator, "loop", "loop")
	if err != nil {
		t.Fatalf("self composite: %v", err)
	}

	// The withdrawal and the like land on the same record: likes doubles and
	// the withdrawal must not be lost to a stale copy.
	if record.Likes.Cmp(big.NewInt(2_000)) != 0 {
		t.Fatalf("likes = %s, want 2000", record.Likes)
	}
	if record.Withdrawn.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("withdrawn = %s, want 1000", record.Withdrawn)
	}
	if record.Burned.Sign() != 0 {
		t.Fatalf("burned = %s, want 0", record.Burned)
	}
	if record.Backing().Cmp(ledger.escrow) != 0 {
		t.Fatalf("backing %s != escrow %s", record.Backing(), ledger.escrow)
	}
	if record.AvailableEarnings().Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("available = %s, want 1000", record.AvailableEarnings())
	}

	// The remaining backing pays out cleanly.
	_, withdrawn, err := engine.WithdrawAllContentEarning(creator, "loop", creator)
	if err != nil {
		t.Fatalf("withdraw all: %v", err)
	}
	if withdrawn.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("withdrawn = %s, want 1000", withdrawn)
	}
	if ledger.escrow.Sign() != 0 {
		t.Fatalf("escrow = %s, want 0", ledger.escrow)
	}
}

func TestContentAllowanceLifecycle(t *testing.T) {
	engine, _, ledger := newTestEngine()
	creator := addr(0x01)
	spender := addr(0x02)
	liker := addr(0x03)
	payee := addr(0x04)
	ledger.fund(liker, 10_000)

	if _, err := engine.CreateContent(creator, "clip"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.LikeContent(creator, "clip", liker, big.NewInt(1_000)); err != nil {
		t.Fatalf("like: %v", err)
	}

	// Increases accumulate, unlike the token ledger's overwrite semantics.
	if _, err := engine.IncreaseContentAllowance(creator, spender, "clip", big.NewInt(100)); err != nil {
		t.Fatalf("increase: %v", err)
	}
	allowance, err := engine.IncreaseContentAllowance(creator, spender, "clip", big.NewInt(50))
	if err != nil {
		t.Fatalf("second increase: %v", err)
	}
	if allowance.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("allowance = %s, want 150", allowance)
	}

	if _, err := engine.DecreaseContentAllowance(creator, spender, "clip", big.NewInt(200)); !errors.Is(err, ErrAllowanceUnderflow) {
		t.Fatalf("underflow decrease: got %v, want ErrAllowanceUnderflow", err)
	}
	allowance, err = engine.DecreaseContentAllowance(creator, spender, "clip", big.NewInt(50))
	if err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if allowance.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("allowance = %s, want 100", allowance)
	}

	record, err := engine.WithdrawContentFrom(creator, spender, "clip", payee, big.NewInt(80))
	if err != nil {
		t.Fatalf("withdrawFrom: %v", err)
	}
	if record.Withdrawn.Cmp(big.NewInt(80)) != 0 {
		t.Fatalf("withdrawn = %s, want 80", record.Withdrawn)
	}
	if got := ledger.balance(payee); got.Cmp(big.NewInt(80)) != 0 {
		t.Fatalf("payee balance = %s, want 80", got)
	}
	remaining, err := engine.GetContentAllowance(creator, "clip", spender)
	if err != nil {
		t.Fatalf("allowance query: %v", err)
	}
	if remaining.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("remaining allowance = %s, want 20", remaining)
	}

	if _, err := engine.WithdrawContentFrom(creator, spender, "clip", payee, big.NewInt(21)); !errors.Is(err, ErrContentAllowanceExceeded) {
		t.Fatalf("over-allowance: got %v, want ErrContentAllowanceExceeded", err)
	}
	if _, err := engine.IncreaseContentAllowance(creator, spender, "missing", big.NewInt(1)); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("increase on unknown record: got %v, want ErrContentNotFound", err)
	}
}

func TestContentRangeQueries(t *testing.T) {
	engine, _, _ := newTestEngine()
	creator := addr(0x01)

	for _, id := range []string{"a", "b", "c"} {
		if _, err := engine.CreateContent(creator, id); err != nil {
			t.Fatalf("create %q: %v", id, err)
		}
	}

	records, err := engine.GetContentsByRange(creator, 1, 3)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].ID != "b" || records[1].ID != "c" {
		t.Fatalf("range order = %q, %q", records[0].ID, records[1].ID)
	}

	// Empty range is legal; out-of-bounds and inverted ranges are not.
	empty, err := engine.GetContentsByRange(creator, 2, 2)
	if err != nil {
		t.Fatalf("empty range: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("empty range len = %d", len(empty))
	}
	if _, err := engine.GetContentsByRange(creator, 0, 4); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("out of bounds: got %v, want ErrInvalidRange", err)
	}
	if _, err := engine.GetContentsByRange(creator, 2, 1); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("inverted range: got %v, want ErrInvalidRange", err)
	}
	if _, err := engine.GetContentByIndex(creator, 3); !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("index past end: got %v, want ErrContentNotFound", err)
	}
}

func TestReactionLogRecordsEveryVote(t *testing.T) {
	engine, _, ledger := newTestEngine()
	creator := addr(0x01)
	liker := addr(0x02)
	hater := addr(0x03)
	ledger.fund(liker, 10_000)

	if _, err := engine.CreateContent(creator, "clip"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.LikeContent(creator, "clip", liker, big.NewInt(100)); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := engine.DislikeContent(creator, "clip", hater, big.NewInt(50)); err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if _, err := engine.LikeContent(creator, "clip", liker, big.NewInt(25)); err != nil {
		t.Fatalf("second like: %v", err)
	}

	reactions, err := engine.GetReactionsByRange(creator, "clip", 1, 3)
	if err != nil {
		t.Fatalf("reaction range: %v", err)
	}
	if len(reactions) != 3 {
		t.Fatalf("len = %d, want 3", len(reactions))
	}
	wantKinds := []ReactionKind{ReactionLike, ReactionDislike, ReactionLike}
	for i, reaction := range reactions {
		if reaction.Seq != uint64(i+1) {
			t.Fatalf("reaction %d seq = %d", i, reaction.Seq)
		}
		if reaction.Kind != wantKinds[i] {
			t.Fatalf("reaction %d kind = %v, want %v", i, reaction.Kind, wantKinds[i])
		}
	}

	total, err := engine.GetReactorLikeTotal(creator, "clip", liker)
	if err != nil {
		t.Fatalf("reactor total: %v", err)
	}
	if total.Cmp(big.NewInt(125)) != 0 {
		t.Fatalf("reactor total = %s, want 125", total)
	}

	// Sequence numbers are 1-based; zero and past-the-end bounds fail.
	if _, err := engine.GetReactionsByRange(creator, "clip", 0, 2); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("zero lower bound: got %v, want ErrInvalidRange", err)
	}
	if _, err := engine.GetReactionsByRange(creator, "clip", 1, 4); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("past the end: got %v, want ErrInvalidRange", err)
	}
	if _, err := engine.GetReaction(creator, "clip", 4); !errors.Is(err, ErrReactionNotFound) {
		t.Fatalf("unknown seq: got %v, want ErrReactionNotFound", err)
	}
}

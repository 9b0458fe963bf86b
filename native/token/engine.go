package token

import (
	"errors"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"likechain/core/events"
	"likechain/core/types"
)

var (
	errNilState = errors.New("token engine: state not configured")

	// ErrInvalidAmount is returned when an operation receives a zero, negative
	// or missing amount where a positive one is required.
	ErrInvalidAmount = errors.New("token engine: amount must be positive")
	// ErrInsufficientBalance is returned when a debit exceeds the account balance.
	ErrInsufficientBalance = errors.New("token engine: insufficient balance")
	// ErrAllowanceExceeded is returned when a delegated transfer exceeds the
	// remaining token allowance.
	ErrAllowanceExceeded = errors.New("token engine: allowance exceeded")
	// ErrUnauthorized is returned when a non-admin caller invokes a gated
	// tax-policy mutation.
	ErrUnauthorized = errors.New("token engine: unauthorized")
	// ErrGenesisInitialised is returned when InitGenesis runs against a ledger
	// that already carries supply.
	ErrGenesisInitialised = errors.New("token engine: genesis already initialised")

	errEscrowUnderfunded = errors.New("token engine: escrow pool underfunded")
)

// EscrowAddress is the distinguished account holding every content record's
// unspent, unburned backing. Derived from a fixed label so it can never collide
// with a key-derived account.
var EscrowAddress = func() [20]byte {
	var addr [20]byte
	digest := ethcrypto.Keccak256([]byte("likechain/content-escrow"))
	copy(addr[:], digest[12:])
	return addr
}()

type engineState interface {
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
	TokenSupply() (*big.Int, error)
	SetTokenSupply(total *big.Int) error
	TaxPolicyGet() (*TaxPolicy, error)
	TaxPolicyPut(policy *TaxPolicy) error
	TokenAllowanceGet(owner [20]byte, spender [20]byte) (*big.Int, error)
	TokenAllowancePut(owner [20]byte, spender [20]byte, amount *big.Int) error
}

// Engine implements the fungible token ledger: balances, total supply, the
// transfer tax policy and the owner/spender allowance table.
type Engine struct {
	state   engineState
	emitter events.Emitter
	admin   [20]byte
}

// NewEngine constructs a token engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetAdmin configures the address allowed to mutate the tax policy.
func (e *Engine) SetAdmin(addr [20]byte) { e.admin = addr }

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func ensureAccount(acc *types.Account) *types.Account {
	if acc == nil {
		return &types.Account{Balance: big.NewInt(0)}
	}
	if acc.Balance == nil {
		acc.Balance = big.NewInt(0)
	}
	return acc
}

func (e *Engine) account(addr [20]byte) (*types.Account, error) {
	acc, err := e.state.GetAccount(addr[:])
	if err != nil {
		return nil, err
	}
	return ensureAccount(acc), nil
}

func (e *Engine) policy() (*TaxPolicy, error) {
	policy, err := e.state.TaxPolicyGet()
	if err != nil {
		return nil, err
	}
	if policy == nil {
		policy = DefaultTaxPolicy()
	}
	return policy, nil
}

// InitGenesis mints the initial supply to the owner account. The owner starts
// on the tax-free allowlist. Running it twice fails.
func (e *Engine) InitGenesis(owner [20]byte, supply *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if supply == nil || supply.Sign() <= 0 {
		return ErrInvalidAmount
	}
	current, err := e.state.TokenSupply()
	if err != nil {
		return err
	}
	if current.Sign() != 0 {
		return ErrGenesisInitialised
	}
	account, err := e.account(owner)
	if err != nil {
		return err
	}
	account.Balance = new(big.Int).Set(supply)
	if err := e.state.PutAccount(owner[:], account); err != nil {
		return err
	}
	if err := e.state.SetTokenSupply(new(big.Int).Set(supply)); err != nil {
		return err
	}
	policy, err := e.policy()
	if err != nil {
		return err
	}
	policy.addExempt(owner)
	return e.state.TaxPolicyPut(policy)
}

// Transfer moves amount from one account to another under the tax policy. The
// tax portion is burned from total supply, never held by any account.
func (e *Engine) Transfer(from [20]byte, to [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	sender, err := e.account(from)
	if err != nil {
		return err
	}
	if sender.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	policy, err := e.policy()
	if err != nil {
		return err
	}
	tax := big.NewInt(0)
	if !policy.IsExempt(from) && !policy.IsExempt(to) {
		tax = policy.taxOn(amount)
	}
	net := new(big.Int).Sub(amount, tax)

	sender.Balance = new(big.Int).Sub(sender.Balance, amount)
	if err := e.state.PutAccount(from[:], sender); err != nil {
		return err
	}
	recipient, err := e.account(to)
	if err != nil {
		return err
	}
	recipient.Balance = new(big.Int).Add(recipient.Balance, net)
	if err := e.state.PutAccount(to[:], recipient); err != nil {
		return err
	}
	if tax.Sign() > 0 {
		if err := e.burnSupply(tax); err != nil {
			return err
		}
		e.emit(events.TokenBurned{Amount: new(big.Int).Set(tax), Reason: "transfer-tax"})
	}
	e.emit(events.TokenTransferred{From: from, To: to, Net: net, Tax: tax})
	return nil
}

// Approve sets the owner/spender allowance to exactly amount, overwriting any
// previous grant.
func (e *Engine) Approve(owner [20]byte, spender [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if err := e.state.TokenAllowancePut(owner, spender, new(big.Int).Set(amount)); err != nil {
		return err
	}
	e.emit(events.TokenApproved{Owner: owner, Spender: spender, Amount: new(big.Int).Set(amount)})
	return nil
}

// TransferFrom spends the owner's allowance granted to spender, then performs
// the transfer under the same tax rule as Transfer.
func (e *Engine) TransferFrom(spender [20]byte, owner [20]byte, to [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if err := e.spendAllowance(owner, spender, amount); err != nil {
		return err
	}
	return e.Transfer(owner, to, amount)
}

// spendAllowance checks and decrements the owner/spender token allowance.
func (e *Engine) spendAllowance(owner [20]byte, spender [20]byte, amount *big.Int) error {
	allowance, err := e.state.TokenAllowanceGet(owner, spender)
	if err != nil {
		return err
	}
	if allowance == nil {
		allowance = big.NewInt(0)
	}
	if allowance.Cmp(amount) < 0 {
		return ErrAllowanceExceeded
	}
	remaining := new(big.Int).Sub(allowance, amount)
	return e.state.TokenAllowancePut(owner, spender, remaining)
}

// SpendAllowance exposes allowance consumption to the content ledger for
// delegated like deposits. The sender balance check happens in the follow-up
// escrow debit.
func (e *Engine) SpendAllowance(owner [20]byte, spender [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return e.spendAllowance(owner, spender, amount)
}

// --- Admin-gated tax policy mutations ---

func (e *Engine) requireAdmin(caller [20]byte) error {
	if caller != e.admin {
		return ErrUnauthorized
	}
	return nil
}

// SetTaxEnabled toggles tax collection on ordinary transfers.
func (e *Engine) SetTaxEnabled(caller [20]byte, enabled bool) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	policy, err := e.policy()
	if err != nil {
		return err
	}
	policy.Enabled = enabled
	if err := e.state.TaxPolicyPut(policy); err != nil {
		return err
	}
	e.emit(events.TaxPolicyUpdated{Enabled: policy.Enabled, RateBps: policy.RateBps})
	return nil
}

// SetTaxRate overwrites the basis-point tax rate.
func (e *Engine) SetTaxRate(caller [20]byte, rateBps uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if rateBps > 10_000 {
		return ErrInvalidAmount
	}
	policy, err := e.policy()
	if err != nil {
		return err
	}
	policy.RateBps = rateBps
	if err := e.state.TaxPolicyPut(policy); err != nil {
		return err
	}
	e.emit(events.TaxPolicyUpdated{Enabled: policy.Enabled, RateBps: policy.RateBps})
	return nil
}

// AddTaxExempt places an address on the tax-free allowlist. Idempotent.
func (e *Engine) AddTaxExempt(caller [20]byte, addr [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	policy, err := e.policy()
	if err != nil {
		return err
	}
	if !policy.addExempt(addr) {
		return nil
	}
	return e.state.TaxPolicyPut(policy)
}

// RemoveTaxExempt removes an address from the tax-free allowlist. Idempotent.
func (e *Engine) RemoveTaxExempt(caller [20]byte, addr [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	policy, err := e.policy()
	if err != nil {
		return err
	}
	if !policy.removeExempt(addr) {
		return nil
	}
	return e.state.TaxPolicyPut(policy)
}

// --- Escrow primitives (content ledger only, tax-free) ---

// Debit removes amount from the account balance without crediting anyone. The
// caller is responsible for depositing the value into escrow or burning it
// before the operation completes.
func (e *Engine) Debit(account [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	acc, err := e.account(account)
	if err != nil {
		return err
	}
	if acc.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	acc.Balance = new(big.Int).Sub(acc.Balance, amount)
	return e.state.PutAccount(account[:], acc)
}

// CreditEscrow deposits a previously debited amount into the escrow pool.
func (e *Engine) CreditEscrow(amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	pool, err := e.account(EscrowAddress)
	if err != nil {
		return err
	}
	pool.Balance = new(big.Int).Add(pool.Balance, amount)
	return e.state.PutAccount(EscrowAddress[:], pool)
}

// BurnFromEscrow destroys amount held by the escrow pool, reducing total
// supply.
func (e *Engine) BurnFromEscrow(amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	pool, err := e.account(EscrowAddress)
	if err != nil {
		return err
	}
	if pool.Balance.Cmp(amount) < 0 {
		return errEscrowUnderfunded
	}
	pool.Balance = new(big.Int).Sub(pool.Balance, amount)
	if err := e.state.PutAccount(EscrowAddress[:], pool); err != nil {
		return err
	}
	if err := e.burnSupply(amount); err != nil {
		return err
	}
	e.emit(events.TokenBurned{Amount: new(big.Int).Set(amount), Reason: "dislike-settlement"})
	return nil
}

// PayFromEscrow moves amount from the escrow pool to the account, tax-free.
func (e *Engine) PayFromEscrow(account [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	pool, err := e.account(EscrowAddress)
	if err != nil {
		return err
	}
	if pool.Balance.Cmp(amount) < 0 {
		return errEscrowUnderfunded
	}
	pool.Balance = new(big.Int).Sub(pool.Balance, amount)
	if err := e.state.PutAccount(EscrowAddress[:], pool); err != nil {
		return err
	}
	recipient, err := e.account(account)
	if err != nil {
		return err
	}
	recipient.Balance = new(big.Int).Add(recipient.Balance, amount)
	return e.state.PutAccount(account[:], recipient)
}

func (e *Engine) burnSupply(amount *big.Int) error {
	supply, err := e.state.TokenSupply()
	if err != nil {
		return err
	}
	updated := new(big.Int).Sub(supply, amount)
	if updated.Sign() < 0 {
		return errEscrowUnderfunded
	}
	return e.state.SetTokenSupply(updated)
}

// --- Queries ---

// BalanceOf returns the balance held by the address. Missing accounts read as
// zero.
func (e *Engine) BalanceOf(addr [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	acc, err := e.account(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(acc.Balance), nil
}

// TotalSupply returns the current token supply.
func (e *Engine) TotalSupply() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	supply, err := e.state.TokenSupply()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(supply), nil
}

// Allowance returns the remaining owner/spender token allowance.
func (e *Engine) Allowance(owner [20]byte, spender [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	allowance, err := e.state.TokenAllowanceGet(owner, spender)
	if err != nil {
		return nil, err
	}
	if allowance == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(allowance), nil
}

// IsTaxExempt reports allowlist membership for the address.
func (e *Engine) IsTaxExempt(addr [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	policy, err := e.policy()
	if err != nil {
		return false, err
	}
	return policy.IsExempt(addr), nil
}

// Policy returns a copy of the current tax policy.
func (e *Engine) Policy() (*TaxPolicy, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	policy, err := e.policy()
	if err != nil {
		return nil, err
	}
	return policy.Clone(), nil
}

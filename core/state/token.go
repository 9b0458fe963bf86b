package state

import (
	"fmt"
	"math/big"

	"likechain/native/token"
)

// TokenSupply returns the persisted total supply. Missing entries default to
// zero.
func (m *Manager) TokenSupply() (*big.Int, error) {
	supply, err := m.readBigInt(tokenSupplyKey)
	if err != nil {
		return nil, err
	}
	if supply == nil {
		return big.NewInt(0), nil
	}
	return supply, nil
}

// SetTokenSupply overwrites the stored total supply.
func (m *Manager) SetTokenSupply(total *big.Int) error {
	if total != nil && total.Sign() < 0 {
		return fmt.Errorf("state: token supply cannot be negative")
	}
	return m.writeBigInt(tokenSupplyKey, total)
}

type storedTaxPolicy struct {
	Enabled bool
	RateBps uint32
	Exempt  [][20]byte
}

// TaxPolicyGet loads the stored tax policy, or nil when none was ever written.
func (m *Manager) TaxPolicyGet() (*token.TaxPolicy, error) {
	stored := new(storedTaxPolicy)
	ok, err := m.readRLP(taxPolicyKey, stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	policy := &token.TaxPolicy{Enabled: stored.Enabled, RateBps: stored.RateBps}
	if len(stored.Exempt) > 0 {
		policy.Exempt = make([][20]byte, len(stored.Exempt))
		copy(policy.Exempt, stored.Exempt)
	}
	return policy, nil
}

// TaxPolicyPut persists the tax policy.
func (m *Manager) TaxPolicyPut(policy *token.TaxPolicy) error {
	if policy == nil {
		return fmt.Errorf("state: tax policy must not be nil")
	}
	stored := &storedTaxPolicy{Enabled: policy.Enabled, RateBps: policy.RateBps}
	if len(policy.Exempt) > 0 {
		stored.Exempt = make([][20]byte, len(policy.Exempt))
		copy(stored.Exempt, policy.Exempt)
	}
	return m.writeRLP(taxPolicyKey, stored)
}

func tokenAllowanceKey(owner [20]byte, spender [20]byte) []byte {
	return compositeKey(tokenAllowancePrefix, owner[:], spender[:])
}

// TokenAllowanceGet returns the stored owner/spender allowance, or nil when
// none was granted.
func (m *Manager) TokenAllowanceGet(owner [20]byte, spender [20]byte) (*big.Int, error) {
	return m.readBigInt(tokenAllowanceKey(owner, spender))
}

// TokenAllowancePut persists the owner/spender allowance.
func (m *Manager) TokenAllowancePut(owner [20]byte, spender [20]byte, amount *big.Int) error {
	return m.writeBigInt(tokenAllowanceKey(owner, spender), amount)
}

package token

import (
	"bytes"
	"math/big"
	"sort"
)

// DefaultTaxRateBps is the transfer tax applied when no policy has been stored.
const DefaultTaxRateBps uint32 = 600

// TaxPolicy is the process-wide transfer tax configuration. Exempt holds the
// tax-free allowlist sorted by address bytes so the encoding stays canonical.
type TaxPolicy struct {
	Enabled bool
	RateBps uint32
	Exempt  [][20]byte
}

// DefaultTaxPolicy returns the policy used before any admin mutation.
func DefaultTaxPolicy() *TaxPolicy {
	return &TaxPolicy{Enabled: false, RateBps: DefaultTaxRateBps}
}

// Clone returns a deep copy of the policy.
func (p *TaxPolicy) Clone() *TaxPolicy {
	if p == nil {
		return nil
	}
	clone := &TaxPolicy{Enabled: p.Enabled, RateBps: p.RateBps}
	if len(p.Exempt) > 0 {
		clone.Exempt = make([][20]byte, len(p.Exempt))
		copy(clone.Exempt, p.Exempt)
	}
	return clone
}

// IsExempt reports whether the address sits on the tax-free allowlist.
func (p *TaxPolicy) IsExempt(addr [20]byte) bool {
	if p == nil {
		return false
	}
	for _, entry := range p.Exempt {
		if entry == addr {
			return true
		}
	}
	return false
}

func (p *TaxPolicy) addExempt(addr [20]byte) bool {
	if p.IsExempt(addr) {
		return false
	}
	p.Exempt = append(p.Exempt, addr)
	sortExempt(p.Exempt)
	return true
}

func (p *TaxPolicy) removeExempt(addr [20]byte) bool {
	for i, entry := range p.Exempt {
		if entry == addr {
			p.Exempt = append(p.Exempt[:i], p.Exempt[i+1:]...)
			return true
		}
	}
	return false
}

func sortExempt(entries [][20]byte) {
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i][:], entries[j][:]) < 0
	})
}

// taxOn computes the truncated basis-point tax owed on amount under the policy.
func (p *TaxPolicy) taxOn(amount *big.Int) *big.Int {
	if p == nil || !p.Enabled || p.RateBps == 0 || amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0)
	}
	tax := new(big.Int).Mul(amount, big.NewInt(int64(p.RateBps)))
	return tax.Div(tax, big.NewInt(10_000))
}

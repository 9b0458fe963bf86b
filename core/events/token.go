package events

import (
	"math/big"

	"likechain/core/types"
	"likechain/crypto"
)

const (
	TypeTokenTransferred = "token.transferred"
	TypeTokenApproved    = "token.approved"
	TypeTokenBurned      = "token.burned"
	TypeTaxPolicyUpdated = "token.tax.updated"
)

// TokenTransferred records a completed balance movement. Net carries the amount
// actually delivered after any transfer tax.
type TokenTransferred struct {
	From [20]byte
	To   [20]byte
	Net  *big.Int
	Tax  *big.Int
}

func (TokenTransferred) EventType() string { return TypeTokenTransferred }

func (e TokenTransferred) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenTransferred,
		Attributes: map[string]string{
			"from": crypto.NewAddress(e.From).String(),
			"to":   crypto.NewAddress(e.To).String(),
			"net":  formatAmount(e.Net),
			"tax":  formatAmount(e.Tax),
		},
	}
}

// TokenApproved records an allowance being set to a new value.
type TokenApproved struct {
	Owner   [20]byte
	Spender [20]byte
	Amount  *big.Int
}

func (TokenApproved) EventType() string { return TypeTokenApproved }

func (e TokenApproved) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenApproved,
		Attributes: map[string]string{
			"owner":   crypto.NewAddress(e.Owner).String(),
			"spender": crypto.NewAddress(e.Spender).String(),
			"amount":  formatAmount(e.Amount),
		},
	}
}

// TokenBurned records supply destroyed by tax collection or dislike settlement.
type TokenBurned struct {
	Amount *big.Int
	Reason string
}

func (TokenBurned) EventType() string { return TypeTokenBurned }

func (e TokenBurned) Event() *types.Event {
	return &types.Event{
		Type: TypeTokenBurned,
		Attributes: map[string]string{
			"amount": formatAmount(e.Amount),
			"reason": e.Reason,
		},
	}
}

// TaxPolicyUpdated records admin changes to the transfer tax configuration.
type TaxPolicyUpdated struct {
	Enabled bool
	RateBps uint32
}

func (TaxPolicyUpdated) EventType() string { return TypeTaxPolicyUpdated }

func (e TaxPolicyUpdated) Event() *types.Event {
	enabled := "false"
	if e.Enabled {
		enabled = "true"
	}
	return &types.Event{
		Type: TypeTaxPolicyUpdated,
		Attributes: map[string]string{
			"enabled": enabled,
			"rateBps": uintToString(uint64(e.RateBps)),
		},
	}
}

package state

import (
	"fmt"
	"math/big"

	"likechain/core/types"
)

type storedAccount struct {
	Nonce   uint64
	Balance *big.Int
}

func accountKey(addr []byte) []byte {
	return compositeKey(accountPrefix, addr)
}

// GetAccount loads the account stored under the address. Unknown addresses
// return nil so implicit creation stays with the engines.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	if len(addr) == 0 {
		return nil, fmt.Errorf("state: address must not be empty")
	}
	stored := new(storedAccount)
	ok, err := m.readRLP(accountKey(addr), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	balance := big.NewInt(0)
	if stored.Balance != nil {
		balance = new(big.Int).Set(stored.Balance)
	}
	return &types.Account{Nonce: stored.Nonce, Balance: balance}, nil
}

// PutAccount persists the account under the address.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	if len(addr) == 0 {
		return fmt.Errorf("state: address must not be empty")
	}
	if account == nil {
		return fmt.Errorf("state: account must not be nil")
	}
	balance := big.NewInt(0)
	if account.Balance != nil {
		if account.Balance.Sign() < 0 {
			return fmt.Errorf("state: account balance cannot be negative")
		}
		balance = new(big.Int).Set(account.Balance)
	}
	return m.writeRLP(accountKey(addr), &storedAccount{Nonce: account.Nonce, Balance: balance})
}

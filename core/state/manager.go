package state

import (
	"encoding/binary"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"likechain/storage"
)

// Manager provides typed read/write access to every ledger table on top of the
// raw key-value store. It satisfies the engineState interfaces of the token and
// content engines, so both persist through the same Database.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var (
	accountPrefix          = []byte("account:")
	tokenSupplyKey         = ethcrypto.Keccak256([]byte("token/supply"))
	taxPolicyKey           = ethcrypto.Keccak256([]byte("token/tax-policy"))
	tokenAllowancePrefix   = []byte("token/allowance:")
	contentRecordPrefix    = []byte("content/record:")
	contentCountPrefix     = []byte("content/count:")
	contentIndexPrefix     = []byte("content/index:")
	reactionPrefix         = []byte("content/reaction:")
	reactorTotalPrefix     = []byte("content/reactor:")
	contentAllowancePrefix = []byte("content/allowance:")
)

// compositeKey hashes the prefix plus each part, length-delimiting variable
// sized parts so adjacent fields can never alias.
func compositeKey(prefix []byte, parts ...[]byte) []byte {
	buf := make([]byte, 0, len(prefix)+len(parts)*24)
	buf = append(buf, prefix...)
	for _, part := range parts {
		var size [4]byte
		binary.BigEndian.PutUint32(size[:], uint32(len(part)))
		buf = append(buf, size[:]...)
		buf = append(buf, part...)
	}
	return ethcrypto.Keccak256(buf)
}

func u64Bytes(v uint64) []byte {
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], v)
	return out[:]
}

func (m *Manager) readRLP(key []byte, out interface{}) (bool, error) {
	data, ok, err := m.db.Get(key)
	if err != nil {
		return false, err
	}
	if !ok || len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) writeRLP(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}

func (m *Manager) readBigInt(key []byte) (*big.Int, error) {
	value := new(big.Int)
	ok, err := m.readRLP(key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (m *Manager) writeBigInt(key []byte, value *big.Int) error {
	if value == nil {
		value = big.NewInt(0)
	}
	if value.Sign() < 0 {
		return fmt.Errorf("state: refusing to store negative value")
	}
	return m.writeRLP(key, value)
}

func (m *Manager) readUint64(key []byte) (uint64, error) {
	var value uint64
	ok, err := m.readRLP(key, &value)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return value, nil
}

package state

import (
	"fmt"
	"math/big"

	"likechain/native/content"
)

type storedContent struct {
	Creator   [20]byte
	ID        string
	Likes     *big.Int
	Dislikes  *big.Int
	Burned    *big.Int
	Withdrawn *big.Int
	Reactions uint64
	CreatedAt uint64
}

func newStoredContent(record *content.Content) *storedContent {
	stored := &storedContent{
		Creator:   record.Creator,
		ID:        record.ID,
		Likes:     big.NewInt(0),
		Dislikes:  big.NewInt(0),
		Burned:    big.NewInt(0),
		Withdrawn: big.NewInt(0),
		Reactions: record.Reactions,
	}
	if record.Likes != nil {
		stored.Likes = new(big.Int).Set(record.Likes)
	}
	if record.Dislikes != nil {
		stored.Dislikes = new(big.Int).Set(record.Dislikes)
	}
	if record.Burned != nil {
		stored.Burned = new(big.Int).Set(record.Burned)
	}
	if record.Withdrawn != nil {
		stored.Withdrawn = new(big.Int).Set(record.Withdrawn)
	}
	if record.CreatedAt > 0 {
		stored.CreatedAt = uint64(record.CreatedAt)
	}
	return stored
}

func (s *storedContent) toContent() *content.Content {
	record := &content.Content{
		Creator:   s.Creator,
		ID:        s.ID,
		Likes:     big.NewInt(0),
		Dislikes:  big.NewInt(0),
		Burned:    big.NewInt(0),
		Withdrawn: big.NewInt(0),
		Reactions: s.Reactions,
		CreatedAt: int64(s.CreatedAt),
	}
	if s.Likes != nil {
		record.Likes = new(big.Int).Set(s.Likes)
	}
	if s.Dislikes != nil {
		record.Dislikes = new(big.Int).Set(s.Dislikes)
	}
	if s.Burned != nil {
		record.Burned = new(big.Int).Set(s.Burned)
	}
	if s.Withdrawn != nil {
		record.Withdrawn = new(big.Int).Set(s.Withdrawn)
	}
	return record
}

func contentRecordKey(creator [20]byte, id string) []byte {
	return compositeKey(contentRecordPrefix, creator[:], []byte(id))
}

// ContentGet loads the record stored for the (creator, id) pair.
func (m *Manager) ContentGet(creator [20]byte, id string) (*content.Content, bool, error) {
	stored := new(storedContent)
	ok, err := m.readRLP(contentRecordKey(creator, id), stored)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return stored.toContent(), true, nil
}

// ContentPut persists the record under its (creator, id) pair.
func (m *Manager) ContentPut(record *content.Content) error {
	if record == nil {
		return fmt.Errorf("state: content record must not be nil")
	}
	if record.ID == "" {
		return fmt.Errorf("state: content id required")
	}
	return m.writeRLP(contentRecordKey(record.Creator, record.ID), newStoredContent(record))
}

func contentCountKey(creator [20]byte) []byte {
	return compositeKey(contentCountPrefix, creator[:])
}

func contentIndexKey(creator [20]byte, index uint64) []byte {
	return compositeKey(contentIndexPrefix, creator[:], u64Bytes(index))
}

// ContentIndexAppend records the id at the next position in the creator's
// publication order and returns the new count.
func (m *Manager) ContentIndexAppend(creator [20]byte, id string) (uint64, error) {
	count, err := m.readUint64(contentCountKey(creator))
	if err != nil {
		return 0, err
	}
	if err := m.writeRLP(contentIndexKey(creator, count), id); err != nil {
		return 0, err
	}
	updated := count + 1
	if err := m.writeRLP(contentCountKey(creator), updated); err != nil {
		return 0, err
	}
	return updated, nil
}

// ContentIDByIndex resolves the id stored at the 0-based position in the
// creator's publication order.
func (m *Manager) ContentIDByIndex(creator [20]byte, index uint64) (string, bool, error) {
	var id string
	ok, err := m.readRLP(contentIndexKey(creator, index), &id)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return id, true, nil
}

// ContentCount returns how many records the creator has published.
func (m *Manager) ContentCount(creator [20]byte) (uint64, error) {
	return m.readUint64(contentCountKey(creator))
}

type storedReaction struct {
	Seq     uint64
	Reactor [20]byte
	Kind    uint8
	Amount  *big.Int
}

func reactionKey(creator [20]byte, id string, seq uint64) []byte {
	return compositeKey(reactionPrefix, creator[:], []byte(id), u64Bytes(seq))
}

// ReactionGet loads the reaction stored under the 1-based sequence number.
func (m *Manager) ReactionGet(creator [20]byte, id string, seq uint64) (*content.Reaction, bool, error) {
	stored := new(storedReaction)
	ok, err := m.readRLP(reactionKey(creator, id, seq), stored)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	reaction := &content.Reaction{
		Seq:     stored.Seq,
		Reactor: stored.Reactor,
		Kind:    content.ReactionKind(stored.Kind),
		Amount:  big.NewInt(0),
	}
	if stored.Amount != nil {
		reaction.Amount = new(big.Int).Set(stored.Amount)
	}
	if !reaction.Kind.Valid() {
		return nil, false, fmt.Errorf("state: corrupt reaction kind %d", stored.Kind)
	}
	return reaction, true, nil
}

// ReactionPut appends the reaction to the record's log. Entries are immutable;
// overwriting an existing sequence number fails.
func (m *Manager) ReactionPut(creator [20]byte, id string, reaction *content.Reaction) error {
	if reaction == nil {
		return fmt.Errorf("state: reaction must not be nil")
	}
	if reaction.Seq == 0 {
		return fmt.Errorf("state: reaction sequence must be 1-based")
	}
	if !reaction.Kind.Valid() {
		return fmt.Errorf("state: invalid reaction kind %d", reaction.Kind)
	}
	key := reactionKey(creator, id, reaction.Seq)
	if _, exists, err := m.db.Get(key); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("state: reaction %d already recorded", reaction.Seq)
	}
	stored := &storedReaction{
		Seq:     reaction.Seq,
		Reactor: reaction.Reactor,
		Kind:    uint8(reaction.Kind),
		Amount:  big.NewInt(0),
	}
	if reaction.Amount != nil {
		stored.Amount = new(big.Int).Set(reaction.Amount)
	}
	return m.writeRLP(key, stored)
}

func reactorTotalKey(creator [20]byte, id string, reactor [20]byte) []byte {
	return compositeKey(reactorTotalPrefix, creator[:], []byte(id), reactor[:])
}

// ReactorLikeTotalGet returns the cumulative like value the reactor has
// contributed to the record, or nil when they never liked it.
func (m *Manager) ReactorLikeTotalGet(creator [20]byte, id string, reactor [20]byte) (*big.Int, error) {
	return m.readBigInt(reactorTotalKey(creator, id, reactor))
}

// ReactorLikeTotalPut persists the reactor's cumulative like value.
func (m *Manager) ReactorLikeTotalPut(creator [20]byte, id string, reactor [20]byte, total *big.Int) error {
	return m.writeBigInt(reactorTotalKey(creator, id, reactor), total)
}

func contentAllowanceKey(creator [20]byte, id string, spender [20]byte) []byte {
	return compositeKey(contentAllowancePrefix, creator[:], []byte(id), spender[:])
}

// ContentAllowanceGet returns the stored content-scoped allowance, or nil when
// none was granted.
func (m *Manager) ContentAllowanceGet(creator [20]byte, id string, spender [20]byte) (*big.Int, error) {
	return m.readBigInt(contentAllowanceKey(creator, id, spender))
}

// ContentAllowancePut persists the content-scoped allowance.
func (m *Manager) ContentAllowancePut(creator [20]byte, id string, spender [20]byte, amount *big.Int) error {
	return m.writeBigInt(contentAllowanceKey(creator, id, spender), amount)
}

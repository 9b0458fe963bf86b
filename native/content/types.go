package content

import "math/big"

// ReactionKind distinguishes the two vote directions in the reaction log.
type ReactionKind uint8

const (
	ReactionLike    ReactionKind = 1
	ReactionDislike ReactionKind = 2
)

// Valid reports whether the kind is one of the two known directions.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

func (k ReactionKind) String() string {
	switch k {
	case ReactionLike:
		return "like"
	case ReactionDislike:
		return "dislike"
	default:
		return "unknown"
	}
}

// Reaction is one immutable entry in a content item's append-only vote log.
// Seq is 1-based and monotonic per content item.
type Reaction struct {
	Seq     uint64       `json:"seq"`
	Reactor [20]byte     `json:"reactor"`
	Kind    ReactionKind `json:"kind"`
	Amount  *big.Int     `json:"amount"`
}

// Clone returns a deep copy of the reaction.
func (r *Reaction) Clone() *Reaction {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Amount != nil {
		clone.Amount = new(big.Int).Set(r.Amount)
	}
	return &clone
}

// Content is the cumulative accounting record for one (creator, id) pair.
//
// Likes, Dislikes, Burned and Withdrawn only ever grow. Burned tracks how much
// of the dislike total has actually been destroyed from escrow; the remainder
// (Dislikes − Burned) is debt settled lazily by future like deposits. The
// record's share of the escrow pool is Likes − Burned − Withdrawn.
type Content struct {
	Creator   [20]byte `json:"creator"`
	ID        string   `json:"id"`
	Likes     *big.Int `json:"likes"`
	Dislikes  *big.Int `json:"dislikes"`
	Burned    *big.Int `json:"burned"`
	Withdrawn *big.Int `json:"withdrawn"`
	Reactions uint64   `json:"reactions"`
	CreatedAt int64    `json:"createdAt"`
}

// Clone returns a deep copy of the content record.
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Likes != nil {
		clone.Likes = new(big.Int).Set(c.Likes)
	}
	if c.Dislikes != nil {
		clone.Dislikes = new(big.Int).Set(c.Dislikes)
	}
	if c.Burned != nil {
		clone.Burned = new(big.Int).Set(c.Burned)
	}
	if c.Withdrawn != nil {
		clone.Withdrawn = new(big.Int).Set(c.Withdrawn)
	}
	return &clone
}

// AvailableEarnings returns Likes − Dislikes − Withdrawn, floored at zero.
// A record deep in dislike debt reports zero rather than a negative value.
func (c *Content) AvailableEarnings() *big.Int {
	available := rawAvailable(c)
	if available.Sign() < 0 {
		return big.NewInt(0)
	}
	return available
}

// Backing returns Likes − Burned − Withdrawn: the share of the escrow pool
// attributable to this record.
func (c *Content) Backing() *big.Int {
	backing := new(big.Int).Set(zeroIfNil(c.Likes))
	backing.Sub(backing, zeroIfNil(c.Burned))
	backing.Sub(backing, zeroIfNil(c.Withdrawn))
	return backing
}

// OutstandingDebt returns Dislikes − Burned: the cast votes not yet matched by
// a burn.
func (c *Content) OutstandingDebt() *big.Int {
	debt := new(big.Int).Set(zeroIfNil(c.Dislikes))
	return debt.Sub(debt, zeroIfNil(c.Burned))
}

func rawAvailable(c *Content) *big.Int {
	available := new(big.Int).Set(zeroIfNil(c.Likes))
	available.Sub(available, zeroIfNil(c.Dislikes))
	available.Sub(available, zeroIfNil(c.Withdrawn))
	return available
}

func zeroIfNil(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}

func newContent(creator [20]byte, id string, now int64) *Content {
	return &Content{
		Creator:   creator,
		ID:        id,
		Likes:     big.NewInt(0),
		Dislikes:  big.NewInt(0),
		Burned:    big.NewInt(0),
		Withdrawn: big.NewInt(0),
		CreatedAt: now,
	}
}

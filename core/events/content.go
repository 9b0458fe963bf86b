package events

import (
	"math/big"
	"strconv"

	"likechain/core/types"
	"likechain/crypto"
)

const (
	TypeContentCreated   = "content.created"
	TypeContentLiked     = "content.liked"
	TypeContentDisliked  = "content.disliked"
	TypeContentWithdrawn = "content.withdrawn"
)

// ContentCreated is emitted when a creator registers a new content record.
type ContentCreated struct {
	Creator   [20]byte
	ContentID string
	Index     uint64
}

func (ContentCreated) EventType() string { return TypeContentCreated }

func (e ContentCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeContentCreated,
		Attributes: map[string]string{
			"creator":   crypto.NewAddress(e.Creator).String(),
			"contentId": e.ContentID,
			"index":     uintToString(e.Index),
		},
	}
}

// ContentLiked is emitted for every like deposit. Settled carries the portion
// burned against outstanding dislike debt.
type ContentLiked struct {
	Creator   [20]byte
	ContentID string
	Reactor   [20]byte
	Amount    *big.Int
	Settled   *big.Int
}

func (ContentLiked) EventType() string { return TypeContentLiked }

func (e ContentLiked) Event() *types.Event {
	return &types.Event{
		Type: TypeContentLiked,
		Attributes: map[string]string{
			"creator":   crypto.NewAddress(e.Creator).String(),
			"contentId": e.ContentID,
			"reactor":   crypto.NewAddress(e.Reactor).String(),
			"amount":    formatAmount(e.Amount),
			"settled":   formatAmount(e.Settled),
		},
	}
}

// ContentDisliked is emitted for every dislike vote. Burned carries the portion
// destroyed immediately from the content's backing.
type ContentDisliked struct {
	Creator   [20]byte
	ContentID string
	Disliker  [20]byte
	Amount    *big.Int
	Burned    *big.Int
}

func (ContentDisliked) EventType() string { return TypeContentDisliked }

func (e ContentDisliked) Event() *types.Event {
	return &types.Event{
		Type: TypeContentDisliked,
		Attributes: map[string]string{
			"creator":   crypto.NewAddress(e.Creator).String(),
			"contentId": e.ContentID,
			"disliker":  crypto.NewAddress(e.Disliker).String(),
			"amount":    formatAmount(e.Amount),
			"burned":    formatAmount(e.Burned),
		},
	}
}

// ContentWithdrawn is emitted whenever withdrawn earnings are booked against a
// record. Internal marks moves where the value stays in escrow (a re-like
// funding another record) rather than being paid out.
type ContentWithdrawn struct {
	Creator   [20]byte
	ContentID string
	To        [20]byte
	Amount    *big.Int
	Internal  bool
}

func (ContentWithdrawn) EventType() string { return TypeContentWithdrawn }

func (e ContentWithdrawn) Event() *types.Event {
	return &types.Event{
		Type: TypeContentWithdrawn,
		Attributes: map[string]string{
			"creator":   crypto.NewAddress(e.Creator).String(),
			"contentId": e.ContentID,
			"to":        crypto.NewAddress(e.To).String(),
			"amount":    formatAmount(e.Amount),
			"internal":  strconv.FormatBool(e.Internal),
		},
	}
}

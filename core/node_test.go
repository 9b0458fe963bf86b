package core

import (
	"errors"
	"math/big"
	"testing"

	"likechain/core/events"
	"likechain/native/content"
	"likechain/native/token"
	"likechain/storage"
)

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func newTestNode(t *testing.T, db storage.Database, owner [20]byte, supply int64) *Node {
	t.Helper()
	node := NewNode(db)
	node.SetNowFunc(func() int64 { return 1_700_000_000 })
	if err := node.InitGenesis(owner, big.NewInt(supply)); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	return node
}

func TestGenesisIsIdempotentAcrossRestart(t *testing.T) {
	db := storage.NewMemDB()
	owner := addr(0x01)
	node := newTestNode(t, db, owner, 1_000_000)

	if err := node.Transfer(owner, addr(0x02), big.NewInt(100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	// A second node over the same database must not re-mint.
	restarted := NewNode(db)
	if err := restarted.InitGenesis(owner, big.NewInt(1_000_000)); err != nil {
		t.Fatalf("restart genesis: %v", err)
	}
	balance, err := restarted.BalanceOf(owner)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(999_900)) != 0 {
		t.Fatalf("owner balance = %s, want 999900", balance)
	}
	supply, err := restarted.TotalSupply()
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if supply.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("supply = %s, want 1000000", supply)
	}
}

func TestEndToEndContentLifecycle(t *testing.T) {
	db := storage.NewMemDB()
	owner := addr(0x01)
	admin := addr(0xAD)
	creator := addr(0x02)
	fan := addr(0x03)
	hater := addr(0x04)

	node := newTestNode(t, db, owner, 1_000_000)
	node.SetAdmin(admin)
	if err := node.SetTaxEnabled(admin, true); err != nil {
		t.Fatalf("enable tax: %v", err)
	}
	if err := node.Transfer(owner, fan, big.NewInt(10_000)); err != nil {
		t.Fatalf("fund fan: %v", err)
	}

	if _, err := node.CreateContent(creator, "clip"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := node.LikeContent(creator, "clip", fan, big.NewInt(1_000)); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := node.DislikeContent(creator, "clip", hater, big.NewInt(1_500)); err != nil {
		t.Fatalf("dislike: %v", err)
	}
	record, err := node.LikeContent(creator, "clip", fan, big.NewInt(1_000))
	if err != nil {
		t.Fatalf("settling like: %v", err)
	}

	if record.Likes.Cmp(big.NewInt(2_000)) != 0 || record.Burned.Cmp(big.NewInt(1_500)) != 0 {
		t.Fatalf("unexpected record after settlement: likes=%s burned=%s", record.Likes, record.Burned)
	}
	if record.AvailableEarnings().Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("available = %s, want 500", record.AvailableEarnings())
	}

	updated, paid, err := node.WithdrawAllContentEarning(creator, "clip", creator)
	if err != nil {
		t.Fatalf("withdraw all: %v", err)
	}
	if paid.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("paid = %s, want 500", paid)
	}
	if updated.AvailableEarnings().Sign() != 0 {
		t.Fatalf("available after drain = %s", updated.AvailableEarnings())
	}
	// Escrow payouts bypass the transfer tax.
	balance, err := node.BalanceOf(creator)
	if err != nil {
		t.Fatalf("creator balance: %v", err)
	}
	if balance.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("creator balance = %s, want untaxed 500", balance)
	}

	// Every token in existence is either in an account or in escrow.
	supply, err := node.TotalSupply()
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	total := big.NewInt(0)
	for _, a := range [][20]byte{owner, creator, fan, hater, token.EscrowAddress} {
		b, err := node.BalanceOf(a)
		if err != nil {
			t.Fatalf("balance of %x: %v", a, err)
		}
		total.Add(total, b)
	}
	if total.Cmp(supply) != 0 {
		t.Fatalf("sum of balances %s != supply %s", total, supply)
	}
}

func TestNodeBuffersEngineEvents(t *testing.T) {
	db := storage.NewMemDB()
	owner := addr(0x01)
	fan := addr(0x02)
	creator := addr(0x03)

	node := newTestNode(t, db, owner, 1_000_000)
	if err := node.Transfer(owner, fan, big.NewInt(1_000)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if _, err := node.CreateContent(creator, "clip"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := node.LikeContent(creator, "clip", fan, big.NewInt(100)); err != nil {
		t.Fatalf("like: %v", err)
	}

	var seen []string
	for _, evt := range node.Events() {
		seen = append(seen, evt.Type)
	}
	want := []string{
		events.TypeTokenTransferred,
		events.TypeContentCreated,
		events.TypeContentLiked,
	}
	if len(seen) != len(want) {
		t.Fatalf("event types = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("event %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestWithdrawnEventMarksInternalMoves(t *testing.T) {
	db := storage.NewMemDB()
	owner := addr(0x01)
	creator := addr(0x02)
	fan := addr(0x03)

	node := newTestNode(t, db, owner, 1_000_000)
	if err := node.Transfer(owner, fan, big.NewInt(10_000)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if _, err := node.CreateContent(creator, "src"); err != nil {
		t.Fatalf("create src: %v", err)
	}
	if _, err := node.CreateContent(creator, "tgt"); err != nil {
		t.Fatalf("create tgt: %v", err)
	}
	if _, err := node.LikeContent(creator, "src", fan, big.NewInt(500)); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := node.LikeContentWithAllContentEarning(creator, creator, "tgt", "src"); err != nil {
		t.Fatalf("composite like: %v", err)
	}
	if _, _, err := node.WithdrawAllContentEarning(creator, "tgt", creator); err != nil {
		t.Fatalf("withdraw all: %v", err)
	}

	var flags []string
	for _, evt := range node.Events() {
		if evt.Type == events.TypeContentWithdrawn {
			flags = append(flags, evt.Attributes["internal"])
		}
	}
	// The re-like's withdrawal stays in escrow; the payout does not.
	want := []string{"true", "false"}
	if len(flags) != len(want) {
		t.Fatalf("withdrawn events = %v, want %v", flags, want)
	}
	for i := range want {
		if flags[i] != want[i] {
			t.Fatalf("withdrawn event %d internal = %q, want %q", i, flags[i], want[i])
		}
	}
}

func TestNodeSurfacesEngineErrors(t *testing.T) {
	db := storage.NewMemDB()
	owner := addr(0x01)
	node := newTestNode(t, db, owner, 1_000)

	if err := node.Transfer(addr(0x09), addr(0x0A), big.NewInt(5)); !errors.Is(err, token.ErrInsufficientBalance) {
		t.Fatalf("unfunded transfer: got %v", err)
	}
	if _, err := node.GetContent(addr(0x09), "missing"); !errors.Is(err, content.ErrContentNotFound) {
		t.Fatalf("missing record: got %v", err)
	}
	if err := node.SetTaxRate(addr(0x09), 100); !errors.Is(err, token.ErrUnauthorized) {
		t.Fatalf("non-admin rate change: got %v", err)
	}
}

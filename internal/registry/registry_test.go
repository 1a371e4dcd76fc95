package registry

import (
	"strings"
	"testing"

	"github.com/split-ledger/internal/types"
)

func TestRegistry_Add(t *testing.T) {
	reg := NewRegistry()

	friend, err := reg.Add(&types.Friend{
		Name:     "Alice",
		WalletID: "0x742d35cc6634c0532925a3b844bc454e4438f44e",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if friend.ID == "" {
		t.Error("Expected friend ID to be set")
	}
	if friend.IsSelected {
		t.Error("New friend must start deselected")
	}
	if reg.Len() != 1 {
		t.Errorf("Expected 1 friend, got %d", reg.Len())
	}
}

func TestRegistry_Add_NameWithoutResolvedAddress(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Add(&types.Friend{
		Name:     "Alice",
		WalletID: "alice.eth",
		IsName:   true,
	})
	if err == nil {
		t.Fatal("Expected error for name-type friend without a resolved address")
	}

	serviceErr, ok := err.(*types.ServiceError)
	if !ok {
		t.Fatalf("Expected ServiceError, got %T", err)
	}
	if serviceErr.Code != types.ErrCodeResolutionIncomplete {
		t.Errorf("Expected code %s, got %s", types.ErrCodeResolutionIncomplete, serviceErr.Code)
	}
	if reg.Len() != 0 {
		t.Error("Rejected add must leave the registry unchanged")
	}
}

func TestRegistry_Add_NameWithResolvedAddress(t *testing.T) {
	reg := NewRegistry()

	friend, err := reg.Add(&types.Friend{
		Name:            "Alice",
		WalletID:        "alice.eth",
		ResolvedAddress: "0x742d35cc6634c0532925a3b844bc454e4438f44e",
		IsName:          true,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if friend.WalletID != "alice.eth" {
		t.Errorf("walletId = %s, want alice.eth", friend.WalletID)
	}
	if friend.ResolvedAddress == "" {
		t.Error("Resolved address must be retained")
	}
}

func TestRegistry_InsertionOrder(t *testing.T) {
	reg := NewRegistry()

	wallets := []string{
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"0x3333333333333333333333333333333333333333",
	}
	for _, w := range wallets {
		if _, err := reg.Add(&types.Friend{WalletID: w}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	list := reg.List()
	for i, friend := range list {
		if friend.WalletID != wallets[i] {
			t.Errorf("position %d: got %s, want %s", i, friend.WalletID, wallets[i])
		}
	}
}

func TestRegistry_SetSelected(t *testing.T) {
	reg := NewRegistry()
	friend, _ := reg.Add(&types.Friend{WalletID: "0x1111111111111111111111111111111111111111"})

	if err := reg.SetSelected(friend.ID, true); err != nil {
		t.Fatalf("SetSelected failed: %v", err)
	}

	// Idempotent: selecting again is a no-op
	if err := reg.SetSelected(friend.ID, true); err != nil {
		t.Fatalf("Repeated SetSelected failed: %v", err)
	}
	if len(reg.Selected()) != 1 {
		t.Errorf("Expected 1 selected friend, got %d", len(reg.Selected()))
	}

	if err := reg.SetSelected(friend.ID, false); err != nil {
		t.Fatalf("Deselect failed: %v", err)
	}
	if len(reg.Selected()) != 0 {
		t.Error("Expected no selected friends after deselect")
	}

	if err := reg.SetSelected("missing-id", true); err == nil {
		t.Error("Expected error for unknown friend id")
	}
}

func TestRegistry_ClearSelection(t *testing.T) {
	reg := NewRegistry()
	a, _ := reg.Add(&types.Friend{WalletID: "0x1111111111111111111111111111111111111111"})
	b, _ := reg.Add(&types.Friend{WalletID: "0x2222222222222222222222222222222222222222"})
	reg.SetSelected(a.ID, true)
	reg.SetSelected(b.ID, true)

	reg.ClearSelection()

	if len(reg.Selected()) != 0 {
		t.Error("Expected empty selection after ClearSelection")
	}
	if reg.Len() != 2 {
		t.Error("ClearSelection must not remove friends")
	}
}

func TestRegistry_CreateGroup_EmptySelection(t *testing.T) {
	reg := NewRegistry()
	reg.Add(&types.Friend{WalletID: "0x1111111111111111111111111111111111111111"})

	group, err := reg.CreateGroup("Trip", reg.Selected())
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group != nil {
		t.Error("Empty selection must be a no-op, not a group")
	}
	if reg.Len() != 1 {
		t.Error("Empty-selection CreateGroup must leave the registry unchanged")
	}
}

func TestRegistry_CreateGroup_SnapshotsDisplayStrings(t *testing.T) {
	reg := NewRegistry()
	a, _ := reg.Add(&types.Friend{
		Name:            "Alice",
		WalletID:        "alice.eth",
		ResolvedAddress: "0x742d35cc6634c0532925a3b844bc454e4438f44e",
		IsName:          true,
	})
	b, _ := reg.Add(&types.Friend{
		Name:         "Bob",
		WalletID:     "0x1111111111111111111111111111111111111111",
		ResolvedName: "bob.eth",
	})
	c, _ := reg.Add(&types.Friend{
		Name:     "Carol",
		WalletID: "0x2222222222222222222222222222222222222222",
	})
	reg.SetSelected(a.ID, true)
	reg.SetSelected(b.ID, true)
	reg.SetSelected(c.ID, true)

	group, err := reg.CreateGroup("Dinner", reg.Selected())
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group == nil {
		t.Fatal("Expected a group")
	}

	want := []string{
		"alice.eth", // name-type: wallet id as entered
		"bob.eth",   // address-type with a reverse name: the name wins
		"0x2222222222222222222222222222222222222222", // no reverse name: raw wallet id
	}
	if len(group.Members) != len(want) {
		t.Fatalf("Expected %d members, got %d", len(want), len(group.Members))
	}
	for i, member := range group.Members {
		if member != want[i] {
			t.Errorf("member %d = %s, want %s", i, member, want[i])
		}
	}

	if !strings.HasPrefix(group.ContentHash, "local-") {
		t.Errorf("Expected placeholder content hash, got %s", group.ContentHash)
	}
	if group.CreatedAt.IsZero() {
		t.Error("Expected createdAt to be set")
	}
}

func TestRegistry_CreateGroup_DoesNotClearSelection(t *testing.T) {
	// Formation and selection clearing are two separate steps; the caller
	// owns the second.
	reg := NewRegistry()
	a, _ := reg.Add(&types.Friend{WalletID: "0x1111111111111111111111111111111111111111"})
	reg.SetSelected(a.ID, true)

	if _, err := reg.CreateGroup("Trip", reg.Selected()); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if len(reg.Selected()) != 1 {
		t.Error("CreateGroup must not clear the selection itself")
	}
}

func TestDisplayString(t *testing.T) {
	withName := &types.Friend{WalletID: "0x1111111111111111111111111111111111111111", ResolvedName: "bob.eth"}
	if got := DisplayString(withName); got != "bob.eth" {
		t.Errorf("DisplayString = %s, want bob.eth", got)
	}

	withoutName := &types.Friend{WalletID: "0x1111111111111111111111111111111111111111"}
	if got := DisplayString(withoutName); got != withoutName.WalletID {
		t.Errorf("DisplayString = %s, want the wallet id", got)
	}
}

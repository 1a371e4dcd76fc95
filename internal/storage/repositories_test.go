package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/split-ledger/internal/types"
)

func TestGroupRepository_Roundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupTestDB(t)
	repo := NewGroupRepository(db)
	ctx := testContext(t)

	group := &types.Group{
		ID:          uuid.NewString(),
		Name:        "Roommates",
		ContentHash: "local-abcd1234",
		Members:     []string{"alice.eth", "0x1111111111111111111111111111111111111111"},
		CreatedAt:   time.Now().UTC(),
	}

	if err := repo.Create(ctx, group); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	fetched, err := repo.GetByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if fetched.Name != group.Name {
		t.Errorf("name = %s, want %s", fetched.Name, group.Name)
	}
	if len(fetched.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(fetched.Members))
	}

	// Placeholder hash replaced after the first successful upload
	if err := repo.UpdateContentHash(ctx, group.ID, "QmRealHash"); err != nil {
		t.Fatalf("UpdateContentHash() error = %v", err)
	}
	fetched, err = repo.GetByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if fetched.ContentHash != "QmRealHash" {
		t.Errorf("contentHash = %s, want QmRealHash", fetched.ContentHash)
	}
}

func TestGroupRepository_GetByID_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupTestDB(t)
	repo := NewGroupRepository(db)

	_, err := repo.GetByID(testContext(t), uuid.NewString())
	if err == nil {
		t.Fatal("Expected error for missing group")
	}
	serviceErr, ok := err.(*types.ServiceError)
	if !ok || serviceErr.Code != "NOT_FOUND" {
		t.Errorf("Expected NOT_FOUND ServiceError, got %v", err)
	}
}

func TestSplitRepository_Roundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupTestDB(t)
	repo := NewSplitRepository(db)
	ctx := testContext(t)

	account := "0x" + uuid.NewString()[:8]
	split := &types.SplitData{
		ID:          "split-" + uuid.NewString(),
		GroupID:     uuid.NewString(),
		GroupName:   "Dinner",
		Description: "Bill split for Dinner",
		TotalAmount: 60.00,
		PaidBy:      account,
		PaidByName:  "You",
		Members: []types.SplitMember{
			{ID: "member-0", Name: "alice.eth", WalletID: "alice.eth", Amount: 30},
			{ID: "member-1", Name: "bob.eth", WalletID: "bob.eth", Amount: 30},
		},
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		CreatedBy: account,
		SplitType: types.SplitEqual,
		Currency:  "USD",
	}

	if err := repo.Create(ctx, split); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	fetched, err := repo.GetByID(ctx, split.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if fetched.ContentID != "" {
		t.Errorf("Local split must carry no content id, got %q", fetched.ContentID)
	}
	if len(fetched.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(fetched.Members))
	}
	if fetched.SplitType != types.SplitEqual {
		t.Errorf("splitType = %s, want %s", fetched.SplitType, types.SplitEqual)
	}

	if err := repo.SetContentID(ctx, split.ID, "QmHash"); err != nil {
		t.Fatalf("SetContentID() error = %v", err)
	}
	fetched, err = repo.GetByID(ctx, split.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if fetched.ContentID != "QmHash" {
		t.Errorf("contentId = %s, want QmHash", fetched.ContentID)
	}

	splits, err := repo.ListByAccount(ctx, account)
	if err != nil {
		t.Fatalf("ListByAccount() error = %v", err)
	}
	if len(splits) != 1 {
		t.Errorf("expected 1 split for account, got %d", len(splits))
	}
}

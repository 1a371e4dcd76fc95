package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/split-ledger/internal/types"
)

// GroupRepository persists formed groups
type GroupRepository struct {
	db *PostgresDB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *PostgresDB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a group row. Members are stored as a snapshot array; the
// row is never updated except for its content hash.
func (r *GroupRepository) Create(ctx context.Context, group *types.Group) error {
	query := `
		INSERT INTO groups (id, name, content_hash, members, created_at, is_settled, total_amount, your_share, is_paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		group.ID,
		group.Name,
		group.ContentHash,
		group.Members,
		group.CreatedAt,
		group.IsSettled,
		group.TotalAmount,
		group.YourShare,
		group.IsPaid,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	return nil
}

// UpdateContentHash replaces the placeholder hash after the first
// successful upload.
func (r *GroupRepository) UpdateContentHash(ctx context.Context, groupID, contentHash string) error {
	query := `UPDATE groups SET content_hash = $2 WHERE id = $1`

	_, err := r.db.Pool().Exec(ctx, query, groupID, contentHash)
	if err != nil {
		return fmt.Errorf("failed to update group content hash: %w", err)
	}

	return nil
}

// GetByID fetches a group by id
func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (*types.Group, error) {
	query := `
		SELECT id, name, content_hash, members, created_at, is_settled, total_amount, your_share, is_paid
		FROM groups
		WHERE id = $1
	`

	var group types.Group
	err := r.db.Pool().QueryRow(ctx, query, groupID).Scan(
		&group.ID,
		&group.Name,
		&group.ContentHash,
		&group.Members,
		&group.CreatedAt,
		&group.IsSettled,
		&group.TotalAmount,
		&group.YourShare,
		&group.IsPaid,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.ServiceError{
				Code:    "NOT_FOUND",
				Message: fmt.Sprintf("group not found: %s", groupID),
			}
		}
		return nil, fmt.Errorf("failed to query group: %w", err)
	}

	return &group, nil
}

// List returns all groups, newest first
func (r *GroupRepository) List(ctx context.Context) ([]*types.Group, error) {
	query := `
		SELECT id, name, content_hash, members, created_at, is_settled, total_amount, your_share, is_paid
		FROM groups
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []*types.Group
	for rows.Next() {
		var group types.Group
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.ContentHash,
			&group.Members,
			&group.CreatedAt,
			&group.IsSettled,
			&group.TotalAmount,
			&group.YourShare,
			&group.IsPaid,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &group)
	}

	return groups, rows.Err()
}

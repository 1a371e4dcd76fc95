package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/split-ledger/internal/types"
)

// SplitRepository persists split records. A row is written for every
// created split regardless of upload outcome; this is the durable local
// copy the fail-open policy depends on.
type SplitRepository struct {
	db *PostgresDB
}

// NewSplitRepository creates a new split repository
func NewSplitRepository(db *PostgresDB) *SplitRepository {
	return &SplitRepository{db: db}
}

// Create inserts a split row with its members serialized as JSON
func (r *SplitRepository) Create(ctx context.Context, split *types.SplitData) error {
	members, err := json.Marshal(split.Members)
	if err != nil {
		return fmt.Errorf("failed to marshal split members: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339, split.CreatedAt)
	if err != nil {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO splits (id, group_id, group_name, description, total_amount, paid_by, paid_by_name,
			members, created_at, created_by, split_type, currency, is_settled, content_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = r.db.Pool().Exec(ctx, query,
		split.ID,
		split.GroupID,
		split.GroupName,
		split.Description,
		split.TotalAmount,
		split.PaidBy,
		split.PaidByName,
		members,
		createdAt,
		split.CreatedBy,
		string(split.SplitType),
		split.Currency,
		split.IsSettled,
		nullableString(split.ContentID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}

	return nil
}

// GetByID fetches a split by id
func (r *SplitRepository) GetByID(ctx context.Context, splitID string) (*types.SplitData, error) {
	query := `
		SELECT id, group_id, group_name, description, total_amount, paid_by, paid_by_name,
			members, created_at, created_by, split_type, currency, is_settled, COALESCE(content_id, '')
		FROM splits
		WHERE id = $1
	`

	row := r.db.Pool().QueryRow(ctx, query, splitID)
	split, err := scanSplit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.ServiceError{
				Code:    "NOT_FOUND",
				Message: fmt.Sprintf("split not found: %s", splitID),
			}
		}
		return nil, fmt.Errorf("failed to query split: %w", err)
	}

	return split, nil
}

// ListByAccount returns the splits created by an account, newest first
func (r *SplitRepository) ListByAccount(ctx context.Context, account string) ([]*types.SplitData, error) {
	query := `
		SELECT id, group_id, group_name, description, total_amount, paid_by, paid_by_name,
			members, created_at, created_by, split_type, currency, is_settled, COALESCE(content_id, '')
		FROM splits
		WHERE created_by = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool().Query(ctx, query, account)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer rows.Close()

	var splits []*types.SplitData
	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}

	return splits, rows.Err()
}

// SetContentID records the content identifier on an already-persisted split
func (r *SplitRepository) SetContentID(ctx context.Context, splitID, contentID string) error {
	query := `UPDATE splits SET content_id = $2 WHERE id = $1`

	_, err := r.db.Pool().Exec(ctx, query, splitID, contentID)
	if err != nil {
		return fmt.Errorf("failed to set split content id: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSplit(row rowScanner) (*types.SplitData, error) {
	var (
		split     types.SplitData
		members   []byte
		createdAt time.Time
		splitType string
	)

	if err := row.Scan(
		&split.ID,
		&split.GroupID,
		&split.GroupName,
		&split.Description,
		&split.TotalAmount,
		&split.PaidBy,
		&split.PaidByName,
		&members,
		&createdAt,
		&split.CreatedBy,
		&splitType,
		&split.Currency,
		&split.IsSettled,
		&split.ContentID,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(members, &split.Members); err != nil {
		return nil, fmt.Errorf("failed to unmarshal split members: %w", err)
	}

	split.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	split.SplitType = types.SplitType(splitType)

	return &split, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

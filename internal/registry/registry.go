// Package registry maintains the in-memory ordered friends list and forms
// groups from the current selection.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/split-ledger/internal/types"
)

// Registry is an append-only, insertion-ordered collection of friends.
// There is deliberately no remove operation.
type Registry struct {
	mu      sync.RWMutex
	friends []*types.Friend
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a friend to the registry and assigns it an id. A name-type
// friend must already carry a resolved address; adds submitted before
// forward resolution completes are rejected. An address-type friend's
// resolved name is best-effort and may be absent.
func (r *Registry) Add(friend *types.Friend) (*types.Friend, error) {
	if friend.IsName && friend.ResolvedAddress == "" {
		return nil, types.NewResolutionError(types.ErrCodeResolutionIncomplete,
			"resolution incomplete, please wait")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	friend.ID = uuid.NewString()
	friend.IsSelected = false
	r.friends = append(r.friends, friend)

	return friend, nil
}

// SetSelected toggles selection for a friend. Idempotent; selecting an
// already-selected friend is a no-op.
func (r *Registry) SetSelected(friendID string, selected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, friend := range r.friends {
		if friend.ID == friendID {
			friend.IsSelected = selected
			return nil
		}
	}

	return &types.ServiceError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("friend not found: %s", friendID),
		Details: map[string]interface{}{
			"friendId": friendID,
		},
	}
}

// ClearSelection deselects every friend
func (r *Registry) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, friend := range r.friends {
		friend.IsSelected = false
	}
}

// Selected returns the currently selected friends in insertion order
func (r *Registry) Selected() []*types.Friend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var selected []*types.Friend
	for _, friend := range r.friends {
		if friend.IsSelected {
			selected = append(selected, friend)
		}
	}
	return selected
}

// List returns all friends in insertion order
func (r *Registry) List() []*types.Friend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*types.Friend, len(r.friends))
	copy(out, r.friends)
	return out
}

// Len returns the number of friends in the registry
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.friends)
}

// CreateGroup forms a group from the selected friends. An empty selection
// is a no-op, not an error: it returns (nil, nil) and leaves the registry
// unchanged.
//
// The member list snapshots each friend's display string at formation time
// (resolved name if present, else the raw wallet id) and is never
// re-evaluated. Clearing the selection afterwards is the caller's
// responsibility; this is an explicit two-step contract.
func (r *Registry) CreateGroup(name string, selected []*types.Friend) (*types.Group, error) {
	if len(selected) == 0 {
		return nil, nil
	}

	members := make([]string, 0, len(selected))
	for _, friend := range selected {
		members = append(members, DisplayString(friend))
	}

	id := uuid.NewString()
	group := &types.Group{
		ID:          id,
		Name:        name,
		ContentHash: placeholderHash(id),
		Members:     members,
		CreatedAt:   time.Now().UTC(),
	}

	return group, nil
}

// DisplayString returns the member snapshot string for a friend: the
// resolved name if reverse resolution found one, else the wallet id as
// entered.
func DisplayString(friend *types.Friend) string {
	if friend.ResolvedName != "" {
		return friend.ResolvedName
	}
	return friend.WalletID
}

// placeholderHash is the short content-hash stand-in assigned at group
// creation. It is replaced by the store's content id after the first
// successful upload.
func placeholderHash(groupID string) string {
	if len(groupID) >= 8 {
		return "local-" + groupID[:8]
	}
	return "local-" + groupID
}

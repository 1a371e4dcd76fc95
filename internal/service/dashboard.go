// Package service orchestrates the dashboard flows: adding friends with
// identity resolution, forming groups, creating splits with fail-open
// persistence, and debounced auto-save.
package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/split-ledger/internal/ens"
	"github.com/split-ledger/internal/identity"
	"github.com/split-ledger/internal/logging"
	"github.com/split-ledger/internal/registry"
	"github.com/split-ledger/internal/split"
	"github.com/split-ledger/internal/storage"
	"github.com/split-ledger/internal/types"
)

// Service interfaces for dependency injection and testing

// NameResolver resolves between ENS names and addresses
type NameResolver interface {
	ResolveNameToAddress(ctx context.Context, name string) (string, error)
	ResolveAddressToName(ctx context.Context, address string) (string, bool)
}

// Uploader is the persistence gateway surface the dashboard uses
type Uploader interface {
	Upload(ctx context.Context, split *types.SplitData) *storage.UploadResult
	UploadSnapshot(ctx context.Context, name string, snapshot interface{}) *storage.UploadResult
	RecordContentID(ctx context.Context, account, splitID, contentID string)
}

// SplitStore persists split rows locally
type SplitStore interface {
	Create(ctx context.Context, split *types.SplitData) error
	GetByID(ctx context.Context, splitID string) (*types.SplitData, error)
	ListByAccount(ctx context.Context, account string) ([]*types.SplitData, error)
	SetContentID(ctx context.Context, splitID, contentID string) error
}

// GroupStore persists group rows locally
type GroupStore interface {
	Create(ctx context.Context, group *types.Group) error
	UpdateContentHash(ctx context.Context, groupID, contentHash string) error
	List(ctx context.Context) ([]*types.Group, error)
}

// AccountProvider supplies the currently connected account. The wallet
// session itself is an external collaborator; the dashboard only needs the
// active account identifier.
type AccountProvider func() string

// Config holds dashboard service configuration
type Config struct {
	// SettleDelay is the fixed delay between the upload outcome and the
	// finalize step. The same delay applies to success and failure so the
	// user-visible flow is uniform regardless of backend outcome.
	SettleDelay time.Duration

	// AutoSaveDebounce is the quiet window for debounced state saves.
	AutoSaveDebounce time.Duration
}

// DefaultConfig returns the default dashboard timings
func DefaultConfig() *Config {
	return &Config{
		SettleDelay:      2 * time.Second,
		AutoSaveDebounce: 2 * time.Second,
	}
}

// DashboardService coordinates the resolution, registry, split and
// persistence components on behalf of the presentation layer.
type DashboardService struct {
	resolver NameResolver
	registry *registry.Registry
	gateway  Uploader
	splits   SplitStore // Optional; nil keeps splits in memory/CAS only
	groups   GroupStore // Optional
	account  AccountProvider
	seq      *ens.SequenceSource
	saver    *AutoSaver
	logger   *logging.Logger

	settleDelay time.Duration

	mu           sync.Mutex
	sessionGroup map[string]*types.Group // Groups formed this session
	uploadState  types.UploadState
	lastError    string // Last upload error, shown until explicitly cleared
}

// NewDashboardService creates the dashboard orchestrator
func NewDashboardService(
	cfg *Config,
	resolver NameResolver,
	reg *registry.Registry,
	gateway Uploader,
	splits SplitStore,
	groups GroupStore,
	account AccountProvider,
	logger *logging.Logger,
) *DashboardService {
	s := &DashboardService{
		resolver:     resolver,
		registry:     reg,
		gateway:      gateway,
		splits:       splits,
		groups:       groups,
		account:      account,
		seq:          ens.NewSequenceSource(),
		logger:       logger,
		settleDelay:  cfg.SettleDelay,
		sessionGroup: make(map[string]*types.Group),
		uploadState:  types.UploadIdle,
	}
	s.saver = NewAutoSaver(cfg.AutoSaveDebounce, s.saveSnapshot)
	return s
}

// AddFriend classifies the wallet input and appends a friend to the
// registry. For name inputs, forward resolution is mandatory and the add
// fails if it does not complete successfully. For address inputs, reverse
// resolution is attempted but a missing reverse name never blocks the add.
// Classification, resolution and the registry mutation are strictly
// sequential within one add.
func (s *DashboardService) AddFriend(ctx context.Context, name, walletInput string) (*types.Friend, error) {
	trimmed := strings.TrimSpace(walletInput)
	logger := s.logger.WithField("walletInput", trimmed)
	logger.Debug("Processing wallet input")

	var friend *types.Friend

	switch identity.Classify(trimmed) {
	case identity.KindAddress:
		friend = &types.Friend{
			Name:     name,
			WalletID: trimmed,
			IsName:   false,
		}
		if resolvedName, ok := s.resolver.ResolveAddressToName(ctx, trimmed); ok {
			friend.ResolvedName = resolvedName
		}

	case identity.KindName:
		address, err := s.resolver.ResolveNameToAddress(ctx, trimmed)
		if err != nil {
			// The add operation simply does not complete; the registry
			// is untouched.
			return nil, err
		}
		friend = &types.Friend{
			Name:            name,
			WalletID:        trimmed,
			ResolvedAddress: address,
			IsName:          true,
		}

	default:
		return nil, types.NewResolutionError(types.ErrCodeInvalidFormat,
			"please enter a valid Ethereum address or ENS name")
	}

	added, err := s.registry.Add(friend)
	if err != nil {
		return nil, err
	}

	logger.WithField("friendId", added.ID).Info("Friend added")
	s.saver.Schedule()
	return added, nil
}

// ResolveOutcome carries a sequence-tagged resolution result. Stale
// outcomes belong to a superseded request and must not overwrite newer
// displayed state.
type ResolveOutcome struct {
	Address string `json:"address,omitempty"`
	Name    string `json:"name,omitempty"`
	Seq     uint64 `json:"seq"`
	Stale   bool   `json:"stale"`
}

// ResolveName forward-resolves a name for a given input field, tagging the
// request with a per-field sequence number.
func (s *DashboardService) ResolveName(ctx context.Context, field, name string) (*ResolveOutcome, error) {
	seq := s.seq.Next(field)

	address, err := s.resolver.ResolveNameToAddress(ctx, name)
	if err != nil {
		return nil, err
	}

	return &ResolveOutcome{
		Address: address,
		Seq:     seq,
		Stale:   !s.seq.IsCurrent(field, seq),
	}, nil
}

// ResolveAddress reverse-resolves an address for a given input field.
// Absence of a reverse record is reported as an empty name, not an error.
func (s *DashboardService) ResolveAddress(ctx context.Context, field, address string) *ResolveOutcome {
	seq := s.seq.Next(field)

	name, _ := s.resolver.ResolveAddressToName(ctx, address)
	return &ResolveOutcome{
		Name:  name,
		Seq:   seq,
		Stale: !s.seq.IsCurrent(field, seq),
	}
}

// Friends returns the registry contents in insertion order
func (s *DashboardService) Friends() []*types.Friend {
	return s.registry.List()
}

// SetFriendSelected toggles a friend's selection
func (s *DashboardService) SetFriendSelected(friendID string, selected bool) error {
	if err := s.registry.SetSelected(friendID, selected); err != nil {
		return err
	}
	s.saver.Schedule()
	return nil
}

// ClearSelection deselects all friends
func (s *DashboardService) ClearSelection() {
	s.registry.ClearSelection()
}

// FormGroup forms a group from the current selection. An empty selection is
// a no-op returning (nil, nil). Formation and selection clearing are the
// documented two-step contract; this method performs both steps.
func (s *DashboardService) FormGroup(ctx context.Context, name string) (*types.Group, error) {
	selected := s.registry.Selected()

	group, err := s.registry.CreateGroup(name, selected)
	if err != nil || group == nil {
		return group, err
	}

	// Step two of the contract: clear the selection after formation.
	s.registry.ClearSelection()

	s.mu.Lock()
	s.sessionGroup[group.ID] = group
	s.mu.Unlock()

	if s.groups != nil {
		if err := s.groups.Create(ctx, group); err != nil {
			s.logger.WithError(err).Warn("Failed to persist group locally")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"groupId": group.ID,
		"members": len(group.Members),
	}).Info("Group formed")

	s.saver.Schedule()
	return group, nil
}

// Groups returns the groups formed this session
func (s *DashboardService) Groups() []*types.Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := make([]*types.Group, 0, len(s.sessionGroup))
	for _, group := range s.sessionGroup {
		groups = append(groups, group)
	}
	return groups
}

// CreateSplitInput is the split modal form
type CreateSplitInput struct {
	GroupID       string             `json:"groupId"`
	SplitName     string             `json:"splitName"`
	TotalAmount   string             `json:"totalAmount"` // As entered in the form
	EqualSplit    bool               `json:"equalSplit"`
	CustomAmounts map[string]float64 `json:"customAmounts,omitempty"` // memberId -> amount
}

// CreateSplit validates the form, computes per-member amounts, uploads the
// split to the content store and finalizes after a fixed settle delay.
//
// Upload failure is fail-open by design: the split is recreated locally
// with a regenerated id and the flow completes through the same finalize
// step as the success path. Only validation problems are returned as
// errors; storage availability never blocks split creation.
func (s *DashboardService) CreateSplit(ctx context.Context, input *CreateSplitInput) (*types.SplitData, error) {
	group, err := s.lookupGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}

	members := split.NewMembers(group)

	totalAmount, _ := strconv.ParseFloat(strings.TrimSpace(input.TotalAmount), 64)
	splitType := types.SplitCustom
	if input.EqualSplit {
		splitType = types.SplitEqual
		split.ApplyEqualSplit(members, totalAmount)
	} else {
		for i := range members {
			if amount, ok := input.CustomAmounts[members[i].ID]; ok {
				members[i].Amount = amount
			}
		}
	}

	if !split.Validate(input.SplitName, input.TotalAmount, split.TotalAssigned(members)) {
		return nil, types.NewResolutionError(types.ErrCodeValidationFailed,
			"split requires a name, a positive total and at least one assigned amount")
	}

	account := s.account()
	data := split.Build(&split.BuildInput{
		Group:       group,
		GroupName:   input.SplitName,
		TotalAmount: totalAmount,
		Members:     members,
		PaidBy:      account,
		SplitType:   splitType,
	})

	s.setUploadState(types.UploadInProgress, "")
	result := s.gateway.Upload(ctx, data)

	if result.Success {
		data.ContentID = result.ContentID
		s.gateway.RecordContentID(ctx, account, data.ID, result.ContentID)
		s.updateGroupHash(ctx, group, result.ContentID)
		s.setUploadState(types.UploadSucceeded, "")
	} else {
		// Fail open: same split data, re-timestamped with a regenerated
		// id, kept locally.
		data.ID = split.NewSplitID()
		data.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		data.IsSettled = false
		data.ContentID = ""
		s.setUploadState(types.UploadErrored, result.Error)
		s.logger.WithField("splitId", data.ID).Warn("Upload failed, split created locally")
	}

	if s.splits != nil {
		if err := s.splits.Create(ctx, data); err != nil {
			s.logger.WithError(err).Warn("Failed to persist split locally")
		}
	}

	// The settle delay is identical for both outcomes so the experience
	// stays uniform regardless of backend availability.
	select {
	case <-time.After(s.settleDelay):
	case <-ctx.Done():
	}

	s.finishUpload()
	return data, nil
}

// Split returns a locally persisted split by id
func (s *DashboardService) Split(ctx context.Context, splitID string) (*types.SplitData, error) {
	if s.splits == nil {
		return nil, &types.ServiceError{Code: "NOT_FOUND", Message: "split storage not configured"}
	}
	return s.splits.GetByID(ctx, splitID)
}

// Splits returns the locally persisted splits for the connected account
func (s *DashboardService) Splits(ctx context.Context) ([]*types.SplitData, error) {
	if s.splits == nil {
		return nil, nil
	}
	return s.splits.ListByAccount(ctx, s.account())
}

// UploadStatus returns the current upload state and the last upload error.
// The error sticks until ClearUploadError is called.
func (s *DashboardService) UploadStatus() (types.UploadState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadState, s.lastError
}

// ClearUploadError clears the retained upload error
func (s *DashboardService) ClearUploadError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

// Stop cancels any pending auto-save
func (s *DashboardService) Stop() {
	s.saver.Stop()
}

func (s *DashboardService) lookupGroup(ctx context.Context, groupID string) (*types.Group, error) {
	s.mu.Lock()
	group, ok := s.sessionGroup[groupID]
	s.mu.Unlock()
	if ok {
		return group, nil
	}

	if s.groups != nil {
		groups, err := s.groups.List(ctx)
		if err == nil {
			for _, g := range groups {
				if g.ID == groupID {
					return g, nil
				}
			}
		}
	}

	return nil, &types.ServiceError{
		Code:    "NOT_FOUND",
		Message: "group not found: " + groupID,
	}
}

func (s *DashboardService) updateGroupHash(ctx context.Context, group *types.Group, contentID string) {
	s.mu.Lock()
	group.ContentHash = contentID
	s.mu.Unlock()

	if s.groups != nil {
		if err := s.groups.UpdateContentHash(ctx, group.ID, contentID); err != nil {
			s.logger.WithError(err).Warn("Failed to update group content hash")
		}
	}
}

func (s *DashboardService) setUploadState(state types.UploadState, uploadErr string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploadState = state
	if uploadErr != "" {
		s.lastError = uploadErr
	}
}

// finishUpload returns the state machine to idle. The last error is
// retained for the status indicator.
func (s *DashboardService) finishUpload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadState = types.UploadIdle
}

// stateSnapshot is the auto-saved dashboard state
type stateSnapshot struct {
	Account string          `json:"account"`
	Friends []*types.Friend `json:"friends"`
	Groups  []*types.Group  `json:"groups"`
	SavedAt string          `json:"savedAt"`
}

// saveSnapshot uploads the current friends and groups state. Best-effort:
// failures are logged and the next mutation schedules a fresh attempt.
func (s *DashboardService) saveSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	account := s.account()
	snapshot := &stateSnapshot{
		Account: account,
		Friends: s.registry.List(),
		Groups:  s.Groups(),
		SavedAt: time.Now().UTC().Format(time.RFC3339),
	}

	result := s.gateway.UploadSnapshot(ctx, "dashboard-state", snapshot)
	if !result.Success {
		s.logger.WithField("error", result.Error).Warn("Auto-save failed")
		return
	}

	s.gateway.RecordContentID(ctx, account, "autosave", result.ContentID)
	s.logger.WithField("contentId", result.ContentID).Debug("Dashboard state auto-saved")
}

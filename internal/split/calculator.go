// Package split computes and validates per-member bill splits.
package split

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/split-ledger/internal/types"
)

// RoundToTwo rounds a monetary value to 2 decimal places using ordinary
// decimal rounding (half away from zero).
func RoundToTwo(value float64) float64 {
	return math.Round(value*100) / 100
}

// EqualShare returns the per-member amount for an equal split.
//
// Because each share is rounded independently, the sum of shares may drift
// from the total by up to 0.005 per member; the drift is not corrected with
// a remainder-distribution step. The acceptable band is
// |sum - total| <= 0.01 * memberCount.
func EqualShare(totalAmount float64, memberCount int) float64 {
	if memberCount <= 0 {
		return 0
	}
	return RoundToTwo(totalAmount / float64(memberCount))
}

// ApplyEqualSplit overwrites every member's amount with the equal share
func ApplyEqualSplit(members []types.SplitMember, totalAmount float64) {
	share := EqualShare(totalAmount, len(members))
	for i := range members {
		members[i].Amount = share
	}
}

// SetCustomAmount overwrites one member's amount directly. No validation is
// performed against the total.
func SetCustomAmount(members []types.SplitMember, memberID string, amount float64) bool {
	for i := range members {
		if members[i].ID == memberID {
			members[i].Amount = amount
			return true
		}
	}
	return false
}

// TotalAssigned sums the member amounts
func TotalAssigned(members []types.SplitMember) float64 {
	var total float64
	for _, member := range members {
		total += member.Amount
	}
	return total
}

// Validate reports whether a split form is submittable: the group name is
// non-empty, the total parses as a positive number, and something has been
// assigned. The sum of member amounts is deliberately NOT required to equal
// the total; under- and over-assignment pass through and the discrepancy is
// surfaced for human judgment rather than blocked.
func Validate(groupName, totalAmount string, totalAssigned float64) bool {
	if strings.TrimSpace(groupName) == "" {
		return false
	}

	total, err := strconv.ParseFloat(strings.TrimSpace(totalAmount), 64)
	if err != nil || total <= 0 {
		return false
	}

	return totalAssigned > 0
}

// BuildInput carries everything needed to assemble a SplitData record
type BuildInput struct {
	Group       *types.Group
	GroupName   string
	TotalAmount float64
	Members     []types.SplitMember
	PaidBy      string // Creating account's address
	SplitType   types.SplitType
}

// Build assembles a SplitData record with a fresh session-unique id, an
// ISO-8601 creation timestamp and isSettled=false.
func Build(input *BuildInput) *types.SplitData {
	members := make([]types.SplitMember, len(input.Members))
	copy(members, input.Members)

	return &types.SplitData{
		ID:          NewSplitID(),
		GroupID:     input.Group.ID,
		GroupName:   input.GroupName,
		Description: fmt.Sprintf("Bill split for %s", input.GroupName),
		TotalAmount: input.TotalAmount,
		PaidBy:      input.PaidBy,
		PaidByName:  "You",
		Members:     members,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		CreatedBy:   input.PaidBy,
		SplitType:   input.SplitType,
		Currency:    "USD",
		IsSettled:   false,
	}
}

// NewMembers creates the member list for a group, one entry per snapshot
// member with a zero amount and isPaid=false.
func NewMembers(group *types.Group) []types.SplitMember {
	members := make([]types.SplitMember, 0, len(group.Members))
	for i, name := range group.Members {
		members = append(members, types.SplitMember{
			ID:       fmt.Sprintf("member-%d", i),
			Name:     name,
			WalletID: name,
			Amount:   0,
			IsPaid:   false,
		})
	}
	return members
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewSplitID generates a time+random composite id, unique within a session.
// Format: split-<unix-millis>-<9 base36 chars>
func NewSplitID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return fmt.Sprintf("split-%d-%s", time.Now().UnixMilli(), string(suffix))
}

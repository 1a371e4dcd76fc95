// Package types provides common type definitions for the split ledger system.
package types

import "time"

// SplitType represents how a bill is divided among group members
type SplitType string

const (
	// SplitEqual divides the total evenly across all members
	SplitEqual SplitType = "equal"
	// SplitCustom uses per-member amounts entered by the user
	SplitCustom SplitType = "custom"
)

// UploadState represents the persistence gateway state for a split creation
type UploadState string

const (
	// UploadIdle means no upload is in progress
	UploadIdle UploadState = "idle"
	// UploadInProgress means split data is being uploaded to the content store
	UploadInProgress UploadState = "uploading"
	// UploadSucceeded means the split data was pinned and a content id recorded
	UploadSucceeded UploadState = "success"
	// UploadErrored means the upload failed and the split was kept locally
	UploadErrored UploadState = "error"
)

// Friend represents an entry in the friends list.
// Exactly one of two shapes holds: a name-type friend (IsName=true) always
// carries a ResolvedAddress by the time it is persisted; an address-type
// friend's ResolvedName is best-effort and may be absent.
type Friend struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	WalletID        string `json:"walletId"`                  // Identifier as entered (display form)
	ResolvedAddress string `json:"resolvedAddress,omitempty"` // Set iff WalletID is a name and resolution succeeded
	ResolvedName    string `json:"resolvedName,omitempty"`    // Set iff WalletID is an address and reverse resolution succeeded
	IsName          bool   `json:"isName"`
	IsSelected      bool   `json:"isSelected"` // UI-only, transient; reset after group formation
}

// Group represents a formed group of friends.
// Members is a snapshot of display strings taken at formation time, not live
// references to Friend records. It is immutable after creation.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentHash string    `json:"contentHash"` // Placeholder at creation, replaced after first successful upload
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
	IsSettled   bool      `json:"isSettled"`
	TotalAmount float64   `json:"totalAmount"`
	YourShare   float64   `json:"yourShare"`
	IsPaid      bool      `json:"isPaid"`
}

// SplitMember represents one participant's share in a split
type SplitMember struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	WalletID string  `json:"walletId"`
	Amount   float64 `json:"amount"`
	IsPaid   bool    `json:"isPaid"`
}

// SplitData represents a complete bill split.
// The sum of member amounts need not equal TotalAmount; under-assignment is
// surfaced to the user, not rejected.
type SplitData struct {
	ID          string        `json:"id"` // time+random composite, unique within a session
	GroupID     string        `json:"groupId"`
	GroupName   string        `json:"groupName"`
	Description string        `json:"description"`
	TotalAmount float64       `json:"totalAmount"`
	PaidBy      string        `json:"paidBy"`
	PaidByName  string        `json:"paidByName"`
	Members     []SplitMember `json:"members"`
	CreatedAt   string        `json:"createdAt"` // ISO-8601
	CreatedBy   string        `json:"createdBy"`
	SplitType   SplitType     `json:"splitType"`
	Currency    string        `json:"currency"` // Fixed "USD"
	IsSettled   bool          `json:"isSettled"`
	ContentID   string        `json:"contentId,omitempty"` // Set after a successful upload
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Resolution and persistence error codes. Nothing in this taxonomy is fatal
// to the process; every failure is recoverable by re-invoking the operation.
const (
	// ErrCodeInvalidFormat means the input is neither a valid address nor a name
	ErrCodeInvalidFormat = "INVALID_FORMAT"
	// ErrCodeNotFound means the name is not registered or has no address record
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeNetworkError means the resolution backend could not be reached
	ErrCodeNetworkError = "NETWORK_ERROR"
	// ErrCodeTimeout means the resolution call exceeded its deadline
	ErrCodeTimeout = "TIMEOUT"
	// ErrCodeResolverUnavailable means no resolver is configured for the name
	ErrCodeResolverUnavailable = "RESOLVER_UNAVAILABLE"
	// ErrCodeResolutionFailed is a generic resolver fault
	ErrCodeResolutionFailed = "RESOLUTION_FAILED"
	// ErrCodeResolutionIncomplete means a name-type friend was submitted before
	// forward resolution completed
	ErrCodeResolutionIncomplete = "RESOLUTION_INCOMPLETE"
	// ErrCodeUploadFailed means the content store rejected the upload (non-fatal)
	ErrCodeUploadFailed = "UPLOAD_FAILED"
	// ErrCodeValidationFailed means the split form input is invalid (user-correctable)
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

// NewResolutionError creates a ServiceError with a resolution error code
func NewResolutionError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

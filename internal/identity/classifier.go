// Package identity classifies user-entered wallet identifiers as raw
// Ethereum addresses or ENS-style names.
package identity

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Kind is the classification of an identifier
type Kind string

const (
	// KindAddress is a fixed-width 0x-prefixed hex account identifier
	KindAddress Kind = "address"
	// KindName is a dot-delimited human-readable label (e.g. "alice.eth")
	KindName Kind = "name"
	// KindInvalid matches neither form
	KindInvalid Kind = "invalid"
)

// namePattern accepts one or more labels of {alphanumeric, hyphen,
// underscore} with a final label of at least two alphabetic characters.
// This is a coarse heuristic: any multi-label dotted string is a candidate
// name, and rejection is deferred to the resolver. A name that looks right
// but does not exist resolves to not-found, not invalid.
var namePattern = regexp.MustCompile(`^[a-z0-9_-]+(\.[a-z0-9_-]+)*\.[a-z]{2,}$`)

// Classify decides whether input is an address, a name, or invalid.
// Exactly one of the three kinds is returned for any non-empty input.
// Pure and synchronous; no side effects.
func Classify(input string) Kind {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return KindInvalid
	}

	if IsAddress(trimmed) {
		return KindAddress
	}

	if IsName(trimmed) {
		return KindName
	}

	return KindInvalid
}

// IsAddress reports whether input is a valid Ethereum address. Mixed-case
// checksum encodings are accepted but not validated beyond the address
// library's native check.
func IsAddress(input string) bool {
	return common.IsHexAddress(strings.TrimSpace(input))
}

// IsName reports whether input has the dot-structure of an ENS name.
// All dot-separated strings are treated as potential names; ENS supports
// many TLDs, so no allow-list is applied.
func IsName(input string) bool {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return strings.Contains(normalized, ".") && namePattern.MatchString(normalized)
}

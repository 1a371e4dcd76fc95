package identity

import (
	"testing"
)

func TestClassify_Addresses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Kind
	}{
		{"lowercase address", "0x742d35cc6634c0532925a3b844bc454e4438f44e", KindAddress},
		{"checksummed address", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", KindAddress},
		{"uppercase hex", "0x742D35CC6634C0532925A3B844BC454E4438F44E", KindAddress},
		{"surrounding whitespace", "  0x742d35cc6634c0532925a3b844bc454e4438f44e  ", KindAddress},
		{"too short", "0x742d35cc6634c0532925a3b844bc454e4438f4", KindInvalid},
		{"too long", "0x742d35cc6634c0532925a3b844bc454e4438f44e00", KindInvalid},
		{"non-hex characters", "0x742d35cc6634c0532925a3b844bc454e4438f44g", KindInvalid},
		{"missing prefix", "742d35cc6634c0532925a3b844bc454e4438f44e", KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.input); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassify_Names(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Kind
	}{
		{"simple eth name", "alice.eth", KindName},
		{"uppercase is normalized", "Alice.ETH", KindName},
		{"subdomain", "pay.alice.eth", KindName},
		{"hyphen and underscore", "my-cool_name.eth", KindName},
		{"non-eth tld", "alice.xyz", KindName},
		{"dns-style name", "alice.com", KindName},
		{"single char tld rejected", "alice.e", KindInvalid},
		{"no dot", "alice", KindInvalid},
		{"trailing dot", "alice.", KindInvalid},
		{"leading dot", ".eth", KindInvalid},
		{"embedded space", "alice smith.eth", KindInvalid},
		{"empty", "", KindInvalid},
		{"whitespace only", "   ", KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.input); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassify_AddressWinsOverName(t *testing.T) {
	// An address never contains a dot, but make the precedence explicit:
	// anything passing the address check is classified as an address before
	// the name heuristic runs.
	input := "0x742d35cc6634c0532925a3b844bc454e4438f44e"
	if IsAddress(input) && Classify(input) != KindAddress {
		t.Errorf("address check passed but Classify returned %v", Classify(input))
	}
}

func TestIsName_NoTLDAllowList(t *testing.T) {
	// ENS supports many TLDs; the classifier accepts any plausible final
	// label and defers existence to the resolver.
	for _, name := range []string{"alice.eth", "alice.xyz", "alice.luxe", "alice.kred", "alice.art"} {
		if !IsName(name) {
			t.Errorf("IsName(%q) = false, want true", name)
		}
	}
}

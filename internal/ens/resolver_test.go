package ens

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/split-ledger/internal/logging"
	"github.com/split-ledger/internal/types"
)

// stubCache is an in-memory ResultCache for tests
type stubCache struct {
	values  map[string]string
	getErr  error
	setErr  error
	setKeys []string
}

func newStubCache() *stubCache {
	return &stubCache{values: make(map[string]string)}
}

func (c *stubCache) Get(ctx context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	return c.values[key], nil
}

func (c *stubCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.values[key] = fmt.Sprintf("%v", value)
	c.setKeys = append(c.setKeys, key)
	return nil
}

func testResolver(cache ResultCache) *Resolver {
	return &Resolver{
		cache:    cache,
		cacheTTL: time.Minute,
		logger:   logging.NewLogger(logging.LevelError, logging.FormatText),
	}
}

func TestResolveNameToAddress_InvalidFormat(t *testing.T) {
	r := testResolver(nil)

	// Format rejection happens before any network activity, so a resolver
	// with no live client handles these inputs fine.
	for _, input := range []string{"", "alice", "alice.", ".eth", "not a name"} {
		_, err := r.ResolveNameToAddress(context.Background(), input)
		require.Error(t, err, "input %q", input)

		serviceErr, ok := err.(*types.ServiceError)
		require.True(t, ok)
		assert.Equal(t, types.ErrCodeInvalidFormat, serviceErr.Code)
	}
}

func TestResolveNameToAddress_CacheHit(t *testing.T) {
	cache := newStubCache()
	cache.values["ens:addr:alice.eth"] = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

	r := testResolver(cache)

	// Served entirely from cache; no client call is made.
	address, err := r.ResolveNameToAddress(context.Background(), "Alice.ETH")
	require.NoError(t, err)
	assert.Equal(t, "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", address)
}

func TestResolveAddressToName_InvalidAddress(t *testing.T) {
	r := testResolver(nil)

	// Invalid inputs report absent, never an error or a panic
	for _, input := range []string{"", "alice.eth", "0x123", "not-an-address"} {
		name, ok := r.ResolveAddressToName(context.Background(), input)
		assert.False(t, ok, "input %q", input)
		assert.Empty(t, name)
	}
}

func TestResolveAddressToName_CacheHit(t *testing.T) {
	cache := newStubCache()
	cache.values["ens:name:0x742d35cc6634c0532925a3b844bc454e4438f44e"] = "alice.eth"

	r := testResolver(cache)

	name, ok := r.ResolveAddressToName(context.Background(), "0x742d35cc6634c0532925a3b844bc454e4438f44e")
	require.True(t, ok)
	assert.Equal(t, "alice.eth", name)
}

func TestCacheGet_FailuresAreAbsent(t *testing.T) {
	cache := newStubCache()
	cache.getErr = errors.New("redis: connection refused")

	r := testResolver(cache)

	_, ok := r.cacheGet(context.Background(), forwardKey("alice.eth"))
	assert.False(t, ok, "cache errors must read as a miss")
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "ens:addr:alice.eth", forwardKey("alice.eth"))
	// Reverse keys are normalized to lowercase
	assert.Equal(t, "ens:name:0xabcdef", reverseKey("0xABCDEF"))
}

func TestSanitizeEndpoint(t *testing.T) {
	assert.Equal(t,
		"https://eth-mainnet.g.alchemy.com/v2/[REDACTED]",
		sanitizeEndpoint("https://eth-mainnet.g.alchemy.com/v2/secret-api-key"))

	// Endpoints without a key path pass through unchanged
	assert.Equal(t,
		"https://ethereum-rpc.publicnode.com",
		sanitizeEndpoint("https://ethereum-rpc.publicnode.com"))
}

func TestIsNotRegistered(t *testing.T) {
	assert.True(t, isNotRegistered(errors.New("unregistered name")))
	assert.True(t, isNotRegistered(errors.New("No address record")))
	assert.True(t, isNotRegistered(errors.New("could not obtain resolution: no resolution")))
	assert.False(t, isNotRegistered(errors.New("connection refused")))
	assert.False(t, isNotRegistered(errors.New("execution reverted")))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadline exceeded", context.DeadlineExceeded, types.ErrCodeTimeout},
		{"wrapped deadline", fmt.Errorf("rpc call: %w", context.DeadlineExceeded), types.ErrCodeTimeout},
		{"timeout string", errors.New("i/o timeout"), types.ErrCodeTimeout},
		{"connection refused", errors.New("dial tcp 127.0.0.1:8545: connection refused"), types.ErrCodeNetworkError},
		{"no such host", errors.New("lookup rpc.example: no such host"), types.ErrCodeNetworkError},
		{"network unreachable", errors.New("network is unreachable"), types.ErrCodeNetworkError},
		{"unclassified", errors.New("execution reverted"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}

func TestNewResolver_RequiresEndpoint(t *testing.T) {
	logger := logging.NewLogger(logging.LevelError, logging.FormatText)

	_, err := NewResolver(nil, nil, logger)
	assert.Error(t, err)

	_, err = NewResolver(&Config{}, nil, logger)
	assert.Error(t, err)
}

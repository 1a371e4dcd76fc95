// Package ens performs forward and reverse ENS resolution against an
// Ethereum L1 endpoint, with a two-tier fallback strategy and
// network-error classification.
package ens

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	ens "github.com/wealdtech/go-ens/v3"
	"golang.org/x/time/rate"

	"github.com/split-ledger/internal/identity"
	"github.com/split-ledger/internal/logging"
	"github.com/split-ledger/internal/types"
)

// ResultCache caches resolution results. Cache failures are never surfaced;
// a broken cache only costs extra RPC calls.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Config configures a Resolver
type Config struct {
	// Endpoint is the Ethereum L1 RPC endpoint. Required.
	Endpoint string

	// RequestsPerSecond limits resolution calls against the endpoint.
	// Zero disables rate limiting.
	RequestsPerSecond float64

	// Burst is the rate limiter burst size. Only used when rate limiting
	// is enabled.
	Burst int

	// CacheTTL is the lifetime of cached resolution results.
	CacheTTL time.Duration
}

// Resolver resolves between ENS names and Ethereum addresses. The client
// handle is created once at construction and treated as immutable
// configuration afterwards; concurrent resolution calls only read it.
type Resolver struct {
	client   *ethclient.Client
	limiter  *rate.Limiter
	cache    ResultCache
	cacheTTL time.Duration
	logger   *logging.Logger
}

// NewResolver dials the configured endpoint and returns a resolver.
// Pass a nil cache to disable result caching.
func NewResolver(cfg *Config, cache ResultCache, logger *logging.Logger) (*Resolver, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("resolver endpoint not configured")
	}

	client, err := ethclient.Dial(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial resolution endpoint: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}

	logger.WithField("endpoint", sanitizeEndpoint(cfg.Endpoint)).Info("ENS resolver initialized")

	return &Resolver{
		client:   client,
		limiter:  limiter,
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		logger:   logger,
	}, nil
}

// Close releases the underlying RPC connection
func (r *Resolver) Close() {
	if r.client != nil {
		r.client.Close()
	}
}

// apiKeyPath strips key-bearing URL segments before they reach logs
var apiKeyPath = regexp.MustCompile(`/v2/.*`)

func sanitizeEndpoint(endpoint string) string {
	return apiKeyPath.ReplaceAllString(endpoint, "/v2/[REDACTED]")
}

// Probe verifies connectivity to the resolution backend with a lightweight
// chain id call.
func (r *Resolver) Probe(ctx context.Context) error {
	if _, err := r.client.ChainID(ctx); err != nil {
		return err
	}
	return nil
}

// ResolveNameToAddress resolves an ENS name to an Ethereum address.
//
// The primary path is a direct forward-resolution call. When that fails for
// a reason that is not clearly a network or timeout condition, the fallback
// path fetches a resolver handle for the name and queries its address
// record explicitly. Failures are returned as *types.ServiceError with one
// of the resolution error codes; this method never panics on unknown names.
func (r *Resolver) ResolveNameToAddress(ctx context.Context, name string) (string, error) {
	if !identity.IsName(name) {
		return "", types.NewResolutionError(types.ErrCodeInvalidFormat, "invalid ENS name format")
	}

	normalized := strings.ToLower(strings.TrimSpace(name))
	logger := r.logger.WithField("name", normalized)
	logger.Debug("Starting ENS resolution")

	if cached, ok := r.cacheGet(ctx, forwardKey(normalized)); ok {
		logger.Debug("Resolution served from cache")
		return cached, nil
	}

	if err := r.wait(ctx); err != nil {
		return "", types.NewResolutionError(types.ErrCodeTimeout, "resolution cancelled while rate limited")
	}

	// Connectivity probe before attempting resolution. On probe failure,
	// fail fast without touching the registry.
	if err := r.Probe(ctx); err != nil {
		logger.WithError(err).Warn("Resolution endpoint unreachable")
		return "", types.NewResolutionError(types.ErrCodeNetworkError,
			"network connection failed, please check your connection")
	}

	// Primary path: direct forward resolution.
	resolved, err := ens.Resolve(r.client, normalized)
	if err == nil {
		if resolved == (common.Address{}) {
			return "", types.NewResolutionError(types.ErrCodeNotFound, "ENS name not found or not registered")
		}
		if !common.IsHexAddress(resolved.Hex()) {
			// Resolver fault: the record decoded to something that is not an address.
			logger.Error("Invalid address returned from ENS resolution")
			return "", types.NewResolutionError(types.ErrCodeResolutionFailed,
				"invalid address returned from ENS resolution")
		}
		address := resolved.Hex()
		logger.WithField("address", address).Info("ENS name resolved")
		r.cacheSet(ctx, forwardKey(normalized), address)
		return address, nil
	}

	if isNotRegistered(err) {
		logger.Debug("ENS name not registered")
		return "", types.NewResolutionError(types.ErrCodeNotFound, "ENS name not found or not registered")
	}

	switch classifyError(err) {
	case types.ErrCodeNetworkError:
		logger.WithError(err).Warn("Network error during ENS resolution")
		return "", types.NewResolutionError(types.ErrCodeNetworkError,
			"network error, please check your connection and try again")
	case types.ErrCodeTimeout:
		logger.WithError(err).Warn("Timeout during ENS resolution")
		return "", types.NewResolutionError(types.ErrCodeTimeout, "request timeout, please try again")
	}

	// Fallback path: fetch a resolver handle for the name and query the
	// address record directly.
	logger.WithError(err).Debug("Primary resolution failed, trying resolver handle")

	resolver, resolverErr := ens.NewResolver(r.client, normalized)
	if resolverErr != nil {
		if isNotRegistered(resolverErr) {
			return "", types.NewResolutionError(types.ErrCodeNotFound, "ENS name not found or not registered")
		}
		return "", types.NewResolutionError(types.ErrCodeResolverUnavailable, "ENS resolver not found")
	}

	fallbackAddr, addrErr := resolver.Address()
	if addrErr != nil {
		logger.WithError(addrErr).Warn("Resolver handle lookup failed")
		return "", types.NewResolutionError(types.ErrCodeResolutionFailed,
			"failed to resolve ENS name, it may not exist or there may be a network issue")
	}
	if fallbackAddr == (common.Address{}) {
		return "", types.NewResolutionError(types.ErrCodeNotFound, "ENS name not found or not registered")
	}

	address := fallbackAddr.Hex()
	logger.WithField("address", address).Info("ENS name resolved via resolver handle")
	r.cacheSet(ctx, forwardKey(normalized), address)
	return address, nil
}

// ResolveAddressToName performs reverse resolution. It returns absent for
// inputs that fail address validation and swallows lookup failures: a
// missing reverse record is a normal outcome, never a hard error.
func (r *Resolver) ResolveAddressToName(ctx context.Context, address string) (string, bool) {
	if !identity.IsAddress(address) {
		r.logger.WithField("address", address).Debug("Reverse resolution skipped, not a valid address")
		return "", false
	}

	normalized := common.HexToAddress(strings.TrimSpace(address))
	logger := r.logger.WithField("address", normalized.Hex())

	if cached, ok := r.cacheGet(ctx, reverseKey(normalized.Hex())); ok {
		return cached, true
	}

	if err := r.wait(ctx); err != nil {
		return "", false
	}

	name, err := ens.ReverseResolve(r.client, normalized)
	if err != nil {
		logger.WithError(err).Debug("No ENS name found for address")
		return "", false
	}
	if name == "" {
		return "", false
	}

	logger.WithField("name", name).Info("Address reverse-resolved to ENS name")
	r.cacheSet(ctx, reverseKey(normalized.Hex()), name)
	return name, true
}

func (r *Resolver) wait(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}

func (r *Resolver) cacheGet(ctx context.Context, key string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	value, err := r.cache.Get(ctx, key)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

func (r *Resolver) cacheSet(ctx context.Context, key, value string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, value, r.cacheTTL); err != nil {
		r.logger.WithError(err).Debug("Failed to cache resolution result")
	}
}

// forwardKey generates the cache key for name-to-address results.
// Format: ens:addr:<name>
func forwardKey(name string) string {
	return "ens:addr:" + name
}

// reverseKey generates the cache key for address-to-name results.
// Format: ens:name:<address>
func reverseKey(address string) string {
	return "ens:name:" + strings.ToLower(address)
}

// isNotRegistered reports whether err is go-ens signalling an unknown name
// or a name with no address record. The library reports these as errors
// rather than empty results.
func isNotRegistered(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unregistered name") ||
		strings.Contains(msg, "no address") ||
		strings.Contains(msg, "no resolution")
}

// classifyError maps an RPC error to a resolution error code. Errors that
// are neither network-class nor timeout-class return an empty string and
// fall through to the fallback path.
func classifyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.ErrCodeTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return types.ErrCodeTimeout
		}
		return types.ErrCodeNetworkError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return types.ErrCodeTimeout
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "network"),
		strings.Contains(msg, "dial tcp"):
		return types.ErrCodeNetworkError
	}

	return ""
}

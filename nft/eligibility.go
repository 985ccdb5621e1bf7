// Package nft resolves whether a wallet holds a sufficiently staked NFT,
// caching chain answers for a short window.
package nft

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mocagate/gating-api/cache"
	"github.com/mocagate/gating-api/chain"
)

const (
	eligibilityPrefix = "nft_eligibility:"
	eligibilityTTL    = 600 * time.Second
)

// Checker answers eligibility questions cache-first, falling back to the
// staking contract. The chain is the source of truth; the cache only absorbs
// repeated polling from the frontend.
type Checker struct {
	Chain chain.StakingClient
	Cache cache.Store
}

// NewChecker creates a Checker
func NewChecker(chainClient chain.StakingClient, store cache.Store) *Checker {
	return &Checker{Chain: chainClient, Cache: store}
}

// CheckEligibility reports whether the wallet holds an eligible staked NFT.
// Cache misses and cache failures both fall through to the chain call, whose
// errors propagate: there is no fallback source of truth.
func (c *Checker) CheckEligibility(ctx context.Context, wallet string) (bool, error) {
	key := eligibilityKey(wallet)

	if cached, ok := c.Cache.TryGet(key); ok {
		return cached == "true", nil
	}

	eligible, err := c.Chain.HasEligibleNFT(ctx, wallet)
	if err != nil {
		return false, err
	}

	c.Cache.TrySet(key, strconv.FormatBool(eligible), eligibilityTTL)
	return eligible, nil
}

// InvalidateCache drops the cached answer for a wallet, for use when staking
// state is known to have changed out-of-band.
func (c *Checker) InvalidateCache(wallet string) error {
	return c.Cache.Delete(eligibilityKey(wallet))
}

func eligibilityKey(wallet string) string {
	return eligibilityPrefix + strings.ToLower(wallet)
}

package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/foliohq/nft-gateway/internal/cache"
	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/logger"
	"github.com/foliohq/nft-gateway/internal/normalizer"
	"github.com/foliohq/nft-gateway/internal/providers/alchemy"
)

// maxPartialErrorExamples caps how many sub-query failures are echoed
// back to the caller.
const maxPartialErrorExamples = 3

// OwnersOptions tunes a NFTsForOwners invocation.
type OwnersOptions struct {
	PageSize    int
	PageKey     string
	ExcludeSpam bool
}

// PartialErrors summarizes sub-query failures that did not abort the
// aggregate.
type PartialErrors struct {
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

// OwnersResult is the aggregate response for owner NFT queries.
type OwnersResult struct {
	NFTs          []domain.NFT   `json:"nfts"`
	TotalCount    int            `json:"totalCount"`
	HasMore       bool           `json:"hasMore"`
	PageKey       *string        `json:"pageKey,omitempty"`
	PartialErrors *PartialErrors `json:"partialErrors,omitempty"`
}

// OwnersConfig tunes the fan-out.
type OwnersConfig struct {
	Concurrency  int
	Pause        time.Duration
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Owners aggregates NFTs across wallet addresses and chains.
type Owners struct {
	client alchemy.Client
	cache  *cache.Cache
	config OwnersConfig
}

// NewOwners creates the owner-NFT aggregator.
func NewOwners(client alchemy.Client, responseCache *cache.Cache, cfg OwnersConfig) *Owners {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	if cfg.Pause <= 0 {
		cfg.Pause = 300 * time.Millisecond
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &Owners{
		client: client,
		cache:  responseCache,
		config: cfg,
	}
}

// pair is one (owner, chain) sub-query of the fan-out.
type pair struct {
	owner string
	chain domain.Chain
}

type pageResult struct {
	page *alchemy.OwnedNFTsPage
	err  error
}

// NFTsForOwners fans out getNFTsForOwner across owner x chain pairs,
// merges and deduplicates the pages, and reports partial failures
// without aborting the aggregate.
func (a *Owners) NFTsForOwners(ctx context.Context, owners []string, chains []domain.Chain, opts OwnersOptions) (*OwnersResult, error) {
	owners = domain.NormalizeAddresses(owners)
	if len(owners) == 0 {
		return &OwnersResult{NFTs: []domain.NFT{}}, nil
	}
	if len(chains) == 0 {
		chains = []domain.Chain{domain.DefaultChain}
	}

	pairs := make([]pair, 0, len(owners)*len(chains))
	for _, owner := range owners {
		for _, chain := range chains {
			pairs = append(pairs, pair{owner: owner, chain: chain})
		}
	}

	// Cursor-based pagination is only meaningful against a single
	// upstream sub-query.
	singleTarget := len(pairs) == 1
	if opts.PageKey != "" && !singleTarget {
		return nil, domain.NewError(domain.ErrInvalidRequest, "pageKey requires a single owner and chain")
	}

	results := make([]pageResult, len(pairs))

	// Bounded fan-out with a short inter-batch pause to stay inside
	// upstream rate limits.
	pool := pond.NewPool(a.config.Concurrency)
	limiter := rate.NewLimiter(rate.Every(a.config.Pause), a.config.Concurrency)
	group := pool.NewGroup()

	for i, pr := range pairs {
		group.Submit(func() {
			if err := limiter.Wait(ctx); err != nil {
				results[i] = pageResult{err: err}
				return
			}
			page, err := a.fetchPage(ctx, pr.chain, pr.owner, opts)
			results[i] = pageResult{page: page, err: err}
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("fan-out pool failure: %w", err)
	}
	pool.StopAndWait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	merger := normalizer.NewMerger()
	result := &OwnersResult{}
	var failures []error

	for i, res := range results {
		if res.err != nil {
			failures = append(failures, res.err)
			logger.WarnCtx(ctx, "owner NFT sub-query failed",
				zap.String("owner", pairs[i].owner),
				zap.String("chain", string(pairs[i].chain)),
				zap.Error(res.err),
			)
			continue
		}
		for _, record := range res.page.OwnedNFTs {
			merger.Add(normalizer.NormalizeNFT(pairs[i].chain, record, pairs[i].owner))
		}
		if res.page.PageKey != nil && *res.page.PageKey != "" {
			result.HasMore = true
			if singleTarget {
				result.PageKey = res.page.PageKey
			}
		}
	}

	// A fully failed fan-out is a real failure, not a partial one.
	if len(failures) == len(pairs) && len(failures) > 0 {
		return nil, failures[0]
	}

	result.NFTs = merger.Result()
	result.TotalCount = len(result.NFTs)
	if len(failures) > 0 {
		pe := &PartialErrors{Count: len(failures)}
		for _, err := range failures {
			if len(pe.Examples) == maxPartialErrorExamples {
				break
			}
			pe.Examples = append(pe.Examples, err.Error())
		}
		result.PartialErrors = pe
	}

	return result, nil
}

// TokenMetadata resolves specific tokens to canonical records, chunking
// requests to the provider's batch maximum.
func (a *Owners) TokenMetadata(ctx context.Context, chain domain.Chain, tokens []alchemy.TokenRef) ([]domain.NFT, error) {
	merger := normalizer.NewMerger()

	for start := 0; start < len(tokens); start += alchemy.MaxMetadataBatchSize {
		end := start + alchemy.MaxMetadataBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		records, err := a.client.GetNFTMetadataBatch(ctx, chain, tokens[start:end])
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			merger.Add(normalizer.NormalizeNFT(chain, record, ""))
		}
	}

	return merger.Result(), nil
}

// fetchPage fetches one page of owner NFTs, through the response cache
// when owner-NFT caching is enabled.
func (a *Owners) fetchPage(ctx context.Context, chain domain.Chain, owner string, opts OwnersOptions) (*alchemy.OwnedNFTsPage, error) {
	fetch := func(ctx context.Context) (*alchemy.OwnedNFTsPage, error) {
		return a.client.GetNFTsForOwner(ctx, chain, owner, alchemy.OwnerQueryOptions{
			PageSize:    opts.PageSize,
			PageKey:     opts.PageKey,
			ExcludeSpam: opts.ExcludeSpam,
		})
	}

	if !a.config.CacheEnabled || a.cache == nil {
		return fetch(ctx)
	}

	key := fmt.Sprintf("nfts:%s:%s:%s", chain, owner, opts.PageKey)
	return cache.GetOrFetchTyped(ctx, a.cache, key, a.config.CacheTTL, fetch)
}

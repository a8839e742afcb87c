package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/foliohq/nft-gateway/internal/cache"
	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/logger"
	"github.com/foliohq/nft-gateway/internal/normalizer"
	"github.com/foliohq/nft-gateway/internal/providers/neynar"
	"github.com/foliohq/nft-gateway/internal/providers/zapper"
)

// profileQuery is the portfolio provider's profile lookup, used when
// the social-graph provider cannot answer.
const profileQuery = `query FarcasterProfile($fid: Int, $username: String) {
  farcasterProfile(fid: $fid, username: $username) {
    fid
    username
    custodyAddress
    connectedAddresses
    metadata {
      displayName
      imageUrl
    }
  }
}`

// Profiles resolves Farcaster profiles with caching and a portfolio
// GraphQL fallback.
type Profiles struct {
	social    neynar.Client
	portfolio zapper.Client
	cache     *cache.Cache
	ttl       time.Duration
}

// NewProfiles creates the profile service.
func NewProfiles(social neynar.Client, portfolio zapper.Client, responseCache *cache.Cache, ttl time.Duration) *Profiles {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Profiles{
		social:    social,
		portfolio: portfolio,
		cache:     responseCache,
		ttl:       ttl,
	}
}

// ByFID resolves a profile by Farcaster id.
func (s *Profiles) ByFID(ctx context.Context, fid int64) (*domain.FarcasterProfile, error) {
	key := fmt.Sprintf("profile:fid:%d", fid)
	return cache.GetOrFetchTyped(ctx, s.cache, key, s.ttl, func(ctx context.Context) (*domain.FarcasterProfile, error) {
		return s.fetch(ctx,
			func(ctx context.Context) (*neynar.User, error) { return s.social.UserByFID(ctx, fid) },
			map[string]interface{}{"fid": fid},
		)
	})
}

// ByUsername resolves a profile by Farcaster username.
func (s *Profiles) ByUsername(ctx context.Context, username string) (*domain.FarcasterProfile, error) {
	key := "profile:username:" + username
	return cache.GetOrFetchTyped(ctx, s.cache, key, s.ttl, func(ctx context.Context) (*domain.FarcasterProfile, error) {
		return s.fetch(ctx,
			func(ctx context.Context) (*neynar.User, error) { return s.social.UserByUsername(ctx, username) },
			map[string]interface{}{"username": username},
		)
	})
}

// fetch tries the social-graph provider first and falls back to the
// portfolio provider's GraphQL lookup when the primary is unavailable.
// A definitive not_found from the primary is trusted and not retried
// against the fallback.
func (s *Profiles) fetch(ctx context.Context, primary func(ctx context.Context) (*neynar.User, error), variables map[string]interface{}) (*domain.FarcasterProfile, error) {
	user, err := primary(ctx)
	if err == nil {
		profile := normalizer.NormalizeSocialProfile(*user)
		return &profile, nil
	}

	switch domain.KindOf(err) {
	case domain.ErrNotFound, domain.ErrClientCancelled:
		return nil, err
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	logger.WarnCtx(ctx, "social-graph profile lookup failed, trying portfolio fallback", zap.Error(err))

	body, fallbackErr := s.portfolio.Query(ctx, zapper.GraphQLRequest{
		Query:         profileQuery,
		Variables:     variables,
		OperationName: "FarcasterProfile",
	})
	if fallbackErr != nil {
		// The primary's classification is the more truthful one.
		logger.WarnCtx(ctx, "portfolio profile fallback failed", zap.Error(fallbackErr))
		return nil, err
	}

	profile, parseErr := normalizer.NormalizePortfolioProfile(body)
	if parseErr != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.NewError(domain.ErrNotFound, "profile not found")
	}
	return profile, nil
}

package aggregator

import (
	"context"

	"go.uber.org/zap"

	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/logger"
	"github.com/foliohq/nft-gateway/internal/normalizer"
	"github.com/foliohq/nft-gateway/internal/providers/alchemy"
	"github.com/foliohq/nft-gateway/internal/providers/neynar"
)

// defaultFriendsLimit caps the response when the caller does not ask
// for a specific limit.
const defaultFriendsLimit = 50

// FriendsResult is the follow-graph / owner-set join for one contract.
type FriendsResult struct {
	ContractAddress string                    `json:"contractAddress"`
	Chain           domain.Chain              `json:"chain"`
	Friends         []domain.CollectionFriend `json:"friends"`
	TotalFriends    int                       `json:"totalFriends"`
	HasMore         bool                      `json:"hasMore"`
}

// Friends computes which of a user's follows hold tokens of a
// collection.
type Friends struct {
	nft    alchemy.Client
	social neynar.Client
}

// NewFriends creates the collection-friends aggregator.
func NewFriends(nft alchemy.Client, social neynar.Client) *Friends {
	return &Friends{nft: nft, social: social}
}

// followAddress pairs one followed profile with one of its addresses,
// in following-list order.
type followAddress struct {
	address string
	profile domain.FarcasterProfile
}

// CollectionFriends intersects the addresses of everyone fid follows
// with the owner set of the contract. Both sides are paged to
// exhaustion; any terminal upstream failure aborts the whole join, a
// half-computed intersection would silently miss friends.
func (a *Friends) CollectionFriends(ctx context.Context, contractAddress string, fid int64, chain domain.Chain, limit int) (*FriendsResult, error) {
	contractAddress = domain.NormalizeAddress(contractAddress)
	if limit <= 0 {
		limit = defaultFriendsLimit
	}

	result := &FriendsResult{
		ContractAddress: contractAddress,
		Chain:           chain,
		Friends:         []domain.CollectionFriend{},
	}

	followed, err := a.collectFollowing(ctx, fid)
	if err != nil {
		return nil, err
	}
	// Nobody followed means an empty intersection; skip the owner scan
	// entirely.
	if len(followed) == 0 {
		return result, nil
	}

	owners, err := a.collectOwners(ctx, chain, contractAddress)
	if err != nil {
		return nil, err
	}

	for _, entry := range followed {
		if !owners[entry.address] {
			continue
		}
		result.Friends = append(result.Friends, domain.CollectionFriend{
			FID:         entry.profile.FID,
			Username:    entry.profile.Username,
			DisplayName: entry.profile.DisplayName,
			AvatarURL:   entry.profile.AvatarURL,
			Address:     entry.address,
		})
	}

	result.TotalFriends = len(result.Friends)
	result.HasMore = result.TotalFriends > limit
	if result.HasMore {
		result.Friends = result.Friends[:limit]
	}

	logger.DebugCtx(ctx, "collection friends computed",
		zap.String("contract", contractAddress),
		zap.Int64("fid", fid),
		zap.Int("followed_addresses", len(followed)),
		zap.Int("owners", len(owners)),
		zap.Int("friends", result.TotalFriends),
	)

	return result, nil
}

// collectFollowing pages the following list to exhaustion and flattens
// it into per-address entries in following order. The first profile to
// claim an address keeps it.
func (a *Friends) collectFollowing(ctx context.Context, fid int64) ([]followAddress, error) {
	var entries []followAddress
	claimed := make(map[string]bool)

	cursor := ""
	for {
		page, err := a.social.Following(ctx, fid, cursor)
		if err != nil {
			return nil, err
		}
		for _, user := range page.Users {
			profile := normalizer.NormalizeSocialProfile(user)
			for _, address := range profile.AllAddresses() {
				if claimed[address] {
					continue
				}
				claimed[address] = true
				entries = append(entries, followAddress{address: address, profile: profile})
			}
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return entries, nil
}

// collectOwners pages the contract's owner list to exhaustion into a
// lowercased address set.
func (a *Friends) collectOwners(ctx context.Context, chain domain.Chain, contractAddress string) (map[string]bool, error) {
	owners := make(map[string]bool)

	pageKey := ""
	for {
		page, err := a.nft.GetOwnersForContract(ctx, chain, contractAddress, pageKey)
		if err != nil {
			return nil, err
		}
		for _, owner := range page.Owners {
			if normalized := domain.NormalizeAddress(owner); normalized != "" {
				owners[normalized] = true
			}
		}
		if page.PageKey == nil || *page.PageKey == "" {
			break
		}
		pageKey = *page.PageKey
	}

	return owners, nil
}

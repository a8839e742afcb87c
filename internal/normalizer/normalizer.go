package normalizer

import (
	"encoding/json"
	"fmt"

	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/providers/alchemy"
	"github.com/foliohq/nft-gateway/internal/providers/neynar"
)

// NormalizeNFT converts one upstream NFT record into the canonical
// shape. owner, when non-empty, is stamped on the record (the caller
// passes it for owned-by queries).
func NormalizeNFT(chain domain.Chain, record alchemy.NFTRecord, owner string) domain.NFT {
	contractAddress := domain.NormalizeAddress(record.Contract.Address)

	nft := domain.NFT{
		UniqueID:        domain.NFTUniqueID(chain, contractAddress, record.TokenID),
		Chain:           chain,
		ContractAddress: contractAddress,
		TokenID:         record.TokenID,
		OwnerAddress:    domain.NormalizeAddress(owner),
	}

	if record.Name != nil {
		nft.Name = *record.Name
	}
	if record.Description != nil {
		nft.Description = *record.Description
	}

	nft.Collection = normalizeCollection(record.Contract)
	nft.ImageURL, nft.RawImageURL = pickImageURL(record)

	return nft
}

func normalizeCollection(contract alchemy.Contract) domain.Collection {
	collection := domain.Collection{
		Symbol:    contract.Symbol,
		TokenType: contract.TokenType,
	}
	if contract.Name != nil {
		collection.Name = *contract.Name
	}
	if contract.OpenSeaMetadata != nil {
		if collection.Name == "" && contract.OpenSeaMetadata.CollectionName != nil {
			collection.Name = *contract.OpenSeaMetadata.CollectionName
		}
		collection.FloorPriceUSD = contract.OpenSeaMetadata.FloorPrice
	}
	return collection
}

// pickImageURL extracts the best known image URL in priority order:
// provider cached -> PNG-converted -> thumbnail -> original ->
// metadata image fields -> first media-array entry. The original
// (unproxied) URL is preserved separately for fallback.
func pickImageURL(record alchemy.NFTRecord) (imageURL, rawImageURL string) {
	if record.Image != nil {
		rawImageURL = deref(record.Image.OriginalURL)
		for _, candidate := range []*string{
			record.Image.CachedURL,
			record.Image.PngURL,
			record.Image.ThumbnailURL,
			record.Image.OriginalURL,
		} {
			if candidate != nil && *candidate != "" {
				imageURL = *candidate
				break
			}
		}
	}

	if imageURL == "" {
		if fromMeta := imageFromMetadata(record); fromMeta != "" {
			imageURL = fromMeta
		}
	}

	if imageURL == "" && len(record.Media) > 0 {
		if gateway := deref(record.Media[0].Gateway); gateway != "" {
			imageURL = gateway
		} else {
			imageURL = deref(record.Media[0].Raw)
		}
	}

	if rawImageURL == "" {
		if fromMeta := imageFromMetadata(record); fromMeta != "" {
			rawImageURL = fromMeta
		} else {
			rawImageURL = imageURL
		}
	}

	return imageURL, rawImageURL
}

// imageFromMetadata digs the token's metadata document for image
// fields, tolerating both the v3 raw wrapper and the flat v2 shape.
func imageFromMetadata(record alchemy.NFTRecord) string {
	var docs []map[string]interface{}
	if record.Raw != nil && record.Raw.Metadata != nil {
		docs = append(docs, record.Raw.Metadata)
	}
	if record.Metadata != nil {
		docs = append(docs, record.Metadata)
	}
	for _, doc := range docs {
		for _, key := range []string{"image", "image_url"} {
			if value, ok := doc[key].(string); ok && value != "" {
				return value
			}
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Merger collapses NFT records by uniqueId across owners, chains and
// pages. The earliest occurrence wins; later occurrences contribute
// their owner address to the record's owner set.
type Merger struct {
	byID  map[string]*domain.NFT
	order []string
}

func NewMerger() *Merger {
	return &Merger{byID: make(map[string]*domain.NFT)}
}

// Add merges one normalized record into the accumulator.
func (m *Merger) Add(nft domain.NFT) {
	existing, ok := m.byID[nft.UniqueID]
	if !ok {
		record := nft
		if record.OwnerAddress != "" {
			record.OwnerAddresses = []string{record.OwnerAddress}
		}
		m.byID[nft.UniqueID] = &record
		m.order = append(m.order, nft.UniqueID)
		return
	}

	if nft.OwnerAddress == "" {
		return
	}
	for _, owner := range existing.OwnerAddresses {
		if owner == nft.OwnerAddress {
			return
		}
	}
	existing.OwnerAddresses = append(existing.OwnerAddresses, nft.OwnerAddress)
}

// Result returns the merged records in insertion order.
func (m *Merger) Result() []domain.NFT {
	result := make([]domain.NFT, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, *m.byID[id])
	}
	return result
}

// Len returns the number of distinct records accumulated so far.
func (m *Merger) Len() int {
	return len(m.order)
}

// NormalizeSocialProfile converts a social-graph user into the
// canonical profile shape.
func NormalizeSocialProfile(user neynar.User) domain.FarcasterProfile {
	profile := domain.FarcasterProfile{
		FID:            user.FID,
		Username:       user.Username,
		DisplayName:    user.DisplayName,
		AvatarURL:      user.PfpURL,
		CustodyAddress: domain.NormalizeAddress(user.CustodyAddress),
	}

	// connectedAddresses is the union of the verified-address arrays.
	var verified []string
	if user.VerifiedAddrs != nil {
		verified = append(verified, user.VerifiedAddrs.EthAddresses...)
	}
	verified = append(verified, user.Verifications...)
	profile.ConnectedAddresses = domain.NormalizeAddresses(verified)
	if profile.ConnectedAddresses == nil {
		profile.ConnectedAddresses = []string{}
	}

	return profile
}

// portfolioProfileEnvelope is the portfolio provider's GraphQL shape
// for a profile lookup.
type portfolioProfileEnvelope struct {
	Data struct {
		FarcasterProfile *struct {
			FID      int64  `json:"fid"`
			Username string `json:"username"`
			Metadata *struct {
				DisplayName string `json:"displayName"`
				ImageURL    string `json:"imageUrl"`
			} `json:"metadata"`
			CustodyAddress     string   `json:"custodyAddress"`
			ConnectedAddresses []string `json:"connectedAddresses"`
		} `json:"farcasterProfile"`
	} `json:"data"`
}

// NormalizePortfolioProfile converts a portfolio GraphQL response body
// into the canonical profile shape.
func NormalizePortfolioProfile(body []byte) (*domain.FarcasterProfile, error) {
	var envelope portfolioProfileEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal portfolio profile: %w", err)
	}
	raw := envelope.Data.FarcasterProfile
	if raw == nil {
		return nil, nil
	}

	profile := &domain.FarcasterProfile{
		FID:                raw.FID,
		Username:           raw.Username,
		CustodyAddress:     domain.NormalizeAddress(raw.CustodyAddress),
		ConnectedAddresses: domain.NormalizeAddresses(raw.ConnectedAddresses),
	}
	if raw.Metadata != nil {
		profile.DisplayName = raw.Metadata.DisplayName
		profile.AvatarURL = raw.Metadata.ImageURL
	}
	if profile.ConnectedAddresses == nil {
		profile.ConnectedAddresses = []string{}
	}
	return profile, nil
}

package alchemy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/foliohq/nft-gateway/internal/adapter"
	"github.com/foliohq/nft-gateway/internal/domain"
)

const PROVIDER_NAME = "nft-provider"

// MaxMetadataBatchSize is the provider's cap on getNFTMetadataBatch.
const MaxMetadataBatchSize = 100

var ErrNoAPIKey = errors.New("no API key provided")

// TokenRef identifies one token in a metadata batch request.
type TokenRef struct {
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenId"`
}

// Contract mirrors the provider's v3 contract block.
type Contract struct {
	Address         string           `json:"address"`
	Name            *string          `json:"name"`
	Symbol          *string          `json:"symbol"`
	TokenType       *string          `json:"tokenType"`
	OpenSeaMetadata *OpenSeaMetadata `json:"openSeaMetadata"`
}

// OpenSeaMetadata carries collection-level marketplace metadata.
type OpenSeaMetadata struct {
	CollectionName *string  `json:"collectionName"`
	FloorPrice     *float64 `json:"floorPrice"`
}

// Image mirrors the provider's v3 image block.
type Image struct {
	CachedURL    *string `json:"cachedUrl"`
	PngURL       *string `json:"pngUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	OriginalURL  *string `json:"originalUrl"`
}

// Media is one entry of the legacy v2 media array.
type Media struct {
	Gateway *string `json:"gateway"`
	Raw     *string `json:"raw"`
}

// NFTRecord is one owned/queried NFT as returned by the provider. The
// raw metadata is kept as a loose map: upstream shapes drift between
// API versions and the normalizer picks fields defensively.
type NFTRecord struct {
	Contract    Contract               `json:"contract"`
	TokenID     string                 `json:"tokenId"`
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Image       *Image                 `json:"image"`
	Media       []Media                `json:"media"`
	Raw         *RawMetadata           `json:"raw"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// RawMetadata wraps the token's original metadata document.
type RawMetadata struct {
	Metadata map[string]interface{} `json:"metadata"`
}

// OwnedNFTsPage is one page of getNFTsForOwner results.
type OwnedNFTsPage struct {
	OwnedNFTs  []NFTRecord `json:"ownedNfts"`
	TotalCount int         `json:"totalCount"`
	PageKey    *string     `json:"pageKey"`
}

// OwnersPage is one page of getOwnersForContract results.
type OwnersPage struct {
	Owners  []string `json:"owners"`
	PageKey *string  `json:"pageKey"`
}

// metadataBatchResponse wraps getNFTMetadataBatch results.
type metadataBatchResponse struct {
	NFTs []NFTRecord `json:"nfts"`
}

// OwnerQueryOptions tunes a getNFTsForOwner call.
type OwnerQueryOptions struct {
	PageSize    int
	PageKey     string
	ExcludeSpam bool
}

// Client defines the interface for NFT provider operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/alchemy_client.go -package=mocks -mock_names=Client=MockAlchemyClient
type Client interface {
	// GetNFTsForOwner fetches one page of NFTs owned by an address on a chain
	GetNFTsForOwner(ctx context.Context, chain domain.Chain, owner string, opts OwnerQueryOptions) (*OwnedNFTsPage, error)

	// GetNFTMetadataBatch fetches metadata for up to 100 tokens on a chain
	GetNFTMetadataBatch(ctx context.Context, chain domain.Chain, tokens []TokenRef) ([]NFTRecord, error)

	// GetOwnersForContract fetches one page of owner addresses for a contract
	GetOwnersForContract(ctx context.Context, chain domain.Chain, contractAddress string, pageKey string) (*OwnersPage, error)
}

// AlchemyClient implements the NFT provider client.
type AlchemyClient struct {
	httpClient adapter.HTTPClient
	json       adapter.JSON
	apiKey     string
}

// NewClient creates a new NFT provider client.
func NewClient(httpClient adapter.HTTPClient, json adapter.JSON, apiKey string) Client {
	return &AlchemyClient{
		httpClient: httpClient,
		json:       json,
		apiKey:     apiKey,
	}
}

// baseURL derives the per-chain endpoint. The API key is part of the
// path and must never be echoed back to the browser.
func (c *AlchemyClient) baseURL(chain domain.Chain, operation string) string {
	return fmt.Sprintf("https://%s.g.alchemy.com/nft/v3/%s/%s", chain.HostPrefix(), c.apiKey, operation)
}

// GetNFTsForOwner fetches one page of NFTs owned by an address on a chain.
func (c *AlchemyClient) GetNFTsForOwner(ctx context.Context, chain domain.Chain, owner string, opts OwnerQueryOptions) (*OwnedNFTsPage, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	query := url.Values{}
	query.Set("owner", owner)
	query.Set("withMetadata", "true")
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	query.Set("pageSize", strconv.Itoa(pageSize))
	if opts.PageKey != "" {
		query.Set("pageKey", opts.PageKey)
	}
	if opts.ExcludeSpam {
		query.Add("excludeFilters[]", "SPAM")
	}

	requestURL := c.baseURL(chain, "getNFTsForOwner") + "?" + query.Encode()

	respBody, err := c.httpClient.GetBytes(ctx, requestURL, nil)
	if err != nil {
		return nil, classify(err)
	}

	var page OwnedNFTsPage
	if err := c.json.Unmarshal(respBody, &page); err != nil {
		return nil, domain.UpstreamError(domain.ErrUpstream, PROVIDER_NAME,
			fmt.Errorf("failed to unmarshal owner NFTs response: %w", err))
	}

	return &page, nil
}

// GetNFTMetadataBatch fetches metadata for up to 100 tokens on a chain.
func (c *AlchemyClient) GetNFTMetadataBatch(ctx context.Context, chain domain.Chain, tokens []TokenRef) ([]NFTRecord, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	if len(tokens) > MaxMetadataBatchSize {
		return nil, fmt.Errorf("metadata batch exceeds provider maximum of %d tokens", MaxMetadataBatchSize)
	}

	body, err := c.json.Marshal(map[string]interface{}{"tokens": tokens})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch request: %w", err)
	}

	respBody, err := c.httpClient.Post(ctx, c.baseURL(chain, "getNFTMetadataBatch"), nil, body)
	if err != nil {
		return nil, classify(err)
	}

	var response metadataBatchResponse
	if err := c.json.Unmarshal(respBody, &response); err != nil {
		return nil, domain.UpstreamError(domain.ErrUpstream, PROVIDER_NAME,
			fmt.Errorf("failed to unmarshal metadata batch response: %w", err))
	}

	return response.NFTs, nil
}

// GetOwnersForContract fetches one page of owner addresses for a contract.
func (c *AlchemyClient) GetOwnersForContract(ctx context.Context, chain domain.Chain, contractAddress string, pageKey string) (*OwnersPage, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	query := url.Values{}
	query.Set("contractAddress", contractAddress)
	if pageKey != "" {
		query.Set("pageKey", pageKey)
	}

	requestURL := c.baseURL(chain, "getOwnersForContract") + "?" + query.Encode()

	respBody, err := c.httpClient.GetBytes(ctx, requestURL, nil)
	if err != nil {
		return nil, classify(err)
	}

	var page OwnersPage
	if err := c.json.Unmarshal(respBody, &page); err != nil {
		return nil, domain.UpstreamError(domain.ErrUpstream, PROVIDER_NAME,
			fmt.Errorf("failed to unmarshal contract owners response: %w", err))
	}

	return &page, nil
}

// classify maps transport errors onto the gateway's error kinds.
func classify(err error) error {
	var statusErr *adapter.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Code == 429:
			return domain.UpstreamError(domain.ErrRateLimited, PROVIDER_NAME, err)
		case statusErr.Code == 401 || statusErr.Code == 403:
			return domain.UpstreamError(domain.ErrUnauthorizedUp, PROVIDER_NAME, err)
		}
		return domain.UpstreamError(domain.ErrUpstream, PROVIDER_NAME, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.UpstreamError(domain.ErrUpstreamTimeout, PROVIDER_NAME, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return domain.UpstreamError(domain.ErrUpstream, PROVIDER_NAME, err)
}

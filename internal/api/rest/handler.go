package rest

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foliohq/nft-gateway/internal/adapter"
	"github.com/foliohq/nft-gateway/internal/aggregator"
	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/mediaproxy"
	"github.com/foliohq/nft-gateway/internal/providers/alchemy"
	"github.com/foliohq/nft-gateway/internal/providers/zapper"
)

// maxRPCBodyBytes caps JSON-RPC pass-through request bodies.
const maxRPCBodyBytes = 1 << 20

// restrictedOperations is the whitelist for the restricted GraphQL
// route. The open pass-through route is not filtered.
var restrictedOperations = []string{"farcasterProfile", "FarcasterProfile"}

// Handler holds the route handlers and their collaborators.
type Handler struct {
	serviceName string

	owners   *aggregator.Owners
	friends  *aggregator.Friends
	profiles *aggregator.Profiles
	media    *mediaproxy.Proxy

	portfolio  zapper.Client
	httpClient adapter.HTTPClient

	rpcURL          string
	strictChains    bool
	defaultPageSize int
	maxPageSize     int

	// missing secrets, by env key, gate their routes with config_error
	nftKeyMissing       bool
	socialKeyMissing    bool
	portfolioKeyMissing bool
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	ServiceName     string
	RPCURL          string
	StrictChains    bool
	DefaultPageSize int
	MaxPageSize     int

	NFTKeyMissing       bool
	SocialKeyMissing    bool
	PortfolioKeyMissing bool
}

// NewHandler creates the route handlers.
func NewHandler(
	owners *aggregator.Owners,
	friends *aggregator.Friends,
	profiles *aggregator.Profiles,
	media *mediaproxy.Proxy,
	portfolio zapper.Client,
	httpClient adapter.HTTPClient,
	opts HandlerOptions,
) *Handler {
	if opts.ServiceName == "" {
		opts.ServiceName = "nft-gateway"
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 100
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	return &Handler{
		serviceName:         opts.ServiceName,
		owners:              owners,
		friends:             friends,
		profiles:            profiles,
		media:               media,
		portfolio:           portfolio,
		httpClient:          httpClient,
		rpcURL:              opts.RPCURL,
		strictChains:        opts.StrictChains,
		defaultPageSize:     opts.DefaultPageSize,
		maxPageSize:         opts.MaxPageSize,
		nftKeyMissing:       opts.NFTKeyMissing,
		socialKeyMissing:    opts.SocialKeyMissing,
		portfolioKeyMissing: opts.PortfolioKeyMissing,
	}
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   h.serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetOwnerNFTs handles GET /nft/owner.
func (h *Handler) GetOwnerNFTs(c *gin.Context) {
	if h.nftKeyMissing {
		respondConfigError(c, "NFT_PROVIDER_KEY")
		return
	}

	owners := splitAddresses(c.Query("owner"))
	if len(owners) == 0 {
		respondBadRequest(c, "owner query parameter is required")
		return
	}

	// chain and chains are interchangeable; both accept comma lists.
	chainsParam := c.Query("chains")
	if chainsParam == "" {
		chainsParam = c.Query("chain")
	}
	chains, ok := h.parseChains(chainsParam)
	if !ok {
		respondBadRequest(c, "unknown chain tag")
		return
	}

	result, err := h.owners.NFTsForOwners(c.Request.Context(), owners, chains, aggregator.OwnersOptions{
		PageSize:    h.parsePageSize(c),
		PageKey:     c.Query("pageKey"),
		ExcludeSpam: parseBool(c.Query("excludeSpam"), false),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ownersRequest is the body of POST /nft/owners. chain and chains are
// interchangeable.
type ownersRequest struct {
	Owners      []string `json:"owners"`
	Chain       string   `json:"chain"`
	Chains      []string `json:"chains"`
	PageSize    int      `json:"pageSize"`
	ExcludeSpam *bool    `json:"excludeSpam"`
}

// PostOwnersNFTs handles POST /nft/owners, the multi-wallet variant.
func (h *Handler) PostOwnersNFTs(c *gin.Context) {
	if h.nftKeyMissing {
		respondConfigError(c, "NFT_PROVIDER_KEY")
		return
	}

	var req ownersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "request body must be valid JSON")
		return
	}

	tags := req.Chains
	if len(tags) == 0 && req.Chain != "" {
		tags = []string{req.Chain}
	}
	var chains []domain.Chain
	for _, tag := range tags {
		chain, ok := h.parseChain(tag)
		if !ok {
			respondBadRequest(c, "unknown chain tag: "+tag)
			return
		}
		chains = append(chains, chain)
	}

	excludeSpam := false
	if req.ExcludeSpam != nil {
		excludeSpam = *req.ExcludeSpam
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = h.defaultPageSize
	}
	if pageSize > h.maxPageSize {
		pageSize = h.maxPageSize
	}

	result, err := h.owners.NFTsForOwners(c.Request.Context(), req.Owners, chains, aggregator.OwnersOptions{
		PageSize:    pageSize,
		ExcludeSpam: excludeSpam,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// tokensRequest is the body of POST /nft/tokens.
type tokensRequest struct {
	Chain  string `json:"chain"`
	Tokens []struct {
		ContractAddress string `json:"contractAddress"`
		TokenID         string `json:"tokenId"`
	} `json:"tokens"`
}

// PostTokensMetadata handles POST /nft/tokens, resolving specific
// tokens to canonical records.
func (h *Handler) PostTokensMetadata(c *gin.Context) {
	if h.nftKeyMissing {
		respondConfigError(c, "NFT_PROVIDER_KEY")
		return
	}

	var req tokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "request body must be valid JSON")
		return
	}
	if len(req.Tokens) == 0 {
		respondBadRequest(c, "tokens must not be empty")
		return
	}

	chain, ok := h.parseChain(req.Chain)
	if !ok {
		respondBadRequest(c, "unknown chain tag")
		return
	}

	refs := make([]alchemy.TokenRef, 0, len(req.Tokens))
	for _, token := range req.Tokens {
		if token.ContractAddress == "" || token.TokenID == "" {
			respondBadRequest(c, "each token needs contractAddress and tokenId")
			return
		}
		refs = append(refs, alchemy.TokenRef{
			ContractAddress: token.ContractAddress,
			TokenID:         token.TokenID,
		})
	}

	nfts, err := h.owners.TokenMetadata(c.Request.Context(), chain, refs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nfts": nfts, "totalCount": len(nfts)})
}

// GetCollectionFriends handles GET /nft/collection-friends.
func (h *Handler) GetCollectionFriends(c *gin.Context) {
	if h.nftKeyMissing {
		respondConfigError(c, "NFT_PROVIDER_KEY")
		return
	}
	if h.socialKeyMissing {
		respondConfigError(c, "SOCIAL_GRAPH_KEY")
		return
	}

	contractAddress := c.Query("contractAddress")
	if contractAddress == "" {
		respondBadRequest(c, "contractAddress query parameter is required")
		return
	}

	fid, err := parseFID(c.Query("fid"))
	if err != nil {
		respondBadRequest(c, "fid must be a positive integer")
		return
	}

	chain, ok := h.parseChain(c.Query("chain"))
	if !ok {
		respondBadRequest(c, "unknown chain tag")
		return
	}

	// limit 0 lets the aggregator apply its default of 50.
	result, err := h.friends.CollectionFriends(c.Request.Context(), contractAddress, fid, chain, parseLimit(c.Query("limit")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetFarcasterProfile handles GET /profile/farcaster. Exactly one of
// fid and username selects the profile.
func (h *Handler) GetFarcasterProfile(c *gin.Context) {
	if h.socialKeyMissing && h.portfolioKeyMissing {
		respondConfigError(c, "SOCIAL_GRAPH_KEY")
		return
	}

	fidValue := c.Query("fid")
	username := c.Query("username")

	switch {
	case fidValue == "" && username == "":
		respondBadRequest(c, "one of fid or username is required")
		return
	case fidValue != "" && username != "":
		respondBadRequest(c, "fid and username are mutually exclusive")
		return
	}

	var profile *domain.FarcasterProfile
	var err error
	if fidValue != "" {
		var fid int64
		fid, err = parseFID(fidValue)
		if err != nil {
			respondBadRequest(c, "fid must be a positive integer")
			return
		}
		profile, err = h.profiles.ByFID(c.Request.Context(), fid)
	} else {
		profile, err = h.profiles.ByUsername(c.Request.Context(), username)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetMedia handles GET /media. It always answers 200 with media bytes
// or an SVG placeholder so <img> elements never break.
func (h *Handler) GetMedia(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		respondBadRequest(c, "url query parameter is required")
		return
	}

	result := h.media.Fetch(c.Request.Context(), rawURL)

	c.Header("Cache-Control", result.CacheControl)
	c.Data(http.StatusOK, result.ContentType, result.Body)
}

// PostPortfolioGraphQL handles POST /graphql/portfolio, the open
// GraphQL pass-through.
func (h *Handler) PostPortfolioGraphQL(c *gin.Context) {
	h.forwardGraphQL(c, nil)
}

// PostZapperGraphQL handles POST /zapper, the restricted GraphQL
// route. Queries outside the whitelist are rejected.
func (h *Handler) PostZapperGraphQL(c *gin.Context) {
	h.forwardGraphQL(c, restrictedOperations)
}

func (h *Handler) forwardGraphQL(c *gin.Context, whitelist []string) {
	if h.portfolioKeyMissing {
		respondConfigError(c, "PORTFOLIO_GRAPHQL_KEY")
		return
	}

	var request zapper.GraphQLRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBadRequest(c, "request body must be a GraphQL request")
		return
	}
	if request.Query == "" {
		respondBadRequest(c, "query is required")
		return
	}
	if whitelist != nil && !zapper.OperationAllowed(request.Query, whitelist) {
		respondBadRequest(c, "operation not allowed on this route")
		return
	}

	body, err := h.portfolio.Query(c.Request.Context(), request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}

// PostOptimismRPC handles POST /rpc/optimism, a JSON-RPC pass-through
// to a public node.
func (h *Handler) PostOptimismRPC(c *gin.Context) {
	if h.rpcURL == "" {
		respondConfigError(c, "OPTIMISM_RPC_URL")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRPCBodyBytes))
	if err != nil {
		respondBadRequest(c, "failed to read request body")
		return
	}
	if len(body) == 0 {
		respondBadRequest(c, "request body is required")
		return
	}

	respBody, err := h.httpClient.Post(c.Request.Context(), h.rpcURL, nil, body)
	if err != nil {
		kind := domain.KindOf(err)
		if kind == domain.ErrInternal {
			kind = domain.ErrUpstream
		}
		respondError(c, domain.UpstreamError(kind, "optimism-rpc", err))
		return
	}

	c.Data(http.StatusOK, "application/json", respBody)
}

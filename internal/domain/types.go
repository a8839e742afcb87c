package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Chain identifies a supported blockchain by its short tag.
type Chain string

const (
	ChainEthereum Chain = "eth"
	ChainPolygon  Chain = "polygon"
	ChainArbitrum Chain = "arbitrum"
	ChainOptimism Chain = "optimism"
	ChainBase     Chain = "base"
	ChainZora     Chain = "zora"
)

// DefaultChain is used when a request omits or misspells the chain tag
// and strict chain validation is disabled.
const DefaultChain = ChainEthereum

// chainHosts maps each chain tag to the NFT provider's host prefix.
var chainHosts = map[Chain]string{
	ChainEthereum: "eth-mainnet",
	ChainPolygon:  "polygon-mainnet",
	ChainArbitrum: "arb-mainnet",
	ChainOptimism: "opt-mainnet",
	ChainBase:     "base-mainnet",
	ChainZora:     "zora-mainnet",
}

// ParseChain parses a chain tag case-insensitively.
func ParseChain(s string) (Chain, bool) {
	c := Chain(strings.ToLower(strings.TrimSpace(s)))
	_, ok := chainHosts[c]
	return c, ok
}

// HostPrefix returns the NFT provider host prefix for the chain
// (e.g. "eth" -> "eth-mainnet").
func (c Chain) HostPrefix() string {
	return chainHosts[c]
}

// Valid reports whether the chain belongs to the supported set.
func (c Chain) Valid() bool {
	_, ok := chainHosts[c]
	return ok
}

// Chains returns the supported chain set in a stable order.
func Chains() []Chain {
	return []Chain{ChainEthereum, ChainPolygon, ChainArbitrum, ChainOptimism, ChainBase, ChainZora}
}

// NormalizeAddress lowercases an address. Hex addresses are run through
// go-ethereum's parser first so malformed casing and missing padding
// collapse to one canonical form.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	if common.IsHexAddress(address) {
		return strings.ToLower(common.HexToAddress(address).Hex())
	}
	return strings.ToLower(address)
}

// NormalizeAddresses lowercases and deduplicates a list of addresses,
// dropping empty entries. Order of first occurrence is preserved.
func NormalizeAddresses(addresses []string) []string {
	seen := make(map[string]bool, len(addresses))
	result := make([]string, 0, len(addresses))
	for _, address := range addresses {
		normalized := NormalizeAddress(address)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}
	return result
}

// NFTUniqueID derives the deterministic identifier for an NFT from its
// identity triple. Equal ids imply the same underlying token.
func NFTUniqueID(chain Chain, contractAddress, tokenID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s",
		strings.ToLower(string(chain)),
		strings.ToLower(contractAddress),
		tokenID,
	)))
	return hex.EncodeToString(sum[:])
}

// Collection holds the collection-level metadata attached to an NFT.
type Collection struct {
	Name          string   `json:"name"`
	Symbol        *string  `json:"symbol,omitempty"`
	TokenType     *string  `json:"tokenType,omitempty"`
	FloorPriceUSD *float64 `json:"floorPriceUsd"`
}

// NFT is the canonical token record the gateway returns to the browser.
type NFT struct {
	UniqueID        string     `json:"uniqueId"`
	Chain           Chain      `json:"chain"`
	ContractAddress string     `json:"contractAddress"`
	TokenID         string     `json:"tokenId"`
	Name            string     `json:"name,omitempty"`
	Description     string     `json:"description,omitempty"`
	ImageURL        string     `json:"imageUrl"`
	RawImageURL     string     `json:"rawImageUrl"`
	Collection      Collection `json:"collection"`
	// OwnerAddress is set when the record was produced by an
	// owned-by query; OwnerAddresses accumulates owners when records
	// from multiple queries collapse into one.
	OwnerAddress      string   `json:"ownerAddress,omitempty"`
	OwnerAddresses    []string `json:"ownerAddresses,omitempty"`
	EstimatedValueUSD *float64 `json:"estimatedValueUsd"`
}

// FarcasterProfile is the canonical social-graph profile shape,
// regardless of which upstream produced it.
type FarcasterProfile struct {
	FID                int64    `json:"fid"`
	Username           string   `json:"username"`
	DisplayName        string   `json:"displayName"`
	AvatarURL          string   `json:"avatarUrl,omitempty"`
	CustodyAddress     string   `json:"custodyAddress,omitempty"`
	ConnectedAddresses []string `json:"connectedAddresses"`
}

// AllAddresses returns the union of the custody address and connected
// addresses, lowercased and deduplicated.
func (p FarcasterProfile) AllAddresses() []string {
	addresses := make([]string, 0, len(p.ConnectedAddresses)+1)
	if p.CustodyAddress != "" {
		addresses = append(addresses, p.CustodyAddress)
	}
	addresses = append(addresses, p.ConnectedAddresses...)
	return NormalizeAddresses(addresses)
}

// CollectionFriend is one entry of the follow-graph / owner-set join.
type CollectionFriend struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Address     string `json:"address"`
}

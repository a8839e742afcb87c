package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/providers/alchemy"
	"github.com/foliohq/nft-gateway/internal/providers/neynar"
)

func strptr(s string) *string { return &s }

func TestNormalizeNFT(t *testing.T) {
	record := alchemy.NFTRecord{
		Contract: alchemy.Contract{
			Address: "0xDEF0000000000000000000000000000000000001",
			Name:    strptr("Punks"),
			Symbol:  strptr("PUNK"),
		},
		TokenID:     "42",
		Name:        strptr("Punk #42"),
		Description: strptr("a punk"),
		Image: &alchemy.Image{
			CachedURL:   strptr("https://cdn.example/cached.png"),
			OriginalURL: strptr("ipfs://QmOriginal"),
		},
	}

	nft := NormalizeNFT(domain.ChainEthereum, record, "0xAB5801A7D398351B8BE11C439E05C5B3259AEC9B")

	assert.Equal(t, domain.NFTUniqueID(domain.ChainEthereum, "0xdef0000000000000000000000000000000000001", "42"), nft.UniqueID)
	assert.Equal(t, "0xdef0000000000000000000000000000000000001", nft.ContractAddress)
	assert.Equal(t, "0xab5801a7d398351b8be11c439e05c5b3259aec9b", nft.OwnerAddress)
	assert.Equal(t, "Punk #42", nft.Name)
	assert.Equal(t, "Punks", nft.Collection.Name)
	assert.Equal(t, "https://cdn.example/cached.png", nft.ImageURL)
	assert.Equal(t, "ipfs://QmOriginal", nft.RawImageURL)
}

func TestPickImageURLPriority(t *testing.T) {
	tests := []struct {
		name     string
		record   alchemy.NFTRecord
		imageURL string
	}{
		{
			name: "cached beats original",
			record: alchemy.NFTRecord{Image: &alchemy.Image{
				CachedURL:   strptr("https://cdn/cached"),
				OriginalURL: strptr("https://origin/full"),
			}},
			imageURL: "https://cdn/cached",
		},
		{
			name: "thumbnail when no cached or png",
			record: alchemy.NFTRecord{Image: &alchemy.Image{
				ThumbnailURL: strptr("https://cdn/thumb"),
				OriginalURL:  strptr("https://origin/full"),
			}},
			imageURL: "https://cdn/thumb",
		},
		{
			name: "metadata image when image block empty",
			record: alchemy.NFTRecord{
				Raw: &alchemy.RawMetadata{Metadata: map[string]interface{}{"image": "ipfs://QmMeta"}},
			},
			imageURL: "ipfs://QmMeta",
		},
		{
			name: "flat metadata image_url",
			record: alchemy.NFTRecord{
				Metadata: map[string]interface{}{"image_url": "https://meta/image"},
			},
			imageURL: "https://meta/image",
		},
		{
			name: "legacy media gateway",
			record: alchemy.NFTRecord{
				Media: []alchemy.Media{{Gateway: strptr("https://gw/media"), Raw: strptr("ipfs://QmRaw")}},
			},
			imageURL: "https://gw/media",
		},
		{
			name:     "nothing known",
			record:   alchemy.NFTRecord{},
			imageURL: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imageURL, _ := pickImageURL(tt.record)
			assert.Equal(t, tt.imageURL, imageURL)
		})
	}
}

func TestCollectionNameFallsBackToOpenSea(t *testing.T) {
	collection := normalizeCollection(alchemy.Contract{
		Address: "0xdef",
		OpenSeaMetadata: &alchemy.OpenSeaMetadata{
			CollectionName: strptr("Punks (OS)"),
			FloorPrice:     floatptr(1.5),
		},
	})

	assert.Equal(t, "Punks (OS)", collection.Name)
	require.NotNil(t, collection.FloorPriceUSD)
	assert.Equal(t, 1.5, *collection.FloorPriceUSD)
}

func floatptr(f float64) *float64 { return &f }

func TestMergerDeduplicatesAcrossOwners(t *testing.T) {
	record := alchemy.NFTRecord{
		Contract: alchemy.Contract{Address: "0xdef"},
		TokenID:  "1",
	}
	other := alchemy.NFTRecord{
		Contract: alchemy.Contract{Address: "0xdef"},
		TokenID:  "2",
	}

	merger := NewMerger()
	merger.Add(NormalizeNFT(domain.ChainEthereum, record, "0xaaa"))
	merger.Add(NormalizeNFT(domain.ChainEthereum, other, "0xaaa"))
	merger.Add(NormalizeNFT(domain.ChainEthereum, record, "0xbbb"))
	merger.Add(NormalizeNFT(domain.ChainEthereum, record, "0xbbb"))

	result := merger.Result()
	require.Len(t, result, 2)
	assert.Equal(t, 2, merger.Len())

	// First occurrence wins and keeps insertion order.
	assert.Equal(t, "1", result[0].TokenID)
	assert.Equal(t, "0xaaa", result[0].OwnerAddress)
	assert.Equal(t, []string{"0xaaa", "0xbbb"}, result[0].OwnerAddresses)
	assert.Equal(t, []string{"0xaaa"}, result[1].OwnerAddresses)
}

func TestMergerKeepsChainsDistinct(t *testing.T) {
	record := alchemy.NFTRecord{
		Contract: alchemy.Contract{Address: "0xdef"},
		TokenID:  "1",
	}

	merger := NewMerger()
	merger.Add(NormalizeNFT(domain.ChainEthereum, record, "0xaaa"))
	merger.Add(NormalizeNFT(domain.ChainBase, record, "0xaaa"))

	assert.Equal(t, 2, merger.Len())
}

func TestNormalizeSocialProfile(t *testing.T) {
	profile := NormalizeSocialProfile(neynar.User{
		FID:            7,
		Username:       "alice",
		DisplayName:    "Alice",
		PfpURL:         "https://pfp.example/alice.png",
		CustodyAddress: "0xAB5801A7D398351B8BE11C439E05C5B3259AEC9B",
		VerifiedAddrs: &neynar.VerifiedAddresses{
			EthAddresses: []string{"0x00000000219ab540356cBB839Cbe05303d7705Fa"},
		},
		Verifications: []string{"0x00000000219ab540356cbb839cbe05303d7705fa"},
	})

	assert.Equal(t, int64(7), profile.FID)
	assert.Equal(t, "0xab5801a7d398351b8be11c439e05c5b3259aec9b", profile.CustodyAddress)
	// Verified arrays are unioned and deduplicated.
	assert.Equal(t, []string{"0x00000000219ab540356cbb839cbe05303d7705fa"}, profile.ConnectedAddresses)
}

func TestNormalizeSocialProfileEmptyAddresses(t *testing.T) {
	profile := NormalizeSocialProfile(neynar.User{FID: 7, Username: "alice"})

	assert.NotNil(t, profile.ConnectedAddresses)
	assert.Empty(t, profile.ConnectedAddresses)
}

func TestNormalizePortfolioProfile(t *testing.T) {
	body := []byte(`{
		"data": {
			"farcasterProfile": {
				"fid": 7,
				"username": "alice",
				"custodyAddress": "0xAB5801A7D398351B8BE11C439E05C5B3259AEC9B",
				"connectedAddresses": ["0x00000000219ab540356cBB839Cbe05303d7705Fa"],
				"metadata": {"displayName": "Alice", "imageUrl": "https://pfp/alice"}
			}
		}
	}`)

	profile, err := NormalizePortfolioProfile(body)

	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, int64(7), profile.FID)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, "https://pfp/alice", profile.AvatarURL)
	assert.Equal(t, "0xab5801a7d398351b8be11c439e05c5b3259aec9b", profile.CustodyAddress)
}

func TestNormalizePortfolioProfileAbsent(t *testing.T) {
	profile, err := NormalizePortfolioProfile([]byte(`{"data": {"farcasterProfile": null}}`))

	require.NoError(t, err)
	assert.Nil(t, profile)
}

package aggregator

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/mocks"
	"github.com/foliohq/nft-gateway/internal/providers/alchemy"
	"github.com/foliohq/nft-gateway/internal/providers/neynar"
)

const (
	aliceAddr = "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	bobAddr   = "0x00000000219ab540356cbb839cbe05303d7705fa"
)

func followUser(fid int64, username, address string) neynar.User {
	return neynar.User{
		FID:      fid,
		Username: username,
		VerifiedAddrs: &neynar.VerifiedAddresses{
			EthAddresses: []string{address},
		},
	}
}

func TestCollectionFriends(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	social := mocks.NewMockNeynarClient(ctrl)
	nft := mocks.NewMockAlchemyClient(ctrl)

	// Following list arrives over two pages.
	gomock.InOrder(
		social.EXPECT().
			Following(gomock.Any(), int64(7), "").
			Return(&neynar.FollowingPage{
				Users:      []neynar.User{followUser(1, "alice", aliceAddr)},
				NextCursor: "page-2",
			}, nil),
		social.EXPECT().
			Following(gomock.Any(), int64(7), "page-2").
			Return(&neynar.FollowingPage{
				Users: []neynar.User{followUser(2, "bob", bobAddr)},
			}, nil),
	)

	// Owner list also paged.
	cursor := "owners-2"
	gomock.InOrder(
		nft.EXPECT().
			GetOwnersForContract(gomock.Any(), domain.ChainEthereum, "0xdef", "").
			Return(&alchemy.OwnersPage{
				Owners:  []string{"0xAB5801A7D398351B8BE11C439E05C5B3259AEC9B"},
				PageKey: &cursor,
			}, nil),
		nft.EXPECT().
			GetOwnersForContract(gomock.Any(), domain.ChainEthereum, "0xdef", cursor).
			Return(&alchemy.OwnersPage{Owners: []string{"0x9999999999999999999999999999999999999999"}}, nil),
	)

	friends := NewFriends(nft, social)
	result, err := friends.CollectionFriends(context.Background(), "0xDEF", 7, domain.ChainEthereum, 10)

	require.NoError(t, err)
	assert.Equal(t, "0xdef", result.ContractAddress)
	assert.Equal(t, 1, result.TotalFriends)
	assert.False(t, result.HasMore)
	require.Len(t, result.Friends, 1)
	assert.Equal(t, "alice", result.Friends[0].Username)
	assert.Equal(t, aliceAddr, result.Friends[0].Address)
}

func TestCollectionFriendsEmptyFollowingSkipsOwnerScan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	social := mocks.NewMockNeynarClient(ctrl)
	// No GetOwnersForContract expectation: calling it fails the test.
	nft := mocks.NewMockAlchemyClient(ctrl)

	social.EXPECT().
		Following(gomock.Any(), int64(7), "").
		Return(&neynar.FollowingPage{}, nil)

	friends := NewFriends(nft, social)
	result, err := friends.CollectionFriends(context.Background(), "0xdef", 7, domain.ChainEthereum, 10)

	require.NoError(t, err)
	assert.Empty(t, result.Friends)
	assert.Equal(t, 0, result.TotalFriends)
}

func TestCollectionFriendsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	social := mocks.NewMockNeynarClient(ctrl)
	nft := mocks.NewMockAlchemyClient(ctrl)

	social.EXPECT().
		Following(gomock.Any(), int64(7), "").
		Return(&neynar.FollowingPage{
			Users: []neynar.User{
				followUser(1, "alice", aliceAddr),
				followUser(2, "bob", bobAddr),
			},
		}, nil)
	nft.EXPECT().
		GetOwnersForContract(gomock.Any(), domain.ChainEthereum, "0xdef", "").
		Return(&alchemy.OwnersPage{Owners: []string{aliceAddr, bobAddr}}, nil)

	friends := NewFriends(nft, social)
	result, err := friends.CollectionFriends(context.Background(), "0xdef", 7, domain.ChainEthereum, 1)

	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalFriends)
	assert.True(t, result.HasMore)
	require.Len(t, result.Friends, 1)
	// Following order decides who makes the cut.
	assert.Equal(t, "alice", result.Friends[0].Username)
}

func TestCollectionFriendsUpstreamFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	social := mocks.NewMockNeynarClient(ctrl)
	nft := mocks.NewMockAlchemyClient(ctrl)

	social.EXPECT().
		Following(gomock.Any(), int64(7), "").
		Return(&neynar.FollowingPage{
			Users: []neynar.User{followUser(1, "alice", aliceAddr)},
		}, nil)
	nft.EXPECT().
		GetOwnersForContract(gomock.Any(), domain.ChainEthereum, "0xdef", "").
		Return(nil, domain.UpstreamError(domain.ErrUpstream, "nft-provider", errors.New("boom")))

	friends := NewFriends(nft, social)
	_, err := friends.CollectionFriends(context.Background(), "0xdef", 7, domain.ChainEthereum, 10)

	assert.Equal(t, domain.ErrUpstream, domain.KindOf(err))
}

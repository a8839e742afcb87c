package neynar_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/nft-gateway/internal/adapter"
	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/mocks"
	"github.com/foliohq/nft-gateway/internal/providers/neynar"
)

const baseURL = "https://social.example/v2"

func newTestClient(httpClient adapter.HTTPClient) neynar.Client {
	return neynar.NewClient(httpClient, adapter.NewJSON(), baseURL, "test-key", "x-api-key", "api_key")
}

func TestFollowing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := newTestClient(httpClient)

	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), map[string]string{"x-api-key": "test-key"}).
		DoAndReturn(func(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
			assert.Contains(t, url, baseURL+"/following?")
			assert.Contains(t, url, "fid=7")
			return []byte(`{
				"users": [
					{"fid": 1, "username": "alice"},
					{"user": {"fid": 2, "username": "bob"}}
				],
				"next": {"cursor": "page-2"}
			}`), nil
		})

	page, err := client.Following(context.Background(), 7, "")

	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	assert.Equal(t, "alice", page.Users[0].Username)
	// Wrapped entries resolve to the nested user.
	assert.Equal(t, "bob", page.Users[1].Username)
	assert.Equal(t, int64(2), page.Users[1].FID)
	assert.Equal(t, "page-2", page.NextCursor)
}

func TestAlternateAuthHeaderFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := newTestClient(httpClient)

	gomock.InOrder(
		httpClient.EXPECT().
			GetBytes(gomock.Any(), gomock.Any(), map[string]string{"x-api-key": "test-key"}).
			Return(nil, &adapter.StatusError{Code: 401}),
		httpClient.EXPECT().
			GetBytes(gomock.Any(), gomock.Any(), map[string]string{"api_key": "test-key"}).
			Return([]byte(`{"users": [{"fid": 7, "username": "alice"}]}`), nil),
	)

	user, err := client.UserByFID(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestAlternateAuthHeaderAlsoRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := newTestClient(httpClient)

	gomock.InOrder(
		httpClient.EXPECT().
			GetBytes(gomock.Any(), gomock.Any(), map[string]string{"x-api-key": "test-key"}).
			Return(nil, &adapter.StatusError{Code: 401}),
		httpClient.EXPECT().
			GetBytes(gomock.Any(), gomock.Any(), map[string]string{"api_key": "test-key"}).
			Return(nil, &adapter.StatusError{Code: 403}),
	)

	_, err := client.UserByFID(context.Background(), 7)
	assert.Equal(t, domain.ErrUnauthorizedUp, domain.KindOf(err))
}

func TestUserByFIDNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := newTestClient(httpClient)

	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte(`{"users": []}`), nil)

	_, err := client.UserByFID(context.Background(), 999)
	assert.Equal(t, domain.ErrNotFound, domain.KindOf(err))
}

func TestUserByUsername(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := newTestClient(httpClient)

	httpClient.EXPECT().
		GetBytes(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
			assert.Contains(t, url, "/user/by_username?username=alice")
			return []byte(`{"user": {"fid": 7, "username": "alice"}}`), nil
		})

	user, err := client.UserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.FID)
}

func TestRequiresAPIKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := neynar.NewClient(mocks.NewMockHTTPClient(ctrl), adapter.NewJSON(), baseURL, "", "x-api-key", "api_key")

	_, err := client.UserByFID(context.Background(), 7)
	assert.ErrorIs(t, err, neynar.ErrNoAPIKey)
}

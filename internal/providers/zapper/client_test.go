package zapper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/nft-gateway/internal/adapter"
	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/mocks"
	"github.com/foliohq/nft-gateway/internal/providers/zapper"
)

var testEndpoints = []string{"https://one.example/graphql", "https://two.example/graphql"}

func newTestClient(httpClient adapter.HTTPClient) zapper.Client {
	return zapper.NewClient(httpClient, adapter.NewJSON(), testEndpoints, "test-key", "x-api-key")
}

func TestQueryFirstEndpointWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := newTestClient(httpClient)

	httpClient.EXPECT().
		Post(gomock.Any(), testEndpoints[0], gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error) {
			assert.Equal(t, "test-key", headers["x-api-key"])
			assert.Contains(t, string(body), "farcasterProfile")
			return []byte(`{"data": {"farcasterProfile": {"fid": 7}}}`), nil
		})

	body, err := client.Query(context.Background(), zapper.GraphQLRequest{
		Query: `query { farcasterProfile(fid: 7) { fid } }`,
	})

	require.NoError(t, err)
	assert.Contains(t, string(body), `"fid": 7`)
}

func TestQueryFallsBackToNextEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := newTestClient(httpClient)

	gomock.InOrder(
		httpClient.EXPECT().
			Post(gomock.Any(), testEndpoints[0], gomock.Any(), gomock.Any()).
			Return(nil, &adapter.StatusError{Code: 503}),
		httpClient.EXPECT().
			Post(gomock.Any(), testEndpoints[1], gomock.Any(), gomock.Any()).
			Return([]byte(`{"data": {"ok": true}}`), nil),
	)

	body, err := client.Query(context.Background(), zapper.GraphQLRequest{Query: `query { ok }`})

	require.NoError(t, err)
	assert.Contains(t, string(body), `"ok"`)
}

func TestQuerySkipsEndpointWithErrorsAndNullData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := newTestClient(httpClient)

	gomock.InOrder(
		httpClient.EXPECT().
			Post(gomock.Any(), testEndpoints[0], gomock.Any(), gomock.Any()).
			Return([]byte(`{"data": null, "errors": [{"message": "unsupported"}]}`), nil),
		httpClient.EXPECT().
			Post(gomock.Any(), testEndpoints[1], gomock.Any(), gomock.Any()).
			Return([]byte(`{"data": {"ok": true}}`), nil),
	)

	body, err := client.Query(context.Background(), zapper.GraphQLRequest{Query: `query { ok }`})

	require.NoError(t, err)
	assert.Contains(t, string(body), `"ok"`)
}

func TestQueryKeepsPartialData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := newTestClient(httpClient)

	// Errors alongside usable data are passed through, not retried.
	httpClient.EXPECT().
		Post(gomock.Any(), testEndpoints[0], gomock.Any(), gomock.Any()).
		Return([]byte(`{"data": {"ok": true}, "errors": [{"message": "partial"}]}`), nil)

	body, err := client.Query(context.Background(), zapper.GraphQLRequest{Query: `query { ok }`})

	require.NoError(t, err)
	assert.Contains(t, string(body), `"partial"`)
}

func TestQueryAllEndpointsFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	client := newTestClient(httpClient)

	httpClient.EXPECT().
		Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused")).
		Times(len(testEndpoints))

	_, err := client.Query(context.Background(), zapper.GraphQLRequest{Query: `query { ok }`})
	assert.Equal(t, domain.ErrUpstream, domain.KindOf(err))
}

func TestQueryRequiresAPIKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := zapper.NewClient(mocks.NewMockHTTPClient(ctrl), adapter.NewJSON(), testEndpoints, "", "x-api-key")

	_, err := client.Query(context.Background(), zapper.GraphQLRequest{Query: `query { ok }`})
	assert.ErrorIs(t, err, zapper.ErrNoAPIKey)
}

func TestOperationAllowed(t *testing.T) {
	whitelist := []string{"farcasterProfile", "FarcasterProfile"}

	tests := []struct {
		name    string
		query   string
		allowed bool
	}{
		{
			name:    "allowed by top-level field",
			query:   `query { farcasterProfile(fid: 7) { fid } }`,
			allowed: true,
		},
		{
			name:    "allowed by operation name",
			query:   `query FarcasterProfile($fid: Int) { profile(fid: $fid) { fid } }`,
			allowed: true,
		},
		{
			name:    "disallowed field",
			query:   `query { portfolio(address: "0xabc") { totalUsd } }`,
			allowed: false,
		},
		{
			name:    "unparseable query",
			query:   `query {{{`,
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, zapper.OperationAllowed(tt.query, whitelist))
		})
	}
}

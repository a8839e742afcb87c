package neynar

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/foliohq/nft-gateway/internal/adapter"
	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/logger"
)

const PROVIDER_NAME = "social-graph"

// followPageSize is the provider's page size for the following list.
const followPageSize = 100

var ErrNoAPIKey = errors.New("no API key provided")

// User mirrors the provider's user object. Older API variants nest the
// user under a "user" wrapper in follow responses; both are accepted.
type User struct {
	FID            int64              `json:"fid"`
	Username       string             `json:"username"`
	DisplayName    string             `json:"display_name"`
	PfpURL         string             `json:"pfp_url"`
	CustodyAddress string             `json:"custody_address"`
	VerifiedAddrs  *VerifiedAddresses `json:"verified_addresses"`
	Verifications  []string           `json:"verifications"`
}

// VerifiedAddresses groups verified addresses by address family.
type VerifiedAddresses struct {
	EthAddresses []string `json:"eth_addresses"`
	SolAddresses []string `json:"sol_addresses"`
}

// followEntry is one element of the following list. Depending on the
// API variant the user appears directly or under "user".
type followEntry struct {
	User
	Wrapped *User `json:"user"`
}

func (e followEntry) user() User {
	if e.Wrapped != nil {
		return *e.Wrapped
	}
	return e.User
}

// FollowingPage is one page of the following list.
type FollowingPage struct {
	Users      []User
	NextCursor string
}

type followingResponse struct {
	Users []followEntry `json:"users"`
	Next  struct {
		Cursor *string `json:"cursor"`
	} `json:"next"`
}

type bulkUsersResponse struct {
	Users []User `json:"users"`
}

type userByUsernameResponse struct {
	User *User `json:"user"`
}

// Client defines the interface for social-graph operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/neynar_client.go -package=mocks -mock_names=Client=MockNeynarClient
type Client interface {
	// Following fetches one page of the users that fid follows
	Following(ctx context.Context, fid int64, cursor string) (*FollowingPage, error)

	// UserByFID fetches a single user by fid
	UserByFID(ctx context.Context, fid int64) (*User, error)

	// UserByUsername fetches a single user by username
	UserByUsername(ctx context.Context, username string) (*User, error)
}

// NeynarClient implements the social-graph client.
type NeynarClient struct {
	httpClient adapter.HTTPClient
	json       adapter.JSON
	baseURL    string
	apiKey     string
	authHeader string
	altHeader  string
}

// NewClient creates a new social-graph client. authHeader is the
// primary authentication header name; altHeader is tried once when the
// primary is rejected with 401/403.
func NewClient(httpClient adapter.HTTPClient, json adapter.JSON, baseURL, apiKey, authHeader, altHeader string) Client {
	return &NeynarClient{
		httpClient: httpClient,
		json:       json,
		baseURL:    baseURL,
		apiKey:     apiKey,
		authHeader: authHeader,
		altHeader:  altHeader,
	}
}

// getBytes performs an authenticated GET, retrying once under the
// alternate header name when the primary is rejected.
func (c *NeynarClient) getBytes(ctx context.Context, requestURL string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	respBody, err := c.httpClient.GetBytes(ctx, requestURL, map[string]string{c.authHeader: c.apiKey})
	if err == nil {
		return respBody, nil
	}

	var statusErr *adapter.StatusError
	if c.altHeader != "" && errors.As(err, &statusErr) && (statusErr.Code == 401 || statusErr.Code == 403) {
		logger.Warn("primary auth header rejected, retrying with alternate",
			zap.String("provider", PROVIDER_NAME),
			zap.Int("status", statusErr.Code),
		)
		respBody, altErr := c.httpClient.GetBytes(ctx, requestURL, map[string]string{c.altHeader: c.apiKey})
		if altErr == nil {
			return respBody, nil
		}
		if errors.As(altErr, &statusErr) && (statusErr.Code == 401 || statusErr.Code == 403) {
			return nil, domain.UpstreamError(domain.ErrUnauthorizedUp, PROVIDER_NAME, altErr)
		}
		err = altErr
	}

	return nil, classify(err)
}

// Following fetches one page of the users that fid follows.
func (c *NeynarClient) Following(ctx context.Context, fid int64, cursor string) (*FollowingPage, error) {
	query := url.Values{}
	query.Set("fid", strconv.FormatInt(fid, 10))
	query.Set("limit", strconv.Itoa(followPageSize))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	respBody, err := c.getBytes(ctx, c.baseURL+"/following?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var response followingResponse
	if err := c.json.Unmarshal(respBody, &response); err != nil {
		return nil, domain.UpstreamError(domain.ErrUpstream, PROVIDER_NAME,
			fmt.Errorf("failed to unmarshal following response: %w", err))
	}

	page := &FollowingPage{Users: make([]User, 0, len(response.Users))}
	for _, entry := range response.Users {
		page.Users = append(page.Users, entry.user())
	}
	if response.Next.Cursor != nil {
		page.NextCursor = *response.Next.Cursor
	}
	return page, nil
}

// UserByFID fetches a single user by fid.
func (c *NeynarClient) UserByFID(ctx context.Context, fid int64) (*User, error) {
	query := url.Values{}
	query.Set("fids", strconv.FormatInt(fid, 10))

	respBody, err := c.getBytes(ctx, c.baseURL+"/user/bulk?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var response bulkUsersResponse
	if err := c.json.Unmarshal(respBody, &response); err != nil {
		return nil, domain.UpstreamError(domain.ErrUpstream, PROVIDER_NAME,
			fmt.Errorf("failed to unmarshal user response: %w", err))
	}
	if len(response.Users) == 0 {
		return nil, domain.NewError(domain.ErrNotFound, fmt.Sprintf("no user with fid %d", fid))
	}
	return &response.Users[0], nil
}

// UserByUsername fetches a single user by username.
func (c *NeynarClient) UserByUsername(ctx context.Context, username string) (*User, error) {
	query := url.Values{}
	query.Set("username", username)

	respBody, err := c.getBytes(ctx, c.baseURL+"/user/by_username?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var response userByUsernameResponse
	if err := c.json.Unmarshal(respBody, &response); err != nil {
		return nil, domain.UpstreamError(domain.ErrUpstream, PROVIDER_NAME,
			fmt.Errorf("failed to unmarshal user response: %w", err))
	}
	if response.User == nil {
		return nil, domain.NewError(domain.ErrNotFound, fmt.Sprintf("no user with username %q", username))
	}
	return response.User, nil
}

func classify(err error) error {
	var statusErr *adapter.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case 404:
			return domain.NewError(domain.ErrNotFound, "profile not found")
		case 429:
			return domain.UpstreamError(domain.ErrRateLimited, PROVIDER_NAME, err)
		case 401, 403:
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

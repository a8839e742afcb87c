package zapper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"

	"github.com/foliohq/nft-gateway/internal/adapter"
	"github.com/foliohq/nft-gateway/internal/domain"
	"github.com/foliohq/nft-gateway/internal/logger"
)

const PROVIDER_NAME = "portfolio-graphql"

var ErrNoAPIKey = errors.New("no API key provided")

// GraphQLRequest is the wire shape forwarded to the provider.
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// graphQLEnvelope is the minimal response shape needed to decide
// whether an endpoint produced a usable answer.
type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Client defines the interface for portfolio GraphQL operations to enable mocking
//
//go:generate mockgen -source=client.go -destination=../../mocks/zapper_client.go -package=mocks -mock_names=Client=MockZapperClient
type Client interface {
	// Query forwards a GraphQL request, walking candidate endpoints in
	// order until one yields a usable response.
	Query(ctx context.Context, request GraphQLRequest) ([]byte, error)
}

// ZapperClient implements the portfolio GraphQL client.
type ZapperClient struct {
	httpClient adapter.HTTPClient
	json       adapter.JSON
	endpoints  []string
	apiKey     string
	authHeader string
}

// NewClient creates a new portfolio GraphQL client. endpoints is the
// ordered candidate list; the first usable response wins.
func NewClient(httpClient adapter.HTTPClient, json adapter.JSON, endpoints []string, apiKey, authHeader string) Client {
	return &ZapperClient{
		httpClient: httpClient,
		json:       json,
		endpoints:  endpoints,
		apiKey:     apiKey,
		authHeader: authHeader,
	}
}

// Query forwards a GraphQL request with endpoint fallback. An endpoint
// is abandoned on terminal transport failure or when it answers with
// GraphQL errors and no data.
func (c *ZapperClient) Query(ctx context.Context, request GraphQLRequest) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if len(c.endpoints) == 0 {
		return nil, domain.NewError(domain.ErrConfig, "no portfolio endpoints configured")
	}

	body, err := c.json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		c.authHeader:   c.apiKey,
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		respBody, err := c.httpClient.Post(ctx, endpoint, headers, body)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			logger.Warn("portfolio endpoint failed, trying next",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		var envelope graphQLEnvelope
		if err := c.json.Unmarshal(respBody, &envelope); err != nil {
			lastErr = fmt.Errorf("failed to unmarshal GraphQL response: %w", err)
			continue
		}
		if len(envelope.Errors) > 0 && isNullData(envelope.Data) {
			logger.Warn("portfolio endpoint returned errors without data, trying next",
				zap.String("endpoint", endpoint),
				zap.String("first_error", envelope.Errors[0].Message),
			)
			lastErr = fmt.Errorf("GraphQL errors: %s", envelope.Errors[0].Message)
			continue
		}

		return respBody, nil
	}

	return nil, classify(lastErr)
}

func isNullData(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}

// OperationAllowed reports whether the query text contains one of the
// whitelisted operations. Used by the restricted route; the open
// pass-through route skips this check.
func OperationAllowed(query string, whitelist []string) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return false
	}

	allowed := make(map[string]bool, len(whitelist))
	for _, name := range whitelist {
		allowed[name] = true
	}

	for _, op := range doc.Operations {
		if allowed[op.Name] {
			return true
		}
		for _, sel := range op.SelectionSet {
			if field, ok := sel.(*ast.Field); ok && allowed[field.Name] {
				return true
			}
		}
	}
	return false
}

func classify(err error) error {
	if err == nil {
		return domain.UpstreamError(domain.ErrUpstream, PROVIDER_NAME, errors.New("all endpoints exhausted"))
	}
	var statusErr *adapter.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case 429:
			return domain.UpstreamError(domain.ErrRateLimited, PROVIDER_NAME, err)
		case 401, 403:
			return domain.UpstreamError(domain.ErrUnauthorizedUp, PROVIDER_NAME, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.UpstreamError(domain.ErrUpstreamTimeout, PROVIDER_NAME, err)
	}
	return domain.UpstreamError(domain.ErrUpstream, PROVIDER_NAME, err)
}

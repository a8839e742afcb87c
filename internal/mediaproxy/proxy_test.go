package mediaproxy

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/nft-gateway/internal/adapter"
	"github.com/foliohq/nft-gateway/internal/mocks"
)

func newTestProxy(maxBodyBytes int64) *Proxy {
	return New(
		adapter.NewHTTPClient(2*time.Second, 1),
		NewRewriter(nil, nil),
		Config{AttemptTimeout: 2 * time.Second, MaxAttempts: 1, MaxBodyBytes: maxBodyBytes},
	)
}

func TestFetchSuccess(t *testing.T) {
	payload := []byte("fake-png-bytes")
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		GetResponse(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"image/png"}},
			Body:       io.NopCloser(bytes.NewReader(payload)),
		}, nil)

	proxy := New(
		httpClient,
		NewRewriter(nil, nil),
		Config{AttemptTimeout: 2 * time.Second, MaxAttempts: 1, MaxBodyBytes: 1024},
	)

	result := proxy.Fetch(context.Background(), "https://example.com/media.png")

	assert.False(t, result.Placeholder)
	assert.Equal(t, payload, result.Body)
	assert.Equal(t, "image/png", result.ContentType)
	assert.Equal(t, cacheControlSuccess, result.CacheControl)
}

func TestFetchServesPlaceholderOnUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result := newTestProxy(1024).Fetch(context.Background(), server.URL)

	assert.True(t, result.Placeholder)
	assert.Equal(t, "image/svg+xml", result.ContentType)
	assert.Equal(t, cacheControlPlaceholder, result.CacheControl)
	assert.True(t, strings.HasPrefix(string(result.Body), "<svg"))
	assert.Contains(t, string(result.Body), "Image unavailable")
}

func TestFetchServesPlaceholderForOversizedMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer server.Close()

	result := newTestProxy(1024).Fetch(context.Background(), server.URL)

	assert.True(t, result.Placeholder)
}

func TestFetchServesPlaceholderForUnreachableHost(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	result := newTestProxy(1024).Fetch(context.Background(), url)

	assert.True(t, result.Placeholder)
}

func TestResolveContentType(t *testing.T) {
	pngMagic := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

	tests := []struct {
		name        string
		headerValue string
		url         string
		body        []byte
		expected    string
	}{
		{
			name:        "header wins",
			headerValue: "image/webp",
			url:         "https://x/file.png",
			expected:    "image/webp",
		},
		{
			name:        "octet-stream falls through to extension",
			headerValue: "application/octet-stream",
			url:         "https://x/file.gif?size=big",
			expected:    "image/gif",
		},
		{
			name:     "extension without header",
			url:      "https://x/clip.mp4",
			expected: "video/mp4",
		},
		{
			name:     "sniffed from body",
			url:      "https://x/no-extension",
			body:     pngMagic,
			expected: "image/png",
		},
		{
			name:     "default",
			url:      "https://x/no-extension",
			body:     []byte("plain text"),
			expected: "image/jpeg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveContentType(tt.headerValue, tt.url, tt.body))
		})
	}
}

func TestPlaceholderCaptionClipped(t *testing.T) {
	result := placeholderResult(strings.Repeat("a", 100))

	require.True(t, result.Placeholder)
	assert.LessOrEqual(t, len(string(result.Body)), 1024)
	assert.Contains(t, string(result.Body), strings.Repeat("a", maxCaptionLen)+"</text>")
}

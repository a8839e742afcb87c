package mediaproxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/foliohq/nft-gateway/internal/adapter"
	"github.com/foliohq/nft-gateway/internal/logger"
)

const (
	// placeholder captions are clipped to keep the SVG legible.
	maxCaptionLen = 30

	cacheControlSuccess     = "public, max-age=86400"
	cacheControlPlaceholder = "public, max-age=3600"
)

// contentTypeByExtension infers the media type when the upstream omits
// a Content-Type header.
var contentTypeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

// Result is what the proxy hands to the HTTP layer. The proxy never
// fails: on any definitive upstream failure Body holds the SVG
// placeholder and Placeholder is set.
type Result struct {
	Body         []byte
	ContentType  string
	CacheControl string
	Placeholder  bool
}

// Config tunes the fetch policy.
type Config struct {
	AttemptTimeout time.Duration
	MaxAttempts    int
	MaxBodyBytes   int64
}

// Proxy fetches media URLs on behalf of the browser, applying per-host
// rewrites and size/time limits.
type Proxy struct {
	httpClient adapter.HTTPClient
	rewriter   *Rewriter
	config     Config
}

// New creates a media proxy.
func New(httpClient adapter.HTTPClient, rewriter *Rewriter, cfg Config) *Proxy {
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 8 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 * 1024 * 1024
	}
	return &Proxy{
		httpClient: httpClient,
		rewriter:   rewriter,
		config:     cfg,
	}
}

// Fetch retrieves the media behind rawURL. It always produces an
// image-like result; the browser contract requires HTTP 200 with
// either content or a placeholder.
func (p *Proxy) Fetch(ctx context.Context, rawURL string) *Result {
	targetURL, headers := p.rewriter.Rewrite(rawURL)

	var body []byte
	var contentType string

	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.config.AttemptTimeout)
		defer cancel()

		resp, err := p.httpClient.GetResponse(attemptCtx, targetURL, headers)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("fetch failed: %w", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logger.Warn("failed to close media response body", zap.Error(err), zap.String("url", targetURL))
			}
		}()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("upstream status %d", resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			// 4xx is definitive; no point retrying.
			return backoff.Permanent(fmt.Errorf("upstream status %d", resp.StatusCode))
		}

		limited := io.LimitReader(resp.Body, p.config.MaxBodyBytes+1)
		data, err := io.ReadAll(limited)
		if err != nil {
			return fmt.Errorf("failed to read media body: %w", err)
		}
		if int64(len(data)) > p.config.MaxBodyBytes {
			return backoff.Permanent(fmt.Errorf("media exceeds %d bytes", p.config.MaxBodyBytes))
		}

		body = data
		contentType = resp.Header.Get("Content-Type")
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.config.MaxAttempts-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		logger.Warn("media fetch failed, serving placeholder",
			zap.String("url", rawURL),
			zap.String("target", targetURL),
			zap.Error(err),
		)
		return placeholderResult("Image unavailable")
	}

	return &Result{
		Body:         body,
		ContentType:  resolveContentType(contentType, targetURL, body),
		CacheControl: cacheControlSuccess,
	}
}

// resolveContentType keeps the upstream's Content-Type when present,
// falls back to the URL extension, then content sniffing, and finally
// to image/jpeg.
func resolveContentType(headerValue, targetURL string, body []byte) string {
	if headerValue != "" && headerValue != "application/octet-stream" {
		return headerValue
	}

	ext := strings.ToLower(path.Ext(strippedPath(targetURL)))
	if ct, ok := contentTypeByExtension[ext]; ok {
		return ct
	}

	if len(body) > 0 {
		if mtype := mimetype.Detect(body); mtype != nil {
			detected := mtype.String()
			if strings.HasPrefix(detected, "image/") || strings.HasPrefix(detected, "video/") {
				return detected
			}
		}
	}

	return "image/jpeg"
}

func strippedPath(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return rawURL
}

// placeholderResult builds the neutral 200x200 SVG frame with a short
// caption. Served with HTTP 200 so the browser's <img> element renders
// it instead of a broken-image glyph.
func placeholderResult(caption string) *Result {
	if len(caption) > maxCaptionLen {
		caption = caption[:maxCaptionLen]
	}
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200" viewBox="0 0 200 200">`+
		`<rect width="200" height="200" fill="#f0f0f0"/>`+
		`<rect x="0.5" y="0.5" width="199" height="199" fill="none" stroke="#cccccc"/>`+
		`<text x="100" y="104" font-family="sans-serif" font-size="12" fill="#888888" text-anchor="middle">%s</text>`+
		`</svg>`, caption)
	return &Result{
		Body:         []byte(svg),
		ContentType:  "image/svg+xml",
		CacheControl: cacheControlPlaceholder,
		Placeholder:  true,
	}
}

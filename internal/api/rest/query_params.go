package rest

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foliohq/nft-gateway/internal/domain"
)

// parseChain resolves a chain tag from a query value. Unknown tags fall
// back to the default chain unless strict chain validation is on.
func (h *Handler) parseChain(value string) (domain.Chain, bool) {
	if value == "" {
		return domain.DefaultChain, true
	}
	chain, ok := domain.ParseChain(value)
	if ok {
		return chain, true
	}
	if h.strictChains {
		return "", false
	}
	return domain.DefaultChain, true
}

// parseChains resolves a comma-separated chain list, deduplicated in
// order of first occurrence.
func (h *Handler) parseChains(value string) ([]domain.Chain, bool) {
	if value == "" {
		return []domain.Chain{domain.DefaultChain}, true
	}

	seen := make(map[domain.Chain]bool)
	var chains []domain.Chain
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		chain, ok := h.parseChain(part)
		if !ok {
			return nil, false
		}
		if seen[chain] {
			continue
		}
		seen[chain] = true
		chains = append(chains, chain)
	}
	if len(chains) == 0 {
		chains = []domain.Chain{domain.DefaultChain}
	}
	return chains, true
}

// parsePageSize clamps the requested page size into [1, max], using the
// default when absent or malformed.
func (h *Handler) parsePageSize(c *gin.Context) int {
	value := c.Query("pageSize")
	if value == "" {
		return h.defaultPageSize
	}
	size, err := strconv.Atoi(value)
	if err != nil || size <= 0 {
		return h.defaultPageSize
	}
	if size > h.maxPageSize {
		return h.maxPageSize
	}
	return size
}

// parseLimit reads a positive result limit, returning 0 (caller's
// default) when absent or malformed.
func parseLimit(value string) int {
	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}

// parseFID parses a Farcaster id, rejecting zero and negatives.
func parseFID(value string) (int64, error) {
	fid, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	if fid <= 0 {
		return 0, strconv.ErrRange
	}
	return fid, nil
}

// parseBool reads a lenient boolean query value.
func parseBool(value string, fallback bool) bool {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// splitAddresses splits a comma-separated address list, trimming empty
// entries. Normalization and dedup happen downstream.
func splitAddresses(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

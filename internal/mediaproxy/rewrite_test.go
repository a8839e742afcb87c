package mediaproxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewrite(t *testing.T) {
	rewriter := NewRewriter(
		[]string{"https://cloudflare-ipfs.com", "https://ipfs.io"},
		[]string{"https://arweave.net"},
	)

	tests := []struct {
		name        string
		input       string
		expectedURL string
		headers     map[string]string
	}{
		{
			name:        "ipfs scheme",
			input:       "ipfs://QmHash/file.png",
			expectedURL: "https://cloudflare-ipfs.com/ipfs/QmHash/file.png",
			headers:     map[string]string{},
		},
		{
			name:        "arweave scheme",
			input:       "ar://tx-id",
			expectedURL: "https://arweave.net/tx-id",
			headers:     map[string]string{},
		},
		{
			name:        "foreign ipfs gateway is repointed",
			input:       "https://gateway.pinata.cloud/ipfs/QmHash",
			expectedURL: "https://cloudflare-ipfs.com/ipfs/QmHash",
			headers:     map[string]string{},
		},
		{
			name:        "http upgraded to https",
			input:       "http://media.example/cat.gif",
			expectedURL: "https://media.example/cat.gif",
			headers:     map[string]string{},
		},
		{
			name:        "alchemy cdn gets a size suffix and referer",
			input:       "https://nft-cdn.alchemy.com/eth-mainnet/abc123",
			expectedURL: "https://nft-cdn.alchemy.com/eth-mainnet/abc123/original",
			headers:     map[string]string{"Referer": "https://www.alchemy.com/"},
		},
		{
			name:        "alchemy cdn with existing suffix untouched",
			input:       "https://nft-cdn.alchemy.com/eth-mainnet/abc123/thumb",
			expectedURL: "https://nft-cdn.alchemy.com/eth-mainnet/abc123/thumb",
			headers:     map[string]string{"Referer": "https://www.alchemy.com/"},
		},
		{
			name:        "seadn width parameter stripped",
			input:       "https://i.seadn.io/gae/abc?w=500",
			expectedURL: "https://i.seadn.io/gae/abc",
			headers:     map[string]string{"Origin": "https://opensea.io", "Referer": "https://opensea.io/"},
		},
		{
			name:        "strict referrer host gets no headers",
			input:       "https://metadata.ens.domains/mainnet/avatar/x.eth",
			expectedURL: "https://metadata.ens.domains/mainnet/avatar/x.eth",
			headers:     map[string]string{},
		},
		{
			name:        "plain https untouched",
			input:       "https://media.example/cat.png",
			expectedURL: "https://media.example/cat.png",
			headers:     map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, headers := rewriter.Rewrite(tt.input)
			assert.Equal(t, tt.expectedURL, url)
			assert.Equal(t, tt.headers, headers)
		})
	}
}

func TestRewriterDefaults(t *testing.T) {
	rewriter := NewRewriter(nil, nil)

	url, _ := rewriter.Rewrite("ipfs://QmHash")
	assert.Equal(t, "https://cloudflare-ipfs.com/ipfs/QmHash", url)

	url, _ = rewriter.Rewrite("ar://tx")
	assert.Equal(t, "https://arweave.net/tx", url)
}

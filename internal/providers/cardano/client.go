package cardano

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/feral-file/ff-agent-registry/internal/adapter"
	"github.com/feral-file/ff-agent-registry/internal/domain"
	"github.com/feral-file/ff-agent-registry/internal/ratelimit"
)

// Order is the sort direction accepted by list endpoints
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// PolicyAsset is one asset minted under a policy
type PolicyAsset struct {
	Asset    string `json:"asset"`
	Quantity string `json:"quantity"`
}

// Burned reports whether the asset has no circulating supply left
func (a PolicyAsset) Burned() bool {
	return a.Quantity == domain.BURNED_QUANTITY
}

// Asset is the detail view of a single asset
type Asset struct {
	Asset                   string          `json:"asset"`
	PolicyID                string          `json:"policy_id"`
	AssetName               *string         `json:"asset_name"`
	Fingerprint             string          `json:"fingerprint"`
	Quantity                string          `json:"quantity"`
	InitialMintTxHash       string          `json:"initial_mint_tx_hash"`
	MintOrBurnCount         int             `json:"mint_or_burn_count"`
	OnchainMetadata         json.RawMessage `json:"onchain_metadata"`
	OnchainMetadataStandard *string         `json:"onchain_metadata_standard"`
}

// AssetAddress is an address currently holding an asset
type AssetAddress struct {
	Address  string `json:"address"`
	Quantity string `json:"quantity"`
}

// Client defines the ledger reads needed to mirror a registry policy
//
//go:generate mockgen -source=client.go -destination=../../mocks/cardano_client.go -package=mocks -mock_names=Client=MockCardanoClient,ClientFactory=MockCardanoClientFactory
type Client interface {
	// ListPolicyAssets returns one page (1-based) of assets minted under policyID in mint order
	ListPolicyAssets(ctx context.Context, policyID string, page int, count int) ([]PolicyAsset, error)

	// GetAsset returns the asset detail including its on-chain metadata.
	// Unknown assets return an error wrapping domain.ErrNotFound.
	GetAsset(ctx context.Context, assetID string) (*Asset, error)

	// ListAssetAddresses returns the addresses holding assetID. An unknown
	// asset has no holders.
	ListAssetAddresses(ctx context.Context, assetID string, order Order) ([]AssetAddress, error)
}

// ClientFactory builds clients scoped to a network and a source credential
type ClientFactory interface {
	ForSource(network domain.Network, projectID string) (Client, error)
}

// blockfrostClient is the concrete implementation of Client backed by the Blockfrost API
type blockfrostClient struct {
	baseURL    string
	projectID  string
	limiterKey string
	httpClient adapter.HTTPClient
	proxy      ratelimit.Proxy
}

// NewClient creates a new Blockfrost client. Requests share the rate limit bucket of
// projectID when proxy is not nil.
func NewClient(baseURL string, projectID string, httpClient adapter.HTTPClient, proxy ratelimit.Proxy) Client {
	return &blockfrostClient{
		baseURL:    baseURL,
		projectID:  projectID,
		limiterKey: LimiterKey(projectID),
		httpClient: httpClient,
		proxy:      proxy,
	}
}

// LimiterKey is the rate limit key of a project. The quota belongs to the
// project id, which must not leak into Redis, so only a digest is used.
func LimiterKey(projectID string) string {
	sum := sha256.Sum256([]byte(projectID))
	return "blockfrost:" + hex.EncodeToString(sum[:8])
}

func (c *blockfrostClient) headers() map[string]string {
	return map[string]string{"project_id": c.projectID}
}

func (c *blockfrostClient) getJSON(ctx context.Context, u string, result interface{}) error {
	_, err := ratelimit.Request(ctx, c.proxy, c.limiterKey, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.httpClient.GetJSON(ctx, u, c.headers(), result)
	})
	return err
}

func notFound(err error) bool {
	return adapter.StatusCodeOf(err) == http.StatusNotFound
}

// ListPolicyAssets retrieves a page of assets minted under a policy
func (c *blockfrostClient) ListPolicyAssets(ctx context.Context, policyID string, page int, count int) ([]PolicyAsset, error) {
	if page < 1 {
		page = 1
	}
	u := fmt.Sprintf("%s/assets/policy/%s?page=%d&count=%d&order=asc",
		c.baseURL, url.PathEscape(policyID), page, count)

	var assets []PolicyAsset
	if err := c.getJSON(ctx, u, &assets); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("failed to list assets of policy %s: %w", policyID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to list assets of policy %s page %d: %w", policyID, page, err)
	}

	return assets, nil
}

// GetAsset retrieves a single asset
func (c *blockfrostClient) GetAsset(ctx context.Context, assetID string) (*Asset, error) {
	u := fmt.Sprintf("%s/assets/%s", c.baseURL, url.PathEscape(assetID))

	var asset Asset
	if err := c.getJSON(ctx, u, &asset); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("failed to get asset %s: %w", assetID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get asset %s: %w", assetID, err)
	}

	return &asset, nil
}

// ListAssetAddresses retrieves the first page of holders of an asset
func (c *blockfrostClient) ListAssetAddresses(ctx context.Context, assetID string, order Order) ([]AssetAddress, error) {
	u := fmt.Sprintf("%s/assets/%s/addresses?order=%s", c.baseURL, url.PathEscape(assetID), order)

	var addresses []AssetAddress
	if err := c.getJSON(ctx, u, &addresses); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list addresses of asset %s: %w", assetID, err)
	}

	return addresses, nil
}

// clientFactory builds Blockfrost clients per network
type clientFactory struct {
	baseURLs   map[domain.Network]string
	httpClient adapter.HTTPClient
	proxy      ratelimit.Proxy
}

// NewClientFactory creates a ClientFactory using a base URL per network.
// proxy may be nil to disable client-side rate limiting.
func NewClientFactory(baseURLs map[domain.Network]string, httpClient adapter.HTTPClient, proxy ratelimit.Proxy) ClientFactory {
	return &clientFactory{
		baseURLs:   baseURLs,
		httpClient: httpClient,
		proxy:      proxy,
	}
}

// ErrNoCredential is returned when a source has no ledger API credential
var ErrNoCredential = errors.New("source has no ledger API credential")

// ForSource returns a client for network authenticated with projectID
func (f *clientFactory) ForSource(network domain.Network, projectID string) (Client, error) {
	if projectID == "" {
		return nil, ErrNoCredential
	}
	baseURL, ok := f.baseURLs[network]
	if !ok || baseURL == "" {
		return nil, fmt.Errorf("no ledger API configured for network %s", network)
	}
	return NewClient(baseURL, projectID, f.httpClient, f.proxy), nil
}

package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"position_monitor/internal/entity"

	"github.com/cenkalti/backoff/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Wallet-scoped query. first:300 is far above any realistic open-position
// count for a single wallet; user{address} lets us hard-filter client-side
// in case the API ignores the where clause.
const marketPositionsQuery = `
query MarketPositionsByUser($addresses: [String!]!, $chainIds: [Int!]) {
  marketPositions(first: 300, where: { userAddress_in: $addresses, chainId_in: $chainIds }) {
    items {
      market {
        uniqueKey
        whitelisted
        loanAsset { address symbol decimals chain { id } }
        collateralAsset { address symbol decimals chain { id } }
      }
      user { address }
      state {
        supplyAssets
        supplyAssetsUsd
        borrowAssets
        borrowAssetsUsd
        collateral
        collateralUsd
        borrowApy
      }
    }
  }
}`

// Fallback for deployments where the filtered list field is unavailable.
// Queried once per chain.
const userByAddressQuery = `
query UserByAddress($chainId: Int!, $address: Address!) {
  userByAddress(chainId: $chainId, address: $address) {
    address
    marketPositions {
      market {
        uniqueKey
        whitelisted
        loanAsset { address symbol decimals chain { id } }
        collateralAsset { address symbol decimals chain { id } }
      }
      state {
        supplyAssets
        supplyAssetsUsd
        borrowAssets
        borrowAssetsUsd
        collateral
        collateralUsd
        borrowApy
      }
    }
  }
}`

// MorphoClient defines the interface for the Morpho Blue GraphQL indexer.
type MorphoClient interface {
	// FetchMarketPositions returns the open positions of one wallet on
	// the given chains, strictly scoped to that wallet.
	FetchMarketPositions(ctx context.Context, walletAddress string, chainIDs []uint64) ([]entity.MarketPositionItem, error)
}

// morphoClientImpl is the implementation of MorphoClient.
type morphoClientImpl struct {
	client      *fasthttp.Client
	endpointURL string
	timeout     time.Duration
	logger      *zap.Logger
	limiter     *rate.Limiter
	maxAttempts uint
	retryDelay  time.Duration
}

// NewMorphoClient creates a new instance of morphoClientImpl.
func NewMorphoClient(endpointURL string, timeout time.Duration, logger *zap.Logger, requestsPerSecond float64, maxAttempts int, retryDelay time.Duration) MorphoClient {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}
	return &morphoClientImpl{
		client:      &fasthttp.Client{},
		endpointURL: strings.TrimRight(endpointURL, "/"),
		timeout:     timeout,
		logger:      logger.Named("MorphoClient"),
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		maxAttempts: uint(maxAttempts),
		retryDelay:  retryDelay,
	}
}

// FetchMarketPositions implements the MorphoClient interface.
func (c *morphoClientImpl) FetchMarketPositions(ctx context.Context, walletAddress string, chainIDs []uint64) ([]entity.MarketPositionItem, error) {
	variables := map[string]any{"addresses": []string{walletAddress}}
	if len(chainIDs) > 0 {
		variables["chainIds"] = chainIDs
	}

	body, err := c.postGraphQL(ctx, entity.GraphQLRequest{Query: marketPositionsQuery, Variables: variables})
	if err != nil {
		return nil, err
	}

	var resp entity.MarketPositionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Failed to unmarshal marketPositions response",
			zap.String("wallet", walletAddress),
			zap.ByteString("responseBody", body),
			zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal marketPositions response: %w", err)
	}

	if len(resp.Errors) > 0 {
		if isNoResults(resp.Errors) {
			c.logger.Debug("Indexer reported no positions for wallet", zap.String("wallet", walletAddress))
			return nil, nil
		}
		if isSchemaMismatch(resp.Errors) {
			c.logger.Warn("Filtered marketPositions field unavailable, using userByAddress fallback",
				zap.String("wallet", walletAddress),
				zap.String("firstError", resp.Errors[0].Message))
			return c.fetchViaUserByAddress(ctx, walletAddress, chainIDs)
		}
		return nil, fmt.Errorf("indexer returned errors for wallet %s: %s", walletAddress, joinErrors(resp.Errors))
	}

	if resp.Data == nil || resp.Data.MarketPositions == nil {
		return nil, nil
	}

	items := filterByWallet(resp.Data.MarketPositions.Items, walletAddress)
	c.logger.Debug("Fetched market positions",
		zap.String("wallet", walletAddress),
		zap.Int("positionCount", len(items)))
	return items, nil
}

// fetchViaUserByAddress queries each chain separately through the older
// userByAddress field and merges the results.
func (c *morphoClientImpl) fetchViaUserByAddress(ctx context.Context, walletAddress string, chainIDs []uint64) ([]entity.MarketPositionItem, error) {
	var merged []entity.MarketPositionItem
	for _, chainID := range chainIDs {
		body, err := c.postGraphQL(ctx, entity.GraphQLRequest{
			Query:     userByAddressQuery,
			Variables: map[string]any{"chainId": chainID, "address": walletAddress},
		})
		if err != nil {
			return nil, fmt.Errorf("fallback query failed on chain %d: %w", chainID, err)
		}

		var resp entity.UserByAddressResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal userByAddress response on chain %d: %w", chainID, err)
		}
		if len(resp.Errors) > 0 {
			if isNoResults(resp.Errors) {
				continue
			}
			return nil, fmt.Errorf("fallback query returned errors on chain %d: %s", chainID, joinErrors(resp.Errors))
		}
		if resp.Data == nil || resp.Data.UserByAddress == nil {
			continue
		}
		merged = append(merged, resp.Data.UserByAddress.MarketPositions...)
	}
	c.logger.Debug("Fetched market positions via fallback",
		zap.String("wallet", walletAddress),
		zap.Int("positionCount", len(merged)))
	return merged, nil
}

// postGraphQL executes one GraphQL POST with rate limiting and retries.
func (c *morphoClientImpl) postGraphQL(ctx context.Context, payload entity.GraphQLRequest) ([]byte, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryDelay

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Retrying indexer request after error", zap.Error(err), zap.Duration("backoff", wait))
	}

	operation := func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		return c.doPost(ctx, requestBody)
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxAttempts),
		backoff.WithNotify(notify))
	if err != nil {
		c.logger.Error("Indexer request failed after all attempts", zap.String("url", c.endpointURL), zap.Error(err))
		return nil, err
	}
	return body, nil
}

func (c *morphoClientImpl) doPost(ctx context.Context, requestBody []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.endpointURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(requestBody)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s: %w", c.endpointURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", c.endpointURL, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("indexer request to %s failed with status %d: %s",
			c.endpointURL, resp.StatusCode(), truncate(resp.Body(), 200))
	}

	// The pooled response buffer must be copied before release.
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

// filterByWallet drops any item not owned by the given address, guarding
// against the API ignoring the where clause. Items without a user object
// (fallback shape) are kept.
func filterByWallet(items []entity.MarketPositionItem, walletAddress string) []entity.MarketPositionItem {
	filtered := items[:0]
	for _, it := range items {
		if it.User != nil && !strings.EqualFold(it.User.Address, walletAddress) {
			continue
		}
		filtered = append(filtered, it)
	}
	return filtered
}

func isNoResults(errs []entity.GraphQLError) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, "NOT_FOUND") || strings.Contains(e.Message, "No results matching") {
			return true
		}
	}
	return false
}

func isSchemaMismatch(errs []entity.GraphQLError) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, "Cannot query field") ||
			strings.Contains(e.Message, "Unknown argument") ||
			strings.Contains(e.Message, "Unknown type") {
			return true
		}
	}
	return false
}

func joinErrors(errs []entity.GraphQLError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, ", ")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

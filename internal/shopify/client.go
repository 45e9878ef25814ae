// Package shopify reads orders from the Shopify Admin API and verifies order
// webhooks.
package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	apiVersion          = "2024-01"
	defaultSearchLimit  = 25
	maxListLimit        = 250
	maxErrorBodyPreview = 512
)

var ErrOrderNotFound = errors.New("order not found")

type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates an Admin API client. store may be a bare shop domain
// ("example.myshopify.com") or an absolute URL.
func NewClient(store, accessToken string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:     storeBaseURL(store),
		accessToken: accessToken,
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Limit(2), 2),
		logger:      logger,
	}
}

func storeBaseURL(store string) string {
	store = strings.TrimRight(strings.TrimSpace(store), "/")
	if store == "" {
		return ""
	}
	if strings.HasPrefix(store, "http://") || strings.HasPrefix(store, "https://") {
		return store
	}
	return "https://" + store
}

// FetchOrder loads a single order by its numeric id.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("order id is required")
	}

	body, err := c.get(ctx, "/orders/"+url.PathEscape(orderID)+".json", nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Order *Order `json:"order"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}
	if response.Order == nil {
		return nil, ErrOrderNotFound
	}
	return response.Order, nil
}

// RecentOrders lists the most recent orders of any status.
func (c *Client) RecentOrders(ctx context.Context, limit int) ([]Order, error) {
	params := url.Values{}
	params.Set("status", "any")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))
	return c.listOrders(ctx, params)
}

// SearchOrders finds orders by name. A bare number is treated as "#<number>".
func (c *Client) SearchOrders(ctx context.Context, query string) ([]Order, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.RecentOrders(ctx, defaultSearchLimit)
	}

	name := query
	if _, err := strconv.ParseInt(query, 10, 64); err == nil {
		name = "#" + query
	}

	params := url.Values{}
	params.Set("status", "any")
	params.Set("limit", strconv.Itoa(defaultSearchLimit))
	params.Set("name", name)
	return c.listOrders(ctx, params)
}

func (c *Client) listOrders(ctx context.Context, params url.Values) ([]Order, error) {
	body, err := c.get(ctx, "/orders.json", params)
	if err != nil {
		return nil, err
	}

	var response struct {
		Orders []Order `json:"orders"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse orders response: %w", err)
	}
	if response.Orders == nil {
		return []Order{}, nil
	}
	return response.Orders, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("shopify store URL not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("shopify rate limiter: %w", err)
	}

	fullURL := fmt.Sprintf("%s/admin/api/%s%s", c.baseURL, apiVersion, path)
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify request failed: %w", err)
	}
	body, readErr := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read shopify response: %w", readErr)
	}
	if closeErr != nil && c.logger != nil {
		c.logger.Warn("failed to close shopify response body", "error", closeErr)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrOrderNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("shopify API returned status %d: %s", resp.StatusCode, preview(body))
	}

	return body, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 1
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func preview(body []byte) string {
	if len(body) > maxErrorBodyPreview {
		return string(body[:maxErrorBodyPreview])
	}
	return string(body)
}

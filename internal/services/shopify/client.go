package shopify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tomnomnom/linkheader"

	"github.com/our-cpg/planogram-backend/internal/logger"
)

const apiVersion = "2023-10"

// MaxPageSize is the largest page the admin API will return.
const MaxPageSize = 250

// APIError is a non-2xx response from the admin API. Remote failures are
// surfaced to the caller with status and body, never retried automatically.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify API request failed: %d - %s", e.StatusCode, e.Body)
}

type Client struct {
	// BaseURL is derived from the shop domain; tests point it at a fake.
	BaseURL string

	// PageDelay is the fixed pause between page fetches, the only
	// rate-limit handling toward the admin API.
	PageDelay time.Duration

	accessToken string
	httpClient  *http.Client
	logger      *logger.Logger
}

func NewClient(shopDomain, accessToken string, logger *logger.Logger) *Client {
	return &Client{
		BaseURL:     fmt.Sprintf("https://%s.myshopify.com", shopDomain),
		PageDelay:   500 * time.Millisecond,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) get(path string, query map[string]string, out interface{}) (http.Header, error) {
	endpoint := fmt.Sprintf("%s/admin/api/%s/%s", c.BaseURL, apiVersion, path)

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return resp.Header, nil
}

// nextPageInfo pulls the rel="next" cursor out of the Link response header.
// An empty result means pagination is complete.
func nextPageInfo(header http.Header) string {
	for _, link := range linkheader.Parse(header.Get("Link")) {
		if link.Rel != "next" {
			continue
		}
		u, err := url.Parse(link.URL)
		if err != nil {
			return ""
		}
		return u.Query().Get("page_info")
	}
	return ""
}

// GetProducts fetches one page of products. When pageInfo is set it selects
// the page; Shopify rejects other filters alongside a cursor.
func (c *Client) GetProducts(limit int, pageInfo string) (*ProductsPage, error) {
	query := map[string]string{"limit": fmt.Sprintf("%d", limit)}
	if pageInfo != "" {
		query["page_info"] = pageInfo
	}

	var body struct {
		Products []Product `json:"products"`
	}
	header, err := c.get("products.json", query, &body)
	if err != nil {
		return nil, err
	}

	return &ProductsPage{
		Products:     body.Products,
		NextPageInfo: nextPageInfo(header),
	}, nil
}

// GetOrders fetches one page of orders created at or after createdAtMin.
// The zero time means no lower bound.
func (c *Client) GetOrders(limit int, pageInfo string, createdAtMin time.Time) (*OrdersPage, error) {
	query := map[string]string{"limit": fmt.Sprintf("%d", limit)}
	if pageInfo != "" {
		query["page_info"] = pageInfo
	} else {
		query["status"] = "any"
		if !createdAtMin.IsZero() {
			query["created_at_min"] = createdAtMin.UTC().Format(time.RFC3339)
		}
	}

	var body struct {
		Orders []Order `json:"orders"`
	}
	header, err := c.get("orders.json", query, &body)
	if err != nil {
		return nil, err
	}

	return &OrdersPage{
		Orders:       body.Orders,
		NextPageInfo: nextPageInfo(header),
	}, nil
}

// GetShopInfo fetches shop information; used to verify a credential pair.
func (c *Client) GetShopInfo() (*Shop, error) {
	var body struct {
		Shop Shop `json:"shop"`
	}
	if _, err := c.get("shop.json", nil, &body); err != nil {
		return nil, err
	}
	return &body.Shop, nil
}

// GraphQL posts a query to the admin GraphQL endpoint and decodes the
// "data" object into out.
func (c *Client) GraphQL(query string, out interface{}) error {
	endpoint := fmt.Sprintf("%s/admin/api/%s/graphql.json", c.BaseURL, apiVersion)

	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}

	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql query failed: %s", envelope.Errors[0].Message)
	}

	return json.Unmarshal(envelope.Data, out)
}

// ProductsCount fetches the catalog size via GraphQL, used to size the
// safety cap ahead of a full refresh.
func (c *Client) ProductsCount() (int, error) {
	var data struct {
		ProductsCount struct {
			Count int `json:"count"`
		} `json:"productsCount"`
	}
	if err := c.GraphQL(`{ productsCount { count } }`, &data); err != nil {
		return 0, err
	}
	return data.ProductsCount.Count, nil
}

// Sleep applies the fixed inter-page delay.
func (c *Client) Sleep() {
	if c.PageDelay > 0 {
		time.Sleep(c.PageDelay)
	}
}

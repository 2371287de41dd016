package payssion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	apiLiveURL    = "https://www.payssion.com"
	apiSandboxURL = "http://sandbox.payssion.com"

	endpointCreate = "/api/v1/payment/create"

	defaultTimeout = 30 * time.Second
)

// CreateParams are the form parameters of a payment creation request.
type CreateParams struct {
	Amount      string
	Currency    string
	PMID        string
	OrderID     string
	PayerName   string
	PayerEmail  string
	Description string
	NotifyURL   string
	SuccessURL  string
	RedirectURL string
	APISig      string
}

// CreateResponse is the provider's answer to a payment creation request.
// ResultCode 200 means accepted; Todo "redirect" means the payer's browser
// must be sent to RedirectURL. Description carries the provider's error
// detail otherwise.
type CreateResponse struct {
	ResultCode  int    `json:"result_code"`
	Todo        string `json:"todo"`
	RedirectURL string `json:"redirect_url"`
	Description string `json:"description"`
}

// Client talks to the Payssion payment API.
//
// Calls are synchronous and strictly single attempt: a creation request
// that timed out may still have been accepted by the provider, and an
// automatic retry could double-charge the payer.
type Client struct {
	apiKey    string
	secretKey string
	baseURL   string
	client    *http.Client
}

// NewClient creates a Payssion API client. Sandbox selects the provider's
// test endpoint.
func NewClient(apiKey, secretKey string, sandbox bool) *Client {
	baseURL := apiLiveURL
	if sandbox {
		baseURL = apiSandboxURL
	}

	return &Client{
		apiKey:    apiKey,
		secretKey: secretKey,
		baseURL:   baseURL,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Create submits a payment creation request.
func (c *Client) Create(ctx context.Context, params CreateParams) (*CreateResponse, error) {
	form := url.Values{}
	form.Set("api_key", c.apiKey)
	form.Set("amount", params.Amount)
	form.Set("currency", params.Currency)
	form.Set("pm_id", params.PMID)
	form.Set("order_id", params.OrderID)
	form.Set("payer_name", params.PayerName)
	form.Set("payer_email", params.PayerEmail)
	form.Set("description", params.Description)
	form.Set("notify_url", params.NotifyURL)
	form.Set("success_url", params.SuccessURL)
	form.Set("redirect_url", params.RedirectURL)
	form.Set("api_sig", params.APISig)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpointCreate, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "PayssionGateway/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %d, response: %s", resp.StatusCode, string(body))
	}

	var createResp CreateResponse
	if err := json.Unmarshal(body, &createResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &createResp, nil
}

// BaseURL returns the API base URL in use, mainly for tests.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetBaseURL overrides the API base URL. Tests point it at a local server.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

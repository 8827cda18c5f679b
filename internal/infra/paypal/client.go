package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"

	// Refresh the cached token a bit before PayPal expires it.
	tokenExpirySkew = 60 * time.Second
)

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type Order struct {
	ID     string
	Status string
}

type Capture struct {
	OrderID   string
	CaptureID string
	Status    string
	InvoiceID string
}

func NewClient(clientID, clientSecret, mode string, httpClient *http.Client) *Client {
	baseURL := sandboxBaseURL
	if strings.EqualFold(strings.TrimSpace(mode), "live") {
		baseURL = liveBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// SetBaseURL points the client at a different API host. Tests use it to
// hit a local httptest server.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// CreateOrder registers a checkout order with PayPal. invoiceID carries our
// local order id so the capture webhook can be tied back to it.
func (c *Client) CreateOrder(ctx context.Context, invoiceID, amount, currency string) (Order, error) {
	if strings.TrimSpace(invoiceID) == "" || strings.TrimSpace(amount) == "" {
		return Order{}, fmt.Errorf("invalid paypal order payload")
	}
	if currency == "" {
		currency = "USD"
	}

	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"invoice_id": invoiceID,
				"amount": map[string]string{
					"currency_code": currency,
					"value":         amount,
				},
			},
		},
	}

	var parsed struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", body, &parsed); err != nil {
		return Order{}, fmt.Errorf("create paypal order: %w", err)
	}
	if parsed.ID == "" {
		return Order{}, fmt.Errorf("paypal order response is missing an id")
	}

	return Order{ID: parsed.ID, Status: parsed.Status}, nil
}

// CaptureOrder finalizes payment for a previously created order.
func (c *Client) CaptureOrder(ctx context.Context, providerOrderID string) (Capture, error) {
	if strings.TrimSpace(providerOrderID) == "" {
		return Capture{}, fmt.Errorf("paypal order id is required")
	}

	var parsed struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			InvoiceID string `json:"invoice_id"`
			Payments  struct {
				Captures []struct {
					ID        string `json:"id"`
					Status    string `json:"status"`
					InvoiceID string `json:"invoice_id"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}

	path := "/v2/checkout/orders/" + providerOrderID + "/capture"
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]interface{}{}, &parsed); err != nil {
		return Capture{}, fmt.Errorf("capture paypal order: %w", err)
	}

	capture := Capture{OrderID: parsed.ID, Status: parsed.Status}
	for _, unit := range parsed.PurchaseUnits {
		if capture.InvoiceID == "" {
			capture.InvoiceID = unit.InvoiceID
		}
		for _, pc := range unit.Payments.Captures {
			capture.CaptureID = pc.ID
			if pc.InvoiceID != "" {
				capture.InvoiceID = pc.InvoiceID
			}
			if pc.Status != "" {
				capture.Status = pc.Status
			}
		}
	}

	return capture, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.accessTokenValue(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call paypal: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("paypal responded %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode paypal response: %w", err)
	}

	return nil
}

func (c *Client) accessTokenValue(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request paypal token: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("paypal token endpoint responded %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode paypal token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("paypal token response is missing access_token")
	}

	c.accessToken = parsed.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(parsed.ExpiresIn)*time.Second - tokenExpirySkew)

	return c.accessToken, nil
}

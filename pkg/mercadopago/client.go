package mercadopago

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the production MercadoPago API origin.
const DefaultBaseURL = "https://api.mercadopago.com"

// Config holds the credentials and endpoints for the MercadoPago API.
type Config struct {
	AccessToken string
	// BaseURL overrides the API origin; used by tests. Defaults to
	// DefaultBaseURL when empty.
	BaseURL string
	// Timeout bounds every API call so a hung provider cannot hang a
	// webhook invocation. Defaults to 10s when zero.
	Timeout time.Duration
}

// Client talks to the MercadoPago checkout and payments APIs.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewClient creates a MercadoPago API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("mercadopago access token is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		accessToken: cfg.AccessToken,
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// APIError is a rejection from the MercadoPago API (non-2xx response).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercadopago API error (status %d): %s", e.StatusCode, e.Message)
}

// CreatePreference posts a checkout preference and returns the hosted
// checkout URLs.
func (c *Client) CreatePreference(pref *PreferenceRequest) (*PreferenceResponse, error) {
	body, err := json.Marshal(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preference: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build preference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call preference endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read preference response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: apiMessage(respBody)}
	}

	var prefResp PreferenceResponse
	if err := json.Unmarshal(respBody, &prefResp); err != nil {
		return nil, fmt.Errorf("failed to decode preference response: %w", err)
	}
	return &prefResp, nil
}

// GetPayment fetches the authoritative payment resource for a payment id.
func (c *Client) GetPayment(paymentID string) (*Payment, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment %s: %w", paymentID, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: apiMessage(respBody)}
	}

	var payment Payment
	if err := json.Unmarshal(respBody, &payment); err != nil {
		return nil, fmt.Errorf("failed to decode payment %s: %w", paymentID, err)
	}
	return &payment, nil
}

// apiMessage extracts the provider's error message from a response body,
// falling back to the raw body when it is not the usual {"message": ...}.
func apiMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return string(body)
}

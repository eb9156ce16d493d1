/**
 * @description
 * Client for the external payment-authorization service. Given an amount and
 * currency it returns a client-side confirmation token on success. The
 * engine never retries a payment call automatically; failures propagate to
 * the caller verbatim.
 */

package paymentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a client for the payment-authorization service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new payment service client.
func NewClient(baseURL string) *Client {
	normalizedURL := strings.TrimSuffix(baseURL, "/")
	return &Client{
		baseURL:    normalizedURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type authorizeRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type authorizeResponse struct {
	ConfirmationToken string `json:"confirmation_token"`
	Error             string `json:"error,omitempty"`
}

// Authorize requests payment authorization for the given amount and returns
// the confirmation token the client completes the payment with.
func (c *Client) Authorize(ctx context.Context, amount float64, currency string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("payment service base URL is not configured")
	}

	body, err := json.Marshal(authorizeRequest{Amount: amount, Currency: currency})
	if err != nil {
		return "", fmt.Errorf("failed to marshal authorize payload: %w", err)
	}

	url := fmt.Sprintf("%s/payments/authorize", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request to payment service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read payment service response: %w", err)
	}

	var parsed authorizeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode payment service response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if parsed.Error != "" {
			return "", fmt.Errorf("payment authorization failed: %s", parsed.Error)
		}
		return "", fmt.Errorf("payment service returned error status %d", resp.StatusCode)
	}
	if parsed.ConfirmationToken == "" {
		return "", fmt.Errorf("payment service returned no confirmation token")
	}

	return parsed.ConfirmationToken, nil
}

package viacep

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client represents a ViaCEP API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new ViaCEP client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// Lookup resolves an 8-digit CEP to its address. The CEP must already be
// normalized to digits only.
func (c *Client) Lookup(ctx context.Context, cep string) (*Address, error) {
	if len(cep) != 8 {
		return nil, ErrInvalidCEP
	}

	url := fmt.Sprintf("%s/%s/json/", c.config.BaseURL, cep)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// ViaCEP answers 400 for malformed CEPs and 200 + {"erro": true} for
	// well-formed CEPs that do not exist.
	if resp.StatusCode == http.StatusBadRequest {
		return nil, ErrInvalidCEP
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d, body: %s", ErrLookupFailed, resp.StatusCode, string(body))
	}

	var addr Address
	if err := json.Unmarshal(body, &addr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lookup response: %w", err)
	}

	if addr.Erro {
		return nil, ErrCEPNotFound
	}

	return &addr, nil
}

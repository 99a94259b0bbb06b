package tat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/frontandrew/skylane/internal/domain"
)

// computeResponse - ответ TAT движка
// Значение хранится как есть, ядро его не интерпретирует
type computeResponse struct {
	TAT string `json:"tat"`
}

// Client - интерфейс внешнего движка расчета turn-around-time
type Client interface {
	// ComputeTat считает TAT для лейна с учетом его плеч
	ComputeTat(ctx context.Context, lane *domain.Lane) (string, error)
}

type httpClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient создает новый HTTP клиент TAT движка
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ComputeTat отправляет лейн вместе с плечами на расчет
func (c *httpClient) ComputeTat(ctx context.Context, lane *domain.Lane) (string, error) {
	jsonData, err := json.Marshal(lane)
	if err != nil {
		return "", fmt.Errorf("failed to marshal lane: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/tat/compute", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tat engine returned status %d: %s", resp.StatusCode, string(body))
	}

	var result computeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return result.TAT, nil
}

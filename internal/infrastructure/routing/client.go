package routing

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

// AirportPairRequest - запрос кандидатов маршрута по паре аэропортов
type AirportPairRequest struct {
	OriginStation      string `json:"origin_station"`
	DestinationStation string `json:"destination_station"`
	ItemNumber         string `json:"item_number,omitempty"`
	PickupTime         string `json:"pickup_time,omitempty"`
}

// LocationRequest - запрос кандидатов маршрута по географии лейна
type LocationRequest struct {
	OriginCity         string `json:"origin_city"`
	OriginState        string `json:"origin_state,omitempty"`
	OriginCountry      string `json:"origin_country"`
	DestinationCity    string `json:"destination_city"`
	DestinationState   string `json:"destination_state,omitempty"`
	DestinationCountry string `json:"destination_country"`
	ItemNumber         string `json:"item_number,omitempty"`
	PickupTime         string `json:"pickup_time,omitempty"`
}

// Client - интерфейс сервиса подсказок маршрутов
type Client interface {
	// ByAirportPair запрашивает кандидатов по паре аэропортов
	ByAirportPair(ctx context.Context, req *AirportPairRequest) ([]domain.RoutePattern, error)

	// ByLocation запрашивает кандидатов по городу/региону/стране
	ByLocation(ctx context.Context, req *LocationRequest) ([]domain.RoutePattern, error)
}

type httpClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient создает новый HTTP клиент сервиса подсказок
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *httpClient) ByAirportPair(ctx context.Context, req *AirportPairRequest) ([]domain.RoutePattern, error) {
	return c.post(ctx, "/api/v1/routes/by-airport-pair", req)
}

func (c *httpClient) ByLocation(ctx context.Context, req *LocationRequest) ([]domain.RoutePattern, error) {
	return c.post(ctx, "/api/v1/routes/by-location", req)
}

func (c *httpClient) post(ctx context.Context, path string, payload interface{}) ([]domain.RoutePattern, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing service returned status %d: %s", resp.StatusCode, string(body))
	}

	var patterns []domain.RoutePattern
	if err := json.Unmarshal(body, &patterns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return patterns, nil
}

package flightdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LegCheckRequest содержит летные поля одного плеча для проверки
type LegCheckRequest struct {
	FlightNumber       string   `json:"flight_number"`
	OriginStation      string   `json:"origin_station"`
	DestinationStation string   `json:"destination_station"`
	DepartureTime      string   `json:"departure_time,omitempty"`
	ArrivalTime        string   `json:"arrival_time,omitempty"`
	OperatingDays      []string `json:"operating_days,omitempty"`
}

// LegCheckResult содержит результат проверки плеча внешним сервисом
type LegCheckResult struct {
	Valid            bool              `json:"valid"`
	Message          string            `json:"message,omitempty"`
	MismatchedFields []string          `json:"mismatched_fields,omitempty"`
	OperatingDays    string            `json:"operating_days,omitempty"`
	AircraftByDay    map[string]string `json:"aircraft_by_day,omitempty"`
}

// Client - интерфейс для работы с сервисом проверки летных данных
type Client interface {
	// ValidateLeg проверяет летные данные одного плеча
	ValidateLeg(ctx context.Context, req *LegCheckRequest) (*LegCheckResult, error)

	// Health проверяет доступность сервиса
	Health(ctx context.Context) error
}

// httpClient - HTTP реализация клиента проверки летных данных
type httpClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient создает новый HTTP клиент для сервиса летных данных
// apiKey передается явно как capability, а не читается из глобального состояния
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ValidateLeg отправляет запрос на проверку плеча
func (c *httpClient) ValidateLeg(ctx context.Context, checkReq *LegCheckRequest) (*LegCheckResult, error) {
	jsonData, err := json.Marshal(checkReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/legs/validate", c.baseURL)

	// Отправляем запрос с retry логикой на транспортном уровне
	var result *LegCheckResult
	var lastErr error

	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		result, lastErr = c.doRequest(req)
		if lastErr == nil {
			return result, nil
		}
	}

	return nil, fmt.Errorf("leg validation failed after %d attempts: %w", maxRetries, lastErr)
}

// doRequest выполняет HTTP запрос и обрабатывает ответ
func (c *httpClient) doRequest(req *http.Request) (*LegCheckResult, error) {
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
		return nil, fmt.Errorf("flight data service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result LegCheckResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// Health проверяет доступность сервиса летных данных
func (c *httpClient) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

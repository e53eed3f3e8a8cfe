package salesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"medeasy/pos/domain"
	"medeasy/pos/internal/logging"
)

// ErrUnavailable is returned without contacting the server while the circuit
// breaker is open.
var ErrUnavailable = errors.New("sales service unavailable")

// APIError is a non-2xx answer from the sales API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sales api returned status %d", e.Status)
	}
	return fmt.Sprintf("sales api returned status %d: %s", e.Status, e.Message)
}

// Client submits sales to the external sales API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[domain.SaleResponse]
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBreakerSettings overrides the circuit breaker configuration.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(c *Client) { c.breaker = newBreaker(st, c.logger) }
}

func NewClient(baseURL, token string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logging.OrNop(logger),
	}
	c.breaker = newBreaker(gobreaker.Settings{
		Name:    "sales-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}, c.logger)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(st gobreaker.Settings, logger *zap.Logger) *gobreaker.CircuitBreaker[domain.SaleResponse] {
	// Rejections by the server are answers, not outages.
	st.IsSuccessful = func(err error) bool {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr.Status < http.StatusInternalServerError
		}
		return err == nil
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn("circuit breaker state changed",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
	}
	return gobreaker.NewCircuitBreaker[domain.SaleResponse](st)
}

// Submit posts a sale to {baseURL}/sales.
func (c *Client) Submit(ctx context.Context, sale domain.SaleRequest) (domain.SaleResponse, error) {
	resp, err := c.breaker.Execute(func() (domain.SaleResponse, error) {
		return c.post(ctx, sale)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.SaleResponse{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, err
}

func (c *Client) post(ctx context.Context, sale domain.SaleRequest) (domain.SaleResponse, error) {
	jsonData, err := json.Marshal(sale)
	if err != nil {
		return domain.SaleResponse{}, fmt.Errorf("failed to marshal sale: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sales", bytes.NewReader(jsonData))
	if err != nil {
		return domain.SaleResponse{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.SaleResponse{}, fmt.Errorf("failed to call sales api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SaleResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
		c.logger.Warn("sale rejected", zap.String("invoice", sale.InvoiceNumber), zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return domain.SaleResponse{}, apiErr
	}

	var out saleResponse
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &out); err != nil {
			return domain.SaleResponse{}, fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return domain.SaleResponse{ID: out.id(), Message: out.Message}, nil
}

// saleResponse tolerates numeric and string ids.
type saleResponse struct {
	ID      json.RawMessage `json:"id"`
	Message string          `json:"message"`
}

func (r saleResponse) id() string {
	raw := strings.TrimSpace(string(r.ID))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.ID, &s); err == nil {
		return s
	}
	return raw
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/menusync/backend/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from the upstream API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const tracerName = "github.com/menusync/backend/internal/infrastructure/ecommerce"

// SquareClient implements integration.CatalogSource against the Square Connect API
type SquareClient struct {
	config     *SquareConfig
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer

	// sleep waits between retries; replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// Compile-time interface check
var _ integration.CatalogSource = (*SquareClient)(nil)

// NewSquareClient creates a new client with the given configuration
func NewSquareClient(config *SquareConfig, logger *zap.Logger) (*SquareClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SquareClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
		tracer: otel.Tracer(tracerName),
		sleep:  sleepContext,
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client
func (c *SquareClient) WithHTTPClient(client *http.Client) *SquareClient {
	c.httpClient = client
	return c
}

// ---------------------------------------------------------------------------
// Catalog Operations
// ---------------------------------------------------------------------------

// ListCatalog returns one page of catalog objects. Nested variations and modifiers
// are flattened into the page.
func (c *SquareClient) ListCatalog(ctx context.Context, accessToken, cursor string, types []integration.ObjectType) (*integration.CatalogPage, error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		query.Set("types", strings.Join(names, ","))
	}

	var resp SquareListCatalogResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v2/catalog/list", query, accessToken, nil, &resp); err != nil {
		return nil, err
	}

	page := &integration.CatalogPage{Cursor: resp.Cursor}
	for _, obj := range resp.Objects {
		page.Objects = append(page.Objects, flattenCatalogObject(obj)...)
	}
	return page, nil
}

// ---------------------------------------------------------------------------
// Location Operations
// ---------------------------------------------------------------------------

// ListLocations returns every location of the merchant
func (c *SquareClient) ListLocations(ctx context.Context, accessToken string) ([]integration.UpstreamLocation, error) {
	var resp SquareListLocationsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v2/locations", nil, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	locations := make([]integration.UpstreamLocation, 0, len(resp.Locations))
	for i := range resp.Locations {
		locations = append(locations, convertLocation(&resp.Locations[i]))
	}
	return locations, nil
}

// RetrieveLocation returns one location; integration.MainLocationID selects the main one
func (c *SquareClient) RetrieveLocation(ctx context.Context, accessToken, locationID string) (*integration.UpstreamLocation, error) {
	if locationID == "" {
		return nil, fmt.Errorf("%w: empty location id", integration.ErrUpstreamRequestFailed)
	}
	var resp SquareRetrieveLocationResponse
	path := "/v2/locations/" + url.PathEscape(locationID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Location == nil || resp.Location.ID == "" {
		return nil, fmt.Errorf("%w: location response without location", integration.ErrUpstreamInvalidResponse)
	}
	location := convertLocation(resp.Location)
	return &location, nil
}

// ---------------------------------------------------------------------------
// OAuth Operations
// ---------------------------------------------------------------------------

// ExchangeCode trades an authorization code for tokens
func (c *SquareClient) ExchangeCode(ctx context.Context, code string) (*integration.TokenGrant, error) {
	return c.obtainToken(ctx, SquareTokenRequest{
		ClientID:     c.config.ApplicationID,
		ClientSecret: c.config.ApplicationSecret,
		GrantType:    "authorization_code",
		Code:         code,
	})
}

// RefreshToken renews an access token
func (c *SquareClient) RefreshToken(ctx context.Context, refreshToken string) (*integration.TokenGrant, error) {
	return c.obtainToken(ctx, SquareTokenRequest{
		ClientID:     c.config.ApplicationID,
		ClientSecret: c.config.ApplicationSecret,
		GrantType:    "refresh_token",
		RefreshToken: refreshToken,
	})
}

func (c *SquareClient) obtainToken(ctx context.Context, req SquareTokenRequest) (*integration.TokenGrant, error) {
	var resp SquareTokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/oauth2/token", nil, "", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response without access_token", integration.ErrUpstreamInvalidResponse)
	}
	return &integration.TokenGrant{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
		MerchantID:   resp.MerchantID,
	}, nil
}

// ---------------------------------------------------------------------------
// HTTP
// ---------------------------------------------------------------------------

// doJSON sends a request with retries and decodes a successful response into out
func (c *SquareClient) doJSON(ctx context.Context, method, path string, query url.Values, accessToken string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("square: failed to encode request: %w", err)
		}
	}

	ctx, span := c.tracer.Start(ctx, "upstream "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.request.method", method), attribute.String("url.path", path)))
	defer span.End()

	body, attempts, err := c.doWithRetry(ctx, method, path, query, accessToken, payload)
	span.SetAttributes(attribute.Int("upstream.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", integration.ErrUpstreamInvalidResponse, err)
	}
	return nil
}

// doWithRetry retries retryable failures with exponential backoff and jitter.
// A Retry-After header replaces the computed delay, capped at RetryMaxDelay.
func (c *SquareClient) doWithRetry(ctx context.Context, method, path string, query url.Values, accessToken string, payload []byte) ([]byte, int, error) {
	maxAttempts := c.config.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, retryAfter, err := c.doRequest(ctx, method, path, query, accessToken, payload)
		if err == nil {
			return body, attempt, nil
		}
		lastErr = err
		if !integration.IsRetryable(err) || ctx.Err() != nil {
			return nil, attempt, err
		}
		if attempt == maxAttempts {
			break
		}

		delay := c.backoff(attempt)
		if retryAfter > 0 {
			delay = min(retryAfter, c.config.RetryMaxDelay)
		}
		c.logger.Warn("Retrying upstream request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, attempt, err
		}
	}
	return nil, maxAttempts, fmt.Errorf("%w after %d attempts: %w", integration.ErrRetryBudgetExhausted, maxAttempts, lastErr)
}

// backoff returns base * 2^(attempt-1) with full jitter, capped at RetryMaxDelay
func (c *SquareClient) backoff(attempt int) time.Duration {
	delay := c.config.RetryBaseDelay << (attempt - 1)
	if delay <= 0 || delay > c.config.RetryMaxDelay {
		delay = c.config.RetryMaxDelay
	}
	half := delay / 2
	return half + rand.N(half+1)
}

// doRequest performs a single HTTP request. The returned duration is the parsed
// Retry-After header, zero when absent.
func (c *SquareClient) doRequest(ctx context.Context, method, path string, query url.Values, accessToken string, payload []byte) ([]byte, time.Duration, error) {
	endpoint := strings.TrimRight(c.config.APIBaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("square: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Square-Version", c.config.APIVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		return nil, 0, fmt.Errorf("%w: %v", integration.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read response: %v", integration.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 400 {
		return body, 0, nil
	}
	return nil, parseRetryAfter(resp.Header.Get("Retry-After")), classifyStatus(resp.StatusCode, body)
}

// classifyStatus maps a failed HTTP status to an upstream error. 5xx and 429 are
// retryable; every other 4xx is fatal.
func classifyStatus(status int, body []byte) error {
	detail := ""
	var errResp SquareErrorResponse
	if json.Unmarshal(body, &errResp) == nil && len(errResp.Errors) > 0 {
		detail = ": " + errResp.Summary()
	}
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP %d%s", integration.ErrUpstreamRateLimited, status, detail)
	case status >= 500:
		return fmt.Errorf("%w: HTTP %d%s", integration.ErrUpstreamUnavailable, status, detail)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d%s", integration.ErrUpstreamUnauthorized, status, detail)
	default:
		return fmt.Errorf("%w: HTTP %d%s", integration.ErrUpstreamRequestFailed, status, detail)
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP date
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsUnauthorized reports whether the upstream rejected the access token
func IsUnauthorized(err error) bool {
	return errors.Is(err, integration.ErrUpstreamUnauthorized)
}

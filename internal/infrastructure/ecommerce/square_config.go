package ecommerce

import (
	"errors"
	"time"
)

// SquareConfig holds configuration for the upstream commerce API
type SquareConfig struct {
	// ApplicationID is the OAuth client ID
	ApplicationID string
	// ApplicationSecret is the OAuth client secret
	ApplicationSecret string
	// APIBaseURL is the base URL for the API (production or sandbox)
	APIBaseURL string
	// APIVersion is sent as the Square-Version header
	APIVersion string
	// IsSandbox indicates if this is a sandbox environment
	IsSandbox bool
	// TimeoutSeconds is the per-attempt HTTP timeout
	TimeoutSeconds int
	// MaxRetries is the number of retries after the first attempt for 5xx and 429 responses
	MaxRetries int
	// RetryBaseDelay is the first backoff delay; it doubles per attempt
	RetryBaseDelay time.Duration
	// RetryMaxDelay caps a single backoff delay, including Retry-After
	RetryMaxDelay time.Duration
}

const (
	// SquareProductionAPIURL is the production API endpoint
	SquareProductionAPIURL = "https://connect.squareup.com"
	// SquareSandboxAPIURL is the sandbox API endpoint
	SquareSandboxAPIURL = "https://connect.squareupsandbox.com"
	// DefaultSquareAPIVersion is the API version requests are pinned to
	DefaultSquareAPIVersion = "2024-01-18"

	defaultTimeoutSeconds = 30
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 30 * time.Second
)

// Errors for Square configuration
var (
	ErrSquareConfigMissingApplicationID     = errors.New("square: application id is required")
	ErrSquareConfigMissingApplicationSecret = errors.New("square: application secret is required")
)

// NewSquareConfig creates a new configuration with defaults
func NewSquareConfig(applicationID, applicationSecret string, sandbox bool) *SquareConfig {
	baseURL := SquareProductionAPIURL
	if sandbox {
		baseURL = SquareSandboxAPIURL
	}
	return &SquareConfig{
		ApplicationID:     applicationID,
		ApplicationSecret: applicationSecret,
		APIBaseURL:        baseURL,
		APIVersion:        DefaultSquareAPIVersion,
		IsSandbox:         sandbox,
		TimeoutSeconds:    defaultTimeoutSeconds,
		MaxRetries:        defaultMaxRetries,
		RetryBaseDelay:    defaultRetryBaseDelay,
		RetryMaxDelay:     defaultRetryMaxDelay,
	}
}

// Validate validates the configuration and fills in defaults
func (c *SquareConfig) Validate() error {
	if c.ApplicationID == "" {
		return ErrSquareConfigMissingApplicationID
	}
	if c.ApplicationSecret == "" {
		return ErrSquareConfigMissingApplicationSecret
	}
	if c.APIBaseURL == "" {
		if c.IsSandbox {
			c.APIBaseURL = SquareSandboxAPIURL
		} else {
			c.APIBaseURL = SquareProductionAPIURL
		}
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultSquareAPIVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = defaultRetryBaseDelay
	}
	if c.RetryMaxDelay < c.RetryBaseDelay {
		c.RetryMaxDelay = defaultRetryMaxDelay
	}
	return nil
}

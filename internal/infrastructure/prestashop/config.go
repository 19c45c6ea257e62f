package prestashop

import "errors"

// Errors for PrestaShop configuration
var (
	ErrConfigMissingBaseURL = errors.New("prestashop: base URL is required")
	ErrConfigMissingAPIKey  = errors.New("prestashop: API key is required")
)

// Config holds the connection settings for one PrestaShop shop instance
type Config struct {
	// BaseURL is the shop root, the webservice lives under BaseURL/api
	BaseURL string
	// APIKey is the webservice key, sent as the basic-auth username
	APIKey string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// RequestsPerSecond throttles outbound calls to this shop
	RequestsPerSecond float64
	// Burst is the rate limiter burst size
	Burst int
}

// NewConfig creates a shop configuration with defaults
func NewConfig(baseURL, apiKey string) *Config {
	return &Config{
		BaseURL:           baseURL,
		APIKey:            apiKey,
		TimeoutSeconds:    30,
		RequestsPerSecond: 5,
		Burst:             5,
	}
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 5
	}
	if c.Burst <= 0 {
		c.Burst = 5
	}
	return nil
}

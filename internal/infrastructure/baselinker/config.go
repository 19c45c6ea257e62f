package baselinker

import "errors"

// DefaultAPIURL is the production connector endpoint
const DefaultAPIURL = "https://api.baselinker.com/connector.php"

// Errors for Baselinker configuration
var (
	ErrConfigMissingToken       = errors.New("baselinker: API token is required")
	ErrConfigMissingInventoryID = errors.New("baselinker: inventory ID is required")
)

// Config holds the connection settings for one Baselinker account
type Config struct {
	// Token is the account API token, sent in the X-BLToken header
	Token string
	// InventoryID is the Baselinker catalog the pushed data lands in
	InventoryID string
	// APIBaseURL is the connector endpoint, production by default
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// RequestsPerMinute throttles outbound calls to the account
	RequestsPerMinute float64
}

// NewConfig creates an account configuration with defaults
func NewConfig(token, inventoryID string) *Config {
	return &Config{
		Token:             token,
		InventoryID:       inventoryID,
		APIBaseURL:        DefaultAPIURL,
		TimeoutSeconds:    30,
		RequestsPerMinute: 100,
	}
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Token == "" {
		return ErrConfigMissingToken
	}
	if c.InventoryID == "" {
		return ErrConfigMissingInventoryID
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = 100
	}
	return nil
}

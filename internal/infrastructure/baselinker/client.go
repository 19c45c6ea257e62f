package baselinker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppm/backend/internal/domain/integration"
)

// maxResponseSize bounds how much of a connector response is read (2MB)
const maxResponseSize = 2 * 1024 * 1024

// responseExcerptSize bounds the body excerpt carried in error context
const responseExcerptSize = 512

// account pairs one configured Baselinker account with its rate limiter
type account struct {
	config     *Config
	limiter    *rate.Limiter
	httpClient *http.Client
}

// Client implements integration.TargetClient against the Baselinker
// connector API. The connector takes form-encoded POST requests carrying a
// method name and JSON parameters, and reports application errors inside a
// 200 response, so classification reads the response status field rather
// than the HTTP status.
type Client struct {
	mu       sync.RWMutex
	accounts map[string]*account
}

// NewClient creates a Baselinker client with no accounts configured
func NewClient() *Client {
	return &Client{
		accounts: make(map[string]*account),
	}
}

// SetAccountConfig registers or replaces the configuration for an account
func (c *Client) SetAccountConfig(identifier string, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[identifier] = &account{
		config:     config,
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerMinute/60), 5),
		httpClient: &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second},
	}
	return nil
}

// getAccount retrieves the account registered under a target identifier
func (c *Client) getAccount(identifier string) (*account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.accounts[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: baselinker account %q not configured", integration.ErrTargetNotFound, identifier)
	}
	return a, nil
}

// Type returns the integration type this client handles
func (c *Client) Type() integration.IntegrationType {
	return integration.IntegrationTypeBaselinker
}

// ---------------------------------------------------------------------------
// TargetClient operations
// ---------------------------------------------------------------------------

// CreateOrUpdate pushes the object into the account's inventory. Baselinker
// uses the same add method for create and update; a non-empty ExternalID in
// the parameters turns the call into an update.
func (c *Client) CreateOrUpdate(ctx context.Context, target integration.Target, obj integration.RemoteObject) (string, error) {
	a, err := c.getAccount(target.Identifier)
	if err != nil {
		return "", err
	}

	switch obj.RemoteType {
	case integration.RemoteTypeCategories:
		return c.upsertCategory(ctx, a, target, obj)
	case integration.RemoteTypeProducts:
		return c.upsertProduct(ctx, a, target, obj)
	default:
		// The inventory API has no feature resources; feature data travels
		// inside the product payload instead
		return "", fmt.Errorf("%w: baselinker has no %s resource", integration.ErrUnsupportedRemote, obj.RemoteType)
	}
}

// Get is not supported; the connector only exposes bulk listing methods
func (c *Client) Get(ctx context.Context, target integration.Target, remoteType integration.RemoteType, externalID string) (*integration.RemoteObject, error) {
	return nil, fmt.Errorf("%w: baselinker does not expose single-resource reads", integration.ErrUnsupportedRemote)
}

// Delete removes a resource from the account's inventory
func (c *Client) Delete(ctx context.Context, target integration.Target, remoteType integration.RemoteType, externalID string) error {
	a, err := c.getAccount(target.Identifier)
	if err != nil {
		return err
	}

	var method string
	params := map[string]any{}
	switch remoteType {
	case integration.RemoteTypeCategories:
		method = "deleteInventoryCategory"
		params["category_id"] = externalID
	case integration.RemoteTypeProducts:
		method = "deleteInventoryProduct"
		params["product_id"] = externalID
	default:
		return fmt.Errorf("%w: baselinker has no %s resource", integration.ErrUnsupportedRemote, remoteType)
	}

	_, err = c.call(ctx, a, target, method, params)
	return err
}

func (c *Client) upsertCategory(ctx context.Context, a *account, target integration.Target, obj integration.RemoteObject) (string, error) {
	params := map[string]any{
		"inventory_id": a.config.InventoryID,
		"name":         obj.Name,
	}
	if obj.ExternalID != "" {
		params["category_id"] = obj.ExternalID
	}
	if obj.ParentExternalID != "" {
		params["parent_id"] = obj.ParentExternalID
	}

	body, err := c.call(ctx, a, target, "addInventoryCategory", params)
	if err != nil {
		return "", err
	}

	var resp struct {
		CategoryID json.Number `json:"category_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.CategoryID.String() == "" {
		return "", fmt.Errorf("%w: addInventoryCategory response carried no category_id", integration.ErrInvalidResponse)
	}
	return resp.CategoryID.String(), nil
}

func (c *Client) upsertProduct(ctx context.Context, a *account, target integration.Target, obj integration.RemoteObject) (string, error) {
	params := map[string]any{
		"inventory_id": a.config.InventoryID,
		"sku":          obj.Code,
		"text_fields": map[string]any{
			"name":        obj.Name,
			"description": obj.Description,
		},
		"prices": map[string]any{
			"default": obj.Price.InexactFloat64(),
		},
	}
	if obj.ExternalID != "" {
		params["product_id"] = obj.ExternalID
	}
	if obj.DefaultCategoryExternalID != "" {
		params["category_id"] = obj.DefaultCategoryExternalID
	}
	if len(obj.FeatureValues) > 0 {
		features := make(map[string]string, len(obj.FeatureValues))
		for _, fv := range obj.FeatureValues {
			features[fv.FeatureID] = fv.ValueID
		}
		params["features"] = features
	}

	body, err := c.call(ctx, a, target, "addInventoryProduct", params)
	if err != nil {
		return "", err
	}

	var resp struct {
		ProductID json.Number `json:"product_id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.ProductID.String() == "" {
		return "", fmt.Errorf("%w: addInventoryProduct response carried no product_id", integration.ErrInvalidResponse)
	}
	return resp.ProductID.String(), nil
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// connectorStatus is the envelope every connector response carries
type connectorStatus struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// call performs one connector request and classifies failures into
// *integration.APIError. Application errors arrive in 200 responses, so the
// error category is derived from the connector's error_code.
func (c *Client) call(ctx context.Context, a *account, target integration.Target,
	method string, parameters map[string]any) ([]byte, error) {
	errCtx := integration.ErrorContext{
		Target:           integration.IntegrationTypeBaselinker,
		TargetIdentifier: target.Identifier,
		Endpoint:         method,
		Method:           http.MethodPost,
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, integration.NewConnectionError(err, errCtx)
	}

	encoded, err := json.Marshal(parameters)
	if err != nil {
		return nil, fmt.Errorf("baselinker: failed to encode %s parameters: %w", method, err)
	}

	form := url.Values{}
	form.Set("method", method)
	form.Set("parameters", string(encoded))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.APIBaseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("baselinker: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-BLToken", a.config.Token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, integration.NewConnectionError(err, errCtx)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, integration.NewConnectionError(err, errCtx)
	}

	if resp.StatusCode >= 400 {
		errCtx.ResponseBody = excerpt(body)
		return nil, integration.NewAPIError(http.StatusText(resp.StatusCode), resp.StatusCode, errCtx)
	}

	var status connectorStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
	}
	if status.Status == "ERROR" {
		errCtx.ResponseBody = excerpt(body)
		errCtx.Category = classifyErrorCode(status.ErrorCode)
		message := status.ErrorMessage
		if message == "" {
			message = status.ErrorCode
		}
		return nil, integration.NewAPIError(message, 0, errCtx)
	}

	return body, nil
}

// classifyErrorCode maps connector error codes onto the shared taxonomy
func classifyErrorCode(code string) integration.ErrorCategory {
	switch {
	case code == "ERROR_AUTH_TOKEN" || code == "ERROR_BAD_TOKEN":
		return integration.ErrorCategoryAuthentication
	case code == "ERROR_PERMISSIONS":
		return integration.ErrorCategoryAuthorization
	case code == "ERROR_RATE_LIMIT" || code == "ERROR_TOO_MANY_REQUESTS":
		return integration.ErrorCategoryRateLimited
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return integration.ErrorCategoryNotFound
	case code == "ERROR_INTERNAL" || code == "ERROR_UNAVAILABLE":
		return integration.ErrorCategoryServerError
	default:
		return integration.ErrorCategoryUnknown
	}
}

func excerpt(body []byte) string {
	if len(body) > responseExcerptSize {
		return string(body[:responseExcerptSize])
	}
	return string(body)
}

// Ensure Client implements the TargetClient port
var _ integration.TargetClient = (*Client)(nil)

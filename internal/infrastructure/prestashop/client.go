package prestashop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppm/backend/internal/domain/integration"
)

// maxResponseSize bounds how much of a shop response is read (2MB)
const maxResponseSize = 2 * 1024 * 1024

// responseExcerptSize bounds the body excerpt carried in error context
const responseExcerptSize = 512

// shop pairs one configured shop with its rate limiter and HTTP client
type shop struct {
	config     *Config
	limiter    *rate.Limiter
	httpClient *http.Client
}

// Client implements integration.TargetClient against the PrestaShop
// webservice JSON API. One Client serves every configured shop instance;
// shops are registered by target identifier and each carries its own
// credentials and rate limiter.
type Client struct {
	mu    sync.RWMutex
	shops map[string]*shop
}

// NewClient creates a PrestaShop client with no shops configured
func NewClient() *Client {
	return &Client{
		shops: make(map[string]*shop),
	}
}

// SetShopConfig registers or replaces the configuration for a shop instance
func (c *Client) SetShopConfig(identifier string, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shops[identifier] = &shop{
		config:     config,
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		httpClient: &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second},
	}
	return nil
}

// getShop retrieves the shop registered under a target identifier
func (c *Client) getShop(identifier string) (*shop, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.shops[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: prestashop shop %q not configured", integration.ErrTargetNotFound, identifier)
	}
	return s, nil
}

// Type returns the integration type this client handles
func (c *Client) Type() integration.IntegrationType {
	return integration.IntegrationTypePrestashop
}

// ---------------------------------------------------------------------------
// TargetClient operations
// ---------------------------------------------------------------------------

// CreateOrUpdate pushes the object to the shop. An empty ExternalID issues a
// POST on the resource collection; a non-empty one issues a PUT on the
// resource itself. Returns the shop-side ID.
func (c *Client) CreateOrUpdate(ctx context.Context, target integration.Target, obj integration.RemoteObject) (string, error) {
	s, err := c.getShop(target.Identifier)
	if err != nil {
		return "", err
	}

	singular, ok := singularName(obj.RemoteType)
	if !ok {
		return "", fmt.Errorf("%w: %s", integration.ErrUnsupportedRemote, obj.RemoteType)
	}

	payload := map[string]any{singular: buildResource(obj)}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("prestashop: failed to encode %s payload: %w", singular, err)
	}

	method := http.MethodPost
	endpoint := "/api/" + string(obj.RemoteType)
	if obj.ExternalID != "" {
		method = http.MethodPut
		endpoint += "/" + obj.ExternalID
	}

	respBody, err := c.doRequest(ctx, s, target, method, endpoint, body)
	if err != nil {
		return "", err
	}

	externalID, err := extractID(respBody, singular)
	if err != nil {
		return "", fmt.Errorf("%w: %s response carried no id: %v", integration.ErrInvalidResponse, singular, err)
	}
	return externalID, nil
}

// Get retrieves a resource from the shop
func (c *Client) Get(ctx context.Context, target integration.Target, remoteType integration.RemoteType, externalID string) (*integration.RemoteObject, error) {
	s, err := c.getShop(target.Identifier)
	if err != nil {
		return nil, err
	}

	singular, ok := singularName(remoteType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrUnsupportedRemote, remoteType)
	}

	endpoint := "/api/" + string(remoteType) + "/" + externalID
	respBody, err := c.doRequest(ctx, s, target, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	return parseResource(respBody, singular, remoteType)
}

// Delete removes a resource from the shop
func (c *Client) Delete(ctx context.Context, target integration.Target, remoteType integration.RemoteType, externalID string) error {
	s, err := c.getShop(target.Identifier)
	if err != nil {
		return err
	}

	if !remoteType.IsValid() {
		return fmt.Errorf("%w: %s", integration.ErrUnsupportedRemote, remoteType)
	}

	endpoint := "/api/" + string(remoteType) + "/" + externalID
	_, err = c.doRequest(ctx, s, target, http.MethodDelete, endpoint, nil)
	return err
}

// ---------------------------------------------------------------------------
// Wire format
// ---------------------------------------------------------------------------

// singularName maps a remote type to the webservice's singular node name
func singularName(remoteType integration.RemoteType) (string, bool) {
	switch remoteType {
	case integration.RemoteTypeCategories:
		return "category", true
	case integration.RemoteTypeProducts:
		return "product", true
	case integration.RemoteTypeProductFeatures:
		return "product_feature", true
	case integration.RemoteTypeProductFeatureValues:
		return "product_feature_value", true
	default:
		return "", false
	}
}

// buildResource translates the neutral payload into the shop's field names
func buildResource(obj integration.RemoteObject) map[string]any {
	fields := map[string]any{
		"name": obj.Name,
	}
	if obj.ExternalID != "" {
		fields["id"] = obj.ExternalID
	}

	switch obj.RemoteType {
	case integration.RemoteTypeCategories:
		fields["link_rewrite"] = obj.Code
		fields["active"] = boolFlag(obj.Active)
		if obj.ParentExternalID != "" {
			fields["id_parent"] = obj.ParentExternalID
		}
	case integration.RemoteTypeProducts:
		fields["reference"] = obj.Code
		fields["description"] = obj.Description
		fields["price"] = obj.Price.StringFixed(2)
		fields["quantity"] = strconv.FormatInt(obj.Quantity.IntPart(), 10)
		fields["active"] = boolFlag(obj.Active)
		if len(obj.CategoryExternalIDs) > 0 {
			categories := make([]map[string]string, 0, len(obj.CategoryExternalIDs))
			for _, id := range obj.CategoryExternalIDs {
				categories = append(categories, map[string]string{"id": id})
			}
			fields["associations"] = map[string]any{"categories": categories}
		}
		if obj.DefaultCategoryExternalID != "" {
			fields["id_category_default"] = obj.DefaultCategoryExternalID
		}
		if len(obj.FeatureValues) > 0 {
			features := make([]map[string]string, 0, len(obj.FeatureValues))
			for _, fv := range obj.FeatureValues {
				features = append(features, map[string]string{
					"id":               fv.FeatureID,
					"id_feature_value": fv.ValueID,
				})
			}
			if assoc, ok := fields["associations"].(map[string]any); ok {
				assoc["product_features"] = features
			} else {
				fields["associations"] = map[string]any{"product_features": features}
			}
		}
	case integration.RemoteTypeProductFeatureValues:
		fields["value"] = obj.Name
		if obj.ParentExternalID != "" {
			fields["id_feature"] = obj.ParentExternalID
		}
	}

	return fields
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// flexibleID accepts the webservice's ID fields, which come back as JSON
// numbers or quoted strings depending on shop version
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*f = flexibleID(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	*f = flexibleID(asNumber.String())
	return nil
}

func (f flexibleID) String() string { return string(f) }

// resourceNode is the subset of a webservice resource the client reads back
type resourceNode struct {
	ID          flexibleID `json:"id"`
	Name        any        `json:"name"`
	LinkRewrite any        `json:"link_rewrite"`
	Reference   string     `json:"reference"`
	Value       any        `json:"value"`
	Active      string     `json:"active"`
	IDParent    flexibleID `json:"id_parent"`
}

// extractID pulls the resource ID out of a create or update response
func extractID(body []byte, singular string) (string, error) {
	var envelope map[string]resourceNode
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", err
	}
	node, ok := envelope[singular]
	if !ok || node.ID.String() == "" {
		return "", fmt.Errorf("missing %s.id", singular)
	}
	return node.ID.String(), nil
}

// parseResource reads a webservice resource back into the neutral payload.
// Multilanguage fields come back either as plain strings or as per-language
// arrays; only the first value is kept.
func parseResource(body []byte, singular string, remoteType integration.RemoteType) (*integration.RemoteObject, error) {
	var envelope map[string]resourceNode
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err)
	}
	node, ok := envelope[singular]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s node", integration.ErrInvalidResponse, singular)
	}

	obj := &integration.RemoteObject{
		RemoteType:       remoteType,
		ExternalID:       node.ID.String(),
		Name:             flattenLangField(node.Name),
		Code:             node.Reference,
		ParentExternalID: node.IDParent.String(),
		Active:           node.Active == "1",
	}
	if obj.Code == "" {
		obj.Code = flattenLangField(node.LinkRewrite)
	}
	if remoteType == integration.RemoteTypeProductFeatureValues {
		obj.Name = flattenLangField(node.Value)
	}
	return obj, nil
}

// flattenLangField extracts a display string from a possibly multilanguage
// webservice field
func flattenLangField(field any) string {
	switch v := field.(type) {
	case string:
		return v
	case []any:
		for _, entry := range v {
			if m, ok := entry.(map[string]any); ok {
				if value, ok := m["value"].(string); ok {
					return value
				}
			}
		}
	}
	return ""
}

// ---------------------------------------------------------------------------
// Transport
// ---------------------------------------------------------------------------

// doRequest performs one webservice call, honoring the shop's rate limit,
// and classifies failures into *integration.APIError
func (c *Client) doRequest(ctx context.Context, s *shop, target integration.Target,
	method, endpoint string, body []byte) ([]byte, error) {
	errCtx := integration.ErrorContext{
		Target:           integration.IntegrationTypePrestashop,
		TargetIdentifier: target.Identifier,
		Endpoint:         endpoint,
		Method:           method,
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, integration.NewConnectionError(err, errCtx)
	}

	url := s.config.BaseURL + endpoint + "?output_format=JSON"
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("prestashop: failed to create request: %w", err)
	}
	req.SetBasicAuth(s.config.APIKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, integration.NewConnectionError(err, errCtx)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, integration.NewConnectionError(err, errCtx)
	}

	if resp.StatusCode >= 400 {
		errCtx.ResponseBody = excerpt(respBody)
		apiErr := integration.NewAPIError(errorMessage(respBody, resp.StatusCode), resp.StatusCode, errCtx)
		apiErr.RetryAfterSeconds = parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, apiErr
	}

	return respBody, nil
}

// errorMessage extracts the webservice error message when the body carries
// one, falling back to the HTTP status text
func errorMessage(body []byte, statusCode int) string {
	var errResp struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Errors) > 0 {
		return errResp.Errors[0].Message
	}
	return http.StatusText(statusCode)
}

// parseRetryAfter parses a Retry-After header given in seconds
func parseRetryAfter(header string) int {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}

func excerpt(body []byte) string {
	if len(body) > responseExcerptSize {
		return string(body[:responseExcerptSize])
	}
	return string(body)
}

// Ensure Client implements the TargetClient port
var _ integration.TargetClient = (*Client)(nil)

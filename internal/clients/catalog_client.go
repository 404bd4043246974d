package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/paperkart/paperkart-sales-service/internal/config"
	"github.com/paperkart/paperkart-sales-service/internal/models"
)

// CatalogClient provides operations for resolving SKUs.
type CatalogClient interface {
	GetSKU(ctx context.Context, skuID string) (*models.SKU, error)
}

// HTTPCatalogClient implements CatalogClient against the catalogue service.
type HTTPCatalogClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *zap.Logger
}

// NewHTTPCatalogClient creates a new HTTP-based catalogue client.
func NewHTTPCatalogClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger.Named("catalog-client"),
	}
}

// GetSKU retrieves an SKU by ID. A 404 returns (nil, nil).
func (c *HTTPCatalogClient) GetSKU(ctx context.Context, skuID string) (*models.SKU, error) {
	c.logger.Debug("Fetching SKU", zap.String("sku_id", skuID))

	url := fmt.Sprintf("%s/api/v1/skus/%s", c.baseURL, skuID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch SKU",
			zap.String("sku_id", skuID),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned status %d", resp.StatusCode)
	}

	var sku models.SKU
	if err := json.NewDecoder(resp.Body).Decode(&sku); err != nil {
		return nil, err
	}

	return &sku, nil
}

// MockCatalogClient is an in-memory implementation for testing.
type MockCatalogClient struct {
	skus map[string]*models.SKU
}

// NewMockCatalogClient creates a mock catalogue client.
func NewMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{
		skus: make(map[string]*models.SKU),
	}
}

func (m *MockCatalogClient) GetSKU(ctx context.Context, skuID string) (*models.SKU, error) {
	if sku, ok := m.skus[skuID]; ok {
		return sku, nil
	}
	return nil, nil
}

func (m *MockCatalogClient) AddSKU(sku *models.SKU) {
	m.skus[sku.ID] = sku
}

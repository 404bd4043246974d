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

// CustomerClient provides operations for fetching customer master data.
type CustomerClient interface {
	GetCustomer(ctx context.Context, customerID string) (*models.Customer, error)
	CheckCredit(ctx context.Context, customerID string) (bool, error)
}

// HTTPCustomerClient implements CustomerClient against the customer service.
type HTTPCustomerClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *zap.Logger
}

// NewHTTPCustomerClient creates a new HTTP-based customer client.
func NewHTTPCustomerClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPCustomerClient {
	return &HTTPCustomerClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger.Named("customer-client"),
	}
}

// GetCustomer retrieves a customer by ID. A 404 returns (nil, nil).
func (c *HTTPCustomerClient) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	c.logger.Debug("Fetching customer", zap.String("customer_id", customerID))

	url := fmt.Sprintf("%s/api/v1/customers/%s", c.baseURL, customerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch customer",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("customer service returned status %d", resp.StatusCode)
	}

	var customer models.Customer
	if err := json.NewDecoder(resp.Body).Decode(&customer); err != nil {
		return nil, err
	}

	c.logger.Debug("Customer fetched",
		zap.String("customer_id", customer.ID),
		zap.Float64("benchmark_rate_44", customer.BenchmarkRate44),
		zap.String("credit_status", string(customer.CreditStatus)),
	)

	return &customer, nil
}

// CheckCredit reports whether the customer may place new orders.
func (c *HTTPCustomerClient) CheckCredit(ctx context.Context, customerID string) (bool, error) {
	customer, err := c.GetCustomer(ctx, customerID)
	if err != nil {
		return false, err
	}
	if customer == nil {
		return false, nil
	}
	return customer.CanOrder(), nil
}

func (c *HTTPCustomerClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// MockCustomerClient is an in-memory implementation for testing.
type MockCustomerClient struct {
	customers map[string]*models.Customer
}

// NewMockCustomerClient creates a mock customer client.
func NewMockCustomerClient() *MockCustomerClient {
	return &MockCustomerClient{
		customers: make(map[string]*models.Customer),
	}
}

func (m *MockCustomerClient) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	if customer, ok := m.customers[customerID]; ok {
		return customer, nil
	}
	return nil, nil
}

func (m *MockCustomerClient) CheckCredit(ctx context.Context, customerID string) (bool, error) {
	customer, ok := m.customers[customerID]
	if !ok {
		return false, nil
	}
	return customer.CanOrder(), nil
}

func (m *MockCustomerClient) AddCustomer(customer *models.Customer) {
	m.customers[customer.ID] = customer
}

package repository

import (
	"context"
	"sort"
	"time"

	"github.com/paperkart/paperkart-sales-service/internal/errors"
	"github.com/paperkart/paperkart-sales-service/internal/models"
)

// MockOrderRepository is an in-memory OrderRepository for testing.
type MockOrderRepository struct {
	orders map[string]*models.SalesOrder
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*models.SalesOrder),
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.SalesOrder) error {
	if order.ID == "" {
		order.ID = GenerateOrderID()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.SalesOrder, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return order, nil
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, req *models.UpdateOrderStatusRequest) (*models.SalesOrder, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	order.Status = req.Status
	if req.Notes != "" {
		order.Notes = req.Notes
	}
	if req.ChallanNumber != "" {
		order.ChallanNumber = req.ChallanNumber
	}
	now := time.Now()
	order.UpdatedAt = now
	if req.Status == models.OrderStatusDispatched {
		order.DispatchedAt = &now
	} else if req.Status == models.OrderStatusInvoiced {
		order.InvoicedAt = &now
	}
	return order, nil
}

func (m *MockOrderRepository) List(ctx context.Context, filter *models.OrderListFilter) ([]*models.SalesOrder, int, error) {
	matched := make([]*models.SalesOrder, 0)
	for _, order := range m.orders {
		if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		matched = append(matched, order)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset > len(matched) {
		return []*models.SalesOrder{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (m *MockOrderRepository) GetByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*models.SalesOrder, int, error) {
	return m.List(ctx, &models.OrderListFilter{CustomerID: customerID, Limit: limit, Offset: offset})
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.orders[id]; !ok {
		return errors.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

// MockOrderCache is an in-memory OrderCache for testing.
type MockOrderCache struct {
	orders         map[string]*models.SalesOrder
	customerOrders map[string][]*models.SalesOrder
}

func NewMockOrderCache() *MockOrderCache {
	return &MockOrderCache{
		orders:         make(map[string]*models.SalesOrder),
		customerOrders: make(map[string][]*models.SalesOrder),
	}
}

func (m *MockOrderCache) Get(ctx context.Context, id string) (*models.SalesOrder, error) {
	return m.orders[id], nil
}

func (m *MockOrderCache) Set(ctx context.Context, order *models.SalesOrder) error {
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderCache) Delete(ctx context.Context, id string) error {
	delete(m.orders, id)
	return nil
}

func (m *MockOrderCache) GetByCustomerID(ctx context.Context, customerID string) ([]*models.SalesOrder, error) {
	return m.customerOrders[customerID], nil
}

func (m *MockOrderCache) SetByCustomerID(ctx context.Context, customerID string, orders []*models.SalesOrder) error {
	m.customerOrders[customerID] = orders
	return nil
}

func (m *MockOrderCache) InvalidateByCustomerID(ctx context.Context, customerID string) error {
	delete(m.customerOrders, customerID)
	return nil
}

// MockRateCache is an in-memory RateCache for testing.
type MockRateCache struct {
	rates map[string]float64
}

func NewMockRateCache() *MockRateCache {
	return &MockRateCache{rates: make(map[string]float64)}
}

func (m *MockRateCache) Get(ctx context.Context, customerID string) (float64, bool, error) {
	rate, ok := m.rates[customerID]
	return rate, ok, nil
}

func (m *MockRateCache) Set(ctx context.Context, customerID string, rate float64) error {
	m.rates[customerID] = rate
	return nil
}

func (m *MockRateCache) Invalidate(ctx context.Context, customerID string) error {
	delete(m.rates, customerID)
	return nil
}

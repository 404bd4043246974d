package repository

import (
	"context"

	"github.com/paperkart/paperkart-sales-service/internal/models"
)

// OrderRepository persists sales orders. The service prices an order before
// handing it over; the repository never recomputes amounts.
type OrderRepository interface {
	Create(ctx context.Context, order *models.SalesOrder) error
	GetByID(ctx context.Context, id string) (*models.SalesOrder, error)
	UpdateStatus(ctx context.Context, id string, req *models.UpdateOrderStatusRequest) (*models.SalesOrder, error)
	List(ctx context.Context, filter *models.OrderListFilter) ([]*models.SalesOrder, int, error)
	GetByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*models.SalesOrder, int, error)
	Delete(ctx context.Context, id string) error
}

// OrderCache defines caching operations for orders.
type OrderCache interface {
	Get(ctx context.Context, id string) (*models.SalesOrder, error)
	Set(ctx context.Context, order *models.SalesOrder) error
	Delete(ctx context.Context, id string) error
	GetByCustomerID(ctx context.Context, customerID string) ([]*models.SalesOrder, error)
	SetByCustomerID(ctx context.Context, customerID string, orders []*models.SalesOrder) error
	InvalidateByCustomerID(ctx context.Context, customerID string) error
}

// RateCache caches each customer's benchmark rate so repeated quoting does
// not hammer the customer service. A missing entry returns found=false.
type RateCache interface {
	Get(ctx context.Context, customerID string) (rate float64, found bool, err error)
	Set(ctx context.Context, customerID string, rate float64) error
	Invalidate(ctx context.Context, customerID string) error
}

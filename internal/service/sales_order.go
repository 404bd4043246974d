package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/paperkart/paperkart-sales-service/internal/clients"
	"github.com/paperkart/paperkart-sales-service/internal/config"
	"github.com/paperkart/paperkart-sales-service/internal/errors"
	"github.com/paperkart/paperkart-sales-service/internal/events"
	"github.com/paperkart/paperkart-sales-service/internal/metrics"
	"github.com/paperkart/paperkart-sales-service/internal/models"
	"github.com/paperkart/paperkart-sales-service/internal/pricing"
	"github.com/paperkart/paperkart-sales-service/internal/repository"
)

// SalesOrderService handles sales order business logic: SKU resolution,
// width-rate pricing, credit gating, persistence, and event publication.
type SalesOrderService struct {
	orderRepo      repository.OrderRepository
	orderCache     repository.OrderCache
	rateCache      repository.RateCache
	customerClient clients.CustomerClient
	catalogClient  clients.CatalogClient
	notifier       clients.Notifier
	eventPublisher events.OrderEventPublisher
	config         *config.Config
	logger         *zap.Logger
}

// NewSalesOrderService creates a new sales order service.
func NewSalesOrderService(
	orderRepo repository.OrderRepository,
	orderCache repository.OrderCache,
	rateCache repository.RateCache,
	customerClient clients.CustomerClient,
	catalogClient clients.CatalogClient,
	notifier clients.Notifier,
	eventPublisher events.OrderEventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *SalesOrderService {
	return &SalesOrderService{
		orderRepo:      orderRepo,
		orderCache:     orderCache,
		rateCache:      rateCache,
		customerClient: customerClient,
		catalogClient:  catalogClient,
		notifier:       notifier,
		eventPublisher: eventPublisher,
		config:         cfg,
		logger:         logger.Named("sales-order-service"),
	}
}

// QuoteOrder prices a request without persisting anything. This is the
// recompute-on-demand path the order entry screen calls whenever a line, the
// discount, or the customer changes.
func (s *SalesOrderService) QuoteOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.QuoteResponse, error) {
	s.logger.Debug("Quoting order",
		zap.String("customer_id", req.CustomerID),
		zap.Int("line_count", len(req.Lines)),
	)

	if err := ValidateQuoteRequest(req, s.config.Pricing.MaxDiscountPercent); err != nil {
		return nil, err
	}

	benchmarkRate, err := s.benchmarkRateFor(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	resolved, lineRequests, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	metrics.PricingRequests.Inc()

	quote := &models.QuoteResponse{
		CustomerID:      req.CustomerID,
		BenchmarkRate44: benchmarkRate,
		DiscountPercent: req.DiscountPercent,
		Lines:           make([]models.QuotedLine, len(resolved)),
		Totals:          pricing.AggregateOrder(benchmarkRate, lineRequests, req.DiscountPercent),
	}

	for i, line := range resolved {
		quote.Lines[i] = models.QuotedLine{
			SKUID:         line.SKUID,
			SKUName:       line.SKUName,
			WidthInches:   line.WidthInches,
			QuantityRolls: line.QuantityRolls,
			Pricing:       pricing.PriceLine(benchmarkRate, lineRequests[i], req.DiscountPercent),
		}
	}

	return quote, nil
}

// CreateOrder validates, prices, and persists a new sales order.
func (s *SalesOrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.SalesOrder, error) {
	s.logger.Info("Creating sales order",
		zap.String("customer_id", req.CustomerID),
		zap.Int("line_count", len(req.Lines)),
	)

	if err := ValidateCreateOrderRequest(req, s.config.Pricing.MaxDiscountPercent); err != nil {
		metrics.OrdersCreated.WithLabelValues("invalid").Inc()
		return nil, err
	}

	customer, err := s.getCustomer(ctx, req.CustomerID)
	if err != nil {
		metrics.OrdersCreated.WithLabelValues("error").Inc()
		return nil, err
	}

	// Credit gate: blocked customers cannot place orders. The decision
	// itself belongs to the customer service; this is only enforcement.
	if !customer.CanOrder() {
		metrics.OrdersCreated.WithLabelValues("credit_blocked").Inc()
		return nil, errors.NewValidationError("customer_id", "customer credit is blocked")
	}

	resolved, lineRequests, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		metrics.OrdersCreated.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.PricingRequests.Inc()

	order := &models.SalesOrder{
		ID:              repository.GenerateOrderID(),
		CustomerID:      customer.ID,
		Status:          models.OrderStatusPending,
		BenchmarkRate44: customer.BenchmarkRate44,
		DiscountPercent: req.DiscountPercent,
		Lines:           resolved,
		Notes:           req.Notes,
	}

	for i := range order.Lines {
		order.Lines[i].ApplyPricing(pricing.PriceLine(customer.BenchmarkRate44, lineRequests[i], req.DiscountPercent))
	}

	totals := pricing.AggregateOrder(customer.BenchmarkRate44, lineRequests, req.DiscountPercent)
	order.Subtotal = totals.Subtotal
	order.DiscountAmount = totals.DiscountAmount
	order.TaxAmount = totals.TaxAmount
	order.GrandTotal = totals.GrandTotal

	if err := s.orderRepo.Create(ctx, order); err != nil {
		metrics.OrdersCreated.WithLabelValues("error").Inc()
		s.logger.Error("Failed to create order",
			zap.String("customer_id", req.CustomerID),
			zap.Error(err),
		)
		return nil, err
	}
	metrics.OrdersCreated.WithLabelValues("ok").Inc()

	if s.config.Features.EnableOrderCaching {
		if err := s.orderCache.Set(ctx, order); err != nil {
			// Log but don't fail.
			s.logger.Error("Failed to cache order",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
		s.orderCache.InvalidateByCustomerID(ctx, order.CustomerID)
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.eventPublisher.PublishOrderCreated(ctx, order); err != nil {
			s.logger.Error("Failed to publish order created event",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	if s.config.Features.EnableNotifications {
		go s.sendOrderNotification(context.Background(), order, clients.NotificationTypeOrderConfirmed,
			"Order Received", fmt.Sprintf("Sales order %s has been booked.", order.ID))
	}

	s.logger.Info("Sales order created",
		zap.String("order_id", order.ID),
		zap.Float64("grand_total", order.GrandTotal),
	)

	return order, nil
}

// GetOrder retrieves an order by ID, cache first.
func (s *SalesOrderService) GetOrder(ctx context.Context, id string) (*models.SalesOrder, error) {
	s.logger.Debug("Getting order", zap.String("order_id", id))

	if s.config.Features.EnableOrderCaching {
		if order, err := s.orderCache.Get(ctx, id); err == nil && order != nil {
			return order, nil
		}
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.ErrNotFound
	}

	if s.config.Features.EnableOrderCaching {
		s.orderCache.Set(ctx, order)
	}

	return order, nil
}

// ListOrders retrieves orders matching the filter.
func (s *SalesOrderService) ListOrders(ctx context.Context, filter *models.OrderListFilter) ([]*models.SalesOrder, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	return s.orderRepo.List(ctx, filter)
}

// GetCustomerOrders retrieves orders for a specific customer.
func (s *SalesOrderService) GetCustomerOrders(ctx context.Context, customerID string, limit, offset int) ([]*models.SalesOrder, int, error) {
	s.logger.Debug("Getting customer orders",
		zap.String("customer_id", customerID),
		zap.Int("limit", limit),
		zap.Int("offset", offset),
	)

	if s.config.Features.EnableOrderCaching && offset == 0 {
		if orders, err := s.orderCache.GetByCustomerID(ctx, customerID); err == nil && orders != nil {
			return orders, len(orders), nil
		}
	}

	orders, total, err := s.orderRepo.GetByCustomerID(ctx, customerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	if s.config.Features.EnableOrderCaching && offset == 0 {
		s.orderCache.SetByCustomerID(ctx, customerID, orders)
	}

	return orders, total, nil
}

// UpdateOrderStatus moves an order through its lifecycle.
func (s *SalesOrderService) UpdateOrderStatus(ctx context.Context, id string, req *models.UpdateOrderStatusRequest) (*models.SalesOrder, error) {
	s.logger.Info("Updating order status",
		zap.String("order_id", id),
		zap.String("new_status", string(req.Status)),
	)

	if err := ValidateUpdateOrderStatusRequest(req); err != nil {
		return nil, err
	}

	currentOrder, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if currentOrder == nil {
		return nil, errors.ErrNotFound
	}

	if !isValidStatusTransition(currentOrder.Status, req.Status) {
		return nil, errors.NewValidationError("status", fmt.Sprintf(
			"invalid status transition from %s to %s",
			currentOrder.Status,
			req.Status,
		))
	}

	if req.Status == models.OrderStatusDispatched && req.ChallanNumber == "" {
		return nil, errors.NewValidationError("challan_number", "challan number is required for dispatch")
	}

	previousStatus := currentOrder.Status

	order, err := s.orderRepo.UpdateStatus(ctx, id, req)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableOrderCaching {
		s.orderCache.Delete(ctx, id)
		s.orderCache.InvalidateByCustomerID(ctx, order.CustomerID)
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.eventPublisher.PublishOrderStatusChanged(ctx, order, previousStatus); err != nil {
			s.logger.Error("Failed to publish status change event",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	if s.config.Features.EnableNotifications && order.Status == models.OrderStatusDispatched {
		go s.sendOrderNotification(context.Background(), order, clients.NotificationTypeOrderDispatched,
			"Order Dispatched", fmt.Sprintf("Sales order %s left on challan %s.", order.ID, order.ChallanNumber))
	}

	return order, nil
}

// CancelOrder cancels an order that has not yet been dispatched.
func (s *SalesOrderService) CancelOrder(ctx context.Context, id string, reason string) (*models.SalesOrder, error) {
	s.logger.Info("Cancelling order",
		zap.String("order_id", id),
		zap.String("reason", reason),
	)

	if err := ValidateCancellationReason(reason); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.ErrNotFound
	}

	if !order.CanCancel() {
		return nil, errors.NewValidationError("status", "order cannot be cancelled in current state")
	}

	req := &models.UpdateOrderStatusRequest{
		Status: models.OrderStatusCancelled,
		Notes:  reason,
	}

	order, err = s.orderRepo.UpdateStatus(ctx, id, req)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableOrderCaching {
		s.orderCache.Delete(ctx, id)
		s.orderCache.InvalidateByCustomerID(ctx, order.CustomerID)
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.eventPublisher.PublishOrderCancelled(ctx, order, reason); err != nil {
			s.logger.Error("Failed to publish order cancelled event",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	if s.config.Features.EnableNotifications {
		go s.sendOrderNotification(context.Background(), order, clients.NotificationTypeOrderCancelled,
			"Order Cancelled", fmt.Sprintf("Sales order %s has been cancelled: %s", order.ID, reason))
	}

	return order, nil
}

// getCustomer fetches the customer fresh from the customer service (the
// credit gate must never act on stale data) and refreshes the rate cache on
// the way through.
func (s *SalesOrderService) getCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	customer, err := s.customerClient.GetCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("Failed to fetch customer",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return nil, err
	}
	if customer == nil {
		return nil, errors.NewValidationError("customer_id", "customer not found")
	}

	if s.config.Features.EnableRateCaching {
		if err := s.rateCache.Set(ctx, customerID, customer.BenchmarkRate44); err != nil {
			s.logger.Error("Failed to cache benchmark rate",
				zap.String("customer_id", customerID),
				zap.Error(err),
			)
		}
	}

	return customer, nil
}

// benchmarkRateFor returns the customer's 44-inch benchmark rate, serving
// repeat quoting from cache. Only the quote path uses this; order creation
// always reads the customer fresh.
func (s *SalesOrderService) benchmarkRateFor(ctx context.Context, customerID string) (float64, error) {
	if s.config.Features.EnableRateCaching {
		if rate, found, err := s.rateCache.Get(ctx, customerID); err == nil && found {
			return rate, nil
		}
	}

	customer, err := s.getCustomer(ctx, customerID)
	if err != nil {
		return 0, err
	}

	return customer.BenchmarkRate44, nil
}

// resolveLines turns line requests into order lines with catalogue data
// filled in, plus the matching pricing-engine inputs. A line whose SKU is
// unknown is a validation error; width and tax come from the SKU, with the
// policy default applied when the catalogue carries no tax rate.
func (s *SalesOrderService) resolveLines(ctx context.Context, reqs []models.OrderLineRequest) ([]models.OrderLine, []pricing.LineRequest, error) {
	lines := make([]models.OrderLine, len(reqs))
	lineRequests := make([]pricing.LineRequest, len(reqs))

	for i, lr := range reqs {
		sku, err := s.catalogClient.GetSKU(ctx, lr.SKUID)
		if err != nil {
			s.logger.Error("Failed to resolve SKU",
				zap.String("sku_id", lr.SKUID),
				zap.Error(err),
			)
			return nil, nil, err
		}
		if sku == nil {
			return nil, nil, errors.NewValidationError("lines", fmt.Sprintf("unknown SKU %s", lr.SKUID))
		}

		taxRate := sku.DefaultTaxRatePercent
		if lr.TaxRatePercent != nil {
			taxRate = *lr.TaxRatePercent
		}
		if taxRate <= 0 {
			taxRate = s.config.Pricing.DefaultTaxRatePercent
		}

		lines[i] = models.OrderLine{
			ID:             repository.GenerateLineID(),
			SKUID:          sku.ID,
			SKUName:        sku.Name,
			WidthInches:    sku.WidthInches,
			QuantityRolls:  lr.QuantityRolls,
			OverrideRate:   lr.OverrideRate,
			TaxRatePercent: taxRate,
		}
		lineRequests[i] = lines[i].PricingRequest()
	}

	return lines, lineRequests, nil
}

func (s *SalesOrderService) sendOrderNotification(ctx context.Context, order *models.SalesOrder, t clients.NotificationType, subject, body string) {
	n := &clients.Notification{
		Type:      t,
		Recipient: order.CustomerID,
		Subject:   subject,
		Body:      body,
		Metadata: map[string]string{
			"order_id":    order.ID,
			"grand_total": fmt.Sprintf("%.2f", order.GrandTotal),
		},
	}

	if err := s.notifier.Send(ctx, n); err != nil {
		s.logger.Error("Failed to send notification",
			zap.String("order_id", order.ID),
			zap.String("type", string(t)),
			zap.Error(err),
		)
	}
}

func isValidStatusTransition(from, to models.OrderStatus) bool {
	validTransitions := map[models.OrderStatus][]models.OrderStatus{
		models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
		models.OrderStatusConfirmed:  {models.OrderStatusDispatched, models.OrderStatusCancelled},
		models.OrderStatusDispatched: {models.OrderStatusInvoiced},
		models.OrderStatusInvoiced:   {models.OrderStatusClosed},
		models.OrderStatusClosed:     {},
		models.OrderStatusCancelled:  {},
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

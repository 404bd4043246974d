package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/paperkart/paperkart-sales-service/internal/clients"
	"github.com/paperkart/paperkart-sales-service/internal/config"
	"github.com/paperkart/paperkart-sales-service/internal/errors"
	"github.com/paperkart/paperkart-sales-service/internal/events"
	"github.com/paperkart/paperkart-sales-service/internal/models"
	"github.com/paperkart/paperkart-sales-service/internal/repository"
)

type testFixture struct {
	service        *SalesOrderService
	orderRepo      *repository.MockOrderRepository
	orderCache     *repository.MockOrderCache
	rateCache      *repository.MockRateCache
	customerClient *clients.MockCustomerClient
	catalogClient  *clients.MockCatalogClient
	notifier       *clients.MockNotifier
	eventPublisher *events.MockEventPublisher
}

func newTestFixture() *testFixture {
	f := &testFixture{
		orderRepo:      repository.NewMockOrderRepository(),
		orderCache:     repository.NewMockOrderCache(),
		rateCache:      repository.NewMockRateCache(),
		customerClient: clients.NewMockCustomerClient(),
		catalogClient:  clients.NewMockCatalogClient(),
		notifier:       clients.NewMockNotifier(),
		eventPublisher: events.NewMockEventPublisher(),
	}

	cfg := &config.Config{
		Features: config.FeatureFlags{
			EnableOrderCaching: true,
			EnableRateCaching:  true,
			EnableOrderEvents:  true,
			// Notifications fire on a background goroutine; keep them off so
			// tests stay deterministic.
			EnableNotifications: false,
		},
		Pricing: config.PricingConfig{
			DefaultTaxRatePercent: 18,
			MaxDiscountPercent:    100,
		},
	}

	f.service = NewSalesOrderService(
		f.orderRepo,
		f.orderCache,
		f.rateCache,
		f.customerClient,
		f.catalogClient,
		f.notifier,
		f.eventPublisher,
		cfg,
		zap.NewNop(),
	)

	return f
}

func (f *testFixture) addCustomer(id string, rate float64, status models.CreditStatus) {
	f.customerClient.AddCustomer(&models.Customer{
		ID:              id,
		Name:            "Test Traders",
		BenchmarkRate44: rate,
		CreditStatus:    status,
	})
}

func (f *testFixture) addSKU(id string, width, taxRate float64) {
	f.catalogClient.AddSKU(&models.SKU{
		ID:                    id,
		Name:                  "Maplitho 80gsm",
		WidthInches:           width,
		GSM:                   80,
		DefaultTaxRatePercent: taxRate,
	})
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateOrder(t *testing.T) {
	f := newTestFixture()
	f.addCustomer("cust_1", 4400, models.CreditStatusOK)
	f.addSKU("sku_63", 63, 18)

	order, err := f.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		CustomerID:      "cust_1",
		DiscountPercent: 5,
		Lines: []models.OrderLineRequest{
			{SKUID: "sku_63", QuantityRolls: 10},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if order.Status != models.OrderStatusPending {
		t.Errorf("Expected status pending, got %s", order.Status)
	}
	if order.BenchmarkRate44 != 4400 {
		t.Errorf("Expected benchmark rate 4400, got %g", order.BenchmarkRate44)
	}

	line := order.Lines[0]
	if line.DerivedRate != 6300 {
		t.Errorf("Expected derived rate 6300, got %g", line.DerivedRate)
	}
	if line.EffectiveRate != 6300 {
		t.Errorf("Expected effective rate 6300, got %g", line.EffectiveRate)
	}
	if line.Subtotal != 63000 {
		t.Errorf("Expected line subtotal 63000, got %g", line.Subtotal)
	}

	if order.Subtotal != 63000 {
		t.Errorf("Expected subtotal 63000, got %g", order.Subtotal)
	}
	if order.DiscountAmount != 3150 {
		t.Errorf("Expected discount 3150, got %g", order.DiscountAmount)
	}
	if order.TaxAmount != 10773 {
		t.Errorf("Expected tax 10773, got %g", order.TaxAmount)
	}
	if order.GrandTotal != 70623 {
		t.Errorf("Expected grand total 70623, got %g", order.GrandTotal)
	}

	stored, err := f.orderRepo.GetByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("Order not persisted: %v", err)
	}
	if stored.GrandTotal != order.GrandTotal {
		t.Errorf("Stored grand total %g does not match returned %g", stored.GrandTotal, order.GrandTotal)
	}

	if len(f.eventPublisher.Events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(f.eventPublisher.Events))
	}
	if f.eventPublisher.Events[0].Type != events.EventTypeOrderCreated {
		t.Errorf("Expected order.created event, got %s", f.eventPublisher.Events[0].Type)
	}
}

func TestCreateOrder_OverrideRate(t *testing.T) {
	f := newTestFixture()
	f.addCustomer("cust_1", 4400, models.CreditStatusOK)
	f.addSKU("sku_63", 63, 18)

	order, err := f.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		CustomerID:      "cust_1",
		DiscountPercent: 5,
		Lines: []models.OrderLineRequest{
			{SKUID: "sku_63", QuantityRolls: 10, OverrideRate: floatPtr(6000)},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	line := order.Lines[0]
	if line.DerivedRate != 6300 {
		t.Errorf("Expected derived rate 6300, got %g", line.DerivedRate)
	}
	if line.EffectiveRate != 6000 {
		t.Errorf("Expected effective rate 6000, got %g", line.EffectiveRate)
	}
	if order.Subtotal != 60000 {
		t.Errorf("Expected subtotal 60000, got %g", order.Subtotal)
	}
	if order.DiscountAmount != 3000 {
		t.Errorf("Expected discount 3000, got %g", order.DiscountAmount)
	}
	if order.TaxAmount != 10260 {
		t.Errorf("Expected tax 10260, got %g", order.TaxAmount)
	}
	if order.GrandTotal != 67260 {
		t.Errorf("Expected grand total 67260, got %g", order.GrandTotal)
	}
}

func TestCreateOrder_ZeroOverrideIsFreeOfCharge(t *testing.T) {
	f := newTestFixture()
	f.addCustomer("cust_1", 4400, models.CreditStatusOK)
	f.addSKU("sku_63", 63, 18)

	order, err := f.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		CustomerID: "cust_1",
		Lines: []models.OrderLineRequest{
			{SKUID: "sku_63", QuantityRolls: 2, OverrideRate: floatPtr(0)},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	line := order.Lines[0]
	if line.DerivedRate != 6300 {
		t.Errorf("Expected derived rate 6300 even when overridden, got %g", line.DerivedRate)
	}
	if line.EffectiveRate != 0 {
		t.Errorf("Expected effective rate 0, got %g", line.EffectiveRate)
	}
	if order.GrandTotal != 0 {
		t.Errorf("Expected grand total 0, got %g", order.GrandTotal)
	}
}

func TestCreateOrder_CreditBlocked(t *testing.T) {
	f := newTestFixture()
	f.addCustomer("cust_blocked", 4400, models.CreditStatusBlocked)
	f.addSKU("sku_63", 63, 18)

	_, err := f.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		CustomerID: "cust_blocked",
		Lines: []models.OrderLineRequest{
			{SKUID: "sku_63", QuantityRolls: 1},
		},
	})
	if err == nil {
		t.Fatal("Expected error for credit-blocked customer")
	}
	if _, ok := err.(*errors.ValidationError); !ok {
		t.Errorf("Expected validation error, got %T", err)
	}
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	f := newTestFixture()
	f.addSKU("sku_63", 63, 18)

	_, err := f.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		CustomerID: "cust_missing",
		Lines: []models.OrderLineRequest{
			{SKUID: "sku_63", QuantityRolls: 1},
		},
	})
	if err == nil {
		t.Fatal("Expected error for unknown customer")
	}
}

func TestCreateOrder_UnknownSKU(t *testing.T) {
	f := newTestFixture()
	f.addCustomer("cust_1", 4400, models.CreditStatusOK)

	_, err := f.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		CustomerID: "cust_1",
		Lines: []models.OrderLineRequest{
			{SKUID: "sku_missing", QuantityRolls: 1},
		},
	})
	if err == nil {
		t.Fatal("Expected error for unknown SKU")
	}
}

func TestCreateOrder_DefaultTaxRateApplied(t *testing.T) {
	f := newTestFixture()
	f.addCustomer("cust_1", 4400, models.CreditStatusOK)
	// Catalogue carries no tax rate for this SKU.
	f.addSKU("sku_44", 44, 0)

	order, err := f.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		CustomerID: "cust_1",
		Lines: []models.OrderLineRequest{
			{SKUID: "sku_44", QuantityRolls: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if order.Lines[0].TaxRatePercent != 18 {
		t.Errorf("Expected policy default tax rate 18, got %g", order.Lines[0].TaxRatePercent)
	}
	// 44-inch roll at the 44-inch benchmark: rate passes through unchanged.
	if order.Lines[0].EffectiveRate != 4400 {
		t.Errorf("Expected effective rate 4400, got %g", order.Lines[0].EffectiveRate)
	}
}

func TestQuoteOrder_UsesCachedRate(t *testing.T) {
	f := newTestFixture()
	f.addCustomer("cust_1", 4400, models.CreditStatusOK)
	f.addSKU("sku_63", 63, 18)

	// Stale cached rate should win on the quote path.
	f.rateCache.Set(context.Background(), "cust_1", 5000)

	quote, err := f.service.QuoteOrder(context.Background(), &models.CreateOrderRequest{
		CustomerID: "cust_1",
		Lines: []models.OrderLineRequest{
			{SKUID: "sku_63", QuantityRolls: 1},
		},
	})
	if err != nil {
		t.Fatalf("QuoteOrder failed: %v", err)
	}

	if quote.BenchmarkRate44 != 5000 {
		t.Errorf("Expected cached benchmark rate 5000, got %g", quote.BenchmarkRate44)
	}

	// Order creation must ignore the cache and read the customer fresh.
	order, err := f.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		CustomerID: "cust_1",
		Lines: []models.OrderLineRequest{
			{SKUID: "sku_63", QuantityRolls: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.BenchmarkRate44 != 4400 {
		t.Errorf("Expected fresh benchmark rate 4400, got %g", order.BenchmarkRate44)
	}

	// The fresh read refreshes the cache.
	rate, found, _ := f.rateCache.Get(context.Background(), "cust_1")
	if !found || rate != 4400 {
		t.Errorf("Expected refreshed cached rate 4400, got %g (found=%v)", rate, found)
	}
}

func TestQuoteOrder_AllowsZeroQuantity(t *testing.T) {
	f := newTestFixture()
	f.addCustomer("cust_1", 4400, models.CreditStatusOK)
	f.addSKU("sku_63", 63, 18)

	quote, err := f.service.QuoteOrder(context.Background(), &models.CreateOrderRequest{
		CustomerID: "cust_1",
		Lines: []models.OrderLineRequest{
			{SKUID: "sku_63", QuantityRolls: 0},
		},
	})
	if err != nil {
		t.Fatalf("QuoteOrder failed: %v", err)
	}

	if quote.Lines[0].Pricing.DerivedRate != 6300 {
		t.Errorf("Expected derived rate 6300, got %g", quote.Lines[0].Pricing.DerivedRate)
	}
	if quote.Totals.GrandTotal != 0 {
		t.Errorf("Expected zero grand total for zero quantity, got %g", quote.Totals.GrandTotal)
	}
}

func TestUpdateOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		challan string
		wantErr bool
	}{
		{"pending to confirmed", models.OrderStatusPending, models.OrderStatusConfirmed, "", false},
		{"pending to dispatched", models.OrderStatusPending, models.OrderStatusDispatched, "CH-1", true},
		{"confirmed to dispatched", models.OrderStatusConfirmed, models.OrderStatusDispatched, "CH-1", false},
		{"confirmed to dispatched without challan", models.OrderStatusConfirmed, models.OrderStatusDispatched, "", true},
		{"dispatched to invoiced", models.OrderStatusDispatched, models.OrderStatusInvoiced, "", false},
		{"invoiced to closed", models.OrderStatusInvoiced, models.OrderStatusClosed, "", false},
		{"closed to pending", models.OrderStatusClosed, models.OrderStatusPending, "", true},
		{"dispatched to cancelled", models.OrderStatusDispatched, models.OrderStatusCancelled, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixture()
			order := &models.SalesOrder{CustomerID: "cust_1", Status: tt.from}
			f.orderRepo.Create(context.Background(), order)

			_, err := f.service.UpdateOrderStatus(context.Background(), order.ID, &models.UpdateOrderStatusRequest{
				Status:        tt.to,
				ChallanNumber: tt.challan,
			})

			if tt.wantErr && err == nil {
				t.Errorf("Expected error for %s -> %s", tt.from, tt.to)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error for %s -> %s: %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestUpdateOrderStatus_DispatchStampsChallan(t *testing.T) {
	f := newTestFixture()
	order := &models.SalesOrder{CustomerID: "cust_1", Status: models.OrderStatusConfirmed}
	f.orderRepo.Create(context.Background(), order)

	updated, err := f.service.UpdateOrderStatus(context.Background(), order.ID, &models.UpdateOrderStatusRequest{
		Status:        models.OrderStatusDispatched,
		ChallanNumber: "CH-2026-0042",
	})
	if err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}

	if updated.ChallanNumber != "CH-2026-0042" {
		t.Errorf("Expected challan CH-2026-0042, got %s", updated.ChallanNumber)
	}
	if updated.DispatchedAt == nil {
		t.Error("Expected dispatched_at to be stamped")
	}

	if len(f.eventPublisher.Events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(f.eventPublisher.Events))
	}
	if f.eventPublisher.Events[0].Type != events.EventTypeOrderStatusChanged {
		t.Errorf("Expected status change event, got %s", f.eventPublisher.Events[0].Type)
	}
}

func TestCancelOrder(t *testing.T) {
	f := newTestFixture()
	order := &models.SalesOrder{CustomerID: "cust_1", Status: models.OrderStatusPending}
	f.orderRepo.Create(context.Background(), order)

	cancelled, err := f.service.CancelOrder(context.Background(), order.ID, "customer withdrew")
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	if cancelled.Status != models.OrderStatusCancelled {
		t.Errorf("Expected status cancelled, got %s", cancelled.Status)
	}

	if len(f.eventPublisher.Events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(f.eventPublisher.Events))
	}
	if f.eventPublisher.Events[0].Type != events.EventTypeOrderCancelled {
		t.Errorf("Expected cancelled event, got %s", f.eventPublisher.Events[0].Type)
	}
}

func TestCancelOrder_DispatchedOrderRejected(t *testing.T) {
	f := newTestFixture()
	order := &models.SalesOrder{CustomerID: "cust_1", Status: models.OrderStatusDispatched}
	f.orderRepo.Create(context.Background(), order)

	_, err := f.service.CancelOrder(context.Background(), order.ID, "too late")
	if err == nil {
		t.Fatal("Expected error cancelling a dispatched order")
	}
}

func TestCancelOrder_RequiresReason(t *testing.T) {
	f := newTestFixture()
	order := &models.SalesOrder{CustomerID: "cust_1", Status: models.OrderStatusPending}
	f.orderRepo.Create(context.Background(), order)

	_, err := f.service.CancelOrder(context.Background(), order.ID, "")
	if err == nil {
		t.Fatal("Expected error for empty cancellation reason")
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newTestFixture()

	_, err := f.service.GetOrder(context.Background(), "so_missing")
	if err != errors.ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestValidateCreateOrderRequest(t *testing.T) {
	tests := []struct {
		name        string
		request     models.CreateOrderRequest
		shouldError bool
	}{
		{
			name: "valid request",
			request: models.CreateOrderRequest{
				CustomerID: "cust_1",
				Lines: []models.OrderLineRequest{
					{SKUID: "sku_63", QuantityRolls: 1},
				},
			},
			shouldError: false,
		},
		{
			name: "missing customer",
			request: models.CreateOrderRequest{
				Lines: []models.OrderLineRequest{
					{SKUID: "sku_63", QuantityRolls: 1},
				},
			},
			shouldError: true,
		},
		{
			name: "no lines",
			request: models.CreateOrderRequest{
				CustomerID: "cust_1",
			},
			shouldError: true,
		},
		{
			name: "zero quantity",
			request: models.CreateOrderRequest{
				CustomerID: "cust_1",
				Lines: []models.OrderLineRequest{
					{SKUID: "sku_63", QuantityRolls: 0},
				},
			},
			shouldError: true,
		},
		{
			name: "negative override rate",
			request: models.CreateOrderRequest{
				CustomerID: "cust_1",
				Lines: []models.OrderLineRequest{
					{SKUID: "sku_63", QuantityRolls: 1, OverrideRate: floatPtr(-10)},
				},
			},
			shouldError: true,
		},
		{
			name: "zero override rate allowed",
			request: models.CreateOrderRequest{
				CustomerID: "cust_1",
				Lines: []models.OrderLineRequest{
					{SKUID: "sku_63", QuantityRolls: 1, OverrideRate: floatPtr(0)},
				},
			},
			shouldError: false,
		},
		{
			name: "discount above maximum",
			request: models.CreateOrderRequest{
				CustomerID:      "cust_1",
				DiscountPercent: 150,
				Lines: []models.OrderLineRequest{
					{SKUID: "sku_63", QuantityRolls: 1},
				},
			},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateOrderRequest(&tt.request, 100)
			if tt.shouldError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

package service

import (
	"fmt"

	"github.com/paperkart/paperkart-sales-service/internal/errors"
	"github.com/paperkart/paperkart-sales-service/internal/models"
)

// ValidateCreateOrderRequest validates an order creation request. The
// pricing engine accepts whatever arithmetic it is given; business-range
// rules live here.
func ValidateCreateOrderRequest(req *models.CreateOrderRequest, maxDiscountPercent float64) error {
	if req.CustomerID == "" {
		return errors.NewValidationError("customer_id", "customer ID is required")
	}

	if len(req.Lines) == 0 {
		return errors.NewValidationError("lines", "at least one line is required")
	}

	if req.DiscountPercent < 0 || req.DiscountPercent > maxDiscountPercent {
		return errors.NewValidationError("discount_percent",
			fmt.Sprintf("discount must be between 0 and %g", maxDiscountPercent))
	}

	for i, line := range req.Lines {
		if err := validateOrderLine(&line, i); err != nil {
			return err
		}
	}

	return nil
}

// ValidateQuoteRequest validates a pricing preview request. Quoting is
// looser than creation: zero-quantity lines are allowed while an order is
// still being filled in.
func ValidateQuoteRequest(req *models.CreateOrderRequest, maxDiscountPercent float64) error {
	if req.CustomerID == "" {
		return errors.NewValidationError("customer_id", "customer ID is required")
	}

	if req.DiscountPercent < 0 || req.DiscountPercent > maxDiscountPercent {
		return errors.NewValidationError("discount_percent",
			fmt.Sprintf("discount must be between 0 and %g", maxDiscountPercent))
	}

	for i, line := range req.Lines {
		if line.SKUID == "" {
			return errors.NewValidationError("lines", fmt.Sprintf("SKU is required for line %d", i+1))
		}
		if line.QuantityRolls < 0 {
			return errors.NewValidationError("lines", fmt.Sprintf("quantity cannot be negative on line %d", i+1))
		}
		if err := validateLineRates(&line, i); err != nil {
			return err
		}
	}

	return nil
}

func validateOrderLine(line *models.OrderLineRequest, index int) error {
	if line.SKUID == "" {
		return errors.NewValidationError("lines", fmt.Sprintf("SKU is required for line %d", index+1))
	}

	if line.QuantityRolls <= 0 {
		return errors.NewValidationError("lines", fmt.Sprintf("quantity must be positive on line %d", index+1))
	}

	return validateLineRates(line, index)
}

func validateLineRates(line *models.OrderLineRequest, index int) error {
	// An override of zero is a deliberate free-of-charge line and passes;
	// only negative rates are rejected.
	if line.OverrideRate != nil && *line.OverrideRate < 0 {
		return errors.NewValidationError("lines", fmt.Sprintf("override rate cannot be negative on line %d", index+1))
	}

	if line.TaxRatePercent != nil && *line.TaxRatePercent < 0 {
		return errors.NewValidationError("lines", fmt.Sprintf("tax rate cannot be negative on line %d", index+1))
	}

	return nil
}

// ValidateUpdateOrderStatusRequest validates a status update request.
func ValidateUpdateOrderStatusRequest(req *models.UpdateOrderStatusRequest) error {
	if req.Status == "" {
		return errors.NewValidationError("status", "status is required")
	}

	switch req.Status {
	case models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusDispatched,
		models.OrderStatusInvoiced,
		models.OrderStatusClosed,
		models.OrderStatusCancelled:
		// Valid status
	default:
		return errors.NewValidationError("status", "invalid order status")
	}

	return nil
}

// ValidateOrderListFilter validates a list filter.
func ValidateOrderListFilter(filter *models.OrderListFilter) error {
	if filter.Limit < 0 {
		return errors.NewValidationError("limit", "limit cannot be negative")
	}

	if filter.Offset < 0 {
		return errors.NewValidationError("offset", "offset cannot be negative")
	}

	if filter.Limit > 100 {
		filter.Limit = 100
	}

	return nil
}

// ValidateCancellationReason validates an order cancellation reason.
func ValidateCancellationReason(reason string) error {
	if reason == "" {
		return errors.NewValidationError("reason", "cancellation reason is required")
	}

	if len(reason) > 500 {
		return errors.NewValidationError("reason", "cancellation reason too long (max 500 characters)")
	}

	return nil
}

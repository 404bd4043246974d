package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paperkart/paperkart-sales-service/internal/errors"
	"github.com/paperkart/paperkart-sales-service/internal/models"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger *zap.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logger.Named("order-repo"),
	}
}

const orderColumns = `
	id, customer_id, status, benchmark_rate_44, discount_percent, lines,
	subtotal, discount_amount, tax_amount, grand_total,
	challan_number, notes, created_at, updated_at, dispatched_at, invoiced_at
`

// Create persists a priced sales order.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.SalesOrder) error {
	r.logger.Debug("Creating sales order", zap.String("customer_id", order.CustomerID))

	if order.ID == "" {
		order.ID = GenerateOrderID()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	linesJSON, err := json.Marshal(order.Lines)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sales_orders (
			id, customer_id, status, benchmark_rate_44, discount_percent, lines,
			subtotal, discount_amount, tax_amount, grand_total,
			notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.CustomerID,
		order.Status,
		order.BenchmarkRate44,
		order.DiscountPercent,
		linesJSON,
		order.Subtotal,
		order.DiscountAmount,
		order.TaxAmount,
		order.GrandTotal,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create sales order",
			zap.String("customer_id", order.CustomerID),
			zap.Error(err),
		)
		return err
	}

	r.logger.Info("Sales order created",
		zap.String("order_id", order.ID),
		zap.String("customer_id", order.CustomerID),
		zap.Float64("grand_total", order.GrandTotal),
	)

	return nil
}

// GetByID retrieves a sales order by its identifier.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.SalesOrder, error) {
	r.logger.Debug("Fetching sales order", zap.String("order_id", id))

	query := `SELECT ` + orderColumns + ` FROM sales_orders WHERE id = $1 AND deleted_at IS NULL`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch sales order",
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	return order, nil
}

// UpdateStatus moves an order to a new lifecycle state, stamping dispatch
// and invoice times as they happen.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, req *models.UpdateOrderStatusRequest) (*models.SalesOrder, error) {
	r.logger.Debug("Updating order status",
		zap.String("order_id", id),
		zap.String("new_status", string(req.Status)),
	)

	now := time.Now()

	var dispatchedAt, invoicedAt *time.Time
	if req.Status == models.OrderStatusDispatched {
		dispatchedAt = &now
	} else if req.Status == models.OrderStatusInvoiced {
		invoicedAt = &now
	}

	var notes, challan *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	if req.ChallanNumber != "" {
		challan = &req.ChallanNumber
	}

	query := `
		UPDATE sales_orders
		SET status = $2, notes = COALESCE($3, notes), updated_at = $4,
		    challan_number = COALESCE($5, challan_number),
		    dispatched_at = COALESCE($6, dispatched_at),
		    invoiced_at = COALESCE($7, invoiced_at)
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRowContext(ctx, query, id, req.Status, notes, now, challan, dispatchedAt, invoicedAt).Scan(&returnedID)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to update order status",
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("new_status", string(req.Status)),
	)

	return r.GetByID(ctx, id)
}

// List retrieves orders matching the filter, newest first, with a total
// count for pagination.
func (r *PostgresOrderRepository) List(ctx context.Context, filter *models.OrderListFilter) ([]*models.SalesOrder, int, error) {
	r.logger.Debug("Listing sales orders",
		zap.String("customer_id", filter.CustomerID),
		zap.Int("limit", filter.Limit),
		zap.Int("offset", filter.Offset),
	)

	baseQuery := ` FROM sales_orders WHERE deleted_at IS NULL`
	args := make([]interface{}, 0)
	argIdx := 1

	if filter.CustomerID != "" {
		baseQuery += fmt.Sprintf(" AND customer_id = $%d", argIdx)
		args = append(args, filter.CustomerID)
		argIdx++
	}

	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int
	countQuery := "SELECT COUNT(*)" + baseQuery
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	selectQuery := `SELECT ` + orderColumns + baseQuery +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]*models.SalesOrder, 0)
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetByCustomerID retrieves a customer's orders.
func (r *PostgresOrderRepository) GetByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*models.SalesOrder, int, error) {
	filter := &models.OrderListFilter{
		CustomerID: customerID,
		Limit:      limit,
		Offset:     offset,
	}
	return r.List(ctx, filter)
}

// Delete soft-deletes an order.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	r.logger.Debug("Deleting sales order", zap.String("order_id", id))

	query := `
		UPDATE sales_orders
		SET deleted_at = $2, status = $3, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now(), models.OrderStatusCancelled)
	if err != nil {
		r.logger.Error("Failed to delete order",
			zap.String("order_id", id),
			zap.Error(err),
		)
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errors.ErrNotFound
	}

	r.logger.Info("Sales order deleted", zap.String("order_id", id))
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresOrderRepository) scanOrder(row rowScanner) (*models.SalesOrder, error) {
	var order models.SalesOrder
	var linesJSON []byte
	var challan, notes sql.NullString
	var dispatchedAt, invoicedAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.Status,
		&order.BenchmarkRate44,
		&order.DiscountPercent,
		&linesJSON,
		&order.Subtotal,
		&order.DiscountAmount,
		&order.TaxAmount,
		&order.GrandTotal,
		&challan,
		&notes,
		&order.CreatedAt,
		&order.UpdatedAt,
		&dispatchedAt,
		&invoicedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(linesJSON, &order.Lines); err != nil {
		return nil, err
	}

	if challan.Valid {
		order.ChallanNumber = challan.String
	}
	if notes.Valid {
		order.Notes = notes.String
	}
	if dispatchedAt.Valid {
		order.DispatchedAt = &dispatchedAt.Time
	}
	if invoicedAt.Valid {
		order.InvoicedAt = &invoicedAt.Time
	}

	return &order, nil
}

// GenerateOrderID returns a new order identifier.
func GenerateOrderID() string {
	return "so_" + uuid.NewString()
}

// GenerateLineID returns a new order line identifier.
func GenerateLineID() string {
	return "sol_" + uuid.NewString()
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/order"
)

const orderColumns = `id, user_id, items, shipping_address, subtotal, shipping_fee, tax, total, currency, status, created_at, updated_at`

// OrderStore implements order.Repository. Lines and the shipping address are
// stored as JSONB documents on the order row.
type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var items, address []byte
	if err := row.Scan(&o.ID, &o.UserID, &items, &address, &o.Subtotal, &o.ShippingFee,
		&o.Tax, &o.Total, &o.Currency, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	return &o, nil
}

func (s *OrderStore) Insert(ctx context.Context, o *order.Order) error {
	items := make([]order.Item, len(o.Items))
	for i, item := range o.Items {
		item.Product = nil
		items[i] = item
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return apperror.Store("encode items", err)
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return apperror.Store("encode shipping address", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.UserID, itemsJSON, addressJSON, o.Subtotal, o.ShippingFee,
		o.Tax, o.Total, o.Currency, o.Status, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("order already exists")
		}
		return apperror.Store("insert order", err)
	}
	return nil
}

func (s *OrderStore) FindByID(ctx context.Context, id string) (*order.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, apperror.Store("find order", err)
	}
	return o, nil
}

func (s *OrderStore) FindAll(ctx context.Context, filter order.Filter) ([]*order.Order, error) {
	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	query := "SELECT " + orderColumns + " FROM orders"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Store("query orders", err)
	}
	defer rows.Close()

	orders := make([]*order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, apperror.Store("scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("iterate orders", err)
	}
	return orders, nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status order.Status, at time.Time) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx,
		"UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1 RETURNING "+orderColumns,
		id, status, at,
	)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, apperror.Store("update order status", err)
	}
	return o, nil
}

func (s *OrderStore) DeleteByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return apperror.Store("delete order", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Store("delete order", err)
	}
	if n == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

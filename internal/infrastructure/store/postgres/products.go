package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/apperror"
	"github.com/example/storefront/internal/domain/product"
)

const productColumns = `id, name, description, price, original_price, category, stock_count, rating, reviews, image, created_at, updated_at`

var productOrder = map[product.SortField]string{
	product.SortByName:      "lower(name)",
	product.SortByPrice:     "price",
	product.SortByCreatedAt: "created_at",
	product.SortByRating:    "rating",
}

// ProductStore implements product.Repository
type ProductStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db, now: time.Now}
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	var original decimal.NullDecimal
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &original, &p.Category,
		&p.StockCount, &p.Rating, &p.Reviews, &p.Image, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if original.Valid {
		op := original.Decimal
		p.OriginalPrice = &op
	}
	p.Normalize()
	return &p, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// whereClause renders filter as SQL conditions with positional arguments.
func whereClause(filter product.Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Category != "" {
		add("lower(category) = lower($%d)", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern)
		n := len(args)
		conds = append(conds, fmt.Sprintf("(lower(name) LIKE $%d OR lower(description) LIKE $%d)", n, n))
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}
	if filter.InStockOnly {
		conds = append(conds, "stock_count > 0")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(s product.Sort) string {
	col, ok := productOrder[s.Field]
	if !ok {
		col = productOrder[product.SortByName]
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", col, dir)
}

func (s *ProductStore) FindAll(ctx context.Context, filter product.Filter, sort product.Sort) ([]*product.Product, error) {
	where, args := whereClause(filter)
	query := "SELECT " + productColumns + " FROM products" + where + orderClause(sort)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Store("query products", err)
	}
	defer rows.Close()

	products := make([]*product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.Store("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("iterate products", err)
	}
	return products, nil
}

func (s *ProductStore) FindByID(ctx context.Context, id string) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, apperror.Store("find product", err)
	}
	return p, nil
}

func (s *ProductStore) Insert(ctx context.Context, p *product.Product) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price, nullDecimal(p.OriginalPrice), p.Category,
		p.StockCount, p.Rating, p.Reviews, p.Image, p.CreatedAt, p.UpdatedAt,
	)
	created, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("product already exists")
		}
		return nil, apperror.Store("insert product", err)
	}
	return created, nil
}

func (s *ProductStore) UpdateByID(ctx context.Context, id string, patch product.Patch) (*product.Product, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		set("name", strings.TrimSpace(*patch.Name))
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.OriginalPrice != nil {
		set("original_price", *patch.OriginalPrice)
	}
	if patch.Category != nil {
		set("category", strings.TrimSpace(*patch.Category))
	}
	if patch.StockCount != nil {
		set("stock_count", *patch.StockCount)
	}
	if patch.Rating != nil {
		set("rating", *patch.Rating)
	}
	if patch.Reviews != nil {
		set("reviews", *patch.Reviews)
	}
	if patch.Image != nil {
		set("image", *patch.Image)
	}
	if len(sets) == 0 {
		return s.FindByID(ctx, id)
	}
	set("updated_at", s.now().UTC())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), productColumns)

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, apperror.Store("update product", err)
	}
	return p, nil
}

func (s *ProductStore) DeleteByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return apperror.Store("delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Store("delete product", err)
	}
	if n == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

// AdjustStock is a single conditional UPDATE; concurrent adjustments are
// serialized by the row lock only.
func (s *ProductStore) AdjustStock(ctx context.Context, id string, delta int) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE products SET stock_count = stock_count + $2, updated_at = $3
		 WHERE id = $1 AND stock_count + $2 >= 0
		 RETURNING `+productColumns,
		id, delta, s.now().UTC(),
	)
	p, err := scanProduct(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Store("adjust stock", err)
	}
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, product.ErrInsufficientStock
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (vendor_id, name, base_price, hourly_rate, stock_qty, is_active, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, p.VendorID, p.Name, p.BasePrice, moneyPtr(p.HourlyRate), p.StockQty, p.IsActive, time.Now()).Scan(&p.ID)
}

func (r *productRepository) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	p := &domain.Product{}
	var hourly sql.Null[domain.Money]
	query := `SELECT id, vendor_id, name, base_price, hourly_rate, stock_qty, is_active, created_on FROM products WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.VendorID, &p.Name, &p.BasePrice, &hourly, &p.StockQty, &p.IsActive, &p.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if hourly.Valid {
		p.HourlyRate = &hourly.V
	}
	return p, nil
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products SET name=$1, base_price=$2, hourly_rate=$3, stock_qty=$4, is_active=$5 WHERE id=$6`
	res, err := r.db.ExecContext(ctx, query, p.Name, p.BasePrice, moneyPtr(p.HourlyRate), p.StockQty, p.IsActive, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *productRepository) ListByVendor(ctx context.Context, vendorID int32, page, pageSize int32) ([]domain.Product, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM products WHERE vendor_id = $1`, vendorID).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, vendor_id, name, base_price, hourly_rate, stock_qty, is_active, created_on
	          FROM products WHERE vendor_id = $1 ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, vendorID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var hourly sql.Null[domain.Money]
		if err := rows.Scan(&p.ID, &p.VendorID, &p.Name, &p.BasePrice, &hourly, &p.StockQty, &p.IsActive, &p.CreatedOn); err != nil {
			return nil, 0, err
		}
		if hourly.Valid {
			p.HourlyRate = &hourly.V
		}
		products = append(products, p)
	}
	return products, count, rows.Err()
}

// moneyPtr converts an optional Money to a nullable driver value.
func moneyPtr(m *domain.Money) any {
	if m == nil {
		return nil
	}
	return *m
}

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/siamscrape/product-scraper/internal/models"
)

// ErrRecordNotFound is returned when a product key has no stored record.
var ErrRecordNotFound = errors.New("product record not found")

const recordsSchema = `
CREATE TABLE IF NOT EXISTS product_records (
	product_key      TEXT PRIMARY KEY,
	url              TEXT NOT NULL,
	retailer         TEXT NOT NULL,
	name             TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	brand            TEXT NOT NULL DEFAULT '',
	model            TEXT NOT NULL DEFAULT '',
	sku              TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL DEFAULT '',
	volume           TEXT NOT NULL DEFAULT '',
	dimensions       TEXT NOT NULL DEFAULT '',
	material         TEXT NOT NULL DEFAULT '',
	color            TEXT NOT NULL DEFAULT '',
	current_price    DOUBLE PRECISION,
	original_price   DOUBLE PRECISION,
	has_discount     BOOLEAN NOT NULL DEFAULT FALSE,
	discount_amount  DOUBLE PRECISION NOT NULL DEFAULT 0,
	discount_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
	images           TEXT[] NOT NULL DEFAULT '{}',
	scraped_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_product_records_retailer ON product_records (retailer);
`

// RecordRepository persists extracted product records keyed by their
// content digest.
type RecordRepository struct {
	db *DB
}

func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// EnsureSchema creates the records table when it does not exist yet.
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, recordsSchema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Save stores a record. The product key is a digest of the record's
// identity fields, so a conflict means the same content was already
// scraped and the insert is a no-op.
func (r *RecordRepository) Save(ctx context.Context, rec *models.ProductRecord) error {
	query := `
		INSERT INTO product_records (
			product_key, url, retailer, name, description, brand, model,
			sku, category, volume, dimensions, material, color,
			current_price, original_price, has_discount, discount_amount,
			discount_percent, images, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (product_key) DO NOTHING`

	_, err := r.db.Exec(ctx, query,
		rec.ProductKey, rec.URL, rec.Retailer, rec.Name, rec.Description,
		rec.Brand, rec.Model, rec.SKU, rec.Category, rec.Volume,
		rec.Dimensions, rec.Material, rec.Color,
		rec.CurrentPrice, rec.OriginalPrice, rec.HasDiscount,
		rec.DiscountAmount, rec.DiscountPercent, rec.Images, rec.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return nil
}

// GetByKey loads one record by product key.
func (r *RecordRepository) GetByKey(ctx context.Context, key string) (*models.ProductRecord, error) {
	query := selectColumns + ` WHERE product_key = $1`

	rec, err := scanRecord(r.db.QueryRow(ctx, query, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

// List returns records, newest first, optionally filtered by retailer.
func (r *RecordRepository) List(ctx context.Context, retailer string, limit, offset int) ([]*models.ProductRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := selectColumns
	args := []interface{}{}
	if retailer != "" {
		query += ` WHERE retailer = $1 ORDER BY scraped_at DESC LIMIT $2 OFFSET $3`
		args = append(args, retailer, limit, offset)
	} else {
		query += ` ORDER BY scraped_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*models.ProductRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// Count returns the number of stored records.
func (r *RecordRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM product_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

const selectColumns = `
	SELECT product_key, url, retailer, name, description, brand, model,
		sku, category, volume, dimensions, material, color,
		current_price, original_price, has_discount, discount_amount,
		discount_percent, images, scraped_at
	FROM product_records`

func scanRecord(row pgx.Row) (*models.ProductRecord, error) {
	var rec models.ProductRecord
	err := row.Scan(
		&rec.ProductKey, &rec.URL, &rec.Retailer, &rec.Name,
		&rec.Description, &rec.Brand, &rec.Model, &rec.SKU, &rec.Category,
		&rec.Volume, &rec.Dimensions, &rec.Material, &rec.Color,
		&rec.CurrentPrice, &rec.OriginalPrice, &rec.HasDiscount,
		&rec.DiscountAmount, &rec.DiscountPercent, &rec.Images, &rec.ScrapedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

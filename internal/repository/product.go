package repository

import (
	"context"

	"github.com/dorivaldermetrio-hash/crm-sub000/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type ProductRepository interface {
	GetActivatedProducts(ctx context.Context) ([]*models.Product, error)
	UpsertProduct(ctx context.Context, product *models.Product) error
}

type productRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewProductRepository(db *sqlx.DB, logger *zap.Logger) ProductRepository {
	return &productRepository{db: db, logger: logger}
}

func (r *productRepository) GetActivatedProducts(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	query := `SELECT id, name, activated FROM products WHERE activated = ? ORDER BY id`
	err := r.db.SelectContext(ctx, &products, r.db.Rebind(query), "yes")
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) UpsertProduct(ctx context.Context, product *models.Product) error {
	if product.Activated == "" {
		product.Activated = "yes"
	}
	query := `
		INSERT INTO products (name, activated) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET activated = excluded.activated
		RETURNING id
	`
	return r.db.QueryRowxContext(ctx, r.db.Rebind(query), product.Name, product.Activated).Scan(&product.ID)
}

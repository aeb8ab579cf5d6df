package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vendas-escolares/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateSKU      = errors.New("product with this sku already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

const (
	uniqueViolation  = "23505"
	skuConstraint    = "produtos_sku_key"
	productColumns   = "id, nome, descricao, preco, estoque, categoria, sku, created_at, updated_at"
	productSelectAll = "SELECT " + productColumns + " FROM produtos"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindBySKU(ctx context.Context, sku string) (*domain.Product, error)
	// FindByIDForUpdate loads and row-locks one product. It must run inside
	// a transaction for the lock to hold.
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	// FindByIDsForUpdate loads and row-locks the given products in id order.
	// It must run inside a transaction for the locks to hold.
	FindByIDsForUpdate(ctx context.Context, ids []int64) ([]*domain.Product, error)
	// DecrementStock subtracts quantity, failing with ErrInsufficientStock
	// rather than letting stock go negative.
	DecrementStock(ctx context.Context, id int64, quantity int) error
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.Category,
		&product.SKU,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func isDuplicateSKU(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == skuConstraint
}

// Create inserts a new product and fills in its generated id and timestamps
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO produtos (nome, descricao, preco, estoque, categoria, sku)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Category,
		product.SKU,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if isDuplicateSKU(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites every column of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE produtos
		SET nome = $2, descricao = $3, preco = $4, estoque = $5, categoria = $6, sku = $7
		WHERE id = $1
		RETURNING updated_at
	`

	err := conn(ctx, r.db).QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Category,
		product.SKU,
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if isDuplicateSKU(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product permanently
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM produtos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := scanProduct(conn(ctx, r.db).QueryRowContext(ctx, productSelectAll+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	product, err := scanProduct(conn(ctx, r.db).QueryRowContext(ctx, productSelectAll+" WHERE sku = $1", sku))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by SKU: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := scanProduct(conn(ctx, r.db).QueryRowContext(ctx, productSelectAll+" WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindByIDsForUpdate(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	query := productSelectAll + " WHERE id = ANY($1) ORDER BY id FOR UPDATE"

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	return collectProducts(rows)
}

func (r *productRepository) DecrementStock(ctx context.Context, id int64, quantity int) error {
	query := `
		UPDATE produtos
		SET estoque = estoque - $2
		WHERE id = $1 AND estoque >= $2
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

// List retrieves products with optional search, category filtering and sorting
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	conditions := []string{}
	args := []any{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, likePattern(search))
		conditions = append(conditions, fmt.Sprintf("(nome ILIKE $%d OR descricao ILIKE $%d)", len(args), len(args)))
	}

	if category := strings.TrimSpace(filter.Category); category != "" {
		args = append(args, category)
		conditions = append(conditions, fmt.Sprintf("categoria = $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// orderBy only ever renders whitelisted columns
	query := fmt.Sprintf("%s %s ORDER BY %s", productSelectAll, whereClause, filter.Sort.orderBy())

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]*domain.Product, error) {
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

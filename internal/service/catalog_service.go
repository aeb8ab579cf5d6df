package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"vendas-escolares/internal/apperror"
	"vendas-escolares/internal/domain"
	"vendas-escolares/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxCategoryLength = 60
	maxSKULength      = 64
)

// maxPrice is the largest value NUMERIC(10,2) can hold
var maxPrice = decimal.RequireFromString("99999999.99")

const msgProductNotFound = "produto não encontrado"

// ProductQuery carries the raw list parameters of the catalog endpoint
type ProductQuery struct {
	Search   string
	Category string
	Sort     string // "campo:direcao"; anything unrecognized sorts by name
}

// CatalogService defines the interface for catalog business logic
type CatalogService interface {
	List(ctx context.Context, query ProductQuery) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type catalogService struct {
	tx       repository.Transactor
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(tx repository.Transactor, products repository.ProductRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		tx:       tx,
		products: products,
		logger:   logger,
	}
}

func (s *catalogService) List(ctx context.Context, query ProductQuery) ([]*domain.Product, error) {
	products, err := s.products.List(ctx, repository.ProductFilter{
		Search:   query.Search,
		Category: query.Category,
		Sort:     repository.ParseSort(query.Sort),
	})
	if err != nil {
		return nil, s.internal("Failed to list products", err)
	}
	return products, nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, apperror.NotFound(msgProductNotFound, err)
		}
		return nil, s.internal("Failed to find product", err)
	}
	return product, nil
}

// Create validates and stores a new product
func (s *catalogService) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	normalizeProduct(&product)

	if err := validateProduct(&product); err != nil {
		return nil, err
	}

	// Check SKU uniqueness up front; the unique index still guards races
	if err := s.ensureSKUAvailable(ctx, product.SKU, 0); err != nil {
		return nil, err
	}

	product.ID = 0
	if err := s.products.Create(ctx, &product); err != nil {
		if errors.Is(err, repository.ErrDuplicateSKU) {
			return nil, duplicateSKU(*product.SKU, err)
		}
		return nil, s.internal("Failed to create product", err)
	}

	s.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.String("name", product.Name))
	return &product, nil
}

// Update applies only the provided fields, then re-validates the whole product.
// The row stays locked from read to write so a concurrent checkout's stock
// decrement is never overwritten.
func (s *catalogService) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	var product *domain.Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.products.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		previousSKU := product.SKU
		patch.Apply(product)
		normalizeProduct(product)

		if err := validateProduct(product); err != nil {
			return err
		}

		if product.SKU != nil && (previousSKU == nil || *previousSKU != *product.SKU) {
			if err := s.ensureSKUAvailable(ctx, product.SKU, id); err != nil {
				return err
			}
		}

		return s.products.Update(ctx, product)
	})
	if err != nil {
		var appErr *apperror.Error
		switch {
		case errors.As(err, &appErr):
			return nil, appErr
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, apperror.NotFound(msgProductNotFound, err)
		case errors.Is(err, repository.ErrDuplicateSKU):
			return nil, duplicateSKU(*product.SKU, err)
		}
		return nil, s.internal("Failed to update product", err)
	}

	return product, nil
}

func (s *catalogService) Delete(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return apperror.NotFound(msgProductNotFound, err)
		}
		return s.internal("Failed to delete product", err)
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

// ensureSKUAvailable fails with a conflict when another product owns sku
func (s *catalogService) ensureSKUAvailable(ctx context.Context, sku *string, ownerID int64) error {
	if sku == nil {
		return nil
	}

	existing, err := s.products.FindBySKU(ctx, *sku)
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return nil
	case err != nil:
		return s.internal("Failed to check SKU", err)
	case existing.ID != ownerID:
		return duplicateSKU(*sku, repository.ErrDuplicateSKU)
	}
	return nil
}

func (s *catalogService) internal(msg string, err error) error {
	s.logger.Error(msg, zap.Error(err))
	return apperror.Internal(err)
}

func duplicateSKU(sku string, err error) error {
	return apperror.Conflict(fmt.Sprintf("já existe um produto com o SKU %s", sku), err)
}

// normalizeProduct trims text fields; blank optional fields become NULL
func normalizeProduct(p *domain.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Description = trimOptional(p.Description)
	p.SKU = trimOptional(p.SKU)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateProduct(p *domain.Product) error {
	if n := utf8.RuneCountInString(p.Name); n < domain.ProductNameMinLen || n > domain.ProductNameMaxLen {
		return apperror.Validationf("nome deve ter entre %d e %d caracteres", domain.ProductNameMinLen, domain.ProductNameMaxLen)
	}
	if !p.Price.IsPositive() {
		return apperror.Validation("preço deve ser maior que zero")
	}
	if !p.Price.Equal(p.Price.Round(2)) {
		return apperror.Validation("preço deve ter no máximo duas casas decimais")
	}
	if p.Price.GreaterThan(maxPrice) {
		return apperror.Validation("preço excede o valor máximo permitido")
	}
	if p.Stock < 0 {
		return apperror.Validation("estoque não pode ser negativo")
	}
	if p.Category == "" {
		return apperror.Validation("categoria é obrigatória")
	}
	if utf8.RuneCountInString(p.Category) > maxCategoryLength {
		return apperror.Validationf("categoria deve ter no máximo %d caracteres", maxCategoryLength)
	}
	if p.SKU != nil && utf8.RuneCountInString(*p.SKU) > maxSKULength {
		return apperror.Validationf("SKU deve ter no máximo %d caracteres", maxSKULength)
	}
	return nil
}

package service

import (
	"context"
	"fmt"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
	"rentmarket-backend/internal/security"
)

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) GetProduct(ctx context.Context, productID int32) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, productID)
}

func (s *productService) CreateProduct(ctx context.Context, caller security.Caller, product *domain.Product) (*domain.Product, error) {
	if caller.Role == security.RoleVendor && caller.VendorID != nil {
		product.VendorID = *caller.VendorID
	}
	if err := authorize(caller, ActionCreate, Resource{VendorID: product.VendorID}); err != nil {
		return nil, err
	}
	if product.Name == "" {
		return nil, fmt.Errorf("product name is required: %w", domain.ErrInvalidRange)
	}
	if product.BasePrice.IsNegative() || product.StockQty < 0 {
		return nil, fmt.Errorf("price and stock must be non-negative: %w", domain.ErrInvalidRange)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	logger.Info("Product created", "product_id", product.ID, "vendor_id", product.VendorID, "name", product.Name)
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, caller security.Caller, product *domain.Product) (*domain.Product, error) {
	existing, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, ActionTransition, Resource{VendorID: existing.VendorID}); err != nil {
		return nil, err
	}
	if product.BasePrice.IsNegative() || product.StockQty < 0 {
		return nil, fmt.Errorf("price and stock must be non-negative: %w", domain.ErrInvalidRange)
	}

	product.VendorID = existing.VendorID
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, product.ID)
}

func (s *productService) ListVendorProducts(ctx context.Context, caller security.Caller, vendorID int32, page, pageSize int32) ([]domain.Product, int32, error) {
	if err := authorize(caller, ActionView, Resource{VendorID: vendorID}); err != nil {
		return nil, 0, err
	}
	return s.productRepo.ListByVendor(ctx, vendorID, page, pageSize)
}

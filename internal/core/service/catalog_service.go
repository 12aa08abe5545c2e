package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marketly/storefront/internal/core/domain"
	"github.com/marketly/storefront/internal/core/ports"
	"github.com/marketly/storefront/internal/pkg/metrics"
)

// CatalogBackend is the slice of the contract the catalog needs.
type CatalogBackend interface {
	ports.CatalogAPI
	ports.StorageAPI
}

// Upload is one file to store.
type Upload struct {
	Data        []byte
	ContentType string
}

// CatalogService guards product writes: only sellers write, and only to
// their own products.
type CatalogService struct {
	backend CatalogBackend
	log     zerolog.Logger
}

func NewCatalogService(backend CatalogBackend, log zerolog.Logger) *CatalogService {
	return &CatalogService{backend: backend, log: log}
}

func (s *CatalogService) List(ctx context.Context, filter domain.ProductFilter) []domain.Product {
	return s.backend.ListProducts(ctx, filter)
}

// Get returns the product or a NotFoundError.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	p := s.backend.GetProduct(ctx, id)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return p, nil
}

// MyProducts lists the seller's own catalog.
func (s *CatalogService) MyProducts(ctx context.Context, seller *domain.User) ([]domain.Product, error) {
	if err := requireSeller(seller); err != nil {
		return nil, err
	}
	return s.backend.ListMyProducts(ctx, seller.ID), nil
}

// Create stores a new product owned by seller. Any seller id in the input is
// replaced with the caller's.
func (s *CatalogService) Create(ctx context.Context, seller *domain.User, in domain.NewProduct) (*domain.Product, error) {
	if err := requireSeller(seller); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	in.SellerID = seller.ID
	if err := checkStruct(in); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	if err := checkPrice(in.Price); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	p, err := s.backend.CreateProduct(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	metrics.ProductWritesTotal.WithLabelValues("create").Inc()
	s.log.Info().Str("product_id", p.ID).Str("seller_id", seller.ID).Msg("product created")
	return p, nil
}

// Update applies patch to a product the seller owns.
func (s *CatalogService) Update(ctx context.Context, seller *domain.User, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if _, err := s.owned(ctx, seller, id); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if err := validatePatch(patch); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	p, err := s.backend.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	metrics.ProductWritesTotal.WithLabelValues("update").Inc()
	s.log.Info().Str("product_id", id).Str("seller_id", seller.ID).Msg("product updated")
	return p, nil
}

// Delete removes a product the seller owns.
func (s *CatalogService) Delete(ctx context.Context, seller *domain.User, id string) error {
	if _, err := s.owned(ctx, seller, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if err := s.backend.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	metrics.ProductWritesTotal.WithLabelValues("delete").Inc()
	s.log.Info().Str("product_id", id).Str("seller_id", seller.ID).Msg("product deleted")
	return nil
}

// UploadImages stores files in order and returns their references. Files
// already stored stay stored when a later one fails.
func (s *CatalogService) UploadImages(ctx context.Context, seller *domain.User, files []Upload) ([]string, error) {
	if err := requireSeller(seller); err != nil {
		return nil, fmt.Errorf("upload images: %w", err)
	}
	refs := make([]string, 0, len(files))
	for i, f := range files {
		if len(f.Data) == 0 {
			return refs, fmt.Errorf("upload images: %w", &domain.ValidationError{Field: "file", Reason: fmt.Sprintf("file %d is empty", i)})
		}
		ref, err := s.backend.UploadFile(ctx, f.Data, f.ContentType)
		if err != nil {
			return refs, fmt.Errorf("upload images: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// DeleteImage removes a stored file.
func (s *CatalogService) DeleteImage(ctx context.Context, seller *domain.User, ref string) error {
	if err := requireSeller(seller); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if err := s.backend.DeleteFile(ctx, ref); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// PreviewURL resolves a file reference for display.
func (s *CatalogService) PreviewURL(ref string) string { return s.backend.PreviewURL(ref) }

func (s *CatalogService) owned(ctx context.Context, seller *domain.User, id string) (*domain.Product, error) {
	if err := requireSeller(seller); err != nil {
		return nil, err
	}
	p := s.backend.GetProduct(ctx, id)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if p.SellerID != seller.ID {
		return nil, domain.ErrNotOwner
	}
	return p, nil
}

func requireSeller(u *domain.User) error {
	if u == nil {
		return domain.ErrNoSession
	}
	if u.Role != domain.RoleSeller {
		return domain.ErrRoleRequired
	}
	return nil
}

func validatePatch(p domain.ProductPatch) error {
	if p.Name != nil && *p.Name == "" {
		return &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if p.Category != nil && *p.Category == "" {
		return &domain.ValidationError{Field: "category", Reason: "is required"}
	}
	if p.Price != nil {
		if err := checkPrice(*p.Price); err != nil {
			return err
		}
	}
	if p.Stock != nil && *p.Stock < 0 {
		return &domain.ValidationError{Field: "stock", Reason: "must be at least 0"}
	}
	return nil
}

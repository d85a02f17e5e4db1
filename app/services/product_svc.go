package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/models"
	"github.com/threadline/storefront/app/repositories"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryInUse    = errors.New("move or delete the category's products first")
)

type ProductInput struct {
	Title         string           `json:"title" validate:"required,min=2,max=255"`
	Description   string           `json:"description" validate:"max=5000"`
	Brand         string           `json:"brand" validate:"max=100"`
	Size          string           `json:"size" validate:"max=50"`
	Color         string           `json:"color" validate:"max=50"`
	CategoryID    string           `json:"category_id" validate:"omitempty,uuid"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Stock         int              `json:"stock" validate:"min=0"`
	Images        []string         `json:"images" validate:"max=4,dive,required"`
}

type CategoryInput struct {
	Name     string `json:"category_name" validate:"required,min=2,max=100"`
	ImageURL string `json:"image_url" validate:"omitempty,max=2048"`
}

type ProductDetail struct {
	Product models.Product `json:"product"`
	ProductReviews
}

type ProductService struct {
	productRepo  repositories.ProductRepositoryImpl
	categoryRepo repositories.CategoryRepositoryImpl
	reviewRepo   repositories.ReviewRepository
	validator    *validator.Validate
}

func NewProductService(
	productRepo repositories.ProductRepositoryImpl,
	categoryRepo repositories.CategoryRepositoryImpl,
	reviewRepo repositories.ReviewRepository,
	validate *validator.Validate,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		reviewRepo:   reviewRepo,
		validator:    validate,
	}
}

func (s *ProductService) ListProducts(ctx context.Context, query string) ([]models.Product, error) {
	if query = strings.TrimSpace(query); query != "" {
		return s.productRepo.SearchProducts(ctx, query)
	}
	return s.productRepo.GetProducts(ctx)
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetProductDetail returns the product with its reviews and their average.
func (s *ProductService) GetProductDetail(ctx context.Context, id string) (*ProductDetail, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.GetByProductID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &ProductDetail{
		Product: *product,
		ProductReviews: ProductReviews{
			Reviews:       reviews,
			AverageRating: models.AverageRating(reviews),
			Count:         len(reviews),
		},
	}, nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

func (s *ProductService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	categorySlug := slug.Make(in.Name)
	existing, err := s.categoryRepo.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCategoryExists
	}

	category := &models.Category{Name: in.Name, Slug: categorySlug, ImageURL: in.ImageURL}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes an empty category. Products are never orphaned by a delete.
func (s *ProductService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCategoryNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repositories.ErrCategoryInUse):
			return fmt.Errorf("%w: %v", ErrCategoryInUse, err)
		}
		return err
	}
	log.Printf("ProductService.DeleteCategory: category %s deleted", id)
	return nil
}

func (s *ProductService) applyInput(ctx context.Context, product *models.Product, in ProductInput) error {
	if err := s.validator.Struct(in); err != nil {
		return err
	}
	if in.Price.IsNegative() || (in.DiscountPrice != nil && in.DiscountPrice.IsNegative()) {
		return ErrInvalidPrice
	}

	product.Title = strings.TrimSpace(in.Title)
	product.Description = in.Description
	product.Brand = in.Brand
	product.Size = in.Size
	product.Color = in.Color
	product.Price = in.Price
	product.Stock = in.Stock
	product.Images = in.Images
	product.DiscountPrice = decimal.NullDecimal{}
	if in.DiscountPrice != nil {
		product.DiscountPrice = decimal.NewNullDecimal(*in.DiscountPrice)
	}

	product.CategoryID = nil
	product.Category = models.Uncategorized.Name
	if in.CategoryID != "" {
		category, err := s.categoryRepo.GetByID(ctx, in.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrCategoryNotFound
		}
		id := category.ID
		product.CategoryID = &id
		product.Category = category.Name
	}
	return nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{}
	if err := s.applyInput(ctx, product, in); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	log.Printf("ProductService.CreateProduct: product %s (%s) created", product.ID, product.Title)
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyInput(ctx, product, in); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	log.Printf("ProductService.DeleteProduct: product %s deleted", id)
	return nil
}

// UpdateStock is the inventory screen's quick edit.
func (s *ProductService) UpdateStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}
	if err := s.productRepo.UpdateStock(ctx, id, stock); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

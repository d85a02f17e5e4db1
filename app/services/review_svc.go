package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/models"
	"github.com/threadline/storefront/app/repositories"
)

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=1,max=2000"`
}

type ProductReviews struct {
	Reviews       []models.Review `json:"reviews"`
	AverageRating decimal.Decimal `json:"average_rating"`
	Count         int             `json:"count"`
}

type ReviewService struct {
	reviewRepo  repositories.ReviewRepository
	productRepo repositories.ProductRepositoryImpl
	validator   *validator.Validate
}

func NewReviewService(reviewRepo repositories.ReviewRepository, productRepo repositories.ProductRepositoryImpl, validate *validator.Validate) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, productRepo: productRepo, validator: validate}
}

func (s *ReviewService) AddReview(ctx context.Context, productID, userID string, in ReviewInput) (*models.Review, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}
	if product == nil {
		return nil, ErrProductUnavailable
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) GetReviews(ctx context.Context, productID string) (*ProductReviews, error) {
	reviews, err := s.reviewRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &ProductReviews{
		Reviews:       reviews,
		AverageRating: models.AverageRating(reviews),
		Count:         len(reviews),
	}, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/models"
	"github.com/threadline/storefront/app/repositories"
)

type SalesReport struct {
	Period     string          `json:"period"`
	Orders     []models.Order  `json:"orders"`
	OrderCount int             `json:"order_count"`
	Total      decimal.Decimal `json:"total"`
}

// ReportService loads history from the repositories and runs the analytics folds over it.
type ReportService struct {
	orderRepo    repositories.OrderRepository
	productRepo  repositories.ProductRepositoryImpl
	categoryRepo repositories.CategoryRepositoryImpl
	userRepo     repositories.UserRepositoryImpl
	location     *time.Location
	now          func() time.Time
}

func NewReportService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepositoryImpl,
	categoryRepo repositories.CategoryRepositoryImpl,
	userRepo repositories.UserRepositoryImpl,
	location *time.Location,
) *ReportService {
	if location == nil {
		location = time.Local
	}
	return &ReportService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		location:     location,
		now:          time.Now,
	}
}

// ParseFilter reads a filter in the service's time zone.
func (s *ReportService) ParseFilter(kind, month, start, end string) (ReportFilter, error) {
	return ParseReportFilter(kind, month, start, end, s.now(), s.location)
}

func (s *ReportService) Dashboard(ctx context.Context, f ReportFilter) (*AnalyticsReport, error) {
	orders, err := s.orderRepo.GetAllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	products, err := s.productRepo.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	users, err := s.userRepo.FindByIDs(ctx, distinctUserIDs(orders))
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}

	report := BuildAnalytics(orders, products, categories, users, s.withDefaults(f))
	return &report, nil
}

// SalesReport lists the orders of a period with their total, newest first.
func (s *ReportService) SalesReport(ctx context.Context, f ReportFilter) (*SalesReport, error) {
	orders, err := s.orderRepo.GetAllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	f = s.withDefaults(f)
	filtered := FilterOrders(orders, f)
	total := decimal.Zero
	for _, o := range filtered {
		total = total.Add(o.TotalAmount)
	}
	return &SalesReport{
		Period:     f.Label(),
		Orders:     filtered,
		OrderCount: len(filtered),
		Total:      total,
	}, nil
}

func (s *ReportService) withDefaults(f ReportFilter) ReportFilter {
	if f.Location == nil {
		f.Location = s.location
	}
	if f.Now.IsZero() {
		f.Now = s.now()
	}
	return f
}

func distinctUserIDs(orders []models.Order) []string {
	seen := make(map[string]struct{}, len(orders))
	ids := make([]string, 0)
	for _, o := range orders {
		if _, ok := seen[o.UserID]; ok {
			continue
		}
		seen[o.UserID] = struct{}{}
		ids = append(ids, o.UserID)
	}
	return ids
}

package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/models"
	"github.com/threadline/storefront/app/repositories"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]models.Product
	err      error
}

func newFakeProductRepo(products ...models.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[string]models.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) GetProducts(ctx context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, r.err
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeProductRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []models.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) SearchProducts(ctx context.Context, keyword string) ([]models.Product, error) {
	all, _ := r.GetProducts(ctx)
	var out []models.Product
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(keyword)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

func (r *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *models.Product) error {
	return r.Create(ctx, product)
}

func (r *fakeProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repositories.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repositories.ErrProductNotFound
	}
	p.Stock = stock
	r.products[id] = p
	return nil
}

func (r *fakeProductRepo) stock(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

// fakeOrderRepo mirrors the gorm repository: stock is decremented with the insert, and the
// payment id is unique.
type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    []models.Order
	products  *fakeProductRepo
	createErr error
	clock     func() time.Time
	// staleLookups makes that many FindByPaymentID calls miss, as a concurrent insert would.
	staleLookups int
}

func newFakeOrderRepo(products *fakeProductRepo) *fakeOrderRepo {
	return &fakeOrderRepo{products: products, clock: time.Now}
}

func (r *fakeOrderRepo) CreateWithStock(ctx context.Context, order *models.Order, lines []repositories.StockLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, o := range r.orders {
		if o.PaymentID == order.PaymentID {
			return repositories.ErrDuplicatePayment
		}
	}
	if r.products != nil {
		r.products.mu.Lock()
		for _, l := range lines {
			if r.products.products[l.ProductID].Stock < l.Quantity {
				r.products.mu.Unlock()
				return repositories.ErrStockConflict
			}
		}
		for _, l := range lines {
			p := r.products.products[l.ProductID]
			p.Stock -= l.Quantity
			r.products.products[l.ProductID] = p
		}
		r.products.mu.Unlock()
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.clock()
	}
	r.orders = append(r.orders, *order)
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			found := o
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleLookups > 0 {
		r.staleLookups--
		return nil, nil
	}
	for _, o := range r.orders {
		if o.PaymentID == paymentID {
			found := o
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == orderID {
			r.orders[i].OrderStatus = status
			return nil
		}
	}
	return repositories.ErrOrderNotFound
}

func (r *fakeOrderRepo) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Order(nil), r.orders...), nil
}

func (r *fakeOrderRepo) FindByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type fakeReconRepo struct {
	mu   sync.Mutex
	recs []models.PaymentReconciliation
}

func (r *fakeReconRepo) Record(ctx context.Context, rec *models.PaymentReconciliation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.recs {
		if r.recs[i].PaymentID == rec.PaymentID {
			r.recs[i].Reason = rec.Reason
			return nil
		}
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	r.recs = append(r.recs, *rec)
	return nil
}

func (r *fakeReconRepo) ListUnresolved(ctx context.Context) ([]models.PaymentReconciliation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PaymentReconciliation
	for _, rec := range r.recs {
		if !rec.Resolved() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeReconRepo) MarkResolved(ctx context.Context, id, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.recs {
		if r.recs[i].ID == id {
			r.recs[i].ResolvedOrderID = strPtr(orderID)
			r.recs[i].Attempts++
		}
	}
	return nil
}

func (r *fakeReconRepo) RecordAttempt(ctx context.Context, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.recs {
		if r.recs[i].ID == id {
			r.recs[i].Reason = reason
			r.recs[i].Attempts++
		}
	}
	return nil
}

type fakeGateway struct {
	confirmation *PaymentConfirmation
	confirmErr   error
	initiated    []PaymentRequest
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) ChargeAmount(total decimal.Decimal) decimal.Decimal { return total.Round(2) }

func (g *fakeGateway) Initiate(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	g.initiated = append(g.initiated, req)
	return &PaymentSession{Provider: g.Name(), Reference: req.Reference, Token: "tok-" + req.Reference}, nil
}

func (g *fakeGateway) Confirm(ctx context.Context, reference string) (*PaymentConfirmation, error) {
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	if g.confirmation == nil {
		return nil, errors.New("no confirmation configured")
	}
	c := *g.confirmation
	c.Reference = reference
	return &c, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	orders []models.Order
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, order models.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order)
	return nil
}

type fakeCategoryRepo struct {
	categories []models.Category
	products   *fakeProductRepo
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	r.categories = append(r.categories, *category)
	return nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	for _, c := range r.categories {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) GetAll(ctx context.Context) ([]models.Category, error) {
	return append([]models.Category(nil), r.categories...), nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id string) error {
	if r.products != nil {
		all, _ := r.products.GetProducts(ctx)
		for _, p := range all {
			if p.CategoryRef() == id {
				return repositories.ErrCategoryInUse
			}
		}
	}
	for i := range r.categories {
		if r.categories[i].ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return repositories.ErrCategoryNotFound
}

type fakeUserRepo struct {
	users []models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, _ := r.FindByID(ctx, id); u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, userID, name, phone, avatarURL string) error {
	for i := range r.users {
		if r.users[i].ID == userID {
			r.users[i].Name = name
			r.users[i].Phone = phone
			if avatarURL != "" {
				r.users[i].AvatarURL = avatarURL
			}
		}
	}
	return nil
}

type fakeReviewRepo struct {
	reviews []models.Review
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *fakeReviewRepo) GetByProductID(ctx context.Context, productID string) ([]models.Review, error) {
	var out []models.Review
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].ProductID == productID {
			out = append(out, r.reviews[i])
		}
	}
	return out, nil
}

type fakeSaleRepo struct {
	sales []models.StoreSale
}

func (r *fakeSaleRepo) Create(ctx context.Context, sale *models.StoreSale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	r.sales = append(r.sales, *sale)
	return nil
}

func (r *fakeSaleRepo) GetAll(ctx context.Context) ([]models.StoreSale, error) {
	return r.sales, nil
}

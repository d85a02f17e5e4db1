package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/models"
	"github.com/threadline/storefront/app/utils/calc"
	"github.com/threadline/storefront/app/utils/format"
)

// TrendBucketLimit is how many days the all-time revenue trend shows.
const TrendBucketLimit = 14

const (
	UnknownUserName  = "Unknown User"
	UnknownUserPhone = "N/A"
)

var ErrInvalidReportFilter = errors.New("invalid report filter")

type ReportFilterKind string

const (
	FilterAll   ReportFilterKind = "all"
	FilterMonth ReportFilterKind = "month"
	FilterToday ReportFilterKind = "today"
	FilterRange ReportFilterKind = "range"
)

// ReportFilter selects the orders every report runs over. Month is a "January 2006" label;
// Start and End are inclusive calendar days.
type ReportFilter struct {
	Kind     ReportFilterKind
	Month    string
	Start    time.Time
	End      time.Time
	Now      time.Time
	Location *time.Location
}

func (f ReportFilter) loc() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

// ParseReportFilter builds a filter from query values. An empty kind or month "all" means all time;
// a bare month label implies the month kind.
func ParseReportFilter(kind, month, start, end string, now time.Time, loc *time.Location) (ReportFilter, error) {
	f := ReportFilter{Now: now, Location: loc}
	month = strings.TrimSpace(month)

	switch ReportFilterKind(strings.ToLower(strings.TrimSpace(kind))) {
	case "":
		if month == "" || strings.EqualFold(month, string(FilterAll)) {
			f.Kind = FilterAll
			return f, nil
		}
		fallthrough
	case FilterMonth:
		if month == "" {
			month = format.MonthLabel(now.In(f.loc()))
		}
		parsed, err := format.ParseMonth(month, f.loc())
		if err != nil {
			return ReportFilter{}, fmt.Errorf("%w: month %q", ErrInvalidReportFilter, month)
		}
		f.Kind = FilterMonth
		f.Month = format.MonthLabel(parsed)
	case FilterAll:
		f.Kind = FilterAll
	case FilterToday:
		f.Kind = FilterToday
	case FilterRange:
		startDay, err := format.ParseDay(start, f.loc())
		if err != nil {
			return ReportFilter{}, fmt.Errorf("%w: start %q", ErrInvalidReportFilter, start)
		}
		endDay, err := format.ParseDay(end, f.loc())
		if err != nil {
			return ReportFilter{}, fmt.Errorf("%w: end %q", ErrInvalidReportFilter, end)
		}
		if endDay.Before(startDay) {
			return ReportFilter{}, fmt.Errorf("%w: end before start", ErrInvalidReportFilter)
		}
		f.Kind = FilterRange
		f.Start, f.End = startDay, endDay
	default:
		return ReportFilter{}, fmt.Errorf("%w: kind %q", ErrInvalidReportFilter, kind)
	}
	return f, nil
}

func (f ReportFilter) Label() string {
	switch f.Kind {
	case FilterMonth:
		return f.Month
	case FilterToday:
		return format.DayLabel(f.Now.In(f.loc()))
	case FilterRange:
		return format.DayLabel(f.Start) + " - " + format.DayLabel(f.End)
	default:
		return "All time"
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Matches reports whether an order placed at t falls in the filter. An order without a valid
// timestamp only matches the all-time filter.
func (f ReportFilter) Matches(t time.Time) bool {
	if f.Kind == FilterAll || f.Kind == "" {
		return true
	}
	if t.IsZero() {
		return false
	}
	loc := f.loc()
	switch f.Kind {
	case FilterMonth:
		return format.MonthLabel(t.In(loc)) == f.Month
	case FilterToday:
		return startOfDay(t, loc).Equal(startOfDay(f.Now, loc))
	case FilterRange:
		from := startOfDay(f.Start, loc)
		until := startOfDay(f.End, loc).AddDate(0, 0, 1)
		return !t.Before(from) && t.Before(until)
	}
	return false
}

// FilterOrders is the first step of every report, so all reports share one order set.
func FilterOrders(orders []models.Order, f ReportFilter) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o.CreatedAt) {
			out = append(out, o)
		}
	}
	return out
}

type RevenuePoint struct {
	Date    string          `json:"date"`
	Day     time.Time       `json:"-"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// RevenueTrend buckets filtered orders by local calendar day, oldest first. Orders without a
// valid timestamp are left out. For the all-time filter only the latest TrendBucketLimit days remain.
func RevenueTrend(orders []models.Order, f ReportFilter) []RevenuePoint {
	loc := f.loc()
	buckets := make(map[time.Time]*RevenuePoint)
	for _, o := range orders {
		if o.CreatedAt.IsZero() {
			continue
		}
		day := startOfDay(o.CreatedAt, loc)
		point, ok := buckets[day]
		if !ok {
			point = &RevenuePoint{Date: format.DayLabel(day), Day: day, Revenue: decimal.Zero}
			buckets[day] = point
		}
		point.Revenue = point.Revenue.Add(o.TotalAmount)
		point.Orders++
	}

	trend := make([]RevenuePoint, 0, len(buckets))
	for _, p := range buckets {
		trend = append(trend, *p)
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Day.Before(trend[j].Day) })

	if (f.Kind == FilterAll || f.Kind == "") && len(trend) > TrendBucketLimit {
		trend = trend[len(trend)-TrendBucketLimit:]
	}
	return trend
}

type CategoryRevenue struct {
	CategoryID string          `json:"category_id"`
	Category   string          `json:"category"`
	Revenue    decimal.Decimal `json:"revenue"`
	Units      int             `json:"units"`
	Percentage decimal.Decimal `json:"percentage"`
}

// resolveCategory maps a product to its current category. Products that are gone, have no
// category, or point at a removed category all land in models.Uncategorized.
func resolveCategory(productID string, products map[string]models.Product, categories map[string]models.Category) models.Category {
	product, ok := products[productID]
	if !ok {
		return models.Uncategorized
	}
	category, ok := categories[product.CategoryRef()]
	if !ok {
		return models.Uncategorized
	}
	return category
}

// CategoryBreakdown attributes each line item of the filtered orders to its product's current
// category. An order whose snapshot cannot be decoded contributes nothing; the rest still count.
func CategoryBreakdown(orders []models.Order, products []models.Product, categories []models.Category) []CategoryRevenue {
	productByID := make(map[string]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	categoryByID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		categoryByID[c.ID] = c
	}

	buckets := make(map[string]*CategoryRevenue)
	total := decimal.Zero
	for _, o := range orders {
		snapshot, err := o.Snapshot()
		if err != nil {
			log.Printf("Analytics: skipping order %s in category breakdown: %v", o.ID, err)
			continue
		}
		for _, item := range snapshot.Items {
			category := resolveCategory(item.ProductID, productByID, categoryByID)
			bucket, ok := buckets[category.Name]
			if !ok {
				bucket = &CategoryRevenue{CategoryID: category.ID, Category: category.Name, Revenue: decimal.Zero}
				buckets[category.Name] = bucket
			}
			lineTotal := item.Subtotal()
			bucket.Revenue = bucket.Revenue.Add(lineTotal)
			bucket.Units += item.Quantity
			total = total.Add(lineTotal)
		}
	}

	out := make([]CategoryRevenue, 0, len(buckets))
	for _, b := range buckets {
		b.Percentage = calc.SharePercent(b.Revenue, total)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type Spender struct {
	UserID string          `json:"user_id"`
	Name   string          `json:"name"`
	Phone  string          `json:"phone"`
	Total  decimal.Decimal `json:"total"`
	Orders int             `json:"orders"`
}

// TopSpender returns the user with the highest order total, or nil for no orders. On a tie the
// user seen first in orders wins.
func TopSpender(orders []models.Order, users []models.User) *Spender {
	if len(orders) == 0 {
		return nil
	}

	totals := make(map[string]*Spender)
	seen := make([]string, 0)
	for _, o := range orders {
		s, ok := totals[o.UserID]
		if !ok {
			s = &Spender{UserID: o.UserID, Total: decimal.Zero}
			totals[o.UserID] = s
			seen = append(seen, o.UserID)
		}
		s.Total = s.Total.Add(o.TotalAmount)
		s.Orders++
	}

	var top *Spender
	for _, id := range seen {
		if top == nil || totals[id].Total.GreaterThan(top.Total) {
			top = totals[id]
		}
	}

	result := *top
	result.Name, result.Phone = UnknownUserName, UnknownUserPhone
	for _, u := range users {
		if u.ID != result.UserID {
			continue
		}
		if u.Name != "" {
			result.Name = u.Name
		}
		if u.Phone != "" {
			result.Phone = u.Phone
		}
		break
	}
	return &result
}

// AvailableMonths lists the month labels that have orders, newest first.
func AvailableMonths(orders []models.Order, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	firsts := make(map[time.Time]struct{})
	for _, o := range orders {
		if o.CreatedAt.IsZero() {
			continue
		}
		t := o.CreatedAt.In(loc)
		firsts[time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)] = struct{}{}
	}

	months := make([]time.Time, 0, len(firsts))
	for m := range firsts {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })

	labels := make([]string, 0, len(months))
	for _, m := range months {
		labels = append(labels, format.MonthLabel(m))
	}
	return labels
}

type DashboardSummary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	UniqueCustomers   int             `json:"unique_customers"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TotalProducts     int             `json:"total_products"`
	TopCategory       string          `json:"top_category"`
}

func Summarize(orders []models.Order, totalProducts int, breakdown []CategoryRevenue) DashboardSummary {
	summary := DashboardSummary{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		TotalOrders:       len(orders),
		TotalProducts:     totalProducts,
	}
	customers := make(map[string]struct{})
	for _, o := range orders {
		summary.TotalRevenue = summary.TotalRevenue.Add(o.TotalAmount)
		customers[o.UserID] = struct{}{}
	}
	summary.UniqueCustomers = len(customers)
	if len(orders) > 0 {
		summary.AverageOrderValue = summary.TotalRevenue.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
	}
	if len(breakdown) > 0 {
		summary.TopCategory = breakdown[0].Category
	}
	return summary
}

type AnalyticsReport struct {
	Period          string            `json:"period"`
	Summary         DashboardSummary  `json:"summary"`
	RevenueTrend    []RevenuePoint    `json:"revenue_trend"`
	Categories      []CategoryRevenue `json:"categories"`
	TopSpender      *Spender          `json:"top_spender"`
	AvailableMonths []string          `json:"available_months"`
}

// BuildAnalytics filters once and runs every fold over the same order set. AvailableMonths is
// taken from the unfiltered history so the month picker always offers every month.
func BuildAnalytics(orders []models.Order, products []models.Product, categories []models.Category, users []models.User, f ReportFilter) AnalyticsReport {
	filtered := FilterOrders(orders, f)
	breakdown := CategoryBreakdown(filtered, products, categories)
	return AnalyticsReport{
		Period:          f.Label(),
		Summary:         Summarize(filtered, len(products), breakdown),
		RevenueTrend:    RevenueTrend(filtered, f),
		Categories:      breakdown,
		TopSpender:      TopSpender(filtered, users),
		AvailableMonths: AvailableMonths(orders, f.loc()),
	}
}

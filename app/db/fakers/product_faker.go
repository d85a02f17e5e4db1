package fakers

import (
	"math/rand"
	"strings"

	"github.com/go-faker/faker/v4"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/models"
)

var (
	apparelBrands = []string{"Threadline", "Loomcraft", "Northwind", "Indigo Row", "Hemline"}
	apparelSizes  = []string{"XS", "S", "M", "L", "XL", "XXL"}
	apparelColors = []string{"Black", "White", "Navy", "Olive", "Maroon", "Sand"}
	imagePaths    = []string{
		"/images/products/ss.jpg",
		"/images/products/ss1.jpg",
		"/images/products/ss2.jpg",
	}
)

func CategoryFaker(name string) *models.Category {
	return &models.Category{
		Name: name,
		Slug: slug.Make(name),
	}
}

func ProductFaker(category *models.Category) *models.Product {
	color := pick(apparelColors)
	title := strings.TrimSpace(color + " " + capitalize(faker.Word()) + " " + singular(category.Name))

	numImages := rand.Intn(3) + 1
	images := make([]string, numImages)
	for i := range images {
		images[i] = pick(imagePaths)
	}

	price := fakePrice()
	product := &models.Product{
		Title:       title,
		Description: faker.Paragraph(),
		Brand:       pick(apparelBrands),
		Size:        pick(apparelSizes),
		Color:       color,
		CategoryID:  &category.ID,
		Category:    category.Name,
		Price:       price,
		Stock:       rand.Intn(20) + 1,
		Images:      images,
	}
	// Roughly a third of the catalog is on sale.
	if rand.Intn(3) == 0 {
		product.DiscountPrice = decimal.NewNullDecimal(price.Mul(decimal.NewFromFloat(0.8)).Round(0))
	}
	return product
}

// fakePrice returns an apparel price between 199 and 4999, ending in 9.
func fakePrice() decimal.Decimal {
	return decimal.NewFromInt(int64(rand.Intn(48)*100 + 199))
}

func pick(options []string) string {
	return options[rand.Intn(len(options))]
}

func singular(name string) string {
	return strings.TrimSuffix(name, "s")
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

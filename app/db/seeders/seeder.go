package seeders

import (
	"fmt"
	"log"

	"github.com/threadline/storefront/app/db/fakers"
	"github.com/threadline/storefront/app/models"
	"gorm.io/gorm"
)

var defaultCategories = []string{"Shirts", "T-Shirts", "Jeans", "Dresses", "Jackets", "Scarves"}

type Options struct {
	ProductsPerCategory int
	AdminEmail          string
	AdminPassword       string
}

// DBSeed fills an empty catalog with apparel categories and products and makes sure an admin
// account exists. Categories and the admin are matched by slug and email, so it is safe to rerun.
func DBSeed(db *gorm.DB, opts Options) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range defaultCategories {
			category := fakers.CategoryFaker(name)
			if err := tx.Where(models.Category{Slug: category.Slug}).FirstOrCreate(category).Error; err != nil {
				return fmt.Errorf("failed to seed category %s: %w", name, err)
			}

			for i := 0; i < opts.ProductsPerCategory; i++ {
				if err := tx.Create(fakers.ProductFaker(category)).Error; err != nil {
					return fmt.Errorf("failed to seed product for %s: %w", name, err)
				}
			}
			log.Printf("Seeded category %s with %d products", name, opts.ProductsPerCategory)
		}

		if opts.AdminEmail == "" {
			return nil
		}
		admin, err := fakers.UserFaker(models.RoleAdmin, opts.AdminEmail, opts.AdminPassword)
		if err != nil {
			return err
		}
		if err := tx.Where(models.User{Email: admin.Email}).FirstOrCreate(admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		log.Printf("✅ Admin account %s ready", admin.Email)
		return nil
	})
}

package fakers

import (
	"fmt"

	"github.com/go-faker/faker/v4"
	"github.com/threadline/storefront/app/models"
	"golang.org/x/crypto/bcrypt"
)

func UserFaker(role, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if email == "" {
		email = faker.Email()
	}
	return &models.User{
		Name:     faker.Name(),
		Email:    email,
		Phone:    faker.Phonenumber(),
		Password: string(hash),
		Role:     role,
	}, nil
}

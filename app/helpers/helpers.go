package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type contextKey string

const (
	ContextKeyUserID contextKey = "userID"
	ContextKeyRole   contextKey = "role"
	CartCountKey     contextKey = "cart_count"
)

const maxJSONBodyBytes = 1 << 20

var ErrInvalidJSON = errors.New("invalid request payload")

func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserID, userID)
	return context.WithValue(ctx, ContextKeyRole, role)
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(ContextKeyUserID).(string)
	return userID
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ContextKeyRole).(string)
	return role
}

func CartCountFromContext(ctx context.Context) int {
	count, _ := ctx.Value(CartCountKey).(int)
	return count
}

// DecodeJSONBody reads a single JSON object into dst. Unknown fields are rejected.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: body is empty", ErrInvalidJSON)
		}
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: body must contain a single JSON object", ErrInvalidJSON)
	}
	return nil
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := toSnakeCase(err.Field())
		name := capitalizeFirstLetter(field)
		switch err.Tag() {
		case "required":
			errorMessages[field] = fmt.Sprintf("%s is required.", name)
		case "email":
			errorMessages[field] = fmt.Sprintf("%s must be a valid email address.", name)
		case "url":
			errorMessages[field] = fmt.Sprintf("%s must be a valid URL.", name)
		case "uuid":
			errorMessages[field] = fmt.Sprintf("%s must be a valid id.", name)
		case "numeric":
			errorMessages[field] = fmt.Sprintf("%s must be a number.", name)
		case "min":
			errorMessages[field] = fmt.Sprintf("%s must be at least %s.", name, err.Param())
		case "max":
			errorMessages[field] = fmt.Sprintf("%s must be at most %s.", name, err.Param())
		default:
			errorMessages[field] = fmt.Sprintf("%s failed the %s check.", name, err.Tag())
		}
	}
	return errorMessages
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func capitalizeFirstLetter(s string) string {
	if len(s) == 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "_", " ")
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}

package helpers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/storefront/app/services"
)

func TestDecodeJSONBody(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"tee"}`))
	require.NoError(t, DecodeJSONBody(httptest.NewRecorder(), r, &dst))
	assert.Equal(t, "tee", dst.Name)

	for _, body := range []string{"", `{"name":1}`, `{"unknown":"x"}`, `{"name":"a"}{"name":"b"}`} {
		r = httptest.NewRequest("POST", "/", strings.NewReader(body))
		assert.ErrorIs(t, DecodeJSONBody(httptest.NewRecorder(), r, &dst), ErrInvalidJSON, body)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	type input struct {
		CustomerEmail string `validate:"required,email"`
		Rating        int    `validate:"min=1"`
	}
	err := validator.New().Struct(input{CustomerEmail: "nope"})
	require.Error(t, err)

	messages := FormatValidationErrors(err.(validator.ValidationErrors))
	assert.Equal(t, "Customer Email must be a valid email address.", messages["customer_email"])
	assert.Equal(t, "Rating must be at least 1.", messages["rating"])
}

func TestGetBaseData(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	ctx := WithUser(r.Context(), "u1", "admin")
	ctx = context.WithValue(ctx, CartCountKey, 3)

	data := GetBaseData(r.WithContext(ctx), map[string]interface{}{"title": "Cart"})
	assert.Equal(t, "Cart", data["title"])
	assert.Equal(t, 3, data["cart_count"])
	assert.Equal(t, true, data["is_logged_in"])
	assert.Equal(t, true, data["is_admin"])
	assert.Equal(t, "u1", data["user_id"])

	anonymous := GetBaseData(httptest.NewRequest("GET", "/", nil), nil)
	assert.Equal(t, false, anonymous["is_logged_in"])
	assert.NotContains(t, anonymous, "user_id")
}

func TestErrorStatus(t *testing.T) {
	cases := map[error]int{
		services.ErrPaymentReferenceInUse:                         http.StatusConflict,
		fmt.Errorf("%w: 2 product(s)", services.ErrCategoryInUse): http.StatusConflict,
		fmt.Errorf("%w: total 450", services.ErrCODLimitExceeded): http.StatusUnprocessableEntity,
		services.ErrCategoryNotFound:                              http.StatusNotFound,
		errors.New("connection refused"):                          http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, ErrorStatus(err), err.Error())
	}
}

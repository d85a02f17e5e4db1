package helpers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/threadline/storefront/app/services"
	"github.com/unrolled/render"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{ErrInvalidJSON, http.StatusBadRequest},
	{services.ErrInvalidQuantity, http.StatusBadRequest},
	{services.ErrAddressRequired, http.StatusBadRequest},
	{services.ErrEmptyCart, http.StatusBadRequest},
	{services.ErrUnknownPaymentMethod, http.StatusBadRequest},
	{services.ErrPaymentReferenceRequired, http.StatusBadRequest},
	{services.ErrInvalidPrice, http.StatusBadRequest},
	{services.ErrInvalidReportFilter, http.StatusBadRequest},
	{services.ErrInvalidOrderStatus, http.StatusBadRequest},
	{services.ErrEmptyBill, http.StatusBadRequest},
	{services.ErrUnknownBucket, http.StatusBadRequest},
	{services.ErrInvalidUploadPath, http.StatusBadRequest},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrPaymentNotConfirmed, http.StatusPaymentRequired},
	{services.ErrProductNotFound, http.StatusNotFound},
	{services.ErrCategoryNotFound, http.StatusNotFound},
	{services.ErrOrderNotFound, http.StatusNotFound},
	{services.ErrUserNotFound, http.StatusNotFound},
	{services.ErrEmailTaken, http.StatusConflict},
	{services.ErrCategoryExists, http.StatusConflict},
	{services.ErrCategoryInUse, http.StatusConflict},
	{services.ErrPaymentReferenceInUse, http.StatusConflict},
	{services.ErrInsufficientStock, http.StatusConflict},
	{services.ErrInvalidStatusTransition, http.StatusConflict},
	{services.ErrPaymentAmountMismatch, http.StatusConflict},
	{services.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{services.ErrUnsupportedFileType, http.StatusUnsupportedMediaType},
	{services.ErrProductUnavailable, http.StatusUnprocessableEntity},
	{services.ErrCODLimitExceeded, http.StatusUnprocessableEntity},
	{services.ErrPaymentUnavailable, http.StatusServiceUnavailable},
}

// ErrorStatus maps a service error to its HTTP status. Unknown errors are 500.
func ErrorStatus(err error) int {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusUnprocessableEntity
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// RespondError writes the error envelope. Internal errors are logged and never shown to the client.
func RespondError(rnd *render.Render, w http.ResponseWriter, op string, err error) {
	status := ErrorStatus(err)
	body := map[string]interface{}{
		"status":  "error",
		"message": err.Error(),
	}

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		body["message"] = "Please correct the highlighted fields."
		body["errors"] = FormatValidationErrors(validationErrs)
	case errors.Is(err, services.ErrOrderNotRecorded):
		log.Printf("❌ %s: %v", op, err)
		body["message"] = "Your payment was received but the order could not be saved. Our team has been notified and will confirm it shortly."
	case status == http.StatusInternalServerError:
		log.Printf("❌ %s: %v", op, err)
		body["message"] = "Something went wrong. Please try again."
	default:
		log.Printf("%s: %v", op, err)
	}

	_ = rnd.JSON(w, status, body)
}

func RespondOK(rnd *render.Render, w http.ResponseWriter, status int, message string, data interface{}) {
	body := map[string]interface{}{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	_ = rnd.JSON(w, status, body)
}

package admin

import (
	"errors"
	"log"
	"net/http"

	"github.com/threadline/storefront/app/helpers"
	"github.com/threadline/storefront/app/services"
)

const defaultUploadBucket = "products"

// Upload stores one multipart "file" under the requested bucket and returns its public URL.
// Without a path the object gets a generated name.
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.DefaultMaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(services.DefaultMaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = services.ErrFileTooLarge
		} else {
			err = services.ErrInvalidUploadPath
		}
		helpers.RespondError(h.render, w, "AdminHandler.Upload", err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		log.Printf("AdminHandler.Upload: no file in request: %v", err)
		helpers.RespondError(h.render, w, "AdminHandler.Upload", services.ErrInvalidUploadPath)
		return
	}
	defer file.Close()

	bucket := r.FormValue("bucket")
	if bucket == "" {
		bucket = defaultUploadBucket
	}
	url, err := h.storage.Upload(r.Context(), bucket, r.FormValue("path"), file)
	if err != nil {
		helpers.RespondError(h.render, w, "AdminHandler.Upload", err)
		return
	}
	log.Printf("✅ AdminHandler.Upload: %s stored in %s", url, bucket)
	helpers.RespondOK(h.render, w, http.StatusCreated, "File uploaded.", map[string]string{"url": url})
}

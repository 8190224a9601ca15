package handlers

import (
	"net/http"

	"blog-backend/internal/apperr"
	"blog-backend/internal/middleware"
	"blog-backend/internal/services"
	"blog-backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// ImageHandler handles standalone image uploads
type ImageHandler struct {
	feed *services.FeedService
}

// NewImageHandler creates a new image handler
func NewImageHandler(feed *services.FeedService) *ImageHandler {
	return &ImageHandler{feed: feed}
}

// Upload handles PUT /post-image. The replaced image, when named through
// oldPath, is removed best-effort.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, badBody(err))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, apperr.NewValidation("Validation failed, there was missing data", apperr.FieldError{
			Message: "Image is required",
			Param:   "image",
		}))
		return
	}
	defer file.Close()

	contentType := uploadContentType(header)
	if !storage.AllowedType(contentType) {
		respondError(w, apperr.NewValidation("Validation failed, there was missing data", apperr.FieldError{
			Message: "Only png and jpeg images are accepted",
			Param:   "image",
		}))
		return
	}

	filePath, err := h.feed.SaveImage(r.Context(), header.Filename, contentType, file)
	if err != nil {
		respondError(w, err)
		return
	}

	if oldPath := r.FormValue("oldPath"); oldPath != "" {
		h.feed.RemoveImage(r.Context(), oldPath)
	}

	log.Info().
		Str("user_id", middleware.UserID(r.Context())).
		Str("file_path", filePath).
		Msg("Image uploaded")

	respondJSON(w, http.StatusCreated, map[string]string{
		"message":  "Image uploaded",
		"filePath": filePath,
	})
}

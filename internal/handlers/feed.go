package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"blog-backend/internal/apperr"
	"blog-backend/internal/middleware"
	"blog-backend/internal/services"
	"blog-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 10 << 20

// FeedHandler handles post CRUD HTTP requests
type FeedHandler struct {
	feed *services.FeedService
	hub  *services.Hub
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feed *services.FeedService, hub *services.Hub) *FeedHandler {
	return &FeedHandler{feed: feed, hub: hub}
}

// GetPosts handles GET /feed/posts
func (h *FeedHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("currentPage"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil {
			page = parsed
		}
	}

	posts, total, err := h.feed.List(r.Context(), page)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Fetched posts successfully",
		"posts":      posts,
		"totalItems": total,
	})
}

// CreatePost handles POST /feed/post
func (h *FeedHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, badBody(err))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	content := strings.TrimSpace(r.FormValue("content"))
	if err := requirePostFields(title, content); err != nil {
		respondError(w, err)
		return
	}

	imageURL, err := h.saveUpload(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if imageURL == "" {
		respondError(w, apperr.NewValidation("Validation failed, there was missing data", apperr.FieldError{
			Message: "Image is required",
			Param:   "image",
		}))
		return
	}

	userID := middleware.UserID(r.Context())
	post, creator, err := h.feed.Create(r.Context(), userID, title, content, imageURL)
	if err != nil {
		respondError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("post_id", post.ID.Hex()).Msg("Post created")
	h.hub.Broadcast(services.FeedEvent{Channel: "posts", Action: services.FeedActionCreate, Post: post})

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Post created successfully!",
		"post":    post,
		"creator": map[string]string{
			"_id":  creator.ID.Hex(),
			"name": creator.Name,
		},
	})
}

// GetPost handles GET /feed/post/{postId}
func (h *FeedHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.feed.Get(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"post": post})
}

type updatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
}

// UpdatePost handles PUT /feed/post/{postId}, accepting either a multipart
// form with an optional replacement image or a JSON body referencing the
// stored one.
func (h *FeedHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req updatePostRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			respondError(w, badBody(err))
			return
		}
		req.Title = r.FormValue("title")
		req.Content = r.FormValue("content")
		req.ImageURL = r.FormValue("imageUrl")

		uploaded, err := h.saveUpload(r)
		if err != nil {
			respondError(w, err)
			return
		}
		if uploaded != "" {
			req.ImageURL = uploaded
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, badBody(err))
			return
		}
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := requirePostFields(req.Title, req.Content); err != nil {
		respondError(w, err)
		return
	}
	if req.ImageURL == "" {
		respondError(w, apperr.NewValidation("Validation failed, there was missing data", apperr.FieldError{
			Message: "Image is required",
			Param:   "image",
		}))
		return
	}

	userID := middleware.UserID(r.Context())
	postID := chi.URLParam(r, "postId")
	post, err := h.feed.Update(r.Context(), userID, postID, req.Title, req.Content, req.ImageURL)
	if err != nil {
		respondError(w, err)
		return
	}

	h.hub.Broadcast(services.FeedEvent{Channel: "posts", Action: services.FeedActionUpdate, Post: post})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Post updated successfully",
		"post":    post,
	})
}

// DeletePost handles DELETE /feed/post/{postId}
func (h *FeedHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	postID := chi.URLParam(r, "postId")

	if err := h.feed.Delete(r.Context(), userID, postID); err != nil {
		respondError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("post_id", postID).Msg("Post deleted")
	h.hub.Broadcast(services.FeedEvent{Channel: "posts", Action: services.FeedActionDelete, PostID: postID})

	respondJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

// saveUpload stores the "image" file of a parsed multipart form, if any, and
// returns its public path. An absent file is not an error.
func (h *FeedHandler) saveUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", badBody(err)
	}
	defer file.Close()

	contentType := uploadContentType(header)
	if !storage.AllowedType(contentType) {
		return "", apperr.NewValidation("Validation failed, there was missing data", apperr.FieldError{
			Message: "Only png and jpeg images are accepted",
			Param:   "image",
		})
	}

	return h.feed.SaveImage(r.Context(), header.Filename, contentType, file)
}

func uploadContentType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// requirePostFields enforces the presence checks shared by create and update.
func requirePostFields(title, content string) error {
	var fields []apperr.FieldError
	if title == "" {
		fields = append(fields, apperr.FieldError{Message: "Title is required", Param: "title"})
	}
	if content == "" {
		fields = append(fields, apperr.FieldError{Message: "Content is required", Param: "content"})
	}
	if len(fields) > 0 {
		return apperr.NewValidation("Validation failed, entered data is incorrect.", fields...)
	}
	return nil
}

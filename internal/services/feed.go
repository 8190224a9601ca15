package services

import (
	"context"
	"errors"
	"io"
	"time"

	"blog-backend/internal/apperr"
	"blog-backend/internal/models"
	"blog-backend/internal/storage"

	"github.com/rs/zerolog/log"
)

// PostsPerPage is the fixed feed page size.
const PostsPerPage = 2

// FeedService handles post CRUD and the image lifecycle tied to it
type FeedService struct {
	posts  PostStore
	users  UserStore
	images storage.ImageStore
}

// NewFeedService creates a new feed service
func NewFeedService(posts PostStore, users UserStore, images storage.ImageStore) *FeedService {
	return &FeedService{posts: posts, users: users, images: images}
}

// List returns a page of all posts in insertion order plus the total count.
// Pages below 1 behave as page 1.
func (s *FeedService) List(ctx context.Context, page int) ([]*models.Post, int64, error) {
	skip := pageSkip(page)
	posts, total, err := s.posts.List(ctx, nil, skip, PostsPerPage, false)
	if err != nil {
		return nil, 0, apperr.NewInternal("Something went wrong when trying to get posts from our servers", err)
	}
	return posts, total, nil
}

// ListByCreator returns a page of the creator's posts, newest first, plus the
// count of that creator's posts.
func (s *FeedService) ListByCreator(ctx context.Context, creatorID string, page int) ([]*models.Post, int64, error) {
	id, err := parseID(creatorID)
	if err != nil {
		return nil, 0, apperr.NewNotFound("User not found")
	}
	skip := pageSkip(page)
	posts, total, err := s.posts.List(ctx, &id, skip, PostsPerPage, true)
	if err != nil {
		return nil, 0, apperr.NewInternal("Something went wrong when trying to get posts from our servers", err)
	}
	return posts, total, nil
}

// Create persists a post owned by creatorID and appends it to the creator's
// post list. The creator must resolve to an existing identity.
func (s *FeedService) Create(ctx context.Context, creatorID, title, content, imageURL string) (*models.Post, *models.User, error) {
	id, err := parseID(creatorID)
	if err != nil {
		return nil, nil, apperr.NewNotFound("User not found")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, nil, err
		}
		return nil, nil, apperr.NewInternal("Error while creating a post", err)
	}

	now := time.Now().UTC()
	post := &models.Post{
		Title:     title,
		Content:   content,
		ImageURL:  imageURL,
		Creator:   user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	postID, err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, nil, apperr.NewInternal("Error while creating a post", err)
	}
	post.ID = postID

	if err := s.users.AddPost(ctx, user.ID, postID); err != nil {
		return nil, nil, apperr.NewInternal("Error while creating a post", err)
	}

	return post, user, nil
}

// Get retrieves a single post by id.
func (s *FeedService) Get(ctx context.Context, postID string) (*models.Post, error) {
	id, err := parseID(postID)
	if err != nil {
		return nil, apperr.NewNotFound("Could not find post")
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperr.NewInternal("Error while trying to get post", err)
	}
	return post, nil
}

// Update rewrites a post. Existence is checked before ownership; only the
// owner may update. When imageURL replaces a different stored image the old
// file is removed best-effort before responding.
func (s *FeedService) Update(ctx context.Context, userID, postID, title, content, imageURL string) (*models.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Creator.Hex() != userID {
		return nil, apperr.NewForbidden("You're not allowed to modify this resource")
	}

	oldImage := post.ImageURL
	post.Title = title
	post.Content = content
	if imageURL != "" {
		post.ImageURL = imageURL
	}

	if err := s.posts.Update(ctx, post); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperr.NewInternal("Something went wrong when trying to update a post", err)
	}

	if imageURL != "" && oldImage != "" && oldImage != imageURL {
		s.RemoveImage(ctx, oldImage)
	}

	return post, nil
}

// Delete removes a post. Existence is checked before ownership so a missing
// post is not found for everyone; only the owner may delete. The stored
// image is removed best-effort after the document is gone.
func (s *FeedService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.Creator.Hex() != userID {
		return apperr.NewForbidden("You're not allowed to modify this resource")
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return err
		}
		return apperr.NewInternal("Something went wrong when trying to delete a post", err)
	}
	if err := s.users.RemovePost(ctx, post.Creator, post.ID); err != nil {
		return apperr.NewInternal("Something went wrong when trying to delete a post", err)
	}

	s.RemoveImage(ctx, post.ImageURL)

	return nil
}

// SaveImage stores an uploaded image and returns its public path.
func (s *FeedService) SaveImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	path, err := s.images.Save(ctx, filename, contentType, r)
	if err != nil {
		return "", apperr.NewInternal("Error while storing the image", err)
	}
	return path, nil
}

// RemoveImage deletes a stored image best-effort: the outcome is awaited but
// a failure is only logged, never surfaced.
func (s *FeedService) RemoveImage(ctx context.Context, imageURL string) {
	if imageURL == "" {
		return
	}
	if err := s.images.Remove(ctx, imageURL); err != nil {
		log.Error().Err(err).Str("image", imageURL).Msg("File delete failed")
	}
}

func pageSkip(page int) int64 {
	if page < 1 {
		page = 1
	}
	return int64(page-1) * PostsPerPage
}

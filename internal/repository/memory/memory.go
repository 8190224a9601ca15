// Package memory provides in-memory implementations of the store interfaces
// for tests, mirroring the error behavior of the mongo repositories.
package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"blog-backend/internal/apperr"
	"blog-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Users is an in-memory services.UserStore.
type Users struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.User
	order []primitive.ObjectID
}

// NewUsers creates an empty user store.
func NewUsers() *Users {
	return &Users{byID: make(map[primitive.ObjectID]*models.User)}
}

func (s *Users) Create(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == user.Email {
			return primitive.NilObjectID, fmt.Errorf("duplicate email %q", user.Email)
		}
	}
	clone := *user
	clone.ID = primitive.NewObjectID()
	s.byID[clone.ID] = &clone
	s.order = append(s.order, clone.ID)
	return clone.ID, nil
}

func (s *Users) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, apperr.NewNotFound("User not found")
	}
	clone := *user
	clone.Posts = append([]primitive.ObjectID(nil), user.Posts...)
	return &clone, nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if s.byID[id].Email == email {
			clone := *s.byID[id]
			clone.Posts = append([]primitive.ObjectID(nil), s.byID[id].Posts...)
			return &clone, nil
		}
	}
	return nil, apperr.NewNotFound("User not found")
}

func (s *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *Users) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return apperr.NewNotFound("User not found")
	}
	user.Status = status
	return nil
}

func (s *Users) AddPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return apperr.NewNotFound("User not found")
	}
	user.Posts = append(user.Posts, postID)
	return nil
}

func (s *Users) RemovePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return nil
	}
	kept := user.Posts[:0]
	for _, id := range user.Posts {
		if id != postID {
			kept = append(kept, id)
		}
	}
	user.Posts = kept
	return nil
}

// Posts is an in-memory services.PostStore.
type Posts struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.Post
	order []primitive.ObjectID
}

// NewPosts creates an empty post store.
func NewPosts() *Posts {
	return &Posts{byID: make(map[primitive.ObjectID]*models.Post)}
}

func (s *Posts) Create(ctx context.Context, post *models.Post) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *post
	clone.ID = primitive.NewObjectID()
	s.byID[clone.ID] = &clone
	s.order = append(s.order, clone.ID)
	return clone.ID, nil
}

func (s *Posts) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.byID[id]
	if !ok {
		return nil, apperr.NewNotFound("Could not find post")
	}
	clone := *post
	return &clone, nil
}

func (s *Posts) List(ctx context.Context, creator *primitive.ObjectID, skip, limit int64, newestFirst bool) ([]*models.Post, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []*models.Post{}
	for _, id := range s.order {
		post := s.byID[id]
		if creator != nil && post.Creator != *creator {
			continue
		}
		clone := *post
		matched = append(matched, &clone)
	}

	if newestFirst {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	total := int64(len(matched))
	if skip >= total {
		return []*models.Post{}, total, nil
	}
	matched = matched[skip:]
	if int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (s *Posts) Update(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[post.ID]
	if !ok {
		return apperr.NewNotFound("Could not find post")
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.ImageURL = post.ImageURL
	stored.UpdatedAt = post.UpdatedAt
	return nil
}

func (s *Posts) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return apperr.NewNotFound("Could not find post")
	}
	delete(s.byID, id)
	kept := s.order[:0]
	for _, oid := range s.order {
		if oid != id {
			kept = append(kept, oid)
		}
	}
	s.order = kept
	return nil
}

// Images is an in-memory storage.ImageStore recording removals for
// assertions.
type Images struct {
	mu      sync.Mutex
	seq     int
	files   map[string][]byte
	removed []string
}

// NewImages creates an empty image store.
func NewImages() *Images {
	return &Images{files: make(map[string][]byte)}
}

func (s *Images) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	path := fmt.Sprintf("images/%d-%s", s.seq, filename)
	s.files[path] = data
	return path, nil
}

func (s *Images) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[path]; !ok {
		return fmt.Errorf("no stored image at %q", path)
	}
	delete(s.files, path)
	s.removed = append(s.removed, path)
	return nil
}

// Removed returns the paths removed so far.
func (s *Images) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}

// Stored reports whether a path currently holds an image.
func (s *Images) Stored(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return ok
}

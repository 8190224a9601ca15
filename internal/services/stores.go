package services

import (
	"context"

	"blog-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the document store surface the services need for users.
// Implemented by repository.UserRepository.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	AddPost(ctx context.Context, userID, postID primitive.ObjectID) error
	RemovePost(ctx context.Context, userID, postID primitive.ObjectID) error
}

// PostStore is the document store surface the services need for posts.
// Implemented by repository.PostRepository.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	List(ctx context.Context, creator *primitive.ObjectID, skip, limit int64, newestFirst bool) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

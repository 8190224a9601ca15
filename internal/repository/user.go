package repository

import (
	"context"
	"errors"
	"fmt"

	"blog-backend/internal/apperr"
	"blog-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository handles document store operations for users
type UserRepository struct {
	users *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{users: db.Collection("users")}
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

// Create inserts a new user and returns its assigned id
func (r *UserRepository) Create(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := r.users.InsertOne(ctx, user)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create user: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := r.users.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

// UpdateStatus sets the status string of a user
func (r *UserRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := r.users.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NewNotFound("User not found")
	}
	return nil
}

// AddPost appends a post reference to the user's post list
func (r *UserRepository) AddPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	res, err := r.users.UpdateByID(ctx, userID, bson.M{"$push": bson.M{"posts": postID}})
	if err != nil {
		return fmt.Errorf("failed to attach post to user: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NewNotFound("User not found")
	}
	return nil
}

// RemovePost detaches a post reference from the user's post list
func (r *UserRepository) RemovePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	_, err := r.users.UpdateByID(ctx, userID, bson.M{"$pull": bson.M{"posts": postID}})
	if err != nil {
		return fmt.Errorf("failed to detach post from user: %w", err)
	}
	return nil
}

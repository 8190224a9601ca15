package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-backend/internal/apperr"
	"blog-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository handles document store operations for posts
type PostRepository struct {
	posts *mongo.Collection
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{posts: db.Collection("posts")}
}

// Create inserts a new post and returns its assigned id
func (r *PostRepository) Create(ctx context.Context, post *models.Post) (primitive.ObjectID, error) {
	res, err := r.posts.InsertOne(ctx, post)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create post: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// GetByID retrieves a post by id
func (r *PostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NewNotFound("Could not find post")
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// List retrieves a page of posts plus the total count for the same filter.
// A nil creator lists every post in insertion order; newestFirst sorts by
// descending creation time.
func (r *PostRepository) List(ctx context.Context, creator *primitive.ObjectID, skip, limit int64, newestFirst bool) ([]*models.Post, int64, error) {
	filter := bson.M{}
	if creator != nil {
		filter["creator"] = *creator
	}

	total, err := r.posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	opts := options.Find().SetSkip(skip).SetLimit(limit)
	if newestFirst {
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}

	cursor, err := r.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []*models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, fmt.Errorf("failed to decode posts: %w", err)
	}

	return posts, total, nil
}

// Update rewrites the mutable fields of a post and refreshes updatedAt
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now().UTC()
	res, err := r.posts.UpdateByID(ctx, post.ID, bson.M{"$set": bson.M{
		"title":     post.Title,
		"content":   post.Content,
		"imageUrl":  post.ImageURL,
		"updatedAt": post.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NewNotFound("Could not find post")
	}
	return nil
}

// Delete removes a post document
func (r *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NewNotFound("Could not find post")
	}
	return nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultUserStatus is assigned to every freshly registered user.
const DefaultUserStatus = "I am new!"

// User represents a registered account
type User struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Email    string               `bson:"email" json:"email"`
	Password string               `bson:"password" json:"-"`
	Name     string               `bson:"name" json:"name"`
	Status   string               `bson:"status" json:"status"`
	Posts    []primitive.ObjectID `bson:"posts" json:"posts"`
}

// Post represents a feed entry owned by a user
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	ImageURL  string             `bson:"imageUrl" json:"imageUrl"`
	Creator   primitive.ObjectID `bson:"creator" json:"creator"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

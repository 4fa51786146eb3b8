package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Link is a single entry on a user's public page.
type Link struct {
	ID    string `json:"id"    bson:"id"`
	Title string `json:"title" bson:"title"`
	URL   string `json:"url"   bson:"url"`
	Badge string `json:"badge,omitempty" bson:"badge,omitempty"`
}

// Profile is the editable page content for one user, stored in MongoDB.
type Profile struct {
	ID          primitive.ObjectID `json:"-"            bson:"_id,omitempty"`
	UserID      string             `json:"user_id"      bson:"user_id"`
	DisplayName string             `json:"display_name" bson:"display_name"`
	Bio         string             `json:"bio"          bson:"bio"`
	AvatarKey   string             `json:"-"            bson:"avatar_key"`
	Links       []Link             `json:"links"        bson:"links"`
	UpdatedAt   time.Time          `json:"updated_at"   bson:"updated_at"`
}

// UpdateProfileRequest is the JSON body for PUT /api/profile.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Links       []Link `json:"links"`
}

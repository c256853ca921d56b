// internal/domain/video.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility controls who can see a video in catalog listings.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Video represents a published video. The binary asset lives in object
// storage under AssetPath; this record carries everything else.
type Video struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID      primitive.ObjectID `bson:"ownerId" json:"ownerId"` // Link to the user who uploaded it; never changes
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	AssetPath    string             `bson:"assetPath" json:"-"` // Object key in the asset bucket - internal use
	ThumbnailURL string             `bson:"thumbnailUrl,omitempty" json:"thumbnailUrl,omitempty"`
	Visibility   Visibility         `bson:"visibility" json:"visibility"`
	Views        int64              `bson:"views" json:"views"`
	LikesCount   int64              `bson:"likesCount" json:"likesCount"` // Cached aggregate; must match the likes collection
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsOwnedBy reports whether userID owns the video.
func (v *Video) IsOwnedBy(userID primitive.ObjectID) bool {
	return v.OwnerID == userID
}

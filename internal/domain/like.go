package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like is a (video, user) relationship row. A compound unique index on
// (videoId, userId) guarantees at most one active like per pair; existence
// is the whole signal, there is no soft-delete state.
type Like struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VideoID   primitive.ObjectID `bson:"videoId" json:"videoId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// LikeResult is the authoritative outcome of a toggle: the resulting
// liked-state and the post-toggle counter read back from the video record.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

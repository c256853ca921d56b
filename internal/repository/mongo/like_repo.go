package mongo

import (
	"context"
	"errors"
	"time"

	"vidvault/video-app/internal/domain"
	"vidvault/video-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const likeCollectionName = "video_likes"

// mongoLikeRepository implements repository.LikeRepository. It touches two
// collections: the like rows and the cached likesCount on videos.
type mongoLikeRepository struct {
	likes  *mongo.Collection
	videos *mongo.Collection
}

// NewMongoLikeRepository creates a new Like repository backed by MongoDB.
func NewMongoLikeRepository(db *mongo.Database) repository.LikeRepository {
	return &mongoLikeRepository{
		likes:  db.Collection(likeCollectionName),
		videos: db.Collection(videoCollectionName),
	}
}

// Toggle flips the like state for (videoID, userID). The unique index on
// (videoId, userId) is the commit point: the insert either wins or fails
// with a duplicate key, so two concurrent toggles for the same pair can
// never both insert nor both delete. The counter $inc follows only the
// side that actually committed, keeping likesCount equal to the number of
// like rows. The resulting count comes from the post-image of the video,
// never computed on the caller's side.
func (r *mongoLikeRepository) Toggle(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.LikeResult, error) {
	if videoID == primitive.NilObjectID || userID == primitive.NilObjectID {
		return nil, errors.New("video ID and user ID are required")
	}

	like := domain.Like{
		ID:        primitive.NewObjectID(),
		VideoID:   videoID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.likes.InsertOne(ctx, like)
	switch {
	case err == nil:
		count, err := r.adjustCount(ctx, videoID, 1)
		if err != nil {
			// The video is gone (never existed, or deleted between the
			// insert and the counter bump). The row must not outlive its
			// pairing with the counter, so take it back out.
			if errors.Is(err, repository.ErrNotFound) {
				_, _ = r.likes.DeleteOne(ctx, bson.M{"_id": like.ID})
			}
			return nil, err
		}
		return &domain.LikeResult{Liked: true, LikesCount: count}, nil

	case mongo.IsDuplicateKeyError(err):
		// Already liked: remove the row and decrement. If a concurrent
		// toggle removed it first, neither the delete nor the decrement
		// happens here; report the current state instead.
		res, derr := r.likes.DeleteOne(ctx, bson.M{"videoId": videoID, "userId": userID})
		if derr != nil {
			return nil, derr
		}
		if res.DeletedCount == 0 {
			count, gerr := r.currentCount(ctx, videoID)
			if gerr != nil {
				return nil, gerr
			}
			return &domain.LikeResult{Liked: false, LikesCount: count}, nil
		}
		count, err := r.adjustCount(ctx, videoID, -1)
		if err != nil {
			return nil, err
		}
		return &domain.LikeResult{Liked: false, LikesCount: count}, nil

	default:
		return nil, err
	}
}

// adjustCount applies a $inc to the cached counter and returns the
// post-update value in one FindOneAndUpdate round trip.
func (r *mongoLikeRepository) adjustCount(ctx context.Context, videoID primitive.ObjectID, delta int64) (int64, error) {
	var video domain.Video
	err := r.videos.FindOneAndUpdate(ctx,
		bson.M{"_id": videoID},
		bson.M{"$inc": bson.M{"likesCount": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return video.LikesCount, nil
}

func (r *mongoLikeRepository) currentCount(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	var video domain.Video
	err := r.videos.FindOne(ctx, bson.M{"_id": videoID}).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return video.LikesCount, nil
}

// Exists reports whether an active like exists for the pair.
func (r *mongoLikeRepository) Exists(ctx context.Context, videoID, userID primitive.ObjectID) (bool, error) {
	err := r.likes.FindOne(ctx, bson.M{"videoId": videoID, "userId": userID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CountByVideo counts active likes for a video.
func (r *mongoLikeRepository) CountByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	return r.likes.CountDocuments(ctx, bson.M{"videoId": videoID})
}

// DeleteByVideo removes every like row for a video. Used when the video
// itself is deleted, so rows never outlive their video.
func (r *mongoLikeRepository) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := r.likes.DeleteMany(ctx, bson.M{"videoId": videoID})
	return err
}

// EnsureLikeIndexes creates the compound unique index that enforces the
// one-like-per-(video,user) invariant. Unlike the other index helpers this
// one reports failure: the toggle path relies on the unique index to
// serialize concurrent toggles, so serving without it is not safe.
func EnsureLikeIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "videoId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_video_user"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

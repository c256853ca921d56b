package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"vidvault/video-app/internal/domain"
	"vidvault/video-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const videoCollectionName = "videos"

// mongoVideoRepository implements repository.VideoRepository
type mongoVideoRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoRepository creates a new Video repository backed by MongoDB.
func NewMongoVideoRepository(db *mongo.Database) repository.VideoRepository {
	return &mongoVideoRepository{
		collection: db.Collection(videoCollectionName),
	}
}

// Create inserts a new video record.
func (r *mongoVideoRepository) Create(ctx context.Context, video *domain.Video) (primitive.ObjectID, error) {
	if video.OwnerID == primitive.NilObjectID || video.AssetPath == "" {
		return primitive.NilObjectID, errors.New("video owner ID and asset path are required")
	}

	video.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	video.CreatedAt = now
	video.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, video)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a video by its ID.
func (r *mongoVideoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error) {
	var video domain.Video
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&video)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// buildListFilter translates a catalog query into a Mongo filter document.
func buildListFilter(query repository.CatalogQuery) bson.M {
	filter := bson.M{}

	switch query.Scope {
	case repository.ScopePersonal:
		filter["ownerId"] = query.OwnerID
	case repository.ScopeProfile:
		filter["ownerId"] = query.OwnerID
		filter["visibility"] = domain.VisibilityPublic
	default: // explore
		filter["visibility"] = domain.VisibilityPublic
	}

	if query.Search != "" {
		// Case-insensitive substring match on title only. The search text
		// is quoted so user input never acts as a pattern.
		filter["title"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(query.Search),
			Options: "i",
		}
	}

	return filter
}

// buildListSort maps a sort key to its order-by document. Mongo sorts are
// not stable, so _id ascending (insertion order) breaks ties.
func buildListSort(sort repository.CatalogSort) bson.D {
	var key string
	switch sort {
	case repository.SortViews:
		key = "views"
	case repository.SortLikes:
		key = "likesCount"
	default:
		key = "createdAt"
	}
	return bson.D{{Key: key, Value: -1}, {Key: "_id", Value: 1}}
}

// List returns the videos matching a catalog query. An empty result is a
// valid outcome, returned as an empty slice.
func (r *mongoVideoRepository) List(ctx context.Context, query repository.CatalogQuery) ([]domain.Video, error) {
	filter := buildListFilter(query)
	findOptions := options.Find().SetSort(buildListSort(query.Sort))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	videos := []domain.Video{}
	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return videos, nil
}

// Update modifies the mutable metadata of an existing video.
// OwnerID, AssetPath and the engagement counters are deliberately not
// part of the $set document; they are managed elsewhere or immutable.
func (r *mongoVideoRepository) Update(ctx context.Context, video *domain.Video) error {
	if video.ID == primitive.NilObjectID {
		return errors.New("video ID is required for update")
	}
	if video.Title == "" {
		return errors.New("video title cannot be empty")
	}

	filter := bson.M{"_id": video.ID}
	update := bson.M{
		"$set": bson.M{
			"title":        video.Title,
			"description":  video.Description,
			"thumbnailUrl": video.ThumbnailURL,
			"visibility":   video.Visibility,
			"updatedAt":    time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a video record, ensuring it belongs to the given owner.
// The combined filter means a non-owner can never match the document.
func (r *mongoVideoRepository) Delete(ctx context.Context, id primitive.ObjectID, ownerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":     id,
		"ownerId": ownerID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// IncrementViews bumps the view counter with a single $inc so concurrent
// viewers are all counted. Never read-modify-write from the client side.
func (r *mongoVideoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureVideoIndexes creates the indexes the catalog queries rely on.
func EnsureVideoIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Personal and profile listings filter by owner
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Explore listings filter by visibility and sort by recency
			Keys:    bson.D{{Key: "visibility", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

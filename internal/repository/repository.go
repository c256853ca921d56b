package repository

import (
	"context"

	"vidvault/video-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate record")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// CatalogScope selects which slice of the catalog a listing covers.
type CatalogScope string

const (
	ScopeExplore  CatalogScope = "explore"  // every public video
	ScopePersonal CatalogScope = "personal" // everything the owner has, any visibility
	ScopeProfile  CatalogScope = "profile"  // one creator's public videos
)

// CatalogSort selects the ordering of a listing. All orders are
// descending with insertion order breaking ties.
type CatalogSort string

const (
	SortRecency CatalogSort = "recent"
	SortViews   CatalogSort = "views"
	SortLikes   CatalogSort = "likes"
)

// CatalogQuery is everything a listing needs. It is a plain value so the
// same query re-run later recomputes the result from current state.
type CatalogQuery struct {
	Scope   CatalogScope
	OwnerID primitive.ObjectID // required for Personal and Profile scopes
	Search  string             // case-insensitive substring match on title; empty means no filter
	Sort    CatalogSort
}

// VideoRepository defines the interface for interacting with video metadata.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Video, error)
	List(ctx context.Context, query CatalogQuery) ([]domain.Video, error)
	Update(ctx context.Context, video *domain.Video) error
	Delete(ctx context.Context, id primitive.ObjectID, ownerID primitive.ObjectID) error

	// IncrementViews bumps the view counter by one as a single remote
	// operation. Concurrent callers must each be counted.
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
}

// LikeRepository owns the like relationship rows and the cached
// likesCount aggregate on the video they reference.
type LikeRepository interface {
	// Toggle atomically flips the like state for (videoID, userID) and
	// adjusts the video's likesCount, returning the resulting state and
	// the authoritative new count.
	Toggle(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.LikeResult, error)

	// Exists reports whether an active like exists for the pair.
	Exists(ctx context.Context, videoID, userID primitive.ObjectID) (bool, error)

	// CountByVideo counts active likes for a video.
	CountByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error)

	// DeleteByVideo removes all like rows for a video, so they never
	// outlive the video they reference.
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

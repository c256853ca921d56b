package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"

	"vidvault/video-app/internal/domain"
	"vidvault/video-app/internal/repository"
	"vidvault/video-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidMediaKind       = errors.New("unsupported media kind: a video file is required")
	ErrAuthenticationRequired = errors.New("authentication required for this action")
	ErrNotAuthorized          = errors.New("access denied: only the owner may modify this video")
	ErrVideoNotFound          = errors.New("video not found")
	ErrValidationFailed       = errors.New("video validation failed")
)

// OrphanedAssetError reports an upload that wrote its asset but failed to
// insert the metadata record. The object key is carried so a later sweep
// can reclaim the orphan; the pipeline itself never retries.
type OrphanedAssetError struct {
	ObjectKey string
	Err       error
}

func (e *OrphanedAssetError) Error() string {
	return fmt.Sprintf("metadata write failed, asset %q is orphaned: %v", e.ObjectKey, e.Err)
}

func (e *OrphanedAssetError) Unwrap() error { return e.Err }

// DeletePartialFailureError reports a delete whose asset removal failed.
// The metadata record is intentionally left in place so the delete can be
// retried safely.
type DeletePartialFailureError struct {
	VideoID   string
	ObjectKey string
	Err       error
}

func (e *DeletePartialFailureError) Error() string {
	return fmt.Sprintf("asset delete failed for video %s, record retained: %v", e.VideoID, e.Err)
}

func (e *DeletePartialFailureError) Unwrap() error { return e.Err }

// DefaultTitle is used when an upload arrives with a blank title.
const DefaultTitle = "Untitled Video"

// ProgressFunc receives monotonic upload progress percentages for UI
// feedback. It is advisory only.
type ProgressFunc func(percent int)

// UploadInput carries everything the publishing pipeline needs for one upload.
type UploadInput struct {
	OwnerID      primitive.ObjectID
	FileName     string // original filename; its extension is kept on the object key
	ContentType  string
	Data         []byte
	Title        string
	Description  string
	Visibility   domain.Visibility
	ThumbnailURL string
	Progress     ProgressFunc // optional
}

// EditInput carries a partial metadata update. Nil fields are left unchanged.
type EditInput struct {
	Title       *string
	Description *string
	Visibility  *domain.Visibility
}

// --- Service Interface ---
type VideoService interface {
	// Publishing pipeline
	Upload(ctx context.Context, input UploadInput) (*domain.Video, error)
	Edit(ctx context.Context, videoID, requesterID primitive.ObjectID, input EditInput) (*domain.Video, error)
	Delete(ctx context.Context, videoID, requesterID primitive.ObjectID) error

	// Catalog
	Get(ctx context.Context, videoID, viewerID primitive.ObjectID) (*domain.Video, error)
	List(ctx context.Context, query repository.CatalogQuery) ([]domain.Video, error)
	PlaybackURL(ctx context.Context, video *domain.Video) (string, error)

	// Engagement
	IncrementView(ctx context.Context, videoID primitive.ObjectID)
	ToggleLike(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.LikeResult, error)
	IsLiked(ctx context.Context, videoID, userID primitive.ObjectID) (bool, error)
}

// --- Service Implementation ---

// videoService implements the VideoService interface.
type videoService struct {
	videoRepo   repository.VideoRepository
	likeRepo    repository.LikeRepository
	fileStorage storage.FileStorage
}

// NewVideoService creates a new instance of videoService.
func NewVideoService(
	videoRepo repository.VideoRepository,
	likeRepo repository.LikeRepository,
	fileStorage storage.FileStorage,
) VideoService {
	return &videoService{
		videoRepo:   videoRepo,
		likeRepo:    likeRepo,
		fileStorage: fileStorage,
	}
}

// Upload runs the two-step publishing saga: asset write, then metadata
// insert. A failed asset write aborts cleanly; a failed metadata insert
// after a successful asset write is reported as an OrphanedAssetError so
// the object key is never silently lost.
func (s *videoService) Upload(ctx context.Context, input UploadInput) (*domain.Video, error) {
	if input.OwnerID == primitive.NilObjectID {
		return nil, ErrAuthenticationRequired
	}
	if !strings.HasPrefix(input.ContentType, "video/") {
		return nil, ErrInvalidMediaKind
	}
	if len(input.Data) == 0 {
		return nil, ErrValidationFailed
	}

	visibility := input.Visibility
	if !visibility.Valid() {
		visibility = domain.VisibilityPrivate
	}

	report := input.Progress
	if report == nil {
		report = func(int) {}
	}
	report(10)

	objectKey := buildObjectKey(input.OwnerID, input.FileName, input.ContentType)

	// Step 1: asset write. On failure no metadata exists, nothing to undo.
	if err := s.fileStorage.PutObject(ctx, objectKey, input.Data, input.ContentType); err != nil {
		return nil, fmt.Errorf("asset write failed: %w", err)
	}
	report(60)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = DefaultTitle
	}

	thumbnailURL := input.ThumbnailURL
	if thumbnailURL == "" {
		// Placeholder image seeded by the object name until real
		// thumbnails are supplied by the client.
		thumbnailURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/450", path.Base(objectKey))
	}

	video := &domain.Video{
		OwnerID:      input.OwnerID,
		Title:        title,
		Description:  input.Description,
		AssetPath:    objectKey,
		ThumbnailURL: thumbnailURL,
		Visibility:   visibility,
		Views:        0,
		LikesCount:   0,
	}

	// Step 2: metadata insert.
	if _, err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, &OrphanedAssetError{ObjectKey: objectKey, Err: err}
	}
	report(100)

	return video, nil
}

// buildObjectKey generates a collision-free, owner-scoped object key,
// keeping the original file extension when there is one.
func buildObjectKey(ownerID primitive.ObjectID, fileName, contentType string) string {
	ext := strings.TrimPrefix(path.Ext(fileName), ".")
	if ext == "" {
		// Fall back to the media subtype, e.g. video/mp4 -> mp4
		if i := strings.Index(contentType, "/"); i >= 0 {
			ext = contentType[i+1:]
		}
	}
	key := fmt.Sprintf("%s/%s", ownerID.Hex(), uuid.NewString())
	if ext != "" {
		key = key + "." + ext
	}
	return key
}

// Edit applies a partial metadata update. Only the owner may edit, and
// the asset is never touched.
func (s *videoService) Edit(ctx context.Context, videoID, requesterID primitive.ObjectID, input EditInput) (*domain.Video, error) {
	if requesterID == primitive.NilObjectID {
		return nil, ErrAuthenticationRequired
	}

	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if !video.IsOwnedBy(requesterID) {
		return nil, ErrNotAuthorized
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrValidationFailed
		}
		video.Title = title
	}
	if input.Description != nil {
		video.Description = *input.Description
	}
	if input.Visibility != nil {
		if !input.Visibility.Valid() {
			return nil, ErrValidationFailed
		}
		video.Visibility = *input.Visibility
	}

	if err := s.videoRepo.Update(ctx, video); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	return video, nil
}

// Delete removes the asset first, then the record. If the asset delete
// fails the record is kept so the operation stays retryable; the caller
// gets a DeletePartialFailureError rather than a generic failure.
func (s *videoService) Delete(ctx context.Context, videoID, requesterID primitive.ObjectID) error {
	if requesterID == primitive.NilObjectID {
		return ErrAuthenticationRequired
	}

	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}

	if !video.IsOwnedBy(requesterID) {
		return ErrNotAuthorized
	}

	if err := s.fileStorage.DeleteObject(ctx, video.AssetPath); err != nil {
		return &DeletePartialFailureError{
			VideoID:   videoID.Hex(),
			ObjectKey: video.AssetPath,
			Err:       err,
		}
	}

	// The ownership filter in the repository makes this a no-op for
	// anyone but the owner, even if the check above raced.
	if err := s.videoRepo.Delete(ctx, videoID, requesterID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}

	// Like rows must not outlive their video. The record is already gone
	// at this point, so a cleanup failure is logged rather than surfaced:
	// the delete itself succeeded and stray rows are invisible to reads.
	if err := s.likeRepo.DeleteByVideo(ctx, videoID); err != nil {
		log.Printf("WARN: failed to remove like rows for deleted video %s: %v", videoID.Hex(), err)
	}

	return nil
}

// Get fetches a single video within the viewer's visible scope: private
// videos resolve only for their owner and read as not-found to anyone else.
func (s *videoService) Get(ctx context.Context, videoID, viewerID primitive.ObjectID) (*domain.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if video.Visibility != domain.VisibilityPublic && !video.IsOwnedBy(viewerID) {
		return nil, ErrVideoNotFound
	}

	return video, nil
}

// List returns the catalog slice for a query. The result is recomputed
// from current state on every call; an empty slice is a valid outcome.
func (s *videoService) List(ctx context.Context, query repository.CatalogQuery) ([]domain.Video, error) {
	switch query.Scope {
	case repository.ScopePersonal:
		if query.OwnerID == primitive.NilObjectID {
			return nil, ErrAuthenticationRequired
		}
	case repository.ScopeProfile:
		if query.OwnerID == primitive.NilObjectID {
			return nil, ErrValidationFailed
		}
	case repository.ScopeExplore:
		// no requirements
	default:
		return nil, ErrValidationFailed
	}

	return s.videoRepo.List(ctx, query)
}

// PlaybackURL resolves where the asset can be fetched from: the stable
// public URL for public videos, a short-lived presigned URL otherwise.
func (s *videoService) PlaybackURL(ctx context.Context, video *domain.Video) (string, error) {
	if video.Visibility == domain.VisibilityPublic {
		return s.fileStorage.PublicURL(video.AssetPath), nil
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, video.AssetPath, storage.DefaultPresignedURLExpiry)
}

// IncrementView counts a playback. Best effort: the increment is a single
// atomic operation on the store, and failures are logged, never surfaced,
// so a flaky counter can't block playback.
func (s *videoService) IncrementView(ctx context.Context, videoID primitive.ObjectID) {
	if err := s.videoRepo.IncrementViews(ctx, videoID); err != nil {
		log.Printf("WARN: view increment failed for video %s: %v", videoID.Hex(), err)
	}
}

// ToggleLike flips the caller's like on a video and returns the resulting
// state with the authoritative count. Anonymous callers are rejected
// because the action is user-attributable.
func (s *videoService) ToggleLike(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.LikeResult, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrAuthenticationRequired
	}

	result, err := s.likeRepo.Toggle(ctx, videoID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return result, nil
}

// IsLiked reports whether the user currently likes the video.
func (s *videoService) IsLiked(ctx context.Context, videoID, userID primitive.ObjectID) (bool, error) {
	if userID == primitive.NilObjectID {
		return false, ErrAuthenticationRequired
	}
	return s.likeRepo.Exists(ctx, videoID, userID)
}

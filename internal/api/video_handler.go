package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"vidvault/video-app/internal/domain"
	"vidvault/video-app/internal/repository"
	"vidvault/video-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Uploads are buffered in memory before the asset write; cap them.
const maxUploadBytes = 512 << 20 // 512 MiB

// VideoHandler holds the video service dependency.
type VideoHandler struct {
	videoService service.VideoService
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(videoService service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// --- DTOs for API (Data Transfer Objects) ---

// VideoResponse is the DTO for returning video details.
type VideoResponse struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"ownerId"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	Visibility   domain.Visibility `json:"visibility"`
	Views        int64             `json:"views"`
	LikesCount   int64             `json:"likesCount"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// VideoDetailResponse adds the resolved playback location.
type VideoDetailResponse struct {
	VideoResponse
	PlaybackURL string `json:"playbackUrl"`
}

// UpdateVideoRequest defines the partial-update JSON for editing a video.
// Absent fields are left unchanged.
type UpdateVideoRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Visibility  *domain.Visibility `json:"visibility"`
}

// MapVideoToResponse converts a domain.Video to VideoResponse DTO.
func MapVideoToResponse(v *domain.Video) VideoResponse {
	if v == nil {
		return VideoResponse{}
	}
	return VideoResponse{
		ID:           v.ID.Hex(),
		OwnerID:      v.OwnerID.Hex(),
		Title:        v.Title,
		Description:  v.Description,
		ThumbnailURL: v.ThumbnailURL,
		Visibility:   v.Visibility,
		Views:        v.Views,
		LikesCount:   v.LikesCount,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

// MapVideosToResponse converts a slice of domain.Video to response DTOs.
func MapVideosToResponse(videos []domain.Video) []VideoResponse {
	responses := make([]VideoResponse, len(videos))
	for i, v := range videos {
		responses[i] = MapVideoToResponse(&v)
	}
	return responses
}

// --- Helpers ---

// viewerIDFromContext returns the authenticated viewer's id, or the nil
// ObjectID when the request is anonymous.
func viewerIDFromContext(c *gin.Context) primitive.ObjectID {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		return primitive.NilObjectID
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// requireUserID resolves the authenticated user id or aborts with 401.
func requireUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// videoIDFromParam parses the :id path parameter or aborts with 400.
func videoIDFromParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid video ID format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseSort(raw string) repository.CatalogSort {
	switch repository.CatalogSort(raw) {
	case repository.SortViews:
		return repository.SortViews
	case repository.SortLikes:
		return repository.SortLikes
	default:
		return repository.SortRecency
	}
}

// respondServiceError maps service errors to HTTP responses. The two
// partial-failure states get distinct error codes so clients and
// reconciliation tooling can tell them from total failures.
func respondServiceError(c *gin.Context, err error) {
	var orphaned *service.OrphanedAssetError
	var partial *service.DeletePartialFailureError

	switch {
	case errors.Is(err, service.ErrInvalidMediaKind):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAuthenticationRequired):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrVideoNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &orphaned):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error": "upload stored the file but failed to record it; the upload was not published",
			"code":  "orphaned_asset",
		})
	case errors.As(err, &partial):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error": "could not remove the video file; the video was kept and the delete can be retried",
			"code":  "delete_partial_failure",
		})
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}

// --- Handler Methods ---

// UploadVideo handles the multipart upload: the binary asset plus its
// metadata fields in one request.
func (h *VideoHandler) UploadVideo(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "A video file is required in the 'file' field.")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		abortWithError(c, http.StatusRequestEntityTooLarge, "Video file is too large.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}

	video, err := h.videoService.Upload(c.Request.Context(), service.UploadInput{
		OwnerID:      ownerID,
		FileName:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Data:         data,
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Visibility:   domain.Visibility(c.PostForm("visibility")),
		ThumbnailURL: c.PostForm("thumbnailUrl"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapVideoToResponse(video))
}

// GetVideo returns one video with its playback URL, scoped to the
// viewer's visibility.
func (h *VideoHandler) GetVideo(c *gin.Context) {
	videoID, ok := videoIDFromParam(c)
	if !ok {
		return
	}

	video, err := h.videoService.Get(c.Request.Context(), videoID, viewerIDFromContext(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	playbackURL, err := h.videoService.PlaybackURL(c.Request.Context(), video)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve playback URL.")
		return
	}

	c.JSON(http.StatusOK, VideoDetailResponse{
		VideoResponse: MapVideoToResponse(video),
		PlaybackURL:   playbackURL,
	})
}

// ListExplore lists all public videos.
func (h *VideoHandler) ListExplore(c *gin.Context) {
	h.list(c, repository.CatalogQuery{
		Scope:  repository.ScopeExplore,
		Search: c.Query("search"),
		Sort:   parseSort(c.Query("sort")),
	})
}

// ListMyVideos lists everything the authenticated user owns, regardless
// of visibility.
func (h *VideoHandler) ListMyVideos(c *gin.Context) {
	ownerID, ok := requireUserID(c)
	if !ok {
		return
	}
	h.list(c, repository.CatalogQuery{
		Scope:   repository.ScopePersonal,
		OwnerID: ownerID,
		Search:  c.Query("search"),
		Sort:    parseSort(c.Query("sort")),
	})
}

// ListUserVideos lists one creator's public videos.
func (h *VideoHandler) ListUserVideos(c *gin.Context) {
	ownerID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}
	h.list(c, repository.CatalogQuery{
		Scope:   repository.ScopeProfile,
		OwnerID: ownerID,
		Search:  c.Query("search"),
		Sort:    parseSort(c.Query("sort")),
	})
}

func (h *VideoHandler) list(c *gin.Context, query repository.CatalogQuery) {
	videos, err := h.videoService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapVideosToResponse(videos))
}

// UpdateVideo applies a partial metadata update for the owner.
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	videoID, ok := videoIDFromParam(c)
	if !ok {
		return
	}
	requesterID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	video, err := h.videoService.Edit(c.Request.Context(), videoID, requesterID, service.EditInput{
		Title:       req.Title,
		Description: req.Description,
		Visibility:  req.Visibility,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapVideoToResponse(video))
}

// DeleteVideo removes a video and its asset for the owner.
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	videoID, ok := videoIDFromParam(c)
	if !ok {
		return
	}
	requesterID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), videoID, requesterID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RecordView registers a playback. Always answers 204: counting is best
// effort and must never get in the way of playback.
func (h *VideoHandler) RecordView(c *gin.Context) {
	videoID, ok := videoIDFromParam(c)
	if !ok {
		return
	}

	h.videoService.IncrementView(c.Request.Context(), videoID)
	c.Status(http.StatusNoContent)
}

// ToggleLike flips the caller's like and returns the authoritative state.
func (h *VideoHandler) ToggleLike(c *gin.Context) {
	videoID, ok := videoIDFromParam(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	result, err := h.videoService.ToggleLike(c.Request.Context(), videoID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLikeStatus reports whether the caller currently likes the video.
func (h *VideoHandler) GetLikeStatus(c *gin.Context) {
	videoID, ok := videoIDFromParam(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	liked, err := h.videoService.IsLiked(c.Request.Context(), videoID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

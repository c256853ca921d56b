package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidvault/video-app/internal/domain"
	"vidvault/video-app/internal/repository"
	"vidvault/video-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTSecret = "unit-test-secret"

// stubVideoService lets each test script the service behavior.
type stubVideoService struct {
	uploadFn    func(ctx context.Context, input service.UploadInput) (*domain.Video, error)
	toggleFn    func(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.LikeResult, error)
	listFn      func(ctx context.Context, query repository.CatalogQuery) ([]domain.Video, error)
	viewCalls   int
	viewFailure bool
}

func (s *stubVideoService) Upload(ctx context.Context, input service.UploadInput) (*domain.Video, error) {
	if s.uploadFn != nil {
		return s.uploadFn(ctx, input)
	}
	return nil, errors.New("not scripted")
}

func (s *stubVideoService) Edit(context.Context, primitive.ObjectID, primitive.ObjectID, service.EditInput) (*domain.Video, error) {
	return nil, errors.New("not scripted")
}

func (s *stubVideoService) Delete(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return errors.New("not scripted")
}

func (s *stubVideoService) Get(context.Context, primitive.ObjectID, primitive.ObjectID) (*domain.Video, error) {
	return nil, service.ErrVideoNotFound
}

func (s *stubVideoService) List(ctx context.Context, query repository.CatalogQuery) ([]domain.Video, error) {
	if s.listFn != nil {
		return s.listFn(ctx, query)
	}
	return []domain.Video{}, nil
}

func (s *stubVideoService) PlaybackURL(context.Context, *domain.Video) (string, error) {
	return "https://cdn.test/clip", nil
}

func (s *stubVideoService) IncrementView(context.Context, primitive.ObjectID) {
	s.viewCalls++
	// A failing counter is invisible to the caller; nothing to return.
	_ = s.viewFailure
}

func (s *stubVideoService) ToggleLike(ctx context.Context, videoID, userID primitive.ObjectID) (*domain.LikeResult, error) {
	if s.toggleFn != nil {
		return s.toggleFn(ctx, videoID, userID)
	}
	return nil, errors.New("not scripted")
}

func (s *stubVideoService) IsLiked(context.Context, primitive.ObjectID, primitive.ObjectID) (bool, error) {
	return false, nil
}

// stubAuthService satisfies the router wiring; auth endpoints are not
// under test here.
type stubAuthService struct{}

func (stubAuthService) Register(context.Context, string, string, string) (*domain.User, error) {
	return nil, errors.New("not scripted")
}

func (stubAuthService) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, errors.New("not scripted")
}

func newTestRouter(videoSvc service.VideoService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, testJWTSecret, stubAuthService{}, videoSvc)
	return router
}

func signedToken(t *testing.T, userID primitive.ObjectID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid": userID.Hex(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func TestToggleLikeRequiresAuthentication(t *testing.T) {
	router := newTestRouter(&stubVideoService{})
	videoID := primitive.NewObjectID()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/"+videoID.Hex()+"/like", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous like: got status %d, want 401", rec.Code)
	}
}

func TestToggleLikeReturnsAuthoritativeCount(t *testing.T) {
	userID := primitive.NewObjectID()
	videoID := primitive.NewObjectID()

	svc := &stubVideoService{
		toggleFn: func(_ context.Context, gotVideo, gotUser primitive.ObjectID) (*domain.LikeResult, error) {
			if gotVideo != videoID || gotUser != userID {
				t.Errorf("toggle called with (%s,%s)", gotVideo.Hex(), gotUser.Hex())
			}
			return &domain.LikeResult{Liked: true, LikesCount: 7}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/"+videoID.Hex()+"/like", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, userID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	var body domain.LikeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !body.Liked || body.LikesCount != 7 {
		t.Errorf("got %+v, want liked=true count=7", body)
	}
}

func TestRecordViewAlwaysSucceeds(t *testing.T) {
	svc := &stubVideoService{viewFailure: true}
	router := newTestRouter(svc)
	videoID := primitive.NewObjectID()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/"+videoID.Hex()+"/views", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("view ping: got status %d, want 204", rec.Code)
	}
	if svc.viewCalls != 1 {
		t.Errorf("view increment called %d times, want 1", svc.viewCalls)
	}
}

func TestUploadRejectsNonVideoContentType(t *testing.T) {
	svc := &stubVideoService{
		uploadFn: func(_ context.Context, input service.UploadInput) (*domain.Video, error) {
			return nil, service.ErrInvalidMediaKind
		},
	}
	router := newTestRouter(svc)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, _ := w.CreateFormFile("file", "notes.txt")
	_, _ = part.Write([]byte("not a video"))
	_ = w.WriteField("title", "Sneaky upload")
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+signedToken(t, primitive.NewObjectID()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-video upload: got status %d, want 400", rec.Code)
	}
}

func TestUploadRequiresAuthentication(t *testing.T) {
	router := newTestRouter(&stubVideoService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous upload: got status %d, want 401", rec.Code)
	}
}

func TestExploreListIsPublic(t *testing.T) {
	owner := primitive.NewObjectID()
	svc := &stubVideoService{
		listFn: func(_ context.Context, query repository.CatalogQuery) ([]domain.Video, error) {
			if query.Scope != repository.ScopeExplore {
				t.Errorf("got scope %q, want explore", query.Scope)
			}
			if query.Search != "beach" {
				t.Errorf("got search %q, want beach", query.Search)
			}
			return []domain.Video{{
				ID:         primitive.NewObjectID(),
				OwnerID:    owner,
				Title:      "Beach Day",
				Visibility: domain.VisibilityPublic,
			}}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?search=beach", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	var body []VideoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(body) != 1 || body[0].Title != "Beach Day" {
		t.Errorf("unexpected listing: %+v", body)
	}
}

func TestDeletePartialFailureHasDistinctCode(t *testing.T) {
	userID := primitive.NewObjectID()
	videoID := primitive.NewObjectID()

	gin.SetMode(gin.TestMode)
	svc := &stubVideoService{}
	router := gin.New()
	handler := NewVideoHandler(&deleteFailingService{stubVideoService: svc})
	router.DELETE("/api/v1/videos/:id", AuthMiddleware(testJWTSecret), handler.DeleteVideo)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+videoID.Hex(), nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, userID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("got status %d, want 502", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body["code"] != "delete_partial_failure" {
		t.Errorf("got code %q, want delete_partial_failure", body["code"])
	}
}

type deleteFailingService struct {
	*stubVideoService
}

func (s *deleteFailingService) Delete(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return &service.DeletePartialFailureError{
		VideoID:   "whatever",
		ObjectKey: "owner/key.mp4",
		Err:       errors.New("storage down"),
	}
}

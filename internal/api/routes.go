package api

import (
	"net/http"

	"vidvault/video-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	videoService service.VideoService,
) {
	authHandler := NewAuthHandler(authService)
	videoHandler := NewVideoHandler(videoService)

	authMiddleware := AuthMiddleware(jwtSecret)
	optionalAuth := OptionalAuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// --- Public catalog (viewer identity optional) ---
		apiV1.GET("/videos", optionalAuth, videoHandler.ListExplore)
		apiV1.GET("/videos/:id", optionalAuth, videoHandler.GetVideo)
		apiV1.GET("/users/:userId/videos", optionalAuth, videoHandler.ListUserVideos)

		// View counting is anonymous and best effort.
		apiV1.POST("/videos/:id/views", videoHandler.RecordView)
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Publishing ---
		protected.POST("/videos", videoHandler.UploadVideo)
		protected.PATCH("/videos/:id", videoHandler.UpdateVideo)
		protected.DELETE("/videos/:id", videoHandler.DeleteVideo)

		// --- Personal catalog ---
		protected.GET("/me/videos", videoHandler.ListMyVideos)

		// --- Engagement (user-attributable, so identity is required) ---
		protected.POST("/videos/:id/like", videoHandler.ToggleLike)
		protected.GET("/videos/:id/like", videoHandler.GetLikeStatus)
	}
}

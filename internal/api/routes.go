package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler, jwtSecret string) {
	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1", AuthMiddleware(jwtSecret))
	{
		v1.GET("/welds", handler.ListWelds)
		v1.POST("/welds", handler.CreateWeld)
		v1.GET("/welds/:id", handler.GetWeld)
		v1.PUT("/welds/:id", handler.UpdateWeld)
		v1.DELETE("/welds/:id", handler.DeleteWeld)

		v1.GET("/welds/:id/photos", handler.ListPhotos)
		v1.POST("/welds/:id/photos", handler.UploadPhoto)
		v1.GET("/photos/:id/content", handler.GetPhotoContent)
		v1.DELETE("/photos/:id", handler.DeletePhoto)

		v1.POST("/imports", handler.UploadImport)
		v1.GET("/imports/:id", handler.GetImport)
	}
}

// NewRouter builds the gin engine with the shared middleware stack.
func NewRouter(handler *Handler, allowedOrigins []string, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.Use(LoggingMiddleware())
	router.Use(CORSMiddleware(allowedOrigins))

	SetupRoutes(router, handler, jwtSecret)
	return router
}

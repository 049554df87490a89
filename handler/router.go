package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfqa-be/middleware"
)

type Handlers struct {
	Cors     *CorsHandler
	Health   *HealthHandler
	Upload   *UploadHandler
	Document *DocumentHandler
	Query    *QueryHandler
}

func SetupRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery, middleware.RequestLogger, h.Cors.CorsMiddleware)

	router.GET("/health", h.Health.HandleHealth)
	router.GET("/ws/query", h.Query.HandleWebSocket)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/query", h.Query.HandleQuery)

		documents := apiV1.Group("/documents")
		documents.POST("/upload", h.Upload.UploadDocumentHandler)
		documents.GET("", h.Document.HandleList)
		documents.GET("/:id/status", h.Document.HandleStatus)
		documents.GET("/:id/chunks", h.Document.HandleChunks)
		documents.GET("/:id/file", h.Document.ServeDocument)
		documents.DELETE("/:id", h.Document.HandleDelete)
	}
	return router
}

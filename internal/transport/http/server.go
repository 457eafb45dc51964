package http

import (
	"github.com/gin-gonic/gin"

	"docuchat/internal/bootstrap"
	"docuchat/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	chatHandler := handler.NewChatHandler(app.Chat)
	uploadHandler := handler.NewUploadHandler(app.Ingest, app.Config.Upload.MaxFileSizeMB)

	api := router.Group("/api")
	api.POST("/chat/sessions", chatHandler.CreateSession)
	api.DELETE("/chat/sessions/:sessionId", chatHandler.ClearSession)
	api.POST("/chat/message", chatHandler.SendMessage)
	api.POST("/upload", uploadHandler.Upload)

	if app.Catalog != nil {
		documentHandler := handler.NewDocumentHandler(app.Catalog)
		api.GET("/documents", documentHandler.List)
	}

	return router
}

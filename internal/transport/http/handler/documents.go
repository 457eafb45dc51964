package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/catalog"
	"docuchat/internal/transport/http/response"
)

type DocumentHandler struct {
	repo *catalog.Repository
}

func NewDocumentHandler(repo *catalog.Repository) *DocumentHandler {
	return &DocumentHandler{repo: repo}
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.repo.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list documents")
		return
	}
	response.Success(c, docs)
}

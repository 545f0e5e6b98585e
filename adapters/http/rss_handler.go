package http

import (
	"github.com/gin-gonic/gin"

	projectUC "github.com/khoahotran/folio/internal/application/usecase/project"
	"github.com/khoahotran/folio/pkg/logger"
)

type RSSHandler struct {
	rssUseCase *projectUC.RSSUseCase
	logger     logger.Logger
}

func NewRSSHandler(uc *projectUC.RSSUseCase, log logger.Logger) *RSSHandler {
	return &RSSHandler{
		rssUseCase: uc,
		logger:     log,
	}
}

func (h *RSSHandler) GenerateRSS(c *gin.Context) {
	feed := h.rssUseCase.Execute()

	c.Header("Content-Type", "application/xml; charset=utf-8")
	if err := feed.WriteRss(c.Writer); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err)
	}
}

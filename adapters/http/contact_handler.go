package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	contactUC "github.com/khoahotran/folio/internal/application/usecase/contact"
	"github.com/khoahotran/folio/pkg/apperror"
)

type ContactService interface {
	Execute(ctx context.Context, input contactUC.SubmitContactInput) error
}

type ContactHandler struct {
	submitUC ContactService
}

func NewContactHandler(uc ContactService) *ContactHandler {
	return &ContactHandler{submitUC: uc}
}

// Submit accepts the fields as JSON or as a form post.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid contact form", err))
		return
	}

	err := h.submitUC.Execute(c.Request.Context(), contactUC.SubmitContactInput{
		ClientIP: c.ClientIP(),
		Name:     req.Name,
		Email:    req.Email,
		Subject:  req.Subject,
		Message:  req.Message,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Message sent"})
}

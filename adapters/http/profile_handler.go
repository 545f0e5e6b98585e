package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/folio/internal/application/usecase/profile"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

type ProfileService interface {
	ExecuteGetProfile(ctx context.Context) (*profileUC.GetProfileOutput, error)
	ExecuteUpdateProfile(ctx context.Context, input profileUC.UpdateProfileInput) (*profileUC.UpdateProfileOutput, error)
}

type ProfileHandler struct {
	profileUseCase ProfileService
	logger         logger.Logger
}

func NewProfileHandler(uc ProfileService, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: uc,
		logger:         log,
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	output, err := h.profileUseCase.ExecuteGetProfile(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": output.Profile, "exists": output.Exists})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for profile update", err))
		return
	}

	output, err := h.profileUseCase.ExecuteUpdateProfile(c.Request.Context(), profileUC.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Headline:    req.Headline,
		AboutText:   req.AboutText,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": output.Profile, "exists": true})
}

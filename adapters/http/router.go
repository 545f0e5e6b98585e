package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/folio/internal/application/guard"
	"github.com/khoahotran/folio/internal/domain/certification"
	"github.com/khoahotran/folio/internal/domain/project"
	"github.com/khoahotran/folio/internal/domain/skill"
	"github.com/khoahotran/folio/pkg/logger"
	"github.com/khoahotran/folio/pkg/metrics"
)

type Handlers struct {
	Auth           *AuthHandler
	Public         *PublicHandler
	Profile        *ProfileHandler
	Projects       *ContentHandler[project.Project]
	Skills         *ContentHandler[skill.Skill]
	Certifications *ContentHandler[certification.Certification]
	Media          *MediaHandler
	Contact        *ContactHandler
	RSS            *RSSHandler
	Realtime       *RealtimeHandler
}

func NewRouter(h Handlers, sessions guard.SessionSource, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		CorrelationIDMiddleware(),
		RequestLogger(log),
		metrics.GinMiddleware(),
		ErrorMiddleware(log),
	)

	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	{
		public := api.Group("/")
		{
			public.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
			public.GET("/profile", h.Public.GetProfile)
			public.GET("/projects", h.Public.ListProjects)
			public.GET("/projects/rss", h.RSS.GenerateRSS)
			public.GET("/projects/:id", h.Public.GetProject)
			public.GET("/skills", h.Public.ListSkills)
			public.GET("/certifications", h.Public.ListCertifications)
			public.POST("/contact", h.Contact.Submit)
			public.GET("/realtime", h.Realtime.Stream)
		}

		admin := api.Group("/admin")
		{
			adminAuth := admin.Group("/auth")
			adminAuth.POST("/login", h.Auth.Login)
			adminAuth.POST("/logout", h.Auth.Logout)
			adminAuth.GET("/session", h.Auth.Session)

			adminPrivate := admin.Group("/")
			adminPrivate.Use(AuthMiddleware(sessions, log))
			{
				adminPrivate.GET("/profile", h.Profile.GetProfile)
				adminPrivate.PUT("/profile", h.Profile.UpdateProfile)

				h.Projects.Register(adminPrivate)
				h.Skills.Register(adminPrivate)
				h.Certifications.Register(adminPrivate)

				adminPrivate.POST("/media", h.Media.UploadImage)
				adminPrivate.GET("/live", h.Realtime.Live)
			}
		}
	}
	return router
}

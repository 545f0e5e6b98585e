package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/folio/internal/domain/certification"
	"github.com/khoahotran/folio/internal/domain/profile"
	"github.com/khoahotran/folio/internal/domain/project"
	"github.com/khoahotran/folio/internal/domain/skill"
	"github.com/khoahotran/folio/pkg/apperror"
)

// RowSource is a public read model, normally a *view.View.
type RowSource[T any] interface {
	Rows() []T
	UsingFallback() bool
	RefreshedAt() time.Time
}

// PublicHandler serves the visitor-facing content straight from the
// in-memory views. It never queries the store.
type PublicHandler struct {
	profiles       RowSource[profile.Profile]
	projects       RowSource[project.Project]
	skills         RowSource[skill.Skill]
	certifications RowSource[certification.Certification]
}

func NewPublicHandler(
	profiles RowSource[profile.Profile],
	projects RowSource[project.Project],
	skills RowSource[skill.Skill],
	certifications RowSource[certification.Certification],
) *PublicHandler {
	return &PublicHandler{
		profiles:       profiles,
		projects:       projects,
		skills:         skills,
		certifications: certifications,
	}
}

func listResponse[T any](src RowSource[T], items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Fallback: src.UsingFallback(), RefreshedAt: src.RefreshedAt()}
}

func (h *PublicHandler) GetProfile(c *gin.Context) {
	p := profile.New()
	if rows := h.profiles.Rows(); len(rows) > 0 {
		p = rows[0]
	}
	c.JSON(http.StatusOK, gin.H{"profile": p, "fallback": h.profiles.UsingFallback()})
}

// ListProjects accepts ?featured=true to keep featured projects only.
func (h *PublicHandler) ListProjects(c *gin.Context) {
	rows := h.projects.Rows()
	if featured, _ := strconv.ParseBool(c.Query("featured")); featured {
		kept := rows[:0]
		for _, p := range rows {
			if p.IsFeatured {
				kept = append(kept, p)
			}
		}
		rows = kept
	}
	c.JSON(http.StatusOK, listResponse(h.projects, rows))
}

func (h *PublicHandler) GetProject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	for _, p := range h.projects.Rows() {
		if p.ID == id {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	c.Error(apperror.NewNotFound("Project", c.Param("id")))
}

// ListSkills accepts ?type=core|tech_stack.
func (h *PublicHandler) ListSkills(c *gin.Context) {
	rows := h.skills.Rows()
	if raw := c.Query("type"); raw != "" {
		t, err := skill.ParseType(raw)
		if err != nil {
			c.Error(apperror.NewValidation(err.Error()))
			return
		}
		kept := rows[:0]
		for _, s := range rows {
			if s.Type == t {
				kept = append(kept, s)
			}
		}
		rows = kept
	}
	c.JSON(http.StatusOK, listResponse(h.skills, rows))
}

func (h *PublicHandler) ListCertifications(c *gin.Context) {
	c.JSON(http.StatusOK, listResponse(h.certifications, h.certifications.Rows()))
}

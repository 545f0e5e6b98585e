package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	contentUC "github.com/khoahotran/folio/internal/application/usecase/content"
	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/pkg/apperror"
)

type ContentService[T content.Record[T]] interface {
	Table() string
	List(ctx context.Context, input contentUC.ListInput) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, row T) (T, error)
	Update(ctx context.Context, id int64, row T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// ContentHandler serves admin CRUD for one content table. Filters names the
// query parameters passed through as equality filters on List.
type ContentHandler[T content.Record[T]] struct {
	svc     ContentService[T]
	filters []string
}

func NewContentHandler[T content.Record[T]](svc ContentService[T], filters ...string) *ContentHandler[T] {
	return &ContentHandler[T]{svc: svc, filters: filters}
}

// Register mounts the handler under /<table>.
func (h *ContentHandler[T]) Register(r gin.IRouter) {
	g := r.Group("/" + h.svc.Table())
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.NewInvalidInput("invalid id", err))
		return 0, false
	}
	return id, true
}

// filterValue passes "true" and "false" through as booleans so they compare
// against boolean columns.
func filterValue(v string) any {
	if v == "true" || v == "false" {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return v
}

func (h *ContentHandler[T]) List(c *gin.Context) {
	eq := map[string]any{}
	for _, f := range h.filters {
		if v, ok := c.GetQuery(f); ok {
			eq[f] = filterValue(v)
		}
	}
	rows, err := h.svc.List(c.Request.Context(), contentUC.ListInput{Eq: eq})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ContentHandler[T]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	row, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *ContentHandler[T]) Create(c *gin.Context) {
	var row T
	if err := c.ShouldBindJSON(&row); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	saved, err := h.svc.Create(c.Request.Context(), row)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *ContentHandler[T]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var row T
	if err := c.ShouldBindJSON(&row); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	saved, err := h.svc.Update(c.Request.Context(), id, row)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *ContentHandler[T]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

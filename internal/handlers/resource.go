package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theplant/adminquery"
)

// CRUDService is the shape shared by the entity services: M is the model, C
// the create input and U the partial update.
type CRUDService[M, C, U any] interface {
	Create(ctx context.Context, in C) (*M, error)
	Get(ctx context.Context, id int) (*M, error)
	Update(ctx context.Context, id int, in U) (*M, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, req adminquery.Request) (*adminquery.Page[M], error)
}

// Resource serves a CRUDService:
//
//	GET    /          list, filters from the query string
//	POST   /search    list, filters from a JSON body
//	POST   /          create
//	GET    /:id       get
//	PATCH  /:id       update
//	DELETE /:id       delete
type Resource[M, C, U any] struct {
	svc CRUDService[M, C, U]
}

func NewResource[M, C, U any](svc CRUDService[M, C, U]) *Resource[M, C, U] {
	return &Resource[M, C, U]{svc: svc}
}

func (h *Resource[M, C, U]) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("/search", h.Search)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *Resource[M, C, U]) List(c *gin.Context) {
	h.list(c, queryRequest(c))
}

func (h *Resource[M, C, U]) Search(c *gin.Context) {
	req, ok := bodyRequest(c)
	if !ok {
		return
	}
	h.list(c, req)
}

func (h *Resource[M, C, U]) list(c *gin.Context, req adminquery.Request) {
	page, err := h.svc.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Resource[M, C, U]) Create(c *gin.Context) {
	var in C
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Resource[M, C, U]) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Resource[M, C, U]) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in U
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Resource[M, C, U]) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Lookup serves a plain list of the records a form can reference, e.g. the
// structures an attribute may belong to.
func Lookup[M any](fetch func(ctx context.Context) ([]M, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := fetch(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/internal/features"
)

type FeatureService interface {
	Tables(ctx context.Context) ([]features.TableInfo, error)
	TableMetadata(ctx context.Context, table string) (*features.TableMetadata, error)
	Rows(ctx context.Context, table string, req adminquery.Request) (*adminquery.Page[map[string]any], error)
	Models() ([]features.Model, error)
	Model(name string) (*features.Model, error)
	Enums() []features.Enum
}

type FeatureHandler struct {
	svc FeatureService
}

func NewFeatureHandler(svc FeatureService) *FeatureHandler {
	return &FeatureHandler{svc: svc}
}

func (h *FeatureHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/tables", h.Tables)
	rg.GET("/tables/:table", h.TableMetadata)
	rg.GET("/tables/:table/rows", h.Rows)
	rg.POST("/tables/:table/rows/search", h.SearchRows)
	rg.GET("/models", h.Models)
	rg.GET("/models/:model", h.Model)
	rg.GET("/enums", h.Enums)
}

func (h *FeatureHandler) Tables(c *gin.Context) {
	tables, err := h.svc.Tables(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *FeatureHandler) TableMetadata(c *gin.Context) {
	meta, err := h.svc.TableMetadata(c.Request.Context(), c.Param("table"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *FeatureHandler) Rows(c *gin.Context) {
	h.rows(c, queryRequest(c))
}

func (h *FeatureHandler) SearchRows(c *gin.Context) {
	req, ok := bodyRequest(c)
	if !ok {
		return
	}
	h.rows(c, req)
}

func (h *FeatureHandler) rows(c *gin.Context, req adminquery.Request) {
	page, err := h.svc.Rows(c.Request.Context(), c.Param("table"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *FeatureHandler) Models(c *gin.Context) {
	all, err := h.svc.Models()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *FeatureHandler) Model(c *gin.Context) {
	m, err := h.svc.Model(c.Param("model"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *FeatureHandler) Enums(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Enums())
}

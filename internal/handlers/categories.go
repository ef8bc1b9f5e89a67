package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/internal/models"
	"github.com/theplant/adminquery/internal/services"
)

type CategoryService interface {
	Create(ctx context.Context, in services.CategoryInput) (*models.Category, error)
	Get(ctx context.Context, id int, includeLists bool) (*models.Category, error)
	Update(ctx context.Context, id int, in services.CategoryUpdate) (*models.Category, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, req adminquery.Request) (*adminquery.Page[models.Category], error)
}

type ListService interface {
	Create(ctx context.Context, categoryID int, in services.ListInput) (*models.List, error)
	Get(ctx context.Context, id int) (*models.List, error)
	Update(ctx context.Context, id int, in services.ListUpdate) (*models.List, error)
	Delete(ctx context.Context, id int) error
	ListForCategory(ctx context.Context, categoryID int, req adminquery.Request) (*adminquery.Page[models.List], error)
}

// CategoryHandler serves categories and the list items nested under them.
type CategoryHandler struct {
	categories CategoryService
	lists      ListService
}

func NewCategoryHandler(categories CategoryService, lists ListService) *CategoryHandler {
	return &CategoryHandler{categories: categories, lists: lists}
}

func (h *CategoryHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("/search", h.Search)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)

	rg.GET("/:id/lists", h.ListLists)
	rg.POST("/:id/lists/search", h.SearchLists)
	rg.POST("/:id/lists", h.CreateList)
	rg.GET("/lists/:listId", h.GetList)
	rg.PATCH("/lists/:listId", h.UpdateList)
	rg.DELETE("/lists/:listId", h.DeleteList)
}

func (h *CategoryHandler) List(c *gin.Context) {
	h.list(c, queryRequest(c))
}

func (h *CategoryHandler) Search(c *gin.Context) {
	req, ok := bodyRequest(c)
	if !ok {
		return
	}
	h.list(c, req)
}

func (h *CategoryHandler) list(c *gin.Context, req adminquery.Request) {
	page, err := h.categories.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.categories.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// Get accepts ?includeLists=true to embed the list items.
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	includeLists, err := strconv.ParseBool(c.DefaultQuery("includeLists", "false"))
	if err != nil {
		badRequest(c, "invalid includeLists")
		return
	}
	m, err := h.categories.Get(c.Request.Context(), id, includeLists)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.CategoryUpdate
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.categories.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CategoryHandler) ListLists(c *gin.Context) {
	h.listLists(c, queryRequest(c))
}

func (h *CategoryHandler) SearchLists(c *gin.Context) {
	req, ok := bodyRequest(c)
	if !ok {
		return
	}
	h.listLists(c, req)
}

func (h *CategoryHandler) listLists(c *gin.Context, req adminquery.Request) {
	categoryID, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, err := h.lists.ListForCategory(c.Request.Context(), categoryID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *CategoryHandler) CreateList(c *gin.Context) {
	categoryID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.ListInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.lists.Create(c.Request.Context(), categoryID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *CategoryHandler) GetList(c *gin.Context) {
	id, ok := paramID(c, "listId")
	if !ok {
		return
	}
	m, err := h.lists.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *CategoryHandler) UpdateList(c *gin.Context) {
	id, ok := paramID(c, "listId")
	if !ok {
		return
	}
	var in services.ListUpdate
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.lists.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *CategoryHandler) DeleteList(c *gin.Context) {
	id, ok := paramID(c, "listId")
	if !ok {
		return
	}
	if err := h.lists.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

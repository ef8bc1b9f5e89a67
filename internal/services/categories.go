package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/filterconfig"
	"github.com/theplant/adminquery/gormquery"
	"github.com/theplant/adminquery/internal/models"
)

type CategoryInput struct {
	Name   string  `json:"name" binding:"required,max=255"`
	Status *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

type CategoryUpdate struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=255"`
	Status *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

type CategoryService struct {
	*base
}

func categoryWriteError(name *string) func(err error) error {
	return func(err error) error {
		if errors.Is(err, gorm.ErrDuplicatedKey) && name != nil {
			return errors.Wrapf(ErrConflict, "category with name %q already exists", *name)
		}
		return writeError("category")(err)
	}
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	m := &models.Category{Name: in.Name, Status: in.Status}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, categoryWriteError(&in.Name)(err)
	}
	return m, nil
}

// Get loads a category, with its lists newest first when includeLists is set.
func (s *CategoryService) Get(ctx context.Context, id int, includeLists bool) (*models.Category, error) {
	var scopes []func(db *gorm.DB) *gorm.DB
	if includeLists {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Preload("Lists", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at DESC").Order("id")
			})
		})
	}
	return get[models.Category](ctx, s.db, "category", id, scopes...)
}

func (s *CategoryService) Update(ctx context.Context, id int, in CategoryUpdate) (*models.Category, error) {
	c := changes{}
	setIf(c, "name", in.Name)
	setIf(c, "status", in.Status)
	if err := update[models.Category](ctx, s.db, "category", id, c, categoryWriteError(in.Name)); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, false)
}

// Delete refuses to remove a category that still has list items.
func (s *CategoryService) Delete(ctx context.Context, id int) error {
	return remove[models.Category](ctx, s.db, "category", id, func(err error) error {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return errors.Wrapf(ErrConflict, "cannot delete category with ID %d as it has associated list items", id)
		}
		return writeError("category")(err)
	})
}

// List returns a page of categories, each with the number of its lists.
func (s *CategoryService) List(ctx context.Context, req adminquery.Request) (*adminquery.Page[models.Category], error) {
	return list[models.Category](ctx, s.base, filterconfig.Categories,
		gormquery.NewFinder[models.Category](s.db), req,
		adminquery.ProcessNodes(s.attachListCounts),
	)
}

type listCount struct {
	CategoryID int
	Lists      int
}

func (s *CategoryService) attachListCounts(ctx context.Context, nodes []models.Category) error {
	var rows []listCount
	ids := lo.Map(nodes, func(c models.Category, _ int) int { return c.ID })
	err := s.db.WithContext(ctx).Model(&models.List{}).
		Select("category_id, count(*) AS lists").
		Where("category_id IN ?", ids).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return errors.Wrap(err, "count lists")
	}

	counts := lo.SliceToMap(rows, func(r listCount) (int, int) {
		return r.CategoryID, r.Lists
	})
	for i := range nodes {
		nodes[i].Count = &models.CategoryCount{Lists: counts[nodes[i].ID]}
	}
	return nil
}

type ListInput struct {
	Item   string  `json:"item" binding:"required,max=500"`
	Status *string `json:"status" binding:"omitempty,oneof=active inactive completed"`
}

type ListUpdate struct {
	Item       *string `json:"item" binding:"omitempty,min=1,max=500"`
	Status     *string `json:"status" binding:"omitempty,oneof=active inactive completed"`
	CategoryID *int    `json:"categoryId" binding:"omitempty,gt=0"`
}

// ListService manages the list items of categories.
type ListService struct {
	*base
}

func preloadCategory(db *gorm.DB) *gorm.DB {
	return db.Preload("Category")
}

func (s *ListService) Create(ctx context.Context, categoryID int, in ListInput) (*models.List, error) {
	if err := exists[models.Category](ctx, s.db, "category", categoryID); err != nil {
		return nil, err
	}
	m := &models.List{Item: in.Item, Status: in.Status, CategoryID: categoryID}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, writeError("list item")(err)
	}
	return s.Get(ctx, m.ID)
}

func (s *ListService) Get(ctx context.Context, id int) (*models.List, error) {
	return get[models.List](ctx, s.db, "list item", id, preloadCategory)
}

// Update changes a list item. Moving it to another category requires that
// category to exist.
func (s *ListService) Update(ctx context.Context, id int, in ListUpdate) (*models.List, error) {
	if in.CategoryID != nil {
		if err := exists[models.Category](ctx, s.db, "category", *in.CategoryID); err != nil {
			return nil, err
		}
	}
	c := changes{}
	setIf(c, "item", in.Item)
	setIf(c, "status", in.Status)
	setIf(c, "category_id", in.CategoryID)
	if err := update[models.List](ctx, s.db, "list item", id, c, writeError("list item")); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ListService) Delete(ctx context.Context, id int) error {
	return remove[models.List](ctx, s.db, "list item", id, writeError("list item"))
}

// ListForCategory returns a page of the list items of categoryID, each with
// the id and name of the category.
func (s *ListService) ListForCategory(ctx context.Context, categoryID int, req adminquery.Request) (*adminquery.Page[models.List], error) {
	if err := exists[models.Category](ctx, s.db, "category", categoryID); err != nil {
		return nil, err
	}
	finder := gormquery.NewFinder(s.db.Where("category_id = ?", categoryID),
		gormquery.WithFindScopes[models.List](func(db *gorm.DB) *gorm.DB {
			return db.Preload("Category", func(db *gorm.DB) *gorm.DB {
				return db.Select("id", "name")
			})
		}),
	)
	return list[models.List](ctx, s.base, filterconfig.Lists, finder, req)
}

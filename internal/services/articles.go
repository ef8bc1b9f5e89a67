package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/filterconfig"
	"github.com/theplant/adminquery/gormquery"
	"github.com/theplant/adminquery/internal/models"
)

// ContentItemInput is one block of article content. PARAGRAPH needs html,
// FILE needs url and name, IMAGE needs src. Without an order the position in
// the input is used.
type ContentItemInput struct {
	Type  models.ContentType `json:"type" binding:"required,oneof=PARAGRAPH FILE IMAGE"`
	Order *int               `json:"order" binding:"omitempty,gte=0"`
	HTML  *string            `json:"html"`
	URL   *string            `json:"url"`
	Name  *string            `json:"name"`
	Src   *string            `json:"src"`
	Alt   *string            `json:"alt"`
}

func (in ContentItemInput) validate(index int) error {
	if !in.Type.Valid() {
		return errors.Wrapf(ErrInvalidInput, "content[%d]: unknown type %q", index, in.Type)
	}
	blank := func(s *string) bool { return s == nil || *s == "" }
	switch in.Type {
	case models.ContentParagraph:
		if blank(in.HTML) {
			return errors.Wrapf(ErrInvalidInput, "content[%d]: paragraph requires html", index)
		}
	case models.ContentFile:
		if blank(in.URL) || blank(in.Name) {
			return errors.Wrapf(ErrInvalidInput, "content[%d]: file requires url and name", index)
		}
	case models.ContentImage:
		if blank(in.Src) {
			return errors.Wrapf(ErrInvalidInput, "content[%d]: image requires src", index)
		}
	}
	return nil
}

// contentItems validates content and converts it into models of articleID.
func contentItems(articleID int, content []ContentItemInput) ([]models.ContentItem, error) {
	items := make([]models.ContentItem, 0, len(content))
	for i, in := range content {
		if err := in.validate(i); err != nil {
			return nil, err
		}
		items = append(items, models.ContentItem{
			ArticleID: articleID,
			Type:      in.Type,
			Order:     lo.FromPtrOr(in.Order, i),
			HTML:      in.HTML,
			URL:       in.URL,
			Name:      in.Name,
			Src:       in.Src,
			Alt:       in.Alt,
		})
	}
	return items, nil
}

type ArticleInput struct {
	Title    string             `json:"title" binding:"required,max=255"`
	Category string             `json:"category" binding:"required,max=255"`
	Content  []ContentItemInput `json:"content" binding:"omitempty,dive"`
}

// ArticleUpdate replaces the whole content when Content is not nil.
type ArticleUpdate struct {
	Title    *string            `json:"title" binding:"omitempty,min=1,max=255"`
	Category *string            `json:"category" binding:"omitempty,min=1,max=255"`
	Content  []ContentItemInput `json:"content" binding:"omitempty,dive"`
}

type ArticleService struct {
	*base
}

func preloadContent(db *gorm.DB) *gorm.DB {
	return db.Preload("Content", func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "order"}},
			{Column: clause.Column{Name: "id"}},
		}})
	})
}

func (s *ArticleService) Create(ctx context.Context, in ArticleInput) (*models.Article, error) {
	items, err := contentItems(0, in.Content)
	if err != nil {
		return nil, err
	}
	m := &models.Article{Title: in.Title, Category: in.Category, Content: items}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, writeError("article")(err)
	}
	return s.Get(ctx, m.ID)
}

// Get loads an article with its content in order.
func (s *ArticleService) Get(ctx context.Context, id int) (*models.Article, error) {
	return get[models.Article](ctx, s.db, "article", id, preloadContent)
}

func (s *ArticleService) Update(ctx context.Context, id int, in ArticleUpdate) (*models.Article, error) {
	var items []models.ContentItem
	if in.Content != nil {
		var err error
		if items, err = contentItems(id, in.Content); err != nil {
			return nil, err
		}
	}

	c := changes{}
	setIf(c, "title", in.Title)
	setIf(c, "category", in.Category)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := update[models.Article](ctx, tx, "article", id, c, writeError("article")); err != nil {
			return err
		}
		if in.Content == nil {
			return nil
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.ContentItem{}).Error; err != nil {
			return errors.Wrap(err, "delete content")
		}
		if len(items) == 0 {
			return nil
		}
		if err := tx.Create(&items).Error; err != nil {
			return errors.Wrap(err, "create content")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the article and its content.
func (s *ArticleService) Delete(ctx context.Context, id int) error {
	return remove[models.Article](ctx, s.db, "article", id, writeError("article"))
}

// List returns a page of articles with their content, newest first unless
// the request sorts otherwise.
func (s *ArticleService) List(ctx context.Context, req adminquery.Request) (*adminquery.Page[models.Article], error) {
	finder := gormquery.NewFinder(s.db, gormquery.WithFindScopes[models.Article](preloadContent))
	return list[models.Article](ctx, s.base, filterconfig.Articles, finder, req,
		adminquery.EnsureDefaultOrder[models.Article](adminquery.Order{Field: "createdAt", Direction: adminquery.Desc}),
	)
}

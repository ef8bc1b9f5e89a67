package services

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/filterconfig"
	"github.com/theplant/adminquery/gormquery"
	"github.com/theplant/adminquery/internal/models"
)

type StructureInput struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,max=24"`
}

type StructureUpdate struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,max=24"`
}

type StructureService struct {
	*base
}

func (s *StructureService) Create(ctx context.Context, in StructureInput) (*models.Structure, error) {
	m := &models.Structure{Name: in.Name, Description: in.Description, Status: in.Status}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, writeError("structure")(err)
	}
	return m, nil
}

func (s *StructureService) Get(ctx context.Context, id int) (*models.Structure, error) {
	return get[models.Structure](ctx, s.db, "structure", id)
}

func (s *StructureService) Update(ctx context.Context, id int, in StructureUpdate) (*models.Structure, error) {
	c := changes{}
	setIf(c, "name", in.Name)
	setIf(c, "description", in.Description)
	setIf(c, "status", in.Status)
	if err := update[models.Structure](ctx, s.db, "structure", id, c, writeError("structure")); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the structure together with its attributes.
func (s *StructureService) Delete(ctx context.Context, id int) error {
	return remove[models.Structure](ctx, s.db, "structure", id, writeError("structure"))
}

func (s *StructureService) List(ctx context.Context, req adminquery.Request) (*adminquery.Page[models.Structure], error) {
	return list[models.Structure](ctx, s.base, filterconfig.Structures, gormquery.NewFinder[models.Structure](s.db), req)
}

type StructureAttributeInput struct {
	StructureID    int     `json:"structureId" binding:"required,gt=0"`
	AttributeName  string  `json:"attributeName" binding:"required,max=255"`
	AttributeValue string  `json:"attributeValue" binding:"required"`
	Status         *string `json:"status" binding:"omitempty,max=24"`
	IsActive       *bool   `json:"isActive"`
}

type StructureAttributeUpdate struct {
	StructureID    *int    `json:"structureId" binding:"omitempty,gt=0"`
	AttributeName  *string `json:"attributeName" binding:"omitempty,min=1,max=255"`
	AttributeValue *string `json:"attributeValue" binding:"omitempty,min=1"`
	Status         *string `json:"status" binding:"omitempty,max=24"`
	IsActive       *bool   `json:"isActive"`
}

type StructureAttributeService struct {
	*base
}

func preloadStructure(db *gorm.DB) *gorm.DB {
	return db.Preload("Structure")
}

func (s *StructureAttributeService) Create(ctx context.Context, in StructureAttributeInput) (*models.StructureAttribute, error) {
	m := &models.StructureAttribute{
		StructureID:    in.StructureID,
		AttributeName:  in.AttributeName,
		AttributeValue: in.AttributeValue,
		Status:         in.Status,
		IsActive:       in.IsActive == nil || *in.IsActive,
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, writeError("structure attribute")(err)
	}
	return s.Get(ctx, m.ID)
}

func (s *StructureAttributeService) Get(ctx context.Context, id int) (*models.StructureAttribute, error) {
	return get[models.StructureAttribute](ctx, s.db, "structure attribute", id, preloadStructure)
}

func (s *StructureAttributeService) Update(ctx context.Context, id int, in StructureAttributeUpdate) (*models.StructureAttribute, error) {
	c := changes{}
	setIf(c, "structure_id", in.StructureID)
	setIf(c, "attribute_name", in.AttributeName)
	setIf(c, "attribute_value", in.AttributeValue)
	setIf(c, "status", in.Status)
	setIf(c, "is_active", in.IsActive)
	if err := update[models.StructureAttribute](ctx, s.db, "structure attribute", id, c, writeError("structure attribute")); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *StructureAttributeService) Delete(ctx context.Context, id int) error {
	return remove[models.StructureAttribute](ctx, s.db, "structure attribute", id, writeError("structure attribute"))
}

// List returns a page of attributes with their structure.
func (s *StructureAttributeService) List(ctx context.Context, req adminquery.Request) (*adminquery.Page[models.StructureAttribute], error) {
	finder := gormquery.NewFinder(s.db, gormquery.WithFindScopes[models.StructureAttribute](preloadStructure))
	return list[models.StructureAttribute](ctx, s.base, filterconfig.StructureAttributes, finder, req)
}

// ListStructures returns every structure an attribute can belong to.
func (s *StructureAttributeService) ListStructures(ctx context.Context) ([]models.Structure, error) {
	structures := []models.Structure{}
	if err := s.db.WithContext(ctx).Order("id").Find(&structures).Error; err != nil {
		return nil, errors.Wrap(err, "list structures")
	}
	return structures, nil
}

package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/filterconfig"
	"github.com/theplant/adminquery/gormquery"
	"github.com/theplant/adminquery/internal/models"
)

const dateLayout = "2006-01-02"

type PersonInput struct {
	FirstName string  `json:"firstName" binding:"required,max=255"`
	LastName  string  `json:"lastName" binding:"required,max=255"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=32"`
	BirthDate *string `json:"birthDate" binding:"omitempty,datetime=2006-01-02"`
	Status    *string `json:"status" binding:"omitempty,max=24"`
}

type PersonUpdate struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=255"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=255"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=32"`
	BirthDate *string `json:"birthDate" binding:"omitempty,datetime=2006-01-02"`
	Status    *string `json:"status" binding:"omitempty,max=24"`
}

func parseDate(s *string) (*datatypes.Date, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidInput, "invalid date %q", *s)
	}
	d := datatypes.Date(t)
	return &d, nil
}

type PersonService struct {
	*base
}

func (s *PersonService) Create(ctx context.Context, in PersonInput) (*models.Person, error) {
	birthDate, err := parseDate(in.BirthDate)
	if err != nil {
		return nil, err
	}
	m := &models.Person{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		BirthDate: birthDate,
		Status:    in.Status,
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, writeError("person")(err)
	}
	return m, nil
}

func (s *PersonService) Get(ctx context.Context, id int) (*models.Person, error) {
	return get[models.Person](ctx, s.db, "person", id)
}

func (s *PersonService) Update(ctx context.Context, id int, in PersonUpdate) (*models.Person, error) {
	birthDate, err := parseDate(in.BirthDate)
	if err != nil {
		return nil, err
	}
	c := changes{}
	setIf(c, "first_name", in.FirstName)
	setIf(c, "last_name", in.LastName)
	setIf(c, "email", in.Email)
	setIf(c, "phone", in.Phone)
	setIf(c, "birth_date", birthDate)
	setIf(c, "status", in.Status)
	if err := update[models.Person](ctx, s.db, "person", id, c, writeError("person")); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *PersonService) Delete(ctx context.Context, id int) error {
	return remove[models.Person](ctx, s.db, "person", id, writeError("person"))
}

func (s *PersonService) List(ctx context.Context, req adminquery.Request) (*adminquery.Page[models.Person], error) {
	return list[models.Person](ctx, s.base, filterconfig.Persons, gormquery.NewFinder[models.Person](s.db), req)
}

type PersonAttributeInput struct {
	PersonID       int     `json:"personId" binding:"required,gt=0"`
	AttributeName  string  `json:"attributeName" binding:"required,max=255"`
	AttributeValue string  `json:"attributeValue" binding:"required"`
	Status         *string `json:"status" binding:"omitempty,max=24"`
	IsActive       *bool   `json:"isActive"`
}

type PersonAttributeUpdate struct {
	PersonID       *int    `json:"personId" binding:"omitempty,gt=0"`
	AttributeName  *string `json:"attributeName" binding:"omitempty,min=1,max=255"`
	AttributeValue *string `json:"attributeValue" binding:"omitempty,min=1"`
	Status         *string `json:"status" binding:"omitempty,max=24"`
	IsActive       *bool   `json:"isActive"`
}

type PersonAttributeService struct {
	*base
}

func preloadPerson(db *gorm.DB) *gorm.DB {
	return db.Preload("Person")
}

func (s *PersonAttributeService) Create(ctx context.Context, in PersonAttributeInput) (*models.PersonAttribute, error) {
	m := &models.PersonAttribute{
		PersonID:       in.PersonID,
		AttributeName:  in.AttributeName,
		AttributeValue: in.AttributeValue,
		Status:         in.Status,
		IsActive:       in.IsActive == nil || *in.IsActive,
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, writeError("person attribute")(err)
	}
	return s.Get(ctx, m.ID)
}

func (s *PersonAttributeService) Get(ctx context.Context, id int) (*models.PersonAttribute, error) {
	return get[models.PersonAttribute](ctx, s.db, "person attribute", id, preloadPerson)
}

func (s *PersonAttributeService) Update(ctx context.Context, id int, in PersonAttributeUpdate) (*models.PersonAttribute, error) {
	c := changes{}
	setIf(c, "person_id", in.PersonID)
	setIf(c, "attribute_name", in.AttributeName)
	setIf(c, "attribute_value", in.AttributeValue)
	setIf(c, "status", in.Status)
	setIf(c, "is_active", in.IsActive)
	if err := update[models.PersonAttribute](ctx, s.db, "person attribute", id, c, writeError("person attribute")); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *PersonAttributeService) Delete(ctx context.Context, id int) error {
	return remove[models.PersonAttribute](ctx, s.db, "person attribute", id, writeError("person attribute"))
}

// List returns a page of attributes with their person.
func (s *PersonAttributeService) List(ctx context.Context, req adminquery.Request) (*adminquery.Page[models.PersonAttribute], error) {
	finder := gormquery.NewFinder(s.db, gormquery.WithFindScopes[models.PersonAttribute](preloadPerson))
	return list[models.PersonAttribute](ctx, s.base, filterconfig.PersonAttributes, finder, req)
}

// ListPersons returns every person an attribute can belong to.
func (s *PersonAttributeService) ListPersons(ctx context.Context) ([]models.Person, error) {
	persons := []models.Person{}
	if err := s.db.WithContext(ctx).Order("id").Find(&persons).Error; err != nil {
		return nil, errors.Wrap(err, "list persons")
	}
	return persons, nil
}

// Package models declares the gorm models of the admin backend.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Status values shared by most entities.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusCompleted = "completed"
)

type Structure struct {
	ID          int                  `gorm:"primaryKey" json:"id"`
	Name        string               `gorm:"not null" json:"name"`
	Description *string              `json:"description"`
	Status      *string              `json:"status"`
	CreatedAt   time.Time            `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time            `gorm:"not null" json:"updatedAt"`
	Attributes  []StructureAttribute `json:"attributes,omitempty"`
}

func (Structure) TableName() string { return "structures" }

type StructureAttribute struct {
	ID             int        `gorm:"primaryKey" json:"id"`
	StructureID    int        `gorm:"not null;index" json:"structureId"`
	AttributeName  string     `gorm:"not null" json:"attributeName"`
	AttributeValue string     `gorm:"not null" json:"attributeValue"`
	Status         *string    `json:"status"`
	IsActive       bool       `gorm:"not null" json:"isActive"`
	CreatedAt      time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updatedAt"`
	Structure      *Structure `json:"structure,omitempty"`
}

func (StructureAttribute) TableName() string { return "structure_attributes" }

type Person struct {
	ID         int               `gorm:"primaryKey" json:"id"`
	FirstName  string            `gorm:"not null" json:"firstName"`
	LastName   string            `gorm:"not null" json:"lastName"`
	Email      *string           `gorm:"uniqueIndex" json:"email"`
	Phone      *string           `json:"phone"`
	BirthDate  *datatypes.Date   `json:"birthDate"`
	Status     *string           `json:"status"`
	CreatedAt  time.Time         `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time         `gorm:"not null" json:"updatedAt"`
	Attributes []PersonAttribute `json:"attributes,omitempty"`
}

func (Person) TableName() string { return "persons" }

type PersonAttribute struct {
	ID             int       `gorm:"primaryKey" json:"id"`
	PersonID       int       `gorm:"not null;index" json:"personId"`
	AttributeName  string    `gorm:"not null" json:"attributeName"`
	AttributeValue string    `gorm:"not null" json:"attributeValue"`
	Status         *string   `json:"status"`
	IsActive       bool      `gorm:"not null" json:"isActive"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`
	Person         *Person   `json:"person,omitempty"`
}

func (PersonAttribute) TableName() string { return "person_attributes" }

type Category struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex" json:"name"`
	Status    *string   `gorm:"default:active" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
	Lists     []List    `gorm:"constraint:OnDelete:RESTRICT" json:"lists,omitempty"`

	// Count is filled on list pages only.
	Count *CategoryCount `gorm:"-" json:"_count,omitempty"`
}

type CategoryCount struct {
	Lists int `json:"lists"`
}

func (Category) TableName() string { return "categories" }

type List struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	Item       string    `gorm:"not null" json:"item"`
	Status     *string   `gorm:"default:active" json:"status"`
	CategoryID int       `gorm:"not null;index" json:"categoryId"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
	Category   *Category `json:"category,omitempty"`
}

func (List) TableName() string { return "lists" }

// ContentType is the kind of a block of article content.
type ContentType string

const (
	ContentParagraph ContentType = "PARAGRAPH"
	ContentFile      ContentType = "FILE"
	ContentImage     ContentType = "IMAGE"
)

// ContentTypes lists every ContentType.
var ContentTypes = []ContentType{ContentParagraph, ContentFile, ContentImage}

func (t ContentType) Valid() bool {
	switch t {
	case ContentParagraph, ContentFile, ContentImage:
		return true
	}
	return false
}

type Article struct {
	ID        int           `gorm:"primaryKey" json:"id"`
	Title     string        `gorm:"not null" json:"title"`
	Category  string        `gorm:"not null" json:"category"`
	CreatedAt time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time     `gorm:"not null" json:"updatedAt"`
	Content   []ContentItem `gorm:"constraint:OnDelete:CASCADE" json:"content"`
}

func (Article) TableName() string { return "articles" }

// ContentItem is one ordered block of an article. Which of the optional
// fields are set depends on Type.
type ContentItem struct {
	ID        int         `gorm:"primaryKey" json:"id"`
	ArticleID int         `gorm:"not null;index" json:"articleId"`
	Type      ContentType `gorm:"type:varchar(16);not null" json:"type"`
	Order     int         `gorm:"not null;default:0" json:"order"`
	HTML      *string     `gorm:"column:html" json:"html,omitempty"`
	URL       *string     `gorm:"column:url" json:"url,omitempty"`
	Name      *string     `json:"name,omitempty"`
	Src       *string     `json:"src,omitempty"`
	Alt       *string     `json:"alt,omitempty"`
}

func (ContentItem) TableName() string { return "content_items" }

// All returns every model, in dependency order.
func All() []any {
	return []any{
		&Structure{}, &StructureAttribute{},
		&Person{}, &PersonAttribute{},
		&Category{}, &List{},
		&Article{}, &ContentItem{},
	}
}

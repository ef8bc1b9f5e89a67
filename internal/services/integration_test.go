//go:build integration

package services

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/internal/db"
	"github.com/theplant/adminquery/internal/models"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	var err error
	var cleanupDB func() error
	testDB, cleanupDB, err = setupDatabase(context.Background())
	if err != nil {
		panic(err)
	}

	code := m.Run()
	_ = cleanupDB()
	os.Exit(code)
}

func setupDatabase(ctx context.Context) (_ *gorm.DB, _ func() error, xerr error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:17.4-alpine3.21",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		Cmd:        []string{"postgres", "-c", "fsync=off"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		},
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fail to start container")
	}
	defer func() {
		if xerr != nil {
			_ = container.Terminate(context.Background())
		}
	}()

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		return nil, nil, errors.Wrap(err, "fail to get endpoint")
	}

	gdb, err := db.Open(db.Config{
		DSN: fmt.Sprintf("postgres://postgres:postgres@%s/postgres?sslmode=disable", endpoint),
	}, zerolog.Nop())
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx, gdb, db.Up); err != nil {
		return nil, nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, errors.Wrap(err, "no underlying sqlDB")
	}

	return gdb, func() error {
		closeErr := sqlDB.Close()
		terminateErr := container.Terminate(context.Background())
		if closeErr != nil {
			return closeErr
		}
		return terminateErr
	}, nil
}

func resetDB(t *testing.T) *Services {
	t.Helper()
	err := testDB.Exec(`TRUNCATE content_items, articles, lists, categories, person_attributes, persons,
		structure_attributes, structures RESTART IDENTITY CASCADE`).Error
	require.NoError(t, err)
	return New(testDB, zerolog.Nop(), WithMaxLimit(50))
}

func TestMigrateIdempotent(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx, testDB, db.Up))
	version, dirty, err := db.Version(ctx, testDB)
	require.NoError(t, err)
	require.False(t, dirty)
	require.EqualValues(t, 1, version)
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := resetDB(t)

	books, err := svc.Categories.Create(ctx, CategoryInput{Name: "Books"})
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, lo.FromPtr(books.Status))

	_, err = svc.Categories.Create(ctx, CategoryInput{Name: "Books"})
	require.True(t, errors.Is(err, ErrConflict))

	music, err := svc.Categories.Create(ctx, CategoryInput{Name: "Music", Status: lo.ToPtr(models.StatusInactive)})
	require.NoError(t, err)

	for _, item := range []string{"Go in Action", "The Go Programming Language", "SICP"} {
		_, err := svc.Lists.Create(ctx, books.ID, ListInput{Item: item})
		require.NoError(t, err)
	}
	_, err = svc.Lists.Create(ctx, 999, ListInput{Item: "orphan"})
	require.True(t, errors.Is(err, ErrNotFound))

	page, err := svc.Categories.List(ctx, adminquery.Request{"sortBy": "name", "sortOrder": "desc"})
	require.NoError(t, err)
	require.Equal(t, []string{"Music", "Books"}, lo.Map(page.Data, func(c models.Category, _ int) string { return c.Name }))
	require.Equal(t, 0, page.Data[0].Count.Lists)
	require.Equal(t, 3, page.Data[1].Count.Lists)
	require.Equal(t, &adminquery.Meta{Total: 2, Page: 1, Limit: 10, TotalPages: 1}, page.Meta)

	page, err = svc.Categories.List(ctx, adminquery.Request{"statuses": []string{"inactive", "archived"}})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, music.ID, page.Data[0].ID)

	page, err = svc.Categories.List(ctx, adminquery.Request{"name": "BOO"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "Books", page.Data[0].Name)

	lists, err := svc.Lists.ListForCategory(ctx, books.ID, adminquery.Request{"item": "go", "sortBy": "item"})
	require.NoError(t, err)
	require.Equal(t, []string{"Go in Action", "The Go Programming Language"}, lo.Map(lists.Data, func(l models.List, _ int) string { return l.Item }))
	require.Equal(t, "Books", lists.Data[0].Category.Name)

	_, err = svc.Lists.ListForCategory(ctx, 999, adminquery.Request{})
	require.True(t, errors.Is(err, ErrNotFound))

	got, err := svc.Categories.Get(ctx, books.ID, true)
	require.NoError(t, err)
	require.Len(t, got.Lists, 3)
	require.Equal(t, "SICP", got.Lists[0].Item)

	err = svc.Categories.Delete(ctx, books.ID)
	require.True(t, errors.Is(err, ErrConflict))

	moved, err := svc.Lists.Update(ctx, got.Lists[0].ID, ListUpdate{CategoryID: lo.ToPtr(music.ID), Status: lo.ToPtr(models.StatusCompleted)})
	require.NoError(t, err)
	require.Equal(t, music.ID, moved.CategoryID)
	require.Equal(t, "Music", moved.Category.Name)
	require.Equal(t, models.StatusCompleted, lo.FromPtr(moved.Status))

	_, err = svc.Lists.Update(ctx, moved.ID, ListUpdate{CategoryID: lo.ToPtr(999)})
	require.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.Categories.Update(ctx, music.ID, CategoryUpdate{Name: lo.ToPtr("Books")})
	require.True(t, errors.Is(err, ErrConflict))

	renamed, err := svc.Categories.Update(ctx, music.ID, CategoryUpdate{Name: lo.ToPtr("Records")})
	require.NoError(t, err)
	require.Equal(t, "Records", renamed.Name)
	require.True(t, renamed.UpdatedAt.After(music.UpdatedAt))

	require.NoError(t, svc.Lists.Delete(ctx, moved.ID))
	require.True(t, errors.Is(svc.Lists.Delete(ctx, moved.ID), ErrNotFound))
	require.NoError(t, svc.Categories.Delete(ctx, music.ID))

	_, err = svc.Categories.Get(ctx, music.ID, false)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestAttributeFilters(t *testing.T) {
	ctx := context.Background()
	svc := resetDB(t)

	ada, err := svc.Persons.Create(ctx, PersonInput{FirstName: "Ada", LastName: "Lovelace", BirthDate: lo.ToPtr("1815-12-10")})
	require.NoError(t, err)
	alan, err := svc.Persons.Create(ctx, PersonInput{FirstName: "Alan", LastName: "Turing", Email: lo.ToPtr("alan@example.com"), BirthDate: lo.ToPtr("1912-06-23")})
	require.NoError(t, err)
	_, err = svc.Persons.Create(ctx, PersonInput{FirstName: "Other", LastName: "Alan", Email: lo.ToPtr("alan@example.com")})
	require.True(t, errors.Is(err, ErrConflict))

	for _, in := range []PersonAttributeInput{
		{PersonID: ada.ID, AttributeName: "field", AttributeValue: "mathematics", Status: lo.ToPtr("active")},
		{PersonID: ada.ID, AttributeName: "fieldwork", AttributeValue: "engines", IsActive: lo.ToPtr(false)},
		{PersonID: alan.ID, AttributeName: "field", AttributeValue: "computing", Status: lo.ToPtr("active")},
	} {
		_, err := svc.PersonAttributes.Create(ctx, in)
		require.NoError(t, err)
	}
	_, err = svc.PersonAttributes.Create(ctx, PersonAttributeInput{PersonID: 999, AttributeName: "x", AttributeValue: "y"})
	require.True(t, errors.Is(err, ErrInvalidReference))

	testCases := []struct {
		name   string
		req    adminquery.Request
		expect []string
	}{
		{
			name:   "contains folds case",
			req:    adminquery.Request{"attributeName": "FIELD"},
			expect: []string{"mathematics", "engines", "computing"},
		},
		{
			name:   "exact name",
			req:    adminquery.Request{"exactAttributeName": "field", "sortBy": "attributeValue"},
			expect: []string{"computing", "mathematics"},
		},
		{
			name:   "int person id",
			req:    adminquery.Request{"personId": fmt.Sprint(ada.ID)},
			expect: []string{"mathematics", "engines"},
		},
		{
			name:   "invalid person id is ignored",
			req:    adminquery.Request{"personId": "abc"},
			expect: []string{"mathematics", "engines", "computing"},
		},
		{
			name:   "boolean",
			req:    adminquery.Request{"isActive": "false"},
			expect: []string{"engines"},
		},
		{
			name:   "stare maps to status",
			req:    adminquery.Request{"stare": "active", "personName": "tur"},
			expect: []string{"computing"},
		},
		{
			name:   "sort by related field",
			req:    adminquery.Request{"stare": "active", "sortBy": "personName", "sortOrder": "desc"},
			expect: []string{"computing", "mathematics"},
		},
		{
			name:   "pagination",
			req:    adminquery.Request{"page": "2", "limit": "2"},
			expect: []string{"computing"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.PersonAttributes.List(ctx, tc.req)
			require.NoError(t, err)
			require.Equal(t, tc.expect, lo.Map(page.Data, func(a models.PersonAttribute, _ int) string { return a.AttributeValue }))
			require.NotNil(t, page.Data[0].Person)
		})
	}

	_, err = svc.PersonAttributes.List(ctx, adminquery.Request{"sortBy": "nickname"})
	require.True(t, errors.Is(err, ErrInvalidQuery))

	persons, err := svc.PersonAttributes.ListPersons(ctx)
	require.NoError(t, err)
	require.Len(t, persons, 2)

	born, err := svc.Persons.List(ctx, adminquery.Request{"bornAfter": "1900-01-01"})
	require.NoError(t, err)
	require.Len(t, born.Data, 1)
	require.Equal(t, alan.ID, born.Data[0].ID)

	require.NoError(t, svc.Persons.Delete(ctx, ada.ID))
	page, err := svc.PersonAttributes.List(ctx, adminquery.Request{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
}

func TestPersonRanges(t *testing.T) {
	ctx := context.Background()
	resetDB(t)
	svc := New(testDB, zerolog.Nop(), WithMaxLimit(2))

	for _, in := range []PersonInput{
		{FirstName: "Ada", LastName: "Lovelace", BirthDate: lo.ToPtr("1815-12-10")},
		{FirstName: "Alan", LastName: "Turing", BirthDate: lo.ToPtr("1912-06-23")},
		{FirstName: "Grace", LastName: "Hopper", BirthDate: lo.ToPtr("1906-12-09")},
		{FirstName: "Margaret", LastName: "Hamilton", BirthDate: lo.ToPtr("1936-08-17")},
	} {
		_, err := svc.Persons.Create(ctx, in)
		require.NoError(t, err)
	}
	firstNames := func(page *adminquery.Page[models.Person]) []string {
		return lo.Map(page.Data, func(p models.Person, _ int) string { return p.FirstName })
	}

	page, err := svc.Persons.List(ctx, adminquery.Request{
		"bornAfter":  "1900-01-01",
		"bornBefore": "1910-01-01",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Grace"}, firstNames(page))
	require.Equal(t, 1, page.Meta.Total)

	page, err = svc.Persons.List(ctx, adminquery.Request{"limit": "0"})
	require.NoError(t, err)
	require.Equal(t, []string{"Ada", "Alan", "Grace", "Margaret"}, firstNames(page))
	require.Equal(t, &adminquery.Meta{Total: 4, Page: 1, Limit: 0, TotalPages: 1}, page.Meta)

	page, err = svc.Persons.List(ctx, adminquery.Request{"limit": "10"})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, &adminquery.Meta{Total: 4, Page: 1, Limit: 2, TotalPages: 2}, page.Meta)
}

func TestStructures(t *testing.T) {
	ctx := context.Background()
	svc := resetDB(t)

	s, err := svc.Structures.Create(ctx, StructureInput{Name: "Tower", Status: lo.ToPtr("draft")})
	require.NoError(t, err)

	attr, err := svc.StructureAttributes.Create(ctx, StructureAttributeInput{StructureID: s.ID, AttributeName: "height", AttributeValue: "300m"})
	require.NoError(t, err)
	require.True(t, attr.IsActive)
	require.Equal(t, "Tower", attr.Structure.Name)

	updated, err := svc.Structures.Update(ctx, s.ID, StructureUpdate{})
	require.NoError(t, err)
	require.Equal(t, "Tower", updated.Name)
	require.True(t, updated.UpdatedAt.After(s.UpdatedAt))

	page, err := svc.StructureAttributes.List(ctx, adminquery.Request{"structureName": "tow", "structureId": fmt.Sprint(s.ID)})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	attr, err = svc.StructureAttributes.Update(ctx, attr.ID, StructureAttributeUpdate{IsActive: lo.ToPtr(false)})
	require.NoError(t, err)
	require.False(t, attr.IsActive)

	structures, err := svc.StructureAttributes.ListStructures(ctx)
	require.NoError(t, err)
	require.Len(t, structures, 1)

	_, err = svc.Structures.Update(ctx, 999, StructureUpdate{Name: lo.ToPtr("x")})
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestArticles(t *testing.T) {
	ctx := context.Background()
	svc := resetDB(t)

	first, err := svc.Articles.Create(ctx, ArticleInput{
		Title:    "First",
		Category: "news",
		Content: []ContentItemInput{
			{Type: models.ContentImage, Src: lo.ToPtr("/a.png"), Order: lo.ToPtr(1)},
			{Type: models.ContentParagraph, HTML: lo.ToPtr("<p>intro</p>"), Order: lo.ToPtr(0)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, []models.ContentType{models.ContentParagraph, models.ContentImage},
		lo.Map(first.Content, func(c models.ContentItem, _ int) models.ContentType { return c.Type }))

	second, err := svc.Articles.Create(ctx, ArticleInput{Title: "Second", Category: "blog"})
	require.NoError(t, err)

	page, err := svc.Articles.List(ctx, adminquery.Request{})
	require.NoError(t, err)
	require.Equal(t, []int{second.ID, first.ID}, lo.Map(page.Data, func(a models.Article, _ int) int { return a.ID }))
	require.Len(t, page.Data[1].Content, 2)

	page, err = svc.Articles.List(ctx, adminquery.Request{"category": "news"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	updated, err := svc.Articles.Update(ctx, first.ID, ArticleUpdate{
		Title: lo.ToPtr("First, revised"),
		Content: []ContentItemInput{
			{Type: models.ContentFile, URL: lo.ToPtr("/a.pdf"), Name: lo.ToPtr("a.pdf")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "First, revised", updated.Title)
	require.Len(t, updated.Content, 1)
	require.Equal(t, models.ContentFile, updated.Content[0].Type)

	_, err = svc.Articles.Update(ctx, first.ID, ArticleUpdate{Content: []ContentItemInput{{Type: models.ContentImage}}})
	require.True(t, errors.Is(err, ErrInvalidInput))

	kept, err := svc.Articles.Update(ctx, first.ID, ArticleUpdate{Category: lo.ToPtr("blog")})
	require.NoError(t, err)
	require.Len(t, kept.Content, 1)

	require.NoError(t, svc.Articles.Delete(ctx, first.ID))
	var count int64
	require.NoError(t, testDB.Model(&models.ContentItem{}).Count(&count).Error)
	require.Zero(t, count)
}

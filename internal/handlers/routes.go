package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/theplant/adminquery/internal/features"
	"github.com/theplant/adminquery/internal/models"
	"github.com/theplant/adminquery/internal/services"
)

// Register mounts every endpoint on r.
func Register(r gin.IRouter, svc *services.Services, feat *features.Service) {
	NewResource[models.Structure, services.StructureInput, services.StructureUpdate](svc.Structures).Register(r.Group("/structures"))

	structureAttributes := r.Group("/structure-attributes")
	structureAttributes.GET("/structure", Lookup(svc.StructureAttributes.ListStructures))
	NewResource[models.StructureAttribute, services.StructureAttributeInput, services.StructureAttributeUpdate](svc.StructureAttributes).Register(structureAttributes)

	NewResource[models.Person, services.PersonInput, services.PersonUpdate](svc.Persons).Register(r.Group("/persons"))

	personAttributes := r.Group("/person-attributes")
	personAttributes.GET("/person", Lookup(svc.PersonAttributes.ListPersons))
	NewResource[models.PersonAttribute, services.PersonAttributeInput, services.PersonAttributeUpdate](svc.PersonAttributes).Register(personAttributes)

	NewCategoryHandler(svc.Categories, svc.Lists).Register(r.Group("/categories"))

	NewResource[models.Article, services.ArticleInput, services.ArticleUpdate](svc.Articles).Register(r.Group("/articles"))

	NewFeatureHandler(feat).Register(r.Group("/features"))
}

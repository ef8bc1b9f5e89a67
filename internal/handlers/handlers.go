// Package handlers exposes the services over HTTP with gin.
package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/internal/features"
	"github.com/theplant/adminquery/internal/services"
	"github.com/theplant/adminquery/sqlquery"
)

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound), errors.Is(err, features.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidReference),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidQuery),
		errors.Is(err, sqlquery.ErrUnknownColumn):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": message}. Internal errors are
// recorded on the context for the request log and not exposed.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// paramID reads a positive integer path parameter.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryRequest reads the filter request from the query string.
func queryRequest(c *gin.Context) adminquery.Request {
	return adminquery.RequestFromValues(c.Request.URL.Query())
}

// bodyRequest reads the filter request from a JSON body. Query string
// parameters are merged in and lose against the body.
func bodyRequest(c *gin.Context) (adminquery.Request, bool) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, "failed to read body")
		return nil, false
	}
	req, err := adminquery.DecodeRequest(data)
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	for key, value := range queryRequest(c) {
		if _, ok := req[key]; !ok {
			req[key] = value
		}
	}
	return req, true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		badRequest(c, err.Error())
		return false
	}
	return true
}

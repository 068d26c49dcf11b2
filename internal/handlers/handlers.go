package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/helpers"
	"github.com/joshua-takyi/evently/internal/middleware"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/services"
)

// respondError maps service errors onto status codes. Anything unrecognised is
// handed to the ErrorHandler middleware as a 500.
func respondError(c *gin.Context, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, models.FieldError(ve.Field, ve.Message))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.CodedError(models.CodeNotFound, err.Error()))
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, models.CodedError(models.CodeForbidden, "You do not have permission to do this"))
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, models.CodedError(models.CodeInvalidTransition, err.Error()))
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, models.CodedError(models.CodeConflict, err.Error()))
	case errors.Is(err, models.ErrDuplicateSubmission):
		c.JSON(http.StatusTooManyRequests, models.CodedError(models.CodeDuplicateSubmission, err.Error()))
	default:
		_ = c.Error(err)
	}
}

// actorFrom builds the service caller from the claims set by Auth.Required.
func actorFrom(c *gin.Context) (services.Actor, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
		return services.Actor{}, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("invalid user ID in token"))
		return services.Actor{}, false
	}
	return services.Actor{
		ID:          id,
		Role:        claims.GetSafeRole(),
		AccessToken: c.GetString(middleware.AccessTokenKey),
	}, true
}

// paramID reads a uuid path parameter. Surrounding quotes are stripped because
// some clients template ids as JSON strings.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := strings.Trim(strings.TrimSpace(c.Param(name)), "\"'")
	if raw == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(name+" is required"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid "+name+" format"))
		return uuid.Nil, false
	}
	return id, true
}

type pagination struct {
	page, limit, offset int
}

func pageFrom(c *gin.Context) pagination {
	page, limit, offset := helpers.ParsePagination(c.Query("page"), c.Query("limit"))
	// offset wins when a client pages by offset directly
	if raw := c.Query("offset"); raw != "" {
		if o, err := strconv.Atoi(raw); err == nil && o >= 0 {
			offset = o
			page = offset/limit + 1
		}
	}
	return pagination{page: page, limit: limit, offset: offset}
}

// listFilter copies the allowed query parameters into a column filter.
func listFilter(c *gin.Context, columns ...string) models.ListFilter {
	filter := models.ListFilter{}
	for _, col := range columns {
		if v := strings.TrimSpace(c.Query(col)); v != "" {
			filter[col] = v
		}
	}
	return filter
}

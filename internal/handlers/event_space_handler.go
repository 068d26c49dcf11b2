package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/services"
)

func CreateEventSpace(ss *services.EventSpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var space models.EventSpace
		if err := c.ShouldBindJSON(&space); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		if !actor.CanList() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("only hosts can create event spaces"))
			return
		}

		created, err := ss.CreateEventSpace(c.Request.Context(), actor, &space)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Event space created successfully"))
	}
}

func ListEventSpaces(ss *services.EventSpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := pageFrom(c)
		spaces, total, err := ss.ListEventSpaces(c.Request.Context(), listFilter(c, "location", "owner_id", "status"), p.offset, p.limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(spaces, p.page, p.limit, total))
	}
}

func GetEventSpace(ss *services.EventSpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		space, err := ss.GetEventSpace(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(space, ""))
	}
}

func UpdateEventSpace(ss *services.EventSpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var fields map[string]interface{}
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		space, err := ss.UpdateEventSpace(c.Request.Context(), actor, id, fields)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(space, "Event space updated successfully"))
	}
}

func DeleteEventSpace(ss *services.EventSpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		if err := ss.DeleteEventSpace(c.Request.Context(), actor, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Event space deleted successfully"))
	}
}

// EventSpaceAvailability serves ?year=&month=, defaulting to the current month.
func EventSpaceAvailability(ss *services.EventSpaceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		now := time.Now()
		year, month := now.Year(), int(now.Month())
		if raw := c.Query("year"); raw != "" {
			y, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid year parameter"))
				return
			}
			year = y
		}
		if raw := c.Query("month"); raw != "" {
			m, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid month parameter"))
				return
			}
			month = m
		}

		avail, err := ss.Availability(c.Request.Context(), id, year, time.Month(month))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(avail, ""))
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/services"
)

func CreateService(sc *services.ServiceCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var service models.Service
		if err := c.ShouldBindJSON(&service); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		created, err := sc.CreateService(c.Request.Context(), actor, &service)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Service created successfully"))
	}
}

func ListServices(sc *services.ServiceCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := pageFrom(c)
		list, total, err := sc.ListServices(c.Request.Context(), listFilter(c, "category", "provider_id"), p.offset, p.limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(list, p.page, p.limit, total))
	}
}

func GetService(sc *services.ServiceCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		service, err := sc.GetService(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(service, ""))
	}
}

func UpdateService(sc *services.ServiceCatalog) gin.HandlerFunc {
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

		service, err := sc.UpdateService(c.Request.Context(), actor, id, fields)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(service, "Service updated successfully"))
	}
}

func DeleteService(sc *services.ServiceCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		if err := sc.DeleteService(c.Request.Context(), actor, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Service deleted successfully"))
	}
}

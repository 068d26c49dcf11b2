package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/services"
)

func AddToWishlist(ws *services.WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ItemID   string `json:"item_id" binding:"required"`
			ItemType string `json:"item_type" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("item_id and item_type are required"))
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		wishlist, err := ws.AddToWishlist(c.Request.Context(), actor.ID, req.ItemID, req.ItemType)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(wishlist.SortedItems(), "Added to wishlist"))
	}
}

func RemoveFromWishlist(ws *services.WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		if err := ws.RemoveFromWishlist(c.Request.Context(), actor.ID, c.Param("itemId")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Removed from wishlist"))
	}
}

func GetWishlist(ws *services.WishlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		items, err := ws.GetWishlist(c.Request.Context(), actor.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(items, ""))
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/services"
)

func Me(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		user, err := u.GetUser(c.Request.Context(), actor.ID, actor.AccessToken)
		if err != nil {
			respondError(c, err)
			return
		}
		user.Password = ""
		c.JSON(http.StatusOK, models.SuccessResponse(user, ""))
	}
}

func GetUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		// users can read their own profile, admins can read any
		if actor.ID != id && !actor.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("access denied"))
			return
		}

		user, err := u.GetUser(c.Request.Context(), id, actor.AccessToken)
		if err != nil {
			respondError(c, err)
			return
		}
		user.Password = ""
		c.JSON(http.StatusOK, models.SuccessResponse(user, ""))
	}
}

func UpdateUser(u *services.UserService) gin.HandlerFunc {
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
		if actor.ID != id && !actor.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("access denied"))
			return
		}

		user, err := u.UpdateUser(c.Request.Context(), fields, id, actor.AccessToken)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, "Profile updated successfully"))
	}
}

func DeleteUser(u *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		if actor.ID != id && !actor.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("access denied"))
			return
		}

		if err := u.DeleteUser(c.Request.Context(), id, actor.AccessToken); err != nil {
			respondError(c, err)
			return
		}
		if actor.ID == id {
			Logout(secureCookies)(c)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "User deleted successfully"))
	}
}

func UploadAvatar(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Image string `json:"image" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("image is required"))
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}

		url, err := u.UploadAvatar(c.Request.Context(), actor.ID, req.Image, actor.AccessToken)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"avatar_url": url}, "Avatar updated"))
	}
}

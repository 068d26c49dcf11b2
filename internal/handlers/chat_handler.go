package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/services"
)

func OpenConversation(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID uuid.UUID `json:"user_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("user_id is required"))
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		conv, err := cs.OpenConversation(c.Request.Context(), actor, req.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(conv, ""))
	}
}

func ListConversations(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		convs, err := cs.ListConversations(c.Request.Context(), actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(convs, ""))
	}
}

func ListMessages(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		p := pageFrom(c)
		msgs, err := cs.ListMessages(c.Request.Context(), actor, c.Param("roomId"), p.offset, p.limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(msgs, ""))
	}
}

func SendMessage(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ReceiverID uuid.UUID `json:"receiver_id" binding:"required"`
			Text       string    `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("receiver_id and text are required"))
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		msg, err := cs.SendMessage(c.Request.Context(), actor, req.ReceiverID, req.Text)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(msg, ""))
	}
}

func UpdateMessageStatus(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("status is required"))
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		msg, err := cs.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(msg, ""))
	}
}

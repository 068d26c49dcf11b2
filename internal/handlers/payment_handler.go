package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/services"
)

// CreatePaymentIntent returns the client secret the app hands to the payment sheet.
func CreatePaymentIntent(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		intent, err := ps.CreateIntent(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(intent, ""))
	}
}

func ConfirmPayment(ps *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		actor, ok := actorFrom(c)
		if !ok {
			return
		}
		booking, err := ps.Confirm(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Payment confirmed"))
	}
}
